package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pipelineFixture(t *testing.T) (*RetentionDataset, PeakCapacities) {
	t.Helper()
	labels := []string{"C18 low pH", "C18 high pH", "HILIC", "PFP"}
	columns := map[string][]float64{
		"C18 low pH":  {1.2, 2.5, 3.1, 4.8, 5.5, 6.2, 7.9, 8.4, 9.1, 10.3},
		"C18 high pH": {2.1, 1.4, 4.5, 3.2, 6.8, 5.1, 8.2, 7.4, 10.1, 9.3},
		"HILIC":       {9.8, 8.1, 7.4, 6.9, 5.2, 4.1, 3.8, 2.5, 1.9, 1.1},
		"PFP":         {3.4, 1.1, 5.8, 2.2, 8.1, 4.5, 9.9, 6.3, 7.2, 10.8},
	}
	ds, err := NewRetentionDataset(labels, columns)
	require.NoError(t, err)
	capacities := PeakCapacities{
		"C18 low pH": 120, "C18 high pH": 110, "HILIC": 60, "PFP": 80,
	}
	return ds, capacities
}

func TestEngineRunEndToEnd(t *testing.T) {
	ds, capacities := pipelineFixture(t)

	params := PipelineParams{
		Method: NormMinMax,
		Metrics: []string{
			MetricConvexHull, MetricBinBox, MetricPearson,
			MetricSpearman, MetricKendall, MetricNNDMean,
		},
		Bins:      14,
		Threshold: 0.85,
		Tolerance: 0,
		Score:     ScoreOptions{UseSuggested: true},
	}

	eval, err := NewEngine().Run(context.Background(), ds, capacities, params)
	require.NoError(t, err)

	require.Len(t, eval.Combinations, 6, "C(4,2)")
	require.Len(t, eval.Results, 6)
	assert.Empty(t, eval.Failures, "ten clean compounds satisfy every selected metric")
	require.NotNil(t, eval.Matrix)
	assert.NotEmpty(t, eval.Groups)
	assert.ElementsMatch(t, eval.Matrix.Metrics, eval.DisplayOrder)

	require.Len(t, eval.Ranked, 6)
	for i, e := range eval.Ranked {
		assert.Equal(t, i+1, e.Rank)
		if i > 0 {
			assert.GreaterOrEqual(t, eval.Ranked[i-1].PredictedCapacity, e.PredictedCapacity)
		}
	}
	for _, r := range eval.Results {
		for name, v := range r.Values {
			assert.GreaterOrEqual(t, v, 0.0, "metric %s", name)
		}
	}
}

func TestEngineRunRejectsBadSelectionBeforeWork(t *testing.T) {
	ds, capacities := pipelineFixture(t)

	params := PipelineParams{
		Method:  NormMinMax,
		Metrics: []string{"banana"},
		Bins:    14,
		Score:   ScoreOptions{UseSuggested: true},
	}

	_, err := NewEngine().Run(context.Background(), ds, capacities, params)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestEngineRunCancelled(t *testing.T) {
	ds, capacities := pipelineFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	params := PipelineParams{
		Method:    NormMinMax,
		Metrics:   []string{MetricPearson},
		Threshold: 0.85,
		Score:     ScoreOptions{UseSuggested: true},
	}

	_, err := NewEngine().Run(ctx, ds, capacities, params)
	require.ErrorIs(t, err, context.Canceled)
}

func TestEngineRunVoidMaxNeedsParams(t *testing.T) {
	ds, capacities := pipelineFixture(t)

	params := PipelineParams{
		Method:    NormVoidMax,
		Metrics:   []string{MetricPearson},
		Threshold: 0.85,
		Score:     ScoreOptions{UseSuggested: true},
	}

	_, err := NewEngine().Run(context.Background(), ds, capacities, params)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestEvaluateMetricsPreservesCombinationOrder(t *testing.T) {
	ds, capacities := pipelineFixture(t)
	engine := NewEngine()

	normalized, err := NewNormalizer().Normalize(ds, NormMinMax, NormalizationParams{})
	require.NoError(t, err)
	combos, err := NewCombinationGenerator().Generate(normalized, capacities)
	require.NoError(t, err)

	results, err := engine.EvaluateMetrics(context.Background(), combos, []string{MetricPearson}, MetricConfig{})
	require.NoError(t, err)
	require.Len(t, results, len(combos))
	for i, r := range results {
		assert.Equal(t, combos[i].Index, r.Combination.Index)
	}
}
