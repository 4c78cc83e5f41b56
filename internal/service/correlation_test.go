package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resultsFixture builds three combinations whose metric vectors have known
// pairwise correlations: pearson/spearman and pearson/hull correlate at
// ~0.982, spearman/hull at ~0.929, and asterisk stays near zero against all
// three.
func resultsFixture() ([]MetricResult, []string) {
	metrics := []string{MetricPearson, MetricSpearman, MetricConvexHull, MetricAsterisk}
	vectors := map[string][]float64{
		MetricPearson:    {0, 1, 2},
		MetricSpearman:   {0, 1, 3},
		MetricConvexHull: {0, 2, 3},
		MetricAsterisk:   {1, 0, 1},
	}
	results := make([]MetricResult, 3)
	for i := range results {
		results[i] = MetricResult{
			Combination: Combination{Index: i + 1, LabelA: "A", LabelB: "B"},
			Values:      map[string]float64{},
		}
		for _, name := range metrics {
			results[i].Values[name] = vectors[name][i]
		}
	}
	return results, metrics
}

func TestBuildMatrixShape(t *testing.T) {
	results, metrics := resultsFixture()

	matrix, err := NewCorrelationAnalyzer().BuildMatrix(results, metrics)
	require.NoError(t, err)
	require.Equal(t, metrics, matrix.Metrics)

	for i := range matrix.Metrics {
		assert.InDelta(t, 1, matrix.At(i, i), 1e-12, "unit diagonal")
		for j := range matrix.Metrics {
			assert.InDelta(t, matrix.At(i, j), matrix.At(j, i), 1e-12, "symmetry")
		}
	}
	assert.InDelta(t, 0.98198, matrix.At(0, 1), 1e-4)
	assert.InDelta(t, 0.98198, matrix.At(0, 2), 1e-4)
	assert.InDelta(t, 0.92857, matrix.At(1, 2), 1e-4)
}

func TestBuildMatrixExcludesAggregates(t *testing.T) {
	results, metrics := resultsFixture()
	for i := range results {
		results[i].Values[MetricCCMean] = float64(i)
	}

	matrix, err := NewCorrelationAnalyzer().BuildMatrix(results, append(metrics, MetricCCMean))
	require.NoError(t, err)
	assert.NotContains(t, matrix.Metrics, MetricCCMean)
}

func TestBuildMatrixOnlyAggregates(t *testing.T) {
	results, _ := resultsFixture()

	_, err := NewCorrelationAnalyzer().BuildMatrix(results, []string{MetricCCMean, MetricNNDArithmetic})
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestBuildMatrixNeedsTwoCombinations(t *testing.T) {
	results, metrics := resultsFixture()

	_, err := NewCorrelationAnalyzer().BuildMatrix(results[:1], metrics)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestBuildMatrixPairwiseDrop(t *testing.T) {
	results, metrics := resultsFixture()
	// Hull failed for two of three combinations: one shared observation is
	// not enough evidence, the coefficient falls back to 0.
	delete(results[0].Values, MetricConvexHull)
	delete(results[1].Values, MetricConvexHull)

	matrix, err := NewCorrelationAnalyzer().BuildMatrix(results, metrics)
	require.NoError(t, err)
	assert.InDelta(t, 0, matrix.At(0, 2), 1e-12)
}

func TestGroupTransitiveLinkage(t *testing.T) {
	results, metrics := resultsFixture()
	analyzer := NewCorrelationAnalyzer()
	matrix, err := analyzer.BuildMatrix(results, metrics)
	require.NoError(t, err)

	// At 0.95 the spearman-hull link (0.929) is below threshold, but both
	// link to pearson, so all three land in one group.
	groups, err := analyzer.Group(matrix, 0.95, 0)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "A", groups[0].ID)
	assert.ElementsMatch(t, []string{MetricPearson, MetricSpearman, MetricConvexHull}, groups[0].Metrics)
	assert.Equal(t, "B", groups[1].ID)
	assert.Equal(t, []string{MetricAsterisk}, groups[1].Metrics)
}

func TestGroupCountShrinksAsThresholdDrops(t *testing.T) {
	results, metrics := resultsFixture()
	analyzer := NewCorrelationAnalyzer()
	matrix, err := analyzer.BuildMatrix(results, metrics)
	require.NoError(t, err)

	counts := make([]int, 0, 3)
	for _, threshold := range []float64{0.99, 0.95, 0.1} {
		groups, err := analyzer.Group(matrix, threshold, 0)
		require.NoError(t, err)
		counts = append(counts, len(groups))
	}
	assert.Equal(t, []int{4, 2, 1}, counts)
}

func TestGroupToleranceWidensLinks(t *testing.T) {
	results, metrics := resultsFixture()
	analyzer := NewCorrelationAnalyzer()
	matrix, err := analyzer.BuildMatrix(results, metrics)
	require.NoError(t, err)

	// Effective threshold 0.99 - 0.02 = 0.97 still excludes nothing beyond
	// what 0.97 itself would.
	strict, err := analyzer.Group(matrix, 0.99, 0)
	require.NoError(t, err)
	relaxed, err := analyzer.Group(matrix, 0.99, 0.02)
	require.NoError(t, err)
	assert.Greater(t, len(strict), len(relaxed))
}

func TestGroupParameterValidation(t *testing.T) {
	results, metrics := resultsFixture()
	analyzer := NewCorrelationAnalyzer()
	matrix, err := analyzer.BuildMatrix(results, metrics)
	require.NoError(t, err)

	var cfgErr *ConfigurationError
	_, err = analyzer.Group(matrix, 1.2, 0)
	require.ErrorAs(t, err, &cfgErr)
	_, err = analyzer.Group(matrix, -0.1, 0)
	require.ErrorAs(t, err, &cfgErr)
	_, err = analyzer.Group(matrix, 0.85, -0.05)
	require.ErrorAs(t, err, &cfgErr)
}

func TestGroupsPartitionTheMetrics(t *testing.T) {
	results, metrics := resultsFixture()
	analyzer := NewCorrelationAnalyzer()
	matrix, err := analyzer.BuildMatrix(results, metrics)
	require.NoError(t, err)

	for _, threshold := range []float64{0, 0.5, 0.85, 0.95, 1} {
		groups, err := analyzer.Group(matrix, threshold, 0)
		require.NoError(t, err)

		var all []string
		for _, g := range groups {
			all = append(all, g.Metrics...)
		}
		assert.ElementsMatch(t, matrix.Metrics, all, "threshold %g", threshold)
	}
}

func TestDisplayOrderIsPermutation(t *testing.T) {
	results, metrics := resultsFixture()
	analyzer := NewCorrelationAnalyzer()
	matrix, err := analyzer.BuildMatrix(results, metrics)
	require.NoError(t, err)

	order := analyzer.DisplayOrder(matrix)
	assert.ElementsMatch(t, matrix.Metrics, order)
}
