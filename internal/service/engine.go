package service

import (
	"context"
	"runtime"
	"sync"
)

// PipelineParams is the full, explicit configuration of one evaluation run.
// It is passed by value through every stage; nothing in the pipeline reads
// ambient state, so rerunning with different parameters cannot see stale
// results.
type PipelineParams struct {
	Method     NormalizationMethod
	NormParams NormalizationParams
	Metrics    []string
	Bins       int
	Threshold  float64
	Tolerance  float64
	Score      ScoreOptions
}

// Evaluation bundles every derived artifact of one pipeline run over one
// input snapshot.
type Evaluation struct {
	Normalized   *NormalizedDataset
	Combinations []Combination
	Results      []MetricResult
	Failures     []MetricFailure
	Matrix       *CorrelationMatrix
	Groups       []MetricGroup
	DisplayOrder []string
	Scores       []ScoreResult
	Ranked       []RankedEntry
}

// Engine wires the pipeline stages together: normalize, enumerate pairs,
// evaluate metrics concurrently per combination, analyze metric redundancy,
// score and rank.
type Engine struct {
	normalizer  *Normalizer
	generator   *CombinationGenerator
	metrics     *MetricEngine
	correlation *CorrelationAnalyzer
	score       *ScoreEngine
	ranking     *RankingEngine
}

// NewEngine creates an Engine with default stage implementations.
func NewEngine() *Engine {
	return &Engine{
		normalizer:  NewNormalizer(),
		generator:   NewCombinationGenerator(),
		metrics:     NewMetricEngine(),
		correlation: NewCorrelationAnalyzer(),
		score:       NewScoreEngine(),
		ranking:     NewRankingEngine(),
	}
}

// Run executes the whole pipeline. Metric evaluation fans out over a bounded
// worker pool, one combination per task; each Combination×metric cell is
// written exactly once into a pre-sized slice. Correlation analysis starts
// only after the pool drains. Cancelling the context discards the run; no
// partial results leak out.
func (e *Engine) Run(ctx context.Context, ds *RetentionDataset, capacities PeakCapacities, params PipelineParams) (*Evaluation, error) {
	cfg := MetricConfig{Bins: params.Bins}
	if err := e.metrics.ValidateSelection(params.Metrics, cfg); err != nil {
		return nil, err
	}

	normalized, err := e.normalizer.Normalize(ds, params.Method, params.NormParams)
	if err != nil {
		return nil, err
	}

	combos, err := e.generator.Generate(normalized, capacities)
	if err != nil {
		return nil, err
	}

	results, err := e.evaluateAll(ctx, combos, params.Metrics, cfg)
	if err != nil {
		return nil, err
	}

	eval := &Evaluation{
		Normalized:   normalized,
		Combinations: combos,
		Results:      results,
	}
	for _, r := range results {
		eval.Failures = append(eval.Failures, r.Failures...)
	}

	matrix, err := e.correlation.BuildMatrix(results, params.Metrics)
	if err != nil {
		return nil, err
	}
	groups, err := e.correlation.Group(matrix, params.Threshold, params.Tolerance)
	if err != nil {
		return nil, err
	}
	eval.Matrix = matrix
	eval.Groups = groups
	eval.DisplayOrder = e.correlation.DisplayOrder(matrix)

	scores, err := e.score.Score(results, groups, params.Score)
	if err != nil {
		return nil, err
	}
	eval.Scores = scores
	eval.Ranked = e.ranking.Rank(scores)
	return eval, nil
}

// EvaluateMetrics validates the metric selection and evaluates it over every
// combination using the shared worker pool. It exists so callers driving the
// pipeline stage by stage get the same concurrency as Run.
func (e *Engine) EvaluateMetrics(ctx context.Context, combos []Combination, metrics []string, cfg MetricConfig) ([]MetricResult, error) {
	if err := e.metrics.ValidateSelection(metrics, cfg); err != nil {
		return nil, err
	}
	return e.evaluateAll(ctx, combos, metrics, cfg)
}

// evaluateAll runs the metric engine over every combination on up to NumCPU
// workers, preserving combination order in the output.
func (e *Engine) evaluateAll(ctx context.Context, combos []Combination, metrics []string, cfg MetricConfig) ([]MetricResult, error) {
	results := make([]MetricResult, len(combos))
	jobs := make(chan int)

	workers := runtime.NumCPU()
	if workers > len(combos) {
		workers = len(combos)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = e.metrics.Evaluate(combos[i], metrics, cfg)
			}
		}()
	}

feed:
	for i := range combos {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
