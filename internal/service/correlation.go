package service

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// CorrelationMatrix is the symmetric metric-by-metric Pearson correlation of
// metric values across all combinations. The diagonal is 1 by construction.
type CorrelationMatrix struct {
	Metrics []string
	values  [][]float64
}

// At returns the correlation between two metrics by index.
func (m *CorrelationMatrix) At(i, j int) float64 {
	return m.values[i][j]
}

// MetricGroup is one redundancy group: metrics whose values convey the same
// information at the configured threshold. Groups partition the matrix
// metrics; a metric with no links forms a singleton group.
type MetricGroup struct {
	ID      string   `json:"id"`
	Metrics []string `json:"metrics"`
}

// CorrelationAnalyzer builds the metric correlation matrix and the redundancy
// grouping from it. Results are pure functions of the inputs; the analyzer
// keeps no state between calls, so a parameter change can never leak a stale
// grouping.
type CorrelationAnalyzer struct{}

// NewCorrelationAnalyzer creates a new analyzer.
func NewCorrelationAnalyzer() *CorrelationAnalyzer {
	return &CorrelationAnalyzer{}
}

// BuildMatrix correlates each pair of metric value vectors across
// combinations. Combinations where either metric failed are excluded pairwise
// from that coefficient. Only metrics flagged for the correlation matrix
// participate.
func (a *CorrelationAnalyzer) BuildMatrix(results []MetricResult, metrics []string) (*CorrelationMatrix, error) {
	selected := make([]string, 0, len(metrics))
	for _, name := range metrics {
		if MetricInCorrelationMatrix(name) {
			selected = append(selected, name)
		}
	}
	if len(selected) == 0 {
		return nil, configurationf("no correlation-matrix metrics among the selection")
	}
	if len(results) < 2 {
		return nil, validationf("metric correlation needs at least two combinations, got %d", len(results))
	}

	m := len(selected)
	values := make([][]float64, m)
	for i := range values {
		values[i] = make([]float64, m)
		values[i][i] = 1
	}
	for i := 0; i < m; i++ {
		for j := i + 1; j < m; j++ {
			c := pairwiseCorrelation(results, selected[i], selected[j])
			values[i][j] = c
			values[j][i] = c
		}
	}
	return &CorrelationMatrix{Metrics: selected, values: values}, nil
}

// pairwiseCorrelation computes Pearson correlation over the combinations
// where both metrics produced a value. Fewer than two shared observations, or
// a constant vector, yield 0 (no evidence of redundancy).
func pairwiseCorrelation(results []MetricResult, a, b string) float64 {
	var va, vb []float64
	for _, r := range results {
		x, okA := r.Values[a]
		y, okB := r.Values[b]
		if okA && okB {
			va = append(va, x)
			vb = append(vb, y)
		}
	}
	if len(va) < 2 {
		return 0
	}
	c := stat.Correlation(va, vb, nil)
	if math.IsNaN(c) {
		return 0
	}
	return c
}

// Group partitions the matrix metrics into redundancy groups: two metrics are
// linked when |corr| >= threshold - tolerance, and groups are the connected
// components of the link graph, so linkage is transitive. Groups are labelled
// "A", "B", ... largest first.
func (a *CorrelationAnalyzer) Group(matrix *CorrelationMatrix, threshold, tolerance float64) ([]MetricGroup, error) {
	if threshold < 0 || threshold > 1 {
		return nil, configurationf("correlation threshold must be in [0,1], got %g", threshold)
	}
	if tolerance < 0 {
		return nil, configurationf("threshold tolerance must be non-negative, got %g", tolerance)
	}

	m := len(matrix.Metrics)
	linked := func(i, j int) bool {
		return math.Abs(matrix.values[i][j]) >= threshold-tolerance
	}

	seen := make([]bool, m)
	var components [][]int
	for start := 0; start < m; start++ {
		if seen[start] {
			continue
		}
		queue := []int{start}
		seen[start] = true
		var comp []int
		for qi := 0; qi < len(queue); qi++ {
			u := queue[qi]
			comp = append(comp, u)
			for v := 0; v < m; v++ {
				if v == u || seen[v] || !linked(u, v) {
					continue
				}
				seen[v] = true
				queue = append(queue, v)
			}
		}
		components = append(components, comp)
	}

	// Largest group first; ties keep matrix order for determinism.
	for i := 1; i < len(components); i++ {
		for j := i; j > 0 && len(components[j]) > len(components[j-1]); j-- {
			components[j], components[j-1] = components[j-1], components[j]
		}
	}

	groups := make([]MetricGroup, len(components))
	for i, comp := range components {
		names := make([]string, len(comp))
		for k, idx := range comp {
			names[k] = matrix.Metrics[idx]
		}
		groups[i] = MetricGroup{ID: groupLabel(i), Metrics: names}
	}
	return groups, nil
}

// groupLabel yields "A".."Z", then "AA", "AB", ... for pathological counts.
func groupLabel(i int) string {
	label := ""
	for {
		label = string(rune('A'+i%26)) + label
		i = i/26 - 1
		if i < 0 {
			return label
		}
	}
}

// DisplayOrder reorders the matrix metrics by hierarchical similarity for
// heatmap presentation: single-linkage agglomeration over 1 - |corr|. The
// order is presentation only and never feeds back into grouping or scoring.
func (a *CorrelationAnalyzer) DisplayOrder(matrix *CorrelationMatrix) []string {
	m := len(matrix.Metrics)
	clusters := make([][]int, m)
	for i := range clusters {
		clusters[i] = []int{i}
	}
	dist := func(ci, cj []int) float64 {
		best := math.Inf(1)
		for _, i := range ci {
			for _, j := range cj {
				if d := 1 - math.Abs(matrix.values[i][j]); d < best {
					best = d
				}
			}
		}
		return best
	}

	for len(clusters) > 1 {
		bi, bj, best := 0, 1, math.Inf(1)
		for i := 0; i < len(clusters); i++ {
			for j := i + 1; j < len(clusters); j++ {
				if d := dist(clusters[i], clusters[j]); d < best {
					bi, bj, best = i, j, d
				}
			}
		}
		merged := append(append([]int(nil), clusters[bi]...), clusters[bj]...)
		clusters = append(clusters[:bj], clusters[bj+1:]...)
		clusters[bi] = merged
	}

	order := make([]string, m)
	for k, idx := range clusters[0] {
		order[k] = matrix.Metrics[idx]
	}
	return order
}
