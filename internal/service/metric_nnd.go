package service

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// The NND metrics average the single-linkage merge distances of the peak
// cloud, which are exactly the edge weights of its Euclidean minimum spanning
// tree. The mean is rescaled by (sqrt(n)-1)/0.64, the spacing a uniform
// random spread of n peaks would show in the unit square.

func nndArithmeticMean(x, y []float64, _ MetricConfig) (float64, error) {
	d, err := mstDistances(x, y, MetricNNDArithmetic)
	if err != nil {
		return 0, err
	}
	return nndScale(stat.Mean(d, nil), len(x)), nil
}

func nndGeometricMean(x, y []float64, _ MetricConfig) (float64, error) {
	d, err := mstDistances(x, y, MetricNNDGeometric)
	if err != nil {
		return 0, err
	}
	return nndScale(stat.GeometricMean(d, nil), len(x)), nil
}

func nndHarmonicMean(x, y []float64, _ MetricConfig) (float64, error) {
	d, err := mstDistances(x, y, MetricNNDHarmonic)
	if err != nil {
		return 0, err
	}
	return nndScale(stat.HarmonicMean(d, nil), len(x)), nil
}

// nndMean averages the three NND aggregations; it represents them in the
// metric correlation matrix.
func nndMean(x, y []float64, cfg MetricConfig) (float64, error) {
	a, err := nndArithmeticMean(x, y, cfg)
	if err != nil {
		return 0, err
	}
	g, err := nndGeometricMean(x, y, cfg)
	if err != nil {
		return 0, err
	}
	h, err := nndHarmonicMean(x, y, cfg)
	if err != nil {
		return 0, err
	}
	return (a + g + h) / 3, nil
}

func nndScale(mean float64, nPeaks int) float64 {
	return mean * (math.Sqrt(float64(nPeaks)) - 1) / 0.64
}

// mstDistances returns the minimum-spanning-tree edge lengths of the peak
// cloud under Euclidean distance, zero-length edges (coincident peaks)
// removed. Prim's algorithm on the complete graph, O(n^2).
func mstDistances(x, y []float64, metric string) ([]float64, error) {
	n := len(x)
	if n < 2 {
		return nil, &InsufficientDataError{Metric: metric, Needed: 2, Got: n}
	}

	inTree := make([]bool, n)
	best := make([]float64, n)
	for i := range best {
		best[i] = math.Inf(1)
	}
	inTree[0] = true
	for i := 1; i < n; i++ {
		best[i] = euclid(x[0], y[0], x[i], y[i])
	}

	distances := make([]float64, 0, n-1)
	for added := 1; added < n; added++ {
		next, nextDist := -1, math.Inf(1)
		for i := 0; i < n; i++ {
			if !inTree[i] && best[i] < nextDist {
				next, nextDist = i, best[i]
			}
		}
		inTree[next] = true
		if nextDist > 0 {
			distances = append(distances, nextDist)
		}
		for i := 0; i < n; i++ {
			if inTree[i] {
				continue
			}
			if d := euclid(x[next], y[next], x[i], y[i]); d < best[i] {
				best[i] = d
			}
		}
	}

	if len(distances) == 0 {
		return nil, &InsufficientDataError{Metric: metric, Needed: 2, Got: 1}
	}
	return distances, nil
}

func euclid(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}
