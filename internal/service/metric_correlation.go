package service

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Correlation-based metrics are oriented toward orthogonality as 1 - c^2, so
// both strong positive and strong negative correlation score near 0 and an
// uncorrelated spread scores near 1.

func pearsonScore(x, y []float64, _ MetricConfig) (float64, error) {
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0, &InsufficientDataError{Metric: MetricPearson, Needed: 3, Got: len(x)}
	}
	return 1 - r*r, nil
}

func spearmanScore(x, y []float64, _ MetricConfig) (float64, error) {
	rho := stat.Correlation(ranks(x), ranks(y), nil)
	if math.IsNaN(rho) {
		return 0, &InsufficientDataError{Metric: MetricSpearman, Needed: 3, Got: len(x)}
	}
	return 1 - rho*rho, nil
}

func kendallScore(x, y []float64, _ MetricConfig) (float64, error) {
	tau := stat.Kendall(x, y, nil)
	if math.IsNaN(tau) {
		return 0, &InsufficientDataError{Metric: MetricKendall, Needed: 3, Got: len(x)}
	}
	return 1 - tau*tau, nil
}

// ccMean averages the three correlation-derived orthogonality scores. It is
// an aggregate and therefore stays out of the metric correlation matrix.
func ccMean(x, y []float64, cfg MetricConfig) (float64, error) {
	p, err := pearsonScore(x, y, cfg)
	if err != nil {
		return 0, err
	}
	s, err := spearmanScore(x, y, cfg)
	if err != nil {
		return 0, err
	}
	k, err := kendallScore(x, y, cfg)
	if err != nil {
		return 0, err
	}
	return (p + s + k) / 3, nil
}

// ranks assigns fractional ranks (1-based, ties averaged), the Spearman
// convention.
func ranks(values []float64) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	out := make([]float64, len(values))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		// Average rank over the tie run [i, j].
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[idx[k]] = avg
		}
		i = j + 1
	}
	return out
}

// geometricApproach scores the pair from the geometry of the combined
// separation: the inter-dimension angle beta = arccos(r) shrinks the usable
// area of the N1 x N2 peak-capacity rectangle.
func geometricApproach(x, y []float64, cfg MetricConfig) (float64, error) {
	if cfg.CapacityA <= 0 || cfg.CapacityB <= 0 {
		return 0, configurationf("geometric approach needs positive peak capacities, got %g and %g", cfg.CapacityA, cfg.CapacityB)
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0, &InsufficientDataError{Metric: MetricGeometricApproach, Needed: 3, Got: len(x)}
	}
	// Clamp against floating-point drift before the arccos.
	if r > 1 {
		r = 1
	}
	if r < -1 {
		r = -1
	}
	beta := math.Acos(r)

	n1, n2 := cfg.CapacityA, cfg.CapacityB
	alphaPrime := math.Atan(n2 / n1)
	alpha := alphaPrime * (1 - 2*beta/math.Pi)
	gamma := math.Pi/2 - beta - alpha

	np := n1*n2 - 0.5*n2*math.Tan(gamma) - 0.5*n1*math.Tan(alpha)
	return np / (n1 * n2), nil
}
