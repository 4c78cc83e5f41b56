package service

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// gilarWatsonFraction is the expected occupancy of a random peak spread: with
// as many peaks as bins, roughly 63% of the bins end up occupied.
const gilarWatsonFraction = 0.63

// binIndex maps a coordinate in [0,1] onto one of n bins, clamping the edges
// so 1.0 lands in the last bin.
func binIndex(v float64, n int) int {
	idx := int(v * float64(n))
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// occupiedBins counts the cells of an n-by-n grid over the unit square that
// hold at least one peak.
func occupiedBins(x, y []float64, n int) int {
	occupied := make(map[[2]int]struct{}, len(x))
	for i := range x {
		occupied[[2]int{binIndex(x[i], n), binIndex(y[i], n)}] = struct{}{}
	}
	return len(occupied)
}

// binBoxRatio is the fraction of grid cells occupied by at least one peak.
func binBoxRatio(x, y []float64, cfg MetricConfig) (float64, error) {
	if cfg.Bins <= 0 {
		return 0, configurationf("bin-box count must be a positive integer, got %d", cfg.Bins)
	}
	total := cfg.Bins * cfg.Bins
	return float64(occupiedBins(x, y, cfg.Bins)) / float64(total), nil
}

// gilarWatson adjusts the bin occupancy for the occupancy a random spread
// would reach: (occupied - N) / (0.63*N^2 - N) for an N-by-N grid.
func gilarWatson(x, y []float64, cfg MetricConfig) (float64, error) {
	if cfg.Bins <= 0 {
		return 0, configurationf("bin-box count must be a positive integer, got %d", cfg.Bins)
	}
	n := float64(cfg.Bins)
	occupied := float64(occupiedBins(x, y, cfg.Bins))
	return (occupied - n) / (gilarWatsonFraction*n*n - n), nil
}

// modelingApproach combines bin coverage with correlation-based spread:
// C_pert * C_peaks, where C_pert = occupied/(0.63*N^2) and C_peaks = 1 - R^2
// of the linear regression of y on x.
func modelingApproach(x, y []float64, cfg MetricConfig) (float64, error) {
	if cfg.Bins <= 0 {
		return 0, configurationf("bin-box count must be a positive integer, got %d", cfg.Bins)
	}
	n := float64(cfg.Bins)
	cPert := float64(occupiedBins(x, y, cfg.Bins)) / (gilarWatsonFraction * n * n)

	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		// A constant series carries no linear trend.
		r = 0
	}
	cPeaks := 1 - r*r
	return cPert * cPeaks, nil
}

// percentBinGrid is fixed by the metric's definition, independent of the
// configured bin-box count.
const percentBinGrid = 5

// percentBin scores how evenly the peaks spread over a fixed 5x5 grid using
// the sum of absolute deviations (SAD) from the uniform per-bin average,
// rescaled between the no-spreading and full-spreading extremes.
func percentBin(x, y []float64, _ MetricConfig) (float64, error) {
	nBins := percentBinGrid * percentBinGrid
	nPeaks := len(x)
	avg := float64(nPeaks) / float64(nBins)

	counts := make([]int, nBins)
	for i := range x {
		bx := binIndex(x[i], percentBinGrid)
		by := binIndex(y[i], percentBinGrid)
		counts[bx*percentBinGrid+by]++
	}
	sad := 0.0
	for _, c := range counts {
		sad += math.Abs(float64(c) - avg)
	}

	// Full spreading: peaks distributed as evenly as integers allow.
	ideal, rest := nPeaks/nBins, nPeaks%nBins
	sadFull := 0.0
	for i := 0; i < nBins; i++ {
		c := ideal
		if i < rest {
			c++
		}
		sadFull += math.Abs(float64(c) - avg)
	}

	// No spreading: every peak in one bin, the rest empty.
	sadNone := math.Abs(float64(nPeaks)-avg) + float64(nBins-1)*avg

	denom := sadNone - sadFull
	if denom <= 0 {
		return 0, &InsufficientDataError{Metric: MetricPercentBin, Needed: 2, Got: nPeaks}
	}
	return 1 - (sad-sadFull)/denom, nil
}

// conditionalEntropy scores the information-theoretic spread H(Y|X)/H(Y). The
// bin count follows the Sturges-style rule round(1 + log2(n)) used for the
// marginal and joint histograms over the unit square.
func conditionalEntropy(x, y []float64, _ MetricConfig) (float64, error) {
	n := len(x)
	bins := int(math.Round(1 + math.Log2(float64(n))))
	if bins < 1 {
		bins = 1
	}

	countX := make([]float64, bins)
	countY := make([]float64, bins)
	countXY := make([]float64, bins*bins)
	for i := range x {
		bx := binIndex(x[i], bins)
		by := binIndex(y[i], bins)
		countX[bx]++
		countY[by]++
		countXY[bx*bins+by]++
	}

	total := float64(n)
	hx := entropyBits(countX, total)
	hy := entropyBits(countY, total)
	hxy := entropyBits(countXY, total)
	if hy == 0 {
		return 0, &InsufficientDataError{Metric: MetricConditionalEntropy, Needed: 2, Got: n}
	}
	return (hxy - hx) / hy, nil
}

// entropyBits computes the Shannon entropy in bits of a histogram.
func entropyBits(counts []float64, total float64) float64 {
	h := 0.0
	for _, c := range counts {
		if c <= 0 {
			continue
		}
		p := c / total
		h -= p * math.Log2(p)
	}
	return h
}
