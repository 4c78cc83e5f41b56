package service

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Combination is one unordered pair of distinct conditions considered as a
// candidate 2D separation. X holds the first condition's normalized retention
// times and Y the second's, paired by compound index with compounds missing on
// either side already dropped and the survivors rescaled back onto [0,1].
type Combination struct {
	Index  int
	LabelA string
	LabelB string
	X      []float64
	Y      []float64
	// PeakCount is the number of paired, non-missing compounds.
	PeakCount int
	// HypotheticalCapacity is the product of the two conditions' experimental
	// peak capacities.
	HypotheticalCapacity float64
	CapacityA            float64
	CapacityB            float64
}

// Title renders the pair in the export format, e.g. "C18 low pH vs HILIC".
func (c Combination) Title() string {
	return fmt.Sprintf("%s vs %s", c.LabelA, c.LabelB)
}

// CombinationGenerator enumerates the C(n,2) unique unordered pairs of
// conditions shared by the retention and peak-capacity tables.
type CombinationGenerator struct{}

// NewCombinationGenerator creates a new generator.
func NewCombinationGenerator() *CombinationGenerator {
	return &CombinationGenerator{}
}

// Generate pairs every condition with every later condition, in table order.
// Labels must match byte-for-byte between the two tables; any label present in
// one and absent from the other fails the whole generation with a
// ValidationError, producing zero combinations.
func (g *CombinationGenerator) Generate(ds *NormalizedDataset, capacities PeakCapacities) ([]Combination, error) {
	if ds == nil {
		return nil, validationf("no normalized retention data loaded")
	}
	if len(capacities) == 0 {
		return nil, validationf("no peak-capacity table loaded")
	}
	for _, label := range ds.labels {
		if _, ok := capacities[label]; !ok {
			return nil, validationf("condition %q is in the retention table but not the peak-capacity table", label)
		}
	}
	for _, label := range capacities.sortedLabels() {
		if _, ok := ds.times[label]; !ok {
			return nil, validationf("condition %q is in the peak-capacity table but not the retention table", label)
		}
	}

	labels := ds.labels
	combos := make([]Combination, 0, len(labels)*(len(labels)-1)/2)
	for i := 0; i < len(labels); i++ {
		for j := i + 1; j < len(labels); j++ {
			a, b := labels[i], labels[j]
			x, y := pairSeries(ds.times[a], ds.times[b])
			combos = append(combos, Combination{
				Index:                len(combos) + 1,
				LabelA:               a,
				LabelB:               b,
				X:                    x,
				Y:                    y,
				PeakCount:            len(x),
				HypotheticalCapacity: capacities[a] * capacities[b],
				CapacityA:            capacities[a],
				CapacityB:            capacities[b],
			})
		}
	}
	return combos, nil
}

// pairSeries drops compounds that are missing or pre-void (negative after
// normalization) in either condition, then rescales both surviving series to
// span [0,1] so dropped extremes cannot shrink the usable separation space.
func pairSeries(xs, ys []float64) ([]float64, []float64) {
	x := make([]float64, 0, len(xs))
	y := make([]float64, 0, len(ys))
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		if xs[i] < 0 || ys[i] < 0 {
			continue
		}
		x = append(x, xs[i])
		y = append(y, ys[i])
	}
	rescaleUnit(x)
	rescaleUnit(y)
	return x, y
}

// rescaleUnit min-max rescales a series in place. A constant series is left
// untouched to avoid dividing by zero; bin metrics treat it as a single band.
func rescaleUnit(values []float64) {
	if len(values) == 0 {
		return
	}
	min, max := floats.Min(values), floats.Max(values)
	span := max - min
	if span <= 0 {
		return
	}
	for i, v := range values {
		values[i] = (v - min) / span
	}
}
