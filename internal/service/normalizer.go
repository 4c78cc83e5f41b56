package service

import (
	"math"
)

// NormalizationMethod selects how raw retention times are rescaled onto the
// common [0,1] axis before any metric is computed.
type NormalizationMethod string

const (
	// NormMinMax rescales between the first and last eluting compound.
	NormMinMax NormalizationMethod = "min_max"
	// NormVoidMax rescales between the system void time and the last compound.
	NormVoidMax NormalizationMethod = "void_max"
	// NormWosel rescales between void time and last compound with logarithmic
	// compression, expanding the early-eluting region. The compression
	// strength is derived from the gradient span relative to the void time.
	NormWosel NormalizationMethod = "wosel"
)

// ParseNormalizationMethod validates a method name from the configuration
// surface.
func ParseNormalizationMethod(s string) (NormalizationMethod, error) {
	switch NormalizationMethod(s) {
	case NormMinMax, NormVoidMax, NormWosel:
		return NormalizationMethod(s), nil
	}
	return "", configurationf("unknown normalization method %q", s)
}

// Normalizer rescales raw retention times per condition. All methods map the
// last eluting compound to 1; min-max anchors 0 at the first compound, the
// void-based methods anchor 0 at the supplied void time.
type Normalizer struct{}

// NewNormalizer creates a new Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize produces a NormalizedDataset from raw retention times. Void and
// gradient-end times are required only for the void-based methods; a missing
// parameter or a degenerate denominator is a ConfigurationError naming the
// offending condition.
func (n *Normalizer) Normalize(ds *RetentionDataset, method NormalizationMethod, params NormalizationParams) (*NormalizedDataset, error) {
	columns := make(map[string][]float64, ds.NumConditions())
	for _, label := range ds.labels {
		raw := ds.times[label]
		norm, err := n.normalizeColumn(label, raw, method, params)
		if err != nil {
			return nil, err
		}
		columns[label] = norm
	}
	inner, err := NewRetentionDataset(ds.labels, columns)
	if err != nil {
		return nil, err
	}
	return &NormalizedDataset{RetentionDataset: *inner, Method: method, Params: params}, nil
}

func (n *Normalizer) normalizeColumn(label string, raw []float64, method NormalizationMethod, params NormalizationParams) ([]float64, error) {
	first, last, any := presentRange(raw)
	if !any {
		return nil, validationf("condition %q has no retention times", label)
	}

	var transform func(rt float64) float64
	switch method {
	case NormMinMax:
		span := last - first
		if span <= 0 {
			return nil, configurationf("condition %q: retention span rt_last - rt_first = %g is not positive", label, span)
		}
		transform = func(rt float64) float64 { return (rt - first) / span }

	case NormVoidMax:
		rt0, ok := params.VoidTimes[label]
		if !ok {
			return nil, configurationf("condition %q: void time required for void-max normalization", label)
		}
		span := last - rt0
		if span <= 0 {
			return nil, configurationf("condition %q: retention span rt_last - Rt0 = %g is not positive", label, span)
		}
		transform = func(rt float64) float64 { return (rt - rt0) / span }

	case NormWosel:
		rt0, ok := params.VoidTimes[label]
		if !ok {
			return nil, configurationf("condition %q: void time required for wosel normalization", label)
		}
		rtEnd, ok := params.EndTimes[label]
		if !ok {
			return nil, configurationf("condition %q: gradient end time required for wosel normalization", label)
		}
		if rt0 <= 0 {
			return nil, configurationf("condition %q: void time %g must be positive for wosel normalization", label, rt0)
		}
		if rtEnd <= rt0 {
			return nil, configurationf("condition %q: gradient end time %g must exceed void time %g", label, rtEnd, rt0)
		}
		span := last - rt0
		if span <= 0 {
			return nil, configurationf("condition %q: retention span rt_last - Rt0 = %g is not positive", label, span)
		}
		// Shape factor from the gradient span. u is the void-max value; the
		// log fold keeps the endpoints fixed (void -> 0, last peak -> 1) while
		// stretching the early-eluting region.
		shape := (rtEnd - rt0) / rt0
		logDenom := math.Log1p(shape)
		transform = func(rt float64) float64 {
			u := (rt - rt0) / span
			return math.Log1p(shape*u) / logDenom
		}

	default:
		return nil, configurationf("unknown normalization method %q", method)
	}

	norm := make([]float64, len(raw))
	for i, rt := range raw {
		if math.IsNaN(rt) {
			norm[i] = Missing
			continue
		}
		norm[i] = transform(rt)
	}
	return norm, nil
}

// presentRange returns the smallest and largest non-missing value of a series.
func presentRange(values []float64) (min, max float64, any bool) {
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if !any {
			min, max, any = v, v, true
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, any
}
