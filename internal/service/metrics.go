package service

// MetricConfig carries the shared, immutable configuration handed to every
// metric function. Bins is the per-axis box count for the grid-based metrics;
// the capacities feed the geometric-approach metric only.
type MetricConfig struct {
	Bins      int
	CapacityA float64
	CapacityB float64
}

// MetricFunc computes one orthogonality metric from a combination's paired
// normalized coordinates. Every metric is oriented so that larger means more
// orthogonal; most are confined to [0,1].
type MetricFunc func(x, y []float64, cfg MetricConfig) (float64, error)

// metricSpec describes one registry entry. minPeaks is the smallest paired
// compound count the metric is meaningful for; inCorrMatrix excludes
// aggregate metrics from the metric correlation matrix so they cannot double
// count their components.
type metricSpec struct {
	fn           MetricFunc
	minPeaks     int
	inCorrMatrix bool
	usesBins     bool
}

// Canonical metric names. These are the configuration surface: metric
// selection is a subset of these strings.
const (
	MetricConvexHull         = "convex_hull"
	MetricBinBox             = "bin_box_ratio"
	MetricGilarWatson        = "gilar_watson"
	MetricModelingApproach   = "modeling_approach"
	MetricConditionalEntropy = "conditional_entropy"
	MetricPearson            = "pearson_r"
	MetricSpearman           = "spearman_rho"
	MetricKendall            = "kendall_tau"
	MetricCCMean             = "cc_mean"
	MetricAsterisk           = "asterisk"
	MetricNNDArithmetic      = "nnd_arithmetic_mean"
	MetricNNDGeometric       = "nnd_geometric_mean"
	MetricNNDHarmonic        = "nnd_harmonic_mean"
	MetricNNDMean            = "nnd_mean"
	MetricPercentFit         = "percent_fit"
	MetricPercentBin         = "percent_bin"
	MetricGeometricApproach  = "geometric_approach"
)

// metricOrder fixes the column order of the OM result table.
var metricOrder = []string{
	MetricConvexHull,
	MetricBinBox,
	MetricGilarWatson,
	MetricModelingApproach,
	MetricConditionalEntropy,
	MetricPearson,
	MetricSpearman,
	MetricKendall,
	MetricCCMean,
	MetricAsterisk,
	MetricNNDArithmetic,
	MetricNNDGeometric,
	MetricNNDHarmonic,
	MetricNNDMean,
	MetricPercentFit,
	MetricPercentBin,
	MetricGeometricApproach,
}

var metricRegistry = map[string]metricSpec{
	MetricConvexHull:         {fn: convexHullRelativeArea, minPeaks: 3, inCorrMatrix: true},
	MetricBinBox:             {fn: binBoxRatio, minPeaks: 1, inCorrMatrix: true, usesBins: true},
	MetricGilarWatson:        {fn: gilarWatson, minPeaks: 1, inCorrMatrix: true, usesBins: true},
	MetricModelingApproach:   {fn: modelingApproach, minPeaks: 3, inCorrMatrix: true, usesBins: true},
	MetricConditionalEntropy: {fn: conditionalEntropy, minPeaks: 2, inCorrMatrix: true},
	MetricPearson:            {fn: pearsonScore, minPeaks: 3, inCorrMatrix: true},
	MetricSpearman:           {fn: spearmanScore, minPeaks: 3, inCorrMatrix: true},
	MetricKendall:            {fn: kendallScore, minPeaks: 3, inCorrMatrix: true},
	MetricCCMean:             {fn: ccMean, minPeaks: 3, inCorrMatrix: false},
	MetricAsterisk:           {fn: asteriskScore, minPeaks: 3, inCorrMatrix: true},
	MetricNNDArithmetic:      {fn: nndArithmeticMean, minPeaks: 2, inCorrMatrix: false},
	MetricNNDGeometric:       {fn: nndGeometricMean, minPeaks: 2, inCorrMatrix: false},
	MetricNNDHarmonic:        {fn: nndHarmonicMean, minPeaks: 2, inCorrMatrix: false},
	MetricNNDMean:            {fn: nndMean, minPeaks: 2, inCorrMatrix: true},
	MetricPercentFit:         {fn: percentFit, minPeaks: 3, inCorrMatrix: true},
	MetricPercentBin:         {fn: percentBin, minPeaks: 2, inCorrMatrix: true},
	MetricGeometricApproach:  {fn: geometricApproach, minPeaks: 3, inCorrMatrix: true},
}

// MetricNames returns every supported metric name in table-column order.
func MetricNames() []string {
	return append([]string(nil), metricOrder...)
}

// MetricInCorrelationMatrix reports whether a metric participates in the
// metric correlation matrix.
func MetricInCorrelationMatrix(name string) bool {
	spec, ok := metricRegistry[name]
	return ok && spec.inCorrMatrix
}

// MetricResult holds one combination's computed metric values keyed by metric
// name, plus the failures for cells that could not be computed.
type MetricResult struct {
	Combination Combination
	Values      map[string]float64
	Failures    []MetricFailure
}

// MetricEngine evaluates a requested set of orthogonality metrics over one
// combination's paired coordinates. Metrics are stateless functions resolved
// from the registry; adding a metric touches only the registry.
type MetricEngine struct{}

// NewMetricEngine creates a new engine.
func NewMetricEngine() *MetricEngine {
	return &MetricEngine{}
}

// ValidateSelection rejects unknown metric names and a non-positive bin count
// before any work starts.
func (e *MetricEngine) ValidateSelection(metrics []string, cfg MetricConfig) error {
	if len(metrics) == 0 {
		return configurationf("no orthogonality metrics selected")
	}
	needBins := false
	for _, name := range metrics {
		spec, ok := metricRegistry[name]
		if !ok {
			return configurationf("unknown orthogonality metric %q", name)
		}
		if spec.usesBins {
			needBins = true
		}
	}
	if needBins && cfg.Bins <= 0 {
		return configurationf("bin-box count must be a positive integer, got %d", cfg.Bins)
	}
	return nil
}

// Evaluate computes every requested metric for one combination. A failing
// metric is recorded and skipped; it never zeroes the cell and never affects
// the other metrics or combinations.
func (e *MetricEngine) Evaluate(comb Combination, metrics []string, cfg MetricConfig) MetricResult {
	cfg.CapacityA = comb.CapacityA
	cfg.CapacityB = comb.CapacityB

	result := MetricResult{
		Combination: comb,
		Values:      make(map[string]float64, len(metrics)),
	}
	for _, name := range metrics {
		spec, ok := metricRegistry[name]
		if !ok {
			result.Failures = append(result.Failures, MetricFailure{
				Combination: comb.Title(),
				Metric:      name,
				Err:         configurationf("unknown orthogonality metric %q", name),
				Message:     "unknown metric",
			})
			continue
		}
		if comb.PeakCount < spec.minPeaks {
			err := &InsufficientDataError{Metric: name, Needed: spec.minPeaks, Got: comb.PeakCount}
			result.Failures = append(result.Failures, MetricFailure{
				Combination: comb.Title(),
				Metric:      name,
				Err:         err,
				Message:     err.Error(),
			})
			continue
		}
		value, err := spec.fn(comb.X, comb.Y, cfg)
		if err != nil {
			result.Failures = append(result.Failures, MetricFailure{
				Combination: comb.Title(),
				Metric:      name,
				Err:         err,
				Message:     err.Error(),
			})
			continue
		}
		result.Values[name] = value
	}
	return result
}
