package models

// Request and response types for the tabular HTTP boundary. The core engine
// never sees these; handlers translate them to and from the service types.

// RetentionTableRequest carries the retention-time table: compounds as rows,
// condition labels as columns. A null cell is a missing retention time for
// that compound under that condition.
type RetentionTableRequest struct {
	Labels    []string     `json:"labels"`
	Compounds []string     `json:"compounds,omitempty"`
	Rows      [][]*float64 `json:"rows"`
}

// PeakCapacityRequest carries the experimental 1D peak capacity per condition
// label. Labels must match the retention table byte-for-byte.
type PeakCapacityRequest struct {
	Capacities map[string]float64 `json:"capacities"`
}

// NormalizationParamsRequest carries the per-condition void time (Rt0) and
// gradient-end time used by the void-max and wosel normalizations.
type NormalizationParamsRequest struct {
	VoidTimes map[string]float64 `json:"void_times,omitempty"`
	EndTimes  map[string]float64 `json:"end_times,omitempty"`
}

// NormalizeRequest selects the normalization method for the current session.
type NormalizeRequest struct {
	Method string `json:"method"`
}

// NormalizedTableResponse is the rescaled retention table, same shape as the
// input table.
type NormalizedTableResponse struct {
	Method string       `json:"method"`
	Labels []string     `json:"labels"`
	Rows   [][]*float64 `json:"rows"`
}

// CombinationRow is one candidate 2D separation.
type CombinationRow struct {
	Set                  int     `json:"set"`
	Combination          string  `json:"combination"`
	PeakCount            int     `json:"peak_count"`
	HypotheticalCapacity float64 `json:"hypothetical_2d_peak_capacity"`
}

// CombinationsResponse lists all C(n,2) candidate pairs.
type CombinationsResponse struct {
	Count        int              `json:"count"`
	Combinations []CombinationRow `json:"combinations"`
}

// MetricsRequest selects the metrics to compute and the bin-box count for the
// grid-based ones.
type MetricsRequest struct {
	Metrics []string `json:"metrics"`
	Bins    int      `json:"bins"`
}

// MetricFailureRow reports one Combination×metric cell that could not be
// computed; the rest of the table is unaffected.
type MetricFailureRow struct {
	Combination string `json:"combination"`
	Metric      string `json:"metric"`
	Message     string `json:"message"`
}

// MetricTableRow is one combination's computed metric values keyed by metric
// name.
type MetricTableRow struct {
	Set         int                `json:"set"`
	Combination string             `json:"combination"`
	Values      map[string]float64 `json:"values"`
}

// MetricTableResponse is the OM result table.
type MetricTableResponse struct {
	Metrics  []string           `json:"metrics"`
	Rows     []MetricTableRow   `json:"rows"`
	Failures []MetricFailureRow `json:"failures,omitempty"`
}

// CorrelationRequest sets the redundancy-grouping parameters.
type CorrelationRequest struct {
	Threshold float64 `json:"threshold"`
	Tolerance float64 `json:"tolerance"`
}

// CorrelationGroup is one redundancy group of metrics.
type CorrelationGroup struct {
	ID      string   `json:"group"`
	Metrics []string `json:"metrics"`
}

// CorrelationResponse carries the metric correlation matrix, the redundancy
// groups, and a clustering-derived row order for heatmap display.
type CorrelationResponse struct {
	Metrics      []string           `json:"metrics"`
	Matrix       [][]float64        `json:"matrix"`
	Groups       []CorrelationGroup `json:"groups"`
	DisplayOrder []string           `json:"display_order"`
}

// ScoreRequest selects the scoring mode: the suggested score derived from the
// redundancy groups, or the mean of an explicit metric subset.
type ScoreRequest struct {
	UseSuggested    bool     `json:"use_suggested"`
	ComputedMetrics []string `json:"computed_metrics,omitempty"`
}

// ResultRow is one row of the final ranked table.
type ResultRow struct {
	Rank              int     `json:"rank"`
	Combination       string  `json:"combination"`
	SuggestedScore    float64 `json:"suggested_score"`
	ComputedScore     float64 `json:"computed_score,omitempty"`
	PredictedCapacity float64 `json:"predicted_2d_peak_capacity"`
}

// ResultsResponse is the ranked result table.
type ResultsResponse struct {
	Results []ResultRow `json:"results"`
}

// ErrorResponse names what failed and why; failures are never silently
// coerced into values.
type ErrorResponse struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}
