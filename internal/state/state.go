package state

import (
	"sync"

	"comboselect/internal/service"
)

// AppState holds the current analysis session: the loaded input tables, the
// active parameters, and the derived artifacts. Every derived artifact is a
// pure function of the inputs above it, so setters invalidate everything
// downstream of what they change; a stale grouping or score can never be read
// back after a parameter changes.
type AppState struct {
	mu sync.RWMutex

	// Inputs, immutable once set.
	retention  *service.RetentionDataset
	capacities service.PeakCapacities
	normParams service.NormalizationParams

	// Parameters of the derived artifacts currently held.
	method    service.NormalizationMethod
	metrics   []string
	bins      int
	threshold float64
	tolerance float64

	// Derived artifacts.
	normalized   *service.NormalizedDataset
	combinations []service.Combination
	results      []service.MetricResult
	matrix       *service.CorrelationMatrix
	groups       []service.MetricGroup
	displayOrder []string
	scores       []service.ScoreResult
	ranked       []service.RankedEntry
}

// New creates an empty session.
func New() *AppState {
	return &AppState{}
}

// SetRetention installs a new retention-time table and drops every derived
// artifact.
func (s *AppState) SetRetention(ds *service.RetentionDataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retention = ds
	s.invalidateFromNormalization()
}

// SetCapacities installs the peak-capacity table. Combinations and everything
// after them depend on it.
func (s *AppState) SetCapacities(c service.PeakCapacities) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capacities = c
	s.invalidateFromCombinations()
}

// SetNormalizationParams installs per-condition void and gradient-end times.
func (s *AppState) SetNormalizationParams(p service.NormalizationParams) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.normParams = p
	s.invalidateFromNormalization()
}

// Retention returns the loaded retention table, or nil.
func (s *AppState) Retention() *service.RetentionDataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.retention
}

// Capacities returns the loaded peak-capacity table.
func (s *AppState) Capacities() service.PeakCapacities {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.capacities
}

// NormalizationParams returns the loaded void/end-time parameters.
func (s *AppState) NormalizationParams() service.NormalizationParams {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.normParams
}

// SetNormalized stores the normalized table for the given method, discarding
// metric results and everything after them.
func (s *AppState) SetNormalized(ds *service.NormalizedDataset, method service.NormalizationMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.normalized = ds
	s.method = method
	s.invalidateFromCombinations()
}

// Normalized returns the current normalized dataset, or nil.
func (s *AppState) Normalized() *service.NormalizedDataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.normalized
}

// SetCombinations stores the enumerated pairs, discarding metric results and
// everything after them.
func (s *AppState) SetCombinations(combos []service.Combination) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.combinations = combos
	s.invalidateFromMetrics()
}

// Combinations returns the current pair list.
func (s *AppState) Combinations() []service.Combination {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.combinations
}

// SetMetricResults stores metric results for a metric selection and bin
// count, discarding correlation and score artifacts.
func (s *AppState) SetMetricResults(results []service.MetricResult, metrics []string, bins int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = results
	s.metrics = append([]string(nil), metrics...)
	s.bins = bins
	s.invalidateFromCorrelation()
}

// MetricResults returns the current metric results and the selection that
// produced them.
func (s *AppState) MetricResults() ([]service.MetricResult, []string, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results, s.metrics, s.bins
}

// SetCorrelation stores the correlation matrix, grouping and display order
// for the given threshold parameters, discarding scores and ranking.
func (s *AppState) SetCorrelation(matrix *service.CorrelationMatrix, groups []service.MetricGroup, order []string, threshold, tolerance float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matrix = matrix
	s.groups = groups
	s.displayOrder = order
	s.threshold = threshold
	s.tolerance = tolerance
	s.invalidateFromScores()
}

// Correlation returns the current matrix, groups and display order.
func (s *AppState) Correlation() (*service.CorrelationMatrix, []service.MetricGroup, []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.matrix, s.groups, s.displayOrder
}

// SetScores stores score results and their ranking.
func (s *AppState) SetScores(scores []service.ScoreResult, ranked []service.RankedEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores = scores
	s.ranked = ranked
}

// Scores returns the current score results.
func (s *AppState) Scores() []service.ScoreResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scores
}

// Ranked returns the current ranked result table.
func (s *AppState) Ranked() []service.RankedEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ranked
}

func (s *AppState) invalidateFromNormalization() {
	s.normalized = nil
	s.method = ""
	s.invalidateFromCombinations()
}

func (s *AppState) invalidateFromCombinations() {
	s.combinations = nil
	s.invalidateFromMetrics()
}

func (s *AppState) invalidateFromMetrics() {
	s.results = nil
	s.metrics = nil
	s.bins = 0
	s.invalidateFromCorrelation()
}

func (s *AppState) invalidateFromCorrelation() {
	s.matrix = nil
	s.groups = nil
	s.displayOrder = nil
	s.threshold = 0
	s.tolerance = 0
	s.invalidateFromScores()
}

func (s *AppState) invalidateFromScores() {
	s.scores = nil
	s.ranked = nil
}
