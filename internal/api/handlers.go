package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"comboselect/internal/analysis"
	"comboselect/internal/config"
	"comboselect/internal/models"
	"comboselect/internal/service"
	"comboselect/internal/state"
)

// Handler owns the HTTP boundary of the evaluation session. It translates
// tabular JSON payloads into service types, drives the pipeline stages, and
// keeps every derived artifact in the shared session state so later stages
// can pick up where earlier ones stopped.
type Handler struct {
	State    *state.AppState
	Engine   *service.Engine
	CSV      *analysis.CSVService
	Defaults config.DefaultsConfig
	Log      *zap.Logger

	normalizer  *service.Normalizer
	generator   *service.CombinationGenerator
	correlation *service.CorrelationAnalyzer
	score       *service.ScoreEngine
	ranking     *service.RankingEngine
}

func NewHandler(st *state.AppState, defaults config.DefaultsConfig, log *zap.Logger) *Handler {
	return &Handler{
		State:       st,
		Engine:      service.NewEngine(),
		CSV:         analysis.NewCSVService(),
		Defaults:    defaults,
		Log:         log,
		normalizer:  service.NewNormalizer(),
		generator:   service.NewCombinationGenerator(),
		correlation: service.NewCorrelationAnalyzer(),
		score:       service.NewScoreEngine(),
		ranking:     service.NewRankingEngine(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HealthCheck)

	r.Post("/api/retention", h.StoreRetention)
	r.Post("/api/retention/csv", h.UploadRetentionCSV)
	r.Post("/api/peak-capacity", h.StorePeakCapacities)
	r.Post("/api/peak-capacity/csv", h.UploadCapacityCSV)
	r.Post("/api/normalization-params", h.StoreNormalizationParams)
	r.Post("/api/normalize", h.Normalize)
	r.Get("/api/combinations", h.GetCombinations)
	r.Get("/api/metrics", h.ListMetrics)
	r.Post("/api/metrics", h.EvaluateMetrics)
	r.Post("/api/correlation", h.Correlate)
	r.Post("/api/score", h.Score)
	r.Get("/api/results", h.GetResults)
}

// ============================================================================
// Health
// ============================================================================

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

// ============================================================================
// Input tables
// ============================================================================

// StoreRetention loads the retention-time table and invalidates every
// artifact derived from the previous table.
func (h *Handler) StoreRetention(w http.ResponseWriter, r *http.Request) {
	var req models.RetentionTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid JSON body")
		return
	}

	columns := make(map[string][]float64, len(req.Labels))
	for _, label := range req.Labels {
		columns[label] = make([]float64, 0, len(req.Rows))
	}
	for i, row := range req.Rows {
		if len(row) != len(req.Labels) {
			h.Log.Warn("rejecting ragged retention table",
				zap.Int("row", i), zap.Int("cells", len(row)), zap.Int("labels", len(req.Labels)))
			h.badRequest(w, "retention table row length does not match the label count")
			return
		}
		for j, label := range req.Labels {
			if row[j] == nil {
				columns[label] = append(columns[label], service.Missing)
			} else {
				columns[label] = append(columns[label], *row[j])
			}
		}
	}

	ds, err := service.NewRetentionDataset(req.Labels, columns)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.State.SetRetention(ds)

	h.Log.Info("retention table loaded",
		zap.Int("conditions", ds.NumConditions()),
		zap.Int("compounds", ds.NumCompounds()))
	h.respondJSON(w, http.StatusOK, map[string]int{
		"conditions": ds.NumConditions(),
		"compounds":  ds.NumCompounds(),
	})
}

// UploadRetentionCSV loads the retention-time table from a CSV body with the
// layout "compound, <condition 1>, <condition 2>, ...".
func (h *Handler) UploadRetentionCSV(w http.ResponseWriter, r *http.Request) {
	table, err := h.CSV.ParseRetentionTable(r.Body)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	ds, err := service.NewRetentionDataset(table.Labels, table.Columns)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.State.SetRetention(ds)

	h.Log.Info("retention table loaded from CSV",
		zap.Int("conditions", ds.NumConditions()),
		zap.Int("compounds", ds.NumCompounds()))
	h.respondJSON(w, http.StatusOK, map[string]int{
		"conditions": ds.NumConditions(),
		"compounds":  ds.NumCompounds(),
	})
}

// UploadCapacityCSV loads the peak-capacity table from a two-column CSV body.
func (h *Handler) UploadCapacityCSV(w http.ResponseWriter, r *http.Request) {
	capacities, err := h.CSV.ParseCapacityTable(r.Body)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	if len(capacities) == 0 {
		h.badRequest(w, "peak-capacity table is empty")
		return
	}
	h.State.SetCapacities(capacities)
	h.respondJSON(w, http.StatusOK, map[string]int{"conditions": len(capacities)})
}

// StorePeakCapacities loads the experimental 1D peak capacity per condition.
func (h *Handler) StorePeakCapacities(w http.ResponseWriter, r *http.Request) {
	var req models.PeakCapacityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid JSON body")
		return
	}
	if len(req.Capacities) == 0 {
		h.badRequest(w, "peak-capacity table is empty")
		return
	}
	h.State.SetCapacities(service.PeakCapacities(req.Capacities))
	h.respondJSON(w, http.StatusOK, map[string]int{"conditions": len(req.Capacities)})
}

// StoreNormalizationParams loads the per-condition void and gradient-end
// times used by the void-max and wosel normalizations.
func (h *Handler) StoreNormalizationParams(w http.ResponseWriter, r *http.Request) {
	var req models.NormalizationParamsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid JSON body")
		return
	}
	h.State.SetNormalizationParams(service.NormalizationParams{
		VoidTimes: req.VoidTimes,
		EndTimes:  req.EndTimes,
	})
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "stored"})
}

// ============================================================================
// Pipeline stages
// ============================================================================

// Normalize rescales the loaded retention table onto [0,1] with the requested
// method and stores the result for combination generation.
func (h *Handler) Normalize(w http.ResponseWriter, r *http.Request) {
	var req models.NormalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid JSON body")
		return
	}
	if req.Method == "" {
		req.Method = h.Defaults.NormalizationMethod
	}
	method, err := service.ParseNormalizationMethod(req.Method)
	if err != nil {
		h.respondError(w, err)
		return
	}

	ds := h.State.Retention()
	if ds == nil {
		h.badRequest(w, "no retention table loaded")
		return
	}

	normalized, err := h.normalizer.Normalize(ds, method, h.State.NormalizationParams())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.State.SetNormalized(normalized, method)

	h.Log.Info("retention times normalized", zap.String("method", string(method)))
	h.respondJSON(w, http.StatusOK, normalizedTable(normalized))
}

// GetCombinations enumerates the C(n,2) candidate 2D separations from the
// normalized table and the peak-capacity table.
func (h *Handler) GetCombinations(w http.ResponseWriter, r *http.Request) {
	combos, err := h.generator.Generate(h.State.Normalized(), h.State.Capacities())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.State.SetCombinations(combos)

	resp := models.CombinationsResponse{
		Count:        len(combos),
		Combinations: make([]models.CombinationRow, 0, len(combos)),
	}
	for _, c := range combos {
		resp.Combinations = append(resp.Combinations, models.CombinationRow{
			Set:                  c.Index,
			Combination:          c.Title(),
			PeakCount:            c.PeakCount,
			HypotheticalCapacity: c.HypotheticalCapacity,
		})
	}
	h.Log.Info("combinations generated", zap.Int("count", len(combos)))
	h.respondJSON(w, http.StatusOK, resp)
}

// ListMetrics names the available orthogonality metrics in display order.
func (h *Handler) ListMetrics(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string][]string{"metrics": service.MetricNames()})
}

// EvaluateMetrics computes the selected orthogonality metrics over every
// stored combination. Cells that cannot be computed come back as failures;
// they are never silently zeroed.
func (h *Handler) EvaluateMetrics(w http.ResponseWriter, r *http.Request) {
	var req models.MetricsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid JSON body")
		return
	}
	if len(req.Metrics) == 0 {
		req.Metrics = service.MetricNames()
	}
	if req.Bins == 0 {
		req.Bins = h.Defaults.BinCount
	}

	combos := h.State.Combinations()
	if combos == nil {
		h.badRequest(w, "no combinations generated")
		return
	}

	cfg := service.MetricConfig{Bins: req.Bins}
	results, err := h.Engine.EvaluateMetrics(r.Context(), combos, req.Metrics, cfg)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.State.SetMetricResults(results, req.Metrics, req.Bins)

	resp := models.MetricTableResponse{
		Metrics: req.Metrics,
		Rows:    make([]models.MetricTableRow, 0, len(results)),
	}
	for _, res := range results {
		resp.Rows = append(resp.Rows, models.MetricTableRow{
			Set:         res.Combination.Index,
			Combination: res.Combination.Title(),
			Values:      res.Values,
		})
		for _, f := range res.Failures {
			resp.Failures = append(resp.Failures, models.MetricFailureRow{
				Combination: f.Combination,
				Metric:      f.Metric,
				Message:     f.Message,
			})
		}
	}
	h.Log.Info("metrics evaluated",
		zap.Int("combinations", len(results)),
		zap.Int("metrics", len(req.Metrics)),
		zap.Int("failures", len(resp.Failures)))
	h.respondJSON(w, http.StatusOK, resp)
}

// Correlate builds the metric redundancy matrix and partitions the metrics
// into correlation groups at the requested threshold.
func (h *Handler) Correlate(w http.ResponseWriter, r *http.Request) {
	req := models.CorrelationRequest{
		Threshold: h.Defaults.CorrelationThreshold,
		Tolerance: h.Defaults.ThresholdTolerance,
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.badRequest(w, "invalid JSON body")
			return
		}
	}

	results, metrics, _ := h.State.MetricResults()
	if results == nil {
		h.badRequest(w, "no metric results computed")
		return
	}

	matrix, err := h.correlation.BuildMatrix(results, metrics)
	if err != nil {
		h.respondError(w, err)
		return
	}
	groups, err := h.correlation.Group(matrix, req.Threshold, req.Tolerance)
	if err != nil {
		h.respondError(w, err)
		return
	}
	order := h.correlation.DisplayOrder(matrix)
	h.State.SetCorrelation(matrix, groups, order, req.Threshold, req.Tolerance)

	resp := models.CorrelationResponse{
		Metrics:      matrix.Metrics,
		Matrix:       make([][]float64, len(matrix.Metrics)),
		Groups:       make([]models.CorrelationGroup, 0, len(groups)),
		DisplayOrder: order,
	}
	for i := range matrix.Metrics {
		row := make([]float64, len(matrix.Metrics))
		for j := range matrix.Metrics {
			row[j] = matrix.At(i, j)
		}
		resp.Matrix[i] = row
	}
	for _, g := range groups {
		resp.Groups = append(resp.Groups, models.CorrelationGroup{ID: g.ID, Metrics: g.Metrics})
	}
	h.Log.Info("correlation groups built",
		zap.Float64("threshold", req.Threshold),
		zap.Int("groups", len(groups)))
	h.respondJSON(w, http.StatusOK, resp)
}

// Score derives each combination's orthogonality score from the redundancy
// groups (or a chosen metric subset), ranks by predicted 2D peak capacity,
// and stores the ranked table.
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	req := models.ScoreRequest{UseSuggested: true}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.badRequest(w, "invalid JSON body")
			return
		}
	}

	results, _, _ := h.State.MetricResults()
	if results == nil {
		h.badRequest(w, "no metric results computed")
		return
	}
	_, groups, _ := h.State.Correlation()

	scores, err := h.score.Score(results, groups, service.ScoreOptions{
		UseSuggested:    req.UseSuggested,
		ComputedMetrics: req.ComputedMetrics,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	ranked := h.ranking.Rank(scores)
	h.State.SetScores(scores, ranked)

	h.Log.Info("combinations scored and ranked", zap.Int("count", len(ranked)))
	h.respondJSON(w, http.StatusOK, rankedTable(ranked))
}

// GetResults returns the last ranked result table.
func (h *Handler) GetResults(w http.ResponseWriter, r *http.Request) {
	ranked := h.State.Ranked()
	if ranked == nil {
		h.badRequest(w, "no scored results available")
		return
	}
	h.respondJSON(w, http.StatusOK, rankedTable(ranked))
}

// ============================================================================
// Helpers
// ============================================================================

func normalizedTable(ds *service.NormalizedDataset) models.NormalizedTableResponse {
	labels := ds.Labels()
	resp := models.NormalizedTableResponse{
		Method: string(ds.Method),
		Labels: labels,
		Rows:   make([][]*float64, ds.NumCompounds()),
	}
	columns := make([][]float64, len(labels))
	for j, label := range labels {
		columns[j], _ = ds.Column(label)
	}
	for i := range resp.Rows {
		row := make([]*float64, len(labels))
		for j := range labels {
			if v := columns[j][i]; !math.IsNaN(v) {
				value := v
				row[j] = &value
			}
		}
		resp.Rows[i] = row
	}
	return resp
}

func rankedTable(ranked []service.RankedEntry) models.ResultsResponse {
	resp := models.ResultsResponse{Results: make([]models.ResultRow, 0, len(ranked))}
	for _, e := range ranked {
		resp.Results = append(resp.Results, models.ResultRow{
			Rank:              e.Rank,
			Combination:       e.Combination,
			SuggestedScore:    e.SuggestedScore,
			ComputedScore:     e.ComputedScore,
			PredictedCapacity: e.PredictedCapacity,
		})
	}
	sort.SliceStable(resp.Results, func(i, j int) bool { return resp.Results[i].Rank < resp.Results[j].Rank })
	return resp
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Log.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) badRequest(w http.ResponseWriter, msg string) {
	h.respondJSON(w, http.StatusBadRequest, models.ErrorResponse{Kind: "validation", Error: msg})
}

// respondError maps the service error taxonomy onto HTTP statuses: bad input
// and bad parameters are 400, a dataset too small for a computation is 422,
// anything else is 500.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var (
		validation    *service.ValidationError
		configuration *service.ConfigurationError
		insufficient  *service.InsufficientDataError
	)
	switch {
	case errors.As(err, &validation):
		h.respondJSON(w, http.StatusBadRequest, models.ErrorResponse{Kind: "validation", Error: err.Error()})
	case errors.As(err, &configuration):
		h.respondJSON(w, http.StatusBadRequest, models.ErrorResponse{Kind: "configuration", Error: err.Error()})
	case errors.As(err, &insufficient):
		h.respondJSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{Kind: "insufficient_data", Error: err.Error()})
	default:
		h.Log.Error("unexpected error", zap.Error(err))
		h.respondJSON(w, http.StatusInternalServerError, models.ErrorResponse{Kind: "internal", Error: err.Error()})
	}
}
