package service

// ScoreOptions selects how the final orthogonality score of a combination is
// derived: the suggested score from the redundancy groups, or the unweighted
// mean of a user-chosen metric subset.
type ScoreOptions struct {
	UseSuggested    bool
	ComputedMetrics []string
}

// ScoreResult carries a combination's aggregate orthogonality scores and the
// hypothetical 2D peak capacity they predict.
type ScoreResult struct {
	Combination       Combination
	SuggestedScore    float64
	ComputedScore     float64
	HasComputed       bool
	Score             float64
	PredictedCapacity float64
}

// ScoreEngine aggregates grouped metric values into per-combination scores
// and derives the predicted 2D peak capacity.
type ScoreEngine struct{}

// NewScoreEngine creates a new engine.
func NewScoreEngine() *ScoreEngine {
	return &ScoreEngine{}
}

// Score computes the suggested score (mean over groups of each group's mean
// metric value for this combination), optionally the computed score over a
// user-selected subset, and the predicted capacity score * nA * nB.
func (e *ScoreEngine) Score(results []MetricResult, groups []MetricGroup, opts ScoreOptions) ([]ScoreResult, error) {
	if len(groups) == 0 {
		return nil, validationf("no redundancy groups available; run the correlation analysis first")
	}
	if !opts.UseSuggested && len(opts.ComputedMetrics) == 0 {
		return nil, configurationf("no metrics selected for the computed score")
	}
	for _, name := range opts.ComputedMetrics {
		if _, ok := metricRegistry[name]; !ok {
			return nil, configurationf("unknown orthogonality metric %q in computed-score selection", name)
		}
	}

	scores := make([]ScoreResult, 0, len(results))
	for _, r := range results {
		comb := r.Combination
		if comb.CapacityA <= 0 || comb.CapacityB <= 0 {
			return nil, configurationf("combination %q has non-positive peak capacity (%g, %g)",
				comb.Title(), comb.CapacityA, comb.CapacityB)
		}

		suggested, err := suggestedScore(r, groups)
		if err != nil {
			return nil, err
		}

		sr := ScoreResult{Combination: comb, SuggestedScore: suggested, Score: suggested}
		if len(opts.ComputedMetrics) > 0 {
			computed, err := meanOf(r, opts.ComputedMetrics)
			if err != nil {
				return nil, err
			}
			sr.ComputedScore = computed
			sr.HasComputed = true
			if !opts.UseSuggested {
				sr.Score = computed
			}
		}
		sr.PredictedCapacity = sr.Score * comb.CapacityA * comb.CapacityB
		scores = append(scores, sr)
	}
	return scores, nil
}

// suggestedScore averages, across groups, the mean value this combination
// achieved on each group's metrics. Metrics that failed for this combination
// drop out of their group's mean; a group with no surviving metric drops out
// of the outer mean.
func suggestedScore(r MetricResult, groups []MetricGroup) (float64, error) {
	sum, used := 0.0, 0
	for _, g := range groups {
		gSum, gN := 0.0, 0
		for _, name := range g.Metrics {
			if v, ok := r.Values[name]; ok {
				gSum += v
				gN++
			}
		}
		if gN == 0 {
			continue
		}
		sum += gSum / float64(gN)
		used++
	}
	if used == 0 {
		return 0, validationf("combination %q has no metric values in any redundancy group", r.Combination.Title())
	}
	return sum / float64(used), nil
}

// meanOf averages the combination's values over an explicit metric subset.
// Every selected metric must have been computed for the combination.
func meanOf(r MetricResult, metrics []string) (float64, error) {
	sum := 0.0
	for _, name := range metrics {
		v, ok := r.Values[name]
		if !ok {
			return 0, validationf("combination %q has no computed value for metric %q", r.Combination.Title(), name)
		}
		sum += v
	}
	return sum / float64(len(metrics)), nil
}
