package service

import "sort"

// RankedEntry is one row of the final ranked result table.
type RankedEntry struct {
	Rank              int     `json:"rank"`
	Combination       string  `json:"combination"`
	SuggestedScore    float64 `json:"suggested_score"`
	ComputedScore     float64 `json:"computed_score,omitempty"`
	PredictedCapacity float64 `json:"predicted_2d_peak_capacity"`
}

// RankingEngine orders combinations by predicted 2D peak capacity.
type RankingEngine struct{}

// NewRankingEngine creates a new engine.
func NewRankingEngine() *RankingEngine {
	return &RankingEngine{}
}

// Rank sorts descending by predicted capacity, breaking ties by descending
// score and then by combination title so equal inputs always rank the same
// way. Ranks are consecutive integers starting at 1.
func (e *RankingEngine) Rank(scores []ScoreResult) []RankedEntry {
	sorted := append([]ScoreResult(nil), scores...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].PredictedCapacity != sorted[j].PredictedCapacity {
			return sorted[i].PredictedCapacity > sorted[j].PredictedCapacity
		}
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Combination.Title() < sorted[j].Combination.Title()
	})

	entries := make([]RankedEntry, len(sorted))
	for i, s := range sorted {
		entries[i] = RankedEntry{
			Rank:              i + 1,
			Combination:       s.Combination.Title(),
			SuggestedScore:    s.SuggestedScore,
			ComputedScore:     s.ComputedScore,
			PredictedCapacity: s.PredictedCapacity,
		}
	}
	return entries
}
