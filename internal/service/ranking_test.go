package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoreResult(labelA, labelB string, score, capA, capB float64) ScoreResult {
	return ScoreResult{
		Combination: Combination{
			LabelA: labelA, LabelB: labelB, CapacityA: capA, CapacityB: capB,
		},
		SuggestedScore:    score,
		Score:             score,
		PredictedCapacity: score * capA * capB,
	}
}

func TestRankOrdersByPredictedCapacity(t *testing.T) {
	scores := []ScoreResult{
		scoreResult("A", "B", 0.5, 100, 50), // 2500
		scoreResult("A", "C", 0.9, 100, 80), // 7200
		scoreResult("B", "C", 0.7, 50, 80),  // 2800
	}

	ranked := NewRankingEngine().Rank(scores)
	require.Len(t, ranked, 3)

	assert.Equal(t, "A vs C", ranked[0].Combination)
	assert.Equal(t, "B vs C", ranked[1].Combination)
	assert.Equal(t, "A vs B", ranked[2].Combination)
	for i, e := range ranked {
		assert.Equal(t, i+1, e.Rank)
	}
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].PredictedCapacity, ranked[i].PredictedCapacity)
	}
}

func TestRankTieBreaksByTitle(t *testing.T) {
	scores := []ScoreResult{
		scoreResult("Zeta", "Eta", 0.5, 10, 10),
		scoreResult("Alpha", "Beta", 0.5, 10, 10),
	}

	ranked := NewRankingEngine().Rank(scores)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Alpha vs Beta", ranked[0].Combination)
	assert.Equal(t, "Zeta vs Eta", ranked[1].Combination)
}

func TestRankLeavesInputUntouched(t *testing.T) {
	scores := []ScoreResult{
		scoreResult("A", "B", 0.1, 10, 10),
		scoreResult("A", "C", 0.9, 10, 10),
	}

	NewRankingEngine().Rank(scores)
	assert.Equal(t, "A vs B", scores[0].Combination.Title(), "caller's slice keeps its order")
}

func TestRankEmpty(t *testing.T) {
	ranked := NewRankingEngine().Rank(nil)
	assert.Empty(t, ranked)
}
