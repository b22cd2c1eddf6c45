package rerank

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swipevault/internal/models"
	"swipevault/internal/scoring"
)

func leaf(v float64) Node {
	return Node{Leaf: &v}
}

func TestModel_Score_SimpleSplit(t *testing.T) {
	low := -1.0
	high := 1.0
	tree := Tree{
		Nodes: []Node{
			{Feature: "f_engagement", Threshold: 0.5, Left: 1, Right: 2},
			leaf(low),
			leaf(high),
		},
	}
	m := &Model{
		ModelType:    "xgboost_tree",
		Objective:    "reg:squarederror",
		BaseScore:    0,
		FeatureOrder: []string{"f_engagement"},
		Trees:        []Tree{tree},
	}

	below := m.Score(map[string]float64{"f_engagement": 0.2})
	above := m.Score(map[string]float64{"f_engagement": 0.8})

	assert.Equal(t, low, below)
	assert.Equal(t, high, above)
}

func TestModel_Score_MissingFeatureUsesDefaultLeft(t *testing.T) {
	goLeft := true
	low := -2.0
	high := 2.0
	tree := Tree{
		Nodes: []Node{
			{Feature: "f_unknown", Threshold: 0.5, Left: 1, Right: 2, DefaultLeft: &goLeft},
			leaf(low),
			leaf(high),
		},
	}
	m := &Model{
		ModelType:    "xgboost_tree",
		Objective:    "reg:squarederror",
		FeatureOrder: []string{"f_engagement"},
		Trees:        []Tree{tree},
	}

	score := m.Score(map[string]float64{"f_engagement": 0.9})
	assert.Equal(t, low, score)
}

func TestModel_Score_CyclicTreeReturnsZeroContribution(t *testing.T) {
	tree := Tree{
		Nodes: []Node{
			{Feature: "f_engagement", Threshold: 0.5, Left: 0, Right: 0},
		},
	}
	m := &Model{
		ModelType:    "xgboost_tree",
		Objective:    "reg:squarederror",
		BaseScore:    0.7,
		FeatureOrder: []string{"f_engagement"},
		Trees:        []Tree{tree},
	}

	score := m.Score(map[string]float64{"f_engagement": 0.1})
	assert.Equal(t, 0.7, score)
}

func TestModel_Score_BinaryLogisticAppliesSigmoid(t *testing.T) {
	m := &Model{
		ModelType:    "xgboost_tree",
		Objective:    "binary:logistic",
		BaseScore:    0,
		FeatureOrder: []string{"f_engagement"},
		Trees:        nil,
	}

	score := m.Score(map[string]float64{"f_engagement": 0.1})
	assert.InDelta(t, 0.5, score, 1e-9)
}

func TestMinMaxNormalize_DegenerateAllEqual(t *testing.T) {
	out := minMaxNormalize([]float64{0.3, 0.3, 0.3})
	for _, v := range out {
		assert.Equal(t, 0.5, v)
	}
}

func TestMinMaxNormalize_NonFiniteFallsBackToHalf(t *testing.T) {
	out := minMaxNormalize([]float64{0.1, math.NaN(), 0.9})
	for _, v := range out {
		assert.Equal(t, 0.5, v)
	}
}

func TestMinMaxNormalize_MapsMinToZeroMaxToOne(t *testing.T) {
	out := minMaxNormalize([]float64{2, 4, 6})
	assert.InDelta(t, 0.0, out[0], 1e-9)
	assert.InDelta(t, 0.5, out[1], 1e-9)
	assert.InDelta(t, 1.0, out[2], 1e-9)
}

func TestReranker_Apply_NoModelConfiguredPassesThrough(t *testing.T) {
	r := New(false, "")
	candidates := []*scoring.RankingCandidate{
		{Entry: &models.LibraryEntry{ID: "a"}, BaseScore: 0.4, FinalScore: 0.4},
	}

	result := r.Apply(candidates)

	assert.False(t, result.Applied)
	assert.Nil(t, result.Version)
	assert.Equal(t, 0.4, candidates[0].FinalScore)
}

func TestReranker_Apply_MissingModelFilePassesThrough(t *testing.T) {
	r := New(true, "/nonexistent/path/to/model.json")
	candidates := []*scoring.RankingCandidate{
		{Entry: &models.LibraryEntry{ID: "a"}, BaseScore: 0.4, FinalScore: 0.4},
	}

	result := r.Apply(candidates)

	require.False(t, result.Applied)
	assert.Equal(t, 0.4, candidates[0].FinalScore)
}
