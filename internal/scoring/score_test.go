package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swipevault/internal/models"
)

func newEntry(id string, categories []string) *models.LibraryEntry {
	return &models.LibraryEntry{
		ID:          id,
		ContentType: models.ContentTypeArticle,
		Categories:  categories,
		Status:      models.StatusActive,
		AddedAt:     time.Now().Add(-48 * time.Hour),
	}
}

func TestScore_IsPermutationOfInput(t *testing.T) {
	now := time.Now()
	entries := []*models.LibraryEntry{
		newEntry("a", []string{"Tech"}),
		newEntry("b", []string{"Music"}),
		newEntry("c", []string{"News"}),
	}

	results := Score(entries, SessionContext{}, nil, now)

	require.Len(t, results, len(entries))
	seen := make(map[string]bool)
	for _, r := range results {
		seen[r.Entry.ID] = true
	}
	for _, e := range entries {
		assert.True(t, seen[e.ID], "missing entry %s from results", e.ID)
	}
}

func TestScore_FeaturesHaveExactly21FiniteBoundedKeys(t *testing.T) {
	now := time.Now()
	entries := []*models.LibraryEntry{
		newEntry("a", []string{"Tech", "AI"}),
	}

	results := Score(entries, SessionContext{CardsShown: 3, EngagedCategories: []string{"Tech"}}, nil, now)
	require.Len(t, results, 1)

	features := results[0].Features
	assert.Len(t, features, len(FeatureNames))

	boundedKeys := map[string]bool{
		"f_engagement": true, "f_semantic": true, "f_session": true, "f_time_pref": true,
		"f_freshness": true, "f_exploration": true, "f_shown_count_norm": true, "f_open_rate": true,
		"f_days_since_added_norm": true, "f_is_liked": true, "f_is_unseen": true,
		"f_category_count_norm": true, "f_has_embedding": true, "f_content_type_prior": true,
		"f_session_momentum": true, "f_session_skip_pressure": true, "f_session_fatigue": true,
		"f_ucb_uncertainty": true, "f_category_novelty": true,
	}

	for _, name := range FeatureNames {
		v, ok := features[name]
		require.True(t, ok, "missing feature %s", name)
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "feature %s is not finite", name)
		if boundedKeys[name] {
			assert.GreaterOrEqual(t, v, 0.0, "feature %s below 0", name)
			assert.LessOrEqual(t, v, 1.0, "feature %s above 1", name)
		}
	}
}

func TestDeriveWeights_SumsToOneAndNonNegative(t *testing.T) {
	cases := []struct {
		hasEmbeddings, hasTimePrefs bool
		cardsShown                  int
	}{
		{true, true, 0},
		{false, true, 10},
		{true, false, 25},
		{false, false, 0},
		{true, true, 30},
	}

	for _, c := range cases {
		w := deriveWeights(c.hasEmbeddings, c.hasTimePrefs, c.cardsShown)
		sum := w.Engagement + w.Semantic + w.Session + w.TimePref + w.Freshness + w.Exploration
		assert.InDelta(t, 1.0, sum, 1e-9)
		assert.GreaterOrEqual(t, w.Engagement, 0.0)
		assert.GreaterOrEqual(t, w.Semantic, 0.0)
		assert.GreaterOrEqual(t, w.Session, 0.0)
		assert.GreaterOrEqual(t, w.TimePref, 0.0)
		assert.GreaterOrEqual(t, w.Freshness, 0.0)
		assert.GreaterOrEqual(t, w.Exploration, 0.0)
	}
}

// S1 cold-start ordering: three unseen, identical entries all score the same
// and freshness/exploration dominate since engagement is neutral.
func TestScore_S1ColdStartOrdering(t *testing.T) {
	now := time.Now()
	addedAt := now.Add(-48 * time.Hour)

	entries := make([]*models.LibraryEntry, 3)
	for i := range entries {
		entries[i] = &models.LibraryEntry{
			ID:          string(rune('a' + i)),
			ContentType: models.ContentTypeArticle,
			Categories:  []string{"Tech"},
			Status:      models.StatusActive,
			AddedAt:     addedAt,
		}
	}

	results := Score(entries, SessionContext{}, nil, now)
	require.Len(t, results, 3)

	for _, r := range results {
		assert.InDelta(t, 0.58, r.Breakdown.Engagement, 1e-9)
	}

	first := results[0].FinalScore
	for _, r := range results[1:] {
		assert.InDelta(t, first, r.FinalScore, 1e-9)
	}
}

// S2 session momentum: an "AI" candidate outranks an otherwise-identical
// "Music" candidate once the session has engaged "AI" repeatedly, and the
// momentum feature matches the documented closed form.
func TestScore_S2SessionMomentum(t *testing.T) {
	now := time.Now()
	aiEntry := newEntry("ai", []string{"AI"})
	musicEntry := newEntry("music", []string{"Music"})

	session := SessionContext{
		EngagedCategories: []string{"AI", "AI", "AI"},
		CardsShown:        6,
	}

	results := Score([]*models.LibraryEntry{aiEntry, musicEntry}, session, nil, now)
	require.Len(t, results, 2)

	var aiResult, musicResult *RankingCandidate
	for _, r := range results {
		if r.Entry.ID == "ai" {
			aiResult = r
		} else {
			musicResult = r
		}
	}
	require.NotNil(t, aiResult)
	require.NotNil(t, musicResult)

	assert.Greater(t, aiResult.FinalScore, musicResult.FinalScore)

	expectedMomentumFeature := clamp01((math.Pow(0.92, 2) + 0.92 + 1) / 5)
	assert.InDelta(t, expectedMomentumFeature, aiResult.Features["f_session_momentum"], 1e-9)
}

// S3 fatigue threshold: once a category has been engaged enough times this
// session, fatigue drags a same-category candidate below a fresh lane.
func TestScore_S3FatigueThreshold(t *testing.T) {
	now := time.Now()
	aiEntry := newEntry("ai", []string{"AI"})
	techEntry := newEntry("tech", []string{"Tech"})

	engaged := make([]string, 6)
	for i := range engaged {
		engaged[i] = "AI"
	}
	session := SessionContext{
		EngagedCategories: engaged,
		CardsShown:        6,
	}

	results := Score([]*models.LibraryEntry{aiEntry, techEntry}, session, nil, now)
	require.Len(t, results, 2)

	var aiResult, techResult *RankingCandidate
	for _, r := range results {
		if r.Entry.ID == "ai" {
			aiResult = r
		} else {
			techResult = r
		}
	}
	require.NotNil(t, aiResult)
	require.NotNil(t, techResult)

	assert.Less(t, aiResult.FinalScore, techResult.FinalScore)
}

func TestSemanticSignal_NeutralWithoutEmbeddings(t *testing.T) {
	assert.Equal(t, 0.5, semanticSignal(nil, nil))
	assert.Equal(t, 0.5, semanticSignal([]float64{1, 0}, nil))
}

func TestSemanticSignal_IdenticalVectorsScoreMax(t *testing.T) {
	v := []float64{1, 0, 0}
	score := semanticSignal(v, [][]float64{v})
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestFreshnessSignal_ForgottenGemWindowBoost(t *testing.T) {
	now := time.Now()
	e := &models.LibraryEntry{AddedAt: now.Add(-30 * 24 * time.Hour)}
	score := freshnessSignal(e, now)
	assert.InDelta(t, 0.88, score, 1e-9)
}
