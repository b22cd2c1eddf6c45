// scoring/types.go
package scoring

import "swipevault/internal/models"

// SessionContext carries the caller's swipe-session state into scoring:
// what has already been engaged with or skipped this session.
type SessionContext struct {
	EngagedLinkIDs     []string
	EngagedCategories  []string
	SkippedCategories  []string
	EngagedEmbeddings  [][]float64
	CardsShown         int
}

// Weights are the six per-signal contributions to the base score, always
// summing to 1 after derivation.
type Weights struct {
	Engagement  float64
	Semantic    float64
	Session     float64
	TimePref    float64
	Freshness   float64
	Exploration float64
}

// Breakdown exposes the raw per-signal scores ([0,1] each) alongside the
// weighted base score, for debugging and the training-dataset export.
type Breakdown struct {
	Engagement  float64
	Semantic    float64
	Session     float64
	TimePref    float64
	Freshness   float64
	Exploration float64
}

// RankingCandidate is one scored entry, in input order until Score sorts it.
type RankingCandidate struct {
	Entry       *models.LibraryEntry
	BaseScore   float64
	RerankScore *float64
	FinalScore  float64
	Breakdown   Breakdown
	Features    map[string]float64
}

// FeatureNames lists the exact 21 keys every Features map must contain.
var FeatureNames = []string{
	"f_engagement", "f_semantic", "f_session", "f_time_pref", "f_freshness", "f_exploration",
	"f_shown_count_norm", "f_open_rate", "f_days_since_added_norm", "f_is_liked", "f_is_unseen",
	"f_category_count_norm", "f_has_embedding", "f_content_type_prior", "f_session_momentum",
	"f_session_skip_pressure", "f_session_fatigue", "f_session_same_lane_boost",
	"f_ucb_uncertainty", "f_category_novelty", "f_session_novelty",
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
