// scoring/score.go
package scoring

import (
	"math"
	"sort"
	"time"

	"swipevault/internal/models"
)

const baseWeightEngagement = 0.30
const baseWeightSemantic = 0.25
const baseWeightSession = 0.20
const baseWeightTimePref = 0.10
const baseWeightFreshness = 0.10
const baseWeightExploration = 0.05

func baseWeights() Weights {
	return Weights{
		Engagement:  baseWeightEngagement,
		Semantic:    baseWeightSemantic,
		Session:     baseWeightSession,
		TimePref:    baseWeightTimePref,
		Freshness:   baseWeightFreshness,
		Exploration: baseWeightExploration,
	}
}

// deriveWeights applies the documented conditional mutations to the base
// weights and renormalizes so the six weights sum to 1.
func deriveWeights(hasEmbeddings, hasTimePrefs bool, cardsShown int) Weights {
	w := baseWeights()

	if !hasEmbeddings {
		w.Semantic = 0
		w.Engagement += 0.11
		w.Session += 0.08
		w.Exploration += 0.06
	}

	if !hasTimePrefs {
		w.TimePref = 0
		w.Engagement += 0.05
		w.Freshness += 0.05
	}

	if cardsShown == 0 {
		freed := w.Session
		w.Session = 0
		w.Freshness += freed * 0.6
		w.Exploration += freed * 0.4
	}

	if cardsShown > 24 {
		moved := w.Exploration * 0.5
		w.Exploration -= moved
		w.Engagement += moved * 0.6
		w.Session += moved * 0.4
	}

	sum := w.Engagement + w.Semantic + w.Session + w.TimePref + w.Freshness + w.Exploration
	if sum <= 0 {
		return baseWeights()
	}

	return Weights{
		Engagement:  w.Engagement / sum,
		Semantic:    w.Semantic / sum,
		Session:     w.Session / sum,
		TimePref:    w.TimePref / sum,
		Freshness:   w.Freshness / sum,
		Exploration: w.Exploration / sum,
	}
}

// Score ranks candidates for one feed request, returning one RankingCandidate
// per input entry (same length and multiset, reordered by descending
// finalScore).
func Score(candidates []*models.LibraryEntry, session SessionContext, timePrefs []models.TimePreference, now time.Time) []*RankingCandidate {
	stats := BuildDatasetStats(candidates)
	sessionSignals := BuildSessionSignals(session.EngagedCategories, session.SkippedCategories)

	hasEmbeddings := len(session.EngagedEmbeddings) > 0
	hasTimePrefs := hasUsableTimePrefs(timePrefs)
	weights := deriveWeights(hasEmbeddings, hasTimePrefs, session.CardsShown)

	results := make([]*RankingCandidate, len(candidates))
	for i, e := range candidates {
		results[i] = scoreOne(e, stats, sessionSignals, session, timePrefs, weights, now)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})

	return results
}

func hasUsableTimePrefs(prefs []models.TimePreference) bool {
	for _, p := range prefs {
		if p.SampleCount >= 3 {
			return true
		}
	}
	return false
}

func scoreOne(e *models.LibraryEntry, stats *DatasetStats, sessionSignals *SessionSignals, session SessionContext, timePrefs []models.TimePreference, weights Weights, now time.Time) *RankingCandidate {
	typeMean := stats.ContentTypeMean(e.ContentType)

	fEngagement := engagementSignal(e, typeMean, now)
	fSemantic := semanticSignal(e.Embedding, session.EngagedEmbeddings)
	fSession := sessionContextSignal(e.Categories, session.CardsShown, sessionSignals)
	fTimePref := timePreferenceSignal(e.Categories, timePrefs)
	fFreshness := freshnessSignal(e, now)
	fExploration, uncertainty, categoryNovelty, sessionNovelty := explorationSignal(e, stats, sessionSignals)

	baseScore := clamp01(
		fEngagement*weights.Engagement +
			fSemantic*weights.Semantic +
			fSession*weights.Session +
			fTimePref*weights.TimePref +
			fFreshness*weights.Freshness +
			fExploration*weights.Exploration,
	)

	momentum, skip, fatigue, sameLaneBoost := sessionRawTerms(e.Categories, session.CardsShown, sessionSignals)

	daysSinceAdded := daysSince(e.AddedAt, now)

	isLiked := 0.0
	if e.LikedAt != nil {
		isLiked = 1
	}
	isUnseen := 0.0
	if e.ShownCount == 0 {
		isUnseen = 1
	}
	hasEmbedding := 0.0
	if len(e.Embedding) > 0 {
		hasEmbedding = 1
	}

	features := map[string]float64{
		"f_engagement":               fEngagement,
		"f_semantic":                 fSemantic,
		"f_session":                  fSession,
		"f_time_pref":                fTimePref,
		"f_freshness":                fFreshness,
		"f_exploration":              fExploration,
		"f_shown_count_norm":         clamp01(float64(e.ShownCount) / 20),
		"f_open_rate":                math.Min(1, float64(e.OpenCount)/math.Max(1, float64(e.ShownCount))),
		"f_days_since_added_norm":    clamp01(daysSinceAdded / 120),
		"f_is_liked":                 isLiked,
		"f_is_unseen":                isUnseen,
		"f_category_count_norm":      clamp01(float64(len(e.Categories)) / 4),
		"f_has_embedding":            hasEmbedding,
		"f_content_type_prior":       clamp01(typeMean),
		"f_session_momentum":         clamp01(momentum / 5),
		"f_session_skip_pressure":    clamp01(skip / 5),
		"f_session_fatigue":          clamp01(fatigue / 4),
		"f_session_same_lane_boost":  sameLaneBoost,
		"f_ucb_uncertainty":          clamp01(uncertainty / 3),
		"f_category_novelty":         clamp01(categoryNovelty),
		"f_session_novelty":          sessionNovelty,
	}

	return &RankingCandidate{
		Entry:      e,
		BaseScore:  baseScore,
		FinalScore: baseScore,
		Breakdown: Breakdown{
			Engagement:  fEngagement,
			Semantic:    fSemantic,
			Session:     fSession,
			TimePref:    fTimePref,
			Freshness:   fFreshness,
			Exploration: fExploration,
		},
		Features: features,
	}
}

// sessionRawTerms recomputes the unclamped session-context intermediates
// needed for feature reporting without duplicating sessionContextSignal's
// clamped score.
func sessionRawTerms(categories []string, cardsShown int, session *SessionSignals) (momentum, skip, fatigue, sameLaneBoost float64) {
	if cardsShown == 0 || len(categories) == 0 {
		return 0, 0, 0, 0
	}
	for _, cat := range categories {
		engagedWeight := session.EngagedCategoryWeights[cat]
		momentum += engagedWeight
		skip += session.SkippedCategoryWeights[cat]
		if engagedWeight > 2 {
			fatigue += engagedWeight - 2
		}
		if session.EngagedCategorySet[cat] {
			sameLaneBoost = 0.04
		}
	}
	return
}
