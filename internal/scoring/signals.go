// scoring/signals.go
package scoring

import (
	"math"
	"time"

	"swipevault/internal/models"
)

func cosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func daysSince(t time.Time, now time.Time) float64 {
	return now.Sub(t).Hours() / 24
}

// engagementSignal predicts how likely the entry is to be engaged with,
// using cold-start priors for unseen entries and a blend of history,
// recency, and open-rate for seen ones.
func engagementSignal(e *models.LibraryEntry, typeMean float64, now time.Time) float64 {
	likedBoost := 0.0
	if e.LikedAt != nil {
		likedBoost = 0.08
	}

	if e.ShownCount == 0 {
		score := 0.58 + (typeMean-0.5)*0.2 + likedBoost
		return clamp01(score)
	}

	var baseline float64
	if e.EngagementScore > 0 {
		baseline = e.EngagementScore*0.72 + typeMean*0.28
	} else {
		baseline = typeMean * 0.9
	}

	recencySignal := 0.55
	if e.LastShownAt != nil {
		recencySignal = math.Exp(-daysSince(*e.LastShownAt, now) / 30)
	}

	openSignal := math.Min(1, float64(e.OpenCount)/math.Max(1, float64(e.ShownCount))) * 0.2

	overShownPenalty := math.Min(0.22, math.Max(0, float64(e.ShownCount-10))*0.015)

	score := baseline*0.67 + recencySignal*0.23 + openSignal + likedBoost - overShownPenalty
	return clamp01(score)
}

// semanticSignal compares the entry's embedding against the session's
// recently engaged embeddings, rewarding both the closest and average match.
func semanticSignal(entryEmbedding []float64, engagedEmbeddings [][]float64) float64 {
	if len(entryEmbedding) == 0 || len(engagedEmbeddings) == 0 {
		return 0.5
	}

	var max float64 = -1
	var sum float64
	count := 0
	for _, eng := range engagedEmbeddings {
		if len(eng) == 0 {
			continue
		}
		sim := clamp01((cosineSimilarity(entryEmbedding, eng) + 1) / 2)
		if sim > max {
			max = sim
		}
		sum += sim
		count++
	}
	if count == 0 {
		return 0.5
	}
	mean := sum / float64(count)
	return clamp01(max*0.65 + mean*0.35)
}

// sessionContextSignal rewards categories the session has been engaging
// with and penalizes ones it has skipped, with a fatigue term once a
// category has been engaged enough times this session.
func sessionContextSignal(categories []string, cardsShown int, session *SessionSignals) float64 {
	if cardsShown == 0 || len(categories) == 0 {
		return 0.5
	}

	var momentum, skip, fatigue float64
	sameLaneBoost := 0.0
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

	score := 0.5 + math.Min(0.32, momentum*0.07) - math.Min(0.34, skip*0.1) - math.Min(0.2, fatigue*0.04) + sameLaneBoost
	return clamp01(score)
}

// timePreferenceSignal returns the best-known engagement average for the
// entry's categories at the current (hourSlot, dayType), ignoring rows
// without enough samples to trust.
func timePreferenceSignal(categories []string, prefs []models.TimePreference) float64 {
	if len(categories) == 0 || len(prefs) == 0 {
		return 0.5
	}

	byCategory := make(map[string]models.TimePreference, len(prefs))
	for _, p := range prefs {
		if p.SampleCount >= 3 {
			byCategory[p.Category] = p
		}
	}
	if len(byCategory) == 0 {
		return 0.5
	}

	found := false
	var best float64
	for _, cat := range categories {
		p, ok := byCategory[cat]
		if !ok {
			continue
		}
		if !found || p.AvgEngagement > best {
			best = p.AvgEngagement
			found = true
		}
	}
	if !found {
		return 0.5
	}
	return clamp01(best)
}

// freshnessSignal favors recently added entries and a "forgotten gem"
// window, decaying with repeated exposure.
func freshnessSignal(e *models.LibraryEntry, now time.Time) float64 {
	days := daysSince(e.AddedAt, now)

	var score float64
	switch {
	case days < 1:
		score = 0.72
	case days < 14:
		score = 0.56
	case days <= 56:
		score = 0.88
	case days <= 120:
		score = 0.42
	default:
		score = 0.25
	}

	score -= math.Min(0.35, float64(e.ShownCount)*0.028)
	if e.LikedAt != nil {
		score += 0.08
	}
	return clamp01(score)
}

// explorationSignal is an upper-confidence-bound term that favors entries
// and categories with little evidence so far, plus a session-novelty bonus
// for categories the session hasn't touched at all.
const sessionNoveltyBonus = 0.08

func explorationSignal(e *models.LibraryEntry, stats *DatasetStats, session *SessionSignals) (score, uncertainty, categoryNovelty, sessionNovelty float64) {
	var meanEstimate float64
	if e.ShownCount > 0 {
		meanEstimate = clamp01(e.EngagementScore)
	} else {
		meanEstimate = stats.CategoryPrior(e.Categories)
	}

	uncertainty = math.Sqrt(math.Log(float64(stats.TotalShown+2)) / float64(e.ShownCount+1))

	categoryNovelty = 0
	for _, cat := range e.Categories {
		shown := 0
		if b, ok := stats.CategoryBandits[cat]; ok {
			shown = b.Shown
		}
		novelty := 1 / math.Sqrt(float64(shown+1))
		if novelty > categoryNovelty {
			categoryNovelty = novelty
		}
	}

	sessionNovelty = 0
	if allCategoriesUntouched(e.Categories, session) {
		// Capped well below the UCB term so it nudges rather than
		// dominates mid-session for rare categories; do not raise
		// without rechecking how it interacts with categoryNovelty.
		sessionNovelty = sessionNoveltyBonus
	}

	score = clamp01(meanEstimate + 0.28*uncertainty + 0.14*categoryNovelty + sessionNovelty)
	return
}

func allCategoriesUntouched(categories []string, session *SessionSignals) bool {
	if len(categories) == 0 {
		return true
	}
	for _, cat := range categories {
		if session.EngagedCategorySet[cat] || session.SkippedCategorySet[cat] {
			return false
		}
	}
	return true
}
