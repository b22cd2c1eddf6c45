// scoring/stats.go
package scoring

import (
	"math"

	"swipevault/internal/models"
)

// CategoryBandit tracks how often a category has been shown and how well
// it has engaged, feeding the exploration signal's category-novelty term.
type CategoryBandit struct {
	Shown         int
	EngagementSum float64
}

// DatasetStats is built once per feed request over the candidate set.
type DatasetStats struct {
	TotalShown          int
	GlobalEngagementMean float64
	ContentTypeMeans    map[models.ContentType]float64
	CategoryBandits     map[string]*CategoryBandit
}

// BuildDatasetStats aggregates shown/engagement statistics across candidates
// so individual signals can compare an entry against the cohort.
func BuildDatasetStats(candidates []*models.LibraryEntry) *DatasetStats {
	stats := &DatasetStats{
		ContentTypeMeans: make(map[models.ContentType]float64),
		CategoryBandits:  make(map[string]*CategoryBandit),
	}

	var totalShown int
	var weightedEngagementSum float64
	typeShown := make(map[models.ContentType]int)
	typeEngagementSum := make(map[models.ContentType]float64)

	for _, e := range candidates {
		if e.ShownCount <= 0 {
			continue
		}
		shown := e.ShownCount
		totalShown += shown
		score := clamp01(e.EngagementScore)
		weightedEngagementSum += score * float64(shown)

		typeShown[e.ContentType] += shown
		typeEngagementSum[e.ContentType] += score * float64(shown)

		for _, cat := range e.Categories {
			b, ok := stats.CategoryBandits[cat]
			if !ok {
				b = &CategoryBandit{}
				stats.CategoryBandits[cat] = b
			}
			b.Shown += shown
			b.EngagementSum += score * float64(shown)
		}
	}

	stats.TotalShown = totalShown
	if totalShown > 0 {
		stats.GlobalEngagementMean = weightedEngagementSum / float64(totalShown)
	} else {
		stats.GlobalEngagementMean = 0.5
	}

	for ct, shown := range typeShown {
		if shown > 0 {
			stats.ContentTypeMeans[ct] = typeEngagementSum[ct] / float64(shown)
		}
	}

	return stats
}

// ContentTypeMean returns the cohort engagement mean for ct, falling back to
// the global mean when ct was never shown in this candidate set.
func (s *DatasetStats) ContentTypeMean(ct models.ContentType) float64 {
	if mean, ok := s.ContentTypeMeans[ct]; ok {
		return mean
	}
	return s.GlobalEngagementMean
}

// CategoryPrior estimates an unshown category's likely engagement from the
// cohort's bandit data, falling back to the global mean.
func (s *DatasetStats) CategoryPrior(categories []string) float64 {
	var best float64 = -1
	for _, cat := range categories {
		b, ok := s.CategoryBandits[cat]
		if !ok || b.Shown == 0 {
			continue
		}
		mean := b.EngagementSum / float64(b.Shown)
		if mean > best {
			best = mean
		}
	}
	if best < 0 {
		return s.GlobalEngagementMean
	}
	return best
}

// SessionSignals derives the membership sets and recency-weighted sums used
// by the session-context and exploration signals.
type SessionSignals struct {
	EngagedCategorySet     map[string]bool
	SkippedCategorySet     map[string]bool
	EngagedCategoryWeights map[string]float64
	SkippedCategoryWeights map[string]float64
}

// BuildSessionSignals weighs more recent occurrences of a category higher,
// using a 0.92 decay per position back from the end of the list.
func BuildSessionSignals(engagedCategories, skippedCategories []string) *SessionSignals {
	return &SessionSignals{
		EngagedCategorySet:     toSet(engagedCategories),
		SkippedCategorySet:     toSet(skippedCategories),
		EngagedCategoryWeights: weightedSums(engagedCategories),
		SkippedCategoryWeights: weightedSums(skippedCategories),
	}
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[it] = true
	}
	return set
}

func weightedSums(items []string) map[string]float64 {
	sums := make(map[string]float64, len(items))
	n := len(items)
	for i, it := range items {
		weight := math.Pow(0.92, float64(n-1-i))
		sums[it] += weight
	}
	return sums
}
