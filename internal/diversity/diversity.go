// diversity/diversity.go
package diversity

import "swipevault/internal/scoring"

// lookaheadWindow bounds how far ahead the pass will search for an
// alternative before giving up and accepting a same-category triple.
const lookaheadWindow = 8

// primaryCategory returns an entry's primary category (categories[0]), or
// "" for an uncategorized entry.
func primaryCategory(c *scoring.RankingCandidate) string {
	if len(c.Entry.Categories) == 0 {
		return ""
	}
	return c.Entry.Categories[0]
}

// Apply reorders a ranked candidate list so no three consecutive entries
// share a primary category, unless every candidate within the next
// lookaheadWindow positions of the residual list would also complete a
// triple — in which case the head of the remainder is accepted as-is.
func Apply(ranked []*scoring.RankingCandidate) []*scoring.RankingCandidate {
	if len(ranked) <= 2 {
		return ranked
	}

	remaining := make([]*scoring.RankingCandidate, len(ranked))
	copy(remaining, ranked)

	result := make([]*scoring.RankingCandidate, 0, len(ranked))
	var recentPrimaryCats []string

	for len(remaining) > 0 {
		completesTriple := func(cat string) bool {
			n := len(recentPrimaryCats)
			return n >= 2 && recentPrimaryCats[n-1] == cat && recentPrimaryCats[n-2] == cat
		}

		pickIdx := -1
		window := len(remaining)
		if window > lookaheadWindow {
			window = lookaheadWindow
		}
		for i := 0; i < window; i++ {
			if !completesTriple(primaryCategory(remaining[i])) {
				pickIdx = i
				break
			}
		}
		if pickIdx == -1 {
			pickIdx = 0
		}

		chosen := remaining[pickIdx]
		result = append(result, chosen)
		recentPrimaryCats = append(recentPrimaryCats, primaryCategory(chosen))

		remaining = append(remaining[:pickIdx], remaining[pickIdx+1:]...)
	}

	return result
}
