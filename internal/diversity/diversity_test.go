package diversity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swipevault/internal/models"
	"swipevault/internal/scoring"
)

func candidate(id string, primary string) *scoring.RankingCandidate {
	return &scoring.RankingCandidate{
		Entry: &models.LibraryEntry{ID: id, Categories: []string{primary}},
	}
}

func primaries(result []*scoring.RankingCandidate) []string {
	out := make([]string, len(result))
	for i, c := range result {
		out[i] = c.Entry.Categories[0]
	}
	return out
}

func TestApply_NoTripleWhenAlternativeExists(t *testing.T) {
	ranked := []*scoring.RankingCandidate{
		candidate("1", "Tech"),
		candidate("2", "Tech"),
		candidate("3", "Tech"),
		candidate("4", "Music"),
	}

	result := Apply(ranked)
	require.Len(t, result, 4)

	cats := primaries(result)
	for i := 0; i+2 < len(cats); i++ {
		assert.False(t, cats[i] == cats[i+1] && cats[i+1] == cats[i+2], "found triple at %d: %v", i, cats)
	}
}

func TestApply_PreservesSetWhenNoAlternativeWithinWindow(t *testing.T) {
	ranked := make([]*scoring.RankingCandidate, 0, 10)
	for i := 0; i < 10; i++ {
		ranked = append(ranked, candidate(string(rune('a'+i)), "Tech"))
	}

	result := Apply(ranked)
	require.Len(t, result, 10)

	seen := make(map[string]bool)
	for _, c := range result {
		seen[c.Entry.ID] = true
	}
	for _, c := range ranked {
		assert.True(t, seen[c.Entry.ID])
	}
}

func TestApply_EmptyAndShortListsPassThrough(t *testing.T) {
	assert.Empty(t, Apply(nil))

	one := []*scoring.RankingCandidate{candidate("1", "Tech")}
	assert.Equal(t, one, Apply(one))

	two := []*scoring.RankingCandidate{candidate("1", "Tech"), candidate("2", "Tech")}
	assert.Equal(t, two, Apply(two))
}

func TestApply_UncategorizedEntriesUseEmptyPrimary(t *testing.T) {
	ranked := []*scoring.RankingCandidate{
		{Entry: &models.LibraryEntry{ID: "1", Categories: nil}},
		{Entry: &models.LibraryEntry{ID: "2", Categories: nil}},
		{Entry: &models.LibraryEntry{ID: "3", Categories: nil}},
	}

	result := Apply(ranked)
	require.Len(t, result, 3)
}
