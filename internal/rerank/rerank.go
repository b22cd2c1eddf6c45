// rerank/rerank.go
package rerank

import (
	"math"
	"sort"

	"swipevault/internal/scoring"
)

// Result reports what the reranker did for a request so the feed handler
// can surface it in the response.
type Result struct {
	Applied bool
	Version *string
}

// Reranker optionally replaces the scoring core's base score with a blended
// model score, re-sorting the candidates. It is safe to call with no model
// configured: Apply becomes a no-op that reports Applied=false.
type Reranker struct {
	cache      *Cache
	modelPath  string
	enabled    bool
}

func New(enabled bool, modelPath string) *Reranker {
	return &Reranker{
		cache:     NewCache(),
		modelPath: modelPath,
		enabled:   enabled,
	}
}

// Apply blends a learned model score into each candidate's finalScore and
// re-sorts descending. On any failure to load or use the model, candidates
// are left with their base scores and Result.Applied is false.
func (r *Reranker) Apply(candidates []*scoring.RankingCandidate) Result {
	if !r.enabled || len(candidates) == 0 {
		return Result{}
	}

	model, err := r.cache.Get(r.modelPath)
	if err != nil || model == nil {
		return Result{}
	}

	rawScores := make([]float64, len(candidates))
	for i, c := range candidates {
		rawScores[i] = model.Score(c.Features)
	}

	normalized := minMaxNormalize(rawScores)

	for i, c := range candidates {
		modelScore := normalized[i]
		c.RerankScore = &modelScore
		c.FinalScore = c.BaseScore*0.35 + modelScore*0.65
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].FinalScore > candidates[j].FinalScore
	})

	version := model.Version
	return Result{Applied: true, Version: &version}
}

// minMaxNormalize maps scores to [0,1]; a degenerate set (all equal or any
// non-finite value) maps to 0.5 for every entry.
func minMaxNormalize(scores []float64) []float64 {
	out := make([]float64, len(scores))

	min, max := math.Inf(1), math.Inf(-1)
	for _, s := range scores {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			for i := range out {
				out[i] = 0.5
			}
			return out
		}
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}

	if max <= min {
		for i := range out {
			out[i] = 0.5
		}
		return out
	}

	for i, s := range scores {
		out[i] = (s - min) / (max - min)
	}
	return out
}
