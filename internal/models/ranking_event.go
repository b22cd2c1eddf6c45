// models/ranking_event.go
package models

import "time"

// RankingEvent records how one candidate scored when it was considered for
// a feed request, whether or not it was actually served. Logging is
// best-effort: a failure here must never fail the feed response.
// (feedRequestId, linkId) is unique.
type RankingEvent struct {
	FeedRequestID string  `json:"feedRequestId" bson:"feed_request_id"`
	LinkID        string  `json:"linkId" bson:"link_id"`
	UserID        string  `json:"userId" bson:"user_id"`
	SessionID     *string `json:"sessionId,omitempty" bson:"session_id,omitempty"`

	CandidateRank int  `json:"candidateRank" bson:"candidate_rank"`
	ServedRank    *int `json:"servedRank,omitempty" bson:"served_rank,omitempty"`

	BaseScore  float64  `json:"baseScore" bson:"base_score"`
	RerankScore *float64 `json:"rerankScore,omitempty" bson:"rerank_score,omitempty"`
	FinalScore float64  `json:"finalScore" bson:"final_score"`

	Features map[string]float64 `json:"features" bson:"features"`

	AlgorithmVersion string  `json:"algorithmVersion" bson:"algorithm_version"`
	RerankerVersion  *string `json:"rerankerVersion,omitempty" bson:"reranker_version,omitempty"`
	ActiveCategory   string  `json:"activeCategory" bson:"active_category"`
	CardsShown       int     `json:"cardsShown" bson:"cards_shown"`

	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}
