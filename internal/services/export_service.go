// internal/services/export_service.go
package services

import (
	"context"
	"io"
	"time"

	"swipevault/internal/config"
	"swipevault/internal/errs"
	"swipevault/internal/models"
	"swipevault/internal/utils"

	json "github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ExportService streams the training-dataset JSONL: one row per logged
// ranking candidate, joined against its engagement outcome within the
// reward-attribution window and labeled with a reward.
type ExportService struct {
	rankingEvents    *mongo.Collection
	engagementEvents *mongo.Collection
	entries          *mongo.Collection
}

func NewExportService() *ExportService {
	return &ExportService{
		rankingEvents:    config.DB.Collection("ranking_events"),
		engagementEvents: config.DB.Collection("engagement_events"),
		entries:          config.DB.Collection("library_entries"),
	}
}

// trainingRow is one line of the exported dataset. Field order follows the
// published key list so a line-by-line diff against past exports is stable.
type trainingRow struct {
	FeedRequestID    string             `json:"feed_request_id"`
	UserID           string             `json:"user_id"`
	SessionID        *string            `json:"session_id,omitempty"`
	LinkID           string             `json:"link_id"`
	AlgorithmVersion string             `json:"algorithm_version"`
	RerankerVersion  *string            `json:"reranker_version,omitempty"`
	ActiveCategory   string             `json:"active_category"`
	CandidateRank    int                `json:"candidate_rank"`
	ServedRank       *int               `json:"served_rank,omitempty"`
	BaseScore        float64            `json:"base_score"`
	RerankScore      *float64           `json:"rerank_score,omitempty"`
	FinalScore       float64            `json:"final_score"`
	CreatedAt        time.Time          `json:"created_at"`
	ContentType      models.ContentType `json:"content_type"`
	Categories       []string           `json:"categories"`
	OpenCount        int                `json:"open_count"`
	MaxDwellMs       int64              `json:"max_dwell_ms"`
	AvgDwellMs       float64            `json:"avg_dwell_ms"`
	FastSkipCount    int                `json:"fast_skip_count"`
	Liked            bool               `json:"liked"`
	Reward           float64            `json:"reward"`
	Features         map[string]float64 `json:"features"`
}

// outcome summarizes the engagement signals a ranking event accrued inside
// its attribution window.
type outcome struct {
	openCount     int
	maxDwellMs    int64
	sumDwellMs    int64
	dwellCount    int
	fastSkipCount int
}

func (o outcome) avgDwellMs() float64 {
	if o.dwellCount == 0 {
		return 0
	}
	return float64(o.sumDwellMs) / float64(o.dwellCount)
}

// WriteTrainingDataset writes one JSON object per served-or-considered
// candidate logged in the last windowDays days to w, newline-delimited.
// Rows whose engagement outcome is still inside its attribution window at
// call time are simply scored with whatever outcome has accrued so far;
// the exporter does not wait.
func (s *ExportService) WriteTrainingDataset(ctx context.Context, w io.Writer, windowDays int) (int, error) {
	if windowDays <= 0 {
		windowDays = utils.ExportDefaultWindowDays
	}
	since := time.Now().UTC().AddDate(0, 0, -windowDays)

	cursor, err := s.rankingEvents.Find(ctx, bson.M{"created_at": bson.M{"$gte": since}})
	if err != nil {
		return 0, errs.Wrap(errs.Transient, "loading ranking events for export", err)
	}
	defer cursor.Close(ctx)

	encoder := json.NewEncoder(w)
	count := 0

	for cursor.Next(ctx) {
		var event models.RankingEvent
		if err := cursor.Decode(&event); err != nil {
			return count, errs.Wrap(errs.Transient, "decoding ranking event for export", err)
		}

		row, err := s.buildRow(ctx, event)
		if err != nil {
			return count, err
		}

		if err := encoder.Encode(row); err != nil {
			return count, errs.Wrap(errs.Transient, "encoding training row", err)
		}
		count++
	}
	if err := cursor.Err(); err != nil {
		return count, errs.Wrap(errs.Transient, "iterating ranking events for export", err)
	}

	return count, nil
}

func (s *ExportService) buildRow(ctx context.Context, event models.RankingEvent) (*trainingRow, error) {
	var entry models.LibraryEntry
	if err := s.entries.FindOne(ctx, bson.M{"_id": event.LinkID, "user_id": event.UserID}).Decode(&entry); err != nil {
		if err == mongo.ErrNoDocuments {
			entry = models.LibraryEntry{}
		} else {
			return nil, errs.Wrap(errs.Transient, "loading entry for export", err)
		}
	}

	out, err := s.loadOutcome(ctx, event)
	if err != nil {
		return nil, err
	}

	liked := entry.LikedAt != nil && !entry.LikedAt.Before(event.CreatedAt) &&
		entry.LikedAt.Before(event.CreatedAt.Add(utils.ExportOutcomeWindow))

	var reward float64
	if event.ServedRank != nil {
		reward = computeReward(out, liked)
	}

	return &trainingRow{
		FeedRequestID:    event.FeedRequestID,
		UserID:           event.UserID,
		SessionID:        event.SessionID,
		LinkID:           event.LinkID,
		AlgorithmVersion: event.AlgorithmVersion,
		RerankerVersion:  event.RerankerVersion,
		ActiveCategory:   event.ActiveCategory,
		CandidateRank:    event.CandidateRank,
		ServedRank:       event.ServedRank,
		BaseScore:        event.BaseScore,
		RerankScore:      event.RerankScore,
		FinalScore:       event.FinalScore,
		CreatedAt:        event.CreatedAt,
		ContentType:      entry.ContentType,
		Categories:       entry.Categories,
		OpenCount:        out.openCount,
		MaxDwellMs:       out.maxDwellMs,
		AvgDwellMs:       out.avgDwellMs(),
		FastSkipCount:    out.fastSkipCount,
		Liked:            liked,
		Reward:           reward,
		Features:         event.Features,
	}, nil
}

// loadOutcome gathers the engagement events for (userId, linkId) within the
// 6-hour window after the ranking event, scoped to the same session and
// feed request whenever an engagement row carries those fields.
func (s *ExportService) loadOutcome(ctx context.Context, event models.RankingEvent) (outcome, error) {
	windowEnd := event.CreatedAt.Add(utils.ExportOutcomeWindow)

	filter := bson.M{
		"user_id": event.UserID,
		"link_id": event.LinkID,
		"created_at": bson.M{
			"$gte": event.CreatedAt,
			"$lt":  windowEnd,
		},
	}

	var scoping []bson.M
	if event.SessionID != nil {
		scoping = append(scoping, bson.M{"$or": bson.A{
			bson.M{"session_id": bson.M{"$exists": false}},
			bson.M{"session_id": nil},
			bson.M{"session_id": *event.SessionID},
		}})
	}
	scoping = append(scoping, bson.M{"$or": bson.A{
		bson.M{"feed_request_id": bson.M{"$exists": false}},
		bson.M{"feed_request_id": nil},
		bson.M{"feed_request_id": event.FeedRequestID},
	}})
	if len(scoping) > 0 {
		filter["$and"] = scoping
	}

	cursor, err := s.engagementEvents.Find(ctx, filter)
	if err != nil {
		return outcome{}, errs.Wrap(errs.Transient, "loading engagement outcome", err)
	}
	defer cursor.Close(ctx)

	var out outcome
	for cursor.Next(ctx) {
		var e models.EngagementEvent
		if err := cursor.Decode(&e); err != nil {
			return outcome{}, errs.Wrap(errs.Transient, "decoding engagement outcome", err)
		}
		switch e.EventType {
		case models.EventOpen:
			out.openCount++
		case models.EventDwell:
			if e.DwellTimeMs == nil {
				continue
			}
			d := *e.DwellTimeMs
			out.dwellCount++
			out.sumDwellMs += d
			if d > out.maxDwellMs {
				out.maxDwellMs = d
			}
			if d < 1500 {
				out.fastSkipCount++
			}
		}
	}
	if err := cursor.Err(); err != nil {
		return outcome{}, errs.Wrap(errs.Transient, "iterating engagement outcome", err)
	}

	return out, nil
}

// computeReward implements the served-candidate reward label: weighted
// open/dwell signal plus a like bonus, minus a fast-skip penalty.
func computeReward(out outcome, liked bool) float64 {
	openReward := 0.0
	if out.openCount > 0 {
		openReward = 1.0
	}

	dwellReward := models.ClampEngagementScore(float64(out.maxDwellMs) / 45000)

	likedBonus := 0.0
	if liked {
		likedBonus = 0.35
	}

	skipPenalty := 0.0
	if out.fastSkipCount > 0 {
		skipPenalty = 0.3
	}

	return models.ClampEngagementScore(openReward*0.6 + dwellReward*0.35 + likedBonus - skipPenalty)
}
