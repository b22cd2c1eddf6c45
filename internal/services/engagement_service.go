// internal/services/engagement_service.go
package services

import (
	"context"
	"math"
	"time"

	"swipevault/internal/config"
	"swipevault/internal/errs"
	"swipevault/internal/models"
	"swipevault/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EngagementService ingests client-reported signals (impression, dwell,
// open), updating per-entry running statistics and per-time-slot category
// preferences.
type EngagementService struct {
	events    *mongo.Collection
	entries   *mongo.Collection
	timePref  *mongo.Collection
	prefCache *TimePreferenceCache
}

func NewEngagementService(prefCache *TimePreferenceCache) *EngagementService {
	return &EngagementService{
		events:    config.DB.Collection("engagement_events"),
		entries:   config.DB.Collection("library_entries"),
		timePref:  config.DB.Collection("time_preferences"),
		prefCache: prefCache,
	}
}

// IngestResult reports how many events were accepted.
type IngestResult struct {
	Processed int
}

// Ingest validates and records a batch of events in this order: event-log
// insert, then per-entry shown/open/engagement updates, then
// time-preference upserts. The writes are not wrapped in a transaction; an
// error partway returns with the earlier writes already applied.
func (s *EngagementService) Ingest(ctx context.Context, userID string, raw []models.EngagementRequest) (*IngestResult, error) {
	valid := make([]models.EngagementRequest, 0, len(raw))
	for _, e := range raw {
		if e.LinkID == "" {
			continue
		}
		switch e.EventType {
		case "impression", "dwell", "open":
			valid = append(valid, e)
		}
	}
	if len(valid) == 0 {
		return nil, errs.New(errs.Validation, "no valid events in request")
	}

	now := time.Now().UTC()
	hourOfDay := now.Hour()
	dayType := models.DayTypeFor(now)

	docs := make([]interface{}, 0, len(valid))
	impressionCounts := make(map[string]int)
	openCounts := make(map[string]int)
	type dwellEvent struct {
		dwellMs  int64
		velocity *float64
	}
	dwellsByLink := make(map[string][]dwellEvent)

	for _, e := range valid {
		event := models.EngagementEvent{
			ID:            utils.NewID(),
			UserID:        userID,
			LinkID:        e.LinkID,
			EventType:     models.EngagementEventType(e.EventType),
			DwellTimeMs:   e.DwellTimeMs,
			SwipeVelocity: e.SwipeVelocity,
			CardIndex:     e.CardIndex,
			HourOfDay:     hourOfDay,
			DayType:       dayType,
			SessionID:     e.SessionID,
			FeedRequestID: e.FeedRequestID,
			CreatedAt:     now,
		}
		docs = append(docs, event)

		switch event.EventType {
		case models.EventImpression:
			impressionCounts[e.LinkID]++
		case models.EventOpen:
			openCounts[e.LinkID]++
		case models.EventDwell:
			if e.DwellTimeMs != nil && *e.DwellTimeMs > 0 {
				dwellsByLink[e.LinkID] = append(dwellsByLink[e.LinkID], dwellEvent{dwellMs: *e.DwellTimeMs, velocity: e.SwipeVelocity})
			}
		}
	}

	if _, err := s.events.InsertMany(ctx, docs); err != nil {
		return nil, errs.Wrap(errs.Transient, "recording engagement events", err)
	}

	for linkID, count := range impressionCounts {
		if _, err := s.entries.UpdateOne(ctx,
			bson.M{"_id": linkID, "user_id": userID},
			bson.M{"$inc": bson.M{"shown_count": count}, "$set": bson.M{"last_shown_at": now}},
		); err != nil {
			return nil, errs.Wrap(errs.Transient, "updating shown count", err)
		}
	}

	for linkID, count := range openCounts {
		if _, err := s.entries.UpdateOne(ctx,
			bson.M{"_id": linkID, "user_id": userID},
			bson.M{"$inc": bson.M{"open_count": count}},
		); err != nil {
			return nil, errs.Wrap(errs.Transient, "updating open count", err)
		}
	}

	categoryContribution := make(map[string]struct{ sum, count float64 })

	for linkID, dwells := range dwellsByLink {
		var entry models.LibraryEntry
		projection := options.FindOne().SetProjection(bson.M{"categories": 1})
		if err := s.entries.FindOne(ctx, bson.M{"_id": linkID, "user_id": userID}, projection).Decode(&entry); err != nil {
			if err == mongo.ErrNoDocuments {
				continue
			}
			return nil, errs.Wrap(errs.Transient, "loading entry for dwell update", err)
		}

		// Dwell events for one entry within one request are applied
		// sequentially so each pipeline update reads the previous one's
		// result; shown_count and the running means themselves are read
		// and combined server-side, so a concurrent request touching the
		// same entry can never clobber this one's write.
		for _, d := range dwells {
			interactionScore := dwellInteractionScore(d.dwellMs, d.velocity)

			filter := bson.M{"_id": linkID, "user_id": userID}
			update := mongo.Pipeline{
				{{Key: "$set", Value: bson.D{
					{Key: "engagement_score", Value: runningMeanExpr("$engagement_score", interactionScore, true)},
					{Key: "avg_dwell_ms", Value: runningMeanExpr("$avg_dwell_ms", float64(d.dwellMs), false)},
				}}},
			}
			if _, err := s.entries.UpdateOne(ctx, filter, update); err != nil {
				return nil, errs.Wrap(errs.Transient, "updating engagement score", err)
			}

			for _, cat := range entry.Categories {
				c := categoryContribution[cat]
				c.sum += interactionScore
				c.count++
				categoryContribution[cat] = c
			}
		}
	}

	for category, c := range categoryContribution {
		if err := s.upsertTimePreference(ctx, userID, hourOfDay, dayType, category, c.sum, c.count); err != nil {
			return nil, err
		}
	}
	if len(categoryContribution) > 0 && s.prefCache != nil {
		s.prefCache.Invalidate(ctx, userID, hourOfDay, dayType)
	}

	return &IngestResult{Processed: len(valid)}, nil
}

// runningMeanExpr builds the aggregation-pipeline expression that folds next
// into the field at fieldRef using $shown_count as the weight of the
// accumulated history: the first observation (shown_count <= 1) replaces the
// value outright, subsequent ones blend at weight (shown_count-1):1. The
// whole expression evaluates server-side against the row's current state, so
// it stays correct under concurrent writers. When clamp is true the result
// is bounded to [0,1], matching models.ClampEngagementScore.
func runningMeanExpr(fieldRef string, next float64, clamp bool) bson.D {
	blended := bson.D{{Key: "$divide", Value: bson.A{
		bson.D{{Key: "$add", Value: bson.A{
			bson.D{{Key: "$multiply", Value: bson.A{
				fieldRef,
				bson.D{{Key: "$subtract", Value: bson.A{"$shown_count", 1}}},
			}}},
			next,
		}}},
		"$shown_count",
	}}}

	if clamp {
		blended = bson.D{{Key: "$min", Value: bson.A{1, bson.D{{Key: "$max", Value: bson.A{0, blended}}}}}}
	}

	return bson.D{{Key: "$cond", Value: bson.A{
		bson.D{{Key: "$lte", Value: bson.A{"$shown_count", 1}}},
		next,
		blended,
	}}}
}

// dwellInteractionScore converts a raw dwell duration and optional swipe
// velocity into a bounded [0,1] interaction score.
func dwellInteractionScore(dwellMs int64, velocity *float64) float64 {
	dwellSeconds := float64(dwellMs) / 1000
	dwellComponent := math.Min(0.7, math.Log(1+dwellSeconds)/math.Log(1+120)*0.7)

	var velocityPenalty float64
	if velocity != nil {
		velocityPenalty = math.Min(0.2, math.Max(0, (*velocity-0.5)*0.1))
	}

	return models.ClampEngagementScore(dwellComponent - velocityPenalty)
}

func (s *EngagementService) upsertTimePreference(ctx context.Context, userID string, hourOfDay int, dayType models.DayType, category string, sum, count float64) error {
	filter := bson.M{
		"user_id":   userID,
		"hour_slot": hourOfDay,
		"day_type":  dayType,
		"category":  category,
	}

	var existing models.TimePreference
	err := s.timePref.FindOne(ctx, filter).Decode(&existing)
	now := time.Now().UTC()

	if err == mongo.ErrNoDocuments {
		pref := models.TimePreference{
			UserID:        userID,
			HourSlot:      hourOfDay,
			DayType:       dayType,
			Category:      category,
			AvgEngagement: sum / count,
			SampleCount:   int(count),
			UpdatedAt:     now,
		}
		if _, err := s.timePref.InsertOne(ctx, pref); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil
			}
			return errs.Wrap(errs.Transient, "creating time preference", err)
		}
		return nil
	}
	if err != nil {
		return errs.Wrap(errs.Transient, "loading time preference", err)
	}

	newCount := existing.SampleCount + int(count)
	newAvg := (existing.AvgEngagement*float64(existing.SampleCount) + sum) / float64(newCount)

	_, err = s.timePref.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"avg_engagement": newAvg,
		"sample_count":   newCount,
		"updated_at":     now,
	}})
	if err != nil {
		return errs.Wrap(errs.Transient, "updating time preference", err)
	}
	return nil
}
