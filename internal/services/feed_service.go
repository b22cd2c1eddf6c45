// internal/services/feed_service.go
package services

import (
	"context"
	"log"
	"sync"
	"time"

	"swipevault/internal/config"
	"swipevault/internal/diversity"
	"swipevault/internal/errs"
	"swipevault/internal/models"
	"swipevault/internal/rerank"
	"swipevault/internal/scoring"
	"swipevault/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FeedService assembles one ranked page of a user's library: load
// candidates, score, rerank, diversify, slice, and best-effort log.
type FeedService struct {
	entries    *mongo.Collection
	timePrefs  *mongo.Collection
	rankingLog *mongo.Collection
	reranker   *rerank.Reranker
	prefCache  *TimePreferenceCache
}

func NewFeedService(reranker *rerank.Reranker, prefCache *TimePreferenceCache) *FeedService {
	return &FeedService{
		entries:    config.DB.Collection("library_entries"),
		timePrefs:  config.DB.Collection("time_preferences"),
		rankingLog: config.DB.Collection("ranking_events"),
		reranker:   reranker,
		prefCache:  prefCache,
	}
}

// FeedParams captures GET /feed's query parameters.
type FeedParams struct {
	Category    string
	Limit       int
	Offset      int
	SessionID   *string
	ExcludeIDs  []string
	EngagedIDs  []string
	EngagedCats []string
	SkippedCats []string
	CardsShown  int
}

// FeedResponse is the JSON body for GET /feed.
type FeedResponse struct {
	Links            []*models.LibraryEntry `json:"links"`
	Categories       []string                `json:"categories"`
	Total            int                     `json:"total"`
	Filtered         int                     `json:"filtered"`
	FeedRequestID    string                  `json:"feedRequestId"`
	AlgorithmVersion string                  `json:"algorithmVersion"`
	RerankerApplied  bool                    `json:"rerankerApplied"`
	RerankerVersion  *string                 `json:"rerankerVersion"`
}

// GetFeed loads the user's active library, scores and reranks it against
// the caller's session state, applies the category-diversity pass, and
// returns the requested page plus the tab list and feed metadata.
func (s *FeedService) GetFeed(ctx context.Context, userID string, params FeedParams) (*FeedResponse, error) {
	excluded := toSet(params.ExcludeIDs)

	var candidates []*models.LibraryEntry
	var categories []string
	var engagedEmbeddings [][]float64
	var timePrefs []models.TimePreference

	var wg sync.WaitGroup
	errCh := make(chan error, 4)

	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		candidates, err = s.loadCandidates(ctx, userID, params.Category)
		if err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		categories, err = s.loadCategoryTabs(ctx, userID)
		if err != nil {
			errCh <- err
		}
	}()

	semanticIDs := lastN(params.EngagedIDs, utils.MaxSemanticEngagedIDs)
	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		engagedEmbeddings, err = s.loadEmbeddings(ctx, userID, semanticIDs)
		if err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		timePrefs, err = s.loadTimePreferences(ctx, userID, time.Now().UTC())
		if err != nil {
			errCh <- err
		}
	}()

	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			return nil, err
		}
	}

	filteredCandidates := make([]*models.LibraryEntry, 0, len(candidates))
	for _, c := range candidates {
		if !excluded[c.ID] {
			filteredCandidates = append(filteredCandidates, c)
		}
	}

	session := scoring.SessionContext{
		EngagedLinkIDs:    params.EngagedIDs,
		EngagedCategories: params.EngagedCats,
		SkippedCategories: params.SkippedCats,
		EngagedEmbeddings: engagedEmbeddings,
		CardsShown:        params.CardsShown,
	}

	ranked := scoring.Score(filteredCandidates, session, timePrefs, time.Now().UTC())

	rerankResult := s.reranker.Apply(ranked)

	diversified := diversity.Apply(ranked)

	offset := params.Offset
	limit := params.Limit
	end := offset + limit
	if offset > len(diversified) {
		offset = len(diversified)
	}
	if end > len(diversified) {
		end = len(diversified)
	}
	served := diversified[offset:end]

	feedRequestID := utils.NewID()
	s.logRankingEvents(context.Background(), userID, feedRequestID, params, diversified, served, rerankResult)

	links := make([]*models.LibraryEntry, len(served))
	for i, c := range served {
		entry := *c.Entry
		entry.Embedding = nil
		links[i] = &entry
	}

	return &FeedResponse{
		Links:            links,
		Categories:       categories,
		Total:            len(candidates),
		Filtered:         len(diversified),
		FeedRequestID:    feedRequestID,
		AlgorithmVersion: utils.AlgorithmVersion,
		RerankerApplied:  rerankResult.Applied,
		RerankerVersion:  rerankResult.Version,
	}, nil
}

func (s *FeedService) loadCandidates(ctx context.Context, userID, category string) ([]*models.LibraryEntry, error) {
	filter := bson.M{"user_id": userID, "status": models.StatusActive}
	if category != "" && category != "All" {
		filter["categories"] = category
	}

	cursor, err := s.entries.Find(ctx, filter)
	if err != nil {
		return nil, errs.Wrap(errs.Transient, "loading candidates", err)
	}
	defer cursor.Close(ctx)

	var results []*models.LibraryEntry
	if err := cursor.All(ctx, &results); err != nil {
		return nil, errs.Wrap(errs.Transient, "decoding candidates", err)
	}
	return results, nil
}

func (s *FeedService) loadCategoryTabs(ctx context.Context, userID string) ([]string, error) {
	raw, err := s.entries.Distinct(ctx, "categories", bson.M{"user_id": userID, "status": models.StatusActive})
	if err != nil {
		return nil, errs.Wrap(errs.Transient, "loading category tabs", err)
	}
	out := make([]string, 0, len(raw))
	for _, c := range raw {
		if str, ok := c.(string); ok {
			out = append(out, str)
		}
	}
	return out, nil
}

func (s *FeedService) loadEmbeddings(ctx context.Context, userID string, linkIDs []string) ([][]float64, error) {
	if len(linkIDs) == 0 {
		return nil, nil
	}

	cursor, err := s.entries.Find(ctx, bson.M{"_id": bson.M{"$in": linkIDs}, "user_id": userID})
	if err != nil {
		return nil, errs.Wrap(errs.Transient, "loading engaged embeddings", err)
	}
	defer cursor.Close(ctx)

	var rows []models.LibraryEntry
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, errs.Wrap(errs.Transient, "decoding engaged embeddings", err)
	}

	embeddings := make([][]float64, 0, len(rows))
	for _, r := range rows {
		if len(r.Embedding) > 0 {
			embeddings = append(embeddings, r.Embedding)
		}
	}
	return embeddings, nil
}

func (s *FeedService) loadTimePreferences(ctx context.Context, userID string, now time.Time) ([]models.TimePreference, error) {
	hourSlot := now.Hour()
	dayType := models.DayTypeFor(now)

	if s.prefCache != nil {
		if cached, hit := s.prefCache.Get(ctx, userID, hourSlot, dayType); hit {
			return cached, nil
		}
	}

	cursor, err := s.timePrefs.Find(ctx, bson.M{
		"user_id":   userID,
		"hour_slot": hourSlot,
		"day_type":  dayType,
	})
	if err != nil {
		return nil, errs.Wrap(errs.Transient, "loading time preferences", err)
	}
	defer cursor.Close(ctx)

	var prefs []models.TimePreference
	if err := cursor.All(ctx, &prefs); err != nil {
		return nil, errs.Wrap(errs.Transient, "decoding time preferences", err)
	}

	if s.prefCache != nil {
		s.prefCache.Set(ctx, userID, hourSlot, dayType, prefs)
	}
	return prefs, nil
}

// logRankingEvents records up to max(limit*3, minLog) top candidates for
// offline evaluation. Best-effort: failures are logged locally and never
// propagate to the feed response.
func (s *FeedService) logRankingEvents(ctx context.Context, userID, feedRequestID string, params FeedParams, ranked []*scoring.RankingCandidate, served []*scoring.RankingCandidate, rerankResult rerank.Result) {
	logCount := params.Limit * 3
	if logCount < utils.MinRankingEventLog {
		logCount = utils.MinRankingEventLog
	}
	if logCount > len(ranked) {
		logCount = len(ranked)
	}
	if logCount == 0 {
		return
	}

	servedRank := make(map[string]int, len(served))
	for i, c := range served {
		servedRank[c.Entry.ID] = params.Offset + i + 1
	}

	docs := make([]interface{}, 0, logCount)
	for i := 0; i < logCount; i++ {
		c := ranked[i]

		event := models.RankingEvent{
			FeedRequestID:    feedRequestID,
			LinkID:           c.Entry.ID,
			UserID:           userID,
			SessionID:        params.SessionID,
			CandidateRank:    i + 1,
			BaseScore:        c.BaseScore,
			RerankScore:      c.RerankScore,
			FinalScore:       c.FinalScore,
			Features:         c.Features,
			AlgorithmVersion: utils.AlgorithmVersion,
			RerankerVersion:  rerankResult.Version,
			ActiveCategory:   params.Category,
			CardsShown:       params.CardsShown,
			CreatedAt:        time.Now().UTC(),
		}
		if rank, ok := servedRank[c.Entry.ID]; ok {
			r := rank
			event.ServedRank = &r
		}
		docs = append(docs, event)
	}

	opts := options.InsertMany().SetOrdered(false)
	if _, err := s.rankingLog.InsertMany(ctx, docs, opts); err != nil {
		log.Printf("ranking event log insert failed (best-effort): %v", err)
	}
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[it] = true
	}
	return set
}

func lastN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}
