// internal/services/links_service.go
package services

import (
	"context"
	"time"

	"swipevault/internal/config"
	"swipevault/internal/errs"
	"swipevault/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LinksService covers direct CRUD over a user's library entries: listing,
// patching status/shown-count/liked state, and deletion. Content creation
// lives in IngestService.
type LinksService struct {
	entries          *mongo.Collection
	engagementEvents *mongo.Collection
	rankingEvents    *mongo.Collection
}

func NewLinksService() *LinksService {
	return &LinksService{
		entries:          config.DB.Collection("library_entries"),
		engagementEvents: config.DB.Collection("engagement_events"),
		rankingEvents:    config.DB.Collection("ranking_events"),
	}
}

// ListParams controls GET /links filtering.
type ListParams struct {
	Status string
	Limit  int
}

func (s *LinksService) List(ctx context.Context, userID string, params ListParams) ([]*models.LibraryEntry, error) {
	filter := bson.M{"user_id": userID}
	if params.Status != "" {
		filter["status"] = params.Status
	}

	opts := options.Find().SetSort(bson.D{{Key: "added_at", Value: -1}})
	if params.Limit > 0 {
		opts.SetLimit(int64(params.Limit))
	}

	cursor, err := s.entries.Find(ctx, filter, opts)
	if err != nil {
		return nil, errs.Wrap(errs.Transient, "listing entries", err)
	}
	defer cursor.Close(ctx)

	var results []*models.LibraryEntry
	if err := cursor.All(ctx, &results); err != nil {
		return nil, errs.Wrap(errs.Transient, "decoding entries", err)
	}
	return results, nil
}

// Stats is the summary shape for GET /links?stats=true.
type Stats struct {
	Active     int64    `json:"active"`
	Archived   int64    `json:"archived"`
	Total      int64    `json:"total"`
	Categories []string `json:"categories"`
}

func (s *LinksService) Stats(ctx context.Context, userID string) (*Stats, error) {
	active, err := s.entries.CountDocuments(ctx, bson.M{"user_id": userID, "status": models.StatusActive})
	if err != nil {
		return nil, errs.Wrap(errs.Transient, "counting active entries", err)
	}
	archived, err := s.entries.CountDocuments(ctx, bson.M{"user_id": userID, "status": models.StatusArchived})
	if err != nil {
		return nil, errs.Wrap(errs.Transient, "counting archived entries", err)
	}

	categories, err := s.entries.Distinct(ctx, "categories", bson.M{"user_id": userID})
	if err != nil {
		return nil, errs.Wrap(errs.Transient, "listing categories", err)
	}
	categoryStrings := make([]string, 0, len(categories))
	for _, c := range categories {
		if s, ok := c.(string); ok {
			categoryStrings = append(categoryStrings, s)
		}
	}

	return &Stats{
		Active:     active,
		Archived:   archived,
		Total:      active + archived,
		Categories: categoryStrings,
	}, nil
}

// Get loads one entry, scoped to the owning user.
func (s *LinksService) Get(ctx context.Context, userID, id string) (*models.LibraryEntry, error) {
	var entry models.LibraryEntry
	err := s.entries.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&entry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errs.New(errs.NotFound, "entry not found")
		}
		return nil, errs.Wrap(errs.Transient, "loading entry", err)
	}
	return &entry, nil
}

// PatchRequest is the payload for PATCH /links/{id}.
type PatchRequest struct {
	Status         *string `json:"status,omitempty"`
	ShownCount     *int    `json:"shownCount,omitempty"`
	IncrementShown *bool   `json:"incrementShown,omitempty"`
	Liked          *bool   `json:"liked,omitempty"`
}

func (s *LinksService) Patch(ctx context.Context, userID, id string, req PatchRequest) (*models.LibraryEntry, error) {
	entry, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}

	if req.Status != nil {
		status := models.EntryStatus(*req.Status)
		if status != models.StatusActive && status != models.StatusArchived {
			return nil, errs.New(errs.Validation, "status must be active or archived")
		}
		set["status"] = status
		if status == models.StatusArchived && entry.ArchivedAt == nil {
			set["archived_at"] = time.Now().UTC()
		}
		if status == models.StatusActive {
			unset["archived_at"] = ""
		}
	}

	if req.ShownCount != nil {
		if *req.ShownCount < 0 {
			return nil, errs.New(errs.Validation, "shownCount must be >= 0")
		}
		set["shown_count"] = *req.ShownCount
	} else if req.IncrementShown != nil && *req.IncrementShown {
		set["shown_count"] = entry.ShownCount + 1
		set["last_shown_at"] = time.Now().UTC()
	}

	if req.Liked != nil {
		if *req.Liked {
			set["liked_at"] = time.Now().UTC()
		} else {
			unset["liked_at"] = ""
		}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	_, err = s.entries.UpdateOne(ctx, bson.M{"_id": id, "user_id": userID}, update)
	if err != nil {
		return nil, errs.Wrap(errs.Transient, "updating entry", err)
	}

	return s.Get(ctx, userID, id)
}

// Delete hard-deletes an entry, scoped to the owning user, and cascades the
// deletion into that link's engagement and ranking history so neither
// collection keeps rows pointing at a link_id the user can no longer see.
func (s *LinksService) Delete(ctx context.Context, userID, id string) error {
	res, err := s.entries.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return errs.Wrap(errs.Transient, "deleting entry", err)
	}
	if res.DeletedCount == 0 {
		return errs.New(errs.NotFound, "entry not found")
	}

	scope := bson.M{"user_id": userID, "link_id": id}
	if _, err := s.engagementEvents.DeleteMany(ctx, scope); err != nil {
		return errs.Wrap(errs.Transient, "deleting engagement history", err)
	}
	if _, err := s.rankingEvents.DeleteMany(ctx, scope); err != nil {
		return errs.Wrap(errs.Transient, "deleting ranking history", err)
	}
	return nil
}
