// internal/services/ingest_service.go
package services

import (
	"context"
	"encoding/base64"
	"strings"

	"swipevault/internal/config"
	"swipevault/internal/embeddings"
	"swipevault/internal/errs"
	"swipevault/internal/models"
	"swipevault/internal/storage"
	"swipevault/internal/unfurl"
	"swipevault/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// IngestService turns a URL, a pasted note, or an uploaded image into a
// LibraryEntry: unfurling, categorizing, and embedding as applicable.
type IngestService struct {
	entries  *mongo.Collection
	fetcher  *unfurl.Fetcher
	provider embeddings.Provider
	storage  storage.StorageProvider // optional; nil keeps images inline as base64
}

func NewIngestService(fetcher *unfurl.Fetcher, provider embeddings.Provider, storageProvider storage.StorageProvider) *IngestService {
	return &IngestService{
		entries:  config.DB.Collection("library_entries"),
		fetcher:  fetcher,
		provider: provider,
		storage:  storageProvider,
	}
}

// IngestURL fetches and unfurls url, categorizes and embeds it, and stores
// a new entry. Returns errs.Conflict with the existing entry when the user
// has already saved this URL.
func (s *IngestService) IngestURL(ctx context.Context, userID, rawURL string) (*models.LibraryEntry, error) {
	if existing, err := s.findByURL(ctx, userID, rawURL); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, errs.New(errs.Conflict, "this link is already saved")
	}

	result, err := s.fetcher.Unfurl(ctx, rawURL)
	if err != nil {
		return nil, errs.Wrap(errs.UnsafeTarget, "could not fetch url", err)
	}

	entry := &models.LibraryEntry{
		ID:          utils.NewID(),
		UserID:      userID,
		URL:         &rawURL,
		Title:       result.Title,
		Description: result.Description,
		Thumbnail:   result.Thumbnail,
		SiteName:    result.SiteName,
		ContentType: models.ContentType(result.ContentType),
		Status:      models.StatusActive,
	}
	entry.BeforeCreate()
	entry.AddedAt = entry.CreatedAt

	s.categorize(ctx, entry, strings.TrimSpace(result.Title+" "+result.Description))
	s.embed(ctx, entry)

	if _, err := s.entries.InsertOne(ctx, entry); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if existing, findErr := s.findByURL(ctx, userID, rawURL); findErr == nil && existing != nil {
				return existing, errs.New(errs.Conflict, "this link is already saved")
			}
		}
		return nil, errs.Wrap(errs.Transient, "saving entry", err)
	}

	return entry, nil
}

// IngestNote stores a pasted-text entry, skipping the unfurl step.
func (s *IngestService) IngestNote(ctx context.Context, userID string, req models.AddNoteRequest) (*models.LibraryEntry, error) {
	entry := &models.LibraryEntry{
		ID:          utils.NewID(),
		UserID:      userID,
		Title:       req.Title,
		TextContent: req.Text,
		Categories:  req.Categories,
		ContentType: models.ContentTypeText,
		Status:      models.StatusActive,
	}
	entry.BeforeCreate()
	entry.AddedAt = entry.CreatedAt

	if len(entry.Categories) == 0 {
		s.categorize(ctx, entry, strings.TrimSpace(req.Title+" "+req.Text))
	}
	s.embed(ctx, entry)

	if _, err := s.entries.InsertOne(ctx, entry); err != nil {
		return nil, errs.Wrap(errs.Transient, "saving entry", err)
	}
	return entry, nil
}

// IngestImage stores an uploaded image, skipping the unfurl step. When a
// storage provider is configured the decoded bytes are uploaded there and
// the entry keeps only the resulting URL; otherwise the data URI is kept
// inline.
func (s *IngestService) IngestImage(ctx context.Context, userID, title, imageData string) (*models.LibraryEntry, error) {
	entry := &models.LibraryEntry{
		ID:          utils.NewID(),
		UserID:      userID,
		Title:       title,
		ImageData:   imageData,
		ContentType: models.ContentTypeImage,
		Status:      models.StatusActive,
	}
	entry.BeforeCreate()
	entry.AddedAt = entry.CreatedAt

	if s.storage != nil {
		if url, err := s.uploadImage(userID, entry.ID, imageData); err == nil {
			entry.ImageData = ""
			entry.Thumbnail = url
		}
	}

	s.categorize(ctx, entry, title)

	if _, err := s.entries.InsertOne(ctx, entry); err != nil {
		return nil, errs.Wrap(errs.Transient, "saving entry", err)
	}
	return entry, nil
}

// uploadImage decodes a "data:<mime>;base64,<payload>" URI and uploads the
// raw bytes to the configured storage provider, returning its public URL.
func (s *IngestService) uploadImage(userID, entryID, dataURI string) (string, error) {
	contentType := "image/jpeg"
	payload := dataURI
	if idx := strings.Index(dataURI, ","); idx >= 0 && strings.HasPrefix(dataURI, "data:") {
		header := dataURI[5:idx]
		if semi := strings.Index(header, ";"); semi >= 0 {
			contentType = header[:semi]
		}
		payload = dataURI[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", err
	}

	key := storage.GenerateStorageKey(userID, entryID+extensionFor(contentType), "pasted_image")
	result, err := s.storage.Upload(key, strings.NewReader(string(raw)), contentType, int64(len(raw)))
	if err != nil {
		return "", err
	}
	return result.URL, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

// BulkIngestURLs ingests up to 50 URLs, reporting a per-URL outcome rather
// than failing the whole batch on one bad link.
func (s *IngestService) BulkIngestURLs(ctx context.Context, userID string, urls []string) []models.BulkAddResult {
	results := make([]models.BulkAddResult, 0, len(urls))
	for _, u := range urls {
		entry, err := s.IngestURL(ctx, userID, u)
		switch {
		case err == nil:
			results = append(results, models.BulkAddResult{URL: u, Status: "added", EntryID: entry.ID})
		case errs.IsConflict(err):
			results = append(results, models.BulkAddResult{URL: u, Status: "duplicate", EntryID: entry.ID})
		default:
			results = append(results, models.BulkAddResult{URL: u, Status: "error", Error: err.Error()})
		}
	}
	return results
}

func (s *IngestService) findByURL(ctx context.Context, userID, rawURL string) (*models.LibraryEntry, error) {
	var entry models.LibraryEntry
	err := s.entries.FindOne(ctx, bson.M{"user_id": userID, "url": rawURL}).Decode(&entry)
	if err == nil {
		return &entry, nil
	}
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return nil, errs.Wrap(errs.Transient, "checking for duplicate", err)
}

// categorize assigns categories from the fixed vocabulary via the
// configured provider, falling back to ["Fun"] on any external failure.
func (s *IngestService) categorize(ctx context.Context, entry *models.LibraryEntry, text string) {
	categories, err := s.provider.Categorize(ctx, text)
	if err != nil || len(categories) == 0 {
		entry.Categories = []string{"Fun"}
		return
	}
	entry.Categories = categories
}

// embed generates a dense vector from the entry's textual surface, leaving
// it nil on any external failure rather than failing ingestion.
func (s *IngestService) embed(ctx context.Context, entry *models.LibraryEntry) {
	text := strings.TrimSpace(strings.Join([]string{
		entry.Title, entry.Description, strings.Join(entry.Categories, " "), entry.SiteName,
	}, " "))
	if text == "" {
		return
	}
	vec, err := s.provider.Embed(ctx, text)
	if err != nil {
		return
	}
	entry.Embedding = vec
}
