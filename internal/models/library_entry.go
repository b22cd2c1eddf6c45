// models/library_entry.go
package models

import "time"

// LibraryEntry is one saved item in a user's library: a link, a note, or
// an image. Every mutable statistic (engagementScore, avgDwellMs,
// openCount, shownCount) is updated only by the engagement ingestion path
// or the archive/like handlers — never by the feed handler itself.
type LibraryEntry struct {
	BaseModel `bson:",inline"`
	ID        string `json:"id" bson:"_id"`
	UserID    string `json:"userId" bson:"user_id"`

	URL         *string `json:"url,omitempty" bson:"url,omitempty"`
	Title       string  `json:"title" bson:"title"`
	Description string  `json:"description,omitempty" bson:"description,omitempty"`
	Thumbnail   string  `json:"thumbnail,omitempty" bson:"thumbnail,omitempty"`
	SiteName    string  `json:"siteName,omitempty" bson:"site_name,omitempty"`

	ContentType ContentType `json:"contentType" bson:"content_type"`
	TextContent string      `json:"textContent,omitempty" bson:"text_content,omitempty"`
	ImageData   string      `json:"imageData,omitempty" bson:"image_data,omitempty"`

	Categories []string               `json:"categories" bson:"categories"`
	AISummary  string                 `json:"aiSummary,omitempty" bson:"ai_summary,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	Embedding  []float64              `json:"embedding,omitempty" bson:"embedding,omitempty"`

	Status     EntryStatus `json:"status" bson:"status"`
	AddedAt    time.Time   `json:"addedAt" bson:"added_at"`
	ArchivedAt *time.Time  `json:"archivedAt,omitempty" bson:"archived_at,omitempty"`

	LastShownAt     *time.Time `json:"lastShownAt,omitempty" bson:"last_shown_at,omitempty"`
	ShownCount      int        `json:"shownCount" bson:"shown_count"`
	EngagementScore float64    `json:"engagementScore" bson:"engagement_score"`
	AvgDwellMs      float64    `json:"avgDwellMs" bson:"avg_dwell_ms"`
	OpenCount       int        `json:"openCount" bson:"open_count"`
	LikedAt         *time.Time `json:"likedAt,omitempty" bson:"liked_at,omitempty"`
}

// ClampEngagementScore enforces the [0,1] invariant after an update.
func ClampEngagementScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// AddLinkRequest is the payload for POST /links when adding a URL.
type AddLinkRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// AddNoteRequest is the payload for POST /links when adding free text.
type AddNoteRequest struct {
	Title      string   `json:"title" binding:"required"`
	Text       string   `json:"text" binding:"required"`
	Categories []string `json:"categories"`
}

// BulkAddRequest is the payload for PUT /upload (bulk URL import).
type BulkAddRequest struct {
	URLs []string `json:"urls" binding:"required,min=1,dive,url"`
}

// BulkAddResult reports the outcome for one URL in a bulk import.
type BulkAddResult struct {
	URL        string `json:"url"`
	Status     string `json:"status"` // "added", "duplicate", "error"
	EntryID    string `json:"entryId,omitempty"`
	Error      string `json:"error,omitempty"`
}
