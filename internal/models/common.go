// models/common.go
package models

import (
	"time"
)

// BaseModel contains the timestamp fields shared by every persisted entity.
// Mongo's default ObjectID is not used here: entity ids are opaque 12-char
// tokens (see utils.NewID), so BaseModel carries timestamps only.
type BaseModel struct {
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

func (b *BaseModel) BeforeCreate() {
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
}

func (b *BaseModel) BeforeUpdate() {
	b.UpdatedAt = time.Now().UTC()
}

// ContentType enumerates the kinds of library entries the ingestor produces.
type ContentType string

const (
	ContentTypeYouTube   ContentType = "youtube"
	ContentTypeTweet     ContentType = "tweet"
	ContentTypeArticle   ContentType = "article"
	ContentTypeInstagram ContentType = "instagram"
	ContentTypeImage     ContentType = "image"
	ContentTypeText      ContentType = "text"
	ContentTypeGeneric   ContentType = "generic"
)

// EntryStatus is the lifecycle state of a LibraryEntry.
type EntryStatus string

const (
	StatusActive   EntryStatus = "active"
	StatusArchived EntryStatus = "archived"
)

// EngagementEventType enumerates the signals the feed client reports back.
type EngagementEventType string

const (
	EventImpression EngagementEventType = "impression"
	EventDwell      EngagementEventType = "dwell"
	EventOpen       EngagementEventType = "open"
)

// DayType buckets a calendar day for time-of-day preference learning.
type DayType string

const (
	DayTypeWeekday DayType = "weekday"
	DayTypeWeekend DayType = "weekend"
)

// PaginationInfo for list API responses.
type PaginationInfo struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

// PaginatedResponse is the generic envelope for list endpoints.
type PaginatedResponse struct {
	Data       interface{}    `json:"data"`
	Pagination PaginationInfo `json:"pagination"`
}
