// models/engagement.go
package models

import "time"

// EngagementEvent is an immutable record of one client-reported signal.
// Rows are never updated or deleted; aggregates derived from them live on
// LibraryEntry and TimePreference and are updated incrementally.
type EngagementEvent struct {
	ID     string `json:"id" bson:"_id"`
	UserID string `json:"userId" bson:"user_id"`
	LinkID string `json:"linkId" bson:"link_id"`

	EventType EngagementEventType `json:"eventType" bson:"event_type"`

	DwellTimeMs   *int64   `json:"dwellTimeMs,omitempty" bson:"dwell_time_ms,omitempty"`
	SwipeVelocity *float64 `json:"swipeVelocity,omitempty" bson:"swipe_velocity,omitempty"`
	CardIndex     *int     `json:"cardIndex,omitempty" bson:"card_index,omitempty"`

	HourOfDay int     `json:"hourOfDay" bson:"hour_of_day"`
	DayType   DayType `json:"dayType" bson:"day_type"`

	SessionID     *string `json:"sessionId,omitempty" bson:"session_id,omitempty"`
	FeedRequestID *string `json:"feedRequestId,omitempty" bson:"feed_request_id,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// EngagementRequest is the payload for POST /engagement.
type EngagementRequest struct {
	LinkID        string  `json:"linkId" binding:"required"`
	EventType     string  `json:"eventType" binding:"required,oneof=impression dwell open"`
	DwellTimeMs   *int64  `json:"dwellTimeMs,omitempty"`
	SwipeVelocity *float64 `json:"swipeVelocity,omitempty"`
	CardIndex     *int    `json:"cardIndex,omitempty"`
	SessionID     *string `json:"sessionId,omitempty"`
	FeedRequestID *string `json:"feedRequestId,omitempty"`
}

// TimePreference is the learned per-(hourSlot,dayType,category) engagement
// average. The (userId,hourSlot,dayType,category) tuple is unique; rows are
// upserted with a running mean, never replaced wholesale.
type TimePreference struct {
	UserID      string  `json:"userId" bson:"user_id"`
	HourSlot    int     `json:"hourSlot" bson:"hour_slot"`
	DayType     DayType `json:"dayType" bson:"day_type"`
	Category    string  `json:"category" bson:"category"`
	AvgEngagement float64 `json:"avgEngagement" bson:"avg_engagement"`
	SampleCount int     `json:"sampleCount" bson:"sample_count"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updated_at"`
}

// DayTypeFor classifies t into the weekday/weekend bucket by its weekday.
func DayTypeFor(t time.Time) DayType {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return DayTypeWeekend
	default:
		return DayTypeWeekday
	}
}
