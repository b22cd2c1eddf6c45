// internal/services/timepref_cache.go
package services

import (
	"context"
	"strconv"

	"swipevault/internal/config"
	"swipevault/internal/models"
	"swipevault/internal/utils"
)

// TimePreferenceCache is a Redis read-through cache in front of the
// time_preferences collection, keyed by the (userId, hourSlot, dayType)
// triple the feed handler queries on every request. It is a pure
// optimization: every method degrades to a cache miss when Redis is
// unconfigured or unreachable, never an error.
type TimePreferenceCache struct{}

// NewTimePreferenceCache constructs the cache. It holds no state of its own;
// config.GetRedisClient() is resolved lazily on each call so it reflects
// whatever Redis connected (or didn't) at startup.
func NewTimePreferenceCache() *TimePreferenceCache {
	return &TimePreferenceCache{}
}

func (c *TimePreferenceCache) key(userID string, hourSlot int, dayType models.DayType) string {
	return config.GenerateKey("timepref", userID, strconv.Itoa(hourSlot), string(dayType))
}

// Get returns the cached rows for the slot and whether the cache was hit.
func (c *TimePreferenceCache) Get(ctx context.Context, userID string, hourSlot int, dayType models.DayType) ([]models.TimePreference, bool) {
	if config.GetRedisClient() == nil {
		return nil, false
	}

	var prefs []models.TimePreference
	if err := config.GetJSON(ctx, c.key(userID, hourSlot, dayType), &prefs); err != nil {
		return nil, false
	}
	return prefs, true
}

// Set stores the rows for the slot. Failures are non-fatal; the next read
// just falls through to Mongo again.
func (c *TimePreferenceCache) Set(ctx context.Context, userID string, hourSlot int, dayType models.DayType, prefs []models.TimePreference) {
	if config.GetRedisClient() == nil {
		return
	}
	_ = config.SetJSON(ctx, c.key(userID, hourSlot, dayType), prefs, utils.TimePreferenceCacheTTL)
}

// Invalidate drops the cached entry for one slot, called after an
// engagement-ingestion write updates that slot's preferences.
func (c *TimePreferenceCache) Invalidate(ctx context.Context, userID string, hourSlot int, dayType models.DayType) {
	if config.GetRedisClient() == nil {
		return
	}
	_ = config.Delete(ctx, c.key(userID, hourSlot, dayType))
}
