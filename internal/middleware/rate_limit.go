// middleware/rate_limit.go
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"swipevault/internal/config"
	"swipevault/internal/utils"
)

// RateLimiter is an in-memory sliding-window limiter keyed by an arbitrary
// string (client IP, user id, or a prefixed combination of both).
type RateLimiter struct {
	requests        map[string]*ClientInfo
	mutex           sync.RWMutex
	rate            int
	window          time.Duration
	cleanupInterval time.Duration
}

type ClientInfo struct {
	requests  []time.Time
	lastSeen  time.Time
	blocked   bool
	blockTime time.Time
}

type RateLimitConfig struct {
	Rate    int
	Window  time.Duration
	KeyFunc func(*gin.Context) string
	Message string
	Headers bool
	Skip    func(*gin.Context) bool
}

func NewRateLimiter(rate int, window time.Duration, cleanupInterval ...time.Duration) *RateLimiter {
	cleanup := time.Minute
	if len(cleanupInterval) > 0 {
		cleanup = cleanupInterval[0]
	}

	rl := &RateLimiter{
		requests:        make(map[string]*ClientInfo),
		rate:            rate,
		window:          window,
		cleanupInterval: cleanup,
	}

	go rl.cleanup()

	return rl
}

func RateLimit(rlConfig RateLimitConfig) gin.HandlerFunc {
	limiter := NewRateLimiter(rlConfig.Rate, rlConfig.Window)

	return func(c *gin.Context) {
		if rlConfig.Skip != nil && rlConfig.Skip(c) {
			c.Next()
			return
		}

		key := ""
		if rlConfig.KeyFunc != nil {
			key = rlConfig.KeyFunc(c)
		}
		if key == "" {
			key = c.ClientIP()
		}

		allowed, remaining, resetTime := checkRateLimit(limiter, rlConfig, key)

		if rlConfig.Headers {
			c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", rlConfig.Rate))
			c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
			c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", resetTime.Unix()))
			c.Header("X-RateLimit-Window", rlConfig.Window.String())
		}

		if !allowed {
			message := rlConfig.Message
			if message == "" {
				message = "rate limit exceeded"
			}
			utils.ErrorResponse(c, http.StatusTooManyRequests, message, "")
			c.Abort()
			return
		}

		c.Next()
	}
}

// checkRateLimit prefers the shared Redis counter so a limit is enforced
// consistently across replicas; it falls back to the in-process limiter
// whenever Redis is unconfigured or the call itself fails, so a cache outage
// degrades to per-instance limiting rather than opening the gate entirely.
func checkRateLimit(limiter *RateLimiter, rlConfig RateLimitConfig, key string) (bool, int, time.Time) {
	if config.GetRedisClient() != nil {
		redisKey := config.GenerateKey("ratelimit", key)
		allowed, count, err := config.RateLimitCheck(context.Background(), redisKey, rlConfig.Rate, rlConfig.Window)
		if err == nil {
			remaining := rlConfig.Rate - count
			if remaining < 0 {
				remaining = 0
			}
			return allowed, remaining, time.Now().Add(rlConfig.Window)
		}
	}
	return limiter.isAllowed(key)
}

func userOrIPKey(prefix string) func(*gin.Context) string {
	return func(c *gin.Context) string {
		if userID, exists := c.Get(utils.ContextUserID); exists {
			if id, ok := userID.(string); ok && id != "" {
				return prefix + id
			}
		}
		return prefix + c.ClientIP()
	}
}

// FeedRateLimit limits how often a user can request a new ranked feed.
func FeedRateLimit() gin.HandlerFunc {
	return RateLimit(RateLimitConfig{
		Rate:    utils.FeedRateLimitPerMinute,
		Window:  time.Minute,
		KeyFunc: userOrIPKey("feed_"),
		Headers: true,
		Message: "too many feed requests, slow down",
	})
}

// AuthRateLimit limits signup/login attempts per IP.
func AuthRateLimit() gin.HandlerFunc {
	return RateLimit(RateLimitConfig{
		Rate:    utils.AuthRateLimitPerMinute,
		Window:  time.Minute,
		KeyFunc: func(c *gin.Context) string { return "auth_" + c.ClientIP() },
		Headers: true,
		Message: "too many authentication attempts",
	})
}

// UnfurlRateLimit limits how often a user can trigger an outbound unfurl
// fetch, since each one spends an external HTTP round trip.
func UnfurlRateLimit() gin.HandlerFunc {
	return RateLimit(RateLimitConfig{
		Rate:    utils.UnfurlRateLimitPerMinute,
		Window:  time.Minute,
		KeyFunc: userOrIPKey("unfurl_"),
		Headers: true,
		Message: "too many link imports, slow down",
	})
}

// EngagementRateLimit limits the event-ingestion endpoint, which clients may
// call once per swipe.
func EngagementRateLimit() gin.HandlerFunc {
	return RateLimit(RateLimitConfig{
		Rate:    utils.FeedRateLimitPerMinute * 4,
		Window:  time.Minute,
		KeyFunc: userOrIPKey("engagement_"),
		Headers: true,
		Message: "too many engagement events",
	})
}

func (rl *RateLimiter) isAllowed(key string) (bool, int, time.Time) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()

	client, exists := rl.requests[key]
	if !exists {
		client = &ClientInfo{
			requests: make([]time.Time, 0),
			lastSeen: now,
		}
		rl.requests[key] = client
	}
	client.lastSeen = now

	if client.blocked && now.Before(client.blockTime.Add(rl.window)) {
		return false, 0, client.blockTime.Add(rl.window)
	}

	cutoff := now.Add(-rl.window)
	validRequests := make([]time.Time, 0, len(client.requests))
	for _, reqTime := range client.requests {
		if reqTime.After(cutoff) {
			validRequests = append(validRequests, reqTime)
		}
	}
	client.requests = validRequests

	if len(client.requests) >= rl.rate {
		client.blocked = true
		client.blockTime = now
		return false, 0, now.Add(rl.window)
	}

	client.requests = append(client.requests, now)
	client.blocked = false

	remaining := rl.rate - len(client.requests)
	resetTime := now.Add(rl.window)
	if len(client.requests) > 0 {
		resetTime = client.requests[0].Add(rl.window)
	}

	return true, remaining, resetTime
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		rl.mutex.Lock()
		cutoff := time.Now().Add(-rl.window * 2)
		for key, client := range rl.requests {
			if client.lastSeen.Before(cutoff) {
				delete(rl.requests, key)
			}
		}
		rl.mutex.Unlock()
	}
}
