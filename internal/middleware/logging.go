// middleware/logging.go
package middleware

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LogLevel string

const (
	DEBUG LogLevel = "DEBUG"
	INFO  LogLevel = "INFO"
	WARN  LogLevel = "WARN"
	ERROR LogLevel = "ERROR"
)

// LogEntry is one structured request log line.
type LogEntry struct {
	Timestamp    time.Time `json:"timestamp"`
	Level        LogLevel  `json:"level"`
	Method       string    `json:"method"`
	Path         string    `json:"path"`
	StatusCode   int       `json:"status_code"`
	ResponseTime int64     `json:"response_time_ms"`
	ClientIP     string    `json:"client_ip"`
	UserID       string    `json:"user_id,omitempty"`
	RequestID    string    `json:"request_id,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// Logger writes one structured JSON log line per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
			c.Header("X-Request-ID", requestID)
		}
		c.Set("request_id", requestID)

		c.Next()

		userID := "anonymous"
		if uid, exists := c.Get("user_id"); exists {
			if s, ok := uid.(string); ok {
				userID = s
			}
		}

		entry := LogEntry{
			Timestamp:    start,
			Level:        levelForStatus(c.Writer.Status()),
			Method:       c.Request.Method,
			Path:         c.Request.URL.Path,
			StatusCode:   c.Writer.Status(),
			ResponseTime: time.Since(start).Milliseconds(),
			ClientIP:     c.ClientIP(),
			UserID:       userID,
			RequestID:    requestID,
		}
		if len(c.Errors) > 0 {
			entry.Error = c.Errors.String()
		}

		logEntry(entry)
	}
}

func levelForStatus(statusCode int) LogLevel {
	switch {
	case statusCode >= 500:
		return ERROR
	case statusCode >= 400:
		return WARN
	default:
		return INFO
	}
}

func logEntry(entry LogEntry) {
	jsonData, err := json.Marshal(entry)
	if err != nil {
		log.Printf("failed to marshal log entry: %v", err)
		return
	}
	os.Stdout.Write(append(jsonData, '\n'))
}

// PerformanceLogger logs requests slower than one second.
func PerformanceLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if duration := time.Since(start); duration > time.Second {
			log.Printf("slow request: %s %s took %v", c.Request.Method, c.Request.URL.Path, duration)
		}
	}
}
