// middleware/error_handler.go
package middleware

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"swipevault/internal/errs"
)

// ErrorResponse is the structured error envelope returned to clients.
type ErrorResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Error     string      `json:"error,omitempty"`
	Code      string      `json:"code,omitempty"`
	Details   interface{} `json:"details,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Path      string      `json:"path"`
	Method    string      `json:"method"`
	RequestID string      `json:"request_id,omitempty"`
}

// GlobalErrorHandler recovers panics and renders any error attached to the
// gin context by a handler via c.Error(err).
func GlobalErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC RECOVERED: %v\n%s", r, debug.Stack())
				respond(c, http.StatusInternalServerError, "Internal server error", "an unexpected error occurred", "INTERNAL_ERROR")
			}
		}()

		c.Next()

		if len(c.Errors) > 0 {
			handleLastError(c)
		}
	}
}

// NotFoundHandler handles unmatched routes.
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		respond(c, http.StatusNotFound, "Route not found",
			fmt.Sprintf("the requested endpoint %s %s was not found", c.Request.Method, c.Request.URL.Path),
			"ROUTE_NOT_FOUND")
	}
}

func handleLastError(c *gin.Context) {
	ginErr := c.Errors.Last()
	if ginErr == nil {
		return
	}
	err := ginErr.Err

	if domainErr, ok := err.(*errs.Error); ok {
		statusCode, code := domainErrStatus(domainErr.Kind)
		respond(c, statusCode, domainErr.Message, "", code)
		return
	}

	switch {
	case mongo.IsDuplicateKeyError(err):
		respond(c, http.StatusConflict, "Resource already exists", err.Error(), "DUPLICATE_RESOURCE")
	case err == mongo.ErrNoDocuments:
		respond(c, http.StatusNotFound, "Resource not found", "", "RESOURCE_NOT_FOUND")
	case mongo.IsTimeout(err):
		respond(c, http.StatusRequestTimeout, "Database operation timed out", "", "DATABASE_TIMEOUT")
	case mongo.IsNetworkError(err):
		respond(c, http.StatusServiceUnavailable, "Database connection error", "", "DATABASE_CONNECTION_ERROR")
	default:
		log.Printf("unhandled error: %v", err)
		respond(c, http.StatusInternalServerError, "Internal server error", "", "INTERNAL_ERROR")
	}
}

func domainErrStatus(kind errs.Kind) (int, string) {
	switch kind {
	case errs.Validation:
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errs.AuthRequired:
		return http.StatusUnauthorized, "AUTH_REQUIRED"
	case errs.Conflict:
		return http.StatusConflict, "CONFLICT"
	case errs.NotFound:
		return http.StatusNotFound, "NOT_FOUND"
	case errs.UnsafeTarget:
		return http.StatusBadRequest, "UNSAFE_TARGET"
	case errs.ExternalFailure:
		return http.StatusBadGateway, "EXTERNAL_FAILURE"
	case errs.Transient:
		return http.StatusServiceUnavailable, "TRANSIENT"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func respond(c *gin.Context, statusCode int, message, errMsg, code string) {
	c.JSON(statusCode, ErrorResponse{
		Success:   false,
		Message:   message,
		Error:     errMsg,
		Code:      code,
		Timestamp: time.Now().UTC(),
		Path:      c.Request.URL.Path,
		Method:    c.Request.Method,
		RequestID: getRequestID(c),
	})
}

// Fail aborts the request with a rendered domain error. Handlers call this
// instead of returning an error upward, since the feed handler must keep
// responding even when ranking-event logging fails (best-effort logging
// never calls Fail).
func Fail(c *gin.Context, err error) {
	c.Error(err) //nolint:errcheck
	c.Abort()
}

// BindJSON decodes the request body into v, failing the request with a
// Validation-kind domain error on malformed or invalid input.
func BindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		Fail(c, errs.Wrap(errs.Validation, "invalid request body", err))
		return false
	}
	return true
}

func getRequestID(c *gin.Context) string {
	if requestID := c.GetHeader("X-Request-ID"); requestID != "" {
		return requestID
	}
	return ""
}
