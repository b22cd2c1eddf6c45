// utils/constants.go
package utils

import "time"

// Application constants
const (
	AppName    = "swipevault"
	AppVersion = "1.0.0"
	APIVersion = "v1"

	// Default pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Upload / ingestion constraints
	MaxImageSizeMB   = 10 // 10MB uploaded image bytes
	MaxBulkURLImport = 50 // urls per PUT /upload call
	YouTubeFetchTimeout = 5 * time.Second
	GenericFetchTimeout = 8 * time.Second
	MaxFetchBodyBytes   = 750 * 1024 // 750KB cap on unfurl response bodies
	MaxRedirects        = 4

	// Rate limiting
	FeedRateLimitPerMinute   = 60
	AuthRateLimitPerMinute   = 10
	UnfurlRateLimitPerMinute = 30

	// Database
	MongoTimeout     = 10 * time.Second
	MongoMaxPoolSize = 100
	MongoMinPoolSize = 5

	// Session
	SessionCookieName = "swipevault_session"

	// Scoring / ranking
	MaxSessionHistoryItems = 200
	AlgorithmVersion       = "scoring-v1"
	DefaultRerankerVersion = "xgboost-v1"
	MaxSemanticEngagedIDs  = 48 // most recent engagedIds considered for semantic signal
	MinRankingEventLog     = 60 // floor on how many top candidates get logged per feed request

	// Training-dataset export
	ExportDefaultWindowDays = 30
	ExportOutcomeWindow     = 6 * time.Hour

	// Caching
	TimePreferenceCacheTTL = 10 * time.Minute
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusFail    = "fail"
)

// Error Messages
const (
	ErrInvalidCredentials = "Invalid email or password"
	ErrUserNotFound       = "User not found"
	ErrEmailAlreadyExists = "Email already registered"
	ErrUnauthorized       = "Unauthorized access"
	ErrTokenExpired       = "Session has expired"
	ErrInvalidToken       = "Invalid session"
	ErrInvalidRequest     = "Invalid request format"
	ErrValidationFailed   = "Validation failed"
	ErrInternalError      = "Internal server error"
	ErrNotFound           = "Resource not found"
	ErrConflict           = "Resource already exists"
	ErrUnsafeTarget       = "URL target is not safe to fetch"
	ErrFileTooLarge       = "File size exceeds limit"
	ErrRateLimitExceeded  = "Rate limit exceeded"
	ErrServiceUnavailable = "Service temporarily unavailable"
)

// Success Messages
const (
	MsgUserCreated     = "Account created successfully"
	MsgLoginSuccess    = "Login successful"
	MsgLogoutSuccess   = "Logout successful"
	MsgEntryCreated    = "Entry added to library"
	MsgEntryArchived   = "Entry archived"
	MsgEntryLiked      = "Entry liked"
	MsgEntryDeleted    = "Entry deleted"
	MsgEngagementLogged = "Engagement recorded"
)

// Context Keys
const (
	ContextUserID = "user_id"
)

// Default Values
var (
	SupportedImageTypes = []string{
		"image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp",
	}

	DefaultCategories = []string{"Fun"}
)

// Environment variables keys
const (
	EnvDatabaseURL              = "DATABASE_URL"
	EnvSessionSecret            = "SESSION_SECRET"
	EnvRedisURL                 = "REDIS_URL"
	EnvPort                     = "PORT"
	EnvGinMode                  = "GIN_MODE"
	EnvEnableXGBoostReranker    = "ENABLE_XGBOOST_RERANKER"
	EnvXGBoostRerankerModelPath = "XGBOOST_RERANKER_MODEL_PATH"
	EnvEmbeddingProviderKey     = "EMBEDDING_PROVIDER_KEY"
	EnvAWSRegion                = "AWS_REGION"
	EnvS3Bucket                 = "S3_BUCKET"
	EnvUploadUseS3              = "UPLOAD_USE_S3"
)

// Regular expressions
const (
	EmailRegex = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
)
