// internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig     `json:"server"`
	Database   DatabaseConfig   `json:"database"`
	Redis      RedisConfig      `json:"redis"`
	Session    SessionConfig    `json:"session"`
	Upload     UploadConfig     `json:"upload"`
	AWS        AWSConfig        `json:"aws"`
	RateLimit  RateLimitConfig  `json:"rate_limit"`
	Security   SecurityConfig   `json:"security"`
	Reranker   RerankerConfig   `json:"reranker"`
	Embedding  EmbeddingConfig  `json:"embedding"`
	Monitoring MonitoringConfig `json:"monitoring"`

	Environment string `json:"environment"`
}

type ServerConfig struct {
	Port            string        `json:"port"`
	Host            string        `json:"host"`
	Mode            string        `json:"mode"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

type DatabaseConfig struct {
	MongoURI        string        `json:"mongo_uri"`
	DatabaseName    string        `json:"database_name"`
	MaxPoolSize     uint64        `json:"max_pool_size"`
	MinPoolSize     uint64        `json:"min_pool_size"`
	MaxConnIdleTime time.Duration `json:"max_conn_idle_time"`
	ConnectTimeout  time.Duration `json:"connect_timeout"`
}

type RedisConfig struct {
	Enabled          bool          `json:"enabled"`
	URL              string        `json:"url"`
	Host             string        `json:"host"`
	Port             string        `json:"port"`
	Password         string        `json:"password"`
	Database         int           `json:"database"`
	MaxRetries       int           `json:"max_retries"`
	MinRetryBackoff  time.Duration `json:"min_retry_backoff"`
	MaxRetryBackoff  time.Duration `json:"max_retry_backoff"`
	DialTimeout      time.Duration `json:"dial_timeout"`
	ReadTimeout      time.Duration `json:"read_timeout"`
	WriteTimeout     time.Duration `json:"write_timeout"`
	PoolSize         int           `json:"pool_size"`
	MinIdleConns     int           `json:"min_idle_conns"`
	MaxConnAge       time.Duration `json:"max_conn_age"`
	PoolTimeout      time.Duration `json:"pool_timeout"`
	IdleTimeout      time.Duration `json:"idle_timeout"`
	EnableCluster    bool          `json:"enable_cluster"`
	ClusterAddresses []string      `json:"cluster_addresses"`
}

// SessionConfig carries the signing secret and cookie lifetime for the
// session cookie (spec §6 / SPEC_FULL.md's Auth ambient section).
type SessionConfig struct {
	Secret   string        `json:"-"`
	Duration time.Duration `json:"duration"`
}

type UploadConfig struct {
	MaxImageSizeBytes int64  `json:"max_image_size_bytes"`
	UploadPath        string `json:"upload_path"`
	LocalBaseURL      string `json:"local_base_url"`
	UseS3             bool   `json:"use_s3"`
}

type AWSConfig struct {
	Region   string `json:"region"`
	S3Bucket string `json:"s3_bucket"`
}

type RateLimitConfig struct {
	Enabled            bool          `json:"enabled"`
	FeedLimit          int           `json:"feed_limit"`
	FeedWindow         time.Duration `json:"feed_window"`
	AuthLimit          int           `json:"auth_limit"`
	AuthWindow         time.Duration `json:"auth_window"`
	UnfurlLimit        int           `json:"unfurl_limit"`
	UnfurlWindow       time.Duration `json:"unfurl_window"`
}

type SecurityConfig struct {
	PasswordMinLength int      `json:"password_min_length"`
	AllowedOrigins    []string `json:"allowed_origins"`
}

// RerankerConfig controls the optional tree-ensemble reranker.
type RerankerConfig struct {
	Enabled   bool   `json:"enabled"`
	ModelPath string `json:"model_path"`
}

// EmbeddingConfig carries the opaque provider key for the
// Embedder/Categorizer adapter (Bedrock-backed when set, no-op otherwise).
type EmbeddingConfig struct {
	ProviderKey string `json:"-"`
}

type MonitoringConfig struct {
	LogLevel        string `json:"log_level"`
	EnableRequestLog bool  `json:"enable_request_log"`
	HealthCheckPath string `json:"health_check_path"`
}

var AppConfig *Config

func Load() *Config {
	config := &Config{
		Server:      loadServerConfig(),
		Database:    loadDatabaseConfig(),
		Redis:       loadRedisConfig(),
		Session:     loadSessionConfig(),
		Upload:      loadUploadConfig(),
		AWS:         loadAWSConfig(),
		RateLimit:   loadRateLimitConfig(),
		Security:    loadSecurityConfig(),
		Reranker:    loadRerankerConfig(),
		Embedding:   loadEmbeddingConfig(),
		Monitoring:  loadMonitoringConfig(),
		Environment: getEnv("ENVIRONMENT", "development"),
	}
	AppConfig = config
	return config
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:            getEnv("PORT", "8080"),
		Host:            getEnv("HOST", "0.0.0.0"),
		Mode:            getEnv("GIN_MODE", "debug"),
		ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		MongoURI:        getEnv("DATABASE_URL", "mongodb://localhost:27017"),
		DatabaseName:    getEnv("DB_NAME", "swipevault"),
		MaxPoolSize:     getEnvUint64("MONGO_MAX_POOL_SIZE", 100),
		MinPoolSize:     getEnvUint64("MONGO_MIN_POOL_SIZE", 5),
		MaxConnIdleTime: getEnvDuration("MONGO_MAX_CONN_IDLE_TIME", 30*time.Minute),
		ConnectTimeout:  getEnvDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Enabled:          getEnvBool("REDIS_ENABLED", false),
		URL:              getEnv("REDIS_URL", ""),
		Host:             getEnv("REDIS_HOST", "localhost"),
		Port:             getEnv("REDIS_PORT", "6379"),
		Password:         getEnv("REDIS_PASSWORD", ""),
		Database:         getEnvInt("REDIS_DB", 0),
		MaxRetries:       getEnvInt("REDIS_MAX_RETRIES", 3),
		MinRetryBackoff:  getEnvDuration("REDIS_MIN_RETRY_BACKOFF", 8*time.Millisecond),
		MaxRetryBackoff:  getEnvDuration("REDIS_MAX_RETRY_BACKOFF", 512*time.Millisecond),
		DialTimeout:      getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:      getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout:     getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		PoolSize:         getEnvInt("REDIS_POOL_SIZE", 20),
		MinIdleConns:     getEnvInt("REDIS_MIN_IDLE_CONNS", 5),
		MaxConnAge:       getEnvDuration("REDIS_MAX_CONN_AGE", 0),
		PoolTimeout:      getEnvDuration("REDIS_POOL_TIMEOUT", 4*time.Second),
		IdleTimeout:      getEnvDuration("REDIS_IDLE_TIMEOUT", 5*time.Minute),
		EnableCluster:    getEnvBool("REDIS_ENABLE_CLUSTER", false),
		ClusterAddresses: getEnvStringSlice("REDIS_CLUSTER_ADDRESSES", []string{}),
	}
}

func loadSessionConfig() SessionConfig {
	return SessionConfig{
		Secret:   getEnv("SESSION_SECRET", "dev-session-secret-change-in-production"),
		Duration: getEnvDuration("SESSION_DURATION", 30*24*time.Hour),
	}
}

func loadUploadConfig() UploadConfig {
	return UploadConfig{
		MaxImageSizeBytes: getEnvInt64("MAX_IMAGE_SIZE_BYTES", 10<<20),
		UploadPath:        getEnv("UPLOAD_PATH", "./uploads"),
		LocalBaseURL:      getEnv("LOCAL_UPLOAD_URL", "http://localhost:8080/uploads"),
		UseS3:             getEnvBool("UPLOAD_USE_S3", false),
	}
}

func loadAWSConfig() AWSConfig {
	return AWSConfig{
		Region:   getEnv("AWS_REGION", "us-east-1"),
		S3Bucket: getEnv("S3_BUCKET", ""),
	}
}

func loadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:      getEnvBool("RATE_LIMIT_ENABLED", true),
		FeedLimit:    getEnvInt("RATE_LIMIT_FEED", 60),
		FeedWindow:   getEnvDuration("RATE_LIMIT_FEED_WINDOW", 1*time.Minute),
		AuthLimit:    getEnvInt("RATE_LIMIT_AUTH", 10),
		AuthWindow:   getEnvDuration("RATE_LIMIT_AUTH_WINDOW", 1*time.Minute),
		UnfurlLimit:  getEnvInt("RATE_LIMIT_UNFURL", 30),
		UnfurlWindow: getEnvDuration("RATE_LIMIT_UNFURL_WINDOW", 1*time.Minute),
	}
}

func loadSecurityConfig() SecurityConfig {
	return SecurityConfig{
		PasswordMinLength: getEnvInt("PASSWORD_MIN_LENGTH", 8),
		AllowedOrigins:    getEnvStringSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}
}

func loadRerankerConfig() RerankerConfig {
	return RerankerConfig{
		Enabled:   getEnvBool("ENABLE_XGBOOST_RERANKER", false),
		ModelPath: getEnv("XGBOOST_RERANKER_MODEL_PATH", "models/xgboost-reranker.json"),
	}
}

func loadEmbeddingConfig() EmbeddingConfig {
	return EmbeddingConfig{
		ProviderKey: getEnv("EMBEDDING_PROVIDER_KEY", ""),
	}
}

func loadMonitoringConfig() MonitoringConfig {
	return MonitoringConfig{
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		EnableRequestLog: getEnvBool("ENABLE_REQUEST_LOG", true),
		HealthCheckPath:  getEnv("HEALTH_CHECK_PATH", "/health"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Printf("Warning: invalid integer for %s: %s, using default %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
		log.Printf("Warning: invalid int64 for %s: %s, using default %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseUint(value, 10, 64); err == nil {
			return intValue
		}
		log.Printf("Warning: invalid uint64 for %s: %s, using default %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
		log.Printf("Warning: invalid bool for %s: %s, using default %v", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Warning: invalid duration for %s: %s, using default %v", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

// Validate checks for obviously unsafe production configuration.
func (c *Config) Validate() error {
	if c.Database.MongoURI == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" && c.Session.Secret == "dev-session-secret-change-in-production" {
		return fmt.Errorf("SESSION_SECRET must be set in production")
	}
	return nil
}

func (c *Config) IsDevelopment() bool { return c.Environment == "development" || c.Environment == "dev" }
func (c *Config) IsProduction() bool  { return c.Environment == "production" || c.Environment == "prod" }
func (c *Config) IsTest() bool        { return c.Environment == "test" || c.Environment == "testing" }

func (c *Config) GetRedisAddr() string {
	if c.Redis.URL != "" {
		return c.Redis.URL
	}
	return c.Redis.Host + ":" + c.Redis.Port
}

func (c *Config) GetServerAddr() string { return c.Server.Host + ":" + c.Server.Port }
func (c *Config) GetDatabaseURI() string { return c.Database.MongoURI }

func (c *Config) PrintConfig() {
	log.Printf("=== swipevault configuration ===")
	log.Printf("Environment: %s", c.Environment)
	log.Printf("Server: %s (mode: %s)", c.GetServerAddr(), c.Server.Mode)
	log.Printf("Database: %s", c.Database.DatabaseName)
	log.Printf("Redis: %s (DB: %d)", c.GetRedisAddr(), c.Redis.Database)
	log.Printf("Reranker: enabled=%v path=%s", c.Reranker.Enabled, c.Reranker.ModelPath)
	log.Printf("Upload: useS3=%v maxImageSize=%dMB", c.Upload.UseS3, c.Upload.MaxImageSizeBytes/(1024*1024))
	log.Printf("Rate limiting: enabled=%v feed=%d/%v", c.RateLimit.Enabled, c.RateLimit.FeedLimit, c.RateLimit.FeedWindow)
	log.Printf("================================")
}

func GetConfig() *Config {
	if AppConfig == nil {
		log.Println("Configuration not loaded, loading now...")
		return Load()
	}
	return AppConfig
}

func MustLoad() *Config {
	config := Load()
	if err := config.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}
	return config
}
