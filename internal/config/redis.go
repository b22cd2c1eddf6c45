// internal/config/redis.go
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis client instances
var (
	RedisClient        *redis.Client
	RedisClusterClient *redis.ClusterClient
)

// RedisManager manages Redis connections and operations
type RedisManager struct {
	client        *redis.Client
	clusterClient *redis.ClusterClient
	config        RedisConfig
	isCluster     bool
}

// NewRedisManager creates a new Redis manager instance
func NewRedisManager(config RedisConfig) *RedisManager {
	return &RedisManager{
		config:    config,
		isCluster: config.EnableCluster,
	}
}

// InitRedis connects the package-level client used by the rate limiter and
// the time-preference cache. Both callers treat a missing/failed connection
// as "caching disabled", so a failure here is reported but not fatal.
func InitRedis() error {
	cfg := GetConfig().Redis
	if !cfg.Enabled {
		return nil
	}

	manager := NewRedisManager(cfg)
	if err := manager.Connect(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if manager.isCluster {
		RedisClusterClient = manager.clusterClient
	} else {
		RedisClient = manager.client
	}

	log.Println("Redis connected successfully")
	return nil
}

// Connect establishes Redis connection
func (rm *RedisManager) Connect() error {
	if rm.isCluster {
		return rm.connectCluster()
	}
	return rm.connectSingle()
}

// connectSingle connects to a single Redis instance
func (rm *RedisManager) connectSingle() error {
	if rm.config.URL != "" {
		opts, err := redis.ParseURL(rm.config.URL)
		if err != nil {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		rm.client = redis.NewClient(opts)
	} else {
		rm.client = redis.NewClient(&redis.Options{
			Addr:            rm.config.Host + ":" + rm.config.Port,
			Password:        rm.config.Password,
			DB:              rm.config.Database,
			MaxRetries:      rm.config.MaxRetries,
			MinRetryBackoff: rm.config.MinRetryBackoff,
			MaxRetryBackoff: rm.config.MaxRetryBackoff,
			DialTimeout:     rm.config.DialTimeout,
			ReadTimeout:     rm.config.ReadTimeout,
			WriteTimeout:    rm.config.WriteTimeout,
			PoolSize:        rm.config.PoolSize,
			MinIdleConns:    rm.config.MinIdleConns,
			MaxConnAge:      rm.config.MaxConnAge,
			PoolTimeout:     rm.config.PoolTimeout,
			IdleTimeout:     rm.config.IdleTimeout,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rm.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// connectCluster connects to Redis cluster
func (rm *RedisManager) connectCluster() error {
	if len(rm.config.ClusterAddresses) == 0 {
		return fmt.Errorf("no cluster addresses provided")
	}

	rm.clusterClient = redis.NewClusterClient(&redis.ClusterOptions{
		Addrs:           rm.config.ClusterAddresses,
		Password:        rm.config.Password,
		MaxRetries:      rm.config.MaxRetries,
		MinRetryBackoff: rm.config.MinRetryBackoff,
		MaxRetryBackoff: rm.config.MaxRetryBackoff,
		DialTimeout:     rm.config.DialTimeout,
		ReadTimeout:     rm.config.ReadTimeout,
		WriteTimeout:    rm.config.WriteTimeout,
		PoolSize:        rm.config.PoolSize,
		MinIdleConns:    rm.config.MinIdleConns,
		MaxConnAge:      rm.config.MaxConnAge,
		PoolTimeout:     rm.config.PoolTimeout,
		IdleTimeout:     rm.config.IdleTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rm.clusterClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping Redis cluster: %w", err)
	}
	return nil
}

// GetRedisClient returns the appropriate Redis client, or nil when Redis is
// not enabled/connected. Every caller in this package treats a nil client
// as a cache miss / pass-through, never as an error.
func GetRedisClient() redis.Cmdable {
	if RedisClusterClient != nil {
		return RedisClusterClient
	}
	return RedisClient
}

// Set stores data in Redis with expiration
func Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	client := GetRedisClient()
	if client == nil {
		return fmt.Errorf("redis client not initialized")
	}

	var data []byte
	var err error
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		data, err = json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal value: %w", err)
		}
	}

	return client.Set(ctx, key, data, expiration).Err()
}

// Get retrieves data from Redis
func Get(ctx context.Context, key string) (string, error) {
	client := GetRedisClient()
	if client == nil {
		return "", fmt.Errorf("redis client not initialized")
	}

	result, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", fmt.Errorf("key not found")
	}
	return result, err
}

// GetJSON retrieves and unmarshals JSON data from Redis
func GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

// SetJSON marshals and stores JSON data in Redis
func SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return Set(ctx, key, value, expiration)
}

// Delete removes keys from Redis
func Delete(ctx context.Context, keys ...string) error {
	client := GetRedisClient()
	if client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	return client.Del(ctx, keys...).Err()
}

// RateLimitCheck atomically increments key's counter and reports whether it
// is still within limit for the current window, refreshing the window's TTL
// only on the counter's first increment.
func RateLimitCheck(ctx context.Context, key string, limit int, window time.Duration) (bool, int, error) {
	client := GetRedisClient()
	if client == nil {
		return false, 0, fmt.Errorf("redis client not initialized")
	}

	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}
	if count == 1 {
		if err := client.Expire(ctx, key, window).Err(); err != nil {
			return false, 0, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	currentCount := int(count)
	return currentCount <= limit, currentCount, nil
}

// ResetRateLimit resets rate limit counter
func ResetRateLimit(ctx context.Context, key string) error {
	return Delete(ctx, key)
}

// HealthCheck checks Redis connection health
func HealthCheck(ctx context.Context) error {
	client := GetRedisClient()
	if client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	return client.Ping(ctx).Err()
}

// Close closes Redis connections
func Close() error {
	var errs []string

	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Sprintf("client close error: %v", err))
		}
	}
	if RedisClusterClient != nil {
		if err := RedisClusterClient.Close(); err != nil {
			errs = append(errs, fmt.Sprintf("cluster client close error: %v", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("redis close errors: %s", strings.Join(errs, ", "))
	}
	return nil
}

// GenerateKey generates a prefixed cache key
func GenerateKey(prefix string, parts ...string) string {
	allParts := append([]string{prefix}, parts...)
	return strings.Join(allParts, ":")
}
