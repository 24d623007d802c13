// ratelimit.go enforces per-client rate limits, returning 429 envelopes when
// the configured requests-per-minute threshold is exceeded. Two limiter
// implementations exist behind one interface: an in-memory token bucket for
// single-instance deployments, and a Redis-backed limiter (GCRA via
// redis_rate) that keeps limits consistent across replicas.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"

	"github.com/orgboard/orgboard/internal/api/response"
)

// Limiter decides whether a request from the given client key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
	// Stop releases any background resources held by the limiter.
	Stop()
}

// RateLimitConfig holds the limits applied per client key.
type RateLimitConfig struct {
	// RequestsPerMinute is the sustained rate allowed per client.
	RequestsPerMinute int
	// BurstSize is the maximum burst of requests allowed.
	BurstSize int
	// CleanupInterval is how often the in-memory limiter drops idle entries.
	CleanupInterval time.Duration
}

// DefaultRateLimitConfig returns general API limits.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 200,
		BurstSize:         50,
		CleanupInterval:   5 * time.Minute,
	}
}

// AuthRateLimitConfig returns stricter limits for the register and login
// endpoints.
func AuthRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 10,
		BurstSize:         5,
		CleanupInterval:   5 * time.Minute,
	}
}

// ---------------------------------------------------------------------------
// In-memory token bucket
// ---------------------------------------------------------------------------

type rateLimitEntry struct {
	tokens     float64
	lastUpdate time.Time
}

// RateLimiter implements a token bucket limiter held in process memory.
type RateLimiter struct {
	config  RateLimitConfig
	entries map[string]*rateLimitEntry
	mu      sync.Mutex
	stopCh  chan struct{}
}

// NewRateLimiter creates a new in-memory rate limiter and starts its cleanup
// goroutine. Call Stop on shutdown.
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		config:  config,
		entries: make(map[string]*rateLimitEntry),
		stopCh:  make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			now := time.Now()
			for key, entry := range rl.entries {
				// Drop entries idle for 10 minutes.
				if now.Sub(entry.lastUpdate) > 10*time.Minute {
					delete(rl.entries, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

// Stop stops the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// Allow checks whether a request from the given key should be allowed.
func (rl *RateLimiter) Allow(_ context.Context, key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	entry, exists := rl.entries[key]
	if !exists {
		rl.entries[key] = &rateLimitEntry{
			tokens:     float64(rl.config.BurstSize) - 1,
			lastUpdate: now,
		}
		return true
	}

	elapsed := now.Sub(entry.lastUpdate)
	tokensPerSecond := float64(rl.config.RequestsPerMinute) / 60.0
	entry.tokens = min(float64(rl.config.BurstSize), entry.tokens+elapsed.Seconds()*tokensPerSecond)
	entry.lastUpdate = now

	if entry.tokens >= 1 {
		entry.tokens--
		return true
	}
	return false
}

// ---------------------------------------------------------------------------
// Redis-backed limiter
// ---------------------------------------------------------------------------

// RedisRateLimiter enforces the same limits through Redis so that all
// replicas behind a load balancer share one budget per client.
type RedisRateLimiter struct {
	limiter *redis_rate.Limiter
	limit   redis_rate.Limit
	client  *redis.Client
}

// NewRedisRateLimiter creates a limiter on top of an existing Redis client.
// The client is not closed by Stop; its owner closes it.
func NewRedisRateLimiter(client *redis.Client, config RateLimitConfig) *RedisRateLimiter {
	return &RedisRateLimiter{
		limiter: redis_rate.NewLimiter(client),
		limit: redis_rate.Limit{
			Rate:   config.RequestsPerMinute,
			Burst:  config.BurstSize,
			Period: time.Minute,
		},
		client: client,
	}
}

// Allow checks the shared budget for the key. Redis being unreachable fails
// open: a broken limiter must not take the API down with it.
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) bool {
	res, err := rl.limiter.Allow(ctx, key, rl.limit)
	if err != nil {
		slog.Warn("redis rate limiter unavailable, allowing request", "error", err)
		return true
	}
	return res.Allowed > 0
}

// Stop is a no-op; the Redis client is owned by the caller.
func (rl *RedisRateLimiter) Stop() {}

// ---------------------------------------------------------------------------
// Middleware
// ---------------------------------------------------------------------------

// RateLimitMiddleware rejects requests over the limit with a 429 envelope.
func RateLimitMiddleware(limiter Limiter, config RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rateLimitKey(c)

		if !limiter.Allow(c.Request.Context(), key) {
			c.Header("Retry-After", "60")
			response.Start().Fail(c, http.StatusTooManyRequests,
				"Too many requests", response.CodeRateLimited, response.CategorySystem)
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerMinute))
		c.Next()
	}
}

// rateLimitKey prefers the authenticated user id over the client IP so NAT'd
// users do not share a bucket once logged in.
func rateLimitKey(c *gin.Context) string {
	if userID, exists := c.Get(UserIDKey); exists {
		if id, ok := userID.(string); ok && id != "" {
			return "user:" + id
		}
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = c.Request.RemoteAddr
	}
	return "ip:" + ip
}
