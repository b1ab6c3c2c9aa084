package middleware

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"hms-server/internal/utils"
)

const (
	// Rate limiting defaults
	defaultRateLimit  = 20               // 20 attempts
	defaultRateWindow = 15 * time.Minute // per 15 minutes
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

func (c RateLimitConfig) withDefaults() RateLimitConfig {
	if c.Limit <= 0 {
		c.Limit = defaultRateLimit
	}
	if c.Window <= 0 {
		c.Window = defaultRateWindow
	}
	return c
}

// RateLimiter limits requests per client IP and path. With Redis the counters
// are shared between instances; without it each process keeps its own buckets.
func RateLimiter(rdb *redis.Client, cfg RateLimitConfig) gin.HandlerFunc {
	cfg = cfg.withDefaults()
	var allow func(ctx context.Context, key string) (bool, error)
	if rdb != nil {
		allow = func(ctx context.Context, key string) (bool, error) {
			return checkRateLimit(ctx, rdb, key, cfg.Limit, cfg.Window)
		}
	} else {
		local := newLocalLimiter(cfg)
		allow = func(_ context.Context, key string) (bool, error) {
			return local.allow(key), nil
		}
	}

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		key := fmt.Sprintf("ratelimit:%s:%s", c.FullPath(), clientIP)

		allowed, err := allow(c.Request.Context(), key)
		if err != nil {
			// Fail open: an unavailable Redis must not lock users out.
			log.Printf("ratelimit: check failed for %s: %v", clientIP, err)
			c.Next()
			return
		}
		if !allowed {
			log.Printf("ratelimit: limit exceeded for %s on %s", clientIP, c.FullPath())
			utils.TooManyRequests(c, "Too many requests. Please try again later.")
			return
		}
		c.Next()
	}
}

// checkRateLimit counts a hit in a fixed window and reports whether it is allowed.
func checkRateLimit(ctx context.Context, rdb *redis.Client, key string, limit int, window time.Duration) (bool, error) {
	count, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if count == 1 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}
	return count <= int64(limit), nil
}

// localLimiter keeps one token bucket per key. Idle buckets expire from the cache.
type localLimiter struct {
	mu      sync.Mutex
	buckets *cache.Cache
	limit   rate.Limit
	burst   int
}

func newLocalLimiter(cfg RateLimitConfig) *localLimiter {
	return &localLimiter{
		buckets: cache.New(cfg.Window, 2*cfg.Window),
		limit:   rate.Every(cfg.Window / time.Duration(cfg.Limit)),
		burst:   cfg.Limit,
	}
}

func (l *localLimiter) allow(key string) bool {
	l.mu.Lock()
	var limiter *rate.Limiter
	if v, ok := l.buckets.Get(key); ok {
		limiter = v.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(l.limit, l.burst)
	}
	// Touch on every hit so active clients keep their bucket.
	l.buckets.SetDefault(key, limiter)
	l.mu.Unlock()
	return limiter.Allow()
}
