package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitConfig defines a fixed window limit.
type RateLimitConfig struct {
	Window    time.Duration
	Limit     int
	KeyPrefix string
}

// RateLimiter enforces a fixed-window limit backed by Redis. It guards the
// credential forms against brute-force submission, keyed by client IP.
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
}

func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{redis: redisClient, config: config}
}

// NewLoginRateLimiter limits credential submissions per client IP.
func NewLoginRateLimiter(redisClient *redis.Client) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    time.Minute,
		Limit:     10,
		KeyPrefix: "ratelimit:auth",
	})
}

// Limit returns a middleware enforcing the configured window. A Redis error
// lets the request through; rate limiting degrades, it never blocks traffic
// on its own failure.
func (rl *RateLimiter) Limit(sm *SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := rl.IsAllowed(c.Request.Context(), c.ClientIP())
		if err != nil {
			c.Next()
			return
		}
		if !allowed {
			sm.AddFlash(c, "danger", "Too many attempts. Please try again in a minute.")
			c.Redirect(http.StatusFound, c.Request.URL.Path)
			c.Abort()
			return
		}
		c.Next()
	}
}

// IsAllowed counts this attempt against the current window.
func (rl *RateLimiter) IsAllowed(ctx context.Context, key string) (bool, error) {
	now := time.Now()
	windowStart := now.Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return int(incrCmd.Val()) <= rl.config.Limit, nil
}
