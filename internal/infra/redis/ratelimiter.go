package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter implements a fixed-window counter over Redis so the limit
// holds across replicas.
type RateLimiter struct {
	client *Client
	prefix string
	limit  int
	window time.Duration
}

// NewRateLimiter creates a new fixed-window rate limiter.
func NewRateLimiter(client *Client, prefix string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

// Allow reports whether the key may proceed in the current window. The
// counter and its expiry are set atomically via a pipeline; on Redis failure
// the request is allowed, since losing rate limiting is preferable to
// failing every request.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("%s:%s:%d", rl.prefix, key, time.Now().Unix()/int64(rl.window.Seconds()))

	pipe := rl.client.Raw().TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.window)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return true, err
	}

	return incr.Val() <= int64(rl.limit), nil
}
