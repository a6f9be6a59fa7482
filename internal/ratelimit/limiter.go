package ratelimit

import (
	"context"
	"time"
)

// RateLimiter throttles registration attempts per client key.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	// Window is the length of one counting window; a rejected client may
	// retry once it has elapsed.
	Window() time.Duration
}
