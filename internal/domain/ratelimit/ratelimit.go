// Package ratelimit defines the port the per-key token bucket limiter is
// accessed through (spec.md §4.6, §9's "global mutable state" note).
package ratelimit

import (
	"context"
	"time"
)

// Limiter grants or denies a single request's token draw against a
// caller key's bucket.
type Limiter interface {
	// Allow attempts to draw one token from key's bucket, configured
	// with the given rate (tokens per second) and capacity. It reports
	// whether the draw succeeded and, if not, how long until a retry
	// could succeed.
	Allow(ctx context.Context, key string, ratePerSecond float64, capacity int) (allowed bool, retryAfter time.Duration, err error)
}
