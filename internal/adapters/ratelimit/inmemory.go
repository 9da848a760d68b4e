// Package ratelimit implements ratelimit.Limiter with an in-process
// token bucket, for single-instance deployments or tests that don't
// want a redis dependency (spec.md §4.6; the redis-backed limiter in
// internal/adapters/redis is the multi-instance-correct alternative).
package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"
)

type bucket struct {
	tokens    float64
	updatedAt time.Time
}

// Limiter implements ratelimit.Limiter with one mutex-guarded bucket
// per key, kept in memory for the life of the process. Standard-library
// only: a single process has no need for redis's cross-instance
// coordination, and sync.Mutex is the idiomatic fit here.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

// NewLimiter returns a ready-to-use in-memory Limiter.
func NewLimiter() *Limiter {
	return &Limiter{buckets: make(map[string]*bucket)}
}

func (l *Limiter) Allow(_ context.Context, key string, ratePerSecond float64, capacity int) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(capacity), updatedAt: now}
		l.buckets[key] = b
	}

	elapsed := now.Sub(b.updatedAt).Seconds()
	b.tokens = math.Min(float64(capacity), b.tokens+elapsed*ratePerSecond)
	b.updatedAt = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0, nil
	}

	retryAfter := time.Duration((1 - b.tokens) / ratePerSecond * float64(time.Second))

	return false, retryAfter, nil
}
