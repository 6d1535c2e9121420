package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/salingbantu/impact-engine/internal/dto"
)

// Rate limited operations
const (
	OpRecordActivity      = "record_activity"
	OpRequestConfirmation = "request_confirmation"
	OpRedeem              = "redeem"
)

// RateLimiter is a fixed-window counter keyed by (operation, actor). Windows
// reset themselves once their duration elapses; there is no explicit reset.
// Enforcement happens server-side in the services so a client cannot bypass it.
type RateLimiter interface {
	// RecordAttempt counts an attempt against the window and reports whether
	// it was allowed. A disallowed attempt is not recorded.
	RecordAttempt(ctx context.Context, operation string, actorID uuid.UUID) (dto.RateLimitStatus, error)
	// Check reports the window state without consuming an attempt.
	Check(ctx context.Context, operation string, actorID uuid.UUID) (dto.RateLimitStatus, error)
}

// NewRateLimiter returns a Redis-backed limiter, or an in-process one when
// Redis is not configured (single-instance deployments and tests).
func NewRateLimiter(rdb *redis.Client, maxAttempts int, window time.Duration) RateLimiter {
	if rdb != nil {
		return &redisRateLimiter{rdb: rdb, maxAttempts: maxAttempts, window: window}
	}
	return newMemoryRateLimiter(maxAttempts, window)
}

func rateLimitKey(operation string, actorID uuid.UUID) string {
	return fmt.Sprintf("rate_limit:%s:%s", operation, actorID.String())
}

type redisRateLimiter struct {
	rdb         *redis.Client
	maxAttempts int
	window      time.Duration
}

func (l *redisRateLimiter) RecordAttempt(ctx context.Context, operation string, actorID uuid.UUID) (dto.RateLimitStatus, error) {
	key := rateLimitKey(operation, actorID)

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return dto.RateLimitStatus{}, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}
	if count == 1 {
		// First attempt opens the window; expiry is the auto-reset.
		if err := l.rdb.PExpire(ctx, key, l.window).Err(); err != nil {
			return dto.RateLimitStatus{}, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	ttl, err := l.rdb.PTTL(ctx, key).Result()
	if err != nil {
		return dto.RateLimitStatus{}, fmt.Errorf("failed to read rate limit ttl: %w", err)
	}
	if ttl < 0 {
		// Counter leaked without an expiry; re-arm the window.
		ttl = l.window
		_ = l.rdb.PExpire(ctx, key, l.window).Err()
	}

	status := dto.RateLimitStatus{
		Allowed: count <= int64(l.maxAttempts),
		ResetAt: time.Now().Add(ttl),
	}
	if !status.Allowed {
		// Over-limit increments should not extend the denial past the window.
		_ = l.rdb.Decr(ctx, key).Err()
		return status, nil
	}
	status.Remaining = l.maxAttempts - int(count)
	return status, nil
}

func (l *redisRateLimiter) Check(ctx context.Context, operation string, actorID uuid.UUID) (dto.RateLimitStatus, error) {
	key := rateLimitKey(operation, actorID)

	count, err := l.rdb.Get(ctx, key).Int64()
	if err != nil && err != redis.Nil {
		return dto.RateLimitStatus{}, fmt.Errorf("failed to read rate limit counter: %w", err)
	}
	if err == redis.Nil {
		return dto.RateLimitStatus{Allowed: true, Remaining: l.maxAttempts, ResetAt: time.Now().Add(l.window)}, nil
	}

	ttl, err := l.rdb.PTTL(ctx, key).Result()
	if err != nil {
		return dto.RateLimitStatus{}, fmt.Errorf("failed to read rate limit ttl: %w", err)
	}
	if ttl < 0 {
		ttl = l.window
	}

	remaining := l.maxAttempts - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return dto.RateLimitStatus{
		Allowed:   count < int64(l.maxAttempts),
		Remaining: remaining,
		ResetAt:   time.Now().Add(ttl),
	}, nil
}

type rateLimitWindow struct {
	start    time.Time
	attempts int
}

type memoryRateLimiter struct {
	mu          sync.Mutex
	windows     map[string]*rateLimitWindow
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

func newMemoryRateLimiter(maxAttempts int, window time.Duration) *memoryRateLimiter {
	return &memoryRateLimiter{
		windows:     make(map[string]*rateLimitWindow),
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
	}
}

func (l *memoryRateLimiter) RecordAttempt(_ context.Context, operation string, actorID uuid.UUID) (dto.RateLimitStatus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := rateLimitKey(operation, actorID)
	now := l.now()

	w, ok := l.windows[key]
	if !ok || !now.Before(w.start.Add(l.window)) {
		// Expired or missing window: start fresh containing this attempt.
		l.windows[key] = &rateLimitWindow{start: now, attempts: 1}
		return dto.RateLimitStatus{
			Allowed:   true,
			Remaining: l.maxAttempts - 1,
			ResetAt:   now.Add(l.window),
		}, nil
	}

	resetAt := w.start.Add(l.window)
	if w.attempts >= l.maxAttempts {
		return dto.RateLimitStatus{Allowed: false, Remaining: 0, ResetAt: resetAt}, nil
	}

	w.attempts++
	return dto.RateLimitStatus{
		Allowed:   true,
		Remaining: l.maxAttempts - w.attempts,
		ResetAt:   resetAt,
	}, nil
}

func (l *memoryRateLimiter) Check(_ context.Context, operation string, actorID uuid.UUID) (dto.RateLimitStatus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := rateLimitKey(operation, actorID)
	now := l.now()

	w, ok := l.windows[key]
	if !ok || !now.Before(w.start.Add(l.window)) {
		delete(l.windows, key)
		return dto.RateLimitStatus{
			Allowed:   true,
			Remaining: l.maxAttempts,
			ResetAt:   now.Add(l.window),
		}, nil
	}

	return dto.RateLimitStatus{
		Allowed:   w.attempts < l.maxAttempts,
		Remaining: l.maxAttempts - w.attempts,
		ResetAt:   w.start.Add(l.window),
	}, nil
}
