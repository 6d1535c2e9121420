package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMemoryRateLimiterAllowsUpToMax(t *testing.T) {
	limiter := newMemoryRateLimiter(3, time.Minute)
	actor := uuid.New()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		status, err := limiter.RecordAttempt(ctx, OpRecordActivity, actor)
		if err != nil {
			t.Fatalf("attempt %d: unexpected error: %v", i+1, err)
		}
		if !status.Allowed {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
		if want := 3 - (i + 1); status.Remaining != want {
			t.Errorf("attempt %d: Remaining = %d, want %d", i+1, status.Remaining, want)
		}
	}

	status, err := limiter.RecordAttempt(ctx, OpRecordActivity, actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Allowed {
		t.Error("attempt past the limit should be denied")
	}
	if status.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0", status.Remaining)
	}
}

func TestMemoryRateLimiterWindowExpiry(t *testing.T) {
	limiter := newMemoryRateLimiter(2, time.Minute)
	actor := uuid.New()
	ctx := context.Background()

	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }

	for i := 0; i < 2; i++ {
		if status, _ := limiter.RecordAttempt(ctx, OpRedeem, actor); !status.Allowed {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if status, _ := limiter.RecordAttempt(ctx, OpRedeem, actor); status.Allowed {
		t.Fatal("third attempt inside the window should be denied")
	}

	// Advance past the window: the limiter resets itself.
	current = current.Add(time.Minute + time.Second)
	status, _ := limiter.RecordAttempt(ctx, OpRedeem, actor)
	if !status.Allowed {
		t.Error("attempt after window expiry should be allowed")
	}
	if status.Remaining != 1 {
		t.Errorf("Remaining = %d, want 1", status.Remaining)
	}
}

func TestMemoryRateLimiterDeniedAttemptNotRecorded(t *testing.T) {
	limiter := newMemoryRateLimiter(1, time.Minute)
	actor := uuid.New()
	ctx := context.Background()

	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }

	limiter.RecordAttempt(ctx, OpRequestConfirmation, actor)

	// Denied attempts must not move the window start.
	current = current.Add(30 * time.Second)
	if status, _ := limiter.RecordAttempt(ctx, OpRequestConfirmation, actor); status.Allowed {
		t.Fatal("attempt over the limit should be denied")
	}

	current = current.Add(31 * time.Second)
	if status, _ := limiter.RecordAttempt(ctx, OpRequestConfirmation, actor); !status.Allowed {
		t.Error("window should have expired relative to the first allowed attempt")
	}
}

func TestMemoryRateLimiterCheckDoesNotConsume(t *testing.T) {
	limiter := newMemoryRateLimiter(2, time.Minute)
	actor := uuid.New()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		status, err := limiter.Check(ctx, OpRecordActivity, actor)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !status.Allowed || status.Remaining != 2 {
			t.Fatalf("Check consumed attempts: %+v", status)
		}
	}

	limiter.RecordAttempt(ctx, OpRecordActivity, actor)

	status, _ := limiter.Check(ctx, OpRecordActivity, actor)
	if status.Remaining != 1 {
		t.Errorf("Remaining = %d, want 1", status.Remaining)
	}
}

func TestMemoryRateLimiterIsolatesOperationsAndActors(t *testing.T) {
	limiter := newMemoryRateLimiter(1, time.Minute)
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	if status, _ := limiter.RecordAttempt(ctx, OpRedeem, alice); !status.Allowed {
		t.Fatal("first attempt should be allowed")
	}
	if status, _ := limiter.RecordAttempt(ctx, OpRedeem, alice); status.Allowed {
		t.Fatal("second attempt by same actor should be denied")
	}

	// A different operation by the same actor has its own window
	if status, _ := limiter.RecordAttempt(ctx, OpRecordActivity, alice); !status.Allowed {
		t.Error("different operation should have an independent window")
	}

	// A different actor is unaffected
	if status, _ := limiter.RecordAttempt(ctx, OpRedeem, bob); !status.Allowed {
		t.Error("different actor should have an independent window")
	}
}
