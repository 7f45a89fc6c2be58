package cooldown

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestTracker_Allow(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	tracker := NewTracker(NewMemoryStore(clock.Now), 2*time.Second, zerolog.Nop())
	ctx := context.Background()

	d, err := tracker.Allow(ctx, "42")
	if err != nil || !d.Allowed {
		t.Fatalf("first Allow() = %+v, %v; want allowed", d, err)
	}

	clock.Advance(500 * time.Millisecond)
	d, err = tracker.Allow(ctx, "42")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if d.Allowed {
		t.Fatal("second Allow() within window should be rejected")
	}
	if d.RetryAfter != 1500*time.Millisecond {
		t.Errorf("RetryAfter = %v, want 1.5s", d.RetryAfter)
	}
	if d.RetryAfterSeconds() != 2 {
		t.Errorf("RetryAfterSeconds() = %d, want 2", d.RetryAfterSeconds())
	}

	// Other callers are independent.
	if d, _ := tracker.Allow(ctx, "43"); !d.Allowed {
		t.Error("different caller should be allowed")
	}

	clock.Advance(1500 * time.Millisecond)
	if d, _ := tracker.Allow(ctx, "42"); !d.Allowed {
		t.Error("Allow() after window should be allowed")
	}
}

func TestTracker_RejectionDoesNotExtendWindow(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	tracker := NewTracker(NewMemoryStore(clock.Now), 2*time.Second, zerolog.Nop())
	ctx := context.Background()

	tracker.Allow(ctx, "7")
	for i := 0; i < 3; i++ {
		clock.Advance(500 * time.Millisecond)
		tracker.Allow(ctx, "7")
	}

	clock.Advance(500 * time.Millisecond)
	if d, _ := tracker.Allow(ctx, "7"); !d.Allowed {
		t.Error("rejected attempts should not extend the cooldown")
	}
}

func TestTracker_Disabled(t *testing.T) {
	tracker := NewTracker(NewMemoryStore(nil), 0, zerolog.Nop())

	for i := 0; i < 3; i++ {
		if d, err := tracker.Allow(context.Background(), "1"); err != nil || !d.Allowed {
			t.Fatalf("Allow() = %+v, %v; want allowed with zero window", d, err)
		}
	}
}

func TestTracker_AnonymousCallerAllowed(t *testing.T) {
	store := NewMemoryStore(nil)
	tracker := NewTracker(store, time.Second, zerolog.Nop())

	tracker.Allow(context.Background(), "")
	if d, _ := tracker.Allow(context.Background(), ""); !d.Allowed {
		t.Error("empty caller id should not be tracked")
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}
}

type failingStore struct{}

func (failingStore) Acquire(context.Context, string, time.Duration) (bool, time.Duration, error) {
	return false, 0, errors.New("connection refused")
}

func TestTracker_StoreError(t *testing.T) {
	tracker := NewTracker(failingStore{}, time.Second, zerolog.Nop())

	if _, err := tracker.Allow(context.Background(), "1"); err == nil {
		t.Error("Allow() expected store error")
	}
}

func TestDecision_RetryAfterSeconds(t *testing.T) {
	tests := []struct {
		d    Decision
		want int
	}{
		{Decision{Allowed: true}, 0},
		{Decision{RetryAfter: 0}, 1},
		{Decision{RetryAfter: 10 * time.Millisecond}, 1},
		{Decision{RetryAfter: time.Second}, 1},
		{Decision{RetryAfter: 1001 * time.Millisecond}, 2},
	}

	for _, tt := range tests {
		if got := tt.d.RetryAfterSeconds(); got != tt.want {
			t.Errorf("RetryAfterSeconds(%v) = %d, want %d", tt.d.RetryAfter, got, tt.want)
		}
	}
}
