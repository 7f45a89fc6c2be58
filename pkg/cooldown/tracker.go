package cooldown

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// DefaultWindow is the default minimum interval between two requests of one
// caller.
const DefaultWindow = 2 * time.Second

var rbxCooldownBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "rbx_cooldown_blocks_total",
	Help: "Total number of requests rejected because the caller was cooling down",
})

// Decision is the outcome of a cooldown check.
type Decision struct {
	Allowed bool

	// RetryAfter is the remaining cooldown when the request was rejected.
	RetryAfter time.Duration
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds, at least 1 when
// the request was rejected.
func (d Decision) RetryAfterSeconds() int {
	if d.Allowed {
		return 0
	}
	secs := int((d.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// Tracker gates requests per caller.
type Tracker struct {
	store  Store
	window time.Duration
	logger zerolog.Logger
}

// NewTracker creates a tracker. A non-positive window disables the cooldown.
func NewTracker(store Store, window time.Duration, logger zerolog.Logger) *Tracker {
	return &Tracker{
		store:  store,
		window: window,
		logger: logger,
	}
}

// Window returns the configured cooldown.
func (t *Tracker) Window() time.Duration {
	return t.window
}

// Allow checks and starts the cooldown of callerID.
func (t *Tracker) Allow(ctx context.Context, callerID string) (Decision, error) {
	if t.window <= 0 || callerID == "" {
		return Decision{Allowed: true}, nil
	}

	ok, remaining, err := t.store.Acquire(ctx, KeyPrefix+callerID, t.window)
	if err != nil {
		return Decision{}, fmt.Errorf("acquire cooldown for %s: %w", callerID, err)
	}

	if !ok {
		rbxCooldownBlocksTotal.Inc()
		t.logger.Debug().
			Str("caller", callerID).
			Dur("retry_after", remaining).
			Msg("Caller cooling down")
		return Decision{Allowed: false, RetryAfter: remaining}, nil
	}

	return Decision{Allowed: true}, nil
}
