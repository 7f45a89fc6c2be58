package client

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/Sternrassler/rbx-client/pkg/egress"
	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for egress attempts.
var (
	rbxAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rbx_egress_attempts_total",
		Help: "Total request attempts by outcome",
	}, []string{"outcome"})

	rbxExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rbx_egress_exhausted_total",
		Help: "Total number of requests that failed on every attempted egress path",
	}, []string{"class"})
)

// attemptPlan bounds the attempts for one request.
type attemptPlan struct {
	// maxAttempts is min(pool size, configured cap), or 1 in direct mode.
	maxAttempts int

	// rotate is true when failed attempts may fail over to another path.
	rotate bool
}

// planFor computes the attempt plan for the pool's current size.
func planFor(pool *egress.Pool, maxAttempts int) attemptPlan {
	if !pool.Active() {
		return attemptPlan{maxAttempts: 1}
	}

	n := pool.Count()
	if n > maxAttempts {
		n = maxAttempts
	}
	return attemptPlan{maxAttempts: n, rotate: true}
}

// attemptResult is the observed outcome of one attempt.
type attemptResult struct {
	body   []byte
	status int

	// err is nil on success, a *Error for application outcomes, or the raw
	// transport error.
	err error

	// class is the classification of err.
	class ErrorClass
}

// step is what the loop does after an attempt.
type step int

const (
	// stepDone: success, advance the pool and return.
	stepDone step = iota

	// stepFail: application-level outcome, return it as-is.
	stepFail

	// stepRotate: transport failure with attempts left, rotate and retry.
	stepRotate

	// stepExhausted: transport failure on the last allowed attempt.
	stepExhausted
)

// next decides the step after the given zero-based attempt.
// Application outcomes never rotate: a 404 or 429 is the same on every path.
func (p attemptPlan) next(attempt int, res attemptResult) step {
	switch {
	case res.err == nil:
		return stepDone
	case !isTransport(res.class):
		return stepFail
	case p.rotate && attempt < p.maxAttempts-1:
		return stepRotate
	default:
		return stepExhausted
	}
}

// attemptFunc performs one call through the given session.
type attemptFunc func(ctx context.Context, session *resty.Client) attemptResult

// runAttempts drives attempts across egress paths according to plan.
// The pool lock is only taken by Current/Advance/Rotate, never across the call.
func (c *Client) runAttempts(ctx context.Context, plan attemptPlan, target string, call attemptFunc) (attemptResult, error) {
	var last attemptResult

	for attempt := 0; attempt < plan.maxAttempts; attempt++ {
		sel := c.pool.Current()
		session := c.sessionFor(sel)

		c.logger.Debug().
			Str("endpoint", target).
			Str("egress", sel.Label()).
			Int("attempt", attempt+1).
			Int("max_attempts", plan.maxAttempts).
			Msg("Executing request")

		last = call(ctx, session)

		// A cancelled caller is not the egress path's fault.
		if last.err != nil && isTransport(last.class) && ctx.Err() != nil {
			rbxAttemptsTotal.WithLabelValues("cancelled").Inc()
			return last, c.transportError(last, attempt+1, false)
		}

		switch plan.next(attempt, last) {
		case stepDone:
			rbxAttemptsTotal.WithLabelValues("success").Inc()
			c.pool.Advance()
			if attempt > 0 {
				c.logger.Info().
					Str("endpoint", target).
					Str("egress", sel.Label()).
					Int("attempt", attempt+1).
					Msg("Request succeeded after failover")
			}
			return last, nil

		case stepFail:
			rbxAttemptsTotal.WithLabelValues("application_error").Inc()
			return last, last.err

		case stepRotate:
			rbxAttemptsTotal.WithLabelValues("transport_error").Inc()
			c.logger.Warn().
				Err(last.err).
				Str("endpoint", target).
				Str("egress", sel.Label()).
				Int("attempt", attempt+1).
				Int("max_attempts", plan.maxAttempts).
				Str("error_class", string(last.class)).
				Msg("Egress attempt failed, rotating")
			c.pool.Rotate()

		case stepExhausted:
			rbxAttemptsTotal.WithLabelValues("transport_error").Inc()
			err := c.transportError(last, attempt+1, plan.rotate)
			rbxExhaustedTotal.WithLabelValues(string(err.Class)).Inc()
			c.logger.Error().
				Err(last.err).
				Str("endpoint", target).
				Str("egress", sel.Label()).
				Int("attempts", attempt+1).
				Str("error_class", string(err.Class)).
				Msg("Request failed on all attempted egress paths")
			return last, err
		}
	}

	// Unreachable: plan.maxAttempts >= 1 and the last attempt always returns.
	return last, &Error{Class: ErrorClassUnclassified, Message: "no attempt made"}
}

// transportError wraps the last transport failure. exhausted marks a pooled
// request that ran out of egress paths.
func (c *Client) transportError(last attemptResult, attempts int, exhausted bool) *Error {
	class := last.class
	if !exhausted && class == ErrorClassProxyUnavailable {
		class = ErrorClassNetwork
	}

	msg := "connection failed"
	switch {
	case class == ErrorClassTimeout:
		msg = fmt.Sprintf("request timed out after %s", c.config.Timeout)
	case exhausted:
		msg = "egress path unreachable"
	}

	return &Error{
		Class:     class,
		Message:   msg,
		Attempts:  attempts,
		Exhausted: exhausted,
		Err:       last.err,
	}
}

// classifyTransport maps a transport error to timeout, proxy_unavailable
// (pooled request) or network (direct request).
func classifyTransport(err error, direct bool) ErrorClass {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorClassTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorClassTimeout
	}
	if direct {
		return ErrorClassNetwork
	}
	return ErrorClassProxyUnavailable
}
