// Package backoff provides retry delay strategies for task runs.
// All strategies except Jittered are deterministic, and all are safe for
// concurrent use.
package backoff

import (
	"math"
	"math/rand/v2"
	"time"
)

// MaxListDelays is the largest number of explicit delays a List accepts.
const MaxListDelays = 50

// Strategy computes the delay before a retry attempt.
type Strategy interface {
	// Delay returns how long to wait before retry attempt n (1-indexed).
	// Attempt 1 is the first retry after the initial failure.
	Delay(attempt int) time.Duration
}

// ──────────────────────────────────────────────────
// Constant
// ──────────────────────────────────────────────────

// Constant always returns the same delay.
type Constant struct {
	Interval time.Duration
}

// NewConstant creates a constant backoff strategy.
func NewConstant(interval time.Duration) *Constant {
	return &Constant{Interval: interval}
}

// Delay returns the fixed interval.
func (c *Constant) Delay(_ int) time.Duration {
	return c.Interval
}

// ──────────────────────────────────────────────────
// List
// ──────────────────────────────────────────────────

// List returns an explicit delay per attempt. Attempts past the end of the
// list reuse the last delay.
type List struct {
	Delays []time.Duration
}

// NewList creates a list strategy. The slice is copied.
func NewList(delays ...time.Duration) *List {
	return &List{Delays: append([]time.Duration(nil), delays...)}
}

// Delay returns Delays[attempt-1], clamped to the list bounds.
func (l *List) Delay(attempt int) time.Duration {
	if len(l.Delays) == 0 {
		return 0
	}
	i := min(max(attempt-1, 0), len(l.Delays)-1)
	return l.Delays[i]
}

// ──────────────────────────────────────────────────
// Linear
// ──────────────────────────────────────────────────

// Linear increases the delay linearly with the attempt number.
// Delay = min(Initial * attempt, Max).
type Linear struct {
	Initial time.Duration
	Max     time.Duration
}

// NewLinear creates a linear backoff strategy.
func NewLinear(initial, maxDelay time.Duration) *Linear {
	return &Linear{Initial: initial, Max: maxDelay}
}

// Delay returns Initial * attempt, capped at Max.
func (l *Linear) Delay(attempt int) time.Duration {
	d := l.Initial * time.Duration(attempt)
	if l.Max > 0 && d > l.Max {
		return l.Max
	}
	return d
}

// ──────────────────────────────────────────────────
// Exponential
// ──────────────────────────────────────────────────

// Exponential doubles the delay each attempt.
// Delay = min(Initial * 2^(attempt-1), Max).
type Exponential struct {
	Initial time.Duration
	Max     time.Duration
}

// NewExponential creates an exponential backoff strategy.
func NewExponential(initial, maxDelay time.Duration) *Exponential {
	return &Exponential{Initial: initial, Max: maxDelay}
}

// Delay returns Initial * 2^(attempt-1), capped at Max.
func (e *Exponential) Delay(attempt int) time.Duration {
	d := time.Duration(float64(e.Initial) * math.Pow(2, float64(attempt-1)))
	if e.Max > 0 && d > e.Max {
		return e.Max
	}
	return d
}

// ──────────────────────────────────────────────────
// Jittered
// ──────────────────────────────────────────────────

// Jittered spreads the delays of a base strategy by a relative factor.
// Delay is drawn uniformly from [d*(1-Factor), d*(1+Factor)], floored at 0,
// where d is the base delay.
type Jittered struct {
	Base   Strategy
	Factor float64
}

// NewJittered wraps base with the given jitter factor. A factor of zero or
// less returns base unchanged.
func NewJittered(base Strategy, factor float64) Strategy {
	if factor <= 0 {
		return base
	}
	return &Jittered{Base: base, Factor: factor}
}

// Delay returns the jittered base delay.
func (j *Jittered) Delay(attempt int) time.Duration {
	d := float64(j.Base.Delay(attempt))
	spread := d * j.Factor
	v := d - spread + rand.Float64()*2*spread //nolint:gosec // jitter intentionally uses non-crypto rand
	if v < 0 {
		return 0
	}
	return time.Duration(v)
}

// ──────────────────────────────────────────────────
// Default
// ──────────────────────────────────────────────────

// DefaultStrategy returns the strategy used when a task sets retries but no
// delay: retry immediately.
func DefaultStrategy() Strategy {
	return NewConstant(0)
}
