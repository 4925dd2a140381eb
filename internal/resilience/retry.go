// Package resilience retries directory requests that fail for transient
// reasons such as throttling, gateway errors or network timeouts.
package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// Policy controls retry behavior with exponential backoff and jitter.
type Policy struct {
	// Attempts is the total number of attempts including the first one.
	// A value of 1 disables retries. Default: 3.
	Attempts int

	// Initial is the delay before the first retry. Default: 500ms.
	Initial time.Duration

	// Max caps the backoff duration. Default: 30s.
	Max time.Duration

	// Multiplier scales the backoff after each attempt. Default: 2.0.
	Multiplier float64

	// Jitter adds random jitter as a fraction of the computed delay
	// (0.25 = ±25%).
	Jitter float64

	// Retryable overrides IsTransient when set.
	Retryable func(err error) bool

	// OnRetry is called before each retry sleep.
	OnRetry func(attempt int, err error)
}

// DefaultPolicy returns the policy used for directory requests.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:   3,
		Initial:    500 * time.Millisecond,
		Max:        30 * time.Second,
		Multiplier: 2.0,
		Jitter:     0.25,
	}
}

// PolicyFor builds a policy allowing maxRetries retries after the first
// attempt. The first backoff is never shorter than the polite request
// interval so retries do not hammer the remote site.
func PolicyFor(maxRetries int, interval time.Duration) Policy {
	p := DefaultPolicy()
	p.Attempts = max(maxRetries, 0) + 1
	if interval > p.Initial {
		p.Initial = interval
	}
	return p
}

// Do runs fn until it succeeds, fails permanently, the attempts run out or
// ctx is done. The last error is returned.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	_, err := DoVal(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoVal is Do for functions returning a value.
func DoVal[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	p = p.withDefaults()

	retryable := p.Retryable
	if retryable == nil {
		retryable = IsTransient
	}

	var zero T
	var lastErr error
	for attempt := 0; attempt < p.Attempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil || !retryable(lastErr) {
			return zero, lastErr
		}

		// No sleep after the last attempt.
		if attempt >= p.Attempts-1 {
			break
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt+1, lastErr)
		}

		timer := time.NewTimer(p.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}

	return zero, lastErr
}

func (p Policy) withDefaults() Policy {
	if p.Attempts <= 0 {
		p.Attempts = 3
	}
	if p.Initial <= 0 {
		p.Initial = 500 * time.Millisecond
	}
	if p.Max <= 0 {
		p.Max = 30 * time.Second
	}
	if p.Multiplier <= 0 {
		p.Multiplier = 2.0
	}
	if p.Jitter < 0 {
		p.Jitter = 0
	}
	return p
}

func (p Policy) backoff(attempt int) time.Duration {
	delay := min(float64(p.Initial)*math.Pow(p.Multiplier, float64(attempt)), float64(p.Max))

	if p.Jitter > 0 {
		spread := delay * p.Jitter
		delay += (rand.Float64()*2 - 1) * spread // [-spread, +spread]
	}

	return time.Duration(max(delay, 0))
}

// LogRetries returns an OnRetry callback that logs each retry of a request
// to target.
func LogRetries(operation, target string) func(int, error) {
	return func(attempt int, err error) {
		zap.L().Warn("retrying request",
			zap.String("operation", operation),
			zap.String("target", target),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}
