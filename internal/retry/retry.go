// Package retry provides a small reusable retry policy for calls into
// rate-limited external collaborators.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy describes how a call is retried: how often, how fast, and which
// errors are worth another attempt. Non-retryable errors abort immediately.
type Policy struct {
	// MaxAttempts is the total number of tries including the first.
	MaxAttempts int
	// InitialInterval is the first backoff delay.
	InitialInterval time.Duration
	// MaxInterval caps the backoff delay.
	MaxInterval time.Duration
	// Retryable classifies an error as transient. Nil means retry nothing.
	Retryable func(error) bool
}

// DefaultPolicy suits LLM calls: three attempts with capped exponential
// backoff starting at one second.
func DefaultPolicy(retryable func(error) bool) Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: time.Second,
		MaxInterval:     15 * time.Second,
		Retryable:       retryable,
	}
}

// Do runs op under the policy. It returns the last error when every attempt
// fails, the error immediately for non-retryable failures, and ctx.Err()
// when the context ends mid-backoff.
func (p Policy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}

	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if p.Retryable == nil || !p.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	// MaxRetries counts retries after the first attempt.
	return backoff.Retry(wrapped,
		backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx))
}
