package trivia

import (
	"context"
	"fmt"
	"time"
)

// Policy describes how an operation is retried: how many attempts are
// allowed, how long to wait before attempt n+1, and which errors are worth
// retrying at all. It is independent of any particular upstream client.
type Policy struct {
	MaxAttempts int
	Delay       func(attempt int) time.Duration
	Retryable   func(err error) bool
}

// DefaultPolicy matches the upstream rate-limit behavior: up to 5 attempts
// with a linearly increasing delay (attempt * 1500ms), retrying only
// rate-limit responses.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 5,
		Delay: func(attempt int) time.Duration {
			return time.Duration(attempt) * 1500 * time.Millisecond
		},
		Retryable: IsRateLimited,
	}
}

// Do runs fn under the policy. Non-retryable errors fail immediately; the
// delay sleep is aborted when ctx is canceled. On exhaustion the last error
// is returned wrapped.
func Do(ctx context.Context, p Policy, fn func() error) error {
	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if p.Retryable == nil || !p.Retryable(err) {
			return err
		}
		if attempt == p.MaxAttempts {
			break
		}
		var delay time.Duration
		if p.Delay != nil {
			delay = p.Delay(attempt)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("retry budget exhausted after %d attempts: %w", p.MaxAttempts, err)
}
