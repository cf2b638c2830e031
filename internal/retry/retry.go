// Package retry implements the single retry primitive spec §5 and §9
// call for: a policy of {maxAttempts, baseDelay, maxDelay} applied to a
// thunk, with exponential backoff and explicit context-cancellable
// sleeps. Grounded on test/framework's hand-rolled Retry/WaitFor helpers
// in the teacher repo.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/cuemby/dynia/internal/dynerr"
	"github.com/cuemby/dynia/internal/metrics"
)

// Policy parameterizes one retry loop.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Description string
}

// Do runs op, retrying with exponential backoff while the error is
// retryable (per dynerr.Retryable) and attempts remain. A non-retryable
// error returns immediately. The context governs both the per-attempt
// call and the inter-attempt sleep.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	delay := p.BaseDelay
	if delay <= 0 {
		delay = time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if !dynerr.Retryable(lastErr) {
			return lastErr
		}
		if attempt == p.MaxAttempts {
			break
		}
		metrics.RetriesTotal.WithLabelValues(p.Description).Inc()

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: cancelled after %d attempt(s): %w", p.Description, attempt, ctx.Err())
		case <-time.After(delay):
		}

		delay *= 2
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}

	return fmt.Errorf("%s: failed after %d attempt(s): %w", p.Description, p.MaxAttempts, lastErr)
}
