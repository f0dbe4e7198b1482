package resilience

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// RetryConfig configures the retry behavior.
type RetryConfig struct {
	// MaxAttempts is the number of attempts including the first.
	// Default: 2
	MaxAttempts int

	// Delay is the wait before the first retry; it doubles per attempt.
	// Default: 50ms
	Delay time.Duration

	// MaxDelay caps the wait between attempts.
	// Default: 1s
	MaxDelay time.Duration

	// Jitter adds up to 25% random variance to each wait.
	Jitter bool

	// RetryIf reports whether err is worth another attempt.
	// Default: every error except an open circuit or a cancelled context.
	RetryIf func(err error) bool

	// OnRetry is called before each retry attempt.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retry re-runs failed operations with exponential backoff.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a new retry handler.
func NewRetry(config RetryConfig) *Retry {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 2
	}
	if config.Delay <= 0 {
		config.Delay = 50 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = time.Second
	}
	if config.RetryIf == nil {
		config.RetryIf = isRetryable
	}
	return &Retry{config: config}
}

func isRetryable(err error) bool {
	return err != nil &&
		!errors.Is(err, ErrCircuitOpen) &&
		!errors.Is(err, context.Canceled)
}

// Execute runs op until it succeeds, returns a non-retryable error, or the
// attempts run out. Exhaustion wraps the last error with ErrMaxRetriesExceeded.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !r.config.RetryIf(err) {
			return err
		}
		if attempt == r.config.MaxAttempts {
			break
		}

		delay := r.backoff(attempt)
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	if r.config.MaxAttempts == 1 {
		return lastErr
	}
	return fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, lastErr)
}

func (r *Retry) backoff(attempt int) time.Duration {
	delay := r.config.Delay << (attempt - 1)
	if delay <= 0 || delay > r.config.MaxDelay {
		delay = r.config.MaxDelay
	}
	if r.config.Jitter && delay >= 4 {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		delay += time.Duration(rand.Int64N(int64(delay / 4)))
	}
	return delay
}

// Config returns the retry configuration.
func (r *Retry) Config() RetryConfig {
	return r.config
}
