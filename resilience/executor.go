package resilience

import (
	"context"
	"time"
)

// Executor composes resilience patterns around an operation.
//
// The zero value runs operations unguarded.
type Executor struct {
	circuitBreaker *CircuitBreaker
	bulkhead       *Bulkhead
	retry          *Retry
	rateLimiter    *RateLimiter
	timeout        *Timeout
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates a new resilience executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DefaultExecutor returns the guard used for vault calls when none is
// configured: a per-attempt timeout, one retry, a circuit breaker and a
// bulkhead that queues callers for up to one timeout. opts are applied
// last and may replace any of these.
func DefaultExecutor(timeout time.Duration, opts ...ExecutorOption) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return NewExecutor(append([]ExecutorOption{
		WithBulkhead(NewBulkhead(BulkheadConfig{MaxWait: timeout})),
		WithCircuitBreaker(NewCircuitBreaker(CircuitBreakerConfig{})),
		WithRetry(NewRetry(RetryConfig{MaxAttempts: 2, Jitter: true})),
		WithTimeout(timeout),
	}, opts...)...)
}

// WithCircuitBreaker adds a circuit breaker to the executor.
func WithCircuitBreaker(cb *CircuitBreaker) ExecutorOption {
	return func(e *Executor) {
		e.circuitBreaker = cb
	}
}

// WithBulkhead caps concurrent operations.
func WithBulkhead(b *Bulkhead) ExecutorOption {
	return func(e *Executor) {
		e.bulkhead = b
	}
}

// WithRetry adds retry logic to the executor.
func WithRetry(r *Retry) ExecutorOption {
	return func(e *Executor) {
		e.retry = r
	}
}

// WithRateLimiter adds rate limiting to the executor.
func WithRateLimiter(rl *RateLimiter) ExecutorOption {
	return func(e *Executor) {
		e.rateLimiter = rl
	}
}

// WithTimeout bounds each attempt.
func WithTimeout(timeout time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.timeout = NewTimeout(TimeoutConfig{Timeout: timeout})
	}
}

// RateLimiter returns the configured rate limiter, or nil.
func (e *Executor) RateLimiter() *RateLimiter {
	if e == nil {
		return nil
	}
	return e.rateLimiter
}

// CircuitBreaker returns the configured breaker, or nil.
func (e *Executor) CircuitBreaker() *CircuitBreaker {
	if e == nil {
		return nil
	}
	return e.circuitBreaker
}

// Bulkhead returns the configured bulkhead, or nil.
func (e *Executor) Bulkhead() *Bulkhead {
	if e == nil {
		return nil
	}
	return e.bulkhead
}

// Execute runs op through the configured patterns.
//
// The execution order is:
// 1. Rate Limiter - limits call rate
// 2. Bulkhead - caps concurrent calls
// 3. Circuit Breaker - sees one outcome per Execute, after retries
// 4. Retry - retries failed attempts
// 5. Timeout - bounds each attempt
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	if e == nil {
		return op(ctx)
	}

	execute := op

	if e.timeout != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.timeout.Execute(ctx, inner)
		}
	}

	if e.retry != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.retry.Execute(ctx, inner)
		}
	}

	if e.circuitBreaker != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.circuitBreaker.Execute(ctx, inner)
		}
	}

	if e.bulkhead != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.bulkhead.Execute(ctx, inner)
		}
	}

	if e.rateLimiter != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.rateLimiter.Execute(ctx, inner)
		}
	}

	return execute(ctx)
}
