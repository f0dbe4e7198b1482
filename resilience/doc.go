// Package resilience bounds calls into slow or unreliable collaborators.
//
// The secret resolver routes every vault fetch through an Executor so that a
// hanging or failing vault degrades to "absent" instead of stalling a lookup.
// The patterns compose from the outside in:
//
//   - Rate Limiter: caps how often the vault is called.
//   - Bulkhead: caps how many vault calls run at once.
//   - Circuit Breaker: stops calling a vault that keeps failing.
//   - Retry: retries transient failures with backoff.
//   - Timeout: bounds each attempt.
//
// # Usage
//
//	executor := resilience.NewExecutor(
//	    resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	        MaxFailures:  5,
//	        ResetTimeout: 30 * time.Second,
//	    })),
//	    resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{MaxAttempts: 2})),
//	    resilience.WithTimeout(5*time.Second),
//	)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    value, found, err = vault.Fetch(ctx, key)
//	    return err
//	})
package resilience
