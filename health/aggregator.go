package health

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds a full aggregator run.
const DefaultTimeout = 10 * time.Second

// Report is the outcome of running every registered checker.
type Report struct {
	Status  Status
	Results map[string]Result
}

// Names returns the checker names in sorted order.
func (r Report) Names() []string {
	names := make([]string, 0, len(r.Results))
	for name := range r.Results {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Aggregator combines multiple health checkers into a single report.
type Aggregator struct {
	timeout time.Duration

	mu       sync.RWMutex
	checkers map[string]Checker
}

// NewAggregator creates an aggregator. A non-positive timeout selects
// DefaultTimeout.
func NewAggregator(timeout ...time.Duration) *Aggregator {
	a := &Aggregator{
		timeout:  DefaultTimeout,
		checkers: make(map[string]Checker),
	}
	if len(timeout) > 0 && timeout[0] > 0 {
		a.timeout = timeout[0]
	}
	return a
}

// Register adds checker under its own name, replacing any previous one.
func (a *Aggregator) Register(checker Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.checkers[checker.Name()] = checker
}

// Check runs a single named health check.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	checker, ok := a.checkers[name]
	a.mu.RUnlock()

	if !ok {
		return Result{}, ErrCheckerNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return runCheck(ctx, checker), nil
}

// Run executes every registered checker concurrently. A checker that does not
// return before the timeout is reported unhealthy.
func (a *Aggregator) Run(ctx context.Context) Report {
	a.mu.RLock()
	checkers := make([]Checker, 0, len(a.checkers))
	for _, c := range a.checkers {
		checkers = append(checkers, c)
	}
	a.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	report := Report{Status: StatusHealthy, Results: make(map[string]Result, len(checkers))}
	var mu sync.Mutex
	var g errgroup.Group

	for _, checker := range checkers {
		g.Go(func() error {
			result := runCheck(ctx, checker)
			mu.Lock()
			report.Results[checker.Name()] = result
			report.Status = report.Status.Worse(result.Status)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return report
}

func runCheck(ctx context.Context, checker Checker) Result {
	start := time.Now()
	resultCh := make(chan Result, 1)

	go func() {
		resultCh <- checker.Check(ctx)
	}()

	select {
	case result := <-resultCh:
		result.Duration = time.Since(start)
		return result
	case <-ctx.Done():
		r := Unhealthy("check timed out", ErrCheckTimeout)
		r.Duration = time.Since(start)
		return r
	}
}

// Checker exposes the aggregator as a single checker named "aggregate".
func (a *Aggregator) Checker() Checker {
	return NewCheckerFunc("aggregate", func(ctx context.Context) Result {
		report := a.Run(ctx)

		details := make(map[string]any, len(report.Results))
		for name, result := range report.Results {
			details[name] = result.Status.String()
		}

		var r Result
		switch report.Status {
		case StatusHealthy:
			r = Healthy("all checks passed")
		case StatusDegraded:
			r = Degraded("some checks degraded")
		default:
			r = Unhealthy("some checks failed", nil)
		}
		return r.WithDetails(details)
	})
}
