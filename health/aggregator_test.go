package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fixed(name string, r Result) Checker {
	return NewCheckerFunc(name, func(context.Context) Result { return r })
}

func TestAggregator_RunEmpty(t *testing.T) {
	report := NewAggregator().Run(context.Background())

	if report.Status != StatusHealthy || len(report.Results) != 0 {
		t.Fatalf("Run() = %+v, want healthy and empty", report)
	}
}

func TestAggregator_RunWorstWins(t *testing.T) {
	tests := []struct {
		name     string
		checkers []Checker
		want     Status
	}{
		{
			name:     "all healthy",
			checkers: []Checker{fixed("a", Healthy("")), fixed("b", Healthy(""))},
			want:     StatusHealthy,
		},
		{
			name:     "one degraded",
			checkers: []Checker{fixed("a", Healthy("")), fixed("b", Degraded(""))},
			want:     StatusDegraded,
		},
		{
			name:     "one unhealthy",
			checkers: []Checker{fixed("a", Degraded("")), fixed("b", Unhealthy("", errors.New("x")))},
			want:     StatusUnhealthy,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			agg := NewAggregator()
			for _, c := range tc.checkers {
				agg.Register(c)
			}
			report := agg.Run(context.Background())
			if report.Status != tc.want {
				t.Fatalf("Status = %v, want %v", report.Status, tc.want)
			}
			if len(report.Names()) != len(tc.checkers) {
				t.Fatalf("Names() = %v", report.Names())
			}
		})
	}
}

func TestAggregator_Timeout(t *testing.T) {
	agg := NewAggregator(20 * time.Millisecond)
	agg.Register(NewCheckerFunc("slow", func(ctx context.Context) Result {
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		return Healthy("late")
	}))

	report := agg.Run(context.Background())
	r := report.Results["slow"]
	if r.Status != StatusUnhealthy || !errors.Is(r.Error, ErrCheckTimeout) {
		t.Fatalf("slow result = %+v, want timeout", r)
	}
}

func TestAggregator_Check(t *testing.T) {
	agg := NewAggregator()
	agg.Register(fixed("engine", Healthy("ready")))

	r, err := agg.Check(context.Background(), "engine")
	if err != nil || r.Message != "ready" {
		t.Fatalf("Check() = %+v, %v", r, err)
	}
	if _, err := agg.Check(context.Background(), "vault"); !errors.Is(err, ErrCheckerNotFound) {
		t.Fatalf("Check(missing) error = %v", err)
	}
}

func TestAggregator_RegisterReplaces(t *testing.T) {
	agg := NewAggregator()
	agg.Register(fixed("engine", Unhealthy("not ready", nil)))
	agg.Register(fixed("engine", Healthy("ready")))

	if report := agg.Run(context.Background()); report.Status != StatusHealthy {
		t.Fatalf("Status = %v, want healthy", report.Status)
	}
}

func TestAggregator_Checker(t *testing.T) {
	agg := NewAggregator()
	agg.Register(fixed("engine", Healthy("")))
	agg.Register(fixed("secrets", Degraded("half-open")))

	c := agg.Checker()
	r := c.Check(context.Background())
	if c.Name() != "aggregate" || r.Status != StatusDegraded {
		t.Fatalf("aggregate = %s %+v", c.Name(), r)
	}
	if r.Details["secrets"] != "degraded" {
		t.Fatalf("Details = %v", r.Details)
	}
}
