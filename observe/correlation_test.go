package observe

import (
	"context"
	"testing"
)

func TestWithCorrelation_NewID(t *testing.T) {
	a, _ := CorrelationFrom(WithCorrelation(context.Background(), "A"))
	b, _ := CorrelationFrom(WithCorrelation(context.Background(), "A"))

	if len(a.ID) != 8 {
		t.Fatalf("ID = %q, want 8 characters", a.ID)
	}
	if a.ID == b.ID {
		t.Fatalf("two scopes share id %q", a.ID)
	}
}

func TestWithStep_KeepsScope(t *testing.T) {
	ctx := WithCorrelation(context.Background(), "Checkout")
	outer, _ := CorrelationFrom(ctx)

	ctx = WithStep(ctx, "pay")
	c, ok := CorrelationFrom(ctx)
	if !ok {
		t.Fatal("correlation missing")
	}
	if c.TestName != "Checkout" || c.ID != outer.ID || c.Step != "pay" {
		t.Fatalf("got %+v", c)
	}
}

func TestWithCorrelation_DropsStep(t *testing.T) {
	ctx := WithStep(context.Background(), "setup")
	ctx = WithCorrelation(ctx, "Next")

	c, _ := CorrelationFrom(ctx)
	if c.Step != "" {
		t.Fatalf("Step = %q, want empty", c.Step)
	}
}

func TestCorrelationFrom_Missing(t *testing.T) {
	if _, ok := CorrelationFrom(context.Background()); ok {
		t.Fatal("expected no correlation")
	}
	if _, ok := CorrelationFrom(nil); ok { //nolint:staticcheck // nil ctx is tolerated
		t.Fatal("expected no correlation for nil ctx")
	}
}

func TestWithStep_NilContext(t *testing.T) {
	ctx := WithStep(nil, "setup") //nolint:staticcheck // nil ctx is tolerated
	c, ok := CorrelationFrom(ctx)
	if !ok || c.Step != "setup" {
		t.Fatalf("got %+v, %v", c, ok)
	}

	ctx = WithCorrelation(nil, "Login") //nolint:staticcheck // nil ctx is tolerated
	if c, ok := CorrelationFrom(ctx); !ok || c.TestName != "Login" {
		t.Fatalf("got %+v, %v", c, ok)
	}
}
