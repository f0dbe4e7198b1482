package observe

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Correlation identifies the unit of work a log entry belongs to.
type Correlation struct {
	TestName string
	ID       string
	Step     string
}

type correlationKey struct{}

// WithCorrelation starts a new correlation scope for testName with a fresh
// eight character id. Any step from an enclosing scope is dropped. A nil ctx
// is treated as context.Background().
func WithCorrelation(ctx context.Context, testName string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	c := Correlation{
		TestName: testName,
		ID:       uuid.NewString()[:8],
	}
	return context.WithValue(ctx, correlationKey{}, c)
}

// WithStep records the current step within the correlation scope. Without an
// enclosing scope the step is recorded on its own. A nil ctx is treated as
// context.Background().
func WithStep(ctx context.Context, step string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	c, _ := CorrelationFrom(ctx)
	c.Step = step
	return context.WithValue(ctx, correlationKey{}, c)
}

// CorrelationFrom returns the correlation carried by ctx.
func CorrelationFrom(ctx context.Context) (Correlation, bool) {
	if ctx == nil {
		return Correlation{}, false
	}
	c, ok := ctx.Value(correlationKey{}).(Correlation)
	return c, ok
}

func (c Correlation) zapFields() []zap.Field {
	fields := make([]zap.Field, 0, 3)
	if c.TestName != "" {
		fields = append(fields, zap.String("test", c.TestName))
	}
	if c.ID != "" {
		fields = append(fields, zap.String("correlation_id", c.ID))
	}
	if c.Step != "" {
		fields = append(fields, zap.String("step", c.Step))
	}
	return fields
}
