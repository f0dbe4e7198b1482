package resilience

import (
	"context"
	"sync/atomic"
	"time"
)

// DefaultMaxConcurrent is the bulkhead size when none is configured.
const DefaultMaxConcurrent = 8

// BulkheadConfig configures the bulkhead.
type BulkheadConfig struct {
	// MaxConcurrent is the number of operations allowed in flight.
	// Default: DefaultMaxConcurrent
	MaxConcurrent int

	// MaxWait is how long a caller queues for a slot. Zero fails at once.
	MaxWait time.Duration
}

// Bulkhead caps the number of operations in flight at once.
type Bulkhead struct {
	config BulkheadConfig
	sem    chan struct{}

	rejected atomic.Int64
}

// NewBulkhead creates a new bulkhead.
func NewBulkhead(config BulkheadConfig) *Bulkhead {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = DefaultMaxConcurrent
	}
	return &Bulkhead{
		config: config,
		sem:    make(chan struct{}, config.MaxConcurrent),
	}
}

// Execute runs op once a slot is free. It returns ErrBulkheadFull when no
// slot frees up within MaxWait.
func (b *Bulkhead) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := b.acquire(ctx); err != nil {
		return err
	}
	defer func() { <-b.sem }()
	return op(ctx)
}

func (b *Bulkhead) acquire(ctx context.Context) error {
	select {
	case b.sem <- struct{}{}:
		return nil
	default:
	}

	if b.config.MaxWait <= 0 {
		b.rejected.Add(1)
		return ErrBulkheadFull
	}

	timer := time.NewTimer(b.config.MaxWait)
	defer timer.Stop()

	select {
	case b.sem <- struct{}{}:
		return nil
	case <-timer.C:
		b.rejected.Add(1)
		return ErrBulkheadFull
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InFlight returns the number of operations currently holding a slot.
func (b *Bulkhead) InFlight() int {
	return len(b.sem)
}

// Rejected returns how many callers were turned away.
func (b *Bulkhead) Rejected() int64 {
	return b.rejected.Load()
}

// Config returns the bulkhead configuration.
func (b *Bulkhead) Config() BulkheadConfig {
	return b.config
}
