package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names.
const (
	MetricLookups     = "config.lookup.total"
	MetricMisses      = "config.lookup.misses"
	MetricSourceLoads = "config.source.loads"
	MetricReloads     = "config.reload.total"
	MetricCacheHits   = "secret.cache.hits"
	MetricCacheMisses = "secret.cache.misses"
	MetricVaultErrors = "secret.vault.errors"
)

// Source load outcomes.
const (
	OutcomeLoaded  = "loaded"
	OutcomeMissing = "missing"
	OutcomeFailed  = "failed"
)

// Metrics records resolution counters.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordLookup counts a lookup answered by stage.
	RecordLookup(ctx context.Context, stage string)
	// RecordMiss counts a lookup no stage could answer.
	RecordMiss(ctx context.Context)
	// RecordSourceLoad counts one attempt to read a source file.
	RecordSourceLoad(ctx context.Context, source, outcome string)
	// RecordReload counts a snapshot rebuild.
	RecordReload(ctx context.Context, err error)
	// RecordCacheHit counts a secret served from the cache.
	RecordCacheHit(ctx context.Context)
	// RecordCacheMiss counts a secret not in the cache.
	RecordCacheMiss(ctx context.Context)
	// RecordVaultError counts a failed vault fetch.
	RecordVaultError(ctx context.Context, vault string)
}

type metricsImpl struct {
	lookups     metric.Int64Counter
	misses      metric.Int64Counter
	sourceLoads metric.Int64Counter
	reloads     metric.Int64Counter
	cacheHits   metric.Int64Counter
	cacheMisses metric.Int64Counter
	vaultErrors metric.Int64Counter
}

// NewMetrics creates the resolution counters on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	m := &metricsImpl{}
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&m.lookups, MetricLookups, "Lookups answered, by stage", "{lookup}"},
		{&m.misses, MetricMisses, "Lookups no stage could answer", "{lookup}"},
		{&m.sourceLoads, MetricSourceLoads, "Source file load attempts, by outcome", "{load}"},
		{&m.reloads, MetricReloads, "Snapshot rebuilds", "{reload}"},
		{&m.cacheHits, MetricCacheHits, "Secrets served from the cache", "{lookup}"},
		{&m.cacheMisses, MetricCacheMisses, "Secrets not found in the cache", "{lookup}"},
		{&m.vaultErrors, MetricVaultErrors, "Failed vault fetches", "{error}"},
	}

	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name,
			metric.WithDescription(c.desc),
			metric.WithUnit(c.unit),
		)
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}
	return m, nil
}

func (m *metricsImpl) RecordLookup(ctx context.Context, stage string) {
	m.lookups.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}

func (m *metricsImpl) RecordMiss(ctx context.Context) {
	m.misses.Add(ctx, 1)
}

func (m *metricsImpl) RecordSourceLoad(ctx context.Context, source, outcome string) {
	m.sourceLoads.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("outcome", outcome),
	))
}

func (m *metricsImpl) RecordReload(ctx context.Context, err error) {
	m.reloads.Add(ctx, 1, metric.WithAttributes(attribute.Bool("error", err != nil)))
}

func (m *metricsImpl) RecordCacheHit(ctx context.Context) {
	m.cacheHits.Add(ctx, 1)
}

func (m *metricsImpl) RecordCacheMiss(ctx context.Context) {
	m.cacheMisses.Add(ctx, 1)
}

func (m *metricsImpl) RecordVaultError(ctx context.Context, vault string) {
	m.vaultErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("vault", vault)))
}

// NewNoopMetrics returns metrics that record nothing.
func NewNoopMetrics() Metrics {
	return noopMetrics{}
}

type noopMetrics struct{}

func (noopMetrics) RecordLookup(context.Context, string)             {}
func (noopMetrics) RecordMiss(context.Context)                       {}
func (noopMetrics) RecordSourceLoad(context.Context, string, string) {}
func (noopMetrics) RecordReload(context.Context, error)              {}
func (noopMetrics) RecordCacheHit(context.Context)                   {}
func (noopMetrics) RecordCacheMiss(context.Context)                  {}
func (noopMetrics) RecordVaultError(context.Context, string)         {}
