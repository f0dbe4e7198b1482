package secret

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/layerconf/cache"
	"github.com/jonwraymond/layerconf/env"
	"github.com/jonwraymond/layerconf/health"
	"github.com/jonwraymond/layerconf/keys"
	"github.com/jonwraymond/layerconf/observe"
	"github.com/jonwraymond/layerconf/resilience"
)

// VaultEnabledVar turns vault lookups on when set to "true" (any case).
const VaultEnabledVar = "VAULT_ENABLED"

// Resolver looks up secrets in its cache, then the vault, then the
// environment.
type Resolver struct {
	src          env.Source
	cache        cache.Cache
	vault        Vault
	vaultEnabled bool
	executor     *resilience.Executor
	logger       observe.Logger
	metrics      observe.Metrics
	tracer       observe.Tracer

	enabledOverride *bool
	group           singleflight.Group
	closeOnce       sync.Once
	closeErr        error
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithVault sets the vault consulted when vault lookups are enabled.
func WithVault(v Vault) Option {
	return func(r *Resolver) { r.vault = v }
}

// WithCache replaces the in-memory cache.
func WithCache(c cache.Cache) Option {
	return func(r *Resolver) { r.cache = c }
}

// WithExecutor sets the guard around vault calls.
func WithExecutor(e *resilience.Executor) Option {
	return func(r *Resolver) { r.executor = e }
}

// WithLogger sets the logger.
func WithLogger(l observe.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observe.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// WithTracer sets the tracer.
func WithTracer(t observe.Tracer) Option {
	return func(r *Resolver) { r.tracer = t }
}

// WithVaultEnabled overrides VAULT_ENABLED.
func WithVaultEnabled(enabled bool) Option {
	return func(r *Resolver) { r.enabledOverride = &enabled }
}

// NewResolver creates a resolver reading src. A nil src reads the process
// environment. The cache is filled from SECRET_* variables before return.
func NewResolver(src env.Source, opts ...Option) *Resolver {
	if src == nil {
		src = env.NewProcess(nil)
	}
	r := &Resolver{src: src}
	for _, opt := range opts {
		opt(r)
	}

	if r.cache == nil {
		r.cache = cache.NewMemoryCache()
	}
	if r.logger == nil {
		r.logger = observe.NewNopLogger()
	}
	if r.metrics == nil {
		r.metrics = observe.NewNoopMetrics()
	}
	if r.tracer == nil {
		r.tracer = observe.NewNoopTracer()
	}
	if r.vault == nil {
		r.vault = NewNoopVault(r.logger)
	}
	if r.executor == nil {
		r.executor = resilience.DefaultExecutor(resilience.DefaultTimeout)
	}

	if r.enabledOverride != nil {
		r.vaultEnabled = *r.enabledOverride
	} else {
		v, _ := src.Lookup(VaultEnabledVar)
		r.vaultEnabled = strings.EqualFold(v, "true")
	}

	r.prefetch(context.Background())
	return r
}

func (r *Resolver) prefetch(ctx context.Context) {
	for name, value := range r.src.Environ() {
		key, ok := keys.FromSecretEnv(name)
		if !ok {
			continue
		}
		if err := r.cache.Set(ctx, key, value); err != nil {
			r.logger.Debug(ctx, "skipping secret variable", observe.String("var", name), observe.Err(err))
		}
	}
}

// Get returns the secret for key. Absence is ("", false); so is a vault
// failure when the environment has no value either.
func (r *Resolver) Get(ctx context.Context, key string) (string, bool) {
	if strings.TrimSpace(key) == "" {
		return "", false
	}

	if v, ok := r.cache.Get(ctx, key); ok {
		r.metrics.RecordCacheHit(ctx)
		return v, true
	}
	r.metrics.RecordCacheMiss(ctx)

	if r.vaultEnabled {
		v, err := r.fetch(ctx, key)
		switch {
		case err != nil:
			r.logger.Warn(ctx, "vault lookup failed", observe.String("key", key), observe.Err(err))
		case v != "":
			r.store(ctx, key, v)
			return v, true
		}
	}

	if v, ok := r.src.Lookup(keys.EnvName(key)); ok {
		r.store(ctx, key, v)
		return v, true
	}
	return "", false
}

// Has reports whether Get would find key.
func (r *Resolver) Has(ctx context.Context, key string) bool {
	_, ok := r.Get(ctx, key)
	return ok
}

// fetch asks the vault once per key at a time; concurrent callers share the
// answer. The shared call ignores any one caller's cancellation and is
// bounded by the executor instead; each caller stops waiting when its own
// ctx is done.
func (r *Resolver) fetch(ctx context.Context, key string) (string, error) {
	shared := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key, func() (any, error) {
		ctx, span := r.tracer.StartSpan(shared, observe.SpanVaultFetch,
			attribute.String("vault", r.vault.Name()),
		)

		var (
			mu    sync.Mutex
			value string
		)
		err := r.executor.Execute(ctx, func(ctx context.Context) error {
			v, found, err := r.vault.Fetch(ctx, key)
			if err != nil {
				return err
			}
			if found {
				mu.Lock()
				value = v
				mu.Unlock()
			}
			return nil
		})
		r.tracer.EndSpan(span, err)

		if err != nil {
			r.metrics.RecordVaultError(ctx, r.vault.Name())
			return "", fmt.Errorf("%w: %s: %w", ErrVaultUnavailable, r.vault.Name(), err)
		}
		mu.Lock()
		defer mu.Unlock()
		return value, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %s: %w", ErrVaultUnavailable, r.vault.Name(), ctx.Err())
	}
}

func (r *Resolver) store(ctx context.Context, key, value string) {
	if err := r.cache.Set(ctx, key, value); err != nil {
		r.logger.Debug(ctx, "secret not cached", observe.String("key", key), observe.Err(err))
	}
}

// ClearCache drops every cached secret. SECRET_* variables are not re-read.
func (r *Resolver) ClearCache(ctx context.Context) {
	if err := r.cache.Clear(ctx); err != nil {
		r.logger.Warn(ctx, "secret cache clear failed", observe.Err(err))
		return
	}
	r.logger.Debug(ctx, "secret cache cleared")
}

// VaultEnabled reports whether vault lookups are on.
func (r *Resolver) VaultEnabled() bool {
	return r.vaultEnabled
}

// Vault returns the configured vault.
func (r *Resolver) Vault() Vault {
	return r.vault
}

// Close closes the vault. Safe to call more than once.
func (r *Resolver) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = r.vault.Close()
	})
	return r.closeErr
}

// Checker reports vault reachability from the circuit breaker state.
func (r *Resolver) Checker() health.Checker {
	return health.NewCheckerFunc("secrets", func(ctx context.Context) health.Result {
		if !r.vaultEnabled {
			return health.Healthy("vault disabled")
		}
		details := map[string]any{"vault": r.vault.Name()}
		if b := r.executor.Bulkhead(); b != nil {
			details["in_flight"] = b.InFlight()
			details["rejected"] = b.Rejected()
		}

		cb := r.executor.CircuitBreaker()
		if cb == nil {
			return health.Healthy("vault enabled").WithDetails(details)
		}
		details["failures"] = cb.Failures()

		switch cb.State() {
		case resilience.StateHalfOpen:
			return health.Degraded("vault circuit half-open").WithDetails(details)
		case resilience.StateOpen:
			return health.Unhealthy("vault circuit open", resilience.ErrCircuitOpen).WithDetails(details)
		default:
			return health.Healthy("vault reachable").WithDetails(details)
		}
	})
}
