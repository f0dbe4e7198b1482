package config

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jonwraymond/layerconf/env"
	"github.com/jonwraymond/layerconf/health"
	"github.com/jonwraymond/layerconf/keys"
	"github.com/jonwraymond/layerconf/observe"
	"github.com/jonwraymond/layerconf/secret"
)

const (
	// EnvOverrideKey is the override naming the active environment.
	EnvOverrideKey = "env"

	// DefaultEnvironment is used when EnvOverrideKey is absent.
	DefaultEnvironment = "dev"

	// DefaultSource is the logical source loaded before the environment's.
	DefaultSource = "default"

	// DefaultSourceDir holds the source files under the loader root.
	DefaultSourceDir = "config"

	// OverrideOrigin marks table entries promoted from process overrides.
	OverrideOrigin = "override"
)

// Stage identifies which step of the precedence chain produced a value.
type Stage int

const (
	StageNone Stage = iota
	StageOverride
	StageEnvironment
	StageSecret
	StageFile
)

func (s Stage) String() string {
	switch s {
	case StageOverride:
		return "override"
	case StageEnvironment:
		return "environment"
	case StageSecret:
		return "secret"
	case StageFile:
		return "file"
	default:
		return "none"
	}
}

// Entry is one key of the merged table.
type Entry struct {
	Key    string
	Value  string
	Source string
}

// snapshot is the published engine state. It is never mutated after Store.
type snapshot struct {
	table       Table
	origins     map[string]string
	environment string
	sources     []string
	loadedAt    time.Time
}

// Engine resolves configuration keys through a fixed precedence chain:
// process override, environment variable, secret (sensitive keys only),
// then the merged table of source files. Empty values count as absent at
// every stage.
//
// An Engine is safe for concurrent use. Lookups never block on Reload; they
// read whichever snapshot was current when they started.
type Engine struct {
	src        env.Source
	loader     Loader
	secrets    *secret.Resolver
	formats    []Format
	sourceDir  string
	defaultEnv string
	logger     observe.Logger
	metrics    observe.Metrics
	tracer     observe.Tracer

	mu     sync.Mutex
	state  atomic.Pointer[snapshot]
	closed atomic.Bool
}

// New creates an uninitialized engine. The first lookup initializes it.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}

	if e.src == nil {
		e.src = env.NewProcess(nil)
	}
	if e.loader == nil {
		e.loader = NewDirLoader(".")
	}
	if e.formats == nil {
		e.formats = DefaultFormats()
	}
	if e.sourceDir == "" {
		e.sourceDir = DefaultSourceDir
	}
	if e.defaultEnv == "" {
		e.defaultEnv = DefaultEnvironment
	}
	if e.logger == nil {
		e.logger = observe.NewNopLogger()
	}
	if e.metrics == nil {
		e.metrics = observe.NewNoopMetrics()
	}
	if e.tracer == nil {
		e.tracer = observe.NewNoopTracer()
	}
	if e.secrets == nil {
		e.secrets = secret.NewResolver(e.src,
			secret.WithLogger(e.logger),
			secret.WithMetrics(e.metrics),
			secret.WithTracer(e.tracer),
		)
	}
	return e
}

// Initialize loads the sources for the active environment and publishes the
// merged table. Calls after the first successful one return nil without
// reloading. Missing or unreadable sources are logged and skipped.
func (e *Engine) Initialize(ctx context.Context) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if e.state.Load() != nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed.Load() {
		return ErrClosed
	}
	if e.state.Load() != nil {
		return nil
	}

	ctx, span := e.tracer.StartSpan(ctx, observe.SpanInitialize,
		attribute.String("environment", e.EnvironmentName()),
	)
	snap := e.build(ctx)
	e.state.Store(snap)
	e.tracer.EndSpan(span, nil)

	e.logger.Info(ctx, "configuration loaded",
		observe.String("environment", snap.environment),
		observe.Field{Key: "sources", Value: snap.sources},
	)
	return nil
}

// Reload rebuilds the table from scratch and swaps it in atomically. The
// secret cache is left alone.
func (e *Engine) Reload(ctx context.Context) (err error) {
	ctx, span := e.tracer.StartSpan(ctx, observe.SpanReload,
		attribute.String("environment", e.EnvironmentName()),
	)
	defer func() {
		e.tracer.EndSpan(span, err)
		e.metrics.RecordReload(ctx, err)
	}()

	if e.closed.Load() {
		return ErrClosed
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed.Load() {
		return ErrClosed
	}

	snap := e.build(ctx)
	e.state.Store(snap)

	e.logger.Info(ctx, "configuration reloaded",
		observe.String("environment", snap.environment),
		observe.Field{Key: "sources", Value: snap.sources},
	)
	return nil
}

// build derives a complete snapshot. It does not touch published state.
func (e *Engine) build(ctx context.Context) *snapshot {
	snap := &snapshot{
		table:       Table{},
		origins:     make(map[string]string),
		environment: e.EnvironmentName(),
	}

	for _, name := range []string{DefaultSource, snap.environment} {
		e.loadSource(ctx, name, snap)
	}

	for key, value := range e.src.Overrides() {
		if keys.IsPromotable(key) {
			snap.table[key] = value
			snap.origins[key] = OverrideOrigin
		}
	}

	snap.loadedAt = time.Now()
	return snap
}

func (e *Engine) loadSource(ctx context.Context, name string, snap *snapshot) {
	for _, format := range e.formats {
		file := path.Join(e.sourceDir, name+format.Ext)

		table, err := e.readSource(ctx, file, format)
		switch {
		case errors.Is(err, ErrSourceNotFound):
			e.metrics.RecordSourceLoad(ctx, file, observe.OutcomeMissing)
			e.logger.Debug(ctx, "config source not found, skipping", observe.String("source", file))
			continue
		case err != nil:
			e.metrics.RecordSourceLoad(ctx, file, observe.OutcomeFailed)
			e.logger.Warn(ctx, "config source unreadable, skipping",
				observe.String("source", file),
				observe.Err(fmt.Errorf("%w: %w", ErrSourceLoad, err)),
			)
			continue
		}

		snap.table.merge(table)
		for key := range table {
			snap.origins[key] = file
		}
		snap.sources = append(snap.sources, file)
		e.metrics.RecordSourceLoad(ctx, file, observe.OutcomeLoaded)
		e.logger.Info(ctx, "config source loaded", observe.String("source", file))
	}
}

func (e *Engine) readSource(ctx context.Context, file string, format Format) (Table, error) {
	rc, err := e.loader.Load(ctx, file)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return format.Parse(rc)
}

// ready returns the current snapshot, initializing on first use.
func (e *Engine) ready(ctx context.Context) (*snapshot, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	if snap := e.state.Load(); snap != nil {
		return snap, nil
	}
	if err := e.Initialize(ctx); err != nil {
		return nil, err
	}
	return e.state.Load(), nil
}

// resolve walks the precedence chain.
func (e *Engine) resolve(ctx context.Context, key string) (string, Stage, error) {
	snap, err := e.ready(ctx)
	if err != nil {
		return "", StageNone, err
	}

	if v, ok := e.src.Override(key); ok && v != "" {
		return e.hit(ctx, v, StageOverride)
	}
	if v, ok := e.src.Lookup(keys.EnvName(key)); ok && v != "" {
		return e.hit(ctx, v, StageEnvironment)
	}
	if keys.IsSensitive(key) {
		if v, ok := e.secrets.Get(ctx, key); ok && v != "" {
			return e.hit(ctx, v, StageSecret)
		}
	}
	if v := snap.table[key]; v != "" {
		return e.hit(ctx, v, StageFile)
	}

	e.metrics.RecordMiss(ctx)
	return "", StageNone, &KeyNotFoundError{Key: key}
}

func (e *Engine) hit(ctx context.Context, value string, stage Stage) (string, Stage, error) {
	e.metrics.RecordLookup(ctx, stage.String())
	return value, stage, nil
}

// Get returns the value for key. It fails with an error matching
// ErrKeyNotFound when no stage has a non-empty value.
func (e *Engine) Get(ctx context.Context, key string) (string, error) {
	v, _, err := e.resolve(ctx, key)
	return v, err
}

// GetOr returns the value for key, or def when Get fails.
func (e *Engine) GetOr(ctx context.Context, key, def string) string {
	v, err := e.Get(ctx, key)
	if err != nil {
		return def
	}
	return v
}

// Lookup returns the value for key and the stage that produced it.
func (e *Engine) Lookup(ctx context.Context, key string) (value string, stage Stage, ok bool) {
	v, s, err := e.resolve(ctx, key)
	if err != nil {
		return "", StageNone, false
	}
	return v, s, true
}

// GetInt returns the value for key as a base-10 int. Surrounding
// whitespace is ignored.
func (e *Engine) GetInt(ctx context.Context, key string) (int, error) {
	v, err := e.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, &ParseError{Key: key, Value: v, Kind: "int", Err: err}
	}
	return n, nil
}

// GetIntOr returns GetInt, or def on any error.
func (e *Engine) GetIntOr(ctx context.Context, key string, def int) int {
	n, err := e.GetInt(ctx, key)
	if err != nil {
		return def
	}
	return n
}

// GetBool returns the value for key as a bool. Accepted values are those of
// strconv.ParseBool in any case: 1, t, true, 0, f, false.
func (e *Engine) GetBool(ctx context.Context, key string) (bool, error) {
	v, err := e.Get(ctx, key)
	if err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(v)))
	if err != nil {
		return false, &ParseError{Key: key, Value: v, Kind: "bool", Err: err}
	}
	return b, nil
}

// GetBoolOr returns GetBool, or def on any error.
func (e *Engine) GetBoolOr(ctx context.Context, key string, def bool) bool {
	b, err := e.GetBool(ctx, key)
	if err != nil {
		return def
	}
	return b
}

// EnvironmentName returns the environment named by the "env" override right
// now. It can differ from LoadedEnvironment until the next Reload.
func (e *Engine) EnvironmentName() string {
	if v, ok := e.src.Override(EnvOverrideKey); ok && v != "" {
		return v
	}
	return e.defaultEnv
}

// LoadedEnvironment returns the environment the current table was built
// for, or "" before initialization.
func (e *Engine) LoadedEnvironment() string {
	if snap := e.state.Load(); snap != nil {
		return snap.environment
	}
	return ""
}

// IsSensitive reports whether key is routed through the secret resolver.
func (e *Engine) IsSensitive(key string) bool {
	return keys.IsSensitive(key)
}

// Keys returns the merged table in key order. Sensitive values are
// redacted.
func (e *Engine) Keys(ctx context.Context) ([]Entry, error) {
	snap, err := e.ready(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(snap.table))
	for _, key := range snap.table.Keys() {
		value := snap.table[key]
		if keys.IsSensitive(key) {
			value = observe.Redacted
		}
		entries = append(entries, Entry{Key: key, Value: value, Source: snap.origins[key]})
	}
	return entries, nil
}

// Sources returns the source files merged into the current table, in merge
// order.
func (e *Engine) Sources() []string {
	if snap := e.state.Load(); snap != nil {
		return append([]string(nil), snap.sources...)
	}
	return nil
}

// Secrets returns the resolver used for sensitive keys.
func (e *Engine) Secrets() *secret.Resolver {
	return e.secrets
}

// Close closes the secret resolver. Later operations return ErrClosed.
// Calling Close more than once returns nil.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	return e.secrets.Close()
}

// Checker reports whether the engine can answer lookups.
func (e *Engine) Checker() health.Checker {
	return health.NewCheckerFunc("config", func(ctx context.Context) health.Result {
		if e.closed.Load() {
			return health.Unhealthy("engine closed", ErrClosed)
		}
		snap := e.state.Load()
		if snap == nil {
			return health.Degraded("not initialized")
		}
		return health.Healthy("configuration loaded").WithDetails(map[string]any{
			"environment": snap.environment,
			"keys":        len(snap.table),
			"sources":     len(snap.sources),
			"loaded_at":   snap.loadedAt.Format(time.RFC3339),
		})
	})
}
