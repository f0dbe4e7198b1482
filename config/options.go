package config

import (
	"github.com/jonwraymond/layerconf/env"
	"github.com/jonwraymond/layerconf/observe"
	"github.com/jonwraymond/layerconf/secret"
)

// Option configures an Engine.
type Option func(*Engine)

// WithEnvironment sets the override and environment variable source.
// Default: the process environment with no overrides.
func WithEnvironment(src env.Source) Option {
	return func(e *Engine) { e.src = src }
}

// WithLoader sets where property sources are read from.
// Default: NewDirLoader(".").
func WithLoader(l Loader) Option {
	return func(e *Engine) { e.loader = l }
}

// WithSecrets sets the resolver consulted for sensitive keys. The engine
// closes it on Close.
// Default: a resolver over the engine's environment source.
func WithSecrets(r *secret.Resolver) Option {
	return func(e *Engine) { e.secrets = r }
}

// WithLogger sets the logger.
func WithLogger(l observe.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observe.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithTracer sets the tracer.
func WithTracer(t observe.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// WithFormats sets the source formats tried for each logical source, in
// merge order.
// Default: DefaultFormats().
func WithFormats(formats ...Format) Option {
	return func(e *Engine) { e.formats = formats }
}

// WithSourceDir sets the directory, relative to the loader root, holding
// the source files.
// Default: "config".
func WithSourceDir(dir string) Option {
	return func(e *Engine) { e.sourceDir = dir }
}

// WithDefaultEnvironment sets the environment used when the "env" override
// is absent.
// Default: "dev".
func WithDefaultEnvironment(name string) Option {
	return func(e *Engine) { e.defaultEnv = name }
}
