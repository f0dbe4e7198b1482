// Package observe provides the diagnostics used by the configuration engine
// and the secret resolver.
//
// It covers three concerns:
//
//   - Correlation: a test name, a short correlation id and the current step
//     travel on the context and are attached to every log entry.
//   - Logging: a ctx-aware Logger backed by zap that redacts sensitive fields.
//   - Telemetry: OpenTelemetry spans and counters for lookups, source loads,
//     reloads and vault calls, with exporters chosen by name.
//
// Nothing here changes resolution results. Every default is a no-op.
package observe
