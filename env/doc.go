// Package env provides the environment accessor the configuration engine and
// the secret resolver read from.
//
// A Source exposes two inputs:
//   - process overrides, looked up by exact key (app.url, env). They play the
//     role of per-process settings injected by a CI job or a test harness.
//   - OS environment variables, looked up by name (APP_URL).
//
// Both can be enumerated. Process wraps the real OS environment; Map is fully
// in-memory and is what tests and embedders use for isolation.
package env
