// Package keys holds the pure string functions shared by the configuration
// engine and the secret resolver.
//
// Configuration keys are dot-separated and namespaced (db.password,
// api.base.url). The functions here classify keys as sensitive and map them
// to and from environment variable names:
//
//	keys.EnvName("db.password")          // "DB_PASSWORD"
//	keys.FromSecretEnv("SECRET_DB_PASS") // "db.pass", true
//	keys.IsSensitive("user.apiKey")      // true
//
// None of them perform I/O.
package keys
