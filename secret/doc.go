// Package secret resolves sensitive configuration keys.
//
// A Resolver answers a key from, in order:
//
//  1. its cache, pre-filled at construction from every SECRET_* environment
//     variable (SECRET_DB_PASSWORD becomes db.password);
//  2. a Vault, when VAULT_ENABLED is "true" (any case);
//  3. the environment variable named by keys.EnvName (db.password reads
//     DB_PASSWORD).
//
// Values found in steps 2 and 3 are cached until ClearCache. Vault calls run
// through a resilience.Executor: a vault that errors, hangs or keeps failing
// is reported with ErrVaultUnavailable and treated as having no value.
//
// The default vault is NoopVault. DirVault reads one file per key from a
// mounted directory such as /run/secrets. Implementations are picked by name
// from a Registry.
//
// Secret values are never logged.
package secret
