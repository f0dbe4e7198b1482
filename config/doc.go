// Package config resolves configuration keys from layered sources.
//
// A value is taken from the first stage that has a non-empty one:
//
//  1. a process override (env.Source.Override), e.g. -Ddb.host=...;
//  2. an environment variable named by upper-casing the key and turning dots
//     into underscores (db.host reads DB_HOST);
//  3. the secret resolver, for keys whose name contains password, token,
//     secret, apikey or credential;
//  4. the merged table of source files.
//
// The table is built from config/default.* and then config/<env>.*, later
// files winning. <env> is the "env" override, "dev" when unset. Each logical
// source is looked up as .properties, .yaml, .yml and .toml, in that order.
// Overrides under app., db. and api. are then copied into the table.
//
// Sources are read once, on the first lookup or Initialize. Reload rebuilds
// the table and swaps it in atomically; a Watcher calls Reload when files
// change.
//
//	engine := config.New(config.WithLoader(config.NewDirLoader("testdata")))
//	defer engine.Close()
//
//	url, err := engine.Get(ctx, "app.url")
//	timeout := engine.GetIntOr(ctx, "app.timeout", 30)
package config
