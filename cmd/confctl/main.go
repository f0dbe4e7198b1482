// Command confctl resolves configuration keys the way a test run would see
// them.
//
// Usage:
//
//	confctl [flags] get app.url
//	confctl -D env=qa get --explain db.host
//	confctl --env-file ci.env keys
//	confctl --vault dir --vault-dir /run/secrets health
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
