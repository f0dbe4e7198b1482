package secret

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/jonwraymond/layerconf/observe"
)

// Vault is an external secret store.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Fetch must honor cancellation/deadlines.
// - Errors: a missing secret is ("", false, nil), not an error.
// - Secrets: implementations must not log secret values.
type Vault interface {
	Name() string
	Fetch(ctx context.Context, key string) (string, bool, error)
	Close() error
}

// NoopVault never has a value. It marks where a real store plugs in.
type NoopVault struct {
	logger observe.Logger
}

// NewNoopVault creates a NoopVault. A nil logger discards notes.
func NewNoopVault(logger observe.Logger) *NoopVault {
	if logger == nil {
		logger = observe.NewNopLogger()
	}
	return &NoopVault{logger: logger}
}

// Name returns "noop".
func (v *NoopVault) Name() string { return "noop" }

// Fetch logs the request and reports absence.
func (v *NoopVault) Fetch(ctx context.Context, key string) (string, bool, error) {
	v.logger.Info(ctx, "vault integration not implemented", observe.String("key", key))
	return "", false, nil
}

// Close is a no-op.
func (v *NoopVault) Close() error { return nil }

// DirVault reads secrets from a directory holding one file per key, the
// layout used by container secret mounts. Trailing newlines are trimmed.
type DirVault struct {
	dir  string
	root *os.Root
}

// NewDirVault opens dir. Lookups cannot escape it.
func NewDirVault(dir string) (*DirVault, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("secret: vault directory is required")
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("secret: open vault directory: %w", err)
	}
	return &DirVault{dir: dir, root: root}, nil
}

// Name returns "dir".
func (v *DirVault) Name() string { return "dir" }

// Dir returns the directory the vault reads from.
func (v *DirVault) Dir() string { return v.dir }

// Fetch reads the file named key.
func (v *DirVault) Fetch(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if key == "." || !fs.ValidPath(key) || strings.ContainsAny(key, `/\`) {
		return "", false, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	f, err := v.root.Open(key)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", false, err
	}
	return strings.TrimRight(string(data), "\r\n"), true, nil
}

// Close releases the directory handle.
func (v *DirVault) Close() error {
	return v.root.Close()
}

var (
	_ Vault = (*NoopVault)(nil)
	_ Vault = (*DirVault)(nil)
)
