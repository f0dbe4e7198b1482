package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
)

// Loader opens named property sources.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: a missing source returns an error matching ErrSourceNotFound.
// - Ownership: the caller closes the returned reader.
type Loader interface {
	Load(ctx context.Context, name string) (io.ReadCloser, error)
}

type fsLoader struct {
	fsys fs.FS
}

// NewFSLoader reads sources from fsys, e.g. an embed.FS.
func NewFSLoader(fsys fs.FS) Loader {
	return &fsLoader{fsys: fsys}
}

// NewDirLoader reads sources from the directory tree rooted at dir.
func NewDirLoader(dir string) Loader {
	return &fsLoader{fsys: os.DirFS(dir)}
}

func (l *fsLoader) Load(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := l.fsys.Open(path.Clean(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Format parses one kind of source file.
type Format struct {
	// Ext is the file extension including the dot, e.g. ".yaml".
	Ext string

	// Parse reads a source into a flat table of dotted keys.
	Parse func(r io.Reader) (Table, error)
}

// Supported source formats.
var (
	Properties = Format{Ext: ".properties", Parse: parseProperties}
	YAML       = Format{Ext: ".yaml", Parse: parseYAML}
	YML        = Format{Ext: ".yml", Parse: parseYAML}
	TOML       = Format{Ext: ".toml", Parse: parseTOML}
)

// DefaultFormats returns the formats tried for each logical source, in merge
// order.
func DefaultFormats() []Format {
	return []Format{Properties, YAML, YML, TOML}
}
