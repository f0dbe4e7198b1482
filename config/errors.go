package config

import (
	"errors"
	"fmt"

	"github.com/jonwraymond/layerconf/keys"
	"github.com/jonwraymond/layerconf/observe"
)

var (
	// ErrKeyNotFound indicates no stage produced a non-empty value.
	ErrKeyNotFound = errors.New("config: key not found")

	// ErrParse indicates a value could not be converted to the requested type.
	ErrParse = errors.New("config: parse error")

	// ErrSourceNotFound indicates a loader has no source under a name.
	ErrSourceNotFound = errors.New("config: source not found")

	// ErrSourceLoad indicates a source exists but could not be read or parsed.
	// It is logged and the source is skipped; Initialize does not return it.
	ErrSourceLoad = errors.New("config: source load failed")

	// ErrClosed indicates the engine has been closed.
	ErrClosed = errors.New("config: engine closed")
)

// KeyNotFoundError reports the key no stage could resolve.
type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("config: key not found: %s", e.Key)
}

// Is matches ErrKeyNotFound.
func (e *KeyNotFoundError) Is(target error) bool {
	return target == ErrKeyNotFound
}

// ParseError reports a value that is not a valid Kind.
type ParseError struct {
	Key   string
	Value string
	Kind  string
	Err   error
}

func (e *ParseError) Error() string {
	value := e.Value
	if keys.IsSensitive(e.Key) {
		value = observe.Redacted
	}
	return fmt.Sprintf("config: %s is not a valid %s: %q", e.Key, e.Kind, value)
}

// Is matches ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// Unwrap returns the underlying conversion error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
