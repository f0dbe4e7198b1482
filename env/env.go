package env

import (
	"maps"
	"os"
	"strings"
	"sync"
)

// Source is the environment accessor.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Ownership: Overrides and Environ return copies the caller may mutate.
type Source interface {
	// Override returns the process override for key.
	Override(key string) (string, bool)

	// Overrides returns every process override.
	Overrides() map[string]string

	// Lookup returns the environment variable name.
	Lookup(name string) (string, bool)

	// Environ returns every environment variable.
	Environ() map[string]string
}

// overrides is a concurrent override set shared by Process and Map.
type overrides struct {
	mu     sync.RWMutex
	values map[string]string
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	maps.Copy(out, in)
	return out
}

// Override returns the process override for key.
func (o *overrides) Override(key string) (string, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.values[key]
	return v, ok
}

// Overrides returns a copy of every process override.
func (o *overrides) Overrides() map[string]string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return maps.Clone(o.values)
}

// SetOverride sets a process override.
func (o *overrides) SetOverride(key, value string) {
	o.mu.Lock()
	o.values[key] = value
	o.mu.Unlock()
}

// UnsetOverride removes a process override. Idempotent.
func (o *overrides) UnsetOverride(key string) {
	o.mu.Lock()
	delete(o.values, key)
	o.mu.Unlock()
}

// Process reads environment variables from the OS and keeps process
// overrides in memory.
type Process struct {
	overrides
}

// NewProcess creates a Process source seeded with the given overrides.
func NewProcess(initial map[string]string) *Process {
	p := &Process{}
	p.values = copyMap(initial)
	return p
}

// Lookup returns the OS environment variable name.
func (p *Process) Lookup(name string) (string, bool) {
	return os.LookupEnv(name)
}

// Environ returns a snapshot of the OS environment.
func (p *Process) Environ() map[string]string {
	return ParseEnviron(os.Environ())
}

// Map is an in-memory Source.
type Map struct {
	overrides

	varsMu sync.RWMutex
	vars   map[string]string
}

// NewMap creates an in-memory Source from override and variable maps.
// Both maps are copied.
func NewMap(initialOverrides, vars map[string]string) *Map {
	m := &Map{vars: copyMap(vars)}
	m.values = copyMap(initialOverrides)
	return m
}

// Lookup returns the variable name.
func (m *Map) Lookup(name string) (string, bool) {
	m.varsMu.RLock()
	defer m.varsMu.RUnlock()
	v, ok := m.vars[name]
	return v, ok
}

// Environ returns a copy of every variable.
func (m *Map) Environ() map[string]string {
	m.varsMu.RLock()
	defer m.varsMu.RUnlock()
	return maps.Clone(m.vars)
}

// Setenv sets a variable.
func (m *Map) Setenv(name, value string) {
	m.varsMu.Lock()
	m.vars[name] = value
	m.varsMu.Unlock()
}

// Unsetenv removes a variable. Idempotent.
func (m *Map) Unsetenv(name string) {
	m.varsMu.Lock()
	delete(m.vars, name)
	m.varsMu.Unlock()
}

// ParseEnviron converts "NAME=value" pairs into a map. Entries without '='
// are ignored; later duplicates win.
func ParseEnviron(pairs []string) map[string]string {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			continue
		}
		out[name] = value
	}
	return out
}

var (
	_ Source = (*Process)(nil)
	_ Source = (*Map)(nil)
)
