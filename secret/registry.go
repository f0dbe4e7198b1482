package secret

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jonwraymond/layerconf/observe"
)

// VaultConfig carries what a factory may need to build a vault.
type VaultConfig struct {
	// Dir is the secrets directory for directory-backed vaults.
	Dir string

	// Logger receives vault notes.
	Logger observe.Logger
}

// VaultFactory creates a Vault from configuration.
type VaultFactory func(cfg VaultConfig) (Vault, error)

// Registry maps vault names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]VaultFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]VaultFactory)}
}

// Register adds a factory. Names are unique.
func (r *Registry) Register(name string, factory VaultFactory) error {
	name = strings.TrimSpace(name)
	if name == "" || factory == nil {
		return ErrInvalidRegistration
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("%w: %q already registered", ErrInvalidRegistration, name)
	}
	r.factories[name] = factory
	return nil
}

// Create builds the vault registered under name.
func (r *Registry) Create(name string, cfg VaultConfig) (Vault, error) {
	name = strings.TrimSpace(name)

	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrVaultNotRegistered, name)
	}

	return factory(cfg)
}

// List returns registered vault names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry knows the built-in vaults: noop and dir.
var DefaultRegistry = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register("noop", func(cfg VaultConfig) (Vault, error) {
		return NewNoopVault(cfg.Logger), nil
	})
	_ = r.Register("dir", func(cfg VaultConfig) (Vault, error) {
		return NewDirVault(cfg.Dir)
	})
	return r
}
