package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/json-to-terraform/stacks/internal/config"
	"github.com/json-to-terraform/stacks/internal/construct"
)

// ErrUnknownApp is returned when no definition is registered under a name.
var ErrUnknownApp = errors.New("unknown app")

// Definition is the interface each app definition must implement.
type Definition interface {
	Name() string
	Description() string
	// Define constructs the app's stacks. Problems with individual
	// constructs are recorded as stack diagnostics; the returned error is
	// for failures that prevent building the app at all.
	Define(app *construct.App, cfg *config.Config) error
}

// Default is the global definition registry.
var Default = New()

// Registry holds app definitions.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// New returns a new empty registry.
func New() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds a definition under its name.
func (r *Registry) Register(d Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[d.Name()] = d
}

// Get returns the definition registered under name, or nil and false.
func (r *Registry) Get(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[name]
	return d, ok
}

// Names returns all registered app names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.defs))
	for n := range r.defs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Build creates an app writing to cfg.Outdir and runs the named definition on it.
func (r *Registry) Build(name string, cfg *config.Config) (*construct.App, error) {
	d, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownApp, name, r.Names())
	}
	app := construct.NewApp(cfg.Outdir)
	if err := d.Define(app, cfg); err != nil {
		return nil, fmt.Errorf("define %s: %w", name, err)
	}
	return app, nil
}
