package pipe

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Module is a unit of registration: it adds its pipes to a registry.
type Module interface {
	Register(r *Registry) error
}

type pipeKey struct {
	unit string
	name string
}

// Registry maps (unit, name) pairs to registered pipes. It is safe for
// concurrent use.
type Registry struct {
	mu    sync.RWMutex
	pipes map[pipeKey]*Pipe
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{pipes: make(map[pipeKey]*Pipe)}
}

// Load registers every module in order and stops at the first failure.
func (r *Registry) Load(modules ...Module) error {
	for _, m := range modules {
		if err := m.Register(r); err != nil {
			return err
		}
	}
	return nil
}

// Register validates and compiles d and stores it under (unit, name).
func (r *Registry) Register(unit string, d *Definition) (*Pipe, error) {
	if d == nil {
		return nil, newError(ErrConfig, "module '%s': nil pipe definition", unit)
	}
	if d.name == "" || strings.Contains(d.name, "/") {
		return nil, newError(ErrConfig, "module '%s': invalid pipe name '%s'", unit, d.name)
	}
	if d.fn == nil {
		return nil, newError(ErrConfig, "pipe '%s': missing body", d.name)
	}

	c := &compiler{pipe: d.name, active: make(map[*ContextSpec]bool)}
	params, err := c.params(d.params)
	if err != nil {
		return nil, err
	}

	p := &Pipe{
		unit:   unit,
		name:   d.name,
		help:   d.help,
		notes:  d.notes,
		fn:     d.fn,
		params: params,
	}
	for _, f := range params {
		if f.builtin == builtinDryRun {
			p.acceptsDryRun = true
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	key := pipeKey{unit: unit, name: d.name}
	if _, exists := r.pipes[key]; exists {
		return nil, newError(ErrConfig, "pipe '%s' is already defined in module '%s'", d.name, unit)
	}
	r.pipes[key] = p
	slog.Debug("Registered pipe.", "module", unit, "pipe", d.name)
	return p, nil
}

// MustRegister is Register for module initialisation code. It panics on
// error.
func (r *Registry) MustRegister(unit string, d *Definition) *Pipe {
	p, err := r.Register(unit, d)
	if err != nil {
		panic(fmt.Sprintf("pipe registration failed: %v", err))
	}
	return p
}

// Find returns the pipe registered under name. A name registered by several
// modules must be qualified as "unit/name".
func (r *Registry) Find(name string) (*Pipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := strings.LastIndex(name, "/"); i >= 0 {
		if p, ok := r.pipes[pipeKey{unit: name[:i], name: name[i+1:]}]; ok {
			return p, nil
		}
		return nil, newError(ErrPipeNotFound, "pipe not found: '%s'", name)
	}

	var units []string
	var found *Pipe
	for key, p := range r.pipes {
		if key.name == name {
			units = append(units, key.unit)
			found = p
		}
	}
	switch len(units) {
	case 0:
		return nil, newError(ErrPipeNotFound, "pipe not found: '%s'", name)
	case 1:
		return found, nil
	default:
		sort.Strings(units)
		return nil, newError(ErrConfig, "pipe '%s' is defined in multiple modules: %s (qualify it as '<module>/%s')",
			name, strings.Join(units, ", "), name)
	}
}

// Pipes returns every registered pipe ordered by module, then name.
func (r *Registry) Pipes() []*Pipe {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Pipe, 0, len(r.pipes))
	for _, p := range r.pipes {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].unit != out[j].unit {
			return out[i].unit < out[j].unit
		}
		return out[i].name < out[j].name
	})
	return out
}
