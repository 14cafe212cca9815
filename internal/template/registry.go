package template

import (
	"fmt"
	"log/slog"
	"sort"
)

// NewFunc constructs a node instance of one kind.
type NewFunc func(cfg Config) Node

// Registry maps node-kind identifiers to constructors.
type Registry struct {
	kinds map[string]NewFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]NewFunc)}
}

// Register adds a node kind. Registering the same kind twice is a
// programming error and panics.
func (r *Registry) Register(kind string, fn NewFunc) {
	if _, exists := r.kinds[kind]; exists {
		panic(fmt.Sprintf("node kind %q already registered", kind))
	}
	slog.Debug("Registering node kind.", "kind", kind)
	r.kinds[kind] = fn
}

// New constructs a node of the given kind.
func (r *Registry) New(kind string, cfg Config) (Node, error) {
	fn, ok := r.kinds[kind]
	if !ok {
		return nil, fmt.Errorf("unknown node kind: %q", kind)
	}
	return fn(cfg), nil
}

// Kinds returns the registered kind identifiers, sorted.
func (r *Registry) Kinds() []string {
	out := make([]string, 0, len(r.kinds))
	for k := range r.kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
