// Package registry maps operation names to functions taking loosely typed
// arguments. Scripts, the MCP server and the HTTP API all dispatch through it.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/cadbridge/pkg/domain"
)

// Operation is one named capability. Args come from YAML, JSON or tool calls.
type Operation func(ctx context.Context, args map[string]any) (any, error)

// Param documents one operation argument.
type Param struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// Entry is a registered operation with its catalogue information.
type Entry struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Params      []Param   `json:"params,omitempty"`
	Fn          Operation `json:"-"`
}

// Registry manages the available operations.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]Entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		ops: make(map[string]Entry),
	}
}

// Register adds an operation. An existing entry with the same name is replaced.
func (r *Registry) Register(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[e.Name] = e
}

// Execute runs the named operation.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	e, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: operation %q", domain.ErrUnknownName, name)
	}
	if args == nil {
		args = map[string]any{}
	}
	return e.Fn(ctx, args)
}

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.ops[name]
	return e, ok
}

// Entries returns all operations sorted by name.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.ops))
	for _, e := range r.ops {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
