// Package predicate is the shared registry of named node predicates used by
// structural navigation ("next heading", "next link"). Only a predicate's
// name crosses a frame boundary; each frame looks it up in its own registry.
package predicate

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/entrhq/cursornav/pkg/dom"
	"github.com/gobwas/glob"
)

// ErrUnknown is returned when a predicate name is not registered.
var ErrUnknown = errors.New("unknown predicate")

// Func reports whether a node matches.
type Func func(n dom.Node) bool

// Registry maps names to predicates.
type Registry struct {
	mu    sync.RWMutex
	preds map[string]Func
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{preds: make(map[string]Func)}
}

// Default creates a registry holding the built-in predicates.
func Default() *Registry {
	r := NewRegistry()
	for name, fn := range builtins() {
		r.preds[name] = fn
	}
	return r
}

// Register adds a predicate. Names must be unique.
func (r *Registry) Register(name string, fn Func) error {
	if name == "" || fn == nil {
		return fmt.Errorf("predicate needs a name and a function")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.preds[name]; exists {
		return fmt.Errorf("predicate %q already registered", name)
	}
	r.preds[name] = fn
	return nil
}

// Lookup returns the predicate registered under name.
func (r *Registry) Lookup(name string) (Func, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.preds[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return fn, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.preds))
	for name := range r.preds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Spec describes a custom predicate in configuration. A node matches when
// its element name matches one of Tags, or its role attribute one of Roles,
// and it carries every attribute in Attributes with the given value ("*"
// accepts any value). Tags and Roles are glob patterns.
type Spec struct {
	Name       string            `yaml:"name" json:"name"`
	Tags       []string          `yaml:"tags,omitempty" json:"tags,omitempty"`
	Roles      []string          `yaml:"roles,omitempty" json:"roles,omitempty"`
	Attributes map[string]string `yaml:"attributes,omitempty" json:"attributes,omitempty"`
}

// Compile builds the predicate described by spec.
func Compile(spec Spec) (Func, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("custom predicate has no name")
	}
	if len(spec.Tags) == 0 && len(spec.Roles) == 0 && len(spec.Attributes) == 0 {
		return nil, fmt.Errorf("custom predicate %q matches nothing", spec.Name)
	}
	tags, err := compileAll(spec.Tags)
	if err != nil {
		return nil, fmt.Errorf("custom predicate %q: %w", spec.Name, err)
	}
	roles, err := compileAll(spec.Roles)
	if err != nil {
		return nil, fmt.Errorf("custom predicate %q: %w", spec.Name, err)
	}
	attrs := spec.Attributes

	return func(n dom.Node) bool {
		if dom.IsText(n) {
			return false
		}
		if len(tags) > 0 || len(roles) > 0 {
			if !matchAny(tags, n.Name()) && !matchAny(roles, strings.ToLower(dom.AttrValue(n, "role"))) {
				return false
			}
		}
		for key, want := range attrs {
			got, ok := n.Attr(key)
			if !ok || (want != "*" && got != want) {
				return false
			}
		}
		return true
	}, nil
}

// RegisterSpecs compiles and registers custom predicates.
func (r *Registry) RegisterSpecs(specs []Spec) error {
	for _, spec := range specs {
		fn, err := Compile(spec)
		if err != nil {
			return err
		}
		if err := r.Register(spec.Name, fn); err != nil {
			return err
		}
	}
	return nil
}

func compileAll(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(strings.ToLower(p))
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func matchAny(globs []glob.Glob, s string) bool {
	if s == "" {
		return false
	}
	for _, g := range globs {
		if g.Match(s) {
			return true
		}
	}
	return false
}
