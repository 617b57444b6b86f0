// SPDX-License-Identifier: MIT

package uncertainty

import "fmt"

// Registry collects the sources of one fit in registration order.
// A Registry is not safe for concurrent mutation.
type Registry struct {
	bins    int
	sources []*Source
	scopes  map[string]Scope
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{scopes: make(map[string]Scope)}
}

// Add registers src.
//
// Data-scope names must be unique. Template-indexed sources may share a name
// across different references (one named source, e.g. "statY" for every
// template); the same name and reference twice, or a name used by both
// scopes, is ErrDuplicateSource.
//
// Errors: ErrInvalidSource (nil), ErrDimensionMismatch, ErrDuplicateSource.
func (r *Registry) Add(src *Source) error {
	if src == nil {
		return fmt.Errorf("Add: nil source: %w", ErrInvalidSource)
	}
	if r.bins != 0 && src.Bins() != r.bins {
		return fmt.Errorf("Add(%q): %d bins, want %d: %w", src.name, src.Bins(), r.bins, ErrDimensionMismatch)
	}
	if scope, ok := r.scopes[src.name]; ok {
		if scope != src.scope || src.scope == ScopeData {
			return fmt.Errorf("Add(%q): %w", src.name, ErrDuplicateSource)
		}
		for _, s := range r.sources {
			if s.name == src.name && s.reference == src.reference {
				return fmt.Errorf("Add(%q@%v): %w", src.name, src.reference, ErrDuplicateSource)
			}
		}
	}

	r.bins = src.Bins()
	r.scopes[src.name] = src.scope
	r.sources = append(r.sources, src)

	return nil
}

// Len returns the number of registered sources.
func (r *Registry) Len() int { return len(r.sources) }

// Bins returns the shared bin count (0 while empty).
func (r *Registry) Bins() int { return r.bins }

// Has reports whether a source with this name exists.
func (r *Registry) Has(name string) bool {
	_, ok := r.scopes[name]

	return ok
}

// Sources returns the registered sources in registration order.
func (r *Registry) Sources() []*Source {
	out := make([]*Source, len(r.sources))
	copy(out, r.sources)

	return out
}

// Names returns the distinct source names in order of first registration.
func (r *Registry) Names() []string {
	return names(r.sources)
}

// Clone returns an independent registry sharing the immutable sources.
func (r *Registry) Clone() *Registry {
	c := &Registry{bins: r.bins, sources: r.Sources(), scopes: make(map[string]Scope, len(r.scopes))}
	for k, v := range r.scopes {
		c.scopes[k] = v
	}

	return c
}

func names(sources []*Source) []string {
	seen := make(map[string]bool, len(sources))
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		if !seen[s.name] {
			seen[s.name] = true
			out = append(out, s.name)
		}
	}

	return out
}
