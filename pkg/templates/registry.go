package templates

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

type entry struct {
	template *Template
	builtIn  bool
}

// Registry stores templates by id
type Registry struct {
	mu        sync.RWMutex
	templates map[string]entry
}

// Option configures the built-in templates of a Registry
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock fixes the time used by time-dependent templates
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// NewRegistry creates a registry holding the built-in templates
func NewRegistry(opts ...Option) *Registry {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Registry{templates: make(map[string]entry)}
	for _, t := range BuiltIns(o.now) {
		// Built-in ids are unique.
		_ = r.Register(t, true)
	}
	return r
}

// Register adds a template. It fails on a duplicate id, a missing render
// function or an unknown category.
func (r *Registry) Register(t *Template, builtIn bool) error {
	if t == nil || t.Render == nil {
		return fmt.Errorf("template must have a render function")
	}
	if t.Metadata.ID == "" {
		return fmt.Errorf("template id is required")
	}
	if !ValidCategory(t.Metadata.Category) {
		return fmt.Errorf("invalid category '%s' in template '%s'", t.Metadata.Category, t.Metadata.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.templates[t.Metadata.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTemplate, t.Metadata.ID)
	}
	r.templates[t.Metadata.ID] = entry{template: t, builtIn: builtIn}
	return nil
}

// Get returns the template registered under id
func (r *Registry) Get(id string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return e.template, nil
}

// Has reports whether id is registered
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.templates[id]
	return ok
}

// All returns every template sorted by id
func (r *Registry) All() []*Template {
	return r.filter(func(entry) bool { return true })
}

// BuiltIn returns the built-in templates sorted by id
func (r *Registry) BuiltIn() []*Template {
	return r.filter(func(e entry) bool { return e.builtIn })
}

// ByCategory returns templates of category c sorted by id
func (r *Registry) ByCategory(c Category) []*Template {
	return r.filter(func(e entry) bool { return e.template.Metadata.Category == c })
}

// Metadata lists the metadata of every template sorted by id
func (r *Registry) Metadata() []Metadata {
	all := r.All()
	out := make([]Metadata, 0, len(all))
	for _, t := range all {
		out = append(out, t.Metadata)
	}
	return out
}

func (r *Registry) filter(keep func(entry) bool) []*Template {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Template, 0, len(r.templates))
	for _, e := range r.templates {
		if keep(e) {
			out = append(out, e.template)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Metadata.ID < out[j].Metadata.ID
	})
	return out
}
