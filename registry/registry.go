// Package registry holds the name-keyed set of visualization types.
//
// A Registry is an explicit object rather than process-wide state: each
// engine (and each test) owns one. Register overwrites by name; use
// RegisterIfAbsent where earlier registrations must win.
package registry

import (
	"sort"
	"sync"

	"github.com/teranos/devize/logger"
	"github.com/teranos/devize/sym"
	"go.uber.org/zap"
)

// Registry maps type names to descriptors. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*Descriptor
	log   *zap.SugaredLogger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(r *Registry) {
		r.log = l
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{types: make(map[string]*Descriptor)}
	for _, opt := range opts {
		opt(r)
	}
	r.log = logger.OrDefault(r.log, "registry")
	return r
}

// Register inserts d, replacing any descriptor with the same name.
func (r *Registry) Register(d *Descriptor) {
	if d == nil || d.Name == "" {
		return
	}
	r.mu.Lock()
	_, replaced := r.types[d.Name]
	r.types[d.Name] = d
	r.mu.Unlock()

	r.log.Infow("Registered type",
		logger.FieldSymbol, sym.ForType(d.Name, d.DataOnly),
		logger.FieldType, d.Name,
		logger.FieldImpl, d.ImplementationKind(),
		"replaced", replaced)
}

// RegisterIfAbsent registers d only if its name is free.
// Returns true if d was registered.
func (r *Registry) RegisterIfAbsent(d *Descriptor) bool {
	if d == nil || d.Name == "" {
		return false
	}
	r.mu.Lock()
	if _, exists := r.types[d.Name]; exists {
		r.mu.Unlock()
		r.log.Debugw("Type already registered, keeping existing", logger.FieldType, d.Name)
		return false
	}
	r.types[d.Name] = d
	r.mu.Unlock()

	r.log.Infow("Registered type",
		logger.FieldSymbol, sym.ForType(d.Name, d.DataOnly),
		logger.FieldType, d.Name,
		logger.FieldImpl, d.ImplementationKind())
	return true
}

// Lookup retrieves a descriptor by name
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.types[name]
	return d, ok
}

// Exists reports whether name is registered
func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.types[name]
	return ok
}

// List returns all descriptors sorted by name
func (r *Registry) List() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Descriptor, 0, len(r.types))
	for _, d := range r.types {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns all registered type names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

// Remove deletes name and reports whether it was registered.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	_, ok := r.types[name]
	delete(r.types, name)
	r.mu.Unlock()

	if ok {
		r.log.Infow("Removed type", logger.FieldType, name)
	}
	return ok
}
