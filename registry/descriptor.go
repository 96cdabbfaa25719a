package registry

import (
	"sort"

	"github.com/teranos/devize/spec"
)

// Implementation is how a type decomposes: FuncImpl or TemplateImpl.
type Implementation interface {
	implementation()
}

// FuncImpl computes the next spec (or sequence of specs) from the bag.
type FuncImpl func(spec.Bag) (any, error)

func (FuncImpl) implementation() {}

// TemplateImpl is a declarative template resolved against the bag.
type TemplateImpl struct {
	Template any
}

func (TemplateImpl) implementation() {}

// Descriptor is the registered contract and implementation of a named type.
type Descriptor struct {
	Name string

	// Required lists property names that must be present on every spec.
	Required []string

	// Optional maps property names to their defaults.
	Optional map[string]any

	Implementation Implementation

	// Extends names the base type. Template implementations are merged
	// over the base's output at decomposition time.
	Extends string

	// DataOnly marks a non-rendering type whose output is a data bag.
	DataOnly bool

	Description string

	// Source records where the type was defined ("builtin", a file path).
	Source string
}

// IsRequired reports whether prop is in the required set.
func (d *Descriptor) IsRequired(prop string) bool {
	for _, r := range d.Required {
		if r == prop {
			return true
		}
	}
	return false
}

// Defaults returns a copy of the optional defaults.
func (d *Descriptor) Defaults() map[string]any {
	out := make(map[string]any, len(d.Optional))
	for k, v := range d.Optional {
		out[k] = v
	}
	return out
}

// Properties returns every declared property name, sorted.
func (d *Descriptor) Properties() []string {
	seen := make(map[string]bool, len(d.Required)+len(d.Optional))
	names := make([]string, 0, len(d.Required)+len(d.Optional))
	for _, r := range d.Required {
		if !seen[r] {
			seen[r] = true
			names = append(names, r)
		}
	}
	for k := range d.Optional {
		if !seen[k] {
			seen[k] = true
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

// ImplementationKind is "function", "template" or "none".
func (d *Descriptor) ImplementationKind() string {
	switch d.Implementation.(type) {
	case FuncImpl:
		return "function"
	case TemplateImpl:
		return "template"
	default:
		return "none"
	}
}
