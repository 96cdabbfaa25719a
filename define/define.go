// Package define turns "define" specs into registered type descriptors.
//
// A define spec looks like:
//
//	type: define
//	name: box
//	extendsType: shape        # optional
//	dataOnly: false           # optional
//	description: a square     # optional
//	properties:
//	  x: {required: true}
//	  size: {default: 10}
//	  color: red              # shorthand for {default: red}
//	implementation:
//	  type: rectangle
//	  x: "{{x}}"
//	  width: "{{size}}"
package define

import (
	"sort"

	"github.com/teranos/devize/errors"
	"github.com/teranos/devize/logger"
	"github.com/teranos/devize/registry"
	"github.com/teranos/devize/spec"
	"github.com/teranos/devize/sym"
	"go.uber.org/zap"
)

// TypeName is the type of define specs.
const TypeName = "define"

// Keys consumed from a define spec.
const (
	KeyName           = "name"
	KeyProperties     = "properties"
	KeyImplementation = "implementation"
	KeyExtends        = "extendsType"
	KeyDataOnly       = "dataOnly"
	KeyDescription    = "description"
	KeyRequired       = "required"
	KeyDefault        = "default"
)

// Definition is a parsed define spec, before extension is applied.
type Definition struct {
	Name           string
	Required       []string
	Optional       map[string]any
	Implementation registry.Implementation
	Extends        string
	DataOnly       bool
	Description    string
}

// Parse validates a define spec. It does not touch any registry.
func Parse(s spec.Spec) (*Definition, error) {
	name, _ := s.String(KeyName)
	if name == "" {
		return nil, errors.WithHint(
			errors.NewMalformedDefinitionError("missing %q", KeyName),
			"every define spec needs a non-empty string name")
	}
	if spec.IsPrimitive(name) || name == TypeName {
		return nil, errors.NewMalformedDefinitionError("type %q: %q is reserved", name, name)
	}

	def := &Definition{
		Name:     name,
		Optional: map[string]any{},
	}

	if v, ok := s[KeyExtends]; ok && v != nil {
		ext, isString := v.(string)
		if !isString {
			return nil, errors.NewMalformedDefinitionError("type %q: %q must be a string, got %T", name, KeyExtends, v)
		}
		def.Extends = ext
	}

	if v, ok := s[KeyDataOnly]; ok && v != nil {
		b, isBool := v.(bool)
		if !isBool {
			return nil, errors.NewMalformedDefinitionError("type %q: %q must be a bool, got %T", name, KeyDataOnly, v)
		}
		def.DataOnly = b
	}

	if v, ok := s[KeyDescription]; ok && v != nil {
		d, isString := v.(string)
		if !isString {
			return nil, errors.NewMalformedDefinitionError("type %q: %q must be a string, got %T", name, KeyDescription, v)
		}
		def.Description = d
	}

	props, hasProps := s[KeyProperties]
	switch {
	case !hasProps && def.Extends == "":
		return nil, errors.WithHint(
			errors.NewMalformedDefinitionError("type %q: missing %q", name, KeyProperties),
			"use an empty mapping for a type without properties")
	case hasProps:
		if err := def.parseProperties(props); err != nil {
			return nil, err
		}
	}

	impl, err := parseImplementation(name, s[KeyImplementation])
	if err != nil {
		return nil, err
	}
	def.Implementation = impl

	return def, nil
}

func (d *Definition) parseProperties(v any) error {
	if v == nil {
		return nil
	}
	props, ok := spec.AsSpec(v)
	if !ok {
		return errors.NewMalformedDefinitionError("type %q: %q must be a mapping, got %T", d.Name, KeyProperties, v)
	}

	for _, prop := range props.Keys() {
		entry := props[prop]
		m, isMap := spec.AsSpec(entry)
		if !isMap || !isContractEntry(m) {
			// shorthand: the value is the default
			d.Optional[prop] = entry
			continue
		}

		required := false
		if r, ok := m[KeyRequired]; ok && r != nil {
			b, isBool := r.(bool)
			if !isBool {
				return errors.NewMalformedDefinitionError("type %q: property %q: %q must be a bool, got %T", d.Name, prop, KeyRequired, r)
			}
			required = b
		}
		if required {
			d.Required = append(d.Required, prop)
			continue
		}
		d.Optional[prop] = m[KeyDefault]
	}
	return nil
}

// isContractEntry reports whether m is a {required?, default?} entry rather
// than a mapping-valued default.
func isContractEntry(m spec.Spec) bool {
	if len(m) == 0 {
		return true
	}
	for k := range m {
		if k != KeyRequired && k != KeyDefault {
			return false
		}
	}
	return true
}

func parseImplementation(name string, v any) (registry.Implementation, error) {
	switch impl := v.(type) {
	case nil:
		return nil, errors.WithHint(
			errors.NewMalformedDefinitionError("type %q: missing %q", name, KeyImplementation),
			"provide a function or a template spec")
	case registry.FuncImpl:
		return impl, nil
	case registry.TemplateImpl:
		return impl, nil
	}
	if fn, ok := spec.AsFunc(v); ok {
		return registry.FuncImpl(fn), nil
	}
	return registry.TemplateImpl{Template: v}, nil
}

// Handler registers definitions into a registry.
type Handler struct {
	reg *registry.Registry
	log *zap.SugaredLogger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(h *Handler) { h.log = l }
}

// NewHandler creates a Handler bound to reg.
func NewHandler(reg *registry.Registry, opts ...Option) *Handler {
	h := &Handler{reg: reg}
	for _, opt := range opts {
		opt(h)
	}
	h.log = logger.WithSymbol(logger.OrDefault(h.log, "define"), sym.Define)
	return h
}

// Handle parses s, applies extension and registers the result. Exactly one
// Register call happens on success; nothing is registered on error.
func (h *Handler) Handle(s spec.Spec) (*registry.Descriptor, error) {
	def, err := Parse(s)
	if err != nil {
		return nil, err
	}
	d, err := h.Build(def)
	if err != nil {
		return nil, err
	}
	if src, ok := s.String("source"); ok {
		d.Source = src
	}
	h.reg.Register(d)
	h.log.Infow("Defined type",
		logger.FieldType, d.Name,
		logger.FieldExtends, d.Extends,
		logger.FieldImpl, d.ImplementationKind(),
		logger.FieldCount, len(d.Required)+len(d.Optional))
	return d, nil
}

// Build turns a definition into a descriptor, layering it over its base.
//
// The base's defaults seed the new optional set and the definition's own
// properties win. Base required properties stay required unless the
// definition gives them a default.
func (h *Handler) Build(def *Definition) (*registry.Descriptor, error) {
	d := &registry.Descriptor{
		Name:           def.Name,
		Optional:       map[string]any{},
		Implementation: def.Implementation,
		Extends:        def.Extends,
		DataOnly:       def.DataOnly,
		Description:    def.Description,
	}

	ownRequired := make(map[string]bool, len(def.Required))
	for _, r := range def.Required {
		ownRequired[r] = true
	}

	if def.Extends != "" {
		if def.Extends == def.Name {
			return nil, errors.NewMalformedDefinitionError("type %q cannot extend itself", def.Name)
		}
		base, ok := h.reg.Lookup(def.Extends)
		if !ok {
			return nil, errors.WithHint(
				errors.NewMalformedDefinitionError("type %q extends unknown type %q", def.Name, def.Extends),
				"define the base type first, or load the library that provides it")
		}
		for k, v := range base.Optional {
			if !ownRequired[k] {
				d.Optional[k] = v
			}
		}
		for _, r := range base.Required {
			if _, defaulted := def.Optional[r]; !defaulted && !ownRequired[r] {
				d.Required = append(d.Required, r)
			}
		}
		d.DataOnly = d.DataOnly || base.DataOnly
		if d.Description == "" {
			d.Description = base.Description
		}
	}

	for k, v := range def.Optional {
		d.Optional[k] = v
	}
	d.Required = append(d.Required, def.Required...)
	sort.Strings(d.Required)

	return d, nil
}

// Descriptor returns the descriptor of the define type itself. Its
// implementation registers the type described by the bag and yields a
// data bag naming it.
func (h *Handler) Descriptor() *registry.Descriptor {
	return &registry.Descriptor{
		Name:        TypeName,
		Optional:    map[string]any{},
		DataOnly:    true,
		Description: "registers a new visualization type",
		Source:      "builtin",
		Implementation: registry.FuncImpl(func(b spec.Bag) (any, error) {
			d, err := h.Handle(b.Spec())
			if err != nil {
				return nil, err
			}
			return spec.Bag{KeyName: d.Name}, nil
		}),
	}
}
