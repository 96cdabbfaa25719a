// Package schema exports type contracts as JSON Schema and validates type
// library documents before they are installed.
package schema

import (
	"encoding/json"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/teranos/devize/errors"
	"github.com/teranos/devize/registry"
	"github.com/teranos/devize/spec"
)

// Draft is the JSON Schema dialect emitted by ForDescriptor.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// ForDescriptor describes the specs accepted by a registered type: an object
// whose "type" is the type name, carrying every required property. Optional
// properties carry their defaults. Extra properties are allowed since specs
// are open.
func ForDescriptor(d *registry.Descriptor) (*jsonschema.Schema, error) {
	s := &jsonschema.Schema{
		Schema:      Draft,
		Title:       d.Name,
		Description: d.Description,
		Type:        "object",
		Required:    append([]string{spec.KeyType}, d.Required...),
		Properties: map[string]*jsonschema.Schema{
			spec.KeyType: {Const: jsonschema.Ptr[any](d.Name)},
		},
	}

	defaults := d.Defaults()
	for _, prop := range d.Properties() {
		ps := &jsonschema.Schema{}
		if def, ok := defaults[prop]; ok {
			raw, err := json.Marshal(spec.Canonical(def))
			if err != nil {
				return nil, errors.Wrapf(err, "type %q: default for %q", d.Name, prop)
			}
			ps.Default = raw
		}
		s.Properties[prop] = ps
	}

	if d.Extends != "" || d.DataOnly || d.Source != "" {
		s.Extra = map[string]any{}
		if d.Extends != "" {
			s.Extra["x-extends"] = d.Extends
		}
		if d.DataOnly {
			s.Extra["x-data-only"] = true
		}
		if d.Source != "" {
			s.Extra["x-source"] = d.Source
		}
	}
	return s, nil
}

// ValidateSpec checks s against the contract of d.
func ValidateSpec(d *registry.Descriptor, s spec.Spec) error {
	sch, err := ForDescriptor(d)
	if err != nil {
		return err
	}
	resolved, err := sch.Resolve(nil)
	if err != nil {
		return errors.Wrapf(err, "type %q: schema", d.Name)
	}
	if err := resolved.Validate(spec.Canonical(s)); err != nil {
		return errors.Wrapf(err, "spec does not satisfy type %q", d.Name)
	}
	return nil
}

// LibraryDocument is the schema every type library document must satisfy.
func LibraryDocument() *jsonschema.Schema {
	str := func() *jsonschema.Schema { return &jsonschema.Schema{Type: "string"} }

	definition := &jsonschema.Schema{
		Type:     "object",
		Required: []string{"name"},
		Properties: map[string]*jsonschema.Schema{
			"name":           {Type: "string", MinLength: jsonschema.Ptr(1)},
			"properties":     {Type: "object"},
			"implementation": {Types: []string{"object", "array"}},
			"extendsType":    str(),
			"dataOnly":       {Type: "boolean"},
			"description":    str(),
		},
	}

	return &jsonschema.Schema{
		Title:       "devize type library",
		Description: "A named collection of type definitions",
		Type:        "object",
		Required:    []string{"types"},
		Properties: map[string]*jsonschema.Schema{
			"name":        str(),
			"description": str(),
			"engine":      str(),
			"types":       {Type: "array", Items: definition},
		},
	}
}

var (
	libraryOnce     sync.Once
	libraryResolved *jsonschema.Resolved
	libraryErr      error
)

// ValidateLibrary checks a decoded library document. The error carries the
// first violation and is marked ErrMalformedDefinition.
func ValidateLibrary(doc any) error {
	libraryOnce.Do(func() {
		libraryResolved, libraryErr = LibraryDocument().Resolve(nil)
	})
	if libraryErr != nil {
		return errors.Wrap(libraryErr, "library schema")
	}
	if err := libraryResolved.Validate(spec.Canonical(spec.Normalize(doc))); err != nil {
		return errors.Mark(errors.Wrap(err, "library document does not match schema"), errors.ErrMalformedDefinition)
	}
	return nil
}
