package library

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/teranos/devize/errors"
	"github.com/teranos/devize/spec"
)

// Format is a document encoding.
type Format string

const (
	YAML Format = "yaml"
	JSON Format = "json"
	TOML Format = "toml"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, true
	case ".json":
		return JSON, true
	case ".toml":
		return TOML, true
	}
	return "", false
}

// Decode parses data into plain values and normalises them (mappings to
// map[string]any, sequences to []any, numbers to float64).
func Decode(data []byte, format Format) (any, error) {
	var v any
	switch format {
	case YAML:
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, errors.Wrap(err, "invalid YAML")
		}
	case JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&v); err != nil {
			return nil, errors.Wrap(err, "invalid JSON")
		}
	case TOML:
		m := map[string]any{}
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, errors.Wrap(err, "invalid TOML")
		}
		v = m
	default:
		return nil, errors.Newf("unsupported format %q", format)
	}
	return spec.Normalize(v), nil
}

// DecodeFile reads and decodes path, choosing the format by extension.
func DecodeFile(path string) (any, error) {
	format, ok := FormatFor(path)
	if !ok {
		return nil, errors.WithHint(
			errors.Newf("%s: unknown document format", path),
			"use a .yaml, .yml, .json or .toml extension")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	v, err := Decode(data, format)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return v, nil
}

// LoadSpecs reads a spec document: a single spec mapping, a sequence of
// specs, or (for TOML, whose root must be a table) a table with a "specs"
// array.
func LoadSpecs(path string) ([]spec.Spec, error) {
	v, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}
	return specsFrom(v, path)
}

// LoadSpec reads a document holding exactly one spec.
func LoadSpec(path string) (spec.Spec, error) {
	specs, err := LoadSpecs(path)
	if err != nil {
		return nil, err
	}
	if len(specs) != 1 {
		return nil, errors.Newf("%s: expected one spec, found %d", path, len(specs))
	}
	return specs[0], nil
}

func specsFrom(v any, path string) ([]spec.Spec, error) {
	switch t := v.(type) {
	case map[string]any:
		if _, hasType := t[spec.KeyType]; !hasType {
			if list, ok := t["specs"].([]any); ok {
				return specsFrom(list, path)
			}
			return nil, errors.WithHint(
				errors.Newf("%s: spec has no %q", path, spec.KeyType),
				"every spec names the type it instantiates")
		}
		return []spec.Spec{spec.Spec(t)}, nil
	case []any:
		out := make([]spec.Spec, 0, len(t))
		for i, item := range t {
			s, ok := item.(map[string]any)
			if !ok {
				return nil, errors.Newf("%s: entry %d is not a mapping", path, i)
			}
			out = append(out, spec.Spec(s))
		}
		return out, nil
	case nil:
		return nil, errors.Newf("%s: empty document", path)
	}
	return nil, errors.Newf("%s: a spec document holds a mapping or a sequence, got %T", path, v)
}
