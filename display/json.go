// Package display formats command output: JSON, YAML and TOML encodings of
// specs, results and configuration.
package display

import (
	"encoding/json"
	"io"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/teranos/devize/errors"
	"github.com/teranos/devize/spec"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Formats lists the accepted format names.
var Formats = []string{FormatJSON, FormatYAML, FormatTOML}

// MarshalJSON marshals v as indented JSON. Specs and bags are converted to
// plain maps first, dropping function values.
func MarshalJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(spec.Canonical(v), "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal JSON")
	}
	return data, nil
}

// Marshal encodes v in the named format.
func Marshal(v any, format string) ([]byte, error) {
	v = spec.Canonical(v)
	switch format {
	case FormatJSON:
		return MarshalJSON(v)
	case FormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal YAML")
		}
		return data, nil
	case FormatTOML:
		data, err := toml.Marshal(v)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal TOML")
		}
		return data, nil
	}
	return nil, errors.WithHintf(errors.Newf("unsupported format: %s", format),
		"supported formats: %v", Formats)
}

// Write encodes v in the named format to w, ending with a newline.
func Write(w io.Writer, v any, format string) error {
	data, err := Marshal(v, format)
	if err != nil {
		return err
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	_, err = w.Write(data)
	return err
}
