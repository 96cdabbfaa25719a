package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/devize/errors"
	"github.com/teranos/devize/registry"
	"github.com/teranos/devize/spec"
)

func boxDescriptor() *registry.Descriptor {
	return &registry.Descriptor{
		Name:        "box",
		Required:    []string{"x", "y"},
		Optional:    map[string]any{"size": 10.0, "color": "red"},
		Description: "A square",
		Source:      "shapes.yaml",
	}
}

func TestForDescriptor(t *testing.T) {
	s, err := ForDescriptor(boxDescriptor())
	require.NoError(t, err)

	assert.Equal(t, Draft, s.Schema)
	assert.Equal(t, "box", s.Title)
	assert.Equal(t, "A square", s.Description)
	assert.Equal(t, "object", s.Type)
	assert.Equal(t, []string{"type", "x", "y"}, s.Required)
	assert.ElementsMatch(t, []string{"type", "x", "y", "size", "color"}, keys(s.Properties))
	assert.JSONEq(t, `10`, string(s.Properties["size"].Default))
	assert.JSONEq(t, `"red"`, string(s.Properties["color"].Default))
	assert.Nil(t, s.Properties["x"].Default)
	assert.Equal(t, "shapes.yaml", s.Extra["x-source"])

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"const":"box"`)
	assert.Contains(t, string(raw), `"x-source":"shapes.yaml"`)
}

func TestForDescriptorMarksDataOnlyAndExtends(t *testing.T) {
	s, err := ForDescriptor(&registry.Descriptor{Name: "summary", Extends: "stats", DataOnly: true})
	require.NoError(t, err)
	assert.Equal(t, "stats", s.Extra["x-extends"])
	assert.Equal(t, true, s.Extra["x-data-only"])
}

func TestForDescriptorDropsFunctionDefaults(t *testing.T) {
	d := &registry.Descriptor{
		Name:     "labelled",
		Optional: map[string]any{"style": map[string]any{"fill": "red", "format": spec.Func(func(spec.Bag) (any, error) { return "", nil })}},
	}
	s, err := ForDescriptor(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"fill":"red"}`, string(s.Properties["style"].Default))
}

func TestValidateSpec(t *testing.T) {
	d := boxDescriptor()
	assert.NoError(t, ValidateSpec(d, spec.Spec{"type": "box", "x": 1, "y": 2, "extra": true}))

	err := ValidateSpec(d, spec.Spec{"type": "box", "x": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `type "box"`)

	assert.Error(t, ValidateSpec(d, spec.Spec{"type": "circle", "x": 1, "y": 2}))
}

func TestValidateLibrary(t *testing.T) {
	valid := map[string]any{
		"name":   "shapes",
		"engine": ">= 1.0.0",
		"types": []any{
			map[string]any{
				"name":           "box",
				"properties":     map[string]any{"x": map[string]any{"required": true}},
				"implementation": map[string]any{"type": "rectangle", "x": "{{x}}"},
			},
			map[string]any{"name": "redbox", "extendsType": "box", "dataOnly": false},
		},
	}
	require.NoError(t, ValidateLibrary(valid))

	tests := []struct {
		name string
		doc  any
	}{
		{"not a mapping", []any{1, 2}},
		{"no types", map[string]any{"name": "shapes"}},
		{"types not a list", map[string]any{"types": map[string]any{"box": 1}}},
		{"entry without name", map[string]any{"types": []any{map[string]any{"properties": map[string]any{}}}}},
		{"empty name", map[string]any{"types": []any{map[string]any{"name": ""}}}},
		{"dataOnly not bool", map[string]any{"types": []any{map[string]any{"name": "a", "dataOnly": "yes"}}}},
		{"scalar implementation", map[string]any{"types": []any{map[string]any{"name": "a", "implementation": 3}}}},
		{"engine not a string", map[string]any{"engine": 1, "types": []any{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLibrary(tt.doc)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrMalformedDefinition))
		})
	}
}

func TestValidateLibraryAcceptsYAMLShapes(t *testing.T) {
	doc := map[string]any{
		"types": []any{
			map[string]any{
				"name":       "tick",
				"properties": map[any]any{"at": map[string]any{"required": true}, 1: "one"},
				"implementation": []any{
					map[string]any{"type": "line", "x1": "{{at}}"},
				},
			},
		},
	}
	assert.NoError(t, ValidateLibrary(doc))
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
