package define

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/devize/errors"
	"github.com/teranos/devize/registry"
	"github.com/teranos/devize/spec"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func shapeSpec() spec.Spec {
	return spec.Spec{
		"type": TypeName,
		"name": "shape",
		"properties": map[string]any{
			"x":     map[string]any{"required": true},
			"color": map[string]any{"default": "blue"},
			"size":  10.0,
		},
		"implementation": map[string]any{"type": "rectangle", "x": "{{x}}", "fill": "{{color}}"},
	}
}

func TestParse(t *testing.T) {
	def, err := Parse(shapeSpec())
	require.NoError(t, err)

	assert.Equal(t, "shape", def.Name)
	assert.Equal(t, []string{"x"}, def.Required)
	assert.Equal(t, map[string]any{"color": "blue", "size": 10.0}, def.Optional)
	_, isTemplate := def.Implementation.(registry.TemplateImpl)
	assert.True(t, isTemplate)
}

func TestParsePropertyEntries(t *testing.T) {
	s := shapeSpec()
	s["properties"] = map[string]any{
		"a": nil,
		"b": map[string]any{},
		"c": map[string]any{"required": false, "default": 3.0},
		"d": map[string]any{"fill": "red"},
	}
	def, err := Parse(s)
	require.NoError(t, err)

	assert.Empty(t, def.Required)
	assert.Equal(t, map[string]any{
		"a": nil,
		"b": nil,
		"c": 3.0,
		"d": map[string]any{"fill": "red"},
	}, def.Optional, "mappings that are not contract entries are defaults")
}

func TestParseFunctionImplementation(t *testing.T) {
	s := shapeSpec()
	s["implementation"] = func(b spec.Bag) any { return spec.Spec{"type": "circle"} }

	def, err := Parse(s)
	require.NoError(t, err)
	_, isFunc := def.Implementation.(registry.FuncImpl)
	assert.True(t, isFunc)
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(spec.Spec)
		want   string
	}{
		{"missing name", func(s spec.Spec) { delete(s, "name") }, `missing "name"`},
		{"empty name", func(s spec.Spec) { s["name"] = "" }, `missing "name"`},
		{"non-string name", func(s spec.Spec) { s["name"] = 3 }, `missing "name"`},
		{"reserved primitive", func(s spec.Spec) { s["name"] = "rectangle" }, "reserved"},
		{"reserved define", func(s spec.Spec) { s["name"] = "define" }, "reserved"},
		{"missing properties", func(s spec.Spec) { delete(s, "properties") }, `missing "properties"`},
		{"properties not a mapping", func(s spec.Spec) { s["properties"] = []any{"x"} }, "must be a mapping"},
		{"required not a bool", func(s spec.Spec) {
			s["properties"] = map[string]any{"x": map[string]any{"required": "yes"}}
		}, "must be a bool"},
		{"missing implementation", func(s spec.Spec) { delete(s, "implementation") }, `missing "implementation"`},
		{"extendsType not a string", func(s spec.Spec) { s["extendsType"] = 1 }, "must be a string"},
		{"dataOnly not a bool", func(s spec.Spec) { s["dataOnly"] = "true" }, "must be a bool"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := shapeSpec()
			tt.mutate(s)

			_, err := Parse(s)
			require.Error(t, err)
			assert.True(t, errors.IsMalformedDefinition(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseExtensionMayOmitProperties(t *testing.T) {
	def, err := Parse(spec.Spec{
		"type":           TypeName,
		"name":           "square",
		"extendsType":    "shape",
		"implementation": map[string]any{"width": "{{size}}"},
	})
	require.NoError(t, err)
	assert.Equal(t, "shape", def.Extends)
	assert.Empty(t, def.Optional)
}

func TestHandleRegistersExactlyOnce(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	reg := registry.New(registry.WithLogger(zap.New(core).Sugar()))
	h := NewHandler(reg)

	d, err := h.Handle(shapeSpec())
	require.NoError(t, err)
	assert.Equal(t, "shape", d.Name)

	got, ok := reg.Lookup("shape")
	require.True(t, ok)
	assert.Same(t, d, got)
	assert.Equal(t, 1, logs.FilterMessage("Registered type").Len())
}

func TestHandleMalformedRegistersNothing(t *testing.T) {
	reg := registry.New()
	h := NewHandler(reg)

	s := shapeSpec()
	delete(s, "implementation")
	_, err := h.Handle(s)

	require.Error(t, err)
	assert.Equal(t, 0, reg.Len())
}

func TestExtensionDefaulting(t *testing.T) {
	reg := registry.New()
	h := NewHandler(reg)

	_, err := h.Handle(spec.Spec{
		"type":           TypeName,
		"name":           "A",
		"properties":     map[string]any{"color": map[string]any{"default": "blue"}},
		"implementation": map[string]any{"type": "circle", "fill": "{{color}}"},
	})
	require.NoError(t, err)

	b, err := h.Handle(spec.Spec{
		"type":           TypeName,
		"name":           "B",
		"extendsType":    "A",
		"properties":     map[string]any{},
		"implementation": map[string]any{},
	})
	require.NoError(t, err)
	assert.Equal(t, "blue", b.Optional["color"])
	assert.Equal(t, "A", b.Extends)
}

func TestExtensionLayering(t *testing.T) {
	reg := registry.New()
	h := NewHandler(reg)
	_, err := h.Handle(shapeSpec())
	require.NoError(t, err)

	d, err := h.Handle(spec.Spec{
		"type":        TypeName,
		"name":        "badge",
		"extendsType": "shape",
		"description": "labelled shape",
		"properties": map[string]any{
			"color": "green",
			"label": map[string]any{"required": true},
		},
		"implementation": map[string]any{"type": "text"},
	})
	require.NoError(t, err)

	assert.Equal(t, "green", d.Optional["color"], "own default wins")
	assert.Equal(t, 10.0, d.Optional["size"], "base default inherited")
	assert.Equal(t, []string{"label", "x"}, d.Required, "base required inherited")
	assert.Equal(t, "labelled shape", d.Description)
}

func TestExtensionDefaultLiftsRequired(t *testing.T) {
	reg := registry.New()
	h := NewHandler(reg)
	_, err := h.Handle(shapeSpec())
	require.NoError(t, err)

	d, err := h.Handle(spec.Spec{
		"type":           TypeName,
		"name":           "origin",
		"extendsType":    "shape",
		"properties":     map[string]any{"x": 0.0},
		"implementation": map[string]any{},
	})
	require.NoError(t, err)

	assert.Empty(t, d.Required)
	assert.Equal(t, 0.0, d.Optional["x"])
}

func TestExtensionInheritsDataOnly(t *testing.T) {
	reg := registry.New()
	h := NewHandler(reg)
	reg.Register(&registry.Descriptor{Name: "base", DataOnly: true, Implementation: registry.TemplateImpl{}})

	d, err := h.Handle(spec.Spec{
		"type": TypeName, "name": "derived", "extendsType": "base",
		"implementation": map[string]any{"n": 1.0},
	})
	require.NoError(t, err)
	assert.True(t, d.DataOnly)
}

func TestExtensionErrors(t *testing.T) {
	reg := registry.New()
	h := NewHandler(reg)

	_, err := h.Handle(spec.Spec{
		"type": TypeName, "name": "orphan", "extendsType": "ghost",
		"properties": map[string]any{}, "implementation": map[string]any{},
	})
	require.Error(t, err)
	assert.True(t, errors.IsMalformedDefinition(err))
	assert.Contains(t, err.Error(), `unknown type "ghost"`)
	assert.NotEmpty(t, errors.GetAllHints(err))

	reg.Register(&registry.Descriptor{Name: "loop", Implementation: registry.TemplateImpl{}})
	_, err = h.Handle(spec.Spec{
		"type": TypeName, "name": "loop", "extendsType": "loop",
		"properties": map[string]any{}, "implementation": map[string]any{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot extend itself")
}

func TestDefineDescriptor(t *testing.T) {
	reg := registry.New()
	h := NewHandler(reg)
	d := h.Descriptor()

	assert.Equal(t, TypeName, d.Name)
	assert.True(t, d.DataOnly)
	assert.Empty(t, d.Required)

	impl, ok := d.Implementation.(registry.FuncImpl)
	require.True(t, ok)
	out, err := impl(shapeSpec().Bag())
	require.NoError(t, err)
	assert.Equal(t, spec.Bag{"name": "shape"}, out)
	assert.True(t, reg.Exists("shape"))
}
