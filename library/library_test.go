package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/devize/engine"
	"github.com/teranos/devize/errors"
	"github.com/teranos/devize/spec"
)

func TestLoadDir(t *testing.T) {
	libs, err := LoadDir("testdata/libs")
	require.NoError(t, err)
	require.Len(t, libs, 3, "README.md is skipped")

	assert.Equal(t, "shapes", libs[0].Name)
	assert.Equal(t, "Basic composite shapes", libs[0].Description)
	assert.Equal(t, ">= 1.0.0, < 2.0.0", libs[0].Engine)
	assert.Len(t, libs[0].Types, 2)

	assert.Equal(t, "axis", libs[1].Name)
	assert.Equal(t, "03-labels", libs[2].Name, "unnamed libraries take the file name")
	assert.Equal(t, filepath.Join("testdata/libs", "03-labels.json"), libs[2].Path)
}

func TestInstallAndResolve(t *testing.T) {
	libs, err := LoadDir("testdata/libs")
	require.NoError(t, err)

	e := engine.New()
	var installed []string
	for _, lib := range libs {
		names, err := lib.Install(e)
		require.NoError(t, err)
		installed = append(installed, names...)
	}
	assert.Equal(t, []string{"box", "bluebox", "tick", "label"}, installed)

	box, ok := e.Registry().Lookup("box")
	require.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, box.Required)
	assert.Equal(t, map[string]any{"size": 10.0, "color": "red"}, box.Optional)
	assert.Equal(t, filepath.Join("testdata/libs", "01-shapes.yaml"), box.Source)
	assert.Equal(t, "template", box.ImplementationKind())

	res, err := e.Resolve(spec.Spec{"type": "bluebox", "x": 1.0, "y": 2.0})
	require.NoError(t, err)
	require.Len(t, res.Nodes, 1)
	assert.Equal(t, spec.Spec{
		"type": "rectangle", "x": 1.0, "y": 2.0, "width": 10.0, "height": 10.0,
		"fill": "blue", "stroke": "navy",
	}, res.Nodes[0])

	res, err = e.Resolve(spec.Spec{"type": "tick", "at": 40.0})
	require.NoError(t, err)
	assert.Equal(t, spec.Spec{"type": "line", "x1": 40.0, "y1": 0.0, "x2": 40.0, "y2": 5.0}, res.Nodes[0])

	res, err = e.Resolve(spec.Spec{"type": "label", "text": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", res.Nodes[0]["text"])
	assert.Equal(t, 12.0, res.Nodes[0]["font-size"])
}

func TestLoadFileIncompatible(t *testing.T) {
	_, err := LoadFile("testdata/future.yaml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrIncompatibleLibrary))
	assert.Contains(t, err.Error(), ">= 99.0.0")

	_, err = LoadFile("testdata/bad-constraint.yaml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrIncompatibleLibrary))
}

func TestCheckCompatible(t *testing.T) {
	lib := &Library{Name: "x", Engine: "~1.2"}
	assert.NoError(t, lib.CheckCompatible(semver.MustParse("1.2.7")))
	assert.Error(t, lib.CheckCompatible(semver.MustParse("1.3.0")))
	assert.NoError(t, (&Library{Name: "any"}).CheckCompatible(semver.MustParse("0.1.0")))
}

func TestLoadFileMalformed(t *testing.T) {
	_, err := LoadFile("testdata/malformed.yaml")
	require.Error(t, err)
	assert.True(t, errors.IsMalformedDefinition(err))
	assert.Contains(t, err.Error(), "malformed.yaml")
}

func TestInstallStopsAtFirstFailure(t *testing.T) {
	lib, err := LoadFile("testdata/unknown-base.yaml")
	require.NoError(t, err)

	names, err := lib.Install(engine.New())
	require.Error(t, err)
	assert.Empty(t, names)
	assert.True(t, errors.IsMalformedDefinition(err))
	assert.Contains(t, err.Error(), "types[0] (child)")
}

func TestInstallInMemory(t *testing.T) {
	lib, err := Parse(map[string]any{
		"name": "inline",
		"types": []any{
			map[string]any{
				"name":           "dot",
				"properties":     map[string]any{"r": 2},
				"implementation": map[string]any{"type": "circle", "r": "{{r}}"},
			},
		},
	}, "")
	require.NoError(t, err)

	e := engine.New()
	_, err = lib.Install(e)
	require.NoError(t, err)
	d, _ := e.Registry().Lookup("dot")
	assert.Equal(t, "library:inline", d.Source)
}

func TestLoadSpecs(t *testing.T) {
	tests := []struct {
		file  string
		types []string
	}{
		{"scene.yaml", []string{"group"}},
		{"scene.json", []string{"label", "circle"}},
		{"scene.toml", []string{"box"}},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			specs, err := LoadSpecs(filepath.Join("testdata", tt.file))
			require.NoError(t, err)
			var types []string
			for _, s := range specs {
				types = append(types, s.Type())
			}
			assert.Equal(t, tt.types, types)
		})
	}
}

func TestLoadSpecNormalises(t *testing.T) {
	s, err := LoadSpec("testdata/scene.yaml")
	require.NoError(t, err)
	children := s.Children()
	require.Len(t, children, 2)
	assert.Equal(t, 1.0, children[0]["x"])

	toml, err := LoadSpec("testdata/scene.toml")
	require.NoError(t, err)
	assert.Equal(t, 3.0, toml["x"])

	_, err = LoadSpec("testdata/scene.json")
	assert.ErrorContains(t, err, "expected one spec, found 2")
}

func TestLoadSpecErrors(t *testing.T) {
	_, err := LoadSpec("testdata/notype.yaml")
	assert.ErrorContains(t, err, `spec has no "type"`)

	_, err = LoadSpec("testdata/scene.txt")
	assert.ErrorContains(t, err, "unknown document format")

	_, err = LoadSpec("testdata/missing.yaml")
	assert.Error(t, err)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0644))
	_, err = LoadSpec(bad)
	assert.ErrorContains(t, err, "invalid JSON")
}

func TestLoadPaths(t *testing.T) {
	libs, err := LoadPaths([]string{"testdata/libs", "testdata/unknown-base.yaml"})
	require.NoError(t, err)
	assert.Len(t, libs, 4)

	_, err = LoadPaths([]string{"testdata/nowhere"})
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	v, err := Decode([]byte("a: 1\nb: [x, 2]\nc: {1: one}\n"), YAML)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": 1.0,
		"b": []any{"x", 2.0},
		"c": map[string]any{"1": "one"},
	}, v)

	_, err = Decode([]byte("x"), Format("xml"))
	assert.ErrorContains(t, err, `unsupported format "xml"`)
}
