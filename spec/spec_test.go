package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecAccessors(t *testing.T) {
	s := New("box", map[string]any{"x": 5, "label": "a", "visible": true})

	assert.Equal(t, "box", s.Type())
	assert.True(t, s.Has("x"))
	assert.False(t, s.Has("y"))

	x, ok := s.Float("x")
	require.True(t, ok)
	assert.Equal(t, 5.0, x)

	label, ok := s.String("label")
	require.True(t, ok)
	assert.Equal(t, "a", label)

	_, ok = s.String("x")
	assert.False(t, ok)

	v, ok := s.Bool("visible")
	require.True(t, ok)
	assert.True(t, v)

	assert.Equal(t, []string{"label", "type", "visible", "x"}, s.Keys())
}

func TestSpecTypeMissing(t *testing.T) {
	assert.Equal(t, "", Spec{"x": 1}.Type())
	assert.Equal(t, "", Spec{"type": 3}.Type())
}

func TestSpecWithDoesNotMutate(t *testing.T) {
	orig := Spec{"type": "rectangle", "x": 1.0}
	next := orig.With("x", 2.0)

	assert.Equal(t, 1.0, orig["x"])
	assert.Equal(t, 2.0, next["x"])
}

func TestChildren(t *testing.T) {
	s := Spec{
		"type": "group",
		"children": []any{
			map[string]any{"type": "circle"},
			"not a node",
			Spec{"type": "text"},
		},
	}
	children := s.Children()
	require.Len(t, children, 2)
	assert.Equal(t, "circle", children[0].Type())
	assert.Equal(t, "text", children[1].Type())

	assert.Empty(t, Spec{"type": "group"}.Children())
}

func TestBagLookup(t *testing.T) {
	b := Bag{
		"w":    42.0,
		"data": map[string]any{"max": 10.0, "points": []any{1.0, 2.0}},
		"a.b":  "flat",
	}

	tests := []struct {
		path  string
		want  any
		found bool
	}{
		{"w", 42.0, true},
		{"data.max", 10.0, true},
		{"data.points.1", 2.0, true},
		{"data.points.7", nil, false},
		{"a.b", "flat", true},
		{"data.min", nil, false},
		{"missing", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := b.Lookup(tt.path)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAsFunc(t *testing.T) {
	bag := Bag{"v": 2.0}

	f, ok := AsFunc(Func(func(b Bag) (any, error) { return b["v"], nil }))
	require.True(t, ok)
	got, err := f(bag)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	f, ok = AsFunc(func(b Bag) any { return "plain" })
	require.True(t, ok)
	got, err = f(bag)
	require.NoError(t, err)
	assert.Equal(t, "plain", got)

	_, ok = AsFunc("{{v}}")
	assert.False(t, ok)

	var nilFunc Func
	_, ok = AsFunc(nilFunc)
	assert.False(t, ok)
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{3, 3, true},
		{int64(7), 7, true},
		{uint8(2), 2, true},
		{float32(1.5), 1.5, true},
		{" 2.25 ", 2.25, true},
		{"wide", 0, false},
		{nil, 0, false},
		{true, 0, false},
	}
	for _, tt := range tests {
		got, ok := ToFloat(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}
}

func TestToFloats(t *testing.T) {
	got, err := ToFloats([]any{1, 2.5, "3"})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5, 3}, got)

	_, err = ToFloats([]any{1, "x"})
	assert.ErrorContains(t, err, "element 1")

	_, err = ToFloats("nope")
	assert.Error(t, err)
}

func TestIsPrimitive(t *testing.T) {
	for _, name := range []string{"rectangle", "circle", "line", "text", "path", "group"} {
		assert.True(t, IsPrimitive(name), name)
	}
	assert.False(t, IsPrimitive("box"))
	assert.False(t, IsPrimitive(""))
	assert.Equal(t, []string{"circle", "group", "line", "path", "rectangle", "text"}, PrimitiveNames())
}

func TestNormalize(t *testing.T) {
	in := map[string]any{
		"type":  "box",
		"x":     5,
		"sizes": []any{1, int64(2), 3.5},
		"style": map[any]any{"fill": "red", 1: "one"},
	}

	s, ok := NormalizeSpec(in)
	require.True(t, ok)
	assert.Equal(t, 5.0, s["x"])
	assert.Equal(t, []any{1.0, 2.0, 3.5}, s["sizes"])
	assert.Equal(t, map[string]any{"fill": "red", "1": "one"}, s["style"])

	_, ok = NormalizeSpec([]any{1})
	assert.False(t, ok)
}

func TestCanonicalDropsFuncs(t *testing.T) {
	in := Spec{
		"type": "scale",
		"map":  Func(func(Bag) (any, error) { return nil, nil }),
		"children": []Spec{
			{"type": "text", "text": "hi"},
		},
	}
	out := Canonical(in).(map[string]any)

	assert.NotContains(t, out, "map")
	assert.Equal(t, []any{map[string]any{"type": "text", "text": "hi"}}, out["children"])
}
