package transforms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/devize/engine"
	"github.com/teranos/devize/registry"
	"github.com/teranos/devize/spec"
)

func TestRegister(t *testing.T) {
	reg := registry.New()
	added := Register(reg)
	assert.Equal(t, []string{Stats, Scale, Extract}, added)

	for _, name := range added {
		d, ok := reg.Lookup(name)
		require.True(t, ok)
		assert.True(t, d.DataOnly, name)
		assert.Equal(t, Source, d.Source)
	}

	assert.Empty(t, Register(reg), "second registration adds nothing")
}

func TestRegisterKeepsUserTypes(t *testing.T) {
	reg := registry.New()
	mine := &registry.Descriptor{Name: Stats, Source: "mine.yaml"}
	reg.Register(mine)

	added := Register(reg)
	assert.Equal(t, []string{Scale, Extract}, added)

	d, _ := reg.Lookup(Stats)
	assert.Same(t, mine, d)
}

func TestStats(t *testing.T) {
	out, err := computeStats(spec.Bag{"values": []any{4, 1, 3, 2, 5.0}})
	require.NoError(t, err)
	got := out.(spec.Bag)

	assert.Equal(t, 5.0, got["count"])
	assert.Equal(t, 15.0, got["sum"])
	assert.Equal(t, 3.0, got["mean"])
	assert.Equal(t, 1.0, got["min"])
	assert.Equal(t, 5.0, got["max"])
	assert.InDelta(t, 3.0, got["median"], 1e-9)
	assert.InDelta(t, 1.5811, got["stddev"], 1e-4)
}

func TestStatsEdgeCases(t *testing.T) {
	out, err := computeStats(spec.Bag{"values": []any{}})
	require.NoError(t, err)
	assert.Equal(t, spec.Bag{"count": 0.0}, out)

	out, err = computeStats(spec.Bag{"values": []float64{7}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, out.(spec.Bag)["stddev"])
	assert.Equal(t, 7.0, out.(spec.Bag)["median"])

	_, err = computeStats(spec.Bag{"values": []any{1, "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "values")
}

func TestStatsDoesNotReorderInput(t *testing.T) {
	in := []float64{3, 1, 2}
	_, err := computeStats(spec.Bag{"values": in})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, in)
}

func TestScale(t *testing.T) {
	out, err := computeScale(spec.Bag{
		"domain": []any{0, 100},
		"range":  []any{0, 500},
		"ticks":  11.0,
		"nice":   false,
		"clamp":  false,
	})
	require.NoError(t, err)
	got := out.(spec.Bag)

	assert.Equal(t, []any{0.0, 100.0}, got["domain"])
	assert.Equal(t, []any{0.0, 500.0}, got["range"])

	ticks := got["ticks"].([]any)
	require.NotEmpty(t, ticks)
	assert.LessOrEqual(t, len(ticks), 11)
	assert.Equal(t, 0.0, ticks[0])
	assert.Equal(t, 100.0, ticks[len(ticks)-1])

	mapFn, ok := spec.AsFunc(got["map"])
	require.True(t, ok)
	for _, tt := range []struct{ in, want float64 }{{0, 0}, {50, 250}, {100, 500}, {150, 750}} {
		v, err := mapFn(spec.Bag{"value": tt.in})
		require.NoError(t, err)
		assert.InDelta(t, tt.want, v, 1e-9, "value %v", tt.in)
	}

	_, err = mapFn(spec.Bag{"value": "wide"})
	assert.Error(t, err)
}

func TestScaleClampAndInvertedRange(t *testing.T) {
	out, err := computeScale(spec.Bag{
		"domain": []any{0, 10},
		"range":  []any{100, 0},
		"ticks":  5.0,
		"clamp":  true,
	})
	require.NoError(t, err)
	mapFn, _ := spec.AsFunc(out.(spec.Bag)["map"])

	v, err := mapFn(spec.Bag{"value": 2.5})
	require.NoError(t, err)
	assert.InDelta(t, 75.0, v, 1e-9)

	v, err = mapFn(spec.Bag{"value": 20})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, v, 1e-9, "clamped to the domain max")
}

func TestScaleNice(t *testing.T) {
	out, err := computeScale(spec.Bag{
		"domain": []any{0.3, 9.7},
		"range":  []any{0, 1},
		"ticks":  10.0,
		"nice":   true,
	})
	require.NoError(t, err)
	domain := out.(spec.Bag)["domain"].([]any)
	assert.LessOrEqual(t, domain[0].(float64), 0.3)
	assert.GreaterOrEqual(t, domain[1].(float64), 9.7)
}

func TestScaleDegenerate(t *testing.T) {
	out, err := computeScale(spec.Bag{"domain": []any{3, 3}, "range": []any{10, 20}, "ticks": 5.0})
	require.NoError(t, err)
	assert.Empty(t, out.(spec.Bag)["ticks"])

	mapFn, _ := spec.AsFunc(out.(spec.Bag)["map"])
	v, err := mapFn(spec.Bag{"value": 3})
	require.NoError(t, err)
	assert.Equal(t, 10.0, v)
}

func TestScaleErrors(t *testing.T) {
	tests := []struct {
		name string
		bag  spec.Bag
		want string
	}{
		{"short domain", spec.Bag{"domain": []any{1}, "range": []any{0, 1}}, "domain must have exactly two bounds"},
		{"bad range", spec.Bag{"domain": []any{0, 1}, "range": "wide"}, "range"},
		{"negative ticks", spec.Bag{"domain": []any{0, 1}, "range": []any{0, 1}, "ticks": -1}, "ticks must be non-negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := computeScale(tt.bag)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestExtract(t *testing.T) {
	from := map[string]any{
		"title": "Rainfall",
		"data":  map[string]any{"max": 42.0, "points": []any{1.0, 2.0}},
	}
	out, err := computeExtract(spec.Bag{"from": from, "fields": []any{"title", "data.max", "data.points.1"}})
	require.NoError(t, err)
	assert.Equal(t, spec.Bag{"title": "Rainfall", "data.max": 42.0, "data.points.1": 2.0}, out)

	_, err = computeExtract(spec.Bag{"from": from, "fields": []any{"data.min"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"data.min"`)

	_, err = computeExtract(spec.Bag{"from": 3, "fields": []any{"x"}})
	assert.Error(t, err)

	_, err = computeExtract(spec.Bag{"from": from, "fields": []any{1}})
	assert.Error(t, err)
}

func TestThroughEngine(t *testing.T) {
	e := engine.New()
	Register(e.Registry())

	res, err := e.Resolve(spec.Spec{"type": Stats, "values": []any{2, 4}})
	require.NoError(t, err)
	assert.Empty(t, res.Nodes)
	summary, ok := res.Value(Stats)
	require.True(t, ok)
	assert.Equal(t, 3.0, summary["mean"])

	res, err = e.Resolve(spec.Spec{"type": Scale, "domain": []any{0, 1}, "range": []any{0, 10}, "as": "x"})
	require.NoError(t, err)
	x, ok := res.Value("x")
	require.True(t, ok)
	assert.NotNil(t, x["map"])
	assert.NotEmpty(t, x["ticks"], "default tick budget applies")
}

func TestTwoSummariesInOneGroup(t *testing.T) {
	e := engine.New()
	Register(e.Registry())

	res, err := e.Resolve(spec.Spec{
		"type": "group",
		"children": []any{
			map[string]any{"type": Stats, "values": []any{1, 2}},
			map[string]any{"type": Stats, "values": []any{10, 20}},
			map[string]any{"type": "rectangle", "width": 1, "height": 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Nodes, 1)

	first, _ := res.Value(Stats)
	second, _ := res.Value(Stats + "#2")
	assert.Equal(t, 1.5, first["mean"])
	assert.Equal(t, 15.0, second["mean"])
}
