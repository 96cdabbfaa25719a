// Package transforms provides the built-in data-only types: stats, scale and
// extract. They never draw; user-defined types call them to derive numbers
// from raw data and pass the results on through templates or functions.
package transforms

import (
	"sort"

	"github.com/aclements/go-moremath/scale"
	"github.com/aclements/go-moremath/stats"

	"github.com/teranos/devize/errors"
	"github.com/teranos/devize/registry"
	"github.com/teranos/devize/spec"
)

// Type names.
const (
	Stats   = "stats"
	Scale   = "scale"
	Extract = "extract"
)

// DefaultTicks is the tick budget of a scale when none is given.
const DefaultTicks = 5

// Source is recorded on every descriptor registered here.
const Source = "builtin"

// Descriptors returns fresh descriptors for every built-in data type.
func Descriptors() []*registry.Descriptor {
	return []*registry.Descriptor{
		{
			Name:           Stats,
			Required:       []string{"values"},
			Implementation: registry.FuncImpl(computeStats),
			DataOnly:       true,
			Description:    "Summary statistics of a sequence of numbers",
			Source:         Source,
		},
		{
			Name:     Scale,
			Required: []string{"domain", "range"},
			Optional: map[string]any{
				"ticks": float64(DefaultTicks),
				"nice":  false,
				"clamp": false,
			},
			Implementation: registry.FuncImpl(computeScale),
			DataOnly:       true,
			Description:    "Linear mapping from a data domain to an output range, with ticks",
			Source:         Source,
		},
		{
			Name:           Extract,
			Required:       []string{"from", "fields"},
			Implementation: registry.FuncImpl(computeExtract),
			DataOnly:       true,
			Description:    "Select dotted fields out of a mapping",
			Source:         Source,
		},
	}
}

// Register installs the built-ins into reg without replacing types a caller
// has already registered under the same names. It returns the names added.
func Register(reg *registry.Registry) []string {
	var added []string
	for _, d := range Descriptors() {
		if reg.RegisterIfAbsent(d) {
			added = append(added, d.Name)
		}
	}
	return added
}

func computeStats(bag spec.Bag) (any, error) {
	xs, err := spec.ToFloats(bag["values"])
	if err != nil {
		return nil, errors.Wrap(err, "values")
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	out := spec.Bag{"count": float64(len(sorted))}
	if len(sorted) == 0 {
		return out, nil
	}

	s := stats.Sample{Xs: sorted, Sorted: true}
	lo, hi := s.Bounds()
	out["sum"] = s.Sum()
	out["mean"] = s.Mean()
	out["min"] = lo
	out["max"] = hi
	out["median"] = s.Quantile(0.5)
	if len(sorted) > 1 {
		out["stddev"] = s.StdDev()
	} else {
		out["stddev"] = 0.0
	}
	return out, nil
}

func computeScale(bag spec.Bag) (any, error) {
	dlo, dhi, err := interval(bag, "domain")
	if err != nil {
		return nil, err
	}
	rlo, rhi, err := interval(bag, "range")
	if err != nil {
		return nil, err
	}

	maxTicks := DefaultTicks
	if n, ok := bag.Float("ticks"); ok {
		maxTicks = int(n)
	}
	if maxTicks < 0 {
		return nil, errors.Newf("ticks must be non-negative, got %d", maxTicks)
	}
	nice, _ := bag["nice"].(bool)
	clamp, _ := bag["clamp"].(bool)

	in := scale.Linear{Min: dlo, Max: dhi, Clamp: clamp}
	opts := scale.TickOptions{Max: maxTicks}
	if nice && maxTicks > 0 && dlo != dhi {
		in.Nice(opts)
	}

	ticks := []any{}
	if maxTicks > 0 && dlo != dhi {
		major, _ := in.Ticks(opts)
		for _, t := range major {
			ticks = append(ticks, t)
		}
	}

	mapper := scale.QQ{Src: &in, Dest: &scale.Linear{Min: rlo, Max: rhi}}
	mapFn := spec.Func(func(b spec.Bag) (any, error) {
		v, ok := b.Float("value")
		if !ok {
			return nil, errors.Newf("scale map needs a numeric value, got %v", b["value"])
		}
		if dlo == dhi {
			return rlo, nil
		}
		return mapper.Map(v), nil
	})

	return spec.Bag{
		"domain": []any{in.Min, in.Max},
		"range":  []any{rlo, rhi},
		"ticks":  ticks,
		"map":    mapFn,
	}, nil
}

func interval(bag spec.Bag, key string) (float64, float64, error) {
	xs, err := spec.ToFloats(bag[key])
	if err != nil {
		return 0, 0, errors.Wrap(err, key)
	}
	if len(xs) != 2 {
		return 0, 0, errors.Newf("%s must have exactly two bounds, got %d", key, len(xs))
	}
	return xs[0], xs[1], nil
}

func computeExtract(bag spec.Bag) (any, error) {
	from, ok := asBag(bag["from"])
	if !ok {
		return nil, errors.Newf("from must be a mapping, got %T", bag["from"])
	}

	var fields []string
	switch fs := bag["fields"].(type) {
	case []string:
		fields = fs
	case []any:
		for i, f := range fs {
			name, ok := f.(string)
			if !ok {
				return nil, errors.Newf("fields[%d] must be a string, got %T", i, f)
			}
			fields = append(fields, name)
		}
	case string:
		fields = []string{fs}
	default:
		return nil, errors.Newf("fields must be a sequence of names, got %T", bag["fields"])
	}

	out := make(spec.Bag, len(fields))
	for _, f := range fields {
		v, ok := from.Lookup(f)
		if !ok {
			return nil, errors.Newf("field %q not found", f)
		}
		out[f] = v
	}
	return out, nil
}

func asBag(v any) (spec.Bag, bool) {
	switch m := v.(type) {
	case spec.Bag:
		return m, true
	case spec.Spec:
		return spec.Bag(m), true
	case map[string]any:
		return spec.Bag(m), true
	}
	return nil, false
}
