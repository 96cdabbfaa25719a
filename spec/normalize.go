package spec

import (
	"fmt"
	"math"
)

// Normalize converts a decoded document (YAML, JSON or TOML) into spec
// values: mappings become map[string]any, sequences become []any and every
// integer kind becomes float64, so library-defined and Go-defined specs
// compare the same way.
//
// yaml.v3 decodes mappings as map[string]interface{} but nested keys that
// are not strings arrive as map[interface{}]interface{}; those keys are
// formatted with %v.
func Normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = Normalize(item)
		}
		return out
	case Spec:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = Normalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[fmt.Sprint(k)] = Normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Normalize(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Normalize(item)
		}
		return out
	case float64:
		return t
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32:
		f, _ := ToFloat(t)
		return f
	}
	return v
}

// NormalizeSpec normalizes a decoded mapping into a Spec.
func NormalizeSpec(v any) (Spec, bool) {
	m, ok := Normalize(v).(map[string]any)
	if !ok {
		return nil, false
	}
	return Spec(m), true
}

// Canonical returns a copy of v with Spec and Bag values converted to plain
// maps, Funcs dropped and whole floats kept as float64. It is the shape
// handed to JSON/YAML encoders.
func Canonical(v any) any {
	switch t := v.(type) {
	case Spec:
		return canonicalMap(t)
	case Bag:
		return canonicalMap(t)
	case map[string]any:
		return canonicalMap(t)
	case []Spec:
		out := make([]any, 0, len(t))
		for _, s := range t {
			out = append(out, canonicalMap(s))
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, item := range t {
			if _, isFunc := AsFunc(item); isFunc {
				continue
			}
			out = append(out, Canonical(item))
		}
		return out
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		return t
	}
	return v
}

func canonicalMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, item := range m {
		if _, isFunc := AsFunc(item); isFunc {
			continue
		}
		out[k] = Canonical(item)
	}
	return out
}
