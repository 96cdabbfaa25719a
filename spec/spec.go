// Package spec defines the open value model the engine operates on.
//
// A Spec is a nested mapping that always carries a "type" key. Values are
// scalars, nested specs, sequences, or Funcs. Specs are immutable by
// convention: every transformation returns a new Spec.
package spec

import (
	"sort"
	"strconv"
	"strings"

	"github.com/teranos/devize/errors"
)

// KeyType is the discriminator key every Spec carries.
const KeyType = "type"

// KeyChildren holds nested nodes of a group.
const KeyChildren = "children"

// Spec is an open, typed-by-convention tree node.
type Spec map[string]any

// Bag is a resolved property bag: every required key present, every
// optional key defaulted, input values winning over defaults.
type Bag map[string]any

// Func is a callable property value. It receives the full resolved bag.
// Funcs are not serializable; library documents can only carry templates.
type Func func(Bag) (any, error)

// AsFunc adapts the callable shapes accepted in specs to a Func.
// It reports false if v is not callable.
func AsFunc(v any) (Func, bool) {
	switch f := v.(type) {
	case Func:
		return f, f != nil
	case func(Bag) (any, error):
		return Func(f), f != nil
	case func(Bag) any:
		if f == nil {
			return nil, false
		}
		return func(b Bag) (any, error) { return f(b), nil }, true
	case func(map[string]any) any:
		if f == nil {
			return nil, false
		}
		return func(b Bag) (any, error) { return f(map[string]any(b)), nil }, true
	}
	return nil, false
}

// New returns a Spec of the given type with the given properties.
func New(typeName string, props map[string]any) Spec {
	s := make(Spec, len(props)+1)
	for k, v := range props {
		s[k] = v
	}
	s[KeyType] = typeName
	return s
}

// Type returns the spec's type name, or "" if absent or not a string.
func (s Spec) Type() string {
	t, _ := s[KeyType].(string)
	return t
}

// Has reports whether key is present (a nil value counts as present).
func (s Spec) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// String returns the value at key as a string.
func (s Spec) String(key string) (string, bool) {
	v, ok := s[key]
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// Float returns the value at key as a float64, converting integer kinds and
// numeric strings.
func (s Spec) Float(key string) (float64, bool) {
	v, ok := s[key]
	if !ok {
		return 0, false
	}
	return ToFloat(v)
}

// Bool returns the value at key as a bool.
func (s Spec) Bool(key string) (bool, bool) {
	b, ok := s[key].(bool)
	return b, ok
}

// Children returns the "children" sequence as Specs. Entries that are not
// mappings are skipped.
func (s Spec) Children() []Spec {
	return AsSpecs(s[KeyChildren])
}

// Clone returns a shallow copy.
func (s Spec) Clone() Spec {
	out := make(Spec, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// With returns a copy of s with key set to value.
func (s Spec) With(key string, value any) Spec {
	out := s.Clone()
	out[key] = value
	return out
}

// Keys returns the spec's keys in sorted order.
func (s Spec) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Bag returns the spec's properties as a Bag (shallow copy).
func (s Spec) Bag() Bag {
	b := make(Bag, len(s))
	for k, v := range s {
		b[k] = v
	}
	return b
}

// Lookup walks a dotted path ("data.max") through nested mappings.
func (b Bag) Lookup(path string) (any, bool) {
	if v, ok := b[path]; ok {
		return v, true
	}
	if !strings.Contains(path, ".") {
		return nil, false
	}
	return LookupPath(map[string]any(b), strings.Split(path, "."))
}

// Float returns the value at key as a float64.
func (b Bag) Float(key string) (float64, bool) {
	v, ok := b[key]
	if !ok {
		return 0, false
	}
	return ToFloat(v)
}

// String returns the value at key as a string.
func (b Bag) String(key string) (string, bool) {
	s, ok := b[key].(string)
	return s, ok
}

// Spec converts the bag back into a Spec.
func (b Bag) Spec() Spec {
	s := make(Spec, len(b))
	for k, v := range b {
		s[k] = v
	}
	return s
}

// LookupPath walks parts through nested mappings and sequences (numeric
// segments index into sequences).
func LookupPath(root any, parts []string) (any, bool) {
	cur := root
	for _, p := range parts {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[p]
			if !ok {
				return nil, false
			}
			cur = v
		case Spec:
			v, ok := node[p]
			if !ok {
				return nil, false
			}
			cur = v
		case Bag:
			v, ok := node[p]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(p)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// AsSpec converts a mapping-shaped value to a Spec.
func AsSpec(v any) (Spec, bool) {
	switch m := v.(type) {
	case Spec:
		return m, true
	case map[string]any:
		return Spec(m), true
	case Bag:
		return Spec(m), true
	}
	return nil, false
}

// AsSpecs converts a value to a sequence of Specs. A single mapping yields
// a one-element sequence. Non-mapping elements are skipped.
func AsSpecs(v any) []Spec {
	switch seq := v.(type) {
	case nil:
		return nil
	case []Spec:
		return seq
	case []map[string]any:
		out := make([]Spec, 0, len(seq))
		for _, m := range seq {
			out = append(out, Spec(m))
		}
		return out
	case []any:
		out := make([]Spec, 0, len(seq))
		for _, item := range seq {
			if s, ok := AsSpec(item); ok {
				out = append(out, s)
			}
		}
		return out
	}
	if s, ok := AsSpec(v); ok {
		return []Spec{s}
	}
	return nil
}

// ToFloat converts numeric kinds and numeric strings to float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// ToFloats converts a sequence of numbers to []float64.
func ToFloats(v any) ([]float64, error) {
	switch seq := v.(type) {
	case []float64:
		return seq, nil
	case []int:
		out := make([]float64, len(seq))
		for i, n := range seq {
			out[i] = float64(n)
		}
		return out, nil
	case []any:
		out := make([]float64, len(seq))
		for i, item := range seq {
			f, ok := ToFloat(item)
			if !ok {
				return nil, errors.Newf("element %d (%v) is not a number", i, item)
			}
			out[i] = f
		}
		return out, nil
	}
	return nil, errors.Newf("%T is not a sequence of numbers", v)
}
