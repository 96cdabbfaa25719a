package define

import (
	"fmt"
	"strconv"

	"github.com/teranos/devize/spec"
)

// KeyID identifies children across a base template and its override.
const KeyID = "id"

// MergeTemplates layers override over base.
//
// Mappings merge shallowly: override keys win, except "children", where
// both sequences are merged by id. A child of override whose id matches a
// base child replaces it in place; any other child is appended. Children
// without an id never match, and ids match only within a kind: "1" and 1
// are different ids. Two sequences merge the same way. In every
// other case override wins, unless it is nil.
func MergeTemplates(base, override any) any {
	if override == nil {
		return base
	}

	baseMap, baseIsMap := spec.AsSpec(base)
	overMap, overIsMap := spec.AsSpec(override)
	if baseIsMap && overIsMap {
		out := baseMap.Clone()
		for k, v := range overMap {
			if k == spec.KeyChildren {
				if bc, ok := asSequence(baseMap[k]); ok {
					if oc, ok := asSequence(v); ok {
						out[k] = mergeChildren(bc, oc)
						continue
					}
				}
			}
			out[k] = v
		}
		return out
	}

	if bs, ok := asSequence(base); ok {
		if oseq, ok := asSequence(override); ok {
			return mergeChildren(bs, oseq)
		}
	}
	return override
}

func mergeChildren(base, override []any) []any {
	out := make([]any, len(base), len(base)+len(override))
	copy(out, base)

	index := make(map[string]int, len(base))
	for i, child := range base {
		if id, ok := childID(child); ok {
			if _, dup := index[id]; !dup {
				index[id] = i
			}
		}
	}

	for _, child := range override {
		if id, ok := childID(child); ok {
			if pos, found := index[id]; found {
				out[pos] = child
				continue
			}
		}
		out = append(out, child)
	}
	return out
}

// childID returns the index key of a child's id. Strings and numbers never
// match each other; numbers match by value whatever their Go type.
func childID(child any) (string, bool) {
	m, ok := spec.AsSpec(child)
	if !ok {
		return "", false
	}
	id, ok := m[KeyID]
	if !ok || id == nil {
		return "", false
	}
	if s, isString := id.(string); isString {
		return "s:" + s, s != ""
	}
	if f, isNumber := spec.ToFloat(id); isNumber {
		return "n:" + strconv.FormatFloat(f, 'g', -1, 64), true
	}
	return fmt.Sprintf("%T:%v", id, id), true
}

func asSequence(v any) ([]any, bool) {
	switch seq := v.(type) {
	case []any:
		return seq, true
	case []spec.Spec:
		out := make([]any, len(seq))
		for i, s := range seq {
			out[i] = s
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(seq))
		for i, m := range seq {
			out[i] = m
		}
		return out, true
	}
	return nil, false
}
