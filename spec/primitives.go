package spec

import "sort"

// Primitive node types. The engine never decomposes these.
const (
	Rectangle = "rectangle"
	Circle    = "circle"
	Line      = "line"
	Text      = "text"
	Path      = "path"
	Group     = "group"
)

// Primitives is the fixed terminal vocabulary.
var Primitives = map[string]bool{
	Rectangle: true,
	Circle:    true,
	Line:      true,
	Text:      true,
	Path:      true,
	Group:     true,
}

// IsPrimitive reports whether typeName is a terminal node type.
func IsPrimitive(typeName string) bool {
	return Primitives[typeName]
}

// PrimitiveNames returns the primitive vocabulary, sorted.
func PrimitiveNames() []string {
	names := make([]string, 0, len(Primitives))
	for n := range Primitives {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
