// Package sym defines canonical symbols for devize node kinds and engine stages.
// These symbols are stable across CLI output, logs, and documentation.
package sym

// Primitive node glyphs, one per terminal type the resolver hands to a painter.
const (
	Rectangle = "▭"
	Circle    = "○"
	Line      = "╱"
	Text      = "¶"
	Path      = "∿"
	Group     = "▣"
)

// Type kinds as shown by `devize types`.
const (
	Composite = "◇" // decomposes into other specs
	Data      = "⊞" // data-only: returns a bag, never draws
	Define    = "≔" // the type-definition type itself
)

// Engine stages, used as the symbol field on structured log entries.
const (
	Bootstrap = "⟲"
	Validate  = "✓"
	Decompose = "⤵"
	Terminal  = "■"
	AM        = "≡" // configuration
)

// entry binds a glyph to its command-line name and description.
type entry struct {
	glyph       string
	name        string
	description string
}

var primitives = []entry{
	{Rectangle, "rectangle", "Axis-aligned rectangle"},
	{Circle, "circle", "Circle by centre and radius"},
	{Line, "line", "Straight segment between two points"},
	{Text, "text", "Text anchored at a point"},
	{Path, "path", "SVG path data"},
	{Group, "group", "Container with children and an optional transform"},
}

// PrimitiveToGlyph maps primitive type names to their glyphs.
var PrimitiveToGlyph = map[string]string{}

// GlyphToPrimitive maps glyphs back to primitive type names.
var GlyphToPrimitive = map[string]string{}

// PrimitiveDescriptions provides one-line explanations for CLI help.
var PrimitiveDescriptions = map[string]string{}

func init() {
	for _, e := range primitives {
		PrimitiveToGlyph[e.name] = e.glyph
		GlyphToPrimitive[e.glyph] = e.name
		PrimitiveDescriptions[e.name] = e.description
	}
}

// ForType returns the glyph for a type name: its primitive glyph when it has
// one, otherwise the kind glyph chosen by the caller.
func ForType(name string, dataOnly bool) string {
	if g, ok := PrimitiveToGlyph[name]; ok {
		return g
	}
	if name == "define" {
		return Define
	}
	if dataOnly {
		return Data
	}
	return Composite
}
