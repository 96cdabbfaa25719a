// Package svg paints resolved primitive nodes as an SVG document.
package svg

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strconv"

	svgo "github.com/ajstarks/svgo/float"

	"github.com/teranos/devize/am"
	"github.com/teranos/devize/errors"
	"github.com/teranos/devize/logger"
	"github.com/teranos/devize/spec"
	"github.com/teranos/devize/sym"
)

// StyleAttributes are copied from a node onto its SVG element when present.
var StyleAttributes = []string{
	"id", "class", "fill", "stroke", "stroke-width", "opacity", "font-size", "text-anchor",
}

// Painter writes primitive nodes to SVG.
type Painter struct {
	Width      float64
	Height     float64
	Background string // empty = transparent
	Decimals   int
}

// New returns a painter sized by the render configuration.
func New(cfg am.RenderConfig) *Painter {
	return &Painter{
		Width:      cfg.Width,
		Height:     cfg.Height,
		Background: cfg.Background,
		Decimals:   cfg.Decimals,
	}
}

// Paint writes one SVG document holding nodes in order. Nothing is written
// to w if any node fails to paint.
func (p *Painter) Paint(w io.Writer, nodes []spec.Spec) error {
	var buf bytes.Buffer
	canvas := svgo.New(&buf)
	canvas.Decimals = p.Decimals

	canvas.Start(p.Width, p.Height)
	if p.Background != "" {
		canvas.Rect(0, 0, p.Width, p.Height, attr("fill", p.Background))
	}
	for i, n := range nodes {
		if err := p.paint(canvas, n, fmt.Sprintf("nodes[%d]", i)); err != nil {
			return err
		}
	}
	canvas.End()

	if _, err := w.Write(buf.Bytes()); err != nil {
		return errors.Wrap(err, "failed to write svg")
	}
	logger.Debugw("Painted",
		logger.FieldSymbol, sym.Terminal,
		logger.FieldNodes, len(nodes),
		"bytes", buf.Len())
	return nil
}

func (p *Painter) paint(c *svgo.SVG, n spec.Spec, path string) error {
	nf := nodeFloats{node: n, path: path}
	style := styleOf(n)

	switch n.Type() {
	case spec.Rectangle:
		x, y := nf.get("x"), nf.get("y")
		w, h := nf.get("width"), nf.get("height")
		if nf.err != nil {
			return nf.err
		}
		c.Rect(x, y, w, h, style...)

	case spec.Circle:
		cx, cy := nf.either("cx", "x"), nf.either("cy", "y")
		r := nf.get("r")
		if nf.err != nil {
			return nf.err
		}
		c.Circle(cx, cy, r, style...)

	case spec.Line:
		x1, y1 := nf.get("x1"), nf.get("y1")
		x2, y2 := nf.get("x2"), nf.get("y2")
		if nf.err != nil {
			return nf.err
		}
		c.Line(x1, y1, x2, y2, style...)

	case spec.Text:
		x, y := nf.get("x"), nf.get("y")
		if nf.err != nil {
			return nf.err
		}
		c.Text(x, y, textOf(n["text"]), style...)

	case spec.Path:
		d, ok := n.String("d")
		if !ok {
			return errors.Newf("%s: path needs string property d", path)
		}
		c.Path(html.EscapeString(d), style...)

	case spec.Group:
		if t, ok := n.String("transform"); ok && t != "" {
			style = append(style, attr("transform", t))
		}
		c.Group(style...)
		for i, child := range n.Children() {
			if err := p.paint(c, child, fmt.Sprintf("%s.children[%d]", path, i)); err != nil {
				return err
			}
		}
		c.Gend()

	default:
		return errors.WithHint(
			errors.Newf("%s: cannot paint type %q", path, n.Type()),
			"only primitives reach the painter; resolve the spec first")
	}
	return nil
}

// nodeFloats reads numeric properties, remembering the first failure so a
// shape's coordinates can be read in one go.
type nodeFloats struct {
	node spec.Spec
	path string
	err  error
}

func (nf *nodeFloats) get(key string) float64 {
	v, ok := nf.node[key]
	if !ok || v == nil {
		return 0
	}
	f, ok := spec.ToFloat(v)
	if !ok && nf.err == nil {
		nf.err = errors.Newf("%s: %s property %s must be a number, got %v", nf.path, nf.node.Type(), key, v)
	}
	return f
}

func (nf *nodeFloats) either(primary, fallback string) float64 {
	if nf.node.Has(primary) {
		return nf.get(primary)
	}
	return nf.get(fallback)
}

func styleOf(n spec.Spec) []string {
	var out []string
	for _, key := range StyleAttributes {
		v, ok := n[key]
		if !ok || v == nil {
			continue
		}
		out = append(out, attr(key, textOf(v)))
	}
	return out
}

func attr(name, value string) string {
	return name + `="` + html.EscapeString(value) + `"`
}

func textOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	if f, ok := spec.ToFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
