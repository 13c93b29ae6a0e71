package sink

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/helmdraw/pkg/diagram"
	"github.com/matzehuels/helmdraw/pkg/render"
)

const (
	defaultMargin = 40.0
	defaultRadius = 12.0
	warningLine   = 16.0
)

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style    Style
	margin   float64
	radius   float64
	guides   bool
	warnings bool
}

func WithStyle(s Style) SVGOption        { return func(r *svgRenderer) { r.style = s } }
func WithMargin(m float64) SVGOption     { return func(r *svgRenderer) { r.margin = m } }
func WithNodeRadius(v float64) SVGOption { return func(r *svgRenderer) { r.radius = v } }

// WithLoopGuides draws a faint circle behind every loop.
func WithLoopGuides() SVGOption { return func(r *svgRenderer) { r.guides = true } }

// WithWarnings lists the layout warnings under the drawing.
func WithWarnings() SVGOption { return func(r *svgRenderer) { r.warnings = true } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{style: Simple{}, margin: defaultMargin, radius: defaultRadius}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG draws d as a standalone SVG document. The drawing is moved so
// its bounds start at the margin.
func RenderSVG(d diagram.Drawing, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	pad := r.margin + r.radius
	dx, dy := pad-d.Bounds.MinX, pad-d.Bounds.MinY
	at := func(p diagram.Point) diagram.Point { return diagram.Point{X: p.X + dx, Y: p.Y + dy} }

	width := d.Bounds.Width() + 2*pad
	height := d.Bounds.Height() + 2*pad
	var notes []string
	if r.warnings {
		for _, w := range d.Warnings {
			notes = append(notes, w.String())
		}
		height += float64(len(notes)) * warningLine
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	r.style.RenderDefs(&buf)

	if r.guides {
		for _, l := range d.Loops {
			c := at(l.Center)
			fmt.Fprintf(&buf, `  <circle class="loop" cx="%.2f" cy="%.2f" r="%.2f" fill="none" stroke="#ced4da" stroke-dasharray="2 4"/>`+"\n",
				c.X, c.Y, l.Radius)
		}
	}

	for _, e := range d.Edges {
		pts := make([]diagram.Point, len(e.Points))
		for i, p := range e.Points {
			pts[i] = at(p)
		}
		r.style.RenderEdge(&buf, Edge{Kind: e.Kind, Points: pts})
	}

	for _, n := range d.Nodes {
		p := at(diagram.Point{X: n.X, Y: n.Y})
		r.style.RenderNode(&buf, Node{
			ID: n.ID, Ref: n.Ref, Symbol: n.Symbol, Kind: n.Kind,
			CX: p.X, CY: p.Y, R: r.radius, Flipped: n.Flipped,
		})
	}

	for _, l := range terminalLabels(d, r.radius) {
		p := at(diagram.Point{X: l.X, Y: l.Y})
		l.X, l.Y = p.X, p.Y
		r.style.RenderLabel(&buf, l)
	}

	for i, note := range notes {
		r.style.RenderLabel(&buf, Label{
			Text:   note,
			X:      r.margin,
			Y:      d.Bounds.Height() + 2*pad + (float64(i)+0.5)*warningLine,
			Anchor: "start",
		})
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// terminalLabels puts each chain's terminal annotation beside its head,
// outside the strand: left of an upright head and right of a flipped one.
func terminalLabels(d diagram.Drawing, radius float64) []Label {
	var out []Label
	for _, c := range d.Chains {
		if c.Terminal == "" {
			continue
		}
		n, ok := d.Node(c.Head)
		if !ok {
			continue
		}
		l := Label{Text: c.Terminal, X: n.X - radius - 4, Y: n.Y, Anchor: "end"}
		if n.Flipped {
			l.X, l.Anchor = n.X+radius+4, "start"
		}
		out = append(out, l)
	}
	return out
}

// RenderPDF renders d as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, d diagram.Drawing, opts ...SVGOption) ([]byte, error) {
	return render.ToPDF(ctx, RenderSVG(d, opts...))
}

// RenderPNG renders d as PNG via SVG conversion at the given scale.
func RenderPNG(ctx context.Context, d diagram.Drawing, scale float64, opts ...SVGOption) ([]byte, error) {
	return render.ToPNG(ctx, RenderSVG(d, opts...), scale)
}
