package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/helmdraw/pkg/diagram"
	"github.com/matzehuels/helmdraw/pkg/errors"
)

// Style defines the visual appearance of a schematic drawing.
type Style interface {
	// RenderDefs writes SVG <defs> content (markers, patterns).
	RenderDefs(buf *bytes.Buffer)
	// RenderNode writes the shape and symbol of one monomer.
	RenderNode(buf *bytes.Buffer, n Node)
	// RenderEdge writes one connection as a polyline.
	RenderEdge(buf *bytes.Buffer, e Edge)
	// RenderLabel writes free text such as a chain terminal.
	RenderLabel(buf *bytes.Buffer, l Label)
}

// Node contains the data needed to draw one monomer, already in SVG
// coordinates.
type Node struct {
	ID      int
	Ref     string
	Symbol  string
	Kind    string
	CX, CY  float64
	R       float64
	Flipped bool
}

// Edge contains the SVG points of one connection.
type Edge struct {
	Kind   string
	Points []diagram.Point
}

// Label is positioned text.
type Label struct {
	Text   string
	X, Y   float64
	Anchor string // start, middle or end
}

// StyleFor returns the style registered under name.
func StyleFor(name string) (Style, error) {
	switch name {
	case "", diagram.StyleSimple:
		return Simple{}, nil
	case diagram.StyleOutline:
		return Outline{}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidStyle, "unknown style %q (want %s or %s)", name, diagram.StyleSimple, diagram.StyleOutline)
}

var kindFill = map[string]string{
	"amino_acid": "#a5d8ff",
	"sugar":      "#ffd8a8",
	"phosphate":  "#e9ecef",
	"chemical":   "#d0bfff",
}

var baseFill = map[string]string{
	"A": "#b2f2bb",
	"C": "#ffc9c9",
	"G": "#ffec99",
	"T": "#99e9f2",
	"U": "#99e9f2",
}

func fillFor(n Node) string {
	if n.Kind == "base" {
		if c, ok := baseFill[n.Symbol]; ok {
			return c
		}
		return "#dee2e6"
	}
	if c, ok := kindFill[n.Kind]; ok {
		return c
	}
	return "#ffffff"
}

// dashFor returns the stroke-dasharray for an edge kind, or "".
func dashFor(kind string) string {
	switch kind {
	case "PAIR":
		return "4 3"
	case "CHEM":
		return "1 3"
	}
	return ""
}

// Simple draws filled circles colored by monomer kind.
type Simple struct{}

func (Simple) RenderDefs(buf *bytes.Buffer) {}

func (Simple) RenderNode(buf *bytes.Buffer, n Node) {
	fmt.Fprintf(buf, `  <g id="node-%d" class="node %s">`, n.ID, n.Kind)
	fmt.Fprintf(buf, `<title>%s</title>`, EscapeXML(n.Ref))
	fmt.Fprintf(buf, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s" stroke="#343a40" stroke-width="1.5"/>`,
		n.CX, n.CY, n.R, fillFor(n))
	fmt.Fprintf(buf, `<text x="%.2f" y="%.2f" font-family="Helvetica, Arial, sans-serif" font-size="%.1f" text-anchor="middle" dominant-baseline="central">%s</text>`,
		n.CX, n.CY, fontSize(n), EscapeXML(n.Symbol))
	buf.WriteString("</g>\n")
}

func (Simple) RenderEdge(buf *bytes.Buffer, e Edge) {
	width := 2.0
	if e.Kind != "REGULAR" {
		width = 1.2
	}
	writePolyline(buf, e, "#495057", width)
}

func (Simple) RenderLabel(buf *bytes.Buffer, l Label) {
	writeLabel(buf, l, "#495057")
}

// Outline draws unfilled monomers in black, for print.
type Outline struct{}

func (Outline) RenderDefs(buf *bytes.Buffer) {}

func (Outline) RenderNode(buf *bytes.Buffer, n Node) {
	fmt.Fprintf(buf, `  <g id="node-%d" class="node %s">`, n.ID, n.Kind)
	fmt.Fprintf(buf, `<title>%s</title>`, EscapeXML(n.Ref))
	fmt.Fprintf(buf, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="white" stroke="black" stroke-width="1"/>`, n.CX, n.CY, n.R)
	fmt.Fprintf(buf, `<text x="%.2f" y="%.2f" font-family="Helvetica, Arial, sans-serif" font-size="%.1f" text-anchor="middle" dominant-baseline="central">%s</text>`,
		n.CX, n.CY, fontSize(n), EscapeXML(n.Symbol))
	buf.WriteString("</g>\n")
}

func (Outline) RenderEdge(buf *bytes.Buffer, e Edge) { writePolyline(buf, e, "black", 1) }

func (Outline) RenderLabel(buf *bytes.Buffer, l Label) { writeLabel(buf, l, "black") }

func writePolyline(buf *bytes.Buffer, e Edge, color string, width float64) {
	pts := make([]string, len(e.Points))
	for i, p := range e.Points {
		pts[i] = fmt.Sprintf("%.2f,%.2f", p.X, p.Y)
	}
	fmt.Fprintf(buf, `  <polyline class="edge %s" points="%s" fill="none" stroke="%s" stroke-width="%.1f"`,
		strings.ToLower(e.Kind), strings.Join(pts, " "), color, width)
	if dash := dashFor(e.Kind); dash != "" {
		fmt.Fprintf(buf, ` stroke-dasharray="%s"`, dash)
	}
	buf.WriteString("/>\n")
}

func writeLabel(buf *bytes.Buffer, l Label, color string) {
	fmt.Fprintf(buf, `  <text class="label" x="%.2f" y="%.2f" font-family="Helvetica, Arial, sans-serif" font-size="12" font-style="italic" fill="%s" text-anchor="%s" dominant-baseline="central">%s</text>`+"\n",
		l.X, l.Y, color, l.Anchor, EscapeXML(l.Text))
}

const (
	fontSizeMax   = 12.0
	fontSizeMin   = 6.0
	fontCharWidth = 0.6
)

// fontSize shrinks long symbols until they fit inside the circle.
func fontSize(n Node) float64 {
	chars := max(1, len(n.Symbol))
	fit := (2 * n.R * 0.85) / (float64(chars) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, fit))
}

// EscapeXML escapes s for use in SVG text and attributes.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
