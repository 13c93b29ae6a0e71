package diagram

import (
	"math"

	"github.com/matzehuels/helmdraw/pkg/layout"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatPDF  = "pdf"
	FormatPNG  = "png"
)

// Visual styles for rendering.
const (
	StyleSimple  = "simple"
	StyleOutline = "outline"
)

// Placements of chemical modifiers.
const (
	PlacementDocked   = "docked"
	PlacementFloating = "floating"
)

// Drawing is the serialized form of a laid-out structure: everything a
// rendering surface needs and nothing it has to compute.
type Drawing struct {
	Motif    layout.Motif     `json:"motif"`
	Notation string           `json:"notation"`
	Chains   []Chain          `json:"chains"`
	Nodes    []Node           `json:"nodes"`
	Edges    []Edge           `json:"edges"`
	Loops    []Loop           `json:"loops,omitempty"`
	Warnings []layout.Warning `json:"warnings,omitempty"`
	Bounds   Bounds           `json:"bounds"`
}

// Chain is one polymer of the drawing, in starting-node order.
type Chain struct {
	ID         string `json:"id"`
	Polymer    string `json:"polymer"`
	Head       int    `json:"head"`
	Terminal   string `json:"terminal,omitempty"`   // label at the head, e.g. 5' or N
	Annotation string `json:"annotation,omitempty"` // free text from the annotation section
}

// Node is a placed monomer.
type Node struct {
	ID         int     `json:"id"`
	Ref        string  `json:"ref"` // canonical "CHAIN:pos"
	Symbol     string  `json:"symbol"`
	Polymer    string  `json:"polymer"`
	Kind       string  `json:"kind"`
	Role       string  `json:"role"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Flipped    bool    `json:"flipped,omitempty"`
	Placement  string  `json:"placement,omitempty"`
	Annotation string  `json:"annotation,omitempty"`
}

// Edge is a drawn connection. Points run from the source to the target; a
// straight edge has two.
type Edge struct {
	ID     int     `json:"id"`
	From   int     `json:"from"`
	To     int     `json:"to"`
	Kind   string  `json:"kind"`
	Points []Point `json:"points"`
}

// Routed reports whether the edge bends.
func (e *Edge) Routed() bool { return len(e.Points) > 2 }

// Point is a drawing coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Loop is a circular arc of nodes, kept so renderers can draw guides.
type Loop struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
	Nodes  []int   `json:"nodes"`
}

// Bounds is the axis-aligned box around every node and edge point.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

func (b *Bounds) include(p Point, first bool) {
	if first {
		*b = Bounds{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
		return
	}
	b.MinX, b.MinY = math.Min(b.MinX, p.X), math.Min(b.MinY, p.Y)
	b.MaxX, b.MaxY = math.Max(b.MaxX, p.X), math.Max(b.MaxY, p.Y)
}

// Node returns the node with the given id.
func (d *Drawing) Node(id int) (*Node, bool) {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i], true
		}
	}
	return nil, false
}
