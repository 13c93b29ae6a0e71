package diagram

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/helmdraw/pkg/graph"
	"github.com/matzehuels/helmdraw/pkg/layout"
	"github.com/matzehuels/helmdraw/pkg/translate"
)

// Build converts a laid-out manager into a Drawing. res must come from
// running [layout.Layout] on m with no edits in between. Nodes and edges
// are listed in handle order.
func Build(m *graph.Manager, res *layout.Result) Drawing {
	g := m.Graph()
	d := Drawing{
		Motif:    res.Motif,
		Notation: translate.Serialize(m),
		Warnings: append([]layout.Warning(nil), res.Warnings...),
	}

	refs := make(map[graph.NodeID]string)
	for id, nodes := range translate.Positions(m) {
		for i, n := range nodes {
			refs[n] = fmt.Sprintf("%s:%d", id, i+1)
		}
	}

	for _, s := range m.Starts() {
		head, _ := g.Node(s.Node)
		id, _, _ := strings.Cut(refs[s.Node], ":")
		c := Chain{ID: id, Polymer: string(head.Polymer), Head: int(s.Node), Terminal: s.Annotation}
		if comp, ok := g.Component(head.Component); ok {
			c.Annotation = comp.Annotation
		}
		d.Chains = append(d.Chains, c)
	}

	placement := make(map[graph.NodeID]string)
	for _, n := range res.Docked {
		placement[n] = PlacementDocked
	}
	for _, n := range res.Floating {
		placement[n] = PlacementFloating
	}

	first := true
	for _, id := range g.Nodes() {
		n, _ := g.Node(id)
		d.Nodes = append(d.Nodes, Node{
			ID:         int(id),
			Ref:        refs[id],
			Symbol:     n.Symbol,
			Polymer:    string(n.Polymer),
			Kind:       string(n.Kind),
			Role:       n.Role.String(),
			X:          n.X,
			Y:          n.Y,
			Flipped:    n.Flipped,
			Placement:  placement[id],
			Annotation: n.Annotation,
		})
		d.Bounds.include(Point{n.X, n.Y}, first)
		first = false
	}

	for _, id := range g.Edges() {
		e, _ := g.Edge(id)
		path := res.Path(g, id)
		out := Edge{ID: int(id), From: int(e.Src), To: int(e.Tgt), Kind: e.Kind.String(), Points: make([]Point, len(path))}
		for i, p := range path {
			out.Points[i] = point(p)
			d.Bounds.include(out.Points[i], first)
			first = false
		}
		d.Edges = append(d.Edges, out)
	}

	for _, l := range res.Loops {
		loop := Loop{Center: point(l.Center), Radius: l.Radius}
		for _, n := range l.Nodes {
			loop.Nodes = append(loop.Nodes, int(n))
		}
		d.Loops = append(d.Loops, loop)
	}
	return d
}

func point(v r2.Vec) Point { return Point{X: v.X, Y: v.Y} }
