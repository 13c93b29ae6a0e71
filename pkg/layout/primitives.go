package layout

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/helmdraw/pkg/errors"
	"github.com/matzehuels/helmdraw/pkg/graph"
	"github.com/matzehuels/helmdraw/pkg/monomer"
)

// Pos returns the coordinate of node n.
func Pos(g *graph.Graph, n graph.NodeID) r2.Vec {
	node, ok := g.Node(n)
	if !ok {
		return r2.Vec{}
	}
	return r2.Vec{X: node.X, Y: node.Y}
}

func setPos(g *graph.Graph, n graph.NodeID, p r2.Vec, flipped bool) {
	if node, ok := g.Node(n); ok {
		node.X, node.Y, node.Flipped = p.X, p.Y, flipped
	}
}

// PlaceLine puts nodes left to right at uniform spacing starting at origin
// and clears their flipped flag.
func PlaceLine(g *graph.Graph, nodes []graph.NodeID, origin r2.Vec, spacing float64) {
	for i, n := range nodes {
		setPos(g, n, r2.Add(origin, r2.Vec{X: float64(i) * spacing}), false)
	}
}

// Rotate180 turns subset half a turn about c and toggles each node's
// flipped flag. Points map to 2c-p, so a second turn about the same center
// restores the subset.
func Rotate180(g *graph.Graph, subset []graph.NodeID, c r2.Vec) {
	for _, n := range subset {
		node, ok := g.Node(n)
		if !ok {
			continue
		}
		p := r2.Sub(r2.Scale(2, c), r2.Vec{X: node.X, Y: node.Y})
		node.X, node.Y = p.X, p.Y
		node.Flipped = !node.Flipped
	}
}

// Shift moves subset by d.
func Shift(g *graph.Graph, subset []graph.NodeID, d r2.Vec) {
	for _, n := range subset {
		if node, ok := g.Node(n); ok {
			node.X += d.X
			node.Y += d.Y
		}
	}
}

// VerticalShift moves subset down by gap when flipped and up otherwise.
func VerticalShift(g *graph.Graph, subset []graph.NodeID, gap float64, flipped bool) {
	dy := -gap
	if flipped {
		dy = gap
	}
	Shift(g, subset, r2.Vec{Y: dy})
}

// Span returns the horizontal extent of subset.
func Span(g *graph.Graph, subset []graph.NodeID) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, n := range subset {
		x := Pos(g, n).X
		lo, hi = min(lo, x), max(hi, x)
	}
	return lo, hi
}

// Loop is a run of backbone nodes placed on a circular arc between two
// paired nodes.
type Loop struct {
	Start, End graph.NodeID   // closing pair, not part of the arc
	Nodes      []graph.NodeID // interior, in chain order
	Center     r2.Vec
	Radius     float64
	Step       float64 // angle between consecutive nodes, radians
}

// PlaceLoop walks interior along a circular arc from start to end. The
// chord start-end subtends 2π/(k+1) for k interior nodes, giving radius
// r = halfGap/sin(π/(k+1)); the remaining arc is split into k+1 equal
// steps. The arc bulges toward out. Nodes below the circle's center are
// flagged as flipped.
func PlaceLoop(g *graph.Graph, start, end graph.NodeID, interior []graph.NodeID, out r2.Vec) Loop {
	loop := Loop{Start: start, End: end, Nodes: slices.Clone(interior)}
	k := len(interior)
	if k == 0 {
		return loop
	}
	p, q := Pos(g, start), Pos(g, end)
	mid := r2.Scale(0.5, r2.Add(p, q))
	halfGap := r2.Norm(r2.Sub(q, p)) / 2
	half := math.Pi / float64(k+1)
	r := halfGap / math.Sin(half)

	normal := r2.Vec{X: -(q.Y - p.Y), Y: q.X - p.X}
	if r2.Dot(normal, out) < 0 {
		normal = r2.Scale(-1, normal)
	}
	if r2.Norm(normal) > 0 {
		normal = r2.Unit(normal)
	} else {
		normal = r2.Unit(out)
	}
	c := r2.Add(mid, r2.Scale(r*math.Cos(half), normal))

	sweep := 2*math.Pi - 2*half
	step := sweep / float64(k+1)
	// Walk the long way round: the direction whose full sweep lands on q.
	dir := 1.0
	if r2.Norm(r2.Sub(r2.Rotate(p, sweep, c), q)) > r2.Norm(r2.Sub(r2.Rotate(p, -sweep, c), q)) {
		dir = -1
	}
	for i, n := range interior {
		v := r2.Rotate(p, dir*step*float64(i+1), c)
		setPos(g, n, v, v.Y > c.Y+Epsilon)
	}

	loop.Center, loop.Radius, loop.Step = c, r, step
	return loop
}

// LoopBounds scans chain from index from for the first pairing whose far
// end lies further along the chain, then follows the pairs nested inside
// it to the innermost one. It returns the chain indices of that innermost
// pair, which close the loop.
//
// Nucleotide chains pair through PAIR edges on their bases. Other chains
// use non-regular links between their own backbone nodes. Ties go to the
// first match in traversal order.
func LoopBounds(g *graph.Graph, chain []graph.NodeID, from int) (start, end int, err error) {
	partners := partnerRanks(g, chain)
	start, end = -1, -1
	for i := max(from, 0); i < len(chain); i++ {
		if j := partners[i]; j > i {
			start, end = i, j
			break
		}
	}
	if start < 0 {
		return -1, -1, errors.Invariant("no loop bound after position %d", from)
	}
	outer := start
	for i := start + 1; i < end; i++ {
		j := partners[i]
		if j >= 0 && j < outer {
			return -1, -1, errors.Invariant("interleaved pairs at positions %d and %d", outer, i).WithNode(int(chain[i]))
		}
		if j <= i {
			continue
		}
		if j > end {
			return -1, -1, errors.Invariant("interleaved pairs at positions %d and %d", start, i).WithNode(int(chain[i]))
		}
		start, end = i, j
	}
	return start, end, nil
}

// partnerRanks maps each chain index to the index of the node it pairs
// with on the same chain, or -1.
func partnerRanks(g *graph.Graph, chain []graph.NodeID) []int {
	rank := make(map[graph.NodeID]int, len(chain))
	for i, n := range chain {
		rank[n] = i
	}
	out := make([]int, len(chain))
	for i, n := range chain {
		out[i] = -1
		for _, other := range partners(g, n) {
			if j, ok := rank[other]; ok && j != i {
				out[i] = j
				break
			}
		}
	}
	return out
}

// partners returns the backbone nodes paired with backbone node n: through
// base pairs for nucleotides, through cross-links otherwise.
func partners(g *graph.Graph, n graph.NodeID) []graph.NodeID {
	node, ok := g.Node(n)
	if !ok {
		return nil
	}
	var out []graph.NodeID
	if node.Polymer == monomer.Nucleotide {
		for _, b := range g.BranchChildren(n) {
			if partner, _ := g.PairPartner(b); partner != graph.None {
				if a := g.Anchor(partner); a != graph.None {
					out = append(out, a)
				}
			}
		}
		return out
	}
	for _, id := range g.Incident(n) {
		e, _ := g.Edge(id)
		if e.Kind != graph.BranchEdge {
			continue
		}
		if other, ok := g.Node(e.Other(n)); ok && other.Role == graph.Backbone && other.Polymer == node.Polymer {
			out = append(out, e.Other(n))
		}
	}
	return out
}

// RouteEdge returns the drawing path of edge id. A straight segment is
// used unless it passes within clearance of a backbone node other than its
// ends. Each end then leaves sideways when it is the left-most or
// right-most of its chain neighbours, or vertically when it sits between
// them, and the two legs meet on a lane below both chains.
func RouteEdge(g *graph.Graph, id graph.EdgeID, clearance float64) []r2.Vec {
	e, ok := g.Edge(id)
	if !ok {
		return nil
	}
	a, b := Pos(g, e.Src), Pos(g, e.Tgt)
	straight := []r2.Vec{a, b}
	if e.Kind == graph.Pair || !crossesBackbone(g, e.Src, e.Tgt, clearance) {
		return straight
	}

	leg := 2 * clearance
	ea := r2.Add(a, r2.Scale(leg, exitDir(g, e.Src)))
	eb := r2.Add(b, r2.Scale(leg, exitDir(g, e.Tgt)))
	lane := max(lowest(g, e.Src), lowest(g, e.Tgt), ea.Y, eb.Y) + leg

	path := []r2.Vec{a, ea, {X: ea.X, Y: lane}, {X: eb.X, Y: lane}, eb, b}
	return slices.CompactFunc(path, func(p, q r2.Vec) bool {
		return r2.Norm(r2.Sub(p, q)) < Epsilon
	})
}

func crossesBackbone(g *graph.Graph, src, tgt graph.NodeID, clearance float64) bool {
	a, b := Pos(g, src), Pos(g, tgt)
	for _, n := range g.Nodes() {
		if n == src || n == tgt {
			continue
		}
		if node, _ := g.Node(n); node.Role != graph.Backbone {
			continue
		}
		if segmentDistance(Pos(g, n), a, b) < clearance {
			return true
		}
	}
	return false
}

func segmentDistance(p, a, b r2.Vec) float64 {
	ab := r2.Sub(b, a)
	l2 := r2.Norm2(ab)
	if l2 == 0 {
		return r2.Norm(r2.Sub(p, a))
	}
	t := max(0, min(1, r2.Dot(r2.Sub(p, a), ab)/l2))
	return r2.Norm(r2.Sub(p, r2.Add(a, r2.Scale(t, ab))))
}

func exitDir(g *graph.Graph, n graph.NodeID) r2.Vec {
	p := Pos(g, n)
	left, right := true, true
	var neighbours int
	for _, m := range []graph.NodeID{g.Prev(n, nil), g.Next(n, nil)} {
		if m == graph.None {
			continue
		}
		neighbours++
		x := Pos(g, m).X
		left = left && x > p.X+Epsilon
		right = right && x < p.X-Epsilon
	}
	node, _ := g.Node(n)
	switch {
	case neighbours > 0 && left:
		return r2.Vec{X: -1}
	case neighbours > 0 && right:
		return r2.Vec{X: 1}
	case node.Flipped:
		return r2.Vec{Y: -1}
	}
	return r2.Vec{Y: 1}
}

// lowest returns the largest y among the nodes of n's chain and branches.
func lowest(g *graph.Graph, n graph.NodeID) float64 {
	y := Pos(g, n).Y
	if node, _ := g.Node(n); node.Role == graph.Branch {
		n = g.Anchor(n)
	}
	for _, m := range g.ChainWithBranches(g.ChainHead(n, nil), nil) {
		y = max(y, Pos(g, m).Y)
	}
	return y
}
