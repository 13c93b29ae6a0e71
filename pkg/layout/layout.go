package layout

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/helmdraw/pkg/errors"
	"github.com/matzehuels/helmdraw/pkg/graph"
	"github.com/matzehuels/helmdraw/pkg/monomer"
)

// Warning reports a layout problem that did not stop the pass.
type Warning struct {
	Code    errors.Code  `json:"code"`
	Message string       `json:"message"`
	Node    graph.NodeID `json:"node"`
}

func (w Warning) String() string { return fmt.Sprintf("%s: %s", w.Code, w.Message) }

// Result is what a layout pass produces besides the node coordinates,
// which it writes into the graph.
type Result struct {
	Motif    Motif
	Loops    []Loop
	Docked   []graph.NodeID // modifiers placed in line with their anchor
	Floating []graph.NodeID // modifiers stacked below the drawing
	Warnings []Warning

	routes map[graph.EdgeID][]r2.Vec
}

// Path returns the points to draw edge id through. Edges without a
// computed route are straight segments.
func (r *Result) Path(g *graph.Graph, id graph.EdgeID) []r2.Vec {
	if p, ok := r.routes[id]; ok {
		return p
	}
	e, ok := g.Edge(id)
	if !ok {
		return nil
	}
	return []r2.Vec{Pos(g, e.Src), Pos(g, e.Tgt)}
}

// Routed reports whether edge id was given a multi-segment path.
func (r *Result) Routed(id graph.EdgeID) bool {
	_, ok := r.routes[id]
	return ok
}

type state struct {
	g       *graph.Graph
	opts    Options
	res     *Result
	normals map[graph.NodeID]r2.Vec // direction branches hang off a backbone node
}

// Layout assigns coordinates and flipped flags to every node of m. The
// motif is chosen by [Classify]; a shape no motif covers falls back to
// LINEAR with a warning. The pass only depends on the graph and the
// starting-node list, so running it twice gives identical output.
func Layout(m *graph.Manager, opts Options) (*Result, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	s := &state{
		g:    m.Graph(),
		opts: opts,
		res:  &Result{routes: make(map[graph.EdgeID][]r2.Vec)},
	}
	s.reset()

	cs := chains(m)
	motif, err := Classify(m)
	if err == nil {
		err = s.place(motif, cs)
	}
	if err != nil {
		s.warn(err)
		s.reset()
		motif = Linear
		s.linear(cs)
	}
	s.res.Motif = motif

	s.branches(cs)
	s.dock(m)
	s.route()
	return s.res, nil
}

func (s *state) reset() {
	for _, n := range s.g.Nodes() {
		setPos(s.g, n, r2.Vec{}, false)
	}
	s.normals = make(map[graph.NodeID]r2.Vec)
	s.res.Loops = nil
}

func (s *state) warn(err error) {
	w := Warning{Code: errors.GetCode(err), Message: err.Error(), Node: graph.None}
	var e *errors.Error
	if errors.As(err, &e) {
		w.Message = e.Message
		if e.Node != errors.NoHandle {
			w.Node = graph.NodeID(e.Node)
		}
	}
	if w.Code == errors.ErrCodeLayoutUnsupportedMotif {
		w.Message += "; drawing chains linearly"
	}
	s.res.Warnings = append(s.res.Warnings, w)
}

func (s *state) place(motif Motif, cs []chain) error {
	switch motif {
	case Linear:
		s.linear(cs)
		return nil
	case Hairpin:
		return s.hairpin(cs[0])
	case Dumbbell:
		return s.dumbbell(cs[0])
	case Complementary:
		s.complementary(cs)
		return nil
	}
	return errors.New(errors.ErrCodeInternal, "unknown motif %d", motif)
}

// linear puts chain i on row i.
func (s *state) linear(cs []chain) {
	for i, c := range cs {
		PlaceLine(s.g, c.nodes, r2.Vec{Y: float64(i) * s.opts.RowGap}, s.opts.Spacing)
	}
}

// hairpin lays the 5' arm out to the closing pair, turns the 3' arm half a
// turn underneath it and bends the loop round to the right.
func (s *state) hairpin(c chain) error {
	p, q, err := LoopBounds(s.g, c.nodes, 0)
	if err != nil {
		return err
	}
	d := s.opts.Spacing
	PlaceLine(s.g, c.nodes[:p+1], r2.Vec{}, d)

	pivot := float64(p) * d
	arm := c.nodes[q:]
	PlaceLine(s.g, arm, r2.Vec{X: pivot}, d)
	Rotate180(s.g, arm, r2.Vec{X: pivot, Y: s.opts.StrandGap / 2})

	s.loop(c.nodes, p, q, r2.Vec{X: 1})
	return nil
}

// dumbbell lays the chain out as a duplex capped by a loop at each end.
// The stretch between the two loops runs right to left along the bottom;
// the 5' segment ends above its right end and the 3' segment starts above
// its left end.
func (s *state) dumbbell(c chain) error {
	p1, q1, err := LoopBounds(s.g, c.nodes, 0)
	if err != nil {
		return err
	}
	p2, q2, err := LoopBounds(s.g, c.nodes, q1+1)
	if err != nil {
		return err
	}
	d, gap := s.opts.Spacing, s.opts.StrandGap

	mid := c.nodes[q1 : p2+1]
	width := float64(len(mid)-1) * d
	PlaceLine(s.g, mid, r2.Vec{}, d)
	Rotate180(s.g, mid, r2.Vec{X: width / 2, Y: gap / 2})

	PlaceLine(s.g, c.nodes[:p1+1], r2.Vec{X: width - float64(p1)*d}, d)
	tail := c.nodes[q2:]
	PlaceLine(s.g, tail, r2.Vec{}, d)

	if _, hi := Span(s.g, tail); hi > width-float64(p1)*d-Epsilon {
		s.res.Warnings = append(s.res.Warnings, Warning{
			Code:    errors.ErrCodeLayoutOverlap,
			Message: "dumbbell arms overlap on the top strand",
			Node:    c.nodes[q2],
		})
	}

	s.loop(c.nodes, p1, q1, r2.Vec{X: 1})
	s.loop(c.nodes, p2, q2, r2.Vec{X: -1})
	return nil
}

func (s *state) loop(nodes []graph.NodeID, p, q int, out r2.Vec) {
	l := PlaceLoop(s.g, nodes[p], nodes[q], nodes[p+1:q], out)
	for _, n := range l.Nodes {
		s.normals[n] = r2.Unit(r2.Sub(Pos(s.g, n), l.Center))
	}
	s.res.Loops = append(s.res.Loops, l)
}

// link is a base pair seen from one chain to another, as backbone anchors.
type link struct {
	from, to graph.NodeID
}

// complementary visits chains breadth-first over the pairing graph. Each
// child is drawn as a line, turned half a turn when its parent is not
// flipped, moved so its first paired anchor sits under its partner, and
// pushed further out while it overlaps a placed chain.
func (s *state) complementary(cs []chain) {
	g, d := s.g, s.opts.Spacing
	index := make(map[graph.NodeID]int)
	for i, c := range cs {
		for _, n := range c.nodes {
			index[n] = i
		}
	}
	adj := make([]map[int]link, len(cs))
	for i, c := range cs {
		adj[i] = make(map[int]link)
		for _, n := range c.nodes {
			for _, b := range g.BranchChildren(n) {
				partner, _ := g.PairPartner(b)
				a := g.Anchor(partner)
				j, ok := index[a]
				if partner == graph.None || !ok || j == i {
					continue
				}
				if _, seen := adj[i][j]; !seen {
					adj[i][j] = link{from: n, to: a}
				}
			}
		}
	}

	visited := make([]bool, len(cs))
	var placed []int
	for root := range cs {
		if visited[root] {
			continue
		}
		visited[root] = true
		y := 0.0
		if len(placed) > 0 {
			y = s.bottom(cs, placed) + s.opts.RowGap
		}
		PlaceLine(g, cs[root].nodes, r2.Vec{Y: y}, d)
		placed = append(placed, root)

		queue := []int{root}
		for len(queue) > 0 {
			p := queue[0]
			queue = queue[1:]
			for c := range cs {
				l, ok := adj[p][c]
				if !ok || visited[c] {
					continue
				}
				visited[c] = true
				queue = append(queue, c)

				parent, _ := g.Node(cs[p].nodes[0])
				flipped := !parent.Flipped
				nodes := cs[c].nodes
				PlaceLine(g, nodes, r2.Vec{}, d)
				if flipped {
					Rotate180(g, nodes, r2.Vec{X: float64(len(nodes)-1) * d / 2})
				}
				from, to := Pos(g, l.from), Pos(g, l.to)
				Shift(g, nodes, r2.Vec{X: from.X - to.X, Y: from.Y})
				VerticalShift(g, nodes, s.opts.StrandGap, flipped)

				for iter := 0; s.crossing(cs, placed, c); iter++ {
					if iter == s.opts.MaxOverlapIterations {
						s.res.Warnings = append(s.res.Warnings, Warning{
							Code:    errors.ErrCodeLayoutOverlap,
							Message: fmt.Sprintf("strand still overlaps after %d shifts", iter),
							Node:    nodes[0],
						})
						break
					}
					VerticalShift(g, nodes, s.opts.StrandGap, flipped)
				}
				placed = append(placed, c)
			}
		}
	}
}

// crossing reports whether chain c shares a row and horizontal range with
// a placed chain.
func (s *state) crossing(cs []chain, placed []int, c int) bool {
	lo, hi := Span(s.g, cs[c].nodes)
	y := Pos(s.g, cs[c].nodes[0]).Y
	for _, o := range placed {
		if o == c {
			continue
		}
		olo, ohi := Span(s.g, cs[o].nodes)
		oy := Pos(s.g, cs[o].nodes[0]).Y
		if math.Abs(y-oy) < Epsilon && lo < ohi+Epsilon && olo < hi+Epsilon {
			return true
		}
	}
	return false
}

func (s *state) bottom(cs []chain, placed []int) float64 {
	y := math.Inf(-1)
	for _, i := range placed {
		for _, n := range cs[i].nodes {
			y = max(y, Pos(s.g, n).Y)
		}
	}
	return y
}

// branches hangs each backbone node's branches off it, away from the
// strand's partner side for loops and toward it on straight runs.
func (s *state) branches(cs []chain) {
	for _, c := range cs {
		for _, n := range c.nodes {
			node, _ := s.g.Node(n)
			normal, ok := s.normals[n]
			if !ok {
				normal = r2.Vec{Y: 1}
				if node.Flipped {
					normal = r2.Vec{Y: -1}
				}
			}
			for i, b := range s.g.BranchChildren(n) {
				p := r2.Add(Pos(s.g, n), r2.Scale(s.opts.BranchOffset*float64(i+1), normal))
				setPos(s.g, b, p, node.Flipped)
			}
		}
	}
}

// dock places chemical modifiers. A modifier bonded through R1 of its
// chain's head or R2 of its tail sits in line with the chain, one dock
// offset past the end. Every other modifier floats below the drawing,
// ordered by the y and then x of the node it is bonded to.
func (s *state) dock(m *graph.Manager) {
	g := s.g
	var mods []graph.NodeID
	for _, st := range m.Starts() {
		if node, _ := g.Node(st.Node); node.Polymer == monomer.Chem {
			mods = append(mods, g.ChainWithBranches(st.Node, nil)...)
		}
	}
	if len(mods) == 0 {
		return
	}
	isMod := func(n graph.NodeID) bool { return slices.Contains(mods, n) }

	type floater struct {
		node     graph.NodeID
		at       r2.Vec
		anchored bool
	}
	var floating []floater
	for _, mod := range mods {
		if s.dockInline(mod, isMod) {
			s.res.Docked = append(s.res.Docked, mod)
			continue
		}
		floating = append(floating, floater{node: mod})
	}

	placed := func(n graph.NodeID) bool { return !isMod(n) || slices.Contains(s.res.Docked, n) }
	for i := range floating {
		f := &floating[i]
		for _, id := range g.Incident(f.node) {
			e, _ := g.Edge(id)
			if other := e.Other(f.node); placed(other) {
				f.at, f.anchored = Pos(g, other), true
				break
			}
		}
	}
	slices.SortStableFunc(floating, func(a, b floater) int {
		if a.anchored != b.anchored {
			if a.anchored {
				return -1
			}
			return 1
		}
		return cmp.Or(cmp.Compare(a.at.Y, b.at.Y), cmp.Compare(a.at.X, b.at.X), cmp.Compare(a.node, b.node))
	})

	top := 0.0
	var found bool
	for _, n := range g.Nodes() {
		if placed(n) {
			if !found || Pos(g, n).Y > top {
				top = Pos(g, n).Y
			}
			found = true
		}
	}
	if found {
		top += s.opts.DockOffset
	}
	for i, f := range floating {
		setPos(g, f.node, r2.Vec{X: f.at.X, Y: top + float64(i)*s.opts.DockOffset}, false)
		s.res.Floating = append(s.res.Floating, f.node)
	}
}

func (s *state) dockInline(mod graph.NodeID, isMod func(graph.NodeID) bool) bool {
	g := s.g
	for _, id := range g.Incident(mod) {
		e, _ := g.Edge(id)
		anchor := e.Other(mod)
		if isMod(anchor) {
			continue
		}
		node, _ := g.Node(anchor)
		if node.Role != graph.Backbone {
			continue
		}
		port := e.SrcPort
		if e.Tgt == anchor {
			port = e.TgtPort
		}
		var dir r2.Vec
		switch {
		case port == monomer.R1 && g.Prev(anchor, nil) == graph.None:
			dir = away(g, anchor, g.Next(anchor, nil), node.Flipped, -1)
		case port == monomer.R2 && g.Next(anchor, nil) == graph.None:
			dir = away(g, anchor, g.Prev(anchor, nil), node.Flipped, 1)
		default:
			continue
		}
		setPos(g, mod, r2.Add(Pos(g, anchor), r2.Scale(s.opts.DockOffset, dir)), node.Flipped)
		return true
	}
	return false
}

// away points from neighbour through n. A lone node points along sign,
// reversed when flipped.
func away(g *graph.Graph, n, neighbour graph.NodeID, flipped bool, sign float64) r2.Vec {
	if neighbour != graph.None {
		if v := r2.Sub(Pos(g, n), Pos(g, neighbour)); r2.Norm(v) > Epsilon {
			return r2.Unit(v)
		}
	}
	if flipped {
		sign = -sign
	}
	return r2.Vec{X: sign}
}

// route computes paths for edges that would cut through backbone nodes.
// Chain bonds between consecutive nodes and branch anchors are never
// routed.
func (s *state) route() {
	g := s.g
	for _, id := range g.Edges() {
		e, _ := g.Edge(id)
		if e.Kind == graph.Pair {
			continue
		}
		if e.Kind == graph.BranchEdge && (g.Anchor(e.Src) == e.Tgt || g.Anchor(e.Tgt) == e.Src) {
			continue
		}
		path := RouteEdge(g, id, s.opts.Spacing/4)
		if len(path) > 2 {
			s.res.routes[id] = path
		}
	}
}
