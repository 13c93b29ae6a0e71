package graph

import "slices"

// EdgeFilter decides whether an edge takes part in a traversal. A nil filter
// includes every live edge. Filters let callers probe the graph as if some
// edges were absent without mutating it.
type EdgeFilter func(id EdgeID, e *Edge) bool

// Without returns a filter that hides the given edges.
func Without(hidden ...EdgeID) EdgeFilter {
	return func(id EdgeID, _ *Edge) bool {
		return !slices.Contains(hidden, id)
	}
}

func (f EdgeFilter) allows(id EdgeID, e *Edge) bool {
	return f == nil || f(id, e)
}

// Next returns the REGULAR successor of n, or None at a chain tail.
func (g *Graph) Next(n NodeID, f EdgeFilter) NodeID {
	if !g.validNode(n) {
		return None
	}
	for _, id := range g.out[n] {
		e := &g.edges[id]
		if e.Kind == Regular && f.allows(id, e) {
			return e.Tgt
		}
	}
	return None
}

// Prev returns the REGULAR predecessor of n, or None at a chain head.
func (g *Graph) Prev(n NodeID, f EdgeFilter) NodeID {
	if !g.validNode(n) {
		return None
	}
	for _, id := range g.in[n] {
		e := &g.edges[id]
		if e.Kind == Regular && f.allows(id, e) {
			return e.Src
		}
	}
	return None
}

// ChainHead walks REGULAR predecessors from n to the chain head. On a cyclic
// chain it returns n itself.
func (g *Graph) ChainHead(n NodeID, f EdgeFilter) NodeID {
	return g.walkEnd(n, f, g.Prev)
}

// ChainTail walks REGULAR successors from n to the chain tail. On a cyclic
// chain it returns n itself.
func (g *Graph) ChainTail(n NodeID, f EdgeFilter) NodeID {
	return g.walkEnd(n, f, g.Next)
}

func (g *Graph) walkEnd(n NodeID, f EdgeFilter, step func(NodeID, EdgeFilter) NodeID) NodeID {
	if !g.validNode(n) {
		return None
	}
	cur := n
	for range len(g.nodes) {
		nxt := step(cur, f)
		if nxt == None {
			return cur
		}
		if nxt == n {
			return n
		}
		cur = nxt
	}
	return n
}

// IsCyclic reports whether the chain through n closes on itself.
func (g *Graph) IsCyclic(n NodeID, f EdgeFilter) bool {
	if !g.validNode(n) {
		return false
	}
	cur := n
	for range len(g.nodes) {
		cur = g.Next(cur, f)
		if cur == None {
			return false
		}
		if cur == n {
			return true
		}
	}
	return false
}

// TraverseChain returns the backbone nodes from start following REGULAR
// edges until end (inclusive), the chain tail, or the walk returns to start.
// Pass None as end to walk the whole chain. Branch, pair and chem edges are
// never followed.
func (g *Graph) TraverseChain(start, end NodeID, f EdgeFilter) []NodeID {
	if !g.validNode(start) {
		return nil
	}
	out := []NodeID{start}
	if start == end {
		return out
	}
	cur := start
	for range len(g.nodes) {
		cur = g.Next(cur, f)
		if cur == None || cur == start {
			break
		}
		out = append(out, cur)
		if cur == end {
			break
		}
	}
	return out
}

// TraverseReverse is TraverseChain walking predecessors.
func (g *Graph) TraverseReverse(start, end NodeID, f EdgeFilter) []NodeID {
	if !g.validNode(start) {
		return nil
	}
	out := []NodeID{start}
	if start == end {
		return out
	}
	cur := start
	for range len(g.nodes) {
		cur = g.Prev(cur, f)
		if cur == None || cur == start {
			break
		}
		out = append(out, cur)
		if cur == end {
			break
		}
	}
	return out
}

// Fragment returns the backbone nodes of the REGULAR component containing
// n, starting from its chain head.
func (g *Graph) Fragment(n NodeID, f EdgeFilter) []NodeID {
	return g.TraverseChain(g.ChainHead(n, f), None, f)
}

// ChainWithBranches walks the chain from start like TraverseChain and
// inserts each backbone node's branch children right after it. The result
// is in notation position order.
func (g *Graph) ChainWithBranches(start NodeID, f EdgeFilter) []NodeID {
	var out []NodeID
	for _, n := range g.TraverseChain(start, None, f) {
		out = append(out, n)
		out = append(out, g.BranchChildren(n)...)
	}
	return out
}
