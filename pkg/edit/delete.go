package edit

import (
	"slices"

	"github.com/matzehuels/helmdraw/pkg/errors"
	"github.com/matzehuels/helmdraw/pkg/graph"
)

// Delete removes the selected edges and nodes from m as one edit. The
// selection is expanded with [Expand] first. Edges go before nodes, and nodes
// go in handle order, which is chain order for parsed documents.
func Delete(m *graph.Manager, sel Selection) (*Result, error) {
	if err := checkSelection(m.Graph(), sel); err != nil {
		return nil, err
	}
	return commit(m, func(w *graph.Manager) error {
		sel := Expand(w.Graph(), sel)
		for _, e := range sel.Edges {
			if _, ok := w.Graph().Edge(e); !ok {
				continue
			}
			if err := removeEdge(w, e); err != nil {
				return err
			}
		}
		for _, n := range sel.Nodes {
			if _, ok := w.Graph().Node(n); !ok {
				continue
			}
			if err := deleteNode(w, n); err != nil {
				return err
			}
		}
		return nil
	})
}

// Expand returns sel plus the branch nodes that cannot survive it: the
// branches of every selected backbone node and the branch end of every
// selected anchor bond. Handles come back sorted and deduplicated.
func Expand(g *graph.Graph, sel Selection) Selection {
	out := Selection{Nodes: slices.Clone(sel.Nodes), Edges: slices.Clone(sel.Edges)}
	for _, n := range sel.Nodes {
		if node, ok := g.Node(n); ok && node.Role == graph.Backbone {
			out.Nodes = append(out.Nodes, g.BranchChildren(n)...)
		}
	}
	for _, id := range sel.Edges {
		e, ok := g.Edge(id)
		if !ok || e.Kind != graph.BranchEdge {
			continue
		}
		for _, end := range []graph.NodeID{e.Src, e.Tgt} {
			if g.Anchor(end) == e.Other(end) {
				out.Nodes = append(out.Nodes, end)
			}
		}
	}
	slices.Sort(out.Nodes)
	slices.Sort(out.Edges)
	out.Nodes = slices.Compact(out.Nodes)
	out.Edges = slices.Compact(out.Edges)
	return out
}

func checkSelection(g *graph.Graph, sel Selection) error {
	for _, n := range sel.Nodes {
		if _, ok := g.Node(n); !ok {
			return errors.New(errors.ErrCodeNotFound, "unknown node %d", n).WithNode(int(n))
		}
	}
	for _, e := range sel.Edges {
		if _, ok := g.Edge(e); !ok {
			return errors.New(errors.ErrCodeNotFound, "unknown edge %d", e).WithEdge(int(e))
		}
	}
	return nil
}

// removeEdge deletes one edge and repairs the starting-node list. The
// connectivity probe runs with the edge masked out before anything changes:
//
//   - both ends still share a fragment: the edge was a cross-link or opened a
//     cycle, so the chain keeps its entry, moved to the new head if the chain
//     is no longer cyclic
//   - otherwise each backbone end whose fragment has no start gets one at its
//     head, inserted right after the parent chain's entry
func removeEdge(m *graph.Manager, id graph.EdgeID) error {
	g := m.Graph()
	e, ok := g.Edge(id)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "unknown edge %d", id).WithEdge(int(id))
	}
	if e.Kind == graph.Pair {
		return g.RemoveEdge(id)
	}

	src, tgt := e.Src, e.Tgt
	mask := graph.Without(id)
	parent := m.StartIndexOf(src, nil)
	joined := slices.Contains(g.Fragment(src, mask), tgt)

	type fix struct {
		head     graph.NodeID
		terminal string
	}
	var fixes []fix
	reopen := graph.NodeID(graph.None)
	if joined {
		if g.IsCyclic(src, nil) && !g.IsCyclic(src, mask) {
			reopen = g.ChainHead(src, mask)
		}
	} else {
		for _, end := range []graph.NodeID{src, tgt} {
			node, _ := g.Node(end)
			if node.Role != graph.Backbone || m.StartIndexOf(end, mask) >= 0 {
				continue
			}
			fixes = append(fixes, fix{g.ChainHead(end, mask), graph.DefaultTerminal(node.Polymer)})
		}
	}

	if err := g.RemoveEdge(id); err != nil {
		return err
	}
	if reopen != graph.None && parent >= 0 {
		m.ReplaceStartingNode(parent, reopen)
	}
	at := parent + 1
	if parent < 0 {
		at = m.StartCount()
	}
	for _, f := range fixes {
		m.AddStartingNode(at, f.head, f.terminal)
		at++
	}
	return nil
}

// deleteNode removes n and its incident edges. A node that headed its chain
// passes its list slot and terminal annotation on to its successor, and any
// backbone node hands its node annotation to a successor that has none.
func deleteNode(m *graph.Manager, n graph.NodeID) error {
	g := m.Graph()
	node, ok := g.Node(n)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "unknown node %d", n).WithNode(int(n))
	}
	backbone := node.Role == graph.Backbone
	annotation := node.Annotation
	succ := g.Next(n, nil)

	for _, id := range g.Incident(n) {
		if err := removeEdge(m, id); err != nil {
			return err
		}
	}

	// Edge removal may have turned n into a start of its own single-node
	// fragment; that entry is the slot the successor inherits.
	slot := m.Index(n)
	terminal := m.StartAnnotation(n)
	m.RemoveStartingNode(n)
	if err := g.RemoveNode(n); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "remove node %d", n).WithNode(int(n))
	}

	if succ == graph.None || succ == n {
		return nil
	}
	if _, alive := g.Node(succ); !alive {
		return nil
	}
	if slot >= 0 && m.IsStartingNode(succ) {
		m.AddStartingNode(slot, succ, terminal)
	}
	if backbone && annotation != "" {
		if s, _ := g.Node(succ); s.Annotation == "" {
			s.Annotation = annotation
		}
	}
	return nil
}
