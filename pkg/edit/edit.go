package edit

import (
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/helmdraw/pkg/errors"
	"github.com/matzehuels/helmdraw/pkg/graph"
	"github.com/matzehuels/helmdraw/pkg/translate"
)

// Selection names the nodes and edges an edit applies to.
type Selection struct {
	Nodes []graph.NodeID `json:"nodes,omitempty"`
	Edges []graph.EdgeID `json:"edges,omitempty"`
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool { return len(s.Nodes) == 0 && len(s.Edges) == 0 }

// Result describes a committed edit.
type Result struct {
	AddedStarts   []graph.NodeID `json:"added_starts,omitempty"`
	RemovedStarts []graph.NodeID `json:"removed_starts,omitempty"`
	Notation      string         `json:"notation"`
}

// commit runs fn through m.Apply and reports the change in the starting-node
// list.
func commit(m *graph.Manager, fn func(*graph.Manager) error) (*Result, error) {
	before := startNodes(m)
	if err := m.Apply(fn); err != nil {
		return nil, err
	}
	after := startNodes(m)

	res := &Result{Notation: translate.Serialize(m)}
	for _, n := range after {
		if !slices.Contains(before, n) {
			res.AddedStarts = append(res.AddedStarts, n)
		}
	}
	for _, n := range before {
		if !slices.Contains(after, n) {
			res.RemovedStarts = append(res.RemovedStarts, n)
		}
	}
	return res, nil
}

func startNodes(m *graph.Manager) []graph.NodeID {
	starts := m.Starts()
	out := make([]graph.NodeID, len(starts))
	for i, s := range starts {
		out[i] = s.Node
	}
	return out
}

// ResolveNode finds the node at a canonical reference such as "RNA1:3".
// Positions are 1-based and count every monomer, as in the notation.
func ResolveNode(m *graph.Manager, ref string) (graph.NodeID, error) {
	id, pos, ok := strings.Cut(strings.TrimSpace(ref), ":")
	if !ok {
		return graph.None, errors.New(errors.ErrCodeInvalidInput, "node reference %q must look like POLYMER:pos", ref)
	}
	p, err := strconv.Atoi(pos)
	if err != nil || p < 1 {
		return graph.None, errors.New(errors.ErrCodeInvalidInput, "invalid position in %q", ref)
	}
	nodes, ok := translate.Positions(m)[id]
	if !ok {
		return graph.None, errors.New(errors.ErrCodeNotFound, "no polymer %s", id)
	}
	if p > len(nodes) {
		return graph.None, errors.New(errors.ErrCodeNotFound, "%s has %d monomers, no position %d", id, len(nodes), p)
	}
	return nodes[p-1], nil
}

// ResolveEdge finds the edge between two node references, written
// "RNA1:2-RNA2:5". When several edges join the pair, the oldest wins.
func ResolveEdge(m *graph.Manager, ref string) (graph.EdgeID, error) {
	a, b, ok := strings.Cut(ref, "-")
	if !ok {
		return graph.None, errors.New(errors.ErrCodeInvalidInput, "edge reference %q must look like A:pos-B:pos", ref)
	}
	src, err := ResolveNode(m, a)
	if err != nil {
		return graph.None, err
	}
	tgt, err := ResolveNode(m, b)
	if err != nil {
		return graph.None, err
	}
	g := m.Graph()
	for _, id := range g.Incident(src) {
		if e, _ := g.Edge(id); e.Other(src) == tgt {
			return id, nil
		}
	}
	return graph.None, errors.New(errors.ErrCodeNotFound, "no edge between %s and %s", a, b)
}
