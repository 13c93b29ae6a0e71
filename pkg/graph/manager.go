package graph

import (
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/helmdraw/pkg/errors"
	"github.com/matzehuels/helmdraw/pkg/monomer"
)

// Start is one entry of the starting-node list: the head of a chain and its
// terminal annotation (5', N, ...). An entry's index is its position in the
// list.
type Start struct {
	Node       NodeID
	Annotation string
}

// Manager owns a graph together with its starting-node list and keeps the
// two consistent.
//
// Invariant: there is exactly one start per REGULAR component, every start
// is its chain's head (or an arbitrary member of a cyclic chain), and every
// backbone node is reached from exactly one start. Branch nodes never start
// a chain.
//
// The zero value is not usable; create managers with [NewManager]. A Manager
// is not safe for concurrent use; callers serialize edits per document.
type Manager struct {
	g       *Graph
	starts  []Start
	Version string // notation version trailer to preserve on output
}

// NewManager wraps g with an empty starting-node list.
func NewManager(g *Graph) *Manager {
	return &Manager{g: g}
}

// Graph returns the managed graph.
func (m *Manager) Graph() *Graph { return m.g }

// Starts returns a copy of the starting-node list.
func (m *Manager) Starts() []Start { return slices.Clone(m.starts) }

// StartCount returns the number of starting nodes.
func (m *Manager) StartCount() int { return len(m.starts) }

// AddStartingNode inserts a start at index, clamped to the list bounds.
// Adding a node that is already a start moves it.
func (m *Manager) AddStartingNode(index int, n NodeID, annotation string) {
	m.RemoveStartingNode(n)
	index = max(0, min(index, len(m.starts)))
	m.starts = slices.Insert(m.starts, index, Start{Node: n, Annotation: annotation})
}

// RemoveStartingNode drops n from the list and reports whether it was there.
func (m *Manager) RemoveStartingNode(n NodeID) bool {
	i := m.Index(n)
	if i < 0 {
		return false
	}
	m.starts = slices.Delete(m.starts, i, i+1)
	return true
}

// ReplaceStartingNode swaps the node of the entry at index, keeping its
// annotation and position in the list.
func (m *Manager) ReplaceStartingNode(index int, n NodeID) {
	if index < 0 || index >= len(m.starts) {
		return
	}
	if j := m.Index(n); j >= 0 && j != index {
		m.starts = slices.Delete(m.starts, j, j+1)
		if j < index {
			index--
		}
	}
	m.starts[index].Node = n
}

// Index returns the list index of start n, or -1.
func (m *Manager) Index(n NodeID) int {
	return slices.IndexFunc(m.starts, func(s Start) bool { return s.Node == n })
}

// IsStartingNode reports whether n heads a chain.
func (m *Manager) IsStartingNode(n NodeID) bool { return m.Index(n) >= 0 }

// StartAnnotation returns the terminal annotation of start n.
func (m *Manager) StartAnnotation(n NodeID) string {
	if i := m.Index(n); i >= 0 {
		return m.starts[i].Annotation
	}
	return ""
}

// Annotate sets the terminal annotation of start n. Annotating a node that
// is not a start is a no-op that returns false.
func (m *Manager) Annotate(n NodeID, text string) bool {
	i := m.Index(n)
	if i < 0 {
		return false
	}
	m.starts[i].Annotation = text
	return true
}

// StartIndexOf returns the list index of the start whose chain contains n
// under filter f, or -1 if the chain has no start.
func (m *Manager) StartIndexOf(n NodeID, f EdgeFilter) int {
	for _, member := range m.g.Fragment(n, f) {
		if i := m.Index(member); i >= 0 {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the manager and its graph.
func (m *Manager) Clone() *Manager {
	return &Manager{g: m.g.Clone(), starts: slices.Clone(m.starts), Version: m.Version}
}

// Apply runs fn against a clone of the manager and commits the result only
// if fn succeeds and the clone passes [Manager.Validate]. On commit the
// components are rebuilt from the starting-node list and positions are
// renumbered. On failure m is left untouched.
func (m *Manager) Apply(fn func(work *Manager) error) error {
	work := m.Clone()
	if err := fn(work); err != nil {
		return err
	}
	if err := work.validateStarts(); err != nil {
		return err
	}
	work.Reconcile()
	if err := work.Validate(); err != nil {
		return err
	}
	*m = *work
	return nil
}

// DefaultTerminal returns the terminal annotation given to new chains of a
// polymer type.
func DefaultTerminal(p monomer.Polymer) string {
	switch p {
	case monomer.Nucleotide:
		return "5'"
	case monomer.Peptide:
		return "N"
	}
	return ""
}

// Reconcile rebuilds the component table from the starting-node list: one
// component per start, in list order, with members in position order.
// Component names are kept where a start's chain still lives in its old
// component and made unique otherwise.
func (m *Manager) Reconcile() {
	g := m.g
	old := make([]Component, len(g.components))
	copy(old, g.components)

	g.components = g.components[:0]
	used := make(map[string]bool)
	counters := make(map[monomer.Polymer]int)
	for _, c := range old {
		if c.alive {
			counters[c.Polymer] = max(counters[c.Polymer], polymerNumber(c.Name))
		}
	}

	claimed := make(map[ComponentID]bool)
	for order, s := range m.starts {
		head := &g.nodes[s.Node]
		prev := head.Component
		name := ""
		var annotation string
		if int(prev) < len(old) && old[prev].alive && !claimed[prev] {
			claimed[prev] = true
			name = old[prev].Name
			annotation = old[prev].Annotation
		}
		if name == "" || used[name] {
			counters[head.Polymer]++
			name = string(head.Polymer) + strconv.Itoa(counters[head.Polymer])
		}
		used[name] = true

		members := m.g.ChainWithBranches(s.Node, nil)
		id := ComponentID(len(g.components))
		g.components = append(g.components, Component{
			Name:       name,
			Polymer:    head.Polymer,
			Order:      order,
			Members:    members,
			Annotation: annotation,
			alive:      true,
		})
		for pos, n := range members {
			g.nodes[n].Component = id
			g.nodes[n].Position = pos + 1
		}
	}
}

// Validate checks every structural invariant and returns the first
// violation as a STRUCTURAL_INVARIANT error.
func (m *Manager) Validate() error {
	if err := m.validateEdges(); err != nil {
		return err
	}
	if err := m.validateStarts(); err != nil {
		return err
	}
	return m.validateComponents()
}

func (m *Manager) validateEdges() error {
	g := m.g
	type portUse struct {
		n NodeID
		p monomer.Port
	}
	used := make(map[portUse]EdgeID)
	paired := make(map[NodeID]EdgeID)
	for _, id := range g.Edges() {
		e := &g.edges[id]
		src, okS := g.node(e.Src)
		tgt, okT := g.node(e.Tgt)
		if !okS || !okT {
			return errors.Invariant("edge references a removed node").WithEdge(int(id))
		}
		switch e.Kind {
		case Pair:
			if src.Kind != monomer.Base || tgt.Kind != monomer.Base {
				return errors.Invariant("pair edge between %s and %s; pairs join bases only", src.Kind, tgt.Kind).WithEdge(int(id))
			}
			for _, n := range []NodeID{e.Src, e.Tgt} {
				if other, dup := paired[n]; dup {
					return errors.Invariant("base is paired twice (edges %d and %d)", other, id).WithNode(int(n)).WithEdge(int(id))
				}
				paired[n] = id
			}
			continue
		case Regular:
			if src.Role != Backbone || tgt.Role != Backbone {
				return errors.Invariant("regular edge must join backbone nodes").WithEdge(int(id))
			}
			if e.SrcPort != monomer.R2 || e.TgtPort != monomer.R1 {
				return errors.Invariant("regular edge must run R2 -> R1, got %s -> %s", e.SrcPort, e.TgtPort).WithEdge(int(id))
			}
		case Chem:
			if src.Polymer != monomer.Chem && tgt.Polymer != monomer.Chem {
				return errors.Invariant("chem edge without a chemical endpoint").WithEdge(int(id))
			}
		}
		for _, pu := range []portUse{{e.Src, e.SrcPort}, {e.Tgt, e.TgtPort}} {
			n := &g.nodes[pu.n]
			if !n.HasPort(pu.p) {
				return errors.Invariant("%s has no port %s", n.Symbol, pu.p).WithNode(int(pu.n)).WithEdge(int(id))
			}
			if !n.Occupied(pu.p) {
				return errors.Invariant("port %s of %s not marked occupied", pu.p, n.Symbol).WithNode(int(pu.n)).WithEdge(int(id))
			}
			if other, dup := used[pu]; dup {
				return errors.Invariant("port %s of %s used by edges %d and %d", pu.p, n.Symbol, other, id).WithNode(int(pu.n)).WithEdge(int(id))
			}
			used[pu] = id
		}
	}

	for _, n := range g.Nodes() {
		node := &g.nodes[n]
		for _, p := range node.Ports {
			if _, ok := used[portUse{n, p}]; node.Occupied(p) && !ok {
				return errors.Invariant("port %s of %s marked occupied without an edge", p, node.Symbol).WithNode(int(n))
			}
		}
		if node.Role == Branch {
			if g.Anchor(n) == None {
				return errors.Invariant("branch node %s has no anchor", node.Symbol).WithNode(int(n))
			}
			for _, id := range g.Incident(n) {
				if g.edges[id].Kind == Regular {
					return errors.Invariant("branch node %s on a regular edge", node.Symbol).WithNode(int(n)).WithEdge(int(id))
				}
			}
		}
	}
	return nil
}

func (m *Manager) validateStarts() error {
	g := m.g
	covered := make(map[NodeID]int)
	for i, s := range m.starts {
		n, ok := g.node(s.Node)
		if !ok {
			return errors.Invariant("starting node %d was removed", s.Node).WithNode(int(s.Node))
		}
		if n.Role != Backbone {
			return errors.Invariant("branch node %s cannot start a chain", n.Symbol).WithNode(int(s.Node))
		}
		if head := g.ChainHead(s.Node, nil); head != s.Node {
			return errors.Invariant("starting node %s is not its chain's head", n.Symbol).WithNode(int(s.Node))
		}
		for _, member := range g.TraverseChain(s.Node, None, nil) {
			if j, dup := covered[member]; dup {
				return errors.Invariant("node reached from starts %d and %d", j, i).WithNode(int(member))
			}
			covered[member] = i
		}
	}
	for _, n := range g.Nodes() {
		if g.nodes[n].Role != Backbone {
			continue
		}
		if _, ok := covered[n]; !ok {
			return errors.Invariant("backbone node %s is not reachable from any start", g.nodes[n].Symbol).WithNode(int(n))
		}
	}
	return nil
}

func (m *Manager) validateComponents() error {
	g := m.g
	for _, n := range g.Nodes() {
		c, ok := g.component(g.nodes[n].Component)
		if !ok {
			return errors.Invariant("node belongs to a removed component").WithNode(int(n))
		}
		if !slices.Contains(c.Members, n) {
			return errors.Invariant("node missing from component %s", c.Name).WithNode(int(n))
		}
	}
	for _, id := range g.Components() {
		for _, n := range g.components[id].Members {
			if !g.validNode(n) || g.nodes[n].Component != id {
				return errors.Invariant("component %s lists a foreign node", g.components[id].Name).WithNode(int(n))
			}
		}
	}
	return nil
}

func polymerNumber(name string) int {
	i := strings.LastIndexFunc(name, func(r rune) bool { return r < '0' || r > '9' })
	n, _ := strconv.Atoi(name[i+1:])
	return n
}
