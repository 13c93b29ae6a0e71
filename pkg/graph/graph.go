package graph

import (
	"errors"
	"slices"

	"github.com/matzehuels/helmdraw/pkg/monomer"
)

var (
	// ErrUnknownNode is returned when a node handle is out of range or refers
	// to a removed node.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownEdge is returned when an edge handle is out of range or refers
	// to a removed edge.
	ErrUnknownEdge = errors.New("unknown edge")

	// ErrUnknownComponent is returned when a component handle is out of range
	// or refers to a removed component.
	ErrUnknownComponent = errors.New("unknown component")

	// ErrPortUnavailable is returned by [Graph.AddEdge] when an endpoint does
	// not expose the requested attachment port.
	ErrPortUnavailable = errors.New("attachment port not available")

	// ErrPortOccupied is returned by [Graph.AddEdge] when an attachment port
	// is already used by another edge.
	ErrPortOccupied = errors.New("attachment port already occupied")
)

// NodeID is a stable handle to a node. Handles are never reused within a
// graph, so a removed node's handle stays invalid.
type NodeID int

// EdgeID is a stable handle to an edge.
type EdgeID int

// ComponentID is a handle to a component (hypernode). Component handles
// are reassigned whenever [Manager.Reconcile] rebuilds the table.
type ComponentID int

// None is the zero handle for "no node/edge/component".
const None = -1

// Role is the chain role of a node.
type Role int

const (
	// Backbone nodes sit on a chain's main path.
	Backbone Role = iota
	// Branch nodes hang off a backbone node through a BRANCH edge.
	Branch
)

func (r Role) String() string {
	if r == Branch {
		return "BRANCH"
	}
	return "BACKBONE"
}

// EdgeKind classifies edges.
type EdgeKind int

const (
	// Regular edges join consecutive backbone nodes, prev:R2 -> next:R1.
	Regular EdgeKind = iota
	// BranchEdge attaches a branch node to its anchor, or cross-links two
	// chains through side-chain ports.
	BranchEdge
	// Pair edges record complementary base pairing. They are not bonds and
	// do not occupy attachment ports.
	Pair
	// Chem edges link a chemical modifier to anything else.
	Chem
)

func (k EdgeKind) String() string {
	switch k {
	case Regular:
		return "REGULAR"
	case BranchEdge:
		return "BRANCH"
	case Pair:
		return "PAIR"
	case Chem:
		return "CHEM"
	}
	return "UNKNOWN"
}

// Node is a monomer occurrence in the graph.
type Node struct {
	Symbol     string
	Polymer    monomer.Polymer
	Kind       monomer.Kind
	Ports      []monomer.Port
	Role       Role
	Component  ComponentID
	Position   int // 1-based position inside its polymer, as written in notation
	X, Y       float64
	Flipped    bool
	Annotation string

	occupied uint64 // bit i set when port R(i+1) is used by an edge
	alive    bool
}

// HasPort reports whether the node's monomer exposes port p.
func (n *Node) HasPort(p monomer.Port) bool {
	return slices.Contains(n.Ports, p)
}

// Occupied reports whether port p is used by an edge.
func (n *Node) Occupied(p monomer.Port) bool {
	i := p.Index()
	return i > 0 && i <= 64 && n.occupied&(1<<(i-1)) != 0
}

// OccupiedPorts returns the ports currently used by edges, in port order.
func (n *Node) OccupiedPorts() []monomer.Port {
	var out []monomer.Port
	for _, p := range n.Ports {
		if n.Occupied(p) {
			out = append(out, p)
		}
	}
	return out
}

func (n *Node) setOccupied(p monomer.Port, on bool) {
	i := p.Index()
	if i <= 0 || i > 64 {
		return
	}
	if on {
		n.occupied |= 1 << (i - 1)
	} else {
		n.occupied &^= 1 << (i - 1)
	}
}

// Edge connects two nodes through named ports.
type Edge struct {
	Kind    EdgeKind
	Src     NodeID
	Tgt     NodeID
	SrcPort monomer.Port
	TgtPort monomer.Port

	alive bool
}

// Other returns the endpoint opposite to n.
func (e *Edge) Other(n NodeID) NodeID {
	if e.Src == n {
		return e.Tgt
	}
	return e.Src
}

// Component is one chain grouping (hypernode). Members are kept in position
// order: backbone nodes from the chain head with each node's branch nodes
// right after it.
type Component struct {
	Name       string // polymer identifier, e.g. RNA1
	Polymer    monomer.Polymer
	Order      int // global ordering used for layout and serialization
	Members    []NodeID
	Annotation string

	alive bool
}

// Graph is the monomer graph. Nodes, edges and components live in arenas
// addressed by integer handles; removal leaves a tombstone so handles stay
// stable.
//
// The zero value is ready to use. Graph is not safe for concurrent use.
type Graph struct {
	nodes      []Node
	edges      []Edge
	components []Component
	out        [][]EdgeID // node -> edges where it is Src
	in         [][]EdgeID // node -> edges where it is Tgt
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{}
}

// AddComponent registers a new component and returns its handle.
func (g *Graph) AddComponent(c Component) ComponentID {
	c.alive = true
	c.Members = slices.Clone(c.Members)
	g.components = append(g.components, c)
	return ComponentID(len(g.components) - 1)
}

// AddNode adds a node to component c and returns its handle. The node is
// appended to the component's member list.
func (g *Graph) AddNode(n Node) (NodeID, error) {
	c, ok := g.component(n.Component)
	if !ok {
		return None, ErrUnknownComponent
	}
	n.alive = true
	n.occupied = 0
	n.Ports = slices.Clone(n.Ports)
	g.nodes = append(g.nodes, n)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	id := NodeID(len(g.nodes) - 1)
	c.Members = append(c.Members, id)
	return id, nil
}

// AddEdge adds an edge and marks its ports occupied. PAIR edges do not use
// ports; their port fields are ignored.
func (g *Graph) AddEdge(e Edge) (EdgeID, error) {
	src, ok := g.node(e.Src)
	if !ok {
		return None, ErrUnknownNode
	}
	tgt, ok := g.node(e.Tgt)
	if !ok {
		return None, ErrUnknownNode
	}
	if e.Kind != Pair {
		if !src.HasPort(e.SrcPort) || !tgt.HasPort(e.TgtPort) {
			return None, ErrPortUnavailable
		}
		if src.Occupied(e.SrcPort) || tgt.Occupied(e.TgtPort) {
			return None, ErrPortOccupied
		}
		if e.Src == e.Tgt && e.SrcPort == e.TgtPort {
			return None, ErrPortOccupied
		}
		src.setOccupied(e.SrcPort, true)
		tgt.setOccupied(e.TgtPort, true)
	} else {
		e.SrcPort, e.TgtPort = "", ""
	}
	e.alive = true
	g.edges = append(g.edges, e)
	id := EdgeID(len(g.edges) - 1)
	g.out[e.Src] = append(g.out[e.Src], id)
	g.in[e.Tgt] = append(g.in[e.Tgt], id)
	return id, nil
}

// RemoveEdge removes an edge and releases the ports it occupied.
func (g *Graph) RemoveEdge(id EdgeID) error {
	e, ok := g.edge(id)
	if !ok {
		return ErrUnknownEdge
	}
	if e.Kind != Pair {
		g.nodes[e.Src].setOccupied(e.SrcPort, false)
		g.nodes[e.Tgt].setOccupied(e.TgtPort, false)
	}
	e.alive = false
	g.out[e.Src] = slices.DeleteFunc(g.out[e.Src], func(x EdgeID) bool { return x == id })
	g.in[e.Tgt] = slices.DeleteFunc(g.in[e.Tgt], func(x EdgeID) bool { return x == id })
	return nil
}

// RemoveNode removes a node together with all its incident edges and drops
// it from its component's member list. A component left without members is
// removed as well.
func (g *Graph) RemoveNode(id NodeID) error {
	n, ok := g.node(id)
	if !ok {
		return ErrUnknownNode
	}
	for _, e := range g.Incident(id) {
		_ = g.RemoveEdge(e)
	}
	n.alive = false
	if c, ok := g.component(n.Component); ok {
		c.Members = slices.DeleteFunc(c.Members, func(x NodeID) bool { return x == id })
		if len(c.Members) == 0 {
			c.alive = false
		}
	}
	return nil
}

// SetSymbol swaps the monomer of a node, keeping its edges.
func (g *Graph) SetSymbol(id NodeID, m monomer.Monomer) error {
	n, ok := g.node(id)
	if !ok {
		return ErrUnknownNode
	}
	n.Symbol = m.Symbol
	n.Kind = m.Kind
	n.Ports = slices.Clone(m.Ports)
	return nil
}

// Node returns the node with the given handle.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	return g.node(id)
}

// Edge returns the edge with the given handle.
func (g *Graph) Edge(id EdgeID) (*Edge, bool) {
	return g.edge(id)
}

// Component returns the component with the given handle.
func (g *Graph) Component(id ComponentID) (*Component, bool) {
	return g.component(id)
}

// Nodes returns the handles of all live nodes in ascending order.
func (g *Graph) Nodes() []NodeID {
	out := make([]NodeID, 0, len(g.nodes))
	for i := range g.nodes {
		if g.nodes[i].alive {
			out = append(out, NodeID(i))
		}
	}
	return out
}

// Edges returns the handles of all live edges in insertion order.
func (g *Graph) Edges() []EdgeID {
	out := make([]EdgeID, 0, len(g.edges))
	for i := range g.edges {
		if g.edges[i].alive {
			out = append(out, EdgeID(i))
		}
	}
	return out
}

// Components returns live component handles sorted by Order, then handle.
func (g *Graph) Components() []ComponentID {
	var out []ComponentID
	for i := range g.components {
		if g.components[i].alive {
			out = append(out, ComponentID(i))
		}
	}
	slices.SortStableFunc(out, func(a, b ComponentID) int {
		return g.components[a].Order - g.components[b].Order
	})
	return out
}

// NodeCount returns the number of live nodes.
func (g *Graph) NodeCount() int { return len(g.Nodes()) }

// EdgeCount returns the number of live edges.
func (g *Graph) EdgeCount() int { return len(g.Edges()) }

// Out returns the live edges leaving n, in insertion order.
func (g *Graph) Out(n NodeID) []EdgeID {
	if !g.validNode(n) {
		return nil
	}
	return slices.Clone(g.out[n])
}

// In returns the live edges entering n, in insertion order.
func (g *Graph) In(n NodeID) []EdgeID {
	if !g.validNode(n) {
		return nil
	}
	return slices.Clone(g.in[n])
}

// Incident returns every live edge touching n, ascending by handle.
func (g *Graph) Incident(n NodeID) []EdgeID {
	if !g.validNode(n) {
		return nil
	}
	out := make([]EdgeID, 0, len(g.out[n])+len(g.in[n]))
	out = append(out, g.out[n]...)
	for _, e := range g.in[n] {
		if !slices.Contains(out, e) {
			out = append(out, e)
		}
	}
	slices.Sort(out)
	return out
}

// BranchChildren returns the branch nodes anchored on n, ordered by handle.
func (g *Graph) BranchChildren(n NodeID) []NodeID {
	var out []NodeID
	for _, id := range g.Incident(n) {
		e := &g.edges[id]
		if e.Kind != BranchEdge {
			continue
		}
		other := e.Other(n)
		if other != n && g.nodes[other].Role == Branch && g.nodes[n].Role == Backbone {
			out = append(out, other)
		}
	}
	slices.Sort(out)
	return out
}

// Anchor returns the backbone node a branch node hangs off, or None.
func (g *Graph) Anchor(n NodeID) NodeID {
	node, ok := g.node(n)
	if !ok || node.Role != Branch {
		return None
	}
	for _, id := range g.Incident(n) {
		e := &g.edges[id]
		if e.Kind == BranchEdge && g.nodes[e.Other(n)].Role == Backbone {
			return e.Other(n)
		}
	}
	return None
}

// PairPartner returns the node paired with n through a PAIR edge, or None.
func (g *Graph) PairPartner(n NodeID) (NodeID, EdgeID) {
	for _, id := range g.Incident(n) {
		if g.edges[id].Kind == Pair {
			return g.edges[id].Other(n), id
		}
	}
	return None, None
}

// Clone returns a deep copy. Handles remain valid in the copy.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes:      slices.Clone(g.nodes),
		edges:      slices.Clone(g.edges),
		components: slices.Clone(g.components),
		out:        make([][]EdgeID, len(g.out)),
		in:         make([][]EdgeID, len(g.in)),
	}
	for i := range c.nodes {
		c.nodes[i].Ports = slices.Clone(c.nodes[i].Ports)
	}
	for i := range c.components {
		c.components[i].Members = slices.Clone(c.components[i].Members)
	}
	for i := range g.out {
		c.out[i] = slices.Clone(g.out[i])
		c.in[i] = slices.Clone(g.in[i])
	}
	return c
}

func (g *Graph) validNode(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes) && g.nodes[id].alive
}

func (g *Graph) node(id NodeID) (*Node, bool) {
	if !g.validNode(id) {
		return nil, false
	}
	return &g.nodes[id], true
}

func (g *Graph) edge(id EdgeID) (*Edge, bool) {
	if id < 0 || int(id) >= len(g.edges) || !g.edges[id].alive {
		return nil, false
	}
	return &g.edges[id], true
}

func (g *Graph) component(id ComponentID) (*Component, bool) {
	if id < 0 || int(id) >= len(g.components) || !g.components[id].alive {
		return nil, false
	}
	return &g.components[id], true
}
