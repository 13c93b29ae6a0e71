package translate

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/matzehuels/helmdraw/pkg/graph"
	"github.com/matzehuels/helmdraw/pkg/monomer"
	"github.com/matzehuels/helmdraw/pkg/notation"
)

// Serialize writes the canonical notation for m.
func Serialize(m *graph.Manager) string {
	return notation.Format(ToDocument(m))
}

// Canonical parses text and returns its canonical form.
func Canonical(text string, db monomer.Database) (string, error) {
	m, err := Parse(text, db)
	if err != nil {
		return "", err
	}
	return Serialize(m), nil
}

// ref locates a node in the serialized output.
type ref struct {
	chain int // index in the starting-node list
	id    string
	pos   int
}

func (r ref) compare(o ref) int {
	return cmp.Or(cmp.Compare(r.chain, o.chain), cmp.Compare(r.pos, o.pos))
}

// ToDocument converts m into a notation document in canonical order.
func ToDocument(m *graph.Manager) *notation.Document {
	g := m.Graph()
	doc := &notation.Document{Version: m.Version}

	refs := make(map[graph.NodeID]ref)
	implicit := make(map[graph.EdgeID]bool)
	counters := make(map[monomer.Polymer]int)

	for chain, s := range m.Starts() {
		head, _ := g.Node(s.Node)
		id := canonicalID(counters, head.Polymer)

		p := notation.Polymer{ID: id, Type: head.Polymer}
		backbone := g.TraverseChain(s.Node, graph.None, nil)
		for i, n := range backbone {
			node, _ := g.Node(n)
			p.Units = append(p.Units, notation.Unit{Symbol: node.Symbol})
			refs[n] = ref{chain, id, len(p.Units)}
			if i+1 < len(backbone) {
				implicit[regularEdge(g, n, backbone[i+1])] = true
			}
			for _, b := range g.BranchChildren(n) {
				bn, _ := g.Node(b)
				p.Units = append(p.Units, notation.Unit{Symbol: bn.Symbol, Branch: true})
				refs[b] = ref{chain, id, len(p.Units)}
				implicit[anchorEdge(g, n, b)] = true
			}
		}
		doc.Polymers = append(doc.Polymers, p)

		if c, ok := g.Component(head.Component); ok && c.Annotation != "" {
			doc.Annotations = append(doc.Annotations, notation.Annotation{Polymer: id, Text: c.Annotation})
		}
	}

	var nodeAnns []notation.Annotation
	for n, r := range refs {
		if node, _ := g.Node(n); node.Annotation != "" {
			nodeAnns = append(nodeAnns, notation.Annotation{Polymer: r.id, Pos: r.pos, Text: node.Annotation})
		}
	}
	slices.SortFunc(nodeAnns, func(a, b notation.Annotation) int {
		return cmp.Or(cmp.Compare(chainOf(doc, a.Polymer), chainOf(doc, b.Polymer)), cmp.Compare(a.Pos, b.Pos))
	})
	doc.Annotations = append(doc.Annotations, nodeAnns...)

	type link struct {
		from, to         ref
		fromPort, toPort monomer.Port
	}
	var conns, pairs []link
	for _, id := range g.Edges() {
		if implicit[id] {
			continue
		}
		e, _ := g.Edge(id)
		l := link{from: refs[e.Src], to: refs[e.Tgt], fromPort: e.SrcPort, toPort: e.TgtPort}
		if c := l.from.compare(l.to); c > 0 || (c == 0 && l.fromPort > l.toPort) {
			l.from, l.to = l.to, l.from
			l.fromPort, l.toPort = l.toPort, l.fromPort
		}
		if e.Kind == graph.Pair {
			pairs = append(pairs, l)
		} else {
			conns = append(conns, l)
		}
	}
	byEndpoints := func(a, b link) int {
		return cmp.Or(a.from.compare(b.from), a.to.compare(b.to),
			cmp.Compare(a.fromPort, b.fromPort), cmp.Compare(a.toPort, b.toPort))
	}
	slices.SortFunc(conns, byEndpoints)
	slices.SortFunc(pairs, byEndpoints)

	for _, l := range conns {
		doc.Connections = append(doc.Connections, notation.Connection{
			From: l.from.id, FromPos: l.from.pos, FromPort: l.fromPort,
			To: l.to.id, ToPos: l.to.pos, ToPort: l.toPort,
		})
	}
	for _, l := range pairs {
		doc.Pairs = append(doc.Pairs, notation.Pair{From: l.from.id, FromPos: l.from.pos, To: l.to.id, ToPos: l.to.pos})
	}
	return doc
}

// Positions maps each canonical polymer identifier to its nodes in position
// order, so that position i (1-based) is nodes[i-1]. The identifiers match
// those written by [Serialize].
func Positions(m *graph.Manager) map[string][]graph.NodeID {
	g := m.Graph()
	out := make(map[string][]graph.NodeID)
	counters := make(map[monomer.Polymer]int)
	for _, s := range m.Starts() {
		head, _ := g.Node(s.Node)
		out[canonicalID(counters, head.Polymer)] = g.ChainWithBranches(s.Node, nil)
	}
	return out
}

// Ref returns the canonical "ID:pos" reference of node n.
func Ref(m *graph.Manager, n graph.NodeID) (string, bool) {
	for id, nodes := range Positions(m) {
		if i := slices.Index(nodes, n); i >= 0 {
			return id + ":" + strconv.Itoa(i+1), true
		}
	}
	return "", false
}

func canonicalID(counters map[monomer.Polymer]int, p monomer.Polymer) string {
	counters[p]++
	return string(p) + strconv.Itoa(counters[p])
}

// regularEdge returns the REGULAR edge a -> b.
func regularEdge(g *graph.Graph, a, b graph.NodeID) graph.EdgeID {
	for _, id := range g.Out(a) {
		if e, _ := g.Edge(id); e.Kind == graph.Regular && e.Tgt == b {
			return id
		}
	}
	return graph.None
}

// anchorEdge returns the BRANCH edge between backbone node a and its branch b.
func anchorEdge(g *graph.Graph, a, b graph.NodeID) graph.EdgeID {
	for _, id := range g.Incident(a) {
		if e, _ := g.Edge(id); e.Kind == graph.BranchEdge && e.Other(a) == b {
			return id
		}
	}
	return graph.None
}

func chainOf(doc *notation.Document, id string) int {
	return slices.IndexFunc(doc.Polymers, func(p notation.Polymer) bool { return p.ID == id })
}
