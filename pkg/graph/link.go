package graph

import (
	"github.com/matzehuels/helmdraw/pkg/monomer"
)

// Link describes a connection to add between two existing nodes. Pair links
// ignore the port fields.
type Link struct {
	Src     NodeID
	SrcPort monomer.Port
	Tgt     NodeID
	TgtPort monomer.Port
	Pair    bool
}

// ClassifyLink decides the edge kind of a connection between two nodes:
//
//   - a chemical endpoint makes it CHEM
//   - an R2/R1 link between backbone nodes of the same component closes the
//     chain and is REGULAR
//   - anything else is a BRANCH cross-link
func (g *Graph) ClassifyLink(src NodeID, srcPort monomer.Port, tgt NodeID, tgtPort monomer.Port) EdgeKind {
	s, okS := g.node(src)
	t, okT := g.node(tgt)
	if !okS || !okT {
		return BranchEdge
	}
	if s.Polymer == monomer.Chem || t.Polymer == monomer.Chem {
		return Chem
	}
	backbonePorts := (srcPort == monomer.R2 && tgtPort == monomer.R1) ||
		(srcPort == monomer.R1 && tgtPort == monomer.R2)
	if backbonePorts && s.Component == t.Component && s.Role == Backbone && t.Role == Backbone {
		return Regular
	}
	return BranchEdge
}

// Connect classifies and adds the edge described by l. REGULAR edges are
// oriented R2 -> R1.
func (g *Graph) Connect(l Link) (EdgeID, error) {
	if l.Pair {
		return g.AddEdge(Edge{Kind: Pair, Src: l.Src, Tgt: l.Tgt})
	}
	kind := g.ClassifyLink(l.Src, l.SrcPort, l.Tgt, l.TgtPort)
	if kind == Regular && l.SrcPort == monomer.R1 {
		l.Src, l.Tgt = l.Tgt, l.Src
		l.SrcPort, l.TgtPort = l.TgtPort, l.SrcPort
	}
	return g.AddEdge(Edge{Kind: kind, Src: l.Src, SrcPort: l.SrcPort, Tgt: l.Tgt, TgtPort: l.TgtPort})
}
