// Package graph provides the monomer graph and the starting-node manager
// that keeps it consistent across edits.
//
// # Overview
//
// A parsed structure is a graph of monomer nodes joined by edges of four
// kinds:
//
//   - REGULAR: backbone bonds, prev:R2 -> next:R1
//   - BRANCH: a base hanging off its sugar, or a side-chain cross-link
//   - PAIR: complementary base pairing (not a bond, uses no ports)
//   - CHEM: a link to a chemical modifier
//
// Nodes, edges and components live in arenas addressed by integer handles
// ([NodeID], [EdgeID], [ComponentID]). Attributes are plain struct fields;
// there are no side tables keyed by identity.
//
// Components (hypernodes) group the nodes of one chain. They are a separate
// table joined to nodes through [Node.Component], with an ordered member list
// per component.
//
// # Traversal
//
// Chain walks ([Graph.TraverseChain], [Graph.ChainHead], [Graph.ChainTail])
// follow REGULAR edges only. Every walk takes an [EdgeFilter], so callers can
// ask "what would the chain look like without this edge" without mutating
// the graph:
//
//	head := g.ChainHead(n, graph.Without(e))
//
// # Starting Nodes
//
// [Manager] owns the starting-node list: one entry per REGULAR component
// holding the component's head and a terminal annotation. Entry order drives
// serialization and layout order. Edits go through [Manager.Apply], which
// works on a clone and commits only when [Manager.Validate] passes:
//
//	err := m.Apply(func(work *graph.Manager) error {
//	    return work.Graph().RemoveEdge(e)
//	})
//
// # Concurrency
//
// Neither Graph nor Manager is safe for concurrent use. Callers serialize
// edits per document.
package graph
