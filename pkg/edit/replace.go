package edit

import (
	"github.com/matzehuels/helmdraw/pkg/errors"
	"github.com/matzehuels/helmdraw/pkg/graph"
	"github.com/matzehuels/helmdraw/pkg/monomer"
)

// Replace swaps the monomer at node n for symbol. The replacement must come
// from the same polymer type, have the same kind and chain role, and offer
// every port the node currently has bonded. Edges and annotations stay.
func Replace(m *graph.Manager, db monomer.Database, n graph.NodeID, symbol string) (*Result, error) {
	if err := errors.ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	return commit(m, func(w *graph.Manager) error {
		g := w.Graph()
		node, ok := g.Node(n)
		if !ok {
			return errors.New(errors.ErrCodeNotFound, "unknown node %d", n).WithNode(int(n))
		}
		mon, ok := db.Lookup(node.Polymer, symbol)
		if !ok {
			return errors.Unresolved(string(node.Polymer), symbol).WithNode(int(n))
		}
		if mon.Kind != node.Kind {
			return errors.Invariant("cannot replace %s %s with %s %s", node.Kind, node.Symbol, mon.Kind, mon.Symbol).
				WithNode(int(n)).WithFragment(symbol)
		}
		if got, want := roleOf(mon), node.Role; got != want {
			return errors.Invariant("%s is a %v monomer, node %s is %v", mon.Symbol, got, node.Symbol, want).
				WithNode(int(n)).WithFragment(symbol)
		}
		for _, p := range node.OccupiedPorts() {
			if !mon.HasPort(p) {
				return errors.Invariant("%s has no port %s, which %s has bonded", mon.Symbol, p, node.Symbol).
					WithNode(int(n)).WithFragment(symbol)
			}
		}
		return g.SetSymbol(n, mon)
	})
}

// roleOf maps a monomer's library role onto its graph role. Terminal groups
// such as caps sit on the backbone.
func roleOf(mon monomer.Monomer) graph.Role {
	if mon.Role == monomer.Branch {
		return graph.Branch
	}
	return graph.Backbone
}
