package edit

import (
	"github.com/matzehuels/helmdraw/pkg/errors"
	"github.com/matzehuels/helmdraw/pkg/graph"
	"github.com/matzehuels/helmdraw/pkg/monomer"
)

// Connect adds the bond or base pair described by l. Bond ports must exist
// and be free. Pairs join two distinct bases that are not paired yet.
func Connect(m *graph.Manager, l graph.Link) (*Result, error) {
	return commit(m, func(w *graph.Manager) error {
		g := w.Graph()
		src, ok := g.Node(l.Src)
		if !ok {
			return errors.New(errors.ErrCodeNotFound, "unknown node %d", l.Src).WithNode(int(l.Src))
		}
		tgt, ok := g.Node(l.Tgt)
		if !ok {
			return errors.New(errors.ErrCodeNotFound, "unknown node %d", l.Tgt).WithNode(int(l.Tgt))
		}
		if l.Src == l.Tgt {
			return errors.Invariant("cannot connect %s to itself", src.Symbol).WithNode(int(l.Src))
		}

		if l.Pair {
			for _, end := range []struct {
				id   graph.NodeID
				node *graph.Node
			}{{l.Src, src}, {l.Tgt, tgt}} {
				if end.node.Kind != monomer.Base {
					return errors.Invariant("pairs join bases only, %s is a %s", end.node.Symbol, end.node.Kind).WithNode(int(end.id))
				}
				if partner, _ := g.PairPartner(end.id); partner != graph.None {
					return errors.Invariant("base %s is already paired", end.node.Symbol).WithNode(int(end.id))
				}
			}
		} else {
			for _, end := range []struct {
				id   graph.NodeID
				node *graph.Node
				port monomer.Port
			}{{l.Src, src, l.SrcPort}, {l.Tgt, tgt, l.TgtPort}} {
				if !end.node.HasPort(end.port) {
					return errors.Invariant("%s has no port %s", end.node.Symbol, end.port).WithNode(int(end.id))
				}
				if end.node.Occupied(end.port) {
					return errors.Invariant("port %s of %s is already bonded", end.port, end.node.Symbol).WithNode(int(end.id))
				}
			}
		}

		if _, err := g.Connect(l); err != nil {
			return errors.Wrap(errors.ErrCodeStructuralInvariant, err, "connect %s and %s", src.Symbol, tgt.Symbol)
		}
		return nil
	})
}
