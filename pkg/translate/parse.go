package translate

import (
	"fmt"

	"github.com/matzehuels/helmdraw/pkg/errors"
	"github.com/matzehuels/helmdraw/pkg/graph"
	"github.com/matzehuels/helmdraw/pkg/monomer"
	"github.com/matzehuels/helmdraw/pkg/notation"
)

// Parse parses text and builds its graph, resolving monomers against db.
func Parse(text string, db monomer.Database) (*graph.Manager, error) {
	doc, err := notation.Parse(text)
	if err != nil {
		return nil, err
	}
	return Build(doc, db)
}

// Build converts a parsed notation document into a graph.
func Build(doc *notation.Document, db monomer.Database) (*graph.Manager, error) {
	g := graph.New()
	m := graph.NewManager(g)
	m.Version = doc.Version

	// positions[polymer index][pos-1] -> node
	positions := make([][]graph.NodeID, len(doc.Polymers))
	index := make(map[string]int, len(doc.Polymers))

	for i, p := range doc.Polymers {
		index[p.ID] = i
		comp := g.AddComponent(graph.Component{Name: p.ID, Polymer: p.Type, Order: i})

		prev := graph.NodeID(graph.None)
		anchor := graph.NodeID(graph.None)
		for pos, u := range p.Units {
			mon, ok := db.Lookup(p.Type, u.Symbol)
			if !ok {
				return nil, errors.Unresolved(string(p.Type), u.Symbol)
			}
			role := graph.Backbone
			if u.Branch {
				role = graph.Branch
			}
			if (mon.Role == monomer.Branch) != u.Branch {
				return nil, errors.Invariant("%s %s cannot be used as a %s monomer", p.Type, u.Symbol, role).
					WithFragment(p.ID)
			}
			id, err := g.AddNode(graph.Node{
				Symbol:    mon.Symbol,
				Polymer:   p.Type,
				Kind:      mon.Kind,
				Ports:     mon.Ports,
				Role:      role,
				Component: comp,
				Position:  pos + 1,
			})
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "add node %s", u.Symbol)
			}
			positions[i] = append(positions[i], id)

			if u.Branch {
				if _, err := g.AddEdge(graph.Edge{
					Kind: graph.BranchEdge, Src: anchor, SrcPort: monomer.R3, Tgt: id, TgtPort: monomer.R1,
				}); err != nil {
					return nil, linkError(err, p.ID, pos+1).WithNode(int(id))
				}
				continue
			}
			if prev != graph.None {
				if _, err := g.AddEdge(graph.Edge{
					Kind: graph.Regular, Src: prev, SrcPort: monomer.R2, Tgt: id, TgtPort: monomer.R1,
				}); err != nil {
					return nil, linkError(err, p.ID, pos+1).WithNode(int(id))
				}
			}
			prev, anchor = id, id
		}
	}

	for _, c := range doc.Connections {
		l := graph.Link{
			Src: positions[index[c.From]][c.FromPos-1], SrcPort: c.FromPort,
			Tgt: positions[index[c.To]][c.ToPos-1], TgtPort: c.ToPort,
		}
		if _, err := g.Connect(l); err != nil {
			return nil, linkError(err, connectionText(c), 0).WithNode(int(l.Src))
		}
	}

	for _, p := range doc.Pairs {
		src := positions[index[p.From]][p.FromPos-1]
		tgt := positions[index[p.To]][p.ToPos-1]
		s, _ := g.Node(src)
		t, _ := g.Node(tgt)
		if s.Kind != monomer.Base || t.Kind != monomer.Base {
			return nil, errors.Invariant("pair between %s and %s; pairs join bases only", s.Kind, t.Kind).
				WithFragment(pairText(p)).WithNode(int(src))
		}
		if _, err := g.Connect(graph.Link{Src: src, Tgt: tgt, Pair: true}); err != nil {
			return nil, linkError(err, pairText(p), 0)
		}
	}

	for _, a := range doc.Annotations {
		i := index[a.Polymer]
		if a.Pos == 0 {
			c, _ := g.Component(graph.ComponentID(i))
			c.Annotation = a.Text
			continue
		}
		n, _ := g.Node(positions[i][a.Pos-1])
		n.Annotation = a.Text
	}

	for i, p := range doc.Polymers {
		first := positions[i][0]
		head := g.ChainHead(first, nil)
		if head == graph.None || g.IsCyclic(first, nil) {
			head = first
		}
		m.AddStartingNode(m.StartCount(), head, graph.DefaultTerminal(p.Type))
	}

	m.Reconcile()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func linkError(err error, fragment string, pos int) *errors.Error {
	if pos > 0 {
		return errors.Wrap(errors.ErrCodeStructuralInvariant, err, "cannot link monomer at position %d", pos).WithFragment(fragment)
	}
	return errors.Wrap(errors.ErrCodeStructuralInvariant, err, "cannot link monomers").WithFragment(fragment)
}

func connectionText(c notation.Connection) string {
	return fmt.Sprintf("%s,%s,%d:%s-%d:%s", c.From, c.To, c.FromPos, c.FromPort, c.ToPos, c.ToPort)
}

func pairText(p notation.Pair) string {
	return fmt.Sprintf("%s,%s,%d:pair-%d:pair", p.From, p.To, p.FromPos, p.ToPos)
}
