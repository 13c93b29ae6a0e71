package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/helmdraw/pkg/errors"
	"github.com/matzehuels/helmdraw/pkg/graph"
	"github.com/matzehuels/helmdraw/pkg/monomer"
)

var roleFromString = map[string]graph.Role{
	graph.Backbone.String(): graph.Backbone,
	graph.Branch.String():   graph.Branch,
}

var kindFromString = map[string]graph.EdgeKind{
	graph.Regular.String():    graph.Regular,
	graph.BranchEdge.String(): graph.BranchEdge,
	graph.Pair.String():       graph.Pair,
	graph.Chem.String():       graph.Chem,
}

// ReadJSON decodes a JSON graph written by [WriteJSON] from r and rebuilds
// the document.
//
// Node and edge ids in the input only need to be unique; the rebuilt graph
// assigns fresh handles. Chains are recreated in the listed order, each
// starting at its "start" node, and the result must pass the same
// structural checks as a parsed notation.
//
// ReadJSON returns an INVALID_INPUT error if the JSON is malformed or
// refers to unknown nodes, roles or edge kinds, and a STRUCTURAL_INVARIANT
// error if the rebuilt graph breaks an invariant. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*graph.Manager, error) {
	var data document
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode")
	}

	g := graph.New()
	comps := make(map[string]graph.ComponentID)
	component := func(name string, p monomer.Polymer) graph.ComponentID {
		if id, ok := comps[name]; ok {
			return id
		}
		id := g.AddComponent(graph.Component{Name: name, Polymer: p, Order: len(comps)})
		comps[name] = id
		return id
	}
	for _, c := range data.Chains {
		id := component(c.ID, monomer.Polymer(c.Polymer))
		if comp, ok := g.Component(id); ok {
			comp.Annotation = c.Annotation
		}
	}

	handles := make(map[int]graph.NodeID, len(data.Nodes))
	for _, n := range data.Nodes {
		if _, dup := handles[n.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate node %d", n.ID).WithNode(n.ID)
		}
		role, ok := roleFromString[n.Role]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "node %d: unknown role %q", n.ID, n.Role).WithNode(n.ID)
		}
		p := monomer.Polymer(n.Polymer)
		if !p.Valid() {
			return nil, errors.New(errors.ErrCodeInvalidInput, "node %d: unknown polymer %q", n.ID, n.Polymer).WithNode(n.ID)
		}
		id, err := g.AddNode(graph.Node{
			Symbol:     n.Symbol,
			Polymer:    p,
			Kind:       monomer.Kind(n.Kind),
			Ports:      n.Ports,
			Role:       role,
			Component:  component(n.Chain, p),
			Position:   n.Position,
			Annotation: n.Annotation,
		})
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", n.ID, err)
		}
		handles[n.ID] = id
	}

	for i, e := range data.Edges {
		kind, ok := kindFromString[e.Kind]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edge %d: unknown kind %q", i, e.Kind).WithEdge(i)
		}
		src, okS := handles[e.From]
		tgt, okT := handles[e.To]
		if !okS || !okT {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edge %d->%d refers to an unknown node", e.From, e.To).WithEdge(i)
		}
		if _, err := g.AddEdge(graph.Edge{Kind: kind, Src: src, Tgt: tgt, SrcPort: e.FromPort, TgtPort: e.ToPort}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStructuralInvariant, err, "edge %d->%d", e.From, e.To).WithEdge(i)
		}
	}

	m := graph.NewManager(g)
	m.Version = data.Version
	for _, c := range data.Chains {
		start, ok := handles[c.Start]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "chain %s starts at unknown node %d", c.ID, c.Start)
		}
		m.AddStartingNode(m.StartCount(), start, c.Terminal)
	}
	m.Reconcile()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// ImportJSON reads a JSON file at path and returns the rebuilt document.
//
// ImportJSON returns the same validation errors as [ReadJSON], wrapped with
// the file path when the file cannot be opened.
func ImportJSON(path string) (*graph.Manager, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
