package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/helmdraw/pkg/graph"
	"github.com/matzehuels/helmdraw/pkg/monomer"
)

type document struct {
	Version string  `json:"version,omitempty"`
	Chains  []chain `json:"chains"`
	Nodes   []node  `json:"nodes"`
	Edges   []edge  `json:"edges"`
}

type chain struct {
	ID         string `json:"id"`
	Polymer    string `json:"polymer"`
	Start      int    `json:"start"`
	Terminal   string `json:"terminal,omitempty"`
	Annotation string `json:"annotation,omitempty"`
}

type node struct {
	ID         int            `json:"id"`
	Chain      string         `json:"chain"`
	Position   int            `json:"position"`
	Symbol     string         `json:"symbol"`
	Polymer    string         `json:"polymer"`
	Kind       string         `json:"kind"`
	Role       string         `json:"role"`
	Ports      []monomer.Port `json:"ports"`
	Annotation string         `json:"annotation,omitempty"`
}

type edge struct {
	Kind     string       `json:"kind"`
	From     int          `json:"from"`
	To       int          `json:"to"`
	FromPort monomer.Port `json:"from_port,omitempty"`
	ToPort   monomer.Port `json:"to_port,omitempty"`
}

// WriteJSON encodes the monomer graph of m as JSON and writes it to w.
// The output lists chains in starting-node order, then every node and edge
// in handle order. It can be re-imported with [ReadJSON].
func WriteJSON(m *graph.Manager, w io.Writer) error {
	g := m.Graph()
	var out document
	out.Version = m.Version

	for _, s := range m.Starts() {
		head, _ := g.Node(s.Node)
		c := chain{Polymer: string(head.Polymer), Start: int(s.Node), Terminal: s.Annotation}
		if comp, ok := g.Component(head.Component); ok {
			c.ID, c.Annotation = comp.Name, comp.Annotation
		}
		out.Chains = append(out.Chains, c)
	}
	for _, id := range g.Nodes() {
		n, _ := g.Node(id)
		nd := node{
			ID:         int(id),
			Position:   n.Position,
			Symbol:     n.Symbol,
			Polymer:    string(n.Polymer),
			Kind:       string(n.Kind),
			Role:       n.Role.String(),
			Ports:      n.Ports,
			Annotation: n.Annotation,
		}
		if comp, ok := g.Component(n.Component); ok {
			nd.Chain = comp.Name
		}
		out.Nodes = append(out.Nodes, nd)
	}
	for _, id := range g.Edges() {
		e, _ := g.Edge(id)
		out.Edges = append(out.Edges, edge{
			Kind: e.Kind.String(), From: int(e.Src), To: int(e.Tgt),
			FromPort: e.SrcPort, ToPort: e.TgtPort,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes the monomer graph of m to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(m *graph.Manager, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(m, f)
}
