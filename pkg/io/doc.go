// Package io provides JSON import and export for monomer graphs.
//
// # Overview
//
// Notation is the interchange format for structures, but it hides the
// graph the tools work on: node handles, roles, ports and edge kinds. This
// package dumps that graph as JSON for inspection and for tools that want
// to consume it directly, and reads it back.
//
// # JSON Format
//
//	{
//	  "chains": [{"id": "PEPTIDE1", "polymer": "PEPTIDE", "start": 0, "terminal": "N"}],
//	  "nodes": [
//	    {"id": 0, "chain": "PEPTIDE1", "position": 1, "symbol": "A", "polymer": "PEPTIDE",
//	     "kind": "amino_acid", "role": "BACKBONE", "ports": ["R1", "R2"]},
//	    ...
//	  ],
//	  "edges": [{"kind": "REGULAR", "from": 0, "to": 1, "from_port": "R2", "to_port": "R1"}]
//	}
//
// Chains are listed in starting-node order. Pair edges carry no ports.
//
// # Import
//
// Use [ImportJSON] to read a graph from a file path, or [ReadJSON] to read
// from any io.Reader. Both rebuild the starting-node list from the chains
// and reject input that breaks a structural invariant, so an imported
// document can be edited and laid out like a parsed one.
//
// # Export
//
// Use [ExportJSON] to write a graph to a file, or [WriteJSON] to write to any
// io.Writer. Exporting, importing and serializing gives back the notation
// the graph was exported from.
//
// # Layout Export
//
// This package exports the logical graph only. For coordinates, build a
// diagram.Drawing and write it with pkg/diagram.
package io
