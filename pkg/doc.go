// Package pkg provides the core libraries of helmdraw.
//
// # Overview
//
// Helmdraw reads HELM-style notation for peptides, nucleic acids and
// chemical modifiers, turns it into a graph of monomers, edits that graph
// while keeping its notation canonical, and lays it out as a 2D schematic.
//
// # Architecture
//
// The typical data flow:
//
//	notation text
//	     ↓
//	[notation] package (tokenize and parse the text)
//	     ↓
//	[translate] package (resolve monomers, build the graph)
//	     ↓
//	[edit] package (delete, replace, connect)
//	     ↓
//	[layout] package (classify the motif, place nodes)
//	     ↓
//	[diagram] + [render] packages (JSON, SVG, DOT, PDF, PNG)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/helmdraw/pkg/diagram"
//	    "github.com/matzehuels/helmdraw/pkg/layout"
//	    "github.com/matzehuels/helmdraw/pkg/monomer"
//	    "github.com/matzehuels/helmdraw/pkg/render/sink"
//	    "github.com/matzehuels/helmdraw/pkg/translate"
//	)
//
//	// 1. Parse notation into a monomer graph
//	m, _ := translate.Parse("RNA1{R(A)P.R(C)P.R(G)}$$$$", monomer.Default())
//
//	// 2. Lay it out
//	res, _ := layout.Layout(m, layout.Options{})
//
//	// 3. Render to SVG
//	svg := sink.RenderSVG(diagram.Build(m, res))
//
// Most callers use [pipeline] instead, which adds caching and the
// remaining output formats.
//
// # Main Packages
//
// ## Structure
//
// [notation] - Grammar of the notation: polymer blocks, connections, pairs
// and annotations. Parsing and formatting are exact inverses on canonical
// text.
//
// [monomer] - The monomer database: symbols, polymer types, attachment
// ports. A default library is embedded; more can be loaded from TOML files
// or URLs.
//
// [graph] - The monomer graph and its manager, which owns the list of chain
// starts and keeps components consistent after every edit.
//
// [translate] - Conversion between notation documents and graphs, including
// canonical serialization.
//
// [edit] - Atomic structural edits. A failed edit leaves the graph as it
// was.
//
// ## Drawing
//
// [layout] - Motif classification (linear, hairpin, dumbbell,
// complementary) and node placement.
//
// [diagram] - The laid-out drawing exchanged between layout and renderers.
//
// [render] - Schematic SVG ([render/sink]) and Graphviz node-link diagrams
// ([render/nodelink]), with PDF and PNG conversion.
//
// ## Orchestration
//
// [pipeline] - Parse → layout → render with caching, used by the CLI and
// the HTTP API.
//
// [document] - Structures kept open for editing across API requests.
//
// [cache] - File and Redis caches plus content-addressed keys.
//
// ## Support
//
// [errors] - Structured errors with machine-readable codes.
//
// [observability] - Hooks for logging or metrics around parse, edit,
// layout, render, cache and HTTP events.
//
// [io] - JSON import and export of monomer graphs.
//
// [buildinfo] - Version information injected at build time.
//
// [notation]: https://pkg.go.dev/github.com/matzehuels/helmdraw/pkg/notation
// [monomer]: https://pkg.go.dev/github.com/matzehuels/helmdraw/pkg/monomer
// [graph]: https://pkg.go.dev/github.com/matzehuels/helmdraw/pkg/graph
// [translate]: https://pkg.go.dev/github.com/matzehuels/helmdraw/pkg/translate
// [edit]: https://pkg.go.dev/github.com/matzehuels/helmdraw/pkg/edit
// [layout]: https://pkg.go.dev/github.com/matzehuels/helmdraw/pkg/layout
// [diagram]: https://pkg.go.dev/github.com/matzehuels/helmdraw/pkg/diagram
// [render]: https://pkg.go.dev/github.com/matzehuels/helmdraw/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/helmdraw/pkg/render/sink
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/helmdraw/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/helmdraw/pkg/pipeline
// [document]: https://pkg.go.dev/github.com/matzehuels/helmdraw/pkg/document
// [cache]: https://pkg.go.dev/github.com/matzehuels/helmdraw/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/helmdraw/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/helmdraw/pkg/observability
// [io]: https://pkg.go.dev/github.com/matzehuels/helmdraw/pkg/io
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/helmdraw/pkg/buildinfo
package pkg
