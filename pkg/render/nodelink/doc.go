// Package nodelink renders the raw monomer graph as a node-link diagram.
//
// # Overview
//
// Where pkg/render/sink draws the schematic layout, this package hands the
// graph to Graphviz and lets it place the nodes. It is useful for
// inspecting structures the motif layout cannot draw well, and for checking
// what the parser built.
//
// # Usage
//
//	dot := nodelink.ToDOT(m, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)
//
// # DOT Format
//
// [ToDOT] writes an undirected graph with one cluster per chain. Node names
// are the graph handles ("n12"), labels are monomer symbols, branch
// monomers are double circles. The default engine is neato; set
// [Options].Engine to "dot" for a ranked layout.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
