// Package render turns drawings into image formats.
//
// # Overview
//
// Rendering is split by input:
//
//   - [sink]: schematic SVG from a laid-out [diagram.Drawing]
//   - [nodelink]: Graphviz DOT of the raw monomer graph, rendered in-process
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). Both renderers use them.
//
//	svg := sink.RenderSVG(d)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// Conversion fails with an UNSUPPORTED error when rsvg-convert is missing;
// check [Available] first to degrade gracefully.
//
// [diagram.Drawing]: github.com/matzehuels/helmdraw/pkg/diagram.Drawing
package render
