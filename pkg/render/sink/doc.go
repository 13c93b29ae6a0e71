// Package sink writes laid-out drawings as SVG, PDF or PNG.
//
// # SVG
//
// [RenderSVG] draws a [diagram.Drawing] as a standalone document: edges
// first, then one circle per monomer with its symbol, then terminal labels.
// Coordinates are moved so the drawing's bounds start at the margin; no
// other geometry is computed here.
//
//	svg := sink.RenderSVG(d, sink.WithLoopGuides(), sink.WithWarnings())
//
// Edge kinds are told apart by stroke: backbone bonds are thick, branch
// bonds thin, base pairs dashed and modifier links dotted. Routed edges are
// drawn through all their points.
//
// # Styles
//
// A [Style] controls how nodes, edges and labels look. [Simple] colors
// monomers by kind and base; [Outline] is black on white for print. Use
// [StyleFor] to look one up by name.
//
// # PDF and PNG
//
// [RenderPDF] and [RenderPNG] convert the SVG through render.ToPDF and
// render.ToPNG, which need rsvg-convert on PATH.
//
// [diagram.Drawing]: github.com/matzehuels/helmdraw/pkg/diagram.Drawing
package sink
