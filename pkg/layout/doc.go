// Package layout turns a structure graph into 2D schematic coordinates.
//
// # Overview
//
// A layout pass reads the graph and its starting-node list and writes a
// coordinate and a flipped flag into every node. Nothing else in the graph
// changes, and running the pass again on the same graph reproduces the same
// numbers.
//
// # Motifs
//
// The drawing follows one of a closed set of motifs, picked by [Classify]
// from the pairing pattern alone:
//
//   - [Linear]: chains side by side, one row each
//   - [Hairpin]: one strand folded back on itself around a loop
//   - [Dumbbell]: one strand forming a duplex with a loop at each end
//   - [Complementary]: separate strands paired as antiparallel duplexes
//
// A structure that fits none of them (interleaved pairs, more than two stems)
// is drawn as [Linear] and the [Result] carries a LAYOUT_UNSUPPORTED_MOTIF
// warning. Layout never fails on a valid graph.
//
// Chemical modifiers are placed after the motif. A modifier bonded to the
// free end of a chain is docked in line with it; any other modifier floats
// below the drawing.
//
// # Primitives
//
// The motifs are built from a few exported helpers that operate on node
// subsets: [PlaceLine], [Rotate180], [Shift], [VerticalShift], [PlaceLoop],
// [LoopBounds] and [RouteEdge]. Geometry uses gonum's r2 vectors. Angles are
// radians, counter-clockwise from +x, in a y-down drawing space; coordinates
// compare equal within [Epsilon].
package layout
