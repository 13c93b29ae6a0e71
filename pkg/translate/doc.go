// Package translate converts between notation text and the monomer graph.
//
// [Parse] builds a [graph.Manager] from text: one component and one starting
// node per polymer, REGULAR edges between consecutive backbone monomers,
// BRANCH edges from each sugar to its base, and one edge per connection or
// pair token. Parsing is all-or-nothing: on any error no graph is returned.
//
// [Serialize] writes a graph back to text. The output is canonical: polymers
// follow the starting-node list, polymer identifiers are renumbered per type
// in that order, and connections, pairs and annotations are sorted, so two
// isomorphic graphs serialize to the same string regardless of edit history.
package translate
