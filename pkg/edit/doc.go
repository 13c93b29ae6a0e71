// Package edit implements the structural edits a user can make to a parsed
// document: deleting nodes and edges, replacing a monomer, and adding a
// connection or base pair.
//
// # Commit or Reject
//
// Every edit runs through [graph.Manager.Apply]. The mutation happens on a
// clone; the clone is validated and only then swapped in. A failing edit
// leaves the document exactly as it was, so callers never observe a
// partially applied change.
//
// # Starting Nodes
//
// Deleting a REGULAR edge may split a chain in two. The fragment that lost
// its head receives a new starting node, inserted right after the parent
// chain's entry so output order stays predictable:
//
//	RNA1{R(A)P.R(C)P.R(G)}   delete P at position 3
//	RNA1{R(A)}|RNA2{R(C)P.R(G)}
//
// Opening a cyclic chain keeps its entry (and annotation) but moves it to the
// new head. Deleting a starting node hands its slot and terminal annotation
// to its successor.
//
// # Selection
//
// A branch node cannot outlive its anchor. Selecting a sugar selects the
// base hanging off it, and selecting the anchor bond of a base selects the
// base. [Expand] applies these rules; [Delete] calls it for you.
package edit
