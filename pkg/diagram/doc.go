// Package diagram defines the serialized drawing handed to rendering
// surfaces.
//
// A [Drawing] is a plain value: placed nodes, edges as point paths, chain
// headers and the layout warnings. It is the wire format for JSON files,
// API responses and the layout cache, and the only input the renderers in
// pkg/render read.
//
// # Building
//
// Run the layout and convert its result:
//
//	res, err := layout.Layout(m, layout.Options{})
//	d := diagram.Build(m, res)
//
// Node ids are the graph's node handles, so a drawing can be matched back
// to the document it was built from. Each node also carries its canonical
// "CHAIN:pos" reference.
//
// # Serialization
//
//	data, _ := diagram.Marshal(d)       // Drawing -> []byte
//	d, err := diagram.Unmarshal(data)   // []byte -> Drawing, validated
//	diagram.WriteFile(d, "out.json")
//
// Decoding rejects drawings whose edges or loops refer to nodes that are
// not listed.
//
// # Constants
//
// This package is the single source of truth for output format and style
// names:
//
//	diagram.FormatSVG    // "svg"
//	diagram.StyleSimple  // "simple"
package diagram
