// Package diagram models static node-link diagrams and encodes them as
// Graphviz DOT source.
//
// A [Graph] owns labeled nodes, directed edges and global rendering
// attributes. Nodes are declared with a [Style] preset, a named immutable
// bundle of shape, color and font attributes shared by every node of the same
// [Category]. Edges may repeat between the same pair of nodes and carry their
// own label and attributes.
//
// # Usage
//
//	actor := diagram.NewStyle("actor", diagram.CategoryActor, diagram.Attrs{"shape": "rect"})
//	g, err := diagram.NewBuilder("Example").
//	    Attr(diagram.Attrs{"rankdir": "TB"}).
//	    Node("Admin", "Admin", actor).
//	    Node("App", "Web App", actor).
//	    Edge("Admin", "App", "uses", nil).
//	    Build()
//	src := diagram.EncodeDOT(g)
//
// Layout and rasterization are left to Graphviz; see package render.
package diagram
