// Package nodelink lays out class, ER and flowchart diagrams as node-link
// graphs using Graphviz.
//
// # Overview
//
// [ToDOT] converts a parsed [ir.Diagram] to Graphviz DOT source. Classes and
// entities become boxes listing their members or columns, flowchart nodes
// keep their shape, and relationship arrowheads follow the relation kind
// (hollow triangle for inheritance, diamonds for aggregation and composition,
// crow's feet for ER cardinalities).
//
// [Compute] runs the dot engine in-process and reads node boxes and edge
// paths back from the xdot output:
//
//	l, err := nodelink.Compute(ctx, d)
//	for _, n := range l.Nodes {
//	    fmt.Println(n.ID, n.X, n.Y, n.Width, n.Height)
//	}
//
// Coordinates are converted to a top-left origin so they line up with the
// sequence layout.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz], which bundles Graphviz as
// WebAssembly, so no system installation is required.
package nodelink
