// Package layout assigns 2D positions to systems and routes connections
// between them.
//
// # Overview
//
// Two interchangeable [Strategy] implementations are provided:
//
//   - [Layered]: a left-to-right hierarchical layout computed by the Graphviz
//     dot engine (via [github.com/goccy/go-graphviz]). Nodes get a fixed
//     120x60 footprint; edges get the spline control points Graphviz routes.
//   - [Grid]: a deterministic square-ish grid that needs no external
//     engine. Explicit x/y hints on a system win over its grid slot.
//
// [Fallback] composes them: the primary strategy is tried first and any
// error or panic degrades to the secondary with a warning log. The caller
// always receives a valid [Result].
//
// # Usage
//
//	engine := layout.New(logger)
//	res, _ := engine.Layout(ctx, systems, connections)
//	for _, n := range res.Nodes {
//	    fmt.Println(n.ID, n.X, n.Y)
//	}
//
// # Coordinates
//
// All coordinates use a top-left origin with y growing downwards. Node X/Y
// are centres. Connections whose endpoints are not in the system list are
// still reported, with an empty point list; renderers must skip them.
package layout
