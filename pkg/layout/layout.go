package layout

import (
	"context"

	"github.com/matzehuels/archview/pkg/catalog"
)

// Geometry shared by all strategies, in layout units (1 unit = 1 SVG px).
const (
	NodeWidth     = 120.0
	NodeHeight    = 60.0
	RankSep       = 150.0
	NodeSep       = 100.0
	CanvasMargin  = 100.0
	GridSpacing   = 150.0
	DefaultWidth  = 800.0
	DefaultHeight = 600.0
)

// Strategy names reported in [Result.Strategy].
const (
	StrategyLayered = "layered"
	StrategyGrid    = "grid"
)

// Strategy computes a layout for a set of systems and connections.
//
// Implementations must accept an empty system list and connections whose
// endpoints are not among the systems.
type Strategy interface {
	Layout(ctx context.Context, systems []catalog.System, connections []catalog.Connection) (Result, error)
}

// Point is a position on the canvas.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a positioned system. X and Y are the centre of the node box.
type Node struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Edge is a routed connection. Points is empty when either endpoint could
// not be resolved.
type Edge struct {
	ID     string  `json:"id"`
	From   string  `json:"from"`
	To     string  `json:"to"`
	Points []Point `json:"points"`
}

// Result is the output of a layout run.
type Result struct {
	Nodes  []Node  `json:"nodes"`
	Edges  []Edge  `json:"edges"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Strategy names the strategy that produced the result.
	Strategy string `json:"strategy,omitempty"`
}

// Node returns the node with the given id.
func (r Result) Node(id string) (Node, bool) {
	for _, n := range r.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Edge returns the edge with the given connection id.
func (r Result) Edge(id string) (Edge, bool) {
	for _, e := range r.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return Edge{}, false
}

// uniqueSystems drops repeated system ids, keeping the first occurrence.
func uniqueSystems(systems []catalog.System) []catalog.System {
	seen := make(map[string]bool, len(systems))
	out := make([]catalog.System, 0, len(systems))
	for _, s := range systems {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		out = append(out, s)
	}
	return out
}

func danglingEdge(c catalog.Connection) Edge {
	return Edge{ID: c.ID, From: c.From, To: c.To, Points: []Point{}}
}
