package layout

import (
	"context"
	"math"

	"github.com/matzehuels/archview/pkg/catalog"
)

// Grid places systems on a square-ish grid in input order.
//
// The grid has ceil(sqrt(n)) columns and slots are GridSpacing apart. A
// system's explicit X or Y hint replaces the corresponding grid coordinate.
// Edges are straight lines between node centres. Grid never fails.
type Grid struct{}

// Layout implements [Strategy].
func (Grid) Layout(ctx context.Context, systems []catalog.System, connections []catalog.Connection) (Result, error) {
	systems = uniqueSystems(systems)
	n := len(systems)

	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := 0
	if cols > 0 {
		rows = int(math.Ceil(float64(n) / float64(cols)))
	}

	res := Result{
		Nodes:    make([]Node, 0, n),
		Edges:    make([]Edge, 0, len(connections)),
		Width:    float64(cols)*GridSpacing + NodeWidth,
		Height:   float64(rows)*GridSpacing + NodeHeight,
		Strategy: StrategyGrid,
	}

	centres := make(map[string]Point, n)
	for i, s := range systems {
		col, row := 0, 0
		if cols > 0 {
			col, row = i%cols, i/cols
		}
		p := Point{
			X: float64(col)*GridSpacing + NodeWidth/2,
			Y: float64(row)*GridSpacing + NodeHeight/2,
		}
		if s.X != nil {
			p.X = *s.X
		}
		if s.Y != nil {
			p.Y = *s.Y
		}
		centres[s.ID] = p
		res.Nodes = append(res.Nodes, Node{ID: s.ID, X: p.X, Y: p.Y, Width: NodeWidth, Height: NodeHeight})
	}

	for _, c := range connections {
		from, okFrom := centres[c.From]
		to, okTo := centres[c.To]
		if !okFrom || !okTo {
			res.Edges = append(res.Edges, danglingEdge(c))
			continue
		}
		res.Edges = append(res.Edges, Edge{ID: c.ID, From: c.From, To: c.To, Points: []Point{from, to}})
	}

	return res, nil
}
