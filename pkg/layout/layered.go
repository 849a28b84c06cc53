package layout

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/archview/pkg/catalog"
)

// pointsPerInch converts Graphviz inches to layout units.
const pointsPerInch = 72.0

// plainFormat is the Graphviz output format carrying raw coordinates.
const plainFormat graphviz.Format = "plain"

// Layered lays systems out left to right in ranks using the Graphviz dot
// engine. Output is deterministic for identical input.
type Layered struct{}

// Layout implements [Strategy].
func (Layered) Layout(ctx context.Context, systems []catalog.System, connections []catalog.Connection) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	systems = uniqueSystems(systems)
	if len(systems) == 0 {
		res := Result{
			Nodes:    []Node{},
			Edges:    make([]Edge, 0, len(connections)),
			Width:    DefaultWidth + CanvasMargin,
			Height:   DefaultHeight + CanvasMargin,
			Strategy: StrategyLayered,
		}
		for _, c := range connections {
			res.Edges = append(res.Edges, danglingEdge(c))
		}
		return res, nil
	}

	names := make(map[string]string, len(systems))
	for i, s := range systems {
		names[s.ID] = fmt.Sprintf("n%d", i)
	}

	out, err := runPlain(ctx, buildDOT(systems, connections, names))
	if err != nil {
		return Result{}, err
	}
	plain, err := parsePlain(out)
	if err != nil {
		return Result{}, err
	}
	return assemble(systems, connections, names, plain), nil
}

// buildDOT writes the digraph handed to Graphviz. Node names are synthetic
// ("n0", "n1", ...) so arbitrary system ids never need DOT escaping.
// Connections with an unknown endpoint are left out so Graphviz does not
// invent nodes for them.
func buildDOT(systems []catalog.System, connections []catalog.Connection, names map[string]string) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  ordering=out;\n")
	fmt.Fprintf(&buf, "  nodesep=%.4f;\n", NodeSep/pointsPerInch)
	fmt.Fprintf(&buf, "  ranksep=%.4f;\n", RankSep/pointsPerInch)
	fmt.Fprintf(&buf, "  node [shape=box, fixedsize=true, width=%.4f, height=%.4f, label=\"\"];\n",
		NodeWidth/pointsPerInch, NodeHeight/pointsPerInch)
	buf.WriteString("\n")

	for _, s := range systems {
		fmt.Fprintf(&buf, "  %s;\n", names[s.ID])
	}

	buf.WriteString("\n")
	for _, c := range connections {
		from, okFrom := names[c.From]
		to, okTo := names[c.To]
		if !okFrom || !okTo {
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s;\n", from, to)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func runPlain(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, plainFormat, &buf); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	return buf.Bytes(), nil
}

// assemble converts plain output into a Result with a top-left origin.
func assemble(systems []catalog.System, connections []catalog.Connection, names map[string]string, p plainGraph) Result {
	unit := pointsPerInch * p.scale
	flip := func(x, y float64) Point {
		return Point{X: x * unit, Y: (p.height - y) * unit}
	}

	width, height := DefaultWidth, DefaultHeight
	if p.width > 0 && p.height > 0 {
		width, height = p.width*unit, p.height*unit
	}

	res := Result{
		Nodes:    make([]Node, 0, len(systems)),
		Edges:    make([]Edge, 0, len(connections)),
		Width:    width + CanvasMargin,
		Height:   height + CanvasMargin,
		Strategy: StrategyLayered,
	}

	for _, s := range systems {
		pn, ok := p.nodes[names[s.ID]]
		if !ok {
			continue
		}
		c := flip(pn.x, pn.y)
		res.Nodes = append(res.Nodes, Node{ID: s.ID, X: c.X, Y: c.Y, Width: NodeWidth, Height: NodeHeight})
	}

	// Edges sharing a tail/head pair are handed out in the order Graphviz
	// reports them, which matches their order in the DOT source.
	next := make(map[[2]string]int)
	for _, c := range connections {
		from, okFrom := names[c.From]
		to, okTo := names[c.To]
		if !okFrom || !okTo {
			res.Edges = append(res.Edges, danglingEdge(c))
			continue
		}
		key := [2]string{from, to}
		routes := p.edges[key]
		i := next[key]
		next[key] = i + 1
		if i >= len(routes) {
			res.Edges = append(res.Edges, danglingEdge(c))
			continue
		}
		pts := make([]Point, len(routes[i]))
		for j, rp := range routes[i] {
			pts[j] = flip(rp.X, rp.Y)
		}
		res.Edges = append(res.Edges, Edge{ID: c.ID, From: c.From, To: c.To, Points: pts})
	}

	return res
}
