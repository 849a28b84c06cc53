package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/archview/pkg/catalog"
	"github.com/matzehuels/archview/pkg/layout"
)

const diagramCSS = `
    .system rect { stroke: #1f2937; stroke-width: 1.5; }
    .system.highlight rect { stroke-width: 4; }
    .system text { font: 12px Helvetica, Arial, sans-serif; fill: #111827; }
    .connection path { fill: none; stroke-width: 2; }
    .connection text { font: 10px Helvetica, Arial, sans-serif; fill: #374151; }`

// DiagramOption customises [Diagram].
type DiagramOption func(*diagram)

type diagram struct {
	env       catalog.Env
	highlight map[string]bool
}

// WithEnv selects the environment used for health colours.
func WithEnv(env catalog.Env) DiagramOption { return func(d *diagram) { d.env = env } }

// WithHighlight draws the given systems with a heavy outline.
func WithHighlight(ids ...string) DiagramOption {
	return func(d *diagram) {
		for _, id := range ids {
			d.highlight[id] = true
		}
	}
}

// Diagram draws a computed layout as SVG. Nodes come from res; names, health
// and labels are looked up in systems and connections. Edges with no points
// are skipped.
func Diagram(res layout.Result, systems []catalog.System, connections []catalog.Connection, opts ...DiagramOption) []byte {
	d := diagram{env: catalog.DefaultEnv, highlight: make(map[string]bool)}
	for _, opt := range opts {
		opt(&d)
	}
	sysIdx := catalog.SystemIndex(systems)
	connIdx := catalog.ConnectionIndex(connections)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		res.Width, res.Height, res.Width, res.Height)
	buf.WriteString("  <defs>\n")
	buf.WriteString(`    <marker id="arrow" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="8" markerHeight="8" orient="auto-start-reverse"><path d="M 0 0 L 10 5 L 0 10 z" fill="#4b5563"/></marker>` + "\n")
	buf.WriteString("  </defs>\n")
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", diagramCSS)

	for _, e := range res.Edges {
		if len(e.Points) < 2 {
			continue
		}
		d.renderEdge(&buf, e, connIdx[e.ID])
	}
	for _, n := range res.Nodes {
		d.renderNode(&buf, n, sysIdx[n.ID])
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (d diagram) renderNode(buf *bytes.Buffer, n layout.Node, s catalog.System) {
	class := "system"
	if d.highlight[n.ID] {
		class += " highlight"
	}
	name := s.DisplayName()
	if name == "" {
		name = n.ID
	}
	fmt.Fprintf(buf, `  <g class="%s" id="system-%s">`+"\n", class, escape(n.ID))
	if s.Description != "" {
		fmt.Fprintf(buf, "    <title>%s</title>\n", escape(s.Description))
	}
	fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="8" fill="%s"/>`+"\n",
		n.X-n.Width/2, n.Y-n.Height/2, n.Width, n.Height, HealthColor(s.Status.Get(d.env)))
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
		n.X, n.Y, escape(name))
	buf.WriteString("  </g>\n")
}

func (d diagram) renderEdge(buf *bytes.Buffer, e layout.Edge, c catalog.Connection) {
	fmt.Fprintf(buf, `  <g class="connection" id="connection-%s">`+"\n", escape(e.ID))
	fmt.Fprintf(buf, `    <path d="%s" stroke="%s" marker-end="url(#arrow)"/>`+"\n",
		pathData(e.Points), HealthColor(c.Status.Get(d.env)))
	if label := edgeLabel(c); label != "" {
		mid := e.Points[len(e.Points)/2]
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" text-anchor="middle">%s</text>`+"\n", mid.X, mid.Y-6, escape(label))
	}
	buf.WriteString("  </g>\n")
}

// pathData draws Graphviz spline control points (1 + 3k points) as cubic
// Béziers and anything else as a polyline.
func pathData(pts []layout.Point) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "M %.1f %.1f", pts[0].X, pts[0].Y)
	if len(pts) > 2 && (len(pts)-1)%3 == 0 {
		for i := 1; i+2 < len(pts); i += 3 {
			fmt.Fprintf(&sb, " C %.1f %.1f, %.1f %.1f, %.1f %.1f",
				pts[i].X, pts[i].Y, pts[i+1].X, pts[i+1].Y, pts[i+2].X, pts[i+2].Y)
		}
		return sb.String()
	}
	for _, p := range pts[1:] {
		fmt.Fprintf(&sb, " L %.1f %.1f", p.X, p.Y)
	}
	return sb.String()
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
