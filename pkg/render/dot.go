package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/archview/pkg/catalog"
)

// Options configures Graphviz diagram generation.
type Options struct {
	// Env selects which environment's health colours the diagram.
	// Empty means catalog.DefaultEnv.
	Env catalog.Env

	// Highlight lists system ids drawn with a heavy outline.
	Highlight []string
}

// ToDOT converts systems and connections to Graphviz DOT source.
//
// Nodes are labelled with the system name and filled with their health
// colour. Edges are labelled with the connection label, or the protocol
// when there is no label. Connections whose endpoints are not among systems
// are skipped so Graphviz does not invent nodes for them.
func ToDOT(systems []catalog.System, connections []catalog.Connection, opts Options) string {
	env := opts.Env
	if env == "" {
		env = catalog.DefaultEnv
	}
	highlight := make(map[string]bool, len(opts.Highlight))
	for _, id := range opts.Highlight {
		highlight[id] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=12, width=1.6667, height=0.8333, fixedsize=true];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  ranksep=2.0833;\n")
	buf.WriteString("  nodesep=1.3889;\n")
	buf.WriteString("\n")

	known := make(map[string]bool, len(systems))
	for _, s := range systems {
		if known[s.ID] {
			continue
		}
		known[s.ID] = true
		attrs := []string{
			"label=" + quote(s.DisplayName()),
			"fillcolor=" + quote(HealthColor(s.Status.Get(env))),
		}
		if s.Description != "" {
			attrs = append(attrs, "tooltip="+quote(s.Description))
		}
		if highlight[s.ID] {
			attrs = append(attrs, "penwidth=3")
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", quote(s.ID), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, c := range connections {
		if !known[c.From] || !known[c.To] {
			continue
		}
		attrs := []string{
			"id=" + quote(c.ID),
			"color=" + quote(HealthColor(c.Status.Get(env))),
		}
		if label := edgeLabel(c); label != "" {
			attrs = append(attrs, "label="+quote(label))
		}
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n", quote(c.From), quote(c.To), strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func edgeLabel(c catalog.Connection) string {
	if c.Label != "" {
		return c.Label
	}
	return c.Protocol
}

// quote renders s as a DOT double-quoted string. DOT only treats \" as an
// escape, so backslashes are doubled to survive label escape processing.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return `"` + s + `"`
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
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
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// pixel-sized one so the SVG scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(root))
}
