package layout

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// plainGraph is the parsed Graphviz "plain" output. Coordinates are kept in
// inches with the bottom-left origin Graphviz uses.
type plainGraph struct {
	scale, width, height float64
	nodes                map[string]plainNode
	edges                map[[2]string][][]Point
}

type plainNode struct {
	x, y float64
}

// parsePlain reads the line-oriented plain format:
//
//	graph scale width height
//	node name x y width height label style shape color fillcolor
//	edge tail head n x1 y1 ... xn yn [label xl yl] style color
//	stop
func parsePlain(data []byte) (plainGraph, error) {
	p := plainGraph{
		scale: 1,
		nodes: make(map[string]plainNode),
		edges: make(map[[2]string][][]Point),
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	sawGraph := false
	lineNo := 0

	for sc.Scan() {
		lineNo++
		fields := splitPlain(sc.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "graph":
			v, err := floats(fields[1:], 3)
			if err != nil {
				return plainGraph{}, fmt.Errorf("plain line %d: %w", lineNo, err)
			}
			if v[0] > 0 {
				p.scale = v[0]
			}
			p.width, p.height = v[1], v[2]
			sawGraph = true

		case "node":
			if len(fields) < 4 {
				return plainGraph{}, fmt.Errorf("plain line %d: short node record", lineNo)
			}
			v, err := floats(fields[2:], 2)
			if err != nil {
				return plainGraph{}, fmt.Errorf("plain line %d: %w", lineNo, err)
			}
			p.nodes[fields[1]] = plainNode{x: v[0], y: v[1]}

		case "edge":
			if len(fields) < 4 {
				return plainGraph{}, fmt.Errorf("plain line %d: short edge record", lineNo)
			}
			n, err := strconv.Atoi(fields[3])
			if err != nil || n < 0 {
				return plainGraph{}, fmt.Errorf("plain line %d: bad point count %q", lineNo, fields[3])
			}
			v, err := floats(fields[4:], 2*n)
			if err != nil {
				return plainGraph{}, fmt.Errorf("plain line %d: %w", lineNo, err)
			}
			pts := make([]Point, n)
			for i := range pts {
				pts[i] = Point{X: v[2*i], Y: v[2*i+1]}
			}
			key := [2]string{fields[1], fields[2]}
			p.edges[key] = append(p.edges[key], pts)

		case "stop":
			if !sawGraph {
				return plainGraph{}, fmt.Errorf("plain output has no graph record")
			}
			return p, nil
		}
	}
	if err := sc.Err(); err != nil {
		return plainGraph{}, fmt.Errorf("read plain output: %w", err)
	}
	if !sawGraph {
		return plainGraph{}, fmt.Errorf("plain output has no graph record")
	}
	return p, nil
}

// splitPlain splits a plain record on whitespace, keeping double-quoted
// fields together and unquoting them.
func splitPlain(line string) []string {
	var (
		fields  []string
		cur     strings.Builder
		inQuote bool
		escaped bool
		started bool
	)
	flush := func() {
		if started {
			fields = append(fields, cur.String())
		}
		cur.Reset()
		started = false
	}

	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case inQuote && r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
			started = true
		case !inQuote && (r == ' ' || r == '\t'):
			flush()
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	flush()
	return fields
}

func floats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d numbers, got %d", n, len(fields))
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", fields[i])
		}
		out[i] = v
	}
	return out, nil
}
