package layout

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/archview/pkg/catalog"
)

const samplePlain = `graph 1 4.4444 2.5
node n0 0.83333 1.25 1.6667 0.83333 "" solid box black lightgrey
node n1 "3.6111" 1.25 1.6667 0.83333 "" solid box black lightgrey
edge n0 n1 4 1.6667 1.25 2.1 1.25 2.4 1.25 2.7778 1.25 solid black
edge n0 n1 4 1.6667 1.1 2.1 1.0 2.4 1.0 2.7778 1.1 solid black
stop
`

func TestParsePlain(t *testing.T) {
	p, err := parsePlain([]byte(samplePlain))
	if err != nil {
		t.Fatalf("parsePlain() error = %v", err)
	}
	if p.scale != 1 || p.width != 4.4444 || p.height != 2.5 {
		t.Errorf("graph = %v %v %v", p.scale, p.width, p.height)
	}
	if len(p.nodes) != 2 {
		t.Fatalf("nodes = %d, want 2", len(p.nodes))
	}
	if p.nodes["n1"].x != 3.6111 {
		t.Errorf("quoted coordinate not parsed: %+v", p.nodes["n1"])
	}
	routes := p.edges[[2]string{"n0", "n1"}]
	if len(routes) != 2 || len(routes[0]) != 4 {
		t.Fatalf("routes = %v", routes)
	}
	if routes[1][1] != (Point{2.1, 1.0}) {
		t.Errorf("second route point = %v", routes[1][1])
	}
}

func TestParsePlainErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no graph", "node n0 1 1 1 1\nstop\n"},
		{"bad number", "graph 1 x 2\nstop\n"},
		{"short edge", "graph 1 2 2\nedge n0 n1 3 1 1\nstop\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parsePlain([]byte(tt.input)); err == nil {
				t.Error("parsePlain() should fail")
			}
		})
	}
}

func TestSplitPlain(t *testing.T) {
	got := splitPlain(`node "a b" 1 "say \"hi\"" ""`)
	want := []string{"node", "a b", "1", `say "hi"`, ""}
	if len(got) != len(want) {
		t.Fatalf("splitPlain = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAssembleFlipsAndScales(t *testing.T) {
	p, err := parsePlain([]byte(samplePlain))
	if err != nil {
		t.Fatal(err)
	}
	systems := []catalog.System{{ID: "web"}, {ID: "bff"}}
	conns := []catalog.Connection{
		{ID: "c1", From: "web", To: "bff"},
		{ID: "c2", From: "web", To: "bff"},
		{ID: "c3", From: "bff", To: "ghost"},
	}
	names := map[string]string{"web": "n0", "bff": "n1"}

	res := assemble(systems, conns, names, p)

	web, _ := res.Node("web")
	if !approx(web.X, 60) || !approx(web.Y, 90) {
		t.Errorf("web at (%v, %v), want (60, 90)", web.X, web.Y)
	}
	if !approx(res.Width, 4.4444*72+CanvasMargin) || !approx(res.Height, 2.5*72+CanvasMargin) {
		t.Errorf("canvas = %vx%v", res.Width, res.Height)
	}

	c1, _ := res.Edge("c1")
	c2, _ := res.Edge("c2")
	if len(c1.Points) != 4 || len(c2.Points) != 4 {
		t.Fatalf("parallel edges not routed: %v / %v", c1.Points, c2.Points)
	}
	if c1.Points[1] == c2.Points[1] {
		t.Error("parallel edges should receive distinct routes in input order")
	}

	c3, _ := res.Edge("c3")
	if len(c3.Points) != 0 || c3.Points == nil {
		t.Errorf("dangling edge points = %#v", c3.Points)
	}
}

func TestBuildDOT(t *testing.T) {
	systems := []catalog.System{{ID: `we"ird id`}, {ID: "bff"}}
	conns := []catalog.Connection{
		{ID: "c1", From: `we"ird id`, To: "bff"},
		{ID: "c2", From: "bff", To: "ghost"},
	}
	names := map[string]string{`we"ird id`: "n0", "bff": "n1"}

	dot := buildDOT(systems, conns, names)

	for _, want := range []string{"rankdir=LR", "n0 -> n1;", "fixedsize=true"} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "ghost") || strings.Contains(dot, "weird") {
		t.Errorf("DOT leaked ids or dangling edges:\n%s", dot)
	}
	if strings.Count(dot, "->") != 1 {
		t.Errorf("want exactly one edge:\n%s", dot)
	}
}

func TestLayeredEmpty(t *testing.T) {
	res, err := Layered{}.Layout(context.Background(), nil, []catalog.Connection{{ID: "c1", From: "a", To: "b"}})
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if len(res.Nodes) != 0 {
		t.Errorf("nodes = %v", res.Nodes)
	}
	if res.Width != DefaultWidth+CanvasMargin || res.Height != DefaultHeight+CanvasMargin {
		t.Errorf("canvas = %vx%v", res.Width, res.Height)
	}
	if len(res.Edges) != 1 || len(res.Edges[0].Points) != 0 {
		t.Errorf("edges = %+v", res.Edges)
	}
}

func TestLayeredCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (Layered{}).Layout(ctx, []catalog.System{{ID: "a"}}, nil); err == nil {
		t.Error("Layout() with canceled context should fail")
	}
}

func TestLayeredGraphviz(t *testing.T) {
	systems := []catalog.System{{ID: "web"}, {ID: "bff"}, {ID: "auth"}, {ID: "core"}}
	conns := []catalog.Connection{
		{ID: "c1", From: "web", To: "bff"},
		{ID: "c2", From: "bff", To: "auth"},
		{ID: "c3", From: "bff", To: "core"},
		{ID: "c4", From: "core", To: "missing"},
	}

	res, err := Layered{}.Layout(context.Background(), systems, conns)
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if len(res.Nodes) != 4 || len(res.Edges) != 4 {
		t.Fatalf("got %d nodes, %d edges", len(res.Nodes), len(res.Edges))
	}

	web, _ := res.Node("web")
	bff, _ := res.Node("bff")
	auth, _ := res.Node("auth")
	if !(web.X < bff.X && bff.X < auth.X) {
		t.Errorf("ranks not left-to-right: web=%v bff=%v auth=%v", web.X, bff.X, auth.X)
	}
	for _, n := range res.Nodes {
		if n.X < 0 || n.Y < 0 || n.X > res.Width || n.Y > res.Height {
			t.Errorf("node %s at (%v, %v) outside canvas %vx%v", n.ID, n.X, n.Y, res.Width, res.Height)
		}
	}

	c1, _ := res.Edge("c1")
	if len(c1.Points) < 2 {
		t.Errorf("c1 should be routed: %v", c1.Points)
	}
	c4, _ := res.Edge("c4")
	if len(c4.Points) != 0 {
		t.Errorf("dangling c4 should have no points: %v", c4.Points)
	}

	again, err := Layered{}.Layout(context.Background(), systems, conns)
	if err != nil {
		t.Fatal(err)
	}
	for i := range res.Nodes {
		if res.Nodes[i] != again.Nodes[i] {
			t.Errorf("layout not deterministic: %+v vs %+v", res.Nodes[i], again.Nodes[i])
		}
	}
}

func approx(a, b float64) bool {
	d := a - b
	return d < 0.01 && d > -0.01
}
