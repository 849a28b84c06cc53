// Package render draws architecture diagrams as SVG.
//
// # Overview
//
// Two renderers are provided:
//
//   - [Diagram] draws a [layout.Result] directly. It never fails and honours
//     whichever layout strategy produced the positions, including the grid
//     fallback.
//   - [ToDOT] and [RenderSVG] hand the whole graph to Graphviz and let it
//     position and draw everything.
//
// Both colour systems and connections by their health in the selected
// environment (see [HealthColor]).
//
// # Usage
//
//	res, _ := layout.New(logger).Layout(ctx, systems, conns)
//	svg := render.Diagram(res, systems, conns, render.WithEnv(catalog.EnvProd))
//
//	dot := render.ToDOT(systems, conns, render.Options{Env: catalog.EnvDev})
//	svg, err := render.RenderSVG(ctx, dot)
//
// [layout.Result]: github.com/matzehuels/archview/pkg/layout.Result
package render
