// Package pkg provides the libraries behind archview, a viewer for system
// architecture catalogs.
//
// # Overview
//
// A catalog is a set of systems, the connections between them and the user
// journeys that cross those connections. archview loads a catalog, selects
// the part a viewer asked for (one journey, a set of layers, an environment)
// and lays it out as a left-to-right diagram.
//
// The typical data flow:
//
//	data root / MongoDB
//	         ↓
//	    [store] package (load systems, connections, journeys)
//	         ↓
//	    [consolidate] package (merge every journey into "all")
//	         ↓
//	    [catalog] package (select the visible systems and connections)
//	         ↓
//	    [layout] package (layered Graphviz layout, grid fallback)
//	         ↓
//	    [render] package (SVG)
//
// [pipeline] ties these steps together and caches rendered diagrams through
// [cache]. Both the CLI and the HTTP API go through [pipeline.Runner], so a
// view looks the same wherever it is requested.
//
// # Quick Start
//
//	s := store.NewFileStore("data", nil)
//	r := pipeline.NewRunner(s, nil, nil, nil, nil)
//	defer r.Close()
//
//	svg, err := r.RenderSVG(ctx, pipeline.Request{Journey: "all"})
//
// # Supporting Packages
//
// [errors] defines the error codes shared by every layer and their mapping to
// user-facing messages. [observability] exposes hook interfaces that the
// metrics package implements. [buildinfo] carries version information set at
// link time.
//
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/archview/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/archview/pkg/pipeline#Runner
// [cache]: https://pkg.go.dev/github.com/matzehuels/archview/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/archview/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/archview/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/archview/pkg/buildinfo
//
// [store]: https://pkg.go.dev/github.com/matzehuels/archview/pkg/store
// [consolidate]: https://pkg.go.dev/github.com/matzehuels/archview/pkg/consolidate
// [catalog]: https://pkg.go.dev/github.com/matzehuels/archview/pkg/catalog
// [layout]: https://pkg.go.dev/github.com/matzehuels/archview/pkg/layout
// [render]: https://pkg.go.dev/github.com/matzehuels/archview/pkg/render
package pkg
