// Package pipeline runs the load → consolidate → select → layout → render
// flow shared by the CLI and the HTTP API.
//
// # Architecture
//
// Every request works on its own [Snapshot] of the store: systems,
// connections and journeys are loaded once, the requested journey is
// resolved (consolidating all journeys when asked for "all"), the visible
// subset is selected and laid out. Nothing is shared between requests except
// the optional artifact cache, which is keyed by a hash of the exact input
// so it can never serve a diagram for different data.
//
// # Usage
//
//	runner := pipeline.NewRunner(store, nil, cache, nil, logger)
//	view, err := runner.View(ctx, pipeline.Request{Journey: "all"})
//	svg, hit, err := runner.RenderWithCacheInfo(ctx, pipeline.Request{Journey: "all", Env: catalog.EnvDev})
package pipeline

import (
	"strings"

	"github.com/matzehuels/archview/pkg/catalog"
	"github.com/matzehuels/archview/pkg/errors"
	"github.com/matzehuels/archview/pkg/layout"
)

// Render engines.
const (
	// EngineLayout draws the computed layout, so the diagram matches the
	// positions returned by the layout endpoint (grid fallback included).
	EngineLayout = "layout"

	// EngineGraphviz hands the selected graph to Graphviz for drawing.
	EngineGraphviz = "graphviz"
)

// DefaultEngine is the render engine used when none is requested.
const DefaultEngine = EngineLayout

// Request describes one view of the catalog.
type Request struct {
	// Journey is a journey id or path, "all" for the consolidated journey,
	// or empty for the whole catalog.
	Journey string

	// Layers restricts connections to those carrying one of these tags.
	Layers []string

	// Env selects health colours when rendering. Empty means catalog.DefaultEnv.
	Env catalog.Env

	// Engine selects the renderer. Empty means DefaultEngine.
	Engine string

	// Highlight lists system ids to emphasise when rendering.
	Highlight []string
}

// ValidateAndSetDefaults normalises r and reports invalid fields.
func (r *Request) ValidateAndSetDefaults() error {
	r.Journey = strings.TrimSpace(r.Journey)

	env, err := catalog.ParseEnv(string(r.Env))
	if err != nil {
		return err
	}
	r.Env = env

	switch r.Engine {
	case "":
		r.Engine = DefaultEngine
	case EngineLayout, EngineGraphviz:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown render engine %q (must be %s or %s)", r.Engine, EngineLayout, EngineGraphviz)
	}

	layers := make([]string, 0, len(r.Layers))
	for _, l := range r.Layers {
		if l = strings.TrimSpace(l); l != "" {
			layers = append(layers, l)
		}
	}
	r.Layers = layers
	return nil
}

// Snapshot is the catalog as loaded for a single request.
type Snapshot struct {
	Systems     []catalog.System       `json:"systems"`
	Connections []catalog.Connection   `json:"connections"`
	Journeys    []catalog.JourneyEntry `json:"journeys"`
}

// ListItems returns the journey list entries in path order.
func (s *Snapshot) ListItems() []catalog.JourneyListItem {
	items := make([]catalog.JourneyListItem, len(s.Journeys))
	for i, e := range s.Journeys {
		items[i] = e.ListItem()
	}
	return items
}

// ViewResult is a laid-out view.
type ViewResult struct {
	Journey     *catalog.Journey     `json:"journey,omitempty"`
	Layers      []string             `json:"layers"`
	Systems     []catalog.System     `json:"systems"`
	Connections []catalog.Connection `json:"connections"`
	Layout      layout.Result        `json:"layout"`
}

// SystemIDs returns the ids of the visible systems.
func (v *ViewResult) SystemIDs() []string {
	ids := make([]string, len(v.Systems))
	for i, s := range v.Systems {
		ids[i] = s.ID
	}
	return ids
}

// ConnectionIDs returns the ids of the visible connections.
func (v *ViewResult) ConnectionIDs() []string {
	ids := make([]string, len(v.Connections))
	for i, c := range v.Connections {
		ids[i] = c.ID
	}
	return ids
}
