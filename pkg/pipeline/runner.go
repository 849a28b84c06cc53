package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archview/pkg/cache"
	"github.com/matzehuels/archview/pkg/catalog"
	"github.com/matzehuels/archview/pkg/consolidate"
	"github.com/matzehuels/archview/pkg/errors"
	"github.com/matzehuels/archview/pkg/layout"
	"github.com/matzehuels/archview/pkg/observability"
	"github.com/matzehuels/archview/pkg/render"
	"github.com/matzehuels/archview/pkg/store"
)

// Runner executes views against a store.
//
// The Runner holds no per-request state. Multiple goroutines can safely use
// the same Runner.
type Runner struct {
	Store  store.Store
	Layout layout.Strategy
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Backend names the store backend in hook events.
	Backend string

	// TTL bounds how long rendered artifacts stay cached.
	TTL time.Duration
}

// NewRunner creates a runner.
// If strategy is nil, layout.New is used with fallbacks reported to the
// pipeline hooks. If c is nil, a NullCache is used (caching disabled).
func NewRunner(s store.Store, strategy layout.Strategy, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	if strategy == nil {
		fb := layout.New(logger)
		fb.OnFallback = func(ctx context.Context, err error) {
			observability.Pipeline().OnLayoutFallback(ctx, err)
		}
		strategy = fb
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Runner{
		Store:   s,
		Layout:  strategy,
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
		Backend: store.BackendFile,
		TTL:     cache.ArtifactTTL,
	}
}

// Snapshot loads systems, connections and journeys.
func (r *Runner) Snapshot(ctx context.Context) (*Snapshot, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, r.Backend)
	start := time.Now()

	c, err := store.LoadCatalog(ctx, r.Store)
	n := len(c.Systems) + len(c.Connections) + len(c.Journeys)
	hooks.OnLoadComplete(ctx, r.Backend, n, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	r.Logger.Debug("loaded snapshot",
		"systems", len(c.Systems),
		"connections", len(c.Connections),
		"journeys", len(c.Journeys),
		"duration", time.Since(start))

	return &Snapshot{Systems: c.Systems, Connections: c.Connections, Journeys: c.Journeys}, nil
}

// ResolveJourney finds the journey named by id in snap.
//
// An empty id yields nil (no journey filter). "all" yields the consolidated
// journey. Otherwise id is matched against journey ids first and journey
// paths second; the "journeys/" prefix and ".journey.json" suffix are
// optional. Only the path lookup is checked with errors.ValidatePath, so ids
// such as "release-v1..v2" still match. Unknown ids return a
// JOURNEY_NOT_FOUND error.
func ResolveJourney(snap *Snapshot, id string) (*catalog.Journey, error) {
	switch id {
	case "":
		return nil, nil
	case catalog.AllJourneyID:
		all := consolidate.Entries(snap.Journeys, snap.Connections)
		return &all, nil
	}

	for i := range snap.Journeys {
		if snap.Journeys[i].Journey.ID == id {
			j := snap.Journeys[i].Journey
			return &j, nil
		}
	}

	key := strings.TrimSuffix(strings.TrimPrefix(id, store.JourneysDir+"/"), catalog.JourneyFileSuffix)
	if err := errors.ValidatePath(key); err != nil {
		return nil, err
	}
	for i := range snap.Journeys {
		if snap.Journeys[i].PathKey() == key {
			j := snap.Journeys[i].Journey
			return &j, nil
		}
	}
	return nil, errors.New(errors.ErrCodeJourneyNotFound, "journey %q not found", id)
}

// View loads a snapshot and lays out the view described by req.
func (r *Runner) View(ctx context.Context, req Request) (*ViewResult, error) {
	if err := req.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return r.ViewSnapshot(ctx, snap, req)
}

// ViewSnapshot lays out the view described by req over an already loaded
// snapshot. req must have been validated.
func (r *Runner) ViewSnapshot(ctx context.Context, snap *Snapshot, req Request) (*ViewResult, error) {
	j, err := ResolveJourney(snap, req.Journey)
	if err != nil {
		return nil, err
	}

	systems, conns := catalog.Select(snap.Systems, snap.Connections, catalog.View{
		Journey: j,
		Layers:  req.Layers,
		Env:     req.Env,
	})

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(systems))
	start := time.Now()
	res, err := r.Layout.Layout(ctx, systems, conns)
	hooks.OnLayoutComplete(ctx, res.Strategy, time.Since(start), err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLayoutFailed, err, "layout %d systems", len(systems))
	}

	r.Logger.Debug("computed layout",
		"journey", req.Journey,
		"strategy", res.Strategy,
		"nodes", len(res.Nodes),
		"edges", len(res.Edges),
		"duration", time.Since(start))

	return &ViewResult{
		Journey:     j,
		Layers:      req.Layers,
		Systems:     systems,
		Connections: conns,
		Layout:      res,
	}, nil
}

// Close releases resources held by the runner (the cache and the store).
func (r *Runner) Close() error {
	var firstErr error
	if r.Cache != nil {
		firstErr = r.Cache.Close()
	}
	if r.Store != nil {
		if err := r.Store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// renderView draws a laid-out view with the requested engine.
func renderView(ctx context.Context, v *ViewResult, req Request) ([]byte, error) {
	if req.Engine == EngineGraphviz {
		dot := render.ToDOT(v.Systems, v.Connections, render.Options{Env: req.Env, Highlight: req.Highlight})
		svg, err := render.RenderSVG(ctx, dot)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "graphviz render")
		}
		return svg, nil
	}
	return render.Diagram(v.Layout, v.Systems, v.Connections,
		render.WithEnv(req.Env), render.WithHighlight(req.Highlight...)), nil
}
