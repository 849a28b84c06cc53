package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/archview/pkg/cache"
	"github.com/matzehuels/archview/pkg/observability"
)

// FormatSVG is the only artifact format produced by the pipeline.
const FormatSVG = "svg"

const artifactKeyType = "artifact"

// RenderWithCacheInfo renders req as SVG and reports whether the artifact
// came from the cache.
//
// The snapshot is always loaded and the view always resolved; only the
// final drawing is cached, under a key derived from the selected systems,
// connections and render options.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, req Request) ([]byte, bool, error) {
	if err := req.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return nil, false, err
	}
	view, err := r.ViewSnapshot(ctx, snap, req)
	if err != nil {
		return nil, false, err
	}

	key, keyErr := r.artifactKey(view, req)
	if keyErr == nil {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, artifactKeyType)
			return data, true, nil
		} else if err != nil {
			r.Logger.Warn("cache read failed", "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, artifactKeyType)
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, FormatSVG)
	start := time.Now()
	svg, err := renderView(ctx, view, req)
	hooks.OnRenderComplete(ctx, FormatSVG, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if keyErr == nil {
		if err := r.Cache.Set(ctx, key, svg, r.TTL); err != nil {
			r.Logger.Warn("cache write failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, artifactKeyType, len(svg))
		}
	}

	r.Logger.Debug("rendered view", "engine", req.Engine, "bytes", len(svg), "duration", time.Since(start))
	return svg, false, nil
}

// RenderSVG is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) RenderSVG(ctx context.Context, req Request) ([]byte, error) {
	svg, _, err := r.RenderWithCacheInfo(ctx, req)
	return svg, err
}

// artifactKey hashes everything that influences the drawing: the visible
// records (including their health and names) and the layout geometry.
func (r *Runner) artifactKey(v *ViewResult, req Request) (string, error) {
	inputHash, err := cache.HashJSON(struct {
		Systems any `json:"systems"`
		Conns   any `json:"connections"`
		Layout  any `json:"layout"`
	}{v.Systems, v.Connections, v.Layout})
	if err != nil {
		return "", err
	}
	return r.Keyer.ArtifactKey(inputHash, cache.ArtifactKeyOpts{
		Format:    FormatSVG,
		Env:       string(req.Env),
		Journey:   req.Journey,
		Layers:    req.Layers,
		Highlight: req.Highlight,
	}), nil
}
