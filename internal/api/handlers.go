package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/archview/pkg/buildinfo"
	"github.com/matzehuels/archview/pkg/catalog"
	errs "github.com/matzehuels/archview/pkg/errors"
	"github.com/matzehuels/archview/pkg/layout"
	"github.com/matzehuels/archview/pkg/pipeline"
)

// =============================================================================
// Catalog
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Fields(),
	})
}

func (s *Server) handleListSystems(w http.ResponseWriter, r *http.Request) {
	systems, err := s.runner.Store.Systems(r.Context())
	if err != nil {
		s.writeError(w, r, err, "failed to load systems")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"systems": systems})
}

func (s *Server) handleSaveSystems(w http.ResponseWriter, r *http.Request) {
	var doc catalog.SystemsDocument
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&doc); err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid systems document"), "failed to save systems")
		return
	}
	if doc.Systems == nil {
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidInput, "systems is required"), "failed to save systems")
		return
	}
	if err := s.runner.Store.SaveSystems(r.Context(), doc.Systems); err != nil {
		s.writeError(w, r, err, "failed to save systems")
		return
	}
	s.logger.Info("saved systems", "count", len(doc.Systems), "request_id", RequestIDFromContext(r.Context()))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleListConnections(w http.ResponseWriter, r *http.Request) {
	conns, err := s.runner.Store.Connections(r.Context())
	if err != nil {
		s.writeError(w, r, err, "failed to load connections")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"connections": conns})
}

func (s *Server) handleSearchSystems(w http.ResponseWriter, r *http.Request) {
	systems, err := s.runner.Store.Systems(r.Context())
	if err != nil {
		s.writeError(w, r, err, "failed to search systems")
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, map[string]any{"query": q, "systems": catalog.FilterSystems(systems, q)})
}

// =============================================================================
// Journeys
// =============================================================================

func (s *Server) handleListJourneys(w http.ResponseWriter, r *http.Request) {
	entries, err := s.runner.Store.Journeys(r.Context())
	if err != nil {
		s.writeError(w, r, err, "failed to load journeys")
		return
	}
	snap := pipeline.Snapshot{Journeys: entries}
	writeJSON(w, http.StatusOK, map[string]any{"items": snap.ListItems()})
}

func (s *Server) handleJourneyGroups(w http.ResponseWriter, r *http.Request) {
	entries, err := s.runner.Store.Journeys(r.Context())
	if err != nil {
		s.writeError(w, r, err, "failed to load journeys")
		return
	}
	snap := pipeline.Snapshot{Journeys: entries}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	items := make([]catalog.JourneyListItem, 0, len(entries))
	for _, item := range snap.ListItems() {
		if catalog.MatchJourney(item, q) {
			items = append(items, item)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"query": q, "groups": catalog.GroupJourneys(items)})
}

func (s *Server) handleAllJourneys(w http.ResponseWriter, r *http.Request) {
	snap, err := s.runner.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, r, err, "failed to consolidate journeys")
		return
	}
	all, err := pipeline.ResolveJourney(snap, catalog.AllJourneyID)
	if err != nil {
		s.writeError(w, r, err, "failed to consolidate journeys")
		return
	}
	writeJSON(w, http.StatusOK, all)
}

func (s *Server) handleJourney(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "*")
	j, err := s.runner.Store.Journey(r.Context(), path)
	if err != nil {
		s.writeError(w, r, err, "failed to load journey")
		return
	}
	writeJSON(w, http.StatusOK, j)
}

// =============================================================================
// Layout and rendering
// =============================================================================

type layoutResponse struct {
	Journey     *catalog.Journey `json:"journey,omitempty"`
	Layers      []string         `json:"layers"`
	Systems     []string         `json:"visibleSystems"`
	Connections []string         `json:"visibleConnections"`
	Layout      layout.Result    `json:"layout"`
}

// viewRequest reads journey, layer (repeatable or comma separated), env,
// engine and highlight from the query string.
func viewRequest(r *http.Request) pipeline.Request {
	q := r.URL.Query()
	return pipeline.Request{
		Journey:   q.Get("journey"),
		Layers:    splitList(q["layer"]),
		Env:       catalog.Env(q.Get("env")),
		Engine:    q.Get("engine"),
		Highlight: splitList(q["highlight"]),
	}
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	view, err := s.runner.View(r.Context(), viewRequest(r))
	if err != nil {
		s.writeError(w, r, err, "failed to compute layout")
		return
	}
	writeJSON(w, http.StatusOK, layoutResponse{
		Journey:     view.Journey,
		Layers:      view.Layers,
		Systems:     view.SystemIDs(),
		Connections: view.ConnectionIDs(),
		Layout:      view.Layout,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	svg, hit, err := s.runner.RenderWithCacheInfo(r.Context(), viewRequest(r))
	if err != nil {
		s.writeError(w, r, err, "failed to render diagram")
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}
