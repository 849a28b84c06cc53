package pipeline

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archview/pkg/cache"
	"github.com/matzehuels/archview/pkg/catalog"
	"github.com/matzehuels/archview/pkg/errors"
	"github.com/matzehuels/archview/pkg/layout"
	"github.com/matzehuels/archview/pkg/store"
)

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func newTestRunner(t *testing.T, c cache.Cache) (*Runner, *store.FileStore) {
	t.Helper()
	logger := log.New(&bytes.Buffer{})
	fs := store.NewFileStore(t.TempDir(), logger)
	if err := store.Seed(context.Background(), fs); err != nil {
		t.Fatal(err)
	}
	return NewRunner(fs, layout.Grid{}, c, nil, logger), fs
}

func TestRequestValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr errors.Code
	}{
		{"empty", Request{}, ""},
		{"all", Request{Journey: "all"}, ""},
		{"path", Request{Journey: "commerce/checkout/guest"}, ""},
		{"dotted id", Request{Journey: "release-v1..v2"}, ""},
		{"bad env", Request{Env: "qa"}, errors.ErrCodeInvalidEnv},
		{"bad engine", Request{Engine: "ascii"}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			err := req.ValidateAndSetDefaults()
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if req.Env != catalog.DefaultEnv || req.Engine != DefaultEngine {
				t.Errorf("defaults not applied: %+v", req)
			}
		})
	}

	req := Request{Layers: []string{" api ", "", "core"}}
	if err := req.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(req.Layers, []string{"api", "core"}) {
		t.Errorf("Layers = %q", req.Layers)
	}
}

func TestResolveJourney(t *testing.T) {
	r, _ := newTestRunner(t, nil)
	snap, err := r.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		id     string
		wantID string
		isNil  bool
		notFnd bool
	}{
		{id: "", isNil: true},
		{id: "all", wantID: "all"},
		{id: "commerce/checkout/guest", wantID: "commerce/checkout/guest"},
		{id: "journeys/platform/events/order-placed.journey.json", wantID: "platform/events/order-placed"},
		{id: "nope", notFnd: true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			j, err := ResolveJourney(snap, tt.id)
			if tt.notFnd {
				if !errors.Is(err, errors.ErrCodeJourneyNotFound) {
					t.Fatalf("error = %v, want JOURNEY_NOT_FOUND", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if tt.isNil {
				if j != nil {
					t.Errorf("journey = %+v, want nil", j)
				}
				return
			}
			if j == nil || j.ID != tt.wantID {
				t.Errorf("journey = %+v, want id %q", j, tt.wantID)
			}
		})
	}
}

func TestResolveJourneyPathChecks(t *testing.T) {
	snap := &Snapshot{Journeys: []catalog.JourneyEntry{{
		Journey: catalog.Journey{ID: "release-v1..v2", Name: "Release", Connections: []string{}},
		Path:    "release/upgrade.journey.json",
	}}}

	tests := []struct {
		id      string
		wantID  string
		wantErr errors.Code
	}{
		{id: "release-v1..v2", wantID: "release-v1..v2"},
		{id: "release/upgrade", wantID: "release-v1..v2"},
		{id: "../etc/passwd", wantErr: errors.ErrCodeInvalidPath},
		{id: "journeys/../release/upgrade.journey.json", wantErr: errors.ErrCodeInvalidPath},
		{id: "/release/upgrade", wantErr: errors.ErrCodeInvalidPath},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			j, err := ResolveJourney(snap, tt.id)
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if j.ID != tt.wantID {
				t.Errorf("journey = %q, want %q", j.ID, tt.wantID)
			}
		})
	}
}

func TestViewAllJourneys(t *testing.T) {
	r, _ := newTestRunner(t, nil)

	v, err := r.View(context.Background(), Request{Journey: "all"})
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}

	if v.Journey == nil || v.Journey.ID != catalog.AllJourneyID {
		t.Fatalf("journey = %+v", v.Journey)
	}
	wantConns := []string{"c1", "c2", "c3", "c4", "c6", "c5"}
	if !slices.Equal(v.Journey.Connections, wantConns) {
		t.Errorf("consolidated connections = %v, want %v", v.Journey.Connections, wantConns)
	}
	if len(v.Systems) != 7 || len(v.Layout.Nodes) != 7 {
		t.Errorf("systems = %d, nodes = %d; want 7", len(v.Systems), len(v.Layout.Nodes))
	}
	if v.Layout.Strategy != layout.StrategyGrid {
		t.Errorf("strategy = %q", v.Layout.Strategy)
	}
}

func TestViewJourneyAndLayers(t *testing.T) {
	r, _ := newTestRunner(t, nil)

	v, err := r.View(context.Background(), Request{Journey: "commerce/checkout/guest", Layers: []string{"security"}})
	if err != nil {
		t.Fatal(err)
	}
	if got := v.ConnectionIDs(); !slices.Equal(got, []string{"c2"}) {
		t.Errorf("connections = %v, want [c2]", got)
	}
	if got := v.SystemIDs(); !slices.Equal(got, []string{"bff", "auth"}) {
		t.Errorf("systems = %v, want [bff auth]", got)
	}
}

func TestViewUnknownJourney(t *testing.T) {
	r, _ := newTestRunner(t, nil)
	_, err := r.View(context.Background(), Request{Journey: "missing/journey"})
	if !errors.IsNotFound(err) {
		t.Errorf("error = %v, want not found", err)
	}
}

func TestRenderCachesArtifacts(t *testing.T) {
	c := newMemCache()
	r, fs := newTestRunner(t, c)
	ctx := context.Background()
	req := Request{Journey: "all", Env: catalog.EnvProd}

	svg, hit, err := r.RenderWithCacheInfo(ctx, req)
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	if hit {
		t.Error("first render should miss")
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Errorf("not an SVG: %.80s", svg)
	}

	again, hit, err := r.RenderWithCacheInfo(ctx, req)
	if err != nil || !hit {
		t.Fatalf("second render hit=%v err=%v, want cache hit", hit, err)
	}
	if !bytes.Equal(svg, again) {
		t.Error("cached artifact differs")
	}

	// Changing the catalog changes the key, so the old artifact is not served.
	systems, _ := fs.Systems(ctx)
	systems[0].Status = catalog.Status{catalog.EnvProd: catalog.HealthDown}
	if err := fs.SaveSystems(ctx, systems); err != nil {
		t.Fatal(err)
	}
	_, hit, err = r.RenderWithCacheInfo(ctx, req)
	if err != nil || hit {
		t.Errorf("render after change hit=%v err=%v, want miss", hit, err)
	}
	if c.sets != 2 {
		t.Errorf("cache sets = %d, want 2", c.sets)
	}
}

func TestRenderEnvChangesColours(t *testing.T) {
	r, _ := newTestRunner(t, nil)
	ctx := context.Background()

	prod, err := r.RenderSVG(ctx, Request{Env: catalog.EnvProd})
	if err != nil {
		t.Fatal(err)
	}
	stage, err := r.RenderSVG(ctx, Request{Env: catalog.EnvStage})
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(prod, stage) {
		t.Error("bff is degraded in stage only, diagrams should differ")
	}
}

func TestSnapshotListItems(t *testing.T) {
	r, _ := newTestRunner(t, nil)
	snap, err := r.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	items := snap.ListItems()
	if len(items) != 3 || items[0].Path != "journeys/commerce/checkout/guest.journey.json" {
		t.Errorf("items = %+v", items)
	}
}
