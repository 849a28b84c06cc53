package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archview/pkg/store"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// captureStdout redirects user-facing output for the rest of the test.
func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = old })
	return &buf
}

// isolate keeps config and cache lookups inside the test's temp dirs.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("ARCHVIEW_CONFIG", "")
	t.Setenv("ARCHVIEW_DATA_ROOT", "")
	t.Setenv("DATA_ROOT", "")
	t.Setenv("ARCHVIEW_CACHE_BACKEND", "")
	t.Setenv("ARCHVIEW_CACHE_DIR", "")
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
}

func seededRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := store.Seed(context.Background(), store.NewFileStore(root, nil)); err != nil {
		t.Fatal(err)
	}
	return root
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := captureStdout(t)
	c := New(&bytes.Buffer{}, log.InfoLevel)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSeedAndValidate(t *testing.T) {
	isolate(t)
	root := filepath.Join(t.TempDir(), "catalog")

	if _, err := run(t, "validate", "--data", root); err == nil {
		t.Fatal("validate on a missing root should fail")
	}

	out, err := run(t, "seed", "--data", root)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !strings.Contains(out, "7 systems, 6 connections, 3 journeys") {
		t.Errorf("seed output = %q", out)
	}

	if _, err := run(t, "seed", "--data", root); err == nil {
		t.Error("seeding a non-empty store without --force should fail")
	}
	if _, err := run(t, "seed", "--data", root, "--force"); err != nil {
		t.Errorf("seed --force: %v", err)
	}

	out, err = run(t, "validate", "--data", root)
	if err != nil {
		t.Fatalf("validate: %v\n%s", err, out)
	}
	for _, want := range []string{"systems.json", "(7 records)", "(3 records)"} {
		if !strings.Contains(out, want) {
			t.Errorf("validate output missing %q:\n%s", want, out)
		}
	}
}

func TestValidateReportsBrokenFile(t *testing.T) {
	isolate(t)
	root := seededRoot(t)
	if err := os.WriteFile(filepath.Join(root, store.ConnectionsFile), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "validate", "--data", root)
	if err == nil {
		t.Fatal("validate should fail on malformed connections.json")
	}
	if !strings.Contains(out, store.ConnectionsFile) {
		t.Errorf("output = %q", out)
	}
}

func TestJourneysList(t *testing.T) {
	isolate(t)
	root := seededRoot(t)

	out, err := run(t, "journeys", "--data", root)
	if err != nil {
		t.Fatal(err)
	}
	c := strings.Index(out, "commerce")
	p := strings.Index(out, "platform")
	if c < 0 || p < 0 || c > p {
		t.Errorf("groups missing or out of order:\n%s", out)
	}

	out, err = run(t, "journeys", "--data", root, "-q", "events")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "Guest Checkout") || !strings.Contains(out, "Order Event") {
		t.Errorf("filtered output:\n%s", out)
	}
}

func TestLayoutJSON(t *testing.T) {
	isolate(t)
	root := seededRoot(t)

	out, err := run(t, "layout", "all", "--data", root, "--json")
	if err != nil {
		t.Fatal(err)
	}

	var view struct {
		Systems []struct {
			ID string `json:"id"`
		} `json:"systems"`
		Layout struct {
			Nodes    []json.RawMessage `json:"nodes"`
			Strategy string            `json:"strategy"`
		} `json:"layout"`
	}
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(view.Systems) != 7 || len(view.Layout.Nodes) != 7 {
		t.Errorf("systems = %d, nodes = %d", len(view.Systems), len(view.Layout.Nodes))
	}
	if view.Layout.Strategy == "" {
		t.Error("strategy missing")
	}
}

func TestLayoutSummary(t *testing.T) {
	isolate(t)
	root := seededRoot(t)

	out, err := run(t, "layout", "platform/events/order-placed", "--data", root, "--env", "prod")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Order Event", "Message Queue", "degraded", "4 systems"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestLayoutUnknownJourney(t *testing.T) {
	isolate(t)
	root := seededRoot(t)
	if _, err := run(t, "layout", "nope", "--data", root); err == nil {
		t.Error("unknown journey should fail")
	}
}

func TestRenderWritesSVG(t *testing.T) {
	isolate(t)
	root := seededRoot(t)
	out := filepath.Join(t.TempDir(), "guest.svg")

	if _, err := run(t, "render", "commerce/checkout/guest", "--data", root, "-o", out); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Errorf("not an SVG: %.80s", data)
	}

	dir, err := defaultCacheDir()
	if err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) == 0 {
		t.Error("render should populate the local cache")
	}

	if _, err := run(t, "render", "all", "--data", root, "--engine", "ascii", "-o", out); err == nil {
		t.Error("unknown engine should fail")
	}
}

func TestCacheCommands(t *testing.T) {
	isolate(t)
	root := seededRoot(t)

	out, err := run(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	want, _ := defaultCacheDir()
	if strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", out, want)
	}

	if _, err := run(t, "render", "all", "--data", root, "-o", filepath.Join(t.TempDir(), "all.svg")); err != nil {
		t.Fatal(err)
	}
	out, err = run(t, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cleared 1 cached entries") {
		t.Errorf("clear output = %q", out)
	}
}

func TestCacheDirFromConfig(t *testing.T) {
	isolate(t)
	dir := filepath.Join(t.TempDir(), "diagrams")
	cfg := writeFile(t, "archview.toml", "[cache]\ndir = \""+filepath.ToSlash(dir)+"\"\n")

	out, err := run(t, "cache", "path", "--config", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != dir {
		t.Errorf("cache path = %q, want %q", out, dir)
	}
}

func TestDefaultCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	dir, err := defaultCacheDir()
	if err != nil {
		t.Fatal(err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("defaultCacheDir() = %q, want %q", dir, want)
	}

	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")
	dir, _ = defaultCacheDir()
	if want := filepath.Join("/tmp/custom-cache", appName); dir != want {
		t.Errorf("defaultCacheDir() with XDG_CACHE_HOME = %q, want %q", dir, want)
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		journey string
		want    string
	}{
		{"all", "all.svg"},
		{"commerce/checkout/guest", "commerce-checkout-guest.svg"},
		{"journeys/platform/events/order-placed.journey.json", "platform-events-order-placed.svg"},
		{"", "all.svg"},
	}
	for _, tt := range tests {
		t.Run(tt.journey, func(t *testing.T) {
			if got := outputName(tt.journey); got != tt.want {
				t.Errorf("outputName(%q) = %q, want %q", tt.journey, got, tt.want)
			}
		})
	}
}

func TestCompletion(t *testing.T) {
	isolate(t)
	out, err := run(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "archview") {
		t.Errorf("completion script does not mention archview")
	}
}
