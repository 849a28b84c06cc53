package catalog

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/archview/pkg/errors"
)

func TestValidateSystem(t *testing.T) {
	tests := []struct {
		name    string
		system  System
		wantErr string
	}{
		{
			name:   "minimal",
			system: System{ID: "web", Name: "Web"},
		},
		{
			name: "full",
			system: System{
				ID:     "web",
				Name:   "Web",
				Owners: []Owner{{Name: "Frontend", Email: "fe@example.com", Slack: "#fe"}},
				Docs:   []Doc{{Title: "Docs", URL: "https://docs.example.com/web"}},
				Status: Status{EnvDev: HealthHealthy, EnvProd: HealthDown},
			},
		},
		{
			name:    "missing id",
			system:  System{Name: "Web"},
			wantErr: "system.id: is required",
		},
		{
			name:   "empty name",
			system: System{ID: "web", Name: ""},
		},
		{
			name:   "empty owner name and doc title",
			system: System{ID: "web", Owners: []Owner{{Name: ""}}, Docs: []Doc{{URL: "https://docs.example.com"}}},
		},
		{
			name:    "bad owner email",
			system:  System{ID: "web", Name: "Web", Owners: []Owner{{Name: "A", Email: "not-an-email"}}},
			wantErr: "system.owners[0].email",
		},
		{
			name: "non-http doc urls",
			system: System{ID: "web", Docs: []Doc{
				{Title: "Runbook", URL: "ftp://files.example.com/runbook.pdf"},
				{Title: "Contact", URL: "mailto:oncall@example.com"},
			}},
		},
		{
			name:    "doc without url",
			system:  System{ID: "web", Name: "Web", Docs: []Doc{{Title: "Docs"}}},
			wantErr: "system.docs[0].url: is required",
		},
		{
			name:    "bad doc url",
			system:  System{ID: "web", Name: "Web", Docs: []Doc{{Title: "x", URL: "nope"}}},
			wantErr: "system.docs[0].url: must be a valid URL",
		},
		{
			name:    "bad environment",
			system:  System{ID: "web", Name: "Web", Status: Status{"qa": HealthHealthy}},
			wantErr: "must be one of",
		},
		{
			name:    "bad health",
			system:  System{ID: "web", Name: "Web", Status: Status{EnvDev: "sleepy"}},
			wantErr: "must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSystem(tt.system)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateSystem() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateSystem() = nil, want error containing %q", tt.wantErr)
			}
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("error code = %q, want %q", errors.GetCode(err), errors.ErrCodeInvalidInput)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateSystemsReportsIndex(t *testing.T) {
	systems := []System{
		{ID: "a", Name: "A"},
		{Name: "B"},
	}
	err := ValidateSystems(systems)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "systems[1].id") {
		t.Errorf("error = %q, want index of failing system", err.Error())
	}
}

func TestValidateConnections(t *testing.T) {
	port := 443
	valid := []Connection{{ID: "c1", From: "web", To: "bff", Port: &port}}
	if err := ValidateConnections(valid); err != nil {
		t.Fatalf("ValidateConnections() error = %v", err)
	}

	dangling := []Connection{{ID: "c2", From: "web", To: ""}}
	if err := ValidateConnections(dangling); err != nil {
		t.Errorf("ValidateConnections() with empty endpoint error = %v", err)
	}

	invalid := []Connection{valid[0], {From: "web", To: "bff"}}
	err := ValidateConnections(invalid)
	if err == nil || !strings.Contains(err.Error(), "connections[1].id") {
		t.Errorf("ValidateConnections() = %v, want missing id", err)
	}
}

func TestValidateJourney(t *testing.T) {
	t.Run("empty connections allowed", func(t *testing.T) {
		j := Journey{ID: "x", Name: "X", Connections: []string{}}
		if err := ValidateJourney(j); err != nil {
			t.Errorf("ValidateJourney() error = %v", err)
		}
	})

	t.Run("connections key required", func(t *testing.T) {
		var j Journey
		if err := json.Unmarshal([]byte(`{"id":"x","name":"X"}`), &j); err != nil {
			t.Fatal(err)
		}
		err := ValidateJourney(j)
		if err == nil || !strings.Contains(err.Error(), "journey.connections") {
			t.Errorf("ValidateJourney() = %v, want connections error", err)
		}
	})

	t.Run("empty name allowed", func(t *testing.T) {
		var j Journey
		if err := json.Unmarshal([]byte(`{"id":"x","name":"","connections":["c1"]}`), &j); err != nil {
			t.Fatal(err)
		}
		if err := ValidateJourney(j); err != nil {
			t.Errorf("ValidateJourney() error = %v", err)
		}
	})

	t.Run("decoded empty list allowed", func(t *testing.T) {
		var j Journey
		if err := json.Unmarshal([]byte(`{"id":"x","name":"X","connections":[]}`), &j); err != nil {
			t.Fatal(err)
		}
		if err := ValidateJourney(j); err != nil {
			t.Errorf("ValidateJourney() error = %v", err)
		}
	})
}

func TestParseEnv(t *testing.T) {
	tests := []struct {
		in      string
		want    Env
		wantErr bool
	}{
		{"", EnvProd, false},
		{"dev", EnvDev, false},
		{"STAGE", EnvStage, false},
		{"prod", EnvProd, false},
		{"qa", "", true},
	}

	for _, tt := range tests {
		got, err := ParseEnv(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseEnv(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseEnv(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidEnv) {
			t.Errorf("ParseEnv(%q) code = %q", tt.in, errors.GetCode(err))
		}
	}
}

func TestStatusGet(t *testing.T) {
	s := Status{EnvDev: HealthDegraded}
	if got := s.Get(EnvDev); got != HealthDegraded {
		t.Errorf("Get(dev) = %q, want degraded", got)
	}
	if got := s.Get(EnvProd); got != HealthUnknown {
		t.Errorf("Get(prod) = %q, want unknown", got)
	}
	var empty Status
	if got := empty.Get(EnvStage); got != HealthUnknown {
		t.Errorf("nil Status Get = %q, want unknown", got)
	}
}

func TestOptionalFieldsRoundTrip(t *testing.T) {
	data := []byte(`{"id":"db","name":"Database","x":0,"y":250}`)
	var s System
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatal(err)
	}
	if s.X == nil || *s.X != 0 {
		t.Errorf("X = %v, want explicit 0", s.X)
	}
	if s.Y == nil || *s.Y != 250 {
		t.Errorf("Y = %v, want 250", s.Y)
	}

	out, err := json.Marshal(System{ID: "a", Name: "A"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(out), `"x"`) {
		t.Errorf("absent hint should be omitted: %s", out)
	}
}

func TestJourneyEntryListItem(t *testing.T) {
	e := JourneyEntry{
		Journey: Journey{ID: "commerce/checkout/guest", Name: "Guest Checkout", Tags: []string{"p0"}},
		Path:    "commerce/checkout/guest.journey.json",
	}
	item := e.ListItem()
	if item.Path != "journeys/commerce/checkout/guest.journey.json" {
		t.Errorf("Path = %q", item.Path)
	}
	if e.PathKey() != "commerce/checkout/guest" {
		t.Errorf("PathKey() = %q", e.PathKey())
	}
}
