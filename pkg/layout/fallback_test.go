package layout

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archview/pkg/catalog"
)

type failingStrategy struct{ err error }

func (f failingStrategy) Layout(context.Context, []catalog.System, []catalog.Connection) (Result, error) {
	return Result{}, f.err
}

type panickingStrategy struct{}

func (panickingStrategy) Layout(context.Context, []catalog.System, []catalog.Connection) (Result, error) {
	panic("engine crashed")
}

type fixedStrategy struct{ res Result }

func (f fixedStrategy) Layout(context.Context, []catalog.System, []catalog.Connection) (Result, error) {
	return f.res, nil
}

func TestFallback(t *testing.T) {
	systems := []catalog.System{{ID: "s1"}, {ID: "s2"}, {ID: "s3"}}

	tests := []struct {
		name         string
		primary      Strategy
		wantStrategy string
		wantWarn     bool
	}{
		{"primary succeeds", fixedStrategy{Result{Strategy: "fixed"}}, "fixed", false},
		{"primary errors", failingStrategy{errors.New("wasm unavailable")}, StrategyGrid, true},
		{"primary panics", panickingStrategy{}, StrategyGrid, true},
		{"no primary", nil, StrategyGrid, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			var fallbackErr error
			f := &Fallback{
				Primary:    tt.primary,
				Secondary:  Grid{},
				Logger:     log.New(&buf),
				OnFallback: func(_ context.Context, err error) { fallbackErr = err },
			}

			res, err := f.Layout(context.Background(), systems, nil)
			if err != nil {
				t.Fatalf("Layout() error = %v", err)
			}
			if res.Strategy != tt.wantStrategy {
				t.Errorf("Strategy = %q, want %q", res.Strategy, tt.wantStrategy)
			}

			warned := strings.Contains(buf.String(), "WARN")
			if warned != tt.wantWarn {
				t.Errorf("warn logged = %v, want %v (log: %q)", warned, tt.wantWarn, buf.String())
			}
			if (fallbackErr != nil) != tt.wantWarn {
				t.Errorf("OnFallback err = %v", fallbackErr)
			}
		})
	}
}

func TestFallbackGridMatchesGrid(t *testing.T) {
	systems := []catalog.System{{ID: "s1"}, {ID: "s2"}, {ID: "s3"}}
	f := &Fallback{Primary: failingStrategy{errors.New("boom")}, Logger: log.New(&bytes.Buffer{})}

	got, _ := f.Layout(context.Background(), systems, nil)
	want, _ := Grid{}.Layout(context.Background(), systems, nil)
	if got.Width != want.Width || len(got.Nodes) != len(want.Nodes) {
		t.Fatalf("fallback result %+v differs from grid %+v", got, want)
	}
	s3, _ := got.Node("s3")
	if s3.X != 60 || s3.Y != 180 {
		t.Errorf("s3 at (%v, %v), want (60, 180)", s3.X, s3.Y)
	}
}

func TestFallbackCanceledContextStillLaysOut(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := New(log.New(&bytes.Buffer{}))
	res, err := f.Layout(ctx, []catalog.System{{ID: "a"}}, nil)
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if res.Strategy != StrategyGrid || len(res.Nodes) != 1 {
		t.Errorf("result = %+v", res)
	}
}

func TestNewEmptyInput(t *testing.T) {
	res, err := New(nil).Layout(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if len(res.Nodes) != 0 || len(res.Edges) != 0 {
		t.Errorf("result = %+v", res)
	}
	if res.Width <= 0 || res.Height <= 0 {
		t.Errorf("canvas = %vx%v, want fixed minimum", res.Width, res.Height)
	}
}
