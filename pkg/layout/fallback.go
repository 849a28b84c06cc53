package layout

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archview/pkg/catalog"
)

// Fallback tries Primary and degrades to Secondary when it fails.
//
// A failure is an error return or a panic inside Primary. Failures are
// logged at warn level and never reach the caller. Secondary should be a
// strategy that cannot fail, normally [Grid].
type Fallback struct {
	Primary   Strategy
	Secondary Strategy
	Logger    *log.Logger

	// OnFallback, if set, is called with the primary error whenever the
	// secondary strategy is used.
	OnFallback func(ctx context.Context, err error)
}

// New returns the default engine: [Layered] with a [Grid] fallback.
// A nil logger uses log.Default().
func New(logger *log.Logger) *Fallback {
	return &Fallback{Primary: Layered{}, Secondary: Grid{}, Logger: logger}
}

// Layout implements [Strategy]. The returned error is always nil unless
// Secondary itself fails.
func (f *Fallback) Layout(ctx context.Context, systems []catalog.System, connections []catalog.Connection) (Result, error) {
	res, err := safeLayout(ctx, f.Primary, systems, connections)
	if err == nil {
		return res, nil
	}

	f.logger().Warn("layered layout unavailable, using grid", "error", err, "systems", len(systems))
	if f.OnFallback != nil {
		f.OnFallback(ctx, err)
	}

	secondary := f.Secondary
	if secondary == nil {
		secondary = Grid{}
	}
	// The secondary runs on a fresh context so a primary timeout still yields
	// a layout.
	return secondary.Layout(context.WithoutCancel(ctx), systems, connections)
}

func (f *Fallback) logger() *log.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return log.Default()
}

func safeLayout(ctx context.Context, s Strategy, systems []catalog.System, connections []catalog.Connection) (res Result, err error) {
	if s == nil {
		return Result{}, fmt.Errorf("no primary layout strategy")
	}
	defer func() {
		if r := recover(); r != nil {
			res, err = Result{}, fmt.Errorf("layout panic: %v", r)
		}
	}()
	return s.Layout(ctx, systems, connections)
}
