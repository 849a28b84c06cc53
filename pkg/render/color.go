package render

import "github.com/matzehuels/archview/pkg/catalog"

// Health colours.
const (
	ColorHealthy  = "#22c55e"
	ColorDegraded = "#eab308"
	ColorDown     = "#ef4444"
	ColorUnknown  = "#9ca3af"
)

// HealthColor maps a health state to its fill colour. Unrecognised and
// empty states render as unknown.
func HealthColor(h catalog.Health) string {
	switch h {
	case catalog.HealthHealthy:
		return ColorHealthy
	case catalog.HealthDegraded:
		return ColorDegraded
	case catalog.HealthDown:
		return ColorDown
	default:
		return ColorUnknown
	}
}
