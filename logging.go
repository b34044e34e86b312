package decimate

import (
	"log/slog"

	"github.com/joeycumines/logiface"
	islog "github.com/joeycumines/logiface-slog"
)

// logger wraps a *logiface.Logger[*islog.Event], nil-safe throughout
// this package so an Operation with no configured logger behaves
// exactly like the teacher's nil-checked callback fields in
// scene.go/render.go.
type logger struct {
	l *logiface.Logger[*islog.Event]
}

// NewLogger builds a logger backed by handler via
// github.com/joeycumines/logiface-slog, per the AMBIENT STACK logging
// section.
func NewLogger(handler slog.Handler) *logger {
	return &logger{l: islog.L.New(islog.L.WithSlogHandler(handler))}
}

func (g *logger) topologyWarning(edge Handle, incidentTriangles int) {
	if g == nil || g.l == nil {
		return
	}
	g.l.Warning().
		Int("edge", int(edge)).
		Int("incident_triangles", incidentTriangles).
		Log("non-manifold edge detected")
}

func (g *logger) resourceExhausted(vertex Handle) {
	if g == nil || g.l == nil {
		return
	}
	g.l.Warning().
		Int("vertex", int(vertex)).
		Log("vertex-split headroom exhausted")
}

func (g *logger) debugBudgetProbe(iteration int, featureSize float64, triCount int) {
	if g == nil || g.l == nil {
		return
	}
	g.l.Debug().
		Int("iteration", iteration).
		Float64("feature_size", featureSize).
		Int("tri_count", triCount).
		Log("budget probe")
}

func (g *logger) canceled(stage string) {
	if g == nil || g.l == nil {
		return
	}
	g.l.Notice().
		Str("stage", stage).
		Log("decimation canceled")
}
