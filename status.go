package decimate

import (
	"time"

	"github.com/joeycumines/go-catrate"
)

// StatusStage enumerates the decimation pipeline's stages.
type StatusStage int

const (
	StageInit StatusStage = iota
	StageBuildMesh
	StageBuildEdges
	StageBuildQueues
	StageDecimate
	StageCleanup
	StagePack
	StageDone
)

func (s StatusStage) String() string {
	switch s {
	case StageInit:
		return "Init"
	case StageBuildMesh:
		return "BuildMesh"
	case StageBuildEdges:
		return "BuildEdges"
	case StageBuildQueues:
		return "BuildQueues"
	case StageDecimate:
		return "Decimate"
	case StageCleanup:
		return "Cleanup"
	case StagePack:
		return "Pack"
	case StageDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// StatusUpdate is the payload delivered to a StatusFunc.
type StatusUpdate struct {
	Stage         StatusStage
	StageName     string
	Progress      float64 // monotone within a stage, in [0,1]
	TriangleCount int
}

// StatusFunc is the caller-registered progress callback.
type StatusFunc func(StatusUpdate)

// statusReporter throttles delivery of a StatusFunc via a per-stage
// github.com/joeycumines/go-catrate limiter, so a caller's
// intervalTriangles-style throttling request never degrades into a
// per-collapse callback storm on large meshes.
type statusReporter struct {
	fn       StatusFunc
	limiter  *catrate.Limiter
	interval int // intervalTriangles from WithStatus; report does not consult it
}

// newStatusReporter builds a reporter; fn may be nil, in which case
// report is a no-op (mirrors the logger's nil-safety).
func newStatusReporter(fn StatusFunc, intervalTriangles int) *statusReporter {
	if fn == nil {
		return &statusReporter{}
	}
	if intervalTriangles <= 0 {
		intervalTriangles = 1
	}
	return &statusReporter{
		fn: fn,
		limiter: catrate.NewLimiter(map[time.Duration]int{
			50 * time.Millisecond: 1,
		}),
		interval: intervalTriangles,
	}
}

// report delivers u through fn, subject to the stage's rate limit. The
// final update of a stage (progress==1) always bypasses the limiter so
// a caller never misses a stage boundary.
func (r *statusReporter) report(u StatusUpdate) {
	if r == nil || r.fn == nil {
		return
	}
	if u.Progress >= 1 || r.limiter == nil {
		u.StageName = u.Stage.String()
		r.fn(u)
		return
	}
	if _, ok := r.limiter.Allow(u.Stage); !ok {
		return
	}
	u.StageName = u.Stage.String()
	r.fn(u)
}
