package decimate

import (
	"context"
	"log/slog"
)

// Flags is a bitmask of boolean configuration options for an
// Operation.
type Flags uint8

const (
	FlagPlanarMode Flags = 1 << iota
	FlagNormalVertexSplitting
	FlagTriangleWindingCCW
	FlagBoundaryLock
	// FlagContinuousVertices is reserved for a future continuous-vertex
	// mode; the engine accepts it without erroring and treats it as a
	// no-op.
	FlagContinuousVertices
)

// Operation bundles a decimation run's configuration and output
// counters, built via chained With*/Set* methods matching the teacher's
// NewMaterial()/Transform.SetPosition() constructor-then-setter idiom.
type Operation struct {
	input Buffers

	vertexAlloc              int
	featureSize              float64
	targetVertexCountMax     int
	syncStepCount            int
	syncStepAbort            int
	boundaryWeight           float64
	planarDeviationThreshold float64
	maxCollapseAcceptCost    float64

	flags Flags

	statusFn               StatusFunc
	statusIntervalTriangles int

	log *logger
	ctx context.Context

	// Output counters, populated by Decimate/DecimateBudget.
	VertexCount     int
	TriangleCount   int
	DecimationCount int
	CollisionCount  int
}

// NewOperation builds an Operation over input with its default
// syncstep schedule (syncStepCount=64, syncStepAbort=2^20) and a
// vertex allocation budget defaulting to the input's reserved vertex
// capacity (VertexCap).
func NewOperation(input Buffers) *Operation {
	return &Operation{
		input:                    input,
		vertexAlloc:              input.VertexCap(),
		syncStepCount:            64,
		syncStepAbort:            1 << 20,
		planarDeviationThreshold: coplanarDefaultThreshold,
		ctx:                      context.Background(),
	}
}

func (op *Operation) WithFeatureSize(f float64) *Operation        { op.featureSize = f; return op }
func (op *Operation) WithTargetVertexCountMax(n int) *Operation   { op.targetVertexCountMax = n; return op }
func (op *Operation) WithSyncStepCount(n int) *Operation          { op.syncStepCount = n; return op }
func (op *Operation) WithSyncStepAbort(n int) *Operation          { op.syncStepAbort = n; return op }
func (op *Operation) WithBoundaryWeight(w float64) *Operation     { op.boundaryWeight = w; return op }
func (op *Operation) WithMaxCollapseAcceptCost(c float64) *Operation {
	op.maxCollapseAcceptCost = c
	return op
}

// SetPlanarDeviationThreshold overrides the default coplanarity
// threshold.
func (op *Operation) SetPlanarDeviationThreshold(t float64) *Operation {
	op.planarDeviationThreshold = t
	return op
}

// WithFlags enables the given flags, additively.
func (op *Operation) WithFlags(f Flags) *Operation { op.flags |= f; return op }

// WithStatus registers a progress callback. Deliveries are rate-limited
// per stage to at most one every 50ms, and a stage's final update
// (Progress 1) is always delivered; intervalTriangles is stored but
// does not affect delivery.
func (op *Operation) WithStatus(fn StatusFunc, intervalTriangles int) *Operation {
	op.statusFn = fn
	op.statusIntervalTriangles = intervalTriangles
	return op
}

// WithLogHandler attaches a structured logger backed by handler; a
// nil handler leaves the Operation with its default no-op logger.
func (op *Operation) WithLogHandler(handler slog.Handler) *Operation {
	if handler != nil {
		op.log = NewLogger(handler)
	}
	return op
}

// WithContext attaches a cancellation context, checked cooperatively
// at each syncstep barrier.
func (op *Operation) WithContext(ctx context.Context) *Operation {
	if ctx != nil {
		op.ctx = ctx
	}
	return op
}

// validate checks the Operation's configuration for obvious
// contradictions; no mutation of the input has occurred when this
// returns an error.
func (op *Operation) validate() error {
	if op.input == nil {
		return ErrConfigurationInvalid
	}
	if vf := op.input.VertexFormat(); vf != VertexFormatFloat32 && vf != VertexFormatFloat64 {
		return ErrConfigurationInvalid
	}
	if xf := op.input.IndexFormat(); xf != IndexFormatUint32 && xf != IndexFormatInt32 {
		return ErrConfigurationInvalid
	}
	if op.input.VertexCount() <= 0 || op.input.TriangleCount() <= 0 {
		return ErrConfigurationInvalid
	}
	if op.featureSize < 0 {
		return ErrConfigurationInvalid
	}
	if op.syncStepCount <= 0 {
		return ErrConfigurationInvalid
	}
	if op.flags&FlagNormalVertexSplitting != 0 && op.vertexAlloc < op.input.VertexCount() {
		return ErrConfigurationInvalid
	}
	return nil
}

func (op *Operation) costParams() costParams {
	return costParams{
		featureSize:     op.featureSize,
		maxCollapseCost: maxCollapseCostFor(op.featureSize),
		boundaryWeight:  op.boundaryWeight,
		planarMode:      op.flags&FlagPlanarMode != 0,
		planarThreshold: op.planarDeviationThreshold,
	}
}

func (op *Operation) driverParams() driverParams {
	return driverParams{
		cost:                  op.costParams(),
		syncStepCount:         op.syncStepCount,
		syncStepAbort:         op.syncStepAbort,
		targetVertexCountMax:  op.targetVertexCountMax,
		maxCollapseAcceptCost: op.maxCollapseAcceptCost,
		boundaryLock:          op.flags&FlagBoundaryLock != 0,
		normalVertexSplitting: op.flags&FlagNormalVertexSplitting != 0,
		log:                   op.log,
	}
}

// runWithMesh executes the shared BuildMesh→BuildEdges→BuildQueues→
// Decimate→Cleanup→Pack pipeline against a concrete scalar precision,
// reporting through op's status reporter and writing counters back
// onto op.
func runWithMesh[F Scalar](op *Operation, threadCount int, reporter *statusReporter) error {
	reporter.report(StatusUpdate{Stage: StageBuildMesh, Progress: 0})
	m := buildMesh[F](op.input, op.flags&FlagTriangleWindingCCW != 0)
	reporter.report(StatusUpdate{Stage: StageBuildMesh, Progress: 1, TriangleCount: int(m.liveTriangles)})

	if op.flags&FlagBoundaryLock != 0 {
		for _, h := range m.allLiveEdges() {
			e := m.edges.At(h)
			if e.flags&edgeBoundary != 0 {
				e.flags |= edgeLocked
			}
		}
	}

	reporter.report(StatusUpdate{Stage: StageBuildEdges, Progress: 1, TriangleCount: int(m.liveTriangles)})

	assignment := partitionTriangles(m, threadCount)
	reporter.report(StatusUpdate{Stage: StageBuildQueues, Progress: 1, TriangleCount: int(m.liveTriangles)})

	reporter.report(StatusUpdate{Stage: StageDecimate, Progress: 0, TriangleCount: int(m.liveTriangles)})
	err := runDecimation(op.ctx, m, assignment, threadCount, op.driverParams())
	reporter.report(StatusUpdate{Stage: StageDecimate, Progress: 1, TriangleCount: int(m.liveTriangles)})
	if err != nil {
		if op.log != nil {
			op.log.canceled("Decimate")
		}
	}

	reporter.report(StatusUpdate{Stage: StageCleanup, Progress: 0})
	for _, h := range m.allLiveEdges() {
		e := m.edges.At(h)
		if e.flags&edgeNonManifold != 0 && op.log != nil {
			op.log.topologyWarning(h, len(e.tris))
		}
	}
	reporter.report(StatusUpdate{Stage: StageCleanup, Progress: 1})

	reporter.report(StatusUpdate{Stage: StagePack, Progress: 0})
	packMesh(m, op.input)
	reporter.report(StatusUpdate{Stage: StagePack, Progress: 1})

	op.VertexCount = op.input.VertexCount()
	op.TriangleCount = op.input.TriangleCount()
	op.DecimationCount = int(m.decimations.Load())
	op.CollisionCount = int(m.collisions.Load())

	reporter.report(StatusUpdate{Stage: StageDone, Progress: 1, TriangleCount: op.TriangleCount})

	return err
}

// Decimate runs one decimation over op.input with threadCount workers.
func Decimate(op *Operation, threadCount int) error {
	if err := op.validate(); err != nil {
		return err
	}
	if threadCount < 1 {
		threadCount = 1
	}
	reporter := newStatusReporter(op.statusFn, op.statusIntervalTriangles)
	reporter.report(StatusUpdate{Stage: StageInit, Progress: 1})

	switch op.input.VertexFormat() {
	case VertexFormatFloat32:
		return runWithMesh[float32](op, threadCount, reporter)
	default:
		return runWithMesh[float64](op, threadCount, reporter)
	}
}

// DecimateBudget wraps Decimate in a binary-search driver that adjusts
// feature size until the triangle count is at or below maxTriangles.
func DecimateBudget(op *Operation, maxTriangles, threadCount int, budget BudgetOptions) error {
	if err := op.validate(); err != nil {
		return err
	}
	if maxTriangles <= 0 {
		return ErrConfigurationInvalid
	}
	if threadCount < 1 {
		threadCount = 1
	}

	diagonal := meshDiagonal(op.input)

	result, err := runBudgetSearch(op.ctx, diagonal, maxTriangles, budget, op.log, func(featureSize float64) (int, error) {
		trial := *op
		trial.input = cloneBuffers(op.input)
		trial.featureSize = featureSize
		trial.statusFn = nil
		if e := Decimate(&trial, threadCount); e != nil && e != ErrBudgetUnreachable {
			return trial.TriangleCount, e
		}
		return trial.TriangleCount, nil
	})

	op.featureSize = result.FinalFeatureSize
	if result.Met || err == ErrBudgetUnreachable {
		_ = Decimate(op, threadCount)
	}
	return err
}

// DecimateToRatio is a convenience wrapper choosing a feature size from
// a target triangle ratio, mirroring the teacher's
// SimplifyMeshToRatio/GenerateAdvancedLODChain call surface (see
// SUPPLEMENTED FEATURES) without depending on any renderer-facing LOD
// type.
func DecimateToRatio(op *Operation, ratio float64, threadCount int) error {
	if ratio <= 0 || ratio >= 1 {
		return ErrConfigurationInvalid
	}
	target := int(float64(op.input.TriangleCount()) * ratio)
	if target < 1 {
		target = 1
	}
	return DecimateBudget(op, target, threadCount, BudgetOptions{})
}
