package decimate

import (
	"context"
	"math"
	"time"
)

// BudgetOptions configures the binary-search driver of §4.I/§6.
type BudgetOptions struct {
	// MaxIterations bounds the number of probes; 0 defaults to 20.
	MaxIterations int
	// Tolerance is the acceptable relative shortfall of finaltricount
	// below max_triangles (a probe above max_triangles is never
	// accepted); 0 defaults to 0.05.
	Tolerance float64
	// TimeLimit bounds total wall-clock spent probing; 0 disables.
	TimeLimit time.Duration
}

// BudgetResult reports the binary search's outcome. DecimateBudget
// applies FinalFeatureSize to the caller's Operation and re-runs
// Decimate with it; the other fields are not passed back to the caller.
type BudgetResult struct {
	FinalTriCount   int
	FinalFeatureSize float64
	IterationCount  int
	Met             bool
}

// meshDiagonal returns the bounding-box diagonal length of buf's
// vertices, the upper end of §4.I's binary-search interval.
func meshDiagonal(buf Buffers) float64 {
	box := emptyAABB()
	for i := 0; i < buf.VertexCount(); i++ {
		x, y, z := buf.VertexAt(i)
		box.expand(x, y, z)
	}
	dx := box.maxX - box.minX
	dy := box.maxY - box.minY
	dz := box.maxZ - box.minZ
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// runBudgetSearch implements §4.I: binary search over feature_size in
// [epsilon, diagonal], where probe(f) runs a full decimation on a
// fresh snapshot and reports the resulting triangle count. probe must
// be monotone non-increasing in f (larger feature size never yields
// more triangles) for the search to be valid, per §4.I's invariant.
func runBudgetSearch(ctx context.Context, diagonal float64, maxTriangles int, opts BudgetOptions, log *logger, probe func(featureSize float64) (triCount int, err error)) (BudgetResult, error) {
	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = 20
	}
	tolerance := opts.Tolerance
	if tolerance <= 0 {
		tolerance = 0.05
	}

	lo, hi := 1e-6, diagonal
	if hi <= lo {
		hi = lo * 2
	}

	var bestFeasible, smallestObserved struct {
		feature  float64
		triCount int
		set      bool
	}

	start := time.Now()
	iterations := 0

	for iterations < maxIter {
		if opts.TimeLimit > 0 && time.Since(start) > opts.TimeLimit {
			break
		}
		if err := ctx.Err(); err != nil {
			return BudgetResult{}, ErrCanceled
		}

		mid := (lo + hi) / 2
		triCount, err := probe(mid)
		iterations++
		if log != nil {
			log.debugBudgetProbe(iterations, mid, triCount)
		}
		if err != nil {
			return BudgetResult{}, err
		}

		if !smallestObserved.set || triCount < smallestObserved.triCount {
			smallestObserved = struct {
				feature  float64
				triCount int
				set      bool
			}{mid, triCount, true}
		}

		relOvershoot := math.Abs(float64(triCount-maxTriangles)) / float64(maxTriangles)
		if triCount <= maxTriangles {
			if !bestFeasible.set || mid < bestFeasible.feature {
				bestFeasible = struct {
					feature  float64
					triCount int
					set      bool
				}{mid, triCount, true}
			}
			if relOvershoot <= tolerance {
				return BudgetResult{
					FinalTriCount:    triCount,
					FinalFeatureSize: mid,
					IterationCount:   iterations,
					Met:              true,
				}, nil
			}
			// Feasible but not tight enough: shrink feature size to
			// use fewer collapses (tricount monotone decreasing in
			// feature size, so lower hi).
			hi = mid
		} else {
			lo = mid
		}
	}

	if bestFeasible.set {
		return BudgetResult{
			FinalTriCount:    bestFeasible.triCount,
			FinalFeatureSize: bestFeasible.feature,
			IterationCount:   iterations,
			Met:              true,
		}, nil
	}
	return BudgetResult{
		FinalTriCount:    smallestObserved.triCount,
		FinalFeatureSize: smallestObserved.feature,
		IterationCount:   iterations,
		Met:              false,
	}, ErrBudgetUnreachable
}
