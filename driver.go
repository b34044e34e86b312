package decimate

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// driverParams bundles the per-run scalars the parallel driver needs
// beyond costParams, mirroring the Operation's configuration fields.
type driverParams struct {
	cost                  costParams
	syncStepCount         int
	syncStepAbort         int
	targetVertexCountMax  int
	maxCollapseAcceptCost float64
	boundaryLock          bool
	normalVertexSplitting bool
	log                   *logger
}

// partitionState is one partition's share of the mesh: its id and its
// own min-heap. Triangle ownership is recorded on each triangleRecord's
// partition field, not here.
type partitionState struct {
	id   int
	heap *edgeHeap
}

// computeEdgeCost evaluates the collapse cost for edge eh against its
// current (possibly just-rewired) endpoints.
func computeEdgeCost[F Scalar](m *mesh[F], eh Handle, p costParams) float64 {
	e := m.edges.At(eh)
	v0h, v1h := m.resolve(e.v0), m.resolve(e.v1)
	if v0h == v1h {
		return failCost
	}
	v0, v1 := m.vertices.At(v0h), m.vertices.At(v1h)
	merged := v0.quadric.Add(v1.quadric)
	v0x, v0y, v0z := v0.pos.Float64()
	v1x, v1y, v1z := v1.pos.Float64()
	px, py, pz, value := collapsePoint(merged, v0x, v0y, v0z, v1x, v1y, v1z)

	worstAspect := worstPostCollapseAspect(m, v0h, v1h)
	worstDev := 0.0
	if p.planarMode {
		worstDev = worstNormalDeviation(m, v0h, v1h, px, py, pz)
	}
	onBoundary := e.flags&edgeBoundary != 0

	return evalCost(value, v0.area, v1.area, onBoundary, worstAspect, worstDev, p)
}

// worstPostCollapseAspect scans the triangles incident to either
// endpoint and reports the smallest aspect ratio among them (used by
// compactnessPenalty). Aspects are measured at the triangles' current
// vertex positions; the collapse point is not substituted.
func worstPostCollapseAspect[F Scalar](m *mesh[F], v0h, v1h Handle) float64 {
	worst := 1.0
	scan := func(vh Handle) {
		for _, th := range m.vertices.At(vh).tris {
			t := m.triangles.At(th)
			if t.retired {
				continue
			}
			p := [3][3]float64{}
			for i, vv := range t.v {
				x, y, z := m.vertices.At(vv).pos.Float64()
				p[i] = [3]float64{x, y, z}
			}
			a := triangleAspect(p[0][0], p[0][1], p[0][2], p[1][0], p[1][1], p[1][2], p[2][0], p[2][1], p[2][2])
			if a < worst {
				worst = a
			}
		}
	}
	scan(v0h)
	scan(v1h)
	return worst
}

// worstNormalDeviation compares each affected triangle's current
// normal against its normal if v0/v1 were moved to the candidate
// point, for the planar-mode coplanar fast-path.
func worstNormalDeviation[F Scalar](m *mesh[F], v0h, v1h Handle, px, py, pz float64) float64 {
	worst := 0.0
	scan := func(vh Handle) {
		for _, th := range m.vertices.At(vh).tris {
			t := m.triangles.At(th)
			if t.retired {
				continue
			}
			pos := [3][3]float64{}
			for i, vv := range t.v {
				if vv == v0h || vv == v1h {
					pos[i] = [3]float64{px, py, pz}
				} else {
					x, y, z := m.vertices.At(vv).pos.Float64()
					pos[i] = [3]float64{x, y, z}
				}
			}
			nx, ny, nz, _, ok := triangleNormal(
				pos[0][0], pos[0][1], pos[0][2],
				pos[1][0], pos[1][1], pos[1][2],
				pos[2][0], pos[2][1], pos[2][2],
			)
			if !ok {
				continue
			}
			d := normalDeviation(nx, ny, nz, t.nx, t.ny, t.nz)
			if d > worst {
				worst = d
			}
		}
	}
	scan(v0h)
	scan(v1h)
	return worst
}

// buildPartitions assigns every live edge to the partition of an
// arbitrary incident triangle, seeds each partition's heap with
// its edges' initial costs, and returns the partitions plus an
// edge→partition index.
func buildPartitions[F Scalar](m *mesh[F], triAssignment map[Handle]int, numPartitions int, p costParams) ([]*partitionState, map[Handle]int) {
	partitions := make([]*partitionState, numPartitions)
	for i := range partitions {
		partitions[i] = &partitionState{id: i, heap: newEdgeHeap()}
	}

	for th, part := range triAssignment {
		m.triangles.At(th).partition = part
	}

	edgePartition := make(map[Handle]int)
	for _, h := range m.allLiveEdges() {
		e := m.edges.At(h)
		if e.retired || len(e.tris) == 0 {
			continue
		}
		part := triAssignment[e.tris[0]]
		if part < 0 || part >= numPartitions {
			part = 0
		}
		edgePartition[h] = part
		e.partition = part
		cost := computeEdgeCost(m, h, p)
		e.cost = cost
		partitions[part].heap.push(h, cost)
	}

	return partitions, edgePartition
}

// runDecimation runs the syncstep loop: threadCount workers,
// each owning one or more partitions, race their own partition's
// cheapest operation against a quadratically-ramping cost ceiling,
// deferring cross-partition collapses to a barrier drained by the
// coordinator. Returns ErrCanceled if ctx is done at a barrier.
func runDecimation[F Scalar](ctx context.Context, m *mesh[F], triAssignment map[Handle]int, threadCount int, dp driverParams) error {
	numPartitions := threadCount * partitionsPerThread
	if numPartitions < 1 {
		numPartitions = 1
	}
	partitions, edgePartition := buildPartitions(m, triAssignment, numPartitions, dp.cost)
	workers := assignWorkers(partitions, threadCount)

	syncStepCount := dp.syncStepCount
	if syncStepCount <= 0 {
		syncStepCount = 64
	}
	abort := dp.syncStepAbort
	if abort <= 0 {
		abort = 1 << 20
	}

	acceptCeiling := dp.maxCollapseAcceptCost
	if acceptCeiling <= 0 {
		acceptCeiling = dp.cost.maxCollapseCost
	}

	targetReached := func() bool {
		return dp.targetVertexCountMax > 0 && m.liveVertices <= int64(dp.targetVertexCountMax)
	}

	steps := 0
	for i := 0; i < syncStepCount && steps < abort; i++ {
		if err := ctx.Err(); err != nil {
			return ErrCanceled
		}

		ramp := float64(i) / float64(syncStepCount)
		maxCost := dp.cost.maxCollapseCost * ramp * ramp
		if targetReached() {
			maxCost = acceptCeiling
		}
		if maxCost > acceptCeiling {
			maxCost = acceptCeiling
		}

		var deferredMu sync.Mutex
		var deferred []Handle

		g, gctx := errgroup.WithContext(ctx)
		for _, owned := range workers {
			owned := owned
			g.Go(func() error {
				// Round-robin over this worker's owned partitions until
				// none of them have any operation left within maxCost.
				for {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					progressed := false
					for _, part := range owned {
						cost, ok := part.heap.peekMinCost()
						if !ok || cost > maxCost {
							continue
						}
						eh, _, ok := part.heap.popMin()
						if !ok {
							continue
						}
						progressed = true
						e := m.edges.At(eh)
						if e.retired {
							continue
						}
						if crossesPartition(m, eh, edgePartition, part.id) {
							deferredMu.Lock()
							deferred = append(deferred, eh)
							deferredMu.Unlock()
							continue
						}
						processCollapse(m, eh, dp, partitions, edgePartition)
					}
					if !progressed {
						return nil
					}
				}
			})
		}
		if err := g.Wait(); err != nil {
			return ErrCanceled
		}

		// Barrier: drain deferred cross-partition operations serially.
		for _, eh := range deferred {
			e := m.edges.At(eh)
			if e.retired {
				continue
			}
			processCollapse(m, eh, dp, partitions, edgePartition)
		}

		if targetReached() && i >= syncStepCount-1 {
			break
		}
		steps++
	}

	return nil
}

// crossesPartition reports whether executing eh's collapse from
// owner's worker could touch mesh state outside owner's partition.
// A collapse's footprint is not just the edge's own 1-2 incident
// triangles: rewire (collapse.go) walks and mutates every triangle
// and edge incident to *either* endpoint's full 1-ring, and
// processCollapse requeues every edge touching that 1-ring onto
// whichever partition owns it. So every one of those triangles, and
// every one of their edges, must belong to owner or this collapse
// must be deferred to the serial barrier instead of executed
// concurrently.
func crossesPartition[F Scalar](m *mesh[F], eh Handle, edgePartition map[Handle]int, owner int) bool {
	e := m.edges.At(eh)
	if e.flags&edgeCrossPartition != 0 {
		return true
	}

	touchesForeign := func(vh Handle) bool {
		for _, th := range m.vertices.At(vh).tris {
			t := m.triangles.At(th)
			if t.retired {
				continue
			}
			if t.partition != owner {
				return true
			}
			for _, teh := range t.edges {
				te := m.edges.At(teh)
				if !te.retired && edgePartition[teh] != owner {
					return true
				}
			}
		}
		return false
	}

	v0h, v1h := m.resolve(e.v0), m.resolve(e.v1)
	crosses := edgePartition[eh] != owner || touchesForeign(v0h) || touchesForeign(v1h)
	if crosses {
		e.flags |= edgeCrossPartition
	}
	return crosses
}

// processCollapse attempts the collapse, and on acceptance requeues
// every edge touching the merged 1-ring with a freshly computed cost;
// on rejection it re-pushes the edge at failCost, above every syncstep
// ceiling, so it is only retried if a later neighbouring collapse
// requeues it with a freshly computed cost.
func processCollapse[F Scalar](m *mesh[F], eh Handle, dp driverParams, partitions []*partitionState, edgePartition map[Handle]int) {
	e := m.edges.At(eh)
	outcome := tryCollapse(m, eh, dp.cost, partitions, edgePartition)
	part := partitions[edgePartition[eh]]

	if outcome != collapseAccepted {
		part.heap.push(eh, failCost)
		e.cost = failCost
		return
	}

	e.retired = true
	v0h := m.resolve(e.v0)
	v0 := m.vertices.At(v0h)
	m.liveVertices--

	if dp.normalVertexSplitting {
		trySplitVertex(m, v0h, dp.log)
	}

	for _, th := range v0.tris {
		t := m.triangles.At(th)
		if t.retired {
			continue
		}
		for i := 0; i < 3; i++ {
			a, b := t.v[i], t.v[(i+1)%3]
			key := newEdgeKey(a, b)
			neh, found := m.edgeIndex.Lookup(key)
			if !found {
				continue
			}
			ne := m.edges.At(neh)
			if ne.retired {
				continue
			}
			cost := computeEdgeCost(m, neh, dp.cost)
			ne.cost = cost
			np := partitions[edgePartition[neh]]
			if np == nil {
				np = part
			}
			if _, live := np.heap.byEdge[neh]; live {
				np.heap.update(neh, cost)
			} else {
				np.heap.push(neh, cost)
			}
		}
	}
}
