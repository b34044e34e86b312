package decimate

import (
	"math"

	"golang.org/x/exp/slices"
)

// partitionsPerThread controls how many leaves each worker owns, so
// cross-partition stealing stays rare without forcing one giant
// partition per worker.
const partitionsPerThread = 4

// aabb is a minimal axis-aligned bounding box, grounded in the
// teacher's bounding_volumes.go AABB type, trimmed to the two
// operations the bisection actually needs.
type aabb struct {
	minX, minY, minZ float64
	maxX, maxY, maxZ float64
}

func (b *aabb) expand(x, y, z float64) {
	if x < b.minX {
		b.minX = x
	}
	if y < b.minY {
		b.minY = y
	}
	if z < b.minZ {
		b.minZ = z
	}
	if x > b.maxX {
		b.maxX = x
	}
	if y > b.maxY {
		b.maxY = y
	}
	if z > b.maxZ {
		b.maxZ = z
	}
}

func emptyAABB() aabb {
	inf := math.Inf(1)
	return aabb{
		minX: inf, minY: inf, minZ: inf,
		maxX: -inf, maxY: -inf, maxZ: -inf,
	}
}

// longestAxis reports which axis (0=x,1=y,2=z) spans the largest
// extent, used to pick the bisection plane.
func (b *aabb) longestAxis() int {
	dx := b.maxX - b.minX
	dy := b.maxY - b.minY
	dz := b.maxZ - b.minZ
	axis := 0
	longest := dx
	if dy > longest {
		axis, longest = 1, dy
	}
	if dz > longest {
		axis = 2
	}
	return axis
}

// centroidEntry pairs a triangle handle with its centroid, the unit
// the bisection sorts and splits.
type centroidEntry struct {
	tri        Handle
	cx, cy, cz float64
}

// partitionTriangles recursively bisects the
// triangle set along the longest axis of its bounding box into
// threadCount*partitionsPerThread leaves, reusing the teacher's
// spatial_partitioning.go octree idiom (bounding-box-driven recursive
// subdivision) but splitting the triangle set in two at each level
// instead of subdividing space eight ways. Returns, for every live
// triangle handle, the partition index it was assigned to.
func partitionTriangles[F Scalar](m *mesh[F], threadCount int) map[Handle]int {
	leaves := threadCount * partitionsPerThread
	if leaves < 1 {
		leaves = 1
	}

	var entries []centroidEntry
	for h := Handle(0); int(h) < m.triangles.Len(); h++ {
		t := m.triangles.At(h)
		if t.retired {
			continue
		}
		v0 := m.vertices.At(t.v[0])
		v1 := m.vertices.At(t.v[1])
		v2 := m.vertices.At(t.v[2])
		x0, y0, z0 := v0.pos.Float64()
		x1, y1, z1 := v1.pos.Float64()
		x2, y2, z2 := v2.pos.Float64()
		entries = append(entries, centroidEntry{
			tri: h,
			cx:  (x0 + x1 + x2) / 3,
			cy:  (y0 + y1 + y2) / 3,
			cz:  (z0 + z1 + z2) / 3,
		})
	}

	assignment := make(map[Handle]int, len(entries))
	bisect(entries, leaves, 0, assignment)
	return assignment
}

// bisect recursively splits entries into numLeaves groups, assigning
// every entry's tri handle to partition base+offset in assignment. A
// single leaf (numLeaves==1) terminates the recursion.
func bisect(entries []centroidEntry, numLeaves, base int, assignment map[Handle]int) {
	if numLeaves <= 1 || len(entries) <= 1 {
		for _, e := range entries {
			assignment[e.tri] = base
		}
		return
	}

	box := emptyAABB()
	for _, e := range entries {
		box.expand(e.cx, e.cy, e.cz)
	}
	axis := box.longestAxis()

	slices.SortFunc(entries, func(a, b centroidEntry) int {
		var av, bv float64
		switch axis {
		case 0:
			av, bv = a.cx, b.cx
		case 1:
			av, bv = a.cy, b.cy
		default:
			av, bv = a.cz, b.cz
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	})

	mid := len(entries) / 2
	leftLeaves := numLeaves / 2
	rightLeaves := numLeaves - leftLeaves

	bisect(entries[:mid], leftLeaves, base, assignment)
	bisect(entries[mid:], rightLeaves, base+leftLeaves, assignment)
}

// assignWorkers groups the partition leaves into threadCount buckets
// (round-robin), giving each parallel-driver worker goroutine
// ownership of one or more partitions instead of spawning one
// goroutine per leaf.
func assignWorkers(partitions []*partitionState, threadCount int) [][]*partitionState {
	if threadCount < 1 {
		threadCount = 1
	}
	if threadCount > len(partitions) {
		threadCount = len(partitions)
	}
	workers := make([][]*partitionState, threadCount)
	for i, part := range partitions {
		w := i % threadCount
		workers[w] = append(workers[w], part)
	}
	return workers
}
