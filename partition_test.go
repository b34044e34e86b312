package decimate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionTrianglesCoversEveryLiveTriangleExactlyOnce(t *testing.T) {
	buf := GenUVSphere(10, 10)
	m := buildMesh[float64](buf, true)

	assignment := partitionTriangles(m, 4)
	assert.Equal(t, m.triangles.Len(), len(assignment))

	for h := Handle(0); int(h) < m.triangles.Len(); h++ {
		_, ok := assignment[h]
		assert.True(t, ok, "triangle %d missing from partition assignment", h)
	}
}

func TestPartitionTrianglesSingleThreadIsOneLeaf(t *testing.T) {
	buf := GenUnitCube()
	m := buildMesh[float64](buf, true)

	assignment := partitionTriangles(m, 0) // threadCount<1 clamps to 1 leaf
	for _, p := range assignment {
		assert.Equal(t, 0, p)
	}
}

func TestBisectSplitsEvenlyAcrossLeaves(t *testing.T) {
	var entries []centroidEntry
	for i := 0; i < 16; i++ {
		entries = append(entries, centroidEntry{tri: Handle(i), cx: float64(i), cy: 0, cz: 0})
	}
	assignment := make(map[Handle]int)
	bisect(entries, 4, 0, assignment)

	counts := make(map[int]int)
	for _, p := range assignment {
		counts[p]++
	}
	assert.Len(t, counts, 4)
	for _, c := range counts {
		assert.Equal(t, 4, c)
	}
}

func TestBisectSingleLeafAssignsBase(t *testing.T) {
	entries := []centroidEntry{{tri: 0, cx: 1, cy: 2, cz: 3}, {tri: 1, cx: 4, cy: 5, cz: 6}}
	assignment := make(map[Handle]int)
	bisect(entries, 1, 7, assignment)
	assert.Equal(t, 7, assignment[0])
	assert.Equal(t, 7, assignment[1])
}

func TestAABBLongestAxis(t *testing.T) {
	b := emptyAABB()
	b.expand(0, 0, 0)
	b.expand(10, 1, 2)
	assert.Equal(t, 0, b.longestAxis())

	b2 := emptyAABB()
	b2.expand(0, 0, 0)
	b2.expand(1, 10, 2)
	assert.Equal(t, 1, b2.longestAxis())
}

func TestAssignWorkersDistributesRoundRobin(t *testing.T) {
	partitions := make([]*partitionState, 6)
	for i := range partitions {
		partitions[i] = &partitionState{id: i, heap: newEdgeHeap()}
	}

	workers := assignWorkers(partitions, 2)
	require.Len(t, workers, 2)
	assert.Len(t, workers[0], 3)
	assert.Len(t, workers[1], 3)

	seen := make(map[int]bool)
	for _, w := range workers {
		for _, p := range w {
			seen[p.id] = true
		}
	}
	assert.Len(t, seen, 6, "every partition must be owned by exactly one worker")
}

func TestAssignWorkersClampsThreadCountToPartitionCount(t *testing.T) {
	partitions := []*partitionState{{id: 0, heap: newEdgeHeap()}}
	workers := assignWorkers(partitions, 8)
	assert.Len(t, workers, 1)
}

func TestAssignWorkersClampsBelowOne(t *testing.T) {
	partitions := []*partitionState{{id: 0, heap: newEdgeHeap()}}
	workers := assignWorkers(partitions, 0)
	assert.Len(t, workers, 1)
}
