package decimate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuadricAddScale(t *testing.T) {
	a := NewQuadric(1, 0, 0, -1)
	b := NewQuadric(0, 1, 0, -1)
	sum := a.Add(b)
	for i := range sum.A {
		assert.InDelta(t, a.A[i]+b.A[i], sum.A[i], 1e-12)
	}

	scaled := a.Scale(2)
	for i := range scaled.A {
		assert.InDelta(t, a.A[i]*2, scaled.A[i], 1e-12)
	}
}

func TestQuadricErrorIsZeroOnThePlane(t *testing.T) {
	// Plane x=1 (a=1,b=0,c=0,d=-1); any point with x=1 has zero error.
	q := NewQuadric(1, 0, 0, -1)
	assert.InDelta(t, 0, q.Error(1, 5, -3), 1e-9)
	assert.Greater(t, q.Error(2, 0, 0), 0.0)
}

func TestQuadricOptimizeRecoversIntersectionOfThreePlanes(t *testing.T) {
	// Three mutually orthogonal planes x=1, y=2, z=3 intersect
	// uniquely at (1,2,3); their summed quadric should minimize there.
	q := NewQuadric(1, 0, 0, -1).
		Add(NewQuadric(0, 1, 0, -2)).
		Add(NewQuadric(0, 0, 1, -3))

	x, y, z, ok := q.Optimize()
	require.True(t, ok)
	assert.InDelta(t, 1, x, 1e-9)
	assert.InDelta(t, 2, y, 1e-9)
	assert.InDelta(t, 3, z, 1e-9)
	assert.InDelta(t, 0, q.Error(x, y, z), 1e-9)
}

func TestQuadricOptimizeIllConditionedFallsBack(t *testing.T) {
	// A single plane's quadric alone is rank-1: the 3x3 subsystem is
	// singular (every point on the plane is equally optimal).
	q := NewQuadric(1, 0, 0, -1)
	_, _, _, ok := q.Optimize()
	assert.False(t, ok)
}

func TestCollapsePointFallsBackToMidpoint(t *testing.T) {
	q := NewQuadric(1, 0, 0, -1)
	x, y, z, cost := collapsePoint(q, 0, 0, 0, 2, 0, 0)
	assert.InDelta(t, 1, x, 1e-9)
	assert.InDelta(t, 0, y, 1e-9)
	assert.InDelta(t, 0, z, 1e-9)
	assert.InDelta(t, 0, cost, 1e-9)
}

func TestCollapsePointNeverReturnsNonFinite(t *testing.T) {
	var zero Quadric
	x, y, z, cost := collapsePoint(zero, 0, 0, 0, 1, 1, 1)
	assert.False(t, math.IsNaN(cost) || math.IsInf(cost, 0))
	assert.False(t, math.IsNaN(x) || math.IsNaN(y) || math.IsNaN(z))
}
