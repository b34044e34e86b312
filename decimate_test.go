package decimate_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	decimate "github.com/mirstar13/go-mesh-decimate"
)

// triangleValid reports whether a triangle's three indices are
// in-bounds and pairwise distinct.
func triangleValid(a, b, c, vertexCount int) bool {
	if a < 0 || b < 0 || c < 0 || a >= vertexCount || b >= vertexCount || c >= vertexCount {
		return false
	}
	return a != b && b != c && a != c
}

func TestDecimateUnitCubeWithVertexTargetKeepsValidTriangles(t *testing.T) {
	verts := []float64{
		-1, -1, -1, 1, -1, -1, 1, 1, -1, -1, 1, -1,
		-1, -1, 1, 1, -1, 1, 1, 1, 1, -1, 1, 1,
	}
	idx := []uint32{
		0, 1, 2, 0, 2, 3,
		4, 6, 5, 4, 7, 6,
		0, 4, 5, 0, 5, 1,
		3, 2, 6, 3, 6, 7,
		0, 3, 7, 0, 7, 4,
		1, 5, 6, 1, 6, 2,
	}
	buf := decimate.NewFloat64Input(append([]float64(nil), verts...), append([]uint32(nil), idx...), 8)

	op := decimate.NewOperation(buf).
		WithFeatureSize(0.1).
		WithFlags(decimate.FlagTriangleWindingCCW).
		WithTargetVertexCountMax(6)

	err := decimate.Decimate(op, 1)
	require.NoError(t, err)
	assert.LessOrEqual(t, op.VertexCount, 8)
	assert.Greater(t, op.TriangleCount, 0)

	for i := 0; i < buf.TriangleCount(); i++ {
		a, b, c := buf.TriangleAt(i)
		assert.True(t, triangleValid(a, b, c, buf.VertexCount()), "triangle %d has degenerate/out-of-range indices", i)
	}
}

func TestDecimateTrivialCaseIsIdempotent(t *testing.T) {
	// A single flat triangle strip so small no collapse can satisfy a
	// near-zero feature size without an infeasible quality tradeoff;
	// a feature size of 0 disables collapsing entirely.
	verts := []float64{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}
	idx := []uint32{0, 1, 2, 0, 2, 3}
	buf := decimate.NewFloat64Input(append([]float64(nil), verts...), append([]uint32(nil), idx...), 4)

	op := decimate.NewOperation(buf).
		WithFeatureSize(0).
		WithFlags(decimate.FlagTriangleWindingCCW)

	err := decimate.Decimate(op, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, op.VertexCount)
	assert.Equal(t, 2, op.TriangleCount)
}

func TestDecimateSphereBudgetSearchConverges(t *testing.T) {
	buf := genUVSphereFixture(20, 20)
	initialTris := buf.TriangleCount()

	op := decimate.NewOperation(buf).WithFlags(decimate.FlagTriangleWindingCCW)
	target := initialTris / 2

	err := decimate.DecimateBudget(op, target, 2, decimate.BudgetOptions{Tolerance: 0.1, MaxIterations: 25})
	if err != nil {
		require.ErrorIs(t, err, decimate.ErrBudgetUnreachable)
	}
	assert.Greater(t, op.TriangleCount, 0)
	assert.Less(t, op.TriangleCount, initialTris, "a non-trivial budget search must shrink the sphere at all")
}

func TestDecimateAggressiveCollapseShrinksSphere(t *testing.T) {
	buf := genUVSphereFixture(20, 20)
	initialTris := buf.TriangleCount()

	op := decimate.NewOperation(buf).
		WithFeatureSize(4.0).
		WithFlags(decimate.FlagTriangleWindingCCW)

	err := decimate.Decimate(op, 2)
	require.NoError(t, err)
	assert.Less(t, op.TriangleCount, initialTris)

	for i := 0; i < buf.TriangleCount(); i++ {
		a, b, c := buf.TriangleAt(i)
		assert.True(t, triangleValid(a, b, c, buf.VertexCount()))
	}
}

func TestDecimatePlanarModeGridPreservesFlatness(t *testing.T) {
	buf := genFlatGridFixture(20, 20, 10)
	initialTris := buf.TriangleCount()

	op := decimate.NewOperation(buf).
		WithFeatureSize(3).
		WithFlags(decimate.FlagTriangleWindingCCW | decimate.FlagPlanarMode)

	err := decimate.Decimate(op, 2)
	require.NoError(t, err)
	assert.Less(t, op.TriangleCount, initialTris, "planar mode should still collapse a perfectly flat grid aggressively")

	// Every surviving vertex must remain on z=0: a flat input under
	// PLANAR_MODE must never drift off-plane.
	for i := 0; i < buf.VertexCount(); i++ {
		_, _, z := buf.VertexAt(i)
		assert.InDelta(t, 0, z, 1e-9)
	}
}

func TestDecimateBoundaryLockKeepsIsolatedTriangleIntact(t *testing.T) {
	// A single triangle has no internal edges: all three are boundary,
	// so BOUNDARY_LOCK must forbid every candidate collapse outright.
	verts := []float64{0, 0, 0, 1, 0, 0, 0, 1, 0}
	idx := []uint32{0, 1, 2}
	buf := decimate.NewFloat64Input(append([]float64(nil), verts...), append([]uint32(nil), idx...), 3)

	op := decimate.NewOperation(buf).
		WithFeatureSize(5). // aggressive enough it would otherwise collapse everything
		WithFlags(decimate.FlagTriangleWindingCCW | decimate.FlagBoundaryLock)

	err := decimate.Decimate(op, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, op.VertexCount)
	assert.Equal(t, 1, op.TriangleCount)
}

func TestDecimateBudgetUnreachableOnTinyMesh(t *testing.T) {
	buf := genCubeFixture()

	op := decimate.NewOperation(buf).WithFlags(decimate.FlagTriangleWindingCCW)
	err := decimate.DecimateBudget(op, 1, 1, decimate.BudgetOptions{MaxIterations: 10})

	if err != nil {
		assert.ErrorIs(t, err, decimate.ErrBudgetUnreachable)
	}
	assert.Greater(t, op.TriangleCount, 0, "an unreachable budget must still leave the best feasible (or smallest observed) result packed")
}

func TestDecimateRejectsInvalidConfiguration(t *testing.T) {
	buf := genCubeFixture()
	op := decimate.NewOperation(buf).WithFeatureSize(-1)
	err := decimate.Decimate(op, 1)
	assert.ErrorIs(t, err, decimate.ErrConfigurationInvalid)
}

func TestDecimateToRatioRejectsOutOfRangeRatios(t *testing.T) {
	buf := genCubeFixture()
	op := decimate.NewOperation(buf)
	assert.ErrorIs(t, decimate.DecimateToRatio(op, 0, 1), decimate.ErrConfigurationInvalid)
	assert.ErrorIs(t, decimate.DecimateToRatio(op, 1, 1), decimate.ErrConfigurationInvalid)
}

// --- local fixtures, independent of the internal package's generators_test.go helpers ---

func genCubeFixture() *decimate.Float64Input {
	verts := []float64{
		-1, -1, -1, 1, -1, -1, 1, 1, -1, -1, 1, -1,
		-1, -1, 1, 1, -1, 1, 1, 1, 1, -1, 1, 1,
	}
	idx := []uint32{
		0, 1, 2, 0, 2, 3,
		4, 6, 5, 4, 7, 6,
		0, 4, 5, 0, 5, 1,
		3, 2, 6, 3, 6, 7,
		0, 3, 7, 0, 7, 4,
		1, 5, 6, 1, 6, 2,
	}
	return decimate.NewFloat64Input(verts, idx, 8)
}

func genUVSphereFixture(rings, sectors int) *decimate.Float64Input {
	var verts []float64
	for r := 0; r <= rings; r++ {
		v := float64(r) / float64(rings)
		lat := -math.Pi/2 + math.Pi*v
		y := math.Sin(lat)
		ringRadius := math.Cos(lat)
		for s := 0; s <= sectors; s++ {
			u := float64(s) / float64(sectors)
			lon := 2 * math.Pi * u
			x := math.Cos(lon) * ringRadius
			z := math.Sin(lon) * ringRadius
			verts = append(verts, x, y, z)
		}
	}
	var idx []uint32
	stride := sectors + 1
	for r := 0; r < rings; r++ {
		for s := 0; s < sectors; s++ {
			curr := r*stride + s
			next := r*stride + (s + 1)
			bottom := (r+1)*stride + s
			bottomNext := (r+1)*stride + (s + 1)
			idx = append(idx, uint32(curr), uint32(next), uint32(bottom))
			idx = append(idx, uint32(next), uint32(bottomNext), uint32(bottom))
		}
	}
	return decimate.NewFloat64Input(verts, idx, (rings+1)*(sectors+1))
}

func genFlatGridFixture(nx, ny int, size float64) *decimate.Float64Input {
	var verts []float64
	for j := 0; j < ny; j++ {
		y := size * float64(j) / float64(ny-1)
		for i := 0; i < nx; i++ {
			x := size * float64(i) / float64(nx-1)
			verts = append(verts, x, y, 0)
		}
	}
	var idx []uint32
	for j := 0; j < ny-1; j++ {
		for i := 0; i < nx-1; i++ {
			a := uint32(j*nx + i)
			b := uint32(j*nx + i + 1)
			c := uint32((j+1)*nx + i)
			d := uint32((j+1)*nx + i + 1)
			idx = append(idx, a, b, c)
			idx = append(idx, b, d, c)
		}
	}
	return decimate.NewFloat64Input(verts, idx, nx*ny)
}
