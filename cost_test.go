package decimate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxCollapseCostForMatchesFormula(t *testing.T) {
	f := maxCollapseCostFor(4.0)
	assert.InDelta(t, 1.0, f, 1e-9) // (0.25*4)^6 == 1^6 == 1
}

func TestCompactnessPenaltyVanishesAtIdealAspect(t *testing.T) {
	assert.Equal(t, 0.0, compactnessPenalty(0.866))
	assert.Equal(t, 0.0, compactnessPenalty(1.0), "aspects at/above ideal never penalize")
}

func TestCompactnessPenaltyGrowsForSlivers(t *testing.T) {
	sliver := compactnessPenalty(0.01)
	worseSliver := compactnessPenalty(0.001)
	assert.Greater(t, sliver, 0.0)
	assert.Greater(t, worseSliver, sliver, "a thinner sliver must cost strictly more")
}

func TestCompactnessPenaltyDegenerateIsFailCost(t *testing.T) {
	assert.Equal(t, failCost, compactnessPenalty(0))
	assert.Equal(t, failCost, compactnessPenalty(-1))
}

func TestAreaScalingPenaltyZeroWithoutFeatureSize(t *testing.T) {
	p := costParams{featureSize: 0, maxCollapseCost: 10}
	assert.Equal(t, 0.0, areaScalingPenalty(1, 1, p))
}

func TestAreaScalingPenaltyScalesWithArea(t *testing.T) {
	p := costParams{featureSize: 2, maxCollapseCost: 10}
	small := areaScalingPenalty(0.01, 0.01, p)
	large := areaScalingPenalty(5, 5, p)
	assert.Greater(t, large, small)
}

func TestBoundaryPenalty(t *testing.T) {
	p := costParams{boundaryWeight: 3.5}
	assert.Equal(t, 0.0, boundaryPenalty(false, p))
	assert.Equal(t, 3.5, boundaryPenalty(true, p))
}

func TestCoplanarFastPathOnlyAppliesInPlanarMode(t *testing.T) {
	p := costParams{planarMode: false}
	assert.Equal(t, 10.0, coplanarFastPath(10.0, 0.0, p))
}

func TestCoplanarFastPathDiscountsBelowThreshold(t *testing.T) {
	p := costParams{planarMode: true, planarThreshold: 1e-3}
	got := coplanarFastPath(10.0, 1e-4, p)
	assert.InDelta(t, 0.1, got, 1e-9)
}

func TestCoplanarFastPathLeavesAboveThresholdUnchanged(t *testing.T) {
	p := costParams{planarMode: true, planarThreshold: 1e-3}
	got := coplanarFastPath(10.0, 0.5, p)
	assert.Equal(t, 10.0, got)
}

func TestCoplanarFastPathUsesDefaultThresholdWhenUnset(t *testing.T) {
	p := costParams{planarMode: true, planarThreshold: 0}
	got := coplanarFastPath(10.0, 1e-5, p)
	assert.InDelta(t, 0.1, got, 1e-9)
}

func TestEvalCostRejectsNonFiniteValue(t *testing.T) {
	p := costParams{}
	assert.Equal(t, failCost, evalCost(math.NaN(), 0, 0, false, 1, 0, p))
	assert.Equal(t, failCost, evalCost(math.Inf(1), 0, 0, false, 1, 0, p))
}

func TestEvalCostIsMonotonicInAspectPenalty(t *testing.T) {
	p := costParams{}
	good := evalCost(0, 0, 0, false, 0.9, 0, p)
	bad := evalCost(0, 0, 0, false, 0.01, 0, p)
	assert.Less(t, good, bad)
}

func TestNormalDeviationIsZeroForIdenticalNormals(t *testing.T) {
	assert.InDelta(t, 0, normalDeviation(0, 0, 1, 0, 0, 1), 1e-12)
}

func TestNormalDeviationIsTwoForOpposedNormals(t *testing.T) {
	assert.InDelta(t, 2, normalDeviation(0, 0, 1, 0, 0, -1), 1e-12)
}

func TestTriangleAspectOfEquilateralIsIdeal(t *testing.T) {
	// Equilateral triangle with side 1, apex at (0.5, sqrt(3)/2, 0).
	a := triangleAspect(0, 0, 0, 1, 0, 0, 0.5, math.Sqrt(3)/2, 0)
	assert.InDelta(t, 0.866, a, 1e-3)
}

func TestTriangleAspectOfDegenerateIsZero(t *testing.T) {
	a := triangleAspect(0, 0, 0, 1, 0, 0, 2, 0, 0) // collinear
	assert.Equal(t, 0.0, a)
}
