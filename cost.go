package decimate

import "math"

// failCost is a sentinel: an
// operation with this cost (or higher) must never be accepted by the
// collapse executor. Numerically ≈0.25·math.MaxFloat64, matching the
// teacher's convention (computeEdgeCost's flat boundary-penalty
// multiplier) of biasing rejected operations far above any real cost
// rather than using a signed/NaN channel for rejection.
const failCost = 0.25 * math.MaxFloat64

// coplanarDefaultThreshold is the default planar deviation threshold
// of an Operation (see SetPlanarDeviationThreshold): normal deviation below this
// (on unit normals) is treated as
// coplanar for the planar-mode fast-path.
const coplanarDefaultThreshold = 1e-3

// costParams bundles the scalars a cost evaluation needs from the
// owning Operation, avoiding a dependency from cost.go on the full
// Operation type.
type costParams struct {
	featureSize       float64
	maxCollapseCost   float64
	boundaryWeight    float64
	planarMode        bool
	planarThreshold   float64
}

// maxCollapseCostFor computes maxcollapsecost = (0.25*featuresize)^6.
func maxCollapseCostFor(featureSize float64) float64 {
	f := 0.25 * featureSize
	f2 := f * f
	f4 := f2 * f2
	return f4 * f2
}

// compactnessPenalty penalizes the worst aspect ratio (smallest
// altitude / longest edge) it is given; computeEdgeCost passes the
// worst aspect of the edge's incident triangles at their current
// positions. A
// well-formed triangle (aspect near the equilateral ideal) contributes
// near zero; a sliver drives the penalty up sharply.
func compactnessPenalty(worstAspect float64) float64 {
	if worstAspect <= 0 {
		return failCost
	}
	const idealAspect = 0.866 // altitude/edge ratio of an equilateral triangle
	ratio := worstAspect / idealAspect
	if ratio >= 1 {
		return 0
	}
	d := 1 - ratio
	return d * d * d
}

// areaScalingPenalty biases the engine toward
// collapsing edges whose endpoints carry little accumulated surface.
func areaScalingPenalty(area0, area1 float64, p costParams) float64 {
	if p.featureSize <= 0 {
		return 0
	}
	ratio := (area0 + area1) / (p.featureSize * p.featureSize)
	if ratio < 0 {
		ratio = 0
	}
	return math.Sqrt(ratio) * p.maxCollapseCost
}

// boundaryPenalty adds a flat cost for edges that touch a mesh boundary.
func boundaryPenalty(onBoundary bool, p costParams) float64 {
	if !onBoundary {
		return 0
	}
	return p.boundaryWeight
}

// coplanarFastPath applies the planar-mode fast-path: when the
// worst normal deviation among affected triangles (pre- vs.
// post-collapse) is below p.planarThreshold, the penalty collapses to
// 1% of its unadjusted value.
func coplanarFastPath(penalty, worstNormalDeviation float64, p costParams) float64 {
	if !p.planarMode {
		return penalty
	}
	threshold := p.planarThreshold
	if threshold <= 0 {
		threshold = coplanarDefaultThreshold
	}
	if worstNormalDeviation < threshold {
		return penalty * 0.01
	}
	return penalty
}

// evalCost assembles Cost(E) = value + penalty for a candidate
// collapse, given the merged quadric's error at the chosen point
// (value), the per-vertex accumulated areas, whether either endpoint
// touches a boundary, the worst post-collapse aspect ratio, and (for
// planar mode) the worst pre/post normal deviation. Returns failCost
// if value itself is non-finite.
func evalCost(value, area0, area1 float64, onBoundary bool, worstAspect, worstNormalDeviation float64, p costParams) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return failCost
	}

	penalty := compactnessPenalty(worstAspect)
	penalty += areaScalingPenalty(area0, area1, p)
	penalty += boundaryPenalty(onBoundary, p)
	penalty = coplanarFastPath(penalty, worstNormalDeviation, p)

	cost := value + penalty
	if math.IsNaN(cost) || math.IsInf(cost, 0) {
		return failCost
	}
	return cost
}

// normalDeviation returns 1 - dot(a,b) for two unit normals, a cheap
// proxy for angular deviation that is 0 when the normals coincide and
// grows toward 2 as they approach opposite directions; used to compare
// against planarThreshold in the coplanar fast-path.
func normalDeviation(ax, ay, az, bx, by, bz float64) float64 {
	d := dotProduct(ax, ay, az, bx, by, bz)
	if d > 1 {
		d = 1
	} else if d < -1 {
		d = -1
	}
	return 1 - d
}

// triangleAspect computes the smallest-altitude/longest-edge ratio
// used by compactnessPenalty, from a triangle's three vertex
// positions.
func triangleAspect(ax, ay, az, bx, by, bz, cx, cy, cz float64) float64 {
	area2 := triangleArea2(ax, ay, az, bx, by, bz, cx, cy, cz)
	if area2 <= 0 {
		return 0
	}
	ab := distance(ax, ay, az, bx, by, bz)
	bc := distance(bx, by, bz, cx, cy, cz)
	ca := distance(cx, cy, cz, ax, ay, az)
	longest := ab
	if bc > longest {
		longest = bc
	}
	if ca > longest {
		longest = ca
	}
	if longest <= 0 {
		return 0
	}
	// area2 = base * height, so height = area2 / base for any chosen
	// base; the smallest altitude corresponds to the longest edge as
	// base.
	altitude := area2 / longest
	return altitude / longest
}
