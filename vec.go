package decimate

import "math"

// Vec3 is a 3-component vector generic over the configured scalar
// precision (float32 or float64), mirroring the teacher's plain Point
// struct but parameterized so the same arena machinery in arena.go can
// back either of the two vertex formats named in the configuration
// surface without duplicated types.
type Vec3[F Scalar] struct {
	X, Y, Z F
}

// Float64 widens the vector to float64, the precision the quadric math
// in quadric.go always computes in regardless of storage format.
func (v Vec3[F]) Float64() (x, y, z float64) {
	return float64(v.X), float64(v.Y), float64(v.Z)
}

// Vec3FromFloat64 narrows a float64 triple back to the arena's storage
// precision.
func Vec3FromFloat64[F Scalar](x, y, z float64) Vec3[F] {
	return Vec3[F]{X: F(x), Y: F(y), Z: F(z)}
}

func subtract(ax, ay, az, bx, by, bz float64) (float64, float64, float64) {
	return ax - bx, ay - by, az - bz
}

func crossProduct(ux, uy, uz, vx, vy, vz float64) (float64, float64, float64) {
	nx := uy*vz - uz*vy
	ny := uz*vx - ux*vz
	nz := ux*vy - uy*vx
	return nx, ny, nz
}

func dotProduct(ax, ay, az, bx, by, bz float64) float64 {
	return ax*bx + ay*by + az*bz
}

// normalizeVector normalizes a 3D vector with a safety fallback for
// degenerate (near-zero-length) input, matching the teacher's guarded
// normalizeVector in math.go.
func normalizeVector(x, y, z float64) (float64, float64, float64, bool) {
	length := math.Sqrt(x*x + y*y + z*z)
	if length < 1e-10 {
		return 0, 0, 0, false
	}
	return x / length, y / length, z / length, true
}

func distance(ax, ay, az, bx, by, bz float64) float64 {
	dx, dy, dz := ax-bx, ay-by, az-bz
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// triangleNormal computes the unit normal and plane constant d for a
// triangle (a,b,c), ordered per the teacher's computeQuadrics winding
// (cross(e1, e2) where e1=b-a, e2=c-a). ok is false for a degenerate
// (near-zero-area) triangle.
func triangleNormal(ax, ay, az, bx, by, bz, cx, cy, cz float64) (nx, ny, nz, d float64, ok bool) {
	e1x, e1y, e1z := subtract(bx, by, bz, ax, ay, az)
	e2x, e2y, e2z := subtract(cx, cy, cz, ax, ay, az)
	rx, ry, rz := crossProduct(e1x, e1y, e1z, e2x, e2y, e2z)
	nx, ny, nz, ok = normalizeVector(rx, ry, rz)
	if !ok {
		return 0, 0, 0, 0, false
	}
	d = -(nx*ax + ny*ay + nz*az)
	return nx, ny, nz, d, true
}

// triangleArea2 returns twice the area of triangle (a,b,c), cheap to
// compute alongside the normal and used to weight quadric accumulation.
func triangleArea2(ax, ay, az, bx, by, bz, cx, cy, cz float64) float64 {
	e1x, e1y, e1z := subtract(bx, by, bz, ax, ay, az)
	e2x, e2y, e2z := subtract(cx, cy, cz, ax, ay, az)
	rx, ry, rz := crossProduct(e1x, e1y, e1z, e2x, e2y, e2z)
	return math.Sqrt(rx*rx + ry*ry + rz*rz)
}
