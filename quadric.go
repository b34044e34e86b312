package decimate

import "math"

// Quadric is the symmetric bilinear form associated with a plane
// p=(a,b,c,d), a²+b²+c²=1, stored as 10 scalars (the upper triangle of
// the 4x4 matrix p*pᵀ). Quadric accumulation and evaluation are always
// carried out in float64 regardless of the configured vertex storage
// precision: QEM accumulates many plane contributions and loses
// meaningful precision in float32 well before the positions it is
// evaluated against do.
//
// Layout matches the teacher's mesh_simplification.go Quadric.A:
// a11, a12, a13, a14, a22, a23, a24, a33, a34, a44.
type Quadric struct {
	A [10]float64
}

// NewQuadric builds the quadric for a single plane equation.
func NewQuadric(a, b, c, d float64) Quadric {
	return Quadric{A: [10]float64{
		a * a, a * b, a * c, a * d,
		b * b, b * c, b * d,
		c * c, c * d,
		d * d,
	}}
}

// Add returns the sum of two quadrics (accumulation is just matrix
// addition).
func (q Quadric) Add(o Quadric) Quadric {
	var r Quadric
	for i := range q.A {
		r.A[i] = q.A[i] + o.A[i]
	}
	return r
}

// Scale returns the quadric scaled by s, used to weight a triangle's
// plane quadric by its area before accumulating it onto a vertex.
func (q Quadric) Scale(s float64) Quadric {
	var r Quadric
	for i := range q.A {
		r.A[i] = q.A[i] * s
	}
	return r
}

// Error evaluates xᵀQx at point (x,y,z).
func (q Quadric) Error(x, y, z float64) float64 {
	a := q.A
	return a[0]*x*x + 2*a[1]*x*y + 2*a[2]*x*z + 2*a[3]*x +
		a[4]*y*y + 2*a[5]*y*z + 2*a[6]*y +
		a[7]*z*z + 2*a[8]*z +
		a[9]
}

// quadricDetEpsilon gates the optimal-point solve in Optimize: below
// this determinant magnitude the 3x3 subsystem is treated as
// ill-conditioned.
const quadricDetEpsilon = 1e-9

// Optimize solves the 3x3 linear subsystem
//
//	[a11 a12 a13] [x]   [-a14]
//	[a12 a22 a23] [y] = [-a24]
//	[a13 a23 a33] [z]   [-a34]
//
// for the position minimizing xᵀQx. ok is false when the
// system is ill-conditioned (|det| < quadricDetEpsilon); callers fall
// back to the edge midpoint, then to the lower-cost endpoint.
func (q Quadric) Optimize() (x, y, z float64, ok bool) {
	a := q.A
	a11, a12, a13, a14 := a[0], a[1], a[2], a[3]
	a22, a23, a24 := a[4], a[5], a[6]
	a33, a34 := a[7], a[8]

	det := a11*(a22*a33-a23*a23) - a12*(a12*a33-a23*a13) + a13*(a12*a23-a22*a13)
	if math.Abs(det) < quadricDetEpsilon {
		return 0, 0, 0, false
	}

	// Cramer's rule on the symmetric 3x3 system with rhs = -(a14,a24,a34).
	b1, b2, b3 := -a14, -a24, -a34

	detX := b1*(a22*a33-a23*a23) - a12*(b2*a33-a23*b3) + a13*(b2*a23-a22*b3)
	detY := a11*(b2*a33-b3*a23) - b1*(a12*a33-a23*a13) + a13*(a12*b3-b2*a13)
	detZ := a11*(a22*b3-b2*a23) - a12*(a12*b3-b2*a13) + b1*(a12*a23-a22*a13)

	return detX / det, detY / det, detZ / det, true
}

// collapsePoint picks the position for collapsing an edge whose
// endpoint quadrics have already been summed into merged, following
// a fallback chain: the quadric-optimal point; else the edge
// midpoint; else (only if the midpoint itself yields a non-finite
// error, e.g. coincident or NaN-poisoned input) whichever endpoint has
// the lower cost.
func collapsePoint(merged Quadric, v0x, v0y, v0z, v1x, v1y, v1z float64) (x, y, z, cost float64) {
	if ox, oy, oz, ok := merged.Optimize(); ok {
		if c := merged.Error(ox, oy, oz); !math.IsNaN(c) && !math.IsInf(c, 0) {
			return ox, oy, oz, c
		}
	}

	mx, my, mz := (v0x+v1x)/2, (v0y+v1y)/2, (v0z+v1z)/2
	midCost := merged.Error(mx, my, mz)
	if !math.IsNaN(midCost) && !math.IsInf(midCost, 0) {
		return mx, my, mz, midCost
	}

	c0 := merged.Error(v0x, v0y, v0z)
	c1 := merged.Error(v1x, v1y, v1z)
	if c0 <= c1 {
		return v0x, v0y, v0z, c0
	}
	return v1x, v1y, v1z, c1
}
