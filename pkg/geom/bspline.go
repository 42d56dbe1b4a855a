package geom

import "math"

// HPoint4 is a homogeneous (weighted) control point used by the
// de Boor recurrence shared by curve.NURBS and surface.NURBSPatch.
type HPoint4 struct{ X, Y, Z, W float64 }

// NewHPoint4 constructs a homogeneous point.
func NewHPoint4(x, y, z, w float64) HPoint4 { return HPoint4{X: x, Y: y, Z: z, W: w} }

// Lerp linearly interpolates between two homogeneous points.
func (h HPoint4) Lerp(o HPoint4, t float64) HPoint4 {
	s := 1 - t
	return HPoint4{h.X*s + o.X*t, h.Y*s + o.Y*t, h.Z*s + o.Z*t, h.W*s + o.W*t}
}

// ToPoint3 dehomogenizes, returning false when the weight is zero or
// non-finite.
func (h HPoint4) ToPoint3() (Point3, bool) {
	if !math.IsFinite(h.W) || h.W == 0 {
		return Point3{}, false
	}
	return Point3{X: h.X / h.W, Y: h.Y / h.W, Z: h.Z / h.W}, true
}

// IsNonDecreasingKnots reports whether a knot vector is sorted
// non-decreasing, a precondition for a valid B-spline.
func IsNonDecreasingKnots(knots []float64) bool {
	for i := 1; i < len(knots); i++ {
		if knots[i-1] > knots[i] {
			return false
		}
	}
	return true
}

// FindSpan locates the knot span index containing u via binary search
// over the internal knots, following the standard NURBS book
// algorithm (n is the index of the last control point).
func FindSpan(n, p int, u float64, knots []float64) int {
	if u >= knots[n+1] {
		return n
	}
	if u <= knots[p] {
		return p
	}
	low, high := p, n+1
	mid := (low + high) / 2
	for u < knots[mid] || u >= knots[mid+1] {
		if u < knots[mid] {
			high = mid
		} else {
			low = mid
		}
		mid = (low + high) / 2
	}
	return mid
}

// DeBoor evaluates the de Boor recurrence in place over d, which must
// hold p+1 homogeneous control points for the given span.
func DeBoor(d []HPoint4, span, p int, u float64, knots []float64) {
	for r := 1; r <= p; r++ {
		for j := p; j >= r; j-- {
			i := span - p + j
			denom := knots[i+p+1-r] - knots[i]
			alpha := 0.0
			if denom != 0 {
				alpha = (u - knots[i]) / denom
			}
			d[j] = d[j-1].Lerp(d[j], alpha)
		}
	}
}
