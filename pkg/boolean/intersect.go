package boolean

import (
	"math"

	"github.com/chazu/ghx/pkg/geom"
)

// triTriResult reports the outcome of an exact intersection test
// between two triangles (spec.md §4.13 step 3). Coplanar pairs are
// resolved by a 2D separating-axis overlap test instead of the
// line-interval test, since the two triangles' planes don't determine a
// unique intersection line.
type triTriResult struct {
	Intersects bool
	Coplanar   bool
	Segment    [2]geom.Point3
}

// triTriIntersect implements Moller's 1997 "fast triangle-triangle
// intersection test": each triangle's plane is tried as a separator for
// the other (all three signed distances sharing a sign and none near
// zero means no intersection); when neither plane separates, the
// triangles' spans along the two planes' intersection line are compared
// for overlap.
func triTriIntersect(v0, v1, v2, u0, u1, u2 geom.Point3, tol geom.Tolerance) triTriResult {
	eps := tol.Eps()

	n1 := v1.SubPoint(v0).Cross(v2.SubPoint(v0))
	if n1.LengthSquared() == 0 {
		return triTriResult{}
	}
	d1 := -n1.Dot(v0.Vec3())

	du0 := n1.Dot(u0.Vec3()) + d1
	du1 := n1.Dot(u1.Vec3()) + d1
	du2 := n1.Dot(u2.Vec3()) + d1
	if sameSignNonZero(du0, du1, du2, eps) {
		return triTriResult{}
	}

	n2 := u1.SubPoint(u0).Cross(u2.SubPoint(u0))
	if n2.LengthSquared() == 0 {
		return triTriResult{}
	}
	d2 := -n2.Dot(u0.Vec3())

	dv0 := n2.Dot(v0.Vec3()) + d2
	dv1 := n2.Dot(v1.Vec3()) + d2
	dv2 := n2.Dot(v2.Vec3()) + d2
	if sameSignNonZero(dv0, dv1, dv2, eps) {
		return triTriResult{}
	}

	if math.Abs(du0) <= eps && math.Abs(du1) <= eps && math.Abs(du2) <= eps {
		return triTriResult{
			Intersects: coplanarOverlap(v0, v1, v2, u0, u1, u2, n1),
			Coplanar:   true,
		}
	}

	d := n1.Cross(n2)
	denom := d.LengthSquared()
	if denom == 0 {
		return triTriResult{}
	}

	pv0, pv1, pv2 := d.Dot(v0.Vec3()), d.Dot(v1.Vec3()), d.Dot(v2.Vec3())
	pu0, pu1, pu2 := d.Dot(u0.Vec3()), d.Dot(u1.Vec3()), d.Dot(u2.Vec3())

	vLo, vHi, okV := triInterval(pv0, pv1, pv2, dv0, dv1, dv2)
	uLo, uHi, okU := triInterval(pu0, pu1, pu2, du0, du1, du2)
	if !okV || !okU {
		return triTriResult{}
	}
	if vLo > vHi {
		vLo, vHi = vHi, vLo
	}
	if uLo > uHi {
		uLo, uHi = uHi, uLo
	}
	lo := math.Max(vLo, uLo)
	hi := math.Min(vHi, uHi)
	if lo > hi {
		return triTriResult{}
	}

	// Point on the planes' intersection line closest to the origin:
	// the standard three-plane solve with the third plane d.X = 0,
	// using D.D == n1.(n2 x D) (scalar triple product identity) as the
	// shared determinant.
	c1, c2 := -d1, -d2
	anchor := geom.PointFromVec3(
		n2.Cross(d).Scale(c1).Add(d.Cross(n1).Scale(c2)).Scale(1 / denom),
	)
	unit, ok := d.Normalized()
	if !ok {
		return triTriResult{}
	}
	mag := d.Length()
	seg0 := anchor.Add(unit.Scale(lo / mag))
	seg1 := anchor.Add(unit.Scale(hi / mag))
	return triTriResult{Intersects: true, Segment: [2]geom.Point3{seg0, seg1}}
}

func sameSignNonZero(a, b, c, eps float64) bool {
	if math.Abs(a) <= eps || math.Abs(b) <= eps || math.Abs(c) <= eps {
		return false
	}
	return (a > 0) == (b > 0) && (b > 0) == (c > 0)
}

func sameSign(a, b float64) bool { return (a > 0) == (b > 0) }

// triInterval finds the parametric span [lo, hi] along the projected
// axis where triangle (p0,p1,p2) crosses the other triangle's plane,
// using the vertex whose signed distance differs in sign from the
// other two (Moller's isect2 step).
func triInterval(p0, p1, p2, d0, d1, d2 float64) (float64, float64, bool) {
	switch {
	case d0 != 0 && sameSign(d0, d1):
		return isect2(p2, p0, p1, d2, d0, d1)
	case d0 != 0 && sameSign(d0, d2):
		return isect2(p1, p0, p2, d1, d0, d2)
	case d1 != 0 && sameSign(d1, d2):
		return isect2(p0, p1, p2, d0, d1, d2)
	case d0 != 0:
		return isect2(p0, p1, p2, d0, d1, d2)
	case d1 != 0:
		return isect2(p1, p0, p2, d1, d0, d2)
	case d2 != 0:
		return isect2(p2, p0, p1, d2, d0, d1)
	default:
		return 0, 0, false
	}
}

// isect2 interpolates the two edges from the lone vertex (v0,d0) to the
// other two (v1,d1), (v2,d2) to the points where each edge crosses the
// zero-distance plane.
func isect2(v0, v1, v2, d0, d1, d2 float64) (float64, float64, bool) {
	if d0 == d1 || d0 == d2 {
		return 0, 0, false
	}
	tA := v0 + (v1-v0)*d0/(d0-d1)
	tB := v0 + (v2-v0)*d0/(d0-d2)
	return tA, tB, true
}

// coplanarOverlap tests two coplanar triangles for 2D overlap via the
// separating-axis theorem, projecting onto an orthonormal in-plane
// basis derived from the shared normal.
func coplanarOverlap(v0, v1, v2, u0, u1, u2 geom.Point3, normal geom.Vec3) bool {
	x, y := planeBasisFor(normal)
	origin := v0
	proj := func(p geom.Point3) (float64, float64) {
		rel := p.SubPoint(origin)
		return rel.Dot(x), rel.Dot(y)
	}
	ax0, ay0 := proj(v0)
	ax1, ay1 := proj(v1)
	ax2, ay2 := proj(v2)
	bx0, by0 := proj(u0)
	bx1, by1 := proj(u1)
	bx2, by2 := proj(u2)

	a := [][2]float64{{ax0, ay0}, {ax1, ay1}, {ax2, ay2}}
	b := [][2]float64{{bx0, by0}, {bx1, by1}, {bx2, by2}}

	for _, tri := range [][][2]float64{a, b} {
		for i := 0; i < 3; i++ {
			p1 := tri[i]
			p2 := tri[(i+1)%3]
			nx, ny := -(p2[1] - p1[1]), p2[0]-p1[0]
			if separatingAxis(a, b, nx, ny) {
				return false
			}
		}
	}
	return true
}

func separatingAxis(a, b [][2]float64, nx, ny float64) bool {
	project := func(tri [][2]float64) (float64, float64) {
		min, max := math.Inf(1), math.Inf(-1)
		for _, p := range tri {
			v := p[0]*nx + p[1]*ny
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		return min, max
	}
	aMin, aMax := project(a)
	bMin, bMax := project(b)
	return aMax < bMin || bMax < aMin
}

// planeBasisFor derives an orthonormal (x, y) in-plane basis from a
// plane normal; a package-local twin of pkg/ops' planeBasis to avoid an
// import cycle over an eight-line function.
func planeBasisFor(normal geom.Vec3) (geom.Vec3, geom.Vec3) {
	z, ok := normal.Normalized()
	if !ok {
		z = geom.UnitZ
	}
	var candidate geom.Vec3
	if math.Abs(z.X) < math.Abs(z.Y) {
		candidate = geom.Vec3{X: 0, Y: -z.Z, Z: z.Y}
	} else {
		candidate = geom.Vec3{X: -z.Z, Y: 0, Z: z.X}
	}
	x, ok := candidate.Normalized()
	if !ok {
		x = geom.UnitX
	}
	y, ok := z.Cross(x).Normalized()
	if !ok {
		y = geom.UnitY
	}
	return x, y
}
