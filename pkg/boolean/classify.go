package boolean

import (
	"math"

	"github.com/dhconnelly/rtreego"

	"github.com/chazu/ghx/pkg/geom"
	"github.com/chazu/ghx/pkg/kernel"
)

// region is the classification of a point against a closed mesh
// (spec.md §4.13 step 4): outside, inside, or on the surface within
// tolerance.
type region int

const (
	regionOutside region = iota
	regionInside
	regionOn
)

// rayDir is a fixed, non-axis-aligned direction used for every
// point-in-mesh ray cast, chosen to avoid the degenerate hits an
// axis-aligned ray would produce against axis-aligned test geometry
// (unit cubes, box extrusions).
var rayDir = func() geom.Vec3 {
	v, _ := geom.NewVec3(0.6123328, 0.7182818, 0.3305977).Normalized()
	return v
}()

// classifyPoint casts a ray from p along rayDir and counts triangle
// crossings in mesh, short-circuiting to "on" when p lies within
// tolerance of the mesh surface (the on-surface predicate spec.md
// §4.13 step 4 calls for, handled separately from ray parity since a
// coplanar fragment can sit arbitrarily close to a tangential ray).
func classifyPoint(p geom.Point3, mesh *kernel.Mesh, tree *rtreego.Rtree, bboxDiagonal float64, tol geom.Tolerance) region {
	if nearestTriangleDistance(p, mesh, tree) <= tol.Eps() {
		return regionOn
	}

	rayLen := bboxDiagonal*2 + 1
	rect, err := rayQueryRect(p, rayDir, rayLen)
	if err != nil {
		return regionOutside
	}

	crossings := 0
	for _, obj := range tree.SearchIntersect(rect) {
		idx := obj.(*triSpatial).idx
		a, b, c := mesh.Triangle(idx)
		pa, pb, pc := mesh.Positions[a], mesh.Positions[b], mesh.Positions[c]
		t, hit := rayTriangleIntersect(p, rayDir, pa, pb, pc, tol)
		if hit && t > tol.Eps() {
			crossings++
		}
	}
	if crossings%2 == 1 {
		return regionInside
	}
	return regionOutside
}

// rayTriangleIntersect is the Moller-Trumbore ray/triangle test: returns
// the ray parameter t and whether the ray's line hits the triangle. Hits
// at any t, including t <= 0, are reported; callers filter by t.
func rayTriangleIntersect(origin geom.Point3, dir geom.Vec3, a, b, c geom.Point3, tol geom.Tolerance) (float64, bool) {
	edge1 := b.SubPoint(a)
	edge2 := c.SubPoint(a)
	pvec := dir.Cross(edge2)
	det := edge1.Dot(pvec)
	if math.Abs(det) <= tol.Eps() {
		return 0, false
	}
	invDet := 1 / det
	tvec := origin.SubPoint(a)
	u := tvec.Dot(pvec) * invDet
	if u < -tol.Eps() || u > 1+tol.Eps() {
		return 0, false
	}
	qvec := tvec.Cross(edge1)
	v := dir.Dot(qvec) * invDet
	if v < -tol.Eps() || u+v > 1+tol.Eps() {
		return 0, false
	}
	t := edge2.Dot(qvec) * invDet
	return t, true
}

// nearestTriangleDistance returns the distance from p to the nearest
// triangle of mesh, using tree's bounding boxes to shortlist candidates
// before an exact closest-point-on-triangle test.
func nearestTriangleDistance(p geom.Point3, mesh *kernel.Mesh, tree *rtreego.Rtree) float64 {
	const candidateCount = 8
	qPoint := rtreego.Point{p.X, p.Y, p.Z}
	best := math.Inf(1)
	for _, obj := range tree.NearestNeighbors(candidateCount, qPoint) {
		ts, ok := obj.(*triSpatial)
		if !ok {
			continue
		}
		a, b, c := mesh.Triangle(ts.idx)
		d := distancePointToTriangle(p, mesh.Positions[a], mesh.Positions[b], mesh.Positions[c])
		if d < best {
			best = d
		}
	}
	return best
}

// distancePointToTriangle returns the distance from p to the closest
// point on triangle (a,b,c) (Ericson, Real-Time Collision Detection
// §5.1.5, distance-only variant — classify.go doesn't need the feature
// tag pkg/kernel/sdfx's copy of this routine tracks for sign computation).
func distancePointToTriangle(p, a, b, c geom.Point3) float64 {
	ab := b.SubPoint(a)
	ac := c.SubPoint(a)
	ap := p.SubPoint(a)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return p.DistanceTo(a)
	}

	bp := p.SubPoint(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return p.DistanceTo(b)
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return p.DistanceTo(a.Add(ab.Scale(v)))
	}

	cp := p.SubPoint(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return p.DistanceTo(c)
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return p.DistanceTo(a.Add(ac.Scale(w)))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return p.DistanceTo(b.Add(c.SubPoint(b).Scale(w)))
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return p.DistanceTo(a.Add(ab.Scale(v)).Add(ac.Scale(w)))
}
