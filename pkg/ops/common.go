// Package ops implements the mesh-producing operators of spec.md §4.4
// through §4.12: extrude, loft, sweep1/sweep2, revolve, rail-revolve,
// pipe, patch, offset, deform, and fillet/chamfer. Every operator is a
// pure function from typed inputs plus a tolerance and options to a
// finalized *kernel.Mesh, a diagnostics record, and an error; none of them know
// about the evaluator's Value wrapper — pkg/kernel's DualOutput sits
// above this package.
package ops

import (
	"math"

	"github.com/chazu/ghx/pkg/geom"
	"github.com/chazu/ghx/pkg/kernel"
	"github.com/chazu/ghx/pkg/trim"
)

// cleanPolyline removes consecutive duplicates within tol and, if the
// result closes on itself (first ~= last), drops the duplicated
// closing point and reports the polyline as closed.
func cleanPolyline(points []geom.Point3, tol geom.Tolerance) ([]geom.Point3, bool) {
	if len(points) == 0 {
		return nil, false
	}
	out := make([]geom.Point3, 0, len(points))
	out = append(out, points[0])
	for _, p := range points[1:] {
		if !tol.ApproxEqualPoint3(out[len(out)-1], p) {
			out = append(out, p)
		}
	}
	closed := false
	if len(out) > 2 && tol.ApproxEqualPoint3(out[0], out[len(out)-1]) {
		out = out[:len(out)-1]
		closed = true
	}
	return out, closed
}

// cumulativeArcLength returns the running arc length at each vertex
// (cum[0] == 0) and the total, optionally including the closing edge.
func cumulativeArcLength(points []geom.Point3, closed bool) ([]float64, float64) {
	n := len(points)
	cum := make([]float64, n)
	total := 0.0
	for i := 1; i < n; i++ {
		total += points[i].DistanceTo(points[i-1])
		cum[i] = total
	}
	if closed && n > 1 {
		total += points[0].DistanceTo(points[n-1])
	}
	return cum, total
}

// arcLengthRatios normalizes cumulativeArcLength's output to [0,1].
func arcLengthRatios(points []geom.Point3, closed bool) []float64 {
	cum, total := cumulativeArcLength(points, closed)
	ratios := make([]float64, len(points))
	if total == 0 {
		return ratios
	}
	for i, c := range cum {
		ratios[i] = c / total
	}
	return ratios
}

// resamplePolyline resamples points to n arc-length-balanced points,
// preserving open/closed topology.
func resamplePolyline(points []geom.Point3, n int, closed bool) []geom.Point3 {
	if n < 1 || len(points) == 0 {
		return points
	}
	cum, total := cumulativeArcLength(points, closed)
	if total == 0 {
		out := make([]geom.Point3, n)
		for i := range out {
			out[i] = points[0]
		}
		return out
	}

	segEnd := len(points)
	loopPoint := func(i int) geom.Point3 {
		if closed {
			return points[i%len(points)]
		}
		return points[i]
	}
	edgeLength := func(i int) float64 {
		if i == len(points)-1 {
			if closed {
				return points[0].DistanceTo(points[i])
			}
			return 0
		}
		return points[i+1].DistanceTo(points[i])
	}

	out := make([]geom.Point3, n)
	denom := n
	if !closed {
		denom = n - 1
		if denom <= 0 {
			denom = 1
		}
	}
	for i := 0; i < n; i++ {
		target := total * float64(i) / float64(denom)
		if !closed && i == n-1 {
			out[i] = points[len(points)-1]
			continue
		}
		idx := 0
		for idx < segEnd-1 && cum[idx+1] < target {
			idx++
		}
		segLen := edgeLength(idx)
		var t float64
		if segLen > 0 {
			t = (target - cum[idx]) / segLen
		}
		out[i] = loopPoint(idx).Lerp(loopPoint(idx+1), clamp01(t))
	}
	return out
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// newellNormal computes the Newell-method normal of a (possibly
// non-planar) polygon loop — robust to noisy/near-planar input, unlike
// a single cross product.
func newellNormal(points []geom.Point3) geom.Vec3 {
	var n geom.Vec3
	count := len(points)
	for i := 0; i < count; i++ {
		a := points[i]
		b := points[(i+1)%count]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n
}

// planeBasis derives an orthonormal (x, y) in-plane basis from a plane
// normal.
func planeBasis(normal geom.Vec3) (geom.Vec3, geom.Vec3) {
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

// planarDeviation returns the maximum distance of any point from the
// plane through origin with the given normal.
func planarDeviation(points []geom.Point3, origin geom.Point3, normal geom.Vec3) float64 {
	max := 0.0
	for _, p := range points {
		d := math.Abs(p.SubPoint(origin).Dot(normal))
		if d > max {
			max = d
		}
	}
	return max
}

func projectToPlane(origin geom.Point3, x, y geom.Vec3, p geom.Point3) trim.Point2 {
	rel := p.SubPoint(origin)
	return trim.Point2{U: rel.Dot(x), V: rel.Dot(y)}
}

func unprojectFromPlane(origin geom.Point3, x, y geom.Vec3, p trim.Point2) geom.Point3 {
	return origin.Add(x.Scale(p.U)).Add(y.Scale(p.V))
}

// triangulateCapLoop triangulates a single closed planar-enough loop
// (spec.md §4.4/§4.5 caps, §4.7 revolve caps): compute a Newell normal
// and basis, project to UV, triangulate, and unproject back to 3D. The
// returned indices wind CCW in the (x, y, normal) frame; callers flip
// for the opposite-facing cap.
func triangulateCapLoop(loop []geom.Point3, tol geom.Tolerance) ([]geom.Point3, []int, geom.Vec3, error) {
	if len(loop) < 3 {
		return nil, nil, geom.Zero, newOpError(kernel.ErrorKindInputShape, "triangulateCapLoop", "cap loop needs at least 3 points")
	}
	normal, ok := newellNormal(loop).Normalized()
	if !ok {
		return nil, nil, geom.Zero, newOpError(kernel.ErrorKindGeometricImpossibility, "triangulateCapLoop", "cap loop is degenerate (zero area)")
	}
	origin := loop[0]
	x, y := planeBasis(normal)

	uv := make([]trim.Point2, len(loop))
	for i, p := range loop {
		uv[i] = projectToPlane(origin, x, y, p)
	}

	region := trim.TrimRegion{Outer: trim.NewTrimLoop(uv)}
	outUV, indices, _, err := trim.Triangulate(region, tol, trim.OptionsForTolerance(tol))
	if err != nil {
		return nil, nil, geom.Zero, wrapOpError(kernel.ErrorKindGeometricImpossibility, "triangulateCapLoop", "triangulating cap loop", err)
	}

	positions := make([]geom.Point3, len(outUV))
	for i, p := range outUV {
		positions[i] = unprojectFromPlane(origin, x, y, p)
	}
	return positions, indices, normal, nil
}

// appendQuadStrip stitches two equal-length point rings at vertex-index
// bases baseA/baseB into two triangles per quad, wrapping the last quad
// back to index 0 of each ring when closed.
func appendQuadStrip(indices []int, baseA, baseB, count int, closed bool) []int {
	quads := count
	if !closed {
		quads = count - 1
	}
	for i := 0; i < quads; i++ {
		a0 := baseA + i
		b0 := baseB + i
		a1 := baseA + (i+1)%count
		b1 := baseB + (i+1)%count
		indices = append(indices, a0, a1, b0)
		indices = append(indices, a1, b1, b0)
	}
	return indices
}

func appendTriangles(indices []int, base int, capIndices []int) []int {
	for _, idx := range capIndices {
		indices = append(indices, base+idx)
	}
	return indices
}

// rotateVectorAboutAxis applies Rodrigues' rotation formula to v about
// a unit axis by angle radians.
func rotateVectorAboutAxis(v, axis geom.Vec3, angle float64) geom.Vec3 {
	c, s := math.Cos(angle), math.Sin(angle)
	kxv := axis.Cross(v)
	kdv := axis.Dot(v)
	return v.Scale(c).Add(kxv.Scale(s)).Add(axis.Scale(kdv * (1 - c)))
}

// rotatePointAboutAxis rotates p by angle radians about the line
// through axisOrigin in direction axisDir (assumed unit length).
func rotatePointAboutAxis(p geom.Point3, axisOrigin geom.Point3, axisDir geom.Vec3, angle float64) geom.Point3 {
	rel := p.SubPoint(axisOrigin)
	rotated := rotateVectorAboutAxis(rel, axisDir, angle)
	return axisOrigin.Add(rotated)
}

// distancePointToLine returns the distance from p to the infinite line
// through lineOrigin in direction lineDir (assumed unit length).
func distancePointToLine(p, lineOrigin geom.Point3, lineDir geom.Vec3) float64 {
	rel := p.SubPoint(lineOrigin)
	along := rel.Dot(lineDir)
	perp := rel.Sub(lineDir.Scale(along))
	return perp.Length()
}

func newOpError(kind kernel.ErrorKind, op, msg string) error {
	return kernel.NewOpError(kind, op, msg)
}

func wrapOpError(kind kernel.ErrorKind, op, msg string, cause error) error {
	return kernel.WrapOpError(kind, op, msg, cause)
}
