package ops

import (
	"math"

	"github.com/chazu/ghx/pkg/geom"
	"github.com/chazu/ghx/pkg/kernel"
)

// PolylineFilletOptions controls the corner radius and arc resolution
// (spec.md §4.12). Segments == 1 produces a chamfer.
type PolylineFilletOptions struct {
	Radius   float64
	Segments int
}

// PolylineFilletDiagnostics reports per-corner outcomes.
type PolylineFilletDiagnostics struct {
	InputPointCount    int
	OutputPointCount   int
	CornerCount        int
	FilletedCorners    int
	SkippedCorners     int
	ClampedCorners     int
	Warnings           []string
}

// PolylineFillet rounds (or, with Segments==1, chamfers) every interior
// corner of an open or closed polyline (spec.md §4.12): the bisector
// and tangent distance t = r/tan(theta/2) are computed per corner,
// clamped against segment half-lengths, and — for closed polylines — a
// global-consistency pass proportionally shrinks adjacent tangent
// distances until every segment fits.
func PolylineFillet(points []geom.Point3, closed bool, opts PolylineFilletOptions, tol geom.Tolerance) ([]geom.Point3, PolylineFilletDiagnostics, error) {
	var diag PolylineFilletDiagnostics
	diag.InputPointCount = len(points)

	if opts.Radius <= 0 {
		return nil, diag, newOpError(kernel.ErrorKindInputShape, "PolylineFillet", "radius must be positive")
	}
	segments := opts.Segments
	if segments < 1 {
		segments = 1
	}

	pts, cleanClosed := cleanPolyline(points, tol)
	closed = closed || cleanClosed
	n := len(pts)
	if n < 3 {
		return nil, diag, newOpError(kernel.ErrorKindInputShape, "PolylineFillet", "needs at least three distinct points to have a corner")
	}

	segLen := make([]float64, n)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		if !closed && i == n-1 {
			segLen[i] = math.Inf(1)
			continue
		}
		segLen[i] = pts[i].DistanceTo(pts[j])
	}
	prevLen := func(i int) float64 {
		if i == 0 {
			if closed {
				return segLen[n-1]
			}
			return math.Inf(1)
		}
		return segLen[i-1]
	}

	corners := cornerIndices(n, closed)
	diag.CornerCount = len(corners)

	tangentDist := make(map[int]float64, len(corners))
	for _, c := range corners {
		prev := pts[(c-1+n)%n]
		cur := pts[c]
		next := pts[(c+1)%n]
		in := cur.SubPoint(prev)
		out := next.SubPoint(cur)
		inLen, okIn := in.Normalized()
		outLen, okOut := out.Normalized()
		if !okIn || !okOut {
			diag.SkippedCorners++
			continue
		}
		cosTheta := -inLen.Dot(outLen)
		cosTheta = clampUnit(cosTheta)
		theta := math.Acos(cosTheta)
		if tol.IsZero(math.Pi - theta) {
			diag.SkippedCorners++
			continue
		}
		half := (math.Pi - theta) / 2
		t := opts.Radius * math.Tan(half)
		if t <= 0 || math.IsNaN(t) {
			diag.SkippedCorners++
			continue
		}
		limit := math.Min(segLen[c]/2, prevLen(c)/2)
		if t > limit {
			t = limit
			diag.ClampedCorners++
		}
		tangentDist[c] = t
	}

	if closed {
		shrinkForConsistency(pts, corners, tangentDist, segLen, &diag)
	}

	result := make([]geom.Point3, 0, n*segments)
	for i := 0; i < n; i++ {
		if !closed && i == 0 {
			result = append(result, pts[i])
			continue
		}
		if !closed && i == n-1 {
			result = append(result, pts[i])
			continue
		}
		t, ok := tangentDist[i]
		if !ok {
			result = append(result, pts[i])
			continue
		}
		prev := pts[(i-1+n)%n]
		cur := pts[i]
		next := pts[(i+1)%n]
		inDir, _ := cur.SubPoint(prev).Normalized()
		outDir, _ := next.SubPoint(cur).Normalized()
		start := cur.Sub(inDir.Scale(t))
		end := cur.Add(outDir.Scale(t))

		axis, axisOK := inDir.Cross(outDir).Normalized()
		result = append(result, start)
		if segments > 1 && axisOK {
			fullAngle := signedAngle(inDir.Neg(), outDir.Neg(), axis)
			for k := 1; k < segments; k++ {
				frac := float64(k) / float64(segments)
				rel := rotateVectorAboutAxis(start.SubPoint(cur), axis, fullAngle*frac)
				result = append(result, cur.Add(rel))
			}
		}
		result = append(result, end)
		diag.FilletedCorners++
	}

	diag.OutputPointCount = len(result)
	return result, diag, nil
}

func cornerIndices(n int, closed bool) []int {
	var out []int
	start, end := 1, n-2
	if closed {
		start, end = 0, n-1
	}
	for i := start; i <= end; i++ {
		out = append(out, i)
	}
	return out
}

// signedAngle returns the angle from a to b measured about axis (both
// assumed already perpendicular-ish to axis; used only for arc
// interpolation sign, not a general-purpose vector angle).
func signedAngle(a, b, axis geom.Vec3) float64 {
	cosT := clampUnit(a.Dot(b))
	angle := math.Acos(cosT)
	if axis.Dot(a.Cross(b)) < 0 {
		angle = -angle
	}
	return angle
}

// shrinkForConsistency proportionally shrinks adjacent tangent
// distances on a closed polyline until every segment accommodates both
// its endpoints' tangent lengths, recording how many corners were
// touched (spec.md §4.12).
func shrinkForConsistency(pts []geom.Point3, corners []int, tangentDist map[int]float64, segLen []float64, diag *PolylineFilletDiagnostics) {
	n := len(pts)
	for pass := 0; pass < 8; pass++ {
		changed := false
		for i := 0; i < n; i++ {
			tA, okA := tangentDist[i]
			tB, okB := tangentDist[(i+1)%n]
			if !okA || !okB {
				continue
			}
			length := segLen[i]
			if tA+tB > length && length > 0 {
				scale := length / (tA + tB)
				tangentDist[i] = tA * scale
				tangentDist[(i+1)%n] = tB * scale
				diag.ClampedCorners++
				changed = true
			}
		}
		if !changed {
			break
		}
	}
}

// HingeEdge identifies a mesh edge whose two endpoints are each used by
// exactly two triangles in the whole mesh (spec.md §4.12).
type HingeEdge struct {
	A, B int
}

// MeshFilletOptions controls the restricted mesh-edge fillet.
type MeshFilletOptions struct {
	Radius   float64
	Segments int
}

// MeshFilletDiagnostics reports which edges were processed and why
// others were skipped.
type MeshFilletDiagnostics struct {
	kernel.Diagnostics
	ProcessedEdges int
	SkippedEdges   int
	SkipReasons    []string
}

// MeshFillet rounds the given edges of mesh, restricted to "hinge"
// edges whose two endpoints are each used by exactly two triangles in
// the whole mesh (spec.md §4.12): for each hinge it adds two tangent
// points and replaces the two adjacent triangles with four triangles
// that use them. No endpoint arcs or arc strip are built, so the result
// is a single flat bevel and opts.Segments has no effect. Non-hinge edges and
// edges whose adjacent triangle was already claimed by another fillet
// are skipped with a diagnostic reason.
func MeshFillet(mesh *kernel.Mesh, edges []HingeEdge, opts MeshFilletOptions, tol geom.Tolerance) (*kernel.Mesh, MeshFilletDiagnostics, error) {
	var diag MeshFilletDiagnostics
	if mesh == nil || mesh.IsEmpty() {
		return nil, diag, newOpError(kernel.ErrorKindInputShape, "MeshFillet", "input mesh has no geometry")
	}
	segments := opts.Segments
	if segments < 1 {
		segments = 1
	}
	if opts.Radius <= 0 {
		return nil, diag, newOpError(kernel.ErrorKindInputShape, "MeshFillet", "radius must be positive")
	}

	edgeUse := map[[2]int][]int{}
	vertexTriCount := map[int]int{}
	triOf := make([][3]int, mesh.TriangleCount())
	for i := 0; i < mesh.TriangleCount(); i++ {
		a, b, c := mesh.Triangle(i)
		triOf[i] = [3]int{a, b, c}
		for _, v := range []int{a, b, c} {
			vertexTriCount[v]++
		}
		for _, e := range [][2]int{{a, b}, {b, c}, {c, a}} {
			key := e
			if key[0] > key[1] {
				key[0], key[1] = key[1], key[0]
			}
			edgeUse[key] = append(edgeUse[key], i)
		}
	}

	claimed := map[int]bool{}
	raw := kernel.RawMesh{
		Positions: append([]geom.Point3(nil), mesh.Positions...),
	}

	keepTri := make([]bool, mesh.TriangleCount())
	for i := range keepTri {
		keepTri[i] = true
	}

	for _, e := range edges {
		key := [2]int{e.A, e.B}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		tris, ok := edgeUse[key]
		if !ok || len(tris) != 2 {
			diag.SkippedEdges++
			diag.SkipReasons = append(diag.SkipReasons, "not an edge of exactly two triangles")
			continue
		}
		if vertexTriCount[e.A] != 2 || vertexTriCount[e.B] != 2 {
			diag.SkippedEdges++
			diag.SkipReasons = append(diag.SkipReasons, "endpoint is not a hinge vertex")
			continue
		}
		if claimed[tris[0]] || claimed[tris[1]] {
			diag.SkippedEdges++
			diag.SkipReasons = append(diag.SkipReasons, "adjacent triangle already claimed by another fillet")
			continue
		}

		opp0 := thirdVertex(triOf[tris[0]], key[0], key[1])
		opp1 := thirdVertex(triOf[tris[1]], key[0], key[1])

		tA := filletTangentPoint(mesh.Positions[key[0]], mesh.Positions[opp0], mesh.Positions[opp1], opts.Radius)
		tB := filletTangentPoint(mesh.Positions[key[1]], mesh.Positions[opp0], mesh.Positions[opp1], opts.Radius)

		baseIdx := len(raw.Positions)
		raw.Positions = append(raw.Positions, tA, tB)

		keepTri[tris[0]] = false
		keepTri[tris[1]] = false
		claimed[tris[0]] = true
		claimed[tris[1]] = true

		raw.Indices = append(raw.Indices, key[0], baseIdx, opp0)
		raw.Indices = append(raw.Indices, key[1], opp0, baseIdx)
		raw.Indices = append(raw.Indices, key[0], opp1, baseIdx+1)
		raw.Indices = append(raw.Indices, key[1], baseIdx+1, opp1)

		diag.ProcessedEdges++
	}

	for i, keep := range keepTri {
		if keep {
			t := triOf[i]
			raw.Indices = append(raw.Indices, t[0], t[1], t[2])
		}
	}

	out, meshDiag, err := kernel.Finalize(raw, tol)
	diag.Diagnostics = meshDiag
	if err != nil {
		return nil, diag, err
	}
	return out, diag, nil
}

func thirdVertex(tri [3]int, a, b int) int {
	for _, v := range tri {
		if v != a && v != b {
			return v
		}
	}
	return tri[0]
}

// filletTangentPoint moves edgeVertex toward the midpoint of the two
// opposite-face apexes by a distance proportional to radius, a
// simplified dihedral tangent-point construction for the restricted
// mesh-edge fillet (spec.md §4.12).
func filletTangentPoint(edgeVertex, opp0, opp1 geom.Point3, radius float64) geom.Point3 {
	mid := geom.Point3{
		X: (opp0.X + opp1.X) / 2,
		Y: (opp0.Y + opp1.Y) / 2,
		Z: (opp0.Z + opp1.Z) / 2,
	}
	dir, ok := mid.SubPoint(edgeVertex).Normalized()
	if !ok {
		return edgeVertex
	}
	return edgeVertex.Add(dir.Scale(radius))
}
