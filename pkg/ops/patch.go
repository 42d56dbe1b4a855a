package ops

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/chazu/ghx/pkg/geom"
	"github.com/chazu/ghx/pkg/kernel"
	"github.com/chazu/ghx/pkg/trim"
)

// patchPlanarityFactor scales Tolerance.Default into the maximum
// Newell-normal deviation a boundary loop may exhibit and still be
// patched as planar; confirmed against patch.rs's planar_eps in the
// original implementation (spec.md §4.9, DESIGN.md).
const patchPlanarityFactor = 1e3

// PatchOptions controls boundary subdivision and interior point
// injection (spec.md §4.9).
type PatchOptions struct {
	// SpanSubdivisions, when > 0, subdivides each boundary edge into
	// this many spans before triangulation.
	SpanSubdivisions int
	// Flexibility drives an interior Steiner grid of roughly
	// ceil(sqrt(2*flexibility)) cells per axis when > 0.
	Flexibility float64
}

// PatchDiagnostics reports planarity and interior-point findings.
type PatchDiagnostics struct {
	kernel.Diagnostics
	PlanarDeviation   float64
	HoleCount         int
	SteinerPointCount int
}

// Patch fills a planar boundary loop, optionally with holes, with a
// triangle mesh (spec.md §4.9): Newell-normal planarity check, plane
// projection, optional span subdivision and flexibility-driven Steiner
// grid, constrained triangulation, and unprojection.
func Patch(outer []geom.Point3, holes [][]geom.Point3, opts PatchOptions, tol geom.Tolerance) (*kernel.Mesh, PatchDiagnostics, error) {
	var diag PatchDiagnostics

	outerClean, _ := cleanPolyline(outer, tol)
	if len(outerClean) < 3 {
		return nil, diag, newOpError(kernel.ErrorKindInputShape, "Patch", "outer boundary needs at least three distinct points")
	}
	cleanedHoles := make([][]geom.Point3, 0, len(holes))
	for _, h := range holes {
		hc, _ := cleanPolyline(h, tol)
		if len(hc) >= 3 {
			cleanedHoles = append(cleanedHoles, hc)
		}
	}
	diag.HoleCount = len(cleanedHoles)

	normal, ok := newellNormal(outerClean).Normalized()
	if !ok {
		return nil, diag, newOpError(kernel.ErrorKindGeometricImpossibility, "Patch", "boundary is degenerate (zero area)")
	}
	origin := centroid(outerClean)
	planarTol := tol.Scaled(patchPlanarityFactor)
	deviation := planarDeviation(outerClean, origin, normal)
	diag.PlanarDeviation = deviation
	if deviation > planarTol.Eps() {
		return nil, diag, newOpError(kernel.ErrorKindGeometricImpossibility, "Patch", "boundary is not planar enough to patch")
	}

	x, y := planeBasis(normal)

	outerUV := subdivideLoopUV(projectLoop(outerClean, origin, x, y), opts.SpanSubdivisions)
	region := trim.TrimRegion{Outer: trim.NewTrimLoop(outerUV)}
	for _, h := range cleanedHoles {
		holeUV := subdivideLoopUV(projectLoop(h, origin, x, y), opts.SpanSubdivisions)
		region.Holes = append(region.Holes, trim.NewTrimLoop(holeUV))
	}

	var steiner []trim.Point2
	if opts.Flexibility > 0 {
		steiner = interiorSteinerGrid(region, opts.Flexibility, tol)
		diag.SteinerPointCount = len(steiner)
	}

	var outUV []trim.Point2
	var indices []int
	var err error
	if len(steiner) > 0 {
		outUV, indices, _, err = trim.TriangulateSteiner(region, steiner, tol)
	} else {
		outUV, indices, _, err = trim.Triangulate(region, tol, trim.OptionsForTolerance(tol))
	}
	if err != nil {
		return nil, diag, wrapOpError(kernel.ErrorKindGeometricImpossibility, "Patch", "triangulating boundary", err)
	}

	raw := kernel.RawMesh{
		Positions: make([]geom.Point3, len(outUV)),
		Indices:   indices,
		UVs:       make([]kernel.UV, len(outUV)),
	}
	minU, minV, maxU, maxV := boundsOf(outUV)
	for i, p := range outUV {
		raw.Positions[i] = unprojectFromPlane(origin, x, y, p)
		raw.UVs[i] = normalizedUV(p, minU, minV, maxU, maxV)
	}

	mesh, meshDiag, err := kernel.Finalize(raw, tol)
	diag.Diagnostics = meshDiag
	if err != nil {
		return nil, diag, err
	}
	return mesh, diag, nil
}

func projectLoop(loop []geom.Point3, origin geom.Point3, x, y geom.Vec3) []trim.Point2 {
	uv := make([]trim.Point2, len(loop))
	for i, p := range loop {
		uv[i] = projectToPlane(origin, x, y, p)
	}
	return uv
}

func boundsOf(pts []trim.Point2) (minU, minV, maxU, maxV float64) {
	minU, maxU = pts[0].U, pts[0].U
	minV, maxV = pts[0].V, pts[0].V
	for _, p := range pts[1:] {
		minU = math.Min(minU, p.U)
		maxU = math.Max(maxU, p.U)
		minV = math.Min(minV, p.V)
		maxV = math.Max(maxV, p.V)
	}
	return
}

func normalizedUV(p trim.Point2, minU, minV, maxU, maxV float64) kernel.UV {
	u, v := p.U, p.V
	if maxU > minU {
		u = (p.U - minU) / (maxU - minU)
	}
	if maxV > minV {
		v = (p.V - minV) / (maxV - minV)
	}
	return kernel.UV{U: u, V: v}
}

// subdivideLoopUV inserts spans-1 evenly spaced points along each edge
// when spans > 1 (spec.md §4.9's "optionally subdivide boundary by a
// span count").
func subdivideLoopUV(loop []trim.Point2, spans int) []trim.Point2 {
	if spans < 2 {
		return loop
	}
	out := make([]trim.Point2, 0, len(loop)*spans)
	n := len(loop)
	for i := 0; i < n; i++ {
		a := loop[i]
		b := loop[(i+1)%n]
		out = append(out, a)
		for k := 1; k < spans; k++ {
			t := float64(k) / float64(spans)
			out = append(out, trim.Point2{U: a.U + (b.U-a.U)*t, V: a.V + (b.V-a.V)*t})
		}
	}
	return out
}

// interiorSteinerGrid scatters a roughly ceil(sqrt(2*flexibility)) per
// axis grid of interior points across the region's bounding box,
// keeping only points strictly inside (spec.md §4.9).
func interiorSteinerGrid(region trim.TrimRegion, flexibility float64, tol geom.Tolerance) []trim.Point2 {
	cells := int(math.Ceil(math.Sqrt(2 * flexibility)))
	if cells < 1 {
		return nil
	}
	minU, minV, maxU, maxV := boundsOf(region.Outer.Points)
	var pts []trim.Point2
	for i := 1; i < cells; i++ {
		for j := 1; j < cells; j++ {
			u := minU + (maxU-minU)*float64(i)/float64(cells)
			v := minV + (maxV-minV)*float64(j)/float64(cells)
			p := trim.Point2{U: u, V: v}
			if region.Contains(p, tol) {
				pts = append(pts, p)
			}
		}
	}
	return pts
}

// FragmentPatchOptions mirrors PatchOptions for independent loop
// fragments (spec.md §4.9 fragment-patch).
type FragmentPatchOptions = PatchOptions

// FragmentPatchDiagnostics aggregates per-region patch diagnostics.
type FragmentPatchDiagnostics struct {
	kernel.Diagnostics
	OuterRegionCount    int
	RejectedIntersecting int
}

// FragmentPatch classifies a set of independent closed loops by
// point-in-loop nesting depth (even = outer, odd = hole, assigned to
// the smallest containing outer), rejects intersecting loops, and
// patches each outer region independently against a shared plane (the
// largest-area loop defines it, with a best-fit plane over all points
// when that loop has no usable normal) — spec.md §4.9.
func FragmentPatch(loops [][]geom.Point3, opts FragmentPatchOptions, tol geom.Tolerance) (*kernel.Mesh, FragmentPatchDiagnostics, error) {
	var diag FragmentPatchDiagnostics

	cleaned := make([][]geom.Point3, 0, len(loops))
	for _, l := range loops {
		lc, _ := cleanPolyline(l, tol)
		if len(lc) >= 3 {
			cleaned = append(cleaned, lc)
		}
	}
	if len(cleaned) == 0 {
		return nil, diag, newOpError(kernel.ErrorKindInputShape, "FragmentPatch", "no usable loops")
	}

	largest, largestArea := 0, -1.0
	for i, l := range cleaned {
		if a := newellNormal(l).Length(); a > largestArea {
			largest, largestArea = i, a
		}
	}
	origin := centroid(cleaned[largest])
	normal, ok := newellNormal(cleaned[largest]).Normalized()
	if !ok {
		origin, normal = bestFitPlane(cleaned)
	}
	x, y := planeBasis(normal)

	uvLoops := make([][]trim.Point2, len(cleaned))
	for i, l := range cleaned {
		uvLoops[i] = projectLoop(l, origin, x, y)
	}

	if loopsIntersectAny(uvLoops) {
		diag.RejectedIntersecting = 1
		return nil, diag, newOpError(kernel.ErrorKindGeometricImpossibility, "FragmentPatch", "loops locally intersect")
	}

	depth := make([]int, len(uvLoops))
	container := make([]int, len(uvLoops))
	for i := range container {
		container[i] = -1
	}
	for i, li := range uvLoops {
		best := -1
		bestArea := math.Inf(1)
		for j, lj := range uvLoops {
			if i == j {
				continue
			}
			if loopContainsLoop(lj, li) {
				area := math.Abs(trim.NewTrimLoop(lj).SignedArea())
				if area < bestArea {
					bestArea = area
					best = j
				}
			}
		}
		container[i] = best
	}
	for i := range uvLoops {
		d := 0
		c := container[i]
		for c != -1 {
			d++
			c = container[c]
		}
		depth[i] = d
	}

	outerIdx := map[int][]int{}
	for i, d := range depth {
		if d%2 == 0 {
			outerIdx[i] = nil
		}
	}
	for i, d := range depth {
		if d%2 == 1 {
			owner := container[i]
			outerIdx[owner] = append(outerIdx[owner], i)
		}
	}

	var raw kernel.RawMesh
	for outer, holeIdxs := range outerIdx {
		holeUV := make([]trim.TrimLoop, len(holeIdxs))
		for k, hi := range holeIdxs {
			holeUV[k] = trim.NewTrimLoop(uvLoops[hi])
		}
		region := trim.TrimRegion{Outer: trim.NewTrimLoop(uvLoops[outer]), Holes: holeUV}
		outUV, indices, _, err := trim.Triangulate(region, tol, trim.OptionsForTolerance(tol))
		if err != nil {
			continue
		}
		base := len(raw.Positions)
		for _, p := range outUV {
			raw.Positions = append(raw.Positions, unprojectFromPlane(origin, x, y, p))
		}
		for _, idx := range indices {
			raw.Indices = append(raw.Indices, base+idx)
		}
		diag.OuterRegionCount++
	}

	if len(raw.Indices) == 0 {
		return nil, diag, newOpError(kernel.ErrorKindGeometricImpossibility, "FragmentPatch", "no region could be triangulated")
	}

	mesh, meshDiag, err := kernel.Finalize(raw, tol)
	diag.Diagnostics = meshDiag
	if err != nil {
		return nil, diag, err
	}
	return mesh, diag, nil
}

// bestFitPlane computes the centroid and smallest-singular-vector
// normal of the combined point set via SVD (spec.md §4.9's "shared
// best-fit plane").
func bestFitPlane(loops [][]geom.Point3) (geom.Point3, geom.Vec3) {
	var all []geom.Point3
	for _, l := range loops {
		all = append(all, l...)
	}
	c := centroid(all)

	data := make([]float64, len(all)*3)
	for i, p := range all {
		rel := p.SubPoint(c)
		data[i*3] = rel.X
		data[i*3+1] = rel.Y
		data[i*3+2] = rel.Z
	}
	m := mat.NewDense(len(all), 3, data)

	var svd mat.SVD
	if !svd.Factorize(m, mat.SVDThin) {
		n, _ := newellNormal(loops[0]).Normalized()
		return c, n
	}
	var v mat.Dense
	svd.VTo(&v)
	// The third column of V corresponds to the smallest singular value
	// — the least-variance direction, i.e. the fitted plane normal.
	normal := geom.NewVec3(v.At(0, 2), v.At(1, 2), v.At(2, 2))
	n, ok := normal.Normalized()
	if !ok {
		n, _ = newellNormal(loops[0]).Normalized()
	}
	return c, n
}

func loopContainsLoop(outer, inner []trim.Point2) bool {
	region := trim.TrimRegion{Outer: trim.NewTrimLoop(outer)}
	for _, p := range inner {
		if !region.Contains(p, geom.ToleranceDefault) {
			return false
		}
	}
	return true
}

func loopsIntersectAny(loops [][]trim.Point2) bool {
	for i := 0; i < len(loops); i++ {
		for j := i + 1; j < len(loops); j++ {
			if segmentsCross(loops[i], loops[j]) {
				return true
			}
		}
	}
	return false
}

func segmentsCross(a, b []trim.Point2) bool {
	for i := 0; i < len(a); i++ {
		a0, a1 := a[i], a[(i+1)%len(a)]
		for j := 0; j < len(b); j++ {
			b0, b1 := b[j], b[(j+1)%len(b)]
			if segIntersect(a0, a1, b0, b1) {
				return true
			}
		}
	}
	return false
}

func segIntersect(p1, p2, p3, p4 trim.Point2) bool {
	d1 := cross2(p4, p3, p1)
	d2 := cross2(p4, p3, p2)
	d3 := cross2(p2, p1, p3)
	d4 := cross2(p2, p1, p4)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func cross2(a, b, c trim.Point2) float64 {
	return (b.U-a.U)*(c.V-a.V) - (b.V-a.V)*(c.U-a.U)
}
