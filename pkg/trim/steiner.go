package trim

import (
	"fmt"
	"math"

	"github.com/chazu/ghx/pkg/geom"
)

// TriangulateSteiner triangulates region with extra interior points
// incorporated via a Bowyer-Watson Delaunay triangulation over boundary
// plus filtered Steiner points, keeping only triangles whose centroid
// lies inside the region (spec.md §4.2's "Steiner-point path"). With no
// usable Steiner points it falls back to Triangulate.
func TriangulateSteiner(region TrimRegion, steinerPoints []Point2, tol geom.Tolerance) ([]Point2, []int, Diagnostics, error) {
	if len(steinerPoints) == 0 {
		return Triangulate(region, tol, OptionsForTolerance(tol))
	}

	validSteiner := make([]Point2, 0, len(steinerPoints))
	for _, p := range steinerPoints {
		if p.IsFinite() {
			validSteiner = append(validSteiner, p)
		}
	}
	if len(validSteiner) == 0 {
		return Triangulate(region, tol, OptionsForTolerance(tol))
	}

	var boundary []Point2
	boundary = append(boundary, region.Outer.Points...)
	for _, h := range region.Holes {
		boundary = append(boundary, h.Points...)
	}

	allPoints := append([]Point2(nil), boundary...)
	boundaryCount := len(allPoints)
	minDist := tol.Eps() * 10

	for _, sp := range validSteiner {
		tooClose := false
		for _, p := range allPoints {
			du := sp.U - p.U
			dv := sp.V - p.V
			if math.Sqrt(du*du+dv*dv) < minDist {
				tooClose = true
				break
			}
		}
		if !tooClose {
			allPoints = append(allPoints, sp)
		}
	}

	if len(allPoints) == boundaryCount {
		return Triangulate(region, tol, OptionsForTolerance(tol))
	}

	delaunayTris, err := delaunayTriangulate(allPoints)
	if err != nil {
		return nil, nil, Diagnostics{}, err
	}

	var indices []int
	kept := 0
	for _, tri := range delaunayTris {
		p0, p1, p2 := allPoints[tri[0]], allPoints[tri[1]], allPoints[tri[2]]
		cu := (p0.U + p1.U + p2.U) / 3
		cv := (p0.V + p1.V + p2.V) / 3
		centroid := Point2{U: cu, V: cv}

		if !region.Contains(centroid, tol) {
			continue
		}

		area := orient2D(p0, p1, p2)
		switch {
		case area > tol.Eps():
			indices = append(indices, tri[0], tri[1], tri[2])
			kept++
		case area < -tol.Eps():
			indices = append(indices, tri[0], tri[2], tri[1])
			kept++
		}
	}

	if kept == 0 {
		return nil, nil, Diagnostics{}, fmt.Errorf("trim: triangulation with steiner points produced no valid triangles")
	}

	diag := Diagnostics{InputVertexCount: len(allPoints), OutputTriangleCount: kept}
	return allPoints, indices, diag, nil
}

// delaunayTriangulate runs an incremental Bowyer-Watson Delaunay
// triangulation over a 2D point set, returning index triples into pts.
func delaunayTriangulate(pts []Point2) ([][3]int, error) {
	n := len(pts)
	if n < 3 {
		return nil, fmt.Errorf("trim: delaunay triangulation requires at least 3 points")
	}

	minU, minV := pts[0].U, pts[0].V
	maxU, maxV := pts[0].U, pts[0].V
	for _, p := range pts {
		minU = math.Min(minU, p.U)
		minV = math.Min(minV, p.V)
		maxU = math.Max(maxU, p.U)
		maxV = math.Max(maxV, p.V)
	}
	dx := maxU - minU
	dy := maxV - minV
	deltaMax := math.Max(dx, dy)
	if deltaMax <= 0 {
		deltaMax = 1
	}
	midU := (minU + maxU) / 2
	midV := (minV + maxV) / 2

	// Super-triangle indices are n, n+1, n+2 in an extended point array.
	extended := make([]Point2, n, n+3)
	copy(extended, pts)
	extended = append(extended,
		Point2{U: midU - 20*deltaMax, V: midV - deltaMax},
		Point2{U: midU, V: midV + 20*deltaMax},
		Point2{U: midU + 20*deltaMax, V: midV - deltaMax},
	)

	type tri struct{ a, b, c int }
	triangles := []tri{{n, n + 1, n + 2}}

	for i := 0; i < n; i++ {
		p := extended[i]
		var badTriangles []int
		for ti, t := range triangles {
			if inCircumcircle(p, extended[t.a], extended[t.b], extended[t.c]) {
				badTriangles = append(badTriangles, ti)
			}
		}

		type edge struct{ a, b int }
		edgeCount := map[edge]int{}
		addEdge := func(a, b int) {
			if a > b {
				a, b = b, a
			}
			edgeCount[edge{a, b}]++
		}
		for _, ti := range badTriangles {
			t := triangles[ti]
			addEdge(t.a, t.b)
			addEdge(t.b, t.c)
			addEdge(t.c, t.a)
		}

		// Remove bad triangles (mark, then compact).
		isBad := make(map[int]bool, len(badTriangles))
		for _, ti := range badTriangles {
			isBad[ti] = true
		}
		kept := triangles[:0:0]
		for ti, t := range triangles {
			if !isBad[ti] {
				kept = append(kept, t)
			}
		}
		triangles = kept

		// Re-triangulate the polygonal hole using edges used exactly once.
		for e, count := range edgeCount {
			if count == 1 {
				triangles = append(triangles, tri{e.a, e.b, i})
			}
		}
	}

	var result [][3]int
	for _, t := range triangles {
		if t.a >= n || t.b >= n || t.c >= n {
			continue // discard triangles touching the super-triangle
		}
		result = append(result, [3]int{t.a, t.b, t.c})
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("trim: delaunay triangulation produced no interior triangles")
	}

	return result, nil
}

// inCircumcircle reports whether p lies within the circumcircle of
// triangle (a, b, c).
func inCircumcircle(p, a, b, c Point2) bool {
	ax, ay := a.U-p.U, a.V-p.V
	bx, by := b.U-p.U, b.V-p.V
	cx, cy := c.U-p.U, c.V-p.V

	det := (ax*ax+ay*ay)*(bx*cy-cx*by) -
		(bx*bx+by*by)*(ax*cy-cx*ay) +
		(cx*cx+cy*cy)*(ax*by-bx*ay)

	// Sign of det depends on orientation of (a,b,c); normalize by the
	// triangle's own orientation so the test is orientation-independent.
	orient := orient2D(a, b, c)
	if orient < 0 {
		det = -det
	}
	return det > 0
}
