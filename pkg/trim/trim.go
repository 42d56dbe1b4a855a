// Package trim implements 2D trim regions and their triangulation: a
// constrained ear-clipper with hole bridging over an outer loop and
// zero or more hole loops, a Steiner/Delaunay path for interior point
// insertion, and the regular-grid index generator shared by every
// surface-grid-backed operator.
package trim

import (
	"fmt"
	"math"
	"sort"

	"github.com/chazu/ghx/pkg/geom"
)

// Point2 is a 2D point in a surface's (u, v) trim space.
type Point2 struct {
	U, V float64
}

// IsFinite reports whether both components are finite.
func (p Point2) IsFinite() bool {
	return math.IsFinite(p.U) && math.IsFinite(p.V)
}

const maxFloat = math.MaxFloat64

// TrimLoop is an ordered sequence of UV points with a strictly nonzero
// signed area.
type TrimLoop struct {
	Points []Point2
}

// NewTrimLoop constructs a loop from points.
func NewTrimLoop(points []Point2) TrimLoop { return TrimLoop{Points: append([]Point2(nil), points...)} }

// SignedArea returns the loop's signed area (positive for
// counterclockwise winding in a standard UV frame).
func (l TrimLoop) SignedArea() float64 {
	area := 0.0
	n := len(l.Points)
	for i := 0; i < n; i++ {
		a := l.Points[i]
		b := l.Points[(i+1)%n]
		area += a.U*b.V - b.U*a.V
	}
	return 0.5 * area
}

// TrimRegion owns one outer loop (positive orientation) and zero or more
// hole loops (opposite orientation).
type TrimRegion struct {
	Outer TrimLoop
	Holes []TrimLoop
}

// Contains reports whether p lies within the region via an even-odd
// crossing test over the outer loop and every hole.
func (r TrimRegion) Contains(p Point2, tol geom.Tolerance) bool {
	if !pointInLoop(r.Outer, p) {
		return false
	}
	for _, hole := range r.Holes {
		if pointInLoop(hole, p) {
			return false
		}
	}
	return true
}

func pointInLoop(loop TrimLoop, p Point2) bool {
	inside := false
	n := len(loop.Points)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a := loop.Points[i]
		b := loop.Points[j]
		if (a.V > p.V) != (b.V > p.V) {
			x := a.U + (p.V-a.V)/(b.V-a.V)*(b.U-a.U)
			if p.U < x {
				inside = !inside
			}
		}
	}
	return inside
}

// Options tunes the ear-clipper's quality filtering.
type Options struct {
	MinTriangleArea     float64
	MinTriangleQuality  float64
	CullSkinnyTriangles bool
}

// OptionsForTolerance derives ear-clipper options from a tolerance: the
// minimum retained triangle area is the tolerance squared, with no
// quality floor by default.
func OptionsForTolerance(tol geom.Tolerance) Options {
	return Options{MinTriangleArea: tol.EpsSquared()}
}

// Diagnostics reports what the triangulator did, per spec.md §4.2.
type Diagnostics struct {
	InputVertexCount        int
	OutputTriangleCount     int
	CulledDegenerateTriangles int
	BelowMinQualityTriangles int
	CulledSkinnyTriangles    int
	MinKeptTriangleQuality   float64
}

type ringNode struct {
	idx     int
	point   Point2
	prev    int
	next    int
	removed bool
}

// Triangulate implements the three-stage constrained ear-clipper of
// spec.md §4.2: ring construction with collinear/coincident filtering,
// hole merging via leftmost-vertex ray cast and bridge duplication, and
// ear clipping with the quality metric Q = 4*sqrt(3)*A/(|ab|^2+|bc|^2+|ca|^2).
func Triangulate(region TrimRegion, tol geom.Tolerance, opts Options) ([]Point2, []int, Diagnostics, error) {
	var vertices []Point2
	vertices = append(vertices, region.Outer.Points...)
	for _, hole := range region.Holes {
		vertices = append(vertices, hole.Points...)
	}

	for _, p := range vertices {
		if !p.IsFinite() {
			return nil, nil, Diagnostics{}, fmt.Errorf("trim: triangulation vertices must be finite")
		}
	}

	var nodes []ringNode

	outerLen := len(region.Outer.Points)
	if outerLen < 3 {
		return nil, nil, Diagnostics{}, fmt.Errorf("trim: outer loop must have at least 3 points")
	}

	outerStart := buildRingNodes(&nodes, 0, outerLen, vertices)
	outerStart, ok := filterRingPoints(outerStart, nodes, tol)
	if !ok {
		return nil, nil, Diagnostics{}, fmt.Errorf("trim: outer loop degenerates after filtering")
	}

	var holeStarts []int
	cursor := outerLen
	for _, hole := range region.Holes {
		n := len(hole.Points)
		if n < 3 {
			continue
		}
		start := buildRingNodes(&nodes, cursor, cursor+n, vertices)
		if filtered, ok := filterRingPoints(start, nodes, tol); ok {
			holeStarts = append(holeStarts, filtered)
		}
		cursor += n
	}

	sort.Slice(holeStarts, func(i, j int) bool {
		a := nodes[leftmostNode(holeStarts[i], nodes)].point
		b := nodes[leftmostNode(holeStarts[j], nodes)].point
		if a.U != b.U {
			return a.U < b.U
		}
		return a.V < b.V
	})

	for _, holeStart := range holeStarts {
		holeLeft := leftmostNode(holeStart, nodes)
		bridge, ok := findHoleBridge(holeLeft, outerStart, nodes, tol)
		if !ok {
			return nil, nil, Diagnostics{}, fmt.Errorf("trim: failed to find a bridge from hole to outer loop")
		}
		splitPolygon(bridge, holeLeft, &nodes)
		outerStart, ok = filterRingPoints(outerStart, nodes, tol)
		if !ok {
			return nil, nil, Diagnostics{}, fmt.Errorf("trim: region degenerates after hole merge")
		}
	}

	triangles, err := earclipPolygon(outerStart, &nodes, tol)
	if err != nil {
		return nil, nil, Diagnostics{}, err
	}
	if len(triangles) == 0 {
		return nil, nil, Diagnostics{}, fmt.Errorf("trim: triangulation produced no triangles")
	}

	var diag Diagnostics
	diag.MinKeptTriangleQuality = maxFloat
	indices := make([]int, 0, len(triangles)*3)

	for _, tri := range triangles {
		i0, i1, i2 := tri[0], tri[1], tri[2]
		if i0 == i1 || i1 == i2 || i0 == i2 {
			diag.CulledDegenerateTriangles++
			continue
		}

		a, b, c := vertices[i0], vertices[i1], vertices[i2]
		area2 := absF(orient2D(a, b, c))
		area := 0.5 * area2
		if !finite(area) || area <= opts.MinTriangleArea {
			diag.CulledDegenerateTriangles++
			continue
		}

		quality := triangleQuality(a, b, c)
		if opts.MinTriangleQuality > 0 && quality < opts.MinTriangleQuality {
			diag.BelowMinQualityTriangles++
			if opts.CullSkinnyTriangles {
				diag.CulledSkinnyTriangles++
				continue
			}
		}

		if quality < diag.MinKeptTriangleQuality {
			diag.MinKeptTriangleQuality = quality
		}
		indices = append(indices, i0, i1, i2)
	}

	if diag.MinKeptTriangleQuality == maxFloat {
		diag.MinKeptTriangleQuality = 0
	}

	diag.InputVertexCount = len(vertices)
	diag.OutputTriangleCount = len(indices) / 3

	return vertices, indices, diag, nil
}

func buildRingNodes(nodes *[]ringNode, start, end int, vertices []Point2) int {
	startIdx := len(*nodes)
	n := end - start
	for i := 0; i < n; i++ {
		idx := start + i
		*nodes = append(*nodes, ringNode{idx: idx, point: vertices[idx]})
	}
	for i := 0; i < n; i++ {
		cur := startIdx + i
		(*nodes)[cur].prev = startIdx + (i+n-1)%n
		(*nodes)[cur].next = startIdx + (i+1)%n
	}
	return startIdx
}

func ringLen(start int, nodes []ringNode) int {
	count := 0
	cur := start
	for {
		count++
		cur = nodes[cur].next
		if cur == start || count > len(nodes)+1 {
			break
		}
	}
	return count
}

func filterRingPoints(start int, nodes []ringNode, tol geom.Tolerance) (int, bool) {
	if ringLen(start, nodes) < 3 {
		return 0, false
	}

	cur := start
	guard := 0
	maxGuard := maxInt(len(nodes)*4, 16)

	for {
		guard++
		if guard > maxGuard {
			break
		}

		prev := nodes[cur].prev
		next := nodes[cur].next
		if cur == next || cur == prev || prev == next {
			break
		}

		p := nodes[prev].point
		c := nodes[cur].point
		n := nodes[next].point

		dup := approxEqUV(p, c, tol) || approxEqUV(c, n, tol)
		collinear := distancePointToLine2D(p, c, n) <= tol.Eps()

		if dup || collinear {
			if cur == start {
				start = next
			}
			removeNode(cur, nodes)
			cur = prev
			if ringLen(start, nodes) < 3 {
				return 0, false
			}
		} else {
			cur = next
		}

		if cur == start {
			break
		}
	}

	return start, true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func leftmostNode(start int, nodes []ringNode) int {
	left := start
	cur := nodes[start].next
	for cur != start {
		a := nodes[cur].point
		b := nodes[left].point
		if a.U < b.U || (a.U == b.U && a.V < b.V) {
			left = cur
		}
		cur = nodes[cur].next
	}
	return left
}

func findHoleBridge(hole, outerStart int, nodes []ringNode, tol geom.Tolerance) (int, bool) {
	holeP := nodes[hole].point
	bestX := -maxFloat
	bestE0, bestE1 := -1, -1

	p := outerStart
	for {
		q := nodes[p].next
		a := nodes[p].point
		b := nodes[q].point

		if (a.V > holeP.V) != (b.V > holeP.V) {
			denom := b.V - a.V
			if denom != 0 {
				t := (holeP.V - a.V) / denom
				x := a.U + t*(b.U-a.U)
				if x <= holeP.U+tol.Eps() && x > bestX {
					bestX = x
					bestE0, bestE1 = p, q
				}
			}
		}

		p = q
		if p == outerStart {
			break
		}
	}

	if bestE0 < 0 {
		return 0, false
	}

	var candidates [2]int
	if nodes[bestE0].point.U < nodes[bestE1].point.U {
		candidates = [2]int{bestE0, bestE1}
	} else {
		candidates = [2]int{bestE1, bestE0}
	}

	for _, cand := range candidates {
		if isVisible(holeP, nodes[cand].point, cand, outerStart, nodes, tol) {
			return cand, true
		}
	}

	best := -1
	bestDist2 := maxFloat

	v := outerStart
	for {
		p := nodes[v].point
		if p.U <= holeP.U+tol.Eps() && isVisible(holeP, p, v, outerStart, nodes, tol) {
			du := p.U - holeP.U
			dv := p.V - holeP.V
			d2 := du*du + dv*dv
			if d2 < bestDist2 {
				bestDist2 = d2
				best = v
			}
		}
		v = nodes[v].next
		if v == outerStart {
			break
		}
	}

	if best < 0 {
		return 0, false
	}
	return best, true
}

func splitPolygon(a, b int, nodes *[]ringNode) {
	ns := *nodes
	aNext := ns[a].next
	bPrev := ns[b].prev

	a2 := len(ns)
	ns = append(ns, ringNode{idx: ns[a].idx, point: ns[a].point})
	b2 := len(ns)
	ns = append(ns, ringNode{idx: ns[b].idx, point: ns[b].point})

	ns[a].next = b
	ns[b].prev = a

	ns[bPrev].next = b2
	ns[b2].prev = bPrev

	ns[b2].next = a2
	ns[a2].prev = b2

	ns[a2].next = aNext
	ns[aNext].prev = a2

	*nodes = ns
}

func earclipPolygon(start int, nodes *[]ringNode, tol geom.Tolerance) ([][3]int, error) {
	start, ok := filterRingPoints(start, *nodes, tol)
	if !ok {
		return nil, fmt.Errorf("trim: polygon degenerates after filtering")
	}

	isCCW := signedAreaRing(start, *nodes) > 0
	remaining := ringLen(start, *nodes)
	if remaining < 3 {
		return nil, fmt.Errorf("trim: polygon has fewer than 3 vertices")
	}

	ear := start
	stop := start
	triangles := make([][3]int, 0, maxInt(remaining-2, 0))
	passesWithoutClip := 0

	for remaining > 2 {
		ns := *nodes
		prev := ns[ear].prev
		next := ns[ear].next
		if isEar(prev, ear, next, ns, isCCW, tol) {
			if isCCW {
				triangles = append(triangles, [3]int{ns[prev].idx, ns[ear].idx, ns[next].idx})
			} else {
				triangles = append(triangles, [3]int{ns[prev].idx, ns[next].idx, ns[ear].idx})
			}

			if ear == start {
				start = next
			}
			removeNode(ear, ns)
			remaining--
			ear = next
			stop = next
			passesWithoutClip = 0
			continue
		}

		ear = next
		if ear == stop {
			passesWithoutClip++
			if passesWithoutClip > 2 {
				return nil, fmt.Errorf("trim: failed to triangulate polygon (no ears found)")
			}
			var ok bool
			start, ok = filterRingPoints(start, *nodes, tol)
			if !ok {
				return nil, fmt.Errorf("trim: polygon degenerates during triangulation")
			}
			remaining = ringLen(start, *nodes)
			ear = start
			stop = start
		}
	}

	return triangles, nil
}

func isEar(prev, ear, next int, nodes []ringNode, isCCW bool, tol geom.Tolerance) bool {
	a := nodes[prev].point
	b := nodes[ear].point
	c := nodes[next].point

	cross := orient2D(a, b, c)
	if distancePointToLine2D(a, b, c) <= tol.Eps() {
		return false
	}

	if isCCW {
		if cross <= 0 {
			return false
		}
	} else if cross >= 0 {
		return false
	}

	p := nodes[next].next
	guard := 0
	for p != prev {
		guard++
		if guard > len(nodes)+1 {
			break
		}
		pt := nodes[p].point
		if pointInTriangle(a, b, c, pt, isCCW, tol) {
			prevP := nodes[p].prev
			nextP := nodes[p].next
			crossP := orient2D(nodes[prevP].point, pt, nodes[nextP].point)
			var reflex bool
			if isCCW {
				reflex = crossP <= tol.Eps()
			} else {
				reflex = crossP >= -tol.Eps()
			}
			if reflex {
				return false
			}
		}
		p = nodes[p].next
	}

	return true
}

func signedAreaRing(start int, nodes []ringNode) float64 {
	area := 0.0
	p := start
	for {
		q := nodes[p].next
		a := nodes[p].point
		b := nodes[q].point
		area += a.U*b.V - b.U*a.V
		p = q
		if p == start {
			break
		}
	}
	return 0.5 * area
}

func removeNode(node int, nodes []ringNode) {
	prev := nodes[node].prev
	next := nodes[node].next
	nodes[prev].next = next
	nodes[next].prev = prev
	nodes[node].removed = true
}

func approxEqUV(a, b Point2, tol geom.Tolerance) bool {
	return absF(a.U-b.U) <= tol.Eps() && absF(a.V-b.V) <= tol.Eps()
}

func orient2D(a, b, c Point2) float64 {
	return (b.U-a.U)*(c.V-a.V) - (b.V-a.V)*(c.U-a.U)
}

func pointInTriangle(a, b, c, p Point2, isCCW bool, tol geom.Tolerance) bool {
	ab := orient2D(a, b, p)
	bc := orient2D(b, c, p)
	ca := orient2D(c, a, p)
	if isCCW {
		return ab >= -tol.Eps() && bc >= -tol.Eps() && ca >= -tol.Eps()
	}
	return ab <= tol.Eps() && bc <= tol.Eps() && ca <= tol.Eps()
}

func isVisible(a, b Point2, bNode, ringStart int, nodes []ringNode, tol geom.Tolerance) bool {
	e := ringStart
	for {
		n := nodes[e].next
		if e != bNode && n != bNode {
			c := nodes[e].point
			d := nodes[n].point
			if segmentsIntersect(a, b, c, d, tol) {
				return false
			}
		}
		e = n
		if e == ringStart {
			break
		}
	}
	return true
}

func segmentsIntersect(a, b, c, d Point2, tol geom.Tolerance) bool {
	o1 := orient2D(a, b, c)
	o2 := orient2D(a, b, d)
	o3 := orient2D(c, d, a)
	o4 := orient2D(c, d, b)

	eps := tol.Eps()
	if absF(o1) <= eps && onSegment(a, c, b, tol) {
		return true
	}
	if absF(o2) <= eps && onSegment(a, d, b, tol) {
		return true
	}
	if absF(o3) <= eps && onSegment(c, a, d, tol) {
		return true
	}
	if absF(o4) <= eps && onSegment(c, b, d, tol) {
		return true
	}

	ab := (o1 > eps && o2 < -eps) || (o1 < -eps && o2 > eps)
	cd := (o3 > eps && o4 < -eps) || (o3 < -eps && o4 > eps)
	return ab && cd
}

func onSegment(a, p, b Point2, tol geom.Tolerance) bool {
	eps := tol.Eps()
	minU := minF(a.U, b.U) - eps
	maxU := maxF(a.U, b.U) + eps
	minV := minF(a.V, b.V) - eps
	maxV := maxF(a.V, b.V) + eps
	return p.U >= minU && p.U <= maxU && p.V >= minV && p.V <= maxV
}

func triangleQuality(a, b, c Point2) float64 {
	area2 := absF(orient2D(a, b, c))
	if !finite(area2) || area2 <= 0 {
		return 0
	}
	ab2 := sq(a.U-b.U) + sq(a.V-b.V)
	bc2 := sq(b.U-c.U) + sq(b.V-c.V)
	ca2 := sq(c.U-a.U) + sq(c.V-a.V)
	sum := ab2 + bc2 + ca2
	if !finite(sum) || sum <= 0 {
		return 0
	}
	area := 0.5 * area2
	q := 4 * 1.7320508075688772 * area / sum // 4*sqrt(3)
	if q < 0 {
		return 0
	}
	if q > 1 {
		return 1
	}
	return q
}

func distancePointToLine2D(a, p, b Point2) float64 {
	abU := b.U - a.U
	abV := b.V - a.V
	denom2 := abU*abU + abV*abV
	if !finite(denom2) || denom2 <= 0 {
		return sqrtF(sq(p.U-a.U) + sq(p.V-a.V))
	}
	denom := sqrtF(denom2)
	return absF(orient2D(a, b, p)) / denom
}

func sq(v float64) float64      { return v * v }
func absF(v float64) float64    { return math.Abs(v) }
func minF(a, b float64) float64 { return math.Min(a, b) }
func maxF(a, b float64) float64 { return math.Max(a, b) }
func finite(v float64) bool     { return math.IsFinite(v) }
func sqrtF(v float64) float64 {
	if v < 0 {
		return 0
	}
	return math.Sqrt(v)
}
