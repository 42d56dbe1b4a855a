package ops

import (
	"math"

	"github.com/chazu/ghx/pkg/geom"
	"github.com/chazu/ghx/pkg/kernel"
)

// LoftOptions controls profile pre-alignment and capping (spec.md §4.5).
type LoftOptions struct {
	Rebuild            bool
	RebuildPointCount  int
	AdjustSeams        bool
	CapStart           bool
	CapEnd             bool
	TwistTotalRadians  float64
}

// LoftDiagnostics reports pre-alignment and assembly findings.
type LoftDiagnostics struct {
	kernel.Diagnostics
	SeamRotations        []int
	MaxTwistRadians      float64
	TwistPerPair         []float64
	SelfIntersectionHint bool
	CappedStart          bool
	CappedEnd            bool
}

// Loft assembles a quad-strip mesh across an ordered list of profiles
// (spec.md §4.5): optional arc-length rebuild, optional seam-rotation
// alignment, twist diagnostics, and optional end caps.
func Loft(profiles [][]geom.Point3, opts LoftOptions, tol geom.Tolerance) (*kernel.Mesh, LoftDiagnostics, error) {
	var diag LoftDiagnostics

	if len(profiles) < 2 {
		return nil, diag, newOpError(kernel.ErrorKindInputShape, "Loft", "loft needs at least two profiles")
	}

	cleanedProfiles := make([][]geom.Point3, len(profiles))
	closedFlags := make([]bool, len(profiles))
	for i, p := range profiles {
		cleaned, closed := cleanPolyline(p, tol)
		if len(cleaned) < 2 {
			return nil, diag, newOpError(kernel.ErrorKindInputShape, "Loft", "every profile needs at least two distinct points")
		}
		cleanedProfiles[i] = cleaned
		closedFlags[i] = closed
	}

	pointCount := opts.RebuildPointCount
	if opts.Rebuild {
		if pointCount < 2 {
			pointCount = len(cleanedProfiles[0])
		}
		for i := range cleanedProfiles {
			cleanedProfiles[i] = resamplePolyline(cleanedProfiles[i], pointCount, closedFlags[i])
		}
	} else {
		pointCount = len(cleanedProfiles[0])
		for _, p := range cleanedProfiles {
			if len(p) != pointCount {
				return nil, diag, newOpError(kernel.ErrorKindInputShape, "Loft", "profiles must share a point count, or set Rebuild")
			}
		}
	}

	diag.SeamRotations = make([]int, len(cleanedProfiles))
	if opts.AdjustSeams {
		for i := 1; i < len(cleanedProfiles); i++ {
			rot := bestSeamRotation(cleanedProfiles[i-1], cleanedProfiles[i])
			diag.SeamRotations[i] = rot
			cleanedProfiles[i] = rotateRing(cleanedProfiles[i], rot)
		}
	}

	diag.TwistPerPair = make([]float64, 0, len(cleanedProfiles)-1)
	for i := 1; i < len(cleanedProfiles); i++ {
		twist := twistBetween(cleanedProfiles[i-1], cleanedProfiles[i])
		diag.TwistPerPair = append(diag.TwistPerPair, twist)
		if math.Abs(twist) > math.Abs(diag.MaxTwistRadians) {
			diag.MaxTwistRadians = twist
		}
	}

	closed := closedFlags[0]

	raw := kernel.RawMesh{}
	ringBase := make([]int, len(cleanedProfiles))
	for i, ring := range cleanedProfiles {
		ringBase[i] = len(raw.Positions)
		vRatio := float64(i) / float64(len(cleanedProfiles)-1)
		for j, p := range ring {
			raw.Positions = append(raw.Positions, p)
			raw.UVs = append(raw.UVs, kernel.UV{U: float64(j) / float64(len(ring)), V: vRatio})
		}
	}

	for i := 1; i < len(cleanedProfiles); i++ {
		raw.Indices = appendQuadStrip(raw.Indices, ringBase[i-1], ringBase[i], pointCount, closed)
		if quadStripInverts(raw.Positions, ringBase[i-1], ringBase[i], pointCount, closed) {
			diag.SelfIntersectionHint = true
		}
	}

	if closed {
		if opts.CapStart {
			capPositions, capIndices, normal, err := triangulateCapLoop(cleanedProfiles[0], tol)
			if err == nil {
				dir := cleanedProfiles[1][0].SubPoint(cleanedProfiles[0][0])
				if normal.Dot(dir) > 0 {
					capIndices = reverseWinding(capIndices)
				}
				base := len(raw.Positions)
				raw.Positions = append(raw.Positions, capPositions...)
				raw.UVs = append(raw.UVs, capUVs(capPositions, cleanedProfiles[0][0], normal)...)
				raw.Indices = appendTriangles(raw.Indices, base, capIndices)
				diag.CappedStart = true
			}
		}
		if opts.CapEnd {
			last := cleanedProfiles[len(cleanedProfiles)-1]
			capPositions, capIndices, normal, err := triangulateCapLoop(last, tol)
			if err == nil {
				dir := last[0].SubPoint(cleanedProfiles[len(cleanedProfiles)-2][0])
				if normal.Dot(dir) < 0 {
					capIndices = reverseWinding(capIndices)
				}
				base := len(raw.Positions)
				raw.Positions = append(raw.Positions, capPositions...)
				raw.UVs = append(raw.UVs, capUVs(capPositions, last[0], normal)...)
				raw.Indices = appendTriangles(raw.Indices, base, capIndices)
				diag.CappedEnd = true
			}
		}
	}

	mesh, meshDiag, err := kernel.Finalize(raw, tol)
	diag.Diagnostics = meshDiag
	if err != nil {
		return nil, diag, err
	}
	return mesh, diag, nil
}

// bestSeamRotation finds the cyclic rotation of b that minimizes total
// squared distance to a (both same length).
func bestSeamRotation(a, b []geom.Point3) int {
	n := len(b)
	best := 0
	bestCost := math.Inf(1)
	for r := 0; r < n; r++ {
		cost := 0.0
		for i := 0; i < n && i < len(a); i++ {
			cost += a[i].DistanceSquaredTo(b[(i+r)%n])
		}
		if cost < bestCost {
			bestCost = cost
			best = r
		}
	}
	return best
}

func rotateRing(ring []geom.Point3, rot int) []geom.Point3 {
	n := len(ring)
	if n == 0 {
		return ring
	}
	rot = ((rot % n) + n) % n
	out := make([]geom.Point3, n)
	for i := 0; i < n; i++ {
		out[i] = ring[(i+rot)%n]
	}
	return out
}

// twistBetween estimates net angular offset of corresponding points
// around the two profiles' shared centroid axis.
func twistBetween(a, b []geom.Point3) float64 {
	ca := centroid(a)
	cb := centroid(b)
	axis, ok := cb.SubPoint(ca).Normalized()
	if !ok {
		axis = geom.UnitZ
	}
	x, y := planeBasis(axis)

	total := 0.0
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		va := a[i].SubPoint(ca)
		vb := b[i].SubPoint(cb)
		angleA := math.Atan2(va.Dot(y), va.Dot(x))
		angleB := math.Atan2(vb.Dot(y), vb.Dot(x))
		d := angleB - angleA
		for d > math.Pi {
			d -= 2 * math.Pi
		}
		for d < -math.Pi {
			d += 2 * math.Pi
		}
		total += d
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

func centroid(points []geom.Point3) geom.Point3 {
	var sum geom.Vec3
	for _, p := range points {
		sum = sum.Add(p.Vec3())
	}
	if len(points) == 0 {
		return geom.Origin
	}
	return geom.PointFromVec3(sum.Scale(1 / float64(len(points))))
}

// quadStripInverts reports whether any quad's two triangles have
// opposing normals, a self-intersection hint (spec.md §4.5).
func quadStripInverts(positions []geom.Point3, baseA, baseB, count int, closed bool) bool {
	quads := count
	if !closed {
		quads = count - 1
	}
	for i := 0; i < quads; i++ {
		a0 := positions[baseA+i]
		b0 := positions[baseB+i]
		a1 := positions[baseA+(i+1)%count]
		b1 := positions[baseB+(i+1)%count]

		n1 := a1.SubPoint(a0).Cross(b0.SubPoint(a0))
		n2 := b1.SubPoint(a1).Cross(b0.SubPoint(a1))
		if n1.Dot(n2) < 0 {
			return true
		}
	}
	return false
}
