package ops

import (
	"gonum.org/v1/gonum/stat"

	"github.com/chazu/ghx/pkg/geom"
	"github.com/chazu/ghx/pkg/kernel"
)

// DisplacementStats summarizes per-vertex displacement, shared by
// offset and deform (spec.md §4.10/§4.11).
type DisplacementStats struct {
	Min  float64
	Max  float64
	Mean float64
}

func displacementStats(values []float64) DisplacementStats {
	if len(values) == 0 {
		return DisplacementStats{}
	}
	minV, maxV := values[0], values[0]
	for _, v := range values[1:] {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	return DisplacementStats{Min: minV, Max: maxV, Mean: stat.Mean(values, nil)}
}

// OffsetDiagnostics reports displacement statistics and a
// self-intersection heuristic (spec.md §4.10).
type OffsetDiagnostics struct {
	kernel.Diagnostics
	OriginalTriangleCount     int
	Displacement              DisplacementStats
	OpenEdgesBefore           int
	OpenEdgesAfter            int
	PotentialSelfIntersection bool
}

// Offset displaces every vertex along its smooth normal by a signed
// distance (spec.md §4.10): positive distance shells outward along the
// input mesh's own normals.
func Offset(mesh *kernel.Mesh, distance float64, tol geom.Tolerance) (*kernel.Mesh, OffsetDiagnostics, error) {
	var diag OffsetDiagnostics
	if mesh == nil || mesh.IsEmpty() {
		return nil, diag, newOpError(kernel.ErrorKindInputShape, "Offset", "input mesh has no geometry")
	}
	if len(mesh.Normals) != len(mesh.Positions) {
		return nil, diag, newOpError(kernel.ErrorKindInputShape, "Offset", "input mesh has no normals to offset along")
	}

	diag.OriginalTriangleCount = mesh.TriangleCount()
	openBefore, _ := countOpenEdges(mesh)
	diag.OpenEdgesBefore = openBefore

	displacements := make([]float64, len(mesh.Positions))
	raw := kernel.RawMesh{
		Positions: make([]geom.Point3, len(mesh.Positions)),
		Indices:   append([]int(nil), mesh.Indices...),
	}
	if len(mesh.UVs) == len(mesh.Positions) {
		raw.UVs = append([]kernel.UV(nil), mesh.UVs...)
	}
	for i, p := range mesh.Positions {
		displacements[i] = distance
		raw.Positions[i] = p.Add(mesh.Normals[i].Scale(distance))
	}
	diag.Displacement = displacementStats(displacements)

	diag.PotentialSelfIntersection = detectSelfIntersectionHeuristic(raw.Positions, raw.Indices)

	out, meshDiag, err := kernel.Finalize(raw, tol)
	diag.Diagnostics = meshDiag
	if err != nil {
		return nil, diag, err
	}
	openAfter, _ := countOpenEdges(out)
	diag.OpenEdgesAfter = openAfter
	return out, diag, nil
}

func countOpenEdges(m *kernel.Mesh) (open, nonManifold int) {
	counts := map[[2]int]int{}
	for i := 0; i < m.TriangleCount(); i++ {
		a, b, c := m.Triangle(i)
		for _, e := range [][2]int{{a, b}, {b, c}, {c, a}} {
			key := e
			if key[0] > key[1] {
				key[0], key[1] = key[1], key[0]
			}
			counts[key]++
		}
	}
	for _, n := range counts {
		if n == 1 {
			open++
		} else if n > 2 {
			nonManifold++
		}
	}
	return
}

// detectSelfIntersectionHeuristic fires when two triangles that do not
// share a vertex have overlapping bounding boxes — a cheap,
// conservative proxy for "the displaced shell folded over itself"
// (spec.md §4.10).
func detectSelfIntersectionHeuristic(positions []geom.Point3, indices []int) bool {
	triCount := len(indices) / 3
	if triCount < 2 {
		return false
	}
	type box struct {
		lo, hi geom.Point3
		verts  [3]int
	}
	boxes := make([]box, triCount)
	for i := 0; i < triCount; i++ {
		a, b, c := indices[3*i], indices[3*i+1], indices[3*i+2]
		lo := positions[a].Vec3().Min(positions[b].Vec3()).Min(positions[c].Vec3())
		hi := positions[a].Vec3().Max(positions[b].Vec3()).Max(positions[c].Vec3())
		boxes[i] = box{lo: geom.PointFromVec3(lo), hi: geom.PointFromVec3(hi), verts: [3]int{a, b, c}}
	}
	shares := func(i, j int) bool {
		for _, vi := range boxes[i].verts {
			for _, vj := range boxes[j].verts {
				if vi == vj {
					return true
				}
			}
		}
		return false
	}
	for i := 0; i < triCount; i++ {
		for j := i + 1; j < triCount; j++ {
			if shares(i, j) {
				continue
			}
			bi := geom.BBox{Min: boxes[i].lo, Max: boxes[i].hi}
			bj := geom.BBox{Min: boxes[j].lo, Max: boxes[j].hi}
			if bi.Intersects(bj) {
				return true
			}
		}
	}
	return false
}
