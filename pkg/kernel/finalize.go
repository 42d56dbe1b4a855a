package kernel

import (
	"math"

	"github.com/chazu/ghx/pkg/geom"
)

// Finalize is the single routine every operator routes its raw
// triangle soup through (spec.md §4.3): spatial-hash weld at tol, drop
// of degenerate triangles, a connected-component winding pass that
// flood-fills a consistent orientation per component and then flips
// the whole component if its signed volume comes out negative,
// angle-weighted smooth normals, open/non-manifold edge counting, and
// a final hard-error Validate.
func Finalize(raw RawMesh, tol geom.Tolerance) (*Mesh, Diagnostics, error) {
	diag := Diagnostics{InputVertexCount: len(raw.Positions)}

	if len(raw.Positions) == 0 || len(raw.Indices) == 0 {
		return nil, diag, newError(ErrorKindInputShape, "Finalize", "raw mesh has no geometry")
	}
	if len(raw.Indices)%3 != 0 {
		return nil, diag, newError(ErrorKindInputShape, "Finalize", "raw index buffer length is not a multiple of three")
	}
	for _, p := range raw.Positions {
		if !p.IsFinite() {
			return nil, diag, newError(ErrorKindInputShape, "Finalize", "raw mesh contains a non-finite vertex position")
		}
	}

	positions, indices := weldVertices(raw, tol)
	diag.WeldedVertexCount = len(positions)

	var uvs []UV
	if len(raw.UVs) == len(raw.Positions) {
		uvs = remapUVs(raw, indices, len(positions))
	}

	indices, dropped := dropDegenerateTriangles(positions, indices, tol)
	diag.DegenerateTrianglesDropped = dropped

	if len(indices) == 0 {
		return nil, diag, newError(ErrorKindTopology, "Finalize", "no non-degenerate triangles survived welding")
	}

	indices, flipped, components := fixWinding(positions, indices)
	diag.FlippedForWinding = flipped
	diag.ComponentCount = components

	normals := smoothNormals(positions, indices)

	openEdges, nonManifoldEdges := countEdgeUses(indices)
	diag.OpenEdgeCount = openEdges
	diag.NonManifoldEdgeCount = nonManifoldEdges

	mesh := &Mesh{
		Positions: positions,
		Indices:   indices,
		UVs:       uvs,
		Normals:   normals,
	}
	if err := mesh.Validate(); err != nil {
		return nil, diag, err
	}
	return mesh, diag, nil
}

// weldVertices merges raw positions within tol of each other, using a
// Quantizer-keyed hash over the center cell and its 26 neighbors so
// points straddling a cell boundary still collide. The first occurrence
// of each welded cluster is kept as its representative position.
func weldVertices(raw RawMesh, tol geom.Tolerance) ([]geom.Point3, []int) {
	q := geom.NewQuantizer(tol)
	cellToVertex := make(map[[3]int64]int)
	positions := make([]geom.Point3, 0, len(raw.Positions))
	remap := make([]int, len(raw.Positions))

	for i, p := range raw.Positions {
		found := -1
		for _, key := range q.NeighborKeys(p) {
			if vi, ok := cellToVertex[key]; ok && tol.ApproxEqualPoint3(positions[vi], p) {
				found = vi
				break
			}
		}
		if found < 0 {
			found = len(positions)
			positions = append(positions, p)
			cellToVertex[q.Key(p)] = found
		}
		remap[i] = found
	}

	indices := make([]int, len(raw.Indices))
	for i, idx := range raw.Indices {
		indices[i] = remap[idx]
	}
	return positions, indices
}

// remapUVs carries raw.UVs through the same vertex welding remap that
// weldVertices produced for positions, keeping the first occurrence's
// UV for each welded cluster.
func remapUVs(raw RawMesh, indices []int, weldedCount int) []UV {
	uvs := make([]UV, weldedCount)
	seen := make([]bool, weldedCount)
	for i, rawIdx := range raw.Indices {
		wi := indices[i]
		if !seen[wi] {
			uvs[wi] = raw.UVs[rawIdx]
			seen[wi] = true
		}
	}
	return uvs
}

// dropDegenerateTriangles removes triangles with a repeated vertex or
// whose doubled area (the edge cross product's length) is at most tol's
// epsilon.
func dropDegenerateTriangles(positions []geom.Point3, indices []int, tol geom.Tolerance) ([]int, int) {
	out := make([]int, 0, len(indices))
	dropped := 0
	for i := 0; i < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if a == b || b == c || c == a {
			dropped++
			continue
		}
		cross := positions[b].SubPoint(positions[a]).Cross(positions[c].SubPoint(positions[a]))
		if cross.LengthSquared() <= tol.EpsSquared() {
			dropped++
			continue
		}
		out = append(out, a, b, c)
	}
	return out, dropped
}

// fixWinding flood-fills connected components over shared-edge
// adjacency, flipping any triangle found with a winding inconsistent
// with its already-visited neighbor, then flips the whole component if
// its signed volume comes out negative.
func fixWinding(positions []geom.Point3, indices []int) ([]int, int, int) {
	triCount := len(indices) / 3
	triOf := make([][3]int, triCount)
	for i := 0; i < triCount; i++ {
		triOf[i] = [3]int{indices[3*i], indices[3*i+1], indices[3*i+2]}
	}

	type edgeUse struct {
		tri  int
		dir  bool // true if edge runs a->b in this triangle's winding
	}
	edgeUses := make(map[[2]int][]edgeUse)
	addEdge := func(tri, a, b int) {
		key, dir := canonicalKey(a, b)
		edgeUses[key] = append(edgeUses[key], edgeUse{tri: tri, dir: dir})
	}
	for i, t := range triOf {
		addEdge(i, t[0], t[1])
		addEdge(i, t[1], t[2])
		addEdge(i, t[2], t[0])
	}

	adjacency := make([][]int, triCount)
	for _, uses := range edgeUses {
		for i := range uses {
			for j := range uses {
				if i != j {
					adjacency[uses[i].tri] = append(adjacency[uses[i].tri], uses[j].tri)
				}
			}
		}
	}

	flipTriangle := func(t [3]int) [3]int { return [3]int{t[0], t[2], t[1]} }

	visited := make([]bool, triCount)
	components := 0
	flipped := 0

	for start := 0; start < triCount; start++ {
		if visited[start] {
			continue
		}
		components++
		component := []int{start}
		visited[start] = true
		queue := []int{start}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, nb := range adjacency[cur] {
				if visited[nb] {
					continue
				}
				if inconsistentWinding(triOf[cur], triOf[nb]) {
					triOf[nb] = flipTriangle(triOf[nb])
					flipped++
				}
				visited[nb] = true
				component = append(component, nb)
				queue = append(queue, nb)
			}
		}

		if signedVolume(positions, triOf, component) < 0 {
			for _, ti := range component {
				triOf[ti] = flipTriangle(triOf[ti])
			}
			flipped += len(component)
		}
	}

	out := make([]int, 0, len(indices))
	for _, t := range triOf {
		out = append(out, t[0], t[1], t[2])
	}
	return out, flipped, components
}

// canonicalKey returns the unordered edge key for (a,b) and whether
// (a,b) is already in canonical (min,max) order.
func canonicalKey(a, b int) ([2]int, bool) {
	if a <= b {
		return [2]int{a, b}, true
	}
	return [2]int{b, a}, false
}

// inconsistentWinding reports whether triangles t1 and t2 traverse
// their shared edge in the same direction, which is only valid for a
// non-manifold surface — for a proper manifold, adjacent triangles
// must traverse a shared edge in opposite directions.
func inconsistentWinding(t1, t2 [3]int) bool {
	edges1 := [][2]int{{t1[0], t1[1]}, {t1[1], t1[2]}, {t1[2], t1[0]}}
	edges2 := [][2]int{{t2[0], t2[1]}, {t2[1], t2[2]}, {t2[2], t2[0]}}
	for _, e1 := range edges1 {
		for _, e2 := range edges2 {
			if e1[0] == e2[1] && e1[1] == e2[0] {
				return false // opposite direction: consistent
			}
			if e1[0] == e2[0] && e1[1] == e2[1] {
				return true // same direction on a shared edge: inconsistent
			}
		}
	}
	return false
}

// signedVolume computes 6x the signed volume enclosed by the given
// triangles (tetrahedron-to-origin decomposition); its sign tells
// whether the component's winding points outward.
func signedVolume(positions []geom.Point3, triOf [][3]int, component []int) float64 {
	sum := 0.0
	for _, ti := range component {
		t := triOf[ti]
		a, b, c := positions[t[0]], positions[t[1]], positions[t[2]]
		sum += a.Vec3().Dot(b.Vec3().Cross(c.Vec3()))
	}
	return sum
}

// smoothNormals computes angle-weighted vertex normals: each
// triangle's face normal contributes to its three vertices scaled by
// the triangle's interior angle at that vertex.
func smoothNormals(positions []geom.Point3, indices []int) []geom.Vec3 {
	accum := make([]geom.Vec3, len(positions))
	for i := 0; i < len(indices); i += 3 {
		ia, ib, ic := indices[i], indices[i+1], indices[i+2]
		a, b, c := positions[ia], positions[ib], positions[ic]
		normal, ok := b.SubPoint(a).Cross(c.SubPoint(a)).Normalized()
		if !ok {
			continue
		}
		accum[ia] = accum[ia].Add(normal.Scale(triangleAngle(a, b, c)))
		accum[ib] = accum[ib].Add(normal.Scale(triangleAngle(b, c, a)))
		accum[ic] = accum[ic].Add(normal.Scale(triangleAngle(c, a, b)))
	}
	out := make([]geom.Vec3, len(positions))
	for i, v := range accum {
		if u, ok := v.Normalized(); ok {
			out[i] = u
		} else {
			out[i] = geom.UnitZ
		}
	}
	return out
}

func triangleAngle(at, b, c geom.Point3) float64 {
	u := b.SubPoint(at)
	v := c.SubPoint(at)
	lu, lv := u.Length(), v.Length()
	if lu == 0 || lv == 0 {
		return 0
	}
	cosT := u.Dot(v) / (lu * lv)
	cosT = math.Max(-1, math.Min(1, cosT))
	return math.Acos(cosT)
}

// countEdgeUses classifies edges by how many triangles use them: an
// open edge is used once, a non-manifold edge three or more times.
func countEdgeUses(indices []int) (open, nonManifold int) {
	counts := make(map[[2]int]int)
	for i := 0; i < len(indices); i += 3 {
		t := [3]int{indices[i], indices[i+1], indices[i+2]}
		for _, e := range [][2]int{{t[0], t[1]}, {t[1], t[2]}, {t[2], t[0]}} {
			key, _ := canonicalKey(e[0], e[1])
			counts[key]++
		}
	}
	for _, n := range counts {
		switch {
		case n == 1:
			open++
		case n >= 3:
			nonManifold++
		}
	}
	return open, nonManifold
}
