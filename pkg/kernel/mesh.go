package kernel

import "github.com/chazu/ghx/pkg/geom"

// UV is a surface parameter-space coordinate carried alongside a mesh
// vertex, kept separate from geom.Vec3/Point3 since it has no 3D
// meaning of its own.
type UV struct {
	U, V float64
}

// Mesh is the canonical triangle mesh every operator produces: parallel
// float64 arrays keyed by vertex index, plus a flat triangle index
// buffer. UVs, Normals, and Tangents are optional — when present, each
// has the same length as Positions (spec.md §3).
type Mesh struct {
	Positions []geom.Point3
	Indices   []int
	UVs       []UV
	Normals   []geom.Vec3
	Tangents  []geom.Vec3
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Positions) }

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// IsEmpty reports whether the mesh has no geometry.
func (m *Mesh) IsEmpty() bool { return len(m.Positions) == 0 }

// Triangle returns the three vertex indices of triangle i.
func (m *Mesh) Triangle(i int) (int, int, int) {
	return m.Indices[3*i], m.Indices[3*i+1], m.Indices[3*i+2]
}

// Validate checks the hard mesh invariants: indices in range, and
// parallel arrays (when present) matching Positions in length. A
// validation failure after Finalize indicates a kernel bug, not bad
// input (spec.md §7).
func (m *Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return newError(ErrorKindInternal, "Mesh.Validate", "index buffer length is not a multiple of three")
	}
	n := len(m.Positions)
	for _, idx := range m.Indices {
		if idx < 0 || idx >= n {
			return newError(ErrorKindInternal, "Mesh.Validate", "triangle index out of range")
		}
	}
	if len(m.UVs) != 0 && len(m.UVs) != n {
		return newError(ErrorKindInternal, "Mesh.Validate", "uv array length does not match positions")
	}
	if len(m.Normals) != 0 && len(m.Normals) != n {
		return newError(ErrorKindInternal, "Mesh.Validate", "normal array length does not match positions")
	}
	if len(m.Tangents) != 0 && len(m.Tangents) != n {
		return newError(ErrorKindInternal, "Mesh.Validate", "tangent array length does not match positions")
	}
	for _, p := range m.Positions {
		if !p.IsFinite() {
			return newError(ErrorKindInternal, "Mesh.Validate", "non-finite vertex position")
		}
	}
	return nil
}

// RawMesh is the un-welded, trivially-indexed output an operator hands
// to Finalize: one position per emitted vertex (duplicates expected at
// seams), an index buffer already partitioning Positions into
// triangles, and optional UVs with the same length as Positions.
type RawMesh struct {
	Positions []geom.Point3
	Indices   []int
	UVs       []UV
}

// LegacySurface is the pre-kernel render mesh: flat float32 arrays
// (positions/normals/indices), kept for the "surface" Value variant's
// backward-compatible position-array + face-array output (spec.md §6).
// New code should prefer Mesh; LegacySurface exists only at the
// evaluator boundary.
type LegacySurface struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
}

// VertexCount returns the number of vertices.
func (m *LegacySurface) VertexCount() int { return len(m.Vertices) / 3 }

// TriangleCount returns the number of triangles.
func (m *LegacySurface) TriangleCount() int { return len(m.Indices) / 3 }

// IsEmpty reports whether the legacy surface has no geometry.
func (m *LegacySurface) IsEmpty() bool { return len(m.Vertices) == 0 }

// ToLegacySurface converts a canonical Mesh to the flat float32
// representation used at the evaluator boundary.
func (m *Mesh) ToLegacySurface(partName string) LegacySurface {
	out := LegacySurface{
		Vertices: make([]float32, 0, len(m.Positions)*3),
		Indices:  make([]uint32, 0, len(m.Indices)),
		PartName: partName,
	}
	for _, p := range m.Positions {
		out.Vertices = append(out.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
	}
	if len(m.Normals) == len(m.Positions) {
		out.Normals = make([]float32, 0, len(m.Normals)*3)
		for _, n := range m.Normals {
			out.Normals = append(out.Normals, float32(n.X), float32(n.Y), float32(n.Z))
		}
	}
	for _, idx := range m.Indices {
		out.Indices = append(out.Indices, uint32(idx))
	}
	return out
}
