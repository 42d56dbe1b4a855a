package kernel

// Diagnostics reports what Finalize did to a raw mesh: how many
// vertices it welded, how many degenerate triangles it dropped, and
// what it found when checking the result's manifoldness. Every
// operator returns one of these alongside its Mesh so a caller can
// tell "succeeded, but welded 40 vertices and left 2 open edges" from
// "succeeded cleanly" (spec.md §4.3/§7).
type Diagnostics struct {
	// InputVertexCount is len(RawMesh.Positions) before welding.
	InputVertexCount int
	// WeldedVertexCount is the vertex count after welding.
	WeldedVertexCount int
	// DegenerateTrianglesDropped counts triangles removed for having
	// zero area or a repeated vertex after welding.
	DegenerateTrianglesDropped int
	// FlippedForWinding counts triangles whose winding was reversed by
	// the connected-component dominant-orientation pass.
	FlippedForWinding int
	// OpenEdgeCount is the number of edges used by exactly one
	// triangle after welding.
	OpenEdgeCount int
	// NonManifoldEdgeCount is the number of edges used by three or
	// more triangles.
	NonManifoldEdgeCount int
	// ComponentCount is the number of connected triangle components
	// found during the winding pass.
	ComponentCount int
}

// IsManifoldClosed reports whether the mesh has no open or
// non-manifold edges.
func (d Diagnostics) IsManifoldClosed() bool {
	return d.OpenEdgeCount == 0 && d.NonManifoldEdgeCount == 0
}
