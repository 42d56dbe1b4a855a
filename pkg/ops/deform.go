package ops

import (
	"math"

	"github.com/chazu/ghx/pkg/geom"
	"github.com/chazu/ghx/pkg/kernel"
)

// DeformDiagnostics shares the displacement-statistics shape with
// Offset (spec.md §4.11).
type DeformDiagnostics struct {
	kernel.Diagnostics
	Displacement DisplacementStats
}

// Deformer maps a vertex position to a new position; TwistDeformer builds the one
// concrete deformer built here, documented as a plug-point for bend,
// taper, and other spatial warps sharing this diagnostics shape
// (spec.md §4.11).
type Deformer func(p geom.Point3) geom.Point3

// Deform applies deformer to every vertex of mesh and re-finalizes,
// reporting per-vertex displacement magnitude statistics.
func Deform(mesh *kernel.Mesh, deformer Deformer, tol geom.Tolerance) (*kernel.Mesh, DeformDiagnostics, error) {
	var diag DeformDiagnostics
	if mesh == nil || mesh.IsEmpty() {
		return nil, diag, newOpError(kernel.ErrorKindInputShape, "Deform", "input mesh has no geometry")
	}

	raw := kernel.RawMesh{
		Positions: make([]geom.Point3, len(mesh.Positions)),
		Indices:   append([]int(nil), mesh.Indices...),
	}
	if len(mesh.UVs) == len(mesh.Positions) {
		raw.UVs = append([]kernel.UV(nil), mesh.UVs...)
	}
	magnitudes := make([]float64, len(mesh.Positions))
	for i, p := range mesh.Positions {
		deformed := deformer(p)
		raw.Positions[i] = deformed
		magnitudes[i] = deformed.SubPoint(p).Length()
	}
	diag.Displacement = displacementStats(magnitudes)

	out, meshDiag, err := kernel.Finalize(raw, tol)
	diag.Diagnostics = meshDiag
	if err != nil {
		return nil, diag, err
	}
	return out, diag, nil
}

// TwistDeformer builds a Deformer that rotates each vertex about the Z
// axis by an angle that ramps linearly with height: totalRadians at
// zMax, zero at zMin (spec.md §4.11).
func TwistDeformer(totalRadians, zMin, zMax float64) Deformer {
	span := zMax - zMin
	return func(p geom.Point3) geom.Point3 {
		ratio := 0.0
		if span != 0 {
			ratio = (p.Z - zMin) / span
		}
		angle := totalRadians * ratio
		cosA, sinA := math.Cos(angle), math.Sin(angle)
		return geom.Point3{
			X: p.X*cosA - p.Y*sinA,
			Y: p.X*sinA + p.Y*cosA,
			Z: p.Z,
		}
	}
}

// TwistBox computes zMin/zMax from the mesh itself and returns a
// TwistDeformer convenience wrapper for the common "twist the whole
// mesh about Z" case (spec.md §4.11 scenario 7).
func TwistBox(mesh *kernel.Mesh, totalRadians float64) Deformer {
	if mesh == nil || len(mesh.Positions) == 0 {
		return TwistDeformer(totalRadians, 0, 1)
	}
	zMin, zMax := mesh.Positions[0].Z, mesh.Positions[0].Z
	for _, p := range mesh.Positions[1:] {
		if p.Z < zMin {
			zMin = p.Z
		}
		if p.Z > zMax {
			zMax = p.Z
		}
	}
	return TwistDeformer(totalRadians, zMin, zMax)
}
