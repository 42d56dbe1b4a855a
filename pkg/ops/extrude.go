package ops

import (
	"github.com/chazu/ghx/pkg/geom"
	"github.com/chazu/ghx/pkg/kernel"
)

// ExtrudeOptions controls cap generation; caps only apply to closed
// profiles (spec.md §4.4).
type ExtrudeOptions struct {
	CapStart bool
	CapEnd   bool
}

// ExtrudeDiagnostics reports what Extrude did.
type ExtrudeDiagnostics struct {
	kernel.Diagnostics
	ProfileClosed bool
	CappedStart   bool
	CappedEnd     bool
}

// Extrude sweeps profile along extrudeVector, producing a side quad
// strip and, for closed profiles, optional end caps (spec.md §4.4).
func Extrude(profile []geom.Point3, extrudeVector geom.Vec3, opts ExtrudeOptions, tol geom.Tolerance) (*kernel.Mesh, ExtrudeDiagnostics, error) {
	var diag ExtrudeDiagnostics

	cleaned, closed := cleanPolyline(profile, tol)
	diag.ProfileClosed = closed
	if len(cleaned) < 2 {
		return nil, diag, newOpError(kernel.ErrorKindInputShape, "Extrude", "profile needs at least two distinct points")
	}
	if extrudeVector.LengthSquared() <= tol.EpsSquared() {
		return nil, diag, newOpError(kernel.ErrorKindInputShape, "Extrude", "extrusion vector must be non-zero")
	}

	n := len(cleaned)
	ratios := arcLengthRatios(cleaned, closed)

	raw := kernel.RawMesh{}
	raw.Positions = make([]geom.Point3, 0, n*2)
	raw.UVs = make([]kernel.UV, 0, n*2)

	baseRing := 0
	for i, p := range cleaned {
		raw.Positions = append(raw.Positions, p)
		raw.UVs = append(raw.UVs, kernel.UV{U: ratios[i], V: 0})
	}
	topRing := len(raw.Positions)
	for i, p := range cleaned {
		raw.Positions = append(raw.Positions, p.Add(extrudeVector))
		raw.UVs = append(raw.UVs, kernel.UV{U: ratios[i], V: 1})
	}

	raw.Indices = appendQuadStrip(nil, baseRing, topRing, n, closed)

	if closed {
		if opts.CapStart {
			capPositions, capIndices, normal, err := triangulateCapLoop(cleaned, tol)
			if err == nil {
				if normal.Dot(extrudeVector) > 0 {
					capIndices = reverseWinding(capIndices)
				}
				base := len(raw.Positions)
				raw.Positions = append(raw.Positions, capPositions...)
				raw.UVs = append(raw.UVs, capUVs(capPositions, cleaned[0], extrudeVector)...)
				raw.Indices = appendTriangles(raw.Indices, base, capIndices)
				diag.CappedStart = true
			}
		}
		if opts.CapEnd {
			topLoop := make([]geom.Point3, n)
			for i, p := range cleaned {
				topLoop[i] = p.Add(extrudeVector)
			}
			capPositions, capIndices, normal, err := triangulateCapLoop(topLoop, tol)
			if err == nil {
				if normal.Dot(extrudeVector) < 0 {
					capIndices = reverseWinding(capIndices)
				}
				base := len(raw.Positions)
				raw.Positions = append(raw.Positions, capPositions...)
				raw.UVs = append(raw.UVs, capUVs(capPositions, topLoop[0], extrudeVector)...)
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

func reverseWinding(indices []int) []int {
	out := make([]int, len(indices))
	for i := 0; i < len(indices); i += 3 {
		out[i] = indices[i]
		out[i+1] = indices[i+2]
		out[i+2] = indices[i+1]
	}
	return out
}

// capUVs projects cap points to the profile plane, normalized to
// [0,1] by the loop's own bounding box (spec.md §4.4).
func capUVs(points []geom.Point3, origin geom.Point3, normal geom.Vec3) []kernel.UV {
	x, y := planeBasis(normal)
	uv := make([]kernel.UV, len(points))
	minU, minV, maxU, maxV := 0.0, 0.0, 0.0, 0.0
	for i, p := range points {
		pr := projectToPlane(origin, x, y, p)
		uv[i] = kernel.UV{U: pr.U, V: pr.V}
		if i == 0 {
			minU, maxU, minV, maxV = pr.U, pr.U, pr.V, pr.V
		} else {
			if pr.U < minU {
				minU = pr.U
			}
			if pr.U > maxU {
				maxU = pr.U
			}
			if pr.V < minV {
				minV = pr.V
			}
			if pr.V > maxV {
				maxV = pr.V
			}
		}
	}
	spanU, spanV := maxU-minU, maxV-minV
	for i := range uv {
		if spanU > 0 {
			uv[i].U = (uv[i].U - minU) / spanU
		}
		if spanV > 0 {
			uv[i].V = (uv[i].V - minV) / spanV
		}
	}
	return uv
}
