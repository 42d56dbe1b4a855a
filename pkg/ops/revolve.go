package ops

import (
	"math"

	"github.com/chazu/ghx/pkg/geom"
	"github.com/chazu/ghx/pkg/kernel"
)

// RevolveOptions controls fixed-axis revolve step count and capping
// (spec.md §4.7). Defaults (MinSteps 8, MaxSteps 128) are confirmed
// against the original implementation's RevolveOptions — see DESIGN.md.
type RevolveOptions struct {
	MinSteps  int
	MaxSteps  int
	CapStart  bool
	CapEnd    bool
	WeldSeam  bool
}

// DefaultRevolveOptions mirrors the original implementation's defaults.
func DefaultRevolveOptions() RevolveOptions {
	return RevolveOptions{MinSteps: 8, MaxSteps: 128}
}

// RevolveDiagnostics reports the adaptive step count chosen and cap
// findings.
type RevolveDiagnostics struct {
	kernel.Diagnostics
	Steps       int
	CappedStart bool
	CappedEnd   bool
	SeamWelded  bool
}

// Revolve sweeps a profile around a fixed axis by angle (0, 2*pi]
// (spec.md §4.7): adaptive step count from max-radius arc length,
// Rodrigues-formula rings, optional weld-seam wraparound at full turns,
// and caps for closed profiles.
func Revolve(profile []geom.Point3, axisOrigin geom.Point3, axisDir geom.Vec3, angle float64, opts RevolveOptions, tol geom.Tolerance) (*kernel.Mesh, RevolveDiagnostics, error) {
	var diag RevolveDiagnostics

	if !(angle > 0 && angle <= 2*math.Pi+1e-9) {
		return nil, diag, newOpError(kernel.ErrorKindInputShape, "Revolve", "angle must be in (0, 2*pi]")
	}
	dir, ok := axisDir.Normalized()
	if !ok {
		return nil, diag, newOpError(kernel.ErrorKindInputShape, "Revolve", "axis direction must be non-zero")
	}

	cleaned, closed := cleanPolyline(profile, tol)
	if len(cleaned) < 2 {
		return nil, diag, newOpError(kernel.ErrorKindInputShape, "Revolve", "profile needs at least two distinct points")
	}

	maxRadius := 0.0
	for _, p := range cleaned {
		d := distancePointToLine(p, axisOrigin, dir)
		if d <= tol.Eps() {
			return nil, diag, newOpError(kernel.ErrorKindGeometricImpossibility, "Revolve", "profile intersects the revolve axis")
		}
		if d > maxRadius {
			maxRadius = d
		}
	}

	minSteps, maxSteps := opts.MinSteps, opts.MaxSteps
	if minSteps <= 0 {
		minSteps = 8
	}
	if maxSteps < minSteps {
		maxSteps = minSteps
	}
	arcLen := maxRadius * angle
	targetChord := math.Sqrt(tol.Eps())
	if targetChord <= 0 {
		targetChord = math.Sqrt(geom.ToleranceDefault.Eps())
	}
	steps := int(math.Ceil(arcLen / targetChord))
	if steps < minSteps {
		steps = minSteps
	}
	if steps > maxSteps {
		steps = maxSteps
	}
	diag.Steps = steps

	fullTurn := opts.WeldSeam && angle >= 2*math.Pi-1e-9
	ringCount := steps + 1
	if fullTurn {
		ringCount = steps
	}
	diag.SeamWelded = fullTurn

	n := len(cleaned)
	raw := kernel.RawMesh{}
	ringBases := make([]int, ringCount)
	ratios := arcLengthRatios(cleaned, closed)

	for ring := 0; ring < ringCount; ring++ {
		stepAngle := angle * float64(ring) / float64(steps)
		ringBases[ring] = len(raw.Positions)
		for j, p := range cleaned {
			pos := rotatePointAboutAxis(p, axisOrigin, dir, stepAngle)
			raw.Positions = append(raw.Positions, pos)
			raw.UVs = append(raw.UVs, kernel.UV{U: ratios[j], V: float64(ring) / float64(steps)})
		}
	}

	for i := 1; i < ringCount; i++ {
		raw.Indices = appendQuadStrip(raw.Indices, ringBases[i-1], ringBases[i], n, closed)
	}
	if fullTurn {
		raw.Indices = appendQuadStrip(raw.Indices, ringBases[ringCount-1], ringBases[0], n, closed)
	}

	if closed {
		if opts.CapStart {
			capPositions, capIndices, normal, err := triangulateCapLoop(cleaned, tol)
			if err == nil {
				if normal.Dot(dir) > 0 {
					capIndices = reverseWinding(capIndices)
				}
				base := len(raw.Positions)
				raw.Positions = append(raw.Positions, capPositions...)
				raw.UVs = append(raw.UVs, capUVs(capPositions, cleaned[0], normal)...)
				raw.Indices = appendTriangles(raw.Indices, base, capIndices)
				diag.CappedStart = true
			}
		}
		if opts.CapEnd && !fullTurn {
			endLoop := make([]geom.Point3, n)
			for j, p := range cleaned {
				endLoop[j] = rotatePointAboutAxis(p, axisOrigin, dir, angle)
			}
			capPositions, capIndices, normal, err := triangulateCapLoop(endLoop, tol)
			if err == nil {
				if normal.Dot(dir) < 0 {
					capIndices = reverseWinding(capIndices)
				}
				base := len(raw.Positions)
				raw.Positions = append(raw.Positions, capPositions...)
				raw.UVs = append(raw.UVs, capUVs(capPositions, endLoop[0], normal)...)
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
