package ops

import (
	"github.com/chazu/ghx/pkg/frame"
	"github.com/chazu/ghx/pkg/geom"
	"github.com/chazu/ghx/pkg/kernel"
)

// Sweep1Options controls capping and twist for a single-rail sweep
// (spec.md §4.6).
type Sweep1Options struct {
	CapStart          bool
	CapEnd            bool
	TwistTotalRadians float64
}

// SweepDiagnostics reports rail-frame and cusp findings shared by
// sweep1, sweep2, pipe, and rail-revolve.
type SweepDiagnostics struct {
	kernel.Diagnostics
	RailClosed            bool
	CuspLikeCount         int
	CappedStart           bool
	CappedEnd             bool
	LocallyParallelRails  bool
}

// Sweep1 sweeps a profile (local frame: Z along tangent, X along
// normal, Y along binormal) along a rail polyline using
// rotation-minimizing frames (spec.md §4.6).
func Sweep1(profile []geom.Point3, rail []geom.Point3, opts Sweep1Options, tol geom.Tolerance) (*kernel.Mesh, SweepDiagnostics, error) {
	var diag SweepDiagnostics

	profileClean, profileClosed := cleanPolyline(profile, tol)
	if len(profileClean) < 2 {
		return nil, diag, newOpError(kernel.ErrorKindInputShape, "Sweep1", "profile needs at least two distinct points")
	}
	railClean, railClosed := cleanPolyline(rail, tol)
	if len(railClean) < 2 {
		return nil, diag, newOpError(kernel.ErrorKindInputShape, "Sweep1", "rail needs at least two distinct points")
	}
	diag.RailClosed = railClosed

	transport := frame.TransportAlong(railClean, tol)
	if transport.NearCusp {
		return nil, diag, newOpError(kernel.ErrorKindGeometricImpossibility, "Sweep1", "rail has a near-180 degree cusp")
	}
	diag.CuspLikeCount = transport.CuspLike

	raw := kernel.RawMesh{}
	ringBases := make([]int, len(railClean))
	totalArc, _ := cumulativeArcLength(railClean, railClosed)
	total := totalArc[len(totalArc)-1]

	pRatios := arcLengthRatios(profileClean, profileClosed)
	for i, st := range railClean {
		f := transport.Frames[i]
		if opts.TwistTotalRadians != 0 && total > 0 {
			angle := opts.TwistTotalRadians * totalArc[i] / total
			f.Normal = rotateVectorAboutAxis(f.Normal, f.Tangent, angle)
			f.Binormal = f.Tangent.Cross(f.Normal)
		}
		ringBases[i] = len(raw.Positions)
		for j, p := range profileClean {
			pos := st.
				Add(f.Normal.Scale(p.X)).
				Add(f.Binormal.Scale(p.Y)).
				Add(f.Tangent.Scale(p.Z))
			raw.Positions = append(raw.Positions, pos)
			raw.UVs = append(raw.UVs, kernel.UV{U: pRatios[j], V: totalRatio(totalArc, i, total)})
		}
	}

	n := len(profileClean)
	for i := 1; i < len(railClean); i++ {
		raw.Indices = appendQuadStrip(raw.Indices, ringBases[i-1], ringBases[i], n, profileClosed)
	}
	if railClosed {
		raw.Indices = appendQuadStrip(raw.Indices, ringBases[len(railClean)-1], ringBases[0], n, profileClosed)
	}

	if profileClosed && !railClosed {
		if opts.CapStart {
			diag.CappedStart = appendSweepCap(&raw, profileClean, railClean[0], transport.Frames[0], true, tol)
		}
		if opts.CapEnd {
			last := len(railClean) - 1
			diag.CappedEnd = appendSweepCap(&raw, profileClean, railClean[last], transport.Frames[last], false, tol)
		}
	}

	mesh, meshDiag, err := kernel.Finalize(raw, tol)
	diag.Diagnostics = meshDiag
	if err != nil {
		return nil, diag, err
	}
	return mesh, diag, nil
}

func totalRatio(cum []float64, i int, total float64) float64 {
	if total == 0 {
		return 0
	}
	return cum[i] / total
}

// appendSweepCap projects a local-frame profile to a station frame and
// triangulates it as a cap, reversing winding at the start (spec.md §4.6).
func appendSweepCap(raw *kernel.RawMesh, profile []geom.Point3, station geom.Point3, f frame.Frame, isStart bool, tol geom.Tolerance) bool {
	loop := make([]geom.Point3, len(profile))
	for i, p := range profile {
		loop[i] = station.
			Add(f.Normal.Scale(p.X)).
			Add(f.Binormal.Scale(p.Y)).
			Add(f.Tangent.Scale(p.Z))
	}
	capPositions, capIndices, normal, err := triangulateCapLoop(loop, tol)
	if err != nil {
		return false
	}
	outward := f.Tangent
	if isStart {
		outward = f.Tangent.Neg()
	}
	if normal.Dot(outward) < 0 {
		capIndices = reverseWinding(capIndices)
	}
	base := len(raw.Positions)
	raw.Positions = append(raw.Positions, capPositions...)
	raw.UVs = append(raw.UVs, capUVs(capPositions, loop[0], normal)...)
	raw.Indices = appendTriangles(raw.Indices, base, capIndices)
	return true
}

// Sweep2Options controls capping for a two-rail sweep (spec.md §4.6).
type Sweep2Options struct {
	CapStart bool
	CapEnd   bool
}

// Sweep2 sweeps a profile along two rails of equal length: the tangent
// comes from rail A, the normal from the A->B direction orthogonalized
// against the tangent (spec.md §4.6).
func Sweep2(profile []geom.Point3, railA, railB []geom.Point3, opts Sweep2Options, tol geom.Tolerance) (*kernel.Mesh, SweepDiagnostics, error) {
	var diag SweepDiagnostics

	profileClean, profileClosed := cleanPolyline(profile, tol)
	if len(profileClean) < 2 {
		return nil, diag, newOpError(kernel.ErrorKindInputShape, "Sweep2", "profile needs at least two distinct points")
	}
	if len(railA) != len(railB) {
		return nil, diag, newOpError(kernel.ErrorKindInputShape, "Sweep2", "the two rails must have the same point count")
	}
	if len(railA) < 2 {
		return nil, diag, newOpError(kernel.ErrorKindInputShape, "Sweep2", "rails need at least two points")
	}

	frames := make([]frame.Frame, len(railA))
	warned := false
	for i := range railA {
		var tangent geom.Vec3
		switch {
		case i < len(railA)-1:
			tangent = railA[i+1].SubPoint(railA[i])
		default:
			tangent = railA[i].SubPoint(railA[i-1])
		}
		t, ok := tangent.Normalized()
		if !ok {
			return nil, diag, newOpError(kernel.ErrorKindGeometricImpossibility, "Sweep2", "rail A tangent is degenerate")
		}
		toB := railB[i].SubPoint(railA[i])
		perp := toB.Sub(t.Scale(t.Dot(toB)))
		normal, ok := perp.Normalized()
		if !ok {
			warned = true
			fallback, _ := frame.FromTangent(t)
			normal = fallback.Normal
		}
		binormal := t.Cross(normal)
		frames[i] = frame.Frame{Tangent: t, Normal: normal, Binormal: binormal}
	}

	raw := kernel.RawMesh{}
	pRatios := arcLengthRatios(profileClean, profileClosed)
	ringBases := make([]int, len(railA))
	cum, total := cumulativeArcLength(railA, false)
	for i, st := range railA {
		f := frames[i]
		ringBases[i] = len(raw.Positions)
		for j, p := range profileClean {
			pos := st.
				Add(f.Normal.Scale(p.X)).
				Add(f.Binormal.Scale(p.Y)).
				Add(f.Tangent.Scale(p.Z))
			raw.Positions = append(raw.Positions, pos)
			raw.UVs = append(raw.UVs, kernel.UV{U: pRatios[j], V: totalRatio(cum, i, total)})
		}
	}

	n := len(profileClean)
	for i := 1; i < len(railA); i++ {
		raw.Indices = appendQuadStrip(raw.Indices, ringBases[i-1], ringBases[i], n, profileClosed)
	}

	if profileClosed {
		if opts.CapStart {
			diag.CappedStart = appendSweepCap(&raw, profileClean, railA[0], frames[0], true, tol)
		}
		if opts.CapEnd {
			last := len(railA) - 1
			diag.CappedEnd = appendSweepCap(&raw, profileClean, railA[last], frames[last], false, tol)
		}
	}

	diag.LocallyParallelRails = warned
	mesh, meshDiag, err := kernel.Finalize(raw, tol)
	diag.Diagnostics = meshDiag
	if err != nil {
		return nil, diag, err
	}
	return mesh, diag, nil
}
