package ops

import (
	"github.com/chazu/ghx/pkg/frame"
	"github.com/chazu/ghx/pkg/geom"
	"github.com/chazu/ghx/pkg/kernel"
)

// RailRevolveOptions controls capping and an optional reference axis
// that biases the initial frame's normal (spec.md §4.7).
type RailRevolveOptions struct {
	CapStart      bool
	CapEnd        bool
	ReferenceAxis geom.Vec3
	HasReference  bool
}

// RailRevolve sweeps a profile (local, centered at origin) along a rail
// using rotation-minimizing frames, biasing the first frame's normal
// toward the plane spanned by the initial tangent and ReferenceAxis
// when supplied (spec.md §4.7).
func RailRevolve(profile []geom.Point3, rail []geom.Point3, opts RailRevolveOptions, tol geom.Tolerance) (*kernel.Mesh, SweepDiagnostics, error) {
	var diag SweepDiagnostics

	profileClean, profileClosed := cleanPolyline(profile, tol)
	if len(profileClean) < 2 {
		return nil, diag, newOpError(kernel.ErrorKindInputShape, "RailRevolve", "profile needs at least two distinct points")
	}
	railClean, railClosed := cleanPolyline(rail, tol)
	if len(railClean) < 2 {
		return nil, diag, newOpError(kernel.ErrorKindInputShape, "RailRevolve", "rail needs at least two distinct points")
	}
	diag.RailClosed = railClosed

	transport := frame.TransportAlong(railClean, tol)
	if transport.NearCusp {
		return nil, diag, newOpError(kernel.ErrorKindGeometricImpossibility, "RailRevolve", "rail has a near-180 degree cusp")
	}
	diag.CuspLikeCount = transport.CuspLike

	if opts.HasReference && len(transport.Frames) > 0 {
		biased, ok := biasFrameToAxis(transport.Frames[0], opts.ReferenceAxis)
		if ok {
			transport.Frames[0] = biased
			for i := 1; i < len(transport.Frames); i++ {
				transport.Frames[i] = frame.Advance(transport.Frames[i-1], transport.Frames[i].Tangent, tol)
			}
		}
	}

	raw := kernel.RawMesh{}
	ringBases := make([]int, len(railClean))
	pRatios := arcLengthRatios(profileClean, profileClosed)
	cum, total := cumulativeArcLength(railClean, railClosed)

	for i, st := range railClean {
		f := transport.Frames[i]
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

// biasFrameToAxis rotates f about its tangent so that its normal lies
// in the plane spanned by the tangent and axis, as close as possible to
// axis's in-plane projection.
func biasFrameToAxis(f frame.Frame, axis geom.Vec3) (frame.Frame, bool) {
	projected := axis.Sub(f.Tangent.Scale(f.Tangent.Dot(axis)))
	target, ok := projected.Normalized()
	if !ok {
		return f, false
	}
	binormal := f.Tangent.Cross(target)
	return frame.Frame{Tangent: f.Tangent, Normal: target, Binormal: binormal}, true
}
