// Package frame implements the rotation-minimizing (Frenet-like) frame
// used to orient rings along a rail: sweep1, pipe, and rail-revolve all
// build their cross-sections from a Frame sequence produced here instead
// of recomputing an osculating plane at every step.
package frame

import (
	"math"

	"github.com/chazu/ghx/pkg/geom"
)

// CuspDotThreshold is the tangent-dot value below which a rail turn is
// considered cusp-like (~75°); confirmed against pipe.rs/sweep.rs in the
// original implementation.
const CuspDotThreshold = 0.25

// Frame is an orthonormal triple (tangent, normal, binormal) satisfying
// normal × binormal = tangent.
type Frame struct {
	Tangent, Normal, Binormal geom.Vec3
}

// FromTangent builds a frame from a tangent direction alone, choosing a
// reference axis not nearly parallel to it. Returns false if tangent is
// degenerate.
func FromTangent(tangent geom.Vec3) (Frame, bool) {
	t, ok := tangent.Normalized()
	if !ok {
		return Frame{}, false
	}
	reference := geom.UnitZ
	if math.Abs(t.Dot(reference)) > 0.9 {
		reference = geom.UnitX
	}
	normal, ok := reference.Sub(t.Scale(t.Dot(reference))).Normalized()
	if !ok {
		return Frame{}, false
	}
	binormal := t.Cross(normal)
	return Frame{Tangent: t, Normal: normal, Binormal: binormal}, true
}

// Advance moves prev to a new tangent by parallel transport: rotate
// prev's frame about prev.Tangent × newTangent by the angle between the
// two tangents. This minimizes normal rotation about the tangent between
// steps, unlike recomputing an osculating-plane frame at each station.
func Advance(prev Frame, newTangent geom.Vec3, tol geom.Tolerance) Frame {
	newTangent, ok := newTangent.Normalized()
	if !ok {
		return prev
	}

	cross := prev.Tangent.Cross(newTangent)
	if cross.LengthSquared() < tol.EpsSquared() {
		if prev.Tangent.Dot(newTangent) < 0 {
			return Frame{
				Tangent:  newTangent,
				Normal:   prev.Normal.Neg(),
				Binormal: prev.Binormal.Neg(),
			}
		}
		return Frame{Tangent: newTangent, Normal: prev.Normal, Binormal: prev.Binormal}
	}

	axis, ok := cross.Normalized()
	if !ok {
		axis = geom.UnitZ
	}
	dot := clamp(prev.Tangent.Dot(newTangent), -1, 1)
	angle := math.Acos(dot)

	newNormal, ok := rotateAboutAxis(prev.Normal, axis, angle).Normalized()
	if !ok {
		newNormal = prev.Normal
	}
	newBinormal, ok := newTangent.Cross(newNormal).Normalized()
	if !ok {
		newBinormal = prev.Binormal
	}
	return Frame{Tangent: newTangent, Normal: newNormal, Binormal: newBinormal}
}

// rotateAboutAxis applies Rodrigues' rotation formula to v about a unit
// axis by angle radians.
func rotateAboutAxis(v, axis geom.Vec3, angle float64) geom.Vec3 {
	c, s := math.Cos(angle), math.Sin(angle)
	kxv := axis.Cross(v)
	kdv := axis.Dot(v)
	return v.Scale(c).Add(kxv.Scale(s)).Add(axis.Scale(kdv * (1 - c)))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// TransportResult is the output of TransportAlong: one frame per rail
// point, plus the count of cusp-like tangent changes detected (dot below
// CuspDotThreshold) and a flag for a near-180° cusp (dot < -0.999), which
// callers treat as a hard error for pipe and a warning for sweep.
type TransportResult struct {
	Frames       []Frame
	CuspLike     int
	NearCusp     bool
	Degenerate   bool // true if any rail tangent was degenerate and a previous tangent was reused
}

// TransportAlong builds one rotation-minimizing frame per point of a
// polyline rail. The first frame derives from the initial segment
// tangent; each subsequent tangent is the (forward+backward) averaged
// direction at interior points, or the final segment direction at the
// last point, matching the rail-frame construction shared by sweep1,
// pipe, and rail-revolve.
func TransportAlong(rail []geom.Point3, tol geom.Tolerance) TransportResult {
	if len(rail) < 2 {
		f, _ := FromTangent(geom.UnitZ)
		return TransportResult{Frames: []Frame{f}}
	}

	var result TransportResult
	result.Frames = make([]Frame, 0, len(rail))

	initialTangent := rail[1].SubPoint(rail[0])
	first, ok := FromTangent(initialTangent)
	if !ok {
		result.Degenerate = true
		first, _ = FromTangent(geom.UnitZ)
	}
	result.Frames = append(result.Frames, first)

	for i := 1; i < len(rail); i++ {
		prevIdx := i - 1
		nextIdx := i + 1
		if nextIdx > len(rail)-1 {
			nextIdx = len(rail) - 1
		}

		var tangent geom.Vec3
		if i < len(rail)-1 {
			forward := rail[nextIdx].SubPoint(rail[i])
			backward := rail[i].SubPoint(rail[prevIdx])
			tangent = forward.Add(backward)
		} else {
			tangent = rail[i].SubPoint(rail[prevIdx])
		}

		unitTangent, ok := tangent.Normalized()
		if !ok {
			result.Degenerate = true
			unitTangent = result.Frames[prevIdx].Tangent
		}

		if result.Frames[prevIdx].Tangent.Dot(unitTangent) < CuspDotThreshold {
			result.CuspLike++
		}
		if result.Frames[prevIdx].Tangent.Dot(unitTangent) < -0.999 {
			result.NearCusp = true
		}

		result.Frames = append(result.Frames, Advance(result.Frames[prevIdx], unitTangent, tol))
	}

	return result
}
