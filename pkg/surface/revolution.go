package surface

import (
	"math"

	"github.com/chazu/ghx/pkg/curve"
	"github.com/chazu/ghx/pkg/geom"
)

// Revolution sweeps a profile curve around an axis. u parameterizes
// the profile (reparameterized to [0,1] over the profile's domain), v
// parameterizes the sweep angle over [0,1] mapped to [0, SweepAngle].
type Revolution struct {
	Profile              curve.Curve
	Origin               geom.Point3
	Axis                 geom.Vec3
	SweepAngle           float64
	profileT0, profileT1 float64
}

// NewRevolution builds a Revolution from a profile curve, an axis
// (origin + direction) and a sweep angle in radians (2π for a full
// revolution). axis need not be normalized.
func NewRevolution(profile curve.Curve, origin geom.Point3, axis geom.Vec3, sweepAngle float64) Revolution {
	t0, t1 := profile.Domain()
	unitAxis, ok := axis.Normalized()
	if !ok {
		unitAxis = geom.UnitZ
	}
	return Revolution{
		Profile: profile, Origin: origin, Axis: unitAxis, SweepAngle: sweepAngle,
		profileT0: t0, profileT1: t1,
	}
}

func (r Revolution) profileParam(u float64) float64 {
	return r.profileT0 + (r.profileT1-r.profileT0)*u
}

// rotateAboutAxis rotates point p by angle radians around the line
// through r.Origin in direction r.Axis (assumed unit length).
func (r Revolution) rotateAboutAxis(p geom.Point3, angle float64) geom.Point3 {
	tr, ok := geom.RotateAxis(r.Axis, angle)
	if !ok {
		return p
	}
	rel := p.SubPoint(r.Origin)
	rotated := tr.ApplyVec(rel)
	return r.Origin.Add(rotated)
}

func (r Revolution) PointAt(u, v float64) geom.Point3 {
	p := r.Profile.PointAt(r.profileParam(u))
	return r.rotateAboutAxis(p, r.SweepAngle*v)
}

func (r Revolution) Du(u, v float64) geom.Vec3 {
	tangent := r.Profile.DerivativeAt(r.profileParam(u)).Scale(r.profileT1 - r.profileT0)
	tr, ok := geom.RotateAxis(r.Axis, r.SweepAngle*v)
	if !ok {
		return tangent
	}
	return tr.ApplyVec(tangent)
}

func (r Revolution) Dv(u, v float64) geom.Vec3 {
	p := r.Profile.PointAt(r.profileParam(u))
	rel := p.SubPoint(r.Origin)
	angle := r.SweepAngle * v
	tr, ok := geom.RotateAxis(r.Axis, angle)
	if !ok {
		return geom.Zero
	}
	rotatedRel := tr.ApplyVec(rel)
	// d/dv [Rot(axis, sweep*v) * rel] = sweep * (axis × rotatedRel)
	return r.Axis.Cross(rotatedRel).Scale(r.SweepAngle)
}

func (r Revolution) DomainU() (float64, float64) { return 0, 1 }
func (r Revolution) DomainV() (float64, float64) { return 0, 1 }

func (r Revolution) IsUClosed() bool { return r.Profile.IsClosed() }

// IsVClosed reports whether the sweep covers a full turn.
func (r Revolution) IsVClosed() bool {
	return math.Abs(math.Abs(r.SweepAngle)-2*math.Pi) < 1e-9
}

func (r Revolution) PoleVStart() bool { return false }
func (r Revolution) PoleVEnd() bool   { return false }

func (r Revolution) CacheKey() uint64 {
	return geom.NewContentHash('r').WriteUint64(r.Profile.CacheKey()).WritePoint3(r.Origin).
		WriteVec3(r.Axis).WriteFloat64(r.SweepAngle).Sum()
}

var _ Surface = Revolution{}
