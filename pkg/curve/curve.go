// Package curve implements parametric space curves over [0,1]: lines,
// polylines, conics, Bezier segments and full NURBS. Every variant
// satisfies Curve, which supplies finite-difference derivative and
// curvature defaults so that a new curve type only has to implement
// PointAt and, where it has a closed form, override the derivatives.
package curve

import (
	"math"

	"github.com/chazu/ghx/pkg/geom"
)

// Curve is a parametric curve over a domain [t0, t1].
type Curve interface {
	// PointAt evaluates the curve at parameter t, which is expected to
	// lie within Domain but is not required to.
	PointAt(t float64) geom.Point3

	// Domain returns the curve's parameter range.
	Domain() (float64, float64)

	// IsClosed reports whether the curve's start and end coincide.
	IsClosed() bool

	// DerivativeAt returns the first derivative (tangent direction,
	// unnormalized) at t.
	DerivativeAt(t float64) geom.Vec3

	// SecondDerivativeAt returns the second derivative at t.
	SecondDerivativeAt(t float64) geom.Vec3

	// CacheKey returns a content hash suitable for keying downstream
	// tessellation/operator caches — equal curves (same variant, same
	// parameters) always hash equal.
	CacheKey() uint64
}

// Base supplies finite-difference Domain/IsClosed/derivative defaults
// for curve types that embed it. A concrete curve overrides PointAt
// (mandatory) and, when it has a closed form, the derivative methods;
// embedding Base means the rest of the Curve interface is satisfied
// for free.
type Base struct {
	// PointFn is the curve's evaluator; it must be set by the embedder.
	PointFn func(t float64) geom.Point3
	// DomainStart, DomainEnd bound the curve's parameter range.
	DomainStart, DomainEnd float64
	// Closed reports whether the curve is closed.
	Closed bool
}

// PointAt evaluates the embedder-supplied PointFn.
func (b Base) PointAt(t float64) geom.Point3 { return b.PointFn(t) }

// Domain returns (DomainStart, DomainEnd).
func (b Base) Domain() (float64, float64) { return b.DomainStart, b.DomainEnd }

// IsClosed returns Closed.
func (b Base) IsClosed() bool { return b.Closed }

// DerivativeAt computes a central-difference approximation of the
// tangent at t, scaled relative to the domain span.
func (b Base) DerivativeAt(t float64) geom.Vec3 {
	a, c := b.DomainStart, b.DomainEnd
	span := c - a
	if !math.IsInf(span, 0) && (math.IsNaN(span) || span == 0) {
		return geom.Zero
	}
	h := geom.ToleranceDerivative.RelativeTo(span)
	if h == 0 || math.IsNaN(h) {
		return geom.Zero
	}
	t0 := math.Max(t-h, a)
	t1 := math.Min(t+h, c)
	if t1 == t0 {
		return geom.Zero
	}
	p0 := b.PointFn(t0)
	p1 := b.PointFn(t1)
	return p1.SubPoint(p0).Scale(1 / (t1 - t0))
}

// SecondDerivativeAt computes a central-difference approximation of
// the curve's second derivative at t.
func (b Base) SecondDerivativeAt(t float64) geom.Vec3 {
	a, c := b.DomainStart, b.DomainEnd
	span := c - a
	if math.IsNaN(span) || span == 0 {
		return geom.Zero
	}
	h := geom.ToleranceSecondDerivative.RelativeTo(span)
	if h == 0 || math.IsNaN(h) {
		return geom.Zero
	}
	t0 := math.Max(t-h, a)
	t2 := math.Min(t+h, c)
	if t2 == t0 {
		return geom.Zero
	}
	tm := 0.5 * (t0 + t2)
	dt := tm - t0
	if dt == 0 {
		return geom.Zero
	}
	p0 := b.PointFn(t0)
	p1 := b.PointFn(tm)
	p2 := b.PointFn(t2)
	diff := geom.Vec3{
		X: p0.X - 2*p1.X + p2.X,
		Y: p0.Y - 2*p1.Y + p2.Y,
		Z: p0.Z - 2*p1.Z + p2.Z,
	}
	return diff.Scale(1 / (dt * dt))
}

// Curvature returns the curvature magnitude |d1×d2|/|d1|³ of c at t, or
// false when the first derivative vanishes or the result is not finite.
// A straight line has zero second derivative and yields (0, true).
func Curvature(c Curve, t float64) (float64, bool) {
	d1 := c.DerivativeAt(t)
	d2 := c.SecondDerivativeAt(t)
	denom := d1.Length()
	if denom <= 0 || math.IsInf(denom, 0) {
		return 0, false
	}
	num := d1.Cross(d2).Length()
	k := num / (denom * denom * denom)
	if math.IsNaN(k) || math.IsInf(k, 0) {
		return 0, false
	}
	return k, true
}

// TangentAt returns the unit tangent vector at t, or false if the
// derivative is zero or degenerate.
func TangentAt(c Curve, t float64) (geom.Vec3, bool) {
	return c.DerivativeAt(t).Normalized()
}

// TessellateUniform samples the curve at steps+1 evenly spaced
// parameters (steps samples for a closed curve, since the last
// coincides with the first).
func TessellateUniform(c Curve, steps int) []geom.Point3 {
	if steps < 1 {
		steps = 1
	}
	t0, t1 := c.Domain()
	span := t1 - t0
	if math.IsNaN(span) || span == 0 {
		return []geom.Point3{c.PointAt(t0)}
	}

	denom := float64(steps)
	if c.IsClosed() {
		out := make([]geom.Point3, steps)
		for i := 0; i < steps; i++ {
			u := float64(i) / denom
			out[i] = c.PointAt(t0 + span*u)
		}
		return out
	}
	out := make([]geom.Point3, steps+1)
	for i := 0; i <= steps; i++ {
		u := float64(i) / denom
		out[i] = c.PointAt(t0 + span*u)
	}
	return out
}

func lerpPoint(a, b geom.Point3, t float64) geom.Point3 {
	return geom.Point3{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}

// orthogonalUnitVector returns an arbitrary unit vector perpendicular
// to reference, used to seed a frame from a bare normal.
func orthogonalUnitVector(reference geom.Vec3) geom.Vec3 {
	var candidate geom.Vec3
	if math.Abs(reference.X) < math.Abs(reference.Y) {
		candidate = geom.Vec3{X: 0, Y: -reference.Z, Z: reference.Y}
	} else {
		candidate = geom.Vec3{X: -reference.Z, Y: 0, Z: reference.X}
	}
	if u, ok := candidate.Normalized(); ok {
		return u
	}
	return geom.UnitX
}

// frameAxesFromNormal derives an (x, y) in-plane basis from a plane
// normal alone.
func frameAxesFromNormal(normal geom.Vec3) (geom.Vec3, geom.Vec3) {
	z, ok := normal.Normalized()
	if !ok {
		z = geom.UnitZ
	}
	x := orthogonalUnitVector(z)
	y, ok := z.Cross(x).Normalized()
	if !ok {
		y = geom.UnitY
	}
	return x, y
}

// frameAxesFromXAxisNormal derives an (x, y) basis from a preferred x
// axis projected into the plane perpendicular to normal.
func frameAxesFromXAxisNormal(xAxis, normal geom.Vec3) (geom.Vec3, geom.Vec3) {
	z, ok := normal.Normalized()
	if !ok {
		z = geom.UnitZ
	}
	projected := xAxis.Sub(z.Scale(xAxis.Dot(z)))
	x, ok := projected.Normalized()
	if !ok {
		x = orthogonalUnitVector(z)
	}
	y, ok := z.Cross(x).Normalized()
	if !ok {
		y = geom.UnitY
	}
	return x, y
}

// frameAxesFromXY derives an orthonormal (x, y) basis from two
// (possibly non-orthogonal) in-plane vectors.
func frameAxesFromXY(xAxis, yAxis geom.Vec3) (geom.Vec3, geom.Vec3) {
	x, ok := xAxis.Normalized()
	if !ok {
		x = geom.UnitX
	}
	z, ok := x.Cross(yAxis).Normalized()
	if !ok {
		z = geom.UnitZ
	}
	y, ok := z.Cross(x).Normalized()
	if !ok {
		y = geom.UnitY
	}
	return x, y
}
