// Package surface implements parametric surfaces over a (u, v)
// rectangle: planes, quadrics, revolutions, ruled/lofted surfaces and
// full NURBS patches. Every variant satisfies Surface, mirroring
// pkg/curve's shape: an embeddable base supplies finite-difference
// partials for variants that don't have a closed form.
package surface

import (
	"math"

	"github.com/chazu/ghx/pkg/geom"
)

// Surface is a parametric surface over (u, v) in [DomainU] x [DomainV].
type Surface interface {
	// PointAt evaluates the surface at (u, v).
	PointAt(u, v float64) geom.Point3

	// Du, Dv return the partial derivatives with respect to u and v.
	Du(u, v float64) geom.Vec3
	Dv(u, v float64) geom.Vec3

	// DomainU, DomainV return the surface's parameter ranges.
	DomainU() (float64, float64)
	DomainV() (float64, float64)

	// IsUClosed, IsVClosed report whether the surface wraps around on
	// that parameter (e.g. the longitude of a sphere).
	IsUClosed() bool
	IsVClosed() bool

	// PoleVStart, PoleVEnd report whether the whole v=start (resp.
	// v=end) isoline degenerates to a single point (e.g. a sphere's
	// poles, a cone's apex) — tessellators must not weld a pole as an
	// ordinary closed edge.
	PoleVStart() bool
	PoleVEnd() bool

	// CacheKey returns a content hash suitable for keying downstream
	// tessellation/operator caches.
	CacheKey() uint64
}

// Normal returns the unit surface normal at (u, v) via Du × Dv, or
// false if the partials are parallel or degenerate.
func Normal(s Surface, u, v float64) (geom.Vec3, bool) {
	return s.Du(u, v).Cross(s.Dv(u, v)).Normalized()
}

// Base supplies finite-difference Du/Dv defaults for surface types
// that embed it and set PointFn; analogous to curve.Base.
type Base struct {
	PointFn                    func(u, v float64) geom.Point3
	UStart, UEnd, VStart, VEnd float64
	UClosed, VClosed           bool
	PoleStart, PoleEnd         bool
}

func (b Base) PointAt(u, v float64) geom.Point3 { return b.PointFn(u, v) }

func (b Base) DomainU() (float64, float64) { return b.UStart, b.UEnd }
func (b Base) DomainV() (float64, float64) { return b.VStart, b.VEnd }

func (b Base) IsUClosed() bool { return b.UClosed }
func (b Base) IsVClosed() bool { return b.VClosed }

func (b Base) PoleVStart() bool { return b.PoleStart }
func (b Base) PoleVEnd() bool   { return b.PoleEnd }

// Du computes a central-difference approximation of the u-partial,
// span-relative exactly as curve.Base.DerivativeAt.
func (b Base) Du(u, v float64) geom.Vec3 {
	span := b.UEnd - b.UStart
	if math.IsNaN(span) || span == 0 {
		return geom.Zero
	}
	h := geom.ToleranceDerivative.RelativeTo(span)
	if h == 0 || math.IsNaN(h) {
		return geom.Zero
	}
	u0 := math.Max(u-h, b.UStart)
	u1 := math.Min(u+h, b.UEnd)
	if u1 == u0 {
		return geom.Zero
	}
	p0 := b.PointFn(u0, v)
	p1 := b.PointFn(u1, v)
	return p1.SubPoint(p0).Scale(1 / (u1 - u0))
}

// Dv computes a central-difference approximation of the v-partial.
func (b Base) Dv(u, v float64) geom.Vec3 {
	span := b.VEnd - b.VStart
	if math.IsNaN(span) || span == 0 {
		return geom.Zero
	}
	h := geom.ToleranceDerivative.RelativeTo(span)
	if h == 0 || math.IsNaN(h) {
		return geom.Zero
	}
	v0 := math.Max(v-h, b.VStart)
	v1 := math.Min(v+h, b.VEnd)
	if v1 == v0 {
		return geom.Zero
	}
	p0 := b.PointFn(u, v0)
	p1 := b.PointFn(u, v1)
	return p1.SubPoint(p0).Scale(1 / (v1 - v0))
}
