package surface

import (
	"github.com/chazu/ghx/pkg/curve"
	"github.com/chazu/ghx/pkg/geom"
)

// Ruled is a surface linearly interpolated between two curves: u
// parameterizes both curves' own domain (reparameterized to [0,1]),
// v in [0,1] blends from CurveA (v=0) to CurveB (v=1).
type Ruled struct {
	CurveA, CurveB     curve.Curve
	aT0, aT1, bT0, bT1 float64
}

// NewRuled builds a Ruled surface between two curves.
func NewRuled(a, b curve.Curve) Ruled {
	aT0, aT1 := a.Domain()
	bT0, bT1 := b.Domain()
	return Ruled{CurveA: a, CurveB: b, aT0: aT0, aT1: aT1, bT0: bT0, bT1: bT1}
}

func (r Ruled) PointAt(u, v float64) geom.Point3 {
	pa := r.CurveA.PointAt(r.aT0 + (r.aT1-r.aT0)*u)
	pb := r.CurveB.PointAt(r.bT0 + (r.bT1-r.bT0)*u)
	return pa.Lerp(pb, v)
}

func (r Ruled) Du(u, v float64) geom.Vec3 {
	da := r.CurveA.DerivativeAt(r.aT0 + (r.aT1-r.aT0)*u).Scale(r.aT1 - r.aT0)
	db := r.CurveB.DerivativeAt(r.bT0 + (r.bT1-r.bT0)*u).Scale(r.bT1 - r.bT0)
	return da.Lerp(db, v)
}

func (r Ruled) Dv(u, v float64) geom.Vec3 {
	pa := r.CurveA.PointAt(r.aT0 + (r.aT1-r.aT0)*u)
	pb := r.CurveB.PointAt(r.bT0 + (r.bT1-r.bT0)*u)
	return pb.SubPoint(pa)
}

func (r Ruled) DomainU() (float64, float64) { return 0, 1 }
func (r Ruled) DomainV() (float64, float64) { return 0, 1 }

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

func (r Ruled) IsUClosed() bool  { return r.CurveA.IsClosed() && r.CurveB.IsClosed() }
func (r Ruled) IsVClosed() bool  { return false }
func (r Ruled) PoleVStart() bool { return false }
func (r Ruled) PoleVEnd() bool   { return false }

func (r Ruled) CacheKey() uint64 {
	return geom.NewContentHash('u').WriteUint64(r.CurveA.CacheKey()).WriteUint64(r.CurveB.CacheKey()).Sum()
}

var _ Surface = Ruled{}

// Loft interpolates across N ordered profile curves: u parameterizes
// each profile's own domain, v in [0,1] is distributed uniformly
// across the N-1 spans between consecutive profiles.
type Loft struct {
	Profiles []curve.Curve
	domains  [][2]float64
}

// NewLoft builds a Loft from at least 2 profile curves.
func NewLoft(profiles []curve.Curve) Loft {
	domains := make([][2]float64, len(profiles))
	for i, p := range profiles {
		t0, t1 := p.Domain()
		domains[i] = [2]float64{t0, t1}
	}
	return Loft{Profiles: append([]curve.Curve(nil), profiles...), domains: domains}
}

// span locates the (segment index, local v in [0,1]) for a global v
// in [0,1] across len(Profiles)-1 equal spans.
func (l Loft) span(v float64) (int, float64) {
	n := len(l.Profiles) - 1
	if n <= 0 {
		return 0, 0
	}
	v = clamp01(v) * float64(n)
	idx := int(v)
	if idx >= n {
		idx = n - 1
	}
	return idx, v - float64(idx)
}

func (l Loft) pointOnProfile(i int, u float64) geom.Point3 {
	t0, t1 := l.domains[i][0], l.domains[i][1]
	return l.Profiles[i].PointAt(t0 + (t1-t0)*u)
}

func (l Loft) PointAt(u, v float64) geom.Point3 {
	if len(l.Profiles) == 1 {
		return l.pointOnProfile(0, u)
	}
	idx, local := l.span(v)
	return l.pointOnProfile(idx, u).Lerp(l.pointOnProfile(idx+1, u), local)
}

func (l Loft) Du(u, v float64) geom.Vec3 {
	if len(l.Profiles) == 1 {
		t0, t1 := l.domains[0][0], l.domains[0][1]
		return l.Profiles[0].DerivativeAt(t0 + (t1-t0)*u).Scale(t1 - t0)
	}
	idx, local := l.span(v)
	t0, t1 := l.domains[idx][0], l.domains[idx][1]
	da := l.Profiles[idx].DerivativeAt(t0 + (t1-t0)*u).Scale(t1 - t0)
	t0b, t1b := l.domains[idx+1][0], l.domains[idx+1][1]
	db := l.Profiles[idx+1].DerivativeAt(t0b + (t1b-t0b)*u).Scale(t1b - t0b)
	return da.Lerp(db, local)
}

func (l Loft) Dv(u, v float64) geom.Vec3 {
	if len(l.Profiles) <= 1 {
		return geom.Zero
	}
	idx, _ := l.span(v)
	a := l.pointOnProfile(idx, u)
	b := l.pointOnProfile(idx+1, u)
	return b.SubPoint(a).Scale(float64(len(l.Profiles) - 1))
}

func (l Loft) DomainU() (float64, float64) { return 0, 1 }
func (l Loft) DomainV() (float64, float64) { return 0, 1 }

func (l Loft) IsUClosed() bool {
	for _, p := range l.Profiles {
		if !p.IsClosed() {
			return false
		}
	}
	return len(l.Profiles) > 0
}
func (l Loft) IsVClosed() bool  { return false }
func (l Loft) PoleVStart() bool { return false }
func (l Loft) PoleVEnd() bool   { return false }

func (l Loft) CacheKey() uint64 {
	h := geom.NewContentHash('f').WriteInt(len(l.Profiles))
	for _, p := range l.Profiles {
		h = h.WriteUint64(p.CacheKey())
	}
	return h.Sum()
}

var _ Surface = Loft{}
