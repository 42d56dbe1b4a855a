package curve

import "github.com/chazu/ghx/pkg/geom"

// Bezier2 is a quadratic Bezier segment.
type Bezier2 struct {
	P0, P1, P2 geom.Point3
}

// NewBezier2 constructs a Bezier2.
func NewBezier2(p0, p1, p2 geom.Point3) Bezier2 { return Bezier2{P0: p0, P1: p1, P2: p2} }

func (b Bezier2) Domain() (float64, float64) { return 0, 1 }

func (b Bezier2) IsClosed() bool { return false }

func (b Bezier2) PointAt(t float64) geom.Point3 {
	t = clamp01(t)
	u := 1 - t
	return geom.Point3{
		X: b.P0.X*u*u + b.P1.X*2*u*t + b.P2.X*t*t,
		Y: b.P0.Y*u*u + b.P1.Y*2*u*t + b.P2.Y*t*t,
		Z: b.P0.Z*u*u + b.P1.Z*2*u*t + b.P2.Z*t*t,
	}
}

func (b Bezier2) DerivativeAt(t float64) geom.Vec3 {
	t = clamp01(t)
	u := 1 - t
	a := b.P1.SubPoint(b.P0)
	c := b.P2.SubPoint(b.P1)
	return a.Scale(2 * u).Add(c.Scale(2 * t))
}

func (b Bezier2) SecondDerivativeAt(float64) geom.Vec3 {
	return geom.Vec3{
		X: 2 * (b.P2.X - 2*b.P1.X + b.P0.X),
		Y: 2 * (b.P2.Y - 2*b.P1.Y + b.P0.Y),
		Z: 2 * (b.P2.Z - 2*b.P1.Z + b.P0.Z),
	}
}

func (b Bezier2) CacheKey() uint64 {
	return geom.NewContentHash('Q').WritePoint3(b.P0).WritePoint3(b.P1).WritePoint3(b.P2).Sum()
}

var _ Curve = Bezier2{}

// Bezier3 is a cubic Bezier segment.
type Bezier3 struct {
	P0, P1, P2, P3 geom.Point3
}

// NewBezier3 constructs a Bezier3.
func NewBezier3(p0, p1, p2, p3 geom.Point3) Bezier3 {
	return Bezier3{P0: p0, P1: p1, P2: p2, P3: p3}
}

func (b Bezier3) Domain() (float64, float64) { return 0, 1 }

func (b Bezier3) IsClosed() bool { return false }

func (b Bezier3) PointAt(t float64) geom.Point3 {
	t = clamp01(t)
	u := 1 - t
	u2, t2 := u*u, t*t
	w0, w1, w2, w3 := u2*u, 3*u2*t, 3*u*t2, t2*t
	return geom.Point3{
		X: b.P0.X*w0 + b.P1.X*w1 + b.P2.X*w2 + b.P3.X*w3,
		Y: b.P0.Y*w0 + b.P1.Y*w1 + b.P2.Y*w2 + b.P3.Y*w3,
		Z: b.P0.Z*w0 + b.P1.Z*w1 + b.P2.Z*w2 + b.P3.Z*w3,
	}
}

func (b Bezier3) DerivativeAt(t float64) geom.Vec3 {
	t = clamp01(t)
	u := 1 - t
	a := b.P1.SubPoint(b.P0)
	c := b.P2.SubPoint(b.P1)
	d := b.P3.SubPoint(b.P2)
	return a.Scale(3 * u * u).Add(c.Scale(6 * u * t)).Add(d.Scale(3 * t * t))
}

func (b Bezier3) SecondDerivativeAt(t float64) geom.Vec3 {
	t = clamp01(t)
	u := 1 - t
	a := bezierSecond(b.P0, b.P1, b.P2)
	c := bezierSecond(b.P1, b.P2, b.P3)
	return a.Scale(6 * u).Add(c.Scale(6 * t))
}

func (b Bezier3) CacheKey() uint64 {
	return geom.NewContentHash('C').WritePoint3(b.P0).WritePoint3(b.P1).WritePoint3(b.P2).WritePoint3(b.P3).Sum()
}

var _ Curve = Bezier3{}

func bezierSecond(p0, p1, p2 geom.Point3) geom.Vec3 {
	return geom.Vec3{
		X: p2.X - 2*p1.X + p0.X,
		Y: p2.Y - 2*p1.Y + p0.Y,
		Z: p2.Z - 2*p1.Z + p0.Z,
	}
}
