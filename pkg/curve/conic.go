package curve

import (
	"math"

	"github.com/chazu/ghx/pkg/geom"
)

// fullCircleTolerance is the angular tolerance used to decide whether
// an Arc's sweep covers a full turn (and is therefore closed).
const fullCircleTolerance = 1e-9

// Circle is a full circle in 3D, described by center, in-plane axes,
// and radius. Parameterized over [0,1] as one full turn.
type Circle struct {
	Center       geom.Point3
	XAxis, YAxis geom.Vec3
	Radius       float64
}

// NewCircle builds a Circle from a center, plane normal, and radius.
// The in-plane axes are derived arbitrarily from the normal.
func NewCircle(center geom.Point3, normal geom.Vec3, radius float64) Circle {
	x, y := frameAxesFromNormal(normal)
	return Circle{Center: center, XAxis: x, YAxis: y, Radius: radius}
}

// NewCircleFromXAxisNormal builds a Circle with an explicit preferred
// x-axis direction, projected into the plane perpendicular to normal.
func NewCircleFromXAxisNormal(center geom.Point3, xAxis, normal geom.Vec3, radius float64) Circle {
	x, y := frameAxesFromXAxisNormal(xAxis, normal)
	return Circle{Center: center, XAxis: x, YAxis: y, Radius: radius}
}

func (c Circle) Domain() (float64, float64) { return 0, 1 }

func (c Circle) IsClosed() bool { return true }

func (c Circle) PointAt(t float64) geom.Point3 {
	u := clamp01(t)
	angle := 2 * math.Pi * u
	return c.Center.
		Add(c.XAxis.Scale(c.Radius * math.Cos(angle))).
		Add(c.YAxis.Scale(c.Radius * math.Sin(angle)))
}

func (c Circle) DerivativeAt(t float64) geom.Vec3 {
	u := clamp01(t)
	angle := 2 * math.Pi * u
	dThetaDt := 2 * math.Pi
	dx := c.XAxis.Scale(-c.Radius * math.Sin(angle))
	dy := c.YAxis.Scale(c.Radius * math.Cos(angle))
	return dx.Add(dy).Scale(dThetaDt)
}

func (c Circle) SecondDerivativeAt(t float64) geom.Vec3 {
	u := clamp01(t)
	angle := 2 * math.Pi * u
	dThetaDt := 2 * math.Pi
	dd := c.XAxis.Scale(-c.Radius * math.Cos(angle)).Add(c.YAxis.Scale(-c.Radius * math.Sin(angle)))
	return dd.Scale(dThetaDt * dThetaDt)
}

func (c Circle) CacheKey() uint64 {
	return geom.NewContentHash('O').WritePoint3(c.Center).WriteVec3(c.XAxis).WriteVec3(c.YAxis).WriteFloat64(c.Radius).Sum()
}

var _ Curve = Circle{}

// Arc is a circular arc: a Circle restricted to a start angle and
// signed sweep (radians).
type Arc struct {
	Center       geom.Point3
	XAxis, YAxis geom.Vec3
	Radius       float64
	StartAngle   float64
	SweepAngle   float64
}

// NewArc builds an Arc from a center, plane normal, radius, start
// angle and sweep (radians).
func NewArc(center geom.Point3, normal geom.Vec3, radius, startAngle, sweepAngle float64) Arc {
	x, y := frameAxesFromNormal(normal)
	return Arc{Center: center, XAxis: x, YAxis: y, Radius: radius, StartAngle: startAngle, SweepAngle: sweepAngle}
}

// NewArcFromXAxisNormal builds an Arc with an explicit preferred
// x-axis direction.
func NewArcFromXAxisNormal(center geom.Point3, xAxis, normal geom.Vec3, radius, startAngle, sweepAngle float64) Arc {
	x, y := frameAxesFromXAxisNormal(xAxis, normal)
	return Arc{Center: center, XAxis: x, YAxis: y, Radius: radius, StartAngle: startAngle, SweepAngle: sweepAngle}
}

func (a Arc) Domain() (float64, float64) { return 0, 1 }

func (a Arc) angleAt(t float64) float64 {
	return a.StartAngle + a.SweepAngle*clamp01(t)
}

func (a Arc) PointAt(t float64) geom.Point3 {
	angle := a.angleAt(t)
	return a.Center.
		Add(a.XAxis.Scale(a.Radius * math.Cos(angle))).
		Add(a.YAxis.Scale(a.Radius * math.Sin(angle)))
}

func (a Arc) DerivativeAt(t float64) geom.Vec3 {
	angle := a.angleAt(t)
	dx := a.XAxis.Scale(-a.Radius * math.Sin(angle))
	dy := a.YAxis.Scale(a.Radius * math.Cos(angle))
	return dx.Add(dy).Scale(a.SweepAngle)
}

func (a Arc) SecondDerivativeAt(t float64) geom.Vec3 {
	angle := a.angleAt(t)
	dd := a.XAxis.Scale(-a.Radius * math.Cos(angle)).Add(a.YAxis.Scale(-a.Radius * math.Sin(angle)))
	return dd.Scale(a.SweepAngle * a.SweepAngle)
}

// IsClosed reports whether the arc's sweep covers a full turn within
// fullCircleTolerance.
func (a Arc) IsClosed() bool {
	return math.Abs(math.Abs(a.SweepAngle)-2*math.Pi) < fullCircleTolerance
}

func (a Arc) CacheKey() uint64 {
	return geom.NewContentHash('A').WritePoint3(a.Center).WriteVec3(a.XAxis).WriteVec3(a.YAxis).
		WriteFloat64(a.Radius).WriteFloat64(a.StartAngle).WriteFloat64(a.SweepAngle).Sum()
}

var _ Curve = Arc{}

// Ellipse is a planar ellipse with independent x/y radii.
type Ellipse struct {
	Center           geom.Point3
	XAxis, YAxis     geom.Vec3
	RadiusX, RadiusY float64
}

// NewEllipse builds an Ellipse from explicit (possibly non-orthogonal)
// in-plane axes; they are orthonormalized.
func NewEllipse(center geom.Point3, xAxis, yAxis geom.Vec3, radiusX, radiusY float64) Ellipse {
	x, y := frameAxesFromXY(xAxis, yAxis)
	return Ellipse{Center: center, XAxis: x, YAxis: y, RadiusX: radiusX, RadiusY: radiusY}
}

// NewEllipseFromNormal builds an Ellipse from a plane normal alone.
func NewEllipseFromNormal(center geom.Point3, normal geom.Vec3, radiusX, radiusY float64) Ellipse {
	x, y := frameAxesFromNormal(normal)
	return Ellipse{Center: center, XAxis: x, YAxis: y, RadiusX: radiusX, RadiusY: radiusY}
}

func (e Ellipse) Domain() (float64, float64) { return 0, 1 }

func (e Ellipse) IsClosed() bool { return true }

func (e Ellipse) PointAt(t float64) geom.Point3 {
	angle := 2 * math.Pi * clamp01(t)
	return e.Center.
		Add(e.XAxis.Scale(e.RadiusX * math.Cos(angle))).
		Add(e.YAxis.Scale(e.RadiusY * math.Sin(angle)))
}

func (e Ellipse) DerivativeAt(t float64) geom.Vec3 {
	angle := 2 * math.Pi * clamp01(t)
	dThetaDt := 2 * math.Pi
	dx := e.XAxis.Scale(-e.RadiusX * math.Sin(angle))
	dy := e.YAxis.Scale(e.RadiusY * math.Cos(angle))
	return dx.Add(dy).Scale(dThetaDt)
}

func (e Ellipse) SecondDerivativeAt(t float64) geom.Vec3 {
	angle := 2 * math.Pi * clamp01(t)
	dThetaDt := 2 * math.Pi
	dd := e.XAxis.Scale(-e.RadiusX * math.Cos(angle)).Add(e.YAxis.Scale(-e.RadiusY * math.Sin(angle)))
	return dd.Scale(dThetaDt * dThetaDt)
}

func (e Ellipse) CacheKey() uint64 {
	return geom.NewContentHash('E').WritePoint3(e.Center).WriteVec3(e.XAxis).WriteVec3(e.YAxis).
		WriteFloat64(e.RadiusX).WriteFloat64(e.RadiusY).Sum()
}

var _ Curve = Ellipse{}
