package surface

import (
	"math"

	"github.com/chazu/ghx/pkg/geom"
)

// Sphere is a full sphere parameterized by longitude (u in [0,1], one
// full turn) and latitude (v in [0,1], south pole to north pole).
type Sphere struct {
	Center              geom.Point3
	XAxis, YAxis, ZAxis geom.Vec3
	Radius              float64
}

// NewSphere builds a Sphere with the given center, radius and polar
// axis; the equatorial basis is derived from the axis arbitrarily.
func NewSphere(center geom.Point3, axis geom.Vec3, radius float64) Sphere {
	z, ok := axis.Normalized()
	if !ok {
		z = geom.UnitZ
	}
	x, y := orthonormalPair(z)
	return Sphere{Center: center, XAxis: x, YAxis: y, ZAxis: z, Radius: radius}
}

func (s Sphere) angles(u, v float64) (lon, lat float64) {
	lon = 2 * math.Pi * u
	lat = -math.Pi/2 + math.Pi*v
	return
}

func (s Sphere) PointAt(u, v float64) geom.Point3 {
	lon, lat := s.angles(u, v)
	cosLat := math.Cos(lat)
	radial := s.XAxis.Scale(math.Cos(lon) * cosLat).Add(s.YAxis.Scale(math.Sin(lon) * cosLat)).Add(s.ZAxis.Scale(math.Sin(lat)))
	return s.Center.Add(radial.Scale(s.Radius))
}

func (s Sphere) Du(u, v float64) geom.Vec3 {
	lon, lat := s.angles(u, v)
	cosLat := math.Cos(lat)
	d := s.XAxis.Scale(-math.Sin(lon) * cosLat).Add(s.YAxis.Scale(math.Cos(lon) * cosLat))
	return d.Scale(s.Radius * 2 * math.Pi)
}

func (s Sphere) Dv(u, v float64) geom.Vec3 {
	lon, lat := s.angles(u, v)
	d := s.XAxis.Scale(-math.Cos(lon) * math.Sin(lat)).
		Add(s.YAxis.Scale(-math.Sin(lon) * math.Sin(lat))).
		Add(s.ZAxis.Scale(math.Cos(lat)))
	return d.Scale(s.Radius * math.Pi)
}

func (s Sphere) DomainU() (float64, float64) { return 0, 1 }
func (s Sphere) DomainV() (float64, float64) { return 0, 1 }

func (s Sphere) IsUClosed() bool  { return true }
func (s Sphere) IsVClosed() bool  { return false }
func (s Sphere) PoleVStart() bool { return true }
func (s Sphere) PoleVEnd() bool   { return true }

func (s Sphere) CacheKey() uint64 {
	return geom.NewContentHash('s').WritePoint3(s.Center).WriteVec3(s.XAxis).WriteVec3(s.YAxis).
		WriteVec3(s.ZAxis).WriteFloat64(s.Radius).Sum()
}

var _ Surface = Sphere{}

// Cylinder is a right circular cylinder: u sweeps the circular cross
// section (one full turn), v runs along the axis from 0 to Height.
type Cylinder struct {
	Base                geom.Point3
	XAxis, YAxis, ZAxis geom.Vec3
	Radius, Height      float64
}

// NewCylinder builds a Cylinder from a base point, axis direction,
// radius and height.
func NewCylinder(base geom.Point3, axis geom.Vec3, radius, height float64) Cylinder {
	z, ok := axis.Normalized()
	if !ok {
		z = geom.UnitZ
	}
	x, y := orthonormalPair(z)
	return Cylinder{Base: base, XAxis: x, YAxis: y, ZAxis: z, Radius: radius, Height: height}
}

func (c Cylinder) PointAt(u, v float64) geom.Point3 {
	angle := 2 * math.Pi * u
	radial := c.XAxis.Scale(c.Radius * math.Cos(angle)).Add(c.YAxis.Scale(c.Radius * math.Sin(angle)))
	return c.Base.Add(radial).Add(c.ZAxis.Scale(c.Height * v))
}

func (c Cylinder) Du(u, v float64) geom.Vec3 {
	angle := 2 * math.Pi * u
	d := c.XAxis.Scale(-c.Radius * math.Sin(angle)).Add(c.YAxis.Scale(c.Radius * math.Cos(angle)))
	return d.Scale(2 * math.Pi)
}

func (c Cylinder) Dv(float64, float64) geom.Vec3 { return c.ZAxis.Scale(c.Height) }

func (c Cylinder) DomainU() (float64, float64) { return 0, 1 }
func (c Cylinder) DomainV() (float64, float64) { return 0, 1 }

func (c Cylinder) IsUClosed() bool  { return true }
func (c Cylinder) IsVClosed() bool  { return false }
func (c Cylinder) PoleVStart() bool { return false }
func (c Cylinder) PoleVEnd() bool   { return false }

func (c Cylinder) CacheKey() uint64 {
	return geom.NewContentHash('c').WritePoint3(c.Base).WriteVec3(c.XAxis).WriteVec3(c.YAxis).
		WriteVec3(c.ZAxis).WriteFloat64(c.Radius).WriteFloat64(c.Height).Sum()
}

var _ Surface = Cylinder{}

// Cone is a right circular cone: u sweeps the cross section, v runs
// from the apex (v=0, a pole) to the base circle (v=1, radius
// BaseRadius).
type Cone struct {
	Apex                geom.Point3
	XAxis, YAxis, ZAxis geom.Vec3
	BaseRadius, Height  float64
}

// NewCone builds a Cone from an apex point, axis direction (pointing
// toward the base), base radius and height.
func NewCone(apex geom.Point3, axis geom.Vec3, baseRadius, height float64) Cone {
	z, ok := axis.Normalized()
	if !ok {
		z = geom.UnitZ
	}
	x, y := orthonormalPair(z)
	return Cone{Apex: apex, XAxis: x, YAxis: y, ZAxis: z, BaseRadius: baseRadius, Height: height}
}

func (c Cone) PointAt(u, v float64) geom.Point3 {
	angle := 2 * math.Pi * u
	r := c.BaseRadius * v
	radial := c.XAxis.Scale(r * math.Cos(angle)).Add(c.YAxis.Scale(r * math.Sin(angle)))
	return c.Apex.Add(radial).Add(c.ZAxis.Scale(c.Height * v))
}

func (c Cone) Du(u, v float64) geom.Vec3 {
	angle := 2 * math.Pi * u
	r := c.BaseRadius * v
	d := c.XAxis.Scale(-r * math.Sin(angle)).Add(c.YAxis.Scale(r * math.Cos(angle)))
	return d.Scale(2 * math.Pi)
}

func (c Cone) Dv(u, v float64) geom.Vec3 {
	angle := 2 * math.Pi * u
	radial := c.XAxis.Scale(c.BaseRadius * math.Cos(angle)).Add(c.YAxis.Scale(c.BaseRadius * math.Sin(angle)))
	return radial.Add(c.ZAxis.Scale(c.Height))
}

func (c Cone) DomainU() (float64, float64) { return 0, 1 }
func (c Cone) DomainV() (float64, float64) { return 0, 1 }

func (c Cone) IsUClosed() bool  { return true }
func (c Cone) IsVClosed() bool  { return false }
func (c Cone) PoleVStart() bool { return true }
func (c Cone) PoleVEnd() bool   { return false }

func (c Cone) CacheKey() uint64 {
	return geom.NewContentHash('k').WritePoint3(c.Apex).WriteVec3(c.XAxis).WriteVec3(c.YAxis).
		WriteVec3(c.ZAxis).WriteFloat64(c.BaseRadius).WriteFloat64(c.Height).Sum()
}

var _ Surface = Cone{}

// orthonormalPair returns an arbitrary but consistent (x, y) basis
// perpendicular to a unit vector z.
func orthonormalPair(z geom.Vec3) (geom.Vec3, geom.Vec3) {
	var candidate geom.Vec3
	if math.Abs(z.X) < math.Abs(z.Y) {
		candidate = geom.Vec3{X: 0, Y: -z.Z, Z: z.Y}
	} else {
		candidate = geom.Vec3{X: -z.Z, Y: 0, Z: z.X}
	}
	x, ok := candidate.Normalized()
	if !ok {
		x = geom.UnitX
	}
	y, ok := z.Cross(x).Normalized()
	if !ok {
		y = geom.UnitY
	}
	return x, y
}
