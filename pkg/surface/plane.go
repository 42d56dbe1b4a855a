package surface

import "github.com/chazu/ghx/pkg/geom"

// Plane is a bounded parametric plane: PointAt(u,v) = Origin + XAxis*u
// + YAxis*v, u and v each ranging over [0,1]. XAxis/YAxis encode both
// orientation and extent (they need not be unit length).
type Plane struct {
	Origin       geom.Point3
	XAxis, YAxis geom.Vec3
}

// NewPlane constructs a Plane from an origin and two edge vectors.
func NewPlane(origin geom.Point3, xAxis, yAxis geom.Vec3) Plane {
	return Plane{Origin: origin, XAxis: xAxis, YAxis: yAxis}
}

func (p Plane) PointAt(u, v float64) geom.Point3 {
	return p.Origin.Add(p.XAxis.Scale(u)).Add(p.YAxis.Scale(v))
}

func (p Plane) Du(float64, float64) geom.Vec3 { return p.XAxis }
func (p Plane) Dv(float64, float64) geom.Vec3 { return p.YAxis }

func (p Plane) DomainU() (float64, float64) { return 0, 1 }
func (p Plane) DomainV() (float64, float64) { return 0, 1 }

func (p Plane) IsUClosed() bool  { return false }
func (p Plane) IsVClosed() bool  { return false }
func (p Plane) PoleVStart() bool { return false }
func (p Plane) PoleVEnd() bool   { return false }

func (p Plane) CacheKey() uint64 {
	return geom.NewContentHash('p').WritePoint3(p.Origin).WriteVec3(p.XAxis).WriteVec3(p.YAxis).Sum()
}

var _ Surface = Plane{}
