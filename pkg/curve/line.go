package curve

import "github.com/chazu/ghx/pkg/geom"

// Line is a straight segment between two points.
type Line struct {
	Start, End geom.Point3
}

// NewLine constructs a Line.
func NewLine(start, end geom.Point3) Line { return Line{Start: start, End: end} }

// Direction returns End − Start (unnormalized).
func (l Line) Direction() geom.Vec3 { return l.End.SubPoint(l.Start) }

func (l Line) PointAt(t float64) geom.Point3 {
	return l.Start.Add(l.Direction().Scale(t))
}

func (l Line) Domain() (float64, float64) { return 0, 1 }

func (l Line) IsClosed() bool { return false }

func (l Line) DerivativeAt(float64) geom.Vec3 { return l.Direction() }

func (l Line) SecondDerivativeAt(float64) geom.Vec3 { return geom.Zero }

func (l Line) CacheKey() uint64 {
	return geom.NewContentHash('L').WritePoint3(l.Start).WritePoint3(l.End).Sum()
}

var _ Curve = Line{}
