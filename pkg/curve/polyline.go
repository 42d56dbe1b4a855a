package curve

import (
	"fmt"
	"sort"

	"github.com/chazu/ghx/pkg/geom"
)

// Polyline is a chain of linear segments, arc-length parameterized
// over [0,1].
type Polyline struct {
	points            []geom.Point3
	cumulativeLengths []float64
	totalLength       float64
	closed            bool
}

// NewPolyline builds a Polyline from points, requiring at least 2. If
// closed and the caller supplied a duplicate closing point (first ==
// last), it is dropped — the closing segment is implicit.
func NewPolyline(points []geom.Point3, closed bool) (Polyline, error) {
	if len(points) < 2 {
		return Polyline{}, fmt.Errorf("curve: polyline requires at least 2 points, got %d", len(points))
	}

	pts := append([]geom.Point3(nil), points...)
	if closed && len(pts) > 2 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}

	cum := make([]float64, len(pts))
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += pts[i].SubPoint(pts[i-1]).Length()
		cum[i] = total
	}
	if closed {
		total += pts[0].SubPoint(pts[len(pts)-1]).Length()
	}

	return Polyline{points: pts, cumulativeLengths: cum, totalLength: total, closed: closed}, nil
}

// Points returns the polyline's (post-dedup) control points.
func (p Polyline) Points() []geom.Point3 { return p.points }

func (p Polyline) PointAt(t float64) geom.Point3 {
	if len(p.points) == 1 {
		return p.points[0]
	}
	if p.totalLength <= 0 {
		return p.points[0]
	}

	target := clamp01(t) * p.totalLength

	last := len(p.points) - 1
	if target >= p.cumulativeLengths[last] {
		if !p.closed {
			return p.points[last]
		}
		lastPt := p.points[last]
		first := p.points[0]
		segLen := first.SubPoint(lastPt).Length()
		if segLen == 0 {
			return lastPt
		}
		ratio := clamp01((target - p.cumulativeLengths[last]) / segLen)
		return lastPt.Lerp(first, ratio)
	}

	idx := sort.SearchFloat64s(p.cumulativeLengths, target)
	if idx == 0 {
		idx = 1
	}
	idx--

	segStart := p.points[idx]
	segEnd := p.points[idx+1]
	segLen := segEnd.SubPoint(segStart).Length()
	if segLen == 0 {
		return segStart
	}
	target -= p.cumulativeLengths[idx]
	return segStart.Lerp(segEnd, clamp01(target/segLen))
}

func (p Polyline) Domain() (float64, float64) { return 0, 1 }

func (p Polyline) IsClosed() bool { return p.closed }

func (p Polyline) DerivativeAt(t float64) geom.Vec3 {
	return Base{PointFn: p.PointAt, DomainStart: 0, DomainEnd: 1, Closed: p.closed}.DerivativeAt(t)
}

func (p Polyline) SecondDerivativeAt(t float64) geom.Vec3 {
	return Base{PointFn: p.PointAt, DomainStart: 0, DomainEnd: 1, Closed: p.closed}.SecondDerivativeAt(t)
}

func (p Polyline) CacheKey() uint64 {
	h := geom.NewContentHash('P').WriteBool(p.closed).WriteInt(len(p.points))
	for _, pt := range p.points {
		h = h.WritePoint3(pt)
	}
	return h.Sum()
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

var _ Curve = Polyline{}
