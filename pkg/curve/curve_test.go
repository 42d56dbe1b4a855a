package curve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/ghx/pkg/geom"
)

func TestLinePointAt(t *testing.T) {
	l := NewLine(geom.Origin, geom.NewPoint3(10, 0, 0))
	assert.Equal(t, geom.NewPoint3(5, 0, 0), l.PointAt(0.5))
	assert.Equal(t, geom.NewVec3(10, 0, 0), l.DerivativeAt(0.5))
}

func TestPolylineArcLength(t *testing.T) {
	pts := []geom.Point3{geom.Origin, geom.NewPoint3(1, 0, 0), geom.NewPoint3(1, 1, 0)}
	p, err := NewPolyline(pts, false)
	require.NoError(t, err)

	assert.Equal(t, geom.Origin, p.PointAt(0))
	assert.Equal(t, geom.NewPoint3(1, 1, 0), p.PointAt(1))
	mid := p.PointAt(0.5)
	assert.InDelta(t, 1.0, mid.X, 1e-9)
	assert.InDelta(t, 0.0, mid.Y, 1e-9)
}

func TestPolylineRejectsTooFewPoints(t *testing.T) {
	_, err := NewPolyline([]geom.Point3{geom.Origin}, false)
	assert.Error(t, err)
}

func TestPolylineClosedDropsDuplicateClosingPoint(t *testing.T) {
	pts := []geom.Point3{geom.Origin, geom.NewPoint3(1, 0, 0), geom.NewPoint3(1, 1, 0), geom.Origin}
	p, err := NewPolyline(pts, true)
	require.NoError(t, err)
	assert.Len(t, p.Points(), 3)
	assert.True(t, p.IsClosed())
}

func TestCircleIsClosedAndRadius(t *testing.T) {
	c := NewCircle(geom.Origin, geom.UnitZ, 2)
	assert.True(t, c.IsClosed())
	p0 := c.PointAt(0)
	assert.InDelta(t, 2.0, p0.DistanceTo(geom.Origin), 1e-9)
	assert.InDelta(t, 0.0, p0.Z, 1e-12)
}

func TestArcFullSweepIsClosed(t *testing.T) {
	a := NewArc(geom.Origin, geom.UnitZ, 1, 0, 2*math.Pi)
	assert.True(t, a.IsClosed())

	half := NewArc(geom.Origin, geom.UnitZ, 1, 0, math.Pi)
	assert.False(t, half.IsClosed())
}

func TestBezier2Endpoints(t *testing.T) {
	b := NewBezier2(geom.Origin, geom.NewPoint3(1, 1, 0), geom.NewPoint3(2, 0, 0))
	assert.Equal(t, geom.Origin, b.PointAt(0))
	assert.Equal(t, geom.NewPoint3(2, 0, 0), b.PointAt(1))
}

func TestBezier3Endpoints(t *testing.T) {
	b := NewBezier3(geom.Origin, geom.NewPoint3(1, 1, 0), geom.NewPoint3(2, 1, 0), geom.NewPoint3(3, 0, 0))
	assert.Equal(t, geom.Origin, b.PointAt(0))
	assert.Equal(t, geom.NewPoint3(3, 0, 0), b.PointAt(1))
}

func linearNurbsKnots(n, degree int) []float64 {
	knots := make([]float64, n+degree+1)
	for i := range knots {
		switch {
		case i < degree+1:
			knots[i] = 0
		case i >= n:
			knots[i] = 1
		default:
			knots[i] = float64(i-degree) / float64(n-degree)
		}
	}
	return knots
}

func TestNURBSLinearDegree1MatchesPolyline(t *testing.T) {
	cps := []geom.Point3{geom.Origin, geom.NewPoint3(1, 0, 0), geom.NewPoint3(2, 1, 0)}
	knots := linearNurbsKnots(len(cps), 1)
	nc, err := NewNURBS(1, cps, knots, nil)
	require.NoError(t, err)

	start, end := nc.Domain()
	assert.Equal(t, cps[0], nc.PointAt(start))
	assert.Equal(t, cps[len(cps)-1], nc.PointAt(end))
}

func TestNURBSRejectsBadDegree(t *testing.T) {
	cps := []geom.Point3{geom.Origin, geom.NewPoint3(1, 0, 0)}
	_, err := NewNURBS(0, cps, []float64{0, 0, 1, 1}, nil)
	assert.Error(t, err)

	_, err = NewNURBS(5, cps, []float64{0, 0, 1, 1}, nil)
	assert.Error(t, err)
}

func TestNURBSRejectsBadKnotLength(t *testing.T) {
	cps := []geom.Point3{geom.Origin, geom.NewPoint3(1, 0, 0), geom.NewPoint3(2, 0, 0)}
	_, err := NewNURBS(1, cps, []float64{0, 0, 1}, nil)
	assert.Error(t, err)
}

func TestNURBSRejectsNonPositiveWeights(t *testing.T) {
	cps := []geom.Point3{geom.Origin, geom.NewPoint3(1, 0, 0), geom.NewPoint3(2, 0, 0)}
	knots := linearNurbsKnots(len(cps), 1)
	_, err := NewNURBS(1, cps, knots, []float64{1, 0, 1})
	assert.Error(t, err)
}

func TestCurvatureOfCircleIsInverseRadius(t *testing.T) {
	c := NewCircle(geom.Origin, geom.UnitZ, 4)
	k, ok := Curvature(c, 0.25)
	require.True(t, ok)
	assert.InDelta(t, 0.25, k, 1e-6)
}

func TestCurvatureOfLineIsZero(t *testing.T) {
	l := NewLine(geom.Origin, geom.NewPoint3(1, 0, 0))
	k, ok := Curvature(l, 0.5)
	require.True(t, ok)
	assert.InDelta(t, 0.0, k, 1e-12)
}

func TestTessellateUniformClosedOmitsDuplicateLastPoint(t *testing.T) {
	c := NewCircle(geom.Origin, geom.UnitZ, 1)
	pts := TessellateUniform(c, 8)
	assert.Len(t, pts, 8)
}

func TestTessellateUniformOpenIncludesBothEndpoints(t *testing.T) {
	l := NewLine(geom.Origin, geom.NewPoint3(1, 0, 0))
	pts := TessellateUniform(l, 4)
	assert.Len(t, pts, 5)
	assert.Equal(t, geom.Origin, pts[0])
	assert.Equal(t, geom.NewPoint3(1, 0, 0), pts[4])
}
