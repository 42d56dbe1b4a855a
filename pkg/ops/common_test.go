package ops

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chazu/ghx/pkg/geom"
)

func TestCleanPolylineDropsDuplicatesAndDetectsClosure(t *testing.T) {
	tol := geom.ToleranceDefault
	points := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(1, 0, 0),
		geom.NewPoint3(1, 1, 0),
		geom.NewPoint3(0, 0, 0),
	}
	cleaned, closed := cleanPolyline(points, tol)
	assert.True(t, closed)
	assert.Equal(t, 3, len(cleaned))
}

func TestArcLengthRatiosSpanZeroToOne(t *testing.T) {
	points := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(1, 0, 0),
		geom.NewPoint3(3, 0, 0),
	}
	ratios := arcLengthRatios(points, false)
	assert.InDelta(t, 0, ratios[0], 1e-9)
	assert.InDelta(t, 1.0/3, ratios[1], 1e-9)
	assert.InDelta(t, 1, ratios[2], 1e-9)
}

func TestResamplePolylineOpenPreservesEndpoints(t *testing.T) {
	points := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(4, 0, 0),
	}
	out := resamplePolyline(points, 5, false)
	assert.Equal(t, 5, len(out))
	assert.InDelta(t, 0, out[0].X, 1e-9)
	assert.InDelta(t, 4, out[len(out)-1].X, 1e-9)
	assert.InDelta(t, 2, out[2].X, 1e-9)
}

func TestNewellNormalPlanarSquare(t *testing.T) {
	loop := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(1, 0, 0),
		geom.NewPoint3(1, 1, 0),
		geom.NewPoint3(0, 1, 0),
	}
	n, ok := newellNormal(loop).Normalized()
	assert.True(t, ok)
	assert.InDelta(t, 0, n.X, 1e-9)
	assert.InDelta(t, 0, n.Y, 1e-9)
	assert.InDelta(t, 1, math.Abs(n.Z), 1e-9)
}

func TestPlaneBasisOrthonormal(t *testing.T) {
	x, y := planeBasis(geom.UnitZ)
	assert.InDelta(t, 0, x.Dot(y), 1e-9)
	assert.InDelta(t, 1, x.Length(), 1e-9)
	assert.InDelta(t, 1, y.Length(), 1e-9)
}

func TestDistancePointToLine(t *testing.T) {
	d := distancePointToLine(geom.NewPoint3(3, 4, 0), geom.Origin, geom.UnitZ)
	assert.InDelta(t, 5, d, 1e-9)
}

func TestRotateVectorAboutAxisQuarterTurn(t *testing.T) {
	v := geom.NewVec3(1, 0, 0)
	out := rotateVectorAboutAxis(v, geom.UnitZ, math.Pi/2)
	assert.InDelta(t, 0, out.X, 1e-9)
	assert.InDelta(t, 1, out.Y, 1e-9)
}

func TestAppendQuadStripOpenRingTriangleCount(t *testing.T) {
	indices := appendQuadStrip(nil, 0, 4, 4, false)
	assert.Equal(t, 3*2*3, len(indices))
}

func TestAppendQuadStripClosedRingTriangleCount(t *testing.T) {
	indices := appendQuadStrip(nil, 0, 4, 4, true)
	assert.Equal(t, 4*2*3, len(indices))
}
