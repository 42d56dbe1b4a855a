package surface

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/ghx/pkg/curve"
	"github.com/chazu/ghx/pkg/geom"
)

// finiteDifferencePartial numerically estimates the partial along
// axis (0 = u, 1 = v) for comparison against a surface's analytic Du/Dv.
func finiteDifferencePartial(s Surface, u, v float64, axis int) geom.Vec3 {
	const h = 1e-6
	var p0, p1 geom.Point3
	if axis == 0 {
		p0, p1 = s.PointAt(u-h, v), s.PointAt(u+h, v)
	} else {
		p0, p1 = s.PointAt(u, v-h), s.PointAt(u, v+h)
	}
	return p1.SubPoint(p0).Scale(1 / (2 * h))
}

func assertPartialsMatchFiniteDifference(t *testing.T, s Surface, u, v float64) {
	t.Helper()
	du := s.Du(u, v)
	dv := s.Dv(u, v)
	fdU := finiteDifferencePartial(s, u, v, 0)
	fdV := finiteDifferencePartial(s, u, v, 1)

	assert.InDelta(t, fdU.X, du.X, 1e-4)
	assert.InDelta(t, fdU.Y, du.Y, 1e-4)
	assert.InDelta(t, fdU.Z, du.Z, 1e-4)
	assert.InDelta(t, fdV.X, dv.X, 1e-4)
	assert.InDelta(t, fdV.Y, dv.Y, 1e-4)
	assert.InDelta(t, fdV.Z, dv.Z, 1e-4)
}

func TestPlanePointAtAndPartials(t *testing.T) {
	p := NewPlane(geom.Origin, geom.NewVec3(2, 0, 0), geom.NewVec3(0, 3, 0))
	assert.Equal(t, geom.NewPoint3(1, 1.5, 0), p.PointAt(0.5, 0.5))
	assert.Equal(t, geom.NewVec3(2, 0, 0), p.Du(0.25, 0.75))
	assert.Equal(t, geom.NewVec3(0, 3, 0), p.Dv(0.25, 0.75))
	assert.False(t, p.IsUClosed())
	assert.False(t, p.IsVClosed())
	assert.False(t, p.PoleVStart())
	assert.False(t, p.PoleVEnd())
}

func TestSpherePolesAndClosure(t *testing.T) {
	s := NewSphere(geom.Origin, geom.UnitZ, 2)
	assert.True(t, s.IsUClosed())
	assert.False(t, s.IsVClosed())
	assert.True(t, s.PoleVStart())
	assert.True(t, s.PoleVEnd())

	south := s.PointAt(0.3, 0)
	north := s.PointAt(0.7, 1)
	assert.InDelta(t, 0, south.DistanceTo(geom.NewPoint3(0, 0, -2)), 1e-9)
	assert.InDelta(t, 0, north.DistanceTo(geom.NewPoint3(0, 0, 2)), 1e-9)

	for _, uv := range [][2]float64{{0.1, 0.2}, {0.4, 0.5}, {0.9, 0.8}} {
		assertPartialsMatchFiniteDifference(t, s, uv[0], uv[1])
		p := s.PointAt(uv[0], uv[1])
		assert.InDelta(t, 2.0, p.DistanceTo(geom.Origin), 1e-9)
	}
}

func TestCylinderClosureAndPartials(t *testing.T) {
	c := NewCylinder(geom.Origin, geom.UnitZ, 1.5, 4)
	assert.True(t, c.IsUClosed())
	assert.False(t, c.IsVClosed())
	assert.False(t, c.PoleVStart())
	assert.False(t, c.PoleVEnd())

	base := c.PointAt(0, 0)
	top := c.PointAt(0, 1)
	assert.InDelta(t, 0, base.Z, 1e-12)
	assert.InDelta(t, 4, top.Z, 1e-9)

	assertPartialsMatchFiniteDifference(t, c, 0.2, 0.6)
}

func TestConeApexIsPole(t *testing.T) {
	c := NewCone(geom.Origin, geom.UnitZ, 2, 3)
	assert.True(t, c.IsUClosed())
	assert.True(t, c.PoleVStart())
	assert.False(t, c.PoleVEnd())

	apex := c.PointAt(0.4, 0)
	assert.InDelta(t, 0, apex.DistanceTo(geom.Origin), 1e-9)

	base := c.PointAt(0.0, 1)
	assert.InDelta(t, 2.0, math.Hypot(base.X, base.Y), 1e-9)
	assertPartialsMatchFiniteDifference(t, c, 0.3, 0.5)
}

func TestRevolutionFullTurnIsVClosed(t *testing.T) {
	profile := curve.NewLine(geom.NewPoint3(1, 0, 0), geom.NewPoint3(2, 0, 1))
	full := NewRevolution(profile, geom.Origin, geom.UnitZ, 2*math.Pi)
	assert.True(t, full.IsVClosed())
	assert.False(t, full.IsUClosed())

	half := NewRevolution(profile, geom.Origin, geom.UnitZ, math.Pi)
	assert.False(t, half.IsVClosed())

	assertPartialsMatchFiniteDifference(t, full, 0.4, 0.3)
}

func TestRuledSurfaceBlendsEndpoints(t *testing.T) {
	a := curve.NewLine(geom.NewPoint3(0, 0, 0), geom.NewPoint3(1, 0, 0))
	b := curve.NewLine(geom.NewPoint3(0, 1, 0), geom.NewPoint3(1, 1, 0))
	r := NewRuled(a, b)

	assert.Equal(t, a.PointAt(0), r.PointAt(0, 0))
	assert.Equal(t, b.PointAt(0), r.PointAt(0, 1))
	mid := r.PointAt(0.5, 0.5)
	assert.InDelta(t, 0.5, mid.X, 1e-9)
	assert.InDelta(t, 0.5, mid.Y, 1e-9)
	assertPartialsMatchFiniteDifference(t, r, 0.3, 0.6)
}

func TestLoftSpansAcrossProfiles(t *testing.T) {
	p0 := curve.NewLine(geom.NewPoint3(0, 0, 0), geom.NewPoint3(1, 0, 0))
	p1 := curve.NewLine(geom.NewPoint3(0, 1, 0), geom.NewPoint3(1, 1, 0))
	p2 := curve.NewLine(geom.NewPoint3(0, 2, 0), geom.NewPoint3(1, 2, 0))
	l := NewLoft([]curve.Curve{p0, p1, p2})

	assert.Equal(t, p0.PointAt(0), l.PointAt(0, 0))
	assert.Equal(t, p1.PointAt(0), l.PointAt(0, 0.5))
	assert.Equal(t, p2.PointAt(0), l.PointAt(0, 1))
	assertPartialsMatchFiniteDifference(t, l, 0.5, 0.25)
}

func TestNURBSPatchDegenerateRowIsPole(t *testing.T) {
	// A cone-like 3x3 control net: the v=0 row collapses to the apex.
	apex := geom.NewPoint3(0, 0, 2)
	controlPoints := []geom.Point3{
		apex, geom.NewPoint3(1, 0, 0), geom.NewPoint3(2, 0, 0),
		apex, geom.NewPoint3(0, 1, 0), geom.NewPoint3(0, 2, 0),
		apex, geom.NewPoint3(-1, 0, 0), geom.NewPoint3(-2, 0, 0),
	}
	knotsU := []float64{0, 0, 0.5, 1, 1}
	knotsV := []float64{0, 0, 0, 1, 1, 1}
	patch, err := NewNURBSPatch(1, 2, 3, 3, controlPoints, nil, knotsU, knotsV)
	require.NoError(t, err)

	assert.True(t, patch.PoleVStart())
	assert.False(t, patch.PoleVEnd())

	apexPoint := patch.PointAt(0.5, 0)
	assert.InDelta(t, 0, apexPoint.DistanceTo(apex), 1e-9)

	assertPartialsMatchFiniteDifference(t, patch, 0.4, 0.6)
}

func TestNURBSPatchRejectsMismatchedControlPointCount(t *testing.T) {
	_, err := NewNURBSPatch(1, 1, 2, 2, []geom.Point3{geom.Origin}, nil,
		[]float64{0, 0, 1, 1}, []float64{0, 0, 1, 1})
	assert.Error(t, err)
}

func TestSurfaceCacheKeyStableAndVariantDependent(t *testing.T) {
	plane := NewPlane(geom.Origin, geom.UnitX, geom.UnitY)
	sphere := NewSphere(geom.Origin, geom.UnitZ, 1)
	assert.Equal(t, plane.CacheKey(), plane.CacheKey())
	assert.NotEqual(t, plane.CacheKey(), sphere.CacheKey())
}
