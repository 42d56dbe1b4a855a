package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/ghx/pkg/geom"
)

func TestSweep1StraightRailClosedProfile(t *testing.T) {
	tol := geom.ToleranceDefault
	profile := []geom.Point3{
		geom.NewPoint3(-0.5, -0.5, 0),
		geom.NewPoint3(0.5, -0.5, 0),
		geom.NewPoint3(0.5, 0.5, 0),
		geom.NewPoint3(-0.5, 0.5, 0),
	}
	rail := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(0, 0, 1),
		geom.NewPoint3(0, 0, 2),
	}

	mesh, diag, err := Sweep1(profile, rail, Sweep1Options{CapStart: true, CapEnd: true}, tol)
	require.NoError(t, err)
	assert.False(t, mesh.IsEmpty())
	assert.True(t, diag.CappedStart)
	assert.True(t, diag.CappedEnd)
	assert.False(t, diag.RailClosed)
	assert.Equal(t, 0, diag.OpenEdgeCount)
}

func TestSweep1WithTwist(t *testing.T) {
	tol := geom.ToleranceDefault
	profile := []geom.Point3{
		geom.NewPoint3(-0.5, -0.5, 0),
		geom.NewPoint3(0.5, -0.5, 0),
		geom.NewPoint3(0.5, 0.5, 0),
		geom.NewPoint3(-0.5, 0.5, 0),
	}
	rail := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(0, 0, 2),
	}
	mesh, _, err := Sweep1(profile, rail, Sweep1Options{TwistTotalRadians: 1.0}, tol)
	require.NoError(t, err)
	assert.False(t, mesh.IsEmpty())
}

func TestSweep1RejectsDegenerateProfile(t *testing.T) {
	tol := geom.ToleranceDefault
	profile := []geom.Point3{geom.NewPoint3(0, 0, 0)}
	rail := []geom.Point3{geom.NewPoint3(0, 0, 0), geom.NewPoint3(0, 0, 1)}
	_, _, err := Sweep1(profile, rail, Sweep1Options{}, tol)
	require.Error(t, err)
}

func TestSweep2BetweenTwoParallelRails(t *testing.T) {
	tol := geom.ToleranceDefault
	profile := []geom.Point3{
		geom.NewPoint3(-0.5, 0, 0),
		geom.NewPoint3(0.5, 0, 0),
	}
	railA := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(0, 0, 2),
	}
	railB := []geom.Point3{
		geom.NewPoint3(0, 2, 0),
		geom.NewPoint3(0, 2, 2),
	}

	mesh, _, err := Sweep2(profile, railA, railB, Sweep2Options{CapStart: true, CapEnd: true}, tol)
	require.NoError(t, err)
	assert.False(t, mesh.IsEmpty())
}
