package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/ghx/pkg/geom"
)

func TestRailRevolveStraightRail(t *testing.T) {
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

	mesh, diag, err := RailRevolve(profile, rail, RailRevolveOptions{CapStart: true, CapEnd: true}, tol)
	require.NoError(t, err)
	assert.False(t, mesh.IsEmpty())
	assert.True(t, diag.CappedStart)
	assert.True(t, diag.CappedEnd)
	assert.False(t, diag.RailClosed)
	assert.Equal(t, 0, diag.OpenEdgeCount)
}

func TestRailRevolveBiasesToReferenceAxis(t *testing.T) {
	tol := geom.ToleranceDefault
	profile := []geom.Point3{
		geom.NewPoint3(-0.25, -0.25, 0),
		geom.NewPoint3(0.25, -0.25, 0),
		geom.NewPoint3(0.25, 0.25, 0),
		geom.NewPoint3(-0.25, 0.25, 0),
	}
	rail := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(1, 0, 0),
		geom.NewPoint3(2, 1, 0),
	}

	opts := RailRevolveOptions{HasReference: true, ReferenceAxis: geom.NewVec3(0, 0, 1)}
	mesh, _, err := RailRevolve(profile, rail, opts, tol)
	require.NoError(t, err)
	assert.False(t, mesh.IsEmpty())
}

func TestRailRevolveRejectsDegenerateRail(t *testing.T) {
	tol := geom.ToleranceDefault
	profile := []geom.Point3{
		geom.NewPoint3(-0.25, -0.25, 0),
		geom.NewPoint3(0.25, -0.25, 0),
	}
	rail := []geom.Point3{geom.NewPoint3(0, 0, 0)}
	_, _, err := RailRevolve(profile, rail, RailRevolveOptions{}, tol)
	require.Error(t, err)
}
