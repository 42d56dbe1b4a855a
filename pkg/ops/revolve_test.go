package ops

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/ghx/pkg/geom"
)

func TestRevolveWedgeHalfTurn(t *testing.T) {
	tol := geom.ToleranceDefault
	profile := []geom.Point3{
		geom.NewPoint3(2, 0, 0),
		geom.NewPoint3(2, 0, 1),
		geom.NewPoint3(3, 0, 1),
		geom.NewPoint3(3, 0, 0),
		geom.NewPoint3(2, 0, 0),
	}

	opts := DefaultRevolveOptions()
	opts.MinSteps = 8
	opts.MaxSteps = 8
	opts.CapStart = true
	opts.CapEnd = true
	opts.WeldSeam = false

	mesh, diag, err := Revolve(profile, geom.Origin, geom.NewVec3(0, 0, 1), math.Pi, opts, tol)
	require.NoError(t, err)

	assert.Equal(t, 8, diag.Steps)
	assert.True(t, diag.CappedStart)
	assert.True(t, diag.CappedEnd)
	assert.False(t, diag.SeamWelded)
	assert.Equal(t, 0, diag.NonManifoldEdgeCount)
	assert.False(t, mesh.IsEmpty())
}

func TestRevolveRejectsZeroAngle(t *testing.T) {
	tol := geom.ToleranceDefault
	profile := []geom.Point3{
		geom.NewPoint3(1, 0, 0),
		geom.NewPoint3(1, 0, 1),
	}
	_, _, err := Revolve(profile, geom.Origin, geom.NewVec3(0, 0, 1), 0, DefaultRevolveOptions(), tol)
	require.Error(t, err)
}

func TestRevolveFullTurnWeldsSeam(t *testing.T) {
	tol := geom.ToleranceDefault
	profile := []geom.Point3{
		geom.NewPoint3(1, 0, 0),
		geom.NewPoint3(1, 0, 1),
	}
	opts := DefaultRevolveOptions()
	opts.WeldSeam = true
	mesh, diag, err := Revolve(profile, geom.Origin, geom.NewVec3(0, 0, 1), 2*math.Pi, opts, tol)
	require.NoError(t, err)
	assert.True(t, diag.SeamWelded)
	assert.False(t, mesh.IsEmpty())
}
