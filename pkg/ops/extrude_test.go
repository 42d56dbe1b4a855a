package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/ghx/pkg/geom"
	"github.com/chazu/ghx/pkg/kernel"
)

func TestExtrudeSquarePrism(t *testing.T) {
	tol := geom.ToleranceDefault
	profile := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(1, 0, 0),
		geom.NewPoint3(1, 1, 0),
		geom.NewPoint3(0, 1, 0),
	}

	mesh, diag, err := Extrude(profile, geom.NewVec3(0, 0, 1), ExtrudeOptions{CapStart: true, CapEnd: true}, tol)
	require.NoError(t, err)

	assert.Equal(t, 12, mesh.TriangleCount())
	assert.Equal(t, 0, diag.OpenEdgeCount)
	assert.Equal(t, 0, diag.NonManifoldEdgeCount)
	assert.True(t, diag.IsManifoldClosed())
	assert.True(t, diag.CappedStart)
	assert.True(t, diag.CappedEnd)
}

func TestExtrudeOpenProfileLeavesOpenEdges(t *testing.T) {
	tol := geom.ToleranceDefault
	profile := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(1, 0, 0),
		geom.NewPoint3(1, 1, 0),
	}

	mesh, diag, err := Extrude(profile, geom.NewVec3(0, 0, 1), ExtrudeOptions{}, tol)
	require.NoError(t, err)
	assert.False(t, mesh.IsEmpty())
	assert.Greater(t, diag.OpenEdgeCount, 0)
	assert.False(t, diag.CappedStart)
	assert.False(t, diag.CappedEnd)
}

func TestExtrudeRejectsDegenerateProfile(t *testing.T) {
	tol := geom.ToleranceDefault
	profile := []geom.Point3{geom.NewPoint3(0, 0, 0), geom.NewPoint3(0, 0, 0)}
	_, _, err := Extrude(profile, geom.NewVec3(0, 0, 1), ExtrudeOptions{}, tol)
	require.Error(t, err)
	assert.True(t, kernel.IsKind(err, kernel.ErrorKindInputShape))
}

func TestExtrudeRejectsZeroVector(t *testing.T) {
	tol := geom.ToleranceDefault
	profile := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(1, 0, 0),
		geom.NewPoint3(1, 1, 0),
	}
	_, _, err := Extrude(profile, geom.NewVec3(0, 0, 0), ExtrudeOptions{}, tol)
	require.Error(t, err)
}
