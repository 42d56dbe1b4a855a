package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/ghx/pkg/geom"
)

func squareProfile(z float64) []geom.Point3 {
	return []geom.Point3{
		geom.NewPoint3(0, 0, z),
		geom.NewPoint3(1, 0, z),
		geom.NewPoint3(1, 1, z),
		geom.NewPoint3(0, 1, z),
	}
}

func TestLoftTwoSquaresWithCaps(t *testing.T) {
	tol := geom.ToleranceDefault
	profiles := [][]geom.Point3{squareProfile(0), squareProfile(2)}

	mesh, diag, err := Loft(profiles, LoftOptions{CapStart: true, CapEnd: true}, tol)
	require.NoError(t, err)
	assert.True(t, diag.CappedStart)
	assert.True(t, diag.CappedEnd)
	assert.Equal(t, 0, diag.OpenEdgeCount)
	assert.False(t, mesh.IsEmpty())
}

func TestLoftRejectsSingleProfile(t *testing.T) {
	tol := geom.ToleranceDefault
	_, _, err := Loft([][]geom.Point3{squareProfile(0)}, LoftOptions{}, tol)
	require.Error(t, err)
}

func TestLoftRejectsMismatchedPointCountsWithoutRebuild(t *testing.T) {
	tol := geom.ToleranceDefault
	triangle := []geom.Point3{
		geom.NewPoint3(0, 0, 1),
		geom.NewPoint3(1, 0, 1),
		geom.NewPoint3(0, 1, 1),
	}
	_, _, err := Loft([][]geom.Point3{squareProfile(0), triangle}, LoftOptions{}, tol)
	require.Error(t, err)
}

func TestLoftRebuildsMismatchedProfiles(t *testing.T) {
	tol := geom.ToleranceDefault
	triangle := []geom.Point3{
		geom.NewPoint3(0, 0, 1),
		geom.NewPoint3(1, 0, 1),
		geom.NewPoint3(0, 1, 1),
	}
	opts := LoftOptions{Rebuild: true, RebuildPointCount: 4}
	mesh, _, err := Loft([][]geom.Point3{squareProfile(0), triangle}, opts, tol)
	require.NoError(t, err)
	assert.False(t, mesh.IsEmpty())
}

func TestLoftAdjustSeamsRotatesToMinimizeTwist(t *testing.T) {
	tol := geom.ToleranceDefault
	a := squareProfile(0)
	b := append([]geom.Point3(nil), squareProfile(1)...)
	b = append(b[1:], b[0])

	mesh, diag, err := Loft([][]geom.Point3{a, b}, LoftOptions{AdjustSeams: true}, tol)
	require.NoError(t, err)
	assert.False(t, mesh.IsEmpty())
	assert.Equal(t, 2, len(diag.SeamRotations))
}
