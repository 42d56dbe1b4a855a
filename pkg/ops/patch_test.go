package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/ghx/pkg/geom"
)

func TestPatchSquareWithHole(t *testing.T) {
	tol := geom.ToleranceDefault
	outer := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(2, 0, 0),
		geom.NewPoint3(2, 2, 0),
		geom.NewPoint3(0, 2, 0),
	}
	hole := []geom.Point3{
		geom.NewPoint3(0.75, 0.75, 0),
		geom.NewPoint3(1.25, 0.75, 0),
		geom.NewPoint3(1.25, 1.25, 0),
		geom.NewPoint3(0.75, 1.25, 0),
	}

	mesh, diag, err := Patch(outer, [][]geom.Point3{hole}, PatchOptions{}, tol)
	require.NoError(t, err)

	assert.Equal(t, 1, diag.HoleCount)
	assert.Equal(t, 0, diag.NonManifoldEdgeCount)
	assert.Equal(t, 8, diag.OpenEdgeCount)
	assert.False(t, mesh.IsEmpty())
}

func TestPatchRejectsNonPlanarBoundary(t *testing.T) {
	tol := geom.ToleranceDefault
	outer := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(2, 0, 0),
		geom.NewPoint3(2, 2, 5),
		geom.NewPoint3(0, 2, 0),
	}
	_, _, err := Patch(outer, nil, PatchOptions{}, tol)
	require.Error(t, err)
}

func TestPatchRejectsDegenerateBoundary(t *testing.T) {
	tol := geom.ToleranceDefault
	outer := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(1, 0, 0),
	}
	_, _, err := Patch(outer, nil, PatchOptions{}, tol)
	require.Error(t, err)
}

func TestFragmentPatchNestedLoops(t *testing.T) {
	tol := geom.ToleranceDefault
	outer := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(2, 0, 0),
		geom.NewPoint3(2, 2, 0),
		geom.NewPoint3(0, 2, 0),
	}
	hole := []geom.Point3{
		geom.NewPoint3(0.75, 0.75, 0),
		geom.NewPoint3(1.25, 0.75, 0),
		geom.NewPoint3(1.25, 1.25, 0),
		geom.NewPoint3(0.75, 1.25, 0),
	}

	mesh, diag, err := FragmentPatch([][]geom.Point3{outer, hole}, FragmentPatchOptions{}, tol)
	require.NoError(t, err)
	assert.Equal(t, 1, diag.OuterRegionCount)
	assert.Equal(t, 0, diag.RejectedIntersecting)
	assert.False(t, mesh.IsEmpty())
}

func TestFragmentPatchRejectsIntersectingLoops(t *testing.T) {
	tol := geom.ToleranceDefault
	a := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(2, 0, 0),
		geom.NewPoint3(2, 2, 0),
		geom.NewPoint3(0, 2, 0),
	}
	b := []geom.Point3{
		geom.NewPoint3(1, 1, 0),
		geom.NewPoint3(3, 1, 0),
		geom.NewPoint3(3, 3, 0),
		geom.NewPoint3(1, 3, 0),
	}
	_, diag, err := FragmentPatch([][]geom.Point3{a, b}, FragmentPatchOptions{}, tol)
	require.Error(t, err)
	assert.Equal(t, 1, diag.RejectedIntersecting)
}
