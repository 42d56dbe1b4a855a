package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/ghx/pkg/geom"
)

func TestPipeStraightRail(t *testing.T) {
	tol := geom.ToleranceDefault
	rail := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(0, 0, 2),
	}
	radii := []PipeRadiusStop{
		{Parameter: 0, Radius: 0.5},
		{Parameter: 1, Radius: 0.5},
	}

	mesh, _, err := Pipe(rail, radii, PipeOptions{RadialSegments: 8, CapStart: true, CapEnd: true}, tol)
	require.NoError(t, err)

	assert.Equal(t, 32, mesh.TriangleCount())
}

func TestPipeDefaultsTooFewRadialSegments(t *testing.T) {
	tol := geom.ToleranceDefault
	rail := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(0, 0, 2),
	}
	radii := []PipeRadiusStop{{Parameter: 0, Radius: 0.5}, {Parameter: 1, Radius: 0.5}}
	mesh, _, err := Pipe(rail, radii, PipeOptions{RadialSegments: 2}, tol)
	require.NoError(t, err)
	assert.False(t, mesh.IsEmpty())
}

func TestPipeRejectsNonPositiveRadius(t *testing.T) {
	tol := geom.ToleranceDefault
	rail := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(0, 0, 2),
	}
	radii := []PipeRadiusStop{{Parameter: 0, Radius: 0}, {Parameter: 1, Radius: 0.5}}
	_, _, err := Pipe(rail, radii, PipeOptions{RadialSegments: 8}, tol)
	require.Error(t, err)
}

func TestPipeTaperedRadius(t *testing.T) {
	tol := geom.ToleranceDefault
	rail := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(0, 0, 1),
		geom.NewPoint3(0, 0, 2),
	}
	radii := []PipeRadiusStop{
		{Parameter: 0, Radius: 0.25},
		{Parameter: 1, Radius: 0.75},
	}
	mesh, _, err := Pipe(rail, radii, PipeOptions{RadialSegments: 8}, tol)
	require.NoError(t, err)
	assert.False(t, mesh.IsEmpty())
}
