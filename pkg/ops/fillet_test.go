package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/ghx/pkg/geom"
	"github.com/chazu/ghx/pkg/kernel"
)

func TestPolylineFilletRoundsRightAngleCorner(t *testing.T) {
	tol := geom.ToleranceDefault
	points := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(2, 0, 0),
		geom.NewPoint3(2, 2, 0),
	}

	result, diag, err := PolylineFillet(points, false, PolylineFilletOptions{Radius: 0.5, Segments: 4}, tol)
	require.NoError(t, err)

	assert.Equal(t, 1, diag.CornerCount)
	assert.Equal(t, 1, diag.FilletedCorners)
	assert.Equal(t, 0, diag.SkippedCorners)
	assert.Greater(t, len(result), len(points))
	assert.True(t, tol.ApproxEqualPoint3(result[0], points[0]))
	assert.True(t, tol.ApproxEqualPoint3(result[len(result)-1], points[len(points)-1]))
}

func TestPolylineFilletChamferWithSingleSegment(t *testing.T) {
	tol := geom.ToleranceDefault
	points := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(2, 0, 0),
		geom.NewPoint3(2, 2, 0),
	}
	result, diag, err := PolylineFillet(points, false, PolylineFilletOptions{Radius: 0.5, Segments: 1}, tol)
	require.NoError(t, err)
	assert.Equal(t, 1, diag.FilletedCorners)
	assert.Equal(t, 4, len(result))
}

func TestPolylineFilletClampsOversizedRadius(t *testing.T) {
	tol := geom.ToleranceDefault
	points := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(1, 0, 0),
		geom.NewPoint3(1, 1, 0),
	}
	_, diag, err := PolylineFillet(points, false, PolylineFilletOptions{Radius: 10, Segments: 2}, tol)
	require.NoError(t, err)
	assert.Equal(t, 1, diag.ClampedCorners)
}

func TestPolylineFilletRejectsNonPositiveRadius(t *testing.T) {
	tol := geom.ToleranceDefault
	points := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(1, 0, 0),
		geom.NewPoint3(1, 1, 0),
	}
	_, _, err := PolylineFillet(points, false, PolylineFilletOptions{Radius: 0}, tol)
	require.Error(t, err)
}

func meshFilletQuad() *kernel.Mesh {
	positions := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(1, 0, 0),
		geom.NewPoint3(1, 1, 0),
		geom.NewPoint3(0, 1, 0),
	}
	return &kernel.Mesh{
		Positions: positions,
		Indices:   []int{0, 1, 2, 0, 2, 3},
	}
}

func TestMeshFilletHingeEdge(t *testing.T) {
	tol := geom.ToleranceDefault
	mesh := meshFilletQuad()

	out, diag, err := MeshFillet(mesh, []HingeEdge{{A: 0, B: 2}}, MeshFilletOptions{Radius: 0.1, Segments: 1}, tol)
	require.NoError(t, err)
	assert.Equal(t, 1, diag.ProcessedEdges)
	assert.Equal(t, 0, diag.SkippedEdges)
	assert.False(t, out.IsEmpty())
}

func TestMeshFilletSkipsNonHingeEdge(t *testing.T) {
	tol := geom.ToleranceDefault
	mesh := meshFilletQuad()

	_, diag, err := MeshFillet(mesh, []HingeEdge{{A: 0, B: 1}}, MeshFilletOptions{Radius: 0.1, Segments: 1}, tol)
	require.NoError(t, err)
	assert.Equal(t, 1, diag.SkippedEdges)
	assert.Equal(t, 0, diag.ProcessedEdges)
}

func TestMeshFilletRejectsEmptyMesh(t *testing.T) {
	tol := geom.ToleranceDefault
	_, _, err := MeshFillet(&kernel.Mesh{}, nil, MeshFilletOptions{Radius: 0.1}, tol)
	require.Error(t, err)
}
