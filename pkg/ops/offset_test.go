package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/ghx/pkg/geom"
	"github.com/chazu/ghx/pkg/kernel"
)

func flatQuadMesh() *kernel.Mesh {
	positions := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(1, 0, 0),
		geom.NewPoint3(1, 1, 0),
		geom.NewPoint3(0, 1, 0),
	}
	normals := make([]geom.Vec3, len(positions))
	for i := range normals {
		normals[i] = geom.UnitZ
	}
	return &kernel.Mesh{
		Positions: positions,
		Indices:   []int{0, 1, 2, 0, 2, 3},
		Normals:   normals,
	}
}

func TestOffsetQuadOutward(t *testing.T) {
	tol := geom.ToleranceDefault
	mesh := flatQuadMesh()

	out, diag, err := Offset(mesh, 0.25, tol)
	require.NoError(t, err)

	assert.Equal(t, 2, diag.OriginalTriangleCount)
	for _, p := range out.Positions {
		assert.InDelta(t, 0.25, p.Z, 1e-9)
	}
	assert.InDelta(t, 0.25, diag.Displacement.Min, 1e-9)
	assert.InDelta(t, 0.25, diag.Displacement.Max, 1e-9)
	assert.InDelta(t, 0.25, diag.Displacement.Mean, 1e-9)
}

func TestOffsetRejectsMeshWithoutNormals(t *testing.T) {
	tol := geom.ToleranceDefault
	mesh := &kernel.Mesh{
		Positions: []geom.Point3{
			geom.NewPoint3(0, 0, 0),
			geom.NewPoint3(1, 0, 0),
			geom.NewPoint3(1, 1, 0),
		},
		Indices: []int{0, 1, 2},
	}
	_, _, err := Offset(mesh, 0.25, tol)
	require.Error(t, err)
	assert.True(t, kernel.IsKind(err, kernel.ErrorKindInputShape))
}

func TestOffsetRejectsEmptyMesh(t *testing.T) {
	tol := geom.ToleranceDefault
	_, _, err := Offset(&kernel.Mesh{}, 0.25, tol)
	require.Error(t, err)
}
