package boolean

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/ghx/pkg/geom"
	"github.com/chazu/ghx/pkg/kernel"
	"github.com/chazu/ghx/pkg/ops"
)

// unitCube builds a closed, capped unit cube with one corner at origin,
// translated by offset.
func unitCube(t *testing.T, offset geom.Vec3, tol geom.Tolerance) *kernel.Mesh {
	t.Helper()
	profile := []geom.Point3{
		geom.NewPoint3(0, 0, 0).Add(offset),
		geom.NewPoint3(1, 0, 0).Add(offset),
		geom.NewPoint3(1, 1, 0).Add(offset),
		geom.NewPoint3(0, 1, 0).Add(offset),
	}
	mesh, _, err := ops.Extrude(profile, geom.NewVec3(0, 0, 1), ops.ExtrudeOptions{CapStart: true, CapEnd: true}, tol)
	require.NoError(t, err)
	return mesh
}

func TestCombineUnionOfDisjointCubes(t *testing.T) {
	tol := geom.ToleranceDefault
	a := unitCube(t, geom.Zero, tol)
	b := unitCube(t, geom.NewVec3(2, 0, 0), tol)

	out, diag, err := Combine(a, b, OperationUnion, tol)
	require.NoError(t, err)

	assert.Equal(t, a.TriangleCount()+b.TriangleCount(), out.TriangleCount())
	assert.Equal(t, 0, diag.IntersectionSegmentCount)
	assert.False(t, diag.VoxelFallbackUsed)
	assert.Equal(t, 0, diag.CandidatePairCount)
}

func TestCombineRejectsEmptyMesh(t *testing.T) {
	tol := geom.ToleranceDefault
	a := unitCube(t, geom.Zero, tol)
	_, _, err := Combine(a, &kernel.Mesh{}, OperationUnion, tol)
	require.Error(t, err)
	assert.True(t, kernel.IsKind(err, kernel.ErrorKindInputShape))
}

func TestCombineRejectsNilMesh(t *testing.T) {
	tol := geom.ToleranceDefault
	a := unitCube(t, geom.Zero, tol)
	_, _, err := Combine(a, nil, OperationIntersection, tol)
	require.Error(t, err)
	assert.True(t, kernel.IsKind(err, kernel.ErrorKindInputShape))
}

func TestCombineIntersectionOfOverlappingCubes(t *testing.T) {
	tol := geom.ToleranceDefault
	a := unitCube(t, geom.Zero, tol)
	b := unitCube(t, geom.NewVec3(0.5, 0, 0), tol)

	out, diag, err := Combine(a, b, OperationIntersection, tol)
	require.NoError(t, err)
	assert.False(t, out.IsEmpty())
	assert.Greater(t, diag.CandidatePairCount, 0)
}

func TestOperationString(t *testing.T) {
	assert.Equal(t, "union", OperationUnion.String())
	assert.Equal(t, "difference", OperationDifference.String())
	assert.Equal(t, "intersection", OperationIntersection.String())
}

func TestTriTriIntersectSeparatedTriangles(t *testing.T) {
	tol := geom.ToleranceDefault
	v0, v1, v2 := geom.NewPoint3(0, 0, 0), geom.NewPoint3(1, 0, 0), geom.NewPoint3(0, 1, 0)
	u0, u1, u2 := geom.NewPoint3(10, 0, 0), geom.NewPoint3(11, 0, 0), geom.NewPoint3(10, 1, 0)
	result := triTriIntersect(v0, v1, v2, u0, u1, u2, tol)
	assert.False(t, result.Intersects)
}

func TestTriTriIntersectCrossingTriangles(t *testing.T) {
	tol := geom.ToleranceDefault
	// Triangle in the XY plane, triangle in the XZ plane, sharing a
	// segment through the middle of both.
	v0, v1, v2 := geom.NewPoint3(-1, -1, 0), geom.NewPoint3(2, -1, 0), geom.NewPoint3(-1, 2, 0)
	u0, u1, u2 := geom.NewPoint3(-1, 0, -1), geom.NewPoint3(2, 0, -1), geom.NewPoint3(-1, 0, 2)
	result := triTriIntersect(v0, v1, v2, u0, u1, u2, tol)
	assert.True(t, result.Intersects)
	assert.False(t, result.Coplanar)
}

func TestClassifyPointInsideAndOutsideCube(t *testing.T) {
	tol := geom.ToleranceDefault
	cube := unitCube(t, geom.Zero, tol)
	tree, err := buildTriangleTree(cube)
	require.NoError(t, err)

	inside := classifyPoint(geom.NewPoint3(0.5, 0.5, 0.5), cube, tree, 2, tol)
	outside := classifyPoint(geom.NewPoint3(5, 5, 5), cube, tree, 2, tol)
	assert.Equal(t, regionInside, inside)
	assert.Equal(t, regionOutside, outside)
}
