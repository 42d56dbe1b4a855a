package ops

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/ghx/pkg/geom"
	"github.com/chazu/ghx/pkg/kernel"
)

func TestDeformTwistBoxHalfPi(t *testing.T) {
	tol := geom.ToleranceDefault
	profile := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(1, 0, 0),
		geom.NewPoint3(1, 1, 0),
		geom.NewPoint3(0, 1, 0),
	}
	box, _, err := Extrude(profile, geom.NewVec3(0, 0, 2), ExtrudeOptions{CapStart: true, CapEnd: true}, tol)
	require.NoError(t, err)

	twisted, diag, err := Deform(box, TwistBox(box, math.Pi/2), tol)
	require.NoError(t, err)
	assert.False(t, twisted.IsEmpty())

	assert.InDelta(t, 0, diag.Displacement.Min, 1e-9)
	assert.Greater(t, diag.Displacement.Max, 0.0)
	assert.Greater(t, diag.Displacement.Mean, 0.0)

	for i, p := range box.Positions {
		if math.Abs(p.Z) < 1e-9 {
			assert.InDelta(t, p.X, twisted.Positions[i].X, 1e-9)
			assert.InDelta(t, p.Y, twisted.Positions[i].Y, 1e-9)
		}
	}
}

func TestDeformRejectsEmptyMesh(t *testing.T) {
	tol := geom.ToleranceDefault
	_, _, err := Deform(&kernel.Mesh{}, TwistDeformer(math.Pi, 0, 1), tol)
	require.Error(t, err)
}

func TestTwistDeformerZeroAngleAtZMin(t *testing.T) {
	deformer := TwistDeformer(math.Pi, 0, 1)
	p := geom.NewPoint3(1, 0, 0)
	out := deformer(p)
	assert.InDelta(t, p.X, out.X, 1e-9)
	assert.InDelta(t, p.Y, out.Y, 1e-9)
}
