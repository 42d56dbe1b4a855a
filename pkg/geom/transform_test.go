package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransformInverse(t *testing.T) {
	tr := Translate(NewVec3(1, 2, 3))
	inv, ok := tr.Inverse()
	if !ok {
		t.Fatal("translation should be invertible")
	}
	composed := tr.Compose(inv)
	id := Identity()
	cm, im := composed.Matrix(), id.Matrix()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			assert.InDelta(t, im[i][j], cm[i][j], 1e-10)
		}
	}
}

func TestTransformInverseSingular(t *testing.T) {
	s := Scale(0, 1, 1)
	_, ok := s.Inverse()
	if ok {
		t.Fatal("expected singular scale to report non-invertible")
	}
}

func TestTransformComposeMul(t *testing.T) {
	a := RotateX(0.5)
	b := Translate(NewVec3(1, 0, 0))
	assert.Equal(t, a.Compose(b), a.Mul(b))
}

func TestTransformApplyPoint(t *testing.T) {
	tr := Translate(NewVec3(1, 2, 3))
	p := tr.ApplyPoint(Origin)
	assert.Equal(t, NewPoint3(1, 2, 3), p)
}

func TestRotateAxisIdentityAngle(t *testing.T) {
	tr, ok := RotateAxis(UnitZ, 0)
	if !ok {
		t.Fatal("expected valid rotation")
	}
	p := tr.ApplyPoint(NewPoint3(1, 0, 0))
	assert.InDelta(t, 1.0, p.X, 1e-12)
	assert.InDelta(t, 0.0, p.Y, 1e-12)
}

func TestRotateAxisDegenerate(t *testing.T) {
	if _, ok := RotateAxis(Zero, 1.0); ok {
		t.Fatal("expected degenerate axis to fail")
	}
}

func TestBBoxMethods(t *testing.T) {
	b := NewBBox(Origin, NewPoint3(2, 4, 6))
	assert.Equal(t, NewPoint3(1, 2, 3), b.Center())
	assert.Equal(t, NewVec3(2, 4, 6), b.Size())
	assert.True(t, b.Contains(NewPoint3(1, 2, 3)))
	assert.False(t, b.Contains(NewPoint3(-1, 2, 3)))
}

func TestBBoxIntersect(t *testing.T) {
	a := NewBBox(Origin, NewPoint3(2, 2, 2))
	b := NewBBox(NewPoint3(1, 1, 1), NewPoint3(3, 3, 3))
	c := NewBBox(NewPoint3(5, 5, 5), NewPoint3(6, 6, 6))

	assert.True(t, a.Intersects(b))
	assert.False(t, a.Intersects(c))

	inter, ok := a.Intersect(b)
	if !ok {
		t.Fatal("expected intersection")
	}
	assert.Equal(t, NewPoint3(1, 1, 1), inter.Min)
	assert.Equal(t, NewPoint3(2, 2, 2), inter.Max)
}

func TestToleranceOrdering(t *testing.T) {
	assert.Less(t, ToleranceZeroLength.Eps(), ToleranceDefault.Eps())
	assert.Greater(t, ToleranceDerivative.Eps(), ToleranceDefault.Eps())
}

func TestQuantizerCollidesWithinTolerance(t *testing.T) {
	q := NewQuantizer(ToleranceWeld)
	a := NewPoint3(1.0, 2.0, 3.0)
	b := NewPoint3(1.0+1e-10, 2.0, 3.0)
	assert.Equal(t, q.Key(a), q.Key(b))
}
