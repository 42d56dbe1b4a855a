package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec3Arithmetic(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(4, 5, 6)

	assert.Equal(t, NewVec3(5, 7, 9), a.Add(b))
	assert.Equal(t, NewVec3(3, 3, 3), b.Sub(a))
	assert.Equal(t, NewVec3(2, 4, 6), a.Scale(2))
	assert.Equal(t, NewVec3(-1, -2, -3), a.Neg())
}

func TestVec3Lerp(t *testing.T) {
	a := Zero
	b := NewVec3(10, 20, 30)

	assert.Equal(t, a, a.Lerp(b, 0))
	assert.Equal(t, b, a.Lerp(b, 1))
	assert.Equal(t, NewVec3(5, 10, 15), a.Lerp(b, 0.5))
}

func TestVec3Normalized(t *testing.T) {
	v := NewVec3(3, 0, 4)
	n, ok := v.Normalized()
	if !ok {
		t.Fatal("expected normalization to succeed")
	}
	assert.InDelta(t, 1.0, n.Length(), 1e-12)

	if _, ok := Zero.Normalized(); ok {
		t.Fatal("zero vector should not normalize")
	}
}

func TestPoint3Arithmetic(t *testing.T) {
	p := NewPoint3(1, 2, 3)
	v := NewVec3(1, 1, 1)

	assert.Equal(t, NewPoint3(2, 3, 4), p.Add(v))
	assert.Equal(t, NewPoint3(0, 1, 2), p.Sub(v))

	q := NewPoint3(4, 5, 6)
	assert.Equal(t, NewVec3(3, 3, 3), q.SubPoint(p))
}

func TestVec3Cross(t *testing.T) {
	assert.Equal(t, UnitZ, UnitX.Cross(UnitY))
}
