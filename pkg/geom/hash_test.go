package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentHashDeterministic(t *testing.T) {
	a := NewContentHash('L').WritePoint3(Origin).WritePoint3(NewPoint3(1, 2, 3)).Sum()
	b := NewContentHash('L').WritePoint3(Origin).WritePoint3(NewPoint3(1, 2, 3)).Sum()
	assert.Equal(t, a, b)
}

func TestContentHashDiffersByTag(t *testing.T) {
	a := NewContentHash('L').WriteFloat64(1.0).Sum()
	b := NewContentHash('C').WriteFloat64(1.0).Sum()
	assert.NotEqual(t, a, b)
}

func TestContentHashDiffersByValue(t *testing.T) {
	a := NewContentHash('L').WriteFloat64(1.0).Sum()
	b := NewContentHash('L').WriteFloat64(2.0).Sum()
	assert.NotEqual(t, a, b)
}
