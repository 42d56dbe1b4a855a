package geom

import "math"

// fnvOffsetBasis and fnvPrime are the 64-bit FNV-1a constants.
const (
	fnvOffsetBasis uint64 = 14695981039346656037
	fnvPrime       uint64 = 1099511628211
)

// ContentHash accumulates an FNV-1a 64-bit hash over a curve's or
// surface's defining parameters, used as the stable (not
// cryptographic, fixed-seed) CacheKey for content-based memoization.
// Hashing order matters: callers must feed fields in a fixed order.
type ContentHash struct {
	h uint64
}

// NewContentHash starts a hash seeded with a variant tag byte, so that
// two different curve/surface types with coincidentally identical
// parameters never collide.
func NewContentHash(tag byte) ContentHash {
	return ContentHash{h: fnvOffsetBasis}.writeByte(tag)
}

func (c ContentHash) writeByte(b byte) ContentHash {
	h := c.h ^ uint64(b)
	h *= fnvPrime
	return ContentHash{h: h}
}

// WriteUint64 folds a raw 64-bit word into the hash, one byte at a
// time, little-endian.
func (c ContentHash) WriteUint64(v uint64) ContentHash {
	for i := 0; i < 8; i++ {
		c = c.writeByte(byte(v))
		v >>= 8
	}
	return c
}

// WriteFloat64 folds a float64 into the hash by its IEEE-754 bit
// pattern.
func (c ContentHash) WriteFloat64(v float64) ContentHash {
	return c.WriteUint64(math.Float64bits(v))
}

// WriteFloat64s folds a sequence of float64s in order.
func (c ContentHash) WriteFloat64s(vs ...float64) ContentHash {
	for _, v := range vs {
		c = c.WriteFloat64(v)
	}
	return c
}

// WriteBool folds a boolean flag into the hash.
func (c ContentHash) WriteBool(b bool) ContentHash {
	if b {
		return c.WriteUint64(1)
	}
	return c.WriteUint64(0)
}

// WriteInt folds an int into the hash.
func (c ContentHash) WriteInt(v int) ContentHash { return c.WriteUint64(uint64(v)) }

// WritePoint3 folds a point's three components in X, Y, Z order.
func (c ContentHash) WritePoint3(p Point3) ContentHash {
	return c.WriteFloat64s(p.X, p.Y, p.Z)
}

// WriteVec3 folds a vector's three components in X, Y, Z order.
func (c ContentHash) WriteVec3(v Vec3) ContentHash {
	return c.WriteFloat64s(v.X, v.Y, v.Z)
}

// Sum returns the accumulated hash.
func (c ContentHash) Sum() uint64 { return c.h }
