package geom

import "math"

// Quantizer maps floating-point coordinates onto an integer lattice at a
// fixed resolution derived from a weld tolerance. The mesh weld table
// routes coordinates through a Quantizer instead of hashing raw floats,
// so that values within tolerance of each other always collide to the
// same key. Cache keys do not: ContentHash hashes raw float64 bits.
type Quantizer struct {
	multiplier float64
}

// NewQuantizer derives a quantizer from a weld tolerance: coordinates
// within tol of each other are guaranteed to land on the same or an
// adjacent lattice cell.
func NewQuantizer(tol Tolerance) Quantizer {
	eps := tol.Eps()
	if eps <= 0 || !math.IsFinite(eps) {
		eps = ToleranceWeld.Eps()
	}
	return Quantizer{multiplier: 1 / eps}
}

// Key quantizes a point to a lattice key suitable for map lookup.
func (q Quantizer) Key(p Point3) [3]int64 {
	return [3]int64{
		int64(math.Round(p.X * q.multiplier)),
		int64(math.Round(p.Y * q.multiplier)),
		int64(math.Round(p.Z * q.multiplier)),
	}
}

// Key2 quantizes a 2D point (u,v) to a lattice key.
func (q Quantizer) Key2(u, v float64) [2]int64 {
	return [2]int64{
		int64(math.Round(u * q.multiplier)),
		int64(math.Round(v * q.multiplier)),
	}
}

// NeighborKeys returns the 27 lattice keys around p (p's own cell plus
// its 26 neighbors), used by the weld hash to catch points that
// straddle a cell boundary.
func (q Quantizer) NeighborKeys(p Point3) [27][3]int64 {
	center := q.Key(p)
	var out [27][3]int64
	i := 0
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				out[i] = [3]int64{center[0] + dx, center[1] + dy, center[2] + dz}
				i++
			}
		}
	}
	return out
}
