// Package geom implements the core math layer shared by every other
// package in the kernel: vectors, points, affine transforms, bounding
// boxes, and the named tolerance set. Nothing here depends on curves,
// surfaces, or meshes — everything above this package depends on it.
package geom

import "math"

// Vec3 is a 3D displacement. Points and vectors are kept as distinct
// types so that point-point, point-vector, and vector-vector arithmetic
// cannot be confused at compile time.
type Vec3 struct {
	X, Y, Z float64
}

// Zero, UnitX, UnitY, UnitZ are the common constant vectors.
var (
	Zero  = Vec3{}
	UnitX = Vec3{X: 1}
	UnitY = Vec3{Y: 1}
	UnitZ = Vec3{Z: 1}
)

// NewVec3 constructs a vector from components.
func NewVec3(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

// Add returns the vector sum.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns the vector difference.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Neg returns the negated vector.
func (v Vec3) Neg() Vec3 { return Vec3{-v.X, -v.Y, -v.Z} }

// Scale returns the vector scaled by s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product.
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cross returns the cross product v × o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// LengthSquared returns the squared length.
func (v Vec3) LengthSquared() float64 { return v.Dot(v) }

// Length returns the Euclidean length.
func (v Vec3) Length() float64 { return math.Sqrt(v.LengthSquared()) }

// Normalized returns a unit vector in the same direction, and false if
// the vector is degenerate (zero, infinite, or NaN length).
func (v Vec3) Normalized() (Vec3, bool) {
	l := v.Length()
	if !math.IsFinite(l) || l <= 0 {
		return Vec3{}, false
	}
	return v.Scale(1 / l), true
}

// Lerp linearly interpolates between v and o: v*(1-t) + o*t.
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return Vec3{
		X: v.X + (o.X-v.X)*t,
		Y: v.Y + (o.Y-v.Y)*t,
		Z: v.Z + (o.Z-v.Z)*t,
	}
}

// Min returns the componentwise minimum.
func (v Vec3) Min(o Vec3) Vec3 {
	return Vec3{math.Min(v.X, o.X), math.Min(v.Y, o.Y), math.Min(v.Z, o.Z)}
}

// Max returns the componentwise maximum.
func (v Vec3) Max(o Vec3) Vec3 {
	return Vec3{math.Max(v.X, o.X), math.Max(v.Y, o.Y), math.Max(v.Z, o.Z)}
}

// IsFinite reports whether all components are finite.
func (v Vec3) IsFinite() bool {
	return math.IsFinite(v.X) && math.IsFinite(v.Y) && math.IsFinite(v.Z)
}

// Point3 is an affine point. Point3 − Point3 = Vec3; Point3 + Vec3 = Point3.
type Point3 struct {
	X, Y, Z float64
}

// Origin is the zero point.
var Origin = Point3{}

// NewPoint3 constructs a point from components.
func NewPoint3(x, y, z float64) Point3 { return Point3{X: x, Y: y, Z: z} }

// Add returns the point translated by v.
func (p Point3) Add(v Vec3) Point3 { return Point3{p.X + v.X, p.Y + v.Y, p.Z + v.Z} }

// Sub returns the point translated by the negation of v.
func (p Point3) Sub(v Vec3) Point3 { return Point3{p.X - v.X, p.Y - v.Y, p.Z - v.Z} }

// SubPoint returns the displacement from o to p (p − o).
func (p Point3) SubPoint(o Point3) Vec3 { return Vec3{p.X - o.X, p.Y - o.Y, p.Z - o.Z} }

// Vec3 reinterprets the point as a position vector from the origin.
func (p Point3) Vec3() Vec3 { return Vec3{p.X, p.Y, p.Z} }

// Lerp linearly interpolates between p and o.
func (p Point3) Lerp(o Point3, t float64) Point3 {
	return Point3{
		X: p.X + (o.X-p.X)*t,
		Y: p.Y + (o.Y-p.Y)*t,
		Z: p.Z + (o.Z-p.Z)*t,
	}
}

// DistanceTo returns the Euclidean distance to o.
func (p Point3) DistanceTo(o Point3) float64 { return p.SubPoint(o).Length() }

// DistanceSquaredTo returns the squared Euclidean distance to o.
func (p Point3) DistanceSquaredTo(o Point3) float64 { return p.SubPoint(o).LengthSquared() }

// IsFinite reports whether all components are finite.
func (p Point3) IsFinite() bool {
	return math.IsFinite(p.X) && math.IsFinite(p.Y) && math.IsFinite(p.Z)
}

// PointFromVec3 reinterprets a position vector as a point.
func PointFromVec3(v Vec3) Point3 { return Point3{v.X, v.Y, v.Z} }
