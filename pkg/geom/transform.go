package geom

import "math"

// Transform is a 4x4 row-major affine matrix.
type Transform struct {
	m [4][4]float64
}

// Identity returns the identity transform.
func Identity() Transform {
	var t Transform
	for i := 0; i < 4; i++ {
		t.m[i][i] = 1
	}
	return t
}

// FromAxes builds a transform from an origin and three (expected
// orthonormal) axes.
func FromAxes(origin Point3, xAxis, yAxis, zAxis Vec3) Transform {
	return Transform{m: [4][4]float64{
		{xAxis.X, yAxis.X, zAxis.X, origin.X},
		{xAxis.Y, yAxis.Y, zAxis.Y, origin.Y},
		{xAxis.Z, yAxis.Z, zAxis.Z, origin.Z},
		{0, 0, 0, 1},
	}}
}

// Translate returns a translation transform.
func Translate(offset Vec3) Transform {
	t := Identity()
	t.m[0][3] = offset.X
	t.m[1][3] = offset.Y
	t.m[2][3] = offset.Z
	return t
}

// Scale returns a non-uniform scale transform.
func Scale(sx, sy, sz float64) Transform {
	var t Transform
	t.m[0][0] = sx
	t.m[1][1] = sy
	t.m[2][2] = sz
	t.m[3][3] = 1
	return t
}

// UniformScale returns a uniform scale transform.
func UniformScale(s float64) Transform { return Scale(s, s, s) }

// RotateX returns a rotation about the X axis by angle radians.
func RotateX(angle float64) Transform {
	c, s := math.Cos(angle), math.Sin(angle)
	t := Identity()
	t.m[1][1], t.m[1][2] = c, -s
	t.m[2][1], t.m[2][2] = s, c
	return t
}

// RotateY returns a rotation about the Y axis by angle radians.
func RotateY(angle float64) Transform {
	c, s := math.Cos(angle), math.Sin(angle)
	t := Identity()
	t.m[0][0], t.m[0][2] = c, s
	t.m[2][0], t.m[2][2] = -s, c
	return t
}

// RotateZ returns a rotation about the Z axis by angle radians.
func RotateZ(angle float64) Transform {
	c, s := math.Cos(angle), math.Sin(angle)
	t := Identity()
	t.m[0][0], t.m[0][1] = c, -s
	t.m[1][0], t.m[1][1] = s, c
	return t
}

// RotateAxis returns the Rodrigues rotation of angle radians about axis,
// or false if axis is degenerate.
func RotateAxis(axis Vec3, angle float64) (Transform, bool) {
	u, ok := axis.Normalized()
	if !ok {
		return Transform{}, false
	}
	c, s := math.Cos(angle), math.Sin(angle)
	tt := 1 - c
	x, y, z := u.X, u.Y, u.Z

	var m Transform
	m.m[0][0], m.m[0][1], m.m[0][2] = tt*x*x+c, tt*x*y-s*z, tt*x*z+s*y
	m.m[1][0], m.m[1][1], m.m[1][2] = tt*x*y+s*z, tt*y*y+c, tt*y*z-s*x
	m.m[2][0], m.m[2][1], m.m[2][2] = tt*x*z-s*y, tt*y*z+s*x, tt*z*z+c
	m.m[3][3] = 1
	return m, true
}

// Compose returns self∘other, i.e. applying the result transforms a
// point by other first, then by self.
func (t Transform) Compose(other Transform) Transform {
	var r Transform
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			r.m[i][j] = t.m[i][0]*other.m[0][j] + t.m[i][1]*other.m[1][j] +
				t.m[i][2]*other.m[2][j] + t.m[i][3]*other.m[3][j]
		}
	}
	return r
}

// Mul is an alias for Compose, matching the common t1.Mul(t2) usage.
func (t Transform) Mul(other Transform) Transform { return t.Compose(other) }

// Determinant computes the 4x4 determinant via cofactor expansion over
// the six 2x2 minors of the top two and bottom two row pairs.
func (t Transform) Determinant() float64 {
	m := &t.m
	s0 := m[0][0]*m[1][1] - m[1][0]*m[0][1]
	s1 := m[0][0]*m[1][2] - m[1][0]*m[0][2]
	s2 := m[0][0]*m[1][3] - m[1][0]*m[0][3]
	s3 := m[0][1]*m[1][2] - m[1][1]*m[0][2]
	s4 := m[0][1]*m[1][3] - m[1][1]*m[0][3]
	s5 := m[0][2]*m[1][3] - m[1][2]*m[0][3]

	c5 := m[2][2]*m[3][3] - m[3][2]*m[2][3]
	c4 := m[2][1]*m[3][3] - m[3][1]*m[2][3]
	c3 := m[2][1]*m[3][2] - m[3][1]*m[2][2]
	c2 := m[2][0]*m[3][3] - m[3][0]*m[2][3]
	c1 := m[2][0]*m[3][2] - m[3][0]*m[2][2]
	c0 := m[2][0]*m[3][1] - m[3][0]*m[2][1]

	return s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
}

// Inverse computes the inverse via the adjugate method, returning false
// when the matrix is singular (|det| < 1e-15 or non-finite).
func (t Transform) Inverse() (Transform, bool) {
	m := &t.m
	s0 := m[0][0]*m[1][1] - m[1][0]*m[0][1]
	s1 := m[0][0]*m[1][2] - m[1][0]*m[0][2]
	s2 := m[0][0]*m[1][3] - m[1][0]*m[0][3]
	s3 := m[0][1]*m[1][2] - m[1][1]*m[0][2]
	s4 := m[0][1]*m[1][3] - m[1][1]*m[0][3]
	s5 := m[0][2]*m[1][3] - m[1][2]*m[0][3]

	c5 := m[2][2]*m[3][3] - m[3][2]*m[2][3]
	c4 := m[2][1]*m[3][3] - m[3][1]*m[2][3]
	c3 := m[2][1]*m[3][2] - m[3][1]*m[2][2]
	c2 := m[2][0]*m[3][3] - m[3][0]*m[2][3]
	c1 := m[2][0]*m[3][2] - m[3][0]*m[2][2]
	c0 := m[2][0]*m[3][1] - m[3][0]*m[2][1]

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if !math.IsFinite(det) || math.Abs(det) < 1e-15 {
		return Transform{}, false
	}
	invDet := 1 / det

	var inv Transform
	inv.m[0][0] = (m[1][1]*c5 - m[1][2]*c4 + m[1][3]*c3) * invDet
	inv.m[0][1] = (-m[0][1]*c5 + m[0][2]*c4 - m[0][3]*c3) * invDet
	inv.m[0][2] = (m[3][1]*s5 - m[3][2]*s4 + m[3][3]*s3) * invDet
	inv.m[0][3] = (-m[2][1]*s5 + m[2][2]*s4 - m[2][3]*s3) * invDet

	inv.m[1][0] = (-m[1][0]*c5 + m[1][2]*c2 - m[1][3]*c1) * invDet
	inv.m[1][1] = (m[0][0]*c5 - m[0][2]*c2 + m[0][3]*c1) * invDet
	inv.m[1][2] = (-m[3][0]*s5 + m[3][2]*s2 - m[3][3]*s1) * invDet
	inv.m[1][3] = (m[2][0]*s5 - m[2][2]*s2 + m[2][3]*s1) * invDet

	inv.m[2][0] = (m[1][0]*c4 - m[1][1]*c2 + m[1][3]*c0) * invDet
	inv.m[2][1] = (-m[0][0]*c4 + m[0][1]*c2 - m[0][3]*c0) * invDet
	inv.m[2][2] = (m[3][0]*s4 - m[3][1]*s2 + m[3][3]*s0) * invDet
	inv.m[2][3] = (-m[2][0]*s4 + m[2][1]*s2 - m[2][3]*s0) * invDet

	inv.m[3][0] = (-m[1][0]*c3 + m[1][1]*c1 - m[1][2]*c0) * invDet
	inv.m[3][1] = (m[0][0]*c3 - m[0][1]*c1 + m[0][2]*c0) * invDet
	inv.m[3][2] = (-m[3][0]*s3 + m[3][1]*s1 - m[3][2]*s0) * invDet
	inv.m[3][3] = (m[2][0]*s3 - m[2][1]*s1 + m[2][2]*s0) * invDet

	return inv, true
}

// Translation returns the transform's translation component.
func (t Transform) Translation() Vec3 { return Vec3{t.m[0][3], t.m[1][3], t.m[2][3]} }

// ApplyPoint transforms a point (translation included).
func (t Transform) ApplyPoint(p Point3) Point3 {
	m := &t.m
	return Point3{
		X: m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3],
		Y: m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3],
		Z: m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3],
	}
}

// ApplyVec transforms a vector (translation excluded).
func (t Transform) ApplyVec(v Vec3) Vec3 {
	m := &t.m
	return Vec3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// Matrix returns the raw row-major 4x4 matrix.
func (t Transform) Matrix() [4][4]float64 { return t.m }
