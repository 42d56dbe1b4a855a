package geom

// BBox is an axis-aligned bounding box.
type BBox struct {
	Min, Max Point3
}

// NewBBox constructs a box from explicit min/max corners.
func NewBBox(min, max Point3) BBox { return BBox{Min: min, Max: max} }

// BBoxFromPoints computes the bounding box of a point set. The second
// return value is false for an empty set.
func BBoxFromPoints(points []Point3) (BBox, bool) {
	if len(points) == 0 {
		return BBox{}, false
	}
	b := BBox{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b = b.ExpandPoint(p)
	}
	return b, true
}

// Center returns the box's center point.
func (b BBox) Center() Point3 {
	return Point3{
		X: (b.Min.X + b.Max.X) * 0.5,
		Y: (b.Min.Y + b.Max.Y) * 0.5,
		Z: (b.Min.Z + b.Max.Z) * 0.5,
	}
}

// Size returns the box's extents along each axis.
func (b BBox) Size() Vec3 { return b.Max.SubPoint(b.Min) }

// Diagonal returns the length of the box's diagonal.
func (b BBox) Diagonal() float64 { return b.Size().Length() }

// Contains reports whether p lies within the box (inclusive).
func (b BBox) Contains(p Point3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// ContainsBBox reports whether b fully contains other.
func (b BBox) ContainsBBox(other BBox) bool {
	return b.Contains(other.Min) && b.Contains(other.Max)
}

// Intersects reports whether the two boxes overlap.
func (b BBox) Intersects(other BBox) bool {
	return b.Min.X <= other.Max.X && b.Max.X >= other.Min.X &&
		b.Min.Y <= other.Max.Y && b.Max.Y >= other.Min.Y &&
		b.Min.Z <= other.Max.Z && b.Max.Z >= other.Min.Z
}

// Intersect returns the overlap of the two boxes, or false if disjoint.
func (b BBox) Intersect(other BBox) (BBox, bool) {
	if !b.Intersects(other) {
		return BBox{}, false
	}
	return BBox{
		Min: Point3{max(b.Min.X, other.Min.X), max(b.Min.Y, other.Min.Y), max(b.Min.Z, other.Min.Z)},
		Max: Point3{min(b.Max.X, other.Max.X), min(b.Max.Y, other.Max.Y), min(b.Max.Z, other.Max.Z)},
	}, true
}

// ExpandPoint returns the box grown to include p.
func (b BBox) ExpandPoint(p Point3) BBox {
	return BBox{
		Min: Point3{min(b.Min.X, p.X), min(b.Min.Y, p.Y), min(b.Min.Z, p.Z)},
		Max: Point3{max(b.Max.X, p.X), max(b.Max.Y, p.Y), max(b.Max.Z, p.Z)},
	}
}

// Expand returns the box grown uniformly by amount in every direction.
func (b BBox) Expand(amount float64) BBox {
	d := Vec3{amount, amount, amount}
	return BBox{Min: b.Min.Sub(d), Max: b.Max.Add(d)}
}

// Union returns the smallest box containing both boxes.
func (b BBox) Union(other BBox) BBox {
	return BBox{
		Min: Point3{min(b.Min.X, other.Min.X), min(b.Min.Y, other.Min.Y), min(b.Min.Z, other.Min.Z)},
		Max: Point3{max(b.Max.X, other.Max.X), max(b.Max.Y, other.Max.Y), max(b.Max.Z, other.Max.Z)},
	}
}

// TransformBy returns the axis-aligned bounding box of the box's eight
// corners after applying t (corner-rewrap).
func (b BBox) TransformBy(t Transform) BBox {
	corners := [8]Point3{
		{b.Min.X, b.Min.Y, b.Min.Z}, {b.Max.X, b.Min.Y, b.Min.Z},
		{b.Min.X, b.Max.Y, b.Min.Z}, {b.Max.X, b.Max.Y, b.Min.Z},
		{b.Min.X, b.Min.Y, b.Max.Z}, {b.Max.X, b.Min.Y, b.Max.Z},
		{b.Min.X, b.Max.Y, b.Max.Z}, {b.Max.X, b.Max.Y, b.Max.Z},
	}
	out := t.ApplyPoint(corners[0])
	result := BBox{Min: out, Max: out}
	for _, c := range corners[1:] {
		result = result.ExpandPoint(t.ApplyPoint(c))
	}
	return result
}
