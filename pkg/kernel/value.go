package kernel

import "github.com/chazu/ghx/pkg/geom"

// ValueKind identifies which variant of Value is populated.
type ValueKind int

const (
	ValueKindNumber ValueKind = iota
	ValueKindBool
	ValueKindPoint
	ValueKindVector
	ValueKindLine
	ValueKindLegacySurface
	ValueKindMesh
	ValueKindList
	ValueKindNull
)

// Line is a start/end pair, the evaluator's representation of a line
// segment Value.
type Line struct {
	Start, End geom.Point3
}

// Value is the sum type exchanged with the evaluator (spec.md §6): one
// geometric or scalar variant per node-graph pin. Exactly the field
// matching Kind is meaningful; the rest are zero.
type Value struct {
	Kind ValueKind

	Number float64
	Bool   bool
	Point  geom.Point3
	Vector geom.Vec3
	Line   Line
	Legacy LegacySurface
	Mesh   *Mesh
	List   []Value
}

// NullValue is the value downstream nodes receive when an upstream
// operator fails (spec.md §7).
var NullValue = Value{Kind: ValueKindNull}

// NumberValue wraps a scalar.
func NumberValue(n float64) Value { return Value{Kind: ValueKindNumber, Number: n} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{Kind: ValueKindBool, Bool: b} }

// PointValue wraps a point.
func PointValue(p geom.Point3) Value { return Value{Kind: ValueKindPoint, Point: p} }

// VectorValue wraps a vector.
func VectorValue(v geom.Vec3) Value { return Value{Kind: ValueKindVector, Vector: v} }

// LineValue wraps a line segment.
func LineValue(start, end geom.Point3) Value {
	return Value{Kind: ValueKindLine, Line: Line{Start: start, End: end}}
}

// LegacySurfaceValue wraps a legacy triangle-soup surface.
func LegacySurfaceValue(s LegacySurface) Value {
	return Value{Kind: ValueKindLegacySurface, Legacy: s}
}

// MeshValue wraps a canonical mesh.
func MeshValue(m *Mesh) Value { return Value{Kind: ValueKindMesh, Mesh: m} }

// ListValue wraps an ordered aggregate.
func ListValue(items []Value) Value { return Value{Kind: ValueKindList, List: items} }

// DualOutput is what a mesh-producing operator emits: the new mesh
// variant on its M pin and the legacy surface on its historical pin
// (spec.md §6's "dual-output is explicit"), both derived from the same
// finalized Mesh and sharing the same Diagnostics.
type DualOutput struct {
	Mesh        Value
	Legacy      Value
	Diagnostics Diagnostics
}

// NewDualOutput builds a DualOutput from a finalized mesh, deriving the
// legacy surface via ToLegacySurface.
func NewDualOutput(mesh *Mesh, partName string, diag Diagnostics) DualOutput {
	return DualOutput{
		Mesh:        MeshValue(mesh),
		Legacy:      LegacySurfaceValue(mesh.ToLegacySurface(partName)),
		Diagnostics: diag,
	}
}
