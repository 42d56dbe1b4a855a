package surface

import (
	"fmt"
	"math"

	"github.com/chazu/ghx/pkg/geom"
)

// NURBSPatch is a tensor-product (possibly rational) B-spline surface:
// independent degree and knot vectors per parameter direction, over a
// rectangular control net laid out row-major (NumU rows of NumV
// points each — ControlPoints[i*NumV+j] is control point (i, j)).
type NURBSPatch struct {
	DegreeU, DegreeV int
	NumU, NumV       int
	ControlPoints    []geom.Point3
	Weights          []float64
	KnotsU, KnotsV   []float64
}

// NewNURBSPatch validates and constructs a NURBSPatch.
func NewNURBSPatch(degreeU, degreeV, numU, numV int, controlPoints []geom.Point3, weights []float64, knotsU, knotsV []float64) (NURBSPatch, error) {
	if numU < 2 || numV < 2 {
		return NURBSPatch{}, fmt.Errorf("surface: nurbs patch requires at least a 2x2 control net, got %dx%d", numU, numV)
	}
	if len(controlPoints) != numU*numV {
		return NURBSPatch{}, fmt.Errorf("surface: nurbs patch control point count must be %d, got %d", numU*numV, len(controlPoints))
	}
	if degreeU < 1 || degreeU >= numU {
		return NURBSPatch{}, fmt.Errorf("surface: nurbs patch degreeU must be in [1, %d), got %d", numU, degreeU)
	}
	if degreeV < 1 || degreeV >= numV {
		return NURBSPatch{}, fmt.Errorf("surface: nurbs patch degreeV must be in [1, %d), got %d", numV, degreeV)
	}
	if len(knotsU) != numU+degreeU+1 {
		return NURBSPatch{}, fmt.Errorf("surface: nurbs patch knotsU length must be %d, got %d", numU+degreeU+1, len(knotsU))
	}
	if len(knotsV) != numV+degreeV+1 {
		return NURBSPatch{}, fmt.Errorf("surface: nurbs patch knotsV length must be %d, got %d", numV+degreeV+1, len(knotsV))
	}
	if !geom.IsNonDecreasingKnots(knotsU) || !geom.IsNonDecreasingKnots(knotsV) {
		return NURBSPatch{}, fmt.Errorf("surface: nurbs patch knots must be non-decreasing")
	}
	if weights != nil {
		if len(weights) != len(controlPoints) {
			return NURBSPatch{}, fmt.Errorf("surface: nurbs patch weights length must match control point count")
		}
		for _, w := range weights {
			if !math.IsFinite(w) || w <= 0 {
				return NURBSPatch{}, fmt.Errorf("surface: nurbs patch weights must be finite and > 0")
			}
		}
	}

	return NURBSPatch{
		DegreeU: degreeU, DegreeV: degreeV, NumU: numU, NumV: numV,
		ControlPoints: append([]geom.Point3(nil), controlPoints...),
		Weights:       append([]float64(nil), weights...),
		KnotsU:        append([]float64(nil), knotsU...),
		KnotsV:        append([]float64(nil), knotsV...),
	}, nil
}

func (p NURBSPatch) at(i, j int) geom.Point3 { return p.ControlPoints[i*p.NumV+j] }
func (p NURBSPatch) weightAt(i, j int) float64 {
	if len(p.Weights) == 0 {
		return 1
	}
	return p.Weights[i*p.NumV+j]
}

func (p NURBSPatch) DomainU() (float64, float64) { return p.KnotsU[p.DegreeU], p.KnotsU[p.NumU] }
func (p NURBSPatch) DomainV() (float64, float64) { return p.KnotsV[p.DegreeV], p.KnotsV[p.NumV] }

// PointAt evaluates the tensor-product surface by first collapsing
// each control-net row along v via de Boor, then collapsing the
// resulting column of homogeneous points along u.
func (p NURBSPatch) PointAt(u, v float64) geom.Point3 {
	a, b := p.DomainU()
	uu := math.Max(a, math.Min(b, u))
	c, d := p.DomainV()
	vv := math.Max(c, math.Min(d, v))

	spanV := geom.FindSpan(p.NumV-1, p.DegreeV, vv, p.KnotsV)
	rows := make([]geom.HPoint4, p.NumU)
	for i := 0; i < p.NumU; i++ {
		row := make([]geom.HPoint4, p.DegreeV+1)
		for j := 0; j <= p.DegreeV; j++ {
			idx := spanV - p.DegreeV + j
			w := p.weightAt(i, idx)
			pt := p.at(i, idx)
			row[j] = geom.NewHPoint4(pt.X*w, pt.Y*w, pt.Z*w, w)
		}
		geom.DeBoor(row, spanV, p.DegreeV, vv, p.KnotsV)
		rows[i] = row[p.DegreeV]
	}

	spanU := geom.FindSpan(p.NumU-1, p.DegreeU, uu, p.KnotsU)
	col := make([]geom.HPoint4, p.DegreeU+1)
	for j := 0; j <= p.DegreeU; j++ {
		col[j] = rows[spanU-p.DegreeU+j]
	}
	geom.DeBoor(col, spanU, p.DegreeU, uu, p.KnotsU)
	if pt, ok := col[p.DegreeU].ToPoint3(); ok {
		return pt
	}
	return p.at(0, 0)
}

func (p NURBSPatch) Du(u, v float64) geom.Vec3 {
	return finiteDifference(p.PointAt, u, v, 0, p.domainSpanU())
}

func (p NURBSPatch) Dv(u, v float64) geom.Vec3 {
	return finiteDifference(p.PointAt, u, v, 1, p.domainSpanV())
}

func (p NURBSPatch) domainSpanU() float64 { a, b := p.DomainU(); return b - a }
func (p NURBSPatch) domainSpanV() float64 { a, b := p.DomainV(); return b - a }

// finiteDifference computes a central difference of f with respect to
// parameter axis (0 = u, 1 = v), stepped relative to span.
func finiteDifference(f func(u, v float64) geom.Point3, u, v float64, axis int, span float64) geom.Vec3 {
	if math.IsNaN(span) || span == 0 {
		return geom.Zero
	}
	h := geom.ToleranceDerivative.RelativeTo(span)
	if h == 0 || math.IsNaN(h) {
		return geom.Zero
	}
	var p0, p1 geom.Point3
	var delta float64
	if axis == 0 {
		p0, p1 = f(u-h, v), f(u+h, v)
		delta = 2 * h
	} else {
		p0, p1 = f(u, v-h), f(u, v+h)
		delta = 2 * h
	}
	return p1.SubPoint(p0).Scale(1 / delta)
}

func (p NURBSPatch) IsUClosed() bool {
	a, b := p.DomainU()
	return geom.ToleranceDefault.ApproxEqualPoint3(p.PointAt(a, 0.5), p.PointAt(b, 0.5))
}

func (p NURBSPatch) IsVClosed() bool {
	c, d := p.DomainV()
	return geom.ToleranceDefault.ApproxEqualPoint3(p.PointAt(0.5, c), p.PointAt(0.5, d))
}

// PoleVStart/PoleVEnd report whether every control point along the
// first/last v-row coincides (a degenerate patch edge, as on a sphere
// modeled as a NURBS patch).
func (p NURBSPatch) PoleVStart() bool { return p.rowIsDegenerate(0) }
func (p NURBSPatch) PoleVEnd() bool   { return p.rowIsDegenerate(p.NumV - 1) }

func (p NURBSPatch) rowIsDegenerate(j int) bool {
	first := p.at(0, j)
	for i := 1; i < p.NumU; i++ {
		if !geom.ToleranceWeld.ApproxEqualPoint3(p.at(i, j), first) {
			return false
		}
	}
	return true
}

func (p NURBSPatch) CacheKey() uint64 {
	h := geom.NewContentHash('n').WriteInt(p.DegreeU).WriteInt(p.DegreeV).WriteInt(p.NumU).WriteInt(p.NumV)
	for _, pt := range p.ControlPoints {
		h = h.WritePoint3(pt)
	}
	for _, k := range p.KnotsU {
		h = h.WriteFloat64(k)
	}
	for _, k := range p.KnotsV {
		h = h.WriteFloat64(k)
	}
	for _, w := range p.Weights {
		h = h.WriteFloat64(w)
	}
	return h.Sum()
}

var _ Surface = NURBSPatch{}
