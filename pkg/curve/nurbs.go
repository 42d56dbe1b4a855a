package curve

import (
	"fmt"
	"math"

	"github.com/chazu/ghx/pkg/geom"
)

// NURBS is a (possibly rational) B-spline curve of a given degree.
// Weights is nil for a plain (non-rational) B-spline.
type NURBS struct {
	Degree        int
	ControlPoints []geom.Point3
	Knots         []float64
	Weights       []float64
}

// NewNURBS validates and constructs a NURBS curve. The knot vector
// must have length len(controlPoints)+degree+1 and be non-decreasing;
// weights, if supplied, must be finite and positive and match the
// control point count.
func NewNURBS(degree int, controlPoints []geom.Point3, knots []float64, weights []float64) (NURBS, error) {
	if len(controlPoints) < 2 {
		return NURBS{}, fmt.Errorf("curve: nurbs requires at least 2 control points, got %d", len(controlPoints))
	}
	if degree < 1 {
		return NURBS{}, fmt.Errorf("curve: nurbs degree must be >= 1, got %d", degree)
	}
	if degree >= len(controlPoints) {
		return NURBS{}, fmt.Errorf("curve: nurbs degree (%d) must be < control point count (%d)", degree, len(controlPoints))
	}

	expectedKnots := len(controlPoints) + degree + 1
	if len(knots) != expectedKnots {
		return NURBS{}, fmt.Errorf("curve: nurbs knot length must be %d, got %d", expectedKnots, len(knots))
	}
	if !geom.IsNonDecreasingKnots(knots) {
		return NURBS{}, fmt.Errorf("curve: nurbs knots must be non-decreasing")
	}

	if weights != nil {
		if len(weights) != len(controlPoints) {
			return NURBS{}, fmt.Errorf("curve: nurbs weights length must match control point count")
		}
		for _, w := range weights {
			if !math.IsFinite(w) || w <= 0 {
				return NURBS{}, fmt.Errorf("curve: nurbs weights must be finite and > 0")
			}
		}
	}

	return NURBS{
		Degree:        degree,
		ControlPoints: append([]geom.Point3(nil), controlPoints...),
		Knots:         append([]float64(nil), knots...),
		Weights:       append([]float64(nil), weights...),
	}, nil
}

func (n NURBS) Domain() (float64, float64) {
	if !n.valid() {
		return 0, 0
	}
	return n.Knots[n.Degree], n.Knots[len(n.ControlPoints)]
}

func (n NURBS) valid() bool {
	p := n.Degree
	return len(n.ControlPoints) >= 2 && p >= 1 && p < len(n.ControlPoints) &&
		len(n.Knots) == len(n.ControlPoints)+p+1 && geom.IsNonDecreasingKnots(n.Knots)
}

// IsClosed reports whether the curve's endpoints coincide within
// geom.ToleranceDefault.
func (n NURBS) IsClosed() bool {
	a, b := n.Domain()
	span := b - a
	if math.IsNaN(span) || span == 0 {
		return false
	}
	return geom.ToleranceDefault.ApproxEqualPoint3(n.PointAt(a), n.PointAt(b))
}

func (n NURBS) PointAt(t float64) geom.Point3 {
	if len(n.ControlPoints) == 0 {
		return geom.Origin
	}
	if !n.valid() {
		return n.ControlPoints[0]
	}

	a, b := n.Domain()
	u := t
	if u <= a {
		u = a
	} else if u >= b {
		u = b
	}

	p := n.Degree
	nCtrl := len(n.ControlPoints) - 1
	span := geom.FindSpan(nCtrl, p, u, n.Knots)

	if len(n.Weights) == len(n.ControlPoints) {
		d := make([]geom.HPoint4, p+1)
		for j := 0; j <= p; j++ {
			idx := span - p + j
			w := n.Weights[idx]
			pt := n.ControlPoints[idx]
			d[j] = geom.NewHPoint4(pt.X*w, pt.Y*w, pt.Z*w, w)
		}
		geom.DeBoor(d, span, p, u, n.Knots)
		if pt, ok := d[p].ToPoint3(); ok {
			return pt
		}
		return n.ControlPoints[0]
	}

	d := make([]geom.HPoint4, p+1)
	for j := 0; j <= p; j++ {
		idx := span - p + j
		pt := n.ControlPoints[idx]
		d[j] = geom.NewHPoint4(pt.X, pt.Y, pt.Z, 1)
	}
	geom.DeBoor(d, span, p, u, n.Knots)
	return geom.Point3{X: d[p].X, Y: d[p].Y, Z: d[p].Z}
}

// DerivativeAt computes the analytic first derivative via de Boor's
// algorithm on the hodograph control net (quotient rule for the
// rational case).
func (n NURBS) DerivativeAt(t float64) geom.Vec3 {
	if len(n.ControlPoints) == 0 || n.Degree == 0 || !n.valid() {
		return geom.Zero
	}

	p := n.Degree
	a, b := n.Domain()
	u := math.Max(a, math.Min(b, t))

	nCtrl := len(n.ControlPoints) - 1
	span := geom.FindSpan(nCtrl, p, u, n.Knots)

	if len(n.Weights) == len(n.ControlPoints) {
		d := make([]geom.HPoint4, p+1)
		for j := 0; j <= p; j++ {
			idx := span - p + j
			w := n.Weights[idx]
			pt := n.ControlPoints[idx]
			d[j] = geom.NewHPoint4(pt.X*w, pt.Y*w, pt.Z*w, w)
		}

		dPrime := make([]geom.HPoint4, p)
		for j := 0; j < p; j++ {
			i := span - p + j
			denom := n.Knots[i+p+1] - n.Knots[i+1]
			factor := 0.0
			if math.Abs(denom) > 1e-14 {
				factor = float64(p) / denom
			}
			dPrime[j] = geom.NewHPoint4(
				(d[j+1].X-d[j].X)*factor,
				(d[j+1].Y-d[j].Y)*factor,
				(d[j+1].Z-d[j].Z)*factor,
				(d[j+1].W-d[j].W)*factor,
			)
		}

		geom.DeBoor(d, span, p, u, n.Knots)
		curveVal := d[p]

		if p >= 1 && len(dPrime) > 0 {
			geom.DeBoor(dPrime, span, p-1, u, n.Knots)
			derivHom := dPrime[p-1]
			w := curveVal.W
			wPrime := derivHom.W
			if math.Abs(w) > 1e-14 {
				wSq := w * w
				return geom.Vec3{
					X: (derivHom.X*w - curveVal.X*wPrime) / wSq,
					Y: (derivHom.Y*w - curveVal.Y*wPrime) / wSq,
					Z: (derivHom.Z*w - curveVal.Z*wPrime) / wSq,
				}
			}
		}
		return geom.Zero
	}

	dPrime := make([]geom.HPoint4, p)
	for j := 0; j < p; j++ {
		i := span - p + j
		denom := n.Knots[i+p+1] - n.Knots[i+1]
		factor := 0.0
		if math.Abs(denom) > 1e-14 {
			factor = float64(p) / denom
		}
		p0 := n.ControlPoints[i]
		p1 := n.ControlPoints[i+1]
		dPrime[j] = geom.NewHPoint4((p1.X-p0.X)*factor, (p1.Y-p0.Y)*factor, (p1.Z-p0.Z)*factor, 1)
	}
	geom.DeBoor(dPrime, span, p-1, u, n.Knots)
	return geom.Vec3{X: dPrime[p-1].X, Y: dPrime[p-1].Y, Z: dPrime[p-1].Z}
}

// SecondDerivativeAt falls back to the finite-difference default; the
// hodograph-of-a-hodograph analytic form is not worth the bookkeeping
// for a quantity only used as a curvature estimate.
func (n NURBS) SecondDerivativeAt(t float64) geom.Vec3 {
	a, b := n.Domain()
	return Base{PointFn: n.PointAt, DomainStart: a, DomainEnd: b, Closed: n.IsClosed()}.SecondDerivativeAt(t)
}

func (n NURBS) CacheKey() uint64 {
	h := geom.NewContentHash('N').WriteInt(n.Degree).WriteInt(len(n.ControlPoints)).WriteInt(len(n.Weights))
	for _, p := range n.ControlPoints {
		h = h.WritePoint3(p)
	}
	for _, k := range n.Knots {
		h = h.WriteFloat64(k)
	}
	for _, w := range n.Weights {
		h = h.WriteFloat64(w)
	}
	return h.Sum()
}

// KnotMultiplicities groups consecutive equal (within tol) knots and
// reports each distinct value's multiplicity.
func (n NURBS) KnotMultiplicities(tol geom.Tolerance) []KnotMultiplicity {
	if len(n.Knots) == 0 {
		return nil
	}
	var out []KnotMultiplicity
	current := n.Knots[0]
	count := 1
	for _, k := range n.Knots[1:] {
		if tol.ApproxEqual(k, current) {
			count++
		} else {
			out = append(out, KnotMultiplicity{Value: current, Count: count})
			current = k
			count = 1
		}
	}
	out = append(out, KnotMultiplicity{Value: current, Count: count})
	return out
}

// KnotMultiplicity is a distinct knot value and how many times it
// repeats in the knot vector.
type KnotMultiplicity struct {
	Value float64
	Count int
}

// ContinuityOrderAt returns the geometric continuity order at an
// interior knot value, or false at the domain endpoints or when the
// knot reaches full multiplicity (degree+1, a break point).
func (n NURBS) ContinuityOrderAt(knot float64, tol geom.Tolerance) (int, bool) {
	a, b := n.Domain()
	if tol.ApproxEqual(knot, a) || tol.ApproxEqual(knot, b) {
		return 0, false
	}
	for _, m := range n.KnotMultiplicities(tol) {
		if tol.ApproxEqual(m.Value, knot) {
			if m.Count >= n.Degree+1 {
				return 0, false
			}
			return n.Degree - m.Count, true
		}
	}
	return 0, false
}

var _ Curve = NURBS{}
