// Package tessellate implements the adaptive curve polylining and
// surface grid sizing of the kernel: arc-length-seeded, chord-deviation
// refined for curves; bilinear-deviation plus edge-length driven for
// surfaces. Both route through an explicit work-stack / iteration loop
// rather than recursion, per the kernel's "no unbounded stack depth"
// design note.
package tessellate

import (
	"math"
	"sort"

	"github.com/chazu/ghx/pkg/curve"
	"github.com/chazu/ghx/pkg/geom"
)

// segmentBudgetCeilingFactor bounds the curve segment estimator's output:
// spec.md §9 leaves the ceiling unspecified and asks an implementer to
// pick one; 16x the requested MaxSegments is used throughout.
const segmentBudgetCeilingFactor = 16

// CurveOptions controls adaptive curve tessellation.
type CurveOptions struct {
	// MaxDeviation is the maximum chord-height deviation from the true
	// curve. Non-finite or <= 0 falls back to uniform tessellation.
	MaxDeviation float64
	// MaxSegments is a base cap on output segment count; the estimator
	// may raise it for long, high-curvature curves, up to
	// segmentBudgetCeilingFactor x this value.
	MaxSegments int
	// MaxDepth bounds adaptive subdivision depth per initial segment.
	MaxDepth int
	// InitialSegments is the number of arc-length-balanced breakpoints
	// seeded before adaptive refinement.
	InitialSegments int
}

// DefaultCurveOptions mirrors the original implementation's defaults.
func DefaultCurveOptions() CurveOptions {
	return CurveOptions{MaxDeviation: 0.01, MaxSegments: 128, MaxDepth: 16, InitialSegments: 1}
}

// CurveDiagnostics reports what the tessellator actually did.
type CurveDiagnostics struct {
	EstimatedSegmentBudget int
	OutputPointCount       int
	UniformFallback        bool
}

// TessellateCurve adaptively tessellates c per spec.md §4.1: arc-length/
// curvature segment-budget estimate, arc-length-balanced seeding, and
// explicit-stack probe-based refinement at 25/50/75% arc-length ratios
// within each segment.
func TessellateCurve(c curve.Curve, opts CurveOptions) ([]geom.Point3, CurveDiagnostics) {
	baseMaxSegments := opts.MaxSegments
	if baseMaxSegments < 1 {
		baseMaxSegments = 1
	}

	if !math.IsFinite(opts.MaxDeviation) || opts.MaxDeviation <= 0 {
		pts := curve.TessellateUniform(c, baseMaxSegments)
		return pts, CurveDiagnostics{EstimatedSegmentBudget: baseMaxSegments, OutputPointCount: len(pts), UniformFallback: true}
	}

	t0, t1 := c.Domain()
	span := t1 - t0
	if !math.IsFinite(span) {
		pts := curve.TessellateUniform(c, baseMaxSegments)
		return pts, CurveDiagnostics{EstimatedSegmentBudget: baseMaxSegments, OutputPointCount: len(pts), UniformFallback: true}
	}
	if span == 0 {
		return []geom.Point3{c.PointAt(t0)}, CurveDiagnostics{EstimatedSegmentBudget: 1, OutputPointCount: 1}
	}

	closed := c.IsClosed()
	if closed && baseMaxSegments < 3 {
		baseMaxSegments = 3
	}

	maxSegments := estimateCurveSegmentBudget(c, opts.MaxDeviation, baseMaxSegments)
	ceiling := baseMaxSegments * segmentBudgetCeilingFactor
	if maxSegments > ceiling {
		maxSegments = ceiling
	}

	maxPointsOutput := maxSegments
	if !closed {
		maxPointsOutput = maxSegments + 1
	}
	maxPointsInternal := maxPointsOutput
	if closed {
		maxPointsInternal = maxPointsOutput + 1
	}

	maxDepth := opts.MaxDepth
	if maxDepth < 1 {
		maxDepth = 1
	}

	initialSegments := opts.InitialSegments
	if closed {
		if initialSegments < 3 {
			initialSegments = 3
		}
	} else if initialSegments < 1 {
		initialSegments = 1
	}
	if initialSegments > maxSegments {
		initialSegments = maxSegments
	}

	initialParams := initialCurveParametersArcLength(c, t0, t1, initialSegments)

	points := make([]geom.Point3, 0, maxPointsInternal)
	points = append(points, c.PointAt(t0))

	for segIdx := 0; segIdx < initialSegments; segIdx++ {
		segmentsRemaining := initialSegments - segIdx
		requiredPointsRemaining := segmentsRemaining
		maxPointsThisSegment := maxPointsInternal - maxInt(requiredPointsRemaining-1, 0)
		if maxPointsThisSegment < 0 {
			maxPointsThisSegment = 0
		}

		a := initialParams[segIdx]
		b := initialParams[segIdx+1]
		pa := c.PointAt(a)
		pb := c.PointAt(b)

		points = tessellateSegmentAdaptive(c, a, b, pa, pb, opts.MaxDeviation, maxDepth, maxPointsThisSegment, points)
	}

	if closed && len(points) > 1 {
		points = points[:len(points)-1]
	}

	return points, CurveDiagnostics{EstimatedSegmentBudget: maxSegments, OutputPointCount: len(points)}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func estimateCurveSegmentBudget(c curve.Curve, maxDeviation float64, baseMaxSegments int) int {
	lengthSamples := clampInt(baseMaxSegments*4, 32, 1024)
	arcLength := curveArcLength(c, lengthSamples)
	if !math.IsFinite(arcLength) || arcLength <= 0 {
		return baseMaxSegments
	}

	curvatureSamples := clampInt(baseMaxSegments*2, 16, 512)
	maxCurvature := estimateMaxCurvature(c, curvatureSamples)
	if !math.IsFinite(maxCurvature) || maxCurvature <= 0 {
		return baseMaxSegments
	}

	maxChord := 2 * math.Sqrt(2*maxDeviation/maxCurvature)
	if !math.IsFinite(maxChord) || maxChord <= 0 {
		return baseMaxSegments
	}

	required := int(math.Ceil(arcLength / maxChord))
	if required > baseMaxSegments {
		return required
	}
	return baseMaxSegments
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func estimateMaxCurvature(c curve.Curve, samples int) float64 {
	if samples < 1 {
		samples = 1
	}
	t0, t1 := c.Domain()
	span := t1 - t0
	if !math.IsFinite(span) || span == 0 {
		return 0
	}

	maxCurvature := 0.0
	for i := 0; i <= samples; i++ {
		t := t0 + span*(float64(i)/float64(samples))
		if k, ok := curve.Curvature(c, t); ok {
			k = math.Abs(k)
			if math.IsFinite(k) && k > maxCurvature {
				maxCurvature = k
			}
		}
	}
	return maxCurvature
}

func curveArcLength(c curve.Curve, samples int) float64 {
	if samples < 1 {
		samples = 1
	}
	t0, t1 := c.Domain()
	span := t1 - t0
	if !math.IsFinite(span) || span == 0 {
		return 0
	}
	total := 0.0
	prev := c.PointAt(t0)
	for i := 1; i <= samples; i++ {
		t := t0 + span*(float64(i)/float64(samples))
		p := c.PointAt(t)
		d := p.DistanceTo(prev)
		if math.IsFinite(d) {
			total += d
		}
		prev = p
	}
	return total
}

// initialCurveParametersArcLength divides [t0, t1] into `segments`
// arc-length-balanced breakpoints via a fine chord-length cumulative
// table and inverse-linear (binary search) lookup.
func initialCurveParametersArcLength(c curve.Curve, t0, t1 float64, segments int) []float64 {
	if segments < 1 {
		segments = 1
	}
	if segments == 1 {
		return []float64{t0, t1}
	}

	span := t1 - t0
	if !math.IsFinite(span) || span == 0 {
		return []float64{t0, t1}
	}

	sampleCount := clampInt(segments*16, 16, 4096)
	params := make([]float64, 0, sampleCount+1)
	cumulative := make([]float64, 0, sampleCount+1)

	params = append(params, t0)
	cumulative = append(cumulative, 0)
	total := 0.0
	prev := c.PointAt(t0)

	for i := 1; i <= sampleCount; i++ {
		u := float64(i) / float64(sampleCount)
		t := t0 + span*u
		p := c.PointAt(t)
		d := p.DistanceTo(prev)
		if math.IsFinite(d) {
			total += d
		}
		params = append(params, t)
		cumulative = append(cumulative, total)
		prev = p
	}

	if !math.IsFinite(total) || total <= 0 {
		out := make([]float64, segments+1)
		for i := 0; i <= segments; i++ {
			out[i] = t0 + span*(float64(i)/float64(segments))
		}
		return out
	}

	result := make([]float64, 0, segments+1)
	result = append(result, t0)

	for segIdx := 1; segIdx < segments; segIdx++ {
		target := total * (float64(segIdx) / float64(segments))
		idx := sort.SearchFloat64s(cumulative, target)
		idx = clampInt(idx, 1, sampleCount)
		c0, c1 := cumulative[idx-1], cumulative[idx]
		var t float64
		if c1 > c0 {
			ratio := clamp01((target - c0) / (c1 - c0))
			t = params[idx-1] + (params[idx]-params[idx-1])*ratio
		} else {
			t = params[idx]
		}
		result = append(result, t)
	}

	result = append(result, t1)
	return result
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// parameterAtArcLengthRatio locates the parameter within [t0, t1]
// corresponding to a target fraction of the segment's arc length.
func parameterAtArcLengthRatio(c curve.Curve, t0, t1, ratio float64, samples int) float64 {
	if samples < 4 {
		samples = 4
	}
	span := t1 - t0
	if !math.IsFinite(span) || math.Abs(span) < 1e-15 {
		return t0 + span*ratio
	}

	params := make([]float64, 0, samples+1)
	cumulative := make([]float64, 0, samples+1)
	params = append(params, t0)
	cumulative = append(cumulative, 0)
	total := 0.0
	prev := c.PointAt(t0)

	for i := 1; i <= samples; i++ {
		u := float64(i) / float64(samples)
		t := t0 + span*u
		p := c.PointAt(t)
		d := p.DistanceTo(prev)
		if math.IsFinite(d) {
			total += d
		}
		params = append(params, t)
		cumulative = append(cumulative, total)
		prev = p
	}

	if !math.IsFinite(total) || total <= 0 {
		return t0 + span*ratio
	}

	target := total * clamp01(ratio)
	idx := sort.SearchFloat64s(cumulative, target)
	idx = clampInt(idx, 1, samples)
	c0, c1 := cumulative[idx-1], cumulative[idx]
	if c1 > c0 {
		localRatio := clamp01((target - c0) / (c1 - c0))
		return params[idx-1] + (params[idx]-params[idx-1])*localRatio
	}
	return params[idx]
}

// segmentWork is an explicit work-stack entry replacing the recursive
// subdivision the original implementation avoided for bounded stack
// depth.
type segmentWork struct {
	t0, t1 float64
	p0, p1 geom.Point3
	depth  int
}

const baseArcLengthSamples = 8

func tessellateSegmentAdaptive(c curve.Curve, t0, t1 float64, p0, p1 geom.Point3, maxDeviation float64, maxDepth, maxPoints int, points []geom.Point3) []geom.Point3 {
	stack := []segmentWork{{t0: t0, t1: t1, p0: p0, p1: p1, depth: 0}}

	for len(stack) > 0 {
		seg := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(points) >= maxPoints {
			break
		}

		pointBudgetExhausted := len(points)+len(stack)+1 >= maxPoints
		if seg.depth >= maxDepth || pointBudgetExhausted {
			if len(points) < maxPoints {
				points = append(points, seg.p1)
			}
			continue
		}

		samples := maxInt(baseArcLengthSamples-seg.depth, 4)

		tm := parameterAtArcLengthRatio(c, seg.t0, seg.t1, 0.5, samples)
		t25 := parameterAtArcLengthRatio(c, seg.t0, seg.t1, 0.25, samples)
		t75 := parameterAtArcLengthRatio(c, seg.t0, seg.t1, 0.75, samples)

		pm := c.PointAt(tm)
		p25 := c.PointAt(t25)
		p75 := c.PointAt(t75)

		deviation := distancePointToLine(pm, seg.p0, seg.p1)
		deviation = math.Max(deviation, distancePointToLine(p25, seg.p0, seg.p1))
		deviation = math.Max(deviation, distancePointToLine(p75, seg.p0, seg.p1))

		if math.IsFinite(deviation) && deviation > maxDeviation {
			nextDepth := seg.depth + 1
			stack = append(stack,
				segmentWork{t0: tm, t1: seg.t1, p0: pm, p1: seg.p1, depth: nextDepth},
				segmentWork{t0: seg.t0, t1: tm, p0: seg.p0, p1: pm, depth: nextDepth},
			)
		} else {
			points = append(points, seg.p1)
		}
	}

	return points
}

func distancePointToLine(p, a, b geom.Point3) float64 {
	ab := b.SubPoint(a)
	ap := p.SubPoint(a)
	abLen := ab.Length()
	if abLen <= 0 || !math.IsFinite(abLen) {
		return ap.Length()
	}
	return ap.Cross(ab).Length() / abLen
}
