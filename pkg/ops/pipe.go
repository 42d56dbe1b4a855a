package ops

import (
	"math"
	"sort"

	"github.com/chazu/ghx/pkg/frame"
	"github.com/chazu/ghx/pkg/geom"
	"github.com/chazu/ghx/pkg/kernel"
)

// pipeCuspTurnThreshold is the turn angle (radians) above which the
// junction radius guard activates; confirmed against pipe.rs/sweep.rs
// in the original implementation (spec.md §4.8, DESIGN.md).
const pipeCuspTurnThreshold = 1.2

// pipeRadiusGuardFraction is the fraction of a segment's length that
// the sum of its two endpoint ring radii may not exceed, and the
// fraction of the shorter adjacent segment a single ring radius may
// not exceed at a sharp junction.
const pipeRadiusGuardFraction = 0.49

// PipeRadiusStop is one (parameter, radius) control point for a
// variable-radius pipe; parameter is an arc-length ratio in [0,1].
type PipeRadiusStop struct {
	Parameter float64
	Radius    float64
}

// PipeOptions controls radial segment count and capping (spec.md §4.8).
type PipeOptions struct {
	RadialSegments int
	CapStart       bool
	CapEnd         bool
}

// PipeDiagnostics reports the radius guard's clamping activity in
// addition to the shared sweep diagnostics.
type PipeDiagnostics struct {
	SweepDiagnostics
	ClampedRings int
}

// Pipe sweeps a circular cross-section of constant or variable radius
// along a rail (spec.md §4.8): radius stops are normalized and
// interpolated by arc-length ratio, two radius guards bound the ring
// radius against self-intersection at edges and sharp turns, and a
// near-180-degree cusp is a hard error.
func Pipe(rail []geom.Point3, radii []PipeRadiusStop, opts PipeOptions, tol geom.Tolerance) (*kernel.Mesh, PipeDiagnostics, error) {
	var diag PipeDiagnostics

	railClean, railClosed := cleanPolyline(rail, tol)
	if len(railClean) < 2 {
		return nil, diag, newOpError(kernel.ErrorKindInputShape, "Pipe", "rail needs at least two distinct points")
	}
	if len(radii) == 0 {
		return nil, diag, newOpError(kernel.ErrorKindInputShape, "Pipe", "at least one radius stop is required")
	}
	segments := opts.RadialSegments
	if segments < 3 {
		segments = 8
	}

	stops := normalizeRadiusStops(radii, tol)
	for _, s := range stops {
		if !(s.Radius > 0) || !math.IsFinite(s.Radius) {
			return nil, diag, newOpError(kernel.ErrorKindInputShape, "Pipe", "radius must be finite and positive")
		}
	}

	transport := frame.TransportAlong(railClean, tol)
	if transport.NearCusp {
		return nil, diag, newOpError(kernel.ErrorKindGeometricImpossibility, "Pipe", "rail has a near-180 degree cusp")
	}
	diag.CuspLikeCount = transport.CuspLike
	diag.RailClosed = railClosed

	cum, total := cumulativeArcLength(railClean, railClosed)
	ringRadius := make([]float64, len(railClean))
	for i := range railClean {
		ratio := 0.0
		if total > 0 {
			ratio = cum[i] / total
		}
		ringRadius[i] = interpolateRadius(stops, ratio)
	}

	segLen := make([]float64, len(railClean))
	for i := 0; i < len(railClean)-1; i++ {
		segLen[i] = railClean[i+1].DistanceTo(railClean[i])
	}
	if railClosed {
		segLen[len(railClean)-1] = railClean[0].DistanceTo(railClean[len(railClean)-1])
	}

	for i := range railClean {
		prevLen, nextLen := math.Inf(1), math.Inf(1)
		if i > 0 {
			prevLen = segLen[i-1]
		} else if railClosed {
			prevLen = segLen[len(segLen)-1]
		}
		if i < len(segLen) {
			nextLen = segLen[i]
		}
		guard := pipeRadiusGuardFraction * math.Min(prevLen, nextLen)
		if i > 0 && i < len(railClean)-1 {
			prevT := transport.Frames[i-1].Tangent
			nextT := transport.Frames[i].Tangent
			turn := math.Acos(clampUnit(prevT.Dot(nextT)))
			if turn > pipeCuspTurnThreshold && ringRadius[i] > guard {
				ringRadius[i] = guard
				diag.ClampedRings++
			}
		}
	}
	// Edge-sum guard: for each edge, the sum of endpoint radii must not
	// exceed 49% of the segment length.
	for i := 0; i < len(segLen); i++ {
		j := (i + 1) % len(railClean)
		if segLen[i] <= 0 {
			continue
		}
		limit := pipeRadiusGuardFraction * segLen[i]
		sum := ringRadius[i] + ringRadius[j]
		if sum > limit {
			scale := limit / sum
			if ringRadius[i]*scale < ringRadius[i] {
				diag.ClampedRings++
			}
			ringRadius[i] *= scale
			ringRadius[j] *= scale
		}
	}

	raw := kernel.RawMesh{}
	ringBases := make([]int, len(railClean))
	for i, st := range railClean {
		f := transport.Frames[i]
		ringBases[i] = len(raw.Positions)
		r := ringRadius[i]
		for k := 0; k < segments; k++ {
			theta := 2 * math.Pi * float64(k) / float64(segments)
			local := f.Normal.Scale(r * math.Cos(theta)).Add(f.Binormal.Scale(r * math.Sin(theta)))
			raw.Positions = append(raw.Positions, st.Add(local))
			raw.UVs = append(raw.UVs, kernel.UV{U: float64(k) / float64(segments), V: totalRatio(cum, i, total)})
		}
	}

	for i := 1; i < len(railClean); i++ {
		raw.Indices = appendQuadStrip(raw.Indices, ringBases[i-1], ringBases[i], segments, true)
	}
	if railClosed {
		raw.Indices = appendQuadStrip(raw.Indices, ringBases[len(railClean)-1], ringBases[0], segments, true)
	}

	if !railClosed {
		if opts.CapStart {
			diag.CappedStart = appendPipeCap(&raw, segments, ringBases[0], railClean[0], transport.Frames[0].Tangent.Neg())
		}
		if opts.CapEnd {
			last := len(railClean) - 1
			diag.CappedEnd = appendPipeCap(&raw, segments, ringBases[last], railClean[last], transport.Frames[last].Tangent)
		}
	}

	mesh, meshDiag, err := kernel.Finalize(raw, tol)
	diag.Diagnostics = meshDiag
	if err != nil {
		return nil, diag, err
	}
	return mesh, diag, nil
}

// appendPipeCap triangulates a fan from the rail endpoint to its ring,
// winding so the cap normal points along outward (spec.md §4.8).
func appendPipeCap(raw *kernel.RawMesh, segments, ringBase int, center geom.Point3, outward geom.Vec3) bool {
	centerIdx := len(raw.Positions)
	raw.Positions = append(raw.Positions, center)
	raw.UVs = append(raw.UVs, kernel.UV{U: 0.5, V: 0.5})

	a := raw.Positions[ringBase]
	b := raw.Positions[ringBase+1]
	faceNormal := b.SubPoint(center).Cross(a.SubPoint(center))
	flip := faceNormal.Dot(outward) < 0

	for k := 0; k < segments; k++ {
		i0 := ringBase + k
		i1 := ringBase + (k+1)%segments
		if flip {
			raw.Indices = append(raw.Indices, centerIdx, i0, i1)
		} else {
			raw.Indices = append(raw.Indices, centerIdx, i1, i0)
		}
	}
	return true
}

func normalizeRadiusStops(radii []PipeRadiusStop, tol geom.Tolerance) []PipeRadiusStop {
	stops := append([]PipeRadiusStop(nil), radii...)
	sort.Slice(stops, func(i, j int) bool { return stops[i].Parameter < stops[j].Parameter })
	out := stops[:0:0]
	for i, s := range stops {
		if i > 0 && tol.ApproxEqual(s.Parameter, out[len(out)-1].Parameter) {
			out[len(out)-1] = s
			continue
		}
		out = append(out, s)
	}
	return out
}

func interpolateRadius(stops []PipeRadiusStop, t float64) float64 {
	if len(stops) == 1 {
		return stops[0].Radius
	}
	if t <= stops[0].Parameter {
		return stops[0].Radius
	}
	last := stops[len(stops)-1]
	if t >= last.Parameter {
		return last.Radius
	}
	for i := 1; i < len(stops); i++ {
		if t <= stops[i].Parameter {
			a, b := stops[i-1], stops[i]
			span := b.Parameter - a.Parameter
			if span <= 0 {
				return b.Radius
			}
			frac := (t - a.Parameter) / span
			return a.Radius + (b.Radius-a.Radius)*frac
		}
	}
	return last.Radius
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
