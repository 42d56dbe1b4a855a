package tessellate

import (
	"math"

	"github.com/chazu/ghx/pkg/geom"
	"github.com/chazu/ghx/pkg/surface"
)

// GridOptions controls adaptive surface grid sizing.
type GridOptions struct {
	// MaxDeviation is the maximum bilinear-interpolation error at cell
	// centers. Non-finite or <= 0 disables deviation-based refinement.
	MaxDeviation float64
	// MaxEdgeLength is the maximum grid edge length. Non-finite or <= 0
	// disables edge-length-based refinement.
	MaxEdgeLength float64
	MaxUCount     int
	MaxVCount     int
	InitialUCount int
	InitialVCount int
	MaxIterations int
}

// DefaultGridOptions mirrors the original implementation's defaults.
func DefaultGridOptions() GridOptions {
	return GridOptions{
		MaxDeviation: 0.01, MaxEdgeLength: 1.0,
		MaxUCount: 256, MaxVCount: 256,
		InitialUCount: 8, InitialVCount: 8,
		MaxIterations: 16,
	}
}

// GridDiagnostics reports the sizer's final state.
type GridDiagnostics struct {
	Iterations int
	UCount     int
	VCount     int
}

// SizeSurfaceGrid implements the bilinear-deviation + edge-length sizer
// of spec.md §4.1: minimum counts from wrap/pole flags, up to 16x16 cell
// sampling per iteration, anisotropic doubling, clamped to max counts.
func SizeSurfaceGrid(s surface.Surface, opts GridOptions) (int, int, GridDiagnostics) {
	wrapU := s.IsUClosed()
	wrapV := s.IsVClosed()
	poleStart := s.PoleVStart()
	poleEnd := s.PoleVEnd()

	uCount := maxInt(opts.InitialUCount, 1)
	vCount := maxInt(opts.InitialVCount, 1)

	if wrapU {
		uCount = maxInt(uCount, 3)
	} else {
		uCount = maxInt(uCount, 2)
	}
	if wrapV {
		vCount = maxInt(vCount, 3)
	} else {
		vCount = maxInt(vCount, 2)
	}
	if poleStart && poleEnd {
		vCount = maxInt(vCount, 3)
	}

	uMax := maxInt(opts.MaxUCount, uCount)
	vMax := maxInt(opts.MaxVCount, vCount)
	if wrapU {
		uMax = maxInt(uMax, 3)
	}
	if wrapV {
		vMax = maxInt(vMax, 3)
	}

	if !math.IsFinite(opts.MaxDeviation) && !math.IsFinite(opts.MaxEdgeLength) {
		return uCount, vCount, GridDiagnostics{UCount: uCount, VCount: vCount}
	}

	maxDeviation := opts.MaxDeviation
	maxEdgeLength := opts.MaxEdgeLength
	iterations := maxInt(opts.MaxIterations, 1)

	iter := 0
	for ; iter < iterations; iter++ {
		dev, edgeU, edgeV := estimateSurfaceGridError(s, uCount, vCount)

		devOK := !math.IsFinite(maxDeviation) || maxDeviation <= 0 || dev <= maxDeviation
		edgeUOK := !math.IsFinite(maxEdgeLength) || maxEdgeLength <= 0 || edgeU <= maxEdgeLength
		edgeVOK := !math.IsFinite(maxEdgeLength) || maxEdgeLength <= 0 || edgeV <= maxEdgeLength

		if devOK && edgeUOK && edgeVOK {
			break
		}

		prevU, prevV := uCount, vCount

		refineU := !edgeUOK
		refineV := !edgeVOK

		if !devOK && !refineU && !refineV {
			if edgeU >= edgeV {
				refineU = true
			} else {
				refineV = true
			}
		}

		if refineU && uCount < uMax {
			uCount = minInt(uCount*2, uMax)
		}
		if refineV && vCount < vMax {
			vCount = minInt(vCount*2, vMax)
		}

		if !devOK && uCount == prevU && vCount == prevV {
			if uCount < uMax && !refineU {
				uCount = minInt(uCount*2, uMax)
			} else if vCount < vMax && !refineV {
				vCount = minInt(vCount*2, vMax)
			}
		}

		if uCount == prevU && vCount == prevV {
			break
		}
	}

	return uCount, vCount, GridDiagnostics{Iterations: iter + 1, UCount: uCount, VCount: vCount}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// estimateSurfaceGridError samples up to 16x16 grid cells, returning the
// maximum bilinear-deviation and the maximum U/V edge lengths observed.
func estimateSurfaceGridError(s surface.Surface, uCount, vCount int) (float64, float64, float64) {
	wrapU := s.IsUClosed()
	wrapV := s.IsVClosed()

	if wrapU {
		uCount = maxInt(uCount, 3)
	} else {
		uCount = maxInt(uCount, 2)
	}
	if wrapV {
		vCount = maxInt(vCount, 3)
	} else {
		vCount = maxInt(vCount, 2)
	}

	u0, u1 := s.DomainU()
	v0, v1 := s.DomainV()
	uSpan := u1 - u0
	vSpan := v1 - v0

	quadU := uCount
	if !wrapU {
		quadU = uCount - 1
	}
	quadV := vCount
	if !wrapV {
		quadV = vCount - 1
	}

	sampleU := minInt(quadU, 16)
	sampleV := minInt(quadV, 16)

	stepU := maxInt(quadU/maxInt(sampleU, 1), 1)
	stepV := maxInt(quadV/maxInt(sampleV, 1), 1)

	maxDev, maxEdgeU, maxEdgeV := 0.0, 0.0, 0.0

	for v := 0; v < quadV; v += stepV {
		for u := 0; u < quadU; u += stepU {
			ua, ub := surfaceCellParams(u0, u1, uSpan, u, uCount, wrapU)
			va, vb := surfaceCellParams(v0, v1, vSpan, v, vCount, wrapV)

			p00 := s.PointAt(ua, va)
			p10 := s.PointAt(ub, va)
			p01 := s.PointAt(ua, vb)
			p11 := s.PointAt(ub, vb)

			edgeU0 := p10.DistanceTo(p00)
			edgeU1 := p11.DistanceTo(p01)
			edgeV0 := p01.DistanceTo(p00)
			edgeV1 := p11.DistanceTo(p10)
			maxEdgeU = math.Max(maxEdgeU, math.Max(edgeU0, edgeU1))
			maxEdgeV = math.Max(maxEdgeV, math.Max(edgeV0, edgeV1))

			um := 0.5 * (ua + ub)
			vm := 0.5 * (va + vb)
			pm := s.PointAt(um, vm)

			bilinear := lerpPoint(lerpPoint(p00, p10, 0.5), lerpPoint(p01, p11, 0.5), 0.5)
			dev := pm.DistanceTo(bilinear)
			maxDev = math.Max(maxDev, dev)
		}
	}

	return maxDev, maxEdgeU, maxEdgeV
}

func surfaceCellParams(start, end, span float64, idx, count int, wrap bool) (float64, float64) {
	if !math.IsFinite(span) || span == 0 {
		return start, start
	}
	if wrap {
		denom := float64(count)
		a := start + span*(float64(idx)/denom)
		b := end
		if idx+1 != count {
			b = start + span*(float64(idx+1)/denom)
		}
		return a, b
	}
	denom := float64(count - 1)
	a := start + span*(float64(idx)/denom)
	b := start + span*(float64(idx+1)/denom)
	return a, b
}

func lerpPoint(a, b geom.Point3, t float64) geom.Point3 {
	return geom.Point3{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}

// SampleGrid evaluates the surface on a regular uCount x vCount grid,
// row-major with U varying fastest, matching pkg/trim.RegularGrid's
// index convention.
func SampleGrid(s surface.Surface, uCount, vCount int) []geom.Point3 {
	u0, u1 := s.DomainU()
	v0, v1 := s.DomainV()
	wrapU := s.IsUClosed()
	wrapV := s.IsVClosed()

	out := make([]geom.Point3, 0, uCount*vCount)
	for vi := 0; vi < vCount; vi++ {
		v := paramAt(v0, v1, vi, vCount, wrapV)
		for ui := 0; ui < uCount; ui++ {
			u := paramAt(u0, u1, ui, uCount, wrapU)
			out = append(out, s.PointAt(u, v))
		}
	}
	return out
}

func paramAt(start, end float64, idx, count int, wrap bool) float64 {
	span := end - start
	if !math.IsFinite(span) || span == 0 {
		return start
	}
	if wrap {
		return start + span*(float64(idx)/float64(count))
	}
	if count <= 1 {
		return start
	}
	return start + span*(float64(idx)/float64(count-1))
}
