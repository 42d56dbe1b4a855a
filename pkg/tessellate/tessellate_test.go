package tessellate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/ghx/pkg/curve"
	"github.com/chazu/ghx/pkg/geom"
	"github.com/chazu/ghx/pkg/kernel"
	"github.com/chazu/ghx/pkg/ops"
	"github.com/chazu/ghx/pkg/surface"
	"github.com/chazu/ghx/pkg/trim"
)

func TestTessellateCurveUniformFallbackOnNonFiniteDeviation(t *testing.T) {
	c := curve.NewCircle(geom.Origin, geom.UnitZ, 1)
	pts, diag := TessellateCurve(c, CurveOptions{MaxDeviation: math.NaN(), MaxSegments: 8})
	assert.True(t, diag.UniformFallback)
	assert.Len(t, pts, 8)
}

func TestTessellateCurveZeroSweepArcCollapsesToSinglePoint(t *testing.T) {
	// A zero-sweep arc has a non-degenerate parameter domain ([0,1]) but
	// every point on it coincides, so adaptive refinement should settle
	// without ever exceeding the depth/segment budget.
	a := curve.NewArc(geom.Origin, geom.UnitZ, 1, 0, 0)
	pts, _ := TessellateCurve(a, DefaultCurveOptions())
	require.NotEmpty(t, pts)
	for _, p := range pts {
		assert.True(t, geom.ToleranceWeld.ApproxEqualPoint3(p, pts[0]))
	}
}

// TestTessellateCurveRefinementGrowsWithTighterDeviation exercises
// spec.md §8's concrete tessellation property: tightening max_deviation
// on a curved (non-polyline) curve must not decrease the emitted segment
// count, and a 16x tightening at least doubles it.
func TestTessellateCurveRefinementGrowsWithTighterDeviation(t *testing.T) {
	c := curve.NewCircle(geom.Origin, geom.UnitZ, 5)

	// MaxSegments is set generously high so the emitted point count is
	// governed by the adaptive chord-deviation refinement (which halves
	// a segment's arc-length span per split) rather than by the
	// arc-length/curvature budget estimate. Deviation shrinks 4x at each
	// step (sagitta scales with the square of the subtended angle, so a
	// 4x tighter deviation needs roughly 2x the segments); never
	// decreasing holds unconditionally, and the compounded 16x tightening
	// from coarse to finer comfortably clears a 2x floor.
	coarse, _ := TessellateCurve(c, CurveOptions{MaxDeviation: 0.32, MaxSegments: 512, MaxDepth: 20, InitialSegments: 4})
	fine, _ := TessellateCurve(c, CurveOptions{MaxDeviation: 0.08, MaxSegments: 512, MaxDepth: 20, InitialSegments: 4})
	finer, _ := TessellateCurve(c, CurveOptions{MaxDeviation: 0.02, MaxSegments: 512, MaxDepth: 20, InitialSegments: 4})

	assert.GreaterOrEqual(t, len(fine), len(coarse))
	assert.GreaterOrEqual(t, len(finer), len(fine))
	assert.GreaterOrEqual(t, len(finer), 2*len(coarse))
}

func TestTessellateCurveClosedDropsClosingPoint(t *testing.T) {
	c := curve.NewCircle(geom.Origin, geom.UnitZ, 2)
	pts, _ := TessellateCurve(c, CurveOptions{MaxDeviation: 0.01, MaxSegments: 64, MaxDepth: 16, InitialSegments: 8})
	require.True(t, len(pts) > 3)
	first, last := pts[0], pts[len(pts)-1]
	assert.False(t, geom.ToleranceWeld.ApproxEqualPoint3(first, last))
}

func TestTessellateCurveRespectsMaxSegmentsCeiling(t *testing.T) {
	// A tight circle with tiny max_deviation wants far more segments
	// than the base cap; the estimator must never exceed 16x it.
	c := curve.NewCircle(geom.Origin, geom.UnitZ, 100)
	_, diag := TessellateCurve(c, CurveOptions{MaxDeviation: 1e-6, MaxSegments: 4, MaxDepth: 24, InitialSegments: 4})
	assert.LessOrEqual(t, diag.EstimatedSegmentBudget, 4*segmentBudgetCeilingFactor)
}

// TestTessellateCurveIntoPipeRail exercises the §4.1 curve tessellator
// end to end: an arc rail is adaptively tessellated, and the resulting
// polyline is fed straight into the pipe operator (spec.md §4.8) as any
// caller bridging a curve-valued rail to the polyline-based operators
// would.
func TestTessellateCurveIntoPipeRail(t *testing.T) {
	rail := curve.NewArc(geom.Origin, geom.UnitZ, 4, 0, math.Pi/2)
	railPoints, diag := TessellateCurve(rail, CurveOptions{MaxDeviation: 0.01, MaxSegments: 32, MaxDepth: 16, InitialSegments: 4})
	require.GreaterOrEqual(t, diag.OutputPointCount, 4)
	require.Len(t, railPoints, diag.OutputPointCount)

	radii := []ops.PipeRadiusStop{{Parameter: 0, Radius: 0.3}, {Parameter: 1, Radius: 0.3}}
	mesh, pipeDiag, err := ops.Pipe(railPoints, radii, ops.PipeOptions{RadialSegments: 8, CapStart: true, CapEnd: true}, geom.ToleranceDefault)
	require.NoError(t, err)
	assert.Equal(t, 0, pipeDiag.OpenEdgeCount)
	assert.Greater(t, mesh.TriangleCount(), 0)
}

func TestSizeSurfaceGridMinimumCounts(t *testing.T) {
	p := surface.NewPlane(geom.Origin, geom.UnitX, geom.UnitY)
	u, v, diag := SizeSurfaceGrid(p, GridOptions{InitialUCount: 1, InitialVCount: 1})
	assert.Equal(t, 2, u)
	assert.Equal(t, 2, v)
	assert.Equal(t, u, diag.UCount)
	assert.Equal(t, v, diag.VCount)
}

func TestSizeSurfaceGridWrappedAxisMinimumThree(t *testing.T) {
	cyl := surface.NewCylinder(geom.Origin, geom.UnitZ, 1, 2)
	u, v, _ := SizeSurfaceGrid(cyl, GridOptions{InitialUCount: 1, InitialVCount: 1})
	assert.GreaterOrEqual(t, u, 3)
	assert.GreaterOrEqual(t, v, 2)
}

func TestSizeSurfaceGridSphereBothPolesMinimumThreeOnV(t *testing.T) {
	sph := surface.NewSphere(geom.Origin, geom.UnitZ, 1)
	_, v, _ := SizeSurfaceGrid(sph, GridOptions{InitialUCount: 1, InitialVCount: 1})
	assert.GreaterOrEqual(t, v, 3)
}

// TestSizeSurfaceGridRefinementGrowsWithTighterDeviation mirrors the
// curve property above for the surface sizer: a 4x tighter
// max_deviation on a curved (non-planar) surface must not decrease
// either axis count, and at least doubles the total cell count.
func TestSizeSurfaceGridRefinementGrowsWithTighterDeviation(t *testing.T) {
	sph := surface.NewSphere(geom.Origin, geom.UnitZ, 10)

	coarseU, coarseV, _ := SizeSurfaceGrid(sph, GridOptions{
		MaxDeviation: 0.8, MaxEdgeLength: math.Inf(1),
		MaxUCount: 4096, MaxVCount: 4096, InitialUCount: 4, InitialVCount: 4, MaxIterations: 32,
	})
	fineU, fineV, _ := SizeSurfaceGrid(sph, GridOptions{
		MaxDeviation: 0.2, MaxEdgeLength: math.Inf(1),
		MaxUCount: 4096, MaxVCount: 4096, InitialUCount: 4, InitialVCount: 4, MaxIterations: 32,
	})

	assert.GreaterOrEqual(t, fineU*fineV, coarseU*coarseV)
	assert.GreaterOrEqual(t, fineU, coarseU)
	assert.GreaterOrEqual(t, fineV, coarseV)
	assert.GreaterOrEqual(t, fineU*fineV, 2*coarseU*coarseV)
}

// TestSizeSurfaceGridIntoPatchMesh exercises the §4.1 surface sizer end
// to end: a sphere's grid is sized, sampled, regularly triangulated and
// run through the kernel's finalize stage, as a caller rendering a
// Surface into a Mesh would.
func TestSizeSurfaceGridIntoPatchMesh(t *testing.T) {
	sph := surface.NewSphere(geom.Origin, geom.UnitZ, 2)
	uCount, vCount, _ := SizeSurfaceGrid(sph, GridOptions{
		MaxDeviation: 0.05, MaxEdgeLength: 1.0,
		MaxUCount: 64, MaxVCount: 64, InitialUCount: 8, InitialVCount: 8, MaxIterations: 8,
	})

	positions := SampleGrid(sph, uCount, vCount)
	indices := trim.RegularGrid(uCount, vCount, sph.IsUClosed(), sph.IsVClosed())

	mesh, _, err := kernel.Finalize(kernel.RawMesh{Positions: positions, Indices: indices}, geom.ToleranceDefault)
	require.NoError(t, err)
	assert.Greater(t, mesh.TriangleCount(), 0)
	assert.Equal(t, 0, mesh.TriangleCount()%2)
}
