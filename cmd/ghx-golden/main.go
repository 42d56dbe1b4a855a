// Command ghx-golden renders the golden snapshot grammar of spec.md §6
// for the fixed scenario set of §8 and either writes it to testdata or
// compares it against the checked-in snapshot, mirroring the original
// implementation's `GHX_UPDATE_GOLDENS`-gated golden test runner.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/chazu/ghx/pkg/boolean"
	"github.com/chazu/ghx/pkg/geom"
	"github.com/chazu/ghx/pkg/kernel"
	"github.com/chazu/ghx/pkg/ops"
)

// scenario builds a mesh and its golden diagnostic lines for one of the
// fixed cases of spec.md §8; build returns the lines in the order they
// should appear in the snapshot.
type scenario struct {
	name  string
	build func(tol geom.Tolerance) (*kernel.Mesh, kernel.Diagnostics, []string, error)
}

var scenarios = []scenario{
	{"extrude_square_prism", buildExtrudeSquarePrism},
	{"revolve_wedge_half_turn", buildRevolveWedgeHalfTurn},
	{"patch_square_with_hole", buildPatchSquareWithHole},
	{"pipe_straight", buildPipeStraight},
	{"offset_quad", buildOffsetQuad},
	{"deform_twist_box", buildDeformTwistBox},
	{"boolean_union_disjoint_cubes", buildBooleanUnionDisjointCubes},
}

func main() {
	dir := flag.String("dir", "testdata/golden", "directory holding golden snapshot files")
	flag.Parse()

	update := os.Getenv("GHX_UPDATE_GOLDENS") != ""
	tol := geom.ToleranceDefault

	mismatches := 0
	for _, sc := range scenarios {
		mesh, meshDiag, diagLines, err := sc.build(tol)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: build failed: %v\n", sc.name, err)
			mismatches++
			continue
		}

		// Every mesh-producing operator emits both the new mesh Value
		// and the legacy surface Value on its historical pin (spec.md
		// §6's dual output); the golden snapshot carries the legacy
		// side's vertex/triangle counts alongside the mesh grammar so
		// both output paths are exercised by the same fixed scenario.
		dual := kernel.NewDualOutput(mesh, sc.name, meshDiag)
		diagLines = append(diagLines,
			diagLine("diag.legacy_vertex_count", dual.Legacy.Legacy.VertexCount()),
			diagLine("diag.legacy_triangle_count", dual.Legacy.Legacy.TriangleCount()),
		)

		golden := kernel.WriteGolden(sc.name, diagLines, mesh)
		path := filepath.Join(*dir, sc.name+".golden")

		if update {
			if err := os.MkdirAll(*dir, 0o755); err != nil {
				fmt.Fprintf(os.Stderr, "%s: creating golden dir: %v\n", sc.name, err)
				mismatches++
				continue
			}
			if err := os.WriteFile(path, []byte(golden), 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "%s: writing golden: %v\n", sc.name, err)
				mismatches++
				continue
			}
			fmt.Printf("wrote %s\n", path)
			continue
		}

		existing, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: no golden on disk at %s (set GHX_UPDATE_GOLDENS=1 to create it): %v\n", sc.name, path, err)
			mismatches++
			continue
		}
		if kernel.NormalizeGolden(string(existing)) != golden {
			fmt.Fprintf(os.Stderr, "%s: golden mismatch against %s\n", sc.name, path)
			mismatches++
			continue
		}
		fmt.Printf("ok %s\n", sc.name)
	}

	if mismatches > 0 {
		fmt.Fprintf(os.Stderr, "%d scenario(s) failed\n", mismatches)
		os.Exit(1)
	}
}

func diagLine(name string, value interface{}) string {
	return fmt.Sprintf("%s %v", name, value)
}

func buildExtrudeSquarePrism(tol geom.Tolerance) (*kernel.Mesh, kernel.Diagnostics, []string, error) {
	profile := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(1, 0, 0),
		geom.NewPoint3(1, 1, 0),
		geom.NewPoint3(0, 1, 0),
	}
	mesh, diag, err := ops.Extrude(profile, geom.NewVec3(0, 0, 1), ops.ExtrudeOptions{CapStart: true, CapEnd: true}, tol)
	if err != nil {
		return nil, kernel.Diagnostics{}, nil, err
	}
	lines := []string{
		diagLine("diag.open_edge_count", diag.OpenEdgeCount),
		diagLine("diag.non_manifold_edge_count", diag.NonManifoldEdgeCount),
		diagLine("diag.capped_start", diag.CappedStart),
		diagLine("diag.capped_end", diag.CappedEnd),
	}
	return mesh, diag.Diagnostics, lines, nil
}

func buildRevolveWedgeHalfTurn(tol geom.Tolerance) (*kernel.Mesh, kernel.Diagnostics, []string, error) {
	profile := []geom.Point3{
		geom.NewPoint3(2, 0, 0),
		geom.NewPoint3(2, 0, 1),
		geom.NewPoint3(3, 0, 1),
		geom.NewPoint3(3, 0, 0),
		geom.NewPoint3(2, 0, 0),
	}
	opts := ops.DefaultRevolveOptions()
	opts.MinSteps, opts.MaxSteps = 8, 8
	opts.CapStart, opts.CapEnd = true, true
	mesh, diag, err := ops.Revolve(profile, geom.Origin, geom.NewVec3(0, 0, 1), math.Pi, opts, tol)
	if err != nil {
		return nil, kernel.Diagnostics{}, nil, err
	}
	lines := []string{
		diagLine("diag.steps", diag.Steps),
		diagLine("diag.non_manifold_edge_count", diag.NonManifoldEdgeCount),
		diagLine("diag.seam_welded", diag.SeamWelded),
	}
	return mesh, diag.Diagnostics, lines, nil
}

func buildPatchSquareWithHole(tol geom.Tolerance) (*kernel.Mesh, kernel.Diagnostics, []string, error) {
	outer := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(2, 0, 0),
		geom.NewPoint3(2, 2, 0),
		geom.NewPoint3(0, 2, 0),
	}
	hole := []geom.Point3{
		geom.NewPoint3(0.75, 0.75, 0),
		geom.NewPoint3(1.25, 0.75, 0),
		geom.NewPoint3(1.25, 1.25, 0),
		geom.NewPoint3(0.75, 1.25, 0),
	}
	mesh, diag, err := ops.Patch(outer, [][]geom.Point3{hole}, ops.PatchOptions{}, tol)
	if err != nil {
		return nil, kernel.Diagnostics{}, nil, err
	}
	lines := []string{
		diagLine("diag.hole_count", diag.HoleCount),
		diagLine("diag.open_edge_count", diag.OpenEdgeCount),
		diagLine("diag.non_manifold_edge_count", diag.NonManifoldEdgeCount),
	}
	return mesh, diag.Diagnostics, lines, nil
}

func buildPipeStraight(tol geom.Tolerance) (*kernel.Mesh, kernel.Diagnostics, []string, error) {
	rail := []geom.Point3{geom.NewPoint3(0, 0, 0), geom.NewPoint3(0, 0, 2)}
	radii := []ops.PipeRadiusStop{{Parameter: 0, Radius: 0.5}, {Parameter: 1, Radius: 0.5}}
	mesh, diag, err := ops.Pipe(rail, radii, ops.PipeOptions{RadialSegments: 8, CapStart: true, CapEnd: true}, tol)
	if err != nil {
		return nil, kernel.Diagnostics{}, nil, err
	}
	lines := []string{
		diagLine("diag.open_edge_count", diag.OpenEdgeCount),
		diagLine("diag.clamped_rings", diag.ClampedRings),
	}
	return mesh, diag.Diagnostics, lines, nil
}

func buildOffsetQuad(tol geom.Tolerance) (*kernel.Mesh, kernel.Diagnostics, []string, error) {
	positions := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(1, 0, 0),
		geom.NewPoint3(1, 1, 0),
		geom.NewPoint3(0, 1, 0),
	}
	normals := make([]geom.Vec3, len(positions))
	for i := range normals {
		normals[i] = geom.UnitZ
	}
	quad := &kernel.Mesh{Positions: positions, Indices: []int{0, 1, 2, 0, 2, 3}, Normals: normals}
	mesh, diag, err := ops.Offset(quad, 0.25, tol)
	if err != nil {
		return nil, kernel.Diagnostics{}, nil, err
	}
	lines := []string{
		diagLine("diag.original_triangle_count", diag.OriginalTriangleCount),
		diagLine("diag.displacement_min", formatFixed(diag.Displacement.Min)),
		diagLine("diag.displacement_max", formatFixed(diag.Displacement.Max)),
	}
	return mesh, diag.Diagnostics, lines, nil
}

func buildDeformTwistBox(tol geom.Tolerance) (*kernel.Mesh, kernel.Diagnostics, []string, error) {
	profile := []geom.Point3{
		geom.NewPoint3(0, 0, 0),
		geom.NewPoint3(1, 0, 0),
		geom.NewPoint3(1, 1, 0),
		geom.NewPoint3(0, 1, 0),
	}
	box, _, err := ops.Extrude(profile, geom.NewVec3(0, 0, 2), ops.ExtrudeOptions{CapStart: true, CapEnd: true}, tol)
	if err != nil {
		return nil, kernel.Diagnostics{}, nil, err
	}
	mesh, diag, err := ops.Deform(box, ops.TwistBox(box, math.Pi/2), tol)
	if err != nil {
		return nil, kernel.Diagnostics{}, nil, err
	}
	lines := []string{
		diagLine("diag.displacement_min", formatFixed(diag.Displacement.Min)),
		diagLine("diag.displacement_max", formatFixed(diag.Displacement.Max)),
	}
	return mesh, diag.Diagnostics, lines, nil
}

func buildBooleanUnionDisjointCubes(tol geom.Tolerance) (*kernel.Mesh, kernel.Diagnostics, []string, error) {
	a, err := unitCube(geom.Zero, tol)
	if err != nil {
		return nil, kernel.Diagnostics{}, nil, err
	}
	b, err := unitCube(geom.NewVec3(2, 0, 0), tol)
	if err != nil {
		return nil, kernel.Diagnostics{}, nil, err
	}
	mesh, diag, err := boolean.Combine(a, b, boolean.OperationUnion, tol)
	if err != nil {
		return nil, kernel.Diagnostics{}, nil, err
	}
	lines := []string{
		diagLine("diag.candidate_pair_count", diag.CandidatePairCount),
		diagLine("diag.voxel_fallback_used", diag.VoxelFallbackUsed),
	}
	return mesh, diag.Diagnostics, lines, nil
}

func unitCube(offset geom.Vec3, tol geom.Tolerance) (*kernel.Mesh, error) {
	profile := []geom.Point3{
		geom.NewPoint3(0, 0, 0).Add(offset),
		geom.NewPoint3(1, 0, 0).Add(offset),
		geom.NewPoint3(1, 1, 0).Add(offset),
		geom.NewPoint3(0, 1, 0).Add(offset),
	}
	mesh, _, err := ops.Extrude(profile, geom.NewVec3(0, 0, 1), ops.ExtrudeOptions{CapStart: true, CapEnd: true}, tol)
	return mesh, err
}

func formatFixed(x float64) string {
	return fmt.Sprintf("%.6f", x)
}
