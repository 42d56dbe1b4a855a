package kernel

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// GoldenQuantum is the snapshot grammar's rounding step (spec.md §6):
// every numeric value is rounded to the nearest multiple of this before
// being rendered, so two meshes that differ only in float noise below
// the quantum compare byte-equal.
const GoldenQuantum = 1e-6

// quantize rounds x to the nearest multiple of GoldenQuantum, folding
// -0.0 to 0.0 so the sign bit never leaks into the rendered text.
func quantize(x float64) float64 {
	if !math.IsFinite(x) {
		return x
	}
	q := math.Round(x/GoldenQuantum) * GoldenQuantum
	if q == 0 {
		return 0
	}
	return q
}

// formatFixed6 renders a quantized value as six-decimal fixed-point.
func formatFixed6(x float64) string {
	return strconv.FormatFloat(quantize(x), 'f', 6, 64)
}

// WriteGolden renders the golden snapshot grammar of spec.md §6 for op,
// given already-formatted "namespace.field value" diagnostics lines (in
// the order the caller wants them to appear) and the finalized mesh.
func WriteGolden(op string, diagnosticLines []string, mesh *Mesh) string {
	var b strings.Builder

	fmt.Fprintln(&b, "# ghx-engine golden v1")
	fmt.Fprintf(&b, "op %s\n", op)
	fmt.Fprintln(&b, "quantize 1.0e-6")
	for _, line := range diagnosticLines {
		fmt.Fprintln(&b, line)
	}

	vertexCount := mesh.VertexCount()
	triCount := mesh.TriangleCount()
	hasUVs := len(mesh.UVs) == vertexCount && vertexCount > 0
	hasNormals := len(mesh.Normals) == vertexCount && vertexCount > 0
	hasTangents := len(mesh.Tangents) == vertexCount && vertexCount > 0

	fmt.Fprintf(&b, "mesh.vertex_count %d\n", vertexCount)
	fmt.Fprintf(&b, "mesh.triangle_count %d\n", triCount)
	fmt.Fprintf(&b, "mesh.has_uvs %s\n", formatBool(hasUVs))
	fmt.Fprintf(&b, "mesh.has_normals %s\n", formatBool(hasNormals))
	fmt.Fprintf(&b, "mesh.has_tangents %s\n", formatBool(hasTangents))

	fmt.Fprintf(&b, "mesh.positions %d\n", vertexCount)
	for _, p := range mesh.Positions {
		fmt.Fprintf(&b, "p %s %s %s\n", formatFixed6(p.X), formatFixed6(p.Y), formatFixed6(p.Z))
	}

	fmt.Fprintf(&b, "mesh.indices %d\n", len(mesh.Indices))
	for i := 0; i < triCount; i++ {
		a, c, d := mesh.Triangle(i)
		fmt.Fprintf(&b, "i %d %d %d\n", a, c, d)
	}

	if hasUVs {
		fmt.Fprintf(&b, "mesh.uvs %d\n", vertexCount)
		for _, uv := range mesh.UVs {
			fmt.Fprintf(&b, "uv %s %s\n", formatFixed6(uv.U), formatFixed6(uv.V))
		}
	} else {
		fmt.Fprintln(&b, "mesh.uvs none")
	}

	if hasNormals {
		fmt.Fprintf(&b, "mesh.normals %d\n", vertexCount)
		for _, n := range mesh.Normals {
			fmt.Fprintf(&b, "n %s %s %s\n", formatFixed6(n.X), formatFixed6(n.Y), formatFixed6(n.Z))
		}
	} else {
		fmt.Fprintln(&b, "mesh.normals none")
	}

	if hasTangents {
		fmt.Fprintf(&b, "mesh.tangents %d\n", vertexCount)
		for _, t := range mesh.Tangents {
			fmt.Fprintf(&b, "t %s %s %s\n", formatFixed6(t.X), formatFixed6(t.Y), formatFixed6(t.Z))
		}
	} else {
		fmt.Fprintln(&b, "mesh.tangents none")
	}

	return NormalizeGolden(b.String())
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// NormalizeGolden applies the grammar's byte-exact comparison rules:
// CRLF normalized to LF, and a single trailing newline enforced.
func NormalizeGolden(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimRight(s, "\n")
	return s + "\n"
}
