package kernel

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/ghx/pkg/geom"
)

func unitQuadMesh(t *testing.T) *Mesh {
	t.Helper()
	raw := RawMesh{
		Positions: []geom.Point3{
			geom.NewPoint3(0, 0, 0),
			geom.NewPoint3(1, 0, 0),
			geom.NewPoint3(1, 1, 0),
			geom.NewPoint3(0, 1, 0),
		},
		Indices: []int{0, 1, 2, 0, 2, 3},
		UVs: []UV{
			{U: 0, V: 0}, {U: 1, V: 0}, {U: 1, V: 1}, {U: 0, V: 1},
		},
	}
	mesh, _, err := Finalize(raw, geom.ToleranceDefault)
	require.NoError(t, err)
	return mesh
}

func TestWriteGoldenGrammarHeaderAndCounts(t *testing.T) {
	mesh := unitQuadMesh(t)
	golden := WriteGolden("unit_quad", []string{"diag.example 1"}, mesh)
	lines := strings.Split(golden, "\n")

	assert.Equal(t, "# ghx-engine golden v1", lines[0])
	assert.Equal(t, "op unit_quad", lines[1])
	assert.Equal(t, "quantize 1.0e-6", lines[2])
	assert.Equal(t, "diag.example 1", lines[3])

	assert.Contains(t, golden, "mesh.vertex_count 4\n")
	assert.Contains(t, golden, "mesh.triangle_count 2\n")
	assert.Contains(t, golden, "mesh.has_uvs true\n")
	assert.Contains(t, golden, "mesh.has_normals true\n")
	assert.Contains(t, golden, "mesh.has_tangents false\n")
	assert.Contains(t, golden, "mesh.tangents none\n")
}

func TestWriteGoldenPositionsAreSixDecimalFixedPoint(t *testing.T) {
	mesh := unitQuadMesh(t)
	golden := WriteGolden("unit_quad", nil, mesh)
	assert.Contains(t, golden, "p 0.000000 0.000000 0.000000\n")
	assert.Contains(t, golden, "p 1.000000 0.000000 0.000000\n")
}

func TestWriteGoldenQuantizesBelowThreshold(t *testing.T) {
	// Two meshes differing only by noise well under GoldenQuantum must
	// produce byte-identical golden text.
	raw := RawMesh{
		Positions: []geom.Point3{
			geom.NewPoint3(0, 0, 0),
			geom.NewPoint3(1+4e-9, 0, 0),
			geom.NewPoint3(1, 1, 0),
		},
		Indices: []int{0, 1, 2},
	}
	mesh, _, err := Finalize(raw, geom.ToleranceDefault)
	require.NoError(t, err)

	exact := RawMesh{
		Positions: []geom.Point3{
			geom.NewPoint3(0, 0, 0),
			geom.NewPoint3(1, 0, 0),
			geom.NewPoint3(1, 1, 0),
		},
		Indices: []int{0, 1, 2},
	}
	exactMesh, _, err := Finalize(exact, geom.ToleranceDefault)
	require.NoError(t, err)

	assert.Equal(t, WriteGolden("noisy", nil, mesh), WriteGolden("noisy", nil, exactMesh))
}

func TestQuantizeFoldsNegativeZero(t *testing.T) {
	assert.Equal(t, 0.0, quantize(-0.0))
	assert.Equal(t, 0.0, quantize(-1e-12))
	assert.Equal(t, "0.000000", formatFixed6(-1e-12))
	assert.NotContains(t, formatFixed6(-1e-12), "-")
}

func TestNormalizeGoldenCRLFAndTrailingNewline(t *testing.T) {
	crlf := "# ghx-engine golden v1\r\nop foo\r\nquantize 1.0e-6\r\n"
	assert.Equal(t, "# ghx-engine golden v1\nop foo\nquantize 1.0e-6\n", NormalizeGolden(crlf))

	noTrailing := "# ghx-engine golden v1\nop foo"
	assert.Equal(t, "# ghx-engine golden v1\nop foo\n", NormalizeGolden(noTrailing))

	manyTrailing := "# ghx-engine golden v1\nop foo\n\n\n"
	assert.Equal(t, "# ghx-engine golden v1\nop foo\n", NormalizeGolden(manyTrailing))
}

func TestWriteGoldenRoundTripsThroughNormalizeGolden(t *testing.T) {
	mesh := unitQuadMesh(t)
	golden := WriteGolden("unit_quad", []string{"diag.a 1"}, mesh)
	assert.Equal(t, golden, NormalizeGolden(golden))
}
