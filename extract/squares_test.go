package extract

import (
	"math"
	"testing"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flywave/go-jvxl/mesh"
)

// square is two triangles over the unit square valued by x.
func square() *mesh.Mesh {
	m := mesh.New()
	m.AddVertex(vec3d.T{0, 0, 0}, 0, mesh.NoAssociation)
	m.AddVertex(vec3d.T{1, 0, 0}, 1, mesh.NoAssociation)
	m.AddVertex(vec3d.T{1, 1, 0}, 1, mesh.NoAssociation)
	m.AddVertex(vec3d.T{0, 1, 0}, 0, mesh.NoAssociation)
	m.AddTriangle(0, 1, 2, mesh.CheckEdge01|mesh.CheckEdge12)
	m.AddTriangle(0, 2, 3, mesh.CheckEdge12|mesh.CheckEdge20)
	return m
}

func TestContour(t *testing.T) {
	t.Parallel()
	m := square()
	sets := Contour(m, []float64{0.25, 2}, []uint32{0xffff0000})
	require.Len(t, sets, 2)

	cs := sets[0]
	assert.Equal(t, 0.25, cs.Value)
	assert.Equal(t, uint32(0xffff0000), cs.Color)
	assert.Equal(t, []bool{true, true}, cs.Members)
	require.Len(t, cs.Segments, 2)

	first := cs.Segments[0]
	assert.Equal(t, 0, first.Triangle)
	assert.Equal(t, mesh.ContourEdges02, first.Type)
	assert.InDelta(t, 0.25, first.F1, 1e-12)
	assert.InDelta(t, 0.75, first.F2, 1e-12)

	for _, l := range cs.Lines(m) {
		assert.InDelta(t, 0.25, l[0][0], 1e-12)
		assert.InDelta(t, 0.25, l[1][0], 1e-12)
	}

	assert.Equal(t, []bool{false, false}, sets[1].Members)
	assert.Empty(t, sets[1].Segments)
	assert.Zero(t, sets[1].Color)
}

func TestContourSkipsNaN(t *testing.T) {
	t.Parallel()
	m := square()
	m.Vertices[2].Value = math.NaN()
	sets := Contour(m, []float64{0.5}, nil)
	assert.Equal(t, []bool{false, false}, sets[0].Members)
}
