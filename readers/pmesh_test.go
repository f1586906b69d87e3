package readers

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flywave/go-jvxl/mesh"
)

const asciiPmesh = `#JmolPmesh
# unit square
4
0 0 0
1 0 0
1 1 0
0 1 0
4
4
0 1 2 0
5
0 1 2 3 0
2
0 1
4
0 1 9 0
`

func TestPmeshReader(t *testing.T) {
	t.Parallel()
	r := NewPmeshReader(strings.NewReader(asciiPmesh), Options{})
	m, err := r.ReadMesh()
	require.NoError(t, err)
	assert.Equal(t, 4, m.VertexCount())
	require.Equal(t, 3, m.TriangleCount())
	assert.Equal(t, [3]int{0, 1, 2}, m.Triangles[0].V)
	assert.Equal(t, mesh.CheckAll, m.Triangles[0].Check)
	assert.Equal(t, [3]int{0, 2, 3}, m.Triangles[2].V)
	assert.Equal(t, mesh.CheckEdge12|mesh.CheckEdge20, m.Triangles[2].Check)

	h, err := r.ReadHeader()
	require.NoError(t, err)
	assert.Equal(t, [3]int{}, h.Counts)
	assert.Equal(t, "pmesh", h.Titles[0])

	_, err = r.ReadVolume(false)
	assert.ErrorIs(t, err, ErrNoGrid)
}

func TestPmeshReaderTruncated(t *testing.T) {
	t.Parallel()
	in := "3\n0 0 0\n1 0 0\n0 1 0\n"
	m, err := NewPmeshReader(strings.NewReader(in), Options{}).ReadMesh()
	require.NoError(t, err)
	assert.Equal(t, 3, m.VertexCount())
	assert.True(t, m.IsEmpty())

	_, err = NewPmeshReader(strings.NewReader(in), Options{Recovery: RecoveryStrict}).ReadMesh()
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = NewPmeshReader(strings.NewReader("-2\n"), Options{}).ReadMesh()
	assert.ErrorIs(t, err, ErrFormat)
}

type binaryPolygon []int32

func binaryPmesh(t *testing.T, order binary.ByteOrder, verts [][3]float32, polys []binaryPolygon) []byte {
	t.Helper()
	var buf bytes.Buffer
	h := pmeshHeader{Version: 1, Vertices: int32(len(verts)), Polygons: int32(len(polys))}
	copy(h.Magic[:], PmeshMagic)
	require.NoError(t, binary.Write(&buf, order, &h))
	require.NoError(t, binary.Write(&buf, order, verts))
	for _, p := range polys {
		require.NoError(t, binary.Write(&buf, order, int32(len(p))))
		require.NoError(t, binary.Write(&buf, order, []int32(p)))
	}
	return buf.Bytes()
}

var squareVerts = [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}

func TestPmeshBinaryReader(t *testing.T) {
	t.Parallel()
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		data := binaryPmesh(t, order, squareVerts, []binaryPolygon{{0, 1, 2}, {0, 1, 2, 3}, {0, 7, 1}})
		r := NewPmeshBinaryReader(bytes.NewReader(data), Options{})
		m, err := r.ReadMesh()
		require.NoError(t, err)
		assert.Equal(t, 1, r.Version)
		assert.Equal(t, 4, m.VertexCount())
		assert.Equal(t, 3, m.TriangleCount())
		assert.Equal(t, 1.0, m.Vertices[2].Pos[1])
	}
}

func TestPmeshBinaryClosedPolygons(t *testing.T) {
	t.Parallel()
	data := binaryPmesh(t, binary.LittleEndian, squareVerts, []binaryPolygon{{0, 1, 2, 0}, {0, 1, 2, 3, 0}})
	m, err := NewPmeshBinaryReader(bytes.NewReader(data), Options{}).ReadMesh()
	require.NoError(t, err)
	require.Equal(t, 3, m.TriangleCount())
	assert.Equal(t, [3]int{0, 1, 2}, m.Triangles[0].V)
	assert.Equal(t, mesh.CheckAll, m.Triangles[0].Check)
	assert.Equal(t, [3]int{0, 2, 3}, m.Triangles[2].V)
	for _, tri := range m.Triangles {
		assert.NotEqual(t, tri.V[0], tri.V[2], "degenerate triangle %v", tri.V)
	}
}

func TestPmeshBinaryReaderTruncated(t *testing.T) {
	t.Parallel()
	data := binaryPmesh(t, binary.LittleEndian, squareVerts, []binaryPolygon{{0, 1, 2}, {0, 2, 3}})
	short := data[:len(data)-6]

	m, err := NewPmeshBinaryReader(bytes.NewReader(short), Options{}).ReadMesh()
	require.NoError(t, err)
	assert.Equal(t, 1, m.TriangleCount())

	_, err = NewPmeshBinaryReader(bytes.NewReader(short), Options{Recovery: RecoveryStrict}).ReadMesh()
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestPmeshBinaryReaderBadMagic(t *testing.T) {
	t.Parallel()
	_, err := NewPmeshBinaryReader(bytes.NewReader([]byte("XX\x01\x00\x00\x00\x00\x00\x00\x00\x00\x00")), Options{}).ReadMesh()
	assert.ErrorIs(t, err, ErrFormat)
	_, err = NewPmeshBinaryReader(bytes.NewReader([]byte("PM")), Options{}).ReadMesh()
	assert.ErrorIs(t, err, ErrFormat)
}
