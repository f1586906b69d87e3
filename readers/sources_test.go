package readers

import (
	"bytes"
	"math"
	"testing"

	tin "github.com/flywave/go-tin"
	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flywave/go-jvxl"
	"github.com/flywave/go-jvxl/extract"
	"github.com/flywave/go-jvxl/mesh"
	"github.com/flywave/go-jvxl/volume"
)

var unitBasis = [3]vec3d.T{vec3d.UnitX, vec3d.UnitY, vec3d.UnitZ}

func TestFunctionSource(t *testing.T) {
	t.Parallel()
	h := volume.Header{Origin: vec3d.T{-1, 0, 0}, Basis: unitBasis, Counts: [3]int{3, 2, 2}, Units: volume.UnitsAngstrom}
	src := NewFunctionSource(h, func(x, y, z float64) float64 { return x + 2*y + 4*z }, Options{})
	assert.Equal(t, KindFunction, src.Kind())
	g, err := src.ReadVolume(false)
	require.NoError(t, err)
	assert.Equal(t, -1.0, g.Value(0, 0, 0))
	assert.Equal(t, 7.0, g.Value(2, 1, 1))

	_, err = NewFunctionSource(h, nil, Options{}).ReadVolume(false)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestFunctionSourceBohr(t *testing.T) {
	t.Parallel()
	h := volume.Header{Basis: unitBasis, Counts: [3]int{2, 2, 2}, Units: volume.UnitsBohr}
	src := NewFunctionSource(h, func(x, y, z float64) float64 { return x }, Options{})
	g, err := src.ReadVolume(false)
	require.NoError(t, err)
	assert.InDelta(t, volume.BohrToAngstrom, g.Value(1, 0, 0), 1e-12)
}

type fixedHydrogens struct{}

func (fixedHydrogens) Hydrogens(atoms []volume.Atom) []volume.Atom {
	return []volume.Atom{{Element: 1, Pos: vec3d.T{1, 0, 0}}}
}

func TestAtomGridSourceDensity(t *testing.T) {
	t.Parallel()
	src := NewAtomGridSource(Atoms{{Element: 6}}, nil, AtomParams{}, Options{})
	h, err := src.ReadHeader()
	require.NoError(t, err)
	assert.Equal(t, KindAtoms, src.Kind())
	assert.Equal(t, [3]int{15, 15, 15}, h.Counts)
	assert.InDelta(t, -3.4, h.Origin[0], 1e-12)

	centre := vec3d.T{}
	assert.InDelta(t, 1.0, src.value(&centre, 0), 1e-12)
	far := vec3d.T{1.7, 0, 0}
	assert.InDelta(t, math.Exp(-1), src.value(&far, 0), 1e-12)

	g, err := src.ReadVolume(false)
	require.NoError(t, err)
	assert.Equal(t, h.Counts, g.Counts)
	assert.Greater(t, g.Stats().Max, 0.9)
}

func TestAtomGridSourceSolvent(t *testing.T) {
	t.Parallel()
	src := NewAtomGridSource(Atoms{{Element: 8, Radius: 2}}, fixedHydrogens{}, AtomParams{Mode: AtomSolvent}, Options{})
	h, err := src.ReadHeader()
	require.NoError(t, err)
	require.Len(t, h.Atoms, 2)

	p := vec3d.T{-5, 0, 0}
	assert.InDelta(t, 5-2-DefaultProbeRadius, src.value(&p, src.params.probe()), 1e-12)

	g, err := src.ReadVolume(false)
	require.NoError(t, err)
	m := mesh.New()
	_, err = (&extract.Cubes{Grid: g, Params: extract.Params{Cutoff: 0}}).Run(m)
	require.NoError(t, err)
	assert.False(t, m.IsEmpty())
}

func TestAtomGridSourceEmpty(t *testing.T) {
	t.Parallel()
	_, err := NewAtomGridSource(Atoms{}, nil, AtomParams{}, Options{}).ReadHeader()
	assert.ErrorIs(t, err, ErrFormat)
}

func TestTINSource(t *testing.T) {
	t.Parallel()
	src := NewTINSource(&tin.Mesh{})
	assert.Equal(t, KindTIN, src.Kind())
	m, err := src.ReadMesh()
	require.NoError(t, err)
	assert.True(t, m.IsEmpty())
	_, err = src.ReadVolume(false)
	assert.ErrorIs(t, err, ErrNoGrid)
	var _ MeshSource = src
}

func sphereDocument(t *testing.T, units volume.Units) (*jvxl.Document, *mesh.Mesh) {
	t.Helper()
	h := volume.Header{Origin: vec3d.T{-2, -2, -2}, Basis: unitBasis, Counts: [3]int{5, 5, 5}, Units: units}
	g, err := NewFunctionSource(h, func(x, y, z float64) float64 {
		return 2 - math.Sqrt(x*x+y*y+z*z)
	}, Options{NativeUnits: true}).ReadVolume(false)
	require.NoError(t, err)
	m := mesh.New()
	s, err := (&extract.Cubes{Grid: g, Params: extract.Params{Cutoff: 0.5}}).Run(m)
	require.NoError(t, err)
	doc, err := jvxl.Encode(jvxl.Input{Mesh: m, Grid: g, Surface: s, Cutoff: 0.5},
		jvxl.EncodeOptions{Titles: [2]string{"sphere", "r=1.5"}, Units: units})
	require.NoError(t, err)
	return doc, m
}

func TestJvxlSource(t *testing.T) {
	t.Parallel()
	doc, m := sphereDocument(t, volume.UnitsAngstrom)
	data, err := doc.Bytes()
	require.NoError(t, err)

	src := NewJvxlSource(bytes.NewReader(data), Options{})
	h, err := src.ReadHeader()
	require.NoError(t, err)
	assert.Equal(t, []string{"sphere", "r=1.5"}, h.Titles)
	assert.Equal(t, 1, src.SurfaceCount())

	got, err := src.ReadMesh()
	require.NoError(t, err)
	assert.Equal(t, m.TriangleCount(), got.TriangleCount())
	require.NotNil(t, src.Decoded)
	assert.Equal(t, 0.5, src.Decoded.Definition.Cutoff)

	_, err = src.ReadVolume(false)
	assert.ErrorIs(t, err, ErrNoGrid)
}

func TestJvxlSourceBohr(t *testing.T) {
	t.Parallel()
	doc, m := sphereDocument(t, volume.UnitsBohr)
	got, err := NewDocumentSource(doc, Options{}).ReadMesh()
	require.NoError(t, err)
	require.Equal(t, m.VertexCount(), got.VertexCount())
	assert.InDelta(t, m.Vertices[0].Pos.Length()*volume.BohrToAngstrom, got.Vertices[0].Pos.Length(), 0.05)

	native, err := NewDocumentSource(doc, Options{NativeUnits: true}).ReadMesh()
	require.NoError(t, err)
	assert.InDelta(t, m.Vertices[0].Pos.Length(), native.Vertices[0].Pos.Length(), 0.05)
}

func TestJvxlSourceErrors(t *testing.T) {
	t.Parallel()
	doc := jvxl.NewDocument(volume.Header{Basis: unitBasis, Counts: [3]int{2, 2, 2}}, [2]string{})
	doc.Surfaces = []*jvxl.Surface{{Definition: jvxl.Definition{Param3: 10}}}
	_, err := NewDocumentSource(doc, Options{}).ReadMesh()
	assert.ErrorIs(t, err, jvxl.ErrColorOnly)

	_, err = NewDocumentSource(doc, Options{FileIndex: 4}).ReadMesh()
	assert.ErrorIs(t, err, ErrFormat)

	_, err = NewJvxlSource(bytes.NewReader([]byte("#JVXL\n")), Options{}).ReadHeader()
	assert.ErrorIs(t, err, ErrFormat)
}
