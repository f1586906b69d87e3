package readers

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSniff(t *testing.T) {
	t.Parallel()
	embedded := "a\nb\n-1 0 0 0\n2 1 0 0\n2 0 1 0\n2 0 0 1\n8 0 0 0 0\n-1 35 90 35 90\n"
	cases := []struct {
		name string
		head []byte
		want Kind
	}{
		{"binary pmesh", binaryPmesh(t, binary.LittleEndian, squareVerts, nil), KindPmeshBinary},
		{"mrc", mrcFile(t, binary.LittleEndian, MRCFloat32, nil), KindMRC},
		{"mrc without stamp", mrcFile(t, binary.BigEndian, MRCFloat32, func(h *mrcHeader) { h.Map = [4]byte{} }), KindMRC},
		{"jvxl", []byte("#JVXL 2.0\ntitle\n"), KindJvxl},
		{"ascii pmesh", []byte(asciiPmesh), KindPmesh},
		{"bare pmesh", []byte("3\n0 0 0\n1 0 0\n0 1 0\n1\n3\n0 1 2\n"), KindPmesh},
		{"cube", []byte(cubeHeader + cubeValues(12)), KindCube},
		{"cube with jvxl surfaces", []byte(embedded), KindJvxl},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Sniff(tc.head)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := Sniff([]byte("hello world\n"))
	assert.ErrorIs(t, err, ErrFormat)
}

func TestOpen(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "density.cube")
	require.NoError(t, os.WriteFile(path, []byte(cubeHeader+cubeValues(12)), 0o644))

	src, err := Open(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, KindCube, src.Kind())
	g, err := src.ReadVolume(false)
	require.NoError(t, err)
	assert.Equal(t, 12, g.Len())

	_, err = Open(filepath.Join(dir, "missing.cube"), Options{})
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte("nothing to see"), 0o644))
	_, err = Open(bad, Options{})
	assert.ErrorIs(t, err, ErrFormat)
}

func TestNewSourceKinds(t *testing.T) {
	t.Parallel()
	for _, k := range []Kind{KindCube, KindMRC, KindPmesh, KindPmeshBinary, KindJvxl} {
		src, err := NewSource(k, nil, Options{})
		require.NoError(t, err)
		assert.Equal(t, k, src.Kind())
	}
	for _, k := range []Kind{KindFunction, KindAtoms, KindTIN} {
		_, err := NewSource(k, nil, Options{})
		assert.ErrorIs(t, err, ErrFormat)
	}
}
