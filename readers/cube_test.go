package readers

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flywave/go-jvxl/volume"
)

const cubeHeader = "water density\n" +
	"generated for tests\n" +
	"1 0.0 0.0 0.0\n" +
	"2 1.0 0.0 0.0\n" +
	"2 0.0 1.0 0.0\n" +
	"3 0.0 0.0 1.0\n" +
	"8 0.0 0.5 0.5 0.5\n"

func cubeValues(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "%d", i)
		if i%6 == 5 {
			sb.WriteByte('\n')
		} else {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

func TestCubeReader(t *testing.T) {
	t.Parallel()
	r := NewCubeReader(strings.NewReader(cubeHeader+cubeValues(12)), Options{})
	h, err := r.ReadHeader()
	require.NoError(t, err)
	assert.Equal(t, KindCube, r.Kind())
	assert.Equal(t, []string{"water density", "generated for tests"}, h.Titles)
	assert.Equal(t, [3]int{2, 2, 3}, h.Counts)
	assert.Equal(t, volume.UnitsAngstrom, h.Units)
	assert.InDelta(t, volume.BohrToAngstrom, h.Basis[0][0], 1e-12)
	require.Len(t, h.Atoms, 1)
	assert.Equal(t, 8, h.Atoms[0].Element)
	assert.Equal(t, 1, r.SurfaceCount())

	g, err := r.ReadVolume(false)
	require.NoError(t, err)
	require.NoError(t, g.Validate())
	assert.Equal(t, 1.0, g.Value(0, 0, 1))
	assert.Equal(t, 3.0, g.Value(0, 1, 0))
	assert.Equal(t, 11.0, g.Value(1, 1, 2))
	assert.False(t, r.Truncated())
}

func TestCubeReaderNativeUnits(t *testing.T) {
	t.Parallel()
	r := NewCubeReader(strings.NewReader(cubeHeader+cubeValues(12)), Options{NativeUnits: true})
	h, err := r.ReadHeader()
	require.NoError(t, err)
	assert.Equal(t, volume.UnitsBohr, h.Units)
	assert.Equal(t, 1.0, h.Basis[0][0])
}

func TestCubeReaderRunTokens(t *testing.T) {
	t.Parallel()
	r := NewCubeReader(strings.NewReader(cubeHeader+"10*0.5 2*-1\n"), Options{})
	g, err := r.ReadVolume(false)
	require.NoError(t, err)
	assert.Equal(t, 0.5, g.Data[9])
	assert.Equal(t, -1.0, g.Data[11])
}

func TestCubeReaderBadToken(t *testing.T) {
	t.Parallel()
	r := NewCubeReader(strings.NewReader(cubeHeader+"1 2 x\n"), Options{})
	_, err := r.ReadVolume(false)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestCubeReaderTruncation(t *testing.T) {
	t.Parallel()
	r := NewCubeReader(strings.NewReader(cubeHeader+cubeValues(7)), Options{})
	g, err := r.ReadVolume(false)
	require.NoError(t, err)
	assert.True(t, r.Truncated())
	assert.Equal(t, 6.0, g.Data[6])
	assert.Equal(t, []float64{0, 0, 0, 0, 0}, g.Data[7:])

	r = NewCubeReader(strings.NewReader(cubeHeader+cubeValues(7)), Options{Recovery: RecoveryStrict})
	_, err = r.ReadVolume(false)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestCubeReaderStacked(t *testing.T) {
	t.Parallel()
	in := "two orbitals\n\n" +
		"-1 0.0 0.0 0.0\n" +
		"2 1.0 0.0 0.0\n" +
		"2 0.0 1.0 0.0\n" +
		"2 0.0 0.0 1.0\n" +
		"1 0.0 0.0 0.0 0.0\n" +
		"2 10 11\n"
	var sb strings.Builder
	for p := 0; p < 8; p++ {
		fmt.Fprintf(&sb, "%d %d\n", p, -p)
	}
	in += sb.String()

	r := NewCubeReader(strings.NewReader(in), Options{FileIndex: 2})
	_, err := r.ReadHeader()
	require.NoError(t, err)
	assert.Equal(t, 2, r.SurfaceCount())
	assert.Equal(t, []int{10, 11}, r.SurfaceIDs())
	g, err := r.ReadVolume(false)
	require.NoError(t, err)
	assert.Equal(t, -7.0, g.Value(1, 1, 1))

	r = NewCubeReader(strings.NewReader(in), Options{})
	grids, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, grids, 2)
	assert.Equal(t, 5.0, grids[0].Data[5])
	assert.Equal(t, -5.0, grids[1].Data[5])

	r = NewCubeReader(strings.NewReader(in), Options{FileIndex: 3})
	_, err = r.ReadVolume(false)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestCubeReaderEmbeddedJvxl(t *testing.T) {
	t.Parallel()
	in := "a\nb\n-0 0 0 0\n2 1 0 0\n2 0 1 0\n2 0 0 1\n-1 35 90 35 90\n0.5 3 4 0\n"
	r := NewCubeReader(strings.NewReader(in), Options{})
	_, err := r.ReadHeader()
	require.NoError(t, err)
	_, err = r.ReadVolume(false)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestCubeReaderStride(t *testing.T) {
	t.Parallel()
	in := "a\nb\n0 0 0 0\n3 1 0 0\n3 0 1 0\n3 0 0 1\n" + cubeValues(27)
	g, err := NewCubeReader(strings.NewReader(in), Options{Stride: 2, NativeUnits: true}).ReadVolume(false)
	require.NoError(t, err)
	assert.Equal(t, [3]int{2, 2, 2}, g.Counts)
	assert.Equal(t, 26.0, g.Value(1, 1, 1))

	g, err = NewCubeReader(strings.NewReader(in), Options{Stride: 2}).ReadVolume(true)
	require.NoError(t, err)
	assert.Equal(t, [3]int{3, 3, 3}, g.Counts)
}

func TestCubeReaderBadHeader(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"", "a\n", "a\nb\n1 2\n", "a\nb\n-0 0 0 0\n2 1 0 0\n2 0 1 0\n2 0 0 1\nx\n"} {
		_, err := NewCubeReader(strings.NewReader(in), Options{}).ReadHeader()
		assert.ErrorIs(t, err, ErrFormat, "%q", in)
	}
}

func TestParseRecoveryPolicy(t *testing.T) {
	t.Parallel()
	for _, p := range []RecoveryPolicy{RecoveryLenient, RecoveryStrict} {
		got, err := ParseRecoveryPolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	_, err := ParseRecoveryPolicy("sloppy")
	assert.Error(t, err)
}
