package volume

import (
	"bytes"
	"io"
	"strings"
	"testing"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lines struct {
	l []string
}

func newLines(s string) *lines {
	return &lines{l: strings.Split(strings.TrimSuffix(s, "\n"), "\n")}
}

func (s *lines) NextLine() (string, error) {
	if len(s.l) == 0 {
		return "", io.EOF
	}
	l := s.l[0]
	s.l = s.l[1:]
	return l, nil
}

func TestReadPreamble(t *testing.T) {
	t.Parallel()
	in := "2 0.0 -1.5 2.0\n" +
		"10 0.2 0 0\n" +
		"12 0 0.2 0\n" +
		"14 0 0 0.2\n" +
		"8 0.0 0.0 0.0 0.0\n" +
		"1 0.5 0.9 0.0 0.0\n"
	h, extended, err := ReadPreamble(newLines(in), []string{"a", "b"})
	require.NoError(t, err)
	assert.False(t, extended)
	assert.Equal(t, UnitsBohr, h.Units)
	assert.Equal(t, [3]int{10, 12, 14}, h.Counts)
	assert.Equal(t, vec3d.T{0, -1.5, 2}, h.Origin)
	assert.Equal(t, []string{"a", "b"}, h.Titles)
	require.Len(t, h.Atoms, 2)
	assert.Equal(t, 1, h.Atoms[1].Element)
	assert.Equal(t, 0.5, h.Atoms[1].Charge)
	assert.Equal(t, vec3d.T{0.9, 0, 0}, h.Atoms[1].Pos)
}

func TestReadPreambleUnits(t *testing.T) {
	t.Parallel()
	h, extended, err := ReadPreamble(newLines("-0 0 0 0\n-2 1 0 0\n2 0 1 0\n2 0 0 1\n"), nil)
	require.NoError(t, err)
	assert.True(t, extended)
	assert.Equal(t, UnitsAngstrom, h.Units)
	assert.Equal(t, [3]int{2, 2, 2}, h.Counts)

	h, _, err = ReadPreamble(newLines("0 0 0 0 ANGSTROMS\n2 1 0 0\n2 0 1 0\n2 0 0 1\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, UnitsAngstrom, h.Units)
}

func TestPreambleRoundTrip(t *testing.T) {
	t.Parallel()
	want := &Header{
		Origin: vec3d.T{-1.25, 0, 3},
		Basis:  [3]vec3d.T{{0.3, 0, 0}, {0.1, 0.3, 0}, {0, 0, 0.3}},
		Counts: [3]int{7, 8, 9},
		Atoms:  []Atom{{Element: 6, Charge: 6, Pos: vec3d.T{1, 2, 3}}},
		Units:  UnitsAngstrom,
	}
	var buf bytes.Buffer
	require.NoError(t, want.WritePreamble(&buf, true))
	got, extended, err := ReadPreamble(newLines(buf.String()), nil)
	require.NoError(t, err)
	assert.True(t, extended)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("preamble mismatch (-want +got):\n%s", diff)
	}
}

func TestReadPreambleErrors(t *testing.T) {
	t.Parallel()
	for _, in := range []string{
		"",
		"1 0 0\n",
		"x 0 0 0\n",
		"0 0 0 0\n2 1 0\n",
		"0 0 0 0\n2 1 0 0\n2 0 1 0\n",
		"1 0 0 0\n2 1 0 0\n2 0 1 0\n2 0 0 1\n",
		"1 0 0 0\n2 1 0 0\n2 0 1 0\n2 0 0 1\n6 0 0 0\n",
	} {
		_, _, err := ReadPreamble(newLines(in), nil)
		assert.ErrorIs(t, err, ErrPreamble, "%q", in)
	}
}
