package jvxl

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flywave/go-jvxl/volume"
)

func TestDefinitionMode(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name       string
		p1, p2, p3 int
		mode       Mode
		runs       int
		edges      int
		colors     int
		precise    bool
	}{
		{"vertex only", 0, 0, 0, ModeVertexOnly, 0, 0, 0, false},
		{"vertex only colored", 0, 0, -40, ModeVertexOnly, 0, 0, 40, true},
		{"plane", -1, -1, 0, ModePlane, 0, 0, 0, false},
		{"contoured plane", -1, -2, -10, ModePlane, 0, 0, 10, true},
		{"contoured grid", -5, 10, 0, ModeContoured, 4, 10, 0, false},
		{"bicolor", 5, -10, 20, ModeBicolorMap, 5, 10, 20, false},
		{"precision color", 5, 10, -20, ModePrecisionColor, 5, 10, 20, true},
		{"cutoff", 5, 10, 20, ModeCutoffSurface, 5, 10, 20, false},
		{"uncolored cutoff", 3, 12, -1, ModeCutoffSurface, 3, 12, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := &Definition{Param1: tc.p1, Param2: tc.p2, Param3: tc.p3}
			assert.Equal(t, tc.mode, d.Mode())
			assert.Equal(t, tc.runs, d.RunCount())
			assert.Equal(t, tc.edges, d.EdgeDataLength())
			assert.Equal(t, tc.colors, d.ColorDataLength())
			assert.Equal(t, tc.colors > 0, d.IsColorMapped())
			assert.Equal(t, tc.precise, d.IsPrecisionColor())
		})
	}
}

func TestDefinitionLineRoundTrip(t *testing.T) {
	t.Parallel()
	pl := volume.NewPlane(0, 0, 1, -2.5)
	cases := []Definition{
		{Cutoff: 0.02, Param1: 12, Param2: 340},
		{Cutoff: -0.5, Param1: -13, Param2: 340, Param3: -680, NContours: 5,
			ValueMin: -1, ValueMax: 2, ValueMappedToRed: -1, ValueMappedToBlue: 2, HasRange: true},
		{Param1: -1, Param2: -2, Param3: -50, Plane: &pl, NContours: 3,
			ValueMin: 0, ValueMax: 4, ValueMappedToRed: 4, ValueMappedToBlue: 0, HasRange: true, InsideOut: true},
		{Param1: 0, Param2: 0, Param3: 10, ValueMin: 1, ValueMax: 1.5, ValueMappedToRed: 1, ValueMappedToBlue: 1.5, HasRange: true},
	}
	for _, want := range cases {
		line := want.String()
		got, err := ParseDefinition(line)
		require.NoError(t, err, line)
		if diff := cmp.Diff(want, *got); diff != "" {
			t.Errorf("ParseDefinition(%q) mismatch (-want +got):\n%s", line, diff)
		}
	}
}

func TestDefinitionString(t *testing.T) {
	t.Parallel()
	pl := volume.NewPlane(0, 0, 1, -2.5)
	d := Definition{Param1: -1, Param2: -1, Plane: &pl}
	assert.Equal(t, "0 -1 -1 0 0 0 1 -2.5", d.String())

	d = Definition{Cutoff: 0.5, Param1: 4, Param2: 9, Param3: 9, ValueMin: 0, ValueMax: 1, ValueMappedToRed: 0, ValueMappedToBlue: 1, HasRange: true}
	assert.Equal(t, "0.5 4 9 9 0 1 0 1", d.String())
}

func TestParseDefinitionErrors(t *testing.T) {
	t.Parallel()
	for _, line := range []string{"", "0.5 1 2", "x 1 2 3", "0 1 b 3", "0 -1 -1 0 1 2", "0 1 2 3 nope"} {
		_, err := ParseDefinition(line)
		assert.ErrorIs(t, err, ErrDecode, line)
	}
}

func TestDefinitionColorRange(t *testing.T) {
	t.Parallel()
	d := &Definition{Param1: 3, Param2: 4, Param3: 5}
	lo, hi := d.ColorRange()
	assert.Equal(t, []float64{0, 1}, []float64{lo, hi})

	d = &Definition{Param1: 3, Param2: 4, Param3: -10, ValueMin: 2, ValueMax: 2, ValueMappedToRed: 5, ValueMappedToBlue: 1, HasRange: true}
	lo, hi = d.ColorRange()
	assert.Equal(t, []float64{1, 5}, []float64{lo, hi})

	d.Param3 = 10
	lo, hi = d.ColorRange()
	assert.Equal(t, []float64{2, 2}, []float64{lo, hi})
}
