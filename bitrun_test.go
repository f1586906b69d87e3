package jvxl

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitRunsRoundTrip(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		bits := make([]bool, rng.Intn(300))
		state := rng.Intn(2) == 0
		for j := range bits {
			if rng.Intn(5) == 0 {
				state = !state
			}
			bits[j] = state
		}
		runs := EncodeBitRuns(bits)
		assert.Equal(t, bits, DecodeBitRuns(runs, len(bits)))
	}
}

func TestEncodeBitRunsStartsClear(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []int{0, 2, 1}, EncodeBitRuns([]bool{true, true, false}))
	assert.Equal(t, []int{3}, EncodeBitRuns([]bool{false, false, false}))
	assert.Nil(t, EncodeBitRuns(nil))
}

func TestDecodeBitRunsRepeat(t *testing.T) {
	t.Parallel()
	got := DecodeBitRuns([]int{2, -2}, 8)
	assert.Equal(t, []bool{false, false, true, true, false, false, false, false}, got)
}

func TestDecodeBitRunsStopsAtTotal(t *testing.T) {
	t.Parallel()
	got := DecodeBitRuns([]int{1, 10, 4}, 4)
	assert.Equal(t, []bool{false, true, true, true}, got)
}

func TestFormatParseRuns(t *testing.T) {
	t.Parallel()
	runs := make([]int, 25)
	for i := range runs {
		runs[i] = i * 3
	}
	s := FormatRuns(runs, runsPerLine)
	assert.Equal(t, 1, strings.Count(s, "\n"))
	got, err := ParseRuns(s)
	require.NoError(t, err)
	assert.Equal(t, runs, got)

	_, err = ParseRuns("1 x 2")
	assert.ErrorIs(t, err, ErrDecode)
}
