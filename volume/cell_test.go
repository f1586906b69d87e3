package volume

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitCellVectors(t *testing.T) {
	t.Parallel()
	v, err := DefaultCells{}.Vectors(UnitCell{A: 2, B: 3, C: 4, Alpha: 90, Beta: 90, Gamma: 90})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2, 0, 0}, v[0][:], 1e-12)
	assert.InDeltaSlice(t, []float64{0, 3, 0}, v[1][:], 1e-12)
	assert.InDeltaSlice(t, []float64{0, 0, 4}, v[2][:], 1e-12)
}

func TestUnitCellHexagonal(t *testing.T) {
	t.Parallel()
	v, err := UnitCell{A: 1, B: 1, C: 2, Alpha: 90, Beta: 90, Gamma: 120}.Vectors()
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-0.5, math.Sqrt(3) / 2, 0}, v[1][:], 1e-12)
	assert.InDelta(t, 2.0, v[2].Length(), 1e-12)
}

func TestUnitCellInvalid(t *testing.T) {
	t.Parallel()
	for _, c := range []UnitCell{
		{A: 0, B: 1, C: 1, Alpha: 90, Beta: 90, Gamma: 90},
		{A: 1, B: -1, C: 1, Alpha: 90, Beta: 90, Gamma: 90},
		{A: 1, B: 1, C: 1, Alpha: 10, Beta: 170, Gamma: 90},
	} {
		_, err := c.Vectors()
		assert.Error(t, err, "%+v", c)
	}
}
