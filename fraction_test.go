package jvxl

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFractionCharacterRoundTrip(t *testing.T) {
	t.Parallel()
	for i := 0; i < 1000; i++ {
		f := float64(i) / 1000
		ch := FractionAsCharacter(f, EdgeAlphabet)
		assert.NotEqual(t, byte('\\'), ch, "f=%v", f)
		assert.GreaterOrEqual(t, int(ch), 33)
		assert.InDelta(t, f, FractionFromCharacter(ch, EdgeAlphabet, 0), 1.0/90, "f=%v", f)
		assert.InDelta(t, f, FractionFromCharacter(ch, EdgeAlphabet, 0.5), 1.0/90, "f=%v", f)
	}
}

func TestFractionCharacterNaN(t *testing.T) {
	t.Parallel()
	ch := FractionAsCharacter(math.NaN(), EdgeAlphabet)
	assert.Equal(t, byte('}'), ch)
	assert.True(t, math.IsNaN(FractionFromCharacter(ch, EdgeAlphabet, 0.5)))

	for _, c := range []byte{' ', '"', '~', '\t'} {
		assert.True(t, math.IsNaN(FractionFromCharacter(c, EdgeAlphabet, 0)), "char %q", c)
	}
}

func TestFractionCharacterBackslash(t *testing.T) {
	t.Parallel()
	// 57/90 lands on code point 92.
	f := 57.2 / 90
	assert.Equal(t, byte('!'), FractionAsCharacter(f, EdgeAlphabet))
	assert.InDelta(t, 57.0/90, FractionFromCharacter('!', EdgeAlphabet, 0), 1e-12)
}

func TestFractionCharacterClamp(t *testing.T) {
	t.Parallel()
	assert.Equal(t, byte(35), FractionAsCharacter(-0.5, EdgeAlphabet))
	assert.Equal(t, byte(124), FractionAsCharacter(1, EdgeAlphabet))
	assert.Equal(t, byte(124), FractionAsCharacter(7, EdgeAlphabet))
}

func TestValueCharacters2Precision(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(7))
	lo, hi := -3.0, 7.0
	tol := (hi - lo) / 8100
	for i := 0; i < 1000; i++ {
		v := lo + rng.Float64()*(hi-lo)
		a, b := ValueAsCharacters2(v, lo, hi, ColorAlphabet)
		assert.InDelta(t, v, ValueFromCharacters2(a, b, lo, hi, ColorAlphabet), tol, "v=%v", v)
	}
	a, b := ValueAsCharacters2(hi, lo, hi, ColorAlphabet)
	assert.InDelta(t, hi, ValueFromCharacters2(a, b, lo, hi, ColorAlphabet), tol)
}

func TestValueCharacters2FlatRange(t *testing.T) {
	t.Parallel()
	a, b := ValueAsCharacters2(4, 4, 4, ColorAlphabet)
	assert.Equal(t, 4.0, ValueFromCharacters2(a, b, 4, 4, ColorAlphabet))
}

func TestValueCharacters2NaN(t *testing.T) {
	t.Parallel()
	a, b := ValueAsCharacters2(math.NaN(), 0, 1, ColorAlphabet)
	assert.True(t, math.IsNaN(ValueFromCharacters2(a, b, 0, 1, ColorAlphabet)))
}
