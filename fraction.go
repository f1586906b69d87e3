package jvxl

import "math"

const (
	DefaultEdgeFractionBase   = 35
	DefaultEdgeFractionRange  = 90
	DefaultColorFractionBase  = 35
	DefaultColorFractionRange = 90
)

// Alphabet is a printable character range base..base+range; base+range
// itself encodes NaN.
type Alphabet struct {
	Base  int
	Range int
}

var (
	EdgeAlphabet  = Alphabet{DefaultEdgeFractionBase, DefaultEdgeFractionRange}
	ColorAlphabet = Alphabet{DefaultColorFractionBase, DefaultColorFractionRange}
)

func (a Alphabet) NaN() byte {
	return byte(a.Base + a.Range)
}

// FractionAsCharacter encodes a fraction in [0,1) as one character. The
// backslash code point is written as '!'.
func FractionAsCharacter(f float64, a Alphabet) byte {
	if math.IsNaN(f) {
		f = 1.0001
	} else if f > 0.9999 {
		f = 0.9999
	}
	ich := int(math.Floor(f*float64(a.Range) + float64(a.Base)))
	if ich < a.Base {
		return byte(a.Base)
	}
	if ich == '\\' {
		return '!'
	}
	return byte(ich)
}

// FractionFromCharacter inverts FractionAsCharacter. offset places the result
// within the character's bucket (0.5 for the bucket centre). Characters
// outside the alphabet decode as NaN.
func FractionFromCharacter(ch byte, a Alphabet, offset float64) float64 {
	ich := int(ch)
	if ich == a.Base+a.Range {
		return math.NaN()
	}
	if ch == '!' {
		ich = '\\'
	}
	if ich < a.Base || ich > a.Base+a.Range {
		return math.NaN()
	}
	f := (float64(ich-a.Base) + offset) / float64(a.Range)
	return clamp(f, 0, 0.999999)
}

// ValueAsCharacters2 encodes v within [min,max] as a coarse character and a
// residual character, about 1/range² resolution.
func ValueAsCharacters2(v, min, max float64, a Alphabet) (byte, byte) {
	f := 0.0
	if delta := max - min; delta != 0 {
		f = (v - min) / delta
	}
	if math.IsNaN(v) {
		f = v
	}
	hi := FractionAsCharacter(f, a)
	f -= FractionFromCharacter(hi, a, 0)
	lo := FractionAsCharacter(f*float64(a.Range), a)
	return hi, lo
}

func FractionFromCharacters2(hi, lo byte, a Alphabet) float64 {
	f := FractionFromCharacter(hi, a, 0)
	r := FractionFromCharacter(lo, a, 0.5)
	return f + r/float64(a.Range)
}

func ValueFromCharacters2(hi, lo byte, min, max float64, a Alphabet) float64 {
	return min + FractionFromCharacters2(hi, lo, a)*(max-min)
}

func clamp(val float64, minVal float64, maxVal float64) float64 {
	return math.Max(math.Min(val, maxVal), minVal)
}
