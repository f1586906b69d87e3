package jvxl

import (
	"fmt"
	"strings"

	vec3d "github.com/flywave/go3d/float64/vec3"
)

// EncodeVertices writes every coordinate as a precision pair against bbox.
// All high characters come first, then all low characters.
func EncodeVertices(pts []vec3d.T, bbox [2]vec3d.T, a Alphabet) string {
	hi := make([]byte, 0, 3*len(pts))
	lo := make([]byte, 0, 3*len(pts))
	for _, p := range pts {
		for k := 0; k < 3; k++ {
			h, l := ValueAsCharacters2(p[k], bbox[0][k], bbox[1][k], a)
			hi = append(hi, h)
			lo = append(lo, l)
		}
	}
	var sb strings.Builder
	sb.Grow(6 * len(pts))
	sb.Write(hi)
	sb.Write(lo)
	return sb.String()
}

func DecodeVertices(s string, n int, bbox [2]vec3d.T, a Alphabet) ([]vec3d.T, error) {
	if len(s) < 6*n {
		return nil, fmt.Errorf("%w: %d vertex characters for %d vertices", ErrDecode, len(s), n)
	}
	pts := make([]vec3d.T, n)
	off := 3 * n
	for i := range pts {
		for k := 0; k < 3; k++ {
			j := 3*i + k
			pts[i][k] = ValueFromCharacters2(s[j], s[off+j], bbox[0][k], bbox[1][k], a)
		}
	}
	return pts, nil
}

// EncodeValues writes one character per value in compact mode, or a
// precision pair per value (highs first) otherwise.
func EncodeValues(vals []float64, lo, hi float64, a Alphabet, precise bool) string {
	if !precise {
		b := make([]byte, len(vals))
		for i, v := range vals {
			f := 0.0
			if hi != lo {
				f = (v - lo) / (hi - lo)
			}
			b[i] = FractionAsCharacter(f, a)
		}
		return string(b)
	}
	h := make([]byte, len(vals))
	l := make([]byte, len(vals))
	for i, v := range vals {
		h[i], l[i] = ValueAsCharacters2(v, lo, hi, a)
	}
	return string(h) + string(l)
}

// DecodeValues inverts EncodeValues. Missing characters decode as NaN.
func DecodeValues(s string, n int, lo, hi float64, a Alphabet, precise bool) []float64 {
	vals := make([]float64, n)
	nan := a.NaN()
	at := func(i int) byte {
		if i < len(s) {
			return s[i]
		}
		return nan
	}
	for i := range vals {
		if precise {
			vals[i] = ValueFromCharacters2(at(i), at(n+i), lo, hi, a)
		} else {
			vals[i] = lo + FractionFromCharacter(at(i), a, 0.5)*(hi-lo)
		}
	}
	return vals
}
