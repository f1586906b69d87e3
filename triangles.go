package jvxl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/flywave/go-jvxl/internal/logging"
	"github.com/flywave/go-jvxl/mesh"
)

const maxCharDelta = 32

// renumber orders vertices by first use in a triangle. Vertices no triangle
// references follow in their original order. order maps new index to old,
// index maps old to new.
func renumber(m *mesh.Mesh) (order []int, index []int) {
	index = make([]int, len(m.Vertices))
	for i := range index {
		index[i] = -1
	}
	order = make([]int, 0, len(m.Vertices))
	for _, t := range m.Triangles {
		for _, v := range t.V {
			if index[v] >= 0 {
				continue
			}
			index[v] = len(order)
			order = append(order, v)
		}
	}
	for v := range index {
		if index[v] < 0 {
			index[v] = len(order)
			order = append(order, v)
		}
	}
	return order, index
}

// EncodeTriangles writes each index as its difference from the previous
// one, numbering vertices from 1. Differences within ±32 take one
// character, '\\'+diff with zero written as '!'. Larger ones are decimal,
// with a '+' when a positive number follows another number.
func EncodeTriangles(tris [][3]int) string {
	var sb strings.Builder
	sb.Grow(len(tris) * 3)
	last := 1
	addPlus := false
	for _, t := range tris {
		for _, v := range t {
			i := v + 1
			diff := i - last
			last = i
			switch {
			case diff == 0:
				sb.WriteByte('!')
				addPlus = false
			case diff >= -maxCharDelta && diff <= maxCharDelta:
				sb.WriteByte(byte('\\' + diff))
				addPlus = false
			default:
				if addPlus && diff > 0 {
					sb.WriteByte('+')
				}
				sb.WriteString(strconv.Itoa(diff))
				addPlus = true
			}
		}
	}
	return sb.String()
}

// DecodeTriangles reads nTriangles index triples. Triangles that reference
// a vertex outside [0,nVertices) are dropped with a warning.
func DecodeTriangles(s string, nTriangles, nVertices int) ([][3]int, error) {
	tris := make([][3]int, 0, nTriangles)
	last := 1
	pos := 0
	dropped := 0
	for len(tris)+dropped < nTriangles {
		var t [3]int
		ok := true
		for k := 0; k < 3; k++ {
			if pos >= len(s) {
				return tris, fmt.Errorf("%w: triangle data ends after %d of %d triangles", ErrDecode, len(tris)+dropped, nTriangles)
			}
			var diff int
			c := s[pos]
			switch {
			case c == '!':
				pos++
			case c == '+' || c == '-' || (c >= '0' && c <= '9'):
				end := pos + 1
				for end < len(s) && s[end] >= '0' && s[end] <= '9' {
					end++
				}
				n, err := strconv.Atoi(s[pos:end])
				if err != nil {
					return tris, fmt.Errorf("%w: triangle index %q", ErrDecode, s[pos:end])
				}
				diff = n
				pos = end
			default:
				diff = int(c) - '\\'
				pos++
			}
			last += diff
			t[k] = last - 1
			if t[k] < 0 || t[k] >= nVertices {
				ok = false
			}
		}
		if !ok {
			dropped++
			continue
		}
		tris = append(tris, t)
	}
	if dropped > 0 {
		logging.Logger().Warn("dropped triangles with unknown vertices", "dropped", dropped, "vertices", nVertices)
	}
	return tris, nil
}
