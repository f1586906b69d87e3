package extract

import (
	"math"

	"github.com/flywave/go-jvxl/mesh"
)

// Contour runs marching squares over the triangles of a planar mesh. Each
// level yields one ContourSet whose segments join the two triangle edges the
// level crosses; colors are matched to levels by position.
func Contour(m *mesh.Mesh, levels []float64, colors []uint32) []mesh.ContourSet {
	sets := make([]mesh.ContourSet, len(levels))
	for i, lv := range levels {
		cs := mesh.ContourSet{Value: lv, Members: make([]bool, len(m.Triangles))}
		if i < len(colors) {
			cs.Color = colors[i]
		}
		for t, tri := range m.Triangles {
			seg, ok := crossTriangle(m, tri, lv)
			if !ok {
				continue
			}
			seg.Triangle = t
			cs.Members[t] = true
			cs.Segments = append(cs.Segments, seg)
		}
		sets[i] = cs
	}
	return sets
}

func crossTriangle(m *mesh.Mesh, tri mesh.Triangle, level float64) (mesh.ContourSegment, bool) {
	var f [3]float64
	var typ uint8
	for k := 0; k < 3; k++ {
		a := m.Vertices[tri.V[k]].Value
		b := m.Vertices[tri.V[(k+1)%3]].Value
		if math.IsNaN(a) || math.IsNaN(b) {
			return mesh.ContourSegment{}, false
		}
		if (a < level) == (b < level) {
			continue
		}
		typ |= 1 << uint(k)
		f[k] = (level - a) / (b - a)
	}
	e1, e2, ok := mesh.Edges(typ)
	if !ok {
		return mesh.ContourSegment{}, false
	}
	return mesh.ContourSegment{Type: typ, F1: f[e1], F2: f[e2]}, true
}
