package mesh

import (
	vec3d "github.com/flywave/go3d/float64/vec3"
)

// Contour segment types name the two triangle edges a segment joins. Edge k
// runs from V[k] to V[(k+1)%3].
const (
	ContourEdges01 uint8 = 3
	ContourEdges02 uint8 = 5
	ContourEdges12 uint8 = 6
)

// ContourSegment crosses one triangle. F1 is the fraction along the lower
// numbered edge of Type, F2 along the higher one.
type ContourSegment struct {
	Triangle int
	Type     uint8
	F1, F2   float64
}

// ContourSet is one contour level. Members has one flag per triangle.
type ContourSet struct {
	Value    float64
	Color    uint32
	Members  []bool
	Segments []ContourSegment
}

// Edges returns the two edge numbers joined by a segment type.
func Edges(typ uint8) (int, int, bool) {
	switch typ {
	case ContourEdges01:
		return 0, 1, true
	case ContourEdges02:
		return 0, 2, true
	case ContourEdges12:
		return 1, 2, true
	}
	return 0, 0, false
}

// EdgePoint interpolates along edge k of triangle t.
func (m *Mesh) EdgePoint(t, k int, f float64) vec3d.T {
	tri := m.Triangles[t]
	a := m.Vertices[tri.V[k]].Pos
	b := m.Vertices[tri.V[(k+1)%3]].Pos
	d := vec3d.Sub(&b, &a)
	d.Scale(f)
	return vec3d.Add(&a, &d)
}

// Lines rebuilds the contour point pairs from the mesh geometry.
func (c *ContourSet) Lines(m *Mesh) [][2]vec3d.T {
	lines := make([][2]vec3d.T, 0, len(c.Segments))
	for _, s := range c.Segments {
		e1, e2, ok := Edges(s.Type)
		if !ok || s.Triangle < 0 || s.Triangle >= len(m.Triangles) {
			continue
		}
		lines = append(lines, [2]vec3d.T{m.EdgePoint(s.Triangle, e1, s.F1), m.EdgePoint(s.Triangle, e2, s.F2)})
	}
	return lines
}

func (c ContourSet) clone() ContourSet {
	c.Members = append([]bool(nil), c.Members...)
	c.Segments = append([]ContourSegment(nil), c.Segments...)
	return c
}
