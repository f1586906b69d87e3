// Package mesh holds triangulated surfaces: vertices with scalar values,
// triangles with edge check bits, and contour sets.
package mesh

import (
	"fmt"

	vec3d "github.com/flywave/go3d/float64/vec3"
)

// NoAssociation marks a vertex that is purely interpolated and not tied to
// a grid point.
const NoAssociation = -1

// Check bits flag triangle edges that lie on the polygon boundary.
const (
	CheckEdge01 uint8 = 1 << iota
	CheckEdge12
	CheckEdge20

	CheckAll = CheckEdge01 | CheckEdge12 | CheckEdge20
)

type Vertex struct {
	Pos   vec3d.T
	Value float64
	Assoc int
}

// Triangle windings are not consistent across a mesh.
type Triangle struct {
	V     [3]int
	Check uint8
	Color uint32
}

type Mesh struct {
	Vertices  []Vertex
	Triangles []Triangle
	Contours  []ContourSet

	sets  []int
	nSets int
}

func New() *Mesh {
	return &Mesh{}
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(p vec3d.T, value float64, assoc int) int {
	m.Vertices = append(m.Vertices, Vertex{Pos: p, Value: value, Assoc: assoc})
	return len(m.Vertices) - 1
}

func (m *Mesh) AddTriangle(a, b, c int, check uint8) {
	m.Triangles = append(m.Triangles, Triangle{V: [3]int{a, b, c}, Check: check})
	m.sets = nil
}

func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

func (m *Mesh) TriangleCount() int {
	return len(m.Triangles)
}

func (m *Mesh) IsEmpty() bool {
	return len(m.Triangles) == 0
}

func (m *Mesh) Values() []float64 {
	vals := make([]float64, len(m.Vertices))
	for i := range m.Vertices {
		vals[i] = m.Vertices[i].Value
	}
	return vals
}

// SetValues replaces the per-vertex scalars; used by the mapping pass.
func (m *Mesh) SetValues(vals []float64) error {
	if len(vals) != len(m.Vertices) {
		return fmt.Errorf("mesh: %d values for %d vertices", len(vals), len(m.Vertices))
	}
	for i := range m.Vertices {
		m.Vertices[i].Value = vals[i]
	}
	return nil
}

// SetTriangles replaces the triangle array and drops cached partitions.
func (m *Mesh) SetTriangles(t []Triangle) {
	m.Triangles = t
	m.sets = nil
}

func (m *Mesh) BBox() [2]vec3d.T {
	if len(m.Vertices) == 0 {
		return [2]vec3d.T{}
	}
	bbox := [2]vec3d.T{vec3d.MaxVal, vec3d.MinVal}
	for i := range m.Vertices {
		bbox[0] = vec3d.Min(&bbox[0], &m.Vertices[i].Pos)
		bbox[1] = vec3d.Max(&bbox[1], &m.Vertices[i].Pos)
	}
	return bbox
}

// Validate checks that every triangle references an existing vertex.
func (m *Mesh) Validate() error {
	n := len(m.Vertices)
	for i, t := range m.Triangles {
		for _, v := range t.V {
			if v < 0 || v >= n {
				return fmt.Errorf("mesh: triangle %d references vertex %d of %d", i, v, n)
			}
		}
	}
	return nil
}

// Clone copies vertices, triangles and contours.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Vertices:  append([]Vertex(nil), m.Vertices...),
		Triangles: append([]Triangle(nil), m.Triangles...),
	}
	for _, cs := range m.Contours {
		c.Contours = append(c.Contours, cs.clone())
	}
	return c
}
