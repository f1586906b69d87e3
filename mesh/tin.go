package mesh

import (
	"unsafe"

	tin "github.com/flywave/go-tin"
	vec3d "github.com/flywave/go3d/float64/vec3"
)

// FromTIN copies a TIN into a Mesh. Elevation becomes the vertex value.
func FromTIN(t *tin.Mesh) *Mesh {
	m := New()
	vts := *(*[][3]float64)(unsafe.Pointer(&t.Vertices))
	m.Vertices = make([]Vertex, 0, len(vts))
	for _, v := range vts {
		m.AddVertex(vec3d.T(v), v[2], NoAssociation)
	}
	m.Triangles = make([]Triangle, 0, len(t.Faces))
	for _, f := range t.Faces {
		m.AddTriangle(int(f[0]), int(f[1]), int(f[2]), CheckAll)
	}
	return m
}
