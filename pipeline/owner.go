package pipeline

import "github.com/flywave/go-jvxl/mesh"

// MeshOwner takes over mesh storage from the pipeline. Before each stage
// that needs current positions the pipeline fetches a fresh copy through
// Vertices.
type MeshOwner interface {
	SetVertices(v []mesh.Vertex)
	SetTriangles(t []mesh.Triangle)
	InvalidateTriangles()
	// Vertices returns a copy of the current vertices, or nil to keep the
	// pipeline's own.
	Vertices() []mesh.Vertex
	GenerationComplete(m *mesh.Mesh)
	MappingComplete(m *mesh.Mesh)
}
