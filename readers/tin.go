package readers

import (
	tin "github.com/flywave/go-tin"

	"github.com/flywave/go-jvxl/mesh"
	"github.com/flywave/go-jvxl/volume"
)

// TINSource hands a triangulated irregular network to the pipeline as a
// finished mesh. Vertex values are the elevations.
type TINSource struct {
	t *tin.Mesh
	m *mesh.Mesh
}

func NewTINSource(t *tin.Mesh) *TINSource {
	return &TINSource{t: t}
}

func (s *TINSource) Kind() Kind { return KindTIN }

func (s *TINSource) ReadHeader() (*volume.Header, error) {
	m, err := s.ReadMesh()
	if err != nil {
		return nil, err
	}
	return meshHeader(m, "tin"), nil
}

func (s *TINSource) ReadVolume(bool) (*volume.Grid, error) {
	return nil, ErrNoGrid
}

func (s *TINSource) ReadMesh() (*mesh.Mesh, error) {
	if s.m == nil {
		s.m = mesh.FromTIN(s.t)
	}
	return s.m, nil
}
