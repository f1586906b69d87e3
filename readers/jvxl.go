package readers

import (
	"errors"
	"fmt"
	"io"

	"github.com/flywave/go-jvxl"
	"github.com/flywave/go-jvxl/mesh"
	"github.com/flywave/go-jvxl/volume"
)

// JvxlSource replays a surface stored in a JVXL document. Grid surfaces are
// re-marched from their inside map and edge fractions, so the document
// acts as a vertex-only source either way.
type JvxlSource struct {
	opts Options
	r    io.Reader
	doc  *jvxl.Document

	Decoded *jvxl.Decoded
}

func NewJvxlSource(r io.Reader, opts Options) *JvxlSource {
	return &JvxlSource{opts: opts, r: r}
}

// NewDocumentSource wraps an already parsed document.
func NewDocumentSource(doc *jvxl.Document, opts Options) *JvxlSource {
	return &JvxlSource{opts: opts, doc: doc}
}

func (s *JvxlSource) Kind() Kind { return KindJvxl }

func (s *JvxlSource) Document() (*jvxl.Document, error) {
	if s.doc != nil {
		return s.doc, nil
	}
	doc, err := jvxl.Read(s.r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	s.doc = doc
	return doc, nil
}

func (s *JvxlSource) ReadHeader() (*volume.Header, error) {
	doc, err := s.Document()
	if err != nil {
		return nil, err
	}
	h := doc.Volume
	h.Titles = []string{doc.Titles[0], doc.Titles[1]}
	prepareHeader(&h, s.opts)
	return &h, nil
}

func (s *JvxlSource) ReadVolume(bool) (*volume.Grid, error) {
	return nil, ErrNoGrid
}

func (s *JvxlSource) SurfaceCount() int {
	doc, err := s.Document()
	if err != nil {
		return 0
	}
	return len(doc.Surfaces)
}

// ReadMesh decodes the surface picked by Options.FileIndex.
func (s *JvxlSource) ReadMesh() (*mesh.Mesh, error) {
	if s.Decoded != nil {
		return s.Decoded.Mesh, nil
	}
	doc, err := s.Document()
	if err != nil {
		return nil, err
	}
	d, err := doc.Decode(s.opts.index())
	if err != nil {
		if errors.Is(err, jvxl.ErrColorOnly) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if !s.opts.NativeUnits && doc.Volume.Units == volume.UnitsBohr {
		for i := range d.Mesh.Vertices {
			d.Mesh.Vertices[i].Pos.Scale(volume.BohrToAngstrom)
		}
	}
	s.Decoded = d
	return d.Mesh, nil
}
