package readers

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	vec3d "github.com/flywave/go3d/float64/vec3"

	"github.com/flywave/go-jvxl/internal/logging"
	"github.com/flywave/go-jvxl/mesh"
	"github.com/flywave/go-jvxl/volume"
)

const (
	PmeshMagic        = "PM"
	pmeshHeaderSize   = 12
	maxPmeshPolygonSz = 64
)

// meshHeader describes a vertex-only source: its bounding box with no grid.
func meshHeader(m *mesh.Mesh, title string) *volume.Header {
	bbox := m.BBox()
	return &volume.Header{
		Titles: []string{title, fmt.Sprintf("%d vertices %d triangles", m.VertexCount(), m.TriangleCount())},
		Origin: bbox[0],
		Basis:  [3]vec3d.T{vec3d.UnitX, vec3d.UnitY, vec3d.UnitZ},
		Units:  volume.UnitsAngstrom,
	}
}

// addPolygon adds a polygon given as vertex indices with the closing index
// already removed. Triangles and quads are kept.
func addPolygon(m *mesh.Mesh, idx []int) bool {
	n := m.VertexCount()
	for _, i := range idx {
		if i < 0 || i >= n {
			return false
		}
	}
	switch len(idx) {
	case 3:
		m.AddTriangle(idx[0], idx[1], idx[2], mesh.CheckAll)
	case 4:
		m.AddTriangle(idx[0], idx[1], idx[2], mesh.CheckEdge01|mesh.CheckEdge12)
		m.AddTriangle(idx[0], idx[2], idx[3], mesh.CheckEdge12|mesh.CheckEdge20)
	default:
		return false
	}
	return true
}

// PmeshReader reads the ASCII polygon mesh format: a vertex count, x y z
// per vertex, a polygon count, then per polygon its point count and
// indices. A closed polygon repeats its first index.
type PmeshReader struct {
	opts Options
	ts   *tokenScanner
	m    *mesh.Mesh
}

func NewPmeshReader(r io.Reader, opts Options) *PmeshReader {
	ts := newTokenScanner(r, opts.Recovery)
	ts.comments = true
	return &PmeshReader{opts: opts, ts: ts}
}

func (p *PmeshReader) Kind() Kind { return KindPmesh }

func (p *PmeshReader) ReadHeader() (*volume.Header, error) {
	m, err := p.ReadMesh()
	if err != nil {
		return nil, err
	}
	return meshHeader(m, "pmesh"), nil
}

func (p *PmeshReader) ReadVolume(bool) (*volume.Grid, error) {
	return nil, ErrNoGrid
}

func (p *PmeshReader) ReadMesh() (*mesh.Mesh, error) {
	if p.m != nil {
		return p.m, nil
	}
	nv, err := p.ts.integer()
	if err != nil {
		return nil, fmt.Errorf("pmesh vertex count: %w", err)
	}
	if nv < 0 {
		return nil, fmt.Errorf("%w: pmesh vertex count %d", ErrFormat, nv)
	}
	m := mesh.New()
	m.Vertices = make([]mesh.Vertex, 0, nv)
	for i := 0; i < nv; i++ {
		var v vec3d.T
		for k := range v {
			if v[k], err = p.ts.float(); err != nil {
				return nil, err
			}
		}
		m.AddVertex(v, 0, mesh.NoAssociation)
	}
	np, err := p.ts.integer()
	if err != nil {
		if p.ts.trunc.policy == RecoveryStrict {
			return nil, fmt.Errorf("%w: pmesh polygon count", ErrTruncated)
		}
		logging.Logger().Warn("pmesh has no polygon count", "vertices", nv)
		np = 0
	}
	skipped := 0
	idx := make([]int, 0, 5)
	for i := 0; i < np; i++ {
		count, err := p.ts.integer()
		if err != nil {
			if p.ts.trunc.policy == RecoveryStrict {
				return nil, fmt.Errorf("%w: pmesh polygon %d", ErrTruncated, i)
			}
			logging.Logger().Warn("pmesh polygons end early", "read", i, "declared", np)
			break
		}
		if count < 0 || count > maxPmeshPolygonSz {
			return nil, fmt.Errorf("%w: pmesh polygon size %d", ErrFormat, count)
		}
		idx = idx[:0]
		for k := 0; k < count; k++ {
			j, err := p.ts.integer()
			if err != nil {
				return nil, fmt.Errorf("pmesh polygon %d: %w", i, err)
			}
			idx = append(idx, j)
		}
		// 4 and 5 carry a closing index; 3 is an unclosed triangle.
		if count == 4 || count == 5 {
			idx = idx[:count-1]
		}
		if count < 3 || count > 5 || !addPolygon(m, idx) {
			skipped++
		}
	}
	if skipped > 0 {
		logging.Logger().Warn("pmesh polygons skipped", "skipped", skipped)
	}
	p.m = m
	return m, nil
}

// PmeshBinaryReader reads the binary polygon mesh format: "PM", a uint16
// version, int32 vertex and polygon counts, float32 xyz vertices, then
// polygons as an int32 count followed by int32 indices. Polygons may be
// open or closed; a trailing index equal to the first is dropped.
type PmeshBinaryReader struct {
	opts Options
	r    *bufio.Reader
	m    *mesh.Mesh

	Version int
}

type pmeshHeader struct {
	Magic    [2]byte
	Version  uint16
	Vertices int32
	Polygons int32
}

func NewPmeshBinaryReader(r io.Reader, opts Options) *PmeshBinaryReader {
	return &PmeshBinaryReader{opts: opts, r: bufio.NewReader(r)}
}

func (p *PmeshBinaryReader) Kind() Kind { return KindPmeshBinary }

func (p *PmeshBinaryReader) ReadHeader() (*volume.Header, error) {
	m, err := p.ReadMesh()
	if err != nil {
		return nil, err
	}
	return meshHeader(m, "binary pmesh"), nil
}

func (p *PmeshBinaryReader) ReadVolume(bool) (*volume.Grid, error) {
	return nil, ErrNoGrid
}

func (p *PmeshBinaryReader) ReadMesh() (*mesh.Mesh, error) {
	if p.m != nil {
		return p.m, nil
	}
	raw := make([]byte, pmeshHeaderSize)
	if _, err := io.ReadFull(p.r, raw); err != nil {
		return nil, fmt.Errorf("%w: pmesh header: %v", ErrFormat, err)
	}
	if string(raw[:2]) != PmeshMagic {
		return nil, fmt.Errorf("%w: pmesh magic %q", ErrFormat, raw[:2])
	}
	var order binary.ByteOrder = binary.LittleEndian
	if order.Uint16(raw[2:4]) > 0xff {
		order = binary.BigEndian
	}
	var h pmeshHeader
	if err := binary.Read(bytes.NewReader(raw), order, &h); err != nil {
		return nil, err
	}
	if h.Vertices < 0 || h.Polygons < 0 {
		return nil, fmt.Errorf("%w: pmesh counts %d %d", ErrFormat, h.Vertices, h.Polygons)
	}
	p.Version = int(h.Version)
	trunc := truncation{policy: p.opts.Recovery}

	m := mesh.New()
	xyz := make([]float32, 3*int(h.Vertices))
	if err := binary.Read(p.r, order, xyz); err != nil {
		if ferr := trunc.fail("pmesh vertices", err); ferr != nil {
			return nil, ferr
		}
	}
	m.Vertices = make([]mesh.Vertex, 0, h.Vertices)
	for i := 0; i < int(h.Vertices); i++ {
		m.AddVertex(vec3d.T{float64(xyz[3*i]), float64(xyz[3*i+1]), float64(xyz[3*i+2])}, 0, mesh.NoAssociation)
	}
	skipped := 0
	for i := 0; i < int(h.Polygons) && !trunc.Truncated(); i++ {
		var count int32
		if err := binary.Read(p.r, order, &count); err != nil {
			if ferr := trunc.fail("pmesh polygons", err); ferr != nil {
				return nil, ferr
			}
			break
		}
		if count < 0 || count > maxPmeshPolygonSz {
			return nil, fmt.Errorf("%w: pmesh polygon size %d", ErrFormat, count)
		}
		raw := make([]int32, count)
		if err := binary.Read(p.r, order, raw); err != nil {
			if ferr := trunc.fail("pmesh polygons", err); ferr != nil {
				return nil, ferr
			}
			break
		}
		idx := make([]int, len(raw))
		for k, v := range raw {
			idx[k] = int(v)
		}
		if n := len(idx); n > 3 && idx[n-1] == idx[0] {
			idx = idx[:n-1]
		}
		if !addPolygon(m, idx) {
			skipped++
		}
	}
	if skipped > 0 {
		logging.Logger().Warn("pmesh polygons skipped", "skipped", skipped)
	}
	p.m = m
	return m, nil
}
