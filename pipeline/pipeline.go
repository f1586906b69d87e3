// Package pipeline sequences reading, extraction, coloring and encoding of
// one surface request.
//
// A Pipeline moves INIT -> DATA_READ -> DATA_COLORED. The only step back is
// a mapping pass, which re-enters DATA_READ to recolor the existing mesh
// from a different grid without extracting it again.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/flywave/go-jvxl"
	"github.com/flywave/go-jvxl/colormap"
	"github.com/flywave/go-jvxl/extract"
	"github.com/flywave/go-jvxl/internal/logging"
	"github.com/flywave/go-jvxl/mesh"
	"github.com/flywave/go-jvxl/readers"
	"github.com/flywave/go-jvxl/volume"
)

var (
	ErrNoSurface = errors.New("pipeline: no surface produced")
	ErrState     = errors.New("pipeline: illegal state transition")
)

type State int

const (
	StateInit State = iota
	StateDataRead
	StateDataColored
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateDataRead:
		return "DATA_READ"
	case StateDataColored:
		return "DATA_COLORED"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Params struct {
	Extract extract.Params
	// Plane slices the grid instead of extracting an isosurface; the slice
	// is colored by the grid values.
	Plane     *volume.Plane
	NContours int
	Color     colormap.Params
	Encode    jvxl.EncodeOptions
}

func DefaultParams() Params {
	return Params{Extract: extract.Params{AssocCutoff: extract.DefaultAssocCutoff}}
}

type Option func(*Pipeline)

// WithMeshOwner hands vertex and triangle storage to o.
func WithMeshOwner(o MeshOwner) Option {
	return func(p *Pipeline) { p.owner = o }
}

type Pipeline struct {
	params Params
	owner  MeshOwner
	state  State
	runID  string
	log    *slog.Logger

	header  *volume.Header
	grid    *volume.Grid
	surface *extract.Surface
	plane   *volume.Grid
	mapGrid *volume.Grid
	mesh    *mesh.Mesh
	colors  *colormap.Result
	doc     *jvxl.Document
}

func New(params Params, opts ...Option) *Pipeline {
	p := &Pipeline{params: params, runID: uuid.New().String()}
	for _, o := range opts {
		o(p)
	}
	p.log = logging.Logger().With("run_id", p.runID)
	return p
}

func (p *Pipeline) State() State { return p.state }

func (p *Pipeline) RunID() string { return p.runID }

func (p *Pipeline) Mesh() *mesh.Mesh { return p.mesh }

func (p *Pipeline) Colors() *colormap.Result { return p.colors }

func (p *Pipeline) Document() *jvxl.Document { return p.doc }

func (p *Pipeline) transition(to State) {
	p.log.Info("pipeline state", "from", p.state.String(), "to", to.String())
	p.state = to
}

// Generate reads src and extracts the surface: INIT -> DATA_READ.
func (p *Pipeline) Generate(src readers.Source) error {
	if p.state != StateInit {
		return fmt.Errorf("%w: generate in %s", ErrState, p.state)
	}
	h, err := src.ReadHeader()
	if err != nil {
		return err
	}
	p.header = h
	if ms, ok := src.(readers.MeshSource); ok {
		m, err := ms.ReadMesh()
		if err != nil {
			return err
		}
		p.mesh = m
		if js, ok := src.(*readers.JvxlSource); ok && js.Decoded != nil {
			p.params.Extract.Cutoff = js.Decoded.Definition.Cutoff
		}
	} else {
		g, err := src.ReadVolume(false)
		if err != nil {
			return err
		}
		if err := p.extract(g); err != nil {
			return err
		}
	}
	return p.generated(src.Kind())
}

func (p *Pipeline) extract(g *volume.Grid) error {
	p.grid = g
	p.mesh = mesh.New()
	if pl := p.params.Plane; pl != nil {
		p.plane = volume.NewPlaneGrid(g.Origin, g.Basis, g.Counts, *pl)
		c := &extract.Cubes{Grid: p.plane, Params: extract.Params{AssocCutoff: p.params.Extract.AssocCutoff}}
		if _, err := c.Run(p.mesh); err != nil {
			return err
		}
		vals := make([]float64, len(p.mesh.Vertices))
		for i := range p.mesh.Vertices {
			vals[i] = g.Sample(&p.mesh.Vertices[i].Pos)
		}
		if err := p.mesh.SetValues(vals); err != nil {
			return err
		}
	} else {
		c := &extract.Cubes{Grid: g, Params: p.params.Extract}
		s, err := c.Run(p.mesh)
		if err != nil {
			return err
		}
		p.surface = s
	}
	// Vertex values now carry everything coloring needs from the grid.
	g.Release()
	return nil
}

func (p *Pipeline) generated(kind readers.Kind) error {
	if p.mesh == nil || p.mesh.IsEmpty() {
		p.log.Warn("no surface", "source", kind.String(), "cutoff", p.params.Extract.Cutoff)
		return ErrNoSurface
	}
	if p.owner != nil {
		p.owner.SetVertices(p.mesh.Vertices)
		p.owner.SetTriangles(p.mesh.Triangles)
		p.owner.GenerationComplete(p.mesh)
	}
	p.log.Debug("surface generated",
		"source", kind.String(),
		"vertices", p.mesh.VertexCount(),
		"triangles", p.mesh.TriangleCount())
	p.transition(StateDataRead)
	return nil
}

// Map recolors the existing mesh from the grid of src. It is allowed after
// Generate and after Color, and always returns to DATA_READ.
func (p *Pipeline) Map(src readers.Source) error {
	if p.state == StateInit {
		return fmt.Errorf("%w: map before generate", ErrState)
	}
	if _, ok := src.(readers.MeshSource); ok {
		return fmt.Errorf("%w: %s mapping source", jvxl.ErrColorOnly, src.Kind())
	}
	p.refresh()
	g, err := src.ReadVolume(true)
	if err != nil {
		return err
	}
	vals := make([]float64, len(p.mesh.Vertices))
	for i := range p.mesh.Vertices {
		vals[i] = g.Sample(&p.mesh.Vertices[i].Pos)
	}
	if err := p.mesh.SetValues(vals); err != nil {
		return err
	}
	p.mapGrid = g
	p.colors, p.doc = nil, nil
	if p.owner != nil {
		p.owner.InvalidateTriangles()
		p.owner.MappingComplete(p.mesh)
	}
	p.transition(StateDataRead)
	return nil
}

// Color maps vertex values to colors and encodes the surface:
// DATA_READ -> DATA_COLORED.
func (p *Pipeline) Color() (*jvxl.Document, error) {
	if p.state != StateDataRead {
		return nil, fmt.Errorf("%w: color in %s", ErrState, p.state)
	}
	p.refresh()
	cp := p.params.Color
	cp.NContours = p.params.NContours
	res, err := colormap.Map(p.mesh, cp)
	if err != nil {
		return nil, err
	}
	p.colors = res
	if len(res.ContourValues) > 0 {
		p.mesh.Contours = extract.Contour(p.mesh, res.ContourValues, res.ContourColors)
	}

	in := jvxl.Input{Mesh: p.mesh, Cutoff: p.params.Extract.Cutoff, Colors: res}
	switch {
	case p.plane != nil:
		in.Grid, in.Plane = p.plane, p.params.Plane
	case p.surface != nil:
		in.Grid, in.Surface = p.grid, p.surface
	}
	opts := p.params.Encode
	if opts.Titles == [2]string{} && p.header != nil {
		copy(opts.Titles[:], p.header.Titles)
	}
	if opts.Atoms == nil && p.header != nil {
		opts.Atoms = p.header.Atoms
		opts.Units = p.header.Units
	}
	opts.Header = append(append([]string(nil), opts.Header...), "run "+p.runID)
	doc, err := jvxl.Encode(in, opts)
	if err != nil {
		return nil, err
	}
	p.doc = doc
	if p.mapGrid != nil {
		p.mapGrid.Release()
		p.mapGrid = nil
	}
	p.transition(StateDataColored)
	return doc, nil
}

// refresh pulls vertex positions back from the mesh owner.
func (p *Pipeline) refresh() {
	if p.owner == nil {
		return
	}
	if vs := p.owner.Vertices(); vs != nil && len(vs) == len(p.mesh.Vertices) {
		p.mesh.Vertices = vs
	}
}

// Run generates, optionally maps, then colors one surface.
func Run(ctx context.Context, params Params, src, mapSrc readers.Source, opts ...Option) (*jvxl.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := New(params, opts...)
	if err := p.Generate(src); err != nil {
		return nil, err
	}
	if mapSrc != nil {
		if err := p.Map(mapSrc); err != nil {
			return nil, err
		}
	}
	return p.Color()
}

// RunAll extracts every stacked grid of src into one document. ctx is
// checked between surfaces, never during one. Grids that yield no surface
// are skipped; ErrNoSurface is returned only when none does.
func RunAll(ctx context.Context, params Params, src readers.MultiSource, opts ...Option) (*jvxl.Document, error) {
	h, err := src.ReadHeader()
	if err != nil {
		return nil, err
	}
	grids, err := src.ReadAll()
	if err != nil {
		return nil, err
	}
	var doc *jvxl.Document
	for i, g := range grids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := New(params, opts...)
		p.header = h
		if err := p.extract(g); err != nil {
			return nil, fmt.Errorf("surface %d: %w", i+1, err)
		}
		if err := p.generated(src.Kind()); err != nil {
			if errors.Is(err, ErrNoSurface) {
				continue
			}
			return nil, err
		}
		d, err := p.Color()
		if err != nil {
			return nil, fmt.Errorf("surface %d: %w", i+1, err)
		}
		if doc == nil {
			doc = d
		} else {
			doc.Surfaces = append(doc.Surfaces, d.Surfaces...)
		}
	}
	if doc == nil {
		return nil, ErrNoSurface
	}
	return doc, nil
}
