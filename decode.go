package jvxl

import (
	"fmt"
	"math"

	vec3d "github.com/flywave/go3d/float64/vec3"

	"github.com/flywave/go-jvxl/extract"
	"github.com/flywave/go-jvxl/internal/logging"
	"github.com/flywave/go-jvxl/mesh"
	"github.com/flywave/go-jvxl/volume"
)

// Decoded is a rebuilt surface. Values holds the decoded color value of
// each vertex and is nil when the surface was not color mapped.
type Decoded struct {
	Mesh       *mesh.Mesh
	Values     []float64
	Definition Definition
	Lo, Hi     float64
}

// fractionStream replays edge characters. Running past the end yields NaN.
type fractionStream struct {
	data  string
	a     Alphabet
	pos   int
	short bool
}

func (f *fractionStream) NextFraction() float64 {
	if f.pos >= len(f.data) {
		f.short = true
		f.pos++
		return math.NaN()
	}
	c := f.data[f.pos]
	f.pos++
	return FractionFromCharacter(c, f.a, 0.5)
}

// Grid returns the document geometry without values.
func (d *Document) Grid() *volume.Grid {
	return &volume.Grid{Origin: d.Volume.Origin, Basis: d.Volume.Basis, Counts: d.Volume.Counts}
}

// Decode rebuilds surface i (0-based).
func (d *Document) Decode(i int) (*Decoded, error) {
	if i < 0 || i >= len(d.Surfaces) {
		return nil, fmt.Errorf("jvxl: surface %d of %d", i+1, len(d.Surfaces))
	}
	s := d.Surfaces[i]
	def := s.Definition
	out := &Decoded{Definition: def, Mesh: mesh.New()}

	var err error
	switch def.Mode() {
	case ModeVertexOnly:
		err = d.decodeMesh(s, out)
	case ModePlane:
		err = d.decodePlane(s, out)
	default:
		err = d.decodeGrid(s, out)
	}
	if err != nil {
		return nil, err
	}
	m := out.Mesh

	if def.IsColorMapped() && len(m.Vertices) > 0 {
		out.Lo, out.Hi = def.ColorRange()
		data := s.ColorData
		precise := def.IsPrecisionColor()
		if def.Mode() == ModeVertexOnly && s.Data != nil && s.Data.Colors != nil {
			c := s.Data.Colors
			data = Uncompress(c.Data)
			precise = c.Encoding == EncodingColorsPrecise
			if !def.HasRange {
				out.Lo, out.Hi = c.Min, c.Max
			}
		}
		want := len(m.Vertices)
		if precise {
			want *= 2
		}
		if len(data) < want {
			logging.Logger().Warn("short color data", "have", len(data), "want", want)
		}
		out.Values = DecodeValues(data, len(m.Vertices), out.Lo, out.Hi, d.ColorAlphabet, precise)
		if err := m.SetValues(out.Values); err != nil {
			return nil, err
		}
	}

	if s.Data != nil && s.Data.Contours != nil {
		sets, err := d.decodeContours(s.Data.Contours, len(m.Triangles))
		if err != nil {
			return nil, err
		}
		m.Contours = sets
	}
	logging.Logger().Debug("decoded surface",
		"mode", def.Mode().String(),
		"vertices", len(m.Vertices),
		"triangles", len(m.Triangles))
	return out, nil
}

func (d *Document) decodeGrid(s *Surface, out *Decoded) error {
	def := s.Definition
	if len(s.Runs) == 0 {
		if def.IsColorMapped() {
			return ErrColorOnly
		}
		return fmt.Errorf("%w: surface has no inside map", ErrDecode)
	}
	g := d.Grid()
	stream := &fractionStream{data: s.EdgeData, a: d.EdgeAlphabet}
	c := &extract.Cubes{
		Grid:      g,
		Params:    extract.Params{Cutoff: def.Cutoff, AssocCutoff: extract.DefaultAssocCutoff},
		Inside:    DecodeBitRuns(s.Runs, g.Len()),
		Fractions: stream,
	}
	if _, err := c.Run(out.Mesh); err != nil {
		return err
	}
	if stream.short {
		logging.Logger().Warn("edge data ran out", "have", len(s.EdgeData), "needed", stream.pos)
	} else if stream.pos < len(s.EdgeData) {
		logging.Logger().Warn("unused edge data", "have", len(s.EdgeData), "used", stream.pos)
	}
	return nil
}

func (d *Document) decodePlane(s *Surface, out *Decoded) error {
	def := s.Definition
	if def.Plane == nil {
		return fmt.Errorf("%w: plane surface without coefficients", ErrDecode)
	}
	g := d.Grid()
	g.Plane = def.Plane
	c := &extract.Cubes{Grid: g, Params: extract.Params{AssocCutoff: extract.DefaultAssocCutoff}}
	_, err := c.Run(out.Mesh)
	return err
}

func (d *Document) decodeMesh(s *Surface, out *Decoded) error {
	sd := s.Data
	if sd == nil || sd.Vertices == nil || sd.Triangles == nil {
		if s.Definition.IsColorMapped() {
			return ErrColorOnly
		}
		return fmt.Errorf("%w: vertex-only surface without vertex data", ErrDecode)
	}
	lo, err := parsePoint(sd.Vertices.Min)
	if err != nil {
		return err
	}
	hi, err := parsePoint(sd.Vertices.Max)
	if err != nil {
		return err
	}
	n := sd.Vertices.Count
	pts, err := DecodeVertices(Uncompress(sd.Vertices.Data), n, [2]vec3d.T{lo, hi}, d.EdgeAlphabet)
	if err != nil {
		return err
	}
	m := out.Mesh
	m.Vertices = make([]mesh.Vertex, 0, n)
	for _, p := range pts {
		m.AddVertex(p, math.NaN(), mesh.NoAssociation)
	}
	tris, err := DecodeTriangles(Uncompress(sd.Triangles.Data), sd.Triangles.Count, n)
	if err != nil {
		logging.Logger().Warn("truncated triangle data", "err", err)
	}
	var colors []uint32
	if sd.PolygonColors != nil {
		if colors, err = DecodePolygonColors(sd.PolygonColors.Data, len(tris)); err != nil {
			return err
		}
	}
	m.Triangles = make([]mesh.Triangle, len(tris))
	for i, t := range tris {
		m.Triangles[i] = mesh.Triangle{V: t, Check: mesh.CheckAll}
		if colors != nil {
			m.Triangles[i].Color = colors[i]
		}
	}
	return nil
}

func (d *Document) decodeContours(cd *ContourData, nTriangles int) ([]mesh.ContourSet, error) {
	sets := make([]mesh.ContourSet, 0, len(cd.Contours))
	for _, cb := range cd.Contours {
		color, err := parseARGB(cb.Color)
		if err != nil {
			return nil, err
		}
		runs, err := ParseRuns(cb.Bits)
		if err != nil {
			return nil, err
		}
		cs := mesh.ContourSet{Value: cb.Value, Color: color, Members: DecodeBitRuns(runs, nTriangles)}
		data := Uncompress(cb.Data)
		pos := 0
		for t, in := range cs.Members {
			if !in {
				continue
			}
			if pos+3 > len(data) {
				logging.Logger().Warn("short contour data", "value", cb.Value)
				break
			}
			typ := data[pos] - '0'
			if _, _, ok := mesh.Edges(typ); !ok {
				return nil, fmt.Errorf("%w: contour segment type %q", ErrDecode, data[pos])
			}
			cs.Segments = append(cs.Segments, mesh.ContourSegment{
				Triangle: t,
				Type:     typ,
				F1:       FractionFromCharacter(data[pos+1], d.EdgeAlphabet, 0.5),
				F2:       FractionFromCharacter(data[pos+2], d.EdgeAlphabet, 0.5),
			})
			pos += 3
		}
		sets = append(sets, cs)
	}
	return sets, nil
}
