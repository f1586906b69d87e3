package jvxl

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	vec3d "github.com/flywave/go3d/float64/vec3"

	"github.com/flywave/go-jvxl/colormap"
	"github.com/flywave/go-jvxl/extract"
	"github.com/flywave/go-jvxl/internal/logging"
	"github.com/flywave/go-jvxl/mesh"
	"github.com/flywave/go-jvxl/volume"
)

type ColorEncoding int

const (
	// ColorPrecision spends two characters per color value.
	ColorPrecision ColorEncoding = iota
	ColorCompact
)

func (c ColorEncoding) String() string {
	if c == ColorCompact {
		return "compact"
	}
	return "precision"
}

func ParseColorEncoding(s string) (ColorEncoding, error) {
	switch strings.ToLower(s) {
	case "", "precision":
		return ColorPrecision, nil
	case "compact":
		return ColorCompact, nil
	}
	return 0, fmt.Errorf("jvxl: unknown color encoding %q", s)
}

// Input is one extracted surface. A surface with Grid and Surface set is
// written as grid data; with Plane set as a plane slice; otherwise its mesh
// is written vertex by vertex.
type Input struct {
	Mesh    *mesh.Mesh
	Grid    *volume.Grid
	Surface *extract.Surface
	Plane   *volume.Plane
	Cutoff  float64
	Colors  *colormap.Result
}

type EncodeOptions struct {
	Titles        [2]string
	Header        []string
	Atoms         []volume.Atom
	Units         volume.Units
	ColorEncoding ColorEncoding
	InsideOut     bool
}

// Encode writes a single-surface document.
func Encode(in Input, opts EncodeOptions) (*Document, error) {
	doc := NewDocument(volumeHeader(in, opts), opts.Titles, opts.Header...)
	if err := doc.AddSurface(in, opts); err != nil {
		return nil, err
	}
	return doc, nil
}

func volumeHeader(in Input, opts EncodeOptions) volume.Header {
	h := volume.Header{Atoms: opts.Atoms, Units: opts.Units}
	switch {
	case in.Grid != nil:
		h.Origin, h.Basis, h.Counts = in.Grid.Origin, in.Grid.Basis, in.Grid.Counts
	case in.Mesh != nil:
		bbox := in.Mesh.BBox()
		h.Origin = bbox[0]
		h.Basis = [3]vec3d.T{vec3d.UnitX, vec3d.UnitY, vec3d.UnitZ}
	}
	return h
}

// AddSurface appends in as a new surface. Grid surfaces must share the
// document geometry.
func (d *Document) AddSurface(in Input, opts EncodeOptions) error {
	if in.Mesh == nil {
		return fmt.Errorf("jvxl: no mesh")
	}
	if err := in.Mesh.Validate(); err != nil {
		return err
	}
	s := &Surface{}
	def := &s.Definition
	var order []int
	def.Cutoff = in.Cutoff
	def.InsideOut = opts.InsideOut

	switch {
	case in.Plane != nil:
		pl := *in.Plane
		def.Plane = &pl
		def.Cutoff = 0
		def.Param1, def.Param2 = -1, -1
		if len(in.Mesh.Contours) > 0 {
			def.Param2 = -2
		}
	case in.Grid != nil && in.Surface != nil:
		if in.Grid.Counts != d.Volume.Counts {
			return fmt.Errorf("jvxl: grid %v does not match document grid %v", in.Grid.Counts, d.Volume.Counts)
		}
		s.Runs = EncodeBitRuns(in.Surface.Inside)
		edges := make([]byte, len(in.Surface.Fractions))
		for i, f := range in.Surface.Fractions {
			edges[i] = FractionAsCharacter(f, d.EdgeAlphabet)
		}
		s.EdgeData = string(edges)
		def.Param1 = len(s.Runs)
		if len(in.Mesh.Contours) > 0 {
			def.Param1 = -1 - len(s.Runs)
		}
		def.Param2 = len(s.EdgeData)
		if in.Colors != nil && (in.Colors.Mode == colormap.ModeBicolor || in.Colors.Mode == colormap.ModePhase) {
			def.Param2 = -def.Param2
		}
	default:
		s.Data = &SurfaceData{}
		order = d.encodeMesh(in.Mesh, s.Data)
	}

	if in.Colors != nil && len(in.Mesh.Vertices) > 0 {
		precise := opts.ColorEncoding == ColorPrecision || def.ContouredPlane()
		lo, hi := in.Colors.Lo, in.Colors.Hi
		def.ValueMin, def.ValueMax = lo, hi
		def.ValueMappedToRed = in.Colors.ValueMappedToRed()
		def.ValueMappedToBlue = in.Colors.ValueMappedToBlue()
		def.HasRange = true
		vals := in.Mesh.Values()
		if order != nil {
			vals = make([]float64, len(order))
			for i, v := range order {
				vals[i] = in.Mesh.Vertices[v].Value
			}
		}
		data := EncodeValues(vals, lo, hi, d.ColorAlphabet, precise)
		if s.Data != nil && def.Mode() == ModeVertexOnly {
			enc := EncodingColors
			if precise {
				enc = EncodingColorsPrecise
			}
			s.Data.Colors = &ColorBlock{Count: len(in.Mesh.Vertices), Min: lo, Max: hi, Encoding: enc, Data: Compress(data)}
		}
		s.ColorData = data
		def.Param3 = len(data)
		if precise {
			def.Param3 = -len(data)
		}
	}

	if len(in.Mesh.Contours) > 0 {
		def.NContours = len(in.Mesh.Contours)
		if s.Data == nil {
			s.Data = &SurfaceData{}
		}
		s.Data.Contours = d.encodeContours(in.Mesh.Contours)
	}

	// Vertex-only color data travels in the surface data block.
	if def.Mode() == ModeVertexOnly {
		s.ColorData = ""
	}
	d.Surfaces = append(d.Surfaces, s)
	logging.Logger().Debug("encoded surface",
		"mode", def.Mode().String(),
		"vertices", len(in.Mesh.Vertices),
		"triangles", len(in.Mesh.Triangles),
		"edges", len(s.EdgeData),
		"colors", def.ColorDataLength())
	return nil
}

// encodeMesh fills the vertex-only blocks: renumbered delta triangles,
// bbox-relative precision vertices and polygon color runs. It returns the
// original index of each encoded vertex.
func (d *Document) encodeMesh(m *mesh.Mesh, sd *SurfaceData) []int {
	order, index := renumber(m)
	tris := make([][3]int, len(m.Triangles))
	for i, t := range m.Triangles {
		tris[i] = [3]int{index[t.V[0]], index[t.V[1]], index[t.V[2]]}
	}
	pts := make([]vec3d.T, len(order))
	for i, v := range order {
		pts[i] = m.Vertices[v].Pos
	}
	bbox := m.BBox()
	sd.Triangles = &EncodedBlock{Count: len(tris), Encoding: EncodingTriangles, Data: Compress(EncodeTriangles(tris))}
	sd.Vertices = &VertexBlock{
		Count:    len(pts),
		Min:      formatPoint(bbox[0]),
		Max:      formatPoint(bbox[1]),
		Encoding: EncodingVertices,
		Data:     Compress(EncodeVertices(pts, bbox, d.EdgeAlphabet)),
	}
	colored := false
	colors := make([]uint32, len(m.Triangles))
	for i, t := range m.Triangles {
		colors[i] = t.Color
		colored = colored || t.Color != 0
	}
	if colored {
		sd.PolygonColors = &EncodedBlock{Count: len(colors), Encoding: EncodingPolygonColors, Data: EncodePolygonColors(colors)}
	}
	return order
}

// EncodePolygonColors writes "count argb" pairs, one per run of equal
// colors. Colors are written as signed 32-bit integers.
func EncodePolygonColors(colors []uint32) string {
	var f []string
	for i := 0; i < len(colors); {
		j := i + 1
		for j < len(colors) && colors[j] == colors[i] {
			j++
		}
		f = append(f, strconv.Itoa(j-i), strconv.FormatInt(int64(int32(colors[i])), 10))
		i = j
	}
	return strings.Join(f, " ")
}

func DecodePolygonColors(s string, n int) ([]uint32, error) {
	f := strings.Fields(s)
	colors := make([]uint32, 0, n)
	for i := 0; i+1 < len(f) && len(colors) < n; i += 2 {
		count, err := strconv.Atoi(f[i])
		if err != nil {
			return nil, fmt.Errorf("%w: polygon color count %q", ErrDecode, f[i])
		}
		c, err := strconv.ParseInt(f[i+1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: polygon color %q", ErrDecode, f[i+1])
		}
		for k := 0; k < count && len(colors) < n; k++ {
			colors = append(colors, uint32(c))
		}
	}
	for len(colors) < n {
		colors = append(colors, 0)
	}
	return colors, nil
}

func (d *Document) encodeContours(sets []mesh.ContourSet) *ContourData {
	cd := &ContourData{Count: len(sets)}
	for _, cs := range sets {
		var sb strings.Builder
		for _, seg := range cs.Segments {
			sb.WriteByte('0' + seg.Type)
			sb.WriteByte(FractionAsCharacter(seg.F1, d.EdgeAlphabet))
			sb.WriteByte(FractionAsCharacter(seg.F2, d.EdgeAlphabet))
		}
		cd.Contours = append(cd.Contours, ContourBlock{
			Value:     cs.Value,
			Color:     formatARGB(cs.Color),
			NPolygons: countBits(cs.Members),
			Bits:      FormatRuns(EncodeBitRuns(cs.Members), math.MaxInt32),
			Encoding:  EncodingContour,
			Data:      Compress(sb.String()),
		})
	}
	return cd
}
