package readers

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	vec3d "github.com/flywave/go3d/float64/vec3"

	"github.com/flywave/go-jvxl/internal/logging"
	"github.com/flywave/go-jvxl/volume"
)

const mrcHeaderSize = 1024

// MRC voxel data types.
const (
	MRCInt8         = 0
	MRCInt16        = 1
	MRCFloat32      = 2
	MRCComplexInt16 = 3
	MRCComplexFloat = 4
	MRCUint16       = 6
)

const maxMRCDimension = 1 << 16

type mrcHeader struct {
	NX, NY, NZ                int32
	Mode                      int32
	NXStart, NYStart, NZStart int32
	MX, MY, MZ                int32
	CellLengths               [3]float32
	CellAngles                [3]float32
	MapC, MapR, MapS          int32
	DMin, DMax, DMean         float32
	ISPG                      int32
	NSymBT                    int32
	Extra                     [25]int32
	Origin                    [3]float32
	Map                       [4]byte
	MachSt                    [4]byte
	RMS                       float32
	NLabl                     int32
	Labels                    [10][80]byte
}

func (h *mrcHeader) sane() bool {
	switch h.Mode {
	case MRCInt8, MRCInt16, MRCFloat32, MRCComplexInt16, MRCComplexFloat, MRCUint16:
	default:
		return false
	}
	for _, n := range []int32{h.NX, h.NY, h.NZ} {
		if n <= 0 || n > maxMRCDimension {
			return false
		}
	}
	return true
}

// axes maps column, row and section onto x, y and z (0-based).
func (h *mrcHeader) axes() ([3]int, error) {
	m := [3]int{int(h.MapC) - 1, int(h.MapR) - 1, int(h.MapS) - 1}
	if m == [3]int{-1, -1, -1} {
		return [3]int{0, 1, 2}, nil
	}
	seen := [3]bool{}
	for _, a := range m {
		if a < 0 || a > 2 || seen[a] {
			return m, fmt.Errorf("%w: MRC axis map %d %d %d", ErrFormat, h.MapC, h.MapR, h.MapS)
		}
		seen[a] = true
	}
	return m, nil
}

// MRCReader reads CCP4/MRC density maps.
type MRCReader struct {
	opts  Options
	r     io.Reader
	order binary.ByteOrder

	raw    mrcHeader
	header *volume.Header
	axes   [3]int
	trunc  truncation
}

func NewMRCReader(r io.Reader, opts Options) *MRCReader {
	return &MRCReader{opts: opts, r: r, trunc: truncation{policy: opts.Recovery}}
}

func (m *MRCReader) Kind() Kind { return KindMRC }

func (m *MRCReader) ReadHeader() (*volume.Header, error) {
	if m.header != nil {
		return m.header, nil
	}
	buf := make([]byte, mrcHeaderSize)
	if _, err := io.ReadFull(m.r, buf); err != nil {
		return nil, fmt.Errorf("%w: MRC header: %v", ErrFormat, err)
	}
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		var h mrcHeader
		if err := binary.Read(bytes.NewReader(buf), order, &h); err != nil {
			return nil, err
		}
		if h.sane() {
			m.raw, m.order = h, order
			break
		}
	}
	if m.order == nil {
		return nil, fmt.Errorf("%w: MRC header is not sane in either byte order", ErrFormat)
	}
	h := &m.raw
	axes, err := h.axes()
	if err != nil {
		return nil, err
	}
	m.axes = axes

	sampling := [3]int32{h.MX, h.MY, h.MZ}
	cell := volume.UnitCell{
		A: float64(h.CellLengths[0]), B: float64(h.CellLengths[1]), C: float64(h.CellLengths[2]),
		Alpha: float64(h.CellAngles[0]), Beta: float64(h.CellAngles[1]), Gamma: float64(h.CellAngles[2]),
	}
	vecs, err := m.opts.cells().Vectors(cell)
	if err != nil {
		logging.Logger().Warn("MRC cell unusable, using unit voxels", "err", err)
		vecs = [3]vec3d.T{vec3d.UnitX, vec3d.UnitY, vec3d.UnitZ}
		sampling = [3]int32{1, 1, 1}
	}

	out := &volume.Header{Units: volume.UnitsAngstrom, Titles: mrcTitles(h)}
	crs := [3]int32{h.NX, h.NY, h.NZ}
	start := [3]int32{h.NXStart, h.NYStart, h.NZStart}
	var startXYZ [3]float64
	for i, a := range axes {
		out.Counts[a] = int(crs[i])
		startXYZ[a] = float64(start[i])
	}
	for a := 0; a < 3; a++ {
		s := sampling[a]
		if s <= 0 {
			s = int32(out.Counts[a])
		}
		out.Basis[a] = vecs[a].Scaled(1 / float64(s))
	}
	if h.Origin != [3]float32{} {
		out.Origin = vec3d.T{float64(h.Origin[0]), float64(h.Origin[1]), float64(h.Origin[2])}
	} else {
		for a := 0; a < 3; a++ {
			step := out.Basis[a].Scaled(startXYZ[a])
			out.Origin.Add(&step)
		}
	}
	if h.NSymBT > 0 {
		if _, err := io.CopyN(io.Discard, m.r, int64(h.NSymBT)); err != nil {
			return nil, fmt.Errorf("%w: MRC symmetry block: %v", ErrFormat, err)
		}
	}
	prepareHeader(out, m.opts)
	m.header = out
	logging.Logger().Debug("MRC header",
		"mode", h.Mode,
		"counts", out.Counts,
		"order", m.order.String(),
		"dmin", h.DMin,
		"dmax", h.DMax)
	return out, nil
}

func mrcTitles(h *mrcHeader) []string {
	var titles []string
	for i := 0; i < int(h.NLabl) && i < len(h.Labels); i++ {
		titles = append(titles, string(bytes.TrimRight(h.Labels[i][:], " \x00")))
	}
	return titles
}

func (m *MRCReader) ReadVolume(mapping bool) (*volume.Grid, error) {
	h, err := m.ReadHeader()
	if err != nil {
		return nil, err
	}
	g := h.NewGrid()
	nc, nr, ns := int(m.raw.NX), int(m.raw.NY), int(m.raw.NZ)
	row := make([]float64, nc)
	var pos [3]int
	for s := 0; s < ns; s++ {
		for r := 0; r < nr; r++ {
			if err := m.readRow(row); err != nil {
				return nil, err
			}
			for c, v := range row {
				pos[m.axes[0]], pos[m.axes[1]], pos[m.axes[2]] = c, r, s
				g.Set(pos[0], pos[1], pos[2], v)
			}
		}
	}
	return finishGrid(g, m.opts, mapping), nil
}

// Truncated reports whether the data ended before the grid was full.
func (m *MRCReader) Truncated() bool {
	return m.trunc.Truncated()
}

func (m *MRCReader) readRow(row []float64) error {
	if m.trunc.Truncated() {
		for i := range row {
			row[i] = 0
		}
		return nil
	}
	n := len(row)
	var err error
	switch m.raw.Mode {
	case MRCInt8:
		b := make([]int8, n)
		if err = binary.Read(m.r, m.order, b); err == nil {
			for i, v := range b {
				row[i] = float64(v)
			}
		}
	case MRCInt16:
		b := make([]int16, n)
		if err = binary.Read(m.r, m.order, b); err == nil {
			for i, v := range b {
				row[i] = float64(v)
			}
		}
	case MRCFloat32:
		b := make([]float32, n)
		if err = binary.Read(m.r, m.order, b); err == nil {
			for i, v := range b {
				row[i] = float64(v)
			}
		}
	case MRCComplexInt16:
		b := make([]int16, 2*n)
		if err = binary.Read(m.r, m.order, b); err == nil {
			for i := range row {
				row[i] = math.Hypot(float64(b[2*i]), float64(b[2*i+1]))
			}
		}
	case MRCComplexFloat:
		b := make([]float32, 2*n)
		if err = binary.Read(m.r, m.order, b); err == nil {
			for i := range row {
				row[i] = math.Hypot(float64(b[2*i]), float64(b[2*i+1]))
			}
		}
	case MRCUint16:
		b := make([]uint16, n)
		if err = binary.Read(m.r, m.order, b); err == nil {
			for i, v := range b {
				row[i] = float64(v)
			}
		}
	}
	if err != nil {
		for i := range row {
			row[i] = 0
		}
		return m.trunc.fail("MRC voxels", err)
	}
	return nil
}
