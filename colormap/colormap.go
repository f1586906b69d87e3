// Package colormap assigns colors to mesh vertices from their values, their
// sign, a phase function of their position, or their partition.
package colormap

import (
	"fmt"
	"math"
	"strings"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"gonum.org/v1/gonum/floats"

	"github.com/flywave/go-jvxl/mesh"
)

type Mode int

const (
	ModeContinuous Mode = iota
	ModeBicolor
	ModePhase
	ModePartition
)

var modeNames = []string{"continuous", "bicolor", "phase", "partition"}

func (m Mode) String() string {
	if int(m) >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

func ParseMode(s string) (Mode, error) {
	for i, n := range modeNames {
		if strings.EqualFold(s, n) {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("colormap: unknown mode %q", s)
}

// PhaseFunctions lists the supported sign patterns.
var PhaseFunctions = []string{"x", "y", "z", "xy", "xz", "yz", "z2", "x2-y2", "xyz"}

// Phase evaluates the named phase function at p.
func Phase(name string, p *vec3d.T) (float64, error) {
	x, y, z := p[0], p[1], p[2]
	switch name {
	case "x":
		return x, nil
	case "y":
		return y, nil
	case "z":
		return z, nil
	case "xy":
		return x * y, nil
	case "xz":
		return x * z, nil
	case "yz":
		return y * z, nil
	case "z2":
		return 2*z*z - x*x - y*y, nil
	case "x2-y2":
		return x*x - y*y, nil
	case "xyz":
		return x * y * z, nil
	}
	return 0, fmt.Errorf("colormap: unknown phase %q", name)
}

type Params struct {
	Mode    Mode
	Palette Palette
	// Range overrides the data range of the vertex values.
	Range   *[2]float64
	Reverse bool
	Phase   string
	// NContours requests that many evenly spaced contour colors.
	NContours int
	Positive  uint32
	Negative  uint32
}

// Result carries one palette index and one ARGB color per vertex. In
// bicolor and phase modes the index is 0 for the negative color and 1 for
// the positive one.
type Result struct {
	Mode    Mode
	Indices []int
	ARGB    []uint32
	Lo, Hi  float64
	Reverse bool

	ContourValues []float64
	ContourColors []uint32
}

// ValueMappedToRed is the range end drawn with the first palette color.
func (r *Result) ValueMappedToRed() float64 {
	if r.Reverse {
		return r.Hi
	}
	return r.Lo
}

func (r *Result) ValueMappedToBlue() float64 {
	if r.Reverse {
		return r.Lo
	}
	return r.Hi
}

// DataRange returns the smallest and largest non-NaN value.
func DataRange(vals []float64) (float64, float64) {
	clean := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return 0, 0
	}
	return floats.Min(clean), floats.Max(clean)
}

// ContourLevels spaces n levels so that they split [lo,hi] into n+1 bands.
func ContourLevels(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	step := (hi - lo) / float64(n+1)
	levels := make([]float64, n)
	for k := range levels {
		levels[k] = lo + float64(k+1)*step
	}
	return levels
}

func Map(m *mesh.Mesh, p Params) (*Result, error) {
	pal := p.Palette
	if pal == nil {
		pal = ROYGB(256)
	}
	pos, neg := p.Positive, p.Negative
	if pos == 0 && neg == 0 {
		pos, neg = DefaultPositive, DefaultNegative
	}
	if p.Reverse {
		pos, neg = neg, pos
	}
	res := &Result{
		Mode:    p.Mode,
		Indices: make([]int, len(m.Vertices)),
		ARGB:    make([]uint32, len(m.Vertices)),
		Reverse: p.Reverse,
	}
	if p.Range != nil {
		res.Lo, res.Hi = p.Range[0], p.Range[1]
	} else {
		res.Lo, res.Hi = DataRange(m.Values())
	}
	last := pal.Len() - 1

	switch p.Mode {
	case ModeContinuous:
		for i, v := range m.Vertices {
			idx := pal.Index(v.Value, res.Lo, res.Hi)
			if p.Reverse {
				idx = last - idx
			}
			res.Indices[i] = idx
			res.ARGB[i] = pal.ARGB(idx)
		}
	case ModeBicolor, ModePhase:
		for i, v := range m.Vertices {
			s := v.Value
			if p.Mode == ModePhase {
				var err error
				if s, err = Phase(p.Phase, &m.Vertices[i].Pos); err != nil {
					return nil, err
				}
			}
			if s >= 0 {
				res.Indices[i], res.ARGB[i] = 1, pos
			} else {
				res.Indices[i], res.ARGB[i] = 0, neg
			}
		}
	case ModePartition:
		sets, n := m.Partitions()
		for i, id := range sets {
			idx := pal.Index(float64(id), 0, float64(n-1))
			if p.Reverse {
				idx = last - idx
			}
			res.Indices[i] = idx
			res.ARGB[i] = pal.ARGB(idx)
		}
	default:
		return nil, fmt.Errorf("colormap: unknown mode %d", int(p.Mode))
	}

	res.ContourValues = ContourLevels(res.Lo, res.Hi, p.NContours)
	for _, v := range res.ContourValues {
		idx := pal.Index(v, res.Lo, res.Hi)
		if p.Reverse {
			idx = last - idx
		}
		res.ContourColors = append(res.ContourColors, pal.ARGB(idx))
	}
	return res, nil
}
