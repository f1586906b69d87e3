package jvxl

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/flywave/go-jvxl/volume"
)

type Mode int

const (
	ModeCutoffSurface Mode = iota
	ModeVertexOnly
	ModePlane
	ModeContoured
	ModeBicolorMap
	ModePrecisionColor
)

var modeNames = []string{"cutoff", "vertex-only", "plane", "contoured", "bicolor", "precision-color"}

func (m Mode) String() string {
	if int(m) >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

const insideOutToken = "insideOut"

// Definition is the per-surface line of a document:
//
//	cutoff p1 p2 p3 [a b c d] [nContours] [min max red blue] [insideOut]
//
// The integer triple selects the encoding mode. Param1 counts bit-run
// integers (-1-n when contoured, -1 for a plane, 0 for vertex data only);
// Param2 is the edge character count (negated for a bicolor map, -1 or -2
// for a plane); Param3 is the color character count (negated when colors
// are precision pairs, 0 or -1 when not color mapped).
type Definition struct {
	Cutoff float64
	Param1 int
	Param2 int
	Param3 int

	Plane     *volume.Plane
	NContours int

	ValueMin, ValueMax float64
	ValueMappedToRed   float64
	ValueMappedToBlue  float64
	HasRange           bool

	InsideOut bool
}

func (d *Definition) Mode() Mode {
	switch {
	case d.Param1 == 0 && d.Param2 == 0:
		return ModeVertexOnly
	case d.Param1 == -1:
		return ModePlane
	case d.Param1 < -1:
		return ModeContoured
	case d.Param1 > 0 && d.Param2 < 0:
		return ModeBicolorMap
	case d.Param3 < -1:
		return ModePrecisionColor
	}
	return ModeCutoffSurface
}

// ContouredPlane reports a plane whose colors carry contour levels.
func (d *Definition) ContouredPlane() bool {
	return d.Param1 == -1 && d.Param2 == -2
}

// RunCount is the number of bit-run integers in the grid data.
func (d *Definition) RunCount() int {
	switch {
	case d.Param1 < -1:
		return -1 - d.Param1
	case d.Param1 > 0:
		return d.Param1
	}
	return 0
}

func (d *Definition) EdgeDataLength() int {
	if d.Param1 == -1 {
		return 0
	}
	return abs(d.Param2)
}

func (d *Definition) ColorDataLength() int {
	if d.Param3 == 0 || d.Param3 == -1 {
		return 0
	}
	return abs(d.Param3)
}

func (d *Definition) IsColorMapped() bool {
	return d.ColorDataLength() > 0
}

func (d *Definition) IsPrecisionColor() bool {
	return d.ContouredPlane() || d.Param3 < -1
}

func (d *Definition) hasContourCount() bool {
	return d.Param1 < 0 && d.Param2 != -1
}

// ColorRange returns the range color characters were encoded against.
// Documents without one decode against 0..1. A degenerate min..max falls
// back to the red..blue values for precision colors.
func (d *Definition) ColorRange() (float64, float64) {
	if !d.HasRange {
		return 0, 1
	}
	if d.ValueMin == d.ValueMax && d.IsPrecisionColor() {
		return math.Min(d.ValueMappedToRed, d.ValueMappedToBlue), math.Max(d.ValueMappedToRed, d.ValueMappedToBlue)
	}
	return d.ValueMin, d.ValueMax
}

func (d *Definition) String() string {
	f := []string{formatFloat(d.Cutoff), strconv.Itoa(d.Param1), strconv.Itoa(d.Param2), strconv.Itoa(d.Param3)}
	if d.Param1 == -1 {
		pl := volume.Plane{}
		if d.Plane != nil {
			pl = *d.Plane
		}
		for _, c := range pl.Coefficients() {
			f = append(f, formatFloat(c))
		}
	}
	if d.hasContourCount() {
		f = append(f, strconv.Itoa(d.NContours))
	}
	if d.IsColorMapped() {
		f = append(f, formatFloat(d.ValueMin), formatFloat(d.ValueMax),
			formatFloat(d.ValueMappedToRed), formatFloat(d.ValueMappedToBlue))
	}
	if d.InsideOut {
		f = append(f, insideOutToken)
	}
	return strings.Join(f, " ")
}

// ParseDefinition reads a definition line. Optional fields that are absent
// keep their zero values.
func ParseDefinition(line string) (*Definition, error) {
	f := strings.Fields(line)
	if len(f) < 4 {
		return nil, fmt.Errorf("%w: definition line %q", ErrDecode, line)
	}
	d := &Definition{}
	var err error
	if d.Cutoff, err = strconv.ParseFloat(f[0], 64); err != nil {
		return nil, fmt.Errorf("%w: cutoff %q", ErrDecode, f[0])
	}
	for i, p := range []*int{&d.Param1, &d.Param2, &d.Param3} {
		if *p, err = strconv.Atoi(f[i+1]); err != nil {
			return nil, fmt.Errorf("%w: parameter %q", ErrDecode, f[i+1])
		}
	}
	rest := f[4:]
	if n := len(rest); n > 0 && rest[n-1] == insideOutToken {
		d.InsideOut = true
		rest = rest[:n-1]
	}
	nums := make([]float64, 0, len(rest))
	for _, tok := range rest {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: definition field %q", ErrDecode, tok)
		}
		nums = append(nums, v)
	}
	if d.Param1 == -1 {
		if len(nums) < 4 {
			return nil, fmt.Errorf("%w: plane needs 4 coefficients in %q", ErrDecode, line)
		}
		pl := volume.NewPlane(nums[0], nums[1], nums[2], nums[3])
		d.Plane = &pl
		nums = nums[4:]
	}
	if d.hasContourCount() && len(nums) > 0 {
		d.NContours = int(nums[0])
		nums = nums[1:]
	}
	if d.IsColorMapped() && len(nums) >= 4 {
		d.ValueMin, d.ValueMax = nums[0], nums[1]
		d.ValueMappedToRed, d.ValueMappedToBlue = nums[2], nums[3]
		d.HasRange = true
	}
	return d, nil
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
