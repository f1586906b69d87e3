// Package volume holds the voxel grid that surfaces are extracted from.
//
// A Grid is an origin, three (not necessarily orthogonal) basis vectors and
// per-axis point counts. Values are either a dense array or, when the array
// is absent, the signed distance of each grid point to a Plane.
package volume

import (
	"errors"
	"fmt"
	"math"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const BohrToAngstrom = 0.5291772

var ErrNoData = errors.New("volume: grid has neither values nor a plane")

type Units int

const (
	UnitsAngstrom Units = iota
	UnitsBohr
)

func (u Units) String() string {
	if u == UnitsBohr {
		return "BOHR"
	}
	return "ANGSTROMS"
}

type Atom struct {
	Element int
	Charge  float64
	Pos     vec3d.T
	Radius  float64
}

// Header is the geometry preamble shared by grid files and JVXL documents.
// Titles are fixed once a reader has produced the header.
type Header struct {
	Titles []string
	Origin vec3d.T
	Basis  [3]vec3d.T
	Counts [3]int
	Atoms  []Atom
	Units  Units
}

// ToAngstroms converts origin, basis and atom positions from bohr. It is a
// no-op for headers already in angstroms.
func (h *Header) ToAngstroms() {
	if h.Units != UnitsBohr {
		return
	}
	h.Origin.Scale(BohrToAngstrom)
	for i := range h.Basis {
		h.Basis[i].Scale(BohrToAngstrom)
	}
	for i := range h.Atoms {
		h.Atoms[i].Pos.Scale(BohrToAngstrom)
	}
	h.Units = UnitsAngstrom
}

func (h *Header) PointCount() int {
	return h.Counts[0] * h.Counts[1] * h.Counts[2]
}

// NewGrid allocates a zeroed grid with the header geometry.
func (h *Header) NewGrid() *Grid {
	g := &Grid{Origin: h.Origin, Basis: h.Basis, Counts: h.Counts}
	if n := h.PointCount(); n > 0 {
		g.Data = make([]float64, n)
	}
	return g
}

type Grid struct {
	Origin vec3d.T
	Basis  [3]vec3d.T
	Counts [3]int
	Data   []float64
	Plane  *Plane

	inverse *mat.Dense
}

// NewPlaneGrid returns a grid whose values are distances to p.
func NewPlaneGrid(origin vec3d.T, basis [3]vec3d.T, counts [3]int, p Plane) *Grid {
	return &Grid{Origin: origin, Basis: basis, Counts: counts, Plane: &p}
}

func (g *Grid) Validate() error {
	for i, n := range g.Counts {
		if n < 0 {
			return fmt.Errorf("volume: negative voxel count %d on axis %d", n, i)
		}
	}
	if g.Data == nil {
		if g.Plane == nil {
			return ErrNoData
		}
		return nil
	}
	if len(g.Data) != g.Len() {
		return fmt.Errorf("volume: %d values for %dx%dx%d grid", len(g.Data), g.Counts[0], g.Counts[1], g.Counts[2])
	}
	return nil
}

func (g *Grid) Len() int {
	return g.Counts[0] * g.Counts[1] * g.Counts[2]
}

// Index is the linear offset of point (x,y,z); z varies fastest.
func (g *Grid) Index(x, y, z int) int {
	return (x*g.Counts[1]+y)*g.Counts[2] + z
}

// Coords inverts Index.
func (g *Grid) Coords(i int) (x, y, z int) {
	yz := g.Counts[1] * g.Counts[2]
	x = i / yz
	i -= x * yz
	y = i / g.Counts[2]
	z = i - y*g.Counts[2]
	return
}

func (g *Grid) Point(x, y, z int) vec3d.T {
	p := g.Origin
	bx := g.Basis[0].Scaled(float64(x))
	by := g.Basis[1].Scaled(float64(y))
	bz := g.Basis[2].Scaled(float64(z))
	p.Add(&bx).Add(&by).Add(&bz)
	return p
}

func (g *Grid) Value(x, y, z int) float64 {
	if g.Data == nil {
		if g.Plane == nil {
			return 0
		}
		p := g.Point(x, y, z)
		return g.Plane.Distance(&p)
	}
	return g.Data[g.Index(x, y, z)]
}

func (g *Grid) Set(x, y, z int, v float64) {
	g.Data[g.Index(x, y, z)] = v
}

// Release drops the value array once extraction and mapping no longer need it.
func (g *Grid) Release() {
	g.Data = nil
	g.inverse = nil
}

func (g *Grid) HasData() bool {
	return g.Data != nil
}

// ScaleUnits multiplies origin and basis vectors by f.
func (g *Grid) ScaleUnits(f float64) {
	g.Origin.Scale(f)
	for i := range g.Basis {
		g.Basis[i].Scale(f)
	}
	g.inverse = nil
}

// Downsample keeps every stride-th point on all three axes.
func (g *Grid) Downsample(stride int) *Grid {
	if stride <= 1 {
		return g
	}
	var counts [3]int
	for i, n := range g.Counts {
		if n > 0 {
			counts[i] = (n-1)/stride + 1
		}
	}
	out := &Grid{Origin: g.Origin, Counts: counts, Plane: g.Plane}
	for i := range g.Basis {
		out.Basis[i] = g.Basis[i].Scaled(float64(stride))
	}
	if g.Data == nil {
		return out
	}
	out.Data = make([]float64, out.Len())
	for x := 0; x < counts[0]; x++ {
		for y := 0; y < counts[1]; y++ {
			for z := 0; z < counts[2]; z++ {
				out.Set(x, y, z, g.Value(x*stride, y*stride, z*stride))
			}
		}
	}
	return out
}

func (g *Grid) basisInverse() (*mat.Dense, error) {
	if g.inverse != nil {
		return g.inverse, nil
	}
	m := mat.NewDense(3, 3, nil)
	for c := 0; c < 3; c++ {
		for r := 0; r < 3; r++ {
			m.Set(r, c, g.Basis[c][r])
		}
	}
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return nil, fmt.Errorf("volume: singular basis: %w", err)
	}
	g.inverse = &inv
	return g.inverse, nil
}

// Fractional returns the grid coordinates of world point p.
func (g *Grid) Fractional(p *vec3d.T) (vec3d.T, error) {
	inv, err := g.basisInverse()
	if err != nil {
		return vec3d.T{}, err
	}
	d := vec3d.Sub(p, &g.Origin)
	var f vec3d.T
	for r := 0; r < 3; r++ {
		f[r] = inv.At(r, 0)*d[0] + inv.At(r, 1)*d[1] + inv.At(r, 2)*d[2]
	}
	return f, nil
}

// Sample interpolates the grid trilinearly at world point p. Points outside
// the grid sample as NaN.
func (g *Grid) Sample(p *vec3d.T) float64 {
	f, err := g.Fractional(p)
	if err != nil {
		return math.NaN()
	}
	var i0 [3]int
	var t [3]float64
	for a := 0; a < 3; a++ {
		n := g.Counts[a]
		if n == 0 || f[a] < -1e-6 || f[a] > float64(n-1)+1e-6 {
			return math.NaN()
		}
		c := math.Min(math.Max(f[a], 0), float64(n-1))
		i := int(c)
		if i >= n-1 {
			i = n - 2
		}
		if i < 0 {
			i = 0
		}
		i0[a] = i
		t[a] = c - float64(i)
		if n == 1 {
			t[a] = 0
		}
	}
	v := 0.0
	for dx := 0; dx < 2; dx++ {
		wx := 1 - t[0]
		if dx == 1 {
			wx = t[0]
		}
		for dy := 0; dy < 2; dy++ {
			wy := 1 - t[1]
			if dy == 1 {
				wy = t[1]
			}
			for dz := 0; dz < 2; dz++ {
				wz := 1 - t[2]
				if dz == 1 {
					wz = t[2]
				}
				w := wx * wy * wz
				if w == 0 {
					continue
				}
				v += w * g.Value(clampIndex(i0[0]+dx, g.Counts[0]), clampIndex(i0[1]+dy, g.Counts[1]), clampIndex(i0[2]+dz, g.Counts[2]))
			}
		}
	}
	return v
}

func clampIndex(i, n int) int {
	if i >= n {
		return n - 1
	}
	return i
}

type Stats struct {
	Min, Max     float64
	Mean, StdDev float64
}

// Stats summarises the stored values. Grids without an array report zeros.
func (g *Grid) Stats() Stats {
	if len(g.Data) == 0 {
		return Stats{}
	}
	return Stats{
		Min:    floats.Min(g.Data),
		Max:    floats.Max(g.Data),
		Mean:   stat.Mean(g.Data, nil),
		StdDev: stat.StdDev(g.Data, nil),
	}
}
