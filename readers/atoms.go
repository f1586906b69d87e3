package readers

import (
	"fmt"
	"math"

	vec3d "github.com/flywave/go3d/float64/vec3"

	"github.com/flywave/go-jvxl/internal/logging"
	"github.com/flywave/go-jvxl/volume"
)

// AtomSource supplies atom positions, elements and radii.
type AtomSource interface {
	Atoms() []volume.Atom
}

// HydrogenSynthesizer adds the implicit hydrogens of a structure.
type HydrogenSynthesizer interface {
	Hydrogens(atoms []volume.Atom) []volume.Atom
}

// Atoms is a fixed AtomSource.
type Atoms []volume.Atom

func (a Atoms) Atoms() []volume.Atom { return a }

type AtomMode int

const (
	// AtomDensity sums one Gaussian per atom.
	AtomDensity AtomMode = iota
	// AtomSolvent is the signed distance to the probe-inflated van der
	// Waals surface; extract at cutoff 0.
	AtomSolvent
)

const (
	DefaultProbeRadius = 1.4
	DefaultResolution  = 0.5
	DefaultAtomRadius  = 1.7
)

// van der Waals radii by atomic number.
var vdwRadii = map[int]float64{
	1: 1.2, 6: 1.7, 7: 1.55, 8: 1.52, 9: 1.47,
	15: 1.8, 16: 1.8, 17: 1.75, 35: 1.85, 53: 1.98,
}

func atomRadius(a volume.Atom) float64 {
	if a.Radius > 0 {
		return a.Radius
	}
	if r, ok := vdwRadii[a.Element]; ok {
		return r
	}
	return DefaultAtomRadius
}

type AtomParams struct {
	Mode        AtomMode
	ProbeRadius float64
	// Resolution is the grid spacing in angstroms.
	Resolution float64
	// Padding extends the grid beyond the outermost atom surface.
	Padding float64
}

func (p AtomParams) probe() float64 {
	if p.Mode != AtomSolvent {
		return 0
	}
	if p.ProbeRadius <= 0 {
		return DefaultProbeRadius
	}
	return p.ProbeRadius
}

func (p AtomParams) resolution() float64 {
	if p.Resolution <= 0 {
		return DefaultResolution
	}
	return p.Resolution
}

// AtomGridSource builds a grid around an atom model.
type AtomGridSource struct {
	src    AtomSource
	hydro  HydrogenSynthesizer
	params AtomParams
	opts   Options

	atoms  []volume.Atom
	header *volume.Header
}

func NewAtomGridSource(src AtomSource, hydro HydrogenSynthesizer, p AtomParams, opts Options) *AtomGridSource {
	return &AtomGridSource{src: src, hydro: hydro, params: p, opts: opts}
}

func (s *AtomGridSource) Kind() Kind { return KindAtoms }

func (s *AtomGridSource) ReadHeader() (*volume.Header, error) {
	if s.header != nil {
		return s.header, nil
	}
	atoms := append([]volume.Atom(nil), s.src.Atoms()...)
	if s.hydro != nil {
		atoms = append(atoms, s.hydro.Hydrogens(atoms)...)
	}
	if len(atoms) == 0 {
		return nil, fmt.Errorf("%w: no atoms", ErrFormat)
	}
	lo, hi := vec3d.MaxVal, vec3d.MinVal
	maxR := 0.0
	for _, a := range atoms {
		lo = vec3d.Min(&lo, &a.Pos)
		hi = vec3d.Max(&hi, &a.Pos)
		maxR = math.Max(maxR, atomRadius(a))
	}
	pad := maxR + s.params.probe() + s.params.Padding
	if s.params.Mode == AtomDensity {
		pad += maxR
	}
	res := s.params.resolution()
	h := &volume.Header{
		Titles: []string{"atom model", fmt.Sprintf("%d atoms", len(atoms))},
		Atoms:  atoms,
		Units:  volume.UnitsAngstrom,
		Origin: vec3d.T{lo[0] - pad, lo[1] - pad, lo[2] - pad},
		Basis:  [3]vec3d.T{{res, 0, 0}, {0, res, 0}, {0, 0, res}},
	}
	for a := 0; a < 3; a++ {
		h.Counts[a] = int(math.Ceil((hi[a]-lo[a]+2*pad)/res)) + 1
	}
	s.atoms = atoms
	s.header = h
	logging.Logger().Debug("atom grid", "atoms", len(atoms), "counts", h.Counts, "mode", int(s.params.Mode))
	return h, nil
}

func (s *AtomGridSource) ReadVolume(mapping bool) (*volume.Grid, error) {
	h, err := s.ReadHeader()
	if err != nil {
		return nil, err
	}
	g := h.NewGrid()
	probe := s.params.probe()
	for x := 0; x < g.Counts[0]; x++ {
		for y := 0; y < g.Counts[1]; y++ {
			for z := 0; z < g.Counts[2]; z++ {
				p := g.Point(x, y, z)
				g.Set(x, y, z, s.value(&p, probe))
			}
		}
	}
	return finishGrid(g, s.opts, mapping), nil
}

func (s *AtomGridSource) value(p *vec3d.T, probe float64) float64 {
	if s.params.Mode == AtomSolvent {
		d := math.Inf(1)
		for i := range s.atoms {
			a := &s.atoms[i]
			diff := vec3d.Sub(p, &a.Pos)
			d = math.Min(d, diff.Length()-atomRadius(*a)-probe)
		}
		return d
	}
	v := 0.0
	for i := range s.atoms {
		a := &s.atoms[i]
		diff := vec3d.Sub(p, &a.Pos)
		r := atomRadius(*a)
		v += math.Exp(-diff.LengthSqr() / (r * r))
	}
	return v
}
