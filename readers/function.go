package readers

import (
	"fmt"

	"github.com/flywave/go-jvxl/volume"
)

// Func is a scalar field over world coordinates.
type Func func(x, y, z float64) float64

// FunctionSource samples a function on the grid described by its header.
type FunctionSource struct {
	Header volume.Header
	F      Func
	opts   Options
}

func NewFunctionSource(h volume.Header, f Func, opts Options) *FunctionSource {
	prepareHeader(&h, opts)
	return &FunctionSource{Header: h, F: f, opts: opts}
}

func (s *FunctionSource) Kind() Kind { return KindFunction }

func (s *FunctionSource) ReadHeader() (*volume.Header, error) {
	return &s.Header, nil
}

func (s *FunctionSource) ReadVolume(mapping bool) (*volume.Grid, error) {
	if s.F == nil {
		return nil, fmt.Errorf("%w: no function", ErrFormat)
	}
	g := s.Header.NewGrid()
	for x := 0; x < g.Counts[0]; x++ {
		for y := 0; y < g.Counts[1]; y++ {
			for z := 0; z < g.Counts[2]; z++ {
				p := g.Point(x, y, z)
				g.Set(x, y, z, s.F(p[0], p[1], p[2]))
			}
		}
	}
	return finishGrid(g, s.opts, mapping), nil
}
