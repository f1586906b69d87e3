package readers

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/flywave/go-jvxl/internal/logging"
	"github.com/flywave/go-jvxl/volume"
)

// CubeReader reads Gaussian cube files, including files that interleave
// several stacked grids after a surface-count line.
type CubeReader struct {
	opts Options
	ts   *tokenScanner

	header    *volume.Header
	nSurfaces int
	ids       []int
	jvxl      bool
}

func NewCubeReader(r io.Reader, opts Options) *CubeReader {
	return &CubeReader{opts: opts, ts: newTokenScanner(r, opts.Recovery)}
}

func (c *CubeReader) Kind() Kind { return KindCube }

func (c *CubeReader) ReadHeader() (*volume.Header, error) {
	if c.header != nil {
		return c.header, nil
	}
	var titles [2]string
	for i := range titles {
		line, err := c.ts.NextLine()
		if err != nil {
			return nil, fmt.Errorf("%w: title line %d: %v", ErrFormat, i+1, err)
		}
		titles[i] = line
	}
	h, extended, err := volume.ReadPreamble(c.ts, titles[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	c.nSurfaces = 1
	if extended {
		line, err := c.ts.NextLine()
		if err != nil {
			return nil, fmt.Errorf("%w: surface count line: %v", ErrFormat, err)
		}
		f := strings.Fields(line)
		n := 0
		if len(f) > 0 {
			n, err = strconv.Atoi(f[0])
		}
		if len(f) == 0 || err != nil || n == 0 {
			return nil, fmt.Errorf("%w: surface count line %q", ErrFormat, line)
		}
		if n < 0 {
			c.jvxl = true
		} else {
			c.nSurfaces = n
			for _, tok := range f[1:] {
				if id, err := strconv.Atoi(tok); err == nil {
					c.ids = append(c.ids, id)
				}
			}
		}
	}
	prepareHeader(h, c.opts)
	c.header = h
	logging.Logger().Debug("cube header",
		"counts", h.Counts,
		"atoms", len(h.Atoms),
		"surfaces", c.nSurfaces,
		"units", h.Units.String())
	return h, nil
}

// SurfaceCount is the number of interleaved grids.
func (c *CubeReader) SurfaceCount() int {
	return c.nSurfaces
}

// SurfaceIDs are the orbital or property ids listed on the surface line.
func (c *CubeReader) SurfaceIDs() []int {
	return c.ids
}

// ReadVolume reads the grid selected by Options.FileIndex.
func (c *CubeReader) ReadVolume(mapping bool) (*volume.Grid, error) {
	if _, err := c.ReadHeader(); err != nil {
		return nil, err
	}
	idx := c.opts.index()
	if idx >= c.nSurfaces {
		return nil, fmt.Errorf("%w: surface %d of %d", ErrFormat, idx+1, c.nSurfaces)
	}
	grids, err := c.readGrids(func(i int) bool { return i == idx })
	if err != nil {
		return nil, err
	}
	return finishGrid(grids[idx], c.opts, mapping), nil
}

// ReadAll block-reads every stacked grid.
func (c *CubeReader) ReadAll() ([]*volume.Grid, error) {
	if _, err := c.ReadHeader(); err != nil {
		return nil, err
	}
	grids, err := c.readGrids(func(int) bool { return true })
	if err != nil {
		return nil, err
	}
	for i, g := range grids {
		grids[i] = finishGrid(g, c.opts, false)
	}
	return grids, nil
}

// Truncated reports whether the data ended before the grid was full.
func (c *CubeReader) Truncated() bool {
	return c.ts.trunc.Truncated()
}

func (c *CubeReader) readGrids(keep func(int) bool) ([]*volume.Grid, error) {
	if c.jvxl {
		return nil, fmt.Errorf("%w: file carries JVXL surfaces, read it with the JVXL source", ErrFormat)
	}
	grids := make([]*volume.Grid, c.nSurfaces)
	for i := range grids {
		if keep(i) {
			grids[i] = c.header.NewGrid()
		}
	}
	n := c.header.PointCount()
	for p := 0; p < n; p++ {
		for s := 0; s < c.nSurfaces; s++ {
			v, err := c.ts.float()
			if err != nil {
				return nil, err
			}
			if grids[s] != nil {
				grids[s].Data[p] = v
			}
		}
	}
	return grids, nil
}
