// Package extract runs marching cubes over a volume grid and marching
// squares over planar meshes.
package extract

import (
	"fmt"
	"math"

	vec3d "github.com/flywave/go3d/float64/vec3"

	"github.com/flywave/go-jvxl/internal/logging"
	"github.com/flywave/go-jvxl/volume"
)

// DefaultAssocCutoff ties a vertex to a grid point when it sits within this
// fraction of the edge end.
const DefaultAssocCutoff = 0.3

type Params struct {
	Cutoff      float64
	IsAbsolute  bool
	SquareData  bool
	AssocCutoff float64
}

// VertexSink owns the vertices the extractor produces. AddVertex may return
// a negative index to refuse a vertex; triangles using it are dropped.
type VertexSink interface {
	AddVertex(p vec3d.T, value float64, assoc int) int
	AddTriangle(a, b, c int, check uint8)
}

// FractionSource replays recorded edge fractions instead of interpolating.
type FractionSource interface {
	NextFraction() float64
}

// Surface records what a later encoder needs to rebuild the extraction:
// the inside flag of every grid point and each edge fraction in the order
// the edges were first met. NaN fractions are kept; they produced no vertex.
type Surface struct {
	Inside    []bool
	Fractions []float64
	Vertices  int
	Triangles int
}

type Cubes struct {
	Grid   *volume.Grid
	Params Params

	// Inside, when set, replaces the classification of grid values.
	Inside []bool
	// Fractions, when set, supplies edge fractions; vertex values become
	// the cutoff.
	Fractions FractionSource

	cutoff float64
	values []float64
	cache  []int32
	sink   VertexSink
	surf   *Surface
}

// IsInside applies the cutoff rule: at or above a positive cutoff, at or
// below a non-positive one.
func IsInside(v, cutoff float64, absolute bool) bool {
	if cutoff > 0 {
		if absolute {
			v = math.Abs(v)
		}
		return v >= cutoff
	}
	return v <= cutoff
}

func (c *Cubes) Run(sink VertexSink) (*Surface, error) {
	g := c.Grid
	if g == nil {
		return nil, fmt.Errorf("extract: no grid")
	}
	replay := c.Inside != nil && c.Fractions != nil
	if !replay {
		if err := g.Validate(); err != nil {
			return nil, err
		}
	}
	n := g.Len()
	c.sink = sink
	c.cutoff = c.Params.Cutoff
	if c.Params.SquareData {
		c.cutoff = math.Abs(c.cutoff)
	}
	if !replay {
		c.values = c.loadValues()
	}
	c.surf = &Surface{Inside: c.Inside}
	if c.surf.Inside == nil {
		c.surf.Inside = make([]bool, n)
		for i, v := range c.values {
			c.surf.Inside[i] = IsInside(v, c.cutoff, c.Params.IsAbsolute)
		}
	} else if len(c.surf.Inside) != n {
		return nil, fmt.Errorf("extract: %d inside flags for %d grid points", len(c.surf.Inside), n)
	}

	nx, ny, nz := g.Counts[0], g.Counts[1], g.Counts[2]
	if nx < 2 || ny < 2 || nz < 2 {
		return c.surf, nil
	}
	c.cache = make([]int32, 3*n)
	for i := range c.cache {
		c.cache[i] = -2
	}

	var corner [8]int
	var vi [12]int
	for x := 0; x < nx-1; x++ {
		for y := 0; y < ny-1; y++ {
			for z := 0; z < nz-1; z++ {
				idx := 0
				for k, o := range cornerOffsets {
					corner[k] = g.Index(x+o[0], y+o[1], z+o[2])
					if c.surf.Inside[corner[k]] {
						idx |= 1 << uint(k)
					}
				}
				if idx == 0 || idx == 255 {
					continue
				}
				for e, ends := range cubeEdges {
					vi[e] = -1
					if c.surf.Inside[corner[ends[0]]] != c.surf.Inside[corner[ends[1]]] {
						vi[e] = c.edgeVertex(corner[edgeLowCorner[e]], edgeAxis[e])
					}
				}
				for _, t := range caseTriangles[idx] {
					a, b, d := vi[t.e[0]], vi[t.e[1]], vi[t.e[2]]
					if a < 0 || b < 0 || d < 0 {
						continue
					}
					sink.AddTriangle(a, b, d, t.check)
					c.surf.Triangles++
				}
			}
		}
	}
	c.values, c.cache = nil, nil
	logging.Logger().Debug("marching cubes done",
		"cutoff", c.Params.Cutoff,
		"vertices", c.surf.Vertices,
		"triangles", c.surf.Triangles,
		"edges", len(c.surf.Fractions))
	return c.surf, nil
}

func (c *Cubes) loadValues() []float64 {
	g := c.Grid
	if g.Data != nil && !c.Params.SquareData {
		return g.Data
	}
	vals := make([]float64, g.Len())
	for i := range vals {
		x, y, z := g.Coords(i)
		v := g.Value(x, y, z)
		if c.Params.SquareData {
			v *= v
		}
		vals[i] = v
	}
	return vals
}

// edgeVertex returns the vertex on the grid edge leaving point low along
// axis, creating it on first use.
func (c *Cubes) edgeVertex(low, axis int) int {
	g := c.Grid
	key := axis*len(c.surf.Inside) + low
	if v := c.cache[key]; v != -2 {
		return int(v)
	}
	x, y, z := g.Coords(low)
	hx, hy, hz := x, y, z
	switch axis {
	case 0:
		hx++
	case 1:
		hy++
	default:
		hz++
	}
	high := g.Index(hx, hy, hz)

	var f, value float64
	if c.Fractions != nil {
		f = c.Fractions.NextFraction()
		value = c.Params.Cutoff
	} else {
		a, b := c.values[low], c.values[high]
		f = c.fraction(a, b)
		value = a + f*(b-a)
	}
	c.surf.Fractions = append(c.surf.Fractions, f)
	if math.IsNaN(f) {
		c.cache[key] = -1
		return -1
	}

	p := g.Point(x, y, z)
	step := g.Basis[axis].Scaled(f)
	p.Add(&step)

	assoc := -1
	if ac := c.Params.AssocCutoff; ac > 0 {
		if f < ac {
			assoc = low
		} else if f > 1-ac {
			assoc = high
		}
	}
	v := c.sink.AddVertex(p, value, assoc)
	if v >= 0 {
		c.surf.Vertices++
	} else {
		v = -1
	}
	c.cache[key] = int32(v)
	return v
}

// fraction locates the cutoff between a and b. Crossings that land outside
// the edge come back as NaN.
func (c *Cubes) fraction(a, b float64) float64 {
	d := b - a
	f := (c.cutoff - a) / d
	if c.Params.IsAbsolute && (f < 0 || f > 1) {
		f = (-c.cutoff - a) / d
	}
	if f < 0 || f > 1 || math.IsNaN(f) {
		return math.NaN()
	}
	return f
}
