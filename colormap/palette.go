package colormap

import (
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// Palette maps scalars to colors. Hosts with their own color-scheme service
// implement it; ROYGB is the built-in one.
type Palette interface {
	Len() int
	// Index places v within [lo,hi]; values beyond the range clamp to the ends.
	Index(v, lo, hi float64) int
	ARGB(i int) uint32
}

type ramp struct {
	colors []uint32
}

// ROYGB is a red-orange-yellow-green-blue ramp of n colors, red at the low end.
func ROYGB(n int) Palette {
	if n < 2 {
		n = 2
	}
	r := &ramp{colors: make([]uint32, n)}
	for i := range r.colors {
		hue := 240 * float64(i) / float64(n-1)
		r.colors[i] = fromColorful(colorful.Hsv(hue, 1, 1))
	}
	return r
}

func (r *ramp) Len() int { return len(r.colors) }

func (r *ramp) Index(v, lo, hi float64) int {
	n := len(r.colors)
	if math.IsNaN(v) {
		return 0
	}
	if hi == lo {
		return 0
	}
	f := (v - lo) / (hi - lo)
	i := int(math.Floor(f * float64(n)))
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}
	return i
}

func (r *ramp) ARGB(i int) uint32 {
	if i < 0 || i >= len(r.colors) {
		return 0
	}
	return r.colors[i]
}

func fromColorful(c colorful.Color) uint32 {
	r, g, b := c.RGB255()
	return 0xff000000 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// ARGB packs an opaque image color.
func ARGB(c color.RGBA) uint32 {
	return uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// Named looks up a CSS color name; ok is false for unknown names.
func Named(name string) (uint32, bool) {
	c, ok := colornames.Map[name]
	if !ok {
		return 0, false
	}
	return ARGB(c), true
}

var (
	DefaultPositive = ARGB(colornames.Blue)
	DefaultNegative = ARGB(colornames.Red)
)
