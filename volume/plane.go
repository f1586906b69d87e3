package volume

import (
	"fmt"
	"math"

	vec3d "github.com/flywave/go3d/float64/vec3"
)

// Plane is ax + by + cz + d = 0.
type Plane struct {
	Normal vec3d.T
	D      float64
}

func NewPlane(a, b, c, d float64) Plane {
	return Plane{Normal: vec3d.T{a, b, c}, D: d}
}

// Distance is the signed distance of p to the plane.
func (pl *Plane) Distance(p *vec3d.T) float64 {
	l := pl.Normal.Length()
	if l == 0 {
		return math.NaN()
	}
	return (vec3d.Dot(&pl.Normal, p) + pl.D) / l
}

func (pl Plane) Coefficients() [4]float64 {
	return [4]float64{pl.Normal[0], pl.Normal[1], pl.Normal[2], pl.D}
}

func (pl Plane) String() string {
	return fmt.Sprintf("{%g %g %g %g}", pl.Normal[0], pl.Normal[1], pl.Normal[2], pl.D)
}
