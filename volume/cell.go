package volume

import (
	"fmt"
	"math"

	vec3d "github.com/flywave/go3d/float64/vec3"
)

// CellConverter turns crystallographic cell parameters into Cartesian axis
// vectors. Hosts with a full symmetry service plug their own in.
type CellConverter interface {
	Vectors(c UnitCell) ([3]vec3d.T, error)
}

// UnitCell lengths are in angstroms, angles in degrees.
type UnitCell struct {
	A, B, C            float64
	Alpha, Beta, Gamma float64
}

// Vectors places a along x and b in the xy plane.
func (c UnitCell) Vectors() ([3]vec3d.T, error) {
	var v [3]vec3d.T
	if c.A <= 0 || c.B <= 0 || c.C <= 0 {
		return v, fmt.Errorf("volume: invalid cell lengths %g %g %g", c.A, c.B, c.C)
	}
	rad := math.Pi / 180
	ca, cb, cg := math.Cos(c.Alpha*rad), math.Cos(c.Beta*rad), math.Cos(c.Gamma*rad)
	sg := math.Sin(c.Gamma * rad)
	if sg == 0 {
		return v, fmt.Errorf("volume: degenerate cell gamma %g", c.Gamma)
	}
	v[0] = vec3d.T{c.A, 0, 0}
	v[1] = vec3d.T{c.B * cg, c.B * sg, 0}
	cx := c.C * cb
	cy := c.C * (ca - cb*cg) / sg
	cz2 := c.C*c.C - cx*cx - cy*cy
	if cz2 <= 0 {
		return v, fmt.Errorf("volume: impossible cell angles %g %g %g", c.Alpha, c.Beta, c.Gamma)
	}
	v[2] = vec3d.T{cx, cy, math.Sqrt(cz2)}
	return v, nil
}

// DefaultCells is the built-in CellConverter.
type DefaultCells struct{}

func (DefaultCells) Vectors(c UnitCell) ([3]vec3d.T, error) {
	return c.Vectors()
}
