package volume

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	vec3d "github.com/flywave/go3d/float64/vec3"
)

var ErrPreamble = errors.New("volume: malformed grid preamble")

// LineSource yields successive non-terminated input lines.
type LineSource interface {
	NextLine() (string, error)
}

// ReadPreamble parses the block shared by cube files and JVXL documents:
//
//	N ox oy oz [ANGSTROMS|BOHR]
//	nx vx vy vz
//	ny vx vy vz
//	nz vx vy vz
//	|N| atom lines: Z charge x y z
//
// A negative axis count or the ANGSTROMS keyword marks angstrom units,
// otherwise bohr. The sign of N is returned as extended; cube files use it to
// announce a surface-count line.
func ReadPreamble(src LineSource, titles []string) (h *Header, extended bool, err error) {
	h = &Header{Titles: append([]string(nil), titles...), Units: UnitsBohr}
	line, err := src.NextLine()
	if err != nil {
		return nil, false, fmt.Errorf("%w: atom count line: %v", ErrPreamble, err)
	}
	f := strings.Fields(line)
	if len(f) < 4 {
		return nil, false, fmt.Errorf("%w: atom count line %q", ErrPreamble, line)
	}
	nAtoms, err := strconv.Atoi(f[0])
	if err != nil {
		return nil, false, fmt.Errorf("%w: atom count %q", ErrPreamble, f[0])
	}
	extended = strings.HasPrefix(f[0], "-")
	if nAtoms < 0 {
		nAtoms = -nAtoms
	}
	if h.Origin, err = parseVec(f[1:4]); err != nil {
		return nil, false, fmt.Errorf("%w: origin: %v", ErrPreamble, err)
	}
	angstroms := false
	for _, tok := range f[4:] {
		switch strings.ToUpper(tok) {
		case "ANGSTROMS", "ANGSTROM":
			angstroms = true
		case "BOHR":
			angstroms = false
		}
	}

	for i := 0; i < 3; i++ {
		if line, err = src.NextLine(); err != nil {
			return nil, false, fmt.Errorf("%w: axis %d: %v", ErrPreamble, i, err)
		}
		f = strings.Fields(line)
		if len(f) < 4 {
			return nil, false, fmt.Errorf("%w: axis line %q", ErrPreamble, line)
		}
		n, err := strconv.Atoi(f[0])
		if err != nil {
			return nil, false, fmt.Errorf("%w: axis count %q", ErrPreamble, f[0])
		}
		if n < 0 {
			angstroms = true
			n = -n
		}
		h.Counts[i] = n
		if h.Basis[i], err = parseVec(f[1:4]); err != nil {
			return nil, false, fmt.Errorf("%w: axis vector: %v", ErrPreamble, err)
		}
	}
	if angstroms {
		h.Units = UnitsAngstrom
	}

	h.Atoms = make([]Atom, 0, nAtoms)
	for i := 0; i < nAtoms; i++ {
		if line, err = src.NextLine(); err != nil {
			return nil, false, fmt.Errorf("%w: atom %d: %v", ErrPreamble, i, err)
		}
		f = strings.Fields(line)
		if len(f) < 5 {
			return nil, false, fmt.Errorf("%w: atom line %q", ErrPreamble, line)
		}
		elem, err := strconv.Atoi(f[0])
		if err != nil {
			return nil, false, fmt.Errorf("%w: atom element %q", ErrPreamble, f[0])
		}
		charge, err := strconv.ParseFloat(f[1], 64)
		if err != nil {
			return nil, false, fmt.Errorf("%w: atom charge %q", ErrPreamble, f[1])
		}
		pos, err := parseVec(f[2:5])
		if err != nil {
			return nil, false, fmt.Errorf("%w: atom position: %v", ErrPreamble, err)
		}
		h.Atoms = append(h.Atoms, Atom{Element: elem, Charge: charge, Pos: pos})
	}
	return h, extended, nil
}

// WritePreamble writes the block read by ReadPreamble, always in the
// header's own units.
func (h *Header) WritePreamble(w io.Writer, extended bool) error {
	sign := ""
	if extended {
		sign = "-"
	}
	if _, err := fmt.Fprintf(w, "%s%d %s %s\n", sign, len(h.Atoms), formatVec(h.Origin), h.Units); err != nil {
		return err
	}
	for i := 0; i < 3; i++ {
		if _, err := fmt.Fprintf(w, "%d %s\n", h.Counts[i], formatVec(h.Basis[i])); err != nil {
			return err
		}
	}
	for _, a := range h.Atoms {
		if _, err := fmt.Fprintf(w, "%d %s %s\n", a.Element, formatFloat(a.Charge), formatVec(a.Pos)); err != nil {
			return err
		}
	}
	return nil
}

func parseVec(f []string) (vec3d.T, error) {
	var v vec3d.T
	for i := 0; i < 3; i++ {
		x, err := strconv.ParseFloat(f[i], 64)
		if err != nil {
			return v, err
		}
		v[i] = x
	}
	return v, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatVec(v vec3d.T) string {
	return formatFloat(v[0]) + " " + formatFloat(v[1]) + " " + formatFloat(v[2])
}
