// Package readers turns grid files, atom models, functions and
// pre-triangulated meshes into volume grids or meshes.
//
// Every variant implements Source. Sources that skip the grid and hand over
// a finished mesh also implement MeshSource; files holding several stacked
// grids implement MultiSource.
package readers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flywave/go-jvxl/internal/logging"
	"github.com/flywave/go-jvxl/mesh"
	"github.com/flywave/go-jvxl/volume"
)

var (
	ErrFormat    = errors.New("readers: unrecognized or malformed input")
	ErrTruncated = errors.New("readers: unexpected end of data")
	ErrNoGrid    = errors.New("readers: source carries a mesh, not a grid")
)

type Kind int

const (
	KindCube Kind = iota
	KindMRC
	KindFunction
	KindAtoms
	KindPmesh
	KindPmeshBinary
	KindTIN
	KindJvxl
)

var kindNames = []string{"cube", "mrc", "function", "atoms", "pmesh", "pmesh-binary", "tin", "jvxl"}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// RecoveryPolicy decides what happens when data ends early.
type RecoveryPolicy int

const (
	// RecoveryLenient fills the rest with zeros and warns once.
	RecoveryLenient RecoveryPolicy = iota
	// RecoveryStrict fails with ErrTruncated.
	RecoveryStrict
)

func (p RecoveryPolicy) String() string {
	if p == RecoveryStrict {
		return "strict"
	}
	return "lenient"
}

func ParseRecoveryPolicy(s string) (RecoveryPolicy, error) {
	switch s {
	case "", "lenient":
		return RecoveryLenient, nil
	case "strict":
		return RecoveryStrict, nil
	}
	return 0, fmt.Errorf("readers: unknown recovery policy %q", s)
}

type Options struct {
	// FileIndex picks one of several stacked surfaces, counting from 1.
	FileIndex int
	// Stride keeps every Stride-th grid point on each axis.
	Stride int
	// NativeUnits keeps bohr geometry instead of converting to angstroms.
	NativeUnits bool
	Recovery    RecoveryPolicy
	// Cells converts crystallographic cells; nil uses volume.DefaultCells.
	Cells volume.CellConverter
}

func (o Options) index() int {
	if o.FileIndex < 1 {
		return 0
	}
	return o.FileIndex - 1
}

func (o Options) cells() volume.CellConverter {
	if o.Cells == nil {
		return volume.DefaultCells{}
	}
	return o.Cells
}

type Source interface {
	Kind() Kind
	ReadHeader() (*volume.Header, error)
	// ReadVolume reads the grid. A mapping pass keeps the full resolution.
	ReadVolume(mapping bool) (*volume.Grid, error)
}

type MeshSource interface {
	Source
	ReadMesh() (*mesh.Mesh, error)
}

type MultiSource interface {
	Source
	SurfaceCount() int
	ReadAll() ([]*volume.Grid, error)
}

// prepareHeader applies the unit conversion once.
func prepareHeader(h *volume.Header, opts Options) {
	if !opts.NativeUnits {
		h.ToAngstroms()
	}
}

// finishGrid down-samples a freshly read grid.
func finishGrid(g *volume.Grid, opts Options, mapping bool) *volume.Grid {
	if log := logging.Logger(); log.Enabled(context.Background(), slog.LevelDebug) {
		st := g.Stats()
		log.Debug("grid read", "counts", g.Counts, "min", st.Min, "max", st.Max, "mean", st.Mean)
	}
	if mapping || opts.Stride <= 1 {
		return g
	}
	out := g.Downsample(opts.Stride)
	logging.Logger().Debug("grid down-sampled", "stride", opts.Stride, "from", g.Counts, "to", out.Counts)
	return out
}

// truncation applies the recovery policy once data has run out.
type truncation struct {
	policy RecoveryPolicy
	hit    bool
}

func (t *truncation) fail(what string, err error) error {
	if t.policy == RecoveryStrict {
		return fmt.Errorf("%w: %s: %v", ErrTruncated, what, err)
	}
	if !t.hit {
		logging.Logger().Warn("data ended early, filling with zeros", "what", what, "err", err)
	}
	t.hit = true
	return nil
}

// Truncated reports whether the sticky end-of-data flag is set.
func (t *truncation) Truncated() bool {
	return t.hit
}
