// Package config loads surface request settings from JSON files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/flywave/go-jvxl"
	"github.com/flywave/go-jvxl/colormap"
	"github.com/flywave/go-jvxl/extract"
	"github.com/flywave/go-jvxl/pipeline"
	"github.com/flywave/go-jvxl/readers"
	"github.com/flywave/go-jvxl/volume"
)

const maxFileSize = 1 * 1024 * 1024

// SurfaceConfig is one surface request. Omitted fields fall back to the
// Get* defaults.
type SurfaceConfig struct {
	// Extraction
	Cutoff         *float64  `json:"cutoff,omitempty"`
	CutoffAbsolute *bool     `json:"cutoff_absolute,omitempty"`
	SquareData     *bool     `json:"square_data,omitempty"`
	AssocCutoff    *float64  `json:"assoc_cutoff,omitempty"`
	Plane          []float64 `json:"plane,omitempty"` // a b c d
	NContours      *int      `json:"n_contours,omitempty"`

	// Reading
	FileIndex   *int    `json:"file_index,omitempty"`
	Stride      *int    `json:"stride,omitempty"`
	NativeUnits *bool   `json:"native_units,omitempty"`
	Recovery    *string `json:"recovery,omitempty"` // strict or lenient

	// Coloring
	ColorMode     *string   `json:"color_mode,omitempty"`
	Phase         *string   `json:"phase,omitempty"`
	ColorRange    []float64 `json:"color_range,omitempty"` // lo hi
	ReverseColor  *bool     `json:"reverse_color,omitempty"`
	PaletteSize   *int      `json:"palette_size,omitempty"`
	PositiveColor *string   `json:"positive_color,omitempty"` // CSS color name
	NegativeColor *string   `json:"negative_color,omitempty"`

	// Encoding
	ColorEncoding *string `json:"color_encoding,omitempty"` // precision or compact
	Title         *string `json:"title,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// Load reads a SurfaceConfig from a .json file of at most 1 MB.
func Load(path string) (*SurfaceConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := &SurfaceConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *SurfaceConfig) Validate() error {
	if c.AssocCutoff != nil && (*c.AssocCutoff < 0 || *c.AssocCutoff >= 0.5) {
		return fmt.Errorf("assoc_cutoff must be in [0, 0.5), got %f", *c.AssocCutoff)
	}
	if c.Plane != nil && len(c.Plane) != 4 {
		return fmt.Errorf("plane needs 4 coefficients, got %d", len(c.Plane))
	}
	if c.Plane != nil && c.Plane[0] == 0 && c.Plane[1] == 0 && c.Plane[2] == 0 {
		return fmt.Errorf("plane normal must not be zero")
	}
	if c.NContours != nil && *c.NContours < 0 {
		return fmt.Errorf("n_contours must be non-negative, got %d", *c.NContours)
	}
	if c.FileIndex != nil && *c.FileIndex < 1 {
		return fmt.Errorf("file_index counts from 1, got %d", *c.FileIndex)
	}
	if c.Stride != nil && *c.Stride < 1 {
		return fmt.Errorf("stride must be positive, got %d", *c.Stride)
	}
	if c.Recovery != nil {
		if _, err := readers.ParseRecoveryPolicy(*c.Recovery); err != nil {
			return err
		}
	}
	if c.ColorMode != nil {
		if _, err := colormap.ParseMode(*c.ColorMode); err != nil {
			return err
		}
	}
	if c.Phase != nil && !slices.Contains(colormap.PhaseFunctions, *c.Phase) {
		return fmt.Errorf("unknown phase %q, want one of %v", *c.Phase, colormap.PhaseFunctions)
	}
	if c.ColorRange != nil && len(c.ColorRange) != 2 {
		return fmt.Errorf("color_range needs lo and hi, got %d values", len(c.ColorRange))
	}
	if c.PaletteSize != nil && *c.PaletteSize < 2 {
		return fmt.Errorf("palette_size must be at least 2, got %d", *c.PaletteSize)
	}
	for key, name := range map[string]*string{"positive_color": c.PositiveColor, "negative_color": c.NegativeColor} {
		if name == nil {
			continue
		}
		if _, ok := colormap.Named(*name); !ok {
			return fmt.Errorf("%s: unknown color %q", key, *name)
		}
	}
	if c.ColorEncoding != nil {
		if _, err := jvxl.ParseColorEncoding(*c.ColorEncoding); err != nil {
			return err
		}
	}
	return nil
}

func (c *SurfaceConfig) GetCutoff() float64 {
	if c.Cutoff == nil {
		return 0.02 // default
	}
	return *c.Cutoff
}

func (c *SurfaceConfig) GetAssocCutoff() float64 {
	if c.AssocCutoff == nil {
		return extract.DefaultAssocCutoff
	}
	return *c.AssocCutoff
}

func (c *SurfaceConfig) GetNContours() int {
	if c.NContours == nil {
		return 0
	}
	return *c.NContours
}

func (c *SurfaceConfig) GetStride() int {
	if c.Stride == nil {
		return 1
	}
	return *c.Stride
}

func (c *SurfaceConfig) GetFileIndex() int {
	if c.FileIndex == nil {
		return 1
	}
	return *c.FileIndex
}

func (c *SurfaceConfig) GetColorMode() colormap.Mode {
	if c.ColorMode == nil {
		return colormap.ModeContinuous
	}
	m, err := colormap.ParseMode(*c.ColorMode)
	if err != nil {
		return colormap.ModeContinuous
	}
	return m
}

func (c *SurfaceConfig) GetPhase() string {
	if c.Phase == nil {
		return "z"
	}
	return *c.Phase
}

func (c *SurfaceConfig) GetPaletteSize() int {
	if c.PaletteSize == nil {
		return 256
	}
	return *c.PaletteSize
}

func (c *SurfaceConfig) GetColorEncoding() jvxl.ColorEncoding {
	if c.ColorEncoding == nil {
		return jvxl.ColorPrecision
	}
	e, err := jvxl.ParseColorEncoding(*c.ColorEncoding)
	if err != nil {
		return jvxl.ColorPrecision
	}
	return e
}

func (c *SurfaceConfig) GetRecovery() readers.RecoveryPolicy {
	if c.Recovery == nil {
		return readers.RecoveryLenient
	}
	p, err := readers.ParseRecoveryPolicy(*c.Recovery)
	if err != nil {
		return readers.RecoveryLenient
	}
	return p
}

func (c *SurfaceConfig) GetTitle() string {
	if c.Title == nil {
		return ""
	}
	return *c.Title
}

func getBool(b *bool) bool {
	return b != nil && *b
}

// ReaderOptions returns the options for the grid source.
func (c *SurfaceConfig) ReaderOptions() readers.Options {
	return readers.Options{
		FileIndex:   c.GetFileIndex(),
		Stride:      c.GetStride(),
		NativeUnits: getBool(c.NativeUnits),
		Recovery:    c.GetRecovery(),
	}
}

// ToParams builds pipeline parameters.
func (c *SurfaceConfig) ToParams() pipeline.Params {
	p := pipeline.DefaultParams()
	p.Extract = extract.Params{
		Cutoff:      c.GetCutoff(),
		IsAbsolute:  getBool(c.CutoffAbsolute),
		SquareData:  getBool(c.SquareData),
		AssocCutoff: c.GetAssocCutoff(),
	}
	if len(c.Plane) == 4 {
		pl := volume.NewPlane(c.Plane[0], c.Plane[1], c.Plane[2], c.Plane[3])
		p.Plane = &pl
	}
	p.NContours = c.GetNContours()
	p.Color = colormap.Params{
		Mode:     c.GetColorMode(),
		Palette:  colormap.ROYGB(c.GetPaletteSize()),
		Reverse:  getBool(c.ReverseColor),
		Phase:    c.GetPhase(),
		Positive: colormap.DefaultPositive,
		Negative: colormap.DefaultNegative,
	}
	if len(c.ColorRange) == 2 {
		p.Color.Range = &[2]float64{c.ColorRange[0], c.ColorRange[1]}
	}
	if c.PositiveColor != nil {
		p.Color.Positive, _ = colormap.Named(*c.PositiveColor)
	}
	if c.NegativeColor != nil {
		p.Color.Negative, _ = colormap.Named(*c.NegativeColor)
	}
	p.Encode.ColorEncoding = c.GetColorEncoding()
	if t := c.GetTitle(); t != "" {
		p.Encode.Titles[0] = t
	}
	return p
}
