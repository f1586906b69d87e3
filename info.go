package jvxl

import (
	"encoding/json"
)

type SurfaceInfo struct {
	Mode       string    `json:"mode"`
	Cutoff     float64   `json:"cutoff"`
	Plane      []float64 `json:"plane,omitempty"`
	Runs       int       `json:"runs,omitempty"`
	EdgeChars  int       `json:"edgeChars,omitempty"`
	ColorChars int       `json:"colorChars,omitempty"`
	Precise    bool      `json:"precisionColor,omitempty"`
	ColorRange []float64 `json:"colorRange,omitempty"`
	Contours   int       `json:"contours,omitempty"`
	Vertices   *int      `json:"vertices,omitempty"`
	Triangles  *int      `json:"triangles,omitempty"`
	InsideOut  bool      `json:"insideOut,omitempty"`
}

// DocumentInfo describes a document without decoding its surfaces.
type DocumentInfo struct {
	Format   string        `json:"format"`
	Version  string        `json:"version"`
	Titles   []string      `json:"titles,omitempty"`
	Header   []string      `json:"header,omitempty"`
	Origin   []float64     `json:"origin"`
	Counts   []int         `json:"counts"`
	Units    string        `json:"units"`
	Atoms    int           `json:"atoms"`
	Alphabet []int         `json:"alphabet"`
	Surfaces []SurfaceInfo `json:"surfaces"`
}

func NewDocumentInfo(d *Document) *DocumentInfo {
	info := &DocumentInfo{
		Format:   "jvxl",
		Version:  FormatVersion,
		Header:   d.Header,
		Origin:   d.Volume.Origin[:],
		Counts:   d.Volume.Counts[:],
		Units:    d.Volume.Units.String(),
		Atoms:    len(d.Volume.Atoms),
		Alphabet: []int{d.EdgeAlphabet.Base, d.EdgeAlphabet.Range, d.ColorAlphabet.Base, d.ColorAlphabet.Range},
	}
	for _, t := range d.Titles {
		if t != "" {
			info.Titles = append(info.Titles, t)
		}
	}
	for _, s := range d.Surfaces {
		def := &s.Definition
		si := SurfaceInfo{
			Mode:       def.Mode().String(),
			Cutoff:     def.Cutoff,
			Runs:       def.RunCount(),
			EdgeChars:  def.EdgeDataLength(),
			ColorChars: def.ColorDataLength(),
			Precise:    def.IsColorMapped() && def.IsPrecisionColor(),
			Contours:   def.NContours,
			InsideOut:  def.InsideOut,
		}
		if def.Plane != nil {
			c := def.Plane.Coefficients()
			si.Plane = c[:]
		}
		if def.HasRange {
			si.ColorRange = []float64{def.ValueMin, def.ValueMax}
		}
		if sd := s.Data; sd != nil {
			if sd.Vertices != nil {
				n := sd.Vertices.Count
				si.Vertices = &n
			}
			if sd.Triangles != nil {
				n := sd.Triangles.Count
				si.Triangles = &n
			}
		}
		info.Surfaces = append(info.Surfaces, si)
	}
	return info
}

func (i *DocumentInfo) JSON() ([]byte, error) {
	return json.MarshalIndent(i, "", "  ")
}
