package jvxl

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	vec3d "github.com/flywave/go3d/float64/vec3"
)

const (
	EncodingTriangles     = "jvxlsc"
	EncodingVertices      = "base90xyz2"
	EncodingPolygonColors = "jvxlnc"
	EncodingColors        = "base90"
	EncodingColorsPrecise = "base902"
	EncodingContour       = "jvxlc"
)

// SurfaceData is the tag-delimited block that carries vertex-only meshes
// and contour sets.
type SurfaceData struct {
	XMLName       xml.Name      `xml:"jvxlSurfaceData"`
	Triangles     *EncodedBlock `xml:"jvxlTriangleData,omitempty"`
	Vertices      *VertexBlock  `xml:"jvxlVertexData,omitempty"`
	PolygonColors *EncodedBlock `xml:"jvxlPolygonColorData,omitempty"`
	Colors        *ColorBlock   `xml:"jvxlColorData,omitempty"`
	Contours      *ContourData  `xml:"jvxlContourData,omitempty"`
}

type EncodedBlock struct {
	Count    int    `xml:"count,attr"`
	Encoding string `xml:"encoding,attr,omitempty"`
	Data     string `xml:",chardata"`
}

type VertexBlock struct {
	Count    int    `xml:"count,attr"`
	Min      string `xml:"min,attr"`
	Max      string `xml:"max,attr"`
	Encoding string `xml:"encoding,attr,omitempty"`
	Data     string `xml:",chardata"`
}

type ColorBlock struct {
	Count    int     `xml:"count,attr"`
	Min      float64 `xml:"min,attr"`
	Max      float64 `xml:"max,attr"`
	Encoding string  `xml:"encoding,attr,omitempty"`
	Data     string  `xml:",chardata"`
}

type ContourData struct {
	Count    int            `xml:"count,attr"`
	Contours []ContourBlock `xml:"jvxlContour"`
}

// ContourBlock is one contour level. Bits holds the polygon membership as
// bit runs; Data holds, per member polygon, the segment type digit and two
// edge fraction characters.
type ContourBlock struct {
	Value     float64 `xml:"value,attr"`
	Color     string  `xml:"color,attr"`
	NPolygons int     `xml:"npolygons,attr"`
	Bits      string  `xml:"bits,attr"`
	Encoding  string  `xml:"encoding,attr,omitempty"`
	Data      string  `xml:",chardata"`
}

func formatARGB(c uint32) string {
	return fmt.Sprintf("0x%08x", c)
}

func parseARGB(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: color %q", ErrDecode, s)
	}
	return uint32(v), nil
}

func formatPoint(p vec3d.T) string {
	return formatFloat(p[0]) + " " + formatFloat(p[1]) + " " + formatFloat(p[2])
}

func parsePoint(s string) (vec3d.T, error) {
	var p vec3d.T
	f := strings.Fields(strings.Trim(s, "{}"))
	if len(f) != 3 {
		return p, fmt.Errorf("%w: point %q", ErrDecode, s)
	}
	for i := range p {
		v, err := strconv.ParseFloat(f[i], 64)
		if err != nil {
			return p, fmt.Errorf("%w: point %q", ErrDecode, s)
		}
		p[i] = v
	}
	return p, nil
}

func (sd *SurfaceData) marshal() (string, error) {
	b, err := xml.MarshalIndent(sd, "", " ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalSurfaceData(s string) (*SurfaceData, error) {
	sd := &SurfaceData{}
	if err := xml.Unmarshal([]byte(s), sd); err != nil {
		return nil, fmt.Errorf("%w: surface data: %v", ErrDecode, err)
	}
	return sd, nil
}
