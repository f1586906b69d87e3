// Package jvxl reads and writes JVXL documents: compact, mostly printable
// text that carries extracted isosurfaces together with the grid geometry
// they came from, so they can be rebuilt without the original volume data.
package jvxl

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/flywave/go-jvxl/volume"
)

var (
	ErrDecode    = errors.New("jvxl: decode error")
	ErrColorOnly = errors.New("jvxl: color data without surface geometry")
)

const (
	Signature     = "#JVXL"
	FormatVersion = "2.0"

	surfaceDataStart = "<jvxlSurfaceData"
	surfaceDataEnd   = "</jvxlSurfaceData>"
	formatTrailer    = "Jmol voxel format version " + FormatVersion
)

// Surface is one encoded surface. EdgeData and ColorData hold the
// uncompressed character streams.
type Surface struct {
	Definition Definition
	Runs       []int
	EdgeData   string
	ColorData  string
	Data       *SurfaceData
}

type Document struct {
	// Header holds provenance lines without their leading '#'.
	Header []string
	Titles [2]string
	Volume volume.Header

	EdgeAlphabet  Alphabet
	ColorAlphabet Alphabet

	Surfaces []*Surface
}

func NewDocument(vol volume.Header, titles [2]string, header ...string) *Document {
	vol.Titles = nil
	return &Document{
		Header:        header,
		Titles:        titles,
		Volume:        vol,
		EdgeAlphabet:  EdgeAlphabet,
		ColorAlphabet: ColorAlphabet,
	}
}

type scannerLines struct {
	sc *bufio.Scanner
}

func (s *scannerLines) NextLine() (string, error) {
	if !s.sc.Scan() {
		if err := s.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSuffix(s.sc.Text(), "\r"), nil
}

// NewLineSource splits r into lines. Lines may be long: edge data for a
// large grid sits on one line.
func NewLineSource(r io.Reader) volume.LineSource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 256*1024*1024)
	return &scannerLines{sc: sc}
}

// lineReader adds lookahead to a line source.
type lineReader struct {
	src    volume.LineSource
	pushed []string
}

func (r *lineReader) NextLine() (string, error) {
	if n := len(r.pushed); n > 0 {
		l := r.pushed[n-1]
		r.pushed = r.pushed[:n-1]
		return l, nil
	}
	return r.src.NextLine()
}

func (r *lineReader) unread(l string) {
	r.pushed = append(r.pushed, l)
}

// Read parses a whole document.
func Read(rd io.Reader) (*Document, error) {
	lr := &lineReader{src: NewLineSource(rd)}
	doc := &Document{EdgeAlphabet: EdgeAlphabet, ColorAlphabet: ColorAlphabet}

	var line string
	var err error
	for {
		if line, err = lr.NextLine(); err != nil {
			return nil, fmt.Errorf("%w: no title lines: %v", ErrDecode, err)
		}
		if !strings.HasPrefix(line, "#") {
			break
		}
		if strings.HasPrefix(line, Signature) {
			continue
		}
		doc.Header = append(doc.Header, strings.TrimPrefix(strings.TrimPrefix(line, "#"), " "))
	}
	doc.Titles[0] = readTitle(line)
	if line, err = lr.NextLine(); err != nil {
		return nil, fmt.Errorf("%w: second title line: %v", ErrDecode, err)
	}
	doc.Titles[1] = readTitle(line)

	h, _, err := volume.ReadPreamble(lr, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	doc.Volume = *h

	if line, err = lr.NextLine(); err != nil {
		return nil, fmt.Errorf("%w: surface count line: %v", ErrDecode, err)
	}
	if err := doc.readSurfaces(lr, line); err != nil {
		return nil, err
	}
	return doc, nil
}

func (d *Document) readSurfaces(lr *lineReader, countLine string) error {
	n, err := d.parseSurfaceCount(countLine)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		line, err := lr.NextLine()
		if err != nil {
			return fmt.Errorf("%w: definition line %d: %v", ErrDecode, i+1, err)
		}
		def, err := ParseDefinition(line)
		if err != nil {
			return err
		}
		d.Surfaces = append(d.Surfaces, &Surface{Definition: *def})
	}
	for i, s := range d.Surfaces {
		if err := s.read(lr); err != nil {
			return fmt.Errorf("surface %d: %w", i+1, err)
		}
	}
	return nil
}

func readTitle(line string) string {
	if strings.HasPrefix(line, " #") {
		return line[1:]
	}
	return line
}

func writeTitle(t string) string {
	if strings.HasPrefix(t, "#") {
		return " " + t
	}
	return t
}

// parseSurfaceCount reads "-n [edgeBase edgeRange colorBase colorRange] ...".
func (d *Document) parseSurfaceCount(line string) (int, error) {
	f := strings.Fields(line)
	if len(f) == 0 {
		return 0, fmt.Errorf("%w: empty surface count line", ErrDecode)
	}
	n, err := strconv.Atoi(f[0])
	if err != nil || n >= 0 {
		return 0, fmt.Errorf("%w: surface count %q", ErrDecode, f[0])
	}
	if len(f) >= 5 {
		var v [4]int
		ok := true
		for i := range v {
			if v[i], err = strconv.Atoi(f[i+1]); err != nil {
				ok = false
				break
			}
		}
		if ok {
			d.EdgeAlphabet = Alphabet{Base: v[0], Range: v[1]}
			d.ColorAlphabet = Alphabet{Base: v[2], Range: v[3]}
		}
	}
	return -n, nil
}

func (s *Surface) read(lr *lineReader) error {
	def := &s.Definition
	if n := def.RunCount(); n > 0 {
		s.Runs = make([]int, 0, n)
		for len(s.Runs) < n {
			line, err := lr.NextLine()
			if err != nil {
				return fmt.Errorf("%w: bit runs end after %d of %d: %v", ErrDecode, len(s.Runs), n, err)
			}
			runs, err := ParseRuns(line)
			if err != nil {
				return err
			}
			s.Runs = append(s.Runs, runs...)
		}
	}
	if def.Mode() != ModeVertexOnly {
		var err error
		if s.EdgeData, err = readCharLine(lr, def.EdgeDataLength()); err != nil {
			return fmt.Errorf("edge data: %w", err)
		}
		if s.ColorData, err = readCharLine(lr, def.ColorDataLength()); err != nil {
			return fmt.Errorf("color data: %w", err)
		}
	}

	line, err := lr.NextLine()
	if err == io.EOF {
		if def.Mode() == ModeVertexOnly {
			return fmt.Errorf("%w: missing surface data block", ErrDecode)
		}
		return nil
	}
	if err != nil {
		return err
	}
	if !strings.HasPrefix(strings.TrimSpace(line), surfaceDataStart) {
		if def.Mode() == ModeVertexOnly {
			return fmt.Errorf("%w: missing surface data block", ErrDecode)
		}
		lr.unread(line)
		return nil
	}
	var sb strings.Builder
	for {
		sb.WriteString(line)
		sb.WriteByte('\n')
		if strings.Contains(line, surfaceDataEnd) {
			break
		}
		if line, err = lr.NextLine(); err != nil {
			return fmt.Errorf("%w: unterminated surface data block", ErrDecode)
		}
	}
	s.Data, err = unmarshalSurfaceData(sb.String())
	return err
}

// readCharLine reads one compressed line and checks it holds n characters.
// Short lines are padded with NaN characters by the decoder.
func readCharLine(lr *lineReader, n int) (string, error) {
	if n == 0 {
		return "", nil
	}
	line, err := lr.NextLine()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return Uncompress(line), nil
}

// Write serialises the document.
func (d *Document) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s %s\n", Signature, FormatVersion)
	for _, h := range d.Header {
		fmt.Fprintf(bw, "# %s\n", h)
	}
	fmt.Fprintf(bw, "%s\n%s\n", writeTitle(d.Titles[0]), writeTitle(d.Titles[1]))
	if err := d.Volume.WritePreamble(bw, true); err != nil {
		return err
	}
	fmt.Fprintf(bw, "-%d %d %d %d %d %s\n", len(d.Surfaces),
		d.EdgeAlphabet.Base, d.EdgeAlphabet.Range,
		d.ColorAlphabet.Base, d.ColorAlphabet.Range, formatTrailer)
	for _, s := range d.Surfaces {
		fmt.Fprintf(bw, "%s\n", s.Definition.String())
	}
	for _, s := range d.Surfaces {
		if err := s.write(bw); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (s *Surface) write(w io.Writer) error {
	if len(s.Runs) > 0 {
		if _, err := fmt.Fprintf(w, "%s\n", FormatRuns(s.Runs, runsPerLine)); err != nil {
			return err
		}
	}
	if len(s.EdgeData) > 0 {
		if _, err := fmt.Fprintf(w, "%s\n", Compress(s.EdgeData)); err != nil {
			return err
		}
	}
	if len(s.ColorData) > 0 {
		if _, err := fmt.Fprintf(w, "%s\n", Compress(s.ColorData)); err != nil {
			return err
		}
	}
	if s.Data == nil {
		return nil
	}
	x, err := s.Data.marshal()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", x)
	return err
}

// Bytes returns the serialised document.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
