package readers

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/flywave/go-jvxl"
	"github.com/flywave/go-jvxl/internal/logging"
)

// SniffSize is how much of a file Sniff looks at.
const SniffSize = 16 * 1024

// Sniff guesses the format of a file from its first bytes.
func Sniff(head []byte) (Kind, error) {
	if len(head) > SniffSize {
		head = head[:SniffSize]
	}
	if bytes.HasPrefix(head, []byte(PmeshMagic)) && len(head) >= pmeshHeaderSize && !isText(head[:pmeshHeaderSize]) {
		return KindPmeshBinary, nil
	}
	if len(head) >= mrcHeaderSize && bytes.Equal(head[208:211], []byte("MAP")) {
		return KindMRC, nil
	}
	text := string(head)
	if strings.HasPrefix(text, jvxl.Signature) {
		return KindJvxl, nil
	}
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}
	if isPmesh(lines) {
		return KindPmesh, nil
	}
	if k, ok := sniffCube(lines); ok {
		return k, nil
	}
	if len(head) >= mrcHeaderSize {
		var r MRCReader
		r.r = bytes.NewReader(head)
		if _, err := r.ReadHeader(); err == nil {
			return KindMRC, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown signature", ErrFormat)
}

func isText(b []byte) bool {
	for _, c := range b {
		if c < 9 || (c > 13 && c < 32) || c > 126 {
			return false
		}
	}
	return true
}

// isPmesh looks for a lone vertex count followed by a vertex line.
func isPmesh(lines []string) bool {
	var body []string
	for _, l := range lines {
		t := strings.TrimSpace(l)
		if strings.HasPrefix(t, "#JmolPmesh") {
			return true
		}
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		body = append(body, t)
		if len(body) == 2 {
			break
		}
	}
	if len(body) < 2 {
		return false
	}
	f := strings.Fields(body[0])
	if len(f) != 1 {
		return false
	}
	if _, err := strconv.Atoi(f[0]); err != nil {
		return false
	}
	return numericFields(body[1]) == 3
}

// sniffCube checks the atom count and axis lines after two titles. A
// negative surface count marks embedded JVXL surfaces.
func sniffCube(lines []string) (Kind, bool) {
	if len(lines) < 6 {
		return 0, false
	}
	f := strings.Fields(lines[2])
	if len(f) < 4 || numericFields(lines[2]) < 4 {
		return 0, false
	}
	n, err := strconv.Atoi(f[0])
	if err != nil {
		return 0, false
	}
	for i := 3; i < 6; i++ {
		if numericFields(lines[i]) < 4 {
			return 0, false
		}
	}
	if n >= 0 {
		return KindCube, true
	}
	at := 6 - n
	if at < len(lines) {
		if g := strings.Fields(lines[at]); len(g) > 0 && strings.HasPrefix(g[0], "-") {
			return KindJvxl, true
		}
	}
	return KindCube, true
}

func numericFields(line string) int {
	n := 0
	for _, tok := range strings.Fields(line) {
		if _, err := strconv.ParseFloat(tok, 64); err != nil {
			break
		}
		n++
	}
	return n
}

// Open reads a grid or mesh file and returns the matching source.
func Open(path string, opts Options) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	kind, err := Sniff(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logging.Logger().Debug("opened source", "path", path, "kind", kind.String(), "bytes", len(data))
	return NewSource(kind, bytes.NewReader(data), opts)
}

// NewSource builds the reader for a file-backed kind.
func NewSource(kind Kind, r io.Reader, opts Options) (Source, error) {
	switch kind {
	case KindCube:
		return NewCubeReader(r, opts), nil
	case KindMRC:
		return NewMRCReader(r, opts), nil
	case KindPmesh:
		return NewPmeshReader(r, opts), nil
	case KindPmeshBinary:
		return NewPmeshBinaryReader(r, opts), nil
	case KindJvxl:
		return NewJvxlSource(r, opts), nil
	}
	return nil, fmt.Errorf("%w: %s sources are not file backed", ErrFormat, kind)
}
