package readers

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// tokenScanner reads whitespace separated scalars across lines. A token
// "n*v" stands for n copies of v.
type tokenScanner struct {
	sc       *bufio.Scanner
	fields   []string
	repeat   int
	repeatV  float64
	comments bool
	eof      bool
	trunc    truncation
}

func newTokenScanner(r io.Reader, policy RecoveryPolicy) *tokenScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 256*1024*1024)
	return &tokenScanner{sc: sc, trunc: truncation{policy: policy}}
}

// NextLine returns the next raw line and drops any unread tokens.
func (t *tokenScanner) NextLine() (string, error) {
	t.fields = nil
	t.repeat = 0
	for {
		if !t.sc.Scan() {
			if err := t.sc.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		line := strings.TrimSuffix(t.sc.Text(), "\r")
		if t.comments && strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		return line, nil
	}
}

func (t *tokenScanner) token() (string, error) {
	for len(t.fields) == 0 {
		line, err := t.NextLine()
		if err != nil {
			return "", err
		}
		t.fields = strings.Fields(line)
	}
	tok := t.fields[0]
	t.fields = t.fields[1:]
	return tok, nil
}

// float returns the next scalar. Once input has ended the lenient policy
// yields zeros and sets the sticky flag.
func (t *tokenScanner) float() (float64, error) {
	if t.repeat > 0 {
		t.repeat--
		return t.repeatV, nil
	}
	if t.eof {
		return 0, nil
	}
	tok, err := t.token()
	if err != nil {
		t.eof = true
		if ferr := t.trunc.fail("scalar data", err); ferr != nil {
			return 0, ferr
		}
		return 0, nil
	}
	if i := strings.IndexByte(tok, '*'); i > 0 {
		n, err := strconv.Atoi(tok[:i])
		if err != nil || n < 1 {
			return 0, fmt.Errorf("%w: run token %q", ErrFormat, tok)
		}
		v, err := strconv.ParseFloat(tok[i+1:], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: run token %q", ErrFormat, tok)
		}
		t.repeat, t.repeatV = n-1, v
		return v, nil
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: scalar %q", ErrFormat, tok)
	}
	return v, nil
}

func (t *tokenScanner) integer() (int, error) {
	tok, err := t.token()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("%w: integer %q", ErrFormat, tok)
	}
	return n, nil
}
