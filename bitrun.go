package jvxl

import (
	"fmt"
	"strconv"
	"strings"
)

const runsPerLine = 20

// EncodeBitRuns returns alternating run lengths over bits. The first run
// counts clear bits and is zero when bits starts set.
func EncodeBitRuns(bits []bool) []int {
	if len(bits) == 0 {
		return nil
	}
	var runs []int
	state := false
	n := 0
	for _, b := range bits {
		if b != state {
			runs = append(runs, n)
			state = b
			n = 0
		}
		n++
	}
	return append(runs, n)
}

// DecodeBitRuns expands runs into n bits. A negative entry -k repeats the
// previous count k times. Decoding stops at n; missing bits are clear.
func DecodeBitRuns(runs []int, n int) []bool {
	bits := make([]bool, n)
	state := false
	pos := 0
	prev := 0
	set := func(count int) {
		end := pos + count
		if end > n {
			end = n
		}
		if state {
			for i := pos; i < end; i++ {
				bits[i] = true
			}
		}
		pos = end
		state = !state
	}
	for _, r := range runs {
		if pos >= n {
			break
		}
		if r < 0 {
			for k := 0; k < -r && pos < n; k++ {
				set(prev)
			}
			continue
		}
		set(r)
		prev = r
	}
	return bits
}

// FormatRuns writes runs space separated, perLine to a line.
func FormatRuns(runs []int, perLine int) string {
	if perLine <= 0 {
		perLine = runsPerLine
	}
	var sb strings.Builder
	for i, r := range runs {
		if i > 0 {
			if i%perLine == 0 {
				sb.WriteByte('\n')
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(strconv.Itoa(r))
	}
	return sb.String()
}

func ParseRuns(s string) ([]int, error) {
	f := strings.Fields(s)
	runs := make([]int, 0, len(f))
	for _, tok := range f {
		r, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("%w: bit run %q", ErrDecode, tok)
		}
		runs = append(runs, r)
	}
	return runs, nil
}

// countBits counts the set bits, used for contour polygon counts.
func countBits(bits []bool) int {
	n := 0
	for _, b := range bits {
		if b {
			n++
		}
	}
	return n
}
