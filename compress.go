package jvxl

import (
	"strconv"
	"strings"
)

const minCompressRun = 4

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// Compress collapses runs of four or more identical characters into
// "c~n " where n counts the repeats after the first c. A literal '~' is
// written as "~~". Whitespace and '~' are never run-compressed.
func Compress(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); {
		c := s[i]
		if c == '~' {
			sb.WriteString("~~")
			i++
			continue
		}
		j := i + 1
		for j < len(s) && s[j] == c {
			j++
		}
		n := j - i
		if n >= minCompressRun && !isSpace(c) {
			sb.WriteByte(c)
			sb.WriteByte('~')
			sb.WriteString(strconv.Itoa(n - 1))
			sb.WriteByte(' ')
		} else {
			for k := 0; k < n; k++ {
				sb.WriteByte(c)
			}
		}
		i = j
	}
	return sb.String()
}

// Uncompress inverts Compress. A '~' followed by neither '~' nor a digit is
// kept as written.
func Uncompress(s string) string {
	if strings.IndexByte(s, '~') < 0 {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) * 2)
	var last byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '~' || i+1 >= len(s) {
			sb.WriteByte(c)
			last = c
			continue
		}
		next := s[i+1]
		if next == '~' {
			sb.WriteByte('~')
			last = '~'
			i++
			continue
		}
		j := i + 1
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j == i+1 {
			sb.WriteByte(c)
			last = c
			continue
		}
		n, _ := strconv.Atoi(s[i+1 : j])
		for k := 0; k < n; k++ {
			sb.WriteByte(last)
		}
		if j < len(s) && s[j] == ' ' {
			j++
		}
		i = j - 1
	}
	return sb.String()
}
