package jvxl

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompress(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"short runs", "aaabbbc", "aaabbbc"},
		{"run of four", "aaaa", "a~3 "},
		{"long run", "xxxxxxxxxx yyyy", "x~9  y~3 "},
		{"tilde", "~", "~~"},
		{"tilde run", "a~~~~b", "a~~~~~~~~b"},
		{"spaces kept", "      ", "      "},
		{"digits after run", "]]]]]12", "]~4 12"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Compress(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.in, Uncompress(got))
		})
	}
}

func TestUncompressLiteralTilde(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "a~", Uncompress("a~"))
	assert.Equal(t, "a~b", Uncompress("a~b"))
	assert.Equal(t, "aaaab", Uncompress("a~3b"))
}

func TestCompressRoundTripRandom(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(1))
	alphabet := "ab~ #!9\n"
	for i := 0; i < 200; i++ {
		var sb strings.Builder
		for n := rng.Intn(80); n > 0; n-- {
			c := alphabet[rng.Intn(len(alphabet))]
			for k := rng.Intn(7); k >= 0; k-- {
				sb.WriteByte(c)
			}
		}
		s := sb.String()
		assert.Equal(t, s, Uncompress(Compress(s)))
	}
}

func TestCompressIdentityWithoutRuns(t *testing.T) {
	t.Parallel()
	s := "abcabcaabbcc#$%&'()"
	assert.Equal(t, s, Compress(s))
}
