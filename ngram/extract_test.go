package ngram_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/salad-go/salad/ngram"
)

func collect(fn func(v ngram.Visitor)) []string {
	var out []string
	fn(func(n []byte) { out = append(out, string(n)) })
	return out
}

// S1 (spec.md §8): byte mode, n=3, "abcabc". The invariant formula
// (max(0, len-n+1) = 4) is authoritative over the scenario's own narrative
// enumeration, which double-counts, see DESIGN.md.
func TestScenarioS1ByteMode(t *testing.T) {
	got := collect(func(v ngram.Visitor) { ngram.ExtractBytes([]byte("abcabc"), 3, v) })
	require.Equal(t, []string{"abc", "bca", "cab", "abc"}, got)
}

// S2 (spec.md §8): byte mode, n=3, "abcxyz".
func TestScenarioS2ByteMode(t *testing.T) {
	got := collect(func(v ngram.Visitor) { ngram.ExtractBytes([]byte("abcxyz"), 3, v) })
	require.Equal(t, []string{"abc", "bcx", "cxy", "xyz"}, got)
}

// S3 (spec.md §8): bit mode, n=8, single byte 0xAA -> exactly one emission.
func TestScenarioS3BitMode(t *testing.T) {
	got := collect(func(v ngram.Visitor) { ngram.ExtractBits([]byte{0xAA}, 8, v) })
	require.Len(t, got, 1)
	require.Equal(t, []byte{0xAA}, []byte(got[0]))
}

func TestBitModeEmissionCount(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	for n := 1; n <= 8; n++ {
		var count int
		ngram.ExtractBits(data, n, func([]byte) { count++ })
		want := 8*len(data) - n + 1
		if want < 0 {
			want = 0
		}
		require.Equal(t, want, count, "n=%d", n)
	}
}

// S4 (spec.md §8): token mode, n=2, delim=" ", "the quick brown fox".
func TestScenarioS4TokenMode(t *testing.T) {
	delim := ngram.NewDelimiters(" ")
	got := collect(func(v ngram.Visitor) {
		ngram.ExtractTokens([]byte("the quick brown fox"), 2, delim, v)
	})
	require.Equal(t, []string{"the quick", "quick brown", "brown fox"}, got)
}

func TestTokenModeCollapsesDelimiterRuns(t *testing.T) {
	delim := ngram.NewDelimiters(" ")
	got := collect(func(v ngram.Visitor) {
		ngram.ExtractTokens([]byte("the   quick  brown   fox"), 2, delim, v)
	})
	require.Equal(t, []string{"the quick", "quick brown", "brown fox"}, got)
}

func TestTokenModeFewerThanNTokensEmitsNothing(t *testing.T) {
	delim := ngram.NewDelimiters(" ")
	got := collect(func(v ngram.Visitor) {
		ngram.ExtractTokens([]byte("only-one-token"), 2, delim, v)
	})
	require.Empty(t, got)
}

func TestTokenModeIsDeterministicAcrossRuns(t *testing.T) {
	delim := ngram.NewDelimiters(",; ")
	sample := []byte("a,b; c  d,,e")
	first := collect(func(v ngram.Visitor) { ngram.ExtractTokens(sample, 2, delim, v) })
	second := collect(func(v ngram.Visitor) { ngram.ExtractTokens(sample, 2, delim, v) })
	require.Equal(t, first, second)
}

func TestDelimitersCanonicalStringRoundTrip(t *testing.T) {
	d := ngram.NewDelimiters(" \t%2C") // space, tab, comma (percent-encoded)
	str := d.String()

	d2 := ngram.NewDelimiters(str)
	require.True(t, d.Equal(d2))
}

func TestDelimitersEmptySelectsNonTokenMode(t *testing.T) {
	d := ngram.NewDelimiters("")
	require.True(t, d.Empty())
}

func TestDecodePercentStrayPercentLeftUnchanged(t *testing.T) {
	d := ngram.NewDelimiters("%") // stray percent at end-of-string
	require.True(t, d.IsDelimiter('%'))
}

func TestDecodePercentTrailingSingleHexDigitLeftUnchanged(t *testing.T) {
	d := ngram.NewDelimiters("%2")
	require.True(t, d.IsDelimiter('%'))
	require.True(t, d.IsDelimiter('2'))
}
