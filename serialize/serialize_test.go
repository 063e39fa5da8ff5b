package serialize_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/salad-go/salad/model"
	"github.com/salad-go/salad/serialize"
	"github.com/salad-go/salad/train"
)

func trainedModel(t *testing.T, n int, binary bool, delim string) *model.Model {
	t.Helper()
	m, err := model.New(1<<16, "simple", n, binary, delim)
	require.NoError(t, err)
	train.Train(m, [][]byte{[]byte("the quick brown fox jumps over the lazy dog")})
	return m
}

// S6 (spec.md §8): train, save as text and as archive, reload each, verify
// same popcount, n, binary flag, canonical delimiter, byte-identical filter.
func TestScenarioS6RoundTripTextAndZip(t *testing.T) {
	for _, tc := range []struct {
		name    string
		n       int
		binary  bool
		delim   string
	}{
		{"byte-mode", 3, false, ""},
		{"bit-mode", 8, true, ""},
		{"token-mode", 2, false, " "},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m := trainedModel(t, tc.n, tc.binary, tc.delim)

			var textBuf, zipBuf bytes.Buffer
			require.NoError(t, serialize.Save(m, &textBuf, serialize.FormatText))
			require.NoError(t, serialize.Save(m, &zipBuf, serialize.FormatZip))

			fromText, err := serialize.Load(bytes.NewReader(textBuf.Bytes()))
			require.NoError(t, err)
			fromZip, err := serialize.Load(bytes.NewReader(zipBuf.Bytes()))
			require.NoError(t, err)

			for _, loaded := range []*model.Model{fromText, fromZip} {
				require.Equal(t, m.N(), loaded.N())
				require.Equal(t, m.Binary(), loaded.Binary())
				require.Equal(t, m.Delimiter().String(), loaded.Delimiter().String())
				require.Equal(t, m.Filter().Popcount(), loaded.Filter().Popcount())
				require.True(t, bytes.Equal(m.Filter().Bytes(), loaded.Filter().Bytes()))
				require.False(t, model.SpecsDiffer(m, loaded))
			}
		})
	}
}

func TestInlineRawRoundTrip(t *testing.T) {
	m := trainedModel(t, 3, false, "")

	var buf bytes.Buffer
	require.NoError(t, serialize.Save(m, &buf, serialize.FormatTextInlineRaw))

	loaded, err := serialize.Load(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.False(t, model.SpecsDiffer(m, loaded))
	require.True(t, bytes.Equal(m.Filter().Bytes(), loaded.Filter().Bytes()))
}

func TestHexRoundTrip(t *testing.T) {
	m := trainedModel(t, 3, false, "")

	var buf bytes.Buffer
	require.NoError(t, serialize.Save(m, &buf, serialize.FormatTextHex))

	loaded, err := serialize.Load(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.False(t, model.SpecsDiffer(m, loaded))
	require.True(t, bytes.Equal(m.Filter().Bytes(), loaded.Filter().Bytes()))
}

func TestLoadTextTruncatedPayloadFails(t *testing.T) {
	m := trainedModel(t, 3, false, "")

	var buf bytes.Buffer
	require.NoError(t, serialize.Save(m, &buf, serialize.FormatText))

	truncated := buf.Bytes()[:len(buf.Bytes())-10]
	_, err := serialize.Load(bytes.NewReader(truncated))
	require.Error(t, err)
}

func TestLoadRejectsUnknownHashOrdinal(t *testing.T) {
	m := trainedModel(t, 3, false, "")

	var buf bytes.Buffer
	require.NoError(t, serialize.Save(m, &buf, serialize.FormatText))
	corrupted := buf.Bytes()

	idx := bytes.Index(corrupted, []byte("bloom_filter = "))
	require.GreaterOrEqual(t, idx, 0)
	lineEnd := bytes.IndexByte(corrupted[idx:], '\n') + idx
	// First byte after the newline is the hash-count byte; the byte right
	// after it is the first hash ordinal. Stomp it to an out-of-range value.
	ordinalOffset := lineEnd + 2
	corrupted[ordinalOffset] = 0xFF

	_, err := serialize.Load(bytes.NewReader(corrupted))
	require.Error(t, err)
}
