package hash_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/salad-go/salad/hash"
)

func TestSimpleAndMurmurSets(t *testing.T) {
	simple, err := hash.SetByName("simple")
	require.NoError(t, err)
	require.Equal(t, []hash.ID{hash.Sax, hash.Sdbm, hash.Djb}, simple)

	murmur, err := hash.SetByName("murmur")
	require.NoError(t, err)
	require.Equal(t, []hash.ID{hash.Murmur0, hash.Murmur1, hash.Murmur2}, murmur)

	_, err = hash.SetByName("nonsense")
	require.Error(t, err)
}

func TestParseRoundTripsWithString(t *testing.T) {
	for _, id := range []hash.ID{hash.Sax, hash.Sdbm, hash.Djb, hash.Murmur0, hash.Murmur1, hash.Murmur2} {
		parsed, err := hash.Parse(id.String())
		require.NoError(t, err)
		require.Equal(t, id, parsed)
	}
}

func TestParseAcceptsBernsteinAlias(t *testing.T) {
	id, err := hash.Parse("bernstein")
	require.NoError(t, err)
	require.Equal(t, hash.Djb, id)
}

func TestParseUnknownNameFails(t *testing.T) {
	_, err := hash.Parse("not-a-hash")
	require.Error(t, err)
}

func TestFromOrdinalRoundTrip(t *testing.T) {
	for ord := uint8(0); ord < 6; ord++ {
		id, err := hash.FromOrdinal(ord)
		require.NoError(t, err)
		require.Equal(t, hash.ID(ord), id)
	}
	_, err := hash.FromOrdinal(200)
	require.Error(t, err)
}

func TestResolveProducesDeterministicFunc(t *testing.T) {
	for _, id := range []hash.ID{hash.Sax, hash.Sdbm, hash.Djb, hash.Murmur0, hash.Murmur1, hash.Murmur2} {
		fn, err := hash.Resolve(id)
		require.NoError(t, err)
		require.Equal(t, fn([]byte("abc")), fn([]byte("abc")))
	}
}

func TestMurmur2EmptyInputIsDeterministicPerSeed(t *testing.T) {
	require.Equal(t, hash.Murmur2_32(nil, 0xb5c0fbcf), hash.Murmur2_32([]byte{}, 0xb5c0fbcf))
	require.NotEqual(t, hash.Murmur2_32(nil, 0xb5c0fbcf), hash.Murmur2_32(nil, 0x428a2f98))
}

func TestMurmur2DiffersBySeed(t *testing.T) {
	a := hash.Murmur2_32([]byte("hello"), 0x428a2f98)
	b := hash.Murmur2_32([]byte("hello"), 0x71374491)
	require.NotEqual(t, a, b)
}

func TestSimpleHashesAreDeterministicAndDiffer(t *testing.T) {
	require.Equal(t, hash.Sax32([]byte("hello")), hash.Sax32([]byte("hello")))
	require.NotEqual(t, hash.Sax32([]byte("hello")), hash.Sdbm32([]byte("hello")))
	require.NotEqual(t, hash.Djb32([]byte("hello")), hash.Sdbm32([]byte("hello")))
}
