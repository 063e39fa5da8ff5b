package bloom_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/salad-go/salad/bloom"
	"github.com/salad-go/salad/hash"
)

func newSimple(t *testing.T, bitsize uint64) *bloom.Filter {
	t.Helper()
	f, err := bloom.Create(bitsize)
	require.NoError(t, err)
	require.NoError(t, f.BindHashes(hash.Simple))
	return f
}

func TestInsertAndContains(t *testing.T) {
	f := newSimple(t, 1<<16)

	require.False(t, f.Contains([]byte("abc")))
	f.Insert([]byte("abc"))
	require.True(t, f.Contains([]byte("abc")))
}

func TestIdempotentTraining(t *testing.T) {
	f1 := newSimple(t, 1<<16)
	f2 := newSimple(t, 1<<16)

	f1.Insert([]byte("abcabc"))
	f2.Insert([]byte("abcabc"))
	f2.Insert([]byte("abcabc"))

	require.True(t, bloom.Equal(f1, f2))
}

func TestMonotoneSaturation(t *testing.T) {
	f := newSimple(t, 1<<16)
	before := f.Popcount()
	f.Insert([]byte("hello"))
	after := f.Popcount()
	require.GreaterOrEqual(t, after, before)
}

func TestNoFalseNegatives(t *testing.T) {
	f := newSimple(t, 1<<16)
	samples := [][]byte{[]byte("a"), []byte("ab"), []byte("xyz123")}
	for _, s := range samples {
		f.Insert(s)
	}
	for _, s := range samples {
		require.True(t, f.Contains(s))
	}
}

func TestClear(t *testing.T) {
	f := newSimple(t, 1<<12)
	f.Insert([]byte("seed"))
	require.Greater(t, f.Popcount(), uint64(0))
	f.Clear()
	require.Equal(t, uint64(0), f.Popcount())
}

func TestCompareTotalOrder(t *testing.T) {
	a := newSimple(t, 1<<12)
	b := newSimple(t, 1<<12)
	require.True(t, bloom.Equal(a, b))

	a.Insert([]byte("x"))
	require.False(t, bloom.Equal(a, b))

	c := newSimple(t, 1<<13)
	require.NotEqual(t, 0, bloom.Compare(a, c))
}

func TestBindHashesRejectsEmpty(t *testing.T) {
	f, err := bloom.Create(8)
	require.NoError(t, err)
	require.Error(t, f.BindHashes(nil))
}

func TestCreateRejectsZeroBitsize(t *testing.T) {
	_, err := bloom.Create(0)
	require.Error(t, err)
}

// S3 from spec.md §8: bit-mode single-byte training produces an exact
// popcount of 3 (one bit per hash, no collisions expected).
func TestScenarioS3Popcount(t *testing.T) {
	f := newSimple(t, 1<<16)
	f.Insert([]byte{0xAA})
	require.Equal(t, uint64(3), f.Popcount())
}
