package train_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/salad-go/salad/model"
	"github.com/salad-go/salad/train"
)

func newModel(t *testing.T, n int, binary bool, delim string) *model.Model {
	t.Helper()
	m, err := model.New(1<<16, "simple", n, binary, delim)
	require.NoError(t, err)
	return m
}

// Invariant 1 (spec.md §8): idempotence of training.
func TestTrainIsIdempotent(t *testing.T) {
	a := newModel(t, 3, false, "")
	b := newModel(t, 3, false, "")

	train.Train(a, [][]byte{[]byte("abcabc")})
	train.Train(a, [][]byte{[]byte("abcabc")})

	train.Train(b, [][]byte{[]byte("abcabc")})

	require.Equal(t, b.Filter().Bytes(), a.Filter().Bytes())
}

// Invariant 2 (spec.md §8): monotone saturation.
func TestTrainNeverDecreasesPopcount(t *testing.T) {
	m := newModel(t, 3, false, "")
	before := m.Filter().Popcount()

	train.One(m, []byte("the quick brown fox"))
	afterFirst := m.Filter().Popcount()
	require.GreaterOrEqual(t, afterFirst, before)

	train.One(m, []byte("jumps over the lazy dog"))
	afterSecond := m.Filter().Popcount()
	require.GreaterOrEqual(t, afterSecond, afterFirst)
}

// Invariant 3 (spec.md §8): no false negatives.
func TestTrainedNgramsAreMembers(t *testing.T) {
	m := newModel(t, 3, false, "")
	train.One(m, []byte("abcabc"))

	for _, g := range [][]byte{[]byte("abc"), []byte("bca"), []byte("cab")} {
		require.True(t, m.Filter().Contains(g))
	}
}

// S1 (spec.md §8): byte mode n=3, trained on "abcabc", invariant-formula
// emission count is 4 (max(0, 6-3+1)), of which 3 are distinct; popcount
// must stay within the distinct n-gram count times the number of simple
// hashes (3), so <= 9.
func TestScenarioS1Popcount(t *testing.T) {
	m := newModel(t, 3, false, "")
	train.One(m, []byte("abcabc"))
	require.LessOrEqual(t, m.Filter().Popcount(), uint64(9))
}

func TestTrainMarksModelFrozen(t *testing.T) {
	m := newModel(t, 3, false, "")
	require.False(t, m.Frozen())
	train.One(m, []byte("abc"))
	require.True(t, m.Frozen())
}
