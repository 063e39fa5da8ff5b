// Package score implements the one-class anomaly scorer and the two-class
// discrimination scorer of spec.md §4.7 (component C7).
package score

import (
	"math"

	"github.com/salad-go/salad/model"
	"github.com/salad-go/salad/ngram"
	"github.com/salad-go/salad/saladerr"
)

func extract(m *model.Model, sample []byte, visit ngram.Visitor) {
	switch m.Mode() {
	case model.ModeBit:
		ngram.ExtractBits(sample, m.N(), visit)
	case model.ModeToken:
		ngram.ExtractTokens(sample, m.N(), m.Delimiter(), visit)
	default:
		ngram.ExtractBytes(sample, m.N(), visit)
	}
}

// OneClass computes the raw one-class anomaly score of spec.md §4.7:
// (N-K)/N where K is the number of emitted n-grams present in m's filter
// and N is the total emitted. Returns math.NaN() when N == 0.
func OneClass(m *model.Model, sample []byte) float64 {
	f := m.Filter()
	var n, k int
	extract(m, sample, func(g []byte) {
		n++
		if f.Contains(g) {
			k++
		}
	})
	if n == 0 {
		return math.NaN()
	}
	return float64(n-k) / float64(n)
}

// TwoClass computes the raw two-class discrimination score of spec.md
// §4.7: (K_B-K_G)/N across filters good and bad, which must share specs
// (SpecMismatch otherwise). N-gram extraction uses good's parameters
// (identical to bad's, since specs match by construction). Returns
// math.NaN() when N == 0.
func TwoClass(good, bad *model.Model, sample []byte) (float64, error) {
	if model.SpecsDiffer(good, bad) {
		return 0, saladerr.SpecMismatch
	}
	gf, bf := good.Filter(), bad.Filter()

	var n, kg, kb int
	extract(good, sample, func(g []byte) {
		n++
		if gf.Contains(g) {
			kg++
		}
		if bf.Contains(g) {
			kb++
		}
	})
	if n == 0 {
		return math.NaN(), nil
	}
	return float64(kb-kg) / float64(n), nil
}

// Exported applies the driver's sign convention of spec.md §4.7: the
// reported value is 1-score for both one-class and two-class scoring
// (for one-class, higher = more normal; for two-class, 1 means
// indifference, above 1 favours the good class and below 1 the bad one).
// NaN passes through unchanged.
func Exported(raw float64) float64 {
	if math.IsNaN(raw) {
		return raw
	}
	return 1 - raw
}
