// Package train implements the batch trainer of spec.md §4.6 (component
// C6): drive the extractor and insert every emitted n-gram into the
// model's filter.
package train

import (
	"github.com/salad-go/salad/model"
	"github.com/salad-go/salad/ngram"
)

// visit dispatches to the model's mode-appropriate extractor, passing
// every emitted n-gram to insert.
func visit(m *model.Model, sample []byte, insert func([]byte)) {
	switch m.Mode() {
	case model.ModeBit:
		ngram.ExtractBits(sample, m.N(), insert)
	case model.ModeToken:
		ngram.ExtractTokens(sample, m.N(), m.Delimiter(), insert)
	default:
		ngram.ExtractBytes(sample, m.N(), insert)
	}
}

// One trains m on a single sample: every n-gram extracted in m's mode is
// inserted into m's filter. Repeated calls on the same sample are
// idempotent (spec.md §8 Invariant 1, Bloom insertion is idempotent by
// construction).
func One(m *model.Model, sample []byte) {
	f := m.Filter()
	visit(m, sample, f.Insert)
	m.MarkFrozen()
}

// Train drives the extractor+insert pipeline over a batch of samples, in
// order (ports original_source/src/salad_train.c). It has no failure mode
// beyond allocation in intermediate buffers (spec.md §4.6).
func Train(m *model.Model, samples [][]byte) {
	for _, s := range samples {
		One(m, s)
	}
}
