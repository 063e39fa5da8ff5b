// Package inspect implements the per-sample novelty accumulator of
// spec.md §4.8 (component C8): for each sample, count total emissions,
// emissions new to a growing or fixed reference filter, and emissions
// unique within the sample itself.
package inspect

import (
	"github.com/salad-go/salad/bloom"
	"github.com/salad-go/salad/model"
	"github.com/salad-go/salad/ngram"
)

// Counters is the per-sample triple of spec.md §4.8: New, Uniq, Total.
type Counters struct {
	New, Uniq, Total int
}

// Accumulator traverses samples against a reference filter that is either
// pre-trained and immutable (non-updating) or empty and grown over the
// stream (updating), using a second, auxiliary filter cleared at the start
// of every sample to track within-sample uniqueness.
type Accumulator struct {
	m         *model.Model
	reference *bloom.Filter
	aux       *bloom.Filter
	updating  bool
}

// NewUpdating seeds the reference filter empty and grows it over the
// input stream; New counts first occurrences across the whole stream.
func NewUpdating(m *model.Model) (*Accumulator, error) {
	ref, err := bloom.Create(m.Filter().Bitsize())
	if err != nil {
		return nil, err
	}
	if err := ref.BindHashes(m.Filter().Hashes()); err != nil {
		return nil, err
	}
	aux, err := newAuxFilter(m)
	if err != nil {
		return nil, err
	}
	return &Accumulator{m: m, reference: ref, aux: aux, updating: true}, nil
}

// NewNonUpdating uses an immutable pre-trained model as the reference;
// New counts n-grams absent from that model. The passed model is never
// mutated.
func NewNonUpdating(m *model.Model, reference *model.Model) (*Accumulator, error) {
	aux, err := newAuxFilter(m)
	if err != nil {
		return nil, err
	}
	return &Accumulator{m: m, reference: reference.Filter(), aux: aux, updating: false}, nil
}

func newAuxFilter(m *model.Model) (*bloom.Filter, error) {
	aux, err := bloom.Create(m.Filter().Bitsize())
	if err != nil {
		return nil, err
	}
	if err := aux.BindHashes(m.Filter().Hashes()); err != nil {
		return nil, err
	}
	return aux, nil
}

func (a *Accumulator) extract(sample []byte, visit ngram.Visitor) {
	switch a.m.Mode() {
	case model.ModeBit:
		ngram.ExtractBits(sample, a.m.N(), visit)
	case model.ModeToken:
		ngram.ExtractTokens(sample, a.m.N(), a.m.Delimiter(), visit)
	default:
		ngram.ExtractBytes(sample, a.m.N(), visit)
	}
}

// Sample processes one sample and returns its Counters. The auxiliary
// filter is cleared at the start of every call; in updating mode, the
// reference filter grows by every n-gram seen.
func (a *Accumulator) Sample(sample []byte) Counters {
	a.aux.Clear()

	var c Counters
	a.extract(sample, func(g []byte) {
		c.Total++
		if !a.reference.Contains(g) {
			c.New++
		}
		if !a.aux.Contains(g) {
			c.Uniq++
		}
		if a.updating {
			a.reference.Insert(g)
		}
		a.aux.Insert(g)
	})
	return c
}

// Reference returns the accumulator's reference filter (growing in
// updating mode, fixed in non-updating mode).
func (a *Accumulator) Reference() *bloom.Filter { return a.reference }
