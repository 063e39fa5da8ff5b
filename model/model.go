// Package model implements the parameter/filter bundle of spec.md §3/§4.5
// (component C5).
package model

import (
	"github.com/salad-go/salad/bloom"
	"github.com/salad-go/salad/hash"
	"github.com/salad-go/salad/ngram"
	"github.com/salad-go/salad/saladerr"
)

// Model bundles the n-gram length, binary flag, delimiter set, and Bloom
// filter that together define one reproducible scoring configuration
// (spec.md §3 "Model"). Setters are permitted only before training begins;
// after the first Insert the filter is considered frozen with respect to
// parameters (spec.md §4.5).
type Model struct {
	n         int
	binary    bool
	delimiter *ngram.Delimiters
	filter    *bloom.Filter
	frozen    bool
}

// maxBitWord is the implementation-defined ceiling for binary n-gram
// length: the Go accumulator in ngram.ExtractBits is a uint64, so bit
// n-grams are capped at 64 bits, well above spec.md §4.5's mandated
// floor of 32.
const maxBitWord = 64

// New constructs a model. filterBitsize and hashSetName configure the
// Bloom filter (spec.md §3's "filter is a Bloom filter with fixed bitsize
// and hashes"); n, binary, and delimiterString are the n-gram parameters.
// An empty delimiterString selects non-token (byte or bit) mode.
func New(filterBitsize uint64, hashSetName string, n int, binary bool, delimiterString string) (*Model, error) {
	if n <= 0 {
		return nil, saladerr.Newf(saladerr.KindParam, "n must be >= 1")
	}
	if binary && n > maxBitWord {
		return nil, saladerr.Newf(saladerr.KindParam, "binary n-gram length %d exceeds word width %d", n, maxBitWord)
	}

	ids, err := hash.SetByName(hashSetName)
	if err != nil {
		return nil, err
	}

	f, err := bloom.Create(filterBitsize)
	if err != nil {
		return nil, err
	}
	if err := f.BindHashes(ids); err != nil {
		return nil, err
	}

	return &Model{
		n:         n,
		binary:    binary,
		delimiter: ngram.NewDelimiters(delimiterString),
		filter:    f,
	}, nil
}

// FromParts assembles a Model from an already-constructed filter and
// delimiter set, used by the serializer when reloading a model from a
// stream.
func FromParts(n int, binary bool, delimiter *ngram.Delimiters, filter *bloom.Filter) *Model {
	return &Model{n: n, binary: binary, delimiter: delimiter, filter: filter}
}

func (m *Model) N() int                      { return m.n }
func (m *Model) Binary() bool                { return m.binary }
func (m *Model) Delimiter() *ngram.Delimiters { return m.delimiter }
func (m *Model) Filter() *bloom.Filter       { return m.filter }
func (m *Model) Frozen() bool                { return m.frozen }

// MarkFrozen freezes the model's parameters; called by the trainer on the
// first insert (spec.md §4.5).
func (m *Model) MarkFrozen() { m.frozen = true }

// SetN changes the n-gram length. Only permitted before training begins.
func (m *Model) SetN(n int) error {
	if m.frozen {
		return saladerr.Newf(saladerr.KindParam, "cannot change n after training has begun")
	}
	if n <= 0 {
		return saladerr.Newf(saladerr.KindParam, "n must be >= 1")
	}
	if m.binary && n > maxBitWord {
		return saladerr.Newf(saladerr.KindParam, "binary n-gram length %d exceeds word width %d", n, maxBitWord)
	}
	m.n = n
	return nil
}

// SetBinary toggles bit-level extraction. Only permitted before training
// begins.
func (m *Model) SetBinary(binary bool) error {
	if m.frozen {
		return saladerr.Newf(saladerr.KindParam, "cannot change binary flag after training has begun")
	}
	if binary && m.n > maxBitWord {
		return saladerr.Newf(saladerr.KindParam, "binary n-gram length %d exceeds word width %d", m.n, maxBitWord)
	}
	m.binary = binary
	return nil
}

// SetDelimiterString replaces the delimiter set. Only permitted before
// training begins.
func (m *Model) SetDelimiterString(s string) error {
	if m.frozen {
		return saladerr.Newf(saladerr.KindParam, "cannot change delimiter after training has begun")
	}
	m.delimiter = ngram.NewDelimiters(s)
	return nil
}

// Mode reports which of the three extraction modalities this model uses.
type Mode int

const (
	ModeByte Mode = iota
	ModeBit
	ModeToken
)

// Mode returns the model's extraction modality, per spec.md §3: binary
// selects bit mode; otherwise a non-empty delimiter selects token mode,
// else byte mode.
func (m *Model) Mode() Mode {
	switch {
	case m.binary:
		return ModeBit
	case !m.delimiter.Empty():
		return ModeToken
	default:
		return ModeByte
	}
}

// SpecsDiffer returns true iff any of n, binary, canonical delimiter byte
// table, filter bitsize, or hash sequence differ between a and b (spec.md
// §4.5). Two models are "specification-equivalent" iff SpecsDiffer is
// false.
func SpecsDiffer(a, b *Model) bool {
	if a.n != b.n {
		return true
	}
	if a.binary != b.binary {
		return true
	}
	if !a.delimiter.Equal(b.delimiter) {
		return true
	}
	if a.filter.Bitsize() != b.filter.Bitsize() {
		return true
	}
	ah, bh := a.filter.Hashes(), b.filter.Hashes()
	if len(ah) != len(bh) {
		return true
	}
	for i := range ah {
		if ah[i] != bh[i] {
			return true
		}
	}
	return false
}

// Saturation returns the bound filter's popcount / bitsize (GLOSSARY).
func (m *Model) Saturation() float64 { return m.filter.Saturation() }
