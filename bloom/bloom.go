// Package bloom implements the fixed-bit-size probabilistic set of
// spec.md §3/§4.2 (component C2).
//
// Adapted from the teacher, github.com/bits-and-blooms/bloom/v3
// (bloom.go, bitset.go): its New/Add/Test/ClearAll/Equal operations appear
// here as Create/Insert/Contains/Clear/Equal. Mutators are not chainable,
// there is no WriteTo/ReadFrom (the serialize package reads and writes
// filters through Bytes and SetRaw), and the backing store is a plain
// byte array rather than atomic int64 words, see DESIGN.md for why.
package bloom

import (
	"encoding/binary"
	"math/bits"

	"github.com/salad-go/salad/hash"
	"github.com/salad-go/salad/saladerr"
)

// Filter is a fixed-bit-size Bloom filter bound to an ordered, non-empty
// sequence of named hash functions (spec.md §3).
type Filter struct {
	bitsize uint64
	data    []byte // len(data) == bytesFor(bitsize); trailing bits beyond bitsize are never inspected
	ids     []hash.ID
	funcs   []hash.Func
}

func bytesFor(bitsize uint64) uint64 {
	return (bitsize + 7) / 8
}

// Create returns a filter of the given bit size with zero 1-bits and no
// hashes bound (spec.md §4.2's `create(bitsize)`). Binding hashes is a
// separate step, BindHashes, to keep deserialization order explicit.
func Create(bitsize uint64) (*Filter, error) {
	if bitsize == 0 {
		return nil, saladerr.Newf(saladerr.KindParam, "bitsize must be >= 1")
	}
	n := bytesFor(bitsize)
	data := make([]byte, n)
	if data == nil && n > 0 {
		return nil, saladerr.Alloc
	}
	return &Filter{bitsize: bitsize, data: data}, nil
}

// BindHashes replaces the hash sequence bound to the filter.
func (f *Filter) BindHashes(ids []hash.ID) error {
	if len(ids) == 0 {
		return saladerr.Newf(saladerr.KindParam, "hash sequence must be non-empty")
	}
	funcs := make([]hash.Func, len(ids))
	for i, id := range ids {
		fn, err := hash.Resolve(id)
		if err != nil {
			return err
		}
		funcs[i] = fn
	}
	f.ids = append([]hash.ID(nil), ids...)
	f.funcs = funcs
	return nil
}

// Bitsize returns the filter's fixed bit size.
func (f *Filter) Bitsize() uint64 { return f.bitsize }

// Hashes returns the bound hash-identifier sequence.
func (f *Filter) Hashes() []hash.ID { return append([]hash.ID(nil), f.ids...) }

// Bytes returns the raw backing byte array (read-only view; callers must
// not mutate it; use Insert/Clear instead).
func (f *Filter) Bytes() []byte { return f.data }

func (f *Filter) bitIndex(data []byte, fn hash.Func) uint64 {
	return uint64(fn(data)) % f.bitsize
}

func setBit(a []byte, i uint64) {
	a[i/8] |= 1 << (i % 8)
}

func getBit(a []byte, i uint64) bool {
	return a[i/8]&(1<<(i%8)) != 0
}

// Insert sets, for each bound hash h, the bit h(data) mod bitsize.
func (f *Filter) Insert(data []byte) {
	for _, fn := range f.funcs {
		setBit(f.data, f.bitIndex(data, fn))
	}
}

// Contains reports whether, for every bound hash h, bit h(data) mod bitsize
// is set.
func (f *Filter) Contains(data []byte) bool {
	for _, fn := range f.funcs {
		if !getBit(f.data, f.bitIndex(data, fn)) {
			return false
		}
	}
	return true
}

// Clear zeroes all bits.
func (f *Filter) Clear() {
	for i := range f.data {
		f.data[i] = 0
	}
}

// Popcount returns the exact number of 1-bits across the filter's byte
// array, accelerated via math/bits per 8-byte block (spec.md §4.2's
// "use hardware popcnt where available", mirroring the teacher's own
// block-wise approach in bitset.go).
func (f *Filter) Popcount() uint64 {
	var count uint64
	data := f.data
	for len(data) >= 8 {
		count += uint64(bits.OnesCount64(binary.LittleEndian.Uint64(data)))
		data = data[8:]
	}
	for _, b := range data {
		count += uint64(bits.OnesCount8(b))
	}
	return count
}

// Saturation returns popcount / bitsize (GLOSSARY).
func (f *Filter) Saturation() float64 {
	return float64(f.Popcount()) / float64(f.bitsize)
}

// Compare implements the total order of spec.md §4.2: first by bitsize,
// then by byte length, then lexicographic over the byte array.
func Compare(a, b *Filter) int {
	if a.bitsize != b.bitsize {
		if a.bitsize < b.bitsize {
			return -1
		}
		return 1
	}
	if len(a.data) != len(b.data) {
		if len(a.data) < len(b.data) {
			return -1
		}
		return 1
	}
	for i := range a.data {
		if a.data[i] != b.data[i] {
			if a.data[i] < b.data[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Equal reports whether a and b compare equal (spec.md §4.2).
func Equal(a, b *Filter) bool { return Compare(a, b) == 0 }

// Copy returns a deep copy of f, including its bound hash sequence.
func (f *Filter) Copy() *Filter {
	c := &Filter{
		bitsize: f.bitsize,
		data:    append([]byte(nil), f.data...),
		ids:     append([]hash.ID(nil), f.ids...),
		funcs:   append([]hash.Func(nil), f.funcs...),
	}
	return c
}

// SetRaw replaces the filter's backing bytes wholesale. Used by the
// serializer when reconstructing a filter from a stream; len(data) must
// equal bytesFor(bitsize).
func (f *Filter) SetRaw(data []byte) error {
	want := bytesFor(f.bitsize)
	if uint64(len(data)) != want {
		return saladerr.Format(saladerr.SubTruncatedPayload, "bloom payload size mismatch")
	}
	f.data = append([]byte(nil), data...)
	return nil
}
