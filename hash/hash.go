// Package hash implements the frozen hash-identifier family (spec.md §3, §4.1).
//
// Every function here is pure, deterministic, and processes exactly the
// supplied byte slice (no terminator, no length guessing), matching
// original_source/src/salad/hash.c's `_n`-suffixed variants rather than the
// NUL-terminated ones, since the core never deals in C strings.
package hash

import "github.com/salad-go/salad/saladerr"

// Func is a named byte-string hash function. The identifier is what gets
// serialized (spec.md §4.1); the function itself is resolved through the
// fixed lookup table below, never serialized as a pointer (spec.md §9).
type Func func(data []byte) uint32

// ID is one of the frozen hash identifiers of spec.md §3. The lower-case
// String() form is the on-disk name; the int ordinal is the on-disk byte
// used by the opaque block (spec.md §4.9) and must never be renumbered.
type ID uint8

const (
	Sax ID = iota
	Sdbm
	Djb // a.k.a. bernstein
	Murmur0
	Murmur1
	Murmur2

	numIDs
)

// murmur seeds, taken verbatim from spec.md §3 / original_source's
// hash.c comments ("SHA-256 k[0..2]").
const (
	seedMurmur0 uint32 = 0x428a2f98
	seedMurmur1 uint32 = 0x71374491
	seedMurmur2 uint32 = 0xb5c0fbcf
)

var names = [numIDs]string{
	Sax:     "sax",
	Sdbm:    "sdbm",
	Djb:     "djb",
	Murmur0: "murmur1-0",
	Murmur1: "murmur1-1",
	Murmur2: "murmur1-2",
}

// alias accepted on read for the historical name used by the C tool.
var aliases = map[string]ID{
	"bernstein": Djb,
}

func (id ID) String() string {
	if id < numIDs {
		return names[id]
	}
	return "undefined"
}

// Valid reports whether id is one of the frozen identifiers.
func (id ID) Valid() bool { return id < numIDs }

// Parse resolves the on-disk lower-case name to an ID. An unknown name is a
// read failure per spec.md §4.1 ("An unknown identifier causes a read
// failure").
func Parse(name string) (ID, error) {
	for i, n := range names {
		if n == name {
			return ID(i), nil
		}
	}
	if id, ok := aliases[name]; ok {
		return id, nil
	}
	return 0, saladerr.Format(saladerr.SubUnknownHash, "unknown hash identifier "+name)
}

// FromOrdinal resolves the frozen serialization ordinal (spec.md §4.9's
// "hash count byte ... ordinal in the fixed §3 list").
func FromOrdinal(ordinal uint8) (ID, error) {
	if ID(ordinal) >= numIDs {
		return 0, saladerr.Format(saladerr.SubUnknownHash, "hash ordinal out of range")
	}
	return ID(ordinal), nil
}

// Resolve returns the concrete hash function for id.
func Resolve(id ID) (Func, error) {
	switch id {
	case Sax:
		return Sax32, nil
	case Sdbm:
		return Sdbm32, nil
	case Djb:
		return Djb32, nil
	case Murmur0:
		return func(d []byte) uint32 { return Murmur2_32(d, seedMurmur0) }, nil
	case Murmur1:
		return func(d []byte) uint32 { return Murmur2_32(d, seedMurmur1) }, nil
	case Murmur2:
		return func(d []byte) uint32 { return Murmur2_32(d, seedMurmur2) }, nil
	default:
		return nil, saladerr.Format(saladerr.SubUnknownHash, "unresolvable hash id")
	}
}

// Named hash-function packs (spec.md §3).
var (
	Simple = []ID{Sax, Sdbm, Djb}
	Murmur = []ID{Murmur0, Murmur1, Murmur2}
)

// SetByName resolves "simple" or "murmur" to its ID sequence.
func SetByName(name string) ([]ID, error) {
	switch name {
	case "simple":
		out := make([]ID, len(Simple))
		copy(out, Simple)
		return out, nil
	case "murmur":
		out := make([]ID, len(Murmur))
		copy(out, Murmur)
		return out, nil
	default:
		return nil, saladerr.Newf(saladerr.KindParam, "unknown hash set %q", name)
	}
}

// Sax32 ports original_source/src/salad/hash.c's sax_hash_n.
func Sax32(data []byte) uint32 {
	var h uint32
	for _, c := range data {
		h ^= (h << 5) + (h >> 2) + uint32(c)
	}
	return h
}

// Sdbm32 ports original_source/src/salad/hash.c's sdbm_hash_n.
func Sdbm32(data []byte) uint32 {
	var h uint32
	for _, c := range data {
		h = uint32(c) + (h << 6) + (h << 16) - h
	}
	return h
}

// Djb32 ports original_source/src/salad/hash.c's bernstein_hash_n.
func Djb32(data []byte) uint32 {
	var h uint32
	for _, c := range data {
		h = 33*h + uint32(c)
	}
	return h
}

// Murmur2_32 is Austin Appleby's public-domain MurmurHash2 (32-bit), the
// algorithm original_source/lib/util/include/util/murmur.h declares
// (`MurmurHash2`). Reproduced directly per DESIGN.md: no pack library
// implements Murmur2 (the ecosystem's murmur3 packages implement a
// different, incompatible algorithm), and spec.md requires bit-exact
// output at the three named seeds.
func Murmur2_32(data []byte, seed uint32) uint32 {
	const (
		m = 0x5bd1e995
		r = 24
	)

	length := len(data)
	h := seed ^ uint32(length)

	for length >= 4 {
		k := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
		k *= m
		k ^= k >> r
		k *= m

		h *= m
		h ^= k

		data = data[4:]
		length -= 4
	}

	switch length {
	case 3:
		h ^= uint32(data[2]) << 16
		fallthrough
	case 2:
		h ^= uint32(data[1]) << 8
		fallthrough
	case 1:
		h ^= uint32(data[0])
		h *= m
	}

	h ^= h >> 13
	h *= m
	h ^= h >> 15

	return h
}
