// Package ngram implements the delimiter set (C3) and the n-gram extraction
// visitor (C4) of spec.md §4.3/§4.4.
package ngram

import "fmt"

// Delimiters is a 256-entry boolean table indexed by byte value; its
// canonical string form is rebuilt from the table by String (spec.md §4.3).
type Delimiters struct {
	table [256]bool
}

// NewDelimiters builds a Delimiters set from a (possibly percent-encoded)
// user string. The string is URL-decoded in place first (percent-decoding
// is applied here, not to samples, see DESIGN.md), then every byte
// present in the decoded string becomes a delimiter. An empty input yields
// an empty delimiter set (non-token mode).
func NewDelimiters(raw string) *Delimiters {
	d := &Delimiters{}
	decoded := decodePercent(raw)
	for i := 0; i < len(decoded); i++ {
		d.table[decoded[i]] = true
	}
	return d
}

// IsDelimiter reports whether b is a delimiter byte.
func (d *Delimiters) IsDelimiter(b byte) bool { return d.table[b] }

// Empty reports whether no byte is a delimiter (selects non-token mode).
func (d *Delimiters) Empty() bool {
	for _, v := range d.table {
		if v {
			return false
		}
	}
	return true
}

// Equal reports whether two delimiter sets have byte-for-byte identical
// tables.
func (d *Delimiters) Equal(o *Delimiters) bool {
	if d == nil || o == nil {
		return d == o
	}
	return d.table == o.table
}

// String rebuilds the canonical string form: for each byte i in 0..256, if
// the table entry is set, emit i as printable ASCII or as %XX otherwise,
// concatenated in ascending byte order (spec.md §4.3).
func (d *Delimiters) String() string {
	buf := make([]byte, 0, 16)
	for i := 0; i < 256; i++ {
		if !d.table[i] {
			continue
		}
		if isPrintableASCII(byte(i)) {
			buf = append(buf, byte(i))
		} else {
			buf = append(buf, []byte(fmt.Sprintf("%%%02X", i))...)
		}
	}
	return string(buf)
}

func isPrintableASCII(b byte) bool {
	return b >= 0x20 && b < 0x7F
}

// decodePercent ports original_source/lib/util/src/util.c's inline_decode:
// %HH (two hex digits) decodes to one byte; a stray '%' with no, one, or
// non-hex trailing digits is left unchanged.
func decodePercent(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			out = append(out, s[i])
			continue
		}
		remaining := len(s) - i
		if remaining <= 2 {
			// Stray '%' at end-of-string, or '%' followed by a single
			// character: left unchanged, copy what's left verbatim.
			out = append(out, s[i:]...)
			break
		}
		h1, h2 := s[i+1], s[i+2]
		if isHexDigit(h1) && isHexDigit(h2) {
			out = append(out, hexByte(h1, h2))
			i += 2
		} else {
			out = append(out, '%')
		}
	}
	return out
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexVal(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	default:
		return b - 'A' + 10
	}
}

func hexByte(h1, h2 byte) byte {
	return hexVal(h1)<<4 | hexVal(h2)
}
