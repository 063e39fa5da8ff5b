// Package serialize implements the model persistence format of spec.md
// §4.9 (component C9): a text container, a zip-packaged container, and a
// legacy pre-serializer reader, all built on one shared "opaque block"
// encoding (hash count, hash ordinals, native bitsize, filter bytes).
package serialize

import (
	"archive/zip"
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/salad-go/salad/bloom"
	"github.com/salad-go/salad/hash"
	"github.com/salad-go/salad/model"
	"github.com/salad-go/salad/ngram"
	"github.com/salad-go/salad/saladerr"
)

// Format selects the on-disk shape produced by Save.
type Format int

const (
	// FormatText frames the opaque block with its total byte length
	// (spec.md §4.9's primary text-container encoding).
	FormatText Format = iota
	// FormatTextInlineRaw frames the opaque block with the filter's
	// bitsize, suffixed "raw" (spec.md §4.9's "Alternate inline block
	// encoding"); lets a streaming writer emit the header before the
	// total opaque-block length is known.
	FormatTextInlineRaw
	// FormatZip produces the packaged container: a zip archive with a
	// "config" member (text, sans data) and a "bloom.data" member (the
	// opaque block).
	FormatZip
	// FormatTextHex frames the opaque block in 16-bytes-per-line hex text,
	// suffixed "hex", a human-diffable variant of the original tool's
	// `fwrite_bloomdata_txt`, kept loadable for hand-edited model files.
	FormatTextHex
)

const header = "Salad Configuration\n\n"

// nativeSizeTWidth is the byte width used for the opaque block's "native
// size_t" bitsize field. We fix it at 8 bytes little-endian; the
// original C tool's size_t was architecture-dependent; spec.md §9 itself
// singles out the legacy reader as only reliable on little-endian 64-bit
// inputs, so this serializer standardizes on that one encoding throughout
// rather than reproducing the platform ambiguity.
const nativeSizeTWidth = 8

// Save writes m to w in the requested Format.
func Save(m *model.Model, w io.Writer, format Format) error {
	switch format {
	case FormatZip:
		return saveZip(m, w)
	case FormatTextInlineRaw:
		return saveText(m, w, encodingRaw)
	case FormatTextHex:
		return saveText(m, w, encodingHex)
	default:
		return saveText(m, w, encodingByteCount)
	}
}

type textEncoding int

const (
	encodingByteCount textEncoding = iota
	encodingRaw
	encodingHex
)

func saveText(m *model.Model, w io.Writer, enc textEncoding) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(header); err != nil {
		return saladerr.Wrap(saladerr.KindIO, err, "writing container header")
	}
	if err := writeConfigFields(bw, m); err != nil {
		return err
	}

	opaque, err := encodeOpaqueBlock(m.Filter())
	if err != nil {
		return err
	}

	switch enc {
	case encodingRaw:
		if _, err := fmt.Fprintf(bw, "bloom_filter = %draw\n", m.Filter().Bitsize()); err != nil {
			return saladerr.Wrap(saladerr.KindIO, err, "writing bloom_filter header")
		}
		if _, err := bw.Write(opaque); err != nil {
			return saladerr.Wrap(saladerr.KindIO, err, "writing opaque block")
		}
	case encodingHex:
		if _, err := fmt.Fprintf(bw, "bloom_filter = %dhex\n", m.Filter().Bitsize()); err != nil {
			return saladerr.Wrap(saladerr.KindIO, err, "writing bloom_filter header")
		}
		if err := writeHexDump(bw, opaque); err != nil {
			return err
		}
	default:
		if _, err := fmt.Fprintf(bw, "bloom_filter = %d\n", len(opaque)); err != nil {
			return saladerr.Wrap(saladerr.KindIO, err, "writing bloom_filter header")
		}
		if _, err := bw.Write(opaque); err != nil {
			return saladerr.Wrap(saladerr.KindIO, err, "writing opaque block")
		}
	}

	if err := bw.WriteByte('\n'); err != nil {
		return saladerr.Wrap(saladerr.KindIO, err, "writing trailing newline")
	}
	return errors.Wrap(bw.Flush(), "flushing container")
}

// writeHexDump ports original_source's fwrite_bloomdata_txt layout: 16
// bytes (32 hex digits) per line, final line possibly shorter.
func writeHexDump(w io.Writer, data []byte) error {
	for i := 0; i < len(data); i += 16 {
		end := i + 16
		if end > len(data) {
			end = len(data)
		}
		if _, err := fmt.Fprintf(w, "%x\n", data[i:end]); err != nil {
			return saladerr.Wrap(saladerr.KindIO, err, "writing hex dump line")
		}
	}
	return nil
}

func writeConfigFields(w io.Writer, m *model.Model) error {
	binaryStr := "False"
	if m.Binary() {
		binaryStr = "True"
	}
	_, err := fmt.Fprintf(w, "binary = %s\ndelimiter = %s\nn = %d\n", binaryStr, m.Delimiter().String(), m.N())
	if err != nil {
		return saladerr.Wrap(saladerr.KindIO, err, "writing config fields")
	}
	return nil
}

// encodeOpaqueBlock produces: one byte with the number of hashes, that
// many hash-ordinal bytes, the filter's bitsize as an 8-byte little-endian
// "native size_t", then the filter's raw byte array (spec.md §4.9).
func encodeOpaqueBlock(f *bloom.Filter) ([]byte, error) {
	ids := f.Hashes()
	if len(ids) > 255 {
		return nil, saladerr.Newf(saladerr.KindParam, "too many hashes to serialize: %d", len(ids))
	}

	buf := make([]byte, 0, 1+len(ids)+nativeSizeTWidth+len(f.Bytes()))
	buf = append(buf, byte(len(ids)))
	for _, id := range ids {
		buf = append(buf, byte(id))
	}

	var sizeBuf [nativeSizeTWidth]byte
	binary.LittleEndian.PutUint64(sizeBuf[:], f.Bitsize())
	buf = append(buf, sizeBuf[:]...)

	buf = append(buf, f.Bytes()...)
	return buf, nil
}

// decodeOpaqueBlock parses the structure written by encodeOpaqueBlock from
// the front of data, returning the constructed filter and the number of
// bytes consumed.
func decodeOpaqueBlock(data []byte) (*bloom.Filter, int, error) {
	if len(data) < 1 {
		return nil, 0, saladerr.Format(saladerr.SubTruncatedPayload, "opaque block missing hash count")
	}
	nfuncs := int(data[0])
	pos := 1

	if len(data) < pos+nfuncs {
		return nil, 0, saladerr.Format(saladerr.SubTruncatedPayload, "opaque block missing hash ordinals")
	}
	ids := make([]hash.ID, nfuncs)
	for i := 0; i < nfuncs; i++ {
		id, err := hash.FromOrdinal(data[pos+i])
		if err != nil {
			return nil, 0, err
		}
		ids[i] = id
	}
	pos += nfuncs

	if len(data) < pos+nativeSizeTWidth {
		return nil, 0, saladerr.Format(saladerr.SubTruncatedPayload, "opaque block missing bitsize")
	}
	bitsize := binary.LittleEndian.Uint64(data[pos : pos+nativeSizeTWidth])
	pos += nativeSizeTWidth

	nbytes := int((bitsize + 7) / 8)
	if len(data) < pos+nbytes {
		return nil, 0, saladerr.Format(saladerr.SubTruncatedPayload, "opaque block missing filter bytes")
	}
	filterBytes := data[pos : pos+nbytes]
	pos += nbytes

	f, err := bloom.Create(bitsize)
	if err != nil {
		return nil, 0, err
	}
	if err := f.BindHashes(ids); err != nil {
		return nil, 0, err
	}
	if err := f.SetRaw(filterBytes); err != nil {
		return nil, 0, err
	}
	return f, pos, nil
}

func saveZip(m *model.Model, w io.Writer) error {
	zw := zip.NewWriter(w)

	cfgEntry, err := zw.Create("config")
	if err != nil {
		return saladerr.Wrap(saladerr.KindIO, err, "creating config member")
	}
	if _, err := cfgEntry.Write([]byte(header)); err != nil {
		return saladerr.Wrap(saladerr.KindIO, err, "writing config member")
	}
	if err := writeConfigFields(cfgEntry, m); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(cfgEntry, "bloom_filter = bloom.data\n"); err != nil {
		return saladerr.Wrap(saladerr.KindIO, err, "writing bloom_filter reference")
	}

	dataEntry, err := zw.Create("bloom.data")
	if err != nil {
		return saladerr.Wrap(saladerr.KindIO, err, "creating bloom.data member")
	}
	opaque, err := encodeOpaqueBlock(m.Filter())
	if err != nil {
		return err
	}
	if _, err := dataEntry.Write(opaque); err != nil {
		return saladerr.Wrap(saladerr.KindIO, err, "writing bloom.data member")
	}

	return errors.Wrap(zw.Close(), "closing zip container")
}

// Load reads a model from r, auto-detecting its container shape: zip
// (packaged), text, or (failing both) the legacy pre-serializer format
// (spec.md §4.9's Reader).
func Load(r io.Reader) (*model.Model, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, saladerr.Wrap(saladerr.KindIO, err, "reading model stream")
	}

	if len(raw) >= 2 && raw[0] == 'P' && raw[1] == 'K' {
		return loadZip(raw)
	}

	if m, err := loadText(raw); err == nil {
		return m, nil
	} else if !isRecoverableFormatError(err) {
		return nil, err
	}

	return loadLegacy(raw)
}

func isRecoverableFormatError(err error) bool {
	var se *saladerr.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Kind == saladerr.KindFormat
}

func loadZip(raw []byte) (*model.Model, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, saladerr.WrapFormat(saladerr.SubCorruptHeader, err, "opening zip container")
	}

	var cfgBytes, dataBytes []byte
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, saladerr.WrapFormat(saladerr.SubCorruptHeader, err, "opening zip member "+f.Name)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, saladerr.WrapFormat(saladerr.SubTruncatedPayload, err, "reading zip member "+f.Name)
		}
		switch f.Name {
		case "config":
			cfgBytes = content
		case "bloom.data":
			dataBytes = content
		}
	}
	if cfgBytes == nil || dataBytes == nil {
		return nil, saladerr.Format(saladerr.SubCorruptHeader, "packaged container missing config or bloom.data member")
	}

	fields, err := parseConfigFields(cfgBytes)
	if err != nil {
		return nil, err
	}

	f, _, err := decodeOpaqueBlock(dataBytes)
	if err != nil {
		return nil, err
	}

	return model.FromParts(fields.n, fields.binary, ngram.NewDelimiters(fields.delimiter), f), nil
}

type configFields struct {
	binary     bool
	delimiter  string
	n          int
	bloomField string
	bloomIsRaw bool
	bloomIsHex bool
	bloomBits  uint64
	bloomBytes uint64 // declared byte count, when neither inline form applies and the field isn't a filename
	hasBloom   bool
}

// parseConfigFields parses the key = value lines preceding the
// bloom_filter line (and the bloom_filter line's header itself, without
// consuming the payload that follows it). It returns only the parsed
// fields; callers locate the payload themselves (loadText takes the bytes
// after the bloom_filter line, loadZip reads the bloom.data member).
func parseConfigFields(data []byte) (*configFields, error) {
	text := string(data)
	if !strings.HasPrefix(text, header) {
		return nil, saladerr.Format(saladerr.SubCorruptHeader, "missing 'Salad Configuration' header")
	}
	text = text[len(header):]

	fields := &configFields{}
	lines := strings.SplitN(text, "\n", -1)
	for _, line := range lines {
		key, value, ok := splitKV(line)
		if !ok {
			continue
		}
		switch key {
		case "binary":
			fields.binary = value == "True"
		case "delimiter":
			fields.delimiter = value
		case "n":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, saladerr.WrapFormat(saladerr.SubCorruptHeader, err, "parsing n")
			}
			fields.n = n
		case "bloom_filter":
			fields.hasBloom = true
			fields.bloomField = value
			switch {
			case strings.HasSuffix(value, "raw"):
				fields.bloomIsRaw = true
				bits, err := strconv.ParseUint(strings.TrimSuffix(value, "raw"), 10, 64)
				if err != nil {
					return nil, saladerr.WrapFormat(saladerr.SubCorruptHeader, err, "parsing inline bitsize")
				}
				fields.bloomBits = bits
			case strings.HasSuffix(value, "hex"):
				fields.bloomIsHex = true
				bits, err := strconv.ParseUint(strings.TrimSuffix(value, "hex"), 10, 64)
				if err != nil {
					return nil, saladerr.WrapFormat(saladerr.SubCorruptHeader, err, "parsing hex-block bitsize")
				}
				fields.bloomBits = bits
			default:
				if n, err := strconv.ParseUint(value, 10, 64); err == nil {
					fields.bloomBytes = n
				}
				// A non-numeric value (e.g. "bloom.data") names an external
				// member; handled by the packaged-container reader, not here.
			}
		}
	}
	if !fields.hasBloom || fields.n == 0 {
		return nil, saladerr.Format(saladerr.SubCorruptHeader, "missing required config fields")
	}
	return fields, nil
}

func splitKV(line string) (key, value string, ok bool) {
	idx := strings.Index(line, " = ")
	if idx < 0 {
		return "", "", false
	}
	return line[:idx], line[idx+3:], true
}

// loadText parses the primary single-stream text container (spec.md
// §4.9), including its inline-raw alternate.
func loadText(raw []byte) (*model.Model, error) {
	idx := bytes.Index(raw, []byte("bloom_filter = "))
	if idx < 0 {
		return nil, saladerr.Format(saladerr.SubCorruptHeader, "not a text container")
	}

	fields, err := parseConfigFields(raw[:indexLineEnd(raw, idx)])
	if err != nil {
		return nil, err
	}
	if fields.bloomField == "bloom.data" {
		return nil, saladerr.Format(saladerr.SubCorruptHeader, "external data reference outside a packaged container")
	}

	lineEnd := indexLineEnd(raw, idx)
	payload := raw[lineEnd+1:]

	if fields.bloomIsHex {
		decoded, err := decodeHexDump(payload)
		if err != nil {
			return nil, err
		}
		f, _, err := decodeOpaqueBlock(decoded)
		if err != nil {
			return nil, err
		}
		if f.Bitsize() != fields.bloomBits {
			return nil, saladerr.Format(saladerr.SubCorruptHeader, "bloom_filter hex-block bitsize mismatch")
		}
		return model.FromParts(fields.n, fields.binary, ngram.NewDelimiters(fields.delimiter), f), nil
	}

	f, consumed, err := decodeOpaqueBlock(payload)
	if err != nil {
		return nil, err
	}

	if !fields.bloomIsRaw {
		want := int(fields.bloomBytes)
		if consumed != want {
			return nil, saladerr.Format(saladerr.SubTruncatedPayload, "bloom_filter byte count mismatch")
		}
	} else if f.Bitsize() != fields.bloomBits {
		return nil, saladerr.Format(saladerr.SubCorruptHeader, "bloom_filter inline bitsize mismatch")
	}

	return model.FromParts(fields.n, fields.binary, ngram.NewDelimiters(fields.delimiter), f), nil
}

// decodeHexDump reverses writeHexDump: strips line breaks from a
// %02x-per-byte hex dump and decodes the remaining hex digits.
func decodeHexDump(payload []byte) ([]byte, error) {
	hexDigits := make([]byte, 0, len(payload))
	for _, b := range payload {
		if b == '\n' || b == '\r' {
			continue
		}
		hexDigits = append(hexDigits, b)
	}
	if len(hexDigits)%2 != 0 {
		return nil, saladerr.Format(saladerr.SubCorruptHeader, "hex block has an odd digit count")
	}
	out := make([]byte, len(hexDigits)/2)
	for i := 0; i < len(out); i++ {
		hi, ok1 := hexNibble(hexDigits[2*i])
		lo, ok2 := hexNibble(hexDigits[2*i+1])
		if !ok1 || !ok2 {
			return nil, saladerr.Format(saladerr.SubCorruptHeader, "hex block contains a non-hex digit")
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

func hexNibble(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	default:
		return 0, false
	}
}

func indexLineEnd(data []byte, from int) int {
	rel := bytes.IndexByte(data[from:], '\n')
	if rel < 0 {
		return len(data)
	}
	return from + rel
}

// loadLegacy parses the pre-serializer binary format (spec.md §4.9,
// §9): a NUL-terminated delimiter C-string, an 8-byte little-endian
// "native size_t" n, then the opaque block. Parsed only as little-endian
// 64-bit, per spec.md §9's documented limitation.
func loadLegacy(raw []byte) (*model.Model, error) {
	nul := bytes.IndexByte(raw, 0)
	if nul < 0 {
		return nil, saladerr.Format(saladerr.SubUnknownContainer, "legacy format: missing delimiter terminator")
	}
	delimiter := string(raw[:nul])
	pos := nul + 1

	if len(raw) < pos+nativeSizeTWidth {
		return nil, saladerr.Format(saladerr.SubTruncatedPayload, "legacy format: missing n")
	}
	n := binary.LittleEndian.Uint64(raw[pos : pos+nativeSizeTWidth])
	pos += nativeSizeTWidth

	f, _, err := decodeOpaqueBlock(raw[pos:])
	if err != nil {
		return nil, err
	}

	return model.FromParts(int(n), false, ngram.NewDelimiters(delimiter), f), nil
}
