// Package source implements the external-collaborator interfaces of
// spec.md §6: a batched sample iterator and the two output sinks. These
// are explicitly out-of-scope as full I/O subsystems (directory walking,
// archive extraction, live capture), only the interfaces and minimal
// implementations needed to run cmd/salad end to end live here.
package source

import (
	"bufio"
	"io"

	"github.com/salad-go/salad/saladerr"
)

// Source yields samples in batches of size B >= 1 (spec.md §6). Next
// returns io.EOF once exhausted; a finite source returns a final
// possibly-short batch before io.EOF, never mixing data with the error.
type Source interface {
	Next() ([][]byte, error)
}

// LineSource treats each line of an underlying reader as one sample,
// yielding batches of up to batchSize lines (spec.md §6's "iterator
// yielding (bytes, length) pairs in batches").
type LineSource struct {
	scanner   *bufio.Scanner
	batchSize int
}

// NewLineSource wraps r; batchSize must be >= 1 (mandatory 1 for network
// sources per spec.md §6).
func NewLineSource(r io.Reader, batchSize int) (*LineSource, error) {
	if batchSize < 1 {
		return nil, saladerr.Newf(saladerr.KindParam, "batch size must be >= 1")
	}
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &LineSource{scanner: s, batchSize: batchSize}, nil
}

// Next returns up to batchSize lines, or io.EOF once the underlying
// reader is exhausted and no lines remain.
func (l *LineSource) Next() ([][]byte, error) {
	batch := make([][]byte, 0, l.batchSize)
	for len(batch) < l.batchSize && l.scanner.Scan() {
		line := append([]byte(nil), l.scanner.Bytes()...)
		batch = append(batch, line)
	}
	if err := l.scanner.Err(); err != nil {
		return nil, saladerr.Wrap(saladerr.KindIO, err, "reading line source")
	}
	if len(batch) == 0 {
		return nil, io.EOF
	}
	return batch, nil
}

// FileSource yields one sample per path, whole-file, batch size 1; the
// minimal "file/archive" modality named in spec.md §6.
type FileSource struct {
	paths []string
	open  func(path string) ([]byte, error)
	pos   int
}

// NewFileSource builds a FileSource over paths, using open to read each
// file's full contents (injected so tests don't need a real filesystem).
func NewFileSource(paths []string, open func(path string) ([]byte, error)) *FileSource {
	return &FileSource{paths: paths, open: open}
}

// Next returns the next file's contents as a single-sample batch, or
// io.EOF once every path has been consumed.
func (f *FileSource) Next() ([][]byte, error) {
	if f.pos >= len(f.paths) {
		return nil, io.EOF
	}
	data, err := f.open(f.paths[f.pos])
	if err != nil {
		return nil, saladerr.Wrap(saladerr.KindIO, err, "reading file source path "+f.paths[f.pos])
	}
	f.pos++
	return [][]byte{data}, nil
}
