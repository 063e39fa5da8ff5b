package source

import (
	"fmt"
	"io"
	"math"

	"github.com/salad-go/salad/inspect"
	"github.com/salad-go/salad/saladerr"
)

// ScoreSink writes one score-sink line per sample (spec.md §6): the
// configured NaN placeholder, or the exported value as %.6f, each
// newline-terminated in input order.
type ScoreSink interface {
	WriteScore(value float64) error
}

// TextScoreSink is the minimal text-form ScoreSink of spec.md §6.
type TextScoreSink struct {
	w            io.Writer
	nanPlaceholder string
}

// NewTextScoreSink wraps w; nanPlaceholder is emitted in place of a
// NaN-valued score (e.g. an empty sample, spec.md §4.7).
func NewTextScoreSink(w io.Writer, nanPlaceholder string) *TextScoreSink {
	return &TextScoreSink{w: w, nanPlaceholder: nanPlaceholder}
}

// WriteScore writes one line for value.
func (s *TextScoreSink) WriteScore(value float64) error {
	var err error
	if math.IsNaN(value) {
		_, err = fmt.Fprintf(s.w, "%s\n", s.nanPlaceholder)
	} else {
		_, err = fmt.Fprintf(s.w, "%.6f\n", value)
	}
	if err != nil {
		return saladerr.Wrap(saladerr.KindIO, err, "writing score sink line")
	}
	return nil
}

// InspectionSink writes one inspection-sink line per sample (spec.md
// §6): four right-aligned decimal fields (new, uniq, total, length)
// tab-separated, newline-terminated.
type InspectionSink interface {
	WriteInspection(c inspect.Counters, length int) error
}

// TextInspectionSink is the minimal text-form InspectionSink of spec.md §6.
type TextInspectionSink struct {
	w io.Writer
}

// NewTextInspectionSink wraps w.
func NewTextInspectionSink(w io.Writer) *TextInspectionSink {
	return &TextInspectionSink{w: w}
}

// WriteInspection writes one line for c and the sample's byte length.
func (s *TextInspectionSink) WriteInspection(c inspect.Counters, length int) error {
	_, err := fmt.Fprintf(s.w, "%8d\t%8d\t%8d\t%8d\n", c.New, c.Uniq, c.Total, length)
	if err != nil {
		return saladerr.Wrap(saladerr.KindIO, err, "writing inspection sink line")
	}
	return nil
}
