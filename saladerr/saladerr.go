// Package saladerr defines the error taxonomy shared by every core package.
//
// Errors are sentinel values wrapped with errors.Is-compatible kinds so that
// callers can branch on failure class (spec.md §7) without string matching.
package saladerr

import "fmt"

// Kind identifies one of the error classes named in spec.md §7.
type Kind int

const (
	_ Kind = iota
	KindAlloc
	KindParam
	KindIO
	KindFormat
	KindSpecMismatch
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindAlloc:
		return "AllocError"
	case KindParam:
		return "ParamError"
	case KindIO:
		return "IoError"
	case KindFormat:
		return "FormatError"
	case KindSpecMismatch:
		return "SpecMismatch"
	case KindUnsupported:
		return "Unsupported"
	default:
		return "Unknown"
	}
}

// FormatSub identifies the FormatError subkind (spec.md §7).
type FormatSub int

const (
	_ FormatSub = iota
	SubCorruptHeader
	SubUnknownHash
	SubTruncatedPayload
	SubUnknownContainer
)

func (s FormatSub) String() string {
	switch s {
	case SubCorruptHeader:
		return "CorruptHeader"
	case SubUnknownHash:
		return "UnknownHash"
	case SubTruncatedPayload:
		return "TruncatedPayload"
	case SubUnknownContainer:
		return "UnknownContainer"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned by core operations.
type Error struct {
	Kind    Kind
	Sub     FormatSub // only meaningful when Kind == KindFormat
	Message string
	Err     error // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Kind == KindFormat && e.Sub != 0 {
		if e.Message == "" {
			return fmt.Sprintf("%s/%s", e.Kind, e.Sub)
		}
		return fmt.Sprintf("%s/%s: %s", e.Kind, e.Sub, e.Message)
	}
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is(err, saladerr.Alloc) etc. to match by kind (and, for
// FormatError, by subkind when the target specifies one).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	if t.Kind == KindFormat && t.Sub != 0 {
		return e.Sub == t.Sub
	}
	return true
}

func newKind(k Kind, msg string) *Error { return &Error{Kind: k, Message: msg} }

// Alloc, Param, IO, SpecMismatch, Unsupported are sentinel values matching
// solely on Kind; use errors.Is(err, saladerr.Alloc).
var (
	Alloc        = newKind(KindAlloc, "")
	Param        = newKind(KindParam, "")
	IO           = newKind(KindIO, "")
	SpecMismatch = newKind(KindSpecMismatch, "")
	Unsupported  = newKind(KindUnsupported, "")
)

// Format builds a FormatError of the given subkind.
func Format(sub FormatSub, msg string) *Error {
	return &Error{Kind: KindFormat, Sub: sub, Message: msg}
}

// Newf builds a Kind error with a formatted message.
func Newf(k Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches cause to a new error of the given kind.
func Wrap(k Kind, cause error, msg string) *Error {
	return &Error{Kind: k, Message: msg, Err: cause}
}

// WrapFormat attaches cause to a new FormatError of the given subkind.
func WrapFormat(sub FormatSub, cause error, msg string) *Error {
	return &Error{Kind: KindFormat, Sub: sub, Message: msg, Err: cause}
}
