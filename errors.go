package xdr

import (
	"errors"
	"fmt"
)

// Kind identifies the category of an *Error. Every failure the codec can
// produce is one of these; callers that need to branch on failure type
// should switch on Kind rather than comparing error strings.
type Kind int

const (
	// KindUnexpectedEOF means the decoder ran out of bytes mid-value.
	KindUnexpectedEOF Kind = iota
	// KindLengthRequired means an encoder was asked to write a
	// sequence/map whose length was not known ahead of time.
	KindLengthRequired
	// KindLengthOverflow means a length does not fit: a byte length to
	// encode exceeds 2^32-1, a decoded byte length exceeds 2^31-1, or a
	// decoded sequence/map count exceeds the bytes left in a slice-backed
	// input.
	KindLengthOverflow
	// KindInvalidBool means a 4-byte bool discriminant was neither 0 nor 1.
	KindInvalidBool
	// KindInvalidOption means a 4-byte optional discriminant was neither
	// 0 nor 1.
	KindInvalidOption
	// KindInvalidString means decoded bytes were not valid UTF-8, or a
	// decoded char was outside the Unicode scalar range.
	KindInvalidString
	// KindInvalidDiscriminant means a tagged-union discriminant did not
	// match any known arm.
	KindInvalidDiscriminant
	// KindInvalidPadding means a padding byte was non-zero (strict mode only).
	KindInvalidPadding
	// KindUnsupported means the requested operation has no XDR mapping
	// (XDR carries no type tags, so "decode without knowing the type" and
	// similar self-describing operations are unsupported).
	KindUnsupported
	// KindIO means the underlying sink or source returned an error.
	KindIO
	// KindMessage is a free-form error, usually from a hand-written or
	// generated Codec implementation doing its own validation.
	KindMessage
	// KindFixedLengthMismatch means a []byte field's length does not
	// match the length declared by its xdr:"fixed:N" tag on encode.
	KindFixedLengthMismatch
)

func (k Kind) String() string {
	switch k {
	case KindUnexpectedEOF:
		return "UnexpectedEOF"
	case KindLengthRequired:
		return "LengthRequired"
	case KindLengthOverflow:
		return "LengthOverflow"
	case KindInvalidBool:
		return "InvalidBool"
	case KindInvalidOption:
		return "InvalidOption"
	case KindInvalidString:
		return "InvalidString"
	case KindInvalidDiscriminant:
		return "InvalidDiscriminant"
	case KindInvalidPadding:
		return "InvalidPadding"
	case KindUnsupported:
		return "Unsupported"
	case KindIO:
		return "Io"
	case KindMessage:
		return "Message"
	case KindFixedLengthMismatch:
		return "FixedLengthMismatch"
	default:
		return "Unknown"
	}
}

// Error is the single error type this package returns. Kind selects which
// of the payload fields are meaningful; see the Kind constants.
type Error struct {
	Kind   Kind
	Got    uint32 // InvalidBool, InvalidOption, LengthOverflow (got)
	Max    uint32 // LengthOverflow (max)
	Disc   int32  // InvalidDiscriminant
	Reason string // Unsupported
	Msg    string // Message, Io
	Err    error  // wrapped cause, for Io and Message when constructed from an error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUnexpectedEOF:
		return "xdr: unexpected end of input"
	case KindLengthRequired:
		return "xdr: sequence/map length must be known before encoding"
	case KindLengthOverflow:
		return fmt.Sprintf("xdr: length %d exceeds maximum %d", e.Got, e.Max)
	case KindInvalidBool:
		return fmt.Sprintf("xdr: invalid boolean encoding: %d (must be 0 or 1)", e.Got)
	case KindInvalidOption:
		return fmt.Sprintf("xdr: invalid optional discriminant: %d (must be 0 or 1)", e.Got)
	case KindInvalidString:
		return "xdr: invalid string (non-UTF-8 bytes or out-of-range Unicode scalar)"
	case KindInvalidDiscriminant:
		return fmt.Sprintf("xdr: invalid discriminant value: %d", e.Disc)
	case KindInvalidPadding:
		return "xdr: non-zero padding bytes"
	case KindUnsupported:
		return fmt.Sprintf("xdr: unsupported operation: %s", e.Reason)
	case KindIO:
		return fmt.Sprintf("xdr: i/o error: %s", e.Msg)
	case KindMessage:
		return e.Msg
	case KindFixedLengthMismatch:
		return e.Msg
	default:
		return "xdr: unknown error"
	}
}

func (e *Error) Unwrap() error { return e.Err }

func newIOError(err error) *Error {
	return &Error{Kind: KindIO, Msg: err.Error(), Err: err}
}

func newMessageError(format string, args ...any) *Error {
	return &Error{Kind: KindMessage, Msg: fmt.Sprintf(format, args...)}
}

// Sentinel-style errors for two payload-free kinds, kept so callers can
// `errors.Is(err, xdr.ErrUnexpectedEOF)` the way the rest of the Go
// ecosystem compares sentinel errors, without losing the richer *Error
// payload on kinds that carry one (those are compared via Kind, not Is).
var (
	ErrUnexpectedEOF = &Error{Kind: KindUnexpectedEOF}
	ErrLengthRequired = &Error{Kind: KindLengthRequired}
)

// Is implements the errors.Is contract for the sentinel kinds: two
// *Error values compare equal if both have Kind UnexpectedEOF or both
// have Kind LengthRequired. Errors of every other kind never match via
// Is; inspect their Kind and fields directly (or use the Is* helpers).
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind != other.Kind {
		return false
	}
	switch e.Kind {
	case KindUnexpectedEOF, KindLengthRequired:
		return true
	default:
		return false
	}
}

// IsUnexpectedEOF reports whether err is (or wraps) an unexpected-EOF error.
func IsUnexpectedEOF(err error) bool { return isKind(err, KindUnexpectedEOF) }

// IsInvalidBool reports whether err is (or wraps) an invalid-bool error.
func IsInvalidBool(err error) bool { return isKind(err, KindInvalidBool) }

// IsInvalidOption reports whether err is (or wraps) an invalid-option error.
func IsInvalidOption(err error) bool { return isKind(err, KindInvalidOption) }

// IsInvalidString reports whether err is (or wraps) an invalid-string error.
func IsInvalidString(err error) bool { return isKind(err, KindInvalidString) }

// IsInvalidDiscriminant reports whether err is (or wraps) an invalid-discriminant error.
func IsInvalidDiscriminant(err error) bool { return isKind(err, KindInvalidDiscriminant) }

// IsInvalidPadding reports whether err is (or wraps) an invalid-padding error.
func IsInvalidPadding(err error) bool { return isKind(err, KindInvalidPadding) }

// IsLengthOverflow reports whether err is (or wraps) a length-overflow error.
func IsLengthOverflow(err error) bool { return isKind(err, KindLengthOverflow) }

func isKind(err error, k Kind) bool {
	var xe *Error
	if !errors.As(err, &xe) {
		return false
	}
	return xe.Kind == k
}
