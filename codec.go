package xdr

import (
	"fmt"
	"io"
	"reflect"
)

// Codec is implemented by types that hand-write (or generate) their own
// XDR encoding instead of relying on the reflection-based driver. Both
// Marshal/Unmarshal and the reflection driver (driver.go) dispatch to
// Codec directly, at any nesting depth, whenever a value implements it.
type Codec interface {
	// Encode encodes the receiver to XDR format using enc.
	Encode(enc *Encoder) error

	// Decode decodes the receiver from XDR format using dec.
	Decode(dec *Decoder) error
}

// Marshal encodes v to XDR bytes. If v (or *v) implements Codec, that
// implementation is used; otherwise v is walked with the reflection
// driver (see driver.go) and application types need not implement
// anything.
func Marshal(v any) ([]byte, error) {
	enc := NewEncoder(make([]byte, 0, 256))
	if err := encodeTop(enc, v); err != nil {
		return nil, fmt.Errorf("XDR encoding failed: %w", err)
	}
	result := make([]byte, enc.Len())
	copy(result, enc.Bytes())
	return result, nil
}

// MarshalTo encodes v as XDR and writes the bytes to w. v is encoded
// into an in-memory buffer first and then written to w in a single
// Write call, so the bytes written are always identical to Marshal(v).
func MarshalTo(w io.Writer, v any) error {
	writer := NewWriter(w)
	if err := encodeTopStreaming(writer, v); err != nil {
		return fmt.Errorf("XDR encoding failed: %w", err)
	}
	return nil
}

// encodeTop normalizes v to an addressable reflect.Value before handing
// it to the driver: a top-level pointer is dereferenced to its (already
// addressable) pointee, and a top-level non-pointer value is copied into
// a freshly allocated addressable slot. Addressability is what lets the
// driver find pointer-receiver Codec/Union implementations on nested
// struct fields, not just on values the caller happened to pass by
// pointer.
func encodeTop(enc *Encoder, v any) error {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Invalid:
		return newMessageError("xdr: cannot encode nil interface")
	case reflect.Ptr:
		if rv.IsNil() {
			return newMessageError("xdr: cannot encode nil pointer")
		}
		return encodeValue(enc, rv.Elem(), "")
	default:
		addressable := reflect.New(rv.Type()).Elem()
		addressable.Set(rv)
		return encodeValue(enc, addressable, "")
	}
}

// encodeTopStreaming adapts the slice-backed driver to an io.Writer sink
// by encoding into an in-memory Encoder and flushing it, since the
// reflection driver is written once against the buffer-backed primitive
// API. The byte sequence produced is identical to the buffer path; only
// the destination differs (spec.md §8's sink/buffer parity property).
func encodeTopStreaming(w *Writer, v any) error {
	enc := NewEncoder(make([]byte, 0, 256))
	if err := encodeTop(enc, v); err != nil {
		return err
	}
	return w.writeAll(enc.Bytes())
}

// MarshalRaw wraps pre-encoded XDR data in a consistent interface. Used
// for exceptional cases (e.g. sparse attribute encoding) where custom,
// ad hoc encoding logic produced the bytes directly.
func MarshalRaw(data []byte) ([]byte, error) {
	if data == nil {
		return nil, fmt.Errorf("data cannot be nil")
	}
	result := make([]byte, len(data))
	copy(result, data)
	return result, nil
}

// Unmarshal decodes XDR-encoded data into v, which must be a non-nil
// pointer. Unmarshal is fully owning: any []byte or string decoded into
// v is copied out of data, so data may be reused or discarded afterward.
func Unmarshal(data []byte, v any) error {
	dec := NewDecoder(data)
	if err := decodeTop(dec, v); err != nil {
		return fmt.Errorf("XDR decoding failed: %w", err)
	}
	return nil
}

// UnmarshalPartial decodes a value from the front of data and returns the
// unconsumed tail, which aliases data (zero-copy). The value itself is
// decoded exactly as by Unmarshal: its []byte and string fields are
// copies and do not alias data.
func UnmarshalPartial(data []byte, v any) ([]byte, error) {
	dec := NewDecoder(data)
	if err := decodeTop(dec, v); err != nil {
		return nil, fmt.Errorf("XDR decoding failed: %w", err)
	}
	return dec.GetSlice(dec.Position(), len(data)), nil
}

// UnmarshalFrom decodes a value read from r. Unlike Unmarshal/UnmarshalPartial,
// this is a genuine pull: the Decoder reads exactly as many additional bytes
// off r as each primitive decode needs (DecodeUint32 pulls 4, DecodeBytes
// pulls its declared length, and so on), so decoding stops the instant v's
// bytes are consumed. Nothing past v's encoding is read from r, which
// matters for a reader that never reaches EOF on its own (a live
// connection) or that has another value's bytes immediately following.
// Always fully owning: there is no backing buffer for a decoded []byte or
// string to alias once r is exhausted.
func UnmarshalFrom(r io.Reader, v any) error {
	dec := NewDecoderFromReader(r)
	if err := decodeTop(dec, v); err != nil {
		return fmt.Errorf("XDR decoding failed: %w", err)
	}
	return nil
}

func decodeTop(dec *Decoder, v any) error {
	if codec, ok := v.(Codec); ok {
		return codec.Decode(dec)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return newMessageError("decode target must be a non-nil pointer, got %T", v)
	}
	return decodeValue(dec, rv.Elem(), "")
}
