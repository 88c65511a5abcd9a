package xdr

import (
	"encoding/binary"
	"io"
	"math"
	"unicode/utf8"
)

// Encoder writes values to an in-memory buffer in XDR wire format
// (RFC 4506): big-endian, every item padded to a multiple of 4 bytes.
type Encoder struct {
	buf []byte
	pos int
}

// NewEncoder creates a new XDR encoder writing into buf. buf is grown
// (via append-style reallocation) as needed; pass a buffer with spare
// capacity to avoid reallocating.
func NewEncoder(buf []byte) *Encoder {
	return &Encoder{buf: buf}
}

// Bytes returns the encoded data written so far.
func (e *Encoder) Bytes() []byte {
	return e.buf[:e.pos]
}

// Len returns the number of bytes encoded so far.
func (e *Encoder) Len() int {
	return e.pos
}

// Reset resets the encoder to write into a new buffer from position 0.
func (e *Encoder) Reset(buf []byte) {
	e.buf = buf
	e.pos = 0
}

func (e *Encoder) grow(n int) {
	if e.pos+n <= len(e.buf) {
		return
	}
	need := e.pos + n
	if need <= cap(e.buf) {
		e.buf = e.buf[:cap(e.buf)]
		return
	}
	grown := make([]byte, need*2+16)
	copy(grown, e.buf[:e.pos])
	e.buf = grown
}

// EncodeUint32 encodes a 32-bit unsigned integer.
func (e *Encoder) EncodeUint32(v uint32) error {
	e.grow(4)
	binary.BigEndian.PutUint32(e.buf[e.pos:], v)
	e.pos += 4
	return nil
}

// EncodeUint64 encodes a 64-bit unsigned hyper integer.
func (e *Encoder) EncodeUint64(v uint64) error {
	e.grow(8)
	binary.BigEndian.PutUint64(e.buf[e.pos:], v)
	e.pos += 8
	return nil
}

// EncodeInt32 encodes a 32-bit signed integer.
func (e *Encoder) EncodeInt32(v int32) error {
	return e.EncodeUint32(uint32(v))
}

// EncodeInt64 encodes a 64-bit signed hyper integer.
func (e *Encoder) EncodeInt64(v int64) error {
	return e.EncodeUint64(uint64(v))
}

// EncodeFloat32 encodes an IEEE 754 single-precision float.
func (e *Encoder) EncodeFloat32(v float32) error {
	return e.EncodeUint32(math.Float32bits(v))
}

// EncodeFloat64 encodes an IEEE 754 double-precision float.
func (e *Encoder) EncodeFloat64(v float64) error {
	return e.EncodeUint64(math.Float64bits(v))
}

// EncodeBool encodes a boolean as a 4-byte unsigned int: 0 or 1.
func (e *Encoder) EncodeBool(v bool) error {
	if v {
		return e.EncodeUint32(1)
	}
	return e.EncodeUint32(0)
}

// EncodeChar encodes a rune as a 4-byte unsigned Unicode scalar value.
func (e *Encoder) EncodeChar(v rune) error {
	return e.EncodeUint32(uint32(v))
}

// EncodeSeqHeader writes the 4-byte element/pair count that precedes a
// variable sequence or map. n must be >= 0; n < 0 means the caller does
// not know the length ahead of time, which XDR cannot represent.
func (e *Encoder) EncodeSeqHeader(n int) error {
	if n < 0 {
		return ErrLengthRequired
	}
	return e.EncodeUint32(uint32(n))
}

// EncodeBytes encodes a variable-length byte array: 4-byte length + data
// + 0-3 padding bytes.
func (e *Encoder) EncodeBytes(v []byte) error {
	if uint64(len(v)) > math.MaxUint32 {
		return &Error{Kind: KindLengthOverflow, Got: math.MaxUint32, Max: math.MaxUint32}
	}
	if err := e.EncodeUint32(uint32(len(v))); err != nil {
		return err
	}
	return e.EncodeFixedBytes(v)
}

// EncodeFixedBytes encodes a fixed-length byte array with no length
// prefix: the raw bytes followed by 0-3 zero-padding bytes.
func (e *Encoder) EncodeFixedBytes(v []byte) error {
	padLen := (4 - (len(v) % 4)) % 4
	e.grow(len(v) + padLen)
	copy(e.buf[e.pos:], v)
	e.pos += len(v)
	for i := 0; i < padLen; i++ {
		e.buf[e.pos] = 0
		e.pos++
	}
	return nil
}

// EncodeString encodes a string as variable-length opaque (UTF-8 bytes).
func (e *Encoder) EncodeString(v string) error {
	return e.EncodeBytes([]byte(v))
}

// Decoder reads XDR-encoded values from an in-memory, borrowed byte
// slice. Byte slices returned by DecodeBytes and DecodeFixedBytes alias
// the input; DecodeString returns a copy.
//
// A Decoder built with NewDecoderFromReader instead draws its bytes
// lazily from src: take pulls exactly as many additional bytes as a
// given primitive decode needs, via io.ReadFull, growing buf on demand.
// No cursor beyond buf/pos is materialised; decoding a value never
// reads past that value's own encoding off src.
type Decoder struct {
	buf    []byte
	pos    int
	strict bool
	src    io.Reader
}

// NewDecoder creates a new XDR decoder reading from buf.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// NewDecoderFromReader creates an XDR decoder that pulls bytes from r on
// demand, one primitive decode at a time, instead of requiring the whole
// message up front. Decoding stops the instant the decoded value's bytes
// are consumed; r is never read past that point, so a second value
// immediately following on r is left untouched, and r need not ever
// reach EOF on its own.
func NewDecoderFromReader(r io.Reader) *Decoder {
	return &Decoder{src: r}
}

// streaming reports whether the decoder draws bytes from a reader rather
// than a fully-buffered slice. Remaining() is not a valid bound on total
// input size for a streaming decoder, since bytes not yet pulled are not
// yet known to exist.
func (d *Decoder) streaming() bool {
	return d.src != nil
}

// SetStrictPadding enables or disables padding-byte validation. Disabled
// by default (matches long-standing XDR practice of not checking
// padding); when enabled, any non-zero padding byte fails decoding with
// an InvalidPadding error.
func (d *Decoder) SetStrictPadding(strict bool) {
	d.strict = strict
}

// Remaining returns the number of bytes left to decode.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.pos
}

// Position returns the current decode cursor.
func (d *Decoder) Position() int {
	return d.pos
}

// Reset resets the decoder to read from new data starting at position 0.
// Any reader set by NewDecoderFromReader is discarded.
func (d *Decoder) Reset(buf []byte) {
	d.buf = buf
	d.pos = 0
	d.src = nil
}

// GetSlice returns a slice into the decoder's buffer from start to end.
// The returned slice is only valid until the next decoder operation or
// Reset call; callers must consume it immediately. Enables zero-copy
// extraction of a sub-range of the wire bytes.
func (d *Decoder) GetSlice(start, end int) []byte {
	if start < 0 || end > len(d.buf) || start > end {
		return nil
	}
	return d.buf[start:end]
}

func (d *Decoder) take(n int) ([]byte, error) {
	if d.pos+n > len(d.buf) {
		if d.src == nil {
			return nil, ErrUnexpectedEOF
		}
		if err := d.pull(d.pos + n - len(d.buf)); err != nil {
			return nil, err
		}
	}
	s := d.buf[d.pos : d.pos+n]
	d.pos += n
	return s, nil
}

// pull reads exactly n more bytes from src and appends them to buf.
func (d *Decoder) pull(n int) error {
	grown := make([]byte, len(d.buf)+n)
	copy(grown, d.buf)
	if _, err := io.ReadFull(d.src, grown[len(d.buf):]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return ErrUnexpectedEOF
		}
		return newIOError(err)
	}
	d.buf = grown
	return nil
}

// DecodeUint32 decodes a 32-bit unsigned integer.
func (d *Decoder) DecodeUint32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// DecodeUint64 decodes a 64-bit unsigned hyper integer.
func (d *Decoder) DecodeUint64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// DecodeInt32 decodes a 32-bit signed integer.
func (d *Decoder) DecodeInt32() (int32, error) {
	v, err := d.DecodeUint32()
	return int32(v), err
}

// DecodeInt64 decodes a 64-bit signed hyper integer.
func (d *Decoder) DecodeInt64() (int64, error) {
	v, err := d.DecodeUint64()
	return int64(v), err
}

// DecodeFloat32 decodes an IEEE 754 single-precision float.
func (d *Decoder) DecodeFloat32() (float32, error) {
	v, err := d.DecodeUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// DecodeFloat64 decodes an IEEE 754 double-precision float.
func (d *Decoder) DecodeFloat64() (float64, error) {
	v, err := d.DecodeUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// DecodeBool decodes a 4-byte bool discriminant; any value other than
// 0 or 1 is InvalidBool.
func (d *Decoder) DecodeBool() (bool, error) {
	v, err := d.DecodeUint32()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, &Error{Kind: KindInvalidBool, Got: v}
	}
}

// DecodeChar decodes a 4-byte unsigned Unicode scalar value.
func (d *Decoder) DecodeChar() (rune, error) {
	v, err := d.DecodeUint32()
	if err != nil {
		return 0, err
	}
	if v > utf8.MaxRune || (v >= 0xD800 && v <= 0xDFFF) {
		return 0, &Error{Kind: KindInvalidString}
	}
	return rune(v), nil
}

// Narrow-int decodes: read a 4-byte (signed or unsigned) int and
// truncate by arithmetic cast, discarding high bits without validation
// (spec.md §4.2, §9 open question 3).

// DecodeInt8 decodes a narrow 8-bit signed integer from a 4-byte int.
func (d *Decoder) DecodeInt8() (int8, error) {
	v, err := d.DecodeInt32()
	return int8(v), err
}

// DecodeInt16 decodes a narrow 16-bit signed integer from a 4-byte int.
func (d *Decoder) DecodeInt16() (int16, error) {
	v, err := d.DecodeInt32()
	return int16(v), err
}

// DecodeUint8 decodes a narrow 8-bit unsigned integer from a 4-byte
// unsigned int.
func (d *Decoder) DecodeUint8() (uint8, error) {
	v, err := d.DecodeUint32()
	return uint8(v), err
}

// DecodeUint16 decodes a narrow 16-bit unsigned integer from a 4-byte
// unsigned int.
func (d *Decoder) DecodeUint16() (uint16, error) {
	v, err := d.DecodeUint32()
	return uint16(v), err
}

func (d *Decoder) checkPadding(padLen int) error {
	if !d.strict || padLen == 0 {
		return nil
	}
	start := d.pos - padLen
	for i := 0; i < padLen; i++ {
		if d.buf[start+i] != 0 {
			return &Error{Kind: KindInvalidPadding}
		}
	}
	return nil
}

// DecodeFixedBytes decodes a fixed-length byte array: length raw bytes
// followed by 0-3 padding bytes. The returned slice aliases the
// decoder's input buffer (zero-copy); copy it if you need an
// independent lifetime.
func (d *Decoder) DecodeFixedBytes(length int) ([]byte, error) {
	data, err := d.take(length)
	if err != nil {
		return nil, err
	}
	padLen := (4 - (length % 4)) % 4
	if padLen > 0 {
		if _, err := d.take(padLen); err != nil {
			return nil, err
		}
	}
	if err := d.checkPadding(padLen); err != nil {
		return nil, err
	}
	return data, nil
}

// DecodeFixedBytesInto decodes len(dest) raw bytes (plus padding) into
// dest without allocating, unlike DecodeFixedBytes which returns a
// fresh slice aliasing the decoder's buffer.
func (d *Decoder) DecodeFixedBytesInto(dest []byte) error {
	data, err := d.take(len(dest))
	if err != nil {
		return err
	}
	copy(dest, data)
	padLen := (4 - (len(dest) % 4)) % 4
	if padLen > 0 {
		if _, err := d.take(padLen); err != nil {
			return err
		}
	}
	return d.checkPadding(padLen)
}

// DecodeBytes decodes a variable-length byte array: 4-byte length + data
// + 0-3 padding bytes. The returned slice aliases the decoder's input.
func (d *Decoder) DecodeBytes() ([]byte, error) {
	length, err := d.DecodeUint32()
	if err != nil {
		return nil, err
	}
	if length > math.MaxInt32 {
		return nil, &Error{Kind: KindLengthOverflow, Got: length, Max: math.MaxInt32}
	}
	return d.DecodeFixedBytes(int(length))
}

// DecodeString decodes a variable-length string; the underlying bytes
// must be valid UTF-8 or InvalidString is returned.
func (d *Decoder) DecodeString() (string, error) {
	data, err := d.DecodeBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", &Error{Kind: KindInvalidString}
	}
	return string(data), nil
}

// Writer wraps an io.Writer for streaming XDR encoding (the sink-backed
// flavour of §4.1's write side).
type Writer struct {
	w   io.Writer
	buf [8]byte
}

// NewWriter creates a new XDR writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) writeAll(b []byte) error {
	if _, err := w.w.Write(b); err != nil {
		return newIOError(err)
	}
	return nil
}

// WriteUint32 writes a 32-bit unsigned integer.
func (w *Writer) WriteUint32(v uint32) error {
	binary.BigEndian.PutUint32(w.buf[:4], v)
	return w.writeAll(w.buf[:4])
}

// WriteUint64 writes a 64-bit unsigned hyper integer.
func (w *Writer) WriteUint64(v uint64) error {
	binary.BigEndian.PutUint64(w.buf[:8], v)
	return w.writeAll(w.buf[:8])
}

// WriteInt32 writes a 32-bit signed integer.
func (w *Writer) WriteInt32(v int32) error { return w.WriteUint32(uint32(v)) }

// WriteInt64 writes a 64-bit signed hyper integer.
func (w *Writer) WriteInt64(v int64) error { return w.WriteUint64(uint64(v)) }

// WriteFloat32 writes an IEEE 754 single-precision float.
func (w *Writer) WriteFloat32(v float32) error { return w.WriteUint32(math.Float32bits(v)) }

// WriteFloat64 writes an IEEE 754 double-precision float.
func (w *Writer) WriteFloat64(v float64) error { return w.WriteUint64(math.Float64bits(v)) }

// WriteBool writes a boolean as a 4-byte unsigned int.
func (w *Writer) WriteBool(v bool) error {
	if v {
		return w.WriteUint32(1)
	}
	return w.WriteUint32(0)
}

// WriteChar writes a rune as a 4-byte unsigned Unicode scalar value.
func (w *Writer) WriteChar(v rune) error { return w.WriteUint32(uint32(v)) }

// WriteSeqHeader writes the 4-byte count preceding a sequence or map.
func (w *Writer) WriteSeqHeader(n int) error {
	if n < 0 {
		return ErrLengthRequired
	}
	return w.WriteUint32(uint32(n))
}

// WriteFixedBytes writes raw bytes followed by 0-3 zero-padding bytes,
// with no length prefix.
func (w *Writer) WriteFixedBytes(v []byte) error {
	if err := w.writeAll(v); err != nil {
		return err
	}
	padLen := (4 - (len(v) % 4)) % 4
	if padLen == 0 {
		return nil
	}
	var pad [3]byte
	return w.writeAll(pad[:padLen])
}

// WriteBytes writes a variable-length byte array: 4-byte length + data +
// 0-3 padding bytes.
func (w *Writer) WriteBytes(v []byte) error {
	if uint64(len(v)) > math.MaxUint32 {
		return &Error{Kind: KindLengthOverflow, Got: math.MaxUint32, Max: math.MaxUint32}
	}
	if err := w.WriteUint32(uint32(len(v))); err != nil {
		return err
	}
	return w.WriteFixedBytes(v)
}

// WriteString writes a string as variable-length opaque (UTF-8 bytes).
func (w *Writer) WriteString(v string) error {
	return w.WriteBytes([]byte(v))
}

// Reader wraps an io.Reader for streaming, pull-based XDR decoding.
// Unlike Decoder, every value it produces is independently owned (copied
// out of the source), since there is no backing buffer to borrow from.
type Reader struct {
	r      io.Reader
	buf    [8]byte
	strict bool
}

// NewReader creates a new XDR reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// SetStrictPadding enables or disables padding-byte validation; see
// Decoder.SetStrictPadding.
func (r *Reader) SetStrictPadding(strict bool) {
	r.strict = strict
}

func (r *Reader) readExact(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrUnexpectedEOF
		}
		return nil, newIOError(err)
	}
	return buf, nil
}

// ReadUint32 reads a 32-bit unsigned integer.
func (r *Reader) ReadUint32() (uint32, error) {
	if _, err := io.ReadFull(r.r, r.buf[:4]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return 0, ErrUnexpectedEOF
		}
		return 0, newIOError(err)
	}
	return binary.BigEndian.Uint32(r.buf[:4]), nil
}

// ReadUint64 reads a 64-bit unsigned hyper integer.
func (r *Reader) ReadUint64() (uint64, error) {
	if _, err := io.ReadFull(r.r, r.buf[:8]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return 0, ErrUnexpectedEOF
		}
		return 0, newIOError(err)
	}
	return binary.BigEndian.Uint64(r.buf[:8]), nil
}

// ReadInt32 reads a 32-bit signed integer.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadInt64 reads a 64-bit signed hyper integer.
func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

// ReadFloat32 reads an IEEE 754 single-precision float.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadFloat64 reads an IEEE 754 double-precision float.
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadBool reads a 4-byte bool discriminant.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, &Error{Kind: KindInvalidBool, Got: v}
	}
}

// ReadChar reads a 4-byte unsigned Unicode scalar value.
func (r *Reader) ReadChar() (rune, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	if v > utf8.MaxRune || (v >= 0xD800 && v <= 0xDFFF) {
		return 0, &Error{Kind: KindInvalidString}
	}
	return rune(v), nil
}

// ReadInt8 decodes a narrow 8-bit signed integer from a 4-byte int.
func (r *Reader) ReadInt8() (int8, error) {
	v, err := r.ReadInt32()
	return int8(v), err
}

// ReadInt16 decodes a narrow 16-bit signed integer from a 4-byte int.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadInt32()
	return int16(v), err
}

// ReadUint8 decodes a narrow 8-bit unsigned integer from a 4-byte
// unsigned int.
func (r *Reader) ReadUint8() (uint8, error) {
	v, err := r.ReadUint32()
	return uint8(v), err
}

// ReadUint16 decodes a narrow 16-bit unsigned integer from a 4-byte
// unsigned int.
func (r *Reader) ReadUint16() (uint16, error) {
	v, err := r.ReadUint32()
	return uint16(v), err
}

func (r *Reader) checkPadding(pad []byte) error {
	if !r.strict {
		return nil
	}
	for _, b := range pad {
		if b != 0 {
			return &Error{Kind: KindInvalidPadding}
		}
	}
	return nil
}

// ReadFixedBytes reads length raw bytes followed by 0-3 padding bytes,
// returning an independently owned copy.
func (r *Reader) ReadFixedBytes(length int) ([]byte, error) {
	data, err := r.readExact(length)
	if err != nil {
		return nil, err
	}
	padLen := (4 - (length % 4)) % 4
	if padLen > 0 {
		pad, err := r.readExact(padLen)
		if err != nil {
			return nil, err
		}
		if err := r.checkPadding(pad); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// ReadBytes reads a variable-length byte array: 4-byte length + data +
// 0-3 padding bytes.
func (r *Reader) ReadBytes() ([]byte, error) {
	length, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if length > math.MaxInt32 {
		return nil, &Error{Kind: KindLengthOverflow, Got: length, Max: math.MaxInt32}
	}
	return r.ReadFixedBytes(int(length))
}

// ReadString reads a variable-length string; the bytes must be valid
// UTF-8 or InvalidString is returned.
func (r *Reader) ReadString() (string, error) {
	data, err := r.ReadBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", &Error{Kind: KindInvalidString}
	}
	return string(data), nil
}
