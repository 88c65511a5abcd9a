package xdr

import (
	"strconv"
	"strings"
)

// fieldTag is the parsed form of a struct field's `xdr:"..."` tag.
// The driver consults it to pick between the default encoding for a
// Go kind and an RFC 4506 §4.9 fixed-opaque override.
type fieldTag struct {
	skip       bool // xdr:"-"
	fixed      bool // xdr:"fixed" or xdr:"fixed:N"
	fixedLen   int  // N from xdr:"fixed:N"; 0 if not given (see hasFixedLen)
	hasFixedLen bool
}

// parseFieldTag parses the xdr struct tag on a field. An empty tag
// (field not tagged, or present with no xdr key) yields the default
// fieldTag{}, which selects the kind's default XDR mapping.
func parseFieldTag(tag string) fieldTag {
	if tag == "" {
		return fieldTag{}
	}
	if tag == "-" {
		return fieldTag{skip: true}
	}
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "fixed":
			return fieldTag{fixed: true}
		case strings.HasPrefix(part, "fixed:"):
			n, err := strconv.Atoi(strings.TrimPrefix(part, "fixed:"))
			if err != nil || n < 0 {
				return fieldTag{fixed: true}
			}
			return fieldTag{fixed: true, fixedLen: n, hasFixedLen: true}
		}
	}
	return fieldTag{}
}

// encodeFixedOpaque encodes v (a []byte) as RFC 4506 §4.9 fixed-length
// opaque data: the raw bytes with no length prefix, zero-padded to a
// multiple of 4. Unlike the default []byte mapping (variable opaque,
// length-prefixed) this is used when a field's xdr:"fixed:N" tag marks
// its length as part of the wire format rather than runtime data.
func encodeFixedOpaque(enc *Encoder, v []byte, t fieldTag) error {
	if t.hasFixedLen && len(v) != t.fixedLen {
		return &Error{Kind: KindFixedLengthMismatch,
			Msg: "xdr: fixed-opaque field has " + strconv.Itoa(len(v)) +
				" bytes, tag declares " + strconv.Itoa(t.fixedLen)}
	}
	return enc.EncodeFixedBytes(v)
}

// decodeFixedOpaque decodes n raw bytes (plus padding) with no length
// prefix, per a []byte field's xdr:"fixed:N" tag. [N]byte arrays tagged
// xdr:"fixed" are decoded by decodeArray via DecodeFixedBytesInto instead.
func decodeFixedOpaque(dec *Decoder, n int) ([]byte, error) {
	return dec.DecodeFixedBytes(n)
}
