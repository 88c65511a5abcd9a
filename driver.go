package xdr

import (
	"reflect"
	"sort"
)

// encodeValue and decodeValue are the reflection-based driver (spec.md's
// "generic reflection/visitor mechanism", adapted to Go: there is no
// serde-equivalent trait to derive against, so the driver walks
// reflect.Value directly). They give every exported Go type a default
// XDR encoding without requiring it to implement Codec, mirroring what
// original_source/src/ser.rs and de.rs do for any serde Serialize/
// Deserialize type.
//
// At each step, a value that implements Codec or Union is dispatched to
// that implementation instead of being walked structurally; this lets
// application code drop to hand-written or generated encoding for a
// single field or subtree without opting the whole type out of the
// reflection path.

func asCodec(v reflect.Value) (Codec, bool) {
	if v.CanInterface() {
		if c, ok := v.Interface().(Codec); ok {
			return c, true
		}
	}
	if v.CanAddr() {
		if c, ok := v.Addr().Interface().(Codec); ok {
			return c, true
		}
	}
	return nil, false
}

func asUnion(v reflect.Value) (Union, bool) {
	if v.CanInterface() {
		if u, ok := v.Interface().(Union); ok {
			return u, true
		}
	}
	if v.CanAddr() {
		if u, ok := v.Addr().Interface().(Union); ok {
			return u, true
		}
	}
	return nil, false
}

func encodeValue(enc *Encoder, v reflect.Value, tag string) error {
	if !v.IsValid() {
		return newMessageError("xdr: cannot encode invalid value")
	}
	if c, ok := asCodec(v); ok {
		return c.Encode(enc)
	}
	if u, ok := asUnion(v); ok {
		return encodeUnion(enc, u)
	}

	t := parseFieldTag(tag)

	switch v.Kind() {
	case reflect.Bool:
		return enc.EncodeBool(v.Bool())
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return enc.EncodeInt32(int32(v.Int()))
	case reflect.Int64, reflect.Int:
		return enc.EncodeInt64(v.Int())
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return enc.EncodeUint32(uint32(v.Uint()))
	case reflect.Uint64, reflect.Uint:
		return enc.EncodeUint64(v.Uint())
	case reflect.Float32:
		return enc.EncodeFloat32(float32(v.Float()))
	case reflect.Float64:
		return enc.EncodeFloat64(v.Float())
	case reflect.String:
		return enc.EncodeString(v.String())
	case reflect.Ptr:
		return encodeOptional(enc, v)
	case reflect.Slice:
		return encodeSlice(enc, v, t)
	case reflect.Array:
		return encodeArray(enc, v, t)
	case reflect.Map:
		return encodeMap(enc, v)
	case reflect.Struct:
		return encodeStruct(enc, v)
	default:
		return &Error{Kind: KindUnsupported, Reason: "encode: unsupported kind " + v.Kind().String()}
	}
}

func encodeOptional(enc *Encoder, v reflect.Value) error {
	if v.IsNil() {
		return enc.EncodeBool(false)
	}
	if err := enc.EncodeBool(true); err != nil {
		return err
	}
	return encodeValue(enc, v.Elem(), "")
}

func encodeSlice(enc *Encoder, v reflect.Value, t fieldTag) error {
	if v.Type().Elem().Kind() == reflect.Uint8 {
		b := v.Bytes()
		if t.fixed {
			return encodeFixedOpaque(enc, b, t)
		}
		return enc.EncodeBytes(b)
	}
	if err := enc.EncodeSeqHeader(v.Len()); err != nil {
		return err
	}
	for i := 0; i < v.Len(); i++ {
		if err := encodeValue(enc, v.Index(i), ""); err != nil {
			return err
		}
	}
	return nil
}

// encodeArray encodes a Go array. By default this is a fixed aggregate:
// every element encoded with its own default mapping and no count
// prefix (the length is part of the type, known to both ends). For a
// [N]byte array this means each byte is promoted to its own 4-byte
// encoded int unless the field carries xdr:"fixed", in which case the
// array is encoded as RFC 4506 fixed-length opaque data instead: the
// raw N bytes with no per-element padding.
func encodeArray(enc *Encoder, v reflect.Value, t fieldTag) error {
	if v.Type().Elem().Kind() == reflect.Uint8 && t.fixed {
		b := make([]byte, v.Len())
		reflect.Copy(reflect.ValueOf(b), v)
		return enc.EncodeFixedBytes(b)
	}
	for i := 0; i < v.Len(); i++ {
		if err := encodeValue(enc, v.Index(i), ""); err != nil {
			return err
		}
	}
	return nil
}

func encodeMap(enc *Encoder, v reflect.Value) error {
	keys := v.MapKeys()
	if err := enc.EncodeSeqHeader(len(keys)); err != nil {
		return err
	}
	sortMapKeys(keys)
	for _, k := range keys {
		if err := encodeValue(enc, k, ""); err != nil {
			return err
		}
		if err := encodeValue(enc, v.MapIndex(k), ""); err != nil {
			return err
		}
	}
	return nil
}

// sortMapKeys orders map keys deterministically before encoding, so two
// encodes of an equal map always produce identical bytes (spec.md §9
// open question 4). String keys are compared by their raw bytes,
// integer keys by their 8-byte big-endian encoding, and keys of every
// other kind by their encoded wire bytes.
func sortMapKeys(keys []reflect.Value) {
	sort.Slice(keys, func(i, j int) bool {
		return mapKeySortString(keys[i]) < mapKeySortString(keys[j])
	})
}

func mapKeySortString(k reflect.Value) string {
	switch k.Kind() {
	case reflect.String:
		return k.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		enc := NewEncoder(make([]byte, 0, 8))
		_ = enc.EncodeInt64(k.Int())
		return string(enc.Bytes())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		enc := NewEncoder(make([]byte, 0, 8))
		_ = enc.EncodeUint64(k.Uint())
		return string(enc.Bytes())
	default:
		enc := NewEncoder(make([]byte, 0, 8))
		_ = encodeValue(enc, k, "")
		return string(enc.Bytes())
	}
}

// encodeStruct encodes every exported field of v in declaration order as
// a fixed aggregate. A field tagged xdr:"-" is skipped entirely; any
// other xdr tag (fixed, fixed:N, or a union discriminant key tag kept
// for source compatibility with generated code) is passed through to
// encodeValue for that field.
func encodeStruct(enc *Encoder, v reflect.Value) error {
	structType := v.Type()
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if field.PkgPath != "" {
			continue // unexported
		}
		tag := field.Tag.Get("xdr")
		if tag == "-" {
			continue
		}
		if err := encodeValue(enc, v.Field(i), tag); err != nil {
			return err
		}
	}
	return nil
}

func decodeValue(dec *Decoder, v reflect.Value, tag string) error {
	if !v.IsValid() {
		return newMessageError("xdr: cannot decode into invalid value")
	}
	if !v.CanSet() {
		return newMessageError("xdr: cannot decode into unaddressable %s", v.Type())
	}
	if c, ok := asCodec(v); ok {
		return c.Decode(dec)
	}
	if u, ok := asUnion(v); ok {
		return decodeUnion(dec, u)
	}

	t := parseFieldTag(tag)

	switch v.Kind() {
	case reflect.Bool:
		b, err := dec.DecodeBool()
		if err != nil {
			return err
		}
		v.SetBool(b)
		return nil
	case reflect.Int8:
		n, err := dec.DecodeInt8()
		if err != nil {
			return err
		}
		v.SetInt(int64(n))
		return nil
	case reflect.Int16:
		n, err := dec.DecodeInt16()
		if err != nil {
			return err
		}
		v.SetInt(int64(n))
		return nil
	case reflect.Int32:
		n, err := dec.DecodeInt32()
		if err != nil {
			return err
		}
		v.SetInt(int64(n))
		return nil
	case reflect.Int64, reflect.Int:
		n, err := dec.DecodeInt64()
		if err != nil {
			return err
		}
		v.SetInt(n)
		return nil
	case reflect.Uint8:
		n, err := dec.DecodeUint8()
		if err != nil {
			return err
		}
		v.SetUint(uint64(n))
		return nil
	case reflect.Uint16:
		n, err := dec.DecodeUint16()
		if err != nil {
			return err
		}
		v.SetUint(uint64(n))
		return nil
	case reflect.Uint32:
		n, err := dec.DecodeUint32()
		if err != nil {
			return err
		}
		v.SetUint(uint64(n))
		return nil
	case reflect.Uint64, reflect.Uint:
		n, err := dec.DecodeUint64()
		if err != nil {
			return err
		}
		v.SetUint(n)
		return nil
	case reflect.Float32:
		f, err := dec.DecodeFloat32()
		if err != nil {
			return err
		}
		v.SetFloat(float64(f))
		return nil
	case reflect.Float64:
		f, err := dec.DecodeFloat64()
		if err != nil {
			return err
		}
		v.SetFloat(f)
		return nil
	case reflect.String:
		s, err := dec.DecodeString()
		if err != nil {
			return err
		}
		v.SetString(s)
		return nil
	case reflect.Ptr:
		return decodeOptional(dec, v)
	case reflect.Slice:
		return decodeSlice(dec, v, t)
	case reflect.Array:
		return decodeArray(dec, v, t)
	case reflect.Map:
		return decodeMap(dec, v)
	case reflect.Struct:
		return decodeStruct(dec, v)
	default:
		return &Error{Kind: KindUnsupported, Reason: "decode: unsupported kind " + v.Kind().String()}
	}
}

func decodeOptional(dec *Decoder, v reflect.Value) error {
	disc, err := dec.DecodeUint32()
	if err != nil {
		return err
	}
	switch disc {
	case 0:
		v.Set(reflect.Zero(v.Type()))
		return nil
	case 1:
	default:
		return &Error{Kind: KindInvalidOption, Got: disc}
	}
	elem := reflect.New(v.Type().Elem())
	if err := decodeValue(dec, elem.Elem(), ""); err != nil {
		return err
	}
	v.Set(elem)
	return nil
}

// maxSeqPreAlloc bounds how large a slice/map this package will
// pre-allocate from a declared wire count before it has decoded a single
// element. spec.md §4.2 calls the declared count "advisory" for exactly
// this reason: it is attacker-controlled input, not a trustworthy size
// hint. A count beyond this just grows incrementally instead.
const maxSeqPreAlloc = 4096

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func decodeSlice(dec *Decoder, v reflect.Value, t fieldTag) error {
	if v.Type().Elem().Kind() == reflect.Uint8 {
		var (
			b   []byte
			err error
		)
		if t.fixed {
			n := t.fixedLen
			if !t.hasFixedLen {
				return newMessageError("xdr: xdr:\"fixed\" on a []byte field requires a length, use fixed:N")
			}
			b, err = decodeFixedOpaque(dec, n)
		} else {
			b, err = dec.DecodeBytes()
		}
		if err != nil {
			return err
		}
		owned := make([]byte, len(b))
		copy(owned, b)
		v.SetBytes(owned)
		return nil
	}
	n, err := dec.DecodeUint32()
	if err != nil {
		return err
	}
	count := int(n)
	if !dec.streaming() && count > dec.Remaining() {
		return &Error{Kind: KindLengthOverflow, Got: n, Max: uint32(dec.Remaining())}
	}
	slice := reflect.MakeSlice(v.Type(), 0, minInt(count, maxSeqPreAlloc))
	for i := 0; i < count; i++ {
		elem := reflect.New(v.Type().Elem()).Elem()
		if err := decodeValue(dec, elem, ""); err != nil {
			return err
		}
		slice = reflect.Append(slice, elem)
	}
	v.Set(slice)
	return nil
}

func decodeArray(dec *Decoder, v reflect.Value, t fieldTag) error {
	if v.Type().Elem().Kind() == reflect.Uint8 && t.fixed {
		dest := v.Slice(0, v.Len()).Interface().([]byte)
		return dec.DecodeFixedBytesInto(dest)
	}
	for i := 0; i < v.Len(); i++ {
		if err := decodeValue(dec, v.Index(i), ""); err != nil {
			return err
		}
	}
	return nil
}

func decodeMap(dec *Decoder, v reflect.Value) error {
	n, err := dec.DecodeUint32()
	if err != nil {
		return err
	}
	count := int(n)
	if !dec.streaming() && count > dec.Remaining() {
		return &Error{Kind: KindLengthOverflow, Got: n, Max: uint32(dec.Remaining())}
	}
	keyType := v.Type().Key()
	valType := v.Type().Elem()
	m := reflect.MakeMapWithSize(v.Type(), minInt(count, maxSeqPreAlloc))
	for i := 0; i < count; i++ {
		key := reflect.New(keyType).Elem()
		if err := decodeValue(dec, key, ""); err != nil {
			return err
		}
		val := reflect.New(valType).Elem()
		if err := decodeValue(dec, val, ""); err != nil {
			return err
		}
		m.SetMapIndex(key, val)
	}
	v.Set(m)
	return nil
}

func decodeStruct(dec *Decoder, v reflect.Value) error {
	structType := v.Type()
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if field.PkgPath != "" {
			continue
		}
		tag := field.Tag.Get("xdr")
		if tag == "-" {
			continue
		}
		if err := decodeValue(dec, v.Field(i), tag); err != nil {
			return err
		}
	}
	return nil
}
