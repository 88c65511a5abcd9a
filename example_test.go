package xdr_test

import (
	"fmt"
	"log"

	"github.com/oncrpc-go/xdr"
)

// Example demonstrates basic XDR encoding and decoding, including the
// IEEE 754 float support this module adds over the teacher's original.
func Example_basic() {
	// Create a buffer for encoding
	buf := make([]byte, 1024)
	encoder := xdr.NewEncoder(buf)

	// Encode various data types
	encoder.EncodeUint32(7)
	encoder.EncodeString("opaque")
	encoder.EncodeBytes([]byte("payload"))
	encoder.EncodeBool(false)
	encoder.EncodeFloat32(2.5)

	// Get the encoded data
	encoded := encoder.Bytes()
	fmt.Printf("Encoded %d bytes\n", len(encoded))

	// Create a decoder
	decoder := xdr.NewDecoder(encoded)

	// Decode the data
	num, _ := decoder.DecodeUint32()
	str, _ := decoder.DecodeString()
	bytes, _ := decoder.DecodeBytes()
	flag, _ := decoder.DecodeBool()
	f, _ := decoder.DecodeFloat32()

	fmt.Printf("Decoded: %d, %s, %s, %t, %v\n", num, str, string(bytes), flag, f)

	// Output:
	// Encoded 36 bytes
	// Decoded: 7, opaque, payload, false, 2.5
}

// Account implements the Codec interface directly, bypassing the
// reflection driver.
type Account struct {
	ID    uint32
	Owner string
	Tier  uint32
}

func (a *Account) Encode(enc *xdr.Encoder) error {
	if err := enc.EncodeUint32(a.ID); err != nil {
		return err
	}
	if err := enc.EncodeString(a.Owner); err != nil {
		return err
	}
	if err := enc.EncodeUint32(a.Tier); err != nil {
		return err
	}
	return nil
}

func (a *Account) Decode(dec *xdr.Decoder) error {
	id, err := dec.DecodeUint32()
	if err != nil {
		return err
	}
	a.ID = id

	owner, err := dec.DecodeString()
	if err != nil {
		return err
	}
	a.Owner = owner

	tier, err := dec.DecodeUint32()
	if err != nil {
		return err
	}
	a.Tier = tier

	return nil
}

// Example demonstrates using the Codec interface
func Example_codec() {
	account := &Account{
		ID:    42,
		Owner: "ops",
		Tier:  3,
	}

	// Marshal using the Codec interface
	data, err := xdr.Marshal(account)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Marshaled %d bytes\n", len(data))

	// Unmarshal using the Codec interface
	var decoded Account
	err = xdr.Unmarshal(data, &decoded)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Unmarshaled: ID=%d, Owner=%s, Tier=%d\n", decoded.ID, decoded.Owner, decoded.Tier)

	// Output:
	// Marshaled 16 bytes
	// Unmarshaled: ID=42, Owner=ops, Tier=3
}

// Example demonstrates fixed-size byte arrays
func Example_fixedBytes() {
	buf := make([]byte, 1024)
	encoder := xdr.NewEncoder(buf)

	// Encode fixed-size data (no length prefix)
	data := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	encoder.EncodeFixedBytes(data)

	encoded := encoder.Bytes()
	fmt.Printf("Encoded %d bytes (with padding)\n", len(encoded))

	// Decode fixed-size data
	decoder := xdr.NewDecoder(encoded)
	decoded, _ := decoder.DecodeFixedBytes(6)

	fmt.Printf("Decoded: %v\n", decoded)

	// Output:
	// Encoded 8 bytes (with padding)
	// Decoded: [170 187 204 221 238 255]
}

// Example demonstrates streaming XDR encoding over an io.Writer/io.Reader
// pair, pulling only as many bytes as each value needs.
func Example_streaming() {
	var encoded []byte

	// Create a writer that appends to our byte slice
	writer := &byteWriter{data: &encoded}
	xdrWriter := xdr.NewWriter(writer)

	// Write data using streaming interface
	xdrWriter.WriteUint32(777)
	xdrWriter.WriteBytes([]byte("pulled not buffered"))

	fmt.Printf("Streamed %d bytes\n", len(encoded))

	// Read back using streaming interface
	reader := &byteReader{data: encoded}
	xdrReader := xdr.NewReader(reader)

	num, _ := xdrReader.ReadUint32()
	data, _ := xdrReader.ReadBytes()

	fmt.Printf("Read back: %d, %s\n", num, string(data))

	// Output:
	// Streamed 28 bytes
	// Read back: 777, pulled not buffered
}

// Helper types for streaming example
type byteWriter struct {
	data *[]byte
}

func (w *byteWriter) Write(p []byte) (int, error) {
	*w.data = append(*w.data, p...)
	return len(p), nil
}

type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("EOF")
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

// Example demonstrates Marshal/Unmarshal on a plain struct that
// implements neither Codec nor Union: the reflection-based driver walks
// its exported fields directly.
type Address struct {
	Street string
	City   string
	Zip    uint32
}

func Example_reflection() {
	addr := Address{Street: "1 Infinite Loop", City: "Cupertino", Zip: 95014}

	data, err := xdr.Marshal(addr)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Marshaled %d bytes\n", len(data))

	var decoded Address
	if err := xdr.Unmarshal(data, &decoded); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Unmarshaled: %+v\n", decoded)

	// Output:
	// Marshaled 40 bytes
	// Unmarshaled: {Street:1 Infinite Loop City:Cupertino Zip:95014}
}

// Example demonstrates zero-copy slice extraction
func Example_zeroCopy() {
	// Create some test data
	buf := make([]byte, 1024)
	encoder := xdr.NewEncoder(buf)
	encoder.EncodeUint32(0xCAFEF00D)
	encoder.EncodeString("tail")
	encoder.EncodeUint32(0x0BADC0DE)

	encoded := encoder.Bytes()
	decoder := xdr.NewDecoder(encoded)

	// Decode first uint32
	val1, _ := decoder.DecodeUint32()
	fmt.Printf("First value: 0x%08x\n", val1)

	// Get current position
	pos1 := decoder.Position()

	// Skip the string by decoding it
	decoder.DecodeString()

	// Get position after string
	pos2 := decoder.Position()

	// Extract the string bytes using zero-copy slice
	// This gives us direct access to the encoded string data
	stringBytes := decoder.GetSlice(pos1, pos2)
	fmt.Printf("String bytes (raw XDR): %v\n", stringBytes)

	// Decode final uint32
	val2, _ := decoder.DecodeUint32()
	fmt.Printf("Final value: 0x%08x\n", val2)

	// Output:
	// First value: 0xcafef00d
	// String bytes (raw XDR): [0 0 0 4 116 97 105 108]
	// Final value: 0x0badc0de
}
