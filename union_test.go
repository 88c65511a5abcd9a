package xdr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resultUnion models an XDR discriminated union with two arms: a
// success arm carrying a uint32 value, and a failure arm carrying a
// string message. Discriminant 0 = ok, 1 = error.
type resultUnion struct {
	ok      bool
	value   uint32
	message string
}

func (r *resultUnion) Discriminant() uint32 {
	if r.ok {
		return 0
	}
	return 1
}

func (r *resultUnion) Arm(discriminant uint32) (any, bool) {
	switch discriminant {
	case 0:
		return &r.value, true
	case 1:
		return &r.message, true
	default:
		return nil, false
	}
}

func (r *resultUnion) SetArm(discriminant uint32) (any, bool, error) {
	switch discriminant {
	case 0:
		r.ok = true
		return &r.value, true, nil
	case 1:
		r.ok = false
		return &r.message, true, nil
	default:
		return nil, false, &Error{Kind: KindInvalidDiscriminant, Disc: int32(discriminant)}
	}
}

var _ Union = (*resultUnion)(nil)

func TestUnionOkArmRoundTrip(t *testing.T) {
	original := &resultUnion{ok: true, value: 200}

	data, err := Marshal(original)
	require.NoError(t, err)
	assert.Len(t, data, 8) // 4-byte discriminant + 4-byte uint32 payload

	var decoded resultUnion
	require.NoError(t, Unmarshal(data, &decoded))
	assert.True(t, decoded.ok)
	assert.Equal(t, uint32(200), decoded.value)
}

func TestUnionErrorArmRoundTrip(t *testing.T) {
	original := &resultUnion{ok: false, message: "not found"}

	data, err := Marshal(original)
	require.NoError(t, err)

	var decoded resultUnion
	require.NoError(t, Unmarshal(data, &decoded))
	assert.False(t, decoded.ok)
	assert.Equal(t, "not found", decoded.message)
}

func TestUnionUnknownDiscriminant(t *testing.T) {
	var decoded resultUnion
	data, err := Marshal(uint32(99))
	require.NoError(t, err)

	err = Unmarshal(data, &decoded)
	require.Error(t, err)

	var xerr *Error
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, KindInvalidDiscriminant, xerr.Kind)
	assert.Equal(t, int32(99), xerr.Disc)
}

// nestedUnion has a struct field (Body) that is itself a Union implementor, verifying
// the driver dispatches to Union at any depth, not just at the top level.
type nestedUnion struct {
	Label string
	Body  resultUnion
}

func TestUnionNestedInStruct(t *testing.T) {
	original := nestedUnion{Label: "wrapped", Body: resultUnion{ok: true, value: 5}}

	data, err := Marshal(original)
	require.NoError(t, err)

	var decoded nestedUnion
	require.NoError(t, Unmarshal(data, &decoded))
	assert.Equal(t, original.Label, decoded.Label)
	assert.True(t, decoded.Body.ok)
	assert.Equal(t, uint32(5), decoded.Body.value)
}

// transferDetails is a multi-field ("struct"/"tuple") arm payload: unlike
// resultUnion's single-value arms, decoding this arm exercises the
// driver's struct path underneath a union dispatch.
type transferDetails struct {
	BytesMoved uint64
	Checksum   uint32
}

// opOutcome models a union with three discriminants: a void arm (no
// payload at all), a single-value arm, and a multi-field struct arm —
// covering every arm shape spec.md §8 calls out (unit, newtype, struct).
// Discriminant 0 = pending (void), 1 = failed (string message), 2 =
// complete (transferDetails).
type opOutcome struct {
	state   int
	message string
	details transferDetails
}

const (
	opPending = iota
	opFailed
	opComplete
)

func (o *opOutcome) Discriminant() uint32 { return uint32(o.state) }

func (o *opOutcome) Arm(discriminant uint32) (any, bool) {
	switch discriminant {
	case opPending:
		return nil, false
	case opFailed:
		return &o.message, true
	case opComplete:
		return &o.details, true
	default:
		return nil, false
	}
}

func (o *opOutcome) SetArm(discriminant uint32) (any, bool, error) {
	switch discriminant {
	case opPending:
		o.state = opPending
		return nil, false, nil
	case opFailed:
		o.state = opFailed
		return &o.message, true, nil
	case opComplete:
		o.state = opComplete
		return &o.details, true, nil
	default:
		return nil, false, &Error{Kind: KindInvalidDiscriminant, Disc: int32(discriminant)}
	}
}

var _ Union = (*opOutcome)(nil)

// TestUnionVoidArmRoundTrip covers the unit/void arm: only the
// discriminant is on the wire, decode succeeds, and no payload fields
// are touched.
func TestUnionVoidArmRoundTrip(t *testing.T) {
	original := &opOutcome{state: opPending}

	data, err := Marshal(original)
	require.NoError(t, err)
	assert.Len(t, data, 4, "a void arm encodes only the 4-byte discriminant")

	decoded := &opOutcome{state: opComplete, details: transferDetails{BytesMoved: 1, Checksum: 2}}
	require.NoError(t, Unmarshal(data, decoded))
	assert.Equal(t, opPending, decoded.state)
	assert.Equal(t, transferDetails{BytesMoved: 1, Checksum: 2}, decoded.details, "void arm must not touch unrelated fields")
}

// TestUnionStructArmRoundTrip covers the multi-field/struct arm: the
// driver must recurse into transferDetails's own fields under the union
// dispatch, not just decode a single scalar.
func TestUnionStructArmRoundTrip(t *testing.T) {
	original := &opOutcome{state: opComplete, details: transferDetails{BytesMoved: 4096, Checksum: 0xDEADBEEF}}

	data, err := Marshal(original)
	require.NoError(t, err)
	// discriminant (4) + BytesMoved uint64 (8) + Checksum uint32 (4)
	assert.Len(t, data, 16)

	var decoded opOutcome
	require.NoError(t, Unmarshal(data, &decoded))
	assert.Equal(t, opComplete, decoded.state)
	assert.Equal(t, original.details, decoded.details)
}
