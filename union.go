package xdr

// Union is implemented by Go types that model an XDR discriminated union
// (RFC 4506 §4.15): a 4-byte discriminant followed by the arm payload
// selected by that discriminant, if any. Go has no sum types, so the
// driver asks a Union-implementing value to select and expose its own
// active arm rather than walking its fields generically.
type Union interface {
	// Discriminant returns the value to encode as the union's 4-byte
	// discriminant.
	Discriminant() uint32

	// Arm returns the payload to encode for the given discriminant, and
	// whether that arm carries a payload at all (a "void" arm encodes
	// only the discriminant). discriminant is always the receiver's own
	// Discriminant() value; it is passed explicitly so one Arm
	// implementation can serve every discriminant via a switch.
	Arm(discriminant uint32) (payload any, hasPayload bool)

	// SetArm is called during decode once the discriminant has been
	// read off the wire. It returns a pointer to decode the selected
	// arm's payload into (dest), whether that arm carries a payload,
	// and an error if discriminant does not match any known arm
	// (KindInvalidDiscriminant). When hasPayload is false, dest is
	// ignored and only the discriminant is consumed.
	SetArm(discriminant uint32) (dest any, hasPayload bool, err error)
}

func encodeUnion(enc *Encoder, u Union) error {
	disc := u.Discriminant()
	if err := enc.EncodeUint32(disc); err != nil {
		return err
	}
	payload, hasPayload := u.Arm(disc)
	if !hasPayload {
		return nil
	}
	return encodeTop(enc, payload)
}

func decodeUnion(dec *Decoder, u Union) error {
	disc, err := dec.DecodeUint32()
	if err != nil {
		return err
	}
	dest, hasPayload, err := u.SetArm(disc)
	if err != nil {
		return err
	}
	if !hasPayload {
		return nil
	}
	return decodeTop(dec, dest)
}
