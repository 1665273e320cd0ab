// Package serialize wraps github.com/reilabs/go-ark-serialize to move
// field elements, R1CS matrices and proof structures in and out of the
// arkworks canonical wire format (spec §8's transcript/file encodings),
// the same format app/circuit's gnark verifier reads on the other side
// of the toolchain.
//
// go-ark-serialize works by reflecting over plain Go structs whose
// fields are themselves canonical-form integers, fixed-size arrays or
// slices of those (see the teacher's Fp256{Limbs [4]uint64} and
// KeccakDigest{KeccakDigest [32]uint8}) rather than through a custom
// Marshal interface. field.Element stores its limbs in Montgomery
// form, so every conversion in this package goes through Repr, the
// canonical (non-Montgomery) wire shape arkworks expects.
package serialize

import (
	"bytes"
	"math/big"

	arkSerialize "github.com/reilabs/go-ark-serialize"

	"github.com/reilabs/provekit-go/internal/field"
)

// Repr is the arkworks-canonical, non-Montgomery wire representation
// of one BN254 scalar field element: four little-endian 64-bit limbs,
// mirroring the teacher's Fp256{Limbs [4]uint64}.
type Repr struct {
	Limbs [4]uint64
}

// ToRepr converts e to its canonical wire representation.
func ToRepr(e field.Element) Repr {
	v := e.ToBigInt()
	var out Repr
	mask := new(big.Int).SetUint64(^uint64(0))
	t := new(big.Int).Set(v)
	for i := 0; i < 4; i++ {
		out.Limbs[i] = new(big.Int).And(t, mask).Uint64()
		t.Rsh(t, 64)
	}
	return out
}

// FromRepr recovers a field.Element from its canonical wire
// representation.
func FromRepr(r Repr) field.Element {
	v := new(big.Int)
	for i := 3; i >= 0; i-- {
		v.Lsh(v, 64)
		v.Or(v, new(big.Int).SetUint64(r.Limbs[i]))
	}
	return field.FromBigInt(v)
}

// ToReprSlice converts a slice of field elements to their wire
// representation, in order.
func ToReprSlice(es []field.Element) []Repr {
	out := make([]Repr, len(es))
	for i, e := range es {
		out[i] = ToRepr(e)
	}
	return out
}

// FromReprSlice is the inverse of ToReprSlice.
func FromReprSlice(rs []Repr) []field.Element {
	out := make([]field.Element, len(rs))
	for i, r := range rs {
		out[i] = FromRepr(r)
	}
	return out
}

// Marshal encodes v (a Repr, a slice of Repr, or any other plain
// struct go-ark-serialize can reflect over) in arkworks' uncompressed
// canonical form.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := arkSerialize.CanonicalSerializeWithMode(&buf, v, false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes data into target (a pointer to a Repr, a slice of
// Repr, or any other plain struct go-ark-serialize can reflect over).
func Unmarshal(data []byte, target any) error {
	_, err := arkSerialize.CanonicalDeserializeWithMode(bytes.NewReader(data), target, false, false)
	return err
}

// MarshalElements is the field.Element-typed convenience wrapper
// around Marshal(ToReprSlice(es)), the shape the teacher's
// "deferred_weight_evaluations" and "claimed_evaluations" transcript
// hints deserialize.
func MarshalElements(es []field.Element) ([]byte, error) {
	return Marshal(ToReprSlice(es))
}

// UnmarshalElements is the inverse of MarshalElements.
func UnmarshalElements(data []byte) ([]field.Element, error) {
	var reprs []Repr
	if err := Unmarshal(data, &reprs); err != nil {
		return nil, err
	}
	return FromReprSlice(reprs), nil
}
