package r1cs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reilabs/provekit-go/internal/field"
)

// TestOpcodeWireRoundTrip exercises every opcode variant through
// encode, JSON marshal/unmarshal, and decode, checking the decoded
// opcode slice matches the original.
func TestOpcodeWireRoundTrip(t *testing.T) {
	original := []Opcode{
		AssertZero{
			MulTerms: []MulTerm{{Coeff: field.FromUint64(3), A: 0, B: 1}},
			Linear:   []LinearTerm{{Coeff: field.Neg(field.One()), Witness: 2}},
			QC:       field.FromUint64(7),
		},
		MemoryInit{BlockID: 0, Init: []int{1, 2, 3}, Kind: MemoryRAM},
		MemoryOp{BlockID: 0, Kind: OpStore, Index: MemoryIndex{IsConst: true, Const: 1}, Value: 4},
		MemoryOp{BlockID: 0, Kind: OpLoad, Index: MemoryIndex{Witness: 5}, Value: 6},
		RangeCheck{Witness: 7, NumBits: 16},
		AndOp{Lhs: 8, Rhs: 9, Output: 10},
		XorOp{Lhs: 11, Rhs: 12, Output: 13},
		BrilligCall{},
		Sha256Compression{
			Inputs:  [16]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
			State:   [8]int{16, 17, 18, 19, 20, 21, 22, 23},
			Outputs: [8]int{24, 25, 26, 27, 28, 29, 30, 31},
		},
		Poseidon2Permutation{Width: 4, Inputs: []int{0, 1, 2, 3}, Outputs: []int{4, 5, 6, 7}},
	}

	docs, err := EncodeOpcodes(original)
	require.NoError(t, err)

	data, err := json.Marshal(ProgramDoc{PublicInputs: 2, Opcodes: docs})
	require.NoError(t, err)

	var doc ProgramDoc
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Equal(t, 2, doc.PublicInputs)

	decoded, err := DecodeOpcodes(doc.Opcodes)
	require.NoError(t, err)
	require.Equal(t, original, decoded)
}

// TestHexFieldElementRoundTrip checks the little-endian hex encoding
// used by every opcode coefficient survives encode/decode.
func TestHexFieldElementRoundTrip(t *testing.T) {
	for _, v := range []field.Element{field.Zero(), field.One(), field.FromUint64(123456789), field.Neg(field.One())} {
		s := hexEncodeElement(v)
		got, err := hexDecodeElement(s)
		require.NoError(t, err)
		require.True(t, field.Equal(v, got))
	}
}

// TestDecodeOpcodesRejectsUnknownKind checks a malformed opcode
// stream fails fast rather than silently compiling an incomplete
// circuit.
func TestDecodeOpcodesRejectsUnknownKind(t *testing.T) {
	_, err := DecodeOpcodes([]OpcodeDoc{{Kind: "not_a_real_opcode"}})
	require.Error(t, err)
}

// TestWitnessWireRoundTrip checks the ACIR witness-map file format.
func TestWitnessWireRoundTrip(t *testing.T) {
	original := []field.Element{field.FromUint64(1), field.FromUint64(42), field.Neg(field.FromUint64(5))}
	doc := EncodeWitness(original)

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	var roundTripped WitnessDoc
	require.NoError(t, json.Unmarshal(data, &roundTripped))

	decoded, err := DecodeWitness(roundTripped)
	require.NoError(t, err)
	require.Equal(t, len(original), len(decoded))
	for i := range original {
		require.True(t, field.Equal(original[i], decoded[i]))
	}
}
