package r1cs

import (
	"math/bits"
	"testing"

	"github.com/reilabs/provekit-go/internal/field"
	"github.com/reilabs/provekit-go/internal/transcript"
	"github.com/reilabs/provekit-go/internal/witness"
	"github.com/stretchr/testify/require"
)

// referenceSha256Compression is a plain uint32 FIPS 180-4 compression
// round, used only to derive the expected output words for
// TestCompileSha256CompressionSatisfied -- it does not touch any
// gadget code under test.
func referenceSha256Compression(block [16]uint32, state [8]uint32) [8]uint32 {
	rotr := bits.RotateLeft32
	var w [64]uint32
	copy(w[:16], block[:])
	for t := 16; t < 64; t++ {
		s0 := rotr(w[t-15], -7) ^ rotr(w[t-15], -18) ^ (w[t-15] >> 3)
		s1 := rotr(w[t-2], -17) ^ rotr(w[t-2], -19) ^ (w[t-2] >> 10)
		w[t] = w[t-16] + s0 + w[t-7] + s1
	}

	a, b, c, d, e, f, g, h := state[0], state[1], state[2], state[3], state[4], state[5], state[6], state[7]
	for t := 0; t < 64; t++ {
		capSigma1 := rotr(e, -6) ^ rotr(e, -11) ^ rotr(e, -25)
		ch := (e & f) ^ (^e & g)
		t1 := h + capSigma1 + ch + sha256K[t] + w[t]
		capSigma0 := rotr(a, -2) ^ rotr(a, -13) ^ rotr(a, -22)
		maj := (a & b) ^ (a & c) ^ (b & c)
		t2 := capSigma0 + maj
		h, g, f, e = g, f, e, d+t1
		d, c, b, a = c, b, a, t1+t2
	}

	return [8]uint32{
		state[0] + a, state[1] + b, state[2] + c, state[3] + d,
		state[4] + e, state[5] + f, state[6] + g, state[7] + h,
	}
}

func TestCompileSha256CompressionSatisfied(t *testing.T) {
	var block [16]uint32
	for i := range block {
		block[i] = uint32(0x61626380+i*0x01010101) + uint32(i)*7
	}
	state := [8]uint32{
		0x6a09e667, 0xbb67ae85, 0x3c6ef372, 0xa54ff53a,
		0x510e527f, 0x9b05688c, 0x1f83d9ab, 0x5be0cd19,
	}
	expected := referenceSha256Compression(block, state)

	inputs := [16]int{}
	stateIdx := [8]int{}
	outputs := [8]int{}
	acir := make([]field.Element, 32)
	for i := 0; i < 16; i++ {
		inputs[i] = i
		acir[i] = field.FromUint64(uint64(block[i]))
	}
	for i := 0; i < 8; i++ {
		stateIdx[i] = 16 + i
		acir[16+i] = field.FromUint64(uint64(state[i]))
	}
	for i := 0; i < 8; i++ {
		outputs[i] = 24 + i
		acir[24+i] = field.FromUint64(uint64(expected[i]))
	}

	opcodes := []Opcode{Sha256Compression{Inputs: inputs, State: stateIdx, Outputs: outputs}}
	inst, err := Compile(opcodes)
	require.NoError(t, err)

	prog, err := witness.NewProgram(inst.Builders)
	require.NoError(t, err)

	w, err := prog.Solve(acir, transcript.New(), nil)
	require.NoError(t, err)
	require.Len(t, w, inst.NumWitnesses())

	assertSatisfied(t, inst, w)
}
