package spartan

import (
	"testing"

	"github.com/reilabs/provekit-go/internal/field"
	"github.com/reilabs/provekit-go/internal/r1cs"
	"github.com/reilabs/provekit-go/internal/transcript"
	"github.com/reilabs/provekit-go/internal/witness"
	"github.com/stretchr/testify/require"
)

func buildMultiplyAddInstance(t *testing.T) (*r1cs.Instance, []field.Element) {
	t.Helper()
	opcodes := []r1cs.Opcode{
		r1cs.AssertZero{
			MulTerms: []r1cs.MulTerm{{Coeff: field.One(), A: 0, B: 1}},
			Linear:   []r1cs.LinearTerm{{Coeff: field.Neg(field.One()), Witness: 2}},
			QC:       field.FromUint64(3),
		},
	}
	inst, err := r1cs.Compile(opcodes)
	require.NoError(t, err)

	prog, err := witness.NewProgram(inst.Builders)
	require.NoError(t, err)

	acir := []field.Element{field.FromUint64(7), field.FromUint64(11), field.FromUint64(80)}
	w, err := prog.Solve(acir, transcript.New(), nil)
	require.NoError(t, err)
	return inst, w
}

func TestProveVerifyRoundTrip(t *testing.T) {
	inst, w := buildMultiplyAddInstance(t)

	proof, err := Prove(inst, w, transcript.New())
	require.NoError(t, err)

	require.NoError(t, Verify(inst, proof, transcript.New()))
}

func TestVerifyRejectsWrongWitness(t *testing.T) {
	inst, w := buildMultiplyAddInstance(t)

	proof, err := Prove(inst, w, transcript.New())
	require.NoError(t, err)

	proof.FinalA = field.Add(proof.FinalA, field.One())
	require.Error(t, Verify(inst, proof, transcript.New()))
}

func TestVerifyRejectsMismatchedTranscript(t *testing.T) {
	inst, w := buildMultiplyAddInstance(t)

	proof, err := Prove(inst, w, transcript.New())
	require.NoError(t, err)

	tr := transcript.New()
	tr.Tag("unexpected")
	require.Error(t, Verify(inst, proof, tr))
}

func TestVerifyRejectsTamperedBlindingOpening(t *testing.T) {
	inst, w := buildMultiplyAddInstance(t)

	proof, err := Prove(inst, w, transcript.New())
	require.NoError(t, err)

	proof.FinalBlind = field.Add(proof.FinalBlind, field.One())
	require.Error(t, Verify(inst, proof, transcript.New()))
}

func TestProveNeverRevealsWitnessCommitmentDirectly(t *testing.T) {
	inst, w := buildMultiplyAddInstance(t)

	proof, err := Prove(inst, w, transcript.New())
	require.NoError(t, err)

	// The witness commitment opening is of maskedZ, not z: its final
	// opened value must differ from both z's final inner sum-check
	// evaluation and from the mask's own opened value, since maskZ is
	// independent randomness additively hiding it.
	require.False(t, field.Equal(proof.MaskedProof.FinalValue, proof.FinalZ))
	require.False(t, field.Equal(proof.MaskedProof.FinalValue, proof.MaskProof.FinalValue))
	require.True(t, field.Equal(field.Sub(proof.MaskedProof.FinalValue, proof.MaskProof.FinalValue), proof.FinalZ))
}

func TestProveBlindsDistinctOuterRoundMessages(t *testing.T) {
	inst, w := buildMultiplyAddInstance(t)

	proofA, err := Prove(inst, w, transcript.New())
	require.NoError(t, err)
	proofB, err := Prove(inst, w, transcript.New())
	require.NoError(t, err)

	// Two independent proofs over the same witness draw fresh blinding
	// randomness each time, so their revealed round messages must
	// differ even though the underlying relation is identical.
	require.NotEqual(t, proofA.OuterRounds, proofB.OuterRounds)
	require.NoError(t, Verify(inst, proofA, transcript.New()))
	require.NoError(t, Verify(inst, proofB, transcript.New()))
}
