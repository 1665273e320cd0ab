package circuitshapes

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reilabs/provekit-go/internal/field"
	"github.com/reilabs/provekit-go/internal/r1cs"
	"github.com/reilabs/provekit-go/internal/serialize"
	"github.com/reilabs/provekit-go/internal/transcript"
	"github.com/reilabs/provekit-go/internal/witness"
)

// TestBuildAndCheckSatisfiedCircuit compiles x*y+3=z (x,y public; z
// private), solves it, and checks the re-derived gnark circuit
// accepts the same witness the native solver produced.
func TestBuildAndCheckSatisfiedCircuit(t *testing.T) {
	inst, err := r1cs.Compile([]r1cs.Opcode{
		r1cs.AssertZero{
			MulTerms: []r1cs.MulTerm{{Coeff: field.One(), A: 0, B: 1}},
			Linear:   []r1cs.LinearTerm{{Coeff: field.Neg(field.One()), Witness: 2}},
			QC:       field.FromUint64(3),
		},
	})
	require.NoError(t, err)

	prog, err := witness.NewProgram(inst.Builders)
	require.NoError(t, err)
	acir := []field.Element{field.FromUint64(7), field.FromUint64(11), field.FromUint64(80)}
	w, err := prog.Solve(acir, transcript.New(), nil)
	require.NoError(t, err)

	doc, err := serialize.EncodeR1CS(inst, 2)
	require.NoError(t, err)

	circuit, assignment, err := Build(doc, w)
	require.NoError(t, err)
	require.NoError(t, CheckSatisfiability(circuit, assignment))
}

// TestBuildRejectsWrongWitnessLength checks the document/witness
// length cross-check fires before any gnark compilation is attempted.
func TestBuildRejectsWrongWitnessLength(t *testing.T) {
	inst, err := r1cs.Compile([]r1cs.Opcode{
		r1cs.AssertZero{
			MulTerms: []r1cs.MulTerm{{Coeff: field.One(), A: 0, B: 1}},
			Linear:   []r1cs.LinearTerm{{Coeff: field.Neg(field.One()), Witness: 2}},
			QC:       field.FromUint64(3),
		},
	})
	require.NoError(t, err)
	doc, err := serialize.EncodeR1CS(inst, 2)
	require.NoError(t, err)

	_, _, err = Build(doc, []field.Element{field.Zero()})
	require.Error(t, err)
}
