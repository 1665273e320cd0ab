package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reilabs/provekit-go/internal/field"
	"github.com/reilabs/provekit-go/internal/r1cs"
	"github.com/reilabs/provekit-go/internal/serialize"
	"github.com/reilabs/provekit-go/internal/spartan"
	"github.com/reilabs/provekit-go/internal/transcript"
)

// writeMultiplyAddFixture writes the opcode-stream and ACIR
// witness-map files for x*y+3=z (x=7, y=11, z=80) into a fresh temp
// directory and returns their paths.
func writeMultiplyAddFixture(t *testing.T) (opcodesPath, witnessPath string) {
	t.Helper()
	dir := t.TempDir()

	opcodes := []r1cs.Opcode{
		r1cs.AssertZero{
			MulTerms: []r1cs.MulTerm{{Coeff: field.One(), A: 0, B: 1}},
			Linear:   []r1cs.LinearTerm{{Coeff: field.Neg(field.One()), Witness: 2}},
			QC:       field.FromUint64(3),
		},
	}
	docs, err := r1cs.EncodeOpcodes(opcodes)
	require.NoError(t, err)
	opcodesData, err := json.Marshal(r1cs.ProgramDoc{PublicInputs: 2, Opcodes: docs})
	require.NoError(t, err)
	opcodesPath = filepath.Join(dir, "opcodes.json")
	require.NoError(t, os.WriteFile(opcodesPath, opcodesData, 0o644))

	witnessDoc := r1cs.EncodeWitness([]field.Element{field.FromUint64(7), field.FromUint64(11), field.FromUint64(80)})
	witnessData, err := json.Marshal(witnessDoc)
	require.NoError(t, err)
	witnessPath = filepath.Join(dir, "witness.json")
	require.NoError(t, os.WriteFile(witnessPath, witnessData, 0o644))
	return opcodesPath, witnessPath
}

// TestProveCommandWritesVerifiableProof runs the prove binary's
// Action end to end and checks the written proof actually verifies
// against the instance it was compiled alongside.
func TestProveCommandWritesVerifiableProof(t *testing.T) {
	opcodesPath, witnessPath := writeMultiplyAddFixture(t)
	outDir := t.TempDir()
	proofPath := filepath.Join(outDir, "proof.json")
	r1csPath := filepath.Join(outDir, "r1cs.json")

	err := newApp().Run([]string{
		"prove",
		"-opcodes", opcodesPath,
		"-witness", witnessPath,
		"-out", proofPath,
		"-r1cs_out", r1csPath,
	})
	require.NoError(t, err)

	proof, err := serialize.ReadProof(proofPath)
	require.NoError(t, err)
	require.NotNil(t, proof.MaskedProof)

	doc, err := serialize.ReadR1CS(r1csPath)
	require.NoError(t, err)
	require.Equal(t, uint64(1), doc.Constraints)

	inst, err := r1cs.Compile([]r1cs.Opcode{
		r1cs.AssertZero{
			MulTerms: []r1cs.MulTerm{{Coeff: field.One(), A: 0, B: 1}},
			Linear:   []r1cs.LinearTerm{{Coeff: field.Neg(field.One()), Witness: 2}},
			QC:       field.FromUint64(3),
		},
	})
	require.NoError(t, err)
	require.NoError(t, spartan.Verify(inst, proof, transcript.New()))
}
