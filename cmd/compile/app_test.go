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
)

// multiplyAddOpcodeStream is x*y+3=z (x, y public; z private), the
// same fixture internal/r1cs and internal/spartan's own tests build,
// written out as the JSON opcode-stream file cmd/compile expects.
func multiplyAddOpcodeStream(t *testing.T) string {
	t.Helper()
	opcodes := []r1cs.Opcode{
		r1cs.AssertZero{
			MulTerms: []r1cs.MulTerm{{Coeff: field.One(), A: 0, B: 1}},
			Linear:   []r1cs.LinearTerm{{Coeff: field.Neg(field.One()), Witness: 2}},
			QC:       field.FromUint64(3),
		},
	}
	docs, err := r1cs.EncodeOpcodes(opcodes)
	require.NoError(t, err)
	data, err := json.Marshal(r1cs.ProgramDoc{PublicInputs: 2, Opcodes: docs})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "opcodes.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// TestCompileCommandWritesR1CSDocument runs the compile subcommand
// end to end against a real opcode-stream file and checks the
// resulting document's counts are what r1cs.Compile gives x*y+3=z:
// the constant-one witness plus x, y and z, and one constraint.
func TestCompileCommandWritesR1CSDocument(t *testing.T) {
	opcodesPath := multiplyAddOpcodeStream(t)
	outPath := filepath.Join(t.TempDir(), "r1cs.json")

	err := newApp().Run([]string{"compile", "-opcodes", opcodesPath, "-out", outPath})
	require.NoError(t, err)

	doc, err := serialize.ReadR1CS(outPath)
	require.NoError(t, err)
	require.Equal(t, uint64(2), doc.PublicInputs)
	require.Equal(t, uint64(4), doc.Witnesses)
	require.Equal(t, uint64(1), doc.Constraints)
}

// TestCircuitStatsCommandRuns checks the demonstrator subcommand
// accepts a real opcode-stream file and a matching witness file
// without erroring.
func TestCircuitStatsCommandRuns(t *testing.T) {
	opcodesPath := multiplyAddOpcodeStream(t)

	witnessDoc := r1cs.EncodeWitness([]field.Element{field.FromUint64(7), field.FromUint64(11), field.FromUint64(80)})
	witnessData, err := json.Marshal(witnessDoc)
	require.NoError(t, err)
	witnessPath := filepath.Join(t.TempDir(), "witness.json")
	require.NoError(t, os.WriteFile(witnessPath, witnessData, 0o644))

	err = newApp().Run([]string{"compile", "circuit_stats", opcodesPath, witnessPath})
	require.NoError(t, err)
}
