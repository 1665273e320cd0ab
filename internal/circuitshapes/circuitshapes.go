// Package circuitshapes is a thin gnark adapter that re-expresses a
// compiled R1CS instance's A/B/C matrices as frontend.Variable
// arithmetic (spec's domain-stack: "circuit-side cross-validation of
// compiled instances"). It exists to catch compiler bugs a different
// way than the native prover does: if the native Spartan sum-check
// and an independently re-derived gnark R1CS both accept the same
// witness, a bug specific to one implementation is unlikely to be the
// reason a test passes.
//
// This package never appears on the proving hot path — it is a
// differential-testing and debugging tool, built from the same
// app/circuit/matrix_evaluation.go shape teacher's own in-circuit
// verifier checks its matrices with, just evaluated as a standalone
// gnark circuit rather than inside the larger WHIR verifier.
package circuitshapes

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	gnarkr1cs "github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/test"

	"github.com/reilabs/provekit-go/internal/field"
	"github.com/reilabs/provekit-go/internal/serialize"
)

// MatrixEntry is one (row, col, coefficient) triplet, coefficient
// already resolved out of the R1CS interner. It is a plain value, not
// a frontend.Variable, since matrix coefficients are circuit
// constants baked in at Define time, not part of the witness.
type MatrixEntry struct {
	Row, Col int
	Value    *big.Int
}

// Circuit reconstructs Az∘Bz=Cz from one compiled instance's sparse
// matrices row by row, the same accumulate-then-multiply shape as
// app/circuit/matrix_evaluation.go's evaluateR1CSMatrixExtension, but
// checking satisfiability of a concrete witness rather than an
// opening claim at a random point.
type Circuit struct {
	numRows int
	a, b, c []MatrixEntry

	// PublicInputs and Private together make up witness columns
	// [1, NumWitnesses): column 0, the constant-one wire, is never a
	// declared gnark variable since gnark supplies its own.
	PublicInputs []frontend.Variable `gnark:",public"`
	Private      []frontend.Variable `gnark:",secret"`
}

func (c *Circuit) full() []frontend.Variable {
	z := make([]frontend.Variable, 1+len(c.PublicInputs)+len(c.Private))
	z[0] = frontend.Variable(1)
	copy(z[1:], c.PublicInputs)
	copy(z[1+len(c.PublicInputs):], c.Private)
	return z
}

// Define implements frontend.Circuit.
func (c *Circuit) Define(api frontend.API) error {
	z := c.full()
	az := make([]frontend.Variable, c.numRows)
	bz := make([]frontend.Variable, c.numRows)
	cz := make([]frontend.Variable, c.numRows)
	for i := range az {
		az[i], bz[i], cz[i] = frontend.Variable(0), frontend.Variable(0), frontend.Variable(0)
	}
	accumulate := func(entries []MatrixEntry, acc []frontend.Variable) {
		for _, e := range entries {
			acc[e.Row] = api.Add(acc[e.Row], api.Mul(frontend.Variable(e.Value), z[e.Col]))
		}
	}
	accumulate(c.a, az)
	accumulate(c.b, bz)
	accumulate(c.c, cz)
	for i := range az {
		api.AssertIsEqual(api.Mul(az[i], bz[i]), cz[i])
	}
	return nil
}

// Build materializes a Circuit and a matching assignment from an
// R1CSDocument and the full solved witness (including slot 0, the
// constant one, which Build drops since gnark owns that wire itself).
func Build(doc *serialize.R1CSDocument, witness []field.Element) (circuit *Circuit, assignment *Circuit, err error) {
	if uint64(len(witness)) != doc.Witnesses {
		return nil, nil, fmt.Errorf("circuitshapes: witness has %d entries, document declares %d", len(witness), doc.Witnesses)
	}
	values, err := serialize.DecodeInternerValues(doc)
	if err != nil {
		return nil, nil, err
	}

	resolve := func(sm serialize.SparseMatrixDoc) []MatrixEntry {
		raw := serialize.DecodeMatrixEntries(sm)
		out := make([]MatrixEntry, len(raw))
		for i, e := range raw {
			out[i] = MatrixEntry{Row: e.Row, Col: e.Col, Value: serialize.FromRepr(values[e.ValueIdx]).ToBigInt()}
		}
		return out
	}

	numPublic := int(doc.PublicInputs)
	circuit = &Circuit{
		numRows:      int(doc.Constraints),
		a:            resolve(doc.A),
		b:            resolve(doc.B),
		c:            resolve(doc.C),
		PublicInputs: make([]frontend.Variable, numPublic),
		Private:      make([]frontend.Variable, int(doc.Witnesses)-1-numPublic),
	}

	assignment = &Circuit{
		numRows:      circuit.numRows,
		a:            circuit.a,
		b:            circuit.b,
		c:            circuit.c,
		PublicInputs: make([]frontend.Variable, numPublic),
		Private:      make([]frontend.Variable, len(circuit.Private)),
	}
	for i := 0; i < numPublic; i++ {
		assignment.PublicInputs[i] = witness[1+i].ToBigInt()
	}
	for i := range assignment.Private {
		assignment.Private[i] = witness[1+numPublic+i].ToBigInt()
	}
	return circuit, assignment, nil
}

// CheckSatisfiability compiles circuit and runs gnark's constraint
// solver against assignment, the fast "solver only" cross-check the
// teacher's TestCircuitConstraintsSolverOnly runs before ever touching
// a proving key.
func CheckSatisfiability(circuit, assignment *Circuit) error {
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), gnarkr1cs.NewBuilder, circuit)
	if err != nil {
		return fmt.Errorf("circuitshapes: compiling: %w", err)
	}
	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return fmt.Errorf("circuitshapes: building witness: %w", err)
	}
	if _, err := ccs.Solve(w); err != nil {
		return fmt.Errorf("circuitshapes: constraint system not satisfied: %w", err)
	}
	return nil
}

// CheckWithBackend is CheckSatisfiability's full-backend counterpart,
// exercising the actual Groth16 setup/prove/verify cycle the way
// test.Assert.CheckCircuit does in the teacher's
// TestCircuitConstraints, for cases where catching a backend-specific
// (rather than purely solver-level) soundness gap is worth the extra
// cost. Takes a *testing.T since gnark's test.Assert is itself a
// testing helper, not a standalone checker.
func CheckWithBackend(t *testing.T, circuit, assignment *Circuit) {
	assert := test.NewAssert(t)
	assert.CheckCircuit(circuit, test.WithValidAssignment(assignment), test.WithCurves(ecc.BN254), test.WithBackends(backend.GROTH16))
}

// Prove runs a real Groth16 setup/prove/verify cycle, independent of
// test.Assert, for callers (e.g. a CLI diagnostic command) that want
// an actual proof object rather than a pass/fail assertion.
func Prove(circuit, assignment *Circuit) (constraint.ConstraintSystem, groth16.Proof, error) {
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), gnarkr1cs.NewBuilder, circuit)
	if err != nil {
		return nil, nil, fmt.Errorf("circuitshapes: compiling: %w", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, nil, fmt.Errorf("circuitshapes: groth16 setup: %w", err)
	}
	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, nil, fmt.Errorf("circuitshapes: building witness: %w", err)
	}
	proof, err := groth16.Prove(ccs, pk, w)
	if err != nil {
		return nil, nil, fmt.Errorf("circuitshapes: groth16 prove: %w", err)
	}
	publicWitness, err := w.Public()
	if err != nil {
		return nil, nil, fmt.Errorf("circuitshapes: extracting public witness: %w", err)
	}
	if err := groth16.Verify(proof, vk, publicWitness); err != nil {
		return nil, nil, fmt.Errorf("circuitshapes: groth16 verify: %w", err)
	}
	return ccs, proof, nil
}
