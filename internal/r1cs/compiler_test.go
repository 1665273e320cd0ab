package r1cs

import (
	"testing"

	"github.com/reilabs/provekit-go/internal/field"
	"github.com/reilabs/provekit-go/internal/transcript"
	"github.com/reilabs/provekit-go/internal/witness"
	"github.com/stretchr/testify/require"
)

func assertSatisfied(t *testing.T, inst *Instance, w []field.Element) {
	t.Helper()
	az := inst.A.MulVec(w)
	bz := inst.B.MulVec(w)
	cz := inst.C.MulVec(w)
	for i := range az {
		require.True(t, field.Equal(field.Mul(az[i], bz[i]), cz[i]), "row %d unsatisfied", i)
	}
}

// TestCompileMultiplyAddConstant compiles x*y + 3 - z = 0 and checks
// that x=7, y=11, z=80 satisfies it (the x*y+3=z scenario).
func TestCompileMultiplyAddConstant(t *testing.T) {
	opcodes := []Opcode{
		AssertZero{
			MulTerms: []MulTerm{{Coeff: field.One(), A: 0, B: 1}},
			Linear:   []LinearTerm{{Coeff: field.Neg(field.One()), Witness: 2}},
			QC:       field.FromUint64(3),
		},
	}
	inst, err := Compile(opcodes)
	require.NoError(t, err)

	prog, err := witness.NewProgram(inst.Builders)
	require.NoError(t, err)

	acir := []field.Element{field.FromUint64(7), field.FromUint64(11), field.FromUint64(80)}
	w, err := prog.Solve(acir, transcript.New(), nil)
	require.NoError(t, err)
	require.Len(t, w, inst.NumWitnesses())

	assertSatisfied(t, inst, w)
}

func TestCompileRejectsMemoryReadBeforeInit(t *testing.T) {
	_, err := Compile([]Opcode{
		MemoryOp{BlockID: 0, Index: MemoryIndex{IsConst: true, Const: 0}, Value: 0},
	})
	require.Error(t, err)
}

func TestCompileROMLookupSatisfied(t *testing.T) {
	opcodes := []Opcode{
		MemoryInit{BlockID: 0, Init: []int{0, 1, 2}},
		MemoryOp{BlockID: 0, Index: MemoryIndex{IsConst: true, Const: 1}, Value: 3},
		MemoryOp{BlockID: 0, Index: MemoryIndex{IsConst: false, Witness: 4}, Value: 5},
	}
	inst, err := Compile(opcodes)
	require.NoError(t, err)

	prog, err := witness.NewProgram(inst.Builders)
	require.NoError(t, err)

	// memory values 10,20,30 at addresses 0,1,2; static read of addr 1
	// must yield 20; dynamic read of addr witness (value 2) must yield 30.
	acir := []field.Element{
		field.FromUint64(10), field.FromUint64(20), field.FromUint64(30),
		field.FromUint64(20), // value expected from static read of addr 1
		field.FromUint64(2),  // dynamic address
		field.FromUint64(30), // value expected from dynamic read
	}
	w, err := prog.Solve(acir, transcript.New(), nil)
	require.NoError(t, err)
	assertSatisfied(t, inst, w)
}
