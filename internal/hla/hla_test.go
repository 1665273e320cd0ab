package hla

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func reg(t RegisterType, r FreshRegister) ReifiedRegister[FreshRegister] {
	return ReifiedRegister[FreshRegister]{Reg: r, Type: t}
}

// TestAllocateReusesFreedRegister checks that once a fresh register's
// lifetime ends, its hardware slot becomes available to a later
// instruction rather than forcing allocation to grow unboundedly.
func TestAllocateReusesFreedRegister(t *testing.T) {
	// r0 = mov; r1 = add r0, r0; r2 = add r1, r1 -- r0 dies after
	// instruction 1, so r2's allocation may reuse its hardware slot.
	instructions := []Instruction[FreshRegister]{
		{Opcode: "mov", Results: []ReifiedRegister[FreshRegister]{reg(RegisterGeneral, 0)}},
		{
			Opcode:   "add",
			Results:  []ReifiedRegister[FreshRegister]{reg(RegisterGeneral, 1)},
			Operands: []ReifiedRegister[FreshRegister]{reg(RegisterGeneral, 0), reg(RegisterGeneral, 0)},
		},
		{
			Opcode:   "add",
			Results:  []ReifiedRegister[FreshRegister]{reg(RegisterGeneral, 2)},
			Operands: []ReifiedRegister[FreshRegister]{reg(RegisterGeneral, 1), reg(RegisterGeneral, 1)},
		},
	}
	lifetimes := ComputeLifetimes(instructions)
	require.Equal(t, Lifetime{Begin: 0, End: 1}, lifetimes[0])
	require.Equal(t, Lifetime{Begin: 1, End: 2}, lifetimes[1])
	require.Equal(t, Lifetime{Begin: 2, End: 2}, lifetimes[2])

	bank := NewRegisterBank()
	mapping := NewRegisterMapping()
	out := Allocate(mapping, bank, instructions, lifetimes)
	require.Len(t, out, 3)

	r0 := out[0].Results[0].Reg
	r2 := out[2].Results[0].Reg
	require.Equal(t, r0, r2, "r0's hardware register should have been freed and reused by r2")
}

// TestReserveOutputVariablePinsRegister checks that a pinned output
// register is not handed to an unrelated fresh register whose
// lifetime overlaps the pin.
func TestReserveOutputVariablePinsRegister(t *testing.T) {
	instructions := []Instruction[FreshRegister]{
		{Opcode: "mov", Results: []ReifiedRegister[FreshRegister]{reg(RegisterGeneral, 0)}},
		{Opcode: "mov", Results: []ReifiedRegister[FreshRegister]{reg(RegisterGeneral, 1)}},
		{
			Opcode:   "add",
			Results:  []ReifiedRegister[FreshRegister]{reg(RegisterGeneral, 2)},
			Operands: []ReifiedRegister[FreshRegister]{reg(RegisterGeneral, 0), reg(RegisterGeneral, 1)},
		},
	}
	lifetimes := ComputeLifetimes(instructions)

	bank := NewRegisterBank()
	ReserveOutputVariable(bank, lifetimes, FreshVariable{Label: "out", Registers: []ReifiedRegister[FreshRegister]{reg(RegisterGeneral, 2)}})

	mapping := NewRegisterMapping()
	out := Allocate(mapping, bank, instructions, lifetimes)

	pinned := out[2].Results[0].Reg
	require.NotEqual(t, pinned, out[0].Results[0].Reg)
	require.NotEqual(t, pinned, out[1].Results[0].Reg)
}

// TestAllocateExhaustionPanics checks that requesting more
// simultaneously-live general-purpose registers than the bank holds
// is a fatal, non-recoverable error, matching spec §7's "HLA register
// exhaustion: fatal at codegen time".
func TestAllocateExhaustionPanics(t *testing.T) {
	var operands []ReifiedRegister[FreshRegister]
	var instructions []Instruction[FreshRegister]
	for i := 0; i < 30; i++ {
		r := reg(RegisterGeneral, FreshRegister(i))
		instructions = append(instructions, Instruction[FreshRegister]{Opcode: "mov", Results: []ReifiedRegister[FreshRegister]{r}})
		operands = append(operands, r)
	}
	// One instruction reading every live register at once keeps all
	// 30 alive simultaneously -- more than the 26-register general
	// purpose bank holds.
	instructions = append(instructions, Instruction[FreshRegister]{Opcode: "sum", Operands: operands})

	lifetimes := ComputeLifetimes(instructions)
	bank := NewRegisterBank()
	mapping := NewRegisterMapping()

	require.Panics(t, func() { Allocate(mapping, bank, instructions, lifetimes) })
}
