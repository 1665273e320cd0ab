package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reilabs/provekit-go/internal/field"
	"github.com/reilabs/provekit-go/internal/r1cs"
)

// TestComputeStats checks the demonstrator's tally against a small
// hand-built opcode stream covering every counted variant.
func TestComputeStats(t *testing.T) {
	opcodes := []r1cs.Opcode{
		r1cs.AssertZero{
			MulTerms: []r1cs.MulTerm{{Coeff: field.One(), A: 0, B: 1}},
			QC:       field.Zero(),
		},
		r1cs.MemoryInit{BlockID: 0, Init: []int{1, 2}, Kind: r1cs.MemoryRAM},
		r1cs.MemoryOp{BlockID: 0, Kind: r1cs.OpStore, Index: r1cs.MemoryIndex{IsConst: true, Const: 0}, Value: 3},
		r1cs.MemoryOp{BlockID: 0, Kind: r1cs.OpLoad, Index: r1cs.MemoryIndex{IsConst: true, Const: 0}, Value: 4},
		r1cs.RangeCheck{Witness: 5, NumBits: 16},
		r1cs.RangeCheck{Witness: 6, NumBits: 16},
		r1cs.AndOp{Lhs: 7, Rhs: 8, Output: 9},
		r1cs.XorOp{Lhs: 10, Rhs: 11, Output: 12},
		r1cs.BrilligCall{},
	}

	stats := computeStats(opcodes)
	require.Equal(t, 1, stats.AssertZero)
	require.Equal(t, 1, stats.MemoryInit)
	require.Equal(t, 2, stats.MemoryOp)
	require.Equal(t, 1, stats.MemoryLoads)
	require.Equal(t, 1, stats.MemoryStores)
	require.Equal(t, 2, stats.RangeCheck)
	require.Equal(t, 2, stats.RangeCheckBitDist[16])
	require.Equal(t, 1, stats.And)
	require.Equal(t, 1, stats.Xor)
	require.Equal(t, 1, stats.BrilligCall)
	require.Greater(t, stats.EstimatedRows, 0)
}
