// Package r1cs compiles a stream of ACIR-shaped opcodes into an R1CS
// instance: the A/B/C constraint matrices plus the witness-builder
// program (internal/witness) that derives every witness value from
// ACIR inputs, earlier witnesses, or transcript challenges.
package r1cs

import (
	"github.com/reilabs/provekit-go/internal/field"
	"github.com/reilabs/provekit-go/internal/memcheck"
)

// RowEntry is one (column, coefficient) term of a constraint row
// being assembled, before it's written into a sparse.Matrix. Aliased
// to memcheck.RowEntry (rather than a field-for-field copy) so
// *Instance satisfies memcheck.Target without an adapter method: Go
// has no method overloading, so AddConstraint can only have one
// parameter type, and memcheck -- the package that defines Target --
// must not import r1cs back (see memcheck's package doc).
type RowEntry = memcheck.RowEntry

// Opcode is one ACIR-level instruction. The concrete set below covers
// the opcode shapes SPEC_FULL.md's external-interfaces section names:
// AssertZero, MemoryInit, MemoryOp, a handful of BlackBoxFuncCall
// variants, and BrilligCall (present only so callers can feed in a
// full opcode stream; Compile ignores it, mirroring the reference's
// "Brillig produces ACIR witnesses the AssertZero opcodes already
// constrain" reasoning).
type Opcode interface{ isOpcode() }

// MulTerm is one (coeff, a, b) quadratic summand of an AssertZero
// expression, referencing ACIR witness indices.
type MulTerm struct {
	Coeff field.Element
	A, B  int
}

// LinearTerm is one (coeff, witness) linear summand of an AssertZero
// expression.
type LinearTerm struct {
	Coeff   field.Element
	Witness int
}

// AssertZero constrains MulTerms + LinearTerms + QC == 0.
type AssertZero struct {
	MulTerms []MulTerm
	Linear   []LinearTerm
	QC       field.Element
}

func (AssertZero) isOpcode() {}

// MemoryKind distinguishes a read-only block (closed with an indexed
// LogUp lookup) from a read/write block (closed with internal/
// memcheck's Spice offline multiset argument). The zero value is
// MemoryROM, so existing opcode streams that never set Kind keep
// their original read-only behavior.
type MemoryKind int

const (
	MemoryROM MemoryKind = iota
	MemoryRAM
)

// MemoryInit declares a memory block, populated from the given ACIR
// witness indices. Kind selects whether it is closed as ROM or RAM at
// compilation end.
type MemoryInit struct {
	BlockID int
	Init    []int // ACIR witness index per memory cell
	Kind    MemoryKind
}

func (MemoryInit) isOpcode() {}

// MemoryIndex is either a compile-time-known address or an ACIR
// witness holding the address at solve time.
type MemoryIndex struct {
	IsConst bool
	Const   uint64
	Witness int
}

// MemoryOpKind selects whether a MemoryOp is a read or a write. The
// zero value is OpLoad, so existing opcode streams that never set
// Kind keep reading as before. OpStore is only valid against a
// MemoryRAM block.
type MemoryOpKind int

const (
	OpLoad MemoryOpKind = iota
	OpStore
)

// MemoryOp reads or writes BlockID at Index. For a load, the result
// is available as the ACIR witness Value; for a store, Value is the
// ACIR witness holding the value being written.
type MemoryOp struct {
	BlockID int
	Kind    MemoryOpKind
	Index   MemoryIndex
	Value   int
}

func (MemoryOp) isOpcode() {}

// RangeCheck constrains an ACIR witness to fit in NumBits bits.
type RangeCheck struct {
	Witness int
	NumBits int
}

func (RangeCheck) isOpcode() {}

// AndOp / XorOp are byte-decomposed bitwise opcodes, backed by the
// combined AND/XOR LogUp table (internal/witness.BinOpAtomicBits).
type AndOp struct{ Lhs, Rhs, Output int }
type XorOp struct{ Lhs, Rhs, Output int }

func (AndOp) isOpcode() {}
func (XorOp) isOpcode() {}

// BrilligCall is accepted in the opcode stream and ignored: its
// outputs surface as ordinary ACIR witnesses, already constrained by
// the AssertZero opcodes the Noir compiler emits alongside it.
type BrilligCall struct{}

func (BrilligCall) isOpcode() {}

// Sha256Compression invokes the SHA-256 compression function over one
// 512-bit input block and an 8-word hash state, both given as ACIR
// witness indices holding 32-bit values, producing an 8-word output
// state. Every input/state/output word is constrained against its
// byte decomposition the same way AndOp/XorOp constrain single bytes;
// Compile expands this single opcode into the full message-schedule +
// 64-round compression gadget.
type Sha256Compression struct {
	Inputs  [16]int
	State   [8]int
	Outputs [8]int
}

func (Sha256Compression) isOpcode() {}

// Poseidon2Permutation invokes the Poseidon2 permutation over a
// t-element state (t in {2, 3, 4, 8, 12, 16}), each element an ACIR
// witness holding a field element directly (no byte decomposition
// needed — Poseidon2 is a field-native permutation).
type Poseidon2Permutation struct {
	Width   int
	Inputs  []int
	Outputs []int
}

func (Poseidon2Permutation) isOpcode() {}
