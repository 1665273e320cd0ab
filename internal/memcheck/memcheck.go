// Package memcheck implements the memory-checking half of the R1CS
// compiler (spec §4.7): ROM blocks are closed with an indexed LogUp
// lookup, RAM blocks with a Spice-style offline multiset argument.
//
// This package deliberately does not import internal/r1cs, even
// though it is the R1CS compiler that drives it: r1cs.Instance
// satisfies the Target interface below structurally, so the compiler
// can hand itself to memcheck without memcheck ever depending on the
// compiler's package. That keeps the dependency edge one-directional
// (r1cs -> memcheck, matching "the R1CS compiler calls the ROM or RAM
// checker" in spec §4.6's finalization order) while still letting
// this package live as its own component per the spec's component
// map, rather than as unexported helpers buried in compiler.go.
package memcheck

import (
	"github.com/reilabs/provekit-go/internal/field"
	"github.com/reilabs/provekit-go/internal/witness"
)

// WitnessOne mirrors r1cs.WitnessOne: witness index 0 is always the
// constant-one slot in every Instance this package is handed. Kept as
// a second copy of the same convention (rather than an import) to
// avoid the r1cs<->memcheck import cycle described in the package doc.
const WitnessOne = 0

// RowEntry is one (column, coefficient) constraint-row term.
// r1cs.RowEntry is an alias of this type, so r1cs.Instance's
// AddConstraint method (reached through Target) takes these values
// as they are.
type RowEntry struct {
	Col   int
	Value field.Element
}

// Target is the subset of *r1cs.Instance's exported surface this
// package needs to extend an R1CS instance with memory-checking
// constraints: allocate builders, add constraint rows, and resolve
// ACIR witnesses the same way every other opcode handler does.
type Target interface {
	AddBuilder(n int, make func(first int) witness.Builder) int
	AddConstraint(a, b, c []RowEntry)
	AddProduct(a, b int) int
	AddSum(terms []witness.Term) int
	RangeCheckWitness(x, numBits int) error
	ToR1CSWitness(acirWitness int) int
}

// addIndexedLookupFactor allocates a LogUp denominator for one
// (index, value) pair plus its batch-scheduled inverse, returning the
// inverse witness. Shared by ROM's address/value lookups and the
// byte-range-check table lookup the R1CS compiler builds for RANGE
// opcodes, since both are the same indexed-LogUp shape.
func addIndexedLookupFactor(t Target, rsChallenge, szChallenge int, indexCoeff field.Element, indexWitness, value int) int {
	denominator := t.AddBuilder(1, func(first int) witness.Builder {
		return witness.NewLogUpDenominator(first, szChallenge, rsChallenge, witness.IndexedCoeff{Coeff: indexCoeff, Index: indexWitness}, value)
	})
	t.AddConstraint(
		[]RowEntry{{Col: rsChallenge, Value: field.One()}},
		[]RowEntry{{Col: value, Value: field.One()}},
		[]RowEntry{
			{Col: denominator, Value: field.One()},
			{Col: szChallenge, Value: field.Neg(field.One())},
			{Col: indexWitness, Value: indexCoeff},
		},
	)
	inverse := t.AddBuilder(1, func(first int) witness.Builder { return witness.NewInverse(first, denominator) })
	t.AddConstraint(
		[]RowEntry{{Col: denominator, Value: field.One()}},
		[]RowEntry{{Col: inverse, Value: field.One()}},
		[]RowEntry{{Col: WitnessOne, Value: field.One()}},
	)
	return inverse
}

// AddIndexedLookupFactor exports addIndexedLookupFactor for callers
// outside this package building their own LogUp arguments against the
// same denominator shape (internal/r1cs's byte-range-check table).
func AddIndexedLookupFactor(t Target, rsChallenge, szChallenge int, indexCoeff field.Element, indexWitness, value int) int {
	return addIndexedLookupFactor(t, rsChallenge, szChallenge, indexCoeff, indexWitness, value)
}

// addIndexedLookupFactorConst specializes addIndexedLookupFactor for a
// compile-time-constant index: the "index witness" is WitnessOne and
// the coefficient carries the constant directly.
func addIndexedLookupFactorConst(t Target, rsChallenge, szChallenge int, constIndex field.Element, value int) int {
	return addIndexedLookupFactor(t, rsChallenge, szChallenge, constIndex, WitnessOne, value)
}

// StaticRead is a ROM read at a compile-time-known address.
type StaticRead struct {
	Addr  int
	Value int // R1CS witness holding the value read
}

// DynamicRead is a ROM read at an address only known at solve time.
type DynamicRead struct {
	AddrWitness int
	Value       int
}

// FinalizeROM closes a ROM block's LogUp argument: the sum of
// 1/denominator over every recorded read must equal the sum, over the
// whole table, of access_count/denominator -- which only holds if
// every read actually returned the value stored at its address.
func FinalizeROM(t Target, blockLen int, staticReads []StaticRead, dynamicReads []DynamicRead, valueWitnesses []int) {
	staticAddrs := make([]int, len(staticReads))
	for i, r := range staticReads {
		staticAddrs[i] = r.Addr
	}
	dynamicAddrWitnesses := make([]int, len(dynamicReads))
	for i, r := range dynamicReads {
		dynamicAddrWitnesses[i] = r.AddrWitness
	}
	accessCountsFirst := t.AddBuilder(blockLen, func(first int) witness.Builder {
		return witness.NewMemoryAccessCounts(first, blockLen, staticAddrs, dynamicAddrWitnesses)
	})

	rsChallenge := t.AddBuilder(1, func(first int) witness.Builder { return witness.NewChallenge(first) })
	szChallenge := t.AddBuilder(1, func(first int) witness.Builder { return witness.NewChallenge(first) })

	var readTerms []witness.Term
	for _, r := range staticReads {
		inv := addIndexedLookupFactorConst(t, rsChallenge, szChallenge, field.FromUint64(uint64(r.Addr)), r.Value)
		readTerms = append(readTerms, witness.Term{Coeff: field.One(), Index: inv})
	}
	for _, r := range dynamicReads {
		inv := addIndexedLookupFactor(t, rsChallenge, szChallenge, field.One(), r.AddrWitness, r.Value)
		readTerms = append(readTerms, witness.Term{Coeff: field.One(), Index: inv})
	}
	sumReads := t.AddSum(readTerms)

	var tableTerms []witness.Term
	for addr, valueWitness := range valueWitnesses {
		inv := addIndexedLookupFactorConst(t, rsChallenge, szChallenge, field.FromUint64(uint64(addr)), valueWitness)
		accessCount := accessCountsFirst + addr
		weighted := t.AddProduct(accessCount, inv)
		tableTerms = append(tableTerms, witness.Term{Coeff: field.One(), Index: weighted})
	}
	sumTable := t.AddSum(tableTerms)

	t.AddConstraint(
		[]RowEntry{{Col: WitnessOne, Value: field.One()}},
		[]RowEntry{{Col: sumReads, Value: field.One()}},
		[]RowEntry{{Col: sumTable, Value: field.One()}},
	)
}
