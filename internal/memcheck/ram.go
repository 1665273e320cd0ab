package memcheck

import (
	"github.com/reilabs/provekit-go/internal/field"
	"github.com/reilabs/provekit-go/internal/witness"
)

// ramOp records one load/store against a RAMBlock as it is compiled,
// so Finalize can walk them again once the whole block's op sequence
// is known.
type ramOp struct {
	addr, value int // R1CS witness indices
	isWrite     bool
	spiceFirst  int // SpiceWitnesses output: [value, rt_witness (prior write ts), new ts]
}

// RAMBlock accumulates one Spice-checked read/write memory block's
// operations during compilation, closing the offline multiset
// argument (spec §4.7) once every op has been seen.
//
// Spice's multiset identity: every (addr, value, timestamp) triple
// that is ever the *current* contents of a cell appears exactly once
// in the write set (when it is written) and exactly once in the read
// set (either by a later op reading it, or -- for the value still
// live when the block is closed -- by the final audit read). The
// init value at timestamp 0 is a write; MemoryFinal's read-back of
// the last value is the matching final read. ∏(write factors) must
// equal ∏(read factors).
type RAMBlock struct {
	target        Target
	blockID       int
	length        int
	initWitnesses []int
	ops           []ramOp
}

// NewRAMBlock registers blockID's initial contents (R1CS witnesses,
// already resolved via Target.ToR1CSWitness by the caller) and
// returns a block ready to accumulate Load/Store calls in opcode
// order.
func NewRAMBlock(t Target, blockID int, initWitnesses []int) *RAMBlock {
	t.AddBuilder(0, func(first int) witness.Builder {
		return witness.NewMemoryInit(first, blockID, initWitnesses)
	})
	return &RAMBlock{
		target:        t,
		blockID:       blockID,
		length:        len(initWitnesses),
		initWitnesses: initWitnesses,
	}
}

// assertEqual constrains witness a to equal witness b via a single
// linear row (a-b)*1 = 0.
func (b *RAMBlock) assertEqual(a, other int) {
	b.target.AddConstraint(
		[]RowEntry{{Col: a, Value: field.One()}, {Col: other, Value: field.Neg(field.One())}},
		[]RowEntry{{Col: WitnessOne, Value: field.One()}},
		nil,
	)
}

// Load records a read of addr (an R1CS witness) whose result must
// equal value (the R1CS witness the ACIR solver already bound to this
// read). The SpiceWitnesses builder simulates the read against the
// live memory state at solve time; this constrains its output to
// agree with what the caller claims the read produced.
func (b *RAMBlock) Load(addr, value int) {
	spiceFirst := b.target.AddBuilder(3, func(first int) witness.Builder {
		return witness.NewSpiceWitnesses(first, b.blockID, addr, false, 0)
	})
	b.assertEqual(spiceFirst, value)
	b.ops = append(b.ops, ramOp{addr: addr, value: value, isWrite: false, spiceFirst: spiceFirst})
}

// Store records a write of newValue (an R1CS witness) to addr.
func (b *RAMBlock) Store(addr, newValue int) {
	spiceFirst := b.target.AddBuilder(3, func(first int) witness.Builder {
		return witness.NewSpiceWitnesses(first, b.blockID, addr, true, newValue)
	})
	b.ops = append(b.ops, ramOp{addr: addr, value: newValue, isWrite: true, spiceFirst: spiceFirst})
}

// Finalize closes the block's Spice argument: it builds the write-set
// (init factors + one factor per op's post-state) and read-set (one
// factor per op's pre-state + one final audit factor per address),
// multiplies each set down to a single witness, and constrains the
// two products equal. It also emits the two per-op timestamp range
// checks spec §4.7 requires, bounding every read timestamp below the
// block-local op counter that produced it.
func (b *RAMBlock) Finalize() {
	n := len(b.ops)
	numBits := witness.BinOpAtomicBits
	for (uint64(1) << uint(numBits)) < uint64(n+1) {
		numBits += witness.BinOpAtomicBits
	}

	rsChallenge := b.target.AddBuilder(1, func(first int) witness.Builder { return witness.NewChallenge(first) })
	szChallenge := b.target.AddBuilder(1, func(first int) witness.Builder { return witness.NewChallenge(first) })

	zero := b.target.AddBuilder(1, func(first int) witness.Builder { return witness.NewConstant(first, field.Zero()) })

	addrConst := make([]int, b.length)
	for addr := range addrConst {
		a := addr
		addrConst[addr] = b.target.AddBuilder(1, func(first int) witness.Builder {
			return witness.NewConstant(first, field.FromUint64(uint64(a)))
		})
	}

	var writeFactors, readFactors []int

	// Write side: one factor per address at timestamp 0 (its init
	// value), one factor per op at its freshly assigned timestamp.
	for addr := 0; addr < b.length; addr++ {
		f := b.spiceFactor(rsChallenge, szChallenge, addrConst[addr], b.initWitnesses[addr], zero)
		writeFactors = append(writeFactors, f)
	}
	for _, op := range b.ops {
		valueOut := op.value
		if !op.isWrite {
			valueOut = op.spiceFirst // the value read back out, unchanged by a load
		}
		f := b.spiceFactor(rsChallenge, szChallenge, op.addr, valueOut, op.spiceFirst+2)
		writeFactors = append(writeFactors, f)
	}

	// Read side: one factor per op at its pre-state (the value and
	// timestamp that were live immediately before this op ran), one
	// final audit factor per address reading back whatever is left
	// once every op on the block has run.
	for _, op := range b.ops {
		f := b.spiceFactor(rsChallenge, szChallenge, op.addr, op.spiceFirst, op.spiceFirst+1)
		readFactors = append(readFactors, f)
	}
	for addr := 0; addr < b.length; addr++ {
		a := addr
		finalFirst := b.target.AddBuilder(2, func(first int) witness.Builder {
			return witness.NewMemoryFinal(first, b.blockID, uint64(a))
		})
		f := b.spiceFactor(rsChallenge, szChallenge, addrConst[addr], finalFirst, finalFirst+1)
		readFactors = append(readFactors, f)
	}

	productWrite := foldProduct(b.target, writeFactors)
	productRead := foldProduct(b.target, readFactors)
	b.target.AddConstraint(
		[]RowEntry{{Col: productWrite, Value: field.One()}},
		[]RowEntry{{Col: WitnessOne, Value: field.One()}},
		[]RowEntry{{Col: productRead, Value: field.One()}},
	)

	for i, op := range b.ops {
		rtWitness := op.spiceFirst + 1
		if err := b.target.RangeCheckWitness(rtWitness, numBits); err != nil {
			panic("memcheck: ram timestamp range check: " + err.Error())
		}
		opIndex := field.FromUint64(uint64(i + 1))
		diff := b.target.AddSum([]witness.Term{
			{Coeff: opIndex, Index: WitnessOne},
			{Coeff: field.Neg(field.One()), Index: rtWitness},
		})
		if err := b.target.RangeCheckWitness(diff, numBits); err != nil {
			panic("memcheck: ram index-timestamp range check: " + err.Error())
		}
	}
}

// spiceFactor allocates one SpiceMultisetFactor builder and the
// constraint tying it to sz - (addr + rs*value + rs^2*timestamp).
func (b *RAMBlock) spiceFactor(rsChallenge, szChallenge, addr, value, timestamp int) int {
	return b.target.AddBuilder(1, func(first int) witness.Builder {
		return witness.NewSpiceMultisetFactor(first, szChallenge, rsChallenge, addr, value, timestamp)
	})
}

// foldProduct multiplies every witness in factors together (left
// fold via AddProduct), returning WitnessOne if factors is empty.
func foldProduct(t Target, factors []int) int {
	if len(factors) == 0 {
		return WitnessOne
	}
	acc := factors[0]
	for _, f := range factors[1:] {
		acc = t.AddProduct(acc, f)
	}
	return acc
}
