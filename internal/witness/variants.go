package witness

import (
	"fmt"
	"math/big"

	"github.com/reilabs/provekit-go/internal/field"
)

func bigFromUint64(v uint64) *big.Int { return new(big.Int).SetUint64(v) }

// Constant writes a fixed field value, independent of any other
// witness. Index 0 of every program is a Constant(field.One()), the
// constant-one witness every R1CS instance requires.
type Constant struct {
	base
	Value field.Element
}

func NewConstant(first int, v field.Element) *Constant {
	return &Constant{base: newBase(first, 1), Value: v}
}
func (c *Constant) Reads() []int    { return nil }
func (c *Constant) IsInverse() bool { return false }
func (c *Constant) Solve(w []field.Element, ctx *Context) ([]field.Element, error) {
	return []field.Element{c.Value}, nil
}

// Acir copies a value straight from the ACIR witness map.
type Acir struct {
	base
	AcirIndex int
}

func NewAcir(first, acirIndex int) *Acir {
	return &Acir{base: newBase(first, 1), AcirIndex: acirIndex}
}
func (a *Acir) Reads() []int    { return nil }
func (a *Acir) IsInverse() bool { return false }
func (a *Acir) Solve(w []field.Element, ctx *Context) ([]field.Element, error) {
	if a.AcirIndex >= len(ctx.Acir) {
		return nil, fmt.Errorf("ACIR witness %d missing from a witness map of %d entries", a.AcirIndex, len(ctx.Acir))
	}
	return []field.Element{ctx.Acir[a.AcirIndex]}, nil
}

// Term is one (coefficient, witness index) summand of a Sum builder;
// an absent coefficient means 1, matching the reference's "c_i absent
// => 1" convention — callers express that by passing field.One().
type Term struct {
	Coeff field.Element
	Index int
}

// Sum writes Sigma coeff_i * witness[index_i].
type Sum struct {
	base
	Terms []Term
}

func NewSum(first int, terms []Term) *Sum {
	return &Sum{base: newBase(first, 1), Terms: terms}
}
func (s *Sum) Reads() []int {
	idxs := make([]int, len(s.Terms))
	for i, t := range s.Terms {
		idxs[i] = t.Index
	}
	return idxs
}
func (s *Sum) IsInverse() bool { return false }
func (s *Sum) Solve(w []field.Element, ctx *Context) ([]field.Element, error) {
	acc := field.Zero()
	for _, t := range s.Terms {
		acc = field.Add(acc, field.Mul(t.Coeff, w[t.Index]))
	}
	return []field.Element{acc}, nil
}

// Product writes witness[a] * witness[b].
type Product struct {
	base
	A, B int
}

func NewProduct(first, a, b int) *Product {
	return &Product{base: newBase(first, 1), A: a, B: b}
}
func (p *Product) Reads() []int    { return []int{p.A, p.B} }
func (p *Product) IsInverse() bool { return false }
func (p *Product) Solve(w []field.Element, ctx *Context) ([]field.Element, error) {
	return []field.Element{field.Mul(w[p.A], w[p.B])}, nil
}

// Inverse writes witness[x]^-1. Solved only in batch (IsInverse true)
// so the layer scheduler groups every Inverse builder of a layer into
// one Montgomery's-trick batch.
type Inverse struct {
	base
	X int
}

func NewInverse(first, x int) *Inverse {
	return &Inverse{base: newBase(first, 1), X: x}
}
func (iv *Inverse) Reads() []int    { return []int{iv.X} }
func (iv *Inverse) IsInverse() bool { return true }
func (iv *Inverse) Solve(w []field.Element, ctx *Context) ([]field.Element, error) {
	return []field.Element{field.Inverse(w[iv.X])}, nil
}

// Challenge draws a fresh Fiat-Shamir challenge from the transcript.
// Every Challenge builder must live in w2 (splitter invariant).
type Challenge struct {
	base
}

func NewChallenge(first int) *Challenge { return &Challenge{base: newBase(first, 1)} }
func (c *Challenge) Reads() []int       { return nil }
func (c *Challenge) IsInverse() bool    { return false }
func (c *Challenge) Solve(w []field.Element, ctx *Context) ([]field.Element, error) {
	return []field.Element{ctx.Transcript.Squeeze()}, nil
}

// IndexedCoeff is a (coefficient, witness index) pair used by
// LogUpDenominator for the indexed term of sz + rs*value - coeff*index.
type IndexedCoeff struct {
	Coeff field.Element
	Index int
}

// LogUpDenominator writes sz + rs*witness[value] -
// indexCoeff*witness[index], the per-row denominator of a LogUp
// lookup argument (reads the sz/rs challenges as ordinary witness
// reads, since Challenge builders write them into the witness vector
// like anything else).
type LogUpDenominator struct {
	base
	SZ, RS int
	Index  IndexedCoeff
	Value  int
}

func NewLogUpDenominator(first, sz, rs int, index IndexedCoeff, value int) *LogUpDenominator {
	return &LogUpDenominator{base: newBase(first, 1), SZ: sz, RS: rs, Index: index, Value: value}
}
func (l *LogUpDenominator) Reads() []int {
	return []int{l.SZ, l.RS, l.Index.Index, l.Value}
}
func (l *LogUpDenominator) IsInverse() bool { return false }
func (l *LogUpDenominator) Solve(w []field.Element, ctx *Context) ([]field.Element, error) {
	indexed := field.Mul(l.Index.Coeff, w[l.Index.Index])
	rsValue := field.Mul(w[l.RS], w[l.Value])
	return []field.Element{field.Sub(field.Add(w[l.SZ], rsValue), indexed)}, nil
}

// MultiplicitiesForRange fills N slots with occurrence counts of each
// value 0..N in the operand list (the table side of a LogUp range
// check).
type MultiplicitiesForRange struct {
	base
	N      int
	Values []int // witness indices being range-checked against [0, N)
}

func NewMultiplicitiesForRange(first, n int, values []int) *MultiplicitiesForRange {
	return &MultiplicitiesForRange{base: newBase(first, n), N: n, Values: values}
}
func (m *MultiplicitiesForRange) Reads() []int    { return m.Values }
func (m *MultiplicitiesForRange) IsInverse() bool { return false }
func (m *MultiplicitiesForRange) Solve(w []field.Element, ctx *Context) ([]field.Element, error) {
	counts := make([]uint64, m.N)
	for _, idx := range m.Values {
		v := w[idx].ToBigInt()
		if v.IsUint64() && v.Uint64() < uint64(m.N) {
			counts[v.Uint64()]++
		}
	}
	out := make([]field.Element, m.N)
	for i, c := range counts {
		out[i] = field.FromUint64(c)
	}
	return out, nil
}

// DigitalDecomposition decomposes witness[x] into mixed-radix digits
// per the supplied bases, reducing a wide range check to a small
// lookup over the atomic width.
type DigitalDecomposition struct {
	base
	X     int
	Bases []uint64
}

func NewDigitalDecomposition(first, x int, bases []uint64) *DigitalDecomposition {
	return &DigitalDecomposition{base: newBase(first, len(bases)), X: x, Bases: bases}
}
func (d *DigitalDecomposition) Reads() []int    { return []int{d.X} }
func (d *DigitalDecomposition) IsInverse() bool { return false }
func (d *DigitalDecomposition) Solve(w []field.Element, ctx *Context) ([]field.Element, error) {
	v := w[d.X].ToBigInt()
	out := make([]field.Element, len(d.Bases))
	rem := new(big.Int).Set(v)
	for i, base := range d.Bases {
		digit := new(big.Int).Mod(rem, bigFromUint64(base))
		out[i] = field.FromBigInt(digit)
		rem = new(big.Int).Div(rem, bigFromUint64(base))
	}
	return out, nil
}

// BytePartition splits an 8-bit byte x = lo + hi*2^k.
type BytePartition struct {
	base
	X int
	K uint
}

func NewBytePartition(first, x int, k uint) *BytePartition {
	return &BytePartition{base: newBase(first, 2), X: x, K: k}
}
func (b *BytePartition) Reads() []int    { return []int{b.X} }
func (b *BytePartition) IsInverse() bool { return false }
func (b *BytePartition) Solve(w []field.Element, ctx *Context) ([]field.Element, error) {
	v := w[b.X].ToBigInt().Uint64()
	mask := uint64(1)<<b.K - 1
	lo := v & mask
	hi := v >> b.K
	return []field.Element{field.FromUint64(lo), field.FromUint64(hi)}, nil
}

// U32Addition computes (result, carry) = a+b as 32-bit values, with
// the carry range-checked to {0,1} by construction.
type U32Addition struct {
	base
	A, B int
}

func NewU32Addition(first, a, b int) *U32Addition {
	return &U32Addition{base: newBase(first, 2), A: a, B: b}
}
func (u *U32Addition) Reads() []int    { return []int{u.A, u.B} }
func (u *U32Addition) IsInverse() bool { return false }
func (u *U32Addition) Solve(w []field.Element, ctx *Context) ([]field.Element, error) {
	av := w[u.A].ToBigInt().Uint64()
	bv := w[u.B].ToBigInt().Uint64()
	sum := av + bv
	const mod32 = uint64(1) << 32
	result := sum % mod32
	carry := sum / mod32
	return []field.Element{field.FromUint64(result), field.FromUint64(carry)}, nil
}

// And writes lhs AND rhs (byte-wise, via lookup denominators in the
// compiler; here it just computes the semantic value).
type And struct {
	base
	Lhs, Rhs int
}

func NewAnd(first, lhs, rhs int) *And { return &And{base: newBase(first, 1), Lhs: lhs, Rhs: rhs} }
func (a *And) Reads() []int           { return []int{a.Lhs, a.Rhs} }
func (a *And) IsInverse() bool        { return false }
func (a *And) Solve(w []field.Element, ctx *Context) ([]field.Element, error) {
	l := w[a.Lhs].ToBigInt().Uint64()
	r := w[a.Rhs].ToBigInt().Uint64()
	return []field.Element{field.FromUint64(l & r)}, nil
}

// Xor writes lhs XOR rhs.
type Xor struct {
	base
	Lhs, Rhs int
}

func NewXor(first, lhs, rhs int) *Xor { return &Xor{base: newBase(first, 1), Lhs: lhs, Rhs: rhs} }
func (x *Xor) Reads() []int           { return []int{x.Lhs, x.Rhs} }
func (x *Xor) IsInverse() bool        { return false }
func (x *Xor) Solve(w []field.Element, ctx *Context) ([]field.Element, error) {
	l := w[x.Lhs].ToBigInt().Uint64()
	r := w[x.Rhs].ToBigInt().Uint64()
	return []field.Element{field.FromUint64(l ^ r)}, nil
}

// CombinedBinOpLookupDenominator writes sz - (lhs + rs*rhs +
// rs^2*andOut + rs^3*xorOut), the combined AND/XOR table denominator
// from a single challenge rs (design notes: BINOP_ATOMIC_BITS = 8).
type CombinedBinOpLookupDenominator struct {
	base
	SZ, RS               int
	Lhs, Rhs, AndOut, XorOut int
}

func NewCombinedBinOpLookupDenominator(first, sz, rs, lhs, rhs, andOut, xorOut int) *CombinedBinOpLookupDenominator {
	return &CombinedBinOpLookupDenominator{base: newBase(first, 1), SZ: sz, RS: rs, Lhs: lhs, Rhs: rhs, AndOut: andOut, XorOut: xorOut}
}
func (c *CombinedBinOpLookupDenominator) Reads() []int {
	return []int{c.SZ, c.RS, c.Lhs, c.Rhs, c.AndOut, c.XorOut}
}
func (c *CombinedBinOpLookupDenominator) IsInverse() bool { return false }
func (c *CombinedBinOpLookupDenominator) Solve(w []field.Element, ctx *Context) ([]field.Element, error) {
	rs := w[c.RS]
	rs2 := field.Mul(rs, rs)
	rs3 := field.Mul(rs2, rs)
	sum := w[c.Lhs]
	sum = field.Add(sum, field.Mul(rs, w[c.Rhs]))
	sum = field.Add(sum, field.Mul(rs2, w[c.AndOut]))
	sum = field.Add(sum, field.Mul(rs3, w[c.XorOut]))
	return []field.Element{field.Sub(w[c.SZ], sum)}, nil
}

// MemoryAccessCounts fills one slot per address of a ROM block with
// how many times that address was read — the table side of a ROM
// LogUp lookup, generalizing MultiplicitiesForRange to arbitrary
// (not necessarily contiguous 0..N) addresses. StaticAddrs/DynamicAddrs
// give the read set: StaticAddrs are compile-time-known addresses,
// DynamicAddrs are witness indices holding the address read at
// R1CS-solve time.
type MemoryAccessCounts struct {
	base
	BlockLen     int
	StaticAddrs  []int
	DynamicAddrs []int
}

func NewMemoryAccessCounts(first, blockLen int, staticAddrs, dynamicAddrs []int) *MemoryAccessCounts {
	return &MemoryAccessCounts{base: newBase(first, blockLen), BlockLen: blockLen, StaticAddrs: staticAddrs, DynamicAddrs: dynamicAddrs}
}
func (m *MemoryAccessCounts) Reads() []int    { return m.DynamicAddrs }
func (m *MemoryAccessCounts) IsInverse() bool { return false }
func (m *MemoryAccessCounts) Solve(w []field.Element, ctx *Context) ([]field.Element, error) {
	counts := make([]uint64, m.BlockLen)
	for _, addr := range m.StaticAddrs {
		counts[addr]++
	}
	for _, idx := range m.DynamicAddrs {
		addr := w[idx].ToBigInt().Uint64()
		counts[addr]++
	}
	out := make([]field.Element, m.BlockLen)
	for i, c := range counts {
		out[i] = field.FromUint64(c)
	}
	return out, nil
}

// ProductLinearOperation writes witness[a]*witness[x] +
// witness[b]*witness[y] + c, a fused multiply-add. internal/r1cs's
// compiler does not emit it.
type ProductLinearOperation struct {
	base
	A, X, B, Y int
	C          field.Element
}

func NewProductLinearOperation(first, a, x, b, y int, c field.Element) *ProductLinearOperation {
	return &ProductLinearOperation{base: newBase(first, 1), A: a, X: x, B: b, Y: y, C: c}
}
func (p *ProductLinearOperation) Reads() []int    { return []int{p.A, p.X, p.B, p.Y} }
func (p *ProductLinearOperation) IsInverse() bool { return false }
func (p *ProductLinearOperation) Solve(w []field.Element, ctx *Context) ([]field.Element, error) {
	term1 := field.Mul(w[p.A], w[p.X])
	term2 := field.Mul(w[p.B], w[p.Y])
	return []field.Element{field.Add(field.Add(term1, term2), p.C)}, nil
}

// IndexedLogUpDenominator is LogUpDenominator's variant for lookups
// keyed by a constant (compile-time known) index rather than a
// witness-carried one: sz + rs*witness[value] - constIndex.
type IndexedLogUpDenominator struct {
	base
	SZ, RS     int
	ConstIndex field.Element
	Value      int
}

func NewIndexedLogUpDenominator(first, sz, rs int, constIndex field.Element, value int) *IndexedLogUpDenominator {
	return &IndexedLogUpDenominator{base: newBase(first, 1), SZ: sz, RS: rs, ConstIndex: constIndex, Value: value}
}
func (i *IndexedLogUpDenominator) Reads() []int    { return []int{i.SZ, i.RS, i.Value} }
func (i *IndexedLogUpDenominator) IsInverse() bool { return false }
func (i *IndexedLogUpDenominator) Solve(w []field.Element, ctx *Context) ([]field.Element, error) {
	rsValue := field.Mul(w[i.RS], w[i.Value])
	return []field.Element{field.Sub(field.Add(w[i.SZ], rsValue), i.ConstIndex)}, nil
}

// BinOpLookupDenominator is the single-table (non-combined) AND/XOR
// lookup denominator: sz - (lhs + rs*rhs + rs^2*out).
type BinOpLookupDenominator struct {
	base
	SZ, RS        int
	Lhs, Rhs, Out int
}

func NewBinOpLookupDenominator(first, sz, rs, lhs, rhs, out int) *BinOpLookupDenominator {
	return &BinOpLookupDenominator{base: newBase(first, 1), SZ: sz, RS: rs, Lhs: lhs, Rhs: rhs, Out: out}
}
func (b *BinOpLookupDenominator) Reads() []int    { return []int{b.SZ, b.RS, b.Lhs, b.Rhs, b.Out} }
func (b *BinOpLookupDenominator) IsInverse() bool { return false }
func (b *BinOpLookupDenominator) Solve(w []field.Element, ctx *Context) ([]field.Element, error) {
	rs := w[b.RS]
	rs2 := field.Mul(rs, rs)
	sum := field.Add(w[b.Lhs], field.Mul(rs, w[b.Rhs]))
	sum = field.Add(sum, field.Mul(rs2, w[b.Out]))
	return []field.Element{field.Sub(w[b.SZ], sum)}, nil
}

// MultiplicitiesForBinOp fills one multiplicity slot per table row
// (0..2^(2*BinOpAtomicBits)) with the number of times that (lhs, rhs)
// pair was looked up, the table side of the AND/XOR LogUp argument.
const BinOpAtomicBits = 8

type MultiplicitiesForBinOp struct {
	base
	Lhs, Rhs []int // parallel witness-index slices, one pair per lookup
}

func NewMultiplicitiesForBinOp(first int, lhs, rhs []int) *MultiplicitiesForBinOp {
	n := 1 << (2 * BinOpAtomicBits)
	return &MultiplicitiesForBinOp{base: newBase(first, n), Lhs: lhs, Rhs: rhs}
}
func (m *MultiplicitiesForBinOp) Reads() []int {
	out := make([]int, 0, len(m.Lhs)+len(m.Rhs))
	out = append(out, m.Lhs...)
	out = append(out, m.Rhs...)
	return out
}
func (m *MultiplicitiesForBinOp) IsInverse() bool { return false }
func (m *MultiplicitiesForBinOp) Solve(w []field.Element, ctx *Context) ([]field.Element, error) {
	n := 1 << (2 * BinOpAtomicBits)
	counts := make([]uint64, n)
	mask := uint64(1)<<BinOpAtomicBits - 1
	for i := range m.Lhs {
		l := w[m.Lhs[i]].ToBigInt().Uint64() & mask
		r := w[m.Rhs[i]].ToBigInt().Uint64() & mask
		counts[(l<<BinOpAtomicBits)|r]++
	}
	out := make([]field.Element, n)
	for i, c := range counts {
		out[i] = field.FromUint64(c)
	}
	return out, nil
}

// U32AdditionMulti sums an arbitrary number of u32 operands into one
// (result, carry) pair, generalizing U32Addition beyond two operands.
// internal/r1cs's compiler does not emit it.
type U32AdditionMulti struct {
	base
	Operands []int
}

func NewU32AdditionMulti(first int, operands []int) *U32AdditionMulti {
	return &U32AdditionMulti{base: newBase(first, 2), Operands: operands}
}
func (u *U32AdditionMulti) Reads() []int    { return u.Operands }
func (u *U32AdditionMulti) IsInverse() bool { return false }
func (u *U32AdditionMulti) Solve(w []field.Element, ctx *Context) ([]field.Element, error) {
	var sum uint64
	for _, idx := range u.Operands {
		sum += w[idx].ToBigInt().Uint64()
	}
	const mod32 = uint64(1) << 32
	return []field.Element{field.FromUint64(sum % mod32), field.FromUint64(sum / mod32)}, nil
}

// SpiceMultisetFactor writes one read-set or write-set multiset
// factor sz - (addr + rs*value + rs^2*timestamp) for a single Spice
// memory operation, using the timestamp ctx.Memory recorded when the
// corresponding SpiceWitnesses builder simulated that op.
type SpiceMultisetFactor struct {
	base
	SZ, RS       int
	Addr, Value  int
	Timestamp    int
}

func NewSpiceMultisetFactor(first, sz, rs, addr, value, timestamp int) *SpiceMultisetFactor {
	return &SpiceMultisetFactor{base: newBase(first, 1), SZ: sz, RS: rs, Addr: addr, Value: value, Timestamp: timestamp}
}
func (s *SpiceMultisetFactor) Reads() []int {
	return []int{s.SZ, s.RS, s.Addr, s.Value, s.Timestamp}
}
func (s *SpiceMultisetFactor) IsInverse() bool { return false }
func (s *SpiceMultisetFactor) Solve(w []field.Element, ctx *Context) ([]field.Element, error) {
	rs := w[s.RS]
	rs2 := field.Mul(rs, rs)
	sum := field.Add(w[s.Addr], field.Mul(rs, w[s.Value]))
	sum = field.Add(sum, field.Mul(rs2, w[s.Timestamp]))
	return []field.Element{field.Sub(w[s.SZ], sum)}, nil
}

// SpiceWitnesses simulates one read-then-write memory op against
// ctx.Memory's block BlockID at address witness[Addr]: it returns the
// value read before the write, that value's prior write-timestamp,
// and the freshly assigned timestamp for this op. A write op stores
// witness[NewValue], which is not among the three outputs; a read op
// writes the value it read back. Solving it mutates ctx.Memory, so
// SpiceWitnesses builders for one block must be solved in program
// order, not reordered by the layer scheduler (data model invariant:
// the union of writes covers [0,n) exactly, one timestamp per op).
type SpiceWitnesses struct {
	base
	BlockID  int
	Addr     int
	IsWrite  bool
	NewValue int // witness index of the value to store; ignored for reads
}

func NewSpiceWitnesses(first, blockID, addr int, isWrite bool, newValue int) *SpiceWitnesses {
	return &SpiceWitnesses{base: newBase(first, 3), BlockID: blockID, Addr: addr, IsWrite: isWrite, NewValue: newValue}
}
func (s *SpiceWitnesses) Reads() []int {
	if s.IsWrite {
		return []int{s.Addr, s.NewValue}
	}
	return []int{s.Addr}
}
func (s *SpiceWitnesses) IsInverse() bool { return false }
func (s *SpiceWitnesses) Solve(w []field.Element, ctx *Context) ([]field.Element, error) {
	block := ctx.Memory.Block(s.BlockID)
	addr := w[s.Addr].ToBigInt().Uint64()
	ts := block.NextOp()
	if s.IsWrite {
		prevValue, prevTs := block.WriteOp(addr, w[s.NewValue], ts)
		return []field.Element{prevValue, field.FromUint64(prevTs), field.FromUint64(ts)}, nil
	}
	value, prevTs := block.ReadOp(addr)
	block.WriteOp(addr, value, ts)
	return []field.Element{value, field.FromUint64(prevTs), field.FromUint64(ts)}, nil
}

// CombinedTableEntryInverse is the batch-inverted denominator of a
// combined AND/XOR table row; solved in the same Inverse layers as
// plain Inverse builders.
type CombinedTableEntryInverse struct {
	base
	Denominator int
}

func NewCombinedTableEntryInverse(first, denom int) *CombinedTableEntryInverse {
	return &CombinedTableEntryInverse{base: newBase(first, 1), Denominator: denom}
}
func (c *CombinedTableEntryInverse) Reads() []int    { return []int{c.Denominator} }
func (c *CombinedTableEntryInverse) IsInverse() bool { return true }
func (c *CombinedTableEntryInverse) Solve(w []field.Element, ctx *Context) ([]field.Element, error) {
	return []field.Element{field.Inverse(w[c.Denominator])}, nil
}

// MemoryInit registers a RAM block's initial contents into ctx.Memory
// once its Values witnesses are resolved, so the block exists before
// any SpiceWitnesses op against it runs. It writes no witness slots of
// its own (NumOutputs 0); the scheduler chains it ahead of every
// SpiceWitnesses builder sharing its BlockID (see scheduler.go's
// lastOpOnBlock), the same way those ops are chained to each other.
type MemoryInit struct {
	base
	BlockID int
	Values  []int
}

func NewMemoryInit(first, blockID int, values []int) *MemoryInit {
	return &MemoryInit{base: newBase(first, 0), BlockID: blockID, Values: values}
}
func (m *MemoryInit) Reads() []int    { return m.Values }
func (m *MemoryInit) IsInverse() bool { return false }
func (m *MemoryInit) Solve(w []field.Element, ctx *Context) ([]field.Element, error) {
	init := make([]field.Element, len(m.Values))
	for i, idx := range m.Values {
		init[i] = w[idx]
	}
	ctx.Memory.RegisterBlock(m.BlockID, init)
	return nil, nil
}

// MemoryFinal reads back the value and timestamp left at Addr in
// ctx.Memory's block BlockID once every op against that block has
// been solved. The RAM permutation argument's audit phase uses this
// to read each cell's final state into the read set, so a cell no Op
// ever touched after init still balances exactly once against its
// MemoryInit factor. Ordered last per block by the same scheduler
// edges that chain SpiceWitnesses ops together.
type MemoryFinal struct {
	base
	BlockID int
	Addr    uint64
}

func NewMemoryFinal(first, blockID int, addr uint64) *MemoryFinal {
	return &MemoryFinal{base: newBase(first, 2), BlockID: blockID, Addr: addr}
}
func (m *MemoryFinal) Reads() []int    { return nil }
func (m *MemoryFinal) IsInverse() bool { return false }
func (m *MemoryFinal) Solve(w []field.Element, ctx *Context) ([]field.Element, error) {
	value, ts := ctx.Memory.Block(m.BlockID).ReadOp(m.Addr)
	return []field.Element{value, field.FromUint64(ts)}, nil
}
