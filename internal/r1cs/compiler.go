package r1cs

import (
	"fmt"

	"github.com/reilabs/provekit-go/internal/field"
	"github.com/reilabs/provekit-go/internal/memcheck"
	"github.com/reilabs/provekit-go/internal/sparse"
	"github.com/reilabs/provekit-go/internal/witness"
)

// WitnessOne is the R1CS witness index every instance reserves for
// the constant field.One() value.
const WitnessOne = 0

// romBlock tracks one read-only memory block's reads while compiling,
// so the access-count/LogUp constraints can be finalized once every
// opcode has been seen.
type romBlock struct {
	length       int
	valueWitness []int // R1CS witness index holding the value at each address
	staticReads  []struct{ addr, value int }
	dynamicReads []struct{ addrWitness, value int }
}

// binOpRecord is one AND/XOR opcode's operands and the pair of
// witnesses computing both of its combined-table outputs, buffered
// until the whole opcode stream has been seen so the table-side
// multiplicities are known (see addBinOpTable).
type binOpRecord struct {
	lhs, rhs, andOut, xorOut int
}

// Instance is an R1CS instance under construction: the A/B/C
// matrices, the witness-builder program that solves it, and the
// ACIR<->R1CS witness index correspondence.
type Instance struct {
	A, B, C     *sparse.Matrix
	Builders    []witness.Builder
	AcirToR1CS  map[int]int
	nextWitness int
	rom         map[int]*romBlock
	ram         map[int]*memcheck.RAMBlock
	binOps      []binOpRecord
}

// New creates an empty instance with witness 0 reserved as the
// constant one.
func New() *Instance {
	interner := sparse.NewInterner()
	inst := &Instance{
		A: sparse.New(interner), B: sparse.New(interner), C: sparse.New(interner),
		AcirToR1CS: map[int]int{},
		rom:        map[int]*romBlock{},
		ram:        map[int]*memcheck.RAMBlock{},
	}
	inst.addBuilder(1, func(first int) witness.Builder { return witness.NewConstant(first, field.One()) })
	return inst
}

func (inst *Instance) alloc(n int) int {
	first := inst.nextWitness
	inst.nextWitness += n
	return first
}

func (inst *Instance) addBuilder(n int, make func(first int) witness.Builder) int {
	first := inst.alloc(n)
	inst.Builders = append(inst.Builders, make(first))
	return first
}

// NumWitnesses returns the total number of R1CS witness slots
// allocated so far.
func (inst *Instance) NumWitnesses() int { return inst.nextWitness }

// AddBuilder allocates n fresh witness slots and registers the
// witness.Builder make produces for them, returning the first slot's
// index. Exported for companion compiler passes (internal/memcheck's
// Spice-based RAM wiring) that extend an Instance with constraints of
// their own, the same way this package's own finalizeROMBlock does.
func (inst *Instance) AddBuilder(n int, make func(first int) witness.Builder) int {
	return inst.addBuilder(n, make)
}

// AddConstraint appends one R1CS row a*b=c built from (column,
// coefficient) entries.
func (inst *Instance) AddConstraint(a, b, c []RowEntry) { inst.addConstraint(a, b, c) }

// AddProduct allocates witness[a]*witness[b] and constrains it.
func (inst *Instance) AddProduct(a, b int) int { return inst.addProduct(a, b) }

// AddSum allocates Sigma terms and constrains it against the given
// coefficient-weighted witnesses.
func (inst *Instance) AddSum(terms []witness.Term) int { return inst.addSum(terms) }

// RangeCheckWitness constrains the R1CS witness at index x (not
// necessarily one tied to an ACIR witness) to fit in numBits bits,
// via the same digit-decomposition LogUp argument RangeCheck opcodes
// use.
func (inst *Instance) RangeCheckWitness(x, numBits int) error {
	return inst.rangeCheckR1CSWitness(x, numBits)
}

// ToR1CSWitness returns the R1CS witness holding the given ACIR
// witness's value, allocating it on first reference. Exported so
// internal/memcheck's RAM opcodes, which (like MemoryInit/MemoryOp)
// reference ACIR witness indices rather than R1CS ones, can resolve
// them the same way every other opcode in this package does.
func (inst *Instance) ToR1CSWitness(acirWitness int) int {
	return inst.toR1CSWitness(acirWitness)
}

func (inst *Instance) addConstraint(a, b, c []RowEntry) {
	row := inst.A.NumRows
	for _, e := range a {
		inst.A.Set(row, e.Col, e.Value)
	}
	for _, e := range b {
		inst.B.Set(row, e.Col, e.Value)
	}
	for _, e := range c {
		inst.C.Set(row, e.Col, e.Value)
	}
}

// toR1CSWitness returns the R1CS witness holding the given ACIR
// witness's value, allocating a fresh witness.Acir builder the first
// time that ACIR index is referenced.
func (inst *Instance) toR1CSWitness(acirWitness int) int {
	if idx, ok := inst.AcirToR1CS[acirWitness]; ok {
		return idx
	}
	idx := inst.addBuilder(1, func(first int) witness.Builder { return witness.NewAcir(first, acirWitness) })
	inst.AcirToR1CS[acirWitness] = idx
	return idx
}

// addProduct allocates witness[a]*witness[b] and constrains it.
func (inst *Instance) addProduct(a, b int) int {
	product := inst.addBuilder(1, func(first int) witness.Builder { return witness.NewProduct(first, a, b) })
	inst.addConstraint(
		[]RowEntry{{Col: a, Value: field.One()}},
		[]RowEntry{{Col: b, Value: field.One()}},
		[]RowEntry{{Col: product, Value: field.One()}},
	)
	return product
}

// addSum allocates Sigma terms and constrains it against the given
// terms, each with its own coefficient.
func (inst *Instance) addSum(terms []witness.Term) int {
	sum := inst.addBuilder(1, func(first int) witness.Builder { return witness.NewSum(first, terms) })
	a := make([]RowEntry, len(terms))
	for i, t := range terms {
		a[i] = RowEntry{Col: t.Index, Value: t.Coeff}
	}
	inst.addConstraint(a,
		[]RowEntry{{Col: WitnessOne, Value: field.One()}},
		[]RowEntry{{Col: sum, Value: field.One()}},
	)
	return sum
}

// addAssertZero compiles one ACIR AssertZero expression into R1CS
// constraints: every multiplication term but the last becomes its own
// Product witness folded into the final expression's linear part; the
// last multiplication term (if any) becomes the A/B side of a single
// closing constraint, with every linear term and the constant folded
// into C.
func (inst *Instance) addAssertZero(expr AssertZero) {
	var linear []RowEntry
	var a, b []RowEntry

	if n := len(expr.MulTerms); n > 0 {
		for _, mt := range expr.MulTerms[:n-1] {
			product := inst.addProduct(mt.A, mt.B)
			linear = append(linear, RowEntry{Col: product, Value: field.Neg(mt.Coeff)})
		}
		last := expr.MulTerms[n-1]
		a = []RowEntry{{Col: last.A, Value: last.Coeff}}
		b = []RowEntry{{Col: last.B, Value: field.One()}}
	}

	for _, lt := range expr.Linear {
		linear = append(linear, RowEntry{Col: lt.Witness, Value: field.Neg(lt.Coeff)})
	}
	linear = append(linear, RowEntry{Col: WitnessOne, Value: field.Neg(expr.QC)})

	if len(a) == 0 {
		// Purely linear expression: fold into A*1 = -linear so the row
		// still has a nonzero A side.
		inst.addConstraint(linear, []RowEntry{{Col: WitnessOne, Value: field.One()}}, nil)
		return
	}
	inst.addConstraint(a, b, linear)
}

// Compile turns an ACIR-shaped opcode stream into a complete R1CS
// instance: every AssertZero becomes constraints, every MemoryInit
// opens a ROM or RAM block, every MemoryOp records an access against
// that block, and BlackBox opcodes expand to their lookup-backed
// gadgets. Finalization (building the ROM/RAM/BinOp closing
// constraints) runs once, after the whole opcode stream has been
// consumed, since a block's or table's full access set isn't known
// until then.
func Compile(opcodes []Opcode) (*Instance, error) {
	inst := New()
	romOrder := []int{}
	ramOrder := []int{}

	for _, op := range opcodes {
		switch o := op.(type) {
		case AssertZero:
			inst.addAssertZero(remapAssertZero(inst, o))

		case MemoryInit:
			if _, exists := inst.rom[o.BlockID]; exists {
				return nil, fmt.Errorf("r1cs: memory block %d already initialized", o.BlockID)
			}
			if _, exists := inst.ram[o.BlockID]; exists {
				return nil, fmt.Errorf("r1cs: memory block %d already initialized", o.BlockID)
			}
			initWitnesses := make([]int, len(o.Init))
			for i, acirIdx := range o.Init {
				initWitnesses[i] = inst.toR1CSWitness(acirIdx)
			}
			switch o.Kind {
			case MemoryRAM:
				inst.ram[o.BlockID] = memcheck.NewRAMBlock(inst, o.BlockID, initWitnesses)
				ramOrder = append(ramOrder, o.BlockID)
			default:
				inst.rom[o.BlockID] = &romBlock{length: len(o.Init), valueWitness: initWitnesses}
				romOrder = append(romOrder, o.BlockID)
			}

		case MemoryOp:
			if block, ok := inst.rom[o.BlockID]; ok {
				if o.Kind == OpStore {
					return nil, fmt.Errorf("r1cs: memory block %d is read-only, cannot store", o.BlockID)
				}
				valueWitness := inst.toR1CSWitness(o.Value)
				if o.Index.IsConst {
					block.staticReads = append(block.staticReads, struct{ addr, value int }{int(o.Index.Const), valueWitness})
				} else {
					addrWitness := inst.toR1CSWitness(o.Index.Witness)
					block.dynamicReads = append(block.dynamicReads, struct{ addrWitness, value int }{addrWitness, valueWitness})
				}
				break
			}
			ramBlock, ok := inst.ram[o.BlockID]
			if !ok {
				return nil, fmt.Errorf("r1cs: memory block %d accessed before initialization", o.BlockID)
			}
			var addrWitness int
			if o.Index.IsConst {
				addr := o.Index.Const
				addrWitness = inst.addBuilder(1, func(first int) witness.Builder {
					return witness.NewConstant(first, field.FromUint64(addr))
				})
			} else {
				addrWitness = inst.toR1CSWitness(o.Index.Witness)
			}
			valueWitness := inst.toR1CSWitness(o.Value)
			if o.Kind == OpStore {
				ramBlock.Store(addrWitness, valueWitness)
			} else {
				ramBlock.Load(addrWitness, valueWitness)
			}

		case RangeCheck:
			if err := inst.addRangeCheck(o); err != nil {
				return nil, err
			}

		case AndOp:
			inst.addBinOp(o.Lhs, o.Rhs, o.Output, false)
		case XorOp:
			inst.addBinOp(o.Lhs, o.Rhs, o.Output, true)

		case BrilligCall:
			// no R1CS effect: outputs are constrained by adjacent
			// AssertZero opcodes.

		case Sha256Compression:
			inst.addSha256Compression(o)

		case Poseidon2Permutation:
			if err := inst.addPoseidon2Permutation(o); err != nil {
				return nil, err
			}

		default:
			return nil, fmt.Errorf("r1cs: unsupported opcode %T", op)
		}
	}

	for _, blockID := range romOrder {
		inst.finalizeROMBlock(blockID)
	}
	for _, blockID := range ramOrder {
		inst.ram[blockID].Finalize()
	}
	if len(inst.binOps) > 0 {
		inst.addBinOpTable()
	}

	return inst, nil
}

// finalizeROMBlock emits the LogUp constraints proving every recorded
// read against blockID returned the value actually stored there.
func (inst *Instance) finalizeROMBlock(blockID int) {
	block := inst.rom[blockID]
	staticReads := make([]memcheck.StaticRead, len(block.staticReads))
	for i, r := range block.staticReads {
		staticReads[i] = memcheck.StaticRead{Addr: r.addr, Value: r.value}
	}
	dynamicReads := make([]memcheck.DynamicRead, len(block.dynamicReads))
	for i, r := range block.dynamicReads {
		dynamicReads[i] = memcheck.DynamicRead{AddrWitness: r.addrWitness, Value: r.value}
	}
	memcheck.FinalizeROM(inst, block.length, staticReads, dynamicReads, block.valueWitness)
}

// addRangeCheck constrains witness to fit in NumBits bits by
// digit-decomposing it into witness.BinOpAtomicBits-wide digits and
// range-checking each digit via a MultiplicitiesForRange LogUp lookup
// against its own dense byte table (not the combined AND/XOR table).
func (inst *Instance) addRangeCheck(rc RangeCheck) error {
	return inst.rangeCheckR1CSWitness(inst.toR1CSWitness(rc.Witness), rc.NumBits)
}

// rangeCheckR1CSWitness is addRangeCheck generalized to an R1CS
// witness index that need not come from an ACIR witness — the Spice
// RAM protocol's internal timestamp/difference witnesses (see
// internal/memcheck) need exactly this, since they're produced by
// this package's own addSum/addBuilder calls, not toR1CSWitness.
func (inst *Instance) rangeCheckR1CSWitness(x, numBits int) error {
	if numBits%witness.BinOpAtomicBits != 0 {
		return fmt.Errorf("r1cs: range check over %d bits is not a multiple of the atomic width %d", numBits, witness.BinOpAtomicBits)
	}
	numDigits := numBits / witness.BinOpAtomicBits
	inst.digitDecompose(x, numDigits, uint64(1)<<witness.BinOpAtomicBits)
	return nil
}

// digitDecompose proves x = sum(digit_i * base^i) via a LogUp argument
// against the table [0, base), and returns the digit witness indices
// (least-significant first). rangeCheckR1CSWitness is the base-256
// instance of this; internal/r1cs's SHA-256/Poseidon2 BlackBox gadgets
// reuse the same machinery at base 2 (bit decomposition) and base 256
// (byte decomposition) to build word-level rotate/shift/add gadgets
// out of it.
func (inst *Instance) digitDecompose(x, numDigits int, base uint64) []int {
	bases := make([]uint64, numDigits)
	for i := range bases {
		bases[i] = base
	}
	digitsFirst := inst.addBuilder(numDigits, func(first int) witness.Builder {
		return witness.NewDigitalDecomposition(first, x, bases)
	})

	terms := make([]witness.Term, numDigits)
	weight := field.One()
	for i := 0; i < numDigits; i++ {
		terms[i] = witness.Term{Coeff: weight, Index: digitsFirst + i}
		weight = field.Mul(weight, field.FromUint64(base))
	}
	inst.addConstraint(
		termsToEntries(terms),
		[]RowEntry{{Col: WitnessOne, Value: field.One()}},
		[]RowEntry{{Col: x, Value: field.One()}},
	)

	digitIndices := make([]int, numDigits)
	for i := range digitIndices {
		digitIndices[i] = digitsFirst + i
	}
	multiplicitiesFirst := inst.addBuilder(int(base), func(first int) witness.Builder {
		return witness.NewMultiplicitiesForRange(first, int(base), digitIndices)
	})
	inst.addByteLogUp(digitIndices, multiplicitiesFirst, int(base))
	return digitIndices
}

// addByteLogUp closes a range-check's LogUp argument: the sum of
// 1/(sz+rs*digit) over every digit actually produced must equal the
// sum, over every table value 0..tableLen, of
// multiplicity/(sz+rs*value) — proving the multiplicities the solver
// claims are the true occurrence counts of each digit, which in turn
// is only possible if every digit lies in [0, tableLen).
func (inst *Instance) addByteLogUp(digitIndices []int, multiplicitiesFirst, tableLen int) {
	rsChallenge := inst.addBuilder(1, func(first int) witness.Builder { return witness.NewChallenge(first) })
	szChallenge := inst.addBuilder(1, func(first int) witness.Builder { return witness.NewChallenge(first) })

	var readTerms []witness.Term
	for _, d := range digitIndices {
		inv := memcheck.AddIndexedLookupFactor(inst, rsChallenge, szChallenge, field.Zero(), WitnessOne, d)
		readTerms = append(readTerms, witness.Term{Coeff: field.One(), Index: inv})
	}
	sumReads := inst.addSum(readTerms)

	var tableTerms []witness.Term
	for v := 0; v < tableLen; v++ {
		valueWitness := inst.addBuilder(1, func(first int) witness.Builder { return witness.NewConstant(first, field.FromUint64(uint64(v))) })
		inv := memcheck.AddIndexedLookupFactor(inst, rsChallenge, szChallenge, field.Zero(), WitnessOne, valueWitness)
		weighted := inst.addProduct(multiplicitiesFirst+v, inv)
		tableTerms = append(tableTerms, witness.Term{Coeff: field.One(), Index: weighted})
	}
	sumTable := inst.addSum(tableTerms)

	inst.addConstraint(
		[]RowEntry{{Col: WitnessOne, Value: field.One()}},
		[]RowEntry{{Col: sumReads, Value: field.One()}},
		[]RowEntry{{Col: sumTable, Value: field.One()}},
	)
}

func termsToEntries(terms []witness.Term) []RowEntry {
	out := make([]RowEntry, len(terms))
	for i, t := range terms {
		out[i] = RowEntry{Col: t.Index, Value: t.Coeff}
	}
	return out
}

// addBinOp allocates both witness.And and witness.Xor for lhs/rhs,
// regardless of which one the opcode asked for: the combined table
// (addBinOpTable) proves AND and XOR results together over a single
// denominator keyed on all four of (lhs, rhs, andOut, xorOut), so a
// lookup against it needs both outputs on hand even when only one is
// ACIR-visible.
func (inst *Instance) addBinOp(lhsAcir, rhsAcir, outAcir int, isXor bool) {
	lhs := inst.toR1CSWitness(lhsAcir)
	rhs := inst.toR1CSWitness(rhsAcir)
	andOut, xorOut := inst.addBinOpRaw(lhs, rhs)
	if isXor {
		inst.AcirToR1CS[outAcir] = xorOut
	} else {
		inst.AcirToR1CS[outAcir] = andOut
	}
}

// addBinOpRaw is addBinOp generalized to R1CS witness indices that
// need not come from an ACIR witness: internal/r1cs's SHA-256 gadget
// byte-decomposes 32-bit words into fresh witnesses of its own and
// needs AND/XOR on those bytes directly.
func (inst *Instance) addBinOpRaw(lhs, rhs int) (andOut, xorOut int) {
	andOut = inst.addBuilder(1, func(first int) witness.Builder { return witness.NewAnd(first, lhs, rhs) })
	xorOut = inst.addBuilder(1, func(first int) witness.Builder { return witness.NewXor(first, lhs, rhs) })
	inst.binOps = append(inst.binOps, binOpRecord{lhs: lhs, rhs: rhs, andOut: andOut, xorOut: xorOut})
	return andOut, xorOut
}

// addBinOpTable closes the combined AND/XOR LogUp argument: every
// buffered binOpRecord contributes one read-side factor keyed on its
// (lhs, rhs, andOut, xorOut) quadruple, matched against a table side
// built from all 2^(2*BinOpAtomicBits) possible (a, b) byte pairs and
// their true AND/XOR outputs, weighted by how many times the solver
// claims each pair was looked up. Run once per circuit, after every
// AndOp/XorOp has been seen, since the table-side multiplicities
// aren't known until then.
func (inst *Instance) addBinOpTable() {
	rsChallenge := inst.addBuilder(1, func(first int) witness.Builder { return witness.NewChallenge(first) })
	szChallenge := inst.addBuilder(1, func(first int) witness.Builder { return witness.NewChallenge(first) })

	factor := func(lhs, rhs, andOut, xorOut int) int {
		denom := inst.addBuilder(1, func(first int) witness.Builder {
			return witness.NewCombinedBinOpLookupDenominator(first, szChallenge, rsChallenge, lhs, rhs, andOut, xorOut)
		})
		inv := inst.addBuilder(1, func(first int) witness.Builder {
			return witness.NewCombinedTableEntryInverse(first, denom)
		})
		inst.addConstraint(
			[]RowEntry{{Col: denom, Value: field.One()}},
			[]RowEntry{{Col: inv, Value: field.One()}},
			[]RowEntry{{Col: WitnessOne, Value: field.One()}},
		)
		return inv
	}

	var readTerms []witness.Term
	for _, op := range inst.binOps {
		inv := factor(op.lhs, op.rhs, op.andOut, op.xorOut)
		readTerms = append(readTerms, witness.Term{Coeff: field.One(), Index: inv})
	}
	sumReads := inst.addSum(readTerms)

	mask := uint64(1)<<witness.BinOpAtomicBits - 1
	n := 1 << (2 * witness.BinOpAtomicBits)
	lhsConst := make([]int, len(inst.binOps))
	rhsConst := make([]int, len(inst.binOps))
	for i, op := range inst.binOps {
		lhsConst[i] = op.lhs
		rhsConst[i] = op.rhs
	}
	multiplicitiesFirst := inst.addBuilder(n, func(first int) witness.Builder {
		return witness.NewMultiplicitiesForBinOp(first, lhsConst, rhsConst)
	})

	var tableTerms []witness.Term
	for a := 0; a <= int(mask); a++ {
		for b := 0; b <= int(mask); b++ {
			aVal := uint64(a)
			bVal := uint64(b)
			aWitness := inst.addBuilder(1, func(first int) witness.Builder { return witness.NewConstant(first, field.FromUint64(aVal)) })
			bWitness := inst.addBuilder(1, func(first int) witness.Builder { return witness.NewConstant(first, field.FromUint64(bVal)) })
			andWitness := inst.addBuilder(1, func(first int) witness.Builder { return witness.NewConstant(first, field.FromUint64(aVal&bVal)) })
			xorWitness := inst.addBuilder(1, func(first int) witness.Builder { return witness.NewConstant(first, field.FromUint64(aVal^bVal)) })
			inv := factor(aWitness, bWitness, andWitness, xorWitness)
			row := (a << witness.BinOpAtomicBits) | b
			weighted := inst.addProduct(multiplicitiesFirst+row, inv)
			tableTerms = append(tableTerms, witness.Term{Coeff: field.One(), Index: weighted})
		}
	}
	sumTable := inst.addSum(tableTerms)

	inst.addConstraint(
		[]RowEntry{{Col: WitnessOne, Value: field.One()}},
		[]RowEntry{{Col: sumReads, Value: field.One()}},
		[]RowEntry{{Col: sumTable, Value: field.One()}},
	)
}

// remapAssertZero rewrites an AssertZero's ACIR witness references
// into R1CS witness references, allocating Acir builders as needed.
func remapAssertZero(inst *Instance, expr AssertZero) AssertZero {
	out := AssertZero{QC: expr.QC}
	for _, mt := range expr.MulTerms {
		out.MulTerms = append(out.MulTerms, MulTerm{
			Coeff: mt.Coeff,
			A:     inst.toR1CSWitness(mt.A),
			B:     inst.toR1CSWitness(mt.B),
		})
	}
	for _, lt := range expr.Linear {
		out.Linear = append(out.Linear, LinearTerm{Coeff: lt.Coeff, Witness: inst.toR1CSWitness(lt.Witness)})
	}
	return out
}
