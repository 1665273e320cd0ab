package hla

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// reservation records that hardware register hw is earmarked for
// output variable reg, available for general use by other fresh
// registers only until reg's lifetime begins.
type reservation struct {
	reg           FreshRegister
	lifetimeBegin int
}

// pinnedOutputRegisters tracks the subset of a bank's registers
// reserved up-front for output variables. iter hands out reservation
// slots in ascending order (so SYS-V-like ABIs that use a few
// low-numbered registers plus one high one still work); reservations
// records which fresh register each pinned slot belongs to.
type pinnedOutputRegisters struct {
	iter         *bitset.BitSet
	reservations map[HardwareRegister]reservation
}

func newPinnedOutputRegisters(pool []HardwareRegister) *pinnedOutputRegisters {
	iter := bitset.New(uint(poolWidth(pool)))
	for _, r := range pool {
		iter.Set(uint(r))
	}
	return &pinnedOutputRegisters{iter: iter, reservations: map[HardwareRegister]reservation{}}
}

// reserveOutputRegister claims the next available pinned slot for
// reg, recording its lifetime's begin instruction so popFirst can
// later tell which other fresh registers may still use it in the
// meantime. Reports false once the pool is exhausted.
func (p *pinnedOutputRegisters) reserveOutputRegister(lifetimes Lifetimes, reg FreshRegister) bool {
	i, ok := p.iter.NextSet(0)
	if !ok {
		return false
	}
	p.iter.Clear(i)
	p.reservations[HardwareRegister(i)] = reservation{reg: reg, lifetimeBegin: lifetimes[reg].Begin}
	return true
}

// compatible reports whether hw may be handed to reg given endLifetime,
// reg's own last use: either hw isn't pinned at all, hw is pinned to
// reg itself, or reg's lifetime ends before the pinned reservation's
// owner needs it.
func (p *pinnedOutputRegisters) compatible(hw HardwareRegister, reg FreshRegister, endLifetime int) bool {
	res, pinned := p.reservations[hw]
	if !pinned {
		return true
	}
	if res.reg == reg {
		return true
	}
	return endLifetime < res.lifetimeBegin
}

// registerAllocator is one bank's pool of hardware registers plus the
// pinned-output reservations layered over it.
type registerAllocator struct {
	free   *bitset.BitSet
	pinned *pinnedOutputRegisters
}

func newRegisterAllocator(pool []HardwareRegister) *registerAllocator {
	free := bitset.New(uint(poolWidth(pool)))
	for _, r := range pool {
		free.Set(uint(r))
	}
	return &registerAllocator{free: free, pinned: newPinnedOutputRegisters(pool)}
}

func poolWidth(pool []HardwareRegister) int {
	max := 0
	for _, r := range pool {
		if int(r)+1 > max {
			max = int(r) + 1
		}
	}
	return max
}

// popFirst finds the first free register compatible with any pending
// pin for reg given its lifetime's end, removes it from the free set,
// and returns it.
func (a *registerAllocator) popFirst(reg FreshRegister, endLifetime int) (HardwareRegister, bool) {
	for i, ok := a.free.NextSet(0); ok; i, ok = a.free.NextSet(i + 1) {
		hw := HardwareRegister(i)
		if a.pinned.compatible(hw, reg, endLifetime) {
			a.free.Clear(i)
			return hw, true
		}
	}
	return 0, false
}

// insert returns a register to the free pool, reporting false if it
// was already free (a double-free, which indicates a bug upstream).
func (a *registerAllocator) insert(reg HardwareRegister) bool {
	i := uint(reg)
	if a.free.Test(i) {
		return false
	}
	a.free.Set(i)
	return true
}

// RegisterBank holds the two hardware register pools spec §4.10
// names: general-purpose (x0-x17, x20-x28; x18/x19/x29-x31 excluded as
// OS/LLVM/link-register/stack-pointer reserved) and vector (v0-v31).
type RegisterBank struct {
	general *registerAllocator
	vector  *registerAllocator
}

// NewRegisterBank builds a bank with both pools fully free.
func NewRegisterBank() *RegisterBank {
	return &RegisterBank{
		general: newRegisterAllocator(generalPurposePool()),
		vector:  newRegisterAllocator(vectorPool()),
	}
}

func generalPurposePool() []HardwareRegister {
	regs := make([]HardwareRegister, 0, 26)
	for i := 0; i <= 17; i++ {
		regs = append(regs, HardwareRegister(i))
	}
	for i := 20; i <= 28; i++ {
		regs = append(regs, HardwareRegister(i))
	}
	return regs
}

func vectorPool() []HardwareRegister {
	regs := make([]HardwareRegister, 32)
	for i := range regs {
		regs[i] = HardwareRegister(i)
	}
	return regs
}

func (b *RegisterBank) pool(t RegisterType) *registerAllocator {
	if t == RegisterGeneral {
		return b.general
	}
	return b.vector
}

// ReserveOutputVariable pins hardware registers for every register in
// variable up-front, so that later allocation of ordinary operands
// never steals a slot an output needs before its own lifetime starts.
// Panics (codegen-time fatal, per spec §7) if the pool runs out of
// pinnable slots.
func ReserveOutputVariable(bank *RegisterBank, lifetimes Lifetimes, variable FreshVariable) {
	pool := bank.pool(variable.Registers[0].Type)
	for _, r := range variable.Registers {
		if !pool.pinned.reserveOutputRegister(lifetimes, r.Reg) {
			panic(fmt.Sprintf("hla: ran out of registers to reserve %s! reduce the number of outputs.", variable.Label))
		}
	}
}

// RegisterMapping tracks the active fresh->hardware assignments
// during one allocation pass.
type RegisterMapping struct {
	mapping map[FreshRegister]ReifiedRegister[HardwareRegister]
}

// NewRegisterMapping returns an empty mapping.
func NewRegisterMapping() *RegisterMapping {
	return &RegisterMapping{mapping: make(map[FreshRegister]ReifiedRegister[HardwareRegister], 100)}
}

// Allocated reports how many fresh registers currently hold a
// hardware assignment.
func (m *RegisterMapping) Allocated() int { return len(m.mapping) }

func (m *RegisterMapping) getRegister(fresh ReifiedRegister[FreshRegister]) ReifiedRegister[HardwareRegister] {
	hw, ok := m.mapping[fresh.Reg]
	if !ok {
		panic(fmt.Sprintf("hla: internal error: %v has not been assigned yet", fresh.Reg))
	}
	return ReifiedRegister[HardwareRegister]{Reg: hw.Reg, Type: fresh.Type}
}

// GetOrAllocateRegister returns reg's existing hardware assignment if
// one exists, otherwise pops a fresh one from the appropriate bank
// pool, recording it. Panics if the bank has no compatible register
// left (HLA does not spill).
func (m *RegisterMapping) GetOrAllocateRegister(bank *RegisterBank, reg ReifiedRegister[FreshRegister], lifetime Lifetime) ReifiedRegister[HardwareRegister] {
	if hw, ok := m.mapping[reg.Reg]; ok {
		return ReifiedRegister[HardwareRegister]{Reg: hw.Reg, Type: reg.Type}
	}
	hw, ok := bank.pool(reg.Type).popFirst(reg.Reg, lifetime.End)
	if !ok {
		panic("hla: all registers are in use. HLA does not support spilling to stack for performance reasons. Reduce the number of registers simultaneously in use.")
	}
	out := ReifiedRegister[HardwareRegister]{Reg: hw, Type: reg.Type}
	m.mapping[reg.Reg] = out
	return out
}

func (m *RegisterMapping) freeRegister(bank *RegisterBank, fresh FreshRegister) {
	hw, ok := m.mapping[fresh]
	if !ok {
		panic(fmt.Sprintf("hla: trying to free a fresh register that has not been assigned a hardware register: %d", fresh))
	}
	delete(m.mapping, fresh)
	if !bank.pool(hw.Type).insert(hw.Reg) {
		panic(fmt.Sprintf("hla: hardware register %v is assigned to more than one fresh register", hw.Reg))
	}
}

// AllocateInputVariables assigns hardware registers to every input
// variable's registers, in order, without releasing anything
// (inputs live for the whole program's opening instructions).
func AllocateInputVariables(mapping *RegisterMapping, bank *RegisterBank, inputs []FreshVariable, lifetimes Lifetimes) []AllocatedVariable {
	out := make([]AllocatedVariable, len(inputs))
	for i, v := range inputs {
		regs := make([]ReifiedRegister[HardwareRegister], len(v.Registers))
		for j, r := range v.Registers {
			regs[j] = mapping.GetOrAllocateRegister(bank, r, lifetimes[r.Reg])
		}
		out[i] = AllocatedVariable{Label: v.Label, Registers: regs}
	}
	return out
}

// Allocate transforms instructions over fresh registers into
// instructions over hardware registers: for each instruction, in
// order, it resolves operands to their already-assigned hardware
// registers, releases any fresh register whose lifetime ends exactly
// at this instruction, then allocates hardware registers for the
// instruction's results. A result that no later instruction reads
// holds no register yet when its lifetime ends, so the release step
// skips it and it keeps the register it is then given.
func Allocate(mapping *RegisterMapping, bank *RegisterBank, instructions []Instruction[FreshRegister], lifetimes Lifetimes) []Instruction[HardwareRegister] {
	releases := releasesAt(instructions, lifetimes)
	out := make([]Instruction[HardwareRegister], len(instructions))
	for i, inst := range instructions {
		src := make([]ReifiedRegister[HardwareRegister], len(inst.Operands))
		for j, op := range inst.Operands {
			src[j] = mapping.getRegister(op)
		}

		for fresh := range releases[i] {
			if _, live := mapping.mapping[fresh]; !live {
				continue
			}
			mapping.freeRegister(bank, fresh)
		}

		dest := make([]ReifiedRegister[HardwareRegister], len(inst.Results))
		for j, res := range inst.Results {
			dest[j] = mapping.GetOrAllocateRegister(bank, res, lifetimes[res.Reg])
		}

		out[i] = Instruction[HardwareRegister]{
			Opcode:   inst.Opcode,
			Results:  dest,
			Operands: src,
			Modifier: inst.Modifier,
		}
	}
	return out
}

// releasesAt buckets every fresh register by the instruction index at
// which its lifetime ends, so Allocate knows what to free after
// resolving each instruction's operands.
func releasesAt(instructions []Instruction[FreshRegister], lifetimes Lifetimes) []map[FreshRegister]struct{} {
	releases := make([]map[FreshRegister]struct{}, len(instructions))
	for i := range releases {
		releases[i] = map[FreshRegister]struct{}{}
	}
	for reg, lt := range lifetimes {
		releases[lt.End][reg] = struct{}{}
	}
	return releases
}
