package witness

import "github.com/reilabs/provekit-go/internal/field"

// MemoryBlock is one ROM/RAM block's live simulation state while
// solving: the current value at each address, and the logical
// timestamp (a monotonically increasing op counter) of the last write
// to it. Spice's offline memory-checking argument needs the
// timestamp, not just the value, to build its read/write multisets.
type MemoryBlock struct {
	Values     []field.Element
	Timestamps []uint64
	nextTick   uint64
}

// NewMemoryBlock creates a block of size initialized from init (memory
// blocks that start zeroed pass a slice of field.Zero()).
func NewMemoryBlock(init []field.Element) *MemoryBlock {
	b := &MemoryBlock{
		Values:     append([]field.Element(nil), init...),
		Timestamps: make([]uint64, len(init)),
	}
	return b
}

// NextOp advances and returns this block's own op counter, starting
// at 1 (0 is reserved for the init state). Spice timestamps are kept
// block-local rather than drawn from a clock shared across every
// block in the circuit, because the Spice range checks (internal/
// memcheck's Finalize) bound a read timestamp by the block-local
// op index that produced it -- a compile-time constant that only
// matches the runtime timestamp if each block ticks its own counter.
func (m *MemoryBlock) NextOp() uint64 {
	m.nextTick++
	return m.nextTick
}

// MemoryState holds every memory block live during one witness solve,
// keyed by the block ID the R1CS compiler assigned it.
type MemoryState struct {
	Blocks map[int]*MemoryBlock
}

// NewMemoryState creates an empty memory-simulation context.
func NewMemoryState() *MemoryState {
	return &MemoryState{Blocks: map[int]*MemoryBlock{}}
}

// Block returns the block registered under id, or nil if unknown.
func (m *MemoryState) Block(id int) *MemoryBlock {
	return m.Blocks[id]
}

// RegisterBlock installs a block under id, overwriting any existing
// block at that id (used once per memory-init opcode during compile).
func (m *MemoryState) RegisterBlock(id int, init []field.Element) {
	m.Blocks[id] = NewMemoryBlock(init)
}

// ReadOp reads addr from block id, returning the value found and the
// timestamp of the write that produced it (0 if never written since
// block init). Panics on an out-of-range address: a compiler bug, not
// user input, since the compiler sizes blocks from the ACIR memory
// declarations.
func (m *MemoryBlock) ReadOp(addr uint64) (field.Element, uint64) {
	if addr >= uint64(len(m.Values)) {
		panic("witness: memory read out of bounds")
	}
	return m.Values[addr], m.Timestamps[addr]
}

// WriteOp stores value at addr and stamps it with ts, returning the
// value and timestamp that were there immediately before the write
// (Spice's argument reads the pre-image as part of the same op).
func (m *MemoryBlock) WriteOp(addr uint64, value field.Element, ts uint64) (field.Element, uint64) {
	if addr >= uint64(len(m.Values)) {
		panic("witness: memory write out of bounds")
	}
	prevValue, prevTs := m.Values[addr], m.Timestamps[addr]
	m.Values[addr] = value
	m.Timestamps[addr] = ts
	return prevValue, prevTs
}
