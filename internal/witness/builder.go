// Package witness implements the witness-builder IR: a tagged-variant
// DSL describing how to derive every R1CS witness slot from earlier
// slots, ACIR inputs, or transcript challenges, plus the layer
// scheduler and pre/post-challenge splitter that operate over it.
//
// The reference implementation (provekit/common/src/witness) encodes
// this as a Rust enum with one arm per variant. The idiomatic Go
// shape for "one of several things, dispatched by behavior" is an
// interface with one implementing type per variant, which is what
// this package does: every variant below implements Builder, and the
// scheduler/splitter work purely in terms of that interface so they
// never need a type switch over the full variant list.
package witness

import (
	"fmt"

	"github.com/reilabs/provekit-go/internal/field"
	"github.com/reilabs/provekit-go/internal/transcript"
)

// Context carries everything a Builder needs beyond earlier witness
// values: the ACIR input witness map, the shared Fiat-Shamir
// transcript, and any live memory-block simulation state (used by the
// RAM/Spice builders).
type Context struct {
	Acir       []field.Element
	Transcript *transcript.Transcript
	Memory     *MemoryState
}

// Builder computes one or more contiguous witness slots.
type Builder interface {
	// FirstIndex is the lowest witness index this builder writes.
	FirstIndex() int
	// NumOutputs is the number of contiguous slots this builder writes,
	// starting at FirstIndex.
	NumOutputs() int
	// Reads returns the witness indices this builder's Solve needs
	// already-resolved values for (not counting ACIR or transcript
	// inputs, which are not R1CS witness reads).
	Reads() []int
	// IsInverse marks builders that must be solved in a dedicated batch
	// (Inverse and CombinedTableEntryInverse), so Montgomery's trick
	// applies across the whole layer instead of one inversion per call.
	IsInverse() bool
	// Solve computes this builder's output slots given a witness vector
	// where every index in Reads() is already populated.
	Solve(w []field.Element, ctx *Context) ([]field.Element, error)
}

// base provides the FirstIndex/NumOutputs bookkeeping shared by every
// variant, since Go has no enum-field inheritance.
type base struct {
	first int
	count int
}

func (b base) FirstIndex() int  { return b.first }
func (b base) NumOutputs() int  { return b.count }

func newBase(first, count int) base { return base{first: first, count: count} }

// writesOverlap reports whether two builders would write an
// overlapping index range; used defensively when assembling a
// Program.
func writesOverlap(a, b Builder) bool {
	aEnd := a.FirstIndex() + a.NumOutputs()
	bEnd := b.FirstIndex() + b.NumOutputs()
	return a.FirstIndex() < bEnd && b.FirstIndex() < aEnd
}

// ErrOverlap reports a builder-index-collision bug: two builders
// claim to write the same witness slot. This is always a compiler
// bug, not user input, so callers are expected to panic on it rather
// than route it through the recoverable error taxonomy.
type ErrOverlap struct {
	A, B Builder
}

func (e ErrOverlap) Error() string {
	return fmt.Sprintf("witness builder overlap: [%d,%d) and [%d,%d)",
		e.A.FirstIndex(), e.A.FirstIndex()+e.A.NumOutputs(),
		e.B.FirstIndex(), e.B.FirstIndex()+e.B.NumOutputs())
}
