// Package errs holds sentinel errors naming the classes of the
// prover's error taxonomy: configuration, split, memory, transcript,
// solver and register-allocator errors. No package in this module
// returns or wraps these values: the witness splitter reports its
// failure with its own formatted error, and solver invariant
// violations, register-allocator exhaustion and memory-block misuse
// are reported by panicking at the point of detection.
package errs

import "errors"

var (
	// ErrShapeMismatch names the case where witness length exceeds
	// scheme capacity or constraint count exceeds 2^m0.
	ErrShapeMismatch = errors.New("shape mismatch: witness or constraint count exceeds configured capacity")

	// ErrSplit names the case where a public-input builder cannot be
	// placed in w1, which only happens if the caller misspecifies the
	// public-input set.
	ErrSplit = errors.New("split error: public-input builder not reachable from w1")

	// ErrMemoryOutOfBounds names a memory operation that addresses
	// outside its block's declared extent.
	ErrMemoryOutOfBounds = errors.New("memory checker: address out of bounds")

	// ErrTranscriptExhausted names a transcript operation attempted on
	// a sponge that has been closed.
	ErrTranscriptExhausted = errors.New("transcript: no further absorb/squeeze permitted")

	// ErrNoSolution names the case where the R1CS solver cannot
	// determine a value for a witness because an upstream input never
	// arrived.
	ErrNoSolution = errors.New("solver: unable to determine witness value")

	// ErrRegisterExhaustion names a program that does not fit in
	// either register bank (the HLA allocator panics in that case).
	ErrRegisterExhaustion = errors.New("hla: register bank exhausted")
)
