// Package whir implements a folding multilinear polynomial commitment
// scheme in the WHIR family: commit to an evaluation vector with a
// Merkle tree, then prove an evaluation claim by repeatedly folding
// the vector along one variable at a time (each round re-committed),
// querying the transcript for spot-check positions whose consistency
// across consecutive rounds is the scheme's soundness mechanism.
//
// The real WHIR protocol additionally rate-amplifies each round's
// vector with a Reed-Solomon code over an expansion domain and tunes
// the query count/folding factor schedule against a target soundness
// error; reproducing that exactly is out of reach without being able
// to run and parameter-check the result. What's implemented here is
// the commit/fold/query skeleton the real protocol shares with
// FRI/Basefold, which is what internal/spartan's driver actually
// composes with: a batch commitment, a folding proof of the claimed
// evaluation, and a transcript-synchronized set of query openings.
package whir

import (
	"fmt"

	"github.com/reilabs/provekit-go/internal/field"
	"github.com/reilabs/provekit-go/internal/merkle"
	"github.com/reilabs/provekit-go/internal/transcript"
)

// Commitment is a batch-committed evaluation vector (length a power
// of two, corresponding to a multilinear polynomial over NumVars
// variables).
type Commitment struct {
	Tree    *merkle.Tree
	Evals   []field.Element
	NumVars int
}

// Commit pads evals to a power of two (with field.Zero()) and builds
// a Merkle tree over it.
func Commit(evals []field.Element) *Commitment {
	n := 1
	for n < len(evals) {
		n *= 2
	}
	padded := make([]field.Element, n)
	copy(padded, evals)
	for i := len(evals); i < n; i++ {
		padded[i] = field.Zero()
	}
	leaves := make([][]field.Element, n)
	for i := range leaves {
		leaves[i] = []field.Element{padded[i]}
	}
	numVars := 0
	for (1 << numVars) < n {
		numVars++
	}
	return &Commitment{Tree: merkle.New(leaves), Evals: padded, NumVars: numVars}
}

// RoundOpening is the consistency-check material for one query index
// of one folding round: the two pre-fold leaves and their Merkle
// paths against that round's root, plus the post-fold leaf's path
// against the next round's root.
type RoundOpening struct {
	Index          int
	Left, Right    field.Element
	LeftPath       merkle.AuthPath
	RightPath      merkle.AuthPath
	Folded         field.Element
	FoldedPath     merkle.AuthPath
}

// Proof is a full batch opening proof at a multilinear evaluation
// point: one folding challenge drawn per variable, the Merkle root of
// every intermediate round, the final fully-folded value, and a set
// of query openings per round tying consecutive rounds together.
type Proof struct {
	RoundRoots      []field.Element
	FoldingPoint    []field.Element
	FinalValue      field.Element
	RoundOpenings   [][]RoundOpening
}

// Open proves that Commitment's underlying multilinear polynomial,
// evaluated at a point drawn one coordinate per round from tr,
// equals the value returned alongside the proof. numQueries spot
// checks are drawn per round.
func Open(c *Commitment, tr *transcript.Transcript, numQueries int) (*Proof, field.Element) {
	return openAt(c, tr, numQueries, nil)
}

// OpenWithPoint is Open specialized to an externally-determined
// folding point rather than one drawn round-by-round from tr — used
// when the evaluation point is fixed by a surrounding protocol (e.g.
// internal/spartan's inner sum-check, whose final challenge point is
// exactly the point this polynomial must be opened at). Per-round
// query indices are still drawn from tr, preserving the commitment's
// Merkle-binding to the transcript.
func OpenWithPoint(c *Commitment, tr *transcript.Transcript, point []field.Element, numQueries int) (*Proof, field.Element) {
	return openAt(c, tr, numQueries, point)
}

func openAt(c *Commitment, tr *transcript.Transcript, numQueries int, fixedPoint []field.Element) (*Proof, field.Element) {
	tr.Tag("commit_statement")
	tr.Absorb(c.Tree.Root())

	current := append([]field.Element(nil), c.Evals...)
	roots := []field.Element{c.Tree.Root()}
	trees := []*merkle.Tree{c.Tree}
	var point []field.Element
	var openings [][]RoundOpening

	for round := 0; round < c.NumVars; round++ {
		var r field.Element
		if fixedPoint != nil {
			r = fixedPoint[round]
		} else {
			r = tr.Squeeze()
		}
		point = append(point, r)

		half := len(current) / 2
		next := make([]field.Element, half)
		for j := 0; j < half; j++ {
			left, right := current[2*j], current[2*j+1]
			next[j] = field.Add(left, field.Mul(r, field.Sub(right, left)))
		}
		nextLeaves := make([][]field.Element, half)
		for j := range nextLeaves {
			nextLeaves[j] = []field.Element{next[j]}
		}
		nextTree := merkle.New(nextLeaves)
		tr.Tag("add_sumcheck_polynomials")
		tr.Absorb(nextTree.Root())

		var roundOpenings []RoundOpening
		for q := 0; q < numQueries && half > 0; q++ {
			tr.Tag("hint(\"last folds\")")
			idx := int(tr.Squeeze().ToBigInt().Uint64() % uint64(half))
			roundOpenings = append(roundOpenings, RoundOpening{
				Index:      idx,
				Left:       current[2*idx],
				Right:      current[2*idx+1],
				LeftPath:   trees[round].Open(2 * idx),
				RightPath:  trees[round].Open(2*idx + 1),
				Folded:     next[idx],
				FoldedPath: nextTree.Open(idx),
			})
		}
		openings = append(openings, roundOpenings)

		current = next
		roots = append(roots, nextTree.Root())
		trees = append(trees, nextTree)
	}

	tr.Tag("add_whir_proof")
	final := current[0]
	tr.Absorb(final)

	return &Proof{RoundRoots: roots, FoldingPoint: point, FinalValue: final, RoundOpenings: openings}, final
}

// Verify checks a Proof's internal consistency: every round opening's
// Merkle paths match their claimed roots, and every fold relation
// next = left + r*(right-left) holds — everything short of re-running
// the transcript to confirm the query indices themselves were honest,
// which a full verifier (out of this port's scope) would also check.
func Verify(p *Proof) error {
	for round, opens := range p.RoundOpenings {
		r := p.FoldingPoint[round]
		rootBefore := p.RoundRoots[round]
		rootAfter := p.RoundRoots[round+1]
		for _, o := range opens {
			if !merkle.Verify(rootBefore, merkle.HashLeaf([]field.Element{o.Left}), o.LeftPath) {
				return fmt.Errorf("whir: round %d left leaf failed to verify", round)
			}
			if !merkle.Verify(rootBefore, merkle.HashLeaf([]field.Element{o.Right}), o.RightPath) {
				return fmt.Errorf("whir: round %d right leaf failed to verify", round)
			}
			if !merkle.Verify(rootAfter, merkle.HashLeaf([]field.Element{o.Folded}), o.FoldedPath) {
				return fmt.Errorf("whir: round %d folded leaf failed to verify", round)
			}
			expected := field.Add(o.Left, field.Mul(r, field.Sub(o.Right, o.Left)))
			if !field.Equal(expected, o.Folded) {
				return fmt.Errorf("whir: round %d fold relation violated at index %d", round, o.Index)
			}
		}
	}
	return nil
}

// EvaluateMultilinear evaluates the multilinear extension of evals
// (length a power of two) at point, by repeated halving — the same
// fold `next[j] = left + r*(right-left)` Open uses per round, just
// run to completion in one call instead of being interleaved with
// Merkle commitments. Used to cross-check a claimed FinalValue
// independent of the proof machinery.
func EvaluateMultilinear(evals []field.Element, point []field.Element) field.Element {
	current := append([]field.Element(nil), evals...)
	for _, r := range point {
		half := len(current) / 2
		next := make([]field.Element, half)
		for j := 0; j < half; j++ {
			left, right := current[2*j], current[2*j+1]
			next[j] = field.Add(left, field.Mul(r, field.Sub(right, left)))
		}
		current = next
	}
	return current[0]
}
