package witness

import (
	"fmt"
)

// Split is the result of partitioning a builder list into a
// pre-challenge half (w1) and a post-challenge half (w2): every w2
// builder either is a Challenge or transitively reads a Challenge's
// output, and no w1 builder reads anything a w2 builder writes
// (soundness requires every challenge to be drawn only after all of
// w1 has been absorbed into the transcript).
type Split struct {
	W1, W2 []Builder
	// Remap maps an original witness index to (inW2, newIndex) in its
	// half's renumbered, contiguous index space.
	Remap map[int]RemappedIndex
}

type RemappedIndex struct {
	InW2     bool
	NewIndex int
}

// SplitChallenges partitions builders into w1/w2 following these
// steps: (1) find every Challenge builder, (2) take the forward
// closure of "reads, transitively, a slot a Challenge builder or
// something in that closure wrote" — that closure is w2, (3) every
// other builder is w1, (4) renumber each half's witness indices
// contiguously starting at 0, (5) return the old->new remap so
// callers can rewrite R1CS matrix columns and the ACIR->witness map
// to match. Step 3 also verifies no w1 builder reads a w2 output,
// since that would mean a value depends on an unseen challenge.
func SplitChallenges(builders []Builder) (Split, error) {
	n := len(builders)
	writerOf := map[int]int{}
	for i, b := range builders {
		for off := 0; off < b.NumOutputs(); off++ {
			writerOf[b.FirstIndex()+off] = i
		}
	}

	inW2 := make([]bool, n)
	for i, b := range builders {
		if _, ok := b.(*Challenge); ok {
			inW2[i] = true
		}
	}

	changed := true
	for changed {
		changed = false
		for i, b := range builders {
			if inW2[i] {
				continue
			}
			for _, r := range b.Reads() {
				if dep, ok := writerOf[r]; ok && inW2[dep] {
					inW2[i] = true
					changed = true
					break
				}
			}
		}
	}

	var w1, w2 []Builder
	remap := make(map[int]RemappedIndex, n)
	w1Next, w2Next := 0, 0
	for i, b := range builders {
		count := b.NumOutputs()
		if inW2[i] {
			for off := 0; off < count; off++ {
				remap[b.FirstIndex()+off] = RemappedIndex{InW2: true, NewIndex: w2Next + off}
			}
			w2Next += count
			w2 = append(w2, b)
		} else {
			for off := 0; off < count; off++ {
				remap[b.FirstIndex()+off] = RemappedIndex{InW2: false, NewIndex: w1Next + off}
			}
			w1Next += count
			w1 = append(w1, b)
		}
	}

	for i, b := range builders {
		if inW2[i] {
			continue
		}
		for _, r := range b.Reads() {
			if dep, ok := writerOf[r]; ok && inW2[dep] {
				return Split{}, fmt.Errorf("witness: w1 builder at %d reads post-challenge slot %d, violating the splitter's public-input placement invariant", b.FirstIndex(), r)
			}
		}
	}

	return Split{W1: w1, W2: w2, Remap: remap}, nil
}
