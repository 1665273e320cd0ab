package witness

import (
	"fmt"

	"github.com/reilabs/provekit-go/internal/field"
	"github.com/reilabs/provekit-go/internal/transcript"
)

// Program is a scheduled, ready-to-solve half of a witness (either w1
// or the full unsplit builder list, before a split has been applied).
type Program struct {
	Builders   []Builder
	Layers     []Layer
	WitnessLen int
}

// NewProgram schedules builders into layers, erroring out if two
// builders claim the same witness slot or the dependency graph has a
// cycle (both always compiler bugs).
func NewProgram(builders []Builder) (*Program, error) {
	layers, err := Schedule(builders)
	if err != nil {
		return nil, err
	}
	length := 0
	for _, b := range builders {
		if end := b.FirstIndex() + b.NumOutputs(); end > length {
			length = end
		}
	}
	return &Program{Builders: builders, Layers: layers, WitnessLen: length}, nil
}

// Solve runs the program's layers against the given ACIR input map and
// transcript, returning the full witness vector.
func (p *Program) Solve(acir []field.Element, tr *transcript.Transcript, mem *MemoryState) ([]field.Element, error) {
	ctx := &Context{Acir: acir, Transcript: tr, Memory: mem}
	return Solve(p.Layers, p.WitnessLen, ctx)
}

// SolveSplit runs a splitter.Split's two halves in sequence, absorbing
// w1's resolved values into the transcript between halves so w2's
// Challenge builders draw from a transcript state that has actually
// seen w1 (the entire point of splitting in the first place).
func SolveSplit(split Split, acir []field.Element, tr *transcript.Transcript, mem *MemoryState) (w1, w2 []field.Element, err error) {
	p1, err := NewProgram(RemapBuilders(split.W1, split.Remap))
	if err != nil {
		return nil, nil, fmt.Errorf("witness: scheduling w1: %w", err)
	}
	w1, err = p1.Solve(acir, tr, mem)
	if err != nil {
		return nil, nil, fmt.Errorf("witness: solving w1: %w", err)
	}
	tr.AbsorbSlice(w1)

	p2, err := NewProgram(RemapBuilders(split.W2, split.Remap))
	if err != nil {
		return nil, nil, fmt.Errorf("witness: scheduling w2: %w", err)
	}
	w2, err = p2.Solve(acir, tr, mem)
	if err != nil {
		return nil, nil, fmt.Errorf("witness: solving w2: %w", err)
	}
	return w1, w2, nil
}
