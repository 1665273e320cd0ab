package witness

import (
	"fmt"

	"github.com/reilabs/provekit-go/internal/field"
	"golang.org/x/sync/errgroup"
)

// Layer is one batch of builders that can be solved concurrently:
// every builder in a layer reads only slots written by earlier
// layers. Inverse builders are placed in their own layer and solved
// together via Montgomery's trick rather than one modular inverse
// each.
type Layer struct {
	Builders  []Builder
	IsInverse bool
}

// Schedule performs a modified Kahn topological sort over builders,
// grouping consecutive independent builders into layers and splitting
// off Inverse/CombinedTableEntryInverse builders into dedicated
// inverse-only layers, so the solver can batch-invert each such layer
// in one pass instead of paying one big.Int ModInverse per slot.
func Schedule(builders []Builder) ([]Layer, error) {
	n := len(builders)
	writerOf := map[int]int{} // witness index -> builder position
	for i, b := range builders {
		for off := 0; off < b.NumOutputs(); off++ {
			idx := b.FirstIndex() + off
			if prev, ok := writerOf[idx]; ok {
				return nil, ErrOverlap{A: builders[prev], B: b}
			}
			writerOf[idx] = i
		}
	}

	deps := make([][]int, n) // position -> positions it depends on
	indegree := make([]int, n)
	dependents := make([][]int, n)
	addEdge := func(dep, i int) {
		deps[i] = append(deps[i], dep)
		dependents[dep] = append(dependents[dep], i)
		indegree[i]++
	}

	// MemoryInit and SpiceWitnesses builders mutate shared per-block
	// memory state as a side effect of Solve, so ops against the same
	// block can never run concurrently or out of program order
	// regardless of what witness slots they read. Chain each one to the
	// previous op on its block with a synthetic edge; MemoryInit always
	// comes first since it's the one that registers the block.
	lastOpOnBlock := map[int]int{}
	for i, b := range builders {
		var blockID int
		switch v := b.(type) {
		case *MemoryInit:
			blockID = v.BlockID
		case *SpiceWitnesses:
			blockID = v.BlockID
		case *MemoryFinal:
			blockID = v.BlockID
		default:
			continue
		}
		if prev, ok := lastOpOnBlock[blockID]; ok {
			addEdge(prev, i)
		}
		lastOpOnBlock[blockID] = i
	}

	for i, b := range builders {
		seen := map[int]bool{}
		for _, dep := range deps[i] {
			seen[dep] = true
		}
		for _, r := range b.Reads() {
			dep, ok := writerOf[r]
			if !ok {
				continue // ACIR/transcript read, not an R1CS witness dependency
			}
			if dep == i || seen[dep] {
				continue
			}
			seen[dep] = true
			addEdge(dep, i)
		}
	}

	ready := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	resolved := make([]bool, n)
	var layers []Layer
	remaining := n
	for remaining > 0 {
		if len(ready) == 0 {
			return nil, fmt.Errorf("witness: dependency cycle among builders")
		}
		var normal, inverse []int
		for _, pos := range ready {
			if builders[pos].IsInverse() {
				inverse = append(inverse, pos)
			} else {
				normal = append(normal, pos)
			}
		}
		var thisRound []int
		isInverseLayer := false
		switch {
		case len(normal) > 0:
			thisRound = normal
		default:
			thisRound = inverse
			isInverseLayer = true
		}

		layerBuilders := make([]Builder, len(thisRound))
		for i, pos := range thisRound {
			layerBuilders[i] = builders[pos]
			resolved[pos] = true
		}
		layers = append(layers, Layer{Builders: layerBuilders, IsInverse: isInverseLayer})
		remaining -= len(thisRound)

		next := ready[:0]
		for _, pos := range ready {
			if !resolved[pos] {
				next = append(next, pos)
			}
		}
		ready = next
		for _, pos := range thisRound {
			for _, dep := range dependents[pos] {
				indegree[dep]--
				if indegree[dep] == 0 {
					ready = append(ready, dep)
				}
			}
		}
	}
	return layers, nil
}

// Solve runs every layer in order, writing results into a
// newly-allocated witness vector of size witnessLen. Inverse layers
// are solved with one batched Montgomery inversion shared across every
// builder in the layer instead of per-builder modular inverses.
func Solve(layers []Layer, witnessLen int, ctx *Context) ([]field.Element, error) {
	w := make([]field.Element, witnessLen)
	for _, layer := range layers {
		if layer.IsInverse {
			if err := solveInverseLayer(layer, w, ctx); err != nil {
				return nil, err
			}
			continue
		}
		var g errgroup.Group
		for _, b := range layer.Builders {
			b := b
			g.Go(func() error {
				out, err := b.Solve(w, ctx)
				if err != nil {
					return fmt.Errorf("witness: builder at %d: %w", b.FirstIndex(), err)
				}
				// Safe without synchronization: every builder in a layer
				// writes a disjoint [FirstIndex, FirstIndex+NumOutputs)
				// range (enforced by Schedule's overlap check), and reads
				// only slots earlier layers already finished writing.
				copyInto(w, b.FirstIndex(), out)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func copyInto(w []field.Element, first int, values []field.Element) {
	for i, v := range values {
		w[first+i] = v
	}
}

// solveInverseLayer inverts every builder's single input in one batch
// using the standard prefix-product trick: compute running products,
// invert the final product once, then walk backwards recovering each
// individual inverse from the running product and the next partial
// inverse. This trades N modular inversions for 1 inversion plus 3N
// multiplications.
func solveInverseLayer(layer Layer, w []field.Element, ctx *Context) error {
	n := len(layer.Builders)
	if n == 0 {
		return nil
	}
	inputs := make([]field.Element, n)
	for i, b := range layer.Builders {
		reads := b.Reads()
		if len(reads) != 1 {
			return fmt.Errorf("witness: inverse builder at %d must read exactly one slot, got %d", b.FirstIndex(), len(reads))
		}
		inputs[i] = w[reads[0]]
	}

	prefix := make([]field.Element, n)
	acc := field.One()
	for i, v := range inputs {
		acc = field.Mul(acc, v)
		prefix[i] = acc
	}
	accInv := field.Inverse(acc)

	outputs := make([]field.Element, n)
	for i := n - 1; i >= 0; i-- {
		var prefixBefore field.Element
		if i == 0 {
			prefixBefore = field.One()
		} else {
			prefixBefore = prefix[i-1]
		}
		outputs[i] = field.Mul(accInv, prefixBefore)
		accInv = field.Mul(accInv, inputs[i])
	}

	for i, b := range layer.Builders {
		copyInto(w, b.FirstIndex(), []field.Element{outputs[i]})
	}
	return nil
}
