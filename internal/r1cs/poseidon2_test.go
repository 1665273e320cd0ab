package r1cs

import (
	"testing"

	"github.com/reilabs/provekit-go/internal/field"
	"github.com/reilabs/provekit-go/internal/transcript"
	"github.com/reilabs/provekit-go/internal/witness"
	"github.com/stretchr/testify/require"
)

// referencePoseidon2 runs the same external/internal MDS + round
// schedule as addPoseidon2Permutation but over plain field.Element
// values, so it can be used to derive an expected output without
// going through the gadget under test.
func referencePoseidon2(width int, input []field.Element) []field.Element {
	extMDS := func(s []field.Element) []field.Element {
		switch len(s) {
		case 2:
			sum := field.Add(s[0], s[1])
			return []field.Element{field.Add(s[0], sum), field.Add(s[1], sum)}
		case 3:
			sum := field.Add(field.Add(s[0], s[1]), s[2])
			return []field.Element{field.Add(s[0], sum), field.Add(s[1], sum), field.Add(s[2], sum)}
		case 4:
			t0 := field.Add(s[0], s[1])
			t1 := field.Add(s[2], s[3])
			two := field.FromUint64(2)
			doubleIn1 := field.Mul(two, s[1])
			doubleIn3 := field.Mul(two, s[3])
			four := field.FromUint64(4)
			quadT0 := field.Mul(four, t0)
			quadT1 := field.Mul(four, t1)
			t2 := field.Add(doubleIn1, t1)
			t3 := field.Add(doubleIn3, t0)
			t4 := field.Add(quadT1, t3)
			t5 := field.Add(quadT0, t2)
			return []field.Element{field.Add(t3, t5), t5, field.Add(t2, t4), t4}
		}
		blocks := len(s) / 4
		blockOut := make([][]field.Element, blocks)
		for i := 0; i < blocks; i++ {
			blockOut[i] = extMDS(s[4*i : 4*i+4])
		}
		colAcc := make([]field.Element, 4)
		for j := 0; j < 4; j++ {
			acc := field.Zero()
			for i := 0; i < blocks; i++ {
				acc = field.Add(acc, blockOut[i][j])
			}
			colAcc[j] = acc
		}
		out := make([]field.Element, 0, len(s))
		for i := 0; i < blocks; i++ {
			for j := 0; j < 4; j++ {
				out = append(out, field.Add(blockOut[i][j], colAcc[j]))
			}
		}
		return out
	}

	intMDS := func(x []field.Element) []field.Element {
		switch len(x) {
		case 2:
			sum := field.Add(x[0], x[1])
			return []field.Element{field.Add(x[0], sum), field.Add(field.Mul(field.FromUint64(2), x[1]), sum)}
		case 3:
			sum := field.Add(field.Add(x[0], x[1]), x[2])
			return []field.Element{
				field.Add(x[0], sum), field.Add(x[1], sum), field.Add(field.Mul(field.FromUint64(2), x[2]), sum),
			}
		}
		diag := poseidon2Diag(len(x))
		sumAll := field.Zero()
		for _, v := range x {
			sumAll = field.Add(sumAll, v)
		}
		out := make([]field.Element, len(x))
		for i := range out {
			out[i] = field.Add(field.Mul(diag[i], x[i]), sumAll)
		}
		return out
	}

	pow5 := func(x field.Element) field.Element {
		x2 := field.Mul(x, x)
		x4 := field.Mul(x2, x2)
		return field.Mul(x4, x)
	}

	state := append([]field.Element(nil), input...)
	state = extMDS(state)

	rcFull1 := poseidon2RoundConstants(width, 0)
	rcFull2 := poseidon2RoundConstants(width, 1)
	rcPartial := poseidon2PartialConstants(width)

	for r := 0; r < poseidon2FullRounds; r++ {
		after := make([]field.Element, width)
		for i := range after {
			after[i] = pow5(field.Add(state[i], rcFull1[r][i]))
		}
		state = extMDS(after)
	}
	for r := 0; r < poseidon2PartialRounds; r++ {
		tmp := append([]field.Element(nil), state...)
		tmp[0] = pow5(field.Add(tmp[0], rcPartial[r]))
		state = intMDS(tmp)
	}
	for r := 0; r < poseidon2FullRounds; r++ {
		after := make([]field.Element, width)
		for i := range after {
			after[i] = pow5(field.Add(state[i], rcFull2[r][i]))
		}
		state = extMDS(after)
	}
	return state
}

func TestCompilePoseidon2PermutationSatisfied(t *testing.T) {
	const width = 4
	input := []field.Element{
		field.FromUint64(1), field.FromUint64(2), field.FromUint64(3), field.FromUint64(4),
	}
	expected := referencePoseidon2(width, input)

	inputs := make([]int, width)
	outputs := make([]int, width)
	acir := make([]field.Element, 2*width)
	for i := 0; i < width; i++ {
		inputs[i] = i
		acir[i] = input[i]
		outputs[i] = width + i
		acir[width+i] = expected[i]
	}

	opcodes := []Opcode{Poseidon2Permutation{Width: width, Inputs: inputs, Outputs: outputs}}
	inst, err := Compile(opcodes)
	require.NoError(t, err)

	prog, err := witness.NewProgram(inst.Builders)
	require.NoError(t, err)

	w, err := prog.Solve(acir, transcript.New(), nil)
	require.NoError(t, err)
	require.Len(t, w, inst.NumWitnesses())

	assertSatisfied(t, inst, w)
}

func TestCompilePoseidon2PermutationRejectsBadWidth(t *testing.T) {
	_, err := Compile([]Opcode{Poseidon2Permutation{Width: 5, Inputs: []int{0, 1, 2, 3, 4}, Outputs: []int{5, 6, 7, 8, 9}}})
	require.Error(t, err)
}
