package witness

import (
	"testing"

	"github.com/reilabs/provekit-go/internal/field"
	"github.com/reilabs/provekit-go/internal/transcript"
	"github.com/stretchr/testify/require"
)

func TestScheduleAndSolveLinearChain(t *testing.T) {
	// witness: [one, acir0, acir0^2, acir0^2 + 5]
	builders := []Builder{
		NewConstant(0, field.One()),
		NewAcir(1, 0),
		NewProduct(2, 1, 1),
		NewSum(3, []Term{{Coeff: field.One(), Index: 2}, {Coeff: field.FromUint64(5), Index: 0}}),
	}
	prog, err := NewProgram(builders)
	require.NoError(t, err)

	acir := []field.Element{field.FromUint64(7)}
	w, err := prog.Solve(acir, transcript.New(), nil)
	require.NoError(t, err)

	require.True(t, field.Equal(w[0], field.One()))
	require.True(t, field.Equal(w[1], field.FromUint64(7)))
	require.True(t, field.Equal(w[2], field.FromUint64(49)))
	require.True(t, field.Equal(w[3], field.FromUint64(54)))
}

func TestScheduleBatchesInverses(t *testing.T) {
	builders := []Builder{
		NewConstant(0, field.FromUint64(3)),
		NewConstant(1, field.FromUint64(9)),
		NewInverse(2, 0),
		NewInverse(3, 1),
	}
	layers, err := Schedule(builders)
	require.NoError(t, err)

	var sawInverseLayer bool
	for _, l := range layers {
		if l.IsInverse {
			sawInverseLayer = true
			require.Len(t, l.Builders, 2)
		}
	}
	require.True(t, sawInverseLayer)

	prog, err := NewProgram(builders)
	require.NoError(t, err)
	w, err := prog.Solve(nil, transcript.New(), nil)
	require.NoError(t, err)
	require.True(t, field.Equal(field.Mul(w[0], w[2]), field.One()))
	require.True(t, field.Equal(field.Mul(w[1], w[3]), field.One()))
}

func TestScheduleDetectsOverlap(t *testing.T) {
	builders := []Builder{
		NewConstant(0, field.One()),
		NewConstant(0, field.FromUint64(2)),
	}
	_, err := Schedule(builders)
	require.Error(t, err)
}
