package transcript

import (
	"math/big"
	"testing"

	"github.com/reilabs/provekit-go/internal/field"
	"github.com/stretchr/testify/require"
)

func TestSynchronization(t *testing.T) {
	run := func() []field.Element {
		tr := New()
		tr.Tag(TagCommitStatement)
		tr.Absorb(field.FromBigInt(big.NewInt(1)))
		tr.Absorb(field.FromBigInt(big.NewInt(2)))
		tr.Tag(TagSumcheckPolynomials)
		return tr.SqueezeN(3)
	}

	a := run()
	b := run()
	require.Equal(t, a, b)
}

func TestSqueezeProducesDistinctChallenges(t *testing.T) {
	tr := New()
	challenges := tr.SqueezeN(4)
	seen := map[string]bool{}
	for _, c := range challenges {
		key := c.ToBigInt().String()
		require.False(t, seen[key], "duplicate challenge")
		seen[key] = true
	}
}

func TestAbsorbChangesState(t *testing.T) {
	tr1 := New()
	tr2 := New()
	tr1.Absorb(field.FromBigInt(big.NewInt(5)))
	c1 := tr1.Squeeze()
	c2 := tr2.Squeeze()
	require.NotEqual(t, c1, c2)
}
