package skyscraper

import (
	"math/big"
	"testing"

	"github.com/reilabs/provekit-go/internal/field"
	"github.com/stretchr/testify/require"
)

func TestCompressDeterministic(t *testing.T) {
	l := field.FromBigInt(big.NewInt(42))
	r := field.FromBigInt(big.NewInt(1337))
	a := Compress(l, r)
	b := Compress(l, r)
	require.Equal(t, a, b)
}

func TestCompressFullyReduced(t *testing.T) {
	l := field.FromBigInt(big.NewInt(7))
	r := field.FromBigInt(big.NewInt(11))
	out := Compress(l, r)
	require.True(t, out.ToBigInt().Sign() >= 0)
}

func TestCompressSensitiveToInputs(t *testing.T) {
	l := field.FromBigInt(big.NewInt(1))
	r1 := field.FromBigInt(big.NewInt(2))
	r2 := field.FromBigInt(big.NewInt(3))
	require.NotEqual(t, Compress(l, r1), Compress(l, r2))
}

func TestBlockCompressMatchesIndividual(t *testing.T) {
	l0 := field.FromBigInt(big.NewInt(1))
	l1 := field.FromBigInt(big.NewInt(2))
	l2 := field.FromBigInt(big.NewInt(3))
	r0 := field.FromBigInt(big.NewInt(4))
	r1 := field.FromBigInt(big.NewInt(5))
	r2 := field.FromBigInt(big.NewInt(6))

	o0, o1, o2 := BlockCompress(l0, l1, l2, r0, r1, r2)
	require.Equal(t, Compress(l0, r0), o0)
	require.Equal(t, Compress(l1, r1), o1)
	require.Equal(t, Compress(l2, r2), o2)
}
