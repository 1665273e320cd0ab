package field

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func randBig(rng *rand.Rand) *big.Int {
	buf := make([]byte, 32)
	rng.Read(buf)
	v := new(big.Int).SetBytes(buf)
	return v.Mod(v, pBig)
}

func TestMontgomeryRoundTrip(t *testing.T) {
	// On raw Montgomery limbs mul(a, R) == a (mod p); as field
	// elements, mul(mul(a, R), R_inv) == a.
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 64; i++ {
		a := randBig(rng)
		aElem := Element{bigToLimbs(a)}
		rElem := Element{R}
		prod := Mul(aElem, rElem)
		require.Equal(t, a, limbsToBig(prod.Limbs))

		aR := Mul(FromBigInt(a), FromBigInt(limbsToBig(R)))
		back := Mul(aR, FromBigInt(limbsToBig(RInv)))
		require.Equal(t, a, back.ToBigInt())
	}
}

func TestMulMatchesBigInt(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 64; i++ {
		a := randBig(rng)
		b := randBig(rng)
		ea := FromBigInt(a)
		eb := FromBigInt(b)
		got := Mul(ea, eb).ToBigInt()
		want := new(big.Int).Mod(new(big.Int).Mul(a, b), pBig)
		require.Equal(t, want, got)
	}
}

func TestSqrMatchesMul(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 32; i++ {
		a := FromBigInt(randBig(rng))
		require.Equal(t, Mul(a, a), Sqr(a))
	}
}

func TestOutputBound(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	maxBig := limbsToBig(OutputMax)
	for i := 0; i < 64; i++ {
		a := FromBigInt(randBig(rng))
		b := FromBigInt(randBig(rng))
		got := limbsToBig(Mul(a, b).Limbs)
		require.True(t, got.Cmp(maxBig) < 0)
	}
}

func TestBlockEquivalence(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	sa := FromBigInt(randBig(rng))
	sb := FromBigInt(randBig(rng))
	v0a := FromBigInt(randBig(rng))
	v0b := FromBigInt(randBig(rng))
	v1a := FromBigInt(randBig(rng))
	v1b := FromBigInt(randBig(rng))

	s, v0, v1 := BlockMul(sa, sb, v0a, v0b, v1a, v1b)
	wantS := Mul(sa, sb)
	wantV0, wantV1 := SimdMul(v0a, v0b, v1a, v1b)
	require.Equal(t, wantS, s)
	require.Equal(t, wantV0, v0)
	require.Equal(t, wantV1, v1)
}

func TestMulByZero(t *testing.T) {
	zero := FromBigInt(big.NewInt(0))
	other := FromBigInt(big.NewInt(0xdead))
	require.Equal(t, big.NewInt(0), Mul(zero, other).ToBigInt())
}

func TestU260RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	for i := 0; i < 64; i++ {
		a := bigToLimbs(randBig(rng))
		u := U256ToU260Shl2(a)
		got := U260ToU256(u)
		require.Equal(t, a, got)
	}
}

func TestRandomInRangeAndDistinct(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 32; i++ {
		e := Random()
		require.Less(t, e.ToBigInt().Cmp(pBig), 0)
		require.GreaterOrEqual(t, e.ToBigInt().Sign(), 0)
		key := e.ToBigInt().String()
		require.False(t, seen[key], "duplicate random element")
		seen[key] = true
	}
}
