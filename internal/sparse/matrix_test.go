package sparse

import (
	"math/big"
	"testing"

	"github.com/reilabs/provekit-go/internal/field"
	"github.com/stretchr/testify/require"
)

func fe(v int64) field.Element { return field.FromBigInt(big.NewInt(v)) }

func TestSetGetAndShapeGrowth(t *testing.T) {
	m := New(NewInterner())
	m.Set(2, 3, fe(5))
	require.Equal(t, 3, m.NumRows)
	require.Equal(t, 4, m.NumColumns)
	require.Equal(t, fe(5), m.Get(2, 3))
	require.Equal(t, fe(0), m.Get(0, 0))
}

func TestSetZeroRemovesEntry(t *testing.T) {
	m := New(NewInterner())
	m.Set(0, 0, fe(9))
	require.Len(t, m.Entries(), 1)
	m.Set(0, 0, fe(0))
	require.Len(t, m.Entries(), 0)
}

func TestInterningIsShared(t *testing.T) {
	in := NewInterner()
	a := New(in)
	b := New(in)
	a.Set(0, 0, fe(7))
	b.Set(0, 0, fe(7))
	require.Equal(t, a.Entries()[0].ValueIdx, b.Entries()[0].ValueIdx)
}

func TestMulVec(t *testing.T) {
	m := New(NewInterner())
	m.Set(0, 0, fe(2))
	m.Set(0, 1, fe(3))
	m.Set(1, 1, fe(4))
	v := []field.Element{fe(5), fe(6)}
	out := m.MulVec(v)
	require.Equal(t, fe(2*5+3*6), out[0])
	require.Equal(t, fe(4*6), out[1])
}

func TestDotProductDistributivity(t *testing.T) {
	a := New(NewInterner())
	a.Set(0, 0, fe(2))
	a.Set(0, 1, fe(3))
	b := New(NewInterner())
	b.Set(0, 0, fe(10))
	b.Set(0, 1, fe(20))
	alpha := fe(4)

	combined := AddScaled(a, b, alpha)
	v := []field.Element{fe(1), fe(1)}

	left := combined.MulVec(v)
	av := a.MulVec(v)
	bv := b.MulVec(v)
	right := addElements(av[0], field.Mul(alpha, bv[0]))
	require.Equal(t, right, left[0])
}
