package serialize

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reilabs/provekit-go/internal/field"
)

func TestReprRoundTrip(t *testing.T) {
	vals := []field.Element{field.Zero(), field.One(), field.FromInt64(12345), field.FromInt64(-7)}
	for _, v := range vals {
		got := FromRepr(ToRepr(v))
		require.True(t, field.Equal(v, got), "round trip changed %v", v.ToBigInt())
	}
}

func TestMarshalElementsRoundTrip(t *testing.T) {
	vals := []field.Element{field.FromInt64(1), field.FromInt64(2), field.FromInt64(3)}
	data, err := MarshalElements(vals)
	require.NoError(t, err)

	got, err := UnmarshalElements(data)
	require.NoError(t, err)
	require.Len(t, got, len(vals))
	for i := range vals {
		require.True(t, field.Equal(vals[i], got[i]))
	}
}
