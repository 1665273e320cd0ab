package witness

import (
	"testing"

	"github.com/reilabs/provekit-go/internal/field"
	"github.com/reilabs/provekit-go/internal/transcript"
	"github.com/stretchr/testify/require"
)

func TestSplitChallengesSeparatesHalves(t *testing.T) {
	// witness: [one, acir0, challenge, challenge*acir0]
	builders := []Builder{
		NewConstant(0, field.One()),
		NewAcir(1, 0),
		NewChallenge(2),
		NewProduct(3, 1, 2),
	}
	split, err := SplitChallenges(builders)
	require.NoError(t, err)
	require.Len(t, split.W1, 2)
	require.Len(t, split.W2, 2)

	acir := []field.Element{field.FromUint64(7)}
	tr := transcript.New()
	w1, w2, err := SolveSplit(split, acir, tr, nil)
	require.NoError(t, err)
	require.True(t, field.Equal(w1[0], field.One()))
	require.True(t, field.Equal(w1[1], field.FromUint64(7)))
	require.True(t, field.Equal(w2[1], field.Mul(w2[0], w1[1])))
}

func TestSplitChallengesMovesChallengeReaderToW2(t *testing.T) {
	// A w1-looking builder can never literally read a not-yet-assigned
	// slot in this IR (indices are assigned in solve order), so this
	// test instead checks that a builder reading a Challenge's output
	// is correctly classified into w2, not left in w1.
	builders := []Builder{
		NewConstant(0, field.One()),
		NewChallenge(1),
		NewProduct(2, 0, 1),
	}
	split, err := SplitChallenges(builders)
	require.NoError(t, err)
	require.Len(t, split.W1, 1)
	require.Len(t, split.W2, 2)
}
