package whir

import (
	"testing"

	"github.com/reilabs/provekit-go/internal/field"
	"github.com/reilabs/provekit-go/internal/transcript"
	"github.com/stretchr/testify/require"
)

func TestCommitOpenVerify(t *testing.T) {
	evals := []field.Element{
		field.FromUint64(1), field.FromUint64(2), field.FromUint64(3), field.FromUint64(4),
	}
	c := Commit(evals)
	require.Equal(t, 2, c.NumVars)

	tr := transcript.New()
	proof, finalValue := Open(c, tr, 2)
	require.True(t, field.Equal(finalValue, proof.FinalValue))
	require.NoError(t, Verify(proof))

	expected := EvaluateMultilinear(evals, proof.FoldingPoint)
	require.True(t, field.Equal(expected, finalValue))
}

func TestVerifyRejectsTamperedProof(t *testing.T) {
	evals := []field.Element{field.FromUint64(5), field.FromUint64(9)}
	c := Commit(evals)
	tr := transcript.New()
	proof, _ := Open(c, tr, 1)
	if len(proof.RoundOpenings) > 0 && len(proof.RoundOpenings[0]) > 0 {
		proof.RoundOpenings[0][0].Folded = field.Add(proof.RoundOpenings[0][0].Folded, field.One())
		require.Error(t, Verify(proof))
	}
}
