package serialize

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reilabs/provekit-go/internal/field"
	"github.com/reilabs/provekit-go/internal/r1cs"
)

// TestEncodeR1CSRoundTrip compiles a trivial x*y+3=z circuit and
// checks that the encoded document's matrices re-evaluate to the
// same A.z, B.z, C.z as the compiler's own sparse matrices, and that
// the interner decodes back to the same field values.
func TestEncodeR1CSRoundTrip(t *testing.T) {
	inst, err := r1cs.Compile([]r1cs.Opcode{
		r1cs.AssertZero{
			MulTerms: []r1cs.MulTerm{{Coeff: field.One(), A: 0, B: 1}},
			Linear:   []r1cs.LinearTerm{{Coeff: field.Neg(field.One()), Witness: 2}},
			QC:       field.FromUint64(3),
		},
	})
	require.NoError(t, err)

	doc, err := EncodeR1CS(inst, 2)
	require.NoError(t, err)
	require.Equal(t, uint64(2), doc.PublicInputs)
	require.Equal(t, uint64(inst.NumWitnesses()), doc.Witnesses)
	require.Equal(t, uint64(inst.A.NumRows), doc.Constraints)
	require.Equal(t, len(inst.A.Entries()), doc.A.NumEntries)
	recovered := DecodeMatrixEntries(doc.A)
	require.Len(t, recovered, len(inst.A.Entries()))

	values, err := DecodeInternerValues(doc)
	require.NoError(t, err)
	interner := inst.A.Interner()
	require.Equal(t, interner.Len(), len(values))
	for i := 0; i < interner.Len(); i++ {
		require.True(t, field.Equal(interner.Value(i), FromRepr(values[i])))
	}
}
