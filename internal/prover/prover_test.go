package prover

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/reilabs/provekit-go/internal/field"
	"github.com/reilabs/provekit-go/internal/r1cs"
	"github.com/reilabs/provekit-go/internal/serialize"
	"github.com/reilabs/provekit-go/internal/spartan"
	"github.com/reilabs/provekit-go/internal/transcript"
)

func multiplyAddRequest(t *testing.T) Request {
	t.Helper()
	opcodes := []r1cs.Opcode{
		r1cs.AssertZero{
			MulTerms: []r1cs.MulTerm{{Coeff: field.One(), A: 0, B: 1}},
			Linear:   []r1cs.LinearTerm{{Coeff: field.Neg(field.One()), Witness: 2}},
			QC:       field.FromUint64(3),
		},
	}
	docs, err := r1cs.EncodeOpcodes(opcodes)
	require.NoError(t, err)

	witnessDoc := r1cs.EncodeWitness([]field.Element{field.FromUint64(7), field.FromUint64(11), field.FromUint64(80)})
	return Request{
		Program: r1cs.ProgramDoc{PublicInputs: 2, Opcodes: docs},
		Witness: witnessDoc,
	}
}

func TestProveReturnsVerifiableProof(t *testing.T) {
	req := multiplyAddRequest(t)
	doc, err := Prove(req)
	require.NoError(t, err)
	require.NotNil(t, doc.MaskedProof)

	opcodes, err := r1cs.DecodeOpcodes(req.Program.Opcodes)
	require.NoError(t, err)
	inst, err := r1cs.Compile(opcodes)
	require.NoError(t, err)
	require.NoError(t, spartan.Verify(inst, serialize.DecodeSpartanProof(*doc), transcript.New()))
}

func TestQueueRunsSubmittedJobToCompletion(t *testing.T) {
	q := NewQueue()
	id := q.Submit(multiplyAddRequest(t))

	job, ok := q.Get(id)
	require.True(t, ok)
	require.Contains(t, []Status{StatusQueued, StatusRunning, StatusDone}, job.Status)

	require.Eventually(t, func() bool {
		job, ok := q.Get(id)
		return ok && job.Status == StatusDone
	}, 5*time.Second, 10*time.Millisecond)

	job, ok = q.Get(id)
	require.True(t, ok)
	require.Equal(t, StatusDone, job.Status)
	require.NotNil(t, job.Proof)
	require.Empty(t, job.Err)
}

func TestQueueReportsFailedJobs(t *testing.T) {
	q := NewQueue()
	req := multiplyAddRequest(t)
	req.Witness = nil // malformed: the empty witness map lacks the ACIR inputs the program reads
	id := q.Submit(req)

	require.Eventually(t, func() bool {
		job, ok := q.Get(id)
		return ok && job.Status == StatusFailed
	}, 5*time.Second, 10*time.Millisecond)

	job, _ := q.Get(id)
	require.NotEmpty(t, job.Err)
}
