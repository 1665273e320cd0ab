// Package prover runs compile-solve-prove jobs off the HTTP request
// path: cmd/server accepts an opcode stream and a witness map, hands
// them to a Queue, and returns a job id the client polls. Within one
// job, the witness solve runs each scheduler layer's builders on
// concurrent goroutines, and the Spartan proof runs on a single
// goroutine. Queue adds concurrency at its boundary, accepting many
// requests while running exactly one job at a time on a background
// worker goroutine.
package prover

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/reilabs/provekit-go/internal/r1cs"
	"github.com/reilabs/provekit-go/internal/serialize"
	"github.com/reilabs/provekit-go/internal/spartan"
	"github.com/reilabs/provekit-go/internal/transcript"
	"github.com/reilabs/provekit-go/internal/witness"
)

// Status is a Job's lifecycle state.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Request is the decoded body of a proving request: an opcode stream
// and the ACIR witness map to solve it against.
type Request struct {
	Program r1cs.ProgramDoc
	Witness r1cs.WitnessDoc
}

// Job tracks one submitted Request's progress and, once done, its
// result.
type Job struct {
	ID     uuid.UUID
	Status Status
	Proof  *serialize.SpartanProofDoc
	Err    string
}

// Queue is an in-memory, single-worker proving queue.
type Queue struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*Job
	reqs map[uuid.UUID]Request
	work chan uuid.UUID
}

// NewQueue starts a Queue and its background worker goroutine.
func NewQueue() *Queue {
	q := &Queue{
		jobs: make(map[uuid.UUID]*Job),
		reqs: make(map[uuid.UUID]Request),
		work: make(chan uuid.UUID, 64),
	}
	go q.run()
	return q
}

// Submit enqueues req and returns its job id immediately.
func (q *Queue) Submit(req Request) uuid.UUID {
	id := uuid.New()
	q.mu.Lock()
	q.jobs[id] = &Job{ID: id, Status: StatusQueued}
	q.reqs[id] = req
	q.mu.Unlock()
	q.work <- id
	return id
}

// Get returns the current state of a submitted job.
func (q *Queue) Get(id uuid.UUID) (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

func (q *Queue) run() {
	for id := range q.work {
		q.process(id)
	}
}

func (q *Queue) process(id uuid.UUID) {
	q.mu.Lock()
	req := q.reqs[id]
	q.jobs[id].Status = StatusRunning
	q.mu.Unlock()

	doc, err := Prove(req)

	q.mu.Lock()
	defer q.mu.Unlock()
	job := q.jobs[id]
	if err != nil {
		job.Status = StatusFailed
		job.Err = err.Error()
		return
	}
	job.Status = StatusDone
	job.Proof = doc
}

// Prove runs the compile-solve-prove pipeline synchronously (the same
// steps cmd/prove's Action runs) and returns the wire form of the
// resulting proof.
func Prove(req Request) (*serialize.SpartanProofDoc, error) {
	opcodes, err := r1cs.DecodeOpcodes(req.Program.Opcodes)
	if err != nil {
		return nil, fmt.Errorf("prover: decoding opcode stream: %w", err)
	}
	acir, err := r1cs.DecodeWitness(req.Witness)
	if err != nil {
		return nil, fmt.Errorf("prover: decoding witness: %w", err)
	}

	inst, err := r1cs.Compile(opcodes)
	if err != nil {
		return nil, fmt.Errorf("prover: compiling opcode stream: %w", err)
	}

	wprog, err := witness.NewProgram(inst.Builders)
	if err != nil {
		return nil, fmt.Errorf("prover: scheduling witness program: %w", err)
	}
	z, err := wprog.Solve(acir, transcript.New(), witness.NewMemoryState())
	if err != nil {
		return nil, fmt.Errorf("prover: solving witness: %w", err)
	}

	proof, err := spartan.Prove(inst, z, transcript.New())
	if err != nil {
		return nil, fmt.Errorf("prover: %w", err)
	}

	doc := serialize.EncodeSpartanProof(proof)
	return &doc, nil
}
