// Package transcript implements the native (non-circuit) side of the
// Fiat-Shamir sponge this prover shares with the teacher's in-circuit
// verifier (github.com/reilabs/gnark-nimue's Arthur/IOPattern). Where
// the verifier reconstructs challenges inside a gnark circuit via
// skyscraper.Skyscraper, this package drives the same permutation
// natively so the prover can absorb commitments and draw challenges
// without a circuit around it.
package transcript

import (
	"math/big"

	"github.com/reilabs/provekit-go/internal/field"
	"github.com/reilabs/provekit-go/internal/skyscraper"
)

// domainSeparator is the fixed UTF-8 literal every transcript is
// constructed with, matching the reference prover's tag.
const domainSeparator = "🌪️"

// Tag names used to separate absorb/squeeze phases. Prover and
// verifier must use identical tags in identical order.
const (
	TagCommitStatement      = "commit_statement"
	TagSumcheckPolynomials  = "add_sumcheck_polynomials"
	TagHintLastFolds        = "hint(\"last folds\")"
	TagWhirProof            = "add_whir_proof"
)

// Transcript is a stateful Fiat-Shamir sponge. The state is a single
// field element; absorption folds new material in via Skyscraper
// compression, and squeezing runs the permutation forward to produce
// fresh challenge material. This construction mirrors a duplex sponge
// built on a 2-to-1 compression function: state = Compress(state, x).
type Transcript struct {
	state   field.Element
	tagLog  []string
	counter uint64
}

// New creates a transcript seeded with the fixed domain separator.
func New() *Transcript {
	t := &Transcript{}
	seed := new(big.Int).SetBytes([]byte(domainSeparator))
	t.state = field.FromBigInt(seed)
	return t
}

// Tag records a domain-separation label in the transcript's call log
// and folds it into the sponge state, the same role IOPattern entries
// play on the verifier side.
func (t *Transcript) Tag(tag string) {
	t.tagLog = append(t.tagLog, tag)
	tagSeed := new(big.Int).SetBytes([]byte(tag))
	t.state = skyscraper.Compress(t.state, field.FromBigInt(tagSeed))
}

// Absorb folds a single field element into the sponge state.
func (t *Transcript) Absorb(x field.Element) {
	t.state = skyscraper.Compress(t.state, x)
}

// AbsorbSlice absorbs a sequence of field elements in order.
func (t *Transcript) AbsorbSlice(xs []field.Element) {
	for _, x := range xs {
		t.Absorb(x)
	}
}

// Squeeze produces one fresh challenge field element and advances the
// sponge state so the next Squeeze call yields independent material.
func (t *Transcript) Squeeze() field.Element {
	t.counter++
	challenge := skyscraper.Compress(t.state, field.FromBigInt(new(big.Int).SetUint64(t.counter)))
	t.state = challenge
	return challenge
}

// SqueezeN draws n independent challenges.
func (t *Transcript) SqueezeN(n int) []field.Element {
	out := make([]field.Element, n)
	for i := range out {
		out[i] = t.Squeeze()
	}
	return out
}

// TagLog returns the ordered sequence of tags absorbed so far, for
// tests asserting prover/verifier synchronization.
func (t *Transcript) TagLog() []string {
	return append([]string(nil), t.tagLog...)
}

// NargString returns the accumulated narg-style transcript bytes: the
// canonical byte encoding of the final sponge state, the form the
// proof's transcript component is serialized in.
func (t *Transcript) NargString() []byte {
	canon := field.Reduce(t.state)
	out := make([]byte, 32)
	for i := 0; i < 4; i++ {
		for b := 0; b < 8; b++ {
			out[i*8+b] = byte(canon[i] >> (8 * b))
		}
	}
	return out
}
