// Package spartan implements a Spartan-style sum-check argument that
// a solved R1CS witness satisfies Az∘Bz=Cz, composed with
// internal/whir as the polynomial commitment backing the final
// witness evaluation.
//
// The argument runs in two sum-checks, mirroring
// run_zk_sumcheck_prover's two-stage structure in
// original_source/provekit/prover/src/whir_r1cs.rs: an outer
// sum-check over the constraint-index hypercube reduces
// sum_x eq(r,x)*(Az(x)Bz(x)-Cz(x)) = 0 to three scalar claims
// Az(r'), Bz(r'), Cz(r'); an inner sum-check (grounded on the same
// file's create_combined_statement_over_two_polynomials, which also
// turns a batch of row-weighted claims into one combined evaluation
// to open) then reduces a random linear combination of those three
// claims to one witness evaluation, opened against a WHIR commitment
// via whir.OpenWithPoint.
//
// The outer sum-check and the witness commitment both carry the
// zero-knowledge blinding whir_r1cs.rs adds on top of the bare
// soundness argument above:
//
//   - The committed witness is never the raw witness. Prove masks it
//     with a fresh random vector (maskZ), commits to the masked
//     witness and to maskZ separately, and the verifier only ever
//     recovers a claimed evaluation by subtracting the two openings.
//     Every Merkle leaf either proof ever exposes is then either
//     maskZ (pure randomness) or z+maskZ (randomness-shifted), never
//     a raw witness value, which is what the WHIR commitment/opening
//     in internal/whir would otherwise leak directly (it has no
//     rate-amplification step of its own to hide its fold leaves).
//   - The outer sum-check's per-round messages are blinded with an
//     independent random multilinear polynomial B committed up front
//     alongside the masked witness: each round reveals
//     h̃ᵢ(X) = Fᵢ(X) + ρ·Bᵢ(X) instead of the real Fᵢ(X), and a final
//     WHIR opening of B's commitment at the outer challenge point
//     proves the revealed messages were consistent with the
//     committed B rather than chosen adaptively.
//
// whir_r1cs.rs builds B from m0 independent random cubic univariates
// (one per sum-check round, generate_blinding_spartan_univariate_polys)
// combined through compute_blinding_coefficients_for_round's
// prefix/suffix weighting, an optimization that keeps the blinding
// material at O(m0) field elements instead of O(2^m0). That weighting
// is specific to whir_r1cs.rs's coefficient-domain round polynomial
// representation ([f(0), f(-1), f(∞)/x³]); this package's round
// polynomials live in the evaluation-domain {0,1,2,3} basis instead
// (see outerRoundPoly), so B here is instead a full-length random
// multilinear polynomial over the same hypercube as a/b/c/eq,
// folded in lock-step with them. It costs one more length-n
// commitment than the reference's compressed scheme, but is the
// direct translation of "blind every round message with an
// independent random polynomial, commit it once up front, open it
// once at the end" into this package's representation.
//
// The matrix-evaluation step that would otherwise need a dedicated
// sparse polynomial commitment (Spartan's "Spark" construction) is
// simplified to evalSparseMLE's direct O(nnz) evaluation — sound for
// any matrix whose non-zero count a verifier can afford to scan, and
// the same shortcut calculate_external_row_of_r1cs_matrices takes
// before any batching is applied.
package spartan

import (
	"fmt"

	"github.com/reilabs/provekit-go/internal/field"
	"github.com/reilabs/provekit-go/internal/r1cs"
	"github.com/reilabs/provekit-go/internal/sparse"
	"github.com/reilabs/provekit-go/internal/transcript"
	"github.com/reilabs/provekit-go/internal/whir"
)

// RoundPoly is one round's cubic outer sum-check polynomial, sent as
// its evaluations at 0, 1, 2, 3 (its four coefficients are otherwise
// unneeded: these evaluations fully determine the degree-3 curve and
// are exactly what sumcheck_fold_map_reduce's (f0, f_em1, f_inf)
// triple represents in different coordinates).
type RoundPoly struct {
	Evals [4]field.Element
}

// InnerRoundPoly is one round's quadratic inner sum-check polynomial.
type InnerRoundPoly struct {
	Evals [3]field.Element
}

// Proof is a full argument that some witness committed to by
// MaskedCommitmentRoot (less the independent maskZ commitment) satisfies
// an R1CS instance, without ever revealing the witness itself.
type Proof struct {
	MaskedCommitmentRoot field.Element
	MaskCommitmentRoot   field.Element
	BlindCommitmentRoot  field.Element
	SumBlind             field.Element

	OuterRounds            []RoundPoly
	FinalA, FinalB, FinalC field.Element
	FinalBlind             field.Element
	BlindProof             *whir.Proof

	InnerRounds []InnerRoundPoly
	FinalZ      field.Element
	MaskedProof *whir.Proof
	MaskProof   *whir.Proof
}

var lagrangeNodes4 = []field.Element{field.FromInt64(0), field.FromInt64(1), field.FromInt64(2), field.FromInt64(3)}
var lagrangeNodes3 = []field.Element{field.FromInt64(0), field.FromInt64(1), field.FromInt64(2)}

// lagrangeEval interpolates the polynomial through (nodes[i], evals[i])
// and evaluates it at t.
func lagrangeEval(nodes, evals []field.Element, t field.Element) field.Element {
	result := field.Zero()
	for i := range nodes {
		num := field.One()
		den := field.One()
		for j := range nodes {
			if j == i {
				continue
			}
			num = field.Mul(num, field.Sub(t, nodes[j]))
			den = field.Mul(den, field.Sub(nodes[i], nodes[j]))
		}
		result = field.Add(result, field.Mul(evals[i], field.Mul(num, field.Inverse(den))))
	}
	return result
}

func padPow2(v []field.Element, minLen int) []field.Element {
	n := 1
	for n < len(v) || n < minLen {
		n *= 2
	}
	out := make([]field.Element, n)
	copy(out, v)
	zero := field.Zero()
	for i := len(v); i < n; i++ {
		out[i] = zero
	}
	return out
}

func numVars(n int) int {
	v := 0
	for (1 << v) < n {
		v++
	}
	return v
}

// randomVector draws n independent field.Random elements — secret
// prover randomness, never derived from the (public) transcript.
func randomVector(n int) []field.Element {
	out := make([]field.Element, n)
	for i := range out {
		out[i] = field.Random()
	}
	return out
}

func addVec(a, b []field.Element) []field.Element {
	out := make([]field.Element, len(a))
	for i := range out {
		out[i] = field.Add(a[i], b[i])
	}
	return out
}

func sumElements(v []field.Element) field.Element {
	sum := field.Zero()
	for _, x := range v {
		sum = field.Add(sum, x)
	}
	return sum
}

// eqTable builds the dense table eq(r, x) for every x in the boolean
// hypercube, where bit k of x selects r[k] (a one-bit set) or
// 1-r[k] (unset) — the same index convention internal/whir's folding
// uses, so eqTable's rounds fold in lockstep with a/b/c.
func eqTable(r []field.Element) []field.Element {
	table := []field.Element{field.One()}
	for _, ri := range r {
		next := make([]field.Element, len(table)*2)
		oneMinus := field.Sub(field.One(), ri)
		for i, v := range table {
			next[2*i] = field.Mul(v, oneMinus)
			next[2*i+1] = field.Mul(v, ri)
		}
		table = next
	}
	return table
}

// eqAtPoint evaluates eq(point, idx) without materializing the full
// table, for the O(nnz) sparse matrix evaluation below.
func eqAtPoint(point []field.Element, idx int) field.Element {
	acc := field.One()
	for k, pk := range point {
		if (idx>>k)&1 == 1 {
			acc = field.Mul(acc, pk)
		} else {
			acc = field.Mul(acc, field.Sub(field.One(), pk))
		}
	}
	return acc
}

// eqPointPoint evaluates eq(r, s) for two equal-length continuous
// points, used to fold a fully-reduced eq table down to its closed
// form after sum-check's pairwise folding.
func eqPointPoint(r, s []field.Element) field.Element {
	acc := field.One()
	for i := range r {
		term := field.Add(field.Mul(r[i], s[i]), field.Mul(field.Sub(field.One(), r[i]), field.Sub(field.One(), s[i])))
		acc = field.Mul(acc, term)
	}
	return acc
}

func foldHalf(v []field.Element, r field.Element) []field.Element {
	half := len(v) / 2
	next := make([]field.Element, half)
	for j := 0; j < half; j++ {
		left, right := v[2*j], v[2*j+1]
		next[j] = field.Add(left, field.Mul(r, field.Sub(right, left)))
	}
	return next
}

// outerRoundPoly evaluates this round's cubic polynomial
// g(t) = sum_j eq(t,·)*(a(t,·)*b(t,·)-c(t,·)) at t in {0,1,2,3} by
// linearly extrapolating each pair of the not-yet-folded arrays and
// summing — the evaluation-domain analogue of
// sumcheck_fold_map_reduce's coefficient-domain computation.
func outerRoundPoly(a, b, c, eq []field.Element) RoundPoly {
	var evals [4]field.Element
	half := len(a) / 2
	for ti, t := range lagrangeNodes4 {
		sum := field.Zero()
		for j := 0; j < half; j++ {
			at := field.Add(a[2*j], field.Mul(t, field.Sub(a[2*j+1], a[2*j])))
			bt := field.Add(b[2*j], field.Mul(t, field.Sub(b[2*j+1], b[2*j])))
			ct := field.Add(c[2*j], field.Mul(t, field.Sub(c[2*j+1], c[2*j])))
			eqt := field.Add(eq[2*j], field.Mul(t, field.Sub(eq[2*j+1], eq[2*j])))
			sum = field.Add(sum, field.Mul(eqt, field.Sub(field.Mul(at, bt), ct)))
		}
		evals[ti] = sum
	}
	return RoundPoly{Evals: evals}
}

// blindRoundPoly is outerRoundPoly's one-array analogue: it evaluates
// sum_j B(t,·) at t in {0,1,2,3} by linearly extrapolating the
// not-yet-folded blinding array, the same pairwise-fold shape used to
// blind each outer round's real message.
func blindRoundPoly(b []field.Element) RoundPoly {
	var evals [4]field.Element
	half := len(b) / 2
	for ti, t := range lagrangeNodes4 {
		sum := field.Zero()
		for j := 0; j < half; j++ {
			bt := field.Add(b[2*j], field.Mul(t, field.Sub(b[2*j+1], b[2*j])))
			sum = field.Add(sum, bt)
		}
		evals[ti] = sum
	}
	return RoundPoly{Evals: evals}
}

func innerRoundPoly(alpha, z []field.Element) InnerRoundPoly {
	var evals [3]field.Element
	half := len(alpha) / 2
	for ti, t := range lagrangeNodes3 {
		sum := field.Zero()
		for j := 0; j < half; j++ {
			at := field.Add(alpha[2*j], field.Mul(t, field.Sub(alpha[2*j+1], alpha[2*j])))
			zt := field.Add(z[2*j], field.Mul(t, field.Sub(z[2*j+1], z[2*j])))
			sum = field.Add(sum, field.Mul(at, zt))
		}
		evals[ti] = sum
	}
	return InnerRoundPoly{Evals: evals}
}

// accumulateWeightedRow adds alpha(y) += sum_x eq(outerChallenges,x)*m[x,y]
// into out, for every non-zero entry of m. This is the dense
// materialization the prover needs to run the inner sum-check; the
// verifier only ever needs evalSparseMLE's single-point closed form.
func accumulateWeightedRow(m *sparse.Matrix, outerChallenges []field.Element, out []field.Element) {
	for _, e := range m.Entries() {
		val := m.Interner().Value(e.ValueIdx)
		weight := field.Mul(val, eqAtPoint(outerChallenges, e.Row))
		out[e.Col] = field.Add(out[e.Col], weight)
	}
}

// evalSparseMLE evaluates the multilinear extension of a sparse R1CS
// matrix at (rowPoint, colPoint) directly from its non-zero entries —
// the O(nnz) shortcut calculate_external_row_of_r1cs_matrices takes
// rather than committing to a dense matrix polynomial.
func evalSparseMLE(m *sparse.Matrix, rowPoint, colPoint []field.Element) field.Element {
	acc := field.Zero()
	for _, e := range m.Entries() {
		val := m.Interner().Value(e.ValueIdx)
		term := field.Mul(val, field.Mul(eqAtPoint(rowPoint, e.Row), eqAtPoint(colPoint, e.Col)))
		acc = field.Add(acc, term)
	}
	return acc
}

// Prove builds a Proof that z satisfies inst's R1CS constraints,
// blinding both the committed witness and the outer sum-check's
// round messages so the transcript never reveals z directly.
func Prove(inst *r1cs.Instance, z []field.Element, tr *transcript.Transcript) (*Proof, error) {
	if len(z) != inst.NumWitnesses() {
		return nil, fmt.Errorf("spartan: witness length %d does not match instance width %d", len(z), inst.NumWitnesses())
	}

	zPadded := padPow2(z, 2)
	m1 := numVars(len(zPadded))

	numConstraints := inst.A.NumRows
	if inst.B.NumRows > numConstraints {
		numConstraints = inst.B.NumRows
	}
	if inst.C.NumRows > numConstraints {
		numConstraints = inst.C.NumRows
	}
	n := 2
	for n < numConstraints {
		n *= 2
	}
	m0 := numVars(n)

	// Mask the committed witness: maskZ is independent randomness the
	// transcript never sees directly, and every opening below is of
	// maskedZ or maskZ, never of z itself.
	maskZ := randomVector(len(zPadded))
	maskedZ := addVec(zPadded, maskZ)
	maskedCommitment := whir.Commit(maskedZ)
	maskCommitment := whir.Commit(maskZ)

	// Blind the outer sum-check's round messages with an independent
	// random multilinear polynomial, folded in lock-step with a/b/c/eq.
	blind := randomVector(n)
	blindCommitment := whir.Commit(blind)
	sumBlind := sumElements(blind)

	// Commit masked witness, mask and blinding polynomial together
	// before any challenge is drawn, standing in for
	// batch_commit_to_polynomial's batched two-polynomial commit (this
	// package's WHIR has no single multi-polynomial commit primitive,
	// so the batching here is "one absorb step, three roots").
	tr.Tag(transcript.TagCommitStatement)
	tr.Absorb(maskedCommitment.Tree.Root())
	tr.Absorb(maskCommitment.Tree.Root())
	tr.Absorb(blindCommitment.Tree.Root())
	tr.Absorb(sumBlind)
	rhoBlind := tr.Squeeze()

	a := padPow2(inst.A.MulVec(z), n)
	b := padPow2(inst.B.MulVec(z), n)
	c := padPow2(inst.C.MulVec(z), n)

	r := tr.SqueezeN(m0)
	eq := eqTable(r)

	outerRounds := make([]RoundPoly, m0)
	challenges := make([]field.Element, m0)
	blindCur := append([]field.Element(nil), blind...)
	for round := 0; round < m0; round++ {
		poly := outerRoundPoly(a, b, c, eq)
		blindPoly := blindRoundPoly(blindCur)
		var combined RoundPoly
		for i := range combined.Evals {
			combined.Evals[i] = field.Add(poly.Evals[i], field.Mul(rhoBlind, blindPoly.Evals[i]))
		}
		outerRounds[round] = combined

		tr.Tag(transcript.TagSumcheckPolynomials)
		tr.AbsorbSlice(combined.Evals[:])
		challenge := tr.Squeeze()
		challenges[round] = challenge
		a = foldHalf(a, challenge)
		b = foldHalf(b, challenge)
		c = foldHalf(c, challenge)
		eq = foldHalf(eq, challenge)
		blindCur = foldHalf(blindCur, challenge)
	}
	finalA, finalB, finalC := a[0], b[0], c[0]
	finalBlind := blindCur[0]

	tr.Tag(transcript.TagWhirProof)
	blindProof, openedBlind := whir.OpenWithPoint(blindCommitment, tr, challenges, 2)
	if !field.Equal(openedBlind, finalBlind) {
		return nil, fmt.Errorf("spartan: blinding polynomial opening disagrees with outer sum-check's final value")
	}

	rho := tr.Squeeze()
	rho2 := field.Mul(rho, rho)

	alphaA := make([]field.Element, len(zPadded))
	alphaB := make([]field.Element, len(zPadded))
	alphaC := make([]field.Element, len(zPadded))
	accumulateWeightedRow(inst.A, challenges, alphaA)
	accumulateWeightedRow(inst.B, challenges, alphaB)
	accumulateWeightedRow(inst.C, challenges, alphaC)
	alpha := make([]field.Element, len(zPadded))
	for y := range alpha {
		alpha[y] = field.Add(field.Add(alphaA[y], field.Mul(rho, alphaB[y])), field.Mul(rho2, alphaC[y]))
	}

	innerRounds := make([]InnerRoundPoly, m1)
	innerChallenges := make([]field.Element, m1)
	za := append([]field.Element(nil), zPadded...)
	for round := 0; round < m1; round++ {
		poly := innerRoundPoly(alpha, za)
		innerRounds[round] = poly
		tr.Tag(transcript.TagSumcheckPolynomials)
		tr.Absorb(poly.Evals[0])
		tr.Absorb(poly.Evals[1])
		tr.Absorb(poly.Evals[2])
		challenge := tr.Squeeze()
		innerChallenges[round] = challenge
		alpha = foldHalf(alpha, challenge)
		za = foldHalf(za, challenge)
	}
	finalZ := za[0]

	tr.Tag(transcript.TagWhirProof)
	maskedProof, openedMaskedZ := whir.OpenWithPoint(maskedCommitment, tr, innerChallenges, 2)
	maskProof, openedMaskZ := whir.OpenWithPoint(maskCommitment, tr, innerChallenges, 2)
	if !field.Equal(field.Sub(openedMaskedZ, openedMaskZ), finalZ) {
		return nil, fmt.Errorf("spartan: masked witness opening disagrees with inner sum-check's final evaluation")
	}

	return &Proof{
		MaskedCommitmentRoot: maskedCommitment.Tree.Root(),
		MaskCommitmentRoot:   maskCommitment.Tree.Root(),
		BlindCommitmentRoot:  blindCommitment.Tree.Root(),
		SumBlind:             sumBlind,
		OuterRounds:          outerRounds,
		FinalA:               finalA,
		FinalB:               finalB,
		FinalC:               finalC,
		FinalBlind:           finalBlind,
		BlindProof:           blindProof,
		InnerRounds:          innerRounds,
		FinalZ:               finalZ,
		MaskedProof:          maskedProof,
		MaskProof:            maskProof,
	}, nil
}

// Verify checks proof against the public instance, using only the
// commitment roots and opening proofs to stand in for the witness —
// it never sees z, maskZ or the blinding polynomial directly.
func Verify(inst *r1cs.Instance, proof *Proof, tr *transcript.Transcript) error {
	numConstraints := inst.A.NumRows
	if inst.B.NumRows > numConstraints {
		numConstraints = inst.B.NumRows
	}
	if inst.C.NumRows > numConstraints {
		numConstraints = inst.C.NumRows
	}
	n := 2
	for n < numConstraints {
		n *= 2
	}
	m0 := numVars(n)
	if m0 != len(proof.OuterRounds) {
		return fmt.Errorf("spartan: expected %d outer sum-check rounds, proof has %d", m0, len(proof.OuterRounds))
	}

	tr.Tag(transcript.TagCommitStatement)
	tr.Absorb(proof.MaskedCommitmentRoot)
	tr.Absorb(proof.MaskCommitmentRoot)
	tr.Absorb(proof.BlindCommitmentRoot)
	tr.Absorb(proof.SumBlind)
	rhoBlind := tr.Squeeze()

	r := tr.SqueezeN(m0)

	claim := field.Mul(rhoBlind, proof.SumBlind)
	challenges := make([]field.Element, m0)
	for round, poly := range proof.OuterRounds {
		if !field.Equal(field.Add(poly.Evals[0], poly.Evals[1]), claim) {
			return fmt.Errorf("spartan: outer round %d sum-check consistency failed", round)
		}
		tr.Tag(transcript.TagSumcheckPolynomials)
		tr.AbsorbSlice(poly.Evals[:])
		challenge := tr.Squeeze()
		challenges[round] = challenge
		claim = lagrangeEval(lagrangeNodes4, poly.Evals[:], challenge)
	}

	eqFinal := eqPointPoint(r, challenges)
	realFinal := field.Mul(eqFinal, field.Sub(field.Mul(proof.FinalA, proof.FinalB), proof.FinalC))
	expected := field.Add(realFinal, field.Mul(rhoBlind, proof.FinalBlind))
	if !field.Equal(claim, expected) {
		return fmt.Errorf("spartan: outer sum-check final check failed")
	}

	tr.Tag(transcript.TagWhirProof)
	if err := whir.Verify(proof.BlindProof); err != nil {
		return fmt.Errorf("spartan: blinding polynomial opening failed: %w", err)
	}
	if !field.Equal(proof.BlindProof.FinalValue, proof.FinalBlind) {
		return fmt.Errorf("spartan: blinding polynomial opening value disagrees with outer sum-check's final value")
	}
	if len(proof.BlindProof.FoldingPoint) != len(challenges) {
		return fmt.Errorf("spartan: blinding polynomial opening point length mismatch")
	}
	for i, ch := range challenges {
		if !field.Equal(proof.BlindProof.FoldingPoint[i], ch) {
			return fmt.Errorf("spartan: blinding polynomial opening point disagrees with outer sum-check's challenge %d", i)
		}
	}
	if !field.Equal(proof.BlindProof.RoundRoots[0], proof.BlindCommitmentRoot) {
		return fmt.Errorf("spartan: blinding polynomial opening is not against the claimed commitment")
	}

	rho := tr.Squeeze()
	rho2 := field.Mul(rho, rho)
	innerClaim := field.Add(field.Add(proof.FinalA, field.Mul(rho, proof.FinalB)), field.Mul(rho2, proof.FinalC))

	innerChallenges := make([]field.Element, len(proof.InnerRounds))
	for round, poly := range proof.InnerRounds {
		if !field.Equal(field.Add(poly.Evals[0], poly.Evals[1]), innerClaim) {
			return fmt.Errorf("spartan: inner round %d sum-check consistency failed", round)
		}
		tr.Tag(transcript.TagSumcheckPolynomials)
		tr.Absorb(poly.Evals[0])
		tr.Absorb(poly.Evals[1])
		tr.Absorb(poly.Evals[2])
		challenge := tr.Squeeze()
		innerChallenges[round] = challenge
		innerClaim = lagrangeEval(lagrangeNodes3, poly.Evals[:], challenge)
	}

	alphaFinal := field.Add(field.Add(
		evalSparseMLE(inst.A, challenges, innerChallenges),
		field.Mul(rho, evalSparseMLE(inst.B, challenges, innerChallenges))),
		field.Mul(rho2, evalSparseMLE(inst.C, challenges, innerChallenges)))

	if !field.Equal(innerClaim, field.Mul(alphaFinal, proof.FinalZ)) {
		return fmt.Errorf("spartan: inner sum-check final check failed")
	}

	tr.Tag(transcript.TagWhirProof)
	if err := whir.Verify(proof.MaskedProof); err != nil {
		return fmt.Errorf("spartan: masked witness opening failed: %w", err)
	}
	if err := whir.Verify(proof.MaskProof); err != nil {
		return fmt.Errorf("spartan: witness mask opening failed: %w", err)
	}
	if !field.Equal(field.Sub(proof.MaskedProof.FinalValue, proof.MaskProof.FinalValue), proof.FinalZ) {
		return fmt.Errorf("spartan: masked witness opening value disagrees with inner sum-check's final evaluation")
	}
	for _, p := range []*whir.Proof{proof.MaskedProof, proof.MaskProof} {
		if len(p.FoldingPoint) != len(innerChallenges) {
			return fmt.Errorf("spartan: witness commitment opening point length mismatch")
		}
		for i, ch := range innerChallenges {
			if !field.Equal(p.FoldingPoint[i], ch) {
				return fmt.Errorf("spartan: witness commitment opening point disagrees with inner sum-check's challenge %d", i)
			}
		}
	}
	if !field.Equal(proof.MaskedProof.RoundRoots[0], proof.MaskedCommitmentRoot) {
		return fmt.Errorf("spartan: masked witness opening is not against the claimed commitment")
	}
	if !field.Equal(proof.MaskProof.RoundRoots[0], proof.MaskCommitmentRoot) {
		return fmt.Errorf("spartan: witness mask opening is not against the claimed commitment")
	}

	return nil
}
