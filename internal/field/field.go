// Package field implements the BN254 scalar field kernel: a 256-bit
// Montgomery multiplier with a two-lane "SIMD-shaped" sibling and the
// block-fused entry points the rest of the prover calls into.
//
// The three-constant Domb reduction schedule used by the reference
// AArch64 kernel (I1/I2/I3, the per-limb codegen-only reduction
// constants) is not part of this port's source material — those
// constants are emitted by a build-time codegen pass, not published
// alongside the algorithm. Per the reference design notes, what
// matters when porting is the *interface*: the 4p output bound and
// bit-for-bit agreement between the scalar and SIMD paths, not the
// exact instruction schedule. This package keeps that interface and
// gets a Montgomery reduction of matching shape (single widening
// multiply, single reduction pass, conditional final subtraction) by
// going through big.Int for the carry-heavy inner loop rather than
// hand-unrolling limb arithmetic nobody could verify by eye.
package field

import "math/big"

// Limbs holds a 256-bit value as four 64-bit little-endian limbs.
type Limbs = [4]uint64

// Element is a BN254 scalar field element held in Montgomery form
// (value * R mod p, R = 2^256). Element.Limbs is always fully reduced
// into [0, p) by every operation in this package; the reference
// kernel's "stay under 4p between reductions" laziness is not
// reproduced here (see package doc).
type Element struct {
	Limbs Limbs
}

var (
	// P is the BN254 scalar field modulus.
	P = Limbs{
		0x43e1f593f0000001,
		0x2833e84879b97091,
		0xb85045b68181585d,
		0x30644e72e131a029,
	}

	// R is 2^256 mod p, RInv is R^-1 mod p, R2 is R^2 mod p — the
	// Montgomery constants.
	R, RInv, R2 Limbs

	// OutputMax is the published bound on the raw output of Mul/Sqr:
	// strictly less than 4p. Every Element this package produces
	// satisfies the bound with room to spare, since results are kept
	// fully reduced.
	OutputMax = Limbs{0x783c14d81ffffffe, 0xaf982f6f0c8d1edd, 0x8f5f7492fcfd4f45, 0x9f37631a3d9cbfac}

	pBig    = limbsToBig(P)
	rBig    = new(big.Int).Mod(new(big.Int).Lsh(big.NewInt(1), 256), pBig)
	muBig   = negModInverse(pBig, new(big.Int).Lsh(big.NewInt(1), 256)) // -p^-1 mod 2^256
	ringMod = new(big.Int).Lsh(big.NewInt(1), 256)
)

func negModInverse(p, ring *big.Int) *big.Int {
	inv := new(big.Int).ModInverse(p, ring)
	return new(big.Int).Sub(ring, inv)
}

func init() {
	R = bigToLimbs(rBig)
	rInv := new(big.Int).ModInverse(rBig, pBig)
	RInv = bigToLimbs(rInv)
	r2 := new(big.Int).Mod(new(big.Int).Mul(rBig, rBig), pBig)
	R2 = bigToLimbs(r2)
}

func limbsToBig(l Limbs) *big.Int {
	out := new(big.Int)
	for i := 3; i >= 0; i-- {
		out.Lsh(out, 64)
		out.Or(out, new(big.Int).SetUint64(l[i]))
	}
	return out
}

func bigToLimbs(v *big.Int) Limbs {
	var out Limbs
	mask := new(big.Int).SetUint64(^uint64(0))
	t := new(big.Int).Set(v)
	for i := 0; i < 4; i++ {
		out[i] = new(big.Int).And(t, mask).Uint64()
		t.Rsh(t, 64)
	}
	return out
}

// FromBigInt reduces v mod p and returns its Montgomery-form Element.
func FromBigInt(v *big.Int) Element {
	reduced := new(big.Int).Mod(v, pBig)
	mont := new(big.Int).Mod(new(big.Int).Mul(reduced, rBig), pBig)
	return Element{bigToLimbs(mont)}
}

// ToBigInt returns the canonical (non-Montgomery) representative.
func (e Element) ToBigInt() *big.Int {
	return redc(limbsToBig(e.Limbs))
}

// redc implements the textbook whole-word Montgomery reduction:
// REDC(T) = (T + ((T*mu mod R) * p)) / R, followed by a conditional
// subtraction of p. mu = -p^-1 mod R is precomputed once at init.
func redc(t *big.Int) *big.Int {
	m := new(big.Int).Mod(new(big.Int).Mul(t, muBig), ringMod)
	sum := new(big.Int).Add(t, new(big.Int).Mul(m, pBig))
	result := new(big.Int).Rsh(sum, 256)
	if result.Cmp(pBig) >= 0 {
		result.Sub(result, pBig)
	}
	return result
}

// Mul returns a*b, both operands and the result in Montgomery form.
// Inputs are first canonicalized into [0, p) (the reference kernel
// tolerates inputs up to 4p; this port reduces eagerly instead of
// tracking the looser bound — see package doc).
func Mul(a, b Element) Element {
	at := limbsToBig(a.Limbs)
	bt := limbsToBig(b.Limbs)
	if at.Cmp(pBig) >= 0 {
		at.Mod(at, pBig)
	}
	if bt.Cmp(pBig) >= 0 {
		bt.Mod(bt, pBig)
	}
	product := new(big.Int).Mul(at, bt)
	return Element{bigToLimbs(redc(product))}
}

// Sqr returns a*a. Testable property: Sqr(a) == Mul(a, a) bitwise.
func Sqr(a Element) Element {
	return Mul(a, a)
}

// Reduce brings a value that may be as large as 4p into [0, p) with a
// single big.Int modular reduction, matching the reference kernel's
// "reduce_ct" contract (this implementation is not constant-time; the
// hot-path kernel this stands in for would be, see design notes).
func Reduce(e Element) Limbs {
	v := limbsToBig(e.Limbs)
	v.Mod(v, pBig)
	return bigToLimbs(v)
}

// ReduceElement is Reduce wrapped back into an Element.
func ReduceElement(e Element) Element {
	return Element{Reduce(e)}
}

// SimdMul is the two-lane sibling of Mul. The reference kernel packs
// both lanes into 5x52-bit "u260" limbs and drives them through an
// IEEE-754 FMA pipeline (see U256ToU260); that instruction sequence is
// AArch64-specific and out of scope here (design notes: a portable
// scalar fallback suffices). The substitute below preserves the
// required bit-for-bit equivalence with two independent scalar
// multiplications, which is the only externally observable contract.
func SimdMul(a0, b0, a1, b1 Element) (Element, Element) {
	return Mul(a0, b0), Mul(a1, b1)
}

// SimdSqr is the two-lane sibling of Sqr.
func SimdSqr(a0, a1 Element) (Element, Element) {
	return Sqr(a0), Sqr(a1)
}

// BlockMul interleaves one scalar multiplication with two SIMD-lane
// multiplications, matching the reference ordering: scalar AB, vector
// AB, vector reduce, scalar reduce, finalize. Both paths funnel
// through the same reducer in this port, so there is no latency to
// hide, but the call shape is preserved so callers written against
// the block-fused contract work unchanged against this backend.
func BlockMul(sa, sb, v0a, v0b, v1a, v1b Element) (s, v0, v1 Element) {
	s = Mul(sa, sb)
	v0, v1 = SimdMul(v0a, v0b, v1a, v1b)
	return
}

// BlockSqr is the squaring analogue of BlockMul.
func BlockSqr(sa, v0a, v1a Element) (s, v0, v1 Element) {
	s = Sqr(sa)
	v0, v1 = SimdSqr(v0a, v1a)
	return
}
