package r1cs

import (
	"github.com/reilabs/provekit-go/internal/field"
	"github.com/reilabs/provekit-go/internal/witness"
)

// word32 is a 32-bit value carried through the SHA-256 gadget as its
// four byte witnesses (little-endian: word32[0] is the low byte),
// the same byte-at-a-time shape rotr_u32/shr_u32/xor_u32/and_u32
// operate on in the reference compiler.
type word32 [4]int

// sha256K are SHA-256's 64 round constants (FIPS 180-4).
var sha256K = [64]uint32{
	0x428a2f98, 0x71374491, 0xb5c0fbcf, 0xe9b5dba5, 0x3956c25b, 0x59f111f1, 0x923f82a4, 0xab1c5ed5,
	0xd807aa98, 0x12835b01, 0x243185be, 0x550c7dc3, 0x72be5d74, 0x80deb1fe, 0x9bdc06a7, 0xc19bf174,
	0xe49b69c1, 0xefbe4786, 0x0fc19dc6, 0x240ca1cc, 0x2de92c6f, 0x4a7484aa, 0x5cb0a9dc, 0x76f988da,
	0x983e5152, 0xa831c66d, 0xb00327c8, 0xbf597fc7, 0xc6e00bf3, 0xd5a79147, 0x06ca6351, 0x14292967,
	0x27b70a85, 0x2e1b2138, 0x4d2c6dfc, 0x53380d13, 0x650a7354, 0x766a0abb, 0x81c2c92e, 0x92722c85,
	0xa2bfe8a1, 0xa81a664b, 0xc24b8b70, 0xc76c51a3, 0xd192e819, 0xd6990624, 0xf40e3585, 0x106aa070,
	0x19a4c116, 0x1e376c08, 0x2748774c, 0x34b0bcb5, 0x391c0cb3, 0x4ed8aa4a, 0x5b9cca4f, 0x682e6ff3,
	0x748f82ee, 0x78a5636f, 0x84c87814, 0x8cc70208, 0x90befffa, 0xa4506ceb, 0xbef9a3f7, 0xc67178f2,
}

// unpackWord byte-decomposes x (a 32-bit-valued R1CS witness) via
// digitDecompose at the AND/XOR table's atomic width, so the returned
// bytes can feed andWord/xorWord directly.
func (inst *Instance) unpackWord(x int) word32 {
	d := inst.digitDecompose(x, 4, uint64(1)<<witness.BinOpAtomicBits)
	return word32{d[0], d[1], d[2], d[3]}
}

// packWord recombines a word32's bytes into a single witness holding
// the 32-bit value.
func (inst *Instance) packWord(w word32) int {
	return inst.addSum([]witness.Term{
		{Coeff: field.FromUint64(1), Index: w[0]},
		{Coeff: field.FromUint64(1 << 8), Index: w[1]},
		{Coeff: field.FromUint64(1 << 16), Index: w[2]},
		{Coeff: field.FromUint64(1 << 24), Index: w[3]},
	})
}

// wordBits bit-decomposes every byte of w (least-significant bit
// first within each byte), returning all 32 bits in global
// least-significant-bit-first order: bits[8*i+j] is bit j of byte i.
func (inst *Instance) wordBits(w word32) [32]int {
	var bits [32]int
	for i := 0; i < 4; i++ {
		d := inst.digitDecompose(w[i], 8, 2)
		copy(bits[i*8:i*8+8], d)
	}
	return bits
}

// bitsToWord recombines 32 global-order bits (as produced by
// wordBits, then permuted/truncated by the caller) back into a
// word32. A negative entry stands for a constant 0 bit (used by
// shrWord's zero-fill) and contributes no term.
func (inst *Instance) bitsToWord(bits [32]int) word32 {
	var out word32
	for i := 0; i < 4; i++ {
		var terms []witness.Term
		weight := field.One()
		two := field.FromUint64(2)
		for j := 0; j < 8; j++ {
			if b := bits[i*8+j]; b >= 0 {
				terms = append(terms, witness.Term{Coeff: weight, Index: b})
			}
			weight = field.Mul(weight, two)
		}
		out[i] = inst.addSum(terms)
	}
	return out
}

// rotrWord right-rotates w by n bits (0 < n < 32): out bit k is in
// bit (k+n) mod 32.
func (inst *Instance) rotrWord(w word32, n int) word32 {
	bits := inst.wordBits(w)
	var out [32]int
	for k := 0; k < 32; k++ {
		out[k] = bits[(k+n)%32]
	}
	return inst.bitsToWord(out)
}

// shrWord right-shifts w by n bits (0 < n < 32) with zero fill at the
// top: out bit k is in bit (k+n) when that stays under 32, else 0.
func (inst *Instance) shrWord(w word32, n int) word32 {
	bits := inst.wordBits(w)
	var out [32]int
	for k := 0; k < 32; k++ {
		if k+n < 32 {
			out[k] = bits[k+n]
		} else {
			out[k] = -1
		}
	}
	return inst.bitsToWord(out)
}

// xorWord / andWord apply addBinOpRaw byte-by-byte, the same
// byte-decomposed LogUp table AndOp/XorOp opcodes use.
func (inst *Instance) xorWord(a, b word32) word32 {
	var out word32
	for i := 0; i < 4; i++ {
		_, xorOut := inst.addBinOpRaw(a[i], b[i])
		out[i] = xorOut
	}
	return out
}

func (inst *Instance) andWord(a, b word32) word32 {
	var out word32
	for i := 0; i < 4; i++ {
		andOut, _ := inst.addBinOpRaw(a[i], b[i])
		out[i] = andOut
	}
	return out
}

// addWordsMod32 sums the given words and constants and reduces the
// result modulo 2^32, returning the reduced value's own byte
// decomposition (so callers get a word32 ready for further XOR/AND/
// rotate without an extra unpackWord call). A 5-digit decomposition
// gives 8 bits of carry headroom, comfortably more than the handful
// of 32-bit addends any one SHA-256 round ever sums.
func (inst *Instance) addWordsMod32(words []word32, consts []uint32) word32 {
	var terms []witness.Term
	for _, w := range words {
		terms = append(terms, witness.Term{Coeff: field.One(), Index: inst.packWord(w)})
	}
	var constSum uint64
	for _, c := range consts {
		constSum += uint64(c)
	}
	if constSum != 0 {
		terms = append(terms, witness.Term{Coeff: field.FromUint64(constSum), Index: WitnessOne})
	}
	sum := inst.addSum(terms)
	d := inst.digitDecompose(sum, 5, uint64(1)<<witness.BinOpAtomicBits)
	return word32{d[0], d[1], d[2], d[3]}
}

func (inst *Instance) sha256Sigma0(x word32) word32 {
	t := inst.xorWord(inst.rotrWord(x, 7), inst.rotrWord(x, 18))
	return inst.xorWord(t, inst.shrWord(x, 3))
}

func (inst *Instance) sha256Sigma1(x word32) word32 {
	t := inst.xorWord(inst.rotrWord(x, 17), inst.rotrWord(x, 19))
	return inst.xorWord(t, inst.shrWord(x, 10))
}

func (inst *Instance) sha256CapSigma0(x word32) word32 {
	t := inst.xorWord(inst.rotrWord(x, 2), inst.rotrWord(x, 13))
	return inst.xorWord(t, inst.rotrWord(x, 22))
}

func (inst *Instance) sha256CapSigma1(x word32) word32 {
	t := inst.xorWord(inst.rotrWord(x, 6), inst.rotrWord(x, 11))
	return inst.xorWord(t, inst.rotrWord(x, 25))
}

func (inst *Instance) sha256Ch(x, y, z word32) word32 {
	return inst.xorWord(z, inst.andWord(x, inst.xorWord(y, z)))
}

func (inst *Instance) sha256Maj(x, y, z word32) word32 {
	xy := inst.andWord(x, y)
	return inst.xorWord(xy, inst.andWord(inst.xorWord(x, y), z))
}

// sha256MessageSchedule expands 16 input words to the 64 words the
// compression rounds consume.
func (inst *Instance) sha256MessageSchedule(input [16]word32) [64]word32 {
	var w [64]word32
	copy(w[:16], input[:])
	for i := 16; i < 64; i++ {
		s1 := inst.sha256Sigma1(w[i-2])
		s0 := inst.sha256Sigma0(w[i-15])
		w[i] = inst.addWordsMod32([]word32{s1, w[i-7], s0, w[i-16]}, nil)
	}
	return w
}

// sha256Round runs one of the 64 compression rounds, inlining T1/T2
// into new_e/new_a the same way the reference compiler does to avoid
// extra intermediate witnesses.
func (inst *Instance) sha256Round(v [8]word32, k uint32, wWord word32) [8]word32 {
	a, b, c, d, e, f, g, h := v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7]

	sigma1E := inst.sha256CapSigma1(e)
	chEFG := inst.sha256Ch(e, f, g)
	sigma0A := inst.sha256CapSigma0(a)
	majABC := inst.sha256Maj(a, b, c)

	newE := inst.addWordsMod32([]word32{d, h, sigma1E, chEFG, wWord}, []uint32{k})
	newA := inst.addWordsMod32([]word32{h, sigma1E, chEFG, sigma0A, majABC, wWord}, []uint32{k})

	return [8]word32{newA, a, b, c, newE, e, f, g}
}

// addSha256Compression expands one Sha256Compression opcode into the
// message schedule, 64 compression rounds, and the final
// state-plus-working-variable addition, constraining each packed
// output word against its ACIR witness.
func (inst *Instance) addSha256Compression(o Sha256Compression) {
	var input [16]word32
	for i, acir := range o.Inputs {
		input[i] = inst.unpackWord(inst.toR1CSWitness(acir))
	}
	var state [8]word32
	for i, acir := range o.State {
		state[i] = inst.unpackWord(inst.toR1CSWitness(acir))
	}

	w := inst.sha256MessageSchedule(input)
	working := state
	for i := 0; i < 64; i++ {
		working = inst.sha256Round(working, sha256K[i], w[i])
	}

	for i := 0; i < 8; i++ {
		final := inst.addWordsMod32([]word32{state[i], working[i]}, nil)
		packed := inst.packWord(final)
		outWitness := inst.toR1CSWitness(o.Outputs[i])
		inst.addConstraint(
			[]RowEntry{{Col: packed, Value: field.One()}},
			[]RowEntry{{Col: WitnessOne, Value: field.One()}},
			[]RowEntry{{Col: outWitness, Value: field.One()}},
		)
	}
}
