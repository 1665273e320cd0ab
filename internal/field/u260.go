package field

import "github.com/holiman/uint256"

// U260 packs a 256-bit value into five 52-bit limbs. The reference
// kernel shifts the input left by two bits first so that each 52-bit
// limb lands exactly on an IEEE-754 double's mantissa width, which is
// what lets the SIMD path multiply through the FPU. The shift is
// purely a repacking convenience; U260ToU256 divides it back out.
type U260 [5]uint64

const limb52Mask = (uint64(1) << 52) - 1

func limbsToUint256(a Limbs) *uint256.Int {
	return &uint256.Int{a[0], a[1], a[2], a[3]}
}

func uint256ToLimbs(v *uint256.Int) Limbs {
	return Limbs{v[0], v[1], v[2], v[3]}
}

// U256ToU260Shl2 repacks a four-limb (64-bit) value, pre-multiplied by
// 4 (shl 2), into five 52-bit limbs. The round trip with U260ToU256 is
// lossless for any 256-bit input (testable property: u256<->u260
// round-trip). Uses holiman/uint256's fixed-width Int rather than
// math/big for the shift/mask bookkeeping, the same 256-bit integer
// type the rest of the pack's EVM-adjacent code reaches for.
func U256ToU260Shl2(a Limbs) U260 {
	v := new(uint256.Int).Lsh(limbsToUint256(a), 2)
	mask := uint256.NewInt(limb52Mask)

	var u U260
	t := new(uint256.Int).Set(v)
	for i := 0; i < 5; i++ {
		u[i] = new(uint256.Int).And(t, mask).Uint64()
		t = new(uint256.Int).Rsh(t, 52)
	}
	// The shift pushed the input's top two bits past bit 255; they land
	// at bits 48-49 of the top limb.
	u[4] |= (a[3] >> 62) << 48
	return u
}

// U260ToU256 inverts U256ToU260Shl2.
func U260ToU256(u U260) Limbs {
	v := new(uint256.Int)
	for i := 4; i >= 0; i-- {
		v.Lsh(v, 52)
		limb := uint256.NewInt(u[i] & limb52Mask)
		v.Or(v, limb)
	}
	v.Rsh(v, 2)
	v.Or(v, new(uint256.Int).Lsh(uint256.NewInt((u[4]>>48)&3), 254))
	return uint256ToLimbs(v)
}
