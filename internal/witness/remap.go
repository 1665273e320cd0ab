package witness

// remapIndex looks up idx's new index within its own half (w1 and w2
// are renumbered independently, so only the local NewIndex matters
// once a builder has been sorted into the half it belongs to).
func remapIndex(remap map[int]RemappedIndex, idx int) int {
	return remap[idx].NewIndex
}

// RemapBuilders rewrites every builder's FirstIndex and Reads()
// indices from the original contiguous witness space into the
// per-half space Split produced. This is the mechanical half of step
// 4/5 of the splitter: Split itself only computes the renumbering,
// RemapBuilders applies it to the concrete builder values so the
// returned w1/w2 slices are immediately solvable as independent
// programs.
func RemapBuilders(builders []Builder, remap map[int]RemappedIndex) []Builder {
	out := make([]Builder, len(builders))
	for i, b := range builders {
		out[i] = remapOne(b, remap)
	}
	return out
}

func remapOne(b Builder, remap map[int]RemappedIndex) Builder {
	ri := func(idx int) int { return remapIndex(remap, idx) }
	first := ri(b.FirstIndex())
	switch v := b.(type) {
	case *Constant:
		n := *v
		n.first = first
		return &n
	case *Acir:
		n := *v
		n.first = first
		return &n
	case *Sum:
		n := *v
		n.first = first
		terms := make([]Term, len(v.Terms))
		for i, t := range v.Terms {
			t.Index = ri(t.Index)
			terms[i] = t
		}
		n.Terms = terms
		return &n
	case *Product:
		n := *v
		n.first, n.A, n.B = first, ri(v.A), ri(v.B)
		return &n
	case *Inverse:
		n := *v
		n.first, n.X = first, ri(v.X)
		return &n
	case *Challenge:
		n := *v
		n.first = first
		return &n
	case *LogUpDenominator:
		n := *v
		n.first = first
		n.SZ, n.RS = ri(v.SZ), ri(v.RS)
		n.Index.Index = ri(v.Index.Index)
		n.Value = ri(v.Value)
		return &n
	case *IndexedLogUpDenominator:
		n := *v
		n.first = first
		n.SZ, n.RS, n.Value = ri(v.SZ), ri(v.RS), ri(v.Value)
		return &n
	case *MemoryAccessCounts:
		n := *v
		n.first = first
		dyn := make([]int, len(v.DynamicAddrs))
		for i, idx := range v.DynamicAddrs {
			dyn[i] = ri(idx)
		}
		n.DynamicAddrs = dyn
		return &n
	case *MultiplicitiesForRange:
		n := *v
		n.first = first
		values := make([]int, len(v.Values))
		for i, idx := range v.Values {
			values[i] = ri(idx)
		}
		n.Values = values
		return &n
	case *DigitalDecomposition:
		n := *v
		n.first, n.X = first, ri(v.X)
		return &n
	case *BytePartition:
		n := *v
		n.first, n.X = first, ri(v.X)
		return &n
	case *U32Addition:
		n := *v
		n.first, n.A, n.B = first, ri(v.A), ri(v.B)
		return &n
	case *U32AdditionMulti:
		n := *v
		n.first = first
		ops := make([]int, len(v.Operands))
		for i, idx := range v.Operands {
			ops[i] = ri(idx)
		}
		n.Operands = ops
		return &n
	case *And:
		n := *v
		n.first, n.Lhs, n.Rhs = first, ri(v.Lhs), ri(v.Rhs)
		return &n
	case *Xor:
		n := *v
		n.first, n.Lhs, n.Rhs = first, ri(v.Lhs), ri(v.Rhs)
		return &n
	case *BinOpLookupDenominator:
		n := *v
		n.first = first
		n.SZ, n.RS = ri(v.SZ), ri(v.RS)
		n.Lhs, n.Rhs, n.Out = ri(v.Lhs), ri(v.Rhs), ri(v.Out)
		return &n
	case *CombinedBinOpLookupDenominator:
		n := *v
		n.first = first
		n.SZ, n.RS = ri(v.SZ), ri(v.RS)
		n.Lhs, n.Rhs = ri(v.Lhs), ri(v.Rhs)
		n.AndOut, n.XorOut = ri(v.AndOut), ri(v.XorOut)
		return &n
	case *MultiplicitiesForBinOp:
		n := *v
		n.first = first
		lhs := make([]int, len(v.Lhs))
		for i, idx := range v.Lhs {
			lhs[i] = ri(idx)
		}
		rhs := make([]int, len(v.Rhs))
		for i, idx := range v.Rhs {
			rhs[i] = ri(idx)
		}
		n.Lhs, n.Rhs = lhs, rhs
		return &n
	case *ProductLinearOperation:
		n := *v
		n.first = first
		n.A, n.X, n.B, n.Y = ri(v.A), ri(v.X), ri(v.B), ri(v.Y)
		return &n
	case *CombinedTableEntryInverse:
		n := *v
		n.first, n.Denominator = first, ri(v.Denominator)
		return &n
	case *SpiceMultisetFactor:
		n := *v
		n.first = first
		n.SZ, n.RS = ri(v.SZ), ri(v.RS)
		n.Addr, n.Value, n.Timestamp = ri(v.Addr), ri(v.Value), ri(v.Timestamp)
		return &n
	case *SpiceWitnesses:
		n := *v
		n.first, n.Addr = first, ri(v.Addr)
		if v.IsWrite {
			n.NewValue = ri(v.NewValue)
		}
		return &n
	case *MemoryInit:
		// MemoryInit writes no witness slots (NumOutputs is 0), so its
		// FirstIndex was never assigned a remap entry -- leave it as-is
		// rather than looking up a key that was never inserted.
		n := *v
		values := make([]int, len(v.Values))
		for i, idx := range v.Values {
			values[i] = ri(idx)
		}
		n.Values = values
		return &n
	case *MemoryFinal:
		n := *v
		n.first = first
		return &n
	default:
		panic("witness: remapOne: unhandled builder variant")
	}
}
