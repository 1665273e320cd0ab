package r1cs

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/reilabs/provekit-go/internal/field"
)

// hexEncodeElement renders e as a little-endian hex string the way
// app/utilities.ParseHexFieldElement expects to read it back: no
// "0x" prefix requirement on the read side, but Encode always adds
// one so a human skimming an opcode-stream file can tell a field
// element apart from a plain witness index.
func hexEncodeElement(e field.Element) string {
	v := e.ToBigInt()
	b := v.Bytes()
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return "0x" + hex.EncodeToString(b)
}

// hexDecodeElement is ParseHexFieldElement's logic, returning a
// field.Element instead of a *big.Int.
func hexDecodeElement(s string) (field.Element, error) {
	if len(s) >= 2 && s[0:2] == "0x" {
		s = s[2:]
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return field.Element{}, fmt.Errorf("r1cs: invalid hex field element %q: %w", s, err)
	}
	for i, j := 0, len(raw)-1; i < j; i, j = i+1, j-1 {
		raw[i], raw[j] = raw[j], raw[i]
	}
	return field.FromBigInt(new(big.Int).SetBytes(raw)), nil
}

// MulTermDoc, LinearTermDoc and the opcode docs below are the JSON
// wire shapes of the opcode stream cmd/compile reads: one JSON object
// per ACIR-level instruction, tagged by "kind", field elements written
// as hex strings the way app/utilities.UnmarshalPublicInputs reads
// its own hex-encoded arrays.
type MulTermDoc struct {
	Coeff string `json:"coeff"`
	A     int    `json:"a"`
	B     int    `json:"b"`
}

type LinearTermDoc struct {
	Coeff   string `json:"coeff"`
	Witness int    `json:"witness"`
}

type AssertZeroDoc struct {
	MulTerms []MulTermDoc    `json:"mul_terms,omitempty"`
	Linear   []LinearTermDoc `json:"linear,omitempty"`
	QC       string          `json:"qc"`
}

type MemoryInitDoc struct {
	BlockID int    `json:"block_id"`
	Init    []int  `json:"init"`
	Kind    string `json:"kind"` // "rom" (default) or "ram"
}

type MemoryIndexDoc struct {
	IsConst bool   `json:"is_const"`
	Const   uint64 `json:"const,omitempty"`
	Witness int    `json:"witness,omitempty"`
}

type MemoryOpDoc struct {
	BlockID int            `json:"block_id"`
	Kind    string         `json:"kind"` // "load" (default) or "store"
	Index   MemoryIndexDoc `json:"index"`
	Value   int            `json:"value"`
}

type RangeCheckDoc struct {
	Witness int `json:"witness"`
	NumBits int `json:"num_bits"`
}

type BinOpDoc struct {
	Lhs, Rhs, Output int
}

type Sha256CompressionDoc struct {
	Inputs  [16]int `json:"inputs"`
	State   [8]int  `json:"state"`
	Outputs [8]int  `json:"outputs"`
}

type Poseidon2PermutationDoc struct {
	Width   int   `json:"width"`
	Inputs  []int `json:"inputs"`
	Outputs []int `json:"outputs"`
}

// OpcodeDoc is a tagged union over the concrete Opcode variants.
// Exactly one of the pointer fields matching Kind should be set; the
// rest are nil and therefore omitted by json.Marshal.
type OpcodeDoc struct {
	Kind string `json:"kind"`

	AssertZero *AssertZeroDoc `json:"assert_zero,omitempty"`
	MemoryInit *MemoryInitDoc `json:"memory_init,omitempty"`
	MemoryOp   *MemoryOpDoc   `json:"memory_op,omitempty"`
	RangeCheck *RangeCheckDoc `json:"range_check,omitempty"`
	And        *BinOpDoc      `json:"and,omitempty"`
	Xor        *BinOpDoc      `json:"xor,omitempty"`

	Sha256Compression    *Sha256CompressionDoc    `json:"sha256_compression,omitempty"`
	Poseidon2Permutation *Poseidon2PermutationDoc `json:"poseidon2_permutation,omitempty"`
}

// ProgramDoc is the full opcode-stream file: a public-input count
// (the first NumPublicInputs ACIR witnesses after the constant-one
// wire) plus the opcode list.
type ProgramDoc struct {
	PublicInputs int         `json:"public_inputs"`
	Opcodes      []OpcodeDoc `json:"opcodes"`
}

func encodeAssertZero(a AssertZero) AssertZeroDoc {
	mulTerms := make([]MulTermDoc, len(a.MulTerms))
	for i, t := range a.MulTerms {
		mulTerms[i] = MulTermDoc{Coeff: hexEncodeElement(t.Coeff), A: t.A, B: t.B}
	}
	linear := make([]LinearTermDoc, len(a.Linear))
	for i, t := range a.Linear {
		linear[i] = LinearTermDoc{Coeff: hexEncodeElement(t.Coeff), Witness: t.Witness}
	}
	return AssertZeroDoc{MulTerms: mulTerms, Linear: linear, QC: hexEncodeElement(a.QC)}
}

func decodeAssertZero(d AssertZeroDoc) (AssertZero, error) {
	mulTerms := make([]MulTerm, len(d.MulTerms))
	for i, t := range d.MulTerms {
		c, err := hexDecodeElement(t.Coeff)
		if err != nil {
			return AssertZero{}, err
		}
		mulTerms[i] = MulTerm{Coeff: c, A: t.A, B: t.B}
	}
	linear := make([]LinearTerm, len(d.Linear))
	for i, t := range d.Linear {
		c, err := hexDecodeElement(t.Coeff)
		if err != nil {
			return AssertZero{}, err
		}
		linear[i] = LinearTerm{Coeff: c, Witness: t.Witness}
	}
	qc, err := hexDecodeElement(d.QC)
	if err != nil {
		return AssertZero{}, err
	}
	return AssertZero{MulTerms: mulTerms, Linear: linear, QC: qc}, nil
}

// EncodeOpcodes converts a compiled-from opcode slice to its wire
// form, mainly useful for round-tripping cmd/compile's own test
// fixtures and for tooling that generates an opcode stream
// programmatically before writing it to disk.
func EncodeOpcodes(opcodes []Opcode) ([]OpcodeDoc, error) {
	docs := make([]OpcodeDoc, len(opcodes))
	for i, op := range opcodes {
		switch o := op.(type) {
		case AssertZero:
			az := encodeAssertZero(o)
			docs[i] = OpcodeDoc{Kind: "assert_zero", AssertZero: &az}
		case MemoryInit:
			kind := "rom"
			if o.Kind == MemoryRAM {
				kind = "ram"
			}
			docs[i] = OpcodeDoc{Kind: "memory_init", MemoryInit: &MemoryInitDoc{BlockID: o.BlockID, Init: o.Init, Kind: kind}}
		case MemoryOp:
			kind := "load"
			if o.Kind == OpStore {
				kind = "store"
			}
			docs[i] = OpcodeDoc{Kind: "memory_op", MemoryOp: &MemoryOpDoc{
				BlockID: o.BlockID, Kind: kind, Value: o.Value,
				Index: MemoryIndexDoc{IsConst: o.Index.IsConst, Const: o.Index.Const, Witness: o.Index.Witness},
			}}
		case RangeCheck:
			docs[i] = OpcodeDoc{Kind: "range_check", RangeCheck: &RangeCheckDoc{Witness: o.Witness, NumBits: o.NumBits}}
		case AndOp:
			docs[i] = OpcodeDoc{Kind: "and", And: &BinOpDoc{Lhs: o.Lhs, Rhs: o.Rhs, Output: o.Output}}
		case XorOp:
			docs[i] = OpcodeDoc{Kind: "xor", Xor: &BinOpDoc{Lhs: o.Lhs, Rhs: o.Rhs, Output: o.Output}}
		case BrilligCall:
			docs[i] = OpcodeDoc{Kind: "brillig_call"}
		case Sha256Compression:
			docs[i] = OpcodeDoc{Kind: "sha256_compression", Sha256Compression: &Sha256CompressionDoc{
				Inputs: o.Inputs, State: o.State, Outputs: o.Outputs,
			}}
		case Poseidon2Permutation:
			docs[i] = OpcodeDoc{Kind: "poseidon2_permutation", Poseidon2Permutation: &Poseidon2PermutationDoc{
				Width: o.Width, Inputs: o.Inputs, Outputs: o.Outputs,
			}}
		default:
			return nil, fmt.Errorf("r1cs: opcode %T has no wire encoding", op)
		}
	}
	return docs, nil
}

// DecodeOpcodes is EncodeOpcodes's inverse, the form cmd/compile reads
// an opcode-stream file through.
func DecodeOpcodes(docs []OpcodeDoc) ([]Opcode, error) {
	opcodes := make([]Opcode, len(docs))
	for i, d := range docs {
		switch d.Kind {
		case "assert_zero":
			if d.AssertZero == nil {
				return nil, fmt.Errorf("r1cs: opcode %d: kind assert_zero missing its body", i)
			}
			az, err := decodeAssertZero(*d.AssertZero)
			if err != nil {
				return nil, fmt.Errorf("r1cs: opcode %d: %w", i, err)
			}
			opcodes[i] = az
		case "memory_init":
			if d.MemoryInit == nil {
				return nil, fmt.Errorf("r1cs: opcode %d: kind memory_init missing its body", i)
			}
			kind := MemoryROM
			if d.MemoryInit.Kind == "ram" {
				kind = MemoryRAM
			}
			opcodes[i] = MemoryInit{BlockID: d.MemoryInit.BlockID, Init: d.MemoryInit.Init, Kind: kind}
		case "memory_op":
			if d.MemoryOp == nil {
				return nil, fmt.Errorf("r1cs: opcode %d: kind memory_op missing its body", i)
			}
			kind := OpLoad
			if d.MemoryOp.Kind == "store" {
				kind = OpStore
			}
			opcodes[i] = MemoryOp{
				BlockID: d.MemoryOp.BlockID, Kind: kind, Value: d.MemoryOp.Value,
				Index: MemoryIndex{IsConst: d.MemoryOp.Index.IsConst, Const: d.MemoryOp.Index.Const, Witness: d.MemoryOp.Index.Witness},
			}
		case "range_check":
			if d.RangeCheck == nil {
				return nil, fmt.Errorf("r1cs: opcode %d: kind range_check missing its body", i)
			}
			opcodes[i] = RangeCheck{Witness: d.RangeCheck.Witness, NumBits: d.RangeCheck.NumBits}
		case "and":
			if d.And == nil {
				return nil, fmt.Errorf("r1cs: opcode %d: kind and missing its body", i)
			}
			opcodes[i] = AndOp{Lhs: d.And.Lhs, Rhs: d.And.Rhs, Output: d.And.Output}
		case "xor":
			if d.Xor == nil {
				return nil, fmt.Errorf("r1cs: opcode %d: kind xor missing its body", i)
			}
			opcodes[i] = XorOp{Lhs: d.Xor.Lhs, Rhs: d.Xor.Rhs, Output: d.Xor.Output}
		case "brillig_call":
			opcodes[i] = BrilligCall{}
		case "sha256_compression":
			if d.Sha256Compression == nil {
				return nil, fmt.Errorf("r1cs: opcode %d: kind sha256_compression missing its body", i)
			}
			opcodes[i] = Sha256Compression{
				Inputs: d.Sha256Compression.Inputs, State: d.Sha256Compression.State, Outputs: d.Sha256Compression.Outputs,
			}
		case "poseidon2_permutation":
			if d.Poseidon2Permutation == nil {
				return nil, fmt.Errorf("r1cs: opcode %d: kind poseidon2_permutation missing its body", i)
			}
			opcodes[i] = Poseidon2Permutation{
				Width: d.Poseidon2Permutation.Width, Inputs: d.Poseidon2Permutation.Inputs, Outputs: d.Poseidon2Permutation.Outputs,
			}
		default:
			return nil, fmt.Errorf("r1cs: opcode %d: unknown kind %q", i, d.Kind)
		}
	}
	return opcodes, nil
}

// WitnessDoc is the ACIR witness-map input file cmd/prove reads: a
// flat array of hex field elements indexed by ACIR witness index,
// the same hex-array convention app/utilities.UnmarshalPublicInputs
// uses for public inputs.
type WitnessDoc []string

// EncodeWitness converts a solved ACIR input vector to its wire form.
func EncodeWitness(acir []field.Element) WitnessDoc {
	doc := make(WitnessDoc, len(acir))
	for i, e := range acir {
		doc[i] = hexEncodeElement(e)
	}
	return doc
}

// DecodeWitness is EncodeWitness's inverse.
func DecodeWitness(doc WitnessDoc) ([]field.Element, error) {
	out := make([]field.Element, len(doc))
	for i, s := range doc {
		e, err := hexDecodeElement(s)
		if err != nil {
			return nil, fmt.Errorf("r1cs: witness entry %d: %w", i, err)
		}
		out[i] = e
	}
	return out, nil
}
