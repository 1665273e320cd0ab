package serialize

import (
	"encoding/hex"
	"fmt"

	"github.com/ronanh/intcomp"

	"github.com/reilabs/provekit-go/internal/r1cs"
	"github.com/reilabs/provekit-go/internal/sparse"
)

// SparseMatrixDoc is one R1CS matrix's JSON encoding: parallel
// row/col/interner-index arrays, field-named after the teacher's
// SparseMatrix (app/circuit/matrix_evaluation.go). Unlike the
// teacher's plain arrays, each array here is intcomp-compressed
// (delta+bitpacked) before being written, since a real circuit's
// matrices run into the millions of entries with long runs of
// nearby row/column indices.
type SparseMatrixDoc struct {
	Rows        uint64   `json:"num_rows"`
	Cols        uint64   `json:"num_cols"`
	NumEntries  int      `json:"num_entries"`
	RowIndices  []uint64 `json:"row_indices"`
	ColIndices  []uint64 `json:"col_indices"`
	Values      []uint64 `json:"values"`
}

func compressUint64s(xs []uint64) []uint64 {
	return intcomp.CompressUint64(xs, nil)
}

func decompressUint64s(compressed []uint64, n int) []uint64 {
	return intcomp.UncompressUint64(compressed, make([]uint64, 0, n))[:n]
}

// InternerDoc holds the shared A/B/C coefficient interner as a
// hex-encoded arkworks-canonical blob of field elements, matching the
// teacher's InternerAsString (the JSON document stores the encoded
// bytes as a hex string; the decoded bytes are the same
// CanonicalSerializeWithMode payload an Interner{Values []Fp256}
// struct would produce).
type InternerDoc struct {
	Values string `json:"values"`
}

// R1CSDocument is the on-disk form of a compiled circuit: dimensions,
// the shared interner, and the three constraint matrices.
type R1CSDocument struct {
	PublicInputs uint64           `json:"public_inputs"`
	Witnesses    uint64           `json:"witnesses"`
	Constraints  uint64           `json:"constraints"`
	Interner     InternerDoc      `json:"interner"`
	A            SparseMatrixDoc  `json:"a"`
	B            SparseMatrixDoc  `json:"b"`
	C            SparseMatrixDoc  `json:"c"`
}

func encodeMatrix(m *sparse.Matrix) SparseMatrixDoc {
	entries := m.Entries()
	rows := make([]uint64, len(entries))
	cols := make([]uint64, len(entries))
	vals := make([]uint64, len(entries))
	for i, e := range entries {
		rows[i] = uint64(e.Row)
		cols[i] = uint64(e.Col)
		vals[i] = uint64(e.ValueIdx)
	}
	return SparseMatrixDoc{
		Rows:       uint64(m.NumRows),
		Cols:       uint64(m.NumColumns),
		NumEntries: len(entries),
		RowIndices: compressUint64s(rows),
		ColIndices: compressUint64s(cols),
		Values:     compressUint64s(vals),
	}
}

// DecodeMatrixEntries recovers the (row, col, interner-index) triplets
// doc.RowIndices/ColIndices/Values were compressed from.
func DecodeMatrixEntries(doc SparseMatrixDoc) []sparse.Entry {
	rows := decompressUint64s(doc.RowIndices, doc.NumEntries)
	cols := decompressUint64s(doc.ColIndices, doc.NumEntries)
	vals := decompressUint64s(doc.Values, doc.NumEntries)
	out := make([]sparse.Entry, doc.NumEntries)
	for i := range out {
		out[i] = sparse.Entry{Row: int(rows[i]), Col: int(cols[i]), ValueIdx: int(vals[i])}
	}
	return out
}

// EncodeR1CS builds the document form of inst, given how many of its
// leading witnesses are public inputs (the compiler itself has no
// notion of public vs. private, so the caller, which drove ACIR
// witness allocation, supplies it).
func EncodeR1CS(inst *r1cs.Instance, numPublicInputs int) (*R1CSDocument, error) {
	interner := inst.A.Interner()
	values := make([]Repr, interner.Len())
	for i := 0; i < interner.Len(); i++ {
		values[i] = ToRepr(interner.Value(i))
	}
	internerBytes, err := Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("serialize: encoding interner: %w", err)
	}
	return &R1CSDocument{
		PublicInputs: uint64(numPublicInputs),
		Witnesses:    uint64(inst.NumWitnesses()),
		Constraints:  uint64(inst.A.NumRows),
		Interner:     InternerDoc{Values: hex.EncodeToString(internerBytes)},
		A:            encodeMatrix(inst.A),
		B:            encodeMatrix(inst.B),
		C:            encodeMatrix(inst.C),
	}, nil
}

// DecodeInternerValues recovers the field elements backing doc's
// interner, the form app/circuit's verifier and internal/circuitshapes'
// cross-checker both need to evaluate the matrices.
func DecodeInternerValues(doc *R1CSDocument) ([]Repr, error) {
	raw, err := hex.DecodeString(doc.Interner.Values)
	if err != nil {
		return nil, fmt.Errorf("serialize: decoding interner hex: %w", err)
	}
	var values []Repr
	if err := Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("serialize: decoding interner values: %w", err)
	}
	return values, nil
}
