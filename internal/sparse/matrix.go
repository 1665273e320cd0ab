// Package sparse implements the triplet-store sparse matrix used to
// hold the R1CS A/B/C matrices, with an interner shared across all
// three matrices of one instance so repeated constants (zero, one,
// small coefficients) are stored once.
package sparse

import (
	"github.com/reilabs/provekit-go/internal/field"
)

// Interner deduplicates field.Element values, handing out a stable
// index for each distinct value. Shared by A, B and C of one R1CS
// instance (data model: "Invariant: interning is shared by A/B/C of
// the same R1CS").
type Interner struct {
	values []field.Element
	index  map[string]int
}

// NewInterner creates an empty interner.
func NewInterner() *Interner {
	return &Interner{index: map[string]int{}}
}

func key(v field.Element) string {
	return v.ToBigInt().String()
}

// Intern returns the stable index for v, allocating a new slot the
// first time v is seen.
func (in *Interner) Intern(v field.Element) int {
	k := key(v)
	if idx, ok := in.index[k]; ok {
		return idx
	}
	idx := len(in.values)
	in.values = append(in.values, v)
	in.index[k] = idx
	return idx
}

// Value returns the field element stored at idx.
func (in *Interner) Value(idx int) field.Element {
	return in.values[idx]
}

// Len returns the number of distinct interned values.
func (in *Interner) Len() int { return len(in.values) }

// Entry is one non-zero (row, col) -> value triplet.
type Entry struct {
	Row, Col int
	ValueIdx int
}

// Matrix is a (row, col) -> interned-value triplet store. Dimensions
// grow monotonically as entries are set; zero entries are never
// stored (data model invariant).
type Matrix struct {
	interner   *Interner
	entries    map[[2]int]int // (row,col) -> index into order
	order      []Entry
	NumRows    int
	NumColumns int
}

// New creates an empty matrix sharing the given interner.
func New(interner *Interner) *Matrix {
	return &Matrix{interner: interner, entries: map[[2]int]int{}}
}

// Set stores v at (row, col), overwriting any earlier value at that
// position. Setting the field zero removes any existing entry rather
// than storing a zero (data model invariant: a zero entry is never
// stored).
func (m *Matrix) Set(row, col int, v field.Element) {
	if row+1 > m.NumRows {
		m.NumRows = row + 1
	}
	if col+1 > m.NumColumns {
		m.NumColumns = col + 1
	}
	pos, exists := m.entries[[2]int{row, col}]
	if v.ToBigInt().Sign() == 0 {
		if exists {
			m.removeAt(pos)
		}
		return
	}
	idx := m.interner.Intern(v)
	if exists {
		m.order[pos].ValueIdx = idx
		return
	}
	m.entries[[2]int{row, col}] = len(m.order)
	m.order = append(m.order, Entry{Row: row, Col: col, ValueIdx: idx})
}

func (m *Matrix) removeAt(pos int) {
	last := len(m.order) - 1
	removed := m.order[pos]
	if pos != last {
		m.order[pos] = m.order[last]
		m.entries[[2]int{m.order[pos].Row, m.order[pos].Col}] = pos
	}
	m.order = m.order[:last]
	delete(m.entries, [2]int{removed.Row, removed.Col})
}

// Get returns the value at (row, col), or the field zero if unset.
func (m *Matrix) Get(row, col int) field.Element {
	pos, ok := m.entries[[2]int{row, col}]
	if !ok {
		return field.Zero()
	}
	return m.interner.Value(m.order[pos].ValueIdx)
}

// Entries returns the stored non-zero triplets, in no particular
// order, for iteration (e.g. by a Spark-style commitment scheme).
func (m *Matrix) Entries() []Entry {
	return m.order
}

// Interner exposes the shared interner backing this matrix.
func (m *Matrix) Interner() *Interner { return m.interner }

// MulVec computes the dense matrix-vector product m*v. len(v) must be
// at least NumColumns.
func (m *Matrix) MulVec(v []field.Element) []field.Element {
	out := make([]field.Element, m.NumRows)
	zero := field.Zero()
	for i := range out {
		out[i] = zero
	}
	for _, e := range m.order {
		val := m.interner.Value(e.ValueIdx)
		term := field.Mul(val, v[e.Col])
		out[e.Row] = addElements(out[e.Row], term)
	}
	return out
}

func addElements(a, b field.Element) field.Element { return field.Add(a, b) }

// AddScaled computes m + scalar*other, returning a new matrix backed
// by a fresh interner built from the union of both inputs' entries
// (testable property: dot-product distributivity after interning).
func AddScaled(m, other *Matrix, scalar field.Element) *Matrix {
	result := New(NewInterner())
	for _, e := range m.Entries() {
		result.Set(e.Row, e.Col, m.interner.Value(e.ValueIdx))
	}
	for _, e := range other.Entries() {
		scaled := field.Mul(scalar, other.interner.Value(e.ValueIdx))
		existing := result.Get(e.Row, e.Col)
		result.Set(e.Row, e.Col, addElements(existing, scaled))
	}
	return result
}
