// Package merkle implements the Skyscraper-hashed binary Merkle tree
// used to commit to polynomial evaluation vectors in internal/whir.
// The commitment side of what the teacher's app/circuit/mt.go verifies
// in-circuit: a leaf hash, a bottom-up chain of sibling hashes (the
// auth path), and a root.
package merkle

import "github.com/reilabs/provekit-go/internal/skyscraper"
import "github.com/reilabs/provekit-go/internal/field"

// Tree is a complete binary Merkle tree over a power-of-two number of
// leaves, built bottom-up with skyscraper.Compress as the 2-to-1 hash.
type Tree struct {
	layers [][]field.Element // layers[0] = leaf hashes, layers[len-1] = [root]
}

// HashLeaf folds an arbitrary-width leaf (a row of field elements,
// e.g. one evaluation plus any batched siblings) down to one field
// element via repeated Skyscraper compression, matching the "batch"
// framing skyscraper.BlockCompress/Compress both support.
func HashLeaf(values []field.Element) field.Element {
	if len(values) == 0 {
		return field.Zero()
	}
	acc := values[0]
	for _, v := range values[1:] {
		acc = skyscraper.Compress(acc, v)
	}
	return acc
}

// New builds a tree over leaves, each hashed via HashLeaf. leaves must
// be a power-of-two length.
func New(leaves [][]field.Element) *Tree {
	n := len(leaves)
	hashed := make([]field.Element, n)
	for i, l := range leaves {
		hashed[i] = HashLeaf(l)
	}
	layers := [][]field.Element{hashed}
	for len(layers[len(layers)-1]) > 1 {
		prev := layers[len(layers)-1]
		next := make([]field.Element, len(prev)/2)
		for i := range next {
			next[i] = skyscraper.Compress(prev[2*i], prev[2*i+1])
		}
		layers = append(layers, next)
	}
	return &Tree{layers: layers}
}

// Root returns the tree's root hash.
func (t *Tree) Root() field.Element {
	top := t.layers[len(t.layers)-1]
	return top[0]
}

// AuthPath is one Merkle opening: the sibling hash at every level from
// leaf to root, bottom to top.
type AuthPath struct {
	LeafIndex int
	Siblings  []field.Element
}

// Open returns the authentication path for the leaf at index.
func (t *Tree) Open(index int) AuthPath {
	path := AuthPath{LeafIndex: index}
	idx := index
	for level := 0; level < len(t.layers)-1; level++ {
		layer := t.layers[level]
		siblingIdx := idx ^ 1
		path.Siblings = append(path.Siblings, layer[siblingIdx])
		idx /= 2
	}
	return path
}

// Verify recomputes the root from a claimed leaf hash and an auth
// path, reporting whether it matches root.
func Verify(root field.Element, leafHash field.Element, path AuthPath) bool {
	acc := leafHash
	idx := path.LeafIndex
	for _, sibling := range path.Siblings {
		if idx%2 == 0 {
			acc = skyscraper.Compress(acc, sibling)
		} else {
			acc = skyscraper.Compress(sibling, acc)
		}
		idx /= 2
	}
	return field.Equal(acc, root)
}
