package smtree

import "bytes"

// valuesEqual compares two leaf values by their wire encoding, since V's
// only equality-relevant contract is Serializable, not comparable.
func valuesEqual[V Leaf[V]](a, b V) bool {
	return bytes.Equal(a.Encode(), b.Encode())
}

// MerkleProof is an inclusion proof for one leaf, or a batch of leaves at
// the same height: the leaf's TreeIndex (or indexes, for a batch) plus the
// sibling values needed to fold back up to the root.
type MerkleProof[V Leaf[V]] struct {
	indexes  []TreeIndex
	siblings []V
}

// NewMerkleProof builds a single-leaf proof: siblings ordered from the
// leaf's own level up to (but not including) the root.
func NewMerkleProof[V Leaf[V]](idx TreeIndex, siblings []V) MerkleProof[V] {
	return MerkleProof[V]{indexes: []TreeIndex{idx}, siblings: siblings}
}

// NewMerkleProofBatch builds a batched proof over a sorted, duplicate-free
// list of same-height indexes, with siblings in the order
// GetMerklePathRefBatch produces them.
func NewMerkleProofBatch[V Leaf[V]](indexes []TreeIndex, siblings []V) MerkleProof[V] {
	return MerkleProof[V]{indexes: indexes, siblings: siblings}
}

// NewEmptyMerkleProof builds the degenerate proof over zero leaves, used
// when a random sampling proof has nothing to prove inclusion of: an empty
// tree's only content is its root padding commitment.
func NewEmptyMerkleProof[V Leaf[V]]() MerkleProof[V] {
	return MerkleProof[V]{}
}

// Indexes returns the proof's covered indexes.
func (p MerkleProof[V]) Indexes() []TreeIndex { return p.indexes }

// Siblings returns the proof's sibling values.
func (p MerkleProof[V]) Siblings() []V { return p.siblings }

// Verify checks a single-leaf proof: it folds leaf up through p.siblings,
// one per level from the leaf's height down to the root, and compares the
// result against root. It returns false (never panics) if the proof does
// not cover exactly one index or carries the wrong number of siblings for
// that index's height.
func (p MerkleProof[V]) Verify(leaf V, root V) bool {
	if len(p.indexes) != 1 {
		return false
	}
	idx := p.indexes[0]
	if len(p.siblings) != idx.Height() {
		return false
	}
	cur := leaf
	for i := 0; i < idx.Height(); i++ {
		bit := idx.GetBit(idx.Height() - 1 - i)
		sib := p.siblings[i]
		if !bit {
			cur = cur.Merge(cur, sib)
		} else {
			cur = sib.Merge(sib, cur)
		}
	}
	return valuesEqual(cur, root)
}

// VerifyBatch checks a batched proof: leaves must be supplied in the same
// sorted order as p.indexes. It rebuilds the same Nil-valued shape tree
// GetMerklePathRefBatch built during proof generation to recover which
// BFS positions are leaves versus padding siblings, assigns leaves and
// p.siblings into those positions in BFS order, folds every Internal
// position bottom-up, and compares the recovered root against root.
// Rejects any proof that would leave leaves or siblings unconsumed.
func (p MerkleProof[V]) VerifyBatch(leaves []V, root V) bool {
	if len(p.indexes) == 0 {
		return len(leaves) == 0 && len(p.siblings) == 0
	}
	if len(p.indexes) != len(leaves) {
		return false
	}
	height := p.indexes[0].Height()
	for _, idx := range p.indexes {
		if idx.Height() != height {
			return false
		}
	}

	shape, err := NewSparseMerkleTree[Nil](height)
	if err != nil {
		return false
	}
	shapeLeaves := make([]Nil, len(p.indexes))
	if err := shape.Build(p.indexes, shapeLeaves, Secret{}); err != nil {
		return false
	}

	pairs := shape.IndexRefPairs()
	values := make(map[int]V, len(pairs))
	leafI, sibI := 0, 0
	for _, pr := range pairs {
		switch shape.nodeTypeOf(pr.Ref) {
		case Leaf_:
			if leafI >= len(leaves) {
				return false
			}
			values[pr.Ref] = leaves[leafI]
			leafI++
		case Padding:
			if sibI >= len(p.siblings) {
				return false
			}
			values[pr.Ref] = p.siblings[sibI]
			sibI++
		}
	}
	if leafI != len(leaves) || sibI != len(p.siblings) {
		return false
	}

	for i := len(pairs) - 1; i >= 0; i-- {
		pr := pairs[i]
		if shape.nodeTypeOf(pr.Ref) != Internal {
			continue
		}
		lchRef, rchRef, ok := shape.childRefsOf(pr.Ref)
		if !ok {
			return false
		}
		lv, ok1 := values[lchRef]
		rv, ok2 := values[rchRef]
		if !ok1 || !ok2 {
			return false
		}
		values[pr.Ref] = lv.Merge(lv, rv)
	}

	rootVal, ok := values[shape.root]
	if !ok {
		return false
	}
	return valuesEqual(rootVal, root)
}

// nodeTypeOf and childRefsOf give proof.go read access to an arena node's
// type and children without exposing the arena itself outside the package.
func (t *SparseMerkleTree[V]) nodeTypeOf(ref int) NodeType {
	return t.nodes[ref].NodeType()
}

func (t *SparseMerkleTree[V]) childRefsOf(ref int) (int, int, bool) {
	lch, ok1 := t.nodes[ref].LchRef()
	rch, ok2 := t.nodes[ref].RchRef()
	return lch, rch, ok1 && ok2
}

// GetMerklePathRefBatch returns, for a sorted duplicate-free batch of
// same-height indexes, the arena refs of the covered leaves (in BFS order
// of an auxiliary Nil-valued shape tree built over the same indexes) and
// the arena refs of the sibling nodes a batched proof must carry to fold
// back up to the root.
func (t *SparseMerkleTree[V]) GetMerklePathRefBatch(indexes []TreeIndex) (leaves, siblings []int) {
	shape, err := NewSparseMerkleTree[Nil](t.height)
	if err != nil {
		panic(err)
	}
	shapeLeaves := make([]Nil, len(indexes))
	if err := shape.Build(indexes, shapeLeaves, Secret{}); err != nil {
		panic(err)
	}
	for _, pr := range shape.IndexRefPairs() {
		switch shape.nodeTypeOf(pr.Ref) {
		case Leaf_:
			realRef, reached := t.closestAncestorRefIndex(pr.Index)
			if !reached.Equal(pr.Index) {
				panic("SparseMerkleTree.GetMerklePathRefBatch: index is not materialized")
			}
			leaves = append(leaves, realRef)
		case Padding:
			realRef, _ := t.closestAncestorRefIndex(pr.Index)
			siblings = append(siblings, realRef)
		}
	}
	return leaves, siblings
}

// GenerateInclusionProof builds a MerkleProof over a sorted, duplicate-free
// list of same-height indexes: a single-leaf proof if len(indexes) == 1, a
// batched proof otherwise.
func (t *SparseMerkleTree[V]) GenerateInclusionProof(indexes []TreeIndex) (MerkleProof[V], error) {
	if len(indexes) == 0 {
		return MerkleProof[V]{}, ErrHeightNotMatch
	}
	if len(indexes) == 1 {
		refs := t.GetMerklePathRef(indexes[0])
		siblings := make([]V, 0, len(refs)-1)
		for _, r := range refs[1:] {
			siblings = append(siblings, t.nodes[r].value)
		}
		return NewMerkleProof(indexes[0], siblings), nil
	}
	_, siblingRefs := t.GetMerklePathRefBatch(indexes)
	siblings := make([]V, 0, len(siblingRefs))
	for _, r := range siblingRefs {
		siblings = append(siblings, t.nodes[r].value)
	}
	return NewMerkleProofBatch(indexes, siblings), nil
}

// Encode serializes the proof as
// `u64 batch_num || indexes || u64 sibling_num || siblings`, little-endian
// throughout.
func (p MerkleProof[V]) Encode() []byte {
	out := uintToBytes(uint64(len(p.indexes)), 8)
	out = append(out, Serialize(p.indexes)...)
	out = append(out, uintToBytes(uint64(len(p.siblings)), 8)...)
	for _, s := range p.siblings {
		out = append(out, s.Encode()...)
	}
	return out
}

// DecodeMerkleProof parses a MerkleProof out of its full Encode output.
// Fails with ErrTooManyEncodedBytes if bytes are left over.
func DecodeMerkleProof[V Leaf[V]](data []byte) (MerkleProof[V], error) {
	begin := 0
	p, err := decodeMerkleProofAt[V](data, &begin)
	if err != nil {
		return MerkleProof[V]{}, err
	}
	if begin != len(data) {
		return MerkleProof[V]{}, ErrTooManyEncodedBytes
	}
	return p, nil
}

// decodeMerkleProofAt parses one MerkleProof starting at *begin, advancing
// *begin past it, without requiring the whole buffer to be consumed. Used
// both by DecodeMerkleProof and by RandomSamplingProof decoding, where a
// MerkleProof's encoding sits in the middle of a larger buffer.
func decodeMerkleProofAt[V Leaf[V]](data []byte, begin *int) (MerkleProof[V], error) {
	batchNum, err := bytesToUint(data, 8, begin)
	if err != nil {
		return MerkleProof[V]{}, err
	}
	indexes, err := DeserializeAsAUnit(data, int(batchNum), begin)
	if err != nil {
		return MerkleProof[V]{}, err
	}
	sibNum, err := bytesToUint(data, 8, begin)
	if err != nil {
		return MerkleProof[V]{}, err
	}
	siblings := make([]V, 0, sibNum)
	var zero V
	for i := uint64(0); i < sibNum; i++ {
		v, err := zero.Decode(data, begin)
		if err != nil {
			return MerkleProof[V]{}, err
		}
		siblings = append(siblings, v)
	}
	return MerkleProof[V]{indexes: indexes, siblings: siblings}, nil
}
