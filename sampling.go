package smtree

// RandomSamplingProof demonstrates, for a randomly chosen challenge
// position, either that a real leaf sits there or that it sits in a
// padding region bounded by the tree's actual contents — without requiring
// the verifier to trust the prover's padding secret.
type RandomSamplingProof[V Leaf[V]] struct {
	index         TreeIndex
	paddingProofs []V
	merkleProof   MerkleProof[V]
	leaves        []V
}

// Index returns the sampled challenge position.
func (p RandomSamplingProof[V]) Index() TreeIndex { return p.index }

// RandomSampling builds a RandomSamplingProof for idx against tree, using
// secret to open any padding commitments the proof needs. It covers four
// cases:
//
//   - The tree is empty: the proof carries an empty Merkle sub-proof and
//     opens the root's padding commitment at zero(0) directly.
//   - idx lands exactly on a materialized Leaf: an ordinary single-leaf
//     Merkle proof, no padding commitments needed.
//   - idx has exactly one existing neighbour: a single-leaf Merkle proof
//     of that neighbour, plus padding commitments for the boundary
//     subtrees between idx and the tree's edge on the neighbourless side.
//   - idx has existing neighbours on both sides: a batched Merkle proof of
//     both neighbours, plus padding commitments for the boundary subtrees
//     strictly between them.
func RandomSampling[V Leaf[V]](tree *SparseMerkleTree[V], idx TreeIndex, secret Secret) (RandomSamplingProof[V], error) {
	if tree.IsEmpty() {
		zeroIdx, _ := Zero(0)
		rootVal := tree.Root()
		// An empty tree's root is always the all-zeros-secret sentinel.
		pad := rootVal.ProvePadding(zeroIdx, AllZerosSecret)
		return RandomSamplingProof[V]{
			index:         idx,
			paddingProofs: []V{pad},
			merkleProof:   NewEmptyMerkleProof[V](),
		}, nil
	}

	if val, nt, hit := tree.GetLeafByIndex(idx); hit && nt == Leaf_ {
		refs := tree.GetMerklePathRef(idx)
		siblings := make([]V, 0, len(refs)-1)
		for _, r := range refs[1:] {
			siblings = append(siblings, tree.nodeValueAt(r))
		}
		return RandomSamplingProof[V]{
			index:       idx,
			merkleProof: NewMerkleProof(idx, siblings),
			leaves:      []V{val},
		}, nil
	}

	leftIdx, leftOk := tree.GetClosestIndexByDir(idx, Left)
	rightIdx, rightOk := tree.GetClosestIndexByDir(idx, Right)
	if !leftOk && !rightOk {
		panic("smtree.RandomSampling: non-empty tree has no neighbour in either direction")
	}

	if leftOk && rightOk {
		mp, err := tree.GenerateInclusionProof([]TreeIndex{leftIdx, rightIdx})
		if err != nil {
			return RandomSamplingProof[V]{}, err
		}
		leftVal, _, _ := tree.GetLeafByIndex(leftIdx)
		rightVal, _, _ := tree.GetLeafByIndex(rightIdx)
		pairs, err := PaddingProofBatchIndexRefPairs(leftIdx, rightIdx)
		if err != nil {
			return RandomSamplingProof[V]{}, err
		}
		paddingProofs := make([]V, 0, len(pairs))
		for _, pair := range pairs {
			v, _, _ := tree.GetLeafByIndex(pair.Index)
			paddingProofs = append(paddingProofs, v.ProvePadding(pair.Index, secret))
		}
		return RandomSamplingProof[V]{
			index:         idx,
			paddingProofs: paddingProofs,
			merkleProof:   mp,
			leaves:        []V{leftVal, rightVal},
		}, nil
	}

	var neighbour TreeIndex
	var dir ChildDir
	if leftOk {
		neighbour, dir = leftIdx, Left
	} else {
		neighbour, dir = rightIdx, Right
	}
	refs := tree.GetMerklePathRef(neighbour)
	siblings := make([]V, 0, len(refs)-1)
	for _, r := range refs[1:] {
		siblings = append(siblings, tree.nodeValueAt(r))
	}
	neighbourVal, _, _ := tree.GetLeafByIndex(neighbour)
	pairs := PaddingProofByDirIndexRefPairs(neighbour, dir)
	paddingProofs := make([]V, 0, len(pairs))
	for _, pair := range pairs {
		v, _, _ := tree.GetLeafByIndex(pair.Index)
		paddingProofs = append(paddingProofs, v.ProvePadding(pair.Index, secret))
	}
	return RandomSamplingProof[V]{
		index:         idx,
		paddingProofs: paddingProofs,
		merkleProof:   NewMerkleProof(neighbour, siblings),
		leaves:        []V{neighbourVal},
	}, nil
}

// VerifyRandomSamplingProof checks a RandomSamplingProof against root
// without needing the prover's secret: it verifies the inner Merkle proof
// first, then recomputes the expected padding boundary positions from the
// proof's own index and neighbour(s) and checks each padding commitment
// against the corresponding Merkle-proof sibling. A proof covering three
// or more indexes is always rejected.
func VerifyRandomSamplingProof[V Leaf[V]](proof RandomSamplingProof[V], root V) bool {
	switch len(proof.merkleProof.indexes) {
	case 0:
		if !proof.merkleProof.VerifyBatch(proof.leaves, root) {
			return false
		}
		if len(proof.paddingProofs) != 1 {
			return false
		}
		zeroIdx, _ := Zero(0)
		return root.VerifyPadding(zeroIdx, proof.paddingProofs[0])

	case 1:
		if len(proof.leaves) != 1 || !proof.merkleProof.Verify(proof.leaves[0], root) {
			return false
		}
		neighbour := proof.merkleProof.indexes[0]
		if neighbour.Equal(proof.index) {
			return len(proof.paddingProofs) == 0
		}
		var dir ChildDir
		if neighbour.Less(proof.index) {
			dir = Left
		} else {
			dir = Right
		}
		pairs := PaddingProofByDirIndexRefPairs(neighbour, dir)
		return verifyPaddingPairs(pairs, proof.paddingProofs, proof.merkleProof.siblings)

	case 2:
		if !proof.merkleProof.VerifyBatch(proof.leaves, root) {
			return false
		}
		left, right := proof.merkleProof.indexes[0], proof.merkleProof.indexes[1]
		pairs, err := PaddingProofBatchIndexRefPairs(left, right)
		if err != nil {
			return false
		}
		return verifyPaddingPairs(pairs, proof.paddingProofs, proof.merkleProof.siblings)

	default:
		return false
	}
}

// verifyPaddingPairs checks that each expected padding position's opening
// matches the corresponding sibling value from the accompanying Merkle
// proof, counting siblings from the end of the list as PaddingPair.Offset
// specifies.
func verifyPaddingPairs[V Leaf[V]](pairs []PaddingPair, paddingProofs, siblings []V) bool {
	if len(pairs) != len(paddingProofs) {
		return false
	}
	for i, pair := range pairs {
		pos := len(siblings) - 1 - pair.Offset
		if pos < 0 || pos >= len(siblings) {
			return false
		}
		if !siblings[pos].VerifyPadding(pair.Index, paddingProofs[i]) {
			return false
		}
	}
	return true
}

// Encode serializes the proof as
// `index || u16 padding_num || padding_proofs || merkle_proof || leaves`,
// little-endian throughout.
func (p RandomSamplingProof[V]) Encode() []byte {
	out := Serialize([]TreeIndex{p.index})
	out = append(out, uintToBytes(uint64(len(p.paddingProofs)), 2)...)
	for _, v := range p.paddingProofs {
		out = append(out, v.Encode()...)
	}
	out = append(out, p.merkleProof.Encode()...)
	for _, v := range p.leaves {
		out = append(out, v.Encode()...)
	}
	return out
}

// DecodeRandomSamplingProof parses a RandomSamplingProof out of its full
// Encode output. The number of leaves to decode is taken from the decoded
// merkle_proof's own index count, since the wire format does not repeat it.
func DecodeRandomSamplingProof[V Leaf[V]](data []byte) (RandomSamplingProof[V], error) {
	begin := 0
	indexes, err := DeserializeAsAUnit(data, 1, &begin)
	if err != nil {
		return RandomSamplingProof[V]{}, err
	}
	paddingNumU, err := bytesToUint(data, 2, &begin)
	if err != nil {
		return RandomSamplingProof[V]{}, err
	}
	var zero V
	paddingProofs := make([]V, 0, paddingNumU)
	for i := uint64(0); i < paddingNumU; i++ {
		v, err := zero.Decode(data, &begin)
		if err != nil {
			return RandomSamplingProof[V]{}, err
		}
		paddingProofs = append(paddingProofs, v)
	}
	mp, err := decodeMerkleProofAt[V](data, &begin)
	if err != nil {
		return RandomSamplingProof[V]{}, err
	}
	leaves := make([]V, 0, len(mp.indexes))
	for i := 0; i < len(mp.indexes); i++ {
		v, err := zero.Decode(data, &begin)
		if err != nil {
			return RandomSamplingProof[V]{}, err
		}
		leaves = append(leaves, v)
	}
	if begin != len(data) {
		return RandomSamplingProof[V]{}, ErrTooManyEncodedBytes
	}
	return RandomSamplingProof[V]{
		index:         indexes[0],
		paddingProofs: paddingProofs,
		merkleProof:   mp,
		leaves:        leaves,
	}, nil
}
