package smtree

// GenerateRangeProof and VerifyRangeProof specialize the general batched
// Merkle proof (GenerateInclusionProof / MerkleProof.VerifyBatch) to the
// common case of a single *contiguous* run of leaf positions: instead of
// building a shape tree and carrying one sibling per boundary node inside
// the range, the proof only needs to carry the root of each maximal
// dyadic subtree lying entirely outside the range — O(log n) of them no
// matter how long the range is. Built on QuickRoot to fold the range's
// own leaves without walking the arena leaf by leaf.

// collectBoundarySiblings walks the dyadic decomposition of [0, 2^height)
// and appends, for every maximal subtree lying entirely outside
// [rangeStart, rangeEnd), that subtree's materialized value. Subtrees
// entirely inside the range are skipped (the caller already has those
// leaves directly); subtrees straddling a range boundary are split and
// recursed into.
func collectBoundarySiblings[V Leaf[V]](tree *SparseMerkleTree[V], height int, base, rangeStart, rangeEnd uint64, out *[]V) error {
	size := uint64(1) << uint(height)
	if base+size <= rangeStart || base >= rangeEnd {
		idx, err := FromU64(tree.height-height, base>>uint(height))
		if err != nil {
			return err
		}
		val, _, ok := tree.GetLeafByIndex(idx)
		if !ok {
			return ErrHeightNotMatch
		}
		*out = append(*out, val)
		return nil
	}
	if base >= rangeStart && base+size <= rangeEnd {
		return nil
	}
	half := size / 2
	if err := collectBoundarySiblings(tree, height-1, base, rangeStart, rangeEnd, out); err != nil {
		return err
	}
	return collectBoundarySiblings(tree, height-1, base+half, rangeStart, rangeEnd, out)
}

// GenerateRangeProof builds a range proof for the contiguous leaf span
// [rangeStart, rangeEnd) of tree: the leaves themselves, in order, plus
// the O(log n) boundary sibling values VerifyRangeProof needs to fold them
// back up to tree's root. rangeEnd must be strictly greater than
// rangeStart.
func GenerateRangeProof[V Leaf[V]](tree *SparseMerkleTree[V], rangeStart, rangeEnd uint64) (leaves []V, siblings []V, err error) {
	if rangeEnd <= rangeStart {
		panic("smtree.GenerateRangeProof: empty or inverted range")
	}
	leaves = make([]V, 0, rangeEnd-rangeStart)
	for i := rangeStart; i < rangeEnd; i++ {
		idx, err2 := FromU64(tree.height, i)
		if err2 != nil {
			return nil, nil, err2
		}
		v, _, ok := tree.GetLeafByIndex(idx)
		if !ok {
			return nil, nil, ErrHeightNotMatch
		}
		leaves = append(leaves, v)
	}
	if err2 := collectBoundarySiblings(tree, tree.height, 0, rangeStart, rangeEnd, &siblings); err2 != nil {
		return nil, nil, err2
	}
	return leaves, siblings, nil
}

// verifyRangeNode mirrors collectBoundarySiblings' decomposition, folding
// leaves with QuickRoot where a subtree lies entirely inside the range and
// consuming the next boundary sibling where one lies entirely outside it.
func verifyRangeNode[V Leaf[V]](height int, base, rangeStart, rangeEnd uint64, leaves []V, rangeStartBase uint64, siblings []V, sibCursor *int, secret Secret) (V, error) {
	size := uint64(1) << uint(height)
	if base+size <= rangeStart || base >= rangeEnd {
		if *sibCursor >= len(siblings) {
			var zero V
			return zero, ErrBytesNotEnough
		}
		v := siblings[*sibCursor]
		*sibCursor++
		return v, nil
	}
	if base >= rangeStart && base+size <= rangeEnd {
		offset := base - rangeStartBase
		return QuickRoot(leaves[offset:offset+size], height, secret), nil
	}
	half := size / 2
	lv, err := verifyRangeNode[V](height-1, base, rangeStart, rangeEnd, leaves, rangeStartBase, siblings, sibCursor, secret)
	if err != nil {
		return lv, err
	}
	rv, err := verifyRangeNode[V](height-1, base+half, rangeStart, rangeEnd, leaves, rangeStartBase, siblings, sibCursor, secret)
	if err != nil {
		return rv, err
	}
	return lv.Merge(lv, rv), nil
}

// VerifyRangeProof checks a proof built by GenerateRangeProof: that
// leaves, taken as the contiguous span [rangeStart, rangeEnd) of a height
// height tree, folds together with siblings to exactly root. secret is
// passed on to QuickRoot, but every subtree folded there lies wholly inside
// the range and has all its leaves supplied, so no padding is derived from
// it and the result does not depend on it.
func VerifyRangeProof[V Leaf[V]](height int, rangeStart, rangeEnd uint64, leaves []V, siblings []V, root V, secret Secret) bool {
	if rangeEnd <= rangeStart || uint64(len(leaves)) != rangeEnd-rangeStart {
		return false
	}
	sibCursor := 0
	got, err := verifyRangeNode[V](height, 0, rangeStart, rangeEnd, leaves, rangeStart, siblings, &sibCursor, secret)
	if err != nil {
		return false
	}
	if sibCursor != len(siblings) {
		return false
	}
	return valuesEqual(got, root)
}
