package smtree

// foldDense folds a dense, left-aligned run of leaves into the value of
// the subtree rooted nodeDepth levels below the tree's root, where that
// subtree's own leftmost leaf sits at absolute leaf position leafBase.
// Missing leaves (positions past len(leaves)) are filled with
// secret-derived padding keyed by their real TreeIndex, the same
// position a full arena Build would assign them, so the result always
// matches SparseMerkleTree.Build over the same dense leaf list exactly
// — not merely some same-shaped but differently-keyed padded tree.
func foldDense[V Leaf[V]](leaves []V, treeHeight, nodeDepth int, leafBase uint64, secret Secret) V {
	remaining := treeHeight - nodeDepth
	var zero V
	if len(leaves) == 0 {
		idx, err := FromU64(nodeDepth, leafBase>>uint(remaining))
		if err != nil {
			panic(err)
		}
		return zero.Pad(idx, secret)
	}
	if remaining == 0 {
		return leaves[0]
	}
	half := uint64(1) << uint(remaining-1)
	leftCount := uint64(len(leaves))
	if leftCount > half {
		leftCount = half
	}
	lch := foldDense(leaves[:leftCount], treeHeight, nodeDepth+1, leafBase, secret)
	rch := foldDense(leaves[leftCount:], treeHeight, nodeDepth+1, leafBase+half, secret)
	return lch.Merge(lch, rch)
}

// QuickRoot computes the Merkle root of a dense, left-aligned run of
// leaves at the given height, padding any missing right-hand subtrees
// with secret, without materializing a full SparseMerkleTree arena.
// VerifyRangeProof uses this to fold the leaves
// inside a contiguous range in O(log n) space when that range happens
// to be a complete dyadic subtree; NewMerkleTree-style dense
// construction over a non-power-of-two leaf count is the case that
// exercises the padding path.
func QuickRoot[V Leaf[V]](leaves []V, height int, secret Secret) V {
	return foldDense(leaves, height, 0, 0, secret)
}
