package smtree

// SparseMerkleTree is an arena-backed sparse Merkle tree over a key space
// of up to 2^MaxHeight positions. Nodes are stored in a single slice and
// reference each other by index rather than pointer; this is also what
// lets a batched Merkle proof and a random sampling proof walk
// parent/child relationships without recursive struct ownership
// headaches.
type SparseMerkleTree[V Leaf[V]] struct {
	height int
	root   int
	nodes  []TreeNode[V]
}

// NewSparseMerkleTree returns the canonical empty tree of the given height: a single
// Padding root holding the all-zeros-secret padding value at TreeIndex
// zero(0), the same sentinel Build and Update both replace on first use.
// Fails if height exceeds MaxHeight.
func NewSparseMerkleTree[V Leaf[V]](height int) (*SparseMerkleTree[V], error) {
	if height > MaxHeight {
		return nil, withHeight(ErrExceedMaxHeight, height)
	}
	zeroIdx, _ := Zero(0)
	var zero V
	sentinel := newTreeNode[V](zero.Pad(zeroIdx, AllZerosSecret), Padding)
	return &SparseMerkleTree[V]{height: height, root: 0, nodes: []TreeNode[V]{sentinel}}, nil
}

// Height returns the tree's configured height.
func (t *SparseMerkleTree[V]) Height() int {
	return t.height
}

// NumNodes returns the number of allocated arena slots, including the
// root.
func (t *SparseMerkleTree[V]) NumNodes() int {
	return len(t.nodes)
}

// Root returns the value held at the tree's root.
func (t *SparseMerkleTree[V]) Root() V {
	return t.nodes[t.root].value
}

// IsEmpty reports whether the tree is still the unbuilt sentinel: a single
// Padding root and nothing else.
func (t *SparseMerkleTree[V]) IsEmpty() bool {
	return len(t.nodes) == 1 && t.nodes[t.root].nodeType == Padding
}

func checkIndexListValidity(height int, indexes []TreeIndex) error {
	for _, idx := range indexes {
		if idx.Height() != height {
			return ErrHeightNotMatch
		}
	}
	for i := 1; i < len(indexes); i++ {
		if indexes[i-1].Equal(indexes[i]) {
			return ErrIndexDuplicated
		}
		if !indexes[i-1].Less(indexes[i]) {
			return ErrIndexNotSorted
		}
	}
	return nil
}

// Build replaces the tree's contents with a fresh tree over indexes and
// their corresponding leaves, sweeping left to right one layer at a time:
// adjacent sorted siblings pair up directly, any sibling missing from the
// input is allocated fresh as a secret-derived Padding node. indexes must
// be sorted ascending, every one at this tree's height, and free of
// duplicates, or Build fails before mutating the tree. indexes and
// leaves must be the same length; a mismatch is a caller contract
// violation, not a runtime input to validate, so it panics rather than
// returning an error.
func (t *SparseMerkleTree[V]) Build(indexes []TreeIndex, leaves []V, secret Secret) error {
	if len(indexes) != len(leaves) {
		panic("SparseMerkleTree.Build: indexes and leaves length mismatch")
	}
	if err := checkIndexListValidity(t.height, indexes); err != nil {
		return err
	}
	if len(indexes) == 0 {
		empty, err := NewSparseMerkleTree[V](t.height)
		if err != nil {
			return err
		}
		*t = *empty
		return nil
	}

	type layerEntry struct {
		idx TreeIndex
		ref int
	}

	nodes := make([]TreeNode[V], 0, len(indexes)*2)
	layer := make([]layerEntry, len(indexes))
	for i, idx := range indexes {
		nodes = append(nodes, newTreeNode[V](leaves[i], Leaf_))
		layer[i] = layerEntry{idx, len(nodes) - 1}
	}

	var zero V
	for height := t.height; height > 0; height-- {
		next := make([]layerEntry, 0, (len(layer)+1)/2)
		for i := 0; i < len(layer); {
			cur := layer[i]
			var lchRef, rchRef int
			var parentIdx TreeIndex
			if !cur.idx.GetLastBit() {
				parentIdx = cur.idx.GetParentIndex()
				lchRef = cur.ref
				sibIdx := cur.idx.GetSiblingIndex()
				if i+1 < len(layer) && layer[i+1].idx.Equal(sibIdx) {
					rchRef = layer[i+1].ref
					i += 2
				} else {
					nodes = append(nodes, newTreeNode[V](zero.Pad(sibIdx, secret), Padding))
					rchRef = len(nodes) - 1
					i++
				}
			} else {
				parentIdx = cur.idx.GetParentIndex()
				sibIdx := cur.idx.GetSiblingIndex()
				nodes = append(nodes, newTreeNode[V](zero.Pad(sibIdx, secret), Padding))
				lchRef = len(nodes) - 1
				rchRef = cur.ref
				i++
			}
			parentVal := nodes[lchRef].value.Merge(nodes[lchRef].value, nodes[rchRef].value)
			nodes = append(nodes, newTreeNode[V](parentVal, Internal))
			parentRef := len(nodes) - 1
			nodes[lchRef].parent = parentRef
			nodes[rchRef].parent = parentRef
			nodes[parentRef].lch = lchRef
			nodes[parentRef].rch = rchRef
			next = append(next, layerEntry{parentIdx, parentRef})
		}
		layer = next
	}

	t.nodes = nodes
	t.root = layer[0].ref
	return nil
}

// closestAncestorRefIndex walks from the root toward idx, following
// already-allocated children, and stops at the deepest node actually
// present in the arena: either idx itself (if fully materialized) or the
// shallowest unmaterialized ancestor's parent.
func (t *SparseMerkleTree[V]) closestAncestorRefIndex(idx TreeIndex) (int, TreeIndex) {
	ref := t.root
	cur, _ := Zero(0)
	for cur.Height() < idx.Height() {
		dir := boolToDir(idx.GetBit(cur.Height()))
		next, ok := t.nodes[ref].ChildRefByDir(dir)
		if !ok {
			break
		}
		ref = next
		cur = cur.GetChildIndexByDir(dir)
	}
	return ref, cur
}

// GetLeafByIndex returns the node reached by walking down to idx: if the
// position is fully materialized this is the node at idx itself, whatever
// its NodeType (Leaf, Padding, or even Internal, if idx names an interior
// position) — it does not require the result to actually be a Leaf despite
// the name, matching the original's get_leaf_by_index behavior exactly.
// The returned bool is false when idx itself was never materialized, in
// which case the returned value and type belong to the deepest allocated
// ancestor instead.
func (t *SparseMerkleTree[V]) GetLeafByIndex(idx TreeIndex) (V, NodeType, bool) {
	ref, reached := t.closestAncestorRefIndex(idx)
	return t.nodes[ref].value, t.nodes[ref].nodeType, reached.Equal(idx)
}

// retrievePath walks from the root to idx, lazily allocating any missing
// children along the way as Padding nodes (both children of a childless
// node at once, so every node on the path keeps a sibling), and returns the
// arena ref at idx.
func (t *SparseMerkleTree[V]) retrievePath(idx TreeIndex, secret Secret) int {
	ref := t.root
	cur, _ := Zero(0)
	var zero V
	for cur.Height() < idx.Height() {
		dir := boolToDir(idx.GetBit(cur.Height()))
		childRef, ok := t.nodes[ref].ChildRefByDir(dir)
		if !ok {
			for _, d := range []ChildDir{Left, Right} {
				if _, has := t.nodes[ref].ChildRefByDir(d); has {
					continue
				}
				node := newTreeNode[V](zero.Pad(cur.GetChildIndexByDir(d), secret), Padding)
				node.parent = ref
				t.nodes = append(t.nodes, node)
				if d == Left {
					t.nodes[ref].lch = len(t.nodes) - 1
				} else {
					t.nodes[ref].rch = len(t.nodes) - 1
				}
			}
			childRef, _ = t.nodes[ref].ChildRefByDir(dir)
		}
		ref = childRef
		cur = cur.GetChildIndexByDir(dir)
	}
	return ref
}

// Update incrementally applies a sorted, duplicate-free, same-height batch
// of leaf writes to the tree, materializing any missing ancestors along
// the way and recomputing every affected node's value bottom-up. Unlike
// Build, Update never discards existing structure.
func (t *SparseMerkleTree[V]) Update(indexes []TreeIndex, leaves []V, secret Secret) error {
	if len(indexes) != len(leaves) {
		panic("SparseMerkleTree.Update: indexes and leaves length mismatch")
	}
	if err := checkIndexListValidity(t.height, indexes); err != nil {
		return err
	}
	for i, idx := range indexes {
		ref := t.retrievePath(idx, secret)
		t.nodes[ref].value = leaves[i]
		t.nodes[ref].nodeType = Leaf_

		cur := ref
		for {
			parentRef, ok := t.nodes[cur].ParentRef()
			if !ok {
				t.root = cur
				break
			}
			lch, _ := t.nodes[parentRef].LchRef()
			rch, _ := t.nodes[parentRef].RchRef()
			t.nodes[parentRef].value = t.nodes[lch].value.Merge(t.nodes[lch].value, t.nodes[rch].value)
			if t.nodes[parentRef].nodeType == Padding {
				t.nodes[parentRef].nodeType = Internal
			}
			cur = parentRef
		}
	}
	return nil
}

// NewMerkleTree builds a dense, zero-secret-padded tree over leaves laid
// out contiguously from position 0, height chosen as the smallest value
// with 2^height >= len(leaves): every position up to len(leaves) is a
// real Leaf, everything to its right up to 2^height is AllZerosSecret
// padding, supplied by Build's own gap-filling exactly as it would for
// any other sparse tree.
func NewMerkleTree[V Leaf[V]](leaves []V) (*SparseMerkleTree[V], error) {
	n := len(leaves)
	height := 0
	for (uint64(1) << uint(height)) < uint64(n) {
		height++
	}
	indexes := make([]TreeIndex, n)
	for i := range leaves {
		idx, err := FromU64(height, uint64(i))
		if err != nil {
			return nil, err
		}
		indexes[i] = idx
	}
	t, err := NewSparseMerkleTree[V](height)
	if err != nil {
		return nil, err
	}
	if err := t.Build(indexes, leaves, AllZerosSecret); err != nil {
		return nil, err
	}
	return t, nil
}

// nodeValueAt returns the value stored at arena ref.
func (t *SparseMerkleTree[V]) nodeValueAt(ref int) V {
	return t.nodes[ref].value
}

// IndexRefPair pairs a materialized node's TreeIndex with its arena ref.
type IndexRefPair struct {
	Index TreeIndex
	Ref   int
}

// IndexRefPairs walks the tree breadth-first from the root and returns
// every materialized node's TreeIndex paired with its arena ref, root
// first.
func (t *SparseMerkleTree[V]) IndexRefPairs() []IndexRefPair {
	rootIdx, _ := Zero(0)
	root := IndexRefPair{rootIdx, t.root}
	out := []IndexRefPair{root}
	queue := []IndexRefPair{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if lch, ok := t.nodes[cur.Ref].LchRef(); ok {
			p := IndexRefPair{cur.Index.GetLchIndex(), lch}
			out = append(out, p)
			queue = append(queue, p)
		}
		if rch, ok := t.nodes[cur.Ref].RchRef(); ok {
			p := IndexRefPair{cur.Index.GetRchIndex(), rch}
			out = append(out, p)
			queue = append(queue, p)
		}
	}
	return out
}

// IndexNodePair pairs a materialized node's TreeIndex with a copy of the
// node itself.
type IndexNodePair[V any] struct {
	Index TreeIndex
	Node  TreeNode[V]
}

// IndexNodePairs is IndexRefPairs with each ref resolved to its node.
func (t *SparseMerkleTree[V]) IndexNodePairs() []IndexNodePair[V] {
	refs := t.IndexRefPairs()
	out := make([]IndexNodePair[V], len(refs))
	for i, r := range refs {
		out[i] = IndexNodePair[V]{Index: r.Index, Node: t.nodes[r.Ref]}
	}
	return out
}

func (t *SparseMerkleTree[V]) filterByType(nt NodeType) []IndexNodePair[V] {
	var out []IndexNodePair[V]
	for _, p := range t.IndexNodePairs() {
		if p.Node.NodeType() == nt {
			out = append(out, p)
		}
	}
	return out
}

// Leaves returns every materialized Leaf node, in BFS order.
func (t *SparseMerkleTree[V]) Leaves() []IndexNodePair[V] { return t.filterByType(Leaf_) }

// Paddings returns every materialized Padding node, in BFS order.
func (t *SparseMerkleTree[V]) Paddings() []IndexNodePair[V] { return t.filterByType(Padding) }

// Internals returns every materialized Internal node, in BFS order.
func (t *SparseMerkleTree[V]) Internals() []IndexNodePair[V] { return t.filterByType(Internal) }

// GetClosestIndexByDir searches the tree's actual materialized structure
// (not a hypothetically fully populated tree) for the nearest neighbour of
// idx in direction dir: it climbs to the first ancestor with a
// materialized, non-Padding sibling subtree on that side, then descends
// into that subtree toward idx, stepping to the other child wherever the
// child toward idx is Padding, and returns the Leaf position it lands on.
// It returns false if no such subtree is materialized anywhere in the tree.
// This operates against real Padding/Leaf nodes, unlike TreeIndex's own
// conceptual, dense-tree GetLeftIndex/GetRightIndex.
func (t *SparseMerkleTree[V]) GetClosestIndexByDir(idx TreeIndex, dir ChildDir) (TreeIndex, bool) {
	wantRight := dir == Right
	curRef, cur := t.closestAncestorRefIndex(idx)
	for cur.Height() > 0 {
		last := cur.GetLastBit()
		parentRef, ok := t.nodes[curRef].ParentRef()
		if !ok {
			break
		}
		parentIdx := cur.GetParentIndex()
		if last != wantRight {
			sibDir := boolToDir(wantRight)
			if sibRef, ok2 := t.nodes[parentRef].ChildRefByDir(sibDir); ok2 && t.nodes[sibRef].nodeType != Padding {
				leafRef := sibRef
				leafIdx := parentIdx.GetChildIndexByDir(sibDir)
				for {
					childDir := boolToDir(!wantRight)
					childRef, ok3 := t.nodes[leafRef].ChildRefByDir(childDir)
					if !ok3 {
						break
					}
					if t.nodes[childRef].nodeType == Padding {
						childDir = boolToDir(wantRight)
						if childRef, ok3 = t.nodes[leafRef].ChildRefByDir(childDir); !ok3 {
							break
						}
					}
					leafRef = childRef
					leafIdx = leafIdx.GetChildIndexByDir(childDir)
				}
				return leafIdx, true
			}
		}
		cur = parentIdx
		curRef = parentRef
	}
	return TreeIndex{}, false
}

// GetMerklePathRef returns the arena refs of the leaf at idx followed by
// its siblings from the leaf's level up to (but not including) the root,
// the shape a single-index MerkleProof needs.
func (t *SparseMerkleTree[V]) GetMerklePathRef(idx TreeIndex) []int {
	ref, reached := t.closestAncestorRefIndex(idx)
	if !reached.Equal(idx) {
		panic("SparseMerkleTree.GetMerklePathRef: index is not materialized")
	}
	path := make([]int, 0, idx.Height()+1)
	path = append(path, ref)
	cur := ref
	for h := idx.Height(); h > 0; h-- {
		parentRef, _ := t.nodes[cur].ParentRef()
		var sibRef int
		if lch, _ := t.nodes[parentRef].LchRef(); lch == cur {
			sibRef, _ = t.nodes[parentRef].RchRef()
		} else {
			sibRef, _ = t.nodes[parentRef].LchRef()
		}
		path = append(path, sibRef)
		cur = parentRef
	}
	return path
}

// PaddingProofByDirIndexRefPairs computes, by pure index arithmetic (no
// tree access), the sequence of padding positions a 1-neighbour random
// sampling proof must open to establish that idx (a neighbour found in
// direction dir from the sampled position) has no further neighbour beyond
// it, all the way to that edge of the tree: at each ancestor level where
// idx sits on the dir side of its parent, idx's own subtree there is still
// bounded by its parent on the far side, so the sibling subtree on the
// opposite side is the next padding commitment to open. offset counts
// positions from the end of the eventual sibling list.
func PaddingProofByDirIndexRefPairs(idx TreeIndex, dir ChildDir) []PaddingPair {
	wantBit := dir == Left
	var out []PaddingPair
	cur := idx
	for cur.Height() > 0 {
		if cur.GetLastBit() != wantBit {
			// The sibling list runs from idx's own level up to the root's
			// children, so the sibling at depth d sits d-1 places from its end.
			out = append(out, PaddingPair{Index: cur.GetSiblingIndex(), Offset: cur.Height() - 1})
		}
		cur = cur.GetParentIndex()
	}
	return out
}

// PaddingPair names a padding commitment a random sampling proof must open,
// and its position counted from the end of the sibling list it belongs to.
type PaddingPair struct {
	Index  TreeIndex
	Offset int
}

// PaddingProofBatchIndexRefPairs computes the padding positions a
// 2-neighbour random sampling proof must open to establish that nothing
// exists strictly between left and right. It climbs both indices'
// ancestor chains in lockstep, stopping before their common ancestor
// (the level where the two chains merge directly needs no padding: both
// sides are real, already-known subtree roots there). At every layer
// above that, left's sibling lies in the gap iff left is a left child
// there, and right's sibling lies in the gap iff right is a right child;
// each layer consumes two offsets, right's pair (if any) before left's,
// matching the BFS-from-root order GetMerklePathRefBatch emits its
// siblings in. Fails with ErrHeightNotMatch or ErrIndexNotSorted on bad
// inputs, before any pairs are computed.
func PaddingProofBatchIndexRefPairs(left, right TreeIndex) ([]PaddingPair, error) {
	if left.Height() != right.Height() {
		return nil, ErrHeightNotMatch
	}
	if !left.Less(right) {
		return nil, ErrIndexNotSorted
	}

	commonDepth := 0
	for commonDepth < left.Height() && left.GetBit(commonDepth) == right.GetBit(commonDepth) {
		commonDepth++
	}

	var out []PaddingPair
	cur, curR := left, right
	layerOffset := 0
	for cur.Height() > commonDepth+1 {
		if curR.GetLastBit() {
			out = append(out, PaddingPair{Index: curR.GetSiblingIndex(), Offset: layerOffset})
		}
		if !cur.GetLastBit() {
			out = append(out, PaddingPair{Index: cur.GetSiblingIndex(), Offset: layerOffset + 1})
		}
		layerOffset += 2
		cur = cur.GetParentIndex()
		curR = curR.GetParentIndex()
	}
	return out, nil
}
