package smtree

import (
	"crypto/rand"
	"sort"
)

// MaxHeight is the tallest tree this package will address: a path of
// ByteNum bytes gives 2^256 leaf positions at height MaxHeight.
const MaxHeight = 256

// ByteNum is the fixed path width backing every TreeIndex.
const ByteNum = MaxHeight / 8

// ChildDir picks a left or right child during tree descent.
type ChildDir int

const (
	Left ChildDir = iota
	Right
)

// TreeIndex names a node's position in a sparse Merkle tree: height is the
// node's depth below the root (the root has height 0), and bit i of path
// (byte i/8, LSB first within the byte) selects the child taken at depth i
// on the way down from the root (0 = left, 1 = right).
//
// TreeIndex implements a total order where a smaller height ranks greater
// (ancestors sort after descendants), and indexes of equal height compare
// bit by bit from index 0 upward.
type TreeIndex struct {
	height int
	path   [ByteNum]byte
}

// New builds a TreeIndex from a height and a full path array. It fails if
// height exceeds MaxHeight; bits of path at or above height are ignored by
// every operation below but are not canonicalized here (see GetPrefix).
func New(height int, path [ByteNum]byte) (TreeIndex, error) {
	if height > MaxHeight {
		return TreeIndex{}, withHeight(ErrExceedMaxHeight, height)
	}
	return TreeIndex{height: height, path: path}, nil
}

// Zero returns the TreeIndex of height height with an all-zero path. It
// fails if height exceeds MaxHeight.
func Zero(height int) (TreeIndex, error) {
	return New(height, [ByteNum]byte{})
}

// FromU64 builds a height-height TreeIndex whose path encodes pos, written
// MSB-first so that bit 0 of the result is the top bit of pos (bit
// height-1) and bit (height-1) is the bottom bit. It fails with ErrIndexOverflow if pos does not
// fit in height bits, or ErrExceedMaxHeight if height exceeds MaxHeight.
func FromU64(height int, pos uint64) (TreeIndex, error) {
	if height > MaxHeight {
		return TreeIndex{}, withHeight(ErrExceedMaxHeight, height)
	}
	if height < 64 && (pos>>uint(height)) != 0 {
		return TreeIndex{}, ErrIndexOverflow
	}
	idx := TreeIndex{height: height}
	for i := 0; i < height; i++ {
		if (pos>>uint(height-1-i))&1 == 1 {
			idx.setBit(i)
		}
	}
	return idx, nil
}

// Height returns the index's height.
func (idx TreeIndex) Height() int {
	return idx.height
}

// Path returns a copy of the index's raw path bytes.
func (idx TreeIndex) Path() [ByteNum]byte {
	return idx.path
}

func (idx *TreeIndex) setBit(i int) {
	idx.path[i/8] |= 1 << uint(i%8)
}

func (idx *TreeIndex) clearBit(i int) {
	idx.path[i/8] &^= 1 << uint(i%8)
}

// GetBit returns bit i of the path (0 = byte 0 bit 0, LSB first). It panics
// if i is out of [0, ByteNum*8) range: callers never pass an index derived
// from outside the tree's own bookkeeping.
func (idx TreeIndex) GetBit(i int) bool {
	if i < 0 || i >= ByteNum*8 {
		panic("TreeIndex.GetBit: bit index out of range")
	}
	return idx.path[i/8]&(1<<uint(i%8)) != 0
}

// GetLastBit returns bit (height-1), the bit that was most recently fixed
// on the way down from the root. Panics if height is 0.
func (idx TreeIndex) GetLastBit() bool {
	if idx.height == 0 {
		panic("TreeIndex.GetLastBit: index has no bits at height 0")
	}
	return idx.GetBit(idx.height - 1)
}

// GetPrefix returns the index truncated to height h: same path bits 0..h,
// every bit at or above h cleared, height set to h. Panics if h exceeds the
// receiver's own height, matching the Rust original's precondition.
func (idx TreeIndex) GetPrefix(h int) TreeIndex {
	if h > idx.height {
		panic("TreeIndex.GetPrefix: target height exceeds index height")
	}
	out := idx
	out.height = h
	for i := h; i < ByteNum*8; i++ {
		out.clearBit(i)
	}
	return out
}

// Randomize overwrites the path with fresh random bits below height, using
// a CSPRNG. This is a real public operation (random sampling callers use it
// to pick a position to challenge), not test-data generation, so it draws
// from crypto/rand rather than the package's test-only fastrand surface.
func (idx *TreeIndex) Randomize() error {
	var buf [ByteNum]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return err
	}
	idx.path = buf
	*idx = idx.GetPrefix(idx.height)
	return nil
}

// GetChildIndexByDir returns the child of idx in direction dir, one level
// deeper. Panics if idx is already at MaxHeight.
func (idx TreeIndex) GetChildIndexByDir(dir ChildDir) TreeIndex {
	if dir == Left {
		return idx.GetLchIndex()
	}
	return idx.GetRchIndex()
}

// GetLchIndex returns idx's left child: height+1, with bit height cleared.
func (idx TreeIndex) GetLchIndex() TreeIndex {
	if idx.height >= MaxHeight {
		panic("TreeIndex.GetLchIndex: index is already at MaxHeight")
	}
	out := idx
	out.height++
	out.clearBit(idx.height)
	return out
}

// GetRchIndex returns idx's right child: height+1, with bit height set.
func (idx TreeIndex) GetRchIndex() TreeIndex {
	if idx.height >= MaxHeight {
		panic("TreeIndex.GetRchIndex: index is already at MaxHeight")
	}
	out := idx
	out.height++
	out.setBit(idx.height)
	return out
}

// GetSiblingIndex returns the index at the same height sharing idx's
// parent: the same path with the last bit flipped. Panics at height 0.
func (idx TreeIndex) GetSiblingIndex() TreeIndex {
	if idx.height == 0 {
		panic("TreeIndex.GetSiblingIndex: root has no sibling")
	}
	out := idx
	if idx.GetLastBit() {
		out.clearBit(idx.height - 1)
	} else {
		out.setBit(idx.height - 1)
	}
	return out
}

// GetParentIndex returns idx's parent: height-1, truncated to that height.
// Panics at height 0.
func (idx TreeIndex) GetParentIndex() TreeIndex {
	if idx.height == 0 {
		panic("TreeIndex.GetParentIndex: root has no parent")
	}
	return idx.GetPrefix(idx.height - 1)
}

// getDirIndex walks toward the left (wantBit false) or right (wantBit true)
// neighbour of idx in a conceptually fully populated tree of the same
// height: it climbs while the trailing bits already equal wantBit, flips
// the first differing bit, then descends filling the other direction. It
// returns false if no such neighbour exists (idx is the leftmost/rightmost
// leaf at its height).
func (idx TreeIndex) getDirIndex(wantBit bool) (TreeIndex, bool) {
	if idx.height == 0 {
		return TreeIndex{}, false
	}
	cur := idx
	for cur.height > 0 && cur.GetLastBit() == wantBit {
		cur = cur.GetParentIndex()
	}
	if cur.height == 0 {
		return TreeIndex{}, false
	}
	cur = cur.GetSiblingIndex()
	for cur.height < idx.height {
		cur = cur.GetChildIndexByDir(boolToDir(!wantBit))
	}
	return cur, true
}

func boolToDir(b bool) ChildDir {
	if b {
		return Right
	}
	return Left
}

// GetLeftIndex returns the neighbouring index immediately to the left of
// idx at the same height in a fully populated tree, or false if idx is
// already the leftmost position.
func (idx TreeIndex) GetLeftIndex() (TreeIndex, bool) {
	return idx.getDirIndex(false)
}

// GetRightIndex returns the neighbouring index immediately to the right of
// idx at the same height in a fully populated tree, or false if idx is
// already the rightmost position.
func (idx TreeIndex) GetRightIndex() (TreeIndex, bool) {
	return idx.getDirIndex(true)
}

// Compare implements the TreeIndex total order: smaller height ranks
// greater (ancestors after descendants); equal heights compare bit by bit
// from index 0 upward, with a set bit ranking greater than a clear one. It
// returns a negative number, zero, or a positive number as idx is less
// than, equal to, or greater than other.
func (idx TreeIndex) Compare(other TreeIndex) int {
	if idx.height != other.height {
		if idx.height > other.height {
			return -1
		}
		return 1
	}
	for i := 0; i < idx.height; i++ {
		a, b := idx.GetBit(i), other.GetBit(i)
		if a == b {
			continue
		}
		if !a && b {
			return -1
		}
		return 1
	}
	return 0
}

// Less reports whether idx sorts before other under Compare.
func (idx TreeIndex) Less(other TreeIndex) bool {
	return idx.Compare(other) < 0
}

// Equal reports whether idx and other name the same position.
func (idx TreeIndex) Equal(other TreeIndex) bool {
	return idx.Compare(other) == 0
}

// SortTreeIndexes sorts a slice of TreeIndex in place under Compare's
// order, the order SparseMerkleTree.Build and Update require of their
// input index lists.
func SortTreeIndexes(indexes []TreeIndex) {
	sort.Slice(indexes, func(i, j int) bool {
		return indexes[i].Less(indexes[j])
	})
}

// encodedLen returns the number of path bytes used to encode an index of
// this height: ceil(height/8), matching the Rust original's packed
// per-index encoding (only the bytes a height actually needs are written).
func (idx TreeIndex) encodedLen() int {
	return (idx.height + 7) / 8
}

// Serialize encodes a list of TreeIndex values that all share one height as
// `u16 height || ceil(height/8) path bytes` per entry, little-endian. An
// empty list encodes to zero bytes: there is no height to record, and
// DeserializeAsAUnit recovers an empty list the same way, without reading
// one back. It panics if the indexes don't all share a height: callers
// always serialize one height class at a time (MerkleProof's index list, a
// batched sampling proof).
func Serialize(indexes []TreeIndex) []byte {
	if len(indexes) == 0 {
		return nil
	}
	height := indexes[0].height
	n := indexes[0].encodedLen()
	out := make([]byte, 0, 2+n*len(indexes))
	out = append(out, uintToBytes(uint64(height), 2)...)
	for _, idx := range indexes {
		if idx.height != height {
			panic("smtree.Serialize: indexes do not share a height")
		}
		out = append(out, idx.path[:n]...)
	}
	return out
}

// DeserializeAsAUnit decodes num TreeIndex values, all of one height, from
// bytes starting at *begin, advancing *begin past the consumed bytes. It
// fails with ErrBytesNotEnough if bytes runs out, or ErrExceedMaxHeight if
// the decoded height exceeds MaxHeight. num == 0 returns an empty list
// without consuming a height field, the mirror image of Serialize's empty
// encoding.
func DeserializeAsAUnit(bytes []byte, num int, begin *int) ([]TreeIndex, error) {
	if num == 0 {
		return nil, nil
	}
	heightU, err := bytesToUint(bytes, 2, begin)
	if err != nil {
		return nil, err
	}
	height := int(heightU)
	if height > MaxHeight {
		return nil, withHeight(ErrExceedMaxHeight, height)
	}
	n := (height + 7) / 8
	out := make([]TreeIndex, 0, num)
	for i := 0; i < num; i++ {
		if len(bytes)-*begin < n {
			return nil, withNeeded(ErrBytesNotEnough, n, len(bytes)-*begin)
		}
		var idx TreeIndex
		idx.height = height
		copy(idx.path[:n], bytes[*begin:*begin+n])
		*begin += n
		out = append(out, idx)
	}
	return out, nil
}
