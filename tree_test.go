package smtree_test

import (
	"testing"

	"github.com/paddedsmt/smtree"
	"github.com/paddedsmt/smtree/leaf"
)

type testLeaf = leaf.HashLeaf[leaf.Sha256]

func mkLeaf(b byte) testLeaf {
	return leaf.NewHashLeaf[leaf.Sha256]([]byte{b})
}

func TestBuildEmptyTree(t *testing.T) {
	tr, err := smtree.NewSparseMerkleTree[testLeaf](8)
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.Build(nil, nil, smtree.AllZerosSecret); err != nil {
		t.Fatalf("Build(empty): %v", err)
	}
	if !tr.IsEmpty() {
		t.Error("expected an empty tree after building with no indexes")
	}
}

func TestBuildRejectsUnsortedIndexes(t *testing.T) {
	tr, err := smtree.NewSparseMerkleTree[testLeaf](4)
	if err != nil {
		t.Fatal(err)
	}
	a, _ := smtree.FromU64(4, 2)
	b, _ := smtree.FromU64(4, 1)
	err = tr.Build([]smtree.TreeIndex{a, b}, []testLeaf{mkLeaf(1), mkLeaf(2)}, smtree.AllZerosSecret)
	if err != smtree.ErrIndexNotSorted {
		t.Fatalf("expected ErrIndexNotSorted, got %v", err)
	}
}

func TestBuildRejectsWrongHeight(t *testing.T) {
	tr, err := smtree.NewSparseMerkleTree[testLeaf](4)
	if err != nil {
		t.Fatal(err)
	}
	a, _ := smtree.FromU64(3, 1)
	err = tr.Build([]smtree.TreeIndex{a}, []testLeaf{mkLeaf(1)}, smtree.AllZerosSecret)
	if err != smtree.ErrHeightNotMatch {
		t.Fatalf("expected ErrHeightNotMatch, got %v", err)
	}
}

func buildSmallTree(t *testing.T) (*smtree.SparseMerkleTree[testLeaf], []smtree.TreeIndex, []testLeaf) {
	t.Helper()
	tr, err := smtree.NewSparseMerkleTree[testLeaf](4)
	if err != nil {
		t.Fatal(err)
	}
	positions := []uint64{1, 3, 8, 9, 14}
	indexes := make([]smtree.TreeIndex, len(positions))
	leaves := make([]testLeaf, len(positions))
	for i, pos := range positions {
		idx, err := smtree.FromU64(4, pos)
		if err != nil {
			t.Fatal(err)
		}
		indexes[i] = idx
		leaves[i] = mkLeaf(byte(pos))
	}
	if err := tr.Build(indexes, leaves, smtree.AllZerosSecret); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return tr, indexes, leaves
}

func TestBuildThenGetLeafByIndex(t *testing.T) {
	tr, indexes, leaves := buildSmallTree(t)
	for i, idx := range indexes {
		val, nt, ok := tr.GetLeafByIndex(idx)
		if !ok {
			t.Fatalf("index %d: expected to be materialized", i)
		}
		if nt != smtree.Leaf_ {
			t.Errorf("index %d: expected Leaf, got %v", i, nt)
		}
		if !bytesEqual(val, leaves[i]) {
			t.Errorf("index %d: leaf value mismatch", i)
		}
	}
}

func bytesEqual(a, b testLeaf) bool {
	ea, eb := a.Encode(), b.Encode()
	if len(ea) != len(eb) {
		return false
	}
	for i := range ea {
		if ea[i] != eb[i] {
			return false
		}
	}
	return true
}

func TestBuildUpdateEquivalence(t *testing.T) {
	built, indexes, leaves := buildSmallTree(t)

	updated, err := smtree.NewSparseMerkleTree[testLeaf](4)
	if err != nil {
		t.Fatal(err)
	}
	if err := updated.Build(nil, nil, smtree.AllZerosSecret); err != nil {
		t.Fatal(err)
	}
	if err := updated.Update(indexes, leaves, smtree.AllZerosSecret); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if !bytesEqual(built.Root(), updated.Root()) {
		t.Fatal("Build and Update should converge on the same root for the same leaves")
	}
	if len(built.Leaves()) != len(updated.Leaves()) {
		t.Errorf("leaf count mismatch: build=%d update=%d", len(built.Leaves()), len(updated.Leaves()))
	}
}

func TestGetClosestIndexByDir(t *testing.T) {
	tr, _, _ := buildSmallTree(t)

	probe, err := smtree.FromU64(4, 5)
	if err != nil {
		t.Fatal(err)
	}
	left, ok := tr.GetClosestIndexByDir(probe, smtree.Left)
	if !ok {
		t.Fatal("expected a materialized left neighbour")
	}
	want, _ := smtree.FromU64(4, 3)
	if left.Compare(want) != 0 {
		t.Errorf("left neighbour mismatch")
	}

	right, ok := tr.GetClosestIndexByDir(probe, smtree.Right)
	if !ok {
		t.Fatal("expected a materialized right neighbour")
	}
	wantRight, _ := smtree.FromU64(4, 8)
	if right.Compare(wantRight) != 0 {
		t.Errorf("right neighbour mismatch")
	}
}

func TestBuildUpdateEquivalenceRandomized(t *testing.T) {
	indexes, leaves := generateSortedIndexValuePairs(32, 100)

	built, err := smtree.NewSparseMerkleTree[testLeaf](32)
	if err != nil {
		t.Fatal(err)
	}
	if err := built.Build(indexes, leaves, smtree.AllZerosSecret); err != nil {
		t.Fatalf("Build: %v", err)
	}

	updated, err := smtree.NewSparseMerkleTree[testLeaf](32)
	if err != nil {
		t.Fatal(err)
	}
	if err := updated.Build(nil, nil, smtree.AllZerosSecret); err != nil {
		t.Fatal(err)
	}
	for i := range indexes {
		if err := updated.Update([]smtree.TreeIndex{indexes[i]}, []testLeaf{leaves[i]}, smtree.AllZerosSecret); err != nil {
			t.Fatalf("Update index %d: %v", i, err)
		}
	}

	if !bytesEqual(built.Root(), updated.Root()) {
		t.Fatal("Build and per-index Update should converge on the same root for 100 random indices")
	}
	if len(built.Leaves()) != len(updated.Leaves()) {
		t.Errorf("leaf count mismatch: build=%d update=%d", len(built.Leaves()), len(updated.Leaves()))
	}
	if len(built.Paddings()) != len(updated.Paddings()) {
		t.Errorf("padding count mismatch: build=%d update=%d", len(built.Paddings()), len(updated.Paddings()))
	}
	if len(built.Internals()) != len(updated.Internals()) {
		t.Errorf("internal count mismatch: build=%d update=%d", len(built.Internals()), len(updated.Internals()))
	}
}

func TestNewMerkleTree(t *testing.T) {
	leaves := []testLeaf{mkLeaf(1), mkLeaf(2), mkLeaf(3)}
	tr, err := smtree.NewMerkleTree[testLeaf](leaves)
	if err != nil {
		t.Fatalf("NewMerkleTree: %v", err)
	}
	if tr.Height() != 2 {
		t.Fatalf("expected height 2 for 3 leaves, got %d", tr.Height())
	}
	for i, l := range leaves {
		idx, _ := smtree.FromU64(2, uint64(i))
		val, nt, ok := tr.GetLeafByIndex(idx)
		if !ok || nt != smtree.Leaf_ {
			t.Fatalf("leaf %d missing or wrong type", i)
		}
		if !bytesEqual(val, l) {
			t.Errorf("leaf %d value mismatch", i)
		}
	}
	padIdx, _ := smtree.FromU64(2, 3)
	_, nt, ok := tr.GetLeafByIndex(padIdx)
	if !ok || nt != smtree.Padding {
		t.Error("position 3 of a 3-leaf tree should be materialized Padding")
	}
}
