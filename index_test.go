package smtree_test

import (
	"testing"

	"github.com/paddedsmt/smtree"
)

func TestTreeIndexFromU64RoundTrip(t *testing.T) {
	idx, err := smtree.FromU64(8, 0xA5)
	if err != nil {
		t.Fatalf("FromU64: %v", err)
	}
	for i := 0; i < 8; i++ {
		want := (0xA5>>uint(7-i))&1 == 1
		if got := idx.GetBit(i); got != want {
			t.Errorf("bit %d: got %v, want %v", i, got, want)
		}
	}
}

func TestTreeIndexFromU64Overflow(t *testing.T) {
	if _, err := smtree.FromU64(4, 0x10); err != smtree.ErrIndexOverflow {
		t.Fatalf("expected ErrIndexOverflow, got %v", err)
	}
}

func TestTreeIndexLchRchRoundTrip(t *testing.T) {
	root, err := smtree.Zero(0)
	if err != nil {
		t.Fatal(err)
	}
	lch := root.GetLchIndex()
	rch := root.GetRchIndex()
	if lch.GetLastBit() != false {
		t.Error("left child's last bit should be 0")
	}
	if rch.GetLastBit() != true {
		t.Error("right child's last bit should be 1")
	}
	if lch.GetParentIndex().Compare(root) != 0 {
		t.Error("left child's parent should be root")
	}
	if rch.GetParentIndex().Compare(root) != 0 {
		t.Error("right child's parent should be root")
	}
	if lch.GetSiblingIndex().Compare(rch) != 0 {
		t.Error("left child's sibling should be right child")
	}
}

func TestTreeIndexGetPrefix(t *testing.T) {
	idx, err := smtree.FromU64(8, 0xFF)
	if err != nil {
		t.Fatal(err)
	}
	prefix := idx.GetPrefix(4)
	if prefix.Height() != 4 {
		t.Fatalf("expected height 4, got %d", prefix.Height())
	}
	for i := 0; i < 4; i++ {
		if !prefix.GetBit(i) {
			t.Errorf("bit %d should remain set", i)
		}
	}
}

func TestTreeIndexCompareOrder(t *testing.T) {
	root, _ := smtree.Zero(0)
	child, _ := smtree.Zero(1)
	if root.Compare(child) <= 0 {
		t.Error("a smaller height should rank greater than a larger one")
	}

	a, _ := smtree.FromU64(4, 0b0001)
	b, _ := smtree.FromU64(4, 0b0010)
	if !a.Less(b) {
		t.Error("0b0001 should sort before 0b0010 at the same height")
	}
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	in := make([]smtree.TreeIndex, 0, 4)
	for i := uint64(0); i < 4; i++ {
		idx, err := smtree.FromU64(6, i)
		if err != nil {
			t.Fatal(err)
		}
		in = append(in, idx)
	}
	data := smtree.Serialize(in)
	begin := 0
	out, err := smtree.DeserializeAsAUnit(data, len(in), &begin)
	if err != nil {
		t.Fatalf("DeserializeAsAUnit: %v", err)
	}
	if begin != len(data) {
		t.Fatalf("expected to consume all %d bytes, consumed %d", len(data), begin)
	}
	for i := range in {
		if in[i].Compare(out[i]) != 0 {
			t.Errorf("index %d round-trip mismatch", i)
		}
	}
}

func TestTreeIndexGetLeftRightIndex(t *testing.T) {
	idx, err := smtree.FromU64(4, 5)
	if err != nil {
		t.Fatal(err)
	}
	left, ok := idx.GetLeftIndex()
	if !ok {
		t.Fatal("expected a left neighbour for position 5")
	}
	wantLeft, _ := smtree.FromU64(4, 4)
	if left.Compare(wantLeft) != 0 {
		t.Errorf("left neighbour mismatch")
	}
	right, ok := idx.GetRightIndex()
	if !ok {
		t.Fatal("expected a right neighbour for position 5")
	}
	wantRight, _ := smtree.FromU64(4, 6)
	if right.Compare(wantRight) != 0 {
		t.Errorf("right neighbour mismatch")
	}

	leftmost, _ := smtree.FromU64(4, 0)
	if _, ok := leftmost.GetLeftIndex(); ok {
		t.Error("leftmost position should have no left neighbour")
	}
	rightmost, _ := smtree.FromU64(4, 15)
	if _, ok := rightmost.GetRightIndex(); ok {
		t.Error("rightmost position should have no right neighbour")
	}
}
