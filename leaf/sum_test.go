package leaf_test

import (
	"testing"

	"github.com/paddedsmt/smtree"
	"github.com/paddedsmt/smtree/leaf"
)

func TestSumLeafMerge(t *testing.T) {
	a, b := leaf.Sum(3), leaf.Sum(4)
	if got := a.Merge(a, b); got != 7 {
		t.Fatalf("expected 3+4=7, got %d", got)
	}
}

func TestSumLeafPaddingIsZero(t *testing.T) {
	var s leaf.Sum
	idx, _ := smtree.FromU64(4, 1)
	secret, err := smtree.GenerateSecret()
	if err != nil {
		t.Fatal(err)
	}
	if pad := s.Pad(idx, secret); pad != 0 {
		t.Fatalf("expected padding to be zero, got %d", pad)
	}
	proof := s.ProvePadding(idx, secret)
	if !s.VerifyPadding(idx, proof) {
		t.Fatal("zero padding proof should verify")
	}
}

func TestSumLeafEncodeDecodeRoundTrip(t *testing.T) {
	s := leaf.Sum(123456789)
	data := s.Encode()
	begin := 0
	var zero leaf.Sum
	decoded, err := zero.Decode(data, &begin)
	if err != nil {
		t.Fatal(err)
	}
	if decoded != s {
		t.Fatalf("round-trip mismatch: got %d, want %d", decoded, s)
	}
	if begin != len(data) {
		t.Fatalf("expected to consume all %d bytes, consumed %d", len(data), begin)
	}
}

func TestSumLeafTreeAccumulates(t *testing.T) {
	leaves := []leaf.Sum{1, 2, 3, 4}
	tr, err := smtree.NewMerkleTree[leaf.Sum](leaves)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Root() != 10 {
		t.Fatalf("expected the root to sum to 10, got %d", tr.Root())
	}
}
