package leaf_test

import (
	"testing"

	"github.com/paddedsmt/smtree"
	"github.com/paddedsmt/smtree/leaf"
)

func equal[A leaf.HashAlgo](a, b leaf.HashLeaf[A]) bool {
	as, bs := a.Sum(), b.Sum()
	return as == bs
}

func TestHashLeafMergeDeterministic(t *testing.T) {
	a := leaf.NewHashLeaf[leaf.Sha256]([]byte("left"))
	b := leaf.NewHashLeaf[leaf.Sha256]([]byte("right"))
	m1 := a.Merge(a, b)
	m2 := a.Merge(a, b)
	if !equal(m1, m2) {
		t.Fatal("Merge should be deterministic for the same inputs")
	}
	if equal(m1, a) {
		t.Fatal("merged value should differ from either child")
	}
}

func TestHashLeafPaddingProofRoundTrip(t *testing.T) {
	secret, err := smtree.GenerateSecret()
	if err != nil {
		t.Fatal(err)
	}
	idx, err := smtree.FromU64(8, 42)
	if err != nil {
		t.Fatal(err)
	}

	var zero leaf.HashLeaf[leaf.Blake2b256]
	padValue := zero.Pad(idx, secret)
	proof := zero.ProvePadding(idx, secret)

	if !padValue.VerifyPadding(idx, proof) {
		t.Fatal("padding proof should verify against the value it was derived from")
	}

	wrongSecret, err := smtree.GenerateSecret()
	if err != nil {
		t.Fatal(err)
	}
	wrongProof := zero.ProvePadding(idx, wrongSecret)
	if padValue.VerifyPadding(idx, wrongProof) {
		t.Fatal("padding proof derived from a different secret should not verify")
	}
}

func TestHashLeafEncodeDecodeRoundTrip(t *testing.T) {
	v := leaf.NewHashLeaf[leaf.Blake3_256]([]byte("payload"))
	data := v.Encode()
	begin := 0
	var zero leaf.HashLeaf[leaf.Blake3_256]
	decoded, err := zero.Decode(data, &begin)
	if err != nil {
		t.Fatal(err)
	}
	if !equal(v, decoded) {
		t.Fatal("decode should reproduce the original value")
	}
}

func TestHashLeafDigestsDifferAcrossAlgorithms(t *testing.T) {
	b2 := leaf.NewHashLeaf[leaf.Blake2b256]([]byte("same"))
	sha3 := leaf.NewHashLeaf[leaf.Sha3_256]([]byte("same"))
	if b2.Sum() == sha3.Sum() {
		t.Fatal("different hash algorithms should not collide on the same input")
	}
}
