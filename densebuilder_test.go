package smtree_test

import (
	"testing"

	"github.com/paddedsmt/smtree"
)

func TestQuickRootMatchesBuild(t *testing.T) {
	leaves := []testLeaf{mkLeaf(1), mkLeaf(2), mkLeaf(3), mkLeaf(4)}

	dense := smtree.QuickRoot[testLeaf](leaves, 2, smtree.AllZerosSecret)

	tr, err := smtree.NewMerkleTree[testLeaf](leaves)
	if err != nil {
		t.Fatal(err)
	}
	if !bytesEqual(dense, tr.Root()) {
		t.Fatal("QuickRoot should match the root of an arena-built dense tree over the same leaves")
	}
}

func TestQuickRootPadsIncompleteRange(t *testing.T) {
	leaves := []testLeaf{mkLeaf(1), mkLeaf(2), mkLeaf(3)}
	dense := smtree.QuickRoot[testLeaf](leaves, 2, smtree.AllZerosSecret)

	tr, err := smtree.NewMerkleTree[testLeaf](leaves)
	if err != nil {
		t.Fatal(err)
	}
	if !bytesEqual(dense, tr.Root()) {
		t.Fatal("QuickRoot should pad a non-power-of-two leaf count the same way NewMerkleTree does")
	}
}
