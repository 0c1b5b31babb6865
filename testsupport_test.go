package smtree_test

import (
	"sort"

	"gitlab.com/NebulousLabs/fastrand"

	"github.com/paddedsmt/smtree"
	"github.com/paddedsmt/smtree/leaf"
)

// generateSortedIndexValuePairs draws num distinct, randomized TreeIndex
// values of the given height plus a fresh leaf for each, and returns them
// sorted ascending: the shape every test needs to call Build. Lives in a
// _test.go file and uses fastrand rather than crypto/rand, since test-data
// generation has no need for a cryptographic RNG.
func generateSortedIndexValuePairs(height int, num int) ([]smtree.TreeIndex, []leaf.HashLeaf[leaf.Sha256]) {
	seen := make(map[[32]byte]bool, num)
	indexes := make([]smtree.TreeIndex, 0, num)
	for len(indexes) < num {
		var path [32]byte
		copy(path[:], fastrand.Bytes(32))
		idx, err := smtree.New(height, path)
		if err != nil {
			panic(err)
		}
		idx = idx.GetPrefix(height)
		key := idx.Path()
		if seen[key] {
			continue
		}
		seen[key] = true
		indexes = append(indexes, idx)
	}
	sort.Slice(indexes, func(i, j int) bool { return indexes[i].Less(indexes[j]) })

	leaves := make([]leaf.HashLeaf[leaf.Sha256], num)
	for i := range leaves {
		leaves[i] = leaf.NewHashLeaf[leaf.Sha256](fastrand.Bytes(32))
	}
	return indexes, leaves
}
