package smtree

// NodeType classifies an arena slot's role. The zero value is Internal, so
// a freshly allocated TreeNode defaults to the most common case without
// needing an explicit assignment.
type NodeType int

const (
	Internal NodeType = iota
	Padding
	Leaf_
)

func (t NodeType) String() string {
	switch t {
	case Internal:
		return "Internal"
	case Padding:
		return "Padding"
	case Leaf_:
		return "Leaf"
	default:
		return "Unknown"
	}
}

// Leaf is the capability contract a tree value type V must satisfy. Both
// concrete leaf types in this module (leaf.HashLeaf, leaf.Sum) use the
// same type for the value itself, its proof-node projection, and its
// padding-proof payload, so this interface models all three with the
// single type parameter V rather than separate associated types.
type Leaf[V any] interface {
	// Merge combines a left and right child value into their parent's
	// value.
	Merge(lch, rch V) V

	// Pad derives the deterministic value that stands in for an absent
	// leaf at idx, keyed by secret.
	Pad(idx TreeIndex, secret Secret) V

	// ProofNode projects V down to the value a Merkle proof actually
	// carries for a leaf. For both concrete leaf types this is the
	// identity.
	ProofNode() V

	// ProvePadding opens a one-hash commitment to the padding value
	// without revealing secret.
	ProvePadding(idx TreeIndex, secret Secret) V

	// VerifyPadding checks a padding proof produced by ProvePadding
	// against the value actually stored at idx.
	VerifyPadding(idx TreeIndex, proof V) bool

	// Encode serializes V to bytes.
	Encode() []byte

	// Decode parses V from bytes starting at *begin, advancing *begin
	// past the consumed bytes.
	Decode(bytes []byte, begin *int) (V, error)

	// TypeName names the concrete leaf implementation, used only for
	// diagnostics.
	TypeName() string
}

// TreeNode is one arena slot: a value of type V, its role, and integer
// indices into the tree's node slice for its parent and children. Storing
// indices instead of pointers keeps the whole tree in one contiguous slice
// and sidesteps Go's lack of a safe self-referential struct.
type TreeNode[V any] struct {
	parent   int
	lch      int
	rch      int
	value    V
	nodeType NodeType
}

// noRef marks an absent arena reference.
const noRef = -1

// newTreeNode builds a childless, parentless node holding value, typed t.
func newTreeNode[V any](value V, t NodeType) TreeNode[V] {
	return TreeNode[V]{parent: noRef, lch: noRef, rch: noRef, value: value, nodeType: t}
}

// Value returns the node's stored value.
func (n *TreeNode[V]) Value() V {
	return n.value
}

// NodeType returns the node's role.
func (n *TreeNode[V]) NodeType() NodeType {
	return n.nodeType
}

// IsLeaf reports whether the node is a terminal Leaf.
func (n *TreeNode[V]) IsLeaf() bool {
	return n.nodeType == Leaf_
}

// IsPadding reports whether the node is a Padding placeholder.
func (n *TreeNode[V]) IsPadding() bool {
	return n.nodeType == Padding
}

// IsInternal reports whether the node is an Internal branch.
func (n *TreeNode[V]) IsInternal() bool {
	return n.nodeType == Internal
}

// ParentRef returns the arena index of the node's parent and whether one
// exists.
func (n *TreeNode[V]) ParentRef() (int, bool) {
	if n.parent == noRef {
		return 0, false
	}
	return n.parent, true
}

// LchRef returns the arena index of the node's left child and whether one
// exists.
func (n *TreeNode[V]) LchRef() (int, bool) {
	if n.lch == noRef {
		return 0, false
	}
	return n.lch, true
}

// RchRef returns the arena index of the node's right child and whether one
// exists.
func (n *TreeNode[V]) RchRef() (int, bool) {
	if n.rch == noRef {
		return 0, false
	}
	return n.rch, true
}

// ChildRefByDir returns the arena index of the child in direction dir and
// whether one exists.
func (n *TreeNode[V]) ChildRefByDir(dir ChildDir) (int, bool) {
	if dir == Left {
		return n.LchRef()
	}
	return n.RchRef()
}
