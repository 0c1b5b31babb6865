package smtree

// Nil is a zero-sized leaf value used only to grow a "shape tree": a tree
// whose structure (which positions are Leaf, Padding, or Internal) matters
// but whose values never do. GetMerklePathRefBatch builds one to work out,
// by pure structural BFS, which of the real tree's siblings a batched proof
// needs to carry independent of any leaf content.
type Nil struct{}

func (Nil) Merge(_, _ Nil) Nil                 { return Nil{} }
func (Nil) Pad(_ TreeIndex, _ Secret) Nil      { return Nil{} }
func (n Nil) ProofNode() Nil                   { return n }
func (Nil) ProvePadding(_ TreeIndex, _ Secret) Nil { return Nil{} }
func (Nil) VerifyPadding(_ TreeIndex, _ Nil) bool  { return true }
func (Nil) Encode() []byte                     { return nil }
func (Nil) Decode(_ []byte, _ *int) (Nil, error)   { return Nil{}, nil }
func (Nil) TypeName() string                   { return "Nil" }
