package leaf

import (
	"encoding/binary"

	"github.com/paddedsmt/smtree"
)

// Sum is a sum-accumulator leaf: merging two children adds them, padding
// is always zero, and a proof-node or padding-proof is the accumulated
// value itself. It exists as a second worked example of the
// node-capability contract alongside HashLeaf, with a proof-node wire
// format of a plain 8-byte little-endian value.
type Sum uint64

func (s Sum) Merge(lch, rch Sum) Sum { return lch + rch }

// Pad is always zero: an absent position contributes nothing to the sum.
func (s Sum) Pad(_ smtree.TreeIndex, _ smtree.Secret) Sum { return 0 }

func (s Sum) ProofNode() Sum { return s }

// ProvePadding has nothing to hide behind a commitment: the padding value
// is always the public constant zero, so the "proof" is just that
// constant.
func (s Sum) ProvePadding(_ smtree.TreeIndex, _ smtree.Secret) Sum { return 0 }

// VerifyPadding accepts only the zero opening against a receiver that is
// itself zero: Pad never produces anything else, so a genuine padding
// node's stored value must be zero too, not just the opening.
func (s Sum) VerifyPadding(_ smtree.TreeIndex, proof Sum) bool { return s == 0 && proof == 0 }

// Encode writes the accumulated value as 8 little-endian bytes.
func (s Sum) Encode() []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, uint64(s))
	return out
}

// Decode reads 8 little-endian bytes starting at *begin.
func (s Sum) Decode(data []byte, begin *int) (Sum, error) {
	if len(data)-*begin < 8 {
		return 0, smtree.ErrValueDecoding("not enough bytes for a sum leaf")
	}
	v := binary.LittleEndian.Uint64(data[*begin : *begin+8])
	*begin += 8
	return Sum(v), nil
}

func (s Sum) TypeName() string { return "Sum" }
