package smtree

import (
	"fmt"

	"gitlab.com/NebulousLabs/errors"
)

// DecodingError sentinels returned by the byte-encoding layer (index lists,
// MerkleProof, RandomSamplingProof). Equality is by value, mirroring the
// fieldless Rust enum variants of DecodingError in the original crate.
var (
	ErrExceedMaxHeight     = errors.New("decoded height exceeds the maximum SMT height")
	ErrIndexOverflow       = errors.New("position does not fit in the requested number of bits")
	ErrTooManyEncodedBytes = errors.New("more bytes were supplied than required for decoding")
	ErrBytesNotEnough      = errors.New("not enough bytes remain to decode the requested value")
)

// ErrValueDecoding wraps a leaf-specific decode failure with a message,
// mirroring DecodingError::ValueDecodingError{msg}.
func ErrValueDecoding(msg string) error {
	return errors.AddContext(errors.New("value decoding error"), msg)
}

// TreeError sentinels returned by SparseMerkleTree mutators before any
// mutation takes place.
var (
	ErrHeightNotMatch  = errors.New("the height of the index does not match the height of the tree")
	ErrIndexNotSorted  = errors.New("the indexes are not sorted")
	ErrIndexDuplicated = errors.New("there are duplicated indexes in the input list")
	ErrSecretError     = errors.New("the secret is not exactly SecretLength bytes long")
)

// withHeight annotates a decoding error with the offending height, used
// whenever a height is decoded but rejected for exceeding MaxHeight.
func withHeight(err error, height int) error {
	return errors.AddContext(err, fmt.Sprintf("height = %d, max = %d", height, MaxHeight))
}

// withNeeded annotates a BytesNotEnough error with how many bytes were
// required versus how many remained.
func withNeeded(err error, needed, have int) error {
	return errors.AddContext(err, fmt.Sprintf("need %d bytes, have %d", needed, have))
}
