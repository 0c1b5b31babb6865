package smtree

import "crypto/rand"

// SecretLength is the fixed byte length of a padding Secret.
const SecretLength = 32

// Secret is the prover's padding commitment key. It is never transmitted;
// verifiers only ever see the derived padding hashes a PaddingProof opens.
type Secret struct {
	bytes [SecretLength]byte
}

// AllZerosSecret is the published sentinel used for the empty-tree root
// placeholder (replaced on first Build) and in tests. It must never be used
// to protect a real tree's padding positions.
var AllZerosSecret = Secret{}

// NewSecret constructs a Secret from a byte slice, failing if the slice is
// not exactly SecretLength bytes.
func NewSecret(b []byte) (Secret, error) {
	var s Secret
	if len(b) != SecretLength {
		return s, ErrSecretError
	}
	copy(s.bytes[:], b)
	return s, nil
}

// GenerateSecret draws a fresh Secret from a CSPRNG. Unlike test-data
// generation elsewhere in this module, this is the production entry
// point a caller uses to mint a real padding key, so it needs a
// cryptographically secure source.
func GenerateSecret() (Secret, error) {
	var s Secret
	if _, err := rand.Read(s.bytes[:]); err != nil {
		return s, err
	}
	return s, nil
}

// Bytes returns the secret's raw bytes.
func (s *Secret) Bytes() []byte {
	return s.bytes[:]
}

// Zero overwrites the secret's storage with zeroes. Callers that hold a
// Secret past its useful lifetime should call this explicitly; Go has no
// deterministic destructors to do it for them automatically.
func (s *Secret) Zero() {
	for i := range s.bytes {
		s.bytes[i] = 0
	}
}
