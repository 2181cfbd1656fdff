package gitlib

import (
	"encoding/hex"

	git2go "github.com/libgit2/git2go/v34"
)

// hashSize is the byte length of a SHA-1 object id.
const hashSize = 20

// Hash is a git object id.
type Hash [hashSize]byte

// ZeroHash returns the all-zero hash.
func ZeroHash() Hash {
	return Hash{}
}

// NewHash parses a 40-character hex string into a Hash.
// Invalid input yields the zero hash.
func NewHash(hexStr string) Hash {
	var h Hash

	raw, err := hex.DecodeString(hexStr)
	if err != nil || len(raw) != hashSize {
		return Hash{}
	}

	copy(h[:], raw)

	return h
}

// HashFromOid converts a libgit2 Oid to a Hash.
func HashFromOid(oid *git2go.Oid) Hash {
	if oid == nil {
		return Hash{}
	}

	return Hash(*oid)
}

// String returns the hex representation of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether the hash is all zeros.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// ToOid converts the Hash to a libgit2 Oid.
func (h Hash) ToOid() *git2go.Oid {
	oid := git2go.Oid(h)

	return &oid
}
