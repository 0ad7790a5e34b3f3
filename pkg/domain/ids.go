// Package domain defines the identifier and identity types shared across
// registry modules. Keeping them here lets stores, services, and handlers
// agree on representations without import cycles.
package domain

import (
	"encoding/hex"
	"fmt"
)

// IdentitySize is the fixed byte length of a caller identity.
const IdentitySize = 32

// Identity is an opaque, pre-verified 32-byte caller identity. The registry
// never inspects or verifies it; transport middleware is responsible for
// handing us a value that has already been authenticated upstream.
type Identity [IdentitySize]byte

// ParseIdentity decodes a hex-encoded identity. The input must encode exactly
// IdentitySize bytes.
func ParseIdentity(s string) (Identity, error) {
	var id Identity
	if len(s) != IdentitySize*2 {
		return id, fmt.Errorf("identity must be %d hex characters, got %d", IdentitySize*2, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("decode identity: %w", err)
	}
	copy(id[:], b)
	return id, nil
}

// String returns the hex encoding of the identity.
func (i Identity) String() string {
	return hex.EncodeToString(i[:])
}

// IsZero reports whether the identity is the all-zero value, which is never a
// valid caller.
func (i Identity) IsZero() bool {
	return i == Identity{}
}

// Bytes returns the raw identity bytes, used for key derivation.
func (i Identity) Bytes() []byte {
	b := make([]byte, IdentitySize)
	copy(b, i[:])
	return b
}

// Reaction values a user may hold toward a post.
const (
	ReactionDislike int8 = -1
	ReactionNone    int8 = 0
	ReactionLike    int8 = 1
)

// ValidReaction reports whether v is one of the three permitted reaction values.
func ValidReaction(v int8) bool {
	return v == ReactionDislike || v == ReactionNone || v == ReactionLike
}
