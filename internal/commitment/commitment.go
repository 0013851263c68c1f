// Package commitment implements the commit-then-reveal scheme that guards
// entry deletion. The server stores only a hash fixed at entry-creation time;
// revealing its pre-image later proves the caller is the party that created
// the entry, without the server ever holding a secret.
package commitment

import (
	"crypto/sha256"
	"crypto/subtle"
)

// Size is the length in bytes of a commitment hash.
const Size = sha256.Size

// Commit returns the one-way commitment for the given pre-image.
func Commit(preimage []byte) []byte {
	hash := sha256.Sum256(preimage)
	return hash[:]
}

// Verify reports whether preimage opens the stored commitment hash.
// The comparison is constant-time.
func Verify(hash, preimage []byte) bool {
	candidate := sha256.Sum256(preimage)
	return subtle.ConstantTimeCompare(hash, candidate[:]) == 1
}
