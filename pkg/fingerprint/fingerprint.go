// Package fingerprint wraps the engine's one-way digest primitives. The
// components only ever compute and compare digests; the choice of hash is
// confined here.
package fingerprint

import (
	"crypto/sha256"
	"crypto/subtle"
)

// Size is the digest length in bytes.
const Size = sha256.Size

// Digest is a fixed-size one-way hash value.
type Digest [Size]byte

// Identity fingerprints a (name, email) pair for sybil detection. Two
// registrations with the same pair collide regardless of caller.
func Identity(name, email string) Digest {
	return sha256.Sum256([]byte(name + email))
}

// EmailProof computes the digest a user must present to prove ownership of
// the stored email address.
func EmailProof(email string) Digest {
	return sha256.Sum256([]byte(email))
}

// Sum digests an arbitrary payload, used for election attestations.
func Sum(payload []byte) Digest {
	return sha256.Sum256(payload)
}

// Equal compares two digests in constant time.
func Equal(a Digest, b []byte) bool {
	return subtle.ConstantTimeCompare(a[:], b) == 1
}
