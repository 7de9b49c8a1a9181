// Package domain holds the shared identifier primitives the three
// participation components compose through. Components never call each
// other; a principal is the only value that crosses their boundaries.
package domain

import "strconv"

// Principal is an opaque, pre-authenticated caller identity. The engine
// trusts it unconditionally; authentication happens upstream.
type Principal string

// IsNil reports whether the principal is unset.
func (p Principal) IsNil() bool {
	return p == ""
}

func (p Principal) String() string {
	return string(p)
}

// UserID is the registry-allocated integer identity, issued from a
// monotonically increasing counter starting at zero.
type UserID uint64

func (id UserID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// QuizID addresses a quiz definition. Like UserID it is allocated from a
// per-component counter starting at zero.
type QuizID uint64

func (id QuizID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ElectionID identifies an election whose participation proof can fund a
// voting bonus. Elections are attested externally; the ledger only checks
// proofs against the attested digest.
type ElectionID uint64

func (id ElectionID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// BlockHeight is the monotonic clock tick supplied by the execution
// environment. All cooldown arithmetic and audit timestamps use it.
type BlockHeight uint64
