// Package models defines the identity registry's record types and field
// validation rules.
package models

import (
	"strings"

	"agora/pkg/domain"
	"agora/pkg/fingerprint"
)

// Profile field bounds. Age limits come from the platform's youth-civics
// mandate; name and email bounds cap on-record storage.
const (
	MinAge       = 18
	MaxAge       = 30
	MaxNameLen   = 50
	MaxEmailLen  = 100
	DefaultMaxUsers = 10000
)

// User is an identity record, keyed by its owner principal. Exactly one id
// and one fingerprint entry point back at each record.
type User struct {
	ID            domain.UserID
	Name          string
	Age           int
	Email         string
	Fingerprint   fingerprint.Digest
	RegisteredAt  domain.BlockHeight
	Verified      bool
	LastUpdate    domain.BlockHeight
	Contributions uint64
}

// ValidateProfile enforces the registration field rules. The checks run in
// a fixed order: age, then name, then email.
func ValidateProfile(name string, age int, email string) error {
	if age < MinAge || age > MaxAge {
		return ErrInvalidAge
	}
	if name == "" || len(name) > MaxNameLen {
		return ErrInvalidName
	}
	if email == "" || len(email) > MaxEmailLen || !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	return nil
}
