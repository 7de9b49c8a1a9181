package models

import dErrors "agora/pkg/domain-errors"

// The registry's failure taxonomy. Services return these values directly so
// callers can branch with errors.Is.
var (
	ErrAlreadyRegistered = dErrors.New(dErrors.CodeConflict, "caller already holds an identity")
	ErrCapacityExceeded  = dErrors.New(dErrors.CodeCapExceeded, "registry user capacity reached")
	ErrInvalidAge        = dErrors.New(dErrors.CodeValidation, "age must be between 18 and 30")
	ErrInvalidName       = dErrors.New(dErrors.CodeValidation, "name must be 1-50 characters")
	ErrInvalidEmail      = dErrors.New(dErrors.CodeValidation, "email must be 1-100 characters and contain @")
	ErrDuplicateIdentity = dErrors.New(dErrors.CodeConflict, "identity fingerprint already claimed")
	ErrNotFound          = dErrors.New(dErrors.CodeNotFound, "identity not found")
	ErrInvalidProof      = dErrors.New(dErrors.CodeValidation, "verification proof rejected")
	ErrNotVerified       = dErrors.New(dErrors.CodeForbidden, "identity is not verified")
	ErrInvalidUpdate     = dErrors.New(dErrors.CodeInvalidInput, "capacity must be positive")
)
