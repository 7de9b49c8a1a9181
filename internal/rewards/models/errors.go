package models

import (
	dErrors "agora/pkg/domain-errors"
)

var (
	ErrNotRegistered = dErrors.New(dErrors.CodeNotFound, "participant not registered")

	ErrAlreadyClaimed = dErrors.New(dErrors.CodeConflict, "reward already claimed for this source")

	ErrScoreTooLow = dErrors.New(dErrors.CodeValidation, "score below the reward threshold")

	ErrInvalidSourceID = dErrors.New(dErrors.CodeValidation, "source id out of range")

	ErrCooldownActive = dErrors.New(dErrors.CodeCooldown, "claim cooldown has not elapsed")

	ErrCapExceeded = dErrors.New(dErrors.CodeCapExceeded, "lifetime reward cap exceeded")

	// ErrInvalidProof covers both an unattested election and a proof that
	// does not match the attested digest; callers cannot distinguish the
	// two.
	ErrInvalidProof = dErrors.New(dErrors.CodeInvalidInput, "voting proof rejected")

	ErrInvalidUpdate = dErrors.New(dErrors.CodeInvalidInput, "invalid parameter update")
)
