package models

import (
	dErrors "agora/pkg/domain-errors"
)

var (
	ErrQuizNotFound = dErrors.New(dErrors.CodeNotFound, "quiz not found")

	ErrCapacityExceeded = dErrors.New(dErrors.CodeCapExceeded, "quiz capacity exceeded")

	ErrInvalidQuestionSet = dErrors.New(dErrors.CodeValidation, "invalid question set")

	ErrInvalidThreshold = dErrors.New(dErrors.CodeValidation, "score threshold out of range")

	ErrAnswerCountMismatch = dErrors.New(dErrors.CodeInvalidInput, "answer count does not match question count")

	ErrNotCreator = dErrors.New(dErrors.CodeForbidden, "caller is not the quiz creator")

	ErrInvalidUpdate = dErrors.New(dErrors.CodeInvalidInput, "invalid parameter update")
)
