// Package models holds the quiz engine domain types and validation rules.
package models

import (
	"agora/pkg/domain"
)

const (
	// OptionsPerQuestion is fixed; every question presents exactly four choices.
	OptionsPerQuestion = 4

	MinQuestions = 1
	MaxQuestions = 20

	MaxQuestionTextLen = 200
	MaxOptionLen       = 100

	// MinThreshold is the lowest passing score a creator may set.
	MinThreshold = 50
	MaxThreshold = 100

	DefaultMaxQuizzes = 50
)

// Question is a single multiple-choice item.
type Question struct {
	Text         string
	Options      [OptionsPerQuestion]string
	CorrectIndex int
}

// Quiz is an authored question set with a passing threshold.
type Quiz struct {
	ID             domain.QuizID
	Title          string
	Description    string
	Questions      []Question
	ScoreThreshold int
	Creator        domain.Principal
	CreatedAt      domain.BlockHeight
}

// Completion records a participant's most recent submission for a quiz.
// It is overwritten on every attempt, passing or not.
type Completion struct {
	SubmittedAt domain.BlockHeight
	Score       int
	Passed      bool
}

// Result is what a submission returns. A failing score is an outcome,
// not an error.
type Result struct {
	Score  int
	Passed bool
}

// ValidateQuestions checks the structural rules for a question set.
func ValidateQuestions(questions []Question) error {
	if len(questions) < MinQuestions || len(questions) > MaxQuestions {
		return ErrInvalidQuestionSet
	}
	for _, q := range questions {
		if q.Text == "" || len(q.Text) > MaxQuestionTextLen {
			return ErrInvalidQuestionSet
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= OptionsPerQuestion {
			return ErrInvalidQuestionSet
		}
		for _, opt := range q.Options {
			if opt == "" || len(opt) > MaxOptionLen {
				return ErrInvalidQuestionSet
			}
		}
	}
	return nil
}

// ValidateThreshold checks the passing-score bounds.
func ValidateThreshold(threshold int) error {
	if threshold < MinThreshold || threshold > MaxThreshold {
		return ErrInvalidThreshold
	}
	return nil
}

// Grade scores a full answer sheet against the quiz. The score is the
// percentage of correct answers, truncated.
func (q *Quiz) Grade(answers []int) (Result, error) {
	if len(answers) != len(q.Questions) {
		return Result{}, ErrAnswerCountMismatch
	}
	correct := 0
	for i, a := range answers {
		if a == q.Questions[i].CorrectIndex {
			correct++
		}
	}
	score := correct * 100 / len(q.Questions)
	return Result{Score: score, Passed: score >= q.ScoreThreshold}, nil
}
