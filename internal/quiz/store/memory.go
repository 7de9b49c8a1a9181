// Package store provides the in-memory quiz store. All compound
// check-then-write sequences run under a single lock so concurrent
// submissions cannot interleave.
package store

import (
	"context"
	"sync"

	"agora/internal/quiz/models"
	"agora/pkg/domain"
	"agora/pkg/platform/sentinel"
)

type completionKey struct {
	quiz domain.QuizID
	user domain.Principal
}

// InMemory keeps quizzes, completions and attempt counters in process
// memory. It reports plain storage facts as sentinel errors; callers
// translate them into domain errors.
type InMemory struct {
	mu          sync.RWMutex
	quizzes     map[domain.QuizID]models.Quiz
	completions map[completionKey]models.Completion
	attempts    map[completionKey]uint64
	nextID      domain.QuizID
	maxQuizzes  int64
}

func NewInMemory() *InMemory {
	return &InMemory{
		quizzes:     make(map[domain.QuizID]models.Quiz),
		completions: make(map[completionKey]models.Completion),
		attempts:    make(map[completionKey]uint64),
		maxQuizzes:  models.DefaultMaxQuizzes,
	}
}

// Create checks capacity, then runs build to validate and assemble the
// quiz. The allocated id is only consumed when build succeeds. Capacity
// counts ids ever issued, so deleting a quiz does not free a slot.
func (s *InMemory) Create(_ context.Context, build func(id domain.QuizID) (models.Quiz, error)) (domain.QuizID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if int64(s.nextID) >= s.maxQuizzes {
		return 0, sentinel.ErrCapacityReached
	}

	quiz, err := build(s.nextID)
	if err != nil {
		return 0, err
	}
	quiz.ID = s.nextID
	s.quizzes[quiz.ID] = quiz
	s.nextID++
	return quiz.ID, nil
}

// Update applies a mutation to a stored quiz under the lock. The quiz
// is copied in and swapped back only when apply succeeds.
func (s *InMemory) Update(_ context.Context, id domain.QuizID, apply func(q *models.Quiz) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	quiz, ok := s.quizzes[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if err := apply(&quiz); err != nil {
		return err
	}
	s.quizzes[id] = quiz
	return nil
}

func (s *InMemory) Find(_ context.Context, id domain.QuizID) (*models.Quiz, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quiz, ok := s.quizzes[id]
	if !ok {
		return nil, false
	}
	cp := quiz
	cp.Questions = append([]models.Question(nil), quiz.Questions...)
	return &cp, true
}

// Delete removes a quiz. Its completions and attempt counters remain;
// past results stay queryable after the quiz is retired.
func (s *InMemory) Delete(_ context.Context, id domain.QuizID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quizzes[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.quizzes, id)
	return nil
}

// Count reports how many quizzes have ever been created, deletions
// included.
func (s *InMemory) Count(_ context.Context) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(s.nextID)
}

// RecordAttempt overwrites the user's completion for the quiz and bumps
// the attempt counter in one step.
func (s *InMemory) RecordAttempt(_ context.Context, id domain.QuizID, user domain.Principal, c models.Completion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quizzes[id]; !ok {
		return sentinel.ErrNotFound
	}
	key := completionKey{quiz: id, user: user}
	s.completions[key] = c
	s.attempts[key]++
	return nil
}

func (s *InMemory) FindCompletion(_ context.Context, id domain.QuizID, user domain.Principal) (models.Completion, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.completions[completionKey{quiz: id, user: user}]
	return c, ok
}

func (s *InMemory) Attempts(_ context.Context, id domain.QuizID, user domain.Principal) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attempts[completionKey{quiz: id, user: user}]
}

func (s *InMemory) SetMaxQuizzes(_ context.Context, max int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxQuizzes = max
}
