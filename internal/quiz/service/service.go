// Package service implements the quiz engine: authoring, grading and
// threshold administration.
package service

import (
	"context"
	"errors"
	"log/slog"

	"agora/internal/authority"
	"agora/internal/platform/chain"
	"agora/internal/quiz/metrics"
	"agora/internal/quiz/models"
	"agora/pkg/domain"
	dErrors "agora/pkg/domain-errors"
	"agora/pkg/platform/audit"
	"agora/pkg/platform/sentinel"
)

// Store is the persistence surface the engine needs.
type Store interface {
	Create(ctx context.Context, build func(id domain.QuizID) (models.Quiz, error)) (domain.QuizID, error)
	Update(ctx context.Context, id domain.QuizID, apply func(q *models.Quiz) error) error
	Find(ctx context.Context, id domain.QuizID) (*models.Quiz, bool)
	Delete(ctx context.Context, id domain.QuizID) error
	Count(ctx context.Context) uint64
	RecordAttempt(ctx context.Context, id domain.QuizID, user domain.Principal, c models.Completion) error
	FindCompletion(ctx context.Context, id domain.QuizID, user domain.Principal) (models.Completion, bool)
	Attempts(ctx context.Context, id domain.QuizID, user domain.Principal) uint64
	SetMaxQuizzes(ctx context.Context, max int64)
}

type Service struct {
	store    Store
	clock    chain.Clock
	gate     *authority.Gate
	logger   *slog.Logger
	recorder *audit.Recorder
	metrics  *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditRecorder(recorder *audit.Recorder) Option {
	return func(s *Service) { s.recorder = recorder }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store Store, clock chain.Clock, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("quiz service: store is required")
	}
	if clock == nil {
		return nil, errors.New("quiz service: clock is required")
	}
	s := &Service{
		store:  store,
		clock:  clock,
		gate:   authority.NewGate(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// BindAuthority fixes the administrative principal. It can be done once.
func (s *Service) BindAuthority(ctx context.Context, p domain.Principal) error {
	if err := s.gate.Bind(p); err != nil {
		return err
	}
	s.record(ctx, audit.Event{Action: audit.ActionAuthorityBound, Principal: p})
	return nil
}

// CreateQuiz validates and stores a new quiz. Capacity is checked before
// any content validation so a full engine rejects cheaply.
func (s *Service) CreateQuiz(ctx context.Context, caller domain.Principal, title, description string, questions []models.Question, threshold int) (domain.QuizID, error) {
	if caller.IsNil() {
		return 0, dErrors.New(dErrors.CodeUnauthorized, "caller principal is required")
	}

	id, err := s.store.Create(ctx, func(id domain.QuizID) (models.Quiz, error) {
		if err := models.ValidateQuestions(questions); err != nil {
			return models.Quiz{}, err
		}
		if err := models.ValidateThreshold(threshold); err != nil {
			return models.Quiz{}, err
		}
		return models.Quiz{
			ID:             id,
			Title:          title,
			Description:    description,
			Questions:      questions,
			ScoreThreshold: threshold,
			Creator:        caller,
			CreatedAt:      s.clock.Height(),
		}, nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrCapacityReached) {
			return 0, models.ErrCapacityExceeded
		}
		return 0, err
	}

	if s.metrics != nil {
		s.metrics.QuizzesCreated.Inc()
	}
	s.logger.InfoContext(ctx, "quiz created",
		slog.Uint64("quiz_id", uint64(id)),
		slog.String("creator", caller.String()))
	s.record(ctx, audit.Event{Action: audit.ActionQuizCreated, Principal: caller, Subject: id.String()})
	return id, nil
}

// Submit grades an answer sheet. The completion is recorded whether the
// participant passed or not, and every submission counts as an attempt.
func (s *Service) Submit(ctx context.Context, user domain.Principal, id domain.QuizID, answers []int) (models.Result, error) {
	quiz, ok := s.store.Find(ctx, id)
	if !ok {
		return models.Result{}, models.ErrQuizNotFound
	}

	result, err := quiz.Grade(answers)
	if err != nil {
		return models.Result{}, err
	}

	completion := models.Completion{
		SubmittedAt: s.clock.Height(),
		Score:       result.Score,
		Passed:      result.Passed,
	}
	if err := s.store.RecordAttempt(ctx, id, user, completion); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Result{}, models.ErrQuizNotFound
		}
		return models.Result{}, err
	}

	if s.metrics != nil {
		outcome := "failed"
		if result.Passed {
			outcome = "passed"
		}
		s.metrics.Submissions.WithLabelValues(outcome).Inc()
	}
	s.logger.InfoContext(ctx, "quiz submitted",
		slog.Uint64("quiz_id", uint64(id)),
		slog.String("user", user.String()),
		slog.Int("score", result.Score),
		slog.Bool("passed", result.Passed))
	s.record(ctx, audit.Event{
		Action:    audit.ActionQuizSubmitted,
		Principal: user,
		Subject:   id.String(),
		Amount:    uint64(result.Score),
	})
	return result, nil
}

// UpdateThreshold lets the quiz creator change the passing score.
func (s *Service) UpdateThreshold(ctx context.Context, caller domain.Principal, id domain.QuizID, threshold int) error {
	err := s.store.Update(ctx, id, func(q *models.Quiz) error {
		if q.Creator != caller {
			return models.ErrNotCreator
		}
		if err := models.ValidateThreshold(threshold); err != nil {
			return err
		}
		q.ScoreThreshold = threshold
		return nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.ErrQuizNotFound
		}
		return err
	}
	s.record(ctx, audit.Event{Action: audit.ActionThresholdUpdated, Principal: caller, Subject: id.String(), Amount: uint64(threshold)})
	return nil
}

// DeleteQuiz retires a quiz. Authority only; past completions remain.
func (s *Service) DeleteQuiz(ctx context.Context, caller domain.Principal, id domain.QuizID) error {
	if err := s.gate.Require(caller); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.ErrQuizNotFound
		}
		return err
	}
	if s.metrics != nil {
		s.metrics.QuizzesDeleted.Inc()
	}
	s.record(ctx, audit.Event{Action: audit.ActionQuizDeleted, Principal: caller, Subject: id.String()})
	return nil
}

// SetMaxQuizzes adjusts the engine capacity. Authority only.
func (s *Service) SetMaxQuizzes(ctx context.Context, caller domain.Principal, max int64) error {
	if err := s.gate.Require(caller); err != nil {
		return err
	}
	if max <= 0 {
		return models.ErrInvalidUpdate
	}
	s.store.SetMaxQuizzes(ctx, max)
	s.record(ctx, audit.Event{Action: audit.ActionParameterUpdated, Principal: caller, Subject: "max_quizzes", Amount: uint64(max)})
	return nil
}

func (s *Service) GetQuiz(ctx context.Context, id domain.QuizID) (*models.Quiz, bool) {
	return s.store.Find(ctx, id)
}

func (s *Service) GetCompletion(ctx context.Context, id domain.QuizID, user domain.Principal) (models.Completion, bool) {
	return s.store.FindCompletion(ctx, id, user)
}

// HasPassed reports whether the user's latest submission met the threshold.
func (s *Service) HasPassed(ctx context.Context, id domain.QuizID, user domain.Principal) bool {
	c, ok := s.store.FindCompletion(ctx, id, user)
	return ok && c.Passed
}

func (s *Service) Attempts(ctx context.Context, id domain.QuizID, user domain.Principal) uint64 {
	return s.store.Attempts(ctx, id, user)
}

func (s *Service) Count(ctx context.Context) uint64 {
	return s.store.Count(ctx)
}

func (s *Service) record(ctx context.Context, event audit.Event) {
	if s.recorder == nil {
		return
	}
	if event.Block == 0 {
		event.Block = s.clock.Height()
	}
	s.recorder.Record(ctx, event)
}
