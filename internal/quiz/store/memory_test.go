package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"agora/internal/quiz/models"
	"agora/pkg/domain"
	"agora/pkg/platform/sentinel"
)

type InMemorySuite struct {
	suite.Suite
	ctx   context.Context
	store *InMemory
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}

func (s *InMemorySuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemory()
}

func (s *InMemorySuite) sampleQuiz() models.Quiz {
	return models.Quiz{
		Title:          "Civics 101",
		ScoreThreshold: 70,
		Creator:        "ST1TEACHER",
		Questions: []models.Question{
			{Text: "Q1", Options: [4]string{"a", "b", "c", "d"}, CorrectIndex: 0},
		},
	}
}

func (s *InMemorySuite) create() domain.QuizID {
	id, err := s.store.Create(s.ctx, func(domain.QuizID) (models.Quiz, error) {
		return s.sampleQuiz(), nil
	})
	s.Require().NoError(err)
	return id
}

func (s *InMemorySuite) TestCreate() {
	s.Run("assigns sequential ids from zero", func() {
		s.Equal(domain.QuizID(0), s.create())
		s.Equal(domain.QuizID(1), s.create())
		s.Equal(uint64(2), s.store.Count(s.ctx))
	})

	s.Run("build failure allocates nothing", func() {
		sentinelErr := sentinel.ErrNotFound
		_, err := s.store.Create(s.ctx, func(domain.QuizID) (models.Quiz, error) {
			return models.Quiz{}, sentinelErr
		})
		s.ErrorIs(err, sentinelErr)

		id := s.create()
		s.Equal(domain.QuizID(2), id)
	})

	s.Run("capacity is enforced before build runs", func() {
		s.store.SetMaxQuizzes(s.ctx, 3)
		built := false
		_, err := s.store.Create(s.ctx, func(domain.QuizID) (models.Quiz, error) {
			built = true
			return s.sampleQuiz(), nil
		})
		s.ErrorIs(err, sentinel.ErrCapacityReached)
		s.False(built)
	})
}

func (s *InMemorySuite) TestUpdate() {
	id := s.create()

	s.Run("applies mutation", func() {
		err := s.store.Update(s.ctx, id, func(q *models.Quiz) error {
			q.ScoreThreshold = 90
			return nil
		})
		s.NoError(err)

		quiz, ok := s.store.Find(s.ctx, id)
		s.Require().True(ok)
		s.Equal(90, quiz.ScoreThreshold)
	})

	s.Run("failed apply leaves the quiz untouched", func() {
		err := s.store.Update(s.ctx, id, func(q *models.Quiz) error {
			q.ScoreThreshold = 10
			return sentinel.ErrNotFound
		})
		s.Error(err)

		quiz, ok := s.store.Find(s.ctx, id)
		s.Require().True(ok)
		s.Equal(90, quiz.ScoreThreshold)
	})

	s.Run("unknown quiz", func() {
		err := s.store.Update(s.ctx, 999, func(*models.Quiz) error { return nil })
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemorySuite) TestFindReturnsCopy() {
	id := s.create()

	quiz, ok := s.store.Find(s.ctx, id)
	s.Require().True(ok)
	quiz.Questions[0].CorrectIndex = 3

	again, ok := s.store.Find(s.ctx, id)
	s.Require().True(ok)
	s.Equal(0, again.Questions[0].CorrectIndex)
}

func (s *InMemorySuite) TestAttempts() {
	id := s.create()

	s.Run("record overwrites completion and counts attempts", func() {
		s.Require().NoError(s.store.RecordAttempt(s.ctx, id, "ST1ADA", models.Completion{Score: 40}))
		s.Require().NoError(s.store.RecordAttempt(s.ctx, id, "ST1ADA", models.Completion{Score: 80, Passed: true}))

		c, ok := s.store.FindCompletion(s.ctx, id, "ST1ADA")
		s.Require().True(ok)
		s.Equal(80, c.Score)
		s.True(c.Passed)
		s.Equal(uint64(2), s.store.Attempts(s.ctx, id, "ST1ADA"))
	})

	s.Run("unknown quiz rejects attempts", func() {
		err := s.store.RecordAttempt(s.ctx, 999, "ST1ADA", models.Completion{})
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("completions survive quiz deletion", func() {
		s.Require().NoError(s.store.Delete(s.ctx, id))
		_, ok := s.store.FindCompletion(s.ctx, id, "ST1ADA")
		s.True(ok)
		s.Equal(uint64(2), s.store.Attempts(s.ctx, id, "ST1ADA"))
	})
}

func (s *InMemorySuite) TestDelete() {
	id := s.create()
	s.NoError(s.store.Delete(s.ctx, id))
	s.ErrorIs(s.store.Delete(s.ctx, id), sentinel.ErrNotFound)

	// The count tracks ids ever issued, not live quizzes.
	s.Equal(uint64(1), s.store.Count(s.ctx))
}

func (s *InMemorySuite) TestDeleteDoesNotFreeCapacity() {
	s.store.SetMaxQuizzes(s.ctx, 1)

	id := s.create()
	s.Require().NoError(s.store.Delete(s.ctx, id))

	_, err := s.store.Create(s.ctx, func(domain.QuizID) (models.Quiz, error) {
		return s.sampleQuiz(), nil
	})
	s.ErrorIs(err, sentinel.ErrCapacityReached)
}
