package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"agora/internal/rewards/models"
	"agora/pkg/fingerprint"
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

func (s *InMemorySuite) TestRegister() {
	s.True(s.store.Register(s.ctx, "ST1ADA", 5))
	s.False(s.store.Register(s.ctx, "ST1ADA", 9))

	r, ok := s.store.Find(s.ctx, "ST1ADA")
	s.Require().True(ok)
	s.Equal(uint64(5), uint64(r.RegisteredAt))
	s.Equal(uint64(1), s.store.Count(s.ctx))
}

func (s *InMemorySuite) TestClaimEducation() {
	s.store.Register(s.ctx, "ST1ADA", 0)

	s.Run("unregistered user", func() {
		_, err := s.store.ClaimEducation(s.ctx, "ST1GHOST", 1, nil)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("successful claim marks the source", func() {
		amount, err := s.store.ClaimEducation(s.ctx, "ST1ADA", 1, func(r *models.UserRewards) (uint64, error) {
			r.TotalClaimed += 80
			return 80, nil
		})
		s.Require().NoError(err)
		s.Equal(uint64(80), amount)
		s.True(s.store.HasEducationClaim(s.ctx, "ST1ADA", 1))

		r, _ := s.store.Find(s.ctx, "ST1ADA")
		s.Equal(uint64(80), r.TotalClaimed)
	})

	s.Run("double claim", func() {
		_, err := s.store.ClaimEducation(s.ctx, "ST1ADA", 1, nil)
		s.ErrorIs(err, sentinel.ErrAlreadyExists)
	})

	s.Run("failed apply writes nothing", func() {
		_, err := s.store.ClaimEducation(s.ctx, "ST1ADA", 2, func(r *models.UserRewards) (uint64, error) {
			r.TotalClaimed += 1000
			return 0, sentinel.ErrCapacityReached
		})
		s.Error(err)
		s.False(s.store.HasEducationClaim(s.ctx, "ST1ADA", 2))

		r, _ := s.store.Find(s.ctx, "ST1ADA")
		s.Equal(uint64(80), r.TotalClaimed)
	})
}

func (s *InMemorySuite) TestClaimVote() {
	s.store.Register(s.ctx, "ST1ADA", 0)

	amount, err := s.store.ClaimVote(s.ctx, "ST1ADA", 7, func(r *models.UserRewards) (uint64, error) {
		r.VotesVerified++
		r.TotalClaimed += 50
		return 50, nil
	})
	s.Require().NoError(err)
	s.Equal(uint64(50), amount)
	s.True(s.store.HasVoteClaim(s.ctx, "ST1ADA", 7))

	_, err = s.store.ClaimVote(s.ctx, "ST1ADA", 7, nil)
	s.ErrorIs(err, sentinel.ErrAlreadyExists)
}

func (s *InMemorySuite) TestAttest() {
	digest := fingerprint.Sum([]byte("ballot"))

	_, ok := s.store.Attestation(s.ctx, 3)
	s.False(ok)

	s.store.Attest(s.ctx, 3, digest)
	got, ok := s.store.Attestation(s.ctx, 3)
	s.Require().True(ok)
	s.Equal(digest, got)
}

func (s *InMemorySuite) TestReset() {
	s.store.Register(s.ctx, "ST1ADA", 0)
	_, err := s.store.ClaimEducation(s.ctx, "ST1ADA", 1, func(r *models.UserRewards) (uint64, error) { return 0, nil })
	s.Require().NoError(err)
	_, err = s.store.ClaimEducation(s.ctx, "ST1ADA", 2, func(r *models.UserRewards) (uint64, error) { return 0, nil })
	s.Require().NoError(err)
	_, err = s.store.ClaimVote(s.ctx, "ST1ADA", 1, func(r *models.UserRewards) (uint64, error) { return 0, nil })
	s.Require().NoError(err)
	_, err = s.store.ClaimVote(s.ctx, "ST1ADA", 2, func(r *models.UserRewards) (uint64, error) { return 0, nil })
	s.Require().NoError(err)

	s.store.Reset(s.ctx, "ST1ADA")

	_, ok := s.store.Find(s.ctx, "ST1ADA")
	s.False(ok)

	// Only the primary source and first election markers are cleared.
	s.False(s.store.HasEducationClaim(s.ctx, "ST1ADA", 1))
	s.True(s.store.HasEducationClaim(s.ctx, "ST1ADA", 2))
	s.False(s.store.HasVoteClaim(s.ctx, "ST1ADA", 1))
	s.True(s.store.HasVoteClaim(s.ctx, "ST1ADA", 2))
}

func (s *InMemorySuite) TestTotalMinted() {
	s.store.Register(s.ctx, "ST1ADA", 0)
	s.Zero(s.store.TotalMinted(s.ctx))

	_, err := s.store.ClaimEducation(s.ctx, "ST1ADA", 1, func(r *models.UserRewards) (uint64, error) { return 80, nil })
	s.Require().NoError(err)
	_, err = s.store.ClaimVote(s.ctx, "ST1ADA", 1, func(r *models.UserRewards) (uint64, error) { return 50, nil })
	s.Require().NoError(err)
	s.Equal(uint64(130), s.store.TotalMinted(s.ctx))

	// Failed claims and resets leave the total alone.
	_, err = s.store.ClaimEducation(s.ctx, "ST1ADA", 2, func(r *models.UserRewards) (uint64, error) {
		return 0, sentinel.ErrCapacityReached
	})
	s.Error(err)
	s.store.Reset(s.ctx, "ST1ADA")
	s.Equal(uint64(130), s.store.TotalMinted(s.ctx))
}
