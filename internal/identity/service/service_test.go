package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"agora/internal/authority"
	"agora/internal/identity/models"
	"agora/internal/identity/store"
	"agora/internal/platform/chain"
	"agora/pkg/domain"
	"agora/pkg/fingerprint"
)

type IdentityServiceSuite struct {
	suite.Suite
	clock   *chain.ManualClock
	service *Service
	ctx     context.Context
}

func TestIdentityServiceSuite(t *testing.T) {
	suite.Run(t, new(IdentityServiceSuite))
}

func (s *IdentityServiceSuite) SetupTest() {
	s.clock = chain.NewManualClock(0)
	s.ctx = context.Background()

	var err error
	s.service, err = New(store.NewInMemory(10000), s.clock)
	s.Require().NoError(err)
}

func (s *IdentityServiceSuite) register(caller domain.Principal) domain.UserID {
	id, err := s.service.Register(s.ctx, caller, "John Doe", 25, "john@example.com")
	s.Require().NoError(err)
	return id
}

func (s *IdentityServiceSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil, s.clock)
		s.Error(err)
	})

	s.Run("nil clock returns error", func() {
		_, err := New(store.NewInMemory(1), nil)
		s.Error(err)
	})
}

func (s *IdentityServiceSuite) TestRegister() {
	s.Run("stores an unverified record and returns id zero", func() {
		id := s.register("ST1TEST")
		s.Equal(domain.UserID(0), id)

		u, ok := s.service.Get(s.ctx, "ST1TEST")
		s.Require().True(ok)
		s.Equal("John Doe", u.Name)
		s.Equal(25, u.Age)
		s.Equal("john@example.com", u.Email)
		s.False(u.Verified)
		s.Equal(uint64(0), u.Contributions)
		s.Equal(uint64(1), s.service.Count(s.ctx))
	})

	s.Run("rejects an already registered caller", func() {
		_, err := s.service.Register(s.ctx, "ST1TEST", "Jane Doe", 26, "jane@example.com")
		s.Require().ErrorIs(err, models.ErrAlreadyRegistered)
	})

	s.Run("rejects out-of-range age without allocating an id", func() {
		before := s.service.Count(s.ctx)
		_, err := s.service.Register(s.ctx, "ST2TEST", "John Doe", 17, "john2@example.com")
		s.Require().ErrorIs(err, models.ErrInvalidAge)
		s.Equal(before, s.service.Count(s.ctx))

		_, err = s.service.Register(s.ctx, "ST2TEST", "John Doe", 31, "john2@example.com")
		s.Require().ErrorIs(err, models.ErrInvalidAge)
	})

	s.Run("rejects bad names and emails", func() {
		_, err := s.service.Register(s.ctx, "ST2TEST", "", 25, "a@b.com")
		s.ErrorIs(err, models.ErrInvalidName)

		_, err = s.service.Register(s.ctx, "ST2TEST", "John", 25, "not-an-email")
		s.ErrorIs(err, models.ErrInvalidEmail)

		_, err = s.service.Register(s.ctx, "ST2TEST", "John", 25, "")
		s.ErrorIs(err, models.ErrInvalidEmail)
	})

	s.Run("detects a sybil registration from a different principal", func() {
		_, err := s.service.Register(s.ctx, "ST2TEST", "John Doe", 25, "john@example.com")
		s.Require().ErrorIs(err, models.ErrDuplicateIdentity)
	})
}

func (s *IdentityServiceSuite) TestCapacity() {
	svc, err := New(store.NewInMemory(1), s.clock)
	s.Require().NoError(err)

	_, err = svc.Register(s.ctx, "ST1TEST", "John Doe", 25, "john@example.com")
	s.Require().NoError(err)

	_, err = svc.Register(s.ctx, "ST2TEST", "Jane Doe", 26, "jane@example.com")
	s.Require().ErrorIs(err, models.ErrCapacityExceeded)
}

func (s *IdentityServiceSuite) TestVerify() {
	s.register("ST1TEST")
	proof := fingerprint.EmailProof("john@example.com")

	s.Run("rejects an unknown user", func() {
		err := s.service.Verify(s.ctx, "ST9TEST", proof[:])
		s.Require().ErrorIs(err, models.ErrNotFound)
	})

	s.Run("rejects a wrong proof", func() {
		err := s.service.Verify(s.ctx, "ST1TEST", []byte("invalid"))
		s.Require().ErrorIs(err, models.ErrInvalidProof)
		s.False(s.service.IsVerified(s.ctx, "ST1TEST"))
	})

	s.Run("accepts the email digest", func() {
		s.clock.Advance(5)
		s.Require().NoError(s.service.Verify(s.ctx, "ST1TEST", proof[:]))
		s.True(s.service.IsVerified(s.ctx, "ST1TEST"))

		u, ok := s.service.Get(s.ctx, "ST1TEST")
		s.Require().True(ok)
		s.Equal(domain.BlockHeight(5), u.LastUpdate)
	})

	s.Run("rejects re-verification", func() {
		err := s.service.Verify(s.ctx, "ST1TEST", proof[:])
		s.Require().ErrorIs(err, models.ErrInvalidProof)
	})
}

func (s *IdentityServiceSuite) TestUpdateProfile() {
	s.register("ST1TEST")

	s.Run("updates fields and counts the edit as a contribution", func() {
		err := s.service.UpdateProfile(s.ctx, "ST1TEST", "Jane Smith", 26, "jane@example.com")
		s.Require().NoError(err)

		u, ok := s.service.Get(s.ctx, "ST1TEST")
		s.Require().True(ok)
		s.Equal("Jane Smith", u.Name)
		s.Equal(26, u.Age)
		s.Equal("jane@example.com", u.Email)
		s.Equal(uint64(1), u.Contributions)
	})

	s.Run("frees the previous fingerprint", func() {
		_, err := s.service.Register(s.ctx, "ST2TEST", "John Doe", 25, "john@example.com")
		s.Require().NoError(err)
	})

	s.Run("rejects taking another principal's fingerprint", func() {
		err := s.service.UpdateProfile(s.ctx, "ST2TEST", "Jane Smith", 27, "jane@example.com")
		s.Require().ErrorIs(err, models.ErrDuplicateIdentity)
	})

	s.Run("validates fields like register", func() {
		err := s.service.UpdateProfile(s.ctx, "ST1TEST", "Jane Smith", 31, "jane@example.com")
		s.Require().ErrorIs(err, models.ErrInvalidAge)
	})

	s.Run("rejects an unknown caller", func() {
		err := s.service.UpdateProfile(s.ctx, "ST9TEST", "Jane Smith", 26, "x@y.com")
		s.Require().ErrorIs(err, models.ErrNotFound)
	})
}

func (s *IdentityServiceSuite) TestIncrementContributions() {
	s.register("ST1TEST")

	s.Run("rejects unverified users", func() {
		_, err := s.service.IncrementContributions(s.ctx, "ST1TEST")
		s.Require().ErrorIs(err, models.ErrNotVerified)
	})

	s.Run("rejects unknown users", func() {
		_, err := s.service.IncrementContributions(s.ctx, "ST9TEST")
		s.Require().ErrorIs(err, models.ErrNotFound)
	})

	s.Run("increments for verified users", func() {
		proof := fingerprint.EmailProof("john@example.com")
		s.Require().NoError(s.service.Verify(s.ctx, "ST1TEST", proof[:]))

		count, err := s.service.IncrementContributions(s.ctx, "ST1TEST")
		s.Require().NoError(err)
		s.Equal(uint64(1), count)

		count, err = s.service.IncrementContributions(s.ctx, "ST1TEST")
		s.Require().NoError(err)
		s.Equal(uint64(2), count)
	})
}

func (s *IdentityServiceSuite) TestAuthority() {
	s.Run("binding succeeds exactly once", func() {
		s.Require().NoError(s.service.BindAuthority(s.ctx, "ST2TEST"))
		s.Require().ErrorIs(s.service.BindAuthority(s.ctx, "ST3TEST"), authority.ErrAlreadyBound)
	})

	s.Run("set max users requires the authority", func() {
		s.Require().ErrorIs(s.service.SetMaxUsers(s.ctx, "ST1TEST", 5000), authority.ErrUnauthorized)
		s.Require().NoError(s.service.SetMaxUsers(s.ctx, "ST2TEST", 5000))
	})

	s.Run("rejects non-positive caps", func() {
		s.Require().ErrorIs(s.service.SetMaxUsers(s.ctx, "ST2TEST", 0), models.ErrInvalidUpdate)
	})

	s.Run("reset removes the record and is idempotent", func() {
		s.register("ST1TEST")
		s.Require().ErrorIs(s.service.ResetUser(s.ctx, "ST1TEST", "ST1TEST"), authority.ErrUnauthorized)

		s.Require().NoError(s.service.ResetUser(s.ctx, "ST2TEST", "ST1TEST"))
		_, ok := s.service.Get(s.ctx, "ST1TEST")
		s.False(ok)

		s.Require().NoError(s.service.ResetUser(s.ctx, "ST2TEST", "ST1TEST"))
	})
}

func (s *IdentityServiceSuite) TestUnauthorizedWhenUnbound() {
	svc, err := New(store.NewInMemory(10), s.clock)
	s.Require().NoError(err)

	s.Require().ErrorIs(svc.SetMaxUsers(s.ctx, "ST1TEST", 10), authority.ErrUnauthorized)
	s.Require().ErrorIs(svc.ResetUser(s.ctx, "ST1TEST", "ST2TEST"), authority.ErrUnauthorized)
}
