// Package service implements the identity registry's state transitions:
// registration with sybil resistance, email-ownership verification, profile
// updates, and authority-gated administration.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"agora/internal/authority"
	identitymetrics "agora/internal/identity/metrics"
	"agora/internal/identity/models"
	"agora/internal/platform/chain"
	"agora/pkg/domain"
	"agora/pkg/fingerprint"
	"agora/pkg/platform/audit"
	"agora/pkg/platform/sentinel"
)

// Store is the record arena the service drives. The memory implementation
// lives in internal/identity/store.
type Store interface {
	Register(ctx context.Context, caller domain.Principal, build func() (models.User, error)) (domain.UserID, error)
	UpdateProfile(ctx context.Context, caller domain.Principal, apply func(u *models.User) error) error
	Execute(ctx context.Context, user domain.Principal, validate func(u *models.User) error, mutate func(u *models.User)) (*models.User, error)
	Find(ctx context.Context, user domain.Principal) (*models.User, bool)
	FindByID(ctx context.Context, id domain.UserID) (*models.User, bool)
	Count(ctx context.Context) uint64
	Delete(ctx context.Context, user domain.Principal)
	SetMaxUsers(ctx context.Context, max uint64)
}

type Service struct {
	store    Store
	clock    chain.Clock
	gate     *authority.Gate
	logger   *slog.Logger
	recorder *audit.Recorder
	metrics  *identitymetrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditRecorder(recorder *audit.Recorder) Option {
	return func(s *Service) { s.recorder = recorder }
}

func WithMetrics(m *identitymetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store Store, clock chain.Clock, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("identity store is required")
	}
	if clock == nil {
		return nil, fmt.Errorf("chain clock is required")
	}
	svc := &Service{
		store:  store,
		clock:  clock,
		gate:   authority.NewGate(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// BindAuthority binds the administrative principal. Succeeds exactly once.
func (s *Service) BindAuthority(ctx context.Context, p domain.Principal) error {
	if err := s.gate.Bind(p); err != nil {
		return err
	}
	s.record(ctx, audit.Event{Action: audit.ActionAuthorityBound, Principal: p})
	return nil
}

// Register creates the caller's identity record and returns its id.
func (s *Service) Register(ctx context.Context, caller domain.Principal, name string, age int, email string) (domain.UserID, error) {
	height := s.clock.Height()
	id, err := s.store.Register(ctx, caller, func() (models.User, error) {
		if err := models.ValidateProfile(name, age, email); err != nil {
			return models.User{}, err
		}
		return models.User{
			Name:         name,
			Age:          age,
			Email:        email,
			Fingerprint:  fingerprint.Identity(name, email),
			RegisteredAt: height,
			LastUpdate:   height,
		}, nil
	})
	if err != nil {
		return 0, s.translateRegister(err)
	}

	if s.metrics != nil {
		s.metrics.Registrations.Inc()
	}
	s.record(ctx, audit.Event{Action: audit.ActionUserRegistered, Principal: caller, Block: height})
	s.logger.InfoContext(ctx, "identity registered", "principal", caller, "user_id", id)
	return id, nil
}

func (s *Service) translateRegister(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrAlreadyExists):
		return models.ErrAlreadyRegistered
	case errors.Is(err, sentinel.ErrCapacityReached):
		return models.ErrCapacityExceeded
	case errors.Is(err, sentinel.ErrIndexTaken):
		if s.metrics != nil {
			s.metrics.SybilRejections.Inc()
		}
		return models.ErrDuplicateIdentity
	default:
		return err
	}
}

// Verify flips the record to verified when proof matches the digest of the
// stored email. Re-verification is rejected, not idempotent.
func (s *Service) Verify(ctx context.Context, user domain.Principal, proof []byte) error {
	height := s.clock.Height()
	_, err := s.store.Execute(ctx, user,
		func(u *models.User) error {
			if u.Verified || !fingerprint.Equal(fingerprint.EmailProof(u.Email), proof) {
				return models.ErrInvalidProof
			}
			return nil
		},
		func(u *models.User) {
			u.Verified = true
			u.LastUpdate = height
		},
	)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.ErrNotFound
		}
		return err
	}

	if s.metrics != nil {
		s.metrics.Verifications.Inc()
	}
	s.record(ctx, audit.Event{Action: audit.ActionUserVerified, Principal: user, Block: height})
	return nil
}

// UpdateProfile replaces the caller's profile fields, re-fingerprints the
// identity, and counts the edit as a contribution.
func (s *Service) UpdateProfile(ctx context.Context, caller domain.Principal, name string, age int, email string) error {
	height := s.clock.Height()
	err := s.store.UpdateProfile(ctx, caller, func(u *models.User) error {
		if err := models.ValidateProfile(name, age, email); err != nil {
			return err
		}
		u.Name = name
		u.Age = age
		u.Email = email
		u.Fingerprint = fingerprint.Identity(name, email)
		u.LastUpdate = height
		u.Contributions++
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return models.ErrNotFound
		case errors.Is(err, sentinel.ErrIndexTaken):
			if s.metrics != nil {
				s.metrics.SybilRejections.Inc()
			}
			return models.ErrDuplicateIdentity
		default:
			return err
		}
	}

	s.record(ctx, audit.Event{Action: audit.ActionUserUpdated, Principal: caller, Block: height})
	return nil
}

// IncrementContributions records one civic action for a verified user and
// returns the new count.
func (s *Service) IncrementContributions(ctx context.Context, user domain.Principal) (uint64, error) {
	height := s.clock.Height()
	updated, err := s.store.Execute(ctx, user,
		func(u *models.User) error {
			if !u.Verified {
				return models.ErrNotVerified
			}
			return nil
		},
		func(u *models.User) {
			u.Contributions++
			u.LastUpdate = height
		},
	)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return 0, models.ErrNotFound
		}
		return 0, err
	}

	s.record(ctx, audit.Event{Action: audit.ActionContributionRecorded, Principal: user, Block: height})
	return updated.Contributions, nil
}

// Get returns the user's record, or false when none exists. Reads never
// produce error kinds.
func (s *Service) Get(ctx context.Context, user domain.Principal) (*models.User, bool) {
	return s.store.Find(ctx, user)
}

func (s *Service) GetByID(ctx context.Context, id domain.UserID) (*models.User, bool) {
	return s.store.FindByID(ctx, id)
}

// IsVerified reports false for absent records.
func (s *Service) IsVerified(ctx context.Context, user domain.Principal) bool {
	u, ok := s.store.Find(ctx, user)
	return ok && u.Verified
}

// Count reports how many ids have ever been allocated.
func (s *Service) Count(ctx context.Context) uint64 {
	return s.store.Count(ctx)
}

// SetMaxUsers adjusts the registration cap. Authority-only.
func (s *Service) SetMaxUsers(ctx context.Context, caller domain.Principal, max int64) error {
	if err := s.gate.Require(caller); err != nil {
		return err
	}
	if max <= 0 {
		return models.ErrInvalidUpdate
	}
	s.store.SetMaxUsers(ctx, uint64(max))
	s.record(ctx, audit.Event{Action: audit.ActionParameterUpdated, Principal: caller, Subject: "max_users"})
	return nil
}

// ResetUser removes a record and its index entries. Authority-only;
// resetting an absent record succeeds silently.
func (s *Service) ResetUser(ctx context.Context, caller, user domain.Principal) error {
	if err := s.gate.Require(caller); err != nil {
		return err
	}
	s.store.Delete(ctx, user)
	if s.metrics != nil {
		s.metrics.Resets.Inc()
	}
	s.record(ctx, audit.Event{Action: audit.ActionUserReset, Principal: caller, Subject: string(user)})
	return nil
}

func (s *Service) record(ctx context.Context, event audit.Event) {
	if event.Block == 0 {
		event.Block = s.clock.Height()
	}
	s.recorder.Record(ctx, event)
}
