// Package store provides the in-memory reward ledger store. Claim
// sequences run their checks and mutations under one lock; a claim can
// never be double-spent by concurrent callers.
package store

import (
	"context"
	"sync"

	"agora/internal/rewards/models"
	"agora/pkg/domain"
	"agora/pkg/fingerprint"
	"agora/pkg/platform/sentinel"
)

type eduKey struct {
	user   domain.Principal
	source uint64
}

type voteKey struct {
	user     domain.Principal
	election domain.ElectionID
}

type InMemory struct {
	mu           sync.RWMutex
	rewards      map[domain.Principal]models.UserRewards
	eduClaims    map[eduKey]struct{}
	voteClaims   map[voteKey]struct{}
	attestations map[domain.ElectionID]fingerprint.Digest
	totalMinted  uint64
}

func NewInMemory() *InMemory {
	return &InMemory{
		rewards:      make(map[domain.Principal]models.UserRewards),
		eduClaims:    make(map[eduKey]struct{}),
		voteClaims:   make(map[voteKey]struct{}),
		attestations: make(map[domain.ElectionID]fingerprint.Digest),
	}
}

// Register creates an accrual record. Registering twice is a no-op; the
// original record wins.
func (s *InMemory) Register(_ context.Context, user domain.Principal, at domain.BlockHeight) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rewards[user]; ok {
		return false
	}
	s.rewards[user] = models.UserRewards{User: user, RegisteredAt: at}
	return true
}

func (s *InMemory) Find(_ context.Context, user domain.Principal) (models.UserRewards, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rewards[user]
	return r, ok
}

func (s *InMemory) HasEducationClaim(_ context.Context, user domain.Principal, source uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.eduClaims[eduKey{user: user, source: source}]
	return ok
}

func (s *InMemory) HasVoteClaim(_ context.Context, user domain.Principal, election domain.ElectionID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.voteClaims[voteKey{user: user, election: election}]
	return ok
}

// ClaimEducation runs apply against the accrual record and, on success,
// writes the record back and sets the claim marker. apply returns the
// payout so callers can report it.
func (s *InMemory) ClaimEducation(_ context.Context, user domain.Principal, source uint64, apply func(r *models.UserRewards) (uint64, error)) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rewards[user]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	key := eduKey{user: user, source: source}
	if _, claimed := s.eduClaims[key]; claimed {
		return 0, sentinel.ErrAlreadyExists
	}

	amount, err := apply(&r)
	if err != nil {
		return 0, err
	}
	s.rewards[user] = r
	s.eduClaims[key] = struct{}{}
	s.totalMinted += amount
	return amount, nil
}

// ClaimVote is the voting-bonus counterpart of ClaimEducation, keyed by
// election.
func (s *InMemory) ClaimVote(_ context.Context, user domain.Principal, election domain.ElectionID, apply func(r *models.UserRewards) (uint64, error)) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rewards[user]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	key := voteKey{user: user, election: election}
	if _, claimed := s.voteClaims[key]; claimed {
		return 0, sentinel.ErrAlreadyExists
	}

	amount, err := apply(&r)
	if err != nil {
		return 0, err
	}
	s.rewards[user] = r
	s.voteClaims[key] = struct{}{}
	s.totalMinted += amount
	return amount, nil
}

// Attest stores the expected voting-proof digest for an election.
// Re-attesting overwrites.
func (s *InMemory) Attest(_ context.Context, election domain.ElectionID, digest fingerprint.Digest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attestations[election] = digest
}

func (s *InMemory) Attestation(_ context.Context, election domain.ElectionID) (fingerprint.Digest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.attestations[election]
	return d, ok
}

// Reset deletes the accrual record plus the markers for the primary
// education source and the first election. Markers for other sources and
// elections survive a reset, so those cannot be double-claimed across
// account resets.
func (s *InMemory) Reset(_ context.Context, user domain.Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rewards, user)
	delete(s.eduClaims, eduKey{user: user, source: models.MinSourceID})
	delete(s.voteClaims, voteKey{user: user, election: 1})
}

func (s *InMemory) Count(_ context.Context) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.rewards))
}

// TotalMinted reports the running sum of every successful payout.
// Resets do not unwind it.
func (s *InMemory) TotalMinted(_ context.Context) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalMinted
}
