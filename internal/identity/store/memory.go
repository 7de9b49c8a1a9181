// Package store holds the registry's keyed records and secondary indexes.
// Every mutating method runs its checks and writes under one lock so no
// caller observes a partially updated record or a dangling index entry.
package store

import (
	"context"
	"sync"

	"agora/internal/identity/models"
	"agora/pkg/domain"
	"agora/pkg/fingerprint"
	"agora/pkg/platform/sentinel"
)

// InMemory is the registry's record arena: primary records keyed by
// principal, with id and fingerprint indexes maintained in the same atomic
// step as every insert and delete.
type InMemory struct {
	mu            sync.RWMutex
	users         map[domain.Principal]*models.User
	byID          map[domain.UserID]domain.Principal
	byFingerprint map[fingerprint.Digest]domain.Principal
	nextID        uint64
	maxUsers      uint64
}

func NewInMemory(maxUsers uint64) *InMemory {
	if maxUsers == 0 {
		maxUsers = models.DefaultMaxUsers
	}
	return &InMemory{
		users:         make(map[domain.Principal]*models.User),
		byID:          make(map[domain.UserID]domain.Principal),
		byFingerprint: make(map[fingerprint.Digest]domain.Principal),
		maxUsers:      maxUsers,
	}
}

// Register allocates the next user id for caller. The build callback runs
// under the lock after the existence and capacity checks, so its validation
// errors surface in the operation's documented order.
func (s *InMemory) Register(_ context.Context, caller domain.Principal, build func() (models.User, error)) (domain.UserID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[caller]; ok {
		return 0, sentinel.ErrAlreadyExists
	}
	if s.nextID >= s.maxUsers {
		return 0, sentinel.ErrCapacityReached
	}

	user, err := build()
	if err != nil {
		return 0, err
	}
	if _, taken := s.byFingerprint[user.Fingerprint]; taken {
		return 0, sentinel.ErrIndexTaken
	}

	user.ID = domain.UserID(s.nextID)
	s.users[caller] = &user
	s.byID[user.ID] = caller
	s.byFingerprint[user.Fingerprint] = caller
	s.nextID++
	return user.ID, nil
}

// UpdateProfile rebuilds the caller's record through apply, then swaps the
// fingerprint index entries atomically with the record write. The new
// fingerprint may only be claimed if it is free or already the caller's.
func (s *InMemory) UpdateProfile(_ context.Context, caller domain.Principal, apply func(u *models.User) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[caller]
	if !ok {
		return sentinel.ErrNotFound
	}

	updated := *current
	if err := apply(&updated); err != nil {
		return err
	}
	if owner, taken := s.byFingerprint[updated.Fingerprint]; taken && owner != caller {
		return sentinel.ErrIndexTaken
	}

	delete(s.byFingerprint, current.Fingerprint)
	s.byFingerprint[updated.Fingerprint] = caller
	s.users[caller] = &updated
	return nil
}

// Execute runs validate-then-mutate on a record while holding the lock,
// returning a copy of the mutated record.
func (s *InMemory) Execute(_ context.Context, user domain.Principal, validate func(u *models.User) error, mutate func(u *models.User)) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[user]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(current); err != nil {
		return nil, err
	}
	mutate(current)
	copied := *current
	return &copied, nil
}

func (s *InMemory) Find(_ context.Context, user domain.Principal) (*models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	current, ok := s.users[user]
	if !ok {
		return nil, false
	}
	copied := *current
	return &copied, true
}

func (s *InMemory) FindByID(_ context.Context, id domain.UserID) (*models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	principal, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	current, ok := s.users[principal]
	if !ok {
		return nil, false
	}
	copied := *current
	return &copied, true
}

// Count reports how many ids have been allocated. Resets do not rewind it.
func (s *InMemory) Count(_ context.Context) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextID
}

// Delete removes the record and both index entries. Deleting an absent
// record is a no-op.
func (s *InMemory) Delete(_ context.Context, user domain.Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.users[user]
	if !ok {
		return
	}
	delete(s.byFingerprint, current.Fingerprint)
	delete(s.byID, current.ID)
	delete(s.users, user)
}

func (s *InMemory) SetMaxUsers(_ context.Context, max uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxUsers = max
}
