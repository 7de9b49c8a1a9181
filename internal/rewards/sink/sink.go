// Package sink delivers settled reward payouts to an external system.
// The ledger computes amounts; a sink is where the value actually lands.
package sink

import (
	"context"
	"sync"

	"agora/pkg/domain"
)

// Sink receives a settled payout. Mint must be idempotent on the
// receiving side; the ledger's claim markers already prevent re-claims,
// but a sink may see retries after partial failures.
type Sink interface {
	Mint(ctx context.Context, user domain.Principal, amount uint64) error
}

// Memory accumulates payouts in process. Used in tests and when no
// settlement backend is configured.
type Memory struct {
	mu     sync.Mutex
	minted map[domain.Principal]uint64
}

func NewMemory() *Memory {
	return &Memory{minted: make(map[domain.Principal]uint64)}
}

func (m *Memory) Mint(_ context.Context, user domain.Principal, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.minted[user] += amount
	return nil
}

// Minted returns the total delivered to a user.
func (m *Memory) Minted(user domain.Principal) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.minted[user]
}
