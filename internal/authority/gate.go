// Package authority implements the one-shot administrative binding each
// component carries. The authority principal is settable exactly once and
// scoped to the component owning the gate, never process-wide.
package authority

import (
	"sync"

	"agora/pkg/domain"
	dErrors "agora/pkg/domain-errors"
)

// ErrAlreadyBound rejects any binding attempt after the first success.
var ErrAlreadyBound = dErrors.New(dErrors.CodeConflict, "authority already bound")

// ErrUnauthorized covers both an unbound gate and a non-authority caller.
// Administrative operations fail closed.
var ErrUnauthorized = dErrors.New(dErrors.CodeUnauthorized, "caller is not the component authority")

// Gate guards a component's administrative operations.
type Gate struct {
	mu        sync.Mutex
	principal domain.Principal
	bound     bool
}

func NewGate() *Gate {
	return &Gate{}
}

// Bind sets the authority principal. Succeeds exactly once; every later call
// fails regardless of argument.
func (g *Gate) Bind(p domain.Principal) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.bound {
		return ErrAlreadyBound
	}
	g.principal = p
	g.bound = true
	return nil
}

// Require returns ErrUnauthorized unless the gate is bound and the caller is
// the bound authority.
func (g *Gate) Require(caller domain.Principal) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.bound || caller != g.principal {
		return ErrUnauthorized
	}
	return nil
}
