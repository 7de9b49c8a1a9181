// Package chain supplies the monotonic block-height clock. The engine only
// reads it; advancing the height is the execution environment's job.
package chain

import (
	"sync/atomic"

	"agora/pkg/domain"
)

// Clock reports the current block height.
type Clock interface {
	Height() domain.BlockHeight
}

// ManualClock is an externally advanced clock. It backs tests and
// deployments where an upstream chain follower pushes heights in.
type ManualClock struct {
	height atomic.Uint64
}

func NewManualClock(start domain.BlockHeight) *ManualClock {
	c := &ManualClock{}
	c.height.Store(uint64(start))
	return c
}

func (c *ManualClock) Height() domain.BlockHeight {
	return domain.BlockHeight(c.height.Load())
}

// Advance moves the clock forward by n blocks.
func (c *ManualClock) Advance(n uint64) {
	c.height.Add(n)
}

// Set jumps to an absolute height. Heights only move forward; a lower value
// is ignored.
func (c *ManualClock) Set(h domain.BlockHeight) {
	for {
		cur := c.height.Load()
		if uint64(h) <= cur {
			return
		}
		if c.height.CompareAndSwap(cur, uint64(h)) {
			return
		}
	}
}
