package chain

import (
	"context"
	"time"
)

// RunTicker advances the clock one block per interval until the context
// ends. It stands in for a chain follower in deployments that have no
// upstream height feed.
func RunTicker(ctx context.Context, c *ManualClock, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.Advance(1)
		}
	}
}
