// Package worker moves audit events from the in-process inbox to a store,
// keeping publication off the request path.
package worker

import (
	"context"

	audit "agora/pkg/platform/audit"
)

// Worker consumes audit events from a channel and persists them.
type Worker struct {
	store audit.Store
	inbox <-chan audit.Event
}

func New(store audit.Store, inbox <-chan audit.Event) *Worker {
	return &Worker{store: store, inbox: inbox}
}

// Run drains the inbox until the context is cancelled. A store failure stops
// the worker; the caller decides whether to restart.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				return err
			}
		}
	}
}

// Inbox is a Publisher that feeds a Worker through a buffered channel.
type Inbox struct {
	ch chan audit.Event
}

func NewInbox(size int) *Inbox {
	return &Inbox{ch: make(chan audit.Event, size)}
}

// Publish enqueues the event, blocking only until the context expires.
func (i *Inbox) Publish(ctx context.Context, event audit.Event) error {
	select {
	case i.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Events exposes the consuming side for the worker.
func (i *Inbox) Events() <-chan audit.Event {
	return i.ch
}
