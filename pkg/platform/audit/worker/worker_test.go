package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"agora/pkg/domain"
	audit "agora/pkg/platform/audit"
	"agora/pkg/platform/audit/store/memory"
)

func TestWorkerPersistsPublishedEvents(t *testing.T) {
	store := memory.NewInMemoryStore()
	inbox := NewInbox(8)
	w := New(store, inbox.Events())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()

	event := audit.Event{
		Action:    audit.ActionUserRegistered,
		Principal: domain.Principal("ST1TEST"),
		Block:     domain.BlockHeight(7),
	}
	require.NoError(t, inbox.Publish(ctx, event))

	require.Eventually(t, func() bool {
		events, err := store.ListByPrincipal(ctx, "ST1TEST")
		return err == nil && len(events) == 1
	}, time.Second, 10*time.Millisecond)

	events, err := store.ListByPrincipal(ctx, "ST1TEST")
	require.NoError(t, err)
	require.Equal(t, audit.ActionUserRegistered, events[0].Action)

	cancel()
	<-done
}
