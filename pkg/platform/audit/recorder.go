package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"agora/pkg/requestcontext"
)

// Recorder is the service-side facade over the audit pipeline. Recording is
// best-effort: a failing publisher is logged and never fails the operation
// that emitted the event.
type Recorder struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewRecorder builds a recorder. Both arguments may be nil; a nil publisher
// turns recording into a no-op, a nil logger suppresses failure logs.
func NewRecorder(publisher Publisher, logger *slog.Logger) *Recorder {
	return &Recorder{publisher: publisher, logger: logger}
}

// Record fills in the event envelope (id, wall time, request correlation)
// and hands it to the publisher.
func (r *Recorder) Record(ctx context.Context, event Event) {
	if r == nil || r.publisher == nil {
		return
	}
	event.ID = uuid.New()
	event.At = time.Now().UTC()
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if err := r.publisher.Publish(ctx, event); err != nil && r.logger != nil {
		r.logger.WarnContext(ctx, "audit publish failed",
			"action", event.Action,
			"principal", event.Principal,
			"error", err,
		)
	}
}
