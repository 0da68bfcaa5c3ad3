package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/chainsafe/crosschain-issuer/pkg/issuance"
	"github.com/chainsafe/crosschain-issuer/pkg/issuancestore"
)

// EventRecorder appends workflow progress events to the run history.
type EventRecorder struct {
	store  issuancestore.Store
	logger *zap.Logger
}

var _ issuance.Observer = (*EventRecorder)(nil)

// NewEventRecorder creates an observer writing to store.
func NewEventRecorder(store issuancestore.Store, logger *zap.Logger) *EventRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventRecorder{store: store, logger: logger}
}

// Notify implements issuance.Observer. Write failures are logged and dropped.
func (r *EventRecorder) Notify(e issuance.Event) {
	ev := &issuancestore.Event{
		RunID:     e.RunID,
		Stage:     string(e.Stage),
		Level:     string(e.Level),
		Message:   e.Message,
		CreatedAt: e.Time.UTC(),
	}
	if e.Err != nil {
		ev.Error = e.Err.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeWriteTimeout)
	defer cancel()
	if err := r.store.AppendEvent(ctx, ev); err != nil {
		r.logger.Warn("failed to record issuance event",
			zap.String("run_id", e.RunID),
			zap.String("message", e.Message),
			zap.Error(err))
	}
}
