package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/warden/internal/events"
	"github.com/spec-kit/warden/internal/observability"
)

// Grant outcomes recorded in metrics.
const (
	OutcomeIssued   = "issued"
	OutcomeRejected = "rejected"
)

// StartAuditWorker subscribes the audit log and grant metrics to auth events.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) {
	if dispatcher == nil {
		return
	}

	dispatcher.Subscribe(events.EventTokenIssued, func(_ context.Context, e events.Event) error {
		payload, _ := e.Payload.(events.GrantPayload)
		metrics.RecordGrant(payload.GrantType, OutcomeIssued)
		logger.Info("token issued",
			zap.String("event_id", e.ID),
			zap.String("subject_id", e.SubjectID),
			zap.String("grant_type", payload.GrantType),
		)
		return nil
	})

	dispatcher.Subscribe(events.EventGrantRejected, func(_ context.Context, e events.Event) error {
		payload, _ := e.Payload.(events.GrantPayload)
		metrics.RecordGrant(payload.GrantType, OutcomeRejected)
		logger.Warn("grant rejected",
			zap.String("event_id", e.ID),
			zap.String("grant_type", payload.GrantType),
			zap.String("code", payload.ErrorCode),
			zap.String("reason", payload.Reason),
		)
		return nil
	})

	dispatcher.Subscribe(events.EventIdentityRegistered, func(_ context.Context, e events.Event) error {
		logger.Info("identity registered",
			zap.String("event_id", e.ID),
			zap.String("subject_id", e.SubjectID),
		)
		return nil
	})
}
