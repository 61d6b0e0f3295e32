package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/garageops/dispatch-service/internal/events"
	"github.com/garageops/dispatch-service/internal/observability"
)

// AuditService mirrors every dispatch event into the structured log so the
// operational trail survives outside the per-request history arrays.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventRequestCreated,
		events.EventRequestTriaged,
		events.EventTechnicianAssigned,
		events.EventJobScheduled,
		events.EventQuoteGenerated,
		events.EventQuoteApproved,
		events.EventJobClosed,
		events.EventRequestCancelled,
	} {
		a.dispatcher.Subscribe(eventType, a.handleEvent)
	}
}

func (a *AuditService) handleEvent(ctx context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("request_id", event.RequestID),
		zap.String("actor", event.Actor),
		zap.Time("timestamp", event.Timestamp),
		zap.Any("payload", event.Payload))
	if a.metrics != nil {
		a.metrics.RecordEvent(string(event.Type))
	}
	return nil
}
