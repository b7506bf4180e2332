package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/booking-portal/internal/events"
	"github.com/spec-kit/booking-portal/internal/observability"
)

// AuditService records session lifecycle events.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
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
	a.dispatcher.Subscribe(events.EventSignedIn, a.handleSignedIn)
	a.dispatcher.Subscribe(events.EventSignedOut, a.handleSignedOut)
	a.dispatcher.Subscribe(events.EventSessionExpired, a.handleSessionExpired)
	a.dispatcher.Subscribe(events.EventRefreshed, a.handleRefreshed)
}

func (a *AuditService) handleSignedIn(_ context.Context, event events.Event) error {
	a.record(event)
	a.logger.Info("SignedIn", a.fields(event)...)
	return nil
}

func (a *AuditService) handleSignedOut(_ context.Context, event events.Event) error {
	a.record(event)
	a.logger.Info("SignedOut", a.fields(event)...)
	return nil
}

func (a *AuditService) handleSessionExpired(_ context.Context, event events.Event) error {
	a.record(event)
	a.logger.Info("SessionExpired", a.fields(event)...)
	return nil
}

func (a *AuditService) handleRefreshed(_ context.Context, event events.Event) error {
	a.record(event)
	a.logger.Debug("Refreshed", a.fields(event)...)
	return nil
}

func (a *AuditService) record(event events.Event) {
	a.metrics.RecordSessionEvent(string(event.Actor), string(event.Type))
}

func (a *AuditService) fields(event events.Event) []zap.Field {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("device_id", event.DeviceID),
		zap.String("actor", string(event.Actor)),
		zap.Any("payload", event.Payload),
	}
	if event.BusinessType != "" {
		fields = append(fields, zap.String("business_type", string(event.BusinessType)))
	}
	return fields
}
