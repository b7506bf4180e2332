package service

import (
	"context"
	"testing"

	"github.com/spec-kit/booking-portal/internal/domain"
	"github.com/spec-kit/booking-portal/internal/events"
	"github.com/spec-kit/booking-portal/internal/observability"
)

func TestAuditServiceCountsEvents(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	NewAuditService(dispatcher, nil, metrics).RegisterHandlers()
	ctx := context.Background()

	_ = dispatcher.Publish(ctx, events.Event{Type: events.EventSignedIn, Actor: domain.ActorBusiness, BusinessType: domain.BusinessHotel})
	_ = dispatcher.Publish(ctx, events.Event{Type: events.EventSignedOut, Actor: domain.ActorBusiness})
	_ = dispatcher.Publish(ctx, events.Event{Type: events.EventSignedIn, Actor: domain.ActorConsumer})

	sessions := metrics.Snapshot().Sessions
	if sessions["business|signed_in"] != 1 || sessions["business|signed_out"] != 1 || sessions["consumer|signed_in"] != 1 {
		t.Errorf("unexpected session counters %v", sessions)
	}
}
