package events

import (
	"time"

	"github.com/spec-kit/booking-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSignedIn       EventType = "signed_in"
	EventSignedOut      EventType = "signed_out"
	EventSessionExpired EventType = "session_expired"
	EventRefreshed      EventType = "refreshed"
)

// EventTypes lists every session lifecycle event.
func EventTypes() []EventType {
	return []EventType{EventSignedIn, EventSignedOut, EventSessionExpired, EventRefreshed}
}

// Event represents a session lifecycle change emitted by a session store.
type Event struct {
	ID           string              `json:"id"`
	Type         EventType           `json:"type"`
	DeviceID     string              `json:"device_id,omitempty"`
	Actor        domain.ActorClass   `json:"actor"`
	BusinessType domain.BusinessType `json:"business_type,omitempty"`
	Timestamp    time.Time           `json:"timestamp"`
	Payload      interface{}         `json:"payload,omitempty"`
}

// SignedInPayload payload.
type SignedInPayload struct {
	IdentityID int64  `json:"identity_id"`
	Email      string `json:"email"`
	Method     string `json:"method"`
}

// SignedOutPayload payload.
type SignedOutPayload struct {
	ServerAcknowledged bool `json:"server_acknowledged"`
}

// SessionExpiredPayload payload.
type SessionExpiredPayload struct {
	Reason string `json:"reason"`
}

// RefreshedPayload payload.
type RefreshedPayload struct {
	Scope string `json:"scope"`
}
