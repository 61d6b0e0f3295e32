package events

import (
	"time"

	"github.com/garageops/dispatch-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestCreated     EventType = "request_created"
	EventRequestTriaged     EventType = "request_triaged"
	EventTechnicianAssigned EventType = "technician_assigned"
	EventJobScheduled       EventType = "job_scheduled"
	EventQuoteGenerated     EventType = "quote_generated"
	EventQuoteApproved      EventType = "quote_approved"
	EventJobClosed          EventType = "job_closed"
	EventRequestCancelled   EventType = "request_cancelled"
)

// Event represents a domain event emitted by services. Actor is a user id or
// the "system" sentinel.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RequestID string      `json:"request_id"`
	Actor     string      `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RequestTriagedPayload payload.
type RequestTriagedPayload struct {
	Priority    int                `json:"priority"`
	ServiceType domain.ServiceType `json:"service_type"`
}

// TechnicianAssignedPayload payload.
type TechnicianAssignedPayload struct {
	TechnicianID string  `json:"technician_id"`
	Score        float64 `json:"score"`
	Fallback     string  `json:"fallback,omitempty"`
}

// JobScheduledPayload payload.
type JobScheduledPayload struct {
	TechnicianID   string    `json:"technician_id"`
	ScheduledStart time.Time `json:"scheduled_start"`
	ScheduledEnd   time.Time `json:"scheduled_end"`
}

// QuoteGeneratedPayload payload.
type QuoteGeneratedPayload struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// QuoteApprovedPayload payload.
type QuoteApprovedPayload struct {
	Approved bool `json:"approved"`
}

// StatusChangedPayload payload for close/cancel transitions.
type StatusChangedPayload struct {
	OldStatus domain.RequestStatus `json:"old_status"`
	NewStatus domain.RequestStatus `json:"new_status"`
}
