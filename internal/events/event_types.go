package events

import (
	"time"

	"github.com/spec-kit/helpdesk-console/internal/domain"
)

// EventType enumerates client-side event identifiers.
type EventType string

const (
	EventTicketOpened        EventType = "ticket_opened"
	EventTicketClosed        EventType = "ticket_closed"
	EventMessagesAppended    EventType = "messages_appended"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketClaimed       EventType = "ticket_claimed"
)

// Event represents something that happened in the console session,
// consumed by notification listeners (the toast layer of the dashboard).
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// MessagesAppendedPayload payload.
type MessagesAppendedPayload struct {
	Count     int  `json:"count"`
	FirstLoad bool `json:"first_load"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.StatusID `json:"old_status"`
	NewStatus domain.StatusID `json:"new_status"`
}

// TicketClaimedPayload payload.
type TicketClaimedPayload struct {
	OperatorID int64 `json:"operator_id"`
}
