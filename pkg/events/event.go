package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "DOCUMENT_STATUS_CHANGED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic Event implementation used across the service.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Event type codes.
const (
	TypeDocumentStatusChanged = "DOCUMENT_STATUS_CHANGED"
	TypeContextChanged        = "CONTEXT_CHANGED"
)

// NewDocumentStatusChanged reports a per-record document status
// transition for one client's context.
func NewDocumentStatusChanged(clientID, noticeID, status string, processed, total int) Event {
	return BaseEvent{
		Type: TypeDocumentStatusChanged,
		Data: map[string]interface{}{
			"client_id":       clientID,
			"notice_id":       noticeID,
			"status":          status,
			"processed_count": processed,
			"document_count":  total,
		},
		OccurredAt: time.Now(),
	}
}

// NewContextChanged reports a registry mutation (add/remove/clear).
func NewContextChanged(clientID, action, noticeID string) Event {
	return BaseEvent{
		Type: TypeContextChanged,
		Data: map[string]interface{}{
			"client_id": clientID,
			"action":    action,
			"notice_id": noticeID,
		},
		OccurredAt: time.Now(),
	}
}
