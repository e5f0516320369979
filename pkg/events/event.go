package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "NOTEBOOK_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

const (
	NotebookCreated   = "NOTEBOOK_CREATED"
	NotebookDeleted   = "NOTEBOOK_DELETED"
	ErrorNoteCreated  = "ERROR_NOTE_CREATED"
	ErrorNoteDeleted  = "ERROR_NOTE_DELETED"
	ErrorNoteEnrolled = "ERROR_NOTE_ENROLLED"
	ErrorNoteReviewed = "ERROR_NOTE_REVIEWED"

	// ReviewItemRemoved is published by the review system when a user drops an item from
	// their review queue.
	ReviewItemRemoved = "REVIEW_ITEM_REMOVED"
)

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now().UTC()}
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
