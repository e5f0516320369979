package dto

import "github.com/google/uuid"

// RecountNotebookMessage asks the consumer to rebuild a notebook's entry counter.
type RecountNotebookMessage struct {
	NotebookId uuid.UUID `json:"notebook_id"`
	Reason     string    `json:"reason,omitempty"`
}
