package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event is one append-only record in the observed-event log. Beliefs reference
// event ids as opaque evidence strings; events themselves are never mutated.
type Event struct {
	ID        uuid.UUID      `json:"id"`
	SessionID *uuid.UUID     `json:"session_id,omitempty"`
	Kind      string         `json:"kind"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// EventFilter narrows event listings.
type EventFilter struct {
	SessionID *uuid.UUID
	Kind      *string
	Limit     int
}
