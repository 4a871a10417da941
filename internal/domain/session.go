package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session groups events observed in one working stretch. Pure bookkeeping: no
// engine behavior depends on session boundaries.
type Session struct {
	ID        uuid.UUID  `json:"id"`
	Label     string     `json:"label,omitempty"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}
