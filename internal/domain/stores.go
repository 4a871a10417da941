package domain

import (
	"context"

	"github.com/google/uuid"
)

// BeliefStore owns persistence of belief records. Every read path excludes
// invalidated beliefs unless the filter explicitly opts in.
type BeliefStore interface {
	Create(ctx context.Context, b *Belief) error
	GetByID(ctx context.Context, id uuid.UUID) (*Belief, error)
	GetByDomain(ctx context.Context, domain BeliefDomain, includeInactive bool) ([]Belief, error)
	GetActive(ctx context.Context, filter BeliefFilter) ([]Belief, error)
	Update(ctx context.Context, id uuid.UUID, changes BeliefChanges) (*Belief, error)
	Invalidate(ctx context.Context, id uuid.UUID, reason string) (bool, error)
	IncrementSupporting(ctx context.Context, id uuid.UUID) error
	IncrementContradicting(ctx context.Context, id uuid.UUID) error
	AdjustConfidence(ctx context.Context, ids []uuid.UUID, delta float32) error
	ApplyDecay(ctx context.Context) (int64, error)
	StatsPerDomain(ctx context.Context) ([]DomainStats, error)
	Count(ctx context.Context, filter BeliefFilter) (int, error)
	SearchKeyword(ctx context.Context, query string, filter BeliefFilter) ([]ScoredBelief, error)
}

// EventStore is the append-only observed-event log.
type EventStore interface {
	Append(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	List(ctx context.Context, filter EventFilter) ([]Event, error)
	SearchKeyword(ctx context.Context, query string, limit int) ([]Event, error)
}

// SessionStore groups events into working sessions.
type SessionStore interface {
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	End(ctx context.Context, id uuid.UUID) (bool, error)
	ListRecent(ctx context.Context, limit int) ([]Session, error)
}
