package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/doxastic/beliefd/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventColumns = `id, session_id, kind, content, metadata, created_at`

// EventStore is the append-only observed-event log. Rows are only ever
// inserted; beliefs reference them by id as opaque evidence strings.
type EventStore struct {
	db *pgxpool.Pool
}

func NewEventStore(db *pgxpool.Pool) *EventStore {
	return &EventStore{db: db}
}

func (s *EventStore) Append(ctx context.Context, e *domain.Event) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO events (session_id, kind, content, metadata)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		e.SessionID, e.Kind, e.Content, e.Metadata,
	).Scan(&e.ID, &e.CreatedAt)
}

func (s *EventStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	e := &domain.Event{}
	err := s.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id,
	).Scan(&e.ID, &e.SessionID, &e.Kind, &e.Content, &e.Metadata, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (s *EventStore) List(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error) {
	conditions := []string{"TRUE"}
	var args []any

	if filter.SessionID != nil {
		args = append(args, *filter.SessionID)
		conditions = append(conditions, fmt.Sprintf("session_id = $%d", len(args)))
	}
	if filter.Kind != nil {
		args = append(args, *filter.Kind)
		conditions = append(conditions, fmt.Sprintf("kind = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)

	query := fmt.Sprintf(
		`SELECT `+eventColumns+` FROM events WHERE %s ORDER BY created_at DESC LIMIT $%d`,
		strings.Join(conditions, " AND "), len(args),
	)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events query: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// SearchKeyword runs a full-text match over event content.
func (s *EventStore) SearchKeyword(ctx context.Context, query string, limit int) ([]domain.Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE search @@ plainto_tsquery('english', $1)
		 ORDER BY ts_rank(search, plainto_tsquery('english', $1)) DESC
		 LIMIT $2`,
		query, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("event search query: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

func collectEvents(rows pgx.Rows) ([]domain.Event, error) {
	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Kind, &e.Content, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
