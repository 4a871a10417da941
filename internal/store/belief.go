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
	pgvector "github.com/pgvector/pgvector-go"
)

const beliefColumns = `id, statement, domain, confidence, evidence_ids, supporting_count,
	contradicting_count, derived_at, last_evaluated, supersedes_id, invalidated_at,
	invalidation_reason, importance, tags, fingerprint`

// BeliefStore persists belief records. The confidence floor and per-day decay
// rate are fixed at construction so bulk updates clamp in SQL.
type BeliefStore struct {
	db          *pgxpool.Pool
	floor       float32
	decayPerDay float64
}

func NewBeliefStore(db *pgxpool.Pool, floor float32, decayPerDay float64) *BeliefStore {
	return &BeliefStore{db: db, floor: floor, decayPerDay: decayPerDay}
}

func (s *BeliefStore) Create(ctx context.Context, b *domain.Belief) error {
	var fp *pgvector.Vector
	if len(b.Fingerprint) > 0 {
		v := pgvector.NewVector(b.Fingerprint)
		fp = &v
	}

	if b.Importance == 0 {
		b.Importance = domain.DefaultImportance
	}

	return s.db.QueryRow(ctx,
		`INSERT INTO beliefs (statement, domain, confidence, evidence_ids, supporting_count,
		                      contradicting_count, supersedes_id, importance, tags, fingerprint)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, derived_at, last_evaluated`,
		b.Statement, b.Domain, b.Confidence, b.EvidenceIDs, b.SupportingCount,
		b.ContradictingCount, b.SupersedesID, b.Importance, b.Tags, fp,
	).Scan(&b.ID, &b.DerivedAt, &b.LastEvaluated)
}

func (s *BeliefStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Belief, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+beliefColumns+` FROM beliefs WHERE id = $1`, id)

	b, err := scanBelief(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *BeliefStore) GetByDomain(ctx context.Context, d domain.BeliefDomain, includeInactive bool) ([]domain.Belief, error) {
	query := `SELECT ` + beliefColumns + ` FROM beliefs WHERE domain = $1`
	if !includeInactive {
		query += ` AND invalidated_at IS NULL`
	}
	query += ` ORDER BY confidence DESC, importance DESC`

	rows, err := s.db.Query(ctx, query, d)
	if err != nil {
		return nil, fmt.Errorf("get by domain query: %w", err)
	}
	defer rows.Close()

	return collectBeliefs(rows)
}

func (s *BeliefStore) GetActive(ctx context.Context, filter domain.BeliefFilter) ([]domain.Belief, error) {
	conditions, args := filterConditions(filter)

	query := fmt.Sprintf(
		`SELECT `+beliefColumns+` FROM beliefs WHERE %s
		 ORDER BY importance DESC, confidence DESC`,
		strings.Join(conditions, " AND "),
	)
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get active query: %w", err)
	}
	defer rows.Close()

	return collectBeliefs(rows)
}

// Update applies only the supplied fields. An empty change set reads the row
// back without issuing a write.
func (s *BeliefStore) Update(ctx context.Context, id uuid.UUID, changes domain.BeliefChanges) (*domain.Belief, error) {
	if changes.IsZero() {
		return s.GetByID(ctx, id)
	}

	var sets []string
	var args []any

	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if changes.Statement != nil {
		set("statement", *changes.Statement)
	}
	if changes.Confidence != nil {
		set("confidence", domain.ClampConfidence(*changes.Confidence, s.floor))
	}
	if changes.Importance != nil {
		set("importance", *changes.Importance)
	}
	if changes.Tags != nil {
		set("tags", *changes.Tags)
	}
	if changes.EvidenceIDs != nil {
		set("evidence_ids", *changes.EvidenceIDs)
	}
	if changes.Fingerprint != nil {
		if len(*changes.Fingerprint) == 0 {
			set("fingerprint", nil)
		} else {
			v := pgvector.NewVector(*changes.Fingerprint)
			set("fingerprint", &v)
		}
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE beliefs SET %s WHERE id = $%d RETURNING `+beliefColumns,
		strings.Join(sets, ", "), len(args),
	)

	b, err := scanBelief(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// Invalidate marks the belief inactive exactly once. The second call on the
// same id reports false without touching the stored reason or timestamp.
func (s *BeliefStore) Invalidate(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE beliefs SET invalidated_at = NOW(), invalidation_reason = $2
		 WHERE id = $1 AND invalidated_at IS NULL`,
		id, reason,
	)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	var exists bool
	if err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM beliefs WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, ErrNotFound
	}
	return false, nil
}

func (s *BeliefStore) IncrementSupporting(ctx context.Context, id uuid.UUID) error {
	return s.increment(ctx, id, "supporting_count")
}

func (s *BeliefStore) IncrementContradicting(ctx context.Context, id uuid.UUID) error {
	return s.increment(ctx, id, "contradicting_count")
}

func (s *BeliefStore) increment(ctx context.Context, id uuid.UUID, column string) error {
	tag, err := s.db.Exec(ctx,
		fmt.Sprintf(`UPDATE beliefs SET %s = %s + 1 WHERE id = $1`, column, column),
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustConfidence shifts every listed belief by delta, clamped to
// [floor, 1.0] in SQL so the sweep stays atomic at the row-set level.
func (s *BeliefStore) AdjustConfidence(ctx context.Context, ids []uuid.UUID, delta float32) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.Exec(ctx,
		`UPDATE beliefs
		 SET confidence = GREATEST($2::real, LEAST(1.0::real, confidence + $3))
		 WHERE id = ANY($1)`,
		ids, s.floor, delta,
	)
	return err
}

// ApplyDecay lowers confidence for every active belief above the floor by
// decayPerDay x fractional days since last_evaluated, clamped at the floor,
// and resets last_evaluated. One bulk statement, so the sweep is atomic.
// Decay is purely time-linear; it does not gate on recent domain activity.
func (s *BeliefStore) ApplyDecay(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE beliefs
		 SET confidence = GREATEST($1::real,
		         confidence - ($2 * EXTRACT(EPOCH FROM (NOW() - last_evaluated)) / 86400.0)::real),
		     last_evaluated = NOW()
		 WHERE invalidated_at IS NULL AND confidence > $1`,
		s.floor, s.decayPerDay,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *BeliefStore) StatsPerDomain(ctx context.Context) ([]domain.DomainStats, error) {
	rows, err := s.db.Query(ctx,
		`SELECT domain, COUNT(*), AVG(confidence)
		 FROM beliefs WHERE invalidated_at IS NULL
		 GROUP BY domain ORDER BY domain`,
	)
	if err != nil {
		return nil, fmt.Errorf("stats query: %w", err)
	}
	defer rows.Close()

	var stats []domain.DomainStats
	for rows.Next() {
		var st domain.DomainStats
		if err := rows.Scan(&st.Domain, &st.Count, &st.MeanConfidence); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

func (s *BeliefStore) Count(ctx context.Context, filter domain.BeliefFilter) (int, error) {
	conditions, args := filterConditions(filter)

	var count int
	err := s.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM beliefs WHERE %s`, strings.Join(conditions, " AND ")),
		args...,
	).Scan(&count)
	return count, err
}

// SearchKeyword runs a full-text match over statement and tags, ranked by
// text relevance.
func (s *BeliefStore) SearchKeyword(ctx context.Context, query string, filter domain.BeliefFilter) ([]domain.ScoredBelief, error) {
	conditions, args := filterConditions(filter)

	args = append(args, query)
	tsParam := len(args)
	conditions = append(conditions, fmt.Sprintf("search @@ plainto_tsquery('english', $%d)", tsParam))

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	args = append(args, limit)

	q := fmt.Sprintf(
		`SELECT `+beliefColumns+`, ts_rank(search, plainto_tsquery('english', $%d)) AS rank
		 FROM beliefs
		 WHERE %s
		 ORDER BY rank DESC
		 LIMIT $%d`,
		tsParam, strings.Join(conditions, " AND "), len(args),
	)

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("keyword search query: %w", err)
	}
	defer rows.Close()

	var results []domain.ScoredBelief
	for rows.Next() {
		sb := domain.ScoredBelief{Match: domain.MatchKeyword}
		var fp *pgvector.Vector
		if err := rows.Scan(
			&sb.ID, &sb.Statement, &sb.Domain, &sb.Confidence, &sb.EvidenceIDs,
			&sb.SupportingCount, &sb.ContradictingCount, &sb.DerivedAt, &sb.LastEvaluated,
			&sb.SupersedesID, &sb.InvalidatedAt, &sb.InvalidationReason, &sb.Importance,
			&sb.Tags, &fp, &sb.Score,
		); err != nil {
			return nil, fmt.Errorf("scan keyword row: %w", err)
		}
		if fp != nil {
			sb.Fingerprint = fp.Slice()
		}
		results = append(results, sb)
	}
	return results, rows.Err()
}

func filterConditions(filter domain.BeliefFilter) ([]string, []any) {
	var conditions []string
	var args []any

	if !filter.IncludeInactive {
		conditions = append(conditions, "invalidated_at IS NULL")
	}
	if filter.Domain != nil {
		args = append(args, *filter.Domain)
		conditions = append(conditions, fmt.Sprintf("domain = $%d", len(args)))
	}
	if filter.MinConfidence > 0 {
		args = append(args, filter.MinConfidence)
		conditions = append(conditions, fmt.Sprintf("confidence >= $%d", len(args)))
	}
	if len(conditions) == 0 {
		conditions = append(conditions, "TRUE")
	}
	return conditions, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBelief(row rowScanner) (*domain.Belief, error) {
	b := &domain.Belief{}
	var fp *pgvector.Vector
	if err := row.Scan(
		&b.ID, &b.Statement, &b.Domain, &b.Confidence, &b.EvidenceIDs,
		&b.SupportingCount, &b.ContradictingCount, &b.DerivedAt, &b.LastEvaluated,
		&b.SupersedesID, &b.InvalidatedAt, &b.InvalidationReason, &b.Importance,
		&b.Tags, &fp,
	); err != nil {
		return nil, err
	}
	if fp != nil {
		b.Fingerprint = fp.Slice()
	}
	return b, nil
}

func collectBeliefs(rows pgx.Rows) ([]domain.Belief, error) {
	var beliefs []domain.Belief
	for rows.Next() {
		b, err := scanBelief(rows)
		if err != nil {
			return nil, fmt.Errorf("scan belief row: %w", err)
		}
		beliefs = append(beliefs, *b)
	}
	return beliefs, rows.Err()
}
