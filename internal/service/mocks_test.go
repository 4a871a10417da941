package service

import (
	"context"
	"strings"
	"time"

	"github.com/doxastic/beliefd/internal/domain"
	"github.com/doxastic/beliefd/internal/store"
	"github.com/google/uuid"
)

// mockBeliefStore is an in-memory domain.BeliefStore. Iteration order follows
// insertion order so keyword ranking is deterministic in tests.
type mockBeliefStore struct {
	beliefs map[uuid.UUID]*domain.Belief
	order   []uuid.UUID

	floor       float32
	decayPerDay float64
}

func newMockBeliefStore() *mockBeliefStore {
	return &mockBeliefStore{
		beliefs:     make(map[uuid.UUID]*domain.Belief),
		floor:       0.3,
		decayPerDay: 0.01,
	}
}

func (m *mockBeliefStore) Create(ctx context.Context, b *domain.Belief) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := time.Now()
	b.DerivedAt = now
	b.LastEvaluated = now

	clone := *b
	m.beliefs[b.ID] = &clone
	m.order = append(m.order, b.ID)
	return nil
}

func (m *mockBeliefStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Belief, error) {
	b, ok := m.beliefs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (m *mockBeliefStore) GetByDomain(ctx context.Context, d domain.BeliefDomain, includeInactive bool) ([]domain.Belief, error) {
	var out []domain.Belief
	for _, id := range m.order {
		b := m.beliefs[id]
		if b.Domain != d {
			continue
		}
		if !includeInactive && !b.Active() {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (m *mockBeliefStore) GetActive(ctx context.Context, filter domain.BeliefFilter) ([]domain.Belief, error) {
	var out []domain.Belief
	for _, id := range m.order {
		b := m.beliefs[id]
		if !filter.IncludeInactive && !b.Active() {
			continue
		}
		if filter.Domain != nil && b.Domain != *filter.Domain {
			continue
		}
		if filter.MinConfidence > 0 && b.Confidence < filter.MinConfidence {
			continue
		}
		out = append(out, *b)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (m *mockBeliefStore) Update(ctx context.Context, id uuid.UUID, changes domain.BeliefChanges) (*domain.Belief, error) {
	b, ok := m.beliefs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if changes.Statement != nil {
		b.Statement = *changes.Statement
	}
	if changes.Confidence != nil {
		b.Confidence = domain.ClampConfidence(*changes.Confidence, m.floor)
	}
	if changes.Importance != nil {
		b.Importance = *changes.Importance
	}
	if changes.Tags != nil {
		b.Tags = *changes.Tags
	}
	if changes.EvidenceIDs != nil {
		b.EvidenceIDs = *changes.EvidenceIDs
	}
	if changes.Fingerprint != nil {
		b.Fingerprint = *changes.Fingerprint
	}
	clone := *b
	return &clone, nil
}

func (m *mockBeliefStore) Invalidate(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	b, ok := m.beliefs[id]
	if !ok {
		return false, store.ErrNotFound
	}
	if !b.Active() {
		return false, nil
	}
	now := time.Now()
	b.InvalidatedAt = &now
	b.InvalidationReason = &reason
	return true, nil
}

func (m *mockBeliefStore) IncrementSupporting(ctx context.Context, id uuid.UUID) error {
	b, ok := m.beliefs[id]
	if !ok {
		return store.ErrNotFound
	}
	b.SupportingCount++
	return nil
}

func (m *mockBeliefStore) IncrementContradicting(ctx context.Context, id uuid.UUID) error {
	b, ok := m.beliefs[id]
	if !ok {
		return store.ErrNotFound
	}
	b.ContradictingCount++
	return nil
}

func (m *mockBeliefStore) AdjustConfidence(ctx context.Context, ids []uuid.UUID, delta float32) error {
	for _, id := range ids {
		b, ok := m.beliefs[id]
		if !ok {
			continue
		}
		b.Confidence = domain.ClampConfidence(b.Confidence+delta, m.floor)
	}
	return nil
}

func (m *mockBeliefStore) ApplyDecay(ctx context.Context) (int64, error) {
	now := time.Now()
	var touched int64
	for _, b := range m.beliefs {
		if !b.Active() || b.Confidence <= m.floor {
			continue
		}
		b.Confidence = DecayedConfidence(b.Confidence, now.Sub(b.LastEvaluated), m.decayPerDay, m.floor)
		b.LastEvaluated = now
		touched++
	}
	return touched, nil
}

func (m *mockBeliefStore) StatsPerDomain(ctx context.Context) ([]domain.DomainStats, error) {
	sums := make(map[domain.BeliefDomain]*domain.DomainStats)
	totals := make(map[domain.BeliefDomain]float64)
	var keys []domain.BeliefDomain
	for _, id := range m.order {
		b := m.beliefs[id]
		if !b.Active() {
			continue
		}
		st, ok := sums[b.Domain]
		if !ok {
			st = &domain.DomainStats{Domain: b.Domain}
			sums[b.Domain] = st
			keys = append(keys, b.Domain)
		}
		st.Count++
		totals[b.Domain] += float64(b.Confidence)
	}

	out := make([]domain.DomainStats, 0, len(keys))
	for _, k := range keys {
		st := sums[k]
		st.MeanConfidence = float32(totals[k] / float64(st.Count))
		out = append(out, *st)
	}
	return out, nil
}

func (m *mockBeliefStore) Count(ctx context.Context, filter domain.BeliefFilter) (int, error) {
	unlimited := filter
	unlimited.Limit = 0
	beliefs, err := m.GetActive(ctx, unlimited)
	if err != nil {
		return 0, err
	}
	return len(beliefs), nil
}

// SearchKeyword matches on lowercase substring instead of Postgres full-text
// search; hits come back in insertion order with descending synthetic ranks.
func (m *mockBeliefStore) SearchKeyword(ctx context.Context, query string, filter domain.BeliefFilter) ([]domain.ScoredBelief, error) {
	q := strings.ToLower(query)
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}

	var out []domain.ScoredBelief
	for _, id := range m.order {
		b := m.beliefs[id]
		if !filter.IncludeInactive && !b.Active() {
			continue
		}
		if filter.Domain != nil && b.Domain != *filter.Domain {
			continue
		}
		if filter.MinConfidence > 0 && b.Confidence < filter.MinConfidence {
			continue
		}
		haystack := strings.ToLower(b.Statement + " " + strings.Join(b.Tags, " "))
		if !strings.Contains(haystack, q) {
			continue
		}
		out = append(out, domain.ScoredBelief{
			Belief: *b,
			Score:  1.0 - float32(len(out))*0.05,
			Match:  domain.MatchKeyword,
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
