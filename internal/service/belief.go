package service

import (
	"context"
	"errors"

	"github.com/doxastic/beliefd/internal/domain"
	"github.com/doxastic/beliefd/internal/fingerprint"
	"github.com/doxastic/beliefd/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrBeliefNotFound    = errors.New("belief not found")
	ErrStatementEmpty    = errors.New("statement is required")
	ErrInvalidDomain     = errors.New("invalid belief domain")
	ErrReasonEmpty       = errors.New("invalidation reason is required")
	ErrSearchQueryEmpty  = errors.New("query is required")
	ErrInvalidConfidence = errors.New("confidence must be within [0, 1]")
)

// BeliefService owns the belief lifecycle: creation with fingerprint
// defaulting, partial updates, and the one-way invalidation transition.
type BeliefService struct {
	beliefs domain.BeliefStore
	dims    int
	floor   float32
	logger  *zap.Logger
}

func NewBeliefService(bs domain.BeliefStore, dims int, floor float32, logger *zap.Logger) *BeliefService {
	return &BeliefService{beliefs: bs, dims: dims, floor: floor, logger: logger}
}

func (s *BeliefService) Create(ctx context.Context, b *domain.Belief) error {
	if b.Statement == "" {
		return ErrStatementEmpty
	}
	if !domain.ValidBeliefDomain(string(b.Domain)) {
		return ErrInvalidDomain
	}
	if b.Confidence < 0 || b.Confidence > 1 {
		return ErrInvalidConfidence
	}

	if b.Confidence == 0 {
		b.Confidence = domain.DefaultConfidence
	}
	b.Confidence = domain.ClampConfidence(b.Confidence, s.floor)

	// Counters are seeded from the evidence the belief was derived from;
	// contradictions only accumulate after creation.
	b.SupportingCount = len(b.EvidenceIDs)
	b.ContradictingCount = 0

	if len(b.Fingerprint) == 0 {
		b.Fingerprint = fingerprint.Generate(b.Statement, s.dims)
	}

	if err := s.beliefs.Create(ctx, b); err != nil {
		return err
	}

	s.logger.Info("belief created",
		zap.String("belief_id", b.ID.String()),
		zap.String("domain", string(b.Domain)),
		zap.Float32("confidence", b.Confidence))
	return nil
}

func (s *BeliefService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Belief, error) {
	b, err := s.beliefs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrBeliefNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *BeliefService) GetActive(ctx context.Context, filter domain.BeliefFilter) ([]domain.Belief, error) {
	return s.beliefs.GetActive(ctx, filter)
}

func (s *BeliefService) GetByDomain(ctx context.Context, d domain.BeliefDomain, includeInactive bool) ([]domain.Belief, error) {
	if !domain.ValidBeliefDomain(string(d)) {
		return nil, ErrInvalidDomain
	}
	return s.beliefs.GetByDomain(ctx, d, includeInactive)
}

// Update applies a partial patch. A rewritten statement without an explicit
// fingerprint gets its fingerprint recomputed so similarity search stays in
// step with the text.
func (s *BeliefService) Update(ctx context.Context, id uuid.UUID, changes domain.BeliefChanges) (*domain.Belief, error) {
	if changes.Statement != nil && changes.Fingerprint == nil {
		if *changes.Statement == "" {
			return nil, ErrStatementEmpty
		}
		fp := fingerprint.Generate(*changes.Statement, s.dims)
		changes.Fingerprint = &fp
	}
	if changes.Confidence != nil && (*changes.Confidence < 0 || *changes.Confidence > 1) {
		return nil, ErrInvalidConfidence
	}

	b, err := s.beliefs.Update(ctx, id, changes)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrBeliefNotFound
		}
		return nil, err
	}
	return b, nil
}

// Invalidate performs the terminal deactivation transition. It reports false
// when the belief was already invalidated; the original reason and timestamp
// are never overwritten.
func (s *BeliefService) Invalidate(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	if reason == "" {
		return false, ErrReasonEmpty
	}

	ok, err := s.beliefs.Invalidate(ctx, id, reason)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, ErrBeliefNotFound
		}
		return false, err
	}
	if ok {
		s.logger.Info("belief invalidated",
			zap.String("belief_id", id.String()),
			zap.String("reason", reason))
	}
	return ok, nil
}

// AdjustConfidence shifts the listed beliefs by delta, floor-clamped. An
// empty id list is a no-op, not an error.
func (s *BeliefService) AdjustConfidence(ctx context.Context, ids []uuid.UUID, delta float32) error {
	return s.beliefs.AdjustConfidence(ctx, ids, delta)
}

func (s *BeliefService) StatsPerDomain(ctx context.Context) ([]domain.DomainStats, error) {
	return s.beliefs.StatsPerDomain(ctx)
}

func (s *BeliefService) Count(ctx context.Context, filter domain.BeliefFilter) (int, error) {
	return s.beliefs.Count(ctx, filter)
}
