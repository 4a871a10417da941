package service

import (
	"context"
	"errors"

	"github.com/doxastic/beliefd/internal/domain"
	"github.com/doxastic/beliefd/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TrackerService is counter bookkeeping for reinforcement and contradiction.
// The two signals are independent +1 operations with no confidence coupling;
// crossing the contradiction threshold only flags a belief for review, it
// never invalidates automatically.
type TrackerService struct {
	beliefs   domain.BeliefStore
	threshold int
	logger    *zap.Logger
}

func NewTrackerService(bs domain.BeliefStore, threshold int, logger *zap.Logger) *TrackerService {
	return &TrackerService{beliefs: bs, threshold: threshold, logger: logger}
}

// ReviewStatus reports a belief's evidence counters against the configured
// contradiction threshold.
type ReviewStatus struct {
	BeliefID           uuid.UUID `json:"belief_id"`
	SupportingCount    int       `json:"supporting_count"`
	ContradictingCount int       `json:"contradicting_count"`
	Threshold          int       `json:"threshold"`
	FlaggedForReview   bool      `json:"flagged_for_review"`
}

func (s *TrackerService) Reinforce(ctx context.Context, id uuid.UUID) error {
	if err := s.beliefs.IncrementSupporting(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrBeliefNotFound
		}
		return err
	}
	return nil
}

func (s *TrackerService) Contradict(ctx context.Context, id uuid.UUID) error {
	if err := s.beliefs.IncrementContradicting(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrBeliefNotFound
		}
		return err
	}

	b, err := s.beliefs.GetByID(ctx, id)
	if err == nil && s.Flagged(b) {
		s.logger.Warn("belief flagged for review",
			zap.String("belief_id", id.String()),
			zap.Int("contradicting_count", b.ContradictingCount),
			zap.Int("threshold", s.threshold))
	}
	return nil
}

// Flagged reports whether the belief has accumulated enough contradicting
// evidence to warrant review.
func (s *TrackerService) Flagged(b *domain.Belief) bool {
	return b.ContradictingCount >= s.threshold
}

func (s *TrackerService) Status(ctx context.Context, id uuid.UUID) (*ReviewStatus, error) {
	b, err := s.beliefs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrBeliefNotFound
		}
		return nil, err
	}
	return &ReviewStatus{
		BeliefID:           b.ID,
		SupportingCount:    b.SupportingCount,
		ContradictingCount: b.ContradictingCount,
		Threshold:          s.threshold,
		FlaggedForReview:   s.Flagged(b),
	}, nil
}
