package service

import (
	"context"
	"sort"

	"github.com/doxastic/beliefd/internal/domain"
	"github.com/doxastic/beliefd/internal/fingerprint"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultSearchLimit caps result lists when the caller doesn't set one.
	DefaultSearchLimit = 10
	// keywordRankStep is the positional discount per keyword rank in hybrid merge.
	keywordRankStep = 0.1
	// keywordOnlyScore is the fixed score for hits found only by keyword match.
	// Deliberately capped at 0.5 so semantic and hybrid hits can outrank them.
	keywordOnlyScore = 0.5
)

// RetrievalService ranks beliefs by full-text relevance, fingerprint cosine
// similarity, or a merged blend of both. All entry points are read-only.
type RetrievalService struct {
	beliefs domain.BeliefStore
	dims    int
	logger  *zap.Logger
}

func NewRetrievalService(bs domain.BeliefStore, dims int, logger *zap.Logger) *RetrievalService {
	return &RetrievalService{beliefs: bs, dims: dims, logger: logger}
}

// SearchKeyword ranks active beliefs by full-text relevance over statement
// and tags.
func (s *RetrievalService) SearchKeyword(ctx context.Context, query string, filter domain.BeliefFilter) ([]domain.ScoredBelief, error) {
	if query == "" {
		return nil, ErrSearchQueryEmpty
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultSearchLimit
	}
	return s.beliefs.SearchKeyword(ctx, query, filter)
}

// SearchSemantic fingerprints the query and ranks active beliefs by cosine
// similarity. Beliefs without a stored fingerprint are skipped.
func (s *RetrievalService) SearchSemantic(ctx context.Context, query string, filter domain.BeliefFilter) ([]domain.ScoredBelief, error) {
	if query == "" {
		return nil, ErrSearchQueryEmpty
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	queryFP := fingerprint.Generate(query, s.dims)

	candidates := filter
	candidates.Limit = 0 // score the full active set, truncate after ranking
	beliefs, err := s.beliefs.GetActive(ctx, candidates)
	if err != nil {
		return nil, err
	}

	results := make([]domain.ScoredBelief, 0, len(beliefs))
	for _, b := range beliefs {
		if len(b.Fingerprint) == 0 {
			continue
		}
		score, err := fingerprint.Similarity(queryFP, b.Fingerprint)
		if err != nil {
			return nil, err
		}
		results = append(results, domain.ScoredBelief{
			Belief: b,
			Score:  score,
			Match:  domain.MatchSemantic,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// SearchHybrid merges keyword and semantic rankings into one ordered list.
// Both searches over-fetch at twice the requested limit; hits found by both
// paths score the average of their semantic score and keyword positional
// score, keyword-only hits are appended at a fixed 0.5.
func (s *RetrievalService) SearchHybrid(ctx context.Context, query string, filter domain.BeliefFilter) ([]domain.ScoredBelief, error) {
	if query == "" {
		return nil, ErrSearchQueryEmpty
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	doubled := filter
	doubled.Limit = limit * 2

	keyword, err := s.beliefs.SearchKeyword(ctx, query, doubled)
	if err != nil {
		return nil, err
	}
	semantic, err := s.SearchSemantic(ctx, query, doubled)
	if err != nil {
		return nil, err
	}

	// Positional discount: rank 0 scores 1.0, each step down costs 0.1.
	keywordScore := make(map[uuid.UUID]float32, len(keyword))
	for i, hit := range keyword {
		keywordScore[hit.ID] = 1.0 - float32(i)*keywordRankStep
	}

	visited := make(map[uuid.UUID]bool, len(semantic))
	merged := make([]domain.ScoredBelief, 0, len(semantic)+len(keyword))

	for _, hit := range semantic {
		if kw, ok := keywordScore[hit.ID]; ok {
			hit.Score = (hit.Score + kw) / 2
			hit.Match = domain.MatchHybrid
		}
		visited[hit.ID] = true
		merged = append(merged, hit)
	}

	for _, hit := range keyword {
		if visited[hit.ID] {
			continue
		}
		hit.Score = keywordOnlyScore
		hit.Match = domain.MatchKeyword
		merged = append(merged, hit)
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}
