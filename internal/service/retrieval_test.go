package service

import (
	"context"
	"testing"

	"github.com/doxastic/beliefd/internal/domain"
	"go.uber.org/zap"
)

func seedBelief(t *testing.T, store *mockBeliefStore, statement string, tags ...string) *domain.Belief {
	t.Helper()
	b := &domain.Belief{
		Statement: statement,
		Domain:    domain.DomainCodePattern,
		Tags:      tags,
	}
	svc := newTestBeliefService(store)
	if err := svc.Create(context.Background(), b); err != nil {
		t.Fatalf("seed failed for %q: %v", statement, err)
	}
	return b
}

func TestSearch_EmptyQueryRejected(t *testing.T) {
	svc := NewRetrievalService(newMockBeliefStore(), 384, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.SearchKeyword(ctx, "", domain.BeliefFilter{}); err != ErrSearchQueryEmpty {
		t.Errorf("keyword: expected ErrSearchQueryEmpty, got %v", err)
	}
	if _, err := svc.SearchSemantic(ctx, "", domain.BeliefFilter{}); err != ErrSearchQueryEmpty {
		t.Errorf("semantic: expected ErrSearchQueryEmpty, got %v", err)
	}
	if _, err := svc.SearchHybrid(ctx, "", domain.BeliefFilter{}); err != ErrSearchQueryEmpty {
		t.Errorf("hybrid: expected ErrSearchQueryEmpty, got %v", err)
	}
}

func TestSearchSemantic_RanksByTextOverlap(t *testing.T) {
	store := newMockBeliefStore()
	near := seedBelief(t, store, "prefers async await over promise chains")
	far := seedBelief(t, store, "uses callbacks everywhere")

	svc := NewRetrievalService(store, 384, zap.NewNop())
	results, err := svc.SearchSemantic(context.Background(), "async await", domain.BeliefFilter{})
	if err != nil {
		t.Fatalf("SearchSemantic failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != near.ID {
		t.Errorf("expected %q first, got %q", near.Statement, results[0].Statement)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("scores not descending: %v then %v", results[0].Score, results[1].Score)
	}
	if results[1].ID != far.ID {
		t.Errorf("expected %q second", far.Statement)
	}
	for _, r := range results {
		if r.Match != domain.MatchSemantic {
			t.Errorf("expected semantic match kind, got %q", r.Match)
		}
	}
}

func TestSearchSemantic_SkipsMissingFingerprints(t *testing.T) {
	store := newMockBeliefStore()
	seedBelief(t, store, "has a fingerprint")

	// Inserted behind the service, so no fingerprint was generated.
	bare := &domain.Belief{Statement: "no fingerprint", Domain: domain.DomainWorkflow, Confidence: 0.5}
	if err := store.Create(context.Background(), bare); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	svc := NewRetrievalService(store, 384, zap.NewNop())
	results, err := svc.SearchSemantic(context.Background(), "fingerprint", domain.BeliefFilter{})
	if err != nil {
		t.Fatalf("SearchSemantic failed: %v", err)
	}

	for _, r := range results {
		if r.ID == bare.ID {
			t.Error("belief without a fingerprint should not appear in semantic results")
		}
	}
}

func TestSearchSemantic_LimitTruncatesAfterRanking(t *testing.T) {
	store := newMockBeliefStore()
	for _, s := range []string{
		"go modules pin dependency versions",
		"go vet runs in continuous integration",
		"gofmt is enforced by the pre-commit hook",
		"generics arrived in go 1.18",
		"goroutine leaks show up in the profiler",
	} {
		seedBelief(t, store, s)
	}

	svc := NewRetrievalService(store, 384, zap.NewNop())
	results, err := svc.SearchSemantic(context.Background(), "go tooling", domain.BeliefFilter{Limit: 3})
	if err != nil {
		t.Fatalf("SearchSemantic failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("scores not descending at index %d", i)
		}
	}
}

func TestSearchHybrid_MergesBothPaths(t *testing.T) {
	store := newMockBeliefStore()
	// Found by both paths: statement contains the query text.
	both := seedBelief(t, store, "error wrapping uses the errors package")
	// Keyword-only path: the query appears only in a tag, which the
	// fingerprint does not cover.
	kwOnly := seedBelief(t, store, "migrations run at deploy time", "errors")

	svc := NewRetrievalService(store, 384, zap.NewNop())
	results, err := svc.SearchHybrid(context.Background(), "errors", domain.BeliefFilter{})
	if err != nil {
		t.Fatalf("SearchHybrid failed: %v", err)
	}

	byID := make(map[string]domain.ScoredBelief, len(results))
	for _, r := range results {
		if _, dup := byID[r.ID.String()]; dup {
			t.Fatalf("duplicate result for %s", r.ID)
		}
		byID[r.ID.String()] = r
	}

	hit, ok := byID[both.ID.String()]
	if !ok {
		t.Fatal("expected both-path belief in results")
	}
	if hit.Match != domain.MatchHybrid {
		t.Errorf("both-path hit should be marked hybrid, got %q", hit.Match)
	}

	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("scores not descending at index %d", i)
		}
	}

	// kwOnly also gets a semantic score here (every seeded belief has a
	// fingerprint), so it may be semantic or hybrid, never missing.
	if _, ok := byID[kwOnly.ID.String()]; !ok {
		t.Error("expected keyword-tagged belief in results")
	}
}

func TestSearchHybrid_KeywordOnlyFixedScore(t *testing.T) {
	store := newMockBeliefStore()
	b := seedBelief(t, store, "deployment checklist lives in the wiki", "runbook")
	// Drop the fingerprint so the semantic path cannot see it.
	store.beliefs[b.ID].Fingerprint = nil

	svc := NewRetrievalService(store, 384, zap.NewNop())
	results, err := svc.SearchHybrid(context.Background(), "runbook", domain.BeliefFilter{})
	if err != nil {
		t.Fatalf("SearchHybrid failed: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Score != 0.5 {
		t.Errorf("keyword-only hit should score 0.5, got %v", results[0].Score)
	}
	if results[0].Match != domain.MatchKeyword {
		t.Errorf("expected keyword match kind, got %q", results[0].Match)
	}
}

func TestSearchHybrid_RespectsLimit(t *testing.T) {
	store := newMockBeliefStore()
	for _, s := range []string{
		"cache invalidation is handled by the worker",
		"cache keys embed the tenant id",
		"cache ttl defaults to five minutes",
		"cache misses fall through to postgres",
	} {
		seedBelief(t, store, s)
	}

	svc := NewRetrievalService(store, 384, zap.NewNop())
	results, err := svc.SearchHybrid(context.Background(), "cache", domain.BeliefFilter{Limit: 2})
	if err != nil {
		t.Fatalf("SearchHybrid failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected limit of 2 to hold, got %d results", len(results))
	}
}

func TestSearchKeyword_DefaultsLimit(t *testing.T) {
	store := newMockBeliefStore()
	for i := 0; i < 15; i++ {
		seedBelief(t, store, "repeated keyword statement about logging")
	}

	svc := NewRetrievalService(store, 384, zap.NewNop())
	results, err := svc.SearchKeyword(context.Background(), "logging", domain.BeliefFilter{})
	if err != nil {
		t.Fatalf("SearchKeyword failed: %v", err)
	}
	if len(results) != DefaultSearchLimit {
		t.Errorf("expected default limit %d, got %d", DefaultSearchLimit, len(results))
	}
}
