package domain

import (
	"time"

	"github.com/google/uuid"
)

// BeliefDomain is the fixed vocabulary a belief is filed under.
type BeliefDomain string

const (
	DomainCodePattern      BeliefDomain = "code_pattern"
	DomainUserPreference   BeliefDomain = "user_preference"
	DomainProjectStructure BeliefDomain = "project_structure"
	DomainWorkflow         BeliefDomain = "workflow"
	DomainDecision         BeliefDomain = "decision"
	DomainConstraint       BeliefDomain = "constraint"
)

func ValidBeliefDomain(d string) bool {
	switch BeliefDomain(d) {
	case DomainCodePattern, DomainUserPreference, DomainProjectStructure,
		DomainWorkflow, DomainDecision, DomainConstraint:
		return true
	}
	return false
}

const (
	// DefaultConfidence seeds beliefs created without an explicit confidence.
	DefaultConfidence = 0.5
	// DefaultImportance is the ranking weight for beliefs created without one.
	DefaultImportance = 1
)

// Belief is a mutable, confidence-scored assertion derived from observed
// events. It is never physically deleted; invalidation is the terminal state.
type Belief struct {
	ID                 uuid.UUID    `json:"id"`
	Statement          string       `json:"statement"`
	Domain             BeliefDomain `json:"domain"`
	Confidence         float32      `json:"confidence"`
	EvidenceIDs        []string     `json:"evidence_ids,omitempty"`
	SupportingCount    int          `json:"supporting_count"`
	ContradictingCount int          `json:"contradicting_count"`
	DerivedAt          time.Time    `json:"derived_at"`
	LastEvaluated      time.Time    `json:"last_evaluated"`
	SupersedesID       *uuid.UUID   `json:"supersedes_id,omitempty"`
	InvalidatedAt      *time.Time   `json:"invalidated_at,omitempty"`
	InvalidationReason *string      `json:"invalidation_reason,omitempty"`
	Importance         int          `json:"importance"`
	Tags               []string     `json:"tags,omitempty"`
	Fingerprint        []float32    `json:"-"`
}

// Active reports whether the belief has not been invalidated.
func (b *Belief) Active() bool {
	return b.InvalidatedAt == nil
}

// ClampConfidence bounds c to [floor, 1.0].
func ClampConfidence(c, floor float32) float32 {
	if c < floor {
		return floor
	}
	if c > 1.0 {
		return 1.0
	}
	return c
}

// BeliefChanges is a partial-update patch: only non-nil fields are applied.
// Counter increments and the invalidation transition move through their
// dedicated store operations instead.
type BeliefChanges struct {
	Statement   *string
	Confidence  *float32
	Importance  *int
	Tags        *[]string
	EvidenceIDs *[]string
	Fingerprint *[]float32
}

// IsZero reports whether the patch carries no changes at all.
func (c BeliefChanges) IsZero() bool {
	return c.Statement == nil && c.Confidence == nil && c.Importance == nil &&
		c.Tags == nil && c.EvidenceIDs == nil && c.Fingerprint == nil
}

// BeliefFilter narrows read queries. Zero values mean "no constraint";
// invalidated beliefs are excluded unless IncludeInactive is set.
type BeliefFilter struct {
	Domain          *BeliefDomain
	MinConfidence   float32
	Limit           int
	IncludeInactive bool
}

// MatchKind labels how a search hit was found.
type MatchKind string

const (
	MatchKeyword  MatchKind = "keyword"
	MatchSemantic MatchKind = "semantic"
	MatchHybrid   MatchKind = "hybrid"
)

// ScoredBelief is a search hit with its ranking score.
type ScoredBelief struct {
	Belief
	Score float32   `json:"score"`
	Match MatchKind `json:"match"`
}

// DomainStats summarizes active beliefs within one domain.
type DomainStats struct {
	Domain         BeliefDomain `json:"domain"`
	Count          int          `json:"count"`
	MeanConfidence float32      `json:"mean_confidence"`
}
