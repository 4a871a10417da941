package fingerprint

import (
	"math"
	"testing"
)

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate("prefers async/await over callbacks", DefaultDims)
	b := Generate("prefers async/await over callbacks", DefaultDims)

	if len(a) != DefaultDims || len(b) != DefaultDims {
		t.Fatalf("expected %d dims, got %d and %d", DefaultDims, len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vectors differ at index %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestGenerate_UnitNorm(t *testing.T) {
	vec := Generate("the repo uses table-driven tests", DefaultDims)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)

	if math.Abs(norm-1.0) > 0.001 {
		t.Errorf("expected unit norm, got %f", norm)
	}
}

func TestGenerate_EmptyInputIsZeroVector(t *testing.T) {
	vec := Generate("", DefaultDims)

	if len(vec) != DefaultDims {
		t.Fatalf("expected %d dims, got %d", DefaultDims, len(vec))
	}
	for i, v := range vec {
		if v != 0 {
			t.Fatalf("expected zero vector, got %v at index %d", v, i)
		}
	}
}

func TestGenerate_CaseInsensitive(t *testing.T) {
	a := Generate("Prefers Tabs Over Spaces", DefaultDims)
	b := Generate("prefers tabs over spaces", DefaultDims)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("case should not affect the fingerprint, differ at index %d", i)
		}
	}
}

func TestGenerate_DistinctTextDistinctVector(t *testing.T) {
	a := Generate("always run the linter before committing", DefaultDims)
	b := Generate("database migrations live under migrations/", DefaultDims)

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("expected different statements to produce different fingerprints")
	}
}

func TestGenerate_DefaultsDims(t *testing.T) {
	vec := Generate("anything", 0)
	if len(vec) != DefaultDims {
		t.Errorf("expected fallback to %d dims, got %d", DefaultDims, len(vec))
	}
}

func TestSimilarity_SelfIsOne(t *testing.T) {
	vec := Generate("error wrapping with fmt.Errorf and %w", DefaultDims)

	score, err := Similarity(vec, vec)
	if err != nil {
		t.Fatalf("Similarity failed: %v", err)
	}
	if math.Abs(float64(score)-1.0) > 0.001 {
		t.Errorf("self-similarity = %f, expected ~1.0", score)
	}
}

func TestSimilarity_SharedWordsScoreHigher(t *testing.T) {
	query := Generate("async await", DefaultDims)
	near := Generate("prefers async await style", DefaultDims)
	far := Generate("uses callbacks everywhere", DefaultDims)

	nearScore, err := Similarity(query, near)
	if err != nil {
		t.Fatalf("Similarity failed: %v", err)
	}
	farScore, err := Similarity(query, far)
	if err != nil {
		t.Fatalf("Similarity failed: %v", err)
	}

	if nearScore <= farScore {
		t.Errorf("expected overlapping text to score higher: near=%f far=%f", nearScore, farScore)
	}
}

func TestSimilarity_DimensionMismatch(t *testing.T) {
	a := Generate("x", 128)
	b := Generate("x", 384)

	if _, err := Similarity(a, b); err != ErrDimensionMismatch {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestSimilarity_ZeroVectorIsZero(t *testing.T) {
	zero := make([]float32, DefaultDims)
	vec := Generate("something", DefaultDims)

	score, err := Similarity(zero, vec)
	if err != nil {
		t.Fatalf("Similarity failed: %v", err)
	}
	if score != 0 {
		t.Errorf("expected 0 against zero vector, got %f", score)
	}
}
