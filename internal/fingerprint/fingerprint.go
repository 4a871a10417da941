// Package fingerprint turns free text into fixed-dimension unit vectors for
// approximate similarity ranking. The projection is a deterministic
// character-ngram hash, not a learned embedding: collisions are expected, the
// contract is only determinism and stable normalization.
package fingerprint

import (
	"errors"
	"math"
	"strings"
)

// DefaultDims is the vector dimensionality used when callers don't override it.
const DefaultDims = 384

// ErrDimensionMismatch is returned when two vectors of different lengths are
// compared. It signals caller misuse, not a low-similarity result.
var ErrDimensionMismatch = errors.New("fingerprint: dimension mismatch")

// Generate computes the fingerprint of text as a unit vector of length dims.
// Identical input always yields a bit-identical vector. Empty input yields the
// zero vector.
func Generate(text string, dims int) []float32 {
	if dims <= 0 {
		dims = DefaultDims
	}

	acc := make([]float64, dims)
	runes := []rune(strings.ToLower(text))

	for i, r := range runes {
		code := int(r)

		// Primary character-position contribution.
		acc[(code*(i+1))%dims] += 1.0 / float64(i+1)

		// Bigram contribution.
		if i > 0 {
			prev := int(runes[i-1])
			acc[(prev*31+code)%dims] += 0.5 / float64(i+1)
		}

		// Word-boundary contribution: hash the first character of the next word.
		if r == ' ' && i < len(runes)-1 {
			next := int(runes[i+1])
			acc[(next*17+i)%dims] += 0.3
		}
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	vec := make([]float32, dims)
	if norm == 0 {
		return vec
	}
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec
}

// Similarity returns the cosine similarity of a and b. Vectors of different
// lengths are an error; a zero vector on either side yields 0.
func Similarity(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		ai, bi := float64(a[i]), float64(b[i])
		dot += ai * bi
		normA += ai * ai
		normB += bi * bi
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB))), nil
}
