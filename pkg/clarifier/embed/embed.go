// Package embed provides sentence embeddings for the semantic and
// inhibition features.
package embed

import (
	"context"
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Embedder exposes the minimal surface required by the feature suite.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	Close() error
	ModelID() string
}

// NormalizeText applies NFKC and trims surrounding whitespace. Embedders
// and caches key on the normalized form.
func NormalizeText(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}

// Cosine returns the cosine similarity of a and b. Mismatched lengths and
// zero vectors give 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// MeanPairwise returns the mean cosine similarity over all unordered pairs
// of vecs, and false when there are fewer than two vectors.
func MeanPairwise(vecs [][]float32) (float64, bool) {
	if len(vecs) < 2 {
		return 0, false
	}
	var sum float64
	n := 0
	for i := 0; i < len(vecs); i++ {
		for j := i + 1; j < len(vecs); j++ {
			sum += Cosine(vecs[i], vecs[j])
			n++
		}
	}
	return sum / float64(n), true
}

func cloneVector(vec []float32) []float32 {
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}

func embedEach(ctx context.Context, e Embedder, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := e.EmbedText(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}
