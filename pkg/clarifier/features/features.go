// Package features scores candidates with lexical, statistical, positional,
// semantic and knowledge-based signals.
//
// Every raw feature function returns exactly one value per candidate, in
// candidate order, for any number of candidates. The Suite squashes the raw
// values through tanh(weight*x) unless it runs in full-feature mode.
package features

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/cognicore/clarifier/pkg/clarifier/candidates"
	"github.com/cognicore/clarifier/pkg/clarifier/embed"
	"github.com/cognicore/clarifier/pkg/clarifier/ingest"
	"github.com/cognicore/clarifier/pkg/clarifier/knowledge"
	"github.com/cognicore/clarifier/pkg/clarifier/ngram"
	"github.com/cognicore/clarifier/pkg/clarifier/pattern"
	"github.com/cognicore/clarifier/pkg/clarifier/query"
)

// Vector holds the feature values of one candidate. List and Inhibition
// are always zero for query candidates.
type Vector struct {
	List       float64
	Pattern    float64
	Distance   float64
	Occurrence float64
	Frequency  float64
	Inclusion  float64
	Semantic   float64
	Entity     float64
	Inhibition float64
}

// Suite computes feature vectors for a candidate pool.
type Suite struct {
	weights      Weights
	embedder     embed.Embedder
	full         bool
	contextRange int
}

// NewSuite creates a Suite. A nil embedder disables the semantic and
// inhibition features, which then score zero.
func NewSuite(w Weights, e embed.Embedder) *Suite {
	return &Suite{weights: w, embedder: e, contextRange: candidates.DefaultContextRange}
}

// WithFullFeatures makes the suite emit raw, unsquashed values.
func (s *Suite) WithFullFeatures(full bool) *Suite {
	s.full = full
	return s
}

// WithContextRange overrides the distance window. Non-positive values are
// ignored.
func (s *Suite) WithContextRange(n int) *Suite {
	if n > 0 {
		s.contextRange = n
	}
	return s
}

// Query scores the pool's query candidates.
func (s *Suite) Query(ctx context.Context, p *candidates.Pool) ([]Vector, error) {
	cands := p.QueryCandidates
	w := s.weights.Query
	bare := p.Query.Bare()

	semantic, err := s.semantic(ctx, []string{bare}, cands)
	if err != nil {
		return nil, fmt.Errorf("query semantic: %w", err)
	}

	pat := s.squash(w.Pattern, QueryPattern(p.QueryTuples, bare, cands))
	dist := s.squash(w.Distance, Distance(pattern.Windows(p.QueryLines, []string{bare}, s.contextRange), cands))
	occ := s.squash(w.Occurrence, Occurrence(cands))
	freq := s.squash(w.Frequency, Frequency(p.Corpus.QueryTexts, cands))
	inc := s.squash(w.Inclusion, Inclusion(cands))
	sem := s.squash(w.Semantic, semantic)
	ent := s.squash(w.Entity, Entity(p.QueryKnowledge, cands))

	out := make([]Vector, len(cands))
	for i := range out {
		out[i] = Vector{
			Pattern:    pat[i],
			Distance:   dist[i],
			Occurrence: occ[i],
			Frequency:  freq[i],
			Inclusion:  inc[i],
			Semantic:   sem[i],
			Entity:     ent[i],
		}
	}
	return out, nil
}

// Items scores the pool's item candidates.
func (s *Suite) Items(ctx context.Context, p *candidates.Pool) ([]Vector, error) {
	cands := p.ItemCandidates
	w := s.weights.Items
	items := p.Query.Items()

	semantic, err := s.semantic(ctx, items, cands)
	if err != nil {
		return nil, fmt.Errorf("item semantic: %w", err)
	}
	inhibition, err := s.inhibition(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("inhibition: %w", err)
	}

	var descs []knowledge.Description
	for _, d := range p.ItemKnowledge {
		descs = append(descs, d...)
	}

	texts := make([]string, 0, len(p.Corpus.ItemTexts)+len(p.Corpus.ItemLists))
	texts = append(texts, p.Corpus.ItemTexts...)
	texts = append(texts, p.Corpus.ItemLists...)

	list := s.squash(s.weights.List, ListTitle(p.Titles, cands))
	pat := s.squash(w.Pattern, ItemPattern(p.Query, p.ItemTuples, cands))
	dist := s.squash(w.Distance, Distance(pattern.Windows(p.ItemLines, items, s.contextRange), cands))
	occ := s.squash(w.Occurrence, Occurrence(cands))
	freq := s.squash(w.Frequency, Frequency(texts, cands))
	inc := s.squash(w.Inclusion, Inclusion(cands))
	sem := s.squash(w.Semantic, semantic)
	ent := s.squash(w.Entity, Entity(descs, cands))

	out := make([]Vector, len(cands))
	for i := range out {
		out[i] = Vector{
			List:       list[i],
			Pattern:    pat[i],
			Distance:   dist[i],
			Occurrence: occ[i],
			Frequency:  freq[i],
			Inclusion:  inc[i],
			Semantic:   sem[i],
			Entity:     ent[i],
			Inhibition: inhibition,
		}
	}
	return out, nil
}

// squash maps raw values through tanh(weight*x) in place. An undefined
// result becomes 1.
func (s *Suite) squash(weight float64, raw []float64) []float64 {
	if s.full {
		return raw
	}
	for i, v := range raw {
		raw[i] = Squash(weight, v)
	}
	return raw
}

// maxBounded is the largest float64 below 1. tanh rounds to exactly ±1
// once its argument passes about 19.
var maxBounded = math.Nextafter(1, 0)

// Squash returns tanh(weight*x) kept inside the open interval (-1, 1),
// or 1 when that is NaN.
func Squash(weight, x float64) float64 {
	v := math.Tanh(weight * x)
	switch {
	case math.IsNaN(v):
		return 1.0
	case v > maxBounded:
		return maxBounded
	case v < -maxBounded:
		return -maxBounded
	}
	return v
}

// ListTitle returns the count of each candidate in the title table.
func ListTitle(titles ngram.Table, cands []string) []float64 {
	out := make([]float64, len(cands))
	for i, c := range cands {
		out[i] = titles.Lookup(c)
	}
	return out
}

// QueryPattern counts the tuples whose head contains the candidate and
// whose tail contains the bare query.
func QueryPattern(tuples []pattern.Tuple, bare string, cands []string) []float64 {
	out := make([]float64, len(cands))
	for i, c := range cands {
		for _, t := range tuples {
			if strings.Contains(t.Head, c) && strings.Contains(t.Tail, bare) {
				out[i]++
			}
		}
	}
	return out
}

// ItemPattern sums, over the tuples whose head contains the candidate, the
// fraction of items found in the tuple's tail.
func ItemPattern(qc *query.Context, tuples []pattern.Tuple, cands []string) []float64 {
	out := make([]float64, len(cands))
	n := qc.NumItems()
	if n == 0 {
		return out
	}
	for i, c := range cands {
		for _, t := range tuples {
			if strings.Contains(t.Head, c) {
				out[i] += float64(qc.CountItemsIn(t.Tail)) / float64(n)
			}
		}
	}
	return out
}

// Distance sums DistanceScore over every candidate mention in every
// window.
func Distance(windows []pattern.Window, cands []string) []float64 {
	out := make([]float64, len(cands))
	for i, c := range cands {
		for _, w := range windows {
			for _, pos := range pattern.Occurrences(w.Text, c) {
				out[i] += DistanceScore(pos, w.Anchor)
			}
		}
	}
	return out
}

// DistanceScore decays with the character distance between two offsets:
// 1 when they coincide, approaching 0 as they move apart.
func DistanceScore(pos, anchor int) float64 {
	d := pos - anchor
	if d < 0 {
		d = -d
	}
	return 1.0 / (1.0 + float64(d))
}

// Occurrence is reserved for a co-occurrence signal and scores zero.
func Occurrence(cands []string) []float64 {
	return make([]float64, len(cands))
}

// Frequency counts non-overlapping occurrences of each candidate across
// texts.
func Frequency(texts, cands []string) []float64 {
	out := make([]float64, len(cands))
	for i, c := range cands {
		if c == "" {
			continue
		}
		for _, t := range texts {
			out[i] += float64(strings.Count(t, c))
		}
	}
	return out
}

// Inclusion counts the other candidates contained in each candidate.
func Inclusion(cands []string) []float64 {
	out := make([]float64, len(cands))
	for i, c := range cands {
		for j, other := range cands {
			if i != j && strings.Contains(c, other) {
				out[i]++
			}
		}
	}
	return out
}

// Entity sums the frequencies of the knowledge descriptions whose stripped
// text equals the candidate.
func Entity(descs []knowledge.Description, cands []string) []float64 {
	out := make([]float64, len(cands))
	for i, c := range cands {
		for _, d := range descs {
			if ingest.StripCandidate(d.Text) == c {
				out[i] += d.Freq
			}
		}
	}
	return out
}

// semantic returns the mean cosine similarity between each candidate and
// the anchors.
func (s *Suite) semantic(ctx context.Context, anchors, cands []string) ([]float64, error) {
	out := make([]float64, len(cands))
	if s.embedder == nil || len(anchors) == 0 || len(cands) == 0 {
		return out, nil
	}

	anchorVecs, err := s.embedder.EmbedTexts(ctx, anchors)
	if err != nil {
		return nil, err
	}
	candVecs, err := s.embedder.EmbedTexts(ctx, cands)
	if err != nil {
		return nil, err
	}

	for i, cv := range candVecs {
		var sum float64
		for _, av := range anchorVecs {
			sum += embed.Cosine(cv, av)
		}
		out[i] = sum / float64(len(anchorVecs))
	}
	return out, nil
}

func (s *Suite) inhibition(ctx context.Context, items []string) (float64, error) {
	if s.embedder == nil || len(items) < 2 {
		return 0, nil
	}
	vecs, err := s.embedder.EmbedTexts(ctx, items)
	if err != nil {
		return 0, err
	}
	mean, ok := embed.MeanPairwise(vecs)
	if !ok {
		return 0, nil
	}
	return Inhibition(mean, s.weights.InhibitionWeight, s.weights.InhibitionThreshold), nil
}

// Inhibition penalizes item sets that are not mutually similar: zero when
// meanSim reaches threshold, weight*(threshold-meanSim) otherwise.
func Inhibition(meanSim, weight, threshold float64) float64 {
	if meanSim >= threshold {
		return 0
	}
	return weight * (threshold - meanSim)
}
