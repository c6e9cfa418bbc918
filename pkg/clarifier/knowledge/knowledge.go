// Package knowledge looks up precomputed isA descriptions of a term in
// static corpora.
//
// Two flat-file layouts are supported. WebIsA is partitioned by the first
// character of the term (<dir>/<c>_ten.txt) with rows "term\tdesc\tfreq".
// ConceptGraph is a single file with rows "desc\tterm\tfreq". Both return
// the five most frequent descriptions for an exact term match.
package knowledge

import (
	"context"
	"sort"
)

// TopK is the number of descriptions returned per lookup.
const TopK = 5

// Corpus names, used as source keys in the knowledge index.
const (
	WebIsAName       = "webisa"
	ConceptGraphName = "conceptgraph"
)

// Description is one description of a term with its corpus frequency.
type Description struct {
	Text string
	Freq float64
}

// Source looks up descriptions of a term. A term with no rows yields an
// empty result, not an error.
type Source interface {
	Name() string
	Lookup(ctx context.Context, term string) ([]Description, error)
}

// Top sorts descs descending by frequency, keeping the input order for
// equal frequencies, and truncates to k.
func Top(descs []Description, k int) []Description {
	sort.SliceStable(descs, func(i, j int) bool {
		return descs[i].Freq > descs[j].Freq
	})
	if len(descs) > k {
		descs = descs[:k]
	}
	return descs
}

// Texts returns the description texts.
func Texts(descs []Description) []string {
	out := make([]string, len(descs))
	for i, d := range descs {
		out[i] = d.Text
	}
	return out
}

// Multi queries several sources and concatenates their results in source
// order.
type Multi []Source

// Name implements Source.
func (m Multi) Name() string { return "multi" }

// Lookup implements Source.
func (m Multi) Lookup(ctx context.Context, term string) ([]Description, error) {
	var out []Description
	for _, src := range m {
		descs, err := src.Lookup(ctx, term)
		if err != nil {
			return nil, err
		}
		out = append(out, descs...)
	}
	return out, nil
}
