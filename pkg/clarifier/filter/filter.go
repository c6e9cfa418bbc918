// Package filter prunes and re-ranks mined n-gram tables into candidate
// descriptions.
package filter

import (
	"context"
	"fmt"
	"strings"

	"github.com/cognicore/clarifier/pkg/clarifier/ingest"
	"github.com/cognicore/clarifier/pkg/clarifier/ngram"
	"github.com/cognicore/clarifier/pkg/clarifier/query"
	"github.com/cognicore/clarifier/pkg/clarifier/singular"
	"github.com/cognicore/clarifier/pkg/clarifier/tagger"
)

// DefaultCap is the number of survivors kept from each n-gram table.
const DefaultCap = 30

// Filter runs the combine and process stages.
type Filter struct {
	norm   *singular.Normalizer
	tagger tagger.Tagger
	cap    int
}

// New creates a Filter. A cap <= 0 uses DefaultCap.
func New(norm *singular.Normalizer, tg tagger.Tagger, cap int) *Filter {
	if cap <= 0 {
		cap = DefaultCap
	}
	return &Filter{norm: norm, tagger: tg, cap: cap}
}

// Combine filters each table, keeps at most cap survivors per table,
// concatenates them (unigrams first), singularizes every text and merges
// equal texts by summing counts.
//
// A unigram is dropped when it is empty, all digits, or a substring of the
// bare query or of the joined items. A longer n-gram is dropped when every
// one of its tokens belongs to the query or the items.
func (f *Filter) Combine(qc *query.Context, tables ngram.Tables) ngram.Table {
	var combined ngram.Table

	for n, table := range tables {
		kept := 0
		for _, e := range table {
			if kept == f.cap {
				break
			}
			if n == 0 && dropUnigram(qc, e.Text) {
				continue
			}
			if n > 0 && allKnown(qc, e.Text) {
				continue
			}
			combined = append(combined, e)
			kept++
		}
	}

	for i := range combined {
		combined[i].Text = f.norm.Line(combined[i].Text)
	}
	return combined.Merge()
}

func dropUnigram(qc *query.Context, w string) bool {
	return w == "" || ingest.IsDigits(w) ||
		strings.Contains(qc.Bare(), w) || strings.Contains(qc.ItemsJoined(), w)
}

func allKnown(qc *query.Context, gram string) bool {
	for _, tok := range strings.Split(gram, " ") {
		if !qc.IsKnownToken(tok) {
			return false
		}
	}
	return true
}

// Process singularizes and trims every entry, drops the ones that are
// empty, all digits, or substrings of the query or items, merges
// duplicates and finally keeps only entries whose tags pass AcceptShape.
// A tagger error aborts the stage.
func (f *Filter) Process(ctx context.Context, qc *query.Context, table ngram.Table) (ngram.Table, error) {
	var kept ngram.Table
	for _, e := range table {
		text := strings.TrimSpace(f.norm.Line(e.Text))
		if dropUnigram(qc, text) {
			continue
		}
		kept = append(kept, ngram.Entry{Text: text, Count: e.Count})
	}
	merged := kept.Merge()

	out := make(ngram.Table, 0, len(merged))
	for _, e := range merged {
		toks, err := f.tagger.Tag(ctx, e.Text)
		if err != nil {
			return nil, fmt.Errorf("tag %q: %w", e.Text, err)
		}
		if AcceptShape(tagger.Tags(toks)) {
			out = append(out, e)
		}
	}
	return out, nil
}

// AcceptShape reports whether a tag sequence reads as a descriptive noun
// phrase: at least one NOUN, ending in NOUN or PROPN, starting with NOUN,
// PROPN or ADJ.
func AcceptShape(tags []string) bool {
	if len(tags) == 0 {
		return false
	}

	hasNoun := false
	for _, t := range tags {
		if t == tagger.Noun {
			hasNoun = true
			break
		}
	}

	last := tags[len(tags)-1]
	first := tags[0]
	return hasNoun &&
		(last == tagger.Noun || last == tagger.ProperNoun) &&
		(first == tagger.Noun || first == tagger.ProperNoun || first == tagger.Adjective)
}
