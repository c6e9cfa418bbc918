// Package candidates builds the query and item candidate sets for one
// ranking run.
//
// Query candidates come from the head phrases of isA pattern matches in the
// query texts plus the knowledge descriptions of the bare query. Item
// candidates come from list titles, from short contexts around item
// mentions, and from the knowledge descriptions of every item. Everything a
// run needs afterwards (lines, tuples, titles, lookups) is kept on the Pool
// so features never recompute or share state across runs.
package candidates

import (
	"context"
	"fmt"
	"strings"

	"github.com/cognicore/clarifier/pkg/clarifier/filter"
	"github.com/cognicore/clarifier/pkg/clarifier/ingest"
	"github.com/cognicore/clarifier/pkg/clarifier/knowledge"
	"github.com/cognicore/clarifier/pkg/clarifier/ngram"
	"github.com/cognicore/clarifier/pkg/clarifier/pattern"
	"github.com/cognicore/clarifier/pkg/clarifier/query"
	"github.com/cognicore/clarifier/pkg/clarifier/singular"
)

// DefaultContextRange is the number of characters kept on each side of an
// item mention when mining item contexts.
const DefaultContextRange = 50

// Pool is the per-run context shared by candidate construction and the
// feature suite.
type Pool struct {
	Query  *query.Context
	Corpus ingest.Corpus

	// Singularized query and item texts, lines containing '[' removed.
	QueryLines []string
	ItemLines  []string

	// Titles is the filtered n-gram table mined from list titles.
	Titles ngram.Table

	QueryTuples []pattern.Tuple
	ItemTuples  []pattern.Tuple

	// QueryKnowledge holds the descriptions of the bare query;
	// ItemKnowledge[i] those of the i-th item.
	QueryKnowledge []knowledge.Description
	ItemKnowledge  [][]knowledge.Description

	QueryCandidates []string
	ItemCandidates  []string
}

// Builder constructs Pools. It holds no per-run state and is safe for
// concurrent use when its collaborators are.
type Builder struct {
	miner        *ngram.Miner
	filter       *filter.Filter
	norm         *singular.Normalizer
	extractor    *pattern.Extractor
	kb           knowledge.Source
	contextRange int
}

// NewBuilder creates a Builder. kb may be nil, in which case no knowledge
// descriptions are looked up.
func NewBuilder(miner *ngram.Miner, f *filter.Filter, norm *singular.Normalizer, ex *pattern.Extractor, kb knowledge.Source) *Builder {
	return &Builder{
		miner:        miner,
		filter:       f,
		norm:         norm,
		extractor:    ex,
		kb:           kb,
		contextRange: DefaultContextRange,
	}
}

// WithContextRange overrides the item context width. Non-positive values
// are ignored.
func (b *Builder) WithContextRange(n int) *Builder {
	if n > 0 {
		b.contextRange = n
	}
	return b
}

// Build runs candidate construction for qc over corpus.
func (b *Builder) Build(ctx context.Context, qc *query.Context, corpus ingest.Corpus) (*Pool, error) {
	p := &Pool{
		Query:      qc,
		Corpus:     corpus,
		QueryLines: b.singularLines(corpus.QueryTexts),
		ItemLines:  b.singularLines(corpus.ItemTexts),
	}
	p.QueryTuples = b.extractor.ExtractQuery(qc, p.QueryLines)
	p.ItemTuples = b.extractor.ExtractItems(qc, p.ItemLines)

	if err := b.buildQuery(ctx, p); err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	if err := b.buildItems(ctx, p); err != nil {
		return nil, fmt.Errorf("item candidates: %w", err)
	}
	return p, nil
}

func (b *Builder) buildQuery(ctx context.Context, p *Pool) error {
	qc := p.Query
	set := newOrderedSet()

	heads, err := b.refine(ctx, qc, pattern.Heads(p.QueryTuples))
	if err != nil {
		return err
	}
	for _, e := range heads {
		if c, ok := filter.AdmitQuery(qc, e.Text); ok {
			set.add(c)
		}
	}

	p.QueryKnowledge, err = b.lookup(ctx, qc.Bare())
	if err != nil {
		return err
	}
	for _, d := range p.QueryKnowledge {
		if c, ok := filter.AdmitQuery(qc, d.Text); ok {
			set.add(c)
		}
	}

	p.QueryCandidates = set.items
	return nil
}

func (b *Builder) buildItems(ctx context.Context, p *Pool) error {
	qc := p.Query
	set := newOrderedSet()

	titles, err := b.refine(ctx, qc, p.Corpus.ItemLists)
	if err != nil {
		return err
	}
	p.Titles = titles
	for _, e := range titles {
		if c, ok := filter.AdmitItem(qc, e.Text); ok {
			set.add(c)
		}
	}

	contexts, err := b.refine(ctx, qc, b.itemContexts(qc, p.ItemLines))
	if err != nil {
		return err
	}
	for _, e := range contexts {
		if c, ok := filter.AdmitItem(qc, e.Text); ok {
			set.add(c)
		}
	}

	p.ItemKnowledge = make([][]knowledge.Description, qc.NumItems())
	for i, item := range qc.Items() {
		descs, err := b.lookup(ctx, item)
		if err != nil {
			return err
		}
		p.ItemKnowledge[i] = descs
		for _, d := range descs {
			if c, ok := filter.AdmitItem(qc, d.Text); ok {
				set.add(c)
			}
		}
	}

	p.ItemCandidates = set.items
	return nil
}

// refine mines lines and runs both filter stages.
func (b *Builder) refine(ctx context.Context, qc *query.Context, lines []string) (ngram.Table, error) {
	combined := b.filter.Combine(qc, b.miner.Mine(lines))
	return b.filter.Process(ctx, qc, combined)
}

func (b *Builder) lookup(ctx context.Context, term string) ([]knowledge.Description, error) {
	if b.kb == nil {
		return nil, nil
	}
	descs, err := b.kb.Lookup(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("lookup %q in %s: %w", term, b.kb.Name(), err)
	}
	return descs, nil
}

// itemContexts cuts a window of contextRange characters on each side of
// every item mention.
func (b *Builder) itemContexts(qc *query.Context, lines []string) []string {
	windows := pattern.Windows(lines, qc.Items(), b.contextRange)
	out := make([]string, len(windows))
	for i, w := range windows {
		out[i] = w.Text
	}
	return out
}

func (b *Builder) singularLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.Contains(line, "[") {
			continue
		}
		out = append(out, b.norm.Line(line))
	}
	return out
}

// orderedSet deduplicates while keeping first-seen order.
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}
