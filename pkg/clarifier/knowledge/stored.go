package knowledge

import (
	"context"
	"fmt"

	"github.com/cognicore/clarifier/pkg/clarifier/store"
)

// Index is the part of store.Store a Stored source reads from.
type Index interface {
	Descriptions(ctx context.Context, source, term string, limit int) ([]store.Description, error)
}

// Stored serves lookups for one corpus from the sqlite knowledge index
// filled by Import.
type Stored struct {
	idx    Index
	source string
}

// NewStored creates a source reading corpus source from idx.
func NewStored(idx Index, source string) *Stored {
	return &Stored{idx: idx, source: source}
}

// Name implements Source.
func (s *Stored) Name() string { return s.source }

// Lookup implements Source.
func (s *Stored) Lookup(ctx context.Context, term string) ([]Description, error) {
	if term == "" {
		return nil, nil
	}
	rows, err := s.idx.Descriptions(ctx, s.source, term, TopK)
	if err != nil {
		return nil, fmt.Errorf("lookup %s/%s: %w", s.source, term, err)
	}
	out := make([]Description, len(rows))
	for i, r := range rows {
		out[i] = Description{Text: r.Text, Freq: r.Freq}
	}
	return out, nil
}

// Importer is the part of store.Store Import writes to.
type Importer interface {
	ImportDescriptions(ctx context.Context, descs []store.Description) (int, error)
}

// importBatch is the number of rows written per transaction.
const importBatch = 5000

// Import loads every row of a corpus file into dst under source.
func Import(ctx context.Context, dst Importer, source string, rows RowReader) (int, error) {
	total := 0
	batch := make([]store.Description, 0, importBatch)

	flush := func() error {
		n, err := dst.ImportDescriptions(ctx, batch)
		total += n
		batch = batch[:0]
		return err
	}

	err := rows(func(r Row) error {
		batch = append(batch, store.Description{Source: source, Term: r.Term, Text: r.Text, Freq: r.Freq})
		if len(batch) == importBatch {
			return flush()
		}
		return nil
	})
	if err != nil {
		return total, err
	}
	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}

// RowReader feeds rows to fn until the input ends or fn fails.
type RowReader func(fn func(Row) error) error
