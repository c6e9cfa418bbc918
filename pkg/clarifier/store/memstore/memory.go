package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/clarifier/pkg/clarifier/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu    sync.RWMutex
	descs map[string][]store.Description // keyed by source + "\x00" + term
	runs  map[string]store.Run
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		descs: make(map[string][]store.Description),
		runs:  make(map[string]store.Run),
	}
}

var _ store.Store = (*Store)(nil)

// Close implements store.Store.
func (s *Store) Close() error { return nil }

func descKey(source, term string) string {
	return source + "\x00" + term
}

// ImportDescriptions appends descriptions, skipping rows without source
// or term.
func (s *Store) ImportDescriptions(ctx context.Context, descs []store.Description) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, d := range descs {
		if d.Source == "" || d.Term == "" {
			continue
		}
		k := descKey(d.Source, d.Term)
		s.descs[k] = append(s.descs[k], d)
		n++
	}
	return n, nil
}

// Descriptions returns up to limit descriptions, most frequent first.
func (s *Store) Descriptions(ctx context.Context, source, term string, limit int) ([]store.Description, error) {
	if limit <= 0 {
		limit = 5
	}

	s.mu.RLock()
	rows := append([]store.Description(nil), s.descs[descKey(source, term)]...)
	s.mu.RUnlock()

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Freq > rows[j].Freq
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// CountDescriptions implements store.Store.
func (s *Store) CountDescriptions(ctx context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int64)
	for _, rows := range s.descs {
		for _, d := range rows {
			out[d.Source]++
		}
	}
	return out, nil
}

// BeginRun implements store.Store.
func (s *Store) BeginRun(ctx context.Context, r store.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Status == "" {
		r.Status = store.RunRunning
	}
	s.runs[r.ID] = copyRun(r)
	return nil
}

// FinishRun implements store.Store.
func (s *Store) FinishRun(ctx context.Context, r store.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.runs[r.ID]
	if !ok {
		return fmt.Errorf("finish run %s: no such run", r.ID)
	}
	cur.Status = r.Status
	cur.QueryCandidates = r.QueryCandidates
	cur.ItemCandidates = r.ItemCandidates
	cur.Error = r.Error
	cur.FinishedAt = r.FinishedAt
	s.runs[r.ID] = cur
	return nil
}

// GetRun implements store.Store.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	if !ok {
		return store.Run{}, false, nil
	}
	return copyRun(r), true, nil
}

// ListRuns implements store.Store. IDs are ULIDs, so sorting them
// descending lists the newest first.
func (s *Store) ListRuns(ctx context.Context, f store.RunFilter) ([]store.Run, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}

	s.mu.RLock()
	var out []store.Run
	for _, r := range s.runs {
		if f.Query != "" && r.Query != f.Query {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		out = append(out, copyRun(r))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].ID > out[j].ID
	})
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func copyRun(r store.Run) store.Run {
	r.Items = append([]string(nil), r.Items...)
	return r
}
