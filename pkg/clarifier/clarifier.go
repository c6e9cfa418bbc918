// Package clarifier is the engine facade: it turns the candidate-region
// files of one query/items pair into two ranked candidate tables.
package clarifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/cognicore/clarifier/internal/logging"
	"github.com/cognicore/clarifier/pkg/clarifier/candidates"
	"github.com/cognicore/clarifier/pkg/clarifier/embed"
	"github.com/cognicore/clarifier/pkg/clarifier/features"
	"github.com/cognicore/clarifier/pkg/clarifier/ingest"
	"github.com/cognicore/clarifier/pkg/clarifier/query"
	"github.com/cognicore/clarifier/pkg/clarifier/rank"
	"github.com/cognicore/clarifier/pkg/clarifier/store"
)

// Engine runs ranking jobs. It holds no per-run state; concurrent runs for
// different queries are safe.
type Engine struct {
	builder  *candidates.Builder
	suite    *features.Suite
	store    store.Store
	embedder embed.Embedder
	ids      *store.IDs
	limits   ingest.Limits
	topDir   string
	outDir   string
}

// Options configures an Engine.
type Options struct {
	Builder       *candidates.Builder
	Suite         *features.Suite
	Store         store.Store    // run ledger; nil disables bookkeeping
	Embedder      embed.Embedder // closed with the engine; may be nil
	Limits        ingest.Limits
	TopResultsDir string
	OutputDir     string
}

// New creates an Engine with the given dependencies.
func New(opts Options) *Engine {
	return &Engine{
		builder:  opts.Builder,
		suite:    opts.Suite,
		store:    opts.Store,
		embedder: opts.Embedder,
		ids:      store.NewIDs(),
		limits:   opts.Limits,
		topDir:   opts.TopResultsDir,
		outDir:   opts.OutputDir,
	}
}

// Close releases the store and the embedder.
func (e *Engine) Close() error {
	var errs []error
	if e.embedder != nil {
		errs = append(errs, e.embedder.Close())
	}
	if e.store != nil {
		errs = append(errs, e.store.Close())
	}
	return errors.Join(errs...)
}

// Store returns the engine's ledger store, or nil.
func (e *Engine) Store() store.Store {
	return e.store
}

// Pair is one ranking job. Query may carry an "_<id>" suffix.
type Pair struct {
	Query string   `json:"query"`
	Items []string `json:"items"`
}

// Result describes a finished run.
type Result struct {
	RunID     string
	Query     string
	Skipped   bool // output already existed
	QueryRows []rank.Row
	ItemRows  []rank.Row
	QueryPath string
	ItemsPath string
}

// RegionPaths returns the items and query region files for query.
func RegionPaths(dir, query string) (items, queryFile string) {
	return filepath.Join(dir, query+"_candidates-items.txt"),
		filepath.Join(dir, query+"_candidates-query.txt")
}

// OutputPaths returns the query and items tables written for query.
func OutputPaths(dir, query string) (queryFile, items string) {
	return filepath.Join(dir, query+"_query.txt"),
		filepath.Join(dir, query+"_items.txt")
}

// Run ranks one pair. When either output table already exists the run is
// skipped and reported with Skipped set; that is not an error.
func (e *Engine) Run(ctx context.Context, p Pair) (Result, error) {
	qc, err := query.NewContext(p.Query, p.Items)
	if err != nil {
		return Result{Query: p.Query}, err
	}

	res := Result{Query: qc.Raw()}
	res.QueryPath, res.ItemsPath = OutputPaths(e.outDir, qc.Raw())

	if exists(res.QueryPath) || exists(res.ItemsPath) {
		res.Skipped = true
		logging.Info().Str("query", qc.Raw()).Msg("output exists, skipping")
		return res, nil
	}

	res.RunID = e.ids.New()
	log := logging.With().Str("run_id", res.RunID).Str("query", qc.Raw()).Logger()

	run := store.Run{
		ID:        res.RunID,
		Query:     qc.Raw(),
		Items:     qc.Items(),
		Status:    store.RunRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := e.beginRun(ctx, run); err != nil {
		return res, err
	}

	err = e.run(ctx, qc, &res, log)
	switch {
	case err == nil:
		run.Status = store.RunDone
	case errors.Is(err, fs.ErrExist):
		// Another worker created the output first.
		run.Status = store.RunSkipped
		res.Skipped = true
		err = nil
	default:
		run.Status = store.RunFailed
		run.Error = err.Error()
	}
	run.QueryCandidates = len(res.QueryRows)
	run.ItemCandidates = len(res.ItemRows)
	run.FinishedAt = time.Now().UTC()

	if ferr := e.finishRun(ctx, run); ferr != nil && err == nil {
		err = ferr
	}
	return res, err
}

func (e *Engine) run(ctx context.Context, qc *query.Context, res *Result, log zerolog.Logger) error {
	itemsPath, queryPath := RegionPaths(e.topDir, qc.Raw())
	corpus, err := ingest.ReadCorpus(itemsPath, queryPath, e.limits)
	if err != nil {
		return err
	}
	log.Debug().
		Int("item_lists", len(corpus.ItemLists)).
		Int("item_texts", len(corpus.ItemTexts)).
		Int("query_texts", len(corpus.QueryTexts)).
		Msg("regions loaded")

	res.QueryRows, res.ItemRows, err = e.Rank(ctx, qc, corpus)
	if err != nil {
		return err
	}

	if err := e.write(res); err != nil {
		return err
	}
	log.Info().
		Int("query_candidates", len(res.QueryRows)).
		Int("item_candidates", len(res.ItemRows)).
		Msg("ranked")
	return nil
}

// Rank builds, scores and orders the candidates of one pair without
// touching the filesystem.
func (e *Engine) Rank(ctx context.Context, qc *query.Context, corpus ingest.Corpus) (queryRows, itemRows []rank.Row, err error) {
	pool, err := e.builder.Build(ctx, qc, corpus)
	if err != nil {
		return nil, nil, err
	}

	qv, err := e.suite.Query(ctx, pool)
	if err != nil {
		return nil, nil, fmt.Errorf("query features: %w", err)
	}
	iv, err := e.suite.Items(ctx, pool)
	if err != nil {
		return nil, nil, fmt.Errorf("item features: %w", err)
	}

	if queryRows, err = rank.Query(pool.QueryCandidates, qv); err != nil {
		return nil, nil, err
	}
	if itemRows, err = rank.Items(pool.ItemCandidates, iv); err != nil {
		return nil, nil, err
	}
	return queryRows, itemRows, nil
}

// write creates both tables exclusively. If the items table cannot be
// written the query table is removed again.
func (e *Engine) write(res *Result) error {
	if err := os.MkdirAll(e.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := writeExclusive(res.QueryPath, func(w io.Writer) error {
		return rank.WriteQuery(w, res.QueryRows)
	}); err != nil {
		return err
	}
	if err := writeExclusive(res.ItemsPath, func(w io.Writer) error {
		return rank.WriteItems(w, res.ItemRows)
	}); err != nil {
		os.Remove(res.QueryPath)
		return err
	}
	return nil
}

func writeExclusive(path string, fn func(io.Writer) error) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (e *Engine) beginRun(ctx context.Context, r store.Run) error {
	if e.store == nil {
		return nil
	}
	if err := e.store.BeginRun(ctx, r); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

func (e *Engine) finishRun(ctx context.Context, r store.Run) error {
	if e.store == nil {
		return nil
	}
	// The run outcome is recorded even when ctx was cancelled mid-run.
	if err := e.store.FinishRun(context.WithoutCancel(ctx), r); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}
