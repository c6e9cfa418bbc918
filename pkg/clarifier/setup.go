package clarifier

import (
	"context"
	"fmt"

	"github.com/cognicore/clarifier/pkg/clarifier/candidates"
	"github.com/cognicore/clarifier/pkg/clarifier/config"
	"github.com/cognicore/clarifier/pkg/clarifier/embed"
	"github.com/cognicore/clarifier/pkg/clarifier/features"
	"github.com/cognicore/clarifier/pkg/clarifier/filter"
	"github.com/cognicore/clarifier/pkg/clarifier/ingest"
	"github.com/cognicore/clarifier/pkg/clarifier/internalerr"
	"github.com/cognicore/clarifier/pkg/clarifier/knowledge"
	"github.com/cognicore/clarifier/pkg/clarifier/ngram"
	"github.com/cognicore/clarifier/pkg/clarifier/pattern"
	"github.com/cognicore/clarifier/pkg/clarifier/singular"
	"github.com/cognicore/clarifier/pkg/clarifier/store"
	"github.com/cognicore/clarifier/pkg/clarifier/store/memstore"
	"github.com/cognicore/clarifier/pkg/clarifier/store/sqlite"
	"github.com/cognicore/clarifier/pkg/clarifier/tagger"
)

// OpenStore opens the sqlite store at path, or an in-memory store when
// path is empty. Failures wrap internalerr.ErrStoreUnavailable.
func OpenStore(ctx context.Context, path string) (store.Store, error) {
	if path == "" {
		return memstore.New(), nil
	}
	st, err := sqlite.OpenSQLite(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", internalerr.ErrStoreUnavailable, path, err)
	}
	return st, nil
}

// KnowledgeSource returns the configured description source. The "store"
// backend reads both corpora from the knowledge index in st.
func KnowledgeSource(k config.Knowledge, st store.Store) (knowledge.Source, error) {
	switch k.Backend {
	case "none":
		return nil, nil
	case "", "files":
		return knowledge.Multi{
			knowledge.NewWebIsA(k.WebIsADir),
			knowledge.NewConceptGraph(k.ConceptGraphPath),
		}, nil
	case "store":
		if st == nil {
			return nil, fmt.Errorf("%w: knowledge backend %q needs a store", internalerr.ErrStoreUnavailable, k.Backend)
		}
		return knowledge.Multi{
			knowledge.NewStored(st, knowledge.WebIsAName),
			knowledge.NewStored(st, knowledge.ConceptGraphName),
		}, nil
	default:
		return nil, fmt.Errorf("unknown knowledge backend %q", k.Backend)
	}
}

// FromSettings wires an Engine from validated settings. The returned
// engine owns its store and embedder.
func FromSettings(ctx context.Context, s *config.Settings) (*Engine, error) {
	comp, err := config.NewLoader(s).Load()
	if err != nil {
		return nil, err
	}

	tg, err := tagger.New(s.Tagger.Backend)
	if err != nil {
		return nil, err
	}

	st, err := OpenStore(ctx, s.Store.Path)
	if err != nil {
		return nil, err
	}

	kb, err := KnowledgeSource(s.Knowledge, st)
	if err != nil {
		st.Close()
		return nil, err
	}

	em, err := embed.New(embed.Config{
		Backend:   s.Embedding.Backend,
		CachePath: s.Embedding.CachePath,
		Ort: embed.OrtConfig{
			OrtLib:        s.Embedding.OrtLib,
			ModelPath:     s.Embedding.ModelPath,
			TokenizerPath: s.Embedding.TokenizerPath,
			ModelID:       s.Embedding.ModelID,
			MaxSeqLen:     s.Embedding.MaxSeqLen,
			HiddenSize:    s.Embedding.HiddenSize,
		},
	})
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("embedder: %w", err)
	}

	ex := s.Extraction
	norm := singular.New()
	builder := candidates.NewBuilder(
		ngram.NewMiner(ingest.NewTokenizer(comp.Stoplist)),
		filter.New(norm, tg, ex.NGramCap),
		norm,
		pattern.NewExtractor(comp.Templates).WithWindows(ex.WordSpan, ex.ItemWindow),
		kb,
	).WithContextRange(ex.ContextRange)

	suite := features.NewSuite(s.Weights, em).
		WithFullFeatures(s.FullFeature).
		WithContextRange(ex.ContextRange)

	return New(Options{
		Builder:       builder,
		Suite:         suite,
		Store:         st,
		Embedder:      em,
		Limits:        ex.Limits(),
		TopResultsDir: s.Paths.TopResults,
		OutputDir:     s.Paths.Output,
	}), nil
}
