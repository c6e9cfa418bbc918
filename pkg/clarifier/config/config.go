// Package config loads the data files and layered settings of a ranking
// deployment.
package config

import (
	"github.com/cognicore/clarifier/pkg/clarifier/candidates"
	"github.com/cognicore/clarifier/pkg/clarifier/features"
	"github.com/cognicore/clarifier/pkg/clarifier/filter"
	"github.com/cognicore/clarifier/pkg/clarifier/ingest"
	"github.com/cognicore/clarifier/pkg/clarifier/pattern"
)

// Settings is the full runtime configuration.
type Settings struct {
	Paths       Paths            `koanf:"paths"`
	Extraction  Extraction       `koanf:"extraction"`
	Weights     features.Weights `koanf:"weights"`
	FullFeature bool             `koanf:"full_feature"`
	Tagger      Tagger           `koanf:"tagger"`
	Embedding   Embedding        `koanf:"embedding"`
	Knowledge   Knowledge        `koanf:"knowledge"`
	Store       Store            `koanf:"store"`
	Batch       Batch            `koanf:"batch"`
	Logging     Logging          `koanf:"logging"`
}

// Paths locates input and output files.
type Paths struct {
	TopResults string `koanf:"top_results"` // directory of <query>_candidates-*.txt
	Output     string `koanf:"output"`      // directory of <query>_query.txt / _items.txt
	Stoplist   string `koanf:"stoplist"`
	Templates  string `koanf:"templates"`
}

// Extraction holds the mining and windowing constants.
type Extraction struct {
	NGramCap        int `koanf:"ngram_cap" validate:"gte=1"`
	WordSpan        int `koanf:"word_span" validate:"gte=1"`
	ItemWindow      int `koanf:"item_window" validate:"gte=1"`
	ContextRange    int `koanf:"context_range" validate:"gte=1"`
	ListMinLen      int `koanf:"list_min_len" validate:"gte=0"`
	ListMaxLen      int `koanf:"list_max_len" validate:"gtefield=ListMinLen"`
	ItemTextMinLen  int `koanf:"item_text_min_len" validate:"gte=0"`
	QueryTextMinLen int `koanf:"query_text_min_len" validate:"gte=0"`
}

// Limits returns the region reader gates.
func (e Extraction) Limits() ingest.Limits {
	return ingest.Limits{
		ListMinLen:      e.ListMinLen,
		ListMaxLen:      e.ListMaxLen,
		ItemTextMinLen:  e.ItemTextMinLen,
		QueryTextMinLen: e.QueryTextMinLen,
	}
}

// Tagger selects the POS tagging backend.
type Tagger struct {
	Backend string `koanf:"backend" validate:"oneof=heuristic prose stub"`
}

// Embedding selects the sentence embedding backend. "none" disables the
// semantic and inhibition features.
type Embedding struct {
	Backend       string `koanf:"backend" validate:"oneof=none stub onnx"`
	CachePath     string `koanf:"cache_path"`
	OrtLib        string `koanf:"ort_lib"`
	ModelPath     string `koanf:"model_path" validate:"required_if=Backend onnx"`
	TokenizerPath string `koanf:"tokenizer_path" validate:"required_if=Backend onnx"`
	ModelID       string `koanf:"model_id"`
	MaxSeqLen     int    `koanf:"max_seq_len" validate:"gte=0"`
	HiddenSize    int    `koanf:"hidden_size" validate:"gte=0"`
}

// Knowledge selects where isA descriptions come from: the flat corpora
// on disk or the imported sqlite index.
type Knowledge struct {
	Backend          string `koanf:"backend" validate:"oneof=none files store"`
	WebIsADir        string `koanf:"webisa_dir"`
	ConceptGraphPath string `koanf:"conceptgraph_path"`
}

// Store locates the sqlite database holding the knowledge index and the
// run ledger. An empty path keeps both in memory.
type Store struct {
	Path string `koanf:"path"`
}

// Batch controls the batch driver.
type Batch struct {
	Workers int `koanf:"workers" validate:"gte=1,lte=64"`
}

// Logging mirrors logging.Config.
type Logging struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error disabled off"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Defaults returns the settings used when nothing is overridden.
func Defaults() Settings {
	lim := ingest.DefaultLimits()
	return Settings{
		Paths: Paths{
			TopResults: "top_results",
			Output:     "candidates",
		},
		Extraction: Extraction{
			NGramCap:        filter.DefaultCap,
			WordSpan:        pattern.DefaultWordSpan,
			ItemWindow:      pattern.DefaultItemWindow,
			ContextRange:    candidates.DefaultContextRange,
			ListMinLen:      lim.ListMinLen,
			ListMaxLen:      lim.ListMaxLen,
			ItemTextMinLen:  lim.ItemTextMinLen,
			QueryTextMinLen: lim.QueryTextMinLen,
		},
		Weights:   features.DefaultWeights(),
		Tagger:    Tagger{Backend: "heuristic"},
		Embedding: Embedding{Backend: "none"},
		Knowledge: Knowledge{Backend: "files", WebIsADir: "webisa", ConceptGraphPath: "conceptgraph.txt"},
		Batch:     Batch{Workers: 1},
		Logging:   Logging{Level: "info", Format: "console"},
	}
}
