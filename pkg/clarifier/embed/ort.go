package embed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// OrtConfig configures the ONNX sentence encoder.
type OrtConfig struct {
	OrtLib        string // path to the onnxruntime shared library
	ModelPath     string
	TokenizerPath string // tokenizer.json
	ModelID       string
	MaxSeqLen     int
	HiddenSize    int
	TokenTypeIDs  bool   // model takes a token_type_ids input
	OutputName    string // defaults to last_hidden_state
}

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

func initRuntime(lib string) error {
	ortInitOnce.Do(func() {
		if lib != "" {
			ort.SetSharedLibraryPath(lib)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

// OrtEmbedder runs a transformer encoder through onnxruntime and mean-pools
// the last hidden state into one L2-normalized vector per text.
type OrtEmbedder struct {
	cfg     OrtConfig
	tk      *tokenizer.Tokenizer
	session *ort.DynamicAdvancedSession
	mu      sync.Mutex
}

// NewOrtEmbedder loads the tokenizer and creates the ORT session.
func NewOrtEmbedder(cfg OrtConfig) (*OrtEmbedder, error) {
	if cfg.ModelPath == "" || cfg.TokenizerPath == "" {
		return nil, errors.New("onnx embedder needs model and tokenizer paths")
	}
	if cfg.ModelID == "" {
		cfg.ModelID = filepath.Base(cfg.ModelPath)
	}
	if cfg.MaxSeqLen <= 0 {
		cfg.MaxSeqLen = 128
	}
	if cfg.HiddenSize <= 0 {
		cfg.HiddenSize = 384
	}
	if cfg.OutputName == "" {
		cfg.OutputName = "last_hidden_state"
	}

	if err := initRuntime(cfg.OrtLib); err != nil {
		return nil, fmt.Errorf("init onnxruntime: %w", err)
	}

	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	inputs := []string{"input_ids", "attention_mask"}
	if cfg.TokenTypeIDs {
		inputs = append(inputs, "token_type_ids")
	}
	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath, inputs, []string{cfg.OutputName}, nil)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &OrtEmbedder{cfg: cfg, tk: tk, session: session}, nil
}

// ModelID implements Embedder.
func (o *OrtEmbedder) ModelID() string { return o.cfg.ModelID }

// Close releases the ORT session.
func (o *OrtEmbedder) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return nil
	}
	err := o.session.Destroy()
	o.session = nil
	return err
}

// EmbedTexts implements Embedder.
func (o *OrtEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, o, texts)
}

// EmbedText implements Embedder.
func (o *OrtEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	enc, err := o.tk.EncodeSingle(NormalizeText(text), true)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	ids, mask, types := enc.Ids, enc.AttentionMask, enc.TypeIds
	if n := o.cfg.MaxSeqLen; len(ids) > n {
		ids, mask, types = ids[:n], mask[:n], types[:n]
	}
	seq := int64(len(ids))
	if seq == 0 {
		return make([]float32, o.cfg.HiddenSize), nil
	}

	shape := ort.NewShape(1, seq)
	idsT, err := ort.NewTensor(shape, toInt64(ids))
	if err != nil {
		return nil, err
	}
	defer idsT.Destroy()
	maskT, err := ort.NewTensor(shape, toInt64(mask))
	if err != nil {
		return nil, err
	}
	defer maskT.Destroy()

	inputs := []ort.Value{idsT, maskT}
	if o.cfg.TokenTypeIDs {
		typesT, err := ort.NewTensor(shape, toInt64(types))
		if err != nil {
			return nil, err
		}
		defer typesT.Destroy()
		inputs = append(inputs, typesT)
	}

	out, err := ort.NewEmptyTensor[float32](ort.NewShape(1, seq, int64(o.cfg.HiddenSize)))
	if err != nil {
		return nil, err
	}
	defer out.Destroy()

	o.mu.Lock()
	if o.session == nil {
		o.mu.Unlock()
		return nil, errors.New("embedder is closed")
	}
	err = o.session.Run(inputs, []ort.Value{out})
	o.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("run session: %w", err)
	}

	return meanPool(out.GetData(), mask, o.cfg.HiddenSize), nil
}

// meanPool averages the hidden states of unmasked tokens and L2-normalizes
// the result.
func meanPool(hidden []float32, mask []int, dim int) []float32 {
	vec := make([]float32, dim)
	var count float32
	for t, m := range mask {
		if m == 0 {
			continue
		}
		row := hidden[t*dim : (t+1)*dim]
		for i, v := range row {
			vec[i] += v
		}
		count++
	}
	if count == 0 {
		return vec
	}

	var norm float64
	for i := range vec {
		vec[i] /= count
		norm += float64(vec[i]) * float64(vec[i])
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec
}

func toInt64(in []int) []int64 {
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}
