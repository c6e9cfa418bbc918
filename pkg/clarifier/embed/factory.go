package embed

import (
	"fmt"
	"strings"
)

// Backend names accepted by New.
const (
	BackendNone = "none"
	BackendStub = "stub"
	BackendOrt  = "onnx"
)

// Config selects and configures an embedding backend.
type Config struct {
	Backend   string
	CachePath string // bbolt vector cache; empty disables caching
	Ort       OrtConfig
}

// New builds the configured embedder. The "none" backend returns nil,
// which disables the semantic and inhibition features.
func New(cfg Config) (Embedder, error) {
	var e Embedder
	switch strings.ToLower(cfg.Backend) {
	case "", BackendNone:
		return nil, nil
	case BackendStub:
		e = Stub{}
	case BackendOrt:
		o, err := NewOrtEmbedder(cfg.Ort)
		if err != nil {
			return nil, err
		}
		e = o
	default:
		return nil, fmt.Errorf("unknown embedding backend %q", cfg.Backend)
	}

	if cfg.CachePath == "" {
		return e, nil
	}
	c, err := NewCache(e, cfg.CachePath)
	if err != nil {
		e.Close()
		return nil, err
	}
	return c, nil
}
