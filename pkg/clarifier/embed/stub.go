package embed

import "context"

// Stub returns zero vectors, so every similarity it feeds is 0.
type Stub struct {
	Dim int
}

// EmbedText implements Embedder.
func (s Stub) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dim := s.Dim
	if dim <= 0 {
		dim = 8
	}
	return make([]float32, dim), nil
}

// EmbedTexts implements Embedder.
func (s Stub) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, s, texts)
}

// Close implements Embedder.
func (Stub) Close() error { return nil }

// ModelID implements Embedder.
func (Stub) ModelID() string { return "stub" }
