package recommend

import "context"

// Embedder turns a non-empty ordered batch of normalized strings into
// fixed-dimension vectors, one per input, in the same order. Encoding
// failures propagate; an implementation never substitutes zero vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
