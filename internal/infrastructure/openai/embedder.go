package openai

import (
	"context"
	"fmt"
	"math"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"NewsRecommender/internal/recommend"
)

// Config selects the encoder model and output convention.
type Config struct {
	Model     string
	Normalize bool
	APIKey    string
	BaseURL   string
}

// Embedder encodes text batches through the OpenAI embeddings API. The
// underlying client is constructed lazily exactly once; concurrent first
// callers share the same instance.
type Embedder struct {
	cfg Config

	once    sync.Once
	client  *openai.Client
	initErr error
}

var _ recommend.Embedder = (*Embedder)(nil)

// NewEmbedder captures configuration; no connection is made until the
// first Embed call.
func NewEmbedder(cfg Config) *Embedder {
	return &Embedder{cfg: cfg}
}

func (e *Embedder) load() (*openai.Client, error) {
	e.once.Do(func() {
		if e.cfg.APIKey == "" {
			e.initErr = fmt.Errorf("embedder: api key is not configured")
			return
		}
		clientCfg := openai.DefaultConfig(e.cfg.APIKey)
		if e.cfg.BaseURL != "" {
			clientCfg.BaseURL = e.cfg.BaseURL
		}
		e.client = openai.NewClientWithConfig(clientCfg)
	})
	return e.client, e.initErr
}

// Embed encodes a non-empty ordered batch and returns one vector per input
// in the same order. Any encoding failure propagates; zero vectors are
// never substituted.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("embedder: empty batch")
	}

	client, err := e.load()
	if err != nil {
		return nil, err
	}

	resp, err := client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.cfg.Model),
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedder: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(out) {
			return nil, fmt.Errorf("embedder: response index %d out of range", item.Index)
		}
		vec := item.Embedding
		if len(vec) == 0 {
			return nil, fmt.Errorf("embedder: empty vector at index %d", item.Index)
		}
		if e.cfg.Normalize {
			vec = unitNorm(vec)
		}
		out[item.Index] = vec
	}

	dim := len(out[0])
	for i, vec := range out {
		if len(vec) != dim {
			return nil, fmt.Errorf("embedder: inconsistent dimensions %d vs %d at index %d", len(vec), dim, i)
		}
	}
	return out, nil
}

func unitNorm(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}
