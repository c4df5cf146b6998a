package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrEmptyCandidates rejects scoring requests without candidates.
var ErrEmptyCandidates = errors.New("candidates cannot be empty")

// Item is one scoring result: a 0-based position into the submitted
// candidate list and its cosine similarity score.
type Item struct {
	Index int
	Score float64
}

// Recommender is the stateless scoring pipeline: normalize, embed, build
// the affinity vector, rank. It owns no persisted state.
type Recommender struct {
	normalizer *Normalizer
	embedder   Embedder
	profiles   *ProfileBuilder
	ranker     *Ranker
	logger     *slog.Logger
}

// NewRecommender wires the engine components.
func NewRecommender(normalizer *Normalizer, embedder Embedder, profiles *ProfileBuilder, ranker *Ranker, logger *slog.Logger) *Recommender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recommender{
		normalizer: normalizer,
		embedder:   embedder,
		profiles:   profiles,
		ranker:     ranker,
		logger:     logger,
	}
}

func (r *Recommender) cleanAndEncode(ctx context.Context, texts []string) ([][]float32, error) {
	cleaned := r.normalizer.NormalizeAll(texts)
	return r.embedder.Embed(ctx, cleaned)
}

// BuildUserVector encodes liked/disliked texts and reduces them to an
// affinity vector. An empty liked list fails with ErrInsufficientSignal.
func (r *Recommender) BuildUserVector(ctx context.Context, liked, disliked []string) ([]float32, error) {
	var likedEmb, dislikedEmb [][]float32
	var err error

	if len(liked) > 0 {
		likedEmb, err = r.cleanAndEncode(ctx, liked)
		if err != nil {
			return nil, fmt.Errorf("encode liked texts: %w", err)
		}
	}
	if len(disliked) > 0 {
		dislikedEmb, err = r.cleanAndEncode(ctx, disliked)
		if err != nil {
			return nil, fmt.Errorf("encode disliked texts: %w", err)
		}
	}

	vec, err := r.profiles.Build(likedEmb, dislikedEmb)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("user vector built", "dim", len(vec), "liked", len(liked), "disliked", len(disliked))
	return vec, nil
}

// RankCandidates encodes candidate texts and orders them against the
// affinity vector. Empty inputs yield empty results, not an error.
func (r *Recommender) RankCandidates(ctx context.Context, affinity []float32, candidates []string, topK int) ([]int, []float64, error) {
	if len(affinity) == 0 || len(candidates) == 0 {
		return []int{}, []float64{}, nil
	}

	embedded, err := r.cleanAndEncode(ctx, candidates)
	if err != nil {
		return nil, nil, fmt.Errorf("encode candidates: %w", err)
	}

	indices, scores := r.ranker.Rank(affinity, embedded, topK)
	return indices, scores, nil
}

// Recommend runs the full scoring round-trip and returns ordered
// (index, score) items referring to positions in candidates as submitted.
func (r *Recommender) Recommend(ctx context.Context, liked, disliked, candidates []string, topK int) ([]Item, error) {
	if len(candidates) == 0 {
		return nil, ErrEmptyCandidates
	}

	affinity, err := r.BuildUserVector(ctx, liked, disliked)
	if err != nil {
		return nil, err
	}

	indices, scores, err := r.RankCandidates(ctx, affinity, candidates, topK)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(indices))
	for _, idx := range indices {
		items = append(items, Item{Index: idx, Score: scores[idx]})
	}
	return items, nil
}

// SelfTest runs one scoring round-trip with a fixed tiny fixture and
// reports whether the pipeline is healthy.
func (r *Recommender) SelfTest(ctx context.Context) bool {
	_, err := r.Recommend(ctx,
		[]string{"test liked"},
		[]string{"test disliked"},
		[]string{"news A", "news B"},
		0,
	)
	if err != nil {
		r.logger.Error("self test failed", "error", err)
		return false
	}
	return true
}
