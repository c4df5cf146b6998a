package recommend

import (
	"errors"
	"fmt"
	"math"
)

// ErrInsufficientSignal is returned when the liked history is too small to
// build an affinity vector.
var ErrInsufficientSignal = errors.New("insufficient liked signal")

// ProfileConfig tunes affinity vector construction.
type ProfileConfig struct {
	UseDislikes bool
	MinLikes    int
}

// ProfileBuilder reduces liked/disliked embeddings to one affinity vector.
// The computation is deterministic: identical inputs in identical order
// yield identical output.
type ProfileBuilder struct {
	cfg ProfileConfig
}

// NewProfileBuilder applies a minimum-likes default of 1.
func NewProfileBuilder(cfg ProfileConfig) *ProfileBuilder {
	if cfg.MinLikes <= 0 {
		cfg.MinLikes = 1
	}
	return &ProfileBuilder{cfg: cfg}
}

// Build computes mean(liked) and, when dislikes are present and enabled,
// subtracts mean(disliked). The result is renormalized to unit length
// unless its norm is zero.
func (b *ProfileBuilder) Build(liked, disliked [][]float32) ([]float32, error) {
	if len(liked) < b.cfg.MinLikes {
		return nil, fmt.Errorf("%w: at least %d liked items required, got %d",
			ErrInsufficientSignal, b.cfg.MinLikes, len(liked))
	}

	vec := mean(liked)
	if b.cfg.UseDislikes && len(disliked) > 0 {
		for i, d := range mean(disliked) {
			if i < len(vec) {
				vec[i] -= d
			}
		}
	}

	if norm := euclideanNorm(vec); norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec, nil
}

func mean(rows [][]float32) []float32 {
	if len(rows) == 0 {
		return nil
	}
	out := make([]float32, len(rows[0]))
	for _, row := range rows {
		for i := range out {
			if i < len(row) {
				out[i] += row[i]
			}
		}
	}
	inv := 1 / float32(len(rows))
	for i := range out {
		out[i] *= inv
	}
	return out
}

func euclideanNorm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}
