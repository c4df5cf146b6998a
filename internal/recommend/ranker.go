package recommend

import (
	"math"
	"sort"
)

const defaultTopK = 5

// RankerConfig holds the fallback result size used when callers pass a
// non-positive top-k.
type RankerConfig struct {
	TopK int
}

// Ranker orders candidate embeddings by cosine similarity against an
// affinity vector.
type Ranker struct {
	cfg RankerConfig
}

// NewRanker applies a top-k default of 5.
func NewRanker(cfg RankerConfig) *Ranker {
	if cfg.TopK <= 0 {
		cfg.TopK = defaultTopK
	}
	return &Ranker{cfg: cfg}
}

// Rank returns the first min(topK, len(candidates)) candidate positions
// sorted by descending similarity, ties keeping input order, plus the full
// score slice aligned to the original candidate order. Empty affinity or
// empty candidates yield empty results, never an error.
func (r *Ranker) Rank(affinity []float32, candidates [][]float32, topK int) ([]int, []float64) {
	if len(affinity) == 0 || len(candidates) == 0 {
		return []int{}, []float64{}
	}
	if topK <= 0 {
		topK = r.cfg.TopK
	}

	scores := make([]float64, len(candidates))
	for i, cand := range candidates {
		scores[i] = cosineSimilarity(affinity, cand)
	}

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	if topK > len(order) {
		topK = len(order)
	}
	return order[:topK], scores
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
