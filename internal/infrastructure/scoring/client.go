package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"NewsRecommender/internal/ports"
)

// Client talks to the scoring service over HTTP. The wire format is
// positional (0-based indices into the submitted candidate list); this
// client owns the index-to-identity mapping so callers only ever see
// (identity, score) pairs. Out-of-range indices in the response are
// dropped, never fatal.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *slog.Logger
}

var _ ports.ScoringClient = (*Client)(nil)

// NewClient creates a reusable HTTP client bounded by timeout.
func NewClient(endpoint string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

type recommendRequest struct {
	LikedTexts    []string `json:"liked_texts"`
	DislikedTexts []string `json:"disliked_texts"`
	Candidates    []string `json:"candidates"`
	TopK          int      `json:"top_k"`
}

type recommendResponse struct {
	Items []struct {
		Index int     `json:"index"`
		Score float64 `json:"score"`
	} `json:"items"`
}

// Score submits texts for scoring and maps returned positions back to the
// candidate identities as submitted.
func (c *Client) Score(ctx context.Context, liked, disliked []string, candidates []ports.Candidate, topK int) ([]ports.ScoredCandidate, error) {
	texts := make([]string, len(candidates))
	for i, cand := range candidates {
		texts[i] = cand.Text
	}

	payload := recommendRequest{
		LikedTexts:    liked,
		DislikedTexts: disliked,
		Candidates:    texts,
		TopK:          topK,
	}

	var resp recommendResponse
	if err := c.post(ctx, "/recommend", payload, &resp); err != nil {
		return nil, err
	}

	scored := make([]ports.ScoredCandidate, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Index < 0 || item.Index >= len(candidates) {
			c.logger.Warn("scoring returned out-of-range index", "index", item.Index, "candidates", len(candidates))
			continue
		}
		scored = append(scored, ports.ScoredCandidate{
			ID:    candidates[item.Index].ID,
			Score: item.Score,
		})
	}
	return scored, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("scoring service %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
