package gatewayapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Article mirrors the gateway's article DTO.
type Article struct {
	ID          int64  `json:"id"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
}

// Recommendation mirrors the gateway's scored article DTO.
type Recommendation struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"`
	URL    string  `json:"url"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// Client is the bot's view of the gateway API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a reusable HTTP client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// EnsureUser registers the external account and returns its internal id.
func (c *Client) EnsureUser(ctx context.Context, externalID string) (int64, error) {
	var resp struct {
		UserID int64 `json:"user_id"`
	}
	err := c.post(ctx, "/users/ensure", map[string]string{"external_id": externalID}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.UserID, nil
}

// LatestArticles fetches the newest catalog entries.
func (c *Client) LatestArticles(ctx context.Context, limit, offset int) ([]Article, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var resp struct {
		Items []Article `json:"items"`
	}
	if err := c.get(ctx, "/articles/latest?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// SendEvent records a like/dislike for an article.
func (c *Client) SendEvent(ctx context.Context, externalID string, articleID int64, eventType string) error {
	payload := map[string]any{
		"external_id": externalID,
		"article_id":  articleID,
		"event_type":  eventType,
	}
	return c.post(ctx, "/events", payload, nil)
}

// Recommend asks the gateway for scored articles.
func (c *Client) Recommend(ctx context.Context, externalID string, topK int) ([]Recommendation, error) {
	payload := map[string]any{
		"external_id":     externalID,
		"top_k":           topK,
		"candidate_limit": 50,
	}

	var resp struct {
		Items []Recommendation `json:"items"`
	}
	if err := c.post(ctx, "/recommend", payload, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, v)
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	return c.do(req, v)
}

func (c *Client) do(req *http.Request, v any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail := readDetail(resp.Body)
		if detail == "" {
			detail = resp.Status
		}
		return fmt.Errorf("gateway: %s", detail)
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func readDetail(body io.Reader) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	raw, err := io.ReadAll(io.LimitReader(body, 1024))
	if err != nil {
		return ""
	}
	if json.Unmarshal(raw, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return strings.TrimSpace(string(raw))
}
