package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsRecommender/internal/ports"
)

// PageScraper extracts a short page description for article enrichment:
// meta description first, then the first h1, then the document title.
type PageScraper struct {
	client *http.Client
}

var _ ports.PageFetcher = (*PageScraper)(nil)

// NewPageScraper wires an HTTP client; the default timeout is 15s.
func NewPageScraper(client *http.Client) *PageScraper {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &PageScraper{client: client}
}

// Describe fetches the page and returns its best available description.
// An empty result with nil error means the page had none.
func (s *PageScraper) Describe(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "NewsRecommender/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	return extractDescription(doc), nil
}

func extractDescription(doc *goquery.Document) string {
	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		if trimmed := strings.TrimSpace(desc); trimmed != "" {
			return trimmed
		}
	}

	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}

	return strings.TrimSpace(doc.Find("title").First().Text())
}
