package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/ports"
)

// RSSSource pulls recent items from RSS/Atom feeds.
type RSSSource struct {
	parser   *gofeed.Parser
	language string
	logger   *slog.Logger
}

var _ ports.FeedSource = (*RSSSource)(nil)

// NewRSSSource wires an HTTP client into the feed parser.
func NewRSSSource(client *http.Client, logger *slog.Logger) *RSSSource {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = "NewsRecommender/1.0"
	if logger == nil {
		logger = slog.Default()
	}
	return &RSSSource{parser: parser, language: "en", logger: logger}
}

// Fetch returns up to limit recent items mapped to pending articles.
// Entries without a link or title are skipped.
func (s *RSSSource) Fetch(ctx context.Context, feedURL, sourceName string, limit int) ([]domain.Article, error) {
	parsed, err := s.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	items := parsed.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	articles := make([]domain.Article, 0, len(items))
	for _, item := range items {
		if item.Link == "" || item.Title == "" {
			continue
		}
		articles = append(articles, domain.Article{
			URL:         item.Link,
			Title:       item.Title,
			Content:     item.Description,
			Source:      sourceName,
			Language:    s.language,
			PublishedAt: publishedAt(item),
		})
	}

	s.logger.Debug("feed fetched", "source", sourceName, "entries", len(parsed.Items), "mapped", len(articles))
	return articles, nil
}

// publishedAt prefers the published timestamp, falling back to updated;
// a zero time means the feed carried neither.
func publishedAt(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC()
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC()
	}
	return time.Time{}
}
