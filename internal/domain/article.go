package domain

import "time"

// Article is the catalog entity. URL is the identity: ingestion upserts by
// URL, so re-fetching the same item updates the existing row instead of
// creating a duplicate.
type Article struct {
	ID          int64
	URL         string
	Title       string
	Content     string
	Source      string
	Language    string
	PublishedAt time.Time // zero when the feed carried no timestamp
	CreatedAt   time.Time
}

// Text concatenates title and body the way the scoring pipeline consumes
// articles.
func (a Article) Text() string {
	if a.Content == "" {
		return a.Title
	}
	return a.Title + "\n" + a.Content
}

// RecommendedArticle pairs a catalog article with its similarity score.
type RecommendedArticle struct {
	Article Article
	Score   float64
}
