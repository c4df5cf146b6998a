package ports

import (
	"context"
	"time"

	"NewsRecommender/internal/domain"
)

// ArticleRepository is the catalog store for articles.
type ArticleRepository interface {
	// Upsert creates or updates an article keyed by URL. An existing row
	// keeps its published timestamp unless it was previously absent.
	Upsert(ctx context.Context, article domain.Article) error
	// ListLatest returns articles most-recent-first.
	ListLatest(ctx context.Context, limit, offset int) ([]domain.Article, error)
	// ListCandidates returns the bounded candidate pool, most-recent-first.
	ListCandidates(ctx context.Context, limit int) ([]domain.Article, error)
	// GetByIDs returns articles in the order of the requested ids,
	// skipping ids that do not exist.
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Article, error)
}

// UserRepository resolves external account references to internal users.
type UserRepository interface {
	// Ensure returns the user for the external id, creating it if absent.
	Ensure(ctx context.Context, externalID string) (domain.User, error)
}

// EventRepository records and reads like/dislike interactions.
type EventRepository interface {
	Add(ctx context.Context, userID, articleID int64, kind domain.EventKind) error
	// LikedTexts returns title+body texts of articles whose most recent
	// event by the user is a like, latest first, up to limit.
	LikedTexts(ctx context.Context, userID int64, limit int) ([]string, error)
	// DislikedTexts mirrors LikedTexts for dislikes.
	DislikedTexts(ctx context.Context, userID int64, limit int) ([]string, error)
	// RatedArticleIDs returns every article id the user has rated with
	// any event kind.
	RatedArticleIDs(ctx context.Context, userID int64) (map[int64]struct{}, error)
}

// FeedSource pulls a bounded number of recent items from one external feed.
type FeedSource interface {
	Fetch(ctx context.Context, feedURL, sourceName string, limit int) ([]domain.Article, error)
}

// PageFetcher is the best-effort enrichment collaborator: given an article
// URL it returns a short description extracted from the page.
type PageFetcher interface {
	Describe(ctx context.Context, pageURL string) (string, error)
}

// Candidate carries an article identity alongside the text submitted for
// scoring, so responses correlate by identity rather than position.
type Candidate struct {
	ID   int64
	Text string
}

// ScoredCandidate is one scoring result mapped back to its identity.
type ScoredCandidate struct {
	ID    int64
	Score float64
}

// ScoringClient submits liked/disliked/candidate texts to the scoring
// service and returns scored identities ordered best-first.
type ScoringClient interface {
	Score(ctx context.Context, liked, disliked []string, candidates []Candidate, topK int) ([]ScoredCandidate, error)
}

// Scheduler controls when the ingestion job executes.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
