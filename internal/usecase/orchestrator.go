package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/ports"
)

var (
	// ErrInsufficientLikes rejects recommendation requests for users
	// without any liked article.
	ErrInsufficientLikes = errors.New("need at least one liked article to recommend")
	// ErrNoCandidates rejects requests when every pooled article has
	// already been rated by the user.
	ErrNoCandidates = errors.New("no candidates to recommend")
	// ErrScoringUnavailable marks scoring-service failures so transports
	// can answer with a generic upstream error.
	ErrScoringUnavailable = errors.New("scoring service unavailable")
)

// OrchestratorConfig bounds how much history and pool the coordinator
// loads per request.
type OrchestratorConfig struct {
	TopK           int
	HistoryLimit   int
	CandidateLimit int
}

// Orchestrator is the catalog-side recommendation coordinator: it gathers
// a user's history and a bounded candidate pool, excludes rated articles,
// calls the scoring service and maps scored identities back to articles.
type Orchestrator struct {
	users    ports.UserRepository
	events   ports.EventRepository
	articles ports.ArticleRepository
	scoring  ports.ScoringClient
	cfg      OrchestratorConfig
	logger   *slog.Logger
}

// NewOrchestrator wires repositories and the scoring client.
func NewOrchestrator(users ports.UserRepository, events ports.EventRepository, articles ports.ArticleRepository, scoring ports.ScoringClient, cfg OrchestratorConfig, logger *slog.Logger) *Orchestrator {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 30
	}
	if cfg.CandidateLimit <= 0 {
		cfg.CandidateLimit = 50
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		users:    users,
		events:   events,
		articles: articles,
		scoring:  scoring,
		cfg:      cfg,
		logger:   logger,
	}
}

// Recommend produces an ordered list of scored articles for the user
// behind externalID. candidateLimit and topK fall back to configured
// defaults when non-positive.
func (o *Orchestrator) Recommend(ctx context.Context, externalID string, candidateLimit, topK int) ([]domain.RecommendedArticle, error) {
	if topK <= 0 {
		topK = o.cfg.TopK
	}
	if candidateLimit <= 0 {
		candidateLimit = o.cfg.CandidateLimit
	}

	user, err := o.users.Ensure(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}

	liked, err := o.events.LikedTexts(ctx, user.ID, o.cfg.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("load liked texts: %w", err)
	}
	if len(liked) == 0 {
		return nil, ErrInsufficientLikes
	}

	disliked, err := o.events.DislikedTexts(ctx, user.ID, o.cfg.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("load disliked texts: %w", err)
	}

	rated, err := o.events.RatedArticleIDs(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load rated ids: %w", err)
	}

	pool, err := o.articles.ListCandidates(ctx, candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("load candidate pool: %w", err)
	}

	candidates := make([]ports.Candidate, 0, len(pool))
	byID := make(map[int64]domain.Article, len(pool))
	for _, article := range pool {
		if _, ok := rated[article.ID]; ok {
			continue
		}
		candidates = append(candidates, ports.Candidate{ID: article.ID, Text: article.Text()})
		byID[article.ID] = article
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	o.logger.Debug("scoring candidates",
		"user", user.ID, "liked", len(liked), "disliked", len(disliked),
		"pool", len(pool), "candidates", len(candidates), "top_k", topK)

	scored, err := o.scoring.Score(ctx, liked, disliked, candidates, topK)
	if err != nil {
		o.logger.Error("scoring call failed", "user", user.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrScoringUnavailable, err)
	}

	out := make([]domain.RecommendedArticle, 0, len(scored))
	for _, s := range scored {
		article, ok := byID[s.ID]
		if !ok {
			// the scoring client only returns submitted identities;
			// anything else is dropped rather than crashing the request
			o.logger.Warn("scoring returned unknown article id", "id", s.ID)
			continue
		}
		out = append(out, domain.RecommendedArticle{Article: article, Score: s.Score})
	}
	return out, nil
}
