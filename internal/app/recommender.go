package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"NewsRecommender/internal/config"
	"NewsRecommender/internal/infrastructure/openai"
	"NewsRecommender/internal/infrastructure/recsvc"
	"NewsRecommender/internal/logging"
	"NewsRecommender/internal/recommend"
)

// RecommenderService wires the stateless scoring service: the text engine
// behind a small HTTP surface.
type RecommenderService struct {
	logger *slog.Logger
	server *http.Server
}

// NewRecommenderService builds a runnable scoring service instance.
func NewRecommenderService(cfg config.Config, baseLogger *slog.Logger) *RecommenderService {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	embedder := openai.NewEmbedder(openai.Config{
		Model:     cfg.Embedding.Model,
		Normalize: cfg.Embedding.Normalize,
		APIKey:    cfg.Embedding.APIKey,
		BaseURL:   cfg.Embedding.BaseURL,
	})

	engine := recommend.NewRecommender(
		recommend.NewNormalizer(recommend.NormalizerConfig{
			Lowercase: true,
			MaxLen:    cfg.Recommendation.MaxTextLen,
		}),
		embedder,
		recommend.NewProfileBuilder(recommend.ProfileConfig{
			UseDislikes: cfg.Recommendation.UseDislikes,
			MinLikes:    cfg.Recommendation.MinLikes,
		}),
		recommend.NewRanker(recommend.RankerConfig{TopK: cfg.Recommendation.TopK}),
		baseLogger.With("component", "engine"),
	)

	api := recsvc.NewServer(engine, baseLogger.With("component", "api"))

	return &RecommenderService{
		logger: baseLogger,
		server: &http.Server{
			Addr:              cfg.HTTP.RecommenderAddr,
			Handler:           api.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run serves HTTP until the context is cancelled.
func (s *RecommenderService) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("recommender listening", "addr", s.server.Addr)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
