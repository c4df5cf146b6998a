package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"NewsRecommender/internal/config"
	"NewsRecommender/internal/infrastructure/feed"
	"NewsRecommender/internal/infrastructure/httpapi"
	"NewsRecommender/internal/infrastructure/scheduler"
	"NewsRecommender/internal/infrastructure/scoring"
	"NewsRecommender/internal/infrastructure/scraper"
	"NewsRecommender/internal/infrastructure/storage"
	"NewsRecommender/internal/logging"
	"NewsRecommender/internal/usecase"
)

// Gateway wires the catalog service: Postgres storage, the feed-ingestion
// job and the HTTP API that fronts the scoring service.
type Gateway struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *sql.DB
	server    *http.Server
	ingestion *usecase.ScheduledIngestion
}

// NewGateway builds a runnable gateway instance.
func NewGateway(cfg config.Config, baseLogger *slog.Logger) (*Gateway, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	repo := storage.NewRepository(db)

	feedSource := feed.NewRSSSource(nil, baseLogger.With("component", "feed"))
	pages := scraper.NewPageScraper(&http.Client{
		Timeout: time.Duration(cfg.Ingestion.ScraperTimeout) * time.Second,
	})

	ingestor := usecase.NewIngestor(feedSource, pages, repo, usecase.IngestorConfig{
		Sources:        feedSources(cfg.Ingestion.Sources),
		PerSourceLimit: cfg.Ingestion.PerSourceLimit,
	}, baseLogger.With("component", "ingestor"))

	interval := time.Duration(cfg.Ingestion.IntervalMinutes) * time.Minute
	ingestion := usecase.NewScheduledIngestion(
		scheduler.NewIntervalScheduler(interval, true),
		ingestor,
	)

	scoringClient := scoring.NewClient(
		cfg.Scoring.URL,
		time.Duration(cfg.Scoring.TimeoutSeconds)*time.Second,
		baseLogger.With("component", "scoring"),
	)

	orchestrator := usecase.NewOrchestrator(repo, repo, repo, scoringClient, usecase.OrchestratorConfig{
		TopK:           cfg.Recommendation.TopK,
		HistoryLimit:   cfg.Recommendation.HistoryLimit,
		CandidateLimit: cfg.Recommendation.CandidateLimit,
	}, baseLogger.With("component", "orchestrator"))

	api := httpapi.NewServer(repo, repo, repo, orchestrator, baseLogger.With("component", "api"))

	return &Gateway{
		cfg:    cfg,
		logger: baseLogger,
		db:     db,
		server: &http.Server{
			Addr:              cfg.HTTP.GatewayAddr,
			Handler:           api.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		ingestion: ingestion,
	}, nil
}

// Run migrates the schema, starts the ingestion job and serves HTTP until
// the context is cancelled.
func (g *Gateway) Run(ctx context.Context) error {
	defer g.db.Close()

	if err := g.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	if err := storage.NewRepository(g.db).Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	if err := g.ingestion.Start(ctx); err != nil {
		return fmt.Errorf("start ingestion: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("gateway listening", "addr", g.server.Addr)
		errCh <- g.server.ListenAndServe()
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

	if err := g.ingestion.Stop(shutdownCtx); err != nil {
		g.logger.Error("stop ingestion", "error", err)
	}
	return g.server.Shutdown(shutdownCtx)
}

func feedSources(sources []config.FeedConfig) []usecase.FeedConfig {
	out := make([]usecase.FeedConfig, 0, len(sources))
	for _, s := range sources {
		out = append(out, usecase.FeedConfig{Name: s.Name, URL: s.URL})
	}
	return out
}
