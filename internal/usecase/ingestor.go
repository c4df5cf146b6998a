package usecase

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/ports"
)

// FeedConfig names one external feed endpoint to poll.
type FeedConfig struct {
	Name string
	URL  string
}

// IngestorConfig bounds a single ingestion run.
type IngestorConfig struct {
	Sources        []FeedConfig
	PerSourceLimit int
	MaxConcurrent  int
}

// Ingestor pulls recent feed items, enriches them best-effort through the
// page-fetch collaborator and upserts them into the catalog. One source's
// failure never aborts the rest of the run; concurrent upserts are safe
// because the store keys articles by unique URL.
type Ingestor struct {
	feeds    ports.FeedSource
	pages    ports.PageFetcher
	articles ports.ArticleRepository
	cfg      IngestorConfig
	logger   *slog.Logger
}

// NewIngestor wires the pipeline. pages may be nil to disable enrichment.
func NewIngestor(feeds ports.FeedSource, pages ports.PageFetcher, articles ports.ArticleRepository, cfg IngestorConfig, logger *slog.Logger) *Ingestor {
	if cfg.PerSourceLimit <= 0 {
		cfg.PerSourceLimit = 20
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{
		feeds:    feeds,
		pages:    pages,
		articles: articles,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run executes one ingestion pass over every configured source. Sources
// fan out concurrently; per-source errors are logged and isolated.
func (ing *Ingestor) Run(ctx context.Context, now time.Time) error {
	ing.logger.Info("ingestion run started", "sources", len(ing.cfg.Sources), "at", now.Format(time.RFC3339))

	var stored, failed atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(ing.cfg.MaxConcurrent)
	for _, src := range ing.cfg.Sources {
		src := src
		g.Go(func() error {
			n, err := ing.runSource(ctx, src)
			stored.Add(int64(n))
			if err != nil {
				failed.Add(1)
				ing.logger.Error("feed source failed", "source", src.Name, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	ing.logger.Info("ingestion run finished", "stored", stored.Load(), "failed_sources", failed.Load())
	return ctx.Err()
}

func (ing *Ingestor) runSource(ctx context.Context, src FeedConfig) (int, error) {
	items, err := ing.feeds.Fetch(ctx, src.URL, src.Name, ing.cfg.PerSourceLimit)
	if err != nil {
		return 0, err
	}

	stored, scraped := 0, 0
	for _, item := range items {
		enriched := ing.enrich(ctx, item)
		item.Content = enriched.text
		if enriched.scraped {
			scraped++
		}
		if err := ing.articles.Upsert(ctx, item); err != nil {
			ing.logger.Error("upsert article failed", "source", src.Name, "url", item.URL, "error", err)
			continue
		}
		stored++
	}
	ing.logger.Info("feed source processed", "source", src.Name, "items", len(items), "stored", stored, "scraped", scraped)
	return stored, nil
}

// enrichment distinguishes a scraped page summary from the feed-summary
// fallback so run logs show enrichment quality.
type enrichment struct {
	text    string
	scraped bool
}

// enrich asks the page-fetch collaborator for a better summary. Any
// failure degrades to the original feed summary and is only logged.
func (ing *Ingestor) enrich(ctx context.Context, item domain.Article) enrichment {
	if ing.pages == nil {
		return enrichment{text: item.Content}
	}

	desc, err := ing.pages.Describe(ctx, item.URL)
	if err != nil || desc == "" {
		ing.logger.Debug("enrichment fell back to feed summary", "url", item.URL, "error", err)
		return enrichment{text: item.Content}
	}

	return enrichment{text: desc, scraped: true}
}
