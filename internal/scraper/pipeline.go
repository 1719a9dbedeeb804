package scraper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Binuda-Dewhan/Web-Scrapping-Project-E-commerce-platform/internal/storage"
)

// Pipeline sequences one full run: category discovery populates the store,
// then every stored work item is enriched from its detail page. A failure on
// one item never blocks the others; there are no retries across the run.
type Pipeline struct {
	discovery *CategoryCrawler
	enricher  *DetailScraper
	store     *storage.Store
	logger    *slog.Logger
}

func NewPipeline(discovery *CategoryCrawler, enricher *DetailScraper, store *storage.Store) *Pipeline {
	return &Pipeline{
		discovery: discovery,
		enricher:  enricher,
		store:     store,
		logger:    slog.Default().With("component", "pipeline"),
	}
}

// Run executes discovery then enrichment over all stored keys. Only
// structural failures (no listing page, store unreadable, cancellation)
// surface as errors.
func (p *Pipeline) Run(ctx context.Context) error {
	log := p.logger.With("run_id", uuid.New().String())

	log.Info("starting product card scraping")
	discovered, err := p.discovery.Crawl(ctx)
	if err != nil {
		return fmt.Errorf("category discovery failed: %w", err)
	}
	log.Info("discovery finished", "products", discovered)

	keys, err := p.store.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list work items: %w", err)
	}

	log.Info("starting product detail scraping", "items", len(keys))

	enriched, failed := 0, 0
	for _, key := range keys {
		if err := p.enricher.Enrich(ctx, key); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// The item keeps whatever summary state it had; move on.
			log.Error("failed to enrich work item", "key", key, "error", err)
			p.enricher.metrics.IncFailed()
			failed++
			continue
		}
		enriched++
	}

	log.Info("pipeline run completed",
		"discovered", discovered, "items", len(keys),
		"enriched", enriched, "failed", failed)
	return nil
}
