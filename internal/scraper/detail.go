package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Binuda-Dewhan/Web-Scrapping-Project-E-commerce-platform/internal/browser"
	"github.com/Binuda-Dewhan/Web-Scrapping-Project-E-commerce-platform/internal/config"
	"github.com/Binuda-Dewhan/Web-Scrapping-Project-E-commerce-platform/internal/metrics"
	"github.com/Binuda-Dewhan/Web-Scrapping-Project-E-commerce-platform/internal/models"
	"github.com/Binuda-Dewhan/Web-Scrapping-Project-E-commerce-platform/internal/parser"
	"github.com/Binuda-Dewhan/Web-Scrapping-Project-E-commerce-platform/internal/ratelimit"
	"github.com/Binuda-Dewhan/Web-Scrapping-Project-E-commerce-platform/internal/storage"
)

// DetailScraper enriches one stored work item at a time: it opens the
// product page, harvests the specifications map and the full paginated
// review set, and merges both back into the store.
type DetailScraper struct {
	session  browser.Session
	store    *storage.Store
	parser   *parser.BestBuyParser
	throttle ratelimit.Limiter
	metrics  *metrics.Metrics
	crawl    config.CrawlConfig
	logger   *slog.Logger
}

func NewDetailScraper(session browser.Session, store *storage.Store, throttle ratelimit.Limiter, m *metrics.Metrics, cfg *config.Config) *DetailScraper {
	return &DetailScraper{
		session:  session,
		store:    store,
		parser:   parser.NewBestBuyParser(),
		throttle: throttle,
		metrics:  m,
		crawl:    cfg.Crawl,
		logger:   slog.Default().With("component", "detail_scraper"),
	}
}

// Enrich loads the work item under key, scrapes its detail page, and merges
// full_specs and all_reviews into the stored record. Soft failures inside
// the page degrade to sentinels; only structural failures (load, navigation,
// final merge) surface as errors.
func (d *DetailScraper) Enrich(ctx context.Context, key string) error {
	item, err := d.store.Load(key)
	if err != nil {
		return fmt.Errorf("failed to load work item: %w", err)
	}

	if item.ProductURL == "" {
		d.logger.Warn("no product URL in work item, skipping", "key", key)
		return nil
	}

	start := time.Now()

	if err := d.throttle.Wait(ctx); err != nil {
		return err
	}

	d.logger.Info("scraping product page", "key", key, "url", item.ProductURL)
	if err := d.session.Navigate(ctx, item.ProductURL); err != nil {
		return fmt.Errorf("failed to navigate to product page: %w", err)
	}

	// Allow client-side rendering to settle before poking at the DOM.
	if err := settle(ctx, d.crawl.SettleTime); err != nil {
		return err
	}

	specs := d.extractSpecifications(ctx)
	d.closeSpecSheet(ctx)

	reviews, err := d.extractAllReviews(ctx)
	if err != nil {
		return err
	}

	if err := d.store.MergeUpdate(key, map[string]any{
		"full_specs":  specs,
		"all_reviews": reviews,
	}); err != nil {
		return fmt.Errorf("failed to merge enrichment data: %w", err)
	}

	d.metrics.IncEnriched()
	d.metrics.AddReviews(len(reviews))
	d.metrics.ObserveEnrich(time.Since(start))

	d.logger.Info("updated work item with full specs and reviews",
		"key", key, "spec_count", len(specs), "review_count", len(reviews))
	return nil
}

// extractSpecifications opens the Specifications disclosure and captures a
// label/value pair per spec block. A missing disclosure, missing blocks, or
// zero captured pairs all yield nil, which persists as the "N/A" sentinel.
func (d *DetailScraper) extractSpecifications(ctx context.Context) models.Specs {
	if !d.session.WaitFor(specButtonSelector, d.crawl.ElementWait) {
		d.logger.Warn("specifications control not found")
		return nil
	}

	button, ok := d.session.Find(specButtonSelector)
	if !ok {
		d.logger.Warn("specifications control disappeared before click")
		return nil
	}

	if err := button.ScriptClick(); err != nil {
		d.logger.Warn("failed to open specifications", "error", err)
		return nil
	}

	d.logger.Debug("opened specifications disclosure")
	if err := settle(ctx, d.crawl.ScrollPause); err != nil {
		return nil
	}

	if !d.session.WaitFor(specBlockSelector, d.crawl.ElementWait) {
		d.logger.Warn("specification blocks never rendered")
		return nil
	}

	specs := models.Specs{}
	for _, block := range d.session.FindAll(specBlockSelector) {
		html, err := block.HTML()
		if err != nil {
			continue
		}
		label, value, ok := d.parser.ParseSpecBlock(html)
		if !ok {
			continue
		}
		specs[label] = value
	}

	if len(specs) == 0 {
		d.logger.Warn("no specification pairs captured")
		return nil
	}

	return specs
}

// closeSpecSheet dismisses the spec overlay if one is open. Best-effort.
func (d *DetailScraper) closeSpecSheet(ctx context.Context) {
	button, ok := d.session.Find(specCloseSelector)
	if !ok {
		d.logger.Debug("no spec sheet to close, or already closed")
		return
	}

	if err := button.Click(); err != nil {
		d.logger.Debug("failed to close spec sheet", "error", err)
		return
	}

	d.logger.Debug("closed specification sheet")
	_ = settle(ctx, d.crawl.ScrollPause)
}

// extractAllReviews clicks through to the full review list and walks its
// pagination until the next control is missing or disabled, or the page cap
// is hit. An absent "see all reviews" control means the product simply has
// no harvestable reviews.
func (d *DetailScraper) extractAllReviews(ctx context.Context) ([]models.Review, error) {
	reviews := []models.Review{}

	if _, err := d.session.Evaluate(scrollToReviewsScript); err != nil {
		d.logger.Warn("failed to scroll toward reviews", "error", err)
	}
	if err := settle(ctx, d.crawl.ScrollPause); err != nil {
		return reviews, err
	}

	if !d.session.WaitFor(seeAllReviewsSelector, d.crawl.ElementWait) {
		d.logger.Warn("'See All Customer Reviews' control not found")
		return reviews, nil
	}

	button, ok := d.session.Find(seeAllReviewsSelector)
	if !ok {
		return reviews, nil
	}
	if err := button.Click(); err != nil {
		d.logger.Warn("could not open full review list", "error", err)
		return reviews, nil
	}

	d.logger.Debug("opened full review list")
	if err := settle(ctx, d.crawl.SettleTime); err != nil {
		return reviews, err
	}

	for page := 1; ; page++ {
		if page > d.crawl.ReviewMaxPages {
			// The site's pagination is trusted to terminate; the cap exists
			// so malformed next-page state cannot loop forever.
			d.logger.Warn("review pagination cap reached, stopping",
				"max_pages", d.crawl.ReviewMaxPages, "reviews", len(reviews))
			break
		}

		if err := ctx.Err(); err != nil {
			return reviews, err
		}

		if !d.session.WaitFor(reviewItemSelector, d.crawl.ReviewItemsWait) {
			d.logger.Warn("review items never rendered", "page", page)
			break
		}

		for _, block := range d.session.FindAll(reviewItemSelector) {
			html, err := block.HTML()
			if err != nil {
				continue
			}
			review, err := d.parser.ParseReview(html)
			if err != nil {
				continue
			}
			reviews = append(reviews, *review)
		}

		d.metrics.IncReviewPage()

		if !d.nextReviewPage(ctx, page) {
			break
		}
	}

	return reviews, nil
}

// nextReviewPage advances the pagination. Reports false on the terminal
// state: next control missing, disabled, or unclickable.
func (d *DetailScraper) nextReviewPage(ctx context.Context, page int) bool {
	next, ok := d.session.Find(reviewNextSelector)
	if !ok {
		d.logger.Info("no more review pages (next control missing)", "page", page)
		return false
	}

	// The control carries aria-disabled="false" while more pages remain.
	if state, ok := next.Attribute("aria-disabled"); !ok || state != "false" {
		d.logger.Info("no more review pages (next is disabled)", "page", page)
		return false
	}

	if err := next.ScriptClick(); err != nil {
		d.logger.Warn("failed to click next review page", "error", err)
		return false
	}

	d.logger.Debug("clicked next review page", "page", page+1)
	if err := d.throttle.Wait(ctx); err != nil {
		return false
	}
	return true
}
