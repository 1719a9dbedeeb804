package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/Binuda-Dewhan/Web-Scrapping-Project-E-commerce-platform/internal/browser"
	"github.com/Binuda-Dewhan/Web-Scrapping-Project-E-commerce-platform/internal/config"
	"github.com/Binuda-Dewhan/Web-Scrapping-Project-E-commerce-platform/internal/metrics"
	"github.com/Binuda-Dewhan/Web-Scrapping-Project-E-commerce-platform/internal/models"
	"github.com/Binuda-Dewhan/Web-Scrapping-Project-E-commerce-platform/internal/parser"
	"github.com/Binuda-Dewhan/Web-Scrapping-Project-E-commerce-platform/internal/ratelimit"
	"github.com/Binuda-Dewhan/Web-Scrapping-Project-E-commerce-platform/internal/storage"
)

// CategoryCrawler walks the filtered laptop listing: lands on the site,
// dismisses the locale splash when one appears, scrolls the lazy-loaded
// listing to the bottom, and persists one work item per visible card.
type CategoryCrawler struct {
	session  browser.Session
	store    *storage.Store
	parser   *parser.BestBuyParser
	throttle ratelimit.Limiter
	metrics  *metrics.Metrics
	site     config.SiteConfig
	crawl    config.CrawlConfig
	logger   *slog.Logger
}

func NewCategoryCrawler(session browser.Session, store *storage.Store, throttle ratelimit.Limiter, m *metrics.Metrics, cfg *config.Config) *CategoryCrawler {
	return &CategoryCrawler{
		session:  session,
		store:    store,
		parser:   parser.NewBestBuyParser(),
		throttle: throttle,
		metrics:  m,
		site:     cfg.Site,
		crawl:    cfg.Crawl,
		logger:   slog.Default().With("component", "category_crawler"),
	}
}

// Crawl runs discovery once and returns the number of work items persisted.
// Navigation failures are fatal; an empty listing is not.
func (c *CategoryCrawler) Crawl(ctx context.Context) (int, error) {
	if err := c.throttle.Wait(ctx); err != nil {
		return 0, err
	}

	c.logger.Info("opening homepage", "url", c.site.BaseURL)
	if err := c.session.Navigate(ctx, c.site.BaseURL); err != nil {
		return 0, fmt.Errorf("failed to open homepage: %w", err)
	}

	c.dismissSplash(ctx)

	if err := c.throttle.Wait(ctx); err != nil {
		return 0, err
	}

	c.logger.Info("navigating to filtered listing", "url", c.site.ListingURL)
	if err := c.session.Navigate(ctx, c.site.ListingURL); err != nil {
		return 0, fmt.Errorf("failed to open listing page: %w", err)
	}

	if err := c.scrollToLoadAll(ctx); err != nil {
		return 0, err
	}

	return c.extractCards(ctx)
}

// dismissSplash clicks the region selection link if the splash screen shows
// up within a short wait. Its absence is the normal case.
func (c *CategoryCrawler) dismissSplash(ctx context.Context) {
	if !c.session.WaitFor(splashSelector, c.crawl.SplashWait) {
		c.logger.Info("no splash screen found, proceeding directly")
		return
	}

	link, ok := c.session.Find(splashSelector)
	if !ok {
		return
	}

	if err := link.Click(); err != nil {
		c.logger.Warn("splash handling skipped", "error", err)
		return
	}

	c.logger.Info("selected region on splash screen")
	if err := c.throttle.Wait(ctx); err != nil {
		return
	}
}

// scrollToLoadAll scrolls the viewport down in fixed increments until the
// rendered height has been stable for a configured number of consecutive
// checks, or the total attempt bound is hit. The bound guards against pages
// that never stop growing.
func (c *CategoryCrawler) scrollToLoadAll(ctx context.Context) error {
	lastHeight := c.pageHeight()
	stable := 0

	for attempt := 0; attempt < c.crawl.ScrollMaxAttempts; attempt++ {
		if _, err := c.session.Evaluate(scrollByScript(c.crawl.ScrollStep)); err != nil {
			c.logger.Warn("scroll step failed", "error", err)
		}

		if err := settle(ctx, c.crawl.ScrollPause); err != nil {
			return err
		}

		height := c.pageHeight()
		if height == lastHeight {
			stable++
			if stable >= c.crawl.ScrollStableAttempts {
				c.logger.Debug("page height stable, lazy load finished", "height", height)
				return nil
			}
		} else {
			stable = 0
		}
		lastHeight = height
	}

	c.logger.Warn("progressive scroll hit max attempts before page settled",
		"max_attempts", c.crawl.ScrollMaxAttempts, "height", lastHeight)
	return nil
}

func (c *CategoryCrawler) pageHeight() int {
	result, err := c.session.Evaluate(pageHeightScript)
	if err != nil {
		return 0
	}
	height, _ := asInt(result)
	return height
}

func (c *CategoryCrawler) extractCards(ctx context.Context) (int, error) {
	if !c.session.WaitFor(productCardSelector, c.crawl.CardWait) {
		c.logger.Warn("no product cards became visible, returning empty result")
		return 0, nil
	}

	cards := c.session.FindAll(productCardSelector)
	c.logger.Info("found product cards", "count", len(cards))

	saved := 0
	for i, card := range cards {
		if err := ctx.Err(); err != nil {
			return saved, err
		}

		html, err := card.HTML()
		if err != nil {
			c.logger.Warn("failed to read product card", "index", i+1, "error", err)
			continue
		}

		item, err := c.parser.ParseCard(html)
		if err != nil {
			c.logger.Warn("failed to parse product card", "index", i+1, "error", err)
			continue
		}

		c.recordFallbacks(item)
		item.ProductURL = c.absoluteURL(item.ProductURL)

		// Persist immediately so a crash partway through keeps every card
		// scraped so far.
		key, err := c.store.Create(item)
		if err != nil {
			c.logger.Warn("failed to save work item", "name", item.Name, "error", err)
			continue
		}

		c.metrics.IncCards()
		saved++
		c.logger.Debug("scraped product card", "index", i+1, "key", key)
	}

	c.logger.Info("finished card extraction", "total", saved)
	return saved, nil
}

func (c *CategoryCrawler) recordFallbacks(item *models.ProductItem) {
	if item.Name == models.NotAvailable {
		c.metrics.IncFallback("name")
	}
	if item.Price == models.NotAvailable {
		c.metrics.IncFallback("price")
	}
	if item.Rating == models.NotAvailable {
		c.metrics.IncFallback("rating")
	}
	if item.Specs == models.NotAvailable {
		c.metrics.IncFallback("specs")
	}
	if item.ProductURL == "" {
		c.metrics.IncFallback("product_url")
	}
}

// absoluteURL resolves a card link against the base site URL. Already
// absolute links pass through untouched.
func (c *CategoryCrawler) absoluteURL(href string) string {
	if href == "" {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() {
		return href
	}

	base, err := url.Parse(c.site.BaseURL)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
