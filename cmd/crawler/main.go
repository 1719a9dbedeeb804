package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Binuda-Dewhan/Web-Scrapping-Project-E-commerce-platform/internal/browser"
	"github.com/Binuda-Dewhan/Web-Scrapping-Project-E-commerce-platform/internal/config"
	"github.com/Binuda-Dewhan/Web-Scrapping-Project-E-commerce-platform/internal/metrics"
	"github.com/Binuda-Dewhan/Web-Scrapping-Project-E-commerce-platform/internal/ratelimit"
	"github.com/Binuda-Dewhan/Web-Scrapping-Project-E-commerce-platform/internal/scraper"
	"github.com/Binuda-Dewhan/Web-Scrapping-Project-E-commerce-platform/internal/storage"
	"github.com/Binuda-Dewhan/Web-Scrapping-Project-E-commerce-platform/pkg/logger"
)

func main() {
	var (
		dataDir     = flag.String("data-dir", "", "Directory for per-product JSON records (overrides DATA_DIR)")
		listingURL  = flag.String("listing-url", "", "Filtered listing URL to crawl (overrides LISTING_URL)")
		headless    = flag.Bool("headless", true, "Run browser in headless mode")
		metricsAddr = flag.String("metrics-addr", "", "Prometheus metrics listen address (e.g. :9090), disabled when empty")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dataDir != "" {
		cfg.Store.DataDir = *dataDir
	}
	if *listingURL != "" {
		cfg.Site.ListingURL = *listingURL
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("starting laptop crawl pipeline")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutdown signal received")
		cancel()
	}()

	store, err := storage.New(cfg.Store.DataDir)
	if err != nil {
		logger.Error("failed to initialize store", "error", err)
		os.Exit(1)
	}

	b, err := browser.New(&browser.Options{
		Headless:       *headless && cfg.Browser.Headless,
		Timeout:        cfg.Browser.PageLoadTimeout,
		NavRetries:     cfg.Browser.NavRetries,
		UserAgent:      cfg.Browser.UserAgent,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
	})
	if err != nil {
		logger.Error("failed to initialize browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	m := metrics.New()
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	throttle := ratelimit.NewThrottle(cfg.Crawl.WaitMin, cfg.Crawl.WaitMax)

	discovery := scraper.NewCategoryCrawler(b, store, throttle, m, cfg)
	enricher := scraper.NewDetailScraper(b, store, throttle, m, cfg)
	pipeline := scraper.NewPipeline(discovery, enricher, store)

	if err := pipeline.Run(ctx); err != nil {
		logger.Error("pipeline run failed", "error", err)
		b.Close()
		os.Exit(1)
	}

	logger.Info("crawl pipeline finished")
}
