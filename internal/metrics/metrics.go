package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the crawl pipeline.
type Metrics struct {
	Registry            *prometheus.Registry
	CardsExtracted      prometheus.Counter
	FieldFallbacksTotal *prometheus.CounterVec
	ItemsEnriched       prometheus.Counter
	ItemsFailed         prometheus.Counter
	ReviewPagesVisited  prometheus.Counter
	ReviewsHarvested    prometheus.Counter
	EnrichDuration      prometheus.Histogram
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	cards := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crawler_cards_extracted_total",
		Help: "Total listing cards extracted and persisted.",
	})
	fallbacks := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_field_fallbacks_total",
			Help: "Total field extractions that fell back to a sentinel value.",
		},
		[]string{"field"},
	)
	enriched := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crawler_items_enriched_total",
		Help: "Total work items successfully enriched with detail-page data.",
	})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crawler_items_failed_total",
		Help: "Total work items whose enrichment failed and was skipped.",
	})
	reviewPages := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crawler_review_pages_visited_total",
		Help: "Total review pagination pages visited.",
	})
	reviews := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crawler_reviews_harvested_total",
		Help: "Total reviews harvested across all products.",
	})
	enrichDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "crawler_enrich_duration_seconds",
		Help:    "Wall-clock time spent enriching a single work item.",
		Buckets: prometheus.DefBuckets,
	})

	registry.MustRegister(cards, fallbacks, enriched, failed, reviewPages, reviews, enrichDuration)

	return &Metrics{
		Registry:            registry,
		CardsExtracted:      cards,
		FieldFallbacksTotal: fallbacks,
		ItemsEnriched:       enriched,
		ItemsFailed:         failed,
		ReviewPagesVisited:  reviewPages,
		ReviewsHarvested:    reviews,
		EnrichDuration:      enrichDuration,
	}
}

// All helpers tolerate a nil receiver so callers without observability wired
// up do not have to guard every call site.

func (m *Metrics) IncCards() {
	if m != nil {
		m.CardsExtracted.Inc()
	}
}

func (m *Metrics) IncFallback(field string) {
	if m != nil {
		m.FieldFallbacksTotal.WithLabelValues(field).Inc()
	}
}

func (m *Metrics) IncEnriched() {
	if m != nil {
		m.ItemsEnriched.Inc()
	}
}

func (m *Metrics) IncFailed() {
	if m != nil {
		m.ItemsFailed.Inc()
	}
}

func (m *Metrics) IncReviewPage() {
	if m != nil {
		m.ReviewPagesVisited.Inc()
	}
}

func (m *Metrics) AddReviews(n int) {
	if m != nil {
		m.ReviewsHarvested.Add(float64(n))
	}
}

func (m *Metrics) ObserveEnrich(d time.Duration) {
	if m != nil {
		m.EnrichDuration.Observe(d.Seconds())
	}
}
