package scraper

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Binuda-Dewhan/Web-Scrapping-Project-E-commerce-platform/internal/browser"
	"github.com/Binuda-Dewhan/Web-Scrapping-Project-E-commerce-platform/internal/ratelimit"
	"github.com/Binuda-Dewhan/Web-Scrapping-Project-E-commerce-platform/internal/storage"
)

const inspironCardHTML = `<li>
  <h4 class="sku-header">
    <span class="first-title">Dell</span>
    <span class="value">Inspiron 16</span>
  </h4>
  <div data-testid="medium-customer-price">$749.99</div>
  <p class="visually-hidden">Rating 4.2 out of 5 stars with 12 reviews</p>
  <h2 class="product-title" title="Dell - Inspiron 16 Laptop">Dell - Inspiron 16</h2>
  <a class="product-list-item-link" href="/site/item-2.p"></a>
</li>`

const ideapadCardHTML = `<li>
  <h4 class="sku-header">
    <span class="first-title">Lenovo</span>
    <span class="value">IdeaPad 3</span>
  </h4>
  <div data-testid="medium-customer-price">$449.99</div>
  <p class="visually-hidden">Rating 4.5 out of 5 stars with 230 reviews</p>
  <h2 class="product-title" title="Lenovo - IdeaPad 3 Laptop">Lenovo - IdeaPad 3</h2>
  <a class="product-list-item-link" href="/site/item-3.p"></a>
</li>`

const pavilionCardHTML = `<li>
  <h4 class="sku-header">
    <span class="first-title">HP</span>
    <span class="value">Pavilion 15</span>
  </h4>
  <div data-testid="medium-customer-price">$649.99</div>
  <p class="visually-hidden">Rating 4.4 out of 5 stars with 90 reviews</p>
  <h2 class="product-title" title="HP - Pavilion 15 Laptop">HP - Pavilion 15</h2>
  <a class="product-list-item-link" href="/site/item-1.p"></a>
</li>`

// pipelineSession serves the listing during discovery and then bare product
// pages during enrichment. Product URLs matched by failNav refuse to load.
func pipelineSession(failNav string) *fakeSession {
	return &fakeSession{
		navigateFn: func(_ context.Context, url string) error {
			if failNav != "" && strings.Contains(url, failNav) {
				return errors.New("net::ERR_CONNECTION_REFUSED")
			}
			return nil
		},
		waitForFn: func(selector string, _ time.Duration) bool {
			return selector == productCardSelector
		},
		findAllFn: func(selector string) []browser.Element {
			if selector == productCardSelector {
				return cardElements(pavilionCardHTML, inspironCardHTML, ideapadCardHTML)
			}
			return nil
		},
	}
}

func newPipeline(session browser.Session, store *storage.Store, dataDir string) *Pipeline {
	cfg := testConfig(dataDir)
	throttle := ratelimit.NewThrottle(0, 0)
	m := newTestMetrics()
	crawler := NewCategoryCrawler(session, store, throttle, m, cfg)
	enricher := NewDetailScraper(session, store, throttle, m, cfg)
	return NewPipeline(crawler, enricher, store)
}

func TestPipelineRunEnrichesEveryDiscoveredItem(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.New(dir)
	require.NoError(t, err)

	pipeline := newPipeline(pipelineSession(""), store, dir)
	require.NoError(t, pipeline.Run(context.Background()))

	keys, err := store.ListAll()
	require.NoError(t, err)
	require.Len(t, keys, 3)

	// The bare product pages have no spec or review controls, so every item
	// ends up enriched with sentinels.
	for _, key := range keys {
		raw := readRecord(t, dir, key)
		assert.Contains(t, raw, `"full_specs": "N/A"`, "key %s", key)
		assert.Contains(t, raw, `"all_reviews": []`, "key %s", key)
	}
}

func TestPipelineIsolatesPerItemFailures(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.New(dir)
	require.NoError(t, err)

	// item-2 is the Inspiron; its product page refuses to load.
	pipeline := newPipeline(pipelineSession("item-2"), store, dir)
	require.NoError(t, pipeline.Run(context.Background()), "one bad item never fails the run")

	failed := readRecord(t, dir, "Dell_Inspiron_16")
	assert.NotContains(t, failed, "full_specs", "failed item keeps its summary state")
	assert.Contains(t, failed, `"price": "749.99"`)

	for _, key := range []string{"HP_Pavilion_15", "Lenovo_IdeaPad_3"} {
		assert.Contains(t, readRecord(t, dir, key), `"full_specs": "N/A"`, "key %s", key)
	}
}

func TestPipelineDiscoveryFailureIsFatal(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.New(dir)
	require.NoError(t, err)

	session := &fakeSession{
		navigateFn: func(context.Context, string) error {
			return errors.New("net::ERR_NAME_NOT_RESOLVED")
		},
	}

	pipeline := newPipeline(session, store, dir)

	err = pipeline.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "category discovery failed")
}

func TestPipelineStopsOnCancellation(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.New(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())

	// Cancel once discovery has finished; the first enrichment navigation
	// observes the dead context.
	session := pipelineSession("")
	base := session.navigateFn
	session.navigateFn = func(ctx context.Context, url string) error {
		if strings.Contains(url, "item-") {
			cancel()
			return ctx.Err()
		}
		return base(ctx, url)
	}

	pipeline := newPipeline(session, store, dir)

	err = pipeline.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
