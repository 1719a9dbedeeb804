package scraper

import (
	"context"
	"fmt"
	"time"
)

// Page-level selectors for BestBuy. Site-specific by design: a markup change
// means updating these, not the crawl logic around them.
const (
	splashSelector        = "a.us-link"
	productCardSelector   = "ul.plp-product-list > li"
	specButtonSelector    = `button:has(h3:text-is("Specifications"))`
	specBlockSelector     = "div.dB7j8sHUbncyf79K"
	specCloseSelector     = `button[data-testid="brix-sheet-closeButton"]`
	seeAllReviewsSelector = `button:has-text("See All Customer Reviews")`
	reviewItemSelector    = "li.review-item"
	reviewNextSelector    = "li.inline.page.next a"
)

const (
	pageHeightScript      = "document.body.scrollHeight"
	scrollToReviewsScript = "window.scrollTo(0, document.body.scrollHeight * 0.7);"
)

func scrollByScript(step int) string {
	return fmt.Sprintf("window.scrollBy(0, %d);", step)
}

// settle blocks for the given duration unless ctx is cancelled first.
func settle(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// asInt coerces a script evaluation result to an int. Playwright hands
// numbers back as float64 or int depending on magnitude.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
