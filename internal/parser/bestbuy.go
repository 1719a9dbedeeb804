package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Binuda-Dewhan/Web-Scrapping-Project-E-commerce-platform/internal/models"
)

// Fragment-level selectors for BestBuy markup. These are tied to the site's
// current DOM; a markup change means updating them here, not the pipeline.
const (
	cardBrandSelector   = "span.first-title"
	cardModelSelector   = "span.value"
	cardPriceSelector   = `[data-testid="medium-customer-price"]`
	cardRatingSelector  = "p.visually-hidden"
	cardReviewsSelector = "span.c-reviews.order-2"
	cardLinkSelector    = "a.product-list-item-link"
	cardTitleSelector   = "h2.product-title"

	reviewTitleSelector  = "h4.review-title"
	reviewBodySelector   = "p.pre-white-space"
	reviewRatingSelector = "p.visually-hidden"

	specLabelSelector = "div.font-weight-medium"
	specValueSelector = "div.pl-300"
)

var (
	listingRatingPattern = regexp.MustCompile(`Rating\s+([0-9.]+)\s+out of 5`)
	reviewRatingPattern  = regexp.MustCompile(`Rated\s+([0-9.]+)\s+out of 5`)
)

// BestBuyParser extracts structured fields from HTML fragments handed over
// by the crawler: listing cards, review items, and specification blocks.
type BestBuyParser struct{}

func NewBestBuyParser() *BestBuyParser {
	return &BestBuyParser{}
}

// ParseCard extracts the summary fields from one listing card. Every field
// falls back to its sentinel on its own; an error is returned only when the
// fragment itself cannot be parsed.
func (p *BestBuyParser) ParseCard(html string) (*models.ProductItem, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse card HTML: %w", err)
	}

	item := models.NewProductItem()

	brand := strings.TrimSpace(doc.Find(cardBrandSelector).First().Text())
	model := strings.TrimSpace(doc.Find(cardModelSelector).First().Text())
	if name := strings.TrimSpace(brand + " " + model); name != "" {
		item.Name = name
	}

	if priceText := doc.Find(cardPriceSelector).First().Text(); strings.TrimSpace(priceText) != "" {
		item.Price = NormalizePrice(priceText)
	}

	if ratingText := doc.Find(cardRatingSelector).First().Text(); ratingText != "" {
		item.Rating = ParseListingRating(ratingText)
	}

	if reviewsText := strings.TrimSpace(doc.Find(cardReviewsSelector).First().Text()); reviewsText != "" {
		item.Reviews = strings.Trim(reviewsText, "()")
	}

	if title := doc.Find(cardTitleSelector).First(); title.Length() > 0 {
		if attr, ok := title.Attr("title"); ok && strings.TrimSpace(attr) != "" {
			item.Specs = strings.TrimSpace(attr)
		} else if text := strings.TrimSpace(title.Text()); text != "" {
			item.Specs = text
		}
	}

	if href, ok := doc.Find(cardLinkSelector).First().Attr("href"); ok {
		item.ProductURL = strings.TrimSpace(href)
	}

	return item, nil
}

// ParseReview extracts one review item. Title and body are required; a
// missing rating degrades to "N/A".
func (p *BestBuyParser) ParseReview(html string) (*models.Review, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse review HTML: %w", err)
	}

	title := doc.Find(reviewTitleSelector).First()
	body := doc.Find(reviewBodySelector).First()
	if title.Length() == 0 || body.Length() == 0 {
		return nil, fmt.Errorf("review item missing title or body")
	}

	review := &models.Review{
		Title:  strings.TrimSpace(title.Text()),
		Body:   strings.TrimSpace(body.Text()),
		Rating: models.NotAvailable,
	}

	if ratingText := doc.Find(reviewRatingSelector).First().Text(); ratingText != "" {
		review.Rating = ParseReviewRating(ratingText)
	}

	return review, nil
}

// ParseSpecBlock extracts a label/value pair from one specification block.
// Malformed blocks report ok=false and are skipped by the caller.
func (p *BestBuyParser) ParseSpecBlock(html string) (label, value string, ok bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", false
	}

	label = strings.TrimSpace(doc.Find(specLabelSelector).First().Text())
	value = strings.TrimSpace(doc.Find(specValueSelector).First().Text())
	if label == "" || value == "" {
		return "", "", false
	}

	return label, value, true
}

// ParseListingRating pulls the numeric rating out of an accessibility label
// like "Rating 4.6 out of 5 stars with 68 reviews".
func ParseListingRating(text string) string {
	if m := listingRatingPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return models.NotAvailable
}

// ParseReviewRating pulls the numeric rating out of a per-review
// accessibility label like "Rated 5 out of 5 stars".
func ParseReviewRating(text string) string {
	if m := reviewRatingPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return models.NotAvailable
}

// NormalizePrice strips the currency symbol and thousands separators,
// leaving a plain decimal string.
func NormalizePrice(text string) string {
	text = strings.ReplaceAll(text, "$", "")
	text = strings.ReplaceAll(text, ",", "")
	return strings.TrimSpace(text)
}
