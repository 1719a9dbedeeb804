package models

import "encoding/json"

// NotAvailable marks a field that was attempted but could not be extracted,
// as opposed to a field that simply has not been scraped yet.
const NotAvailable = "N/A"

// ProductItem is one persisted work item: the summary fields captured from a
// listing card, later enriched in place with full specs and reviews from the
// product's detail page.
type ProductItem struct {
	Name       string   `json:"name"`
	Price      string   `json:"price"`
	Rating     string   `json:"rating"`
	Reviews    string   `json:"reviews"`
	Specs      string   `json:"specs"`
	ProductURL string   `json:"product_url,omitempty"`
	FullSpecs  Specs    `json:"full_specs,omitempty"`
	AllReviews []Review `json:"all_reviews,omitempty"`
}

// NewProductItem returns an item with every summary field set to its
// fallback sentinel. Extraction overwrites the fields it manages to capture,
// so a partially broken card still produces a complete record.
func NewProductItem() *ProductItem {
	return &ProductItem{
		Name:    NotAvailable,
		Price:   NotAvailable,
		Rating:  NotAvailable,
		Reviews: "0",
		Specs:   NotAvailable,
	}
}

// Review is a single customer review from a product's detail page.
type Review struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Rating string `json:"rating"`
}

// Specs is the label to value specification map from a product's detail page.
// A nil map means the extraction was attempted and failed; it serializes as
// the "N/A" sentinel string rather than an empty object.
type Specs map[string]string

func (s Specs) MarshalJSON() ([]byte, error) {
	if s == nil {
		return json.Marshal(NotAvailable)
	}
	return json.Marshal(map[string]string(s))
}

func (s *Specs) UnmarshalJSON(data []byte) error {
	var sentinel string
	if err := json.Unmarshal(data, &sentinel); err == nil {
		*s = nil
		return nil
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*s = m
	return nil
}
