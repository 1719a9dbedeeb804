package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProductItemSentinels(t *testing.T) {
	item := NewProductItem()

	assert.Equal(t, NotAvailable, item.Name)
	assert.Equal(t, NotAvailable, item.Price)
	assert.Equal(t, NotAvailable, item.Rating)
	assert.Equal(t, "0", item.Reviews)
	assert.Equal(t, NotAvailable, item.Specs)
	assert.Empty(t, item.ProductURL)
	assert.Nil(t, item.FullSpecs)
	assert.Nil(t, item.AllReviews)
}

func TestProductItemOmitsUnscrapedFields(t *testing.T) {
	data, err := json.Marshal(NewProductItem())
	require.NoError(t, err)

	assert.NotContains(t, string(data), "full_specs")
	assert.NotContains(t, string(data), "all_reviews")
	assert.NotContains(t, string(data), "product_url")
}

func TestSpecsMarshalNilAsSentinel(t *testing.T) {
	data, err := json.Marshal(Specs(nil))
	require.NoError(t, err)
	assert.Equal(t, `"N/A"`, string(data))

	data, err = json.Marshal(Specs{"RAM": "16GB"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"RAM":"16GB"}`, string(data))
}

func TestSpecsUnmarshal(t *testing.T) {
	var fromSentinel Specs
	require.NoError(t, json.Unmarshal([]byte(`"N/A"`), &fromSentinel))
	assert.Nil(t, fromSentinel)

	var fromObject Specs
	require.NoError(t, json.Unmarshal([]byte(`{"RAM":"16GB"}`), &fromObject))
	assert.Equal(t, Specs{"RAM": "16GB"}, fromObject)

	var invalid Specs
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &invalid))
}

func TestProductItemRoundTripWithEnrichment(t *testing.T) {
	item := NewProductItem()
	item.Name = "HP 15-inch Laptop"
	item.FullSpecs = Specs{"Screen Size": "15.6 inches"}
	item.AllReviews = []Review{{Title: "Great", Body: "Love it.", Rating: "5"}}

	data, err := json.Marshal(item)
	require.NoError(t, err)

	var decoded ProductItem
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, item.FullSpecs, decoded.FullSpecs)
	assert.Equal(t, item.AllReviews, decoded.AllReviews)
}
