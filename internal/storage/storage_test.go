package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Binuda-Dewhan/Web-Scrapping-Project-E-commerce-platform/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestSlug(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "spaces become underscores",
			input:    "HP 15-inch Laptop",
			expected: "HP_15-inch_Laptop",
		},
		{
			name:     "path separators become hyphens",
			input:    `Dell XPS 13/2-in-1\Touch`,
			expected: "Dell_XPS_13-2-in-1-Touch",
		},
		{
			name:     "unsafe characters are dropped",
			input:    `Lenovo "Yoga" 7i (16:9)`,
			expected: "Lenovo_Yoga_7i_169",
		},
		{
			name:     "long names are truncated without error",
			input:    strings.Repeat("Lenovo ThinkPad X1 Carbon ", 10),
			expected: strings.Repeat("Lenovo ThinkPad X1 Carbon ", 10),
		},
		{
			name:     "empty name falls back",
			input:    "",
			expected: "product",
		},
		{
			name:     "path separators only",
			input:    `///\\\`,
			expected: "------",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slug(tt.input)
			assert.LessOrEqual(t, len([]rune(got)), maxSlugLen)
			if len([]rune(tt.expected)) <= maxSlugLen {
				assert.Equal(t, tt.expected, got)
			}
			assert.NotContains(t, got, "/")
			assert.NotContains(t, got, "\\")
			assert.NotContains(t, got, " ")
		})
	}
}

func TestCreateAndLoad(t *testing.T) {
	store := newTestStore(t)

	item := models.NewProductItem()
	item.Name = "HP 15-inch Laptop"
	item.Price = "1099.99"
	item.Rating = "4.6"
	item.Reviews = "68"
	item.ProductURL = "https://www.bestbuy.com/site/hp-15/6535745.p"

	key, err := store.Create(item)
	require.NoError(t, err)
	assert.Equal(t, "HP_15-inch_Laptop", key)

	loaded, err := store.Load(key)
	require.NoError(t, err)
	assert.Equal(t, item.Name, loaded.Name)
	assert.Equal(t, item.Price, loaded.Price)
	assert.Equal(t, item.ProductURL, loaded.ProductURL)
	assert.Nil(t, loaded.FullSpecs)
	assert.Nil(t, loaded.AllReviews)
}

func TestCreateOverwritesOnSlugCollision(t *testing.T) {
	store := newTestStore(t)

	first := models.NewProductItem()
	first.Name = "HP 15-inch Laptop"
	first.Price = "999.99"
	_, err := store.Create(first)
	require.NoError(t, err)

	second := models.NewProductItem()
	second.Name = "HP 15-inch Laptop"
	second.Price = "1199.99"
	key, err := store.Create(second)
	require.NoError(t, err)

	loaded, err := store.Load(key)
	require.NoError(t, err)
	assert.Equal(t, "1199.99", loaded.Price)

	keys, err := store.ListAll()
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}

func TestLoadNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644))

	_, err = store.Load("broken")
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestMergeUpdate(t *testing.T) {
	store := newTestStore(t)

	item := models.NewProductItem()
	item.Name = "Dell Inspiron 16"
	item.Price = "749.99"
	key, err := store.Create(item)
	require.NoError(t, err)

	partial := map[string]any{
		"full_specs": models.Specs{"Screen Size": "16 inches", "RAM": "16GB"},
		"all_reviews": []models.Review{
			{Title: "Love it", Body: "Great value.", Rating: "5"},
		},
	}
	require.NoError(t, store.MergeUpdate(key, partial))

	loaded, err := store.Load(key)
	require.NoError(t, err)
	assert.Equal(t, "749.99", loaded.Price, "untouched fields survive the merge")
	assert.Equal(t, models.Specs{"Screen Size": "16 inches", "RAM": "16GB"}, loaded.FullSpecs)
	require.Len(t, loaded.AllReviews, 1)
	assert.Equal(t, "Love it", loaded.AllReviews[0].Title)
}

func TestMergeUpdateIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	item := models.NewProductItem()
	item.Name = "Lenovo Yoga 7i"
	key, err := store.Create(item)
	require.NoError(t, err)

	partial := map[string]any{
		"full_specs":  models.Specs{"CPU": "Intel Core i5"},
		"all_reviews": []models.Review{{Title: "Nice", Body: "Good hinge.", Rating: "4"}},
	}

	require.NoError(t, store.MergeUpdate(key, partial))
	once, err := os.ReadFile(store.path(key))
	require.NoError(t, err)

	require.NoError(t, store.MergeUpdate(key, partial))
	twice, err := os.ReadFile(store.path(key))
	require.NoError(t, err)

	assert.JSONEq(t, string(once), string(twice))
}

func TestMergeUpdateFailedSpecsWritesSentinel(t *testing.T) {
	store := newTestStore(t)

	item := models.NewProductItem()
	item.Name = "HP Envy x360"
	key, err := store.Create(item)
	require.NoError(t, err)

	require.NoError(t, store.MergeUpdate(key, map[string]any{
		"full_specs":  models.Specs(nil),
		"all_reviews": []models.Review{},
	}))

	raw, err := os.ReadFile(store.path(key))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"full_specs": "N/A"`)
	assert.Contains(t, string(raw), `"all_reviews": []`)

	loaded, err := store.Load(key)
	require.NoError(t, err)
	assert.Nil(t, loaded.FullSpecs)
	assert.NotNil(t, loaded.AllReviews)
	assert.Empty(t, loaded.AllReviews)
}

func TestMergeUpdateMissingKey(t *testing.T) {
	store := newTestStore(t)

	err := store.MergeUpdate("ghost", map[string]any{"full_specs": models.Specs(nil)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAll(t *testing.T) {
	store := newTestStore(t)

	names := []string{"HP 15", "Dell Inspiron 14", "Lenovo IdeaPad 3"}
	for _, name := range names {
		item := models.NewProductItem()
		item.Name = name
		_, err := store.Create(item)
		require.NoError(t, err)
	}

	keys, err := store.ListAll()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"HP_15", "Dell_Inspiron_14", "Lenovo_IdeaPad_3"}, keys)
}

func TestNoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	item := models.NewProductItem()
	item.Name = "HP 15"
	_, err = store.Create(item)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.HasSuffix(entry.Name(), ".tmp"), "temp file left behind: %s", entry.Name())
	}
}
