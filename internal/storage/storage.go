package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Binuda-Dewhan/Web-Scrapping-Project-E-commerce-platform/internal/models"
)

var (
	ErrNotFound = errors.New("work item not found")
	ErrCorrupt  = errors.New("work item record is corrupt")
)

const maxSlugLen = 50

// Store persists one JSON file per discovered product, keyed by a
// filesystem-safe slug derived from the product name. Two distinct products
// with the same name map to the same slug and the later save wins; report
// generation keys on the same slugs, so this is kept as-is.
type Store struct {
	dir    string
	logger *slog.Logger
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	return &Store{
		dir:    dir,
		logger: slog.Default().With("component", "storage"),
	}, nil
}

// Slug derives the storage key for a product name: path separators become
// hyphens, spaces become underscores, anything else outside [A-Za-z0-9._-]
// is dropped, and the result is truncated to a bounded length.
func Slug(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\':
			b.WriteRune('-')
		case r == ' ':
			b.WriteRune('_')
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}

	slug := b.String()
	if runes := []rune(slug); len(runes) > maxSlugLen {
		slug = string(runes[:maxSlugLen])
	}
	if slug == "" {
		slug = "product"
	}
	return slug
}

// Create writes the full item under the slug derived from its name and
// returns the key. An existing record with the same key is overwritten.
func (s *Store) Create(item *models.ProductItem) (string, error) {
	key := Slug(item.Name)

	data, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal work item: %w", err)
	}

	if err := s.writeAtomic(key, data); err != nil {
		return "", err
	}

	s.logger.Debug("saved work item", "key", key)
	return key, nil
}

// Load reads and parses the record stored under key.
func (s *Store) Load(key string) (*models.ProductItem, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to read work item %s: %w", key, err)
	}

	var item models.ProductItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}

	return &item, nil
}

// MergeUpdate shallow-merges the partial fields over the stored record: new
// keys are added, existing keys replaced, everything else left untouched.
// The write goes through a temp file and rename so a crash mid-write cannot
// truncate the record.
func (s *Store) MergeUpdate(key string, partial map[string]any) error {
	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return fmt.Errorf("failed to read work item %s: %w", key, err)
	}

	var record map[string]any
	if err := json.Unmarshal(raw, &record); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}

	// Round-trip the partial through JSON so typed values (Specs, []Review)
	// land in the record in their serialized form.
	encoded, err := json.Marshal(partial)
	if err != nil {
		return fmt.Errorf("failed to marshal partial update: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return fmt.Errorf("failed to decode partial update: %w", err)
	}

	for k, v := range fields {
		record[k] = v
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal merged record: %w", err)
	}

	if err := s.writeAtomic(key, data); err != nil {
		return err
	}

	s.logger.Debug("merged work item update", "key", key)
	return nil
}

// ListAll returns the keys of every stored record. Order follows the
// directory listing and is not guaranteed stable across runs.
func (s *Store) ListAll() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read store directory: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".json") {
			keys = append(keys, strings.TrimSuffix(name, ".json"))
		}
	}

	return keys, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *Store) writeAtomic(key string, data []byte) error {
	target := s.path(key)
	tmp := target + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write work item %s: %w", key, err)
	}

	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("failed to finalize work item %s: %w", key, err)
	}

	return nil
}
