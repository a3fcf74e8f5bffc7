package repository

import (
	"encoding/json"
	"fmt"

	"github.com/yukikurage/taskboard/internal/kvstore"
	"go.uber.org/zap"
)

// loadCollection decodes the JSON array stored under key. A missing or
// malformed value yields an empty collection; only backend failures are
// returned as errors.
func loadCollection[T any](store kvstore.Store, key string, log *zap.Logger) ([]T, error) {
	raw, ok, err := store.Get(key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok || raw == "" {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		log.Warn("treating unparsable collection as empty",
			zap.String("key", key),
			zap.Error(fmt.Errorf("%w: %v", ErrStoreParse, err)))
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// saveCollection replaces the whole collection stored under key.
func saveCollection[T any](store kvstore.Store, key string, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := store.Set(key, string(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
