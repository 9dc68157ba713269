// Package store implements the persistence gateway: a named-key value
// store holding the last snapshot and the user configuration, with
// Redis, Pebble and in-memory backends.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"merkwatch/watcher-service/internal/model"
)

// Keys used in the gateway. Persistence holds at most one snapshot — the
// most recent; no history beyond one generation is retained.
const (
	KeySnapshot        = "wishlistData"
	KeyThreshold       = "discountThreshold"
	KeyConditionFilter = "conditionFilter"
)

// Store abstracts the persistence backend.
type Store interface {
	// Get returns the value for key, reporting false when the key is
	// absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set durably stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// LoadSnapshot reads the previously persisted snapshot. A nil snapshot
// with nil error means no snapshot has ever been stored.
func LoadSnapshot(ctx context.Context, s Store) (model.Snapshot, error) {
	raw, ok, err := s.Get(ctx, KeySnapshot)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", KeySnapshot, err)
	}
	if !ok {
		return nil, nil
	}
	var snapshot model.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return snapshot, nil
}

// SaveSnapshot overwrites the persisted snapshot.
func SaveSnapshot(ctx context.Context, s Store, snapshot model.Snapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.Set(ctx, KeySnapshot, raw); err != nil {
		return fmt.Errorf("set %s: %w", KeySnapshot, err)
	}
	return nil
}

// LoadConfig reads the user configuration, falling back to defaults for
// keys that have never been written.
func LoadConfig(ctx context.Context, s Store) (model.UserConfig, error) {
	cfg := model.DefaultUserConfig()

	raw, ok, err := s.Get(ctx, KeyThreshold)
	if err != nil {
		return cfg, fmt.Errorf("get %s: %w", KeyThreshold, err)
	}
	if ok {
		if err := json.Unmarshal(raw, &cfg.DiscountThreshold); err != nil {
			return cfg, fmt.Errorf("decode %s: %w", KeyThreshold, err)
		}
	}

	raw, ok, err = s.Get(ctx, KeyConditionFilter)
	if err != nil {
		return cfg, fmt.Errorf("get %s: %w", KeyConditionFilter, err)
	}
	if ok {
		if err := json.Unmarshal(raw, &cfg.ConditionFilter); err != nil {
			return cfg, fmt.Errorf("decode %s: %w", KeyConditionFilter, err)
		}
	}

	return cfg, nil
}

// SaveConfig persists both configuration keys.
func SaveConfig(ctx context.Context, s Store, cfg model.UserConfig) error {
	threshold, err := json.Marshal(cfg.DiscountThreshold)
	if err != nil {
		return fmt.Errorf("encode %s: %w", KeyThreshold, err)
	}
	if err := s.Set(ctx, KeyThreshold, threshold); err != nil {
		return fmt.Errorf("set %s: %w", KeyThreshold, err)
	}

	filter, err := json.Marshal(cfg.ConditionFilter)
	if err != nil {
		return fmt.Errorf("encode %s: %w", KeyConditionFilter, err)
	}
	if err := s.Set(ctx, KeyConditionFilter, filter); err != nil {
		return fmt.Errorf("set %s: %w", KeyConditionFilter, err)
	}

	return nil
}
