package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/pebble"
)

// PebbleStore implements Store on an embedded PebbleDB, for deployments
// without a Redis instance. The watcher writes a handful of keys per
// hour, so default options are plenty.
type PebbleStore struct {
	db *pebble.DB
}

// NewPebbleStore opens (or creates) the database under dir.
func NewPebbleStore(dir string) (*PebbleStore, error) {
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebbleStore{db: db}, nil
}

func (s *PebbleStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, closer, err := s.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer closer.Close()
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *PebbleStore) Set(_ context.Context, key string, value []byte) error {
	return s.db.Set([]byte(key), value, pebble.Sync)
}

func (s *PebbleStore) Close() error { return s.db.Close() }
