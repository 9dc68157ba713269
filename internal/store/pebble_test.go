package store_test

import (
	"context"
	"testing"

	"merkwatch/watcher-service/internal/model"
	"merkwatch/watcher-service/internal/store"
)

func TestPebbleStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := store.NewPebbleStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewPebbleStore returned unexpected error: %v", err)
	}
	defer s.Close()

	_, ok, err := s.Get(ctx, store.KeySnapshot)
	if err != nil {
		t.Fatalf("Get returned unexpected error: %v", err)
	}
	if ok {
		t.Error("fresh database reported a snapshot key")
	}

	if err := store.SaveSnapshot(ctx, s, model.Snapshot{{ID: "M01", Title: "Buch"}}); err != nil {
		t.Fatalf("SaveSnapshot returned unexpected error: %v", err)
	}
	snapshot, err := store.LoadSnapshot(ctx, s)
	if err != nil {
		t.Fatalf("LoadSnapshot returned unexpected error: %v", err)
	}
	if len(snapshot) != 1 || snapshot[0].ID != "M01" {
		t.Errorf("snapshot = %v, want single M01", snapshot)
	}
}
