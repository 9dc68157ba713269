package watcher_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"merkwatch/watcher-service/internal/model"
	"merkwatch/watcher-service/internal/scraper"
	"merkwatch/watcher-service/internal/store"
	"merkwatch/watcher-service/internal/watcher"
)

// stubFetcher serves one canned single-page wishlist, swappable between
// runs, or a fixed error.
type stubFetcher struct {
	mu   sync.Mutex
	page *model.PageData
	err  error
}

func (f *stubFetcher) FetchPage(ctx context.Context, pageURL string) (*model.PageData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func (f *stubFetcher) serve(page *model.PageData) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.page = page
	f.err = nil
}

func (f *stubFetcher) serveError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// recordingNotifier captures every non-empty batch it is handed.
type recordingNotifier struct {
	mu      sync.Mutex
	batches [][]model.AlertItem
}

func (n *recordingNotifier) Notify(ctx context.Context, items []model.AlertItem) error {
	if len(items) == 0 {
		return nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.batches = append(n.batches, items)
	return nil
}

func singlePage(discounts map[string]string) *model.PageData {
	products := model.NewRawProductMap()
	// Fixed id order so snapshots are comparable across runs.
	for _, id := range []string{"M01", "M02", "M03"} {
		d, ok := discounts[id]
		if !ok {
			continue
		}
		products.Set(id, model.RawProductRecord{
			ID:    id,
			Title: "Titel " + id,
			Link:  "/" + id,
			Variants: []model.Variant{
				{Price: 4.99, Condition: "Neu", ListPriceDiscountPercent: d},
			},
		})
	}
	return &model.PageData{Content: model.PageContent{
		Products:   *products,
		Pagination: []json.RawMessage{json.RawMessage(`"entry"`)},
	}}
}

func newWorker(f *stubFetcher, st store.Store, n *recordingNotifier) *watcher.Worker {
	return watcher.New(scraper.NewAssembler(f), st, n, nil, nil, "entry")
}

// ── First run ──────────────────────────────────────────────────────────────

func TestRun_FirstRunStoresSnapshotWithoutAlerting(t *testing.T) {
	ctx := context.Background()
	fetcher := &stubFetcher{}
	fetcher.serve(singlePage(map[string]string{"M01": "90"}))
	st := store.NewMemoryStore()
	notifier := &recordingNotifier{}

	if err := newWorker(fetcher, st, notifier).Run(ctx); err != nil {
		t.Fatalf("Run returned unexpected error: %v", err)
	}

	if len(notifier.batches) != 0 {
		t.Errorf("first run sent %d notification batch(es), want 0", len(notifier.batches))
	}
	snapshot, err := store.LoadSnapshot(ctx, st)
	if err != nil {
		t.Fatalf("LoadSnapshot returned unexpected error: %v", err)
	}
	if len(snapshot) != 1 || snapshot[0].ID != "M01" {
		t.Errorf("persisted snapshot = %v, want M01", snapshot)
	}
}

// ── Edge-triggered alerting across runs ────────────────────────────────────

func TestRun_ThresholdCrossingNotifiesOnce(t *testing.T) {
	ctx := context.Background()
	fetcher := &stubFetcher{}
	st := store.NewMemoryStore()
	notifier := &recordingNotifier{}
	worker := newWorker(fetcher, st, notifier)

	// Run 1: M01 below threshold, no previous snapshot.
	fetcher.serve(singlePage(map[string]string{"M01": "30"}))
	if err := worker.Run(ctx); err != nil {
		t.Fatalf("run 1: %v", err)
	}

	// Run 2: M01 crosses, M02 appears for the first time.
	fetcher.serve(singlePage(map[string]string{"M01": "60", "M02": "70"}))
	if err := worker.Run(ctx); err != nil {
		t.Fatalf("run 2: %v", err)
	}

	if len(notifier.batches) != 1 {
		t.Fatalf("notification batches = %d, want 1", len(notifier.batches))
	}
	batch := notifier.batches[0]
	if len(batch) != 1 || batch[0].ID != "M01" || batch[0].OldDiscount != "30" {
		t.Errorf("batch = %+v, want single M01 with oldDiscount 30", batch)
	}

	// Run 3: nothing changed — no re-notification on sustained discount.
	if err := worker.Run(ctx); err != nil {
		t.Fatalf("run 3: %v", err)
	}
	if len(notifier.batches) != 1 {
		t.Errorf("sustained discount re-notified: batches = %d, want still 1", len(notifier.batches))
	}
}

// ── Snapshot persistence on quiet runs ─────────────────────────────────────

func TestRun_SnapshotOverwrittenEvenWithoutAlerts(t *testing.T) {
	ctx := context.Background()
	fetcher := &stubFetcher{}
	st := store.NewMemoryStore()
	notifier := &recordingNotifier{}
	worker := newWorker(fetcher, st, notifier)

	fetcher.serve(singlePage(map[string]string{"M01": "10"}))
	if err := worker.Run(ctx); err != nil {
		t.Fatalf("run 1: %v", err)
	}

	// Discount moves but stays below threshold: no alert, yet the stored
	// snapshot must advance.
	fetcher.serve(singlePage(map[string]string{"M01": "20"}))
	if err := worker.Run(ctx); err != nil {
		t.Fatalf("run 2: %v", err)
	}

	if len(notifier.batches) != 0 {
		t.Errorf("below-threshold change notified: batches = %d, want 0", len(notifier.batches))
	}
	snapshot, err := store.LoadSnapshot(ctx, st)
	if err != nil {
		t.Fatalf("LoadSnapshot returned unexpected error: %v", err)
	}
	if snapshot[0].Discount == nil || *snapshot[0].Discount != "20" {
		t.Errorf("stored discount = %v, want latest value 20", snapshot[0].Discount)
	}
}

// ── Failure boundary ───────────────────────────────────────────────────────

func TestRun_FetchFailureLeavesPreviousSnapshotUntouched(t *testing.T) {
	ctx := context.Background()
	fetcher := &stubFetcher{}
	st := store.NewMemoryStore()
	notifier := &recordingNotifier{}
	worker := newWorker(fetcher, st, notifier)

	fetcher.serve(singlePage(map[string]string{"M01": "30"}))
	if err := worker.Run(ctx); err != nil {
		t.Fatalf("run 1: %v", err)
	}

	fetcher.serveError(errors.New("status 503"))
	if err := worker.Run(ctx); err == nil {
		t.Fatal("failed fetch should surface an error to the caller's log")
	}

	snapshot, err := store.LoadSnapshot(ctx, st)
	if err != nil {
		t.Fatalf("LoadSnapshot returned unexpected error: %v", err)
	}
	if len(snapshot) != 1 || snapshot[0].Discount == nil || *snapshot[0].Discount != "30" {
		t.Errorf("failed run modified the persisted snapshot: %v", snapshot)
	}
	if len(notifier.batches) != 0 {
		t.Errorf("failed run sent notifications: %d", len(notifier.batches))
	}
}

// ── Configured threshold and filter ────────────────────────────────────────

func TestRun_UsesPersistedUserConfig(t *testing.T) {
	ctx := context.Background()
	fetcher := &stubFetcher{}
	st := store.NewMemoryStore()
	notifier := &recordingNotifier{}
	worker := newWorker(fetcher, st, notifier)

	if err := store.SaveConfig(ctx, st, model.UserConfig{
		DiscountThreshold: 80,
		ConditionFilter:   model.ConditionAll,
	}); err != nil {
		t.Fatalf("SaveConfig returned unexpected error: %v", err)
	}

	fetcher.serve(singlePage(map[string]string{"M01": "30"}))
	if err := worker.Run(ctx); err != nil {
		t.Fatalf("run 1: %v", err)
	}

	// 60 crosses the default threshold of 50 but not the configured 80.
	fetcher.serve(singlePage(map[string]string{"M01": "60"}))
	if err := worker.Run(ctx); err != nil {
		t.Fatalf("run 2: %v", err)
	}
	if len(notifier.batches) != 0 {
		t.Fatalf("threshold 80 fired at 60: batches = %d", len(notifier.batches))
	}

	fetcher.serve(singlePage(map[string]string{"M01": "85"}))
	if err := worker.Run(ctx); err != nil {
		t.Fatalf("run 3: %v", err)
	}
	if len(notifier.batches) != 1 {
		t.Errorf("threshold 80 did not fire at 85: batches = %d", len(notifier.batches))
	}
}
