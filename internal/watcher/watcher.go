// Package watcher orchestrates one wishlist poll cycle: assemble →
// normalize → detect → persist → notify.
package watcher

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"merkwatch/watcher-service/internal/alertlog"
	"merkwatch/watcher-service/internal/diff"
	"merkwatch/watcher-service/internal/metrics"
	"merkwatch/watcher-service/internal/notify"
	"merkwatch/watcher-service/internal/scraper"
	"merkwatch/watcher-service/internal/store"
)

// Worker runs the full poll cycle against a single wishlist URL.
type Worker struct {
	assembler *scraper.Assembler
	store     store.Store
	notifier  notify.Notifier
	alerts    *alertlog.Recorder
	metrics   *metrics.Registry
	entryURL  string

	mu sync.Mutex // run lock: at most one cycle in flight
}

// New constructs a Worker. alerts may be nil (audit log disabled);
// m may be nil (metrics disabled).
func New(
	assembler *scraper.Assembler,
	st store.Store,
	notifier notify.Notifier,
	alerts *alertlog.Recorder,
	m *metrics.Registry,
	entryURL string,
) *Worker {
	return &Worker{
		assembler: assembler,
		store:     st,
		notifier:  notifier,
		alerts:    alerts,
		metrics:   m,
		entryURL:  entryURL,
	}
}

// Run executes one poll cycle. The persisted snapshot and config are
// read-then-written without transactional isolation, so overlapping
// cycles must not interleave: when a previous cycle is still in flight
// the tick is skipped.
//
// Fetch and parse failures abort the cycle and leave the previously
// persisted snapshot untouched; the returned error is for the caller's
// log only and must never crash the trigger source.
func (w *Worker) Run(ctx context.Context) error {
	if !w.mu.TryLock() {
		log.Println("[watcher] previous run still in flight — skipping tick")
		return nil
	}
	defer w.mu.Unlock()

	start := time.Now()
	err := w.run(ctx)

	if w.metrics != nil {
		w.metrics.RunsTotal.Inc()
		w.metrics.RunDurationSec.Observe(time.Since(start).Seconds())
		if err != nil {
			w.metrics.RunFailures.Inc()
		}
	}
	return err
}

func (w *Worker) run(ctx context.Context) error {
	raw, err := w.assembler.Assemble(ctx, w.entryURL)
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}
	current := scraper.Normalize(raw)
	log.Printf("[watcher] assembled snapshot with %d product(s)", len(current))

	previous, err := store.LoadSnapshot(ctx, w.store)
	if err != nil {
		return fmt.Errorf("load previous snapshot: %w", err)
	}
	cfg, err := store.LoadConfig(ctx, w.store)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	alerts := diff.Detect(previous, current, cfg.DiscountThreshold, cfg.ConditionFilter)

	// The snapshot is overwritten even when nothing qualifies: the next
	// cycle must compare against the latest true state, not a stale one.
	if err := store.SaveSnapshot(ctx, w.store, current); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	if w.metrics != nil {
		w.metrics.Products.Set(float64(len(current)))
	}

	if len(alerts) == 0 {
		log.Printf("[watcher] no items crossed the %d%% threshold", cfg.DiscountThreshold)
		return nil
	}

	log.Printf("[watcher] %d item(s) newly crossed the %d%% threshold", len(alerts), cfg.DiscountThreshold)
	if w.metrics != nil {
		w.metrics.AlertsTotal.Add(float64(len(alerts)))
	}

	// Delivery and audit failures are logged, not returned: the snapshot
	// is already persisted and the cycle itself succeeded.
	if err := w.notifier.Notify(ctx, alerts); err != nil {
		log.Printf("[watcher] notify error: %v", err)
	}
	w.alerts.Record(ctx, alerts)

	return nil
}
