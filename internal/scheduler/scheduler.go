// Package scheduler wires up the cron job that periodically triggers the
// wishlist poll cycle.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"merkwatch/watcher-service/internal/watcher"
)

// Scheduler wraps robfig/cron and manages the poll loop.
type Scheduler struct {
	cron   *cron.Cron
	worker *watcher.Worker
	spec   string // cron spec, e.g. "@every 60m"
}

// New creates a Scheduler that fires every intervalMinutes minutes.
func New(worker *watcher.Worker, intervalMinutes int) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cron.DefaultLogger)),
		worker: worker,
		spec:   fmt.Sprintf("@every %dm", intervalMinutes),
	}
}

// Start registers the job and starts the scheduler. Also runs one poll
// immediately so a fresh install has a snapshot without waiting for the
// first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runPoll(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)

	// Run immediately on startup (non-blocking)
	go s.runPoll(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

// runPoll triggers one cycle. Worker errors are reported here and go no
// further — a failed cycle simply waits for the next tick.
func (s *Scheduler) runPoll(ctx context.Context) {
	log.Println("[scheduler] Poll cycle started")
	if err := s.worker.Run(ctx); err != nil {
		log.Printf("[scheduler] Poll cycle failed: %v", err)
		return
	}
	log.Println("[scheduler] Poll cycle complete")
}
