// Package alertlog records dispatched alerts in PostgreSQL so past
// notifications can be audited after the snapshot has moved on.
package alertlog

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"merkwatch/watcher-service/internal/model"
)

// NewPool connects to PostgreSQL and verifies connectivity.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the alert_log table when it does not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS alert_log (
		   id           BIGSERIAL PRIMARY KEY,
		   product_id   TEXT NOT NULL,
		   title        TEXT NOT NULL,
		   link         TEXT NOT NULL,
		   old_discount TEXT NOT NULL,
		   new_discount TEXT NOT NULL,
		   fired_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		 )`,
	)
	if err != nil {
		return fmt.Errorf("create alert_log: %w", err)
	}
	return nil
}

// Recorder inserts one row per dispatched AlertItem. A nil Recorder (or
// one without a pool) is a no-op, so the audit log stays optional.
type Recorder struct {
	pool *pgxpool.Pool
}

// NewRecorder constructs a Recorder.
func NewRecorder(pool *pgxpool.Pool) *Recorder {
	return &Recorder{pool: pool}
}

// Record writes the batch. Individual insert failures are logged and do
// not abort the batch — the audit trail must never fail a poll cycle.
func (r *Recorder) Record(ctx context.Context, items []model.AlertItem) {
	if r == nil || r.pool == nil || len(items) == 0 {
		return
	}

	for _, item := range items {
		newDiscount := ""
		if item.Discount != nil {
			newDiscount = *item.Discount
		}
		_, err := r.pool.Exec(ctx,
			`INSERT INTO alert_log (product_id, title, link, old_discount, new_discount)
			 VALUES ($1, $2, $3, $4, $5)`,
			item.ID, item.Title, item.Link, item.OldDiscount, newDiscount,
		)
		if err != nil {
			log.Printf("[alertlog] insert error for product %s: %v", item.ID, err)
		}
	}
}
