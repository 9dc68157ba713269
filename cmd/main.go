// merkwatch watcher-service
//
// Periodically polls a medimops wishlist, assembles a normalized product
// snapshot across all pages, detects discounts that newly crossed the
// configured threshold and notifies the user. A small HTTP surface
// exposes the settings panel, the last snapshot and metrics.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"merkwatch/watcher-service/internal/alertlog"
	"merkwatch/watcher-service/internal/config"
	"merkwatch/watcher-service/internal/metrics"
	"merkwatch/watcher-service/internal/notify"
	"merkwatch/watcher-service/internal/scheduler"
	"merkwatch/watcher-service/internal/scraper"
	"merkwatch/watcher-service/internal/server"
	"merkwatch/watcher-service/internal/store"
	"merkwatch/watcher-service/internal/watcher"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[main] no .env file — using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st store.Store
	switch cfg.StoreBackend {
	case config.BackendRedis:
		st, err = store.NewRedisStore(ctx, cfg.RedisURL)
	case config.BackendPebble:
		st, err = store.NewPebbleStore(cfg.PebblePath)
	}
	if err != nil {
		log.Fatalf("[main] store (%s): %v", cfg.StoreBackend, err)
	}
	defer st.Close()
	log.Printf("[main] store backend: %s", cfg.StoreBackend)

	var recorder *alertlog.Recorder
	if cfg.DatabaseURL != "" {
		pool, err := alertlog.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("[main] postgres: %v", err)
		}
		defer pool.Close()
		if err := alertlog.EnsureSchema(ctx, pool); err != nil {
			log.Fatalf("[main] postgres schema: %v", err)
		}
		recorder = alertlog.NewRecorder(pool)
		log.Println("[main] alert audit log enabled")
	}

	var notifier notify.Notifier
	if cfg.TelegramBotToken != "" {
		notifier, err = notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatalf("[main] telegram: %v", err)
		}
		log.Println("[main] telegram notifier enabled")
	} else {
		notifier = notify.NewLogNotifier()
		log.Println("[main] TELEGRAM_BOT_TOKEN not set — alerts go to the log")
	}

	reg := metrics.NewRegistry()

	worker := watcher.New(
		scraper.NewAssembler(scraper.NewHTTPFetcher()),
		st, notifier, recorder, reg, cfg.WishlistURL,
	)

	sched := scheduler.New(worker, cfg.PollIntervalMinutes)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[main] scheduler: %v", err)
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.New(st, reg).Handler(),
	}
	go func() {
		log.Printf("[main] Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] Fatal: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("[main] Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
