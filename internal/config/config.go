// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Backend names accepted in STORE_BACKEND.
const (
	BackendRedis  = "redis"
	BackendPebble = "pebble"
)

// Config holds all runtime configuration for the watcher service.
type Config struct {
	Port                string
	WishlistURL         string
	StoreBackend        string // "redis" or "pebble"
	RedisURL            string // required for the redis backend
	PebblePath          string
	DatabaseURL         string // optional; enables the alert audit log
	TelegramBotToken    string // optional; alerts go to the log without it
	TelegramChatID      int64
	PollIntervalMinutes int // how often the cron job fires
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	backend := os.Getenv("STORE_BACKEND")
	if backend == "" {
		backend = BackendRedis
	}
	if backend != BackendRedis && backend != BackendPebble {
		return nil, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendRedis, BackendPebble, backend)
	}

	redisURL := os.Getenv("REDIS_URL")
	if backend == BackendRedis && redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required with STORE_BACKEND=%s", BackendRedis)
	}

	pebblePath := os.Getenv("PEBBLE_PATH")
	if pebblePath == "" {
		pebblePath = "./data/watcher"
	}

	interval := 60
	if s := os.Getenv("POLL_INTERVAL_MINUTES"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("POLL_INTERVAL_MINUTES must be a positive integer, got %q", s)
		}
		interval = v
	}

	var chatID int64
	if s := os.Getenv("TELEGRAM_CHAT_ID"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_CHAT_ID must be an integer, got %q", s)
		}
		chatID = v
	}

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token != "" && chatID == 0 {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}

	wishlistURL := os.Getenv("WISHLIST_URL")
	if wishlistURL == "" {
		wishlistURL = "https://www.medimops.de/MeinMerkzettel/"
	}

	port := os.Getenv("WATCHER_PORT")
	if port == "" {
		port = "8082"
	}

	return &Config{
		Port:                port,
		WishlistURL:         wishlistURL,
		StoreBackend:        backend,
		RedisURL:            redisURL,
		PebblePath:          pebblePath,
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		TelegramBotToken:    token,
		TelegramChatID:      chatID,
		PollIntervalMinutes: interval,
	}, nil
}
