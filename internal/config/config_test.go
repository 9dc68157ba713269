package config_test

import (
	"testing"

	"merkwatch/watcher-service/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"WATCHER_PORT", "WISHLIST_URL", "STORE_BACKEND", "REDIS_URL",
		"PEBBLE_PATH", "DATABASE_URL", "TELEGRAM_BOT_TOKEN",
		"TELEGRAM_CHAT_ID", "POLL_INTERVAL_MINUTES",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_RedisBackendRequiresURL(t *testing.T) {
	clearEnv(t)
	if _, err := config.Load(); err == nil {
		t.Error("Load without REDIS_URL expected error, got nil")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load returned unexpected error: %v", err)
	}
	if cfg.Port != "8082" {
		t.Errorf("port = %q, want 8082", cfg.Port)
	}
	if cfg.StoreBackend != config.BackendRedis {
		t.Errorf("backend = %q, want redis", cfg.StoreBackend)
	}
	if cfg.PollIntervalMinutes != 60 {
		t.Errorf("interval = %d, want 60", cfg.PollIntervalMinutes)
	}
	if cfg.WishlistURL == "" {
		t.Error("wishlist URL default missing")
	}
}

func TestLoad_PebbleBackendNeedsNoRedis(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "pebble")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load returned unexpected error: %v", err)
	}
	if cfg.StoreBackend != config.BackendPebble {
		t.Errorf("backend = %q, want pebble", cfg.StoreBackend)
	}
	if cfg.PebblePath == "" {
		t.Error("pebble path default missing")
	}
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "etcd")
	if _, err := config.Load(); err == nil {
		t.Error("Load with unknown backend expected error, got nil")
	}
}

func TestLoad_RejectsBadInterval(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "pebble")
	for _, v := range []string{"0", "-5", "soon"} {
		t.Setenv("POLL_INTERVAL_MINUTES", v)
		if _, err := config.Load(); err == nil {
			t.Errorf("Load with POLL_INTERVAL_MINUTES=%q expected error, got nil", v)
		}
	}
}

func TestLoad_TelegramTokenRequiresChatID(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "pebble")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	if _, err := config.Load(); err == nil {
		t.Error("Load with token but no chat id expected error, got nil")
	}

	t.Setenv("TELEGRAM_CHAT_ID", "42")
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load returned unexpected error: %v", err)
	}
	if cfg.TelegramChatID != 42 {
		t.Errorf("chat id = %d, want 42", cfg.TelegramChatID)
	}
}
