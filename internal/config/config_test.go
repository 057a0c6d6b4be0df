package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "REDIS_URI", "STORE_DRIVER", "TOKEN_TTL", "PUBLIC_BASE_URL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.HTTPPort != "8080" {
		t.Fatalf("port = %s, want 8080", cfg.HTTPPort)
	}
	if cfg.StoreDriver != StoreMongo {
		t.Fatalf("store driver = %s, want %s", cfg.StoreDriver, StoreMongo)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("token ttl = %s, want 24h", cfg.TokenTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("REDIS_URI", "redis://cache:6379")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("PUBLIC_BASE_URL", "https://keno.example.com/")

	cfg := Load()
	if cfg.HTTPPort != "9000" {
		t.Fatalf("port = %s, want 9000", cfg.HTTPPort)
	}
	if cfg.RedisAddr != "cache:6379" {
		t.Fatalf("redis addr = %s, want cache:6379", cfg.RedisAddr)
	}
	if cfg.StoreDriver != StorePostgres {
		t.Fatalf("store driver = %s, want %s", cfg.StoreDriver, StorePostgres)
	}
	if cfg.TokenTTL != 90*time.Minute {
		t.Fatalf("token ttl = %s, want 90m", cfg.TokenTTL)
	}
	if cfg.PublicBaseURL != "https://keno.example.com" {
		t.Fatalf("base url = %s", cfg.PublicBaseURL)
	}
}

func TestLoadIgnoresBadDuration(t *testing.T) {
	t.Setenv("TOKEN_TTL", "soon")
	if got := Load().TokenTTL; got != 24*time.Hour {
		t.Fatalf("token ttl = %s, want default", got)
	}
}
