package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// unsetEnv clears keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

var configKeys = []string{"JWT_SECRET", "STORE_DRIVER", "DATABASE_URL", "PORT", "JWT_TTL", "CORS_ORIGINS", "TELEGRAM_BOT_TOKEN"}

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t, configKeys...)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("DATABASE_URL", "postgres://localhost/taskcoin")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 9090 {
		t.Fatalf("expected default port 9090, got %d", cfg.Port)
	}
	if cfg.JWTTTL != time.Hour {
		t.Fatalf("expected 1h ttl, got %s", cfg.JWTTTL)
	}
	if cfg.DefaultCoinWorker != 10 || cfg.DefaultCoinTaskCreator != 50 {
		t.Fatalf("unexpected default balances: %d/%d", cfg.DefaultCoinWorker, cfg.DefaultCoinTaskCreator)
	}
	if cfg.AllowNegativeBalance || cfg.UniqueSubmissions {
		t.Fatal("policy flags should default to false")
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected two default origins, got %v", cfg.CORSOrigins)
	}
	if cfg.TelegramLoggingEnabled() {
		t.Fatal("telegram logging should be off without a token")
	}
}

func TestLoadMemoryDriverWithoutDatabase(t *testing.T) {
	unsetEnv(t, configKeys...)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("STORE_DRIVER", "Memory")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StoreDriver != StoreDriverMemory {
		t.Fatalf("expected memory driver, got %q", cfg.StoreDriver)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{"STORE_DRIVER": "memory"}, "parse config:"},
		{"short secret", map[string]string{"STORE_DRIVER": "memory", "JWT_SECRET": "short"}, "JWT_SECRET"},
		{"missing database", map[string]string{"JWT_SECRET": testSecret}, "DATABASE_URL"},
		{"unknown driver", map[string]string{"JWT_SECRET": testSecret, "STORE_DRIVER": "mongo"}, "STORE_DRIVER"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			unsetEnv(t, configKeys...)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
		})
	}
}
