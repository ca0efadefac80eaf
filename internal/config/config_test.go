package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("PORT", "")
		t.Setenv("KAFKA_BROKERS", "")
		t.Setenv("CACHE_TTL", "")
		t.Setenv("POSTGRES_SCHEMA", "")

		cfg := Load("8081")

		if cfg.Port != "8081" {
			t.Errorf("expected port 8081, got %s", cfg.Port)
		}
		if cfg.PostgresSchema != "storefront" {
			t.Errorf("expected schema storefront, got %s", cfg.PostgresSchema)
		}
		if cfg.KafkaBrokers != nil {
			t.Errorf("expected no brokers, got %v", cfg.KafkaBrokers)
		}
		if cfg.CacheTTL != 5*time.Minute {
			t.Errorf("expected 5m cache ttl, got %v", cfg.CacheTTL)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("PORT", "9000")
		t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
		t.Setenv("CACHE_TTL", "30s")

		cfg := Load("8081")

		if cfg.Port != "9000" {
			t.Errorf("expected port 9000, got %s", cfg.Port)
		}
		if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
			t.Errorf("unexpected brokers: %v", cfg.KafkaBrokers)
		}
		if cfg.CacheTTL != 30*time.Second {
			t.Errorf("expected 30s cache ttl, got %v", cfg.CacheTTL)
		}
	})
}
