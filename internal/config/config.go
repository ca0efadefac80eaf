// Package config reads service configuration from the environment. A .env
// file in the working directory is loaded first when present.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	PostgresURL     string
	PostgresSchema  string
	KafkaBrokers    []string
	RedisAddr       string
	CacheTTL        time.Duration
	JWTSecret       string
	EmailServiceURL string
	StorefrontURL   string
	OTLPEndpoint    string
	MigrationsPath  string
}

// Load returns the configuration for a service listening on defaultPort
// unless PORT overrides it.
func Load(defaultPort string) Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:            getenv("PORT", defaultPort),
		PostgresURL:     os.Getenv("POSTGRES_URL"),
		PostgresSchema:  getenv("POSTGRES_SCHEMA", "storefront"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		CacheTTL:        5 * time.Minute,
		JWTSecret:       os.Getenv("JWT_SECRET"),
		EmailServiceURL: os.Getenv("EMAIL_SERVICE_URL"),
		StorefrontURL:   os.Getenv("STOREFRONT_URL"),
		OTLPEndpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		MigrationsPath:  getenv("MIGRATIONS_PATH", "file://migrations"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if ttl := os.Getenv("CACHE_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			cfg.CacheTTL = d
		}
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
