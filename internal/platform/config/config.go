package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration. FromEnv builds it from
// environment variables so main stays lean.
type Config struct {
	Addr        string
	PostgresURL string
	Redis       RedisConfig
	Kafka       KafkaConfig

	// PostCacheTTL bounds staleness of cached post reads.
	PostCacheTTL time.Duration
}

// RedisConfig holds connection settings for the post read cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds the audit sink settings. Empty Brokers disables Kafka and
// falls back to the in-memory audit store.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	addr := os.Getenv("SENFILTRO_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	topic := os.Getenv("SENFILTRO_AUDIT_TOPIC")
	if topic == "" {
		topic = "senfiltro.audit"
	}

	var brokers []string
	if raw := os.Getenv("SENFILTRO_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Config{
		Addr:        addr,
		PostgresURL: os.Getenv("SENFILTRO_POSTGRES_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("SENFILTRO_REDIS_URL"),
			PoolSize:     envInt("SENFILTRO_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("SENFILTRO_REDIS_MIN_IDLE", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			Topic:   topic,
		},
		PostCacheTTL: envDuration("SENFILTRO_POST_CACHE_TTL", 5*time.Minute),
	}
}

func envInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if v, err := time.ParseDuration(raw); err == nil {
			return v
		}
	}
	return fallback
}
