// Package config builds runtime configuration from environment variables so
// main stays lean. Optional backends (postgres, redis, kafka, tracing) are
// enabled by the presence of their setting; with none set the service runs
// entirely in memory, which is what tests and local development use.
package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	Environment   string
	LogLevel      string
	DatabaseURL   string
	JWTSigningKey string

	Redis RedisConfig

	KafkaBrokers []string
	AuditTopic   string
}

// RedisConfig tunes the optional read-side cache connection.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// ViewCacheTTL bounds staleness of cached composite views. Read paths are
// advisory (fine previews, statistics), so a short TTL is acceptable.
var ViewCacheTTL = 15 * time.Second

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("CIRC_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	env := os.Getenv("CIRC_ENV")
	if env == "" {
		env = "dev"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Server{
		Addr:          addr,
		Environment:   env,
		LogLevel:      os.Getenv("LOG_LEVEL"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSigningKey: jwtSigningKey,
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		KafkaBrokers: brokers,
		AuditTopic:   os.Getenv("AUDIT_FEED_TOPIC"),
	}
}
