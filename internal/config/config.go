// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP server
	Port string

	// Database. An empty path leaves the service running with storage
	// marked unavailable: reads return empty results, writes fail.
	SQLiteDBPath string

	// Session resolution
	SessionSecret     string
	SessionCookieName string
	OwnerOpenID       string

	// Ledger events (disabled when AMQPURL is empty)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Stats cache
	StatsCacheSize int
	StatsCacheTTL  time.Duration

	// Rate limiting
	RateLimitPerMinute int
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/fintrack.db"),

		SessionSecret:     getEnv("SESSION_SECRET", ""),
		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "fin_session"),
		OwnerOpenID:       getEnv("OWNER_OPEN_ID", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fintrack"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		StatsCacheSize: getEnvInt("STATS_CACHE_SIZE", 256),
		StatsCacheTTL:  getEnvDuration("STATS_CACHE_TTL", 30*time.Second),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SessionSecret == "" {
		errors = append(errors, "SESSION_SECRET must be set")
	}

	if c.SQLiteDBPath != "" {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		u, err := url.Parse(c.AMQPURL)
		if err != nil || (u.Scheme != "amqp" && u.Scheme != "amqps") {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': must use amqp:// or amqps:// scheme", c.AMQPURL))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange cannot be empty when AMQP is enabled")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue cannot be empty when AMQP is enabled")
		}
	}

	if c.StatsCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid stats cache size %d: must be positive", c.StatsCacheSize))
	}
	if c.StatsCacheTTL <= 0 {
		errors = append(errors, fmt.Sprintf("invalid stats cache TTL %v: must be positive", c.StatsCacheTTL))
	}
	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be positive", c.RateLimitPerMinute))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errors, "; "))
	}
	return nil
}

// EventsEnabled reports whether the ledger-event publisher is configured.
func (c *Config) EventsEnabled() bool {
	return c.AMQPURL != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
