// Package config loads runtime settings from the environment.
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
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// AMQP. An empty URL disables the queue: alert regeneration then runs
	// in-process instead of on the worker.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Worker
	AlertSweepInterval time.Duration

	// Insights
	InsightCacheTTL time.Duration

	// DefaultUser backs requests that carry no user header.
	DefaultUser string
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8082"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/fintrack.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fintrack"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "alert_regenerate"),

		AlertSweepInterval: getEnvDuration("ALERT_SWEEP_INTERVAL", time.Hour),
		InsightCacheTTL:    getEnvDuration("INSIGHT_CACHE_TTL", 5*time.Minute),

		DefaultUser: getEnv("DEFAULT_USER", "default"),
	}
}

// Validate checks the configuration and returns every problem at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
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
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.AlertSweepInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid alert sweep interval %v: must be at least 1 minute", c.AlertSweepInterval))
	} else if c.AlertSweepInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid alert sweep interval %v: must be at most 24 hours", c.AlertSweepInterval))
	}

	if c.InsightCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid insight cache TTL %v: must be at least 1 second", c.InsightCacheTTL))
	} else if c.InsightCacheTTL > time.Hour {
		errors = append(errors, fmt.Sprintf("invalid insight cache TTL %v: must be at most 1 hour", c.InsightCacheTTL))
	}

	if strings.TrimSpace(c.DefaultUser) == "" {
		errors = append(errors, "default user cannot be empty")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// AMQPEnabled reports whether the queue is configured.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
