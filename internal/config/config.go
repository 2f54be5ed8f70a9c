// Package config reads the service configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	APIURL *url.URL
	Port   string

	// Database
	DBFile string

	// Owner scoping, disabled when empty
	JWTSecret string

	// AMQP, events are only logged when the URL is empty
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	// Bank integration
	UsePlaid               bool
	PlaidClientID          string
	PlaidSecret            string
	PlaidEnvironment       string
	PlaidAccessTokenSecret string
	SyncConcurrency        int
	SyncLookback           time.Duration

	// Tax
	TaxBracketsFile string

	apiURL string
}

// Load reads the configuration. Call Validate before using it.
func Load() *Config {
	cfg := &Config{
		apiURL: os.Getenv("API_URL"),
		Port:   getEnv("PORT", "8080"),
		DBFile: getEnv("DB_FILE", "data/budgeter.db"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		AMQPURL:        os.Getenv("AMQP_URL"),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "budgeter"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "budgeter"),

		UsePlaid:               getEnvBool("USE_PLAID"),
		PlaidClientID:          os.Getenv("PLAID_CLIENT_ID"),
		PlaidSecret:            os.Getenv("PLAID_SECRET"),
		PlaidEnvironment:       getEnv("PLAID_ENVIRONMENT", "sandbox"),
		PlaidAccessTokenSecret: os.Getenv("PLAID_ACCESS_TOKEN_SECRET"),
		SyncConcurrency:        getEnvInt("SYNC_CONCURRENCY", 4),
		SyncLookback:           getEnvDuration("SYNC_LOOKBACK", 720*time.Hour),

		TaxBracketsFile: os.Getenv("TAX_BRACKETS_FILE"),
	}

	return cfg
}

// Validate validates the configuration and returns an error listing all problems.
func (c *Config) Validate() error {
	var errors []string

	if c.apiURL == "" {
		errors = append(errors, "API_URL must be set")
	} else if u, err := url.Parse(c.apiURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, fmt.Sprintf("invalid API_URL '%s': must be an absolute URL", c.apiURL))
	} else {
		c.APIURL = u
	}

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DBFile == "" {
		errors = append(errors, "DB_FILE cannot be empty")
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
	}

	if c.UsePlaid {
		if c.PlaidClientID == "" {
			errors = append(errors, "PLAID_CLIENT_ID is required when USE_PLAID is enabled")
		}
		if c.PlaidSecret == "" {
			errors = append(errors, "PLAID_SECRET is required when USE_PLAID is enabled")
		}
		if c.PlaidAccessTokenSecret == "" {
			errors = append(errors, "PLAID_ACCESS_TOKEN_SECRET is required when USE_PLAID is enabled")
		}

		validEnvironments := []string{"sandbox", "development", "production"}
		isValid := false
		for _, e := range validEnvironments {
			if c.PlaidEnvironment == e {
				isValid = true
				break
			}
		}
		if !isValid {
			errors = append(errors, fmt.Sprintf("invalid Plaid environment '%s': must be one of %v", c.PlaidEnvironment, validEnvironments))
		}
	}

	if c.SyncConcurrency < 1 || c.SyncConcurrency > 64 {
		errors = append(errors, fmt.Sprintf("invalid sync concurrency %d: must be between 1 and 64", c.SyncConcurrency))
	}

	if c.SyncLookback < 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid sync lookback %v: must be at least 24 hours", c.SyncLookback))
	}

	if c.TaxBracketsFile != "" {
		if _, err := os.Stat(c.TaxBracketsFile); err != nil {
			errors = append(errors, fmt.Sprintf("tax brackets file cannot be read: %v", err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
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

// getEnvBool accepts 1, y and true in any case.
func getEnvBool(key string) bool {
	switch strings.ToUpper(os.Getenv(key)) {
	case "1", "Y", "TRUE":
		return true
	}
	return false
}
