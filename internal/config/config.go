package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Backends accepted by DATA_BACKEND.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendSheets = "sheets"
	BackendHTTP   = "http"
)

var validBackends = []string{BackendMemory, BackendSQLite, BackendSheets, BackendHTTP}

type Config struct {
	// HTTP Server
	Port string

	// Logging
	AppEnv   string
	LogLevel string

	// Transaction source
	DataBackend      string
	TransactionsFile string
	TransactionsURL  string

	// Database
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// Report service
	FetchRetries       int
	FetchBackoff       time.Duration
	FetchTimeout       time.Duration
	ProviderCacheTTL   time.Duration
	DefaultRangeMonths int
}

func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8081"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", ""),

		DataBackend:      getEnv("DATA_BACKEND", BackendMemory),
		TransactionsFile: getEnv("TRANSACTIONS_FILE", ""),
		TransactionsURL:  getEnv("TRANSACTIONS_URL", ""),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/rewards.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "rewards"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "transactions"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Transactions"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", getEnv("GOOGLE_APPLICATION_CREDENTIALS", "")),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		FetchRetries:       getEnvInt("FETCH_RETRIES", 2),
		FetchBackoff:       getEnvDuration("FETCH_BACKOFF", 200*time.Millisecond),
		FetchTimeout:       getEnvDuration("FETCH_TIMEOUT", 10*time.Second),
		ProviderCacheTTL:   getEnvDuration("PROVIDER_CACHE_TTL", 0),
		DefaultRangeMonths: getEnvInt("DEFAULT_RANGE_MONTHS", 3),
	}
}

// IsProduction reports whether APP_ENV names the production environment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case BackendMemory:
		if c.TransactionsFile != "" {
			if _, err := os.Stat(c.TransactionsFile); err != nil {
				errors = append(errors, fmt.Sprintf("transactions file '%s' is not readable: %v", c.TransactionsFile, err))
			}
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	case BackendSheets:
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when using sheets backend")
		}
		if c.GoogleServiceAccountFile == "" && c.GoogleServiceAccountJSON == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for sheets backend")
		}
	case BackendHTTP:
		if c.TransactionsURL == "" {
			errors = append(errors, "TRANSACTIONS_URL is required when using http backend")
		} else if u, err := url.Parse(c.TransactionsURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errors = append(errors, fmt.Sprintf("invalid transactions URL '%s': must be an http(s) URL", c.TransactionsURL))
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

	if c.FetchRetries < 0 || c.FetchRetries > 10 {
		errors = append(errors, fmt.Sprintf("invalid fetch retries %d: must be between 0 and 10", c.FetchRetries))
	}
	if c.FetchTimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid fetch timeout %v: must be at least 100ms", c.FetchTimeout))
	}
	if c.FetchBackoff < 0 {
		errors = append(errors, fmt.Sprintf("invalid fetch backoff %v: must not be negative", c.FetchBackoff))
	}
	if c.ProviderCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid provider cache TTL %v: must not be negative", c.ProviderCacheTTL))
	}
	if c.DefaultRangeMonths < 1 || c.DefaultRangeMonths > 120 {
		errors = append(errors, fmt.Sprintf("invalid default range %d months: must be between 1 and 120", c.DefaultRangeMonths))
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
