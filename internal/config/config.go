package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the market simulator.
type Config struct {
	Port                 int
	LogLevel             string
	DataFile             string
	RefreshInterval      time.Duration
	RefreshPacing        time.Duration
	QuoteBaseURL         string
	QuoteAPIKey          string
	QuoteTimeout         time.Duration
	StartingBalanceCents int64
	ReadTimeout          time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	ShutdownTimeout      time.Duration
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. A .env file in the working directory is loaded
// first when present, so the quote API key can stay out of the shell.
// It returns an error for any invalid value.
func Load() (*Config, error) {
	// Silently ignore a missing .env file.
	_ = godotenv.Load()

	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	dataFile := getStr("DATA_FILE", "stocksim.json")

	refreshInterval, err := getDuration("REFRESH_INTERVAL", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	if refreshInterval <= 0 {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: must be positive")
	}

	refreshPacing, err := getDuration("REFRESH_PACING", 13*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_PACING: %w", err)
	}
	if refreshPacing < 0 {
		return nil, fmt.Errorf("invalid REFRESH_PACING: must not be negative")
	}

	quoteBaseURL := getStr("QUOTE_BASE_URL", "https://www.alphavantage.co")
	quoteAPIKey := getStr("QUOTE_API_KEY", "")

	quoteTimeout, err := getDuration("QUOTE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid QUOTE_TIMEOUT: %w", err)
	}

	startingBalance, err := getInt64("STARTING_BALANCE_CENTS", 1_000_000)
	if err != nil {
		return nil, fmt.Errorf("invalid STARTING_BALANCE_CENTS: %w", err)
	}
	if startingBalance < 0 {
		return nil, fmt.Errorf("invalid STARTING_BALANCE_CENTS: must not be negative")
	}

	readTimeout, err := getDuration("READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := getDuration("WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := getDuration("IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	return &Config{
		Port:                 port,
		LogLevel:             logLevel,
		DataFile:             dataFile,
		RefreshInterval:      refreshInterval,
		RefreshPacing:        refreshPacing,
		QuoteBaseURL:         quoteBaseURL,
		QuoteAPIKey:          quoteAPIKey,
		QuoteTimeout:         quoteTimeout,
		StartingBalanceCents: startingBalance,
		ReadTimeout:          readTimeout,
		WriteTimeout:         writeTimeout,
		IdleTimeout:          idleTimeout,
		ShutdownTimeout:      shutdownTimeout,
	}, nil
}

// LiveQuotesEnabled reports whether a live quote provider is configured.
// Without an API key the price chain runs simulated-only.
func (c *Config) LiveQuotesEnabled() bool {
	return c.QuoteAPIKey != ""
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getInt64(key string, defaultVal int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
