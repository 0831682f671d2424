// Package config loads daoban settings from DAOBAN_* environment variables
// and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/alexanderramin/daoban/internal/apiclient"
	"github.com/alexanderramin/daoban/internal/db"
	"github.com/alexanderramin/daoban/internal/store"
)

// DefaultEnvFile is read when DAOBAN_ENV_FILE is unset.
const DefaultEnvFile = ".env"

// Config holds all runtime settings.
type Config struct {
	API          apiclient.Config
	SaveDebounce time.Duration
	LoadRetries  int
	LoadBackoff  time.Duration
	DBPath       string
	LogLevel     string
	LogFile      string

	// EnvFile is the .env file that was read, empty if none was found.
	EnvFile string
}

// DefaultConfig returns a Config with defaults for every setting.
func DefaultConfig() Config {
	return Config{
		API:          apiclient.DefaultConfig(),
		SaveDebounce: store.DefaultDebounce,
		LoadRetries:  store.DefaultMaxRetries,
		LoadBackoff:  store.DefaultBackoff,
		DBPath:       db.DefaultPath(),
		LogLevel:     "warn",
	}
}

// Load reads configuration from the process environment, falling back to
// values from the .env file and then to defaults. Process variables win
// over the file. Malformed values are ignored.
func Load() (Config, error) {
	cfg := DefaultConfig()

	envFile := os.Getenv("DAOBAN_ENV_FILE")
	explicit := envFile != ""
	if !explicit {
		envFile = DefaultEnvFile
	}
	fileVars, err := godotenv.Read(envFile)
	switch {
	case err == nil:
		cfg.EnvFile = envFile
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		fileVars = nil
	default:
		return cfg, fmt.Errorf("reading env file %s: %w", envFile, err)
	}

	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return fileVars[key]
	}

	if v := lookup("DAOBAN_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if d, ok := parseMillis(lookup("DAOBAN_TIMEOUT_MS")); ok {
		cfg.API.Timeout = d
	}
	if d, ok := parseMillis(lookup("DAOBAN_SAVE_DEBOUNCE_MS")); ok {
		cfg.SaveDebounce = d
	}
	if v := lookup("DAOBAN_LOAD_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.LoadRetries = n
		}
	}
	if d, ok := parseMillis(lookup("DAOBAN_LOAD_BACKOFF_MS")); ok {
		cfg.LoadBackoff = d
	}
	if v := lookup("DAOBAN_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := lookup("DAOBAN_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := lookup("DAOBAN_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}

	return cfg, nil
}

// Validate reports settings that would make the client unusable.
func (c Config) Validate() error {
	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("DAOBAN_API_URL/DAOBAN_TIMEOUT_MS: %w", err)
	}
	if c.DBPath == "" {
		return errors.New("DAOBAN_DB must not be empty")
	}
	return nil
}

func parseMillis(v string) (time.Duration, bool) {
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return time.Duration(n) * time.Millisecond, true
}
