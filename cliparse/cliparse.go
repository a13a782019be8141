// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort          = 3318
	DefaultDatabaseType  = "sqlite"
	DefaultDatabaseURL   = "quickly-tally.db"
	DefaultWatchInterval = 60 * time.Second
	DefaultAnnounceDelay = 500 * time.Millisecond
	DefaultMaxRounds     = 100
)

type Config struct {
	Port          int
	DatabaseURL   string
	DatabaseType  string
	AdminKeySalt  string
	WatchInterval time.Duration
	AnnounceDelay time.Duration
	MaxRounds     int
	LogLevel      string
	LogFormat     string
}

// LoadEnv reads a .env file into the environment if one exists.
// Variables already set are left alone.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
		slog.Debug("loaded environment file", "path", p)
	}
	return nil
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("quickly-tally", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL or sqlite file")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")

	// Poll lifecycle
	fs.DurationVar(&cfg.WatchInterval, "watch", 0, "How often to check for expired polls")
	fs.DurationVar(&cfg.AnnounceDelay, "announce-delay", -1, "Delay between announced transcript entries")
	fs.IntVar(&cfg.MaxRounds, "max-rounds", 0, "Round limit for ranked tabulation")

	// Logging
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", "", "Log format (text or json)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = DefaultDatabaseType
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType != "sqlite" {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = DefaultDatabaseURL
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	if cfg.WatchInterval == 0 {
		d, err := envDuration("WATCH_INTERVAL", DefaultWatchInterval)
		if err != nil {
			return Config{}, err
		}
		cfg.WatchInterval = d
	}
	if cfg.WatchInterval < 0 {
		return Config{}, errors.New("watch interval must be positive")
	}

	if cfg.AnnounceDelay < 0 {
		d, err := envDuration("ANNOUNCE_DELAY", DefaultAnnounceDelay)
		if err != nil {
			return Config{}, err
		}
		if d < 0 {
			return Config{}, errors.New("ANNOUNCE_DELAY must not be negative")
		}
		cfg.AnnounceDelay = d
	}

	if cfg.MaxRounds == 0 {
		if s := os.Getenv("MAX_ROUNDS"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return Config{}, errors.New("invalid MAX_ROUNDS env variable")
			}
			cfg.MaxRounds = n
		} else {
			cfg.MaxRounds = DefaultMaxRounds
		}
	}
	if cfg.MaxRounds < 1 {
		return Config{}, errors.New("max rounds must be at least 1")
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = os.Getenv("LOG_LEVEL")
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = os.Getenv("LOG_FORMAT")
	}

	return cfg, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable: %w", key, err)
	}
	return d, nil
}
