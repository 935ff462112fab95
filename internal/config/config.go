// Package config loads the runtime configuration of the server from the
// environment. A .env file in the working directory is read first if present;
// variables already set in the environment win over the file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const minSecretLength = 16

// Config captures the runtime configuration. It is built once by Load and
// passed by value to the constructors that need it.
type Config struct {
	Port        int
	DBPath      string
	DatabaseURL string // empty selects the embedded SQLite store
	LogLevel    slog.Level

	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitBurst    int

	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// GitHubEnabled reports whether GitHub sign-in is configured.
func (c Config) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

// Load reads the configuration, applying defaults for local development.
// Malformed values are errors rather than silently replaced by defaults.
func Load() (Config, error) {
	// Best effort: a missing .env is the normal case in production.
	_ = godotenv.Load()

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	cfg := Config{
		DBPath:             getString("DB_PATH", "data/cinefav.db"),
		DatabaseURL:        getString("DATABASE_URL", ""),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		GitHubClientID:     getString("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: getString("GITHUB_CLIENT_SECRET", ""),
	}

	var err error
	cfg.Port, err = getInt("PORT", 8080)
	collect(err)
	cfg.TokenTTL, err = getDuration("TOKEN_TTL", 15*time.Minute)
	collect(err)
	cfg.BcryptCost, err = getInt("BCRYPT_COST", 12)
	collect(err)
	cfg.RateLimitRequests, err = getInt("RATE_LIMIT_REQUESTS", 10)
	collect(err)
	cfg.RateLimitWindow, err = getDuration("RATE_LIMIT_WINDOW", time.Minute)
	collect(err)
	cfg.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", 5)
	collect(err)
	cfg.LogLevel, err = parseLevel(getString("LOG_LEVEL", "info"))
	collect(err)

	cfg.GitHubCallbackURL = getString("GITHUB_CALLBACK_URL",
		fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Port))

	collect(cfg.validate())
	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if len(c.JWTSecret) < minSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be set and at least %d characters", minSecretLength))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("rate limit settings must be positive"))
	}
	if c.DatabaseURL == "" && c.DBPath == "" {
		errs = append(errs, errors.New("one of DATABASE_URL or DB_PATH is required"))
	}
	return errors.Join(errs...)
}

func getString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback, fmt.Errorf("%s: %q is not an integer", key, value)
	}
	return i, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback, fmt.Errorf("%s: %q is not a duration", key, value)
	}
	return d, nil
}

func parseLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %q is not a log level", value)
	}
	return level, nil
}
