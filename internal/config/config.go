// Package config loads process-wide settings from the environment once at
// startup. The resulting Config is treated as immutable.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/msomdec/credgate/internal/token"
)

const (
	minBcryptCost = 4
	maxBcryptCost = 14
)

// Config holds the service settings.
type Config struct {
	// Server
	Port string

	// Tokens
	JWTSecret string
	// DefaultSecretInUse is true when JWT_SECRET was unset and the built-in
	// placeholder is signing tokens.
	DefaultSecretInUse bool
	TokenTTL           time.Duration

	// Passwords
	BcryptCost int

	// Persistence. MongoURI takes precedence over DatabasePath when set.
	DatabasePath  string
	MongoURI      string
	MongoDatabase string

	// CORS
	CORSAllowedOrigins []string

	// Logging
	LogLevel slog.Level
}

// Load reads Config from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnvString("PORT", "5000"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		DatabasePath:  getEnvString("DATABASE_PATH", "users.db"),
		MongoURI:      os.Getenv("MONGODB_URI"),
		MongoDatabase: getEnvString("MONGODB_DATABASE", "auth"),
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = token.DefaultSecret
		cfg.DefaultSecretInUse = true
	}

	var err error
	if cfg.TokenTTL, err = getEnvDuration("TOKEN_TTL", token.DefaultTTL); err != nil {
		return nil, err
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}

	if cfg.BcryptCost, err = getEnvInt("BCRYPT_COST", 10); err != nil {
		return nil, err
	}
	if cfg.BcryptCost < minBcryptCost || cfg.BcryptCost > maxBcryptCost {
		return nil, fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", minBcryptCost, maxBcryptCost, cfg.BcryptCost)
	}

	cfg.CORSAllowedOrigins = splitList(getEnvString("CORS_ALLOWED_ORIGINS", "*"))

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnvString("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return i, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
