package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "CAMPUS_"

var ErrInvalidConfig = errors.New("invalid config")

// Load layers, lowest precedence first: defaults from New, the YAML file named
// by CAMPUS_CONFIG (if any), then CAMPUS_* environment variables such as
// CAMPUS_DB_HOST or CAMPUS_JWT_SECRET.
func Load(_ context.Context) (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(envPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading env: %w", err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.ServerPort == "":
		return fmt.Errorf("%w: server_port must not be empty", ErrInvalidConfig)
	case c.Store != "postgres" && c.Store != "memory":
		return fmt.Errorf("%w: store must be postgres or memory, got %q", ErrInvalidConfig, c.Store)
	case c.JWTSecret == "":
		return fmt.Errorf("%w: jwt_secret must not be empty", ErrInvalidConfig)
	case c.TokenTTL <= 0:
		return fmt.Errorf("%w: token_ttl must be positive", ErrInvalidConfig)
	case c.MessageRateLimit <= 0 || c.ApplicationRateLimit <= 0 || c.RateLimitWindow <= 0:
		return fmt.Errorf("%w: rate limits must be positive", ErrInvalidConfig)
	}
	return nil
}

// DatabaseURL is the pgx connection string for the configured database.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}
