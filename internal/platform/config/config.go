// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file is
loaded first when present (development convenience); real environment variables
always win.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/taibuivan/inkwell/internal/platform/constants"
)

// # Configuration Schema

// Config holds all runtime configuration for the Inkwell API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// DatabaseMaxConns caps the pool. Zero keeps the pool default.
	DatabaseMaxConns int32 `env:"DATABASE_MAX_CONNS"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// IdentityCacheTTL bounds how long a resolved identity is served from Redis.
	IdentityCacheTTL time.Duration `env:"IDENTITY_CACHE_TTL" envDefault:"15m"`

	// Token signing. The two secrets must differ so a refresh token can
	// never pass access verification and vice versa.
	AccessTokenSecret  string `env:"ACCESS_TOKEN_SECRET,required,notEmpty"`
	RefreshTokenSecret string `env:"REFRESH_TOKEN_SECRET,required,notEmpty"`
	TokenIssuer        string `env:"TOKEN_ISSUER"`

	// CookieCrossSite switches auth cookies to SameSite=None; Secure for
	// deployments where the web client lives on another site.
	CookieCrossSite bool `env:"COOKIE_CROSS_SITE" envDefault:"false"`

	// Cross-Origin Resource Sharing
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	// Per-IP rate limiting. Unset values fall back to the platform defaults.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST"`

	// TrustProxyHeaders lets the rate limiter key clients by X-Real-IP /
	// X-Forwarded-For. Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`
}

// # Configuration Loading

// Load reads an optional .env file and parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// A missing .env is the normal case outside local development.
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("config: failed to load .env file: %w", err)
		}
	}

	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces cross-field rules that struct tags cannot express.
func (c *Config) Validate() error {
	if len(c.AccessTokenSecret) < constants.MinSecretLength {
		return fmt.Errorf("config: ACCESS_TOKEN_SECRET must be at least %d bytes", constants.MinSecretLength)
	}
	if len(c.RefreshTokenSecret) < constants.MinSecretLength {
		return fmt.Errorf("config: REFRESH_TOKEN_SECRET must be at least %d bytes", constants.MinSecretLength)
	}
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return errors.New("config: ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return errors.New("config: RATE_LIMIT_RPS and RATE_LIMIT_BURST must not be negative")
	}
	if c.RateLimitRPS == 0 {
		c.RateLimitRPS = constants.DefaultRateLimitRPS
	}
	if c.RateLimitBurst == 0 {
		c.RateLimitBurst = constants.DefaultRateLimitBurst
	}
	if c.TokenIssuer == "" {
		c.TokenIssuer = constants.AuthIssuer
	}
	if c.IdentityCacheTTL <= 0 {
		c.IdentityCacheTTL = constants.DefaultIdentityCacheTTL
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SecureCookies reports whether auth cookies must carry the Secure attribute.
// Browsers reject SameSite=None cookies without it.
func (c *Config) SecureCookies() bool {
	return c.IsProduction() || c.CookieCrossSite
}

// Origins returns the browser origins allowed to call the API with credentials.
func (c *Config) Origins() []string {
	return c.AllowedOrigins
}
