// Package config loads server settings from the environment.
//
// A .env file in the working directory is read first (missing is fine), then
// the process environment is parsed into Config. Variables already set in the
// environment win over .env entries.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full server configuration.
type Config struct {
	Port           string        `env:"PORT" envDefault:"5175"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	ClientOrigin   string        `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	SessionSecret  string        `env:"SESSION_SECRET" envDefault:"dev_secret_change_me"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CookieName     string        `env:"COOKIE_NAME" envDefault:"crisscross_session"`
	DailySalt      string        `env:"DAILY_SALT" envDefault:"local_dev_salt"`
	AnchorAtSeed   bool          `env:"ANCHOR_AT_SEED" envDefault:"false"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	Production     bool          `env:"PRODUCTION" envDefault:"false"`
}

// Load reads the given .env files (default ".env") and parses the
// environment into a Config.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load dotenv: %w", err)
	}
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
