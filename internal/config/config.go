// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds everything the server needs to start. Values come from
// environment variables with sensible development defaults; only JWT_SECRET
// is mandatory.
type Config struct {
	Port            int           `env:"PORT" env-default:"8080"`
	DBPath          string        `env:"DB_PATH" env-default:"data/blog.db"`
	UploadDir       string        `env:"UPLOAD_DIR" env-default:"data/uploads"`
	JWTSecret       string        `env:"JWT_SECRET"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" env-default:"720h"`
	BcryptCost      int           `env:"BCRYPT_COST" env-default:"12"`
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: reading environment: %w", err)
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("config: JWT_SECRET must be set")
	}
	return cfg, nil
}
