package config

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/hnrobert/lumdash/internal/auth"
	"github.com/hnrobert/lumdash/internal/datafs"
)

// Config is the process configuration read from the environment.
type Config struct {
	ListenAddr   string        `env:"LUMDASH_LISTEN" envDefault:":14393"`
	DataRoot     string        `env:"LUMDASH_DATA_ROOT" envDefault:"/lumdash_data"`
	JWTSecret    string        `env:"LUMDASH_JWT_SECRET"`
	SessionTTL   time.Duration `env:"LUMDASH_SESSION_TTL" envDefault:"24h"`
	LogDir       string        `env:"LUMDASH_LOG_DIR"`
	SecureCookie bool          `env:"LUMDASH_SECURE_COOKIE" envDefault:"false"`
	AssetsDir    string        `env:"LUMDASH_ASSETS_DIR" envDefault:"/usr/local/share/lumdashd/assets"`
}

// Load reads a .env file when present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("LUMDASH_SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	return cfg, nil
}

func (c *Config) Root() datafs.Root { return datafs.Root(c.DataRoot) }

// Secret decodes the JWT secret. An unset secret yields an ephemeral random
// one, so sessions do not survive a restart.
func (c *Config) Secret() ([]byte, error) {
	text := c.JWTSecret
	if text == "" {
		s, err := auth.NewRandomSecretB64(32)
		if err != nil {
			return nil, err
		}
		text = s
	}
	raw, err := base64.RawURLEncoding.DecodeString(text)
	if err != nil {
		// Not base64: use the string as-is.
		raw = []byte(text)
	}
	if len(raw) < 16 {
		pad := make([]byte, 16)
		copy(pad, raw)
		raw = pad
	}
	return raw, nil
}
