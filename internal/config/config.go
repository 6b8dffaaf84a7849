package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// envFiles are loaded in order; values already present in the process
// environment are never overridden.
var envFiles = []string{".env", ".env.template"}

type Config struct {
	Port                int    `env:"PORT" envDefault:"8000"`
	DatabaseURL         string `env:"DATABASE_URL,required"`
	RedisURL            string `env:"REDIS_URL,required"`
	AMQPURL             string `env:"AMQP_URL" envDefault:""`
	APIPrefix           string `env:"API_PREFIX" envDefault:"/parcel"`
	LogLevel            string `env:"LOG_LEVEL" envDefault:"info"`
	SessionTTLSeconds   int    `env:"SESSION_TTL_SECONDS" envDefault:"3600"`
	SessionCookieSecure bool   `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	RateLimitPerMin     int    `env:"RATE_LIMIT_PER_MIN" envDefault:"0"`
	DBMaxOpenConns      int    `env:"DB_MAX_OPEN_CONNS" envDefault:"60"`
	DBMaxIdleConns      int    `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	AutoMigrate         bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate() error {
	if c.SessionTTLSeconds <= 0 {
		return fmt.Errorf("SESSION_TTL_SECONDS must be positive")
	}
	if c.RateLimitPerMin < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MIN must not be negative")
	}
	if c.DBMaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive")
	}
	if !strings.HasPrefix(c.APIPrefix, "/") {
		return fmt.Errorf("API_PREFIX must start with /")
	}

	if c.AMQPURL == "" {
		log.Warn().Msg("AMQP_URL is empty: message broker client disabled")
	}

	return nil
}

func Load() (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
