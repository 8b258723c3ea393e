// internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/jason-s-yu/blackjack/internal/models"
	"github.com/sirupsen/logrus"
)

// Config is the process configuration, read from the environment.
type Config struct {
	// APIURL is the authority base URL. Left empty, every action fails with a
	// configuration error until it is set.
	APIURL string `env:"BLACKJACK_API_URL"`

	InitialBalance       int           `env:"BLACKJACK_INITIAL_BALANCE" envDefault:"1000"`
	DealerStandThreshold int           `env:"BLACKJACK_DEALER_STAND_THRESHOLD" envDefault:"17"`
	AdviceDebounce       time.Duration `env:"BLACKJACK_ADVICE_DEBOUNCE" envDefault:"100ms"`
	HTTPTimeout          time.Duration `env:"BLACKJACK_HTTP_TIMEOUT" envDefault:"10s"`
	LogLevel             string        `env:"BLACKJACK_LOG_LEVEL" envDefault:"info"`

	// RedisAddr enables the action journal when set.
	RedisAddr    string `env:"REDIS_ADDR"`
	RedisDB      int    `env:"REDIS_DB" envDefault:"0"`
	JournalQueue string `env:"BLACKJACK_JOURNAL_QUEUE" envDefault:"blackjack_actions"`

	// FeedAddr enables the websocket snapshot feed when set, e.g. "localhost:8090".
	FeedAddr string `env:"BLACKJACK_FEED_ADDR"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges that env tags cannot express.
func (c Config) Validate() error {
	if c.InitialBalance < 0 {
		return fmt.Errorf("BLACKJACK_INITIAL_BALANCE must be non-negative, got %d", c.InitialBalance)
	}
	if !models.ValidThreshold(c.DealerStandThreshold) {
		return fmt.Errorf("BLACKJACK_DEALER_STAND_THRESHOLD must be between %d and %d, got %d",
			models.MinDealerStandThreshold, models.MaxDealerStandThreshold, c.DealerStandThreshold)
	}
	if c.AdviceDebounce <= 0 {
		return fmt.Errorf("BLACKJACK_ADVICE_DEBOUNCE must be positive, got %s", c.AdviceDebounce)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("BLACKJACK_LOG_LEVEL: %w", err)
	}
	return nil
}

// Logger builds a logrus logger at the configured level.
func (c Config) Logger() *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
