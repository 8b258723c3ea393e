// cmd/journal/main.go drains the blackjack action journal from Redis and
// logs a running per-session tally. Sessions idle for longer than
// JOURNAL_IDLE_TIMEOUT are reported once and dropped.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/blackjack/internal/cache"
	"github.com/jason-s-yu/blackjack/internal/models"
)

type journalConfig struct {
	RedisAddr   string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB     int           `env:"REDIS_DB" envDefault:"0"`
	Queue       string        `env:"BLACKJACK_JOURNAL_QUEUE" envDefault:"blackjack_actions"`
	BatchSize   int           `env:"JOURNAL_BATCH_SIZE" envDefault:"20"`
	FlushDelay  time.Duration `env:"JOURNAL_FLUSH_DELAY" envDefault:"500ms"`
	IdleTimeout time.Duration `env:"JOURNAL_IDLE_TIMEOUT" envDefault:"10m"`
	LogLevel    string        `env:"BLACKJACK_LOG_LEVEL" envDefault:"info"`
}

func main() {
	var cfg journalConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	journal, err := cache.ConnectJournal(cfg.RedisAddr, cfg.RedisDB, cfg.Queue)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer journal.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tally := cache.NewTally()
	consumer := journal.NewConsumer(func(batch []models.ActionRecord) {
		tally.Apply(batch)
		logger.Debugf("Applied %d journaled actions", len(batch))
		for _, st := range tally.Sessions() {
			logSession(logger, st).Info("Session tally")
		}
	}, logger)
	if cfg.BatchSize > 0 {
		consumer.BatchSize = cfg.BatchSize
	}
	if cfg.FlushDelay > 0 {
		consumer.FlushDelay = cfg.FlushDelay
	}

	go idleLoop(ctx, tally, cfg.IdleTimeout, logger)

	logger.WithField("queue", journal.Queue()).Info("Journal consumer started")
	consumer.Run(ctx)
	logger.Info("Journal consumer shutting down")
}

// idleLoop periodically reports and drops sessions that stopped journaling.
func idleLoop(ctx context.Context, tally *cache.Tally, idle time.Duration, logger *logrus.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, st := range tally.Forget(now.Add(-idle)) {
				logSession(logger, st).Info("Session went idle")
			}
		}
	}
}

func logSession(logger *logrus.Logger, st cache.SessionTally) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"session_id": st.SessionID,
		"actions":    st.Actions,
		"rounds":     st.Rounds,
		"wins":       st.Wins,
		"losses":     st.Losses,
		"pushes":     st.Pushes,
		"surrenders": st.Surrender,
		"balance":    st.Balance.String(),
		"last_seen":  st.LastSeen.Format(time.RFC3339),
	})
}
