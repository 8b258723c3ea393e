// cmd/blackjack/main.go
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"

	"github.com/jason-s-yu/blackjack/internal/authority"
	"github.com/jason-s-yu/blackjack/internal/cache"
	"github.com/jason-s-yu/blackjack/internal/config"
	"github.com/jason-s-yu/blackjack/internal/feed"
	"github.com/jason-s-yu/blackjack/internal/session"
)

const (
	optStart     = "Start round"
	optBet       = "Change bet"
	optHit       = "Hit"
	optStand     = "Stand"
	optSurrender = "Surrender"
	optAdvice    = "Show advice"
	optThreshold = "Dealer threshold"
	optQuit      = "Quit"
)

const defaultBet = 100

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := cfg.Logger()

	client := authority.NewClient(cfg.APIURL,
		authority.WithTimeout(cfg.HTTPTimeout),
		authority.WithLogger(logger),
	)
	if err := client.Configured(); err != nil {
		pterm.Warning.Println(describeError(err))
	}

	threshold := config.NewThreshold(cfg.DealerStandThreshold)
	sess := session.New(decimal.NewFromInt(int64(cfg.InitialBalance)))
	ctrl := session.NewController(sess, client, threshold, logger)
	adv := session.NewAdviceCache(sess, client, threshold, cfg.AdviceDebounce, logger)
	defer adv.Close()

	threshold.Subscribe(func(int) { adv.ScheduleRefresh() })

	if cfg.RedisAddr != "" {
		journal, err := cache.ConnectJournal(cfg.RedisAddr, cfg.RedisDB, cfg.JournalQueue)
		if err != nil {
			logger.Warnf("Action journal disabled: %v", err)
		} else {
			defer journal.Close()
			ctrl.Journal = journal
			logger.WithField("queue", journal.Queue()).Info("Journaling actions to Redis")
		}
	}

	if cfg.FeedAddr != "" {
		hub := feed.NewHub(logger)
		sess.Subscribe(func(snap session.Snapshot) { hub.Publish(snap) })
		hub.Publish(sess.Snapshot())

		srv, err := feed.Listen(cfg.FeedAddr, hub, logger)
		if err != nil {
			log.Fatalf("failed to listen on %s: %v", cfg.FeedAddr, err)
		}
		go func() {
			if err := srv.Serve(); err != nil {
				logger.Errorf("Snapshot feed stopped: %v", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pterm.DefaultHeader.WithFullWidth().Println("Blackjack")
	a := &app{
		ctrl:      ctrl,
		adv:       adv,
		threshold: threshold,
		bet:       defaultBet,
		timeout:   cfg.HTTPTimeout,
	}
	a.loop(ctx)
}

type app struct {
	ctrl      *session.Controller
	adv       *session.AdviceCache
	threshold *config.Threshold
	bet       int
	timeout   time.Duration
}

func (a *app) loop(ctx context.Context) {
	for ctx.Err() == nil {
		snap := a.ctrl.Session().Snapshot()
		advice, fresh := a.adv.Current()
		printState(snap, advice, fresh, a.threshold.Get())

		choice, err := pterm.DefaultInteractiveSelect.
			WithDefaultText("Select your next action").
			WithOptions(menu(snap)).
			Show()
		if err != nil || choice == optQuit {
			return
		}
		a.dispatch(ctx, choice)
	}
}

// menu lists the options that make sense in the current phase.
func menu(snap session.Snapshot) []string {
	if snap.Phase == session.PhasePlayerTurn {
		opts := []string{optHit, optStand}
		if snap.CanSurrender {
			opts = append(opts, optSurrender)
		}
		return append(opts, optAdvice, optThreshold, optQuit)
	}
	return []string{optStart, optBet, optThreshold, optQuit}
}

func (a *app) dispatch(ctx context.Context, choice string) {
	switch choice {
	case optBet:
		a.askBet()
		return
	case optThreshold:
		a.askThreshold()
		return
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	spinner, _ := pterm.DefaultSpinner.Start(choice + " ...")
	var err error
	switch choice {
	case optStart:
		err = a.ctrl.Start(ctx, a.bet)
	case optHit:
		err = a.ctrl.Hit(ctx)
	case optStand:
		err = a.ctrl.Stand(ctx)
	case optSurrender:
		err = a.ctrl.Surrender(ctx)
	case optAdvice:
		err = a.adv.Request(ctx)
		if errors.Is(err, session.ErrStaleAdvice) {
			err = nil
		}
	}
	spinner.Stop()

	if err != nil {
		pterm.Error.Println(describeError(err))
	}
}

func (a *app) askBet() {
	in, _ := pterm.DefaultInteractiveTextInput.
		WithDefaultText("Bet").
		WithDefaultValue(strconv.Itoa(a.bet)).
		Show()
	bet, err := parseBet(in)
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	a.bet = bet
}

func (a *app) askThreshold() {
	in, _ := pterm.DefaultInteractiveTextInput.
		WithDefaultText("Dealer stands on (1-21, or 'default')").
		WithDefaultValue(strconv.Itoa(a.threshold.Get())).
		Show()
	in = strings.TrimSpace(in)
	if strings.EqualFold(in, "default") {
		a.threshold.Reset()
		return
	}
	v, err := strconv.Atoi(in)
	if err != nil {
		pterm.Error.Printfln("%q is not a number", in)
		return
	}
	if err := a.threshold.Set(v); err != nil {
		pterm.Error.Println(err.Error())
	}
}

// parseBet reads a positive integer bet.
func parseBet(in string) (int, error) {
	bet, err := strconv.Atoi(strings.TrimSpace(in))
	if err != nil {
		return 0, errors.New("bet must be a whole number")
	}
	if bet <= 0 {
		return 0, errors.New("bet must be at least 1")
	}
	return bet, nil
}
