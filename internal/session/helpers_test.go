package session

import (
	"context"
	"sync"
	"testing"

	"github.com/jason-s-yu/blackjack/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// fakeAuthority records every call instead of talking to a server. Handlers
// decide the response; unset handlers return a fixed default.
type fakeAuthority struct {
	mu         sync.Mutex
	configured error

	newGame func(bet int) (*models.Round, error)
	act     func(action models.Action, req models.ActionRequest) (*models.Round, error)
	advise  func(req models.ActionRequest) (*models.Advice, error)

	calls    map[models.Action]int
	requests map[models.Action][]models.ActionRequest
	bets     []int
}

func newFakeAuthority() *fakeAuthority {
	return &fakeAuthority{
		calls:    make(map[models.Action]int),
		requests: make(map[models.Action][]models.ActionRequest),
	}
}

func (f *fakeAuthority) Configured() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.configured
}

func (f *fakeAuthority) NewGame(ctx context.Context, bet int) (*models.Round, error) {
	f.mu.Lock()
	f.calls[models.ActionStart]++
	f.bets = append(f.bets, bet)
	fn := f.newGame
	f.mu.Unlock()
	if fn == nil {
		return dealt(bet), nil
	}
	return fn(bet)
}

func (f *fakeAuthority) Hit(ctx context.Context, req models.ActionRequest) (*models.Round, error) {
	return f.roundAction(models.ActionHit, req)
}

func (f *fakeAuthority) Stand(ctx context.Context, req models.ActionRequest) (*models.Round, error) {
	return f.roundAction(models.ActionStand, req)
}

func (f *fakeAuthority) Surrender(ctx context.Context, req models.ActionRequest) (*models.Round, error) {
	return f.roundAction(models.ActionSurrender, req)
}

func (f *fakeAuthority) roundAction(action models.Action, req models.ActionRequest) (*models.Round, error) {
	f.mu.Lock()
	f.calls[action]++
	f.requests[action] = append(f.requests[action], req)
	fn := f.act
	f.mu.Unlock()
	if fn == nil {
		return finished(req.Game.Bet, models.DealerWin, 0), nil
	}
	return fn(action, req)
}

func (f *fakeAuthority) Advise(ctx context.Context, req models.ActionRequest) (*models.Advice, error) {
	f.mu.Lock()
	f.calls[models.ActionAdvise]++
	f.requests[models.ActionAdvise] = append(f.requests[models.ActionAdvise], req)
	fn := f.advise
	f.mu.Unlock()
	if fn == nil {
		return &models.Advice{HitPayout: 80, StandPayout: 95, SurrenderPayout: 50}, nil
	}
	return fn(req)
}

func (f *fakeAuthority) count(action models.Action) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[action]
}

func (f *fakeAuthority) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeAuthority) lastRequest(action models.Action) models.ActionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	reqs := f.requests[action]
	return reqs[len(reqs)-1]
}

// staticThreshold is a fixed ThresholdSource.
type staticThreshold int

func (t staticThreshold) Get() int { return int(t) }

func card(s models.Suit, r models.Rank) models.Card {
	return models.Card{Suit: s, Rank: r}
}

// dealt is a fresh round in the player's turn: two player cards, one dealer card.
func dealt(bet int) *models.Round {
	return &models.Round{
		PlayerHand: models.Hand{Cards: []models.Card{card(models.Heart, models.Nine), card(models.Club, models.Five)}, Score: 14},
		DealerHand: models.Hand{Cards: []models.Card{card(models.Spade, models.Ten)}, Score: 10},
		State:      models.PlayerTurn,
		Result:     models.Pending,
		Bet:        bet,
	}
}

// hitOnce is r with one more player card, still in the player's turn.
func hitOnce(r *models.Round) *models.Round {
	n := r.Clone()
	n.PlayerHand.Cards = append(n.PlayerHand.Cards, card(models.Diamond, models.Two))
	n.PlayerHand.Score += 2
	return n
}

func finished(bet int, result models.Result, payout float64) *models.Round {
	r := dealt(bet)
	r.State = models.Finished
	r.Result = result
	r.Payout = payout
	return r
}

type fixture struct {
	api    *fakeAuthority
	sess   *Session
	ctrl   *Controller
	adv    *AdviceCache
	logs   *test.Hook
	logger *logrus.Logger
}

func newFixture(t *testing.T, balance int64) *fixture {
	return newFixtureWithThreshold(t, balance, staticThreshold(17))
}

func newFixtureWithThreshold(t *testing.T, balance int64, threshold ThresholdSource) *fixture {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	api := newFakeAuthority()
	sess := New(decimal.NewFromInt(balance))
	adv := NewAdviceCache(sess, api, threshold, DefaultDebounce, logger)
	t.Cleanup(adv.Close)
	return &fixture{
		api:    api,
		sess:   sess,
		ctrl:   NewController(sess, api, threshold, logger),
		adv:    adv,
		logs:   hook,
		logger: logger,
	}
}
