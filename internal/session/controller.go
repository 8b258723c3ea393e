// internal/session/controller.go
package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jason-s-yu/blackjack/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Controller drives the round state machine against the authority and
// reconciles the session balance with every payout it returns.
//
//	NoRound --Start--> PlayerTurn | Finished
//	PlayerTurn --Hit/Stand/Surrender--> PlayerTurn | Finished
//	Finished --Start--> PlayerTurn | Finished
type Controller struct {
	s         *Session
	api       Authority
	threshold ThresholdSource
	logger    *logrus.Logger

	// Journal, if set, receives a record for every reconciled action.
	Journal Recorder
}

// NewController binds a controller to s.
func NewController(s *Session, api Authority, threshold ThresholdSource, logger *logrus.Logger) *Controller {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Controller{
		s:         s,
		api:       api,
		threshold: threshold,
		logger:    logger,
	}
}

// Session returns the session the controller writes to.
func (c *Controller) Session() *Session {
	return c.s
}

// Start deals a new round for bet. It is rejected with ErrStateConflict while a
// round is in the player's turn, and with ErrPreconditionFailed when the bet is
// not positive or exceeds the balance. On success the balance becomes
// balance - bet + payout; the payout is non-zero when the deal is already final.
func (c *Controller) Start(ctx context.Context, bet int) error {
	s := c.s
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.err = nil

	if err := c.checkStartLocked(bet); err != nil {
		return c.rejectLocked(models.ActionStart, err)
	}
	if err := c.api.Configured(); err != nil {
		return c.rejectLocked(models.ActionStart, err)
	}
	s.busy = true
	s.invalidateAdviceLocked()
	s.unlockAndNotify()

	round, err := c.api.NewGame(ctx, bet)

	s.mu.Lock()
	s.busy = false
	if err != nil {
		return c.failLocked(models.ActionStart, err)
	}
	s.round = round
	s.roundID = uuid.New()
	s.balance = s.balance.Sub(decimal.NewFromInt(int64(bet))).Add(decimal.NewFromFloat(round.Payout))
	s.invalidateAdviceLocked()
	rec := s.recordLocked(models.ActionStart)
	s.unlockAndNotify()

	c.logger.WithFields(logrus.Fields{
		"session_id": rec.SessionID,
		"round_id":   rec.RoundID,
		"bet":        bet,
		"payout":     round.Payout,
		"state":      round.State,
		"balance":    rec.Balance,
	}).Info("Round started")
	c.journal(ctx, rec)
	return nil
}

// Hit asks the authority for one more player card.
func (c *Controller) Hit(ctx context.Context) error {
	return c.act(ctx, models.ActionHit, c.api.Hit)
}

// Stand ends the player's turn and lets the authority resolve the round.
func (c *Controller) Stand(ctx context.Context) error {
	return c.act(ctx, models.ActionStand, c.api.Stand)
}

// Surrender gives up the round. Only allowed as the first action, while the
// player holds exactly two cards; otherwise it fails before dispatch.
func (c *Controller) Surrender(ctx context.Context) error {
	return c.act(ctx, models.ActionSurrender, c.api.Surrender)
}

type roundCall func(ctx context.Context, req models.ActionRequest) (*models.Round, error)

// act runs an in-round action: check, dispatch the full round with the current
// threshold, then replace the round and add the returned payout to the balance.
func (c *Controller) act(ctx context.Context, action models.Action, call roundCall) error {
	threshold := c.threshold.Get()

	s := c.s
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.err = nil

	if err := c.checkActionLocked(action); err != nil {
		return c.rejectLocked(action, err)
	}
	if err := c.api.Configured(); err != nil {
		return c.rejectLocked(action, err)
	}
	req := models.ActionRequest{
		Game:   *s.round.Clone(),
		Config: models.GameConfig{DealerStandThreshold: threshold},
	}
	s.busy = true
	s.invalidateAdviceLocked()
	s.unlockAndNotify()

	round, err := call(ctx, req)

	s.mu.Lock()
	s.busy = false
	if err != nil {
		return c.failLocked(action, err)
	}
	s.round = round
	s.balance = s.balance.Add(decimal.NewFromFloat(round.Payout))
	s.invalidateAdviceLocked()
	rec := s.recordLocked(action)
	s.unlockAndNotify()

	c.logger.WithFields(logrus.Fields{
		"session_id": rec.SessionID,
		"round_id":   rec.RoundID,
		"action":     action,
		"threshold":  threshold,
		"payout":     round.Payout,
		"state":      round.State,
		"result":     round.Result,
		"balance":    rec.Balance,
	}).Info("Action applied")
	c.journal(ctx, rec)
	return nil
}

func (c *Controller) checkStartLocked(bet int) error {
	s := c.s
	if s.round.IsPlayerTurn() {
		return fmt.Errorf("%w: finish the current round first", ErrStateConflict)
	}
	if bet <= 0 {
		return fmt.Errorf("%w: bet must be at least 1", ErrPreconditionFailed)
	}
	if !s.balance.IsPositive() {
		return fmt.Errorf("%w: balance is exhausted", ErrPreconditionFailed)
	}
	if decimal.NewFromInt(int64(bet)).GreaterThan(s.balance) {
		return fmt.Errorf("%w: bet %d exceeds balance %s", ErrPreconditionFailed, bet, s.balance.String())
	}
	return nil
}

func (c *Controller) checkActionLocked(action models.Action) error {
	s := c.s
	if s.round == nil {
		return fmt.Errorf("%w: no active round", ErrPreconditionFailed)
	}
	if s.round.State != models.PlayerTurn {
		return fmt.Errorf("%w: round is already finished", ErrPreconditionFailed)
	}
	if action == models.ActionSurrender && len(s.round.PlayerHand.Cards) != 2 {
		return fmt.Errorf("%w: surrender is only allowed as the first action", ErrPreconditionFailed)
	}
	return nil
}

// rejectLocked records a pre-dispatch failure. Advice is left alone.
func (c *Controller) rejectLocked(action models.Action, err error) error {
	s := c.s
	s.err = err
	id := s.ID
	s.unlockAndNotify()

	c.logger.WithFields(logrus.Fields{
		"session_id": id,
		"action":     action,
		"error":      err,
	}).Debug("Action rejected")
	return err
}

// failLocked records a failed exchange. Round and balance keep their pre-call values.
func (c *Controller) failLocked(action models.Action, err error) error {
	s := c.s
	s.err = err
	id := s.ID
	s.unlockAndNotify()

	c.logger.WithFields(logrus.Fields{
		"session_id": id,
		"action":     action,
		"error":      err,
	}).Warn("Action failed")
	return err
}

func (c *Controller) journal(ctx context.Context, rec models.ActionRecord) {
	if c.Journal == nil {
		return
	}
	if err := c.Journal.Record(ctx, rec); err != nil {
		c.logger.WithFields(logrus.Fields{
			"session_id": rec.SessionID,
			"round_id":   rec.RoundID,
			"error":      err,
		}).Warn("Failed to journal action")
	}
}
