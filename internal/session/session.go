// internal/session/session.go
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/blackjack/internal/models"
	"github.com/shopspring/decimal"
)

// Authority is the remote decision service the controller drives.
type Authority interface {
	Configured() error
	NewGame(ctx context.Context, bet int) (*models.Round, error)
	Hit(ctx context.Context, req models.ActionRequest) (*models.Round, error)
	Stand(ctx context.Context, req models.ActionRequest) (*models.Round, error)
	Surrender(ctx context.Context, req models.ActionRequest) (*models.Round, error)
}

// Advisor computes expected payouts for the current round.
type Advisor interface {
	Configured() error
	Advise(ctx context.Context, req models.ActionRequest) (*models.Advice, error)
}

// ThresholdSource supplies the current dealer stand threshold.
type ThresholdSource interface {
	Get() int
}

// Recorder receives every reconciled action. Failures never affect the session.
type Recorder interface {
	Record(ctx context.Context, rec models.ActionRecord) error
}

// Phase is the controller state derived from the optional round.
type Phase string

const (
	PhaseNoRound    Phase = "NoRound"
	PhasePlayerTurn Phase = "PlayerTurn"
	PhaseFinished   Phase = "Finished"
)

// Snapshot is a point-in-time, JSON-serialisable view of a Session.
type Snapshot struct {
	SessionID       uuid.UUID       `json:"session_id"`
	RoundID         uuid.UUID       `json:"round_id"`
	Phase           Phase           `json:"phase"`
	Round           *models.Round   `json:"round,omitempty"`
	Balance         decimal.Decimal `json:"balance"`
	Busy            bool            `json:"busy"`
	CanSurrender    bool            `json:"can_surrender"`
	Advice          *models.Advice  `json:"advice,omitempty"`
	AdviceThreshold int             `json:"advice_threshold,omitempty"`
	Error           string          `json:"error,omitempty"`
	Timestamp       int64           `json:"timestamp"`
}

// Session is the state shared by a Controller and an AdviceCache: the active
// round, the balance, the advice snapshot and the current error. All fields are
// guarded by mu, which is never held across a network call.
type Session struct {
	ID uuid.UUID

	mu      sync.Mutex
	round   *models.Round
	roundID uuid.UUID
	balance decimal.Decimal
	busy    bool
	err     error

	advice          *models.Advice
	adviceThreshold int
	adviceGen       uint64 // bumped on every invalidation and every advice dispatch

	actionIndex int
	subscribers []func(Snapshot)
}

// New creates an empty session holding initialBalance.
func New(initialBalance decimal.Decimal) *Session {
	return &Session{
		ID:      uuid.New(),
		balance: initialBalance,
	}
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs on the goroutine that made the change, without the session lock held.
func (s *Session) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Snapshot returns the current view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Round returns a copy of the active round, or nil before the first start.
func (s *Session) Round() *models.Round {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round.Clone()
}

// RoundID returns the client-side identifier of the active round.
func (s *Session) RoundID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roundID
}

// Balance returns the reconciled balance.
func (s *Session) Balance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance
}

// Phase returns the controller state.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phaseLocked()
}

// Busy reports whether an action request is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Err returns the latest error, or nil if the last operation succeeded.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// CanSurrender reports whether surrender is currently allowed: a round is in
// the player's turn, nothing is in flight and the player still holds exactly
// the two dealt cards.
func (s *Session) CanSurrender() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canSurrenderLocked()
}

func (s *Session) phaseLocked() Phase {
	switch {
	case s.round == nil:
		return PhaseNoRound
	case s.round.State == models.PlayerTurn:
		return PhasePlayerTurn
	default:
		return PhaseFinished
	}
}

func (s *Session) canSurrenderLocked() bool {
	return !s.busy && s.round.IsPlayerTurn() && len(s.round.PlayerHand.Cards) == 2
}

func (s *Session) invalidateAdviceLocked() {
	s.advice = nil
	s.adviceThreshold = 0
	s.adviceGen++
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID:    s.ID,
		RoundID:      s.roundID,
		Phase:        s.phaseLocked(),
		Round:        s.round.Clone(),
		Balance:      s.balance,
		Busy:         s.busy,
		CanSurrender: s.canSurrenderLocked(),
		Timestamp:    time.Now().UnixMilli(),
	}
	if s.advice != nil {
		a := *s.advice
		snap.Advice = &a
		snap.AdviceThreshold = s.adviceThreshold
	}
	if s.err != nil {
		snap.Error = s.err.Error()
	}
	return snap
}

// unlockAndNotify releases mu and then fans the new snapshot out to subscribers.
func (s *Session) unlockAndNotify() {
	if len(s.subscribers) == 0 {
		s.mu.Unlock()
		return
	}
	snap := s.snapshotLocked()
	subs := make([]func(Snapshot), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// recordLocked builds the journal entry for a reconciled action.
func (s *Session) recordLocked(action models.Action) models.ActionRecord {
	s.actionIndex++
	return models.ActionRecord{
		SessionID:   s.ID,
		RoundID:     s.roundID,
		ActionIndex: s.actionIndex,
		Action:      action,
		Bet:         s.round.Bet,
		Payout:      s.round.Payout,
		Balance:     s.balance.String(),
		State:       s.round.State,
		Result:      s.round.Result,
		Timestamp:   time.Now().UnixMilli(),
	}
}
