// internal/models/round.go
package models

import "errors"

// RoundState is the progress of a round as reported by the authority.
type RoundState string

const (
	PlayerTurn RoundState = "PlayerTurn"
	Finished   RoundState = "Finished"
)

// Result is the outcome of a round. Pending while the player is still acting.
type Result string

const (
	Pending   Result = "Pending"
	PlayerWin Result = "PlayerWin"
	DealerWin Result = "DealerWin"
	Push      Result = "Push"
	Surrender Result = "Surrender"
)

// Round is the whole state of one deal as held by the client. It is replaced
// wholesale by every authority response and must not be mutated in place.
type Round struct {
	PlayerHand    Hand       `json:"player_hand"`
	DealerHand    Hand       `json:"dealer_hand"`
	State         RoundState `json:"state"`
	Result        Result     `json:"result"`
	ResultMessage string     `json:"result_message"`
	Bet           int        `json:"bet"`
	Payout        float64    `json:"payout"` // only final once State == Finished
}

// Validate checks the core consistency of a round received from the authority:
//   - player holds at least 2 cards, dealer at least 1
//   - PlayerTurn <=> Pending, Finished <=> not Pending
//   - bet is positive and payout non-negative
func (r *Round) Validate() error {
	if r == nil {
		return errors.New("invalid round: nil")
	}
	if len(r.PlayerHand.Cards) < 2 {
		return errors.New("invalid round: player must have at least 2 cards")
	}
	if len(r.DealerHand.Cards) < 1 {
		return errors.New("invalid round: dealer must have at least 1 card")
	}
	switch r.State {
	case PlayerTurn:
		if r.Result != Pending {
			return errors.New("invalid round: player turn but result is not pending")
		}
	case Finished:
		if r.Result == Pending {
			return errors.New("invalid round: finished but result is pending")
		}
	default:
		return errors.New("invalid round: unknown state " + string(r.State))
	}
	if r.Bet <= 0 {
		return errors.New("invalid round: bet must be positive")
	}
	if r.Payout < 0 {
		return errors.New("invalid round: payout must be non-negative")
	}
	return nil
}

// Clone returns a deep copy of the round.
func (r *Round) Clone() *Round {
	if r == nil {
		return nil
	}
	c := *r
	c.PlayerHand = r.PlayerHand.Clone()
	c.DealerHand = r.DealerHand.Clone()
	return &c
}

// IsPlayerTurn reports whether the player may still act on this round.
func (r *Round) IsPlayerTurn() bool {
	return r != nil && r.State == PlayerTurn
}
