package models

import "github.com/google/uuid"

// Action names a request the client can issue to the authority.
type Action string

const (
	ActionStart     Action = "start"
	ActionHit       Action = "hit"
	ActionStand     Action = "stand"
	ActionSurrender Action = "surrender"
	ActionAdvise    Action = "advise"
)

// ActionRecord captures one reconciled action for the journal.
type ActionRecord struct {
	SessionID   uuid.UUID  `json:"session_id"`
	RoundID     uuid.UUID  `json:"round_id"`
	ActionIndex int        `json:"action_index"`
	Action      Action     `json:"action"`
	Bet         int        `json:"bet"`
	Payout      float64    `json:"payout"`
	Balance     string     `json:"balance"`
	State       RoundState `json:"state"`
	Result      Result     `json:"result"`
	Timestamp   int64      `json:"timestamp"`
}
