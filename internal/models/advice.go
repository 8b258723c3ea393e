// internal/models/advice.go
package models

// Advice holds the authority's expected payout for each candidate action
// on one round under one configuration.
type Advice struct {
	HitPayout       float64 `json:"hit_payout"`
	StandPayout     float64 `json:"stand_payout"`
	SurrenderPayout float64 `json:"surrender_payout"`
}

// Best returns the action with the highest expected payout. Surrender is only
// considered when the player is still allowed to surrender. Ties favour
// the earlier action in hit, stand, surrender order.
func (a Advice) Best(canSurrender bool) Action {
	best, value := ActionHit, a.HitPayout
	if a.StandPayout > value {
		best, value = ActionStand, a.StandPayout
	}
	if canSurrender && a.SurrenderPayout > value {
		best = ActionSurrender
	}
	return best
}
