// internal/models/game_config.go
package models

const (
	// MinDealerStandThreshold and MaxDealerStandThreshold bound the dealer threshold.
	MinDealerStandThreshold = 1
	MaxDealerStandThreshold = 21

	// DefaultDealerStandThreshold is the standard casino rule.
	DefaultDealerStandThreshold = 17
)

// GameConfig carries the table rules sent with every in-round request.
type GameConfig struct {
	// DealerStandThreshold is the score at which the dealer stops drawing.
	DealerStandThreshold int `json:"dealer_stand_threshold"`
}

// ValidThreshold reports whether v is an acceptable dealer stand threshold.
func ValidThreshold(v int) bool {
	return v >= MinDealerStandThreshold && v <= MaxDealerStandThreshold
}

// NewGameRequest is the body of the start endpoint, e.g. {"bet": 100}.
type NewGameRequest struct {
	Bet int `json:"bet"`
}

// ActionRequest is the body of hit, stand, surrender and advise: the full
// current round plus the active configuration.
type ActionRequest struct {
	Game   Round      `json:"game"`
	Config GameConfig `json:"config"`
}
