package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func playerTurnRound() *Round {
	return &Round{
		PlayerHand: Hand{Cards: []Card{{Heart, Ace}, {Club, Seven}}, Score: 18},
		DealerHand: Hand{Cards: []Card{{Spade, Queen}}, Score: 10},
		State:      PlayerTurn,
		Result:     Pending,
		Bet:        50,
	}
}

func TestRoundValidate(t *testing.T) {
	assert.NoError(t, playerTurnRound().Validate())

	tests := []struct {
		name   string
		mutate func(r *Round)
	}{
		{"one player card", func(r *Round) { r.PlayerHand.Cards = r.PlayerHand.Cards[:1] }},
		{"no dealer card", func(r *Round) { r.DealerHand.Cards = nil }},
		{"player turn with result", func(r *Round) { r.Result = PlayerWin }},
		{"finished while pending", func(r *Round) { r.State = Finished }},
		{"unknown state", func(r *Round) { r.State = "Dealing" }},
		{"zero bet", func(r *Round) { r.Bet = 0 }},
		{"negative payout", func(r *Round) { r.Payout = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := playerTurnRound()
			tt.mutate(r)
			assert.Error(t, r.Validate())
		})
	}

	var nilRound *Round
	assert.Error(t, nilRound.Validate())
}

func TestRoundCloneIsDeep(t *testing.T) {
	r := playerTurnRound()
	c := r.Clone()
	require.Equal(t, r, c)

	c.PlayerHand.Cards[0] = Card{Diamond, Two}
	c.DealerHand.Cards = append(c.DealerHand.Cards, Card{Club, King})

	assert.Equal(t, Card{Heart, Ace}, r.PlayerHand.Cards[0])
	assert.Len(t, r.DealerHand.Cards, 1)

	var nilRound *Round
	assert.Nil(t, nilRound.Clone())
	assert.False(t, nilRound.IsPlayerTurn())
}

func TestRoundJSON(t *testing.T) {
	raw := `{
		"player_hand": {"cards": [{"suit": "Heart", "rank": "10"}, {"suit": "Spade", "rank": "A"}], "score": 21},
		"dealer_hand": {"cards": [{"suit": "Club", "rank": "9"}], "score": 9},
		"state": "Finished",
		"result": "PlayerWin",
		"result_message": "Blackjack!",
		"bet": 100,
		"payout": 250
	}`
	var r Round
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	require.NoError(t, r.Validate())

	assert.Equal(t, Finished, r.State)
	assert.Equal(t, PlayerWin, r.Result)
	assert.Equal(t, 250.0, r.Payout)
	assert.Equal(t, "10♥", r.PlayerHand.Cards[0].String())
	assert.Equal(t, "A♠", r.PlayerHand.Cards[1].String())
	assert.False(t, r.IsPlayerTurn())
}

func TestAdviceBest(t *testing.T) {
	tests := []struct {
		name         string
		advice       Advice
		canSurrender bool
		want         Action
	}{
		{"stand wins", Advice{HitPayout: 80, StandPayout: 95, SurrenderPayout: 50}, true, ActionStand},
		{"hit wins", Advice{HitPayout: 120, StandPayout: 95, SurrenderPayout: 50}, true, ActionHit},
		{"surrender wins", Advice{HitPayout: 20, StandPayout: 30, SurrenderPayout: 50}, true, ActionSurrender},
		{"surrender not allowed", Advice{HitPayout: 20, StandPayout: 30, SurrenderPayout: 50}, false, ActionStand},
		{"tie favours hit", Advice{HitPayout: 90, StandPayout: 90, SurrenderPayout: 50}, true, ActionHit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.advice.Best(tt.canSurrender))
		})
	}
}

func TestValidThreshold(t *testing.T) {
	assert.False(t, ValidThreshold(0))
	assert.True(t, ValidThreshold(1))
	assert.True(t, ValidThreshold(17))
	assert.True(t, ValidThreshold(21))
	assert.False(t, ValidThreshold(22))
}

func TestActionRequestJSON(t *testing.T) {
	b, err := json.Marshal(ActionRequest{Game: *playerTurnRound(), Config: GameConfig{DealerStandThreshold: 16}})
	require.NoError(t, err)

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &m))
	assert.JSONEq(t, `{"dealer_stand_threshold":16}`, string(m["config"]))
	assert.Contains(t, string(m["game"]), `"player_hand"`)
}
