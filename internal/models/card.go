// internal/models/card.go
package models

// Suit is one of the four card suits.
type Suit string

const (
	Spade   Suit = "Spade"
	Heart   Suit = "Heart"
	Diamond Suit = "Diamond"
	Club    Suit = "Club"
)

// Rank is the face value of a card as reported by the authority.
type Rank string

const (
	Ace   Rank = "A"
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
)

var suitSymbols = map[Suit]string{
	Spade:   "♠",
	Heart:   "♥",
	Diamond: "♦",
	Club:    "♣",
}

// Card is an immutable playing card.
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// String renders the card as rank followed by the suit symbol, e.g. "10♥".
func (c Card) String() string {
	if sym, ok := suitSymbols[c.Suit]; ok {
		return string(c.Rank) + sym
	}
	return string(c.Rank) + "?"
}

// Hand is an ordered set of cards plus the score computed by the authority.
// The client never recomputes Score.
type Hand struct {
	Cards []Card `json:"cards"`
	Score int    `json:"score"`
}

// Clone returns a copy that does not share the card slice.
func (h Hand) Clone() Hand {
	cards := make([]Card, len(h.Cards))
	copy(cards, h.Cards)
	return Hand{Cards: cards, Score: h.Score}
}
