// Package deck models the standard 52-card deck used by a hold'em hand.
package deck

import (
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// Suits lists every suit in deck construction order
var Suits = [...]Suit{Spades, Hearts, Diamonds, Clubs}

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// Letter returns the single-letter suit code used by ParseCard.
func (s Suit) Letter() string {
	switch s {
	case Spades:
		return "s"
	case Hearts:
		return "h"
	case Diamonds:
		return "d"
	case Clubs:
		return "c"
	default:
		return "?"
	}
}

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	return s >= Spades && s <= Clubs
}

// Rank represents a card rank. Aces are high (14).
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the string representation of a rank
func (r Rank) String() string {
	switch r {
	case Ten:
		return "T"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	}
	if r >= Two && r <= Nine {
		return string(rune('0' + int(r)))
	}
	return "?"
}

// Name returns the spoken name of the rank ("Ace", "Seven").
func (r Rank) Name() string {
	names := [...]string{"Two", "Three", "Four", "Five", "Six", "Seven", "Eight",
		"Nine", "Ten", "Jack", "Queen", "King", "Ace"}
	if !r.Valid() {
		return "Unknown"
	}
	return names[r-Two]
}

// Plural returns the plural form used in hand descriptions ("Sixes", "Aces").
func (r Rank) Plural() string {
	if r == Six {
		return "Sixes"
	}
	return r.Name() + "s"
}

// Valid reports whether r is between Two and Ace.
func (r Rank) Valid() bool {
	return r >= Two && r <= Ace
}

// Card represents a playing card. Cards are comparable values: two cards are
// equal iff suit and rank match.
type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard creates a new card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// String returns the string representation of a card (e.g., "A♠")
func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// Code returns the two-character ASCII form of the card ("As", "Td").
func (c Card) Code() string {
	return c.Rank.String() + c.Suit.Letter()
}

// Valid reports whether both rank and suit are in range.
func (c Card) Valid() bool {
	return c.Suit.Valid() && c.Rank.Valid()
}

// Value returns the numeric value of the card for comparison
func (c Card) Value() int {
	return int(c.Rank)
}

// ParseCard parses a two-character card code such as "Ah", "td" or "2C".
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, fmt.Errorf("invalid card %q: expected 2 characters", s)
	}

	var rank Rank
	switch r := strings.ToUpper(s[:1]); r {
	case "A":
		rank = Ace
	case "K":
		rank = King
	case "Q":
		rank = Queen
	case "J":
		rank = Jack
	case "T":
		rank = Ten
	default:
		if r[0] < '2' || r[0] > '9' {
			return Card{}, fmt.Errorf("invalid rank in card %q", s)
		}
		rank = Rank(r[0] - '0')
	}

	var suit Suit
	switch strings.ToLower(s[1:]) {
	case "s":
		suit = Spades
	case "h":
		suit = Hearts
	case "d":
		suit = Diamonds
	case "c":
		suit = Clubs
	default:
		return Card{}, fmt.Errorf("invalid suit in card %q", s)
	}

	return NewCard(suit, rank), nil
}

// ParseCards parses a run of concatenated card codes ("AsKsQs") or a
// space/comma separated list ("As Ks, Qs").
func ParseCards(s string) ([]Card, error) {
	s = strings.NewReplacer(" ", "", ",", "").Replace(s)
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("invalid card string %q: odd length", s)
	}

	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		c, err := ParseCard(s[i : i+2])
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards is ParseCards for fixed literals; it panics on bad input.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

// FormatCards renders cards as space separated codes.
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
