package deck

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
)

// ErrDeckExhausted is returned when more cards are requested than remain.
var ErrDeckExhausted = errors.New("deck exhausted")

// Deck represents a deck of playing cards. Cards are drawn from the front and
// never returned; a hand gets a fresh deck.
type Deck struct {
	cards []Card
	next  int
	rng   *rand.Rand
}

// NewDeck creates a new standard 52-card deck shuffled with rng.
func NewDeck(rng *rand.Rand) *Deck {
	if rng == nil {
		panic("rng is required for deck creation")
	}

	d := &Deck{
		cards: FullDeck(),
		rng:   rng,
	}
	d.Shuffle()
	return d
}

// NewDeckFromCards creates an unshuffled deck that deals cards in the given
// order. Used to stack the deck for deterministic scenarios.
func NewDeckFromCards(cards []Card) (*Deck, error) {
	seen := make(map[Card]bool, len(cards))
	for _, c := range cards {
		if !c.Valid() {
			return nil, fmt.Errorf("invalid card %v", c)
		}
		if seen[c] {
			return nil, fmt.Errorf("duplicate card %s", c)
		}
		seen[c] = true
	}

	stacked := make([]Card, len(cards))
	copy(stacked, cards)
	return &Deck{cards: stacked}, nil
}

// FullDeck returns the 52 cards in suit-major order.
func FullDeck() []Card {
	cards := make([]Card, 0, 52)
	for _, suit := range Suits {
		for rank := Two; rank <= Ace; rank++ {
			cards = append(cards, NewCard(suit, rank))
		}
	}
	return cards
}

// Shuffle randomizes the undealt cards using Fisher-Yates
func (d *Deck) Shuffle() {
	if d.rng == nil {
		return
	}
	rest := d.cards[d.next:]
	for i := len(rest) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		rest[i], rest[j] = rest[j], rest[i]
	}
}

// Deal removes and returns the next n cards.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n < 0 || d.next+n > len(d.cards) {
		return nil, fmt.Errorf("deal %d with %d remaining: %w", n, d.CardsRemaining(), ErrDeckExhausted)
	}

	cards := make([]Card, n)
	copy(cards, d.cards[d.next:d.next+n])
	d.next += n
	return cards, nil
}

// CardsRemaining returns the number of cards left in the deck
func (d *Deck) CardsRemaining() int {
	return len(d.cards) - d.next
}

// Remaining returns a copy of the undealt cards in deal order.
func (d *Deck) Remaining() []Card {
	out := make([]Card, d.CardsRemaining())
	copy(out, d.cards[d.next:])
	return out
}
