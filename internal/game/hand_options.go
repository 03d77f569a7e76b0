package game

import (
	rand "math/rand/v2"

	"github.com/lox/holdem/internal/deck"
	"github.com/lox/holdem/internal/randutil"
)

// Option configures NewGame and StartNewHand.
type Option func(*options)

type options struct {
	id     string
	rng    *rand.Rand
	deck   *deck.Deck
	button int
}

// WithID sets the game id.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

// WithRNG sets the random source used to shuffle every hand's deck.
func WithRNG(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// WithSeed is WithRNG with a deterministic source built from seed.
func WithSeed(seed int64) Option {
	return func(o *options) { o.rng = randutil.New(seed) }
}

// WithDeck deals the next hand from a prepared deck instead of a fresh
// shuffle. It applies to one hand only.
func WithDeck(d *deck.Deck) Option {
	return func(o *options) { o.deck = d }
}

// WithButton sets the dealer seat for the first hand. Default is seat 0.
func WithButton(seat int) Option {
	return func(o *options) { o.button = seat }
}
