package game

import (
	"fmt"

	"github.com/lox/holdem/internal/deck"
)

// startHand resets the table for a new hand, posts blinds, deals hole cards
// and positions the first actor. The deck must already be checked with
// checkDeck.
func (g *Game) startHand(d *deck.Deck) {
	g.HandNumber++
	for i := range g.Players {
		g.Players[i].resetForHand()
	}
	g.CommunityCards = nil
	g.Pot = 0
	g.CurrentBet = 0
	g.MinRaise = g.BigBlind
	g.Phase = PreFlop
	g.CurrentActor = -1
	g.Finished = false
	g.WinnerName = ""
	g.WinnerIDs = nil
	g.WinningHandDescription = ""
	g.Result = nil

	if d == nil {
		d = deck.NewDeck(g.rng)
	}
	g.deck = d
	g.startTotal = g.TotalChips()

	g.postBlinds()
	g.dealHoleCards()

	if len(g.Players) == 2 {
		g.CurrentActor = g.seekActor(g.Dealer)
	} else {
		g.CurrentActor = g.seekActor(g.bigBlindSeat() + 1)
	}

	// Blinds alone can put everyone all-in.
	if g.roundComplete() {
		g.endRound()
	}
}

func (g *Game) smallBlindSeat() int {
	if len(g.Players) == 2 {
		return g.Dealer
	}
	return (g.Dealer + 1) % len(g.Players)
}

func (g *Game) bigBlindSeat() int {
	return (g.smallBlindSeat() + 1) % len(g.Players)
}

// postBlinds commits the blinds. A short stack posts what it has and is
// all-in; the bet to match stays at the full big blind.
func (g *Game) postBlinds() {
	sb, bb := g.smallBlindSeat(), g.bigBlindSeat()
	g.commit(sb, min(g.SmallBlind, g.Players[sb].Chips))
	g.commit(bb, min(g.BigBlind, g.Players[bb].Chips))
	g.CurrentBet = g.BigBlind
	g.MinRaise = g.BigBlind
}

// dealHoleCards deals one card at a time around the table starting left of
// the dealer.
func (g *Game) dealHoleCards() {
	n := len(g.Players)
	for round := 0; round < 2; round++ {
		for k := 1; k <= n; k++ {
			i := (g.Dealer + k) % n
			g.Players[i].HoleCards = append(g.Players[i].HoleCards, g.draw(1)...)
		}
	}
}

func (g *Game) draw(n int) []deck.Card {
	cards, err := g.deck.Deal(n)
	if err != nil {
		// checkDeck sized the deck for a full hand
		panic(fmt.Sprintf("game %s hand %d: %v", g.ID, g.HandNumber, err))
	}
	return cards
}

// checkDeck rejects a prepared deck that cannot cover a full hand for n
// players.
func checkDeck(d *deck.Deck, n int) error {
	if d == nil {
		return nil
	}
	if need := 2*n + 5; d.CardsRemaining() < need {
		return fmt.Errorf("prepared deck has %d cards, %d needed: %w", d.CardsRemaining(), need, deck.ErrDeckExhausted)
	}
	return nil
}

// seekActor returns the first player at or after start who can act, or -1.
func (g *Game) seekActor(start int) int {
	n := len(g.Players)
	for k := 0; k < n; k++ {
		i := ((start+k)%n + n) % n
		if g.Players[i].CanAct() {
			return i
		}
	}
	return -1
}

// StartNewHand moves the button to the next player with chips, removes
// busted players and deals the next hand. It returns ErrNotEnoughPlayers,
// leaving the game untouched, when fewer than two players have chips.
func (g *Game) StartNewHand(opts ...Option) error {
	if !g.Finished {
		return conflict("hand %d is still in progress", g.HandNumber)
	}

	var cfg options
	for _, opt := range opts {
		opt(&cfg)
	}

	n := len(g.Players)
	button := -1
	for k := 1; k <= n; k++ {
		if i := (g.Dealer + k) % n; g.Players[i].Chips > 0 {
			button = i
			break
		}
	}

	kept := make([]Player, 0, n)
	dealer := 0
	for i, p := range g.Players {
		if p.Chips == 0 {
			continue
		}
		if i == button {
			dealer = len(kept)
		}
		kept = append(kept, p)
	}
	if len(kept) < MinPlayers {
		return ErrNotEnoughPlayers
	}
	if err := checkDeck(cfg.deck, len(kept)); err != nil {
		return err
	}

	for i := range kept {
		kept[i].Seat = i
	}
	g.Players = kept
	g.Dealer = dealer
	if cfg.rng != nil {
		g.rng = cfg.rng
	}
	g.startHand(cfg.deck)
	return nil
}
