package game

import "github.com/lox/holdem/internal/deck"

// Player is a seat at the table. Players live inside Game.Players and are
// addressed by index; the slice is the only owner.
type Player struct {
	ID        string
	Name      string
	Seat      int
	Chips     int
	HoleCards []deck.Card

	BetAmount       int // chips committed in the current betting round
	TotalBetInRound int // chips committed in the whole hand; drives side pots

	Folded   bool
	AllIn    bool
	HasActed bool
}

// CanAct returns true if the player can still make decisions this hand
func (p *Player) CanAct() bool {
	return !p.Folded && !p.AllIn
}

// InHand returns true if the player can still win chips this hand
func (p *Player) InHand() bool {
	return !p.Folded
}

func (p *Player) resetForHand() {
	p.HoleCards = nil
	p.BetAmount = 0
	p.TotalBetInRound = 0
	p.Folded = false
	p.AllIn = false
	p.HasActed = false
}

func (p *Player) resetForRound() {
	p.BetAmount = 0
	p.HasActed = false
}
