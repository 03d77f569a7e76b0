package game

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/holdem/internal/deck"
	"github.com/lox/holdem/internal/randutil"
)

// Phase is the betting street of the current hand.
type Phase int

const (
	PreFlop Phase = iota
	Flop
	Turn
	River
	Showdown
)

// String returns the string representation of a phase
func (p Phase) String() string {
	switch p {
	case PreFlop:
		return "Pre-flop"
	case Flop:
		return "Flop"
	case Turn:
		return "Turn"
	case River:
		return "River"
	case Showdown:
		return "Showdown"
	default:
		return "Unknown"
	}
}

const (
	MinPlayers = 2
	MaxPlayers = 10
)

// FoldOutDescription is the winning description when everyone else folded.
const FoldOutDescription = "All opponents folded"

// Game is the aggregate for one table and the hand in progress on it.
type Game struct {
	ID      string
	Players []Player // seat order

	Dealer       int
	CurrentActor int // index into Players, -1 when nobody is to act
	Phase        Phase

	CommunityCards []deck.Card
	Pot            int
	CurrentBet     int
	MinRaise       int
	SmallBlind     int
	BigBlind       int
	HandNumber     int

	Finished bool

	// WinnerIDs and WinnerName list the players who won a contested pot, in
	// payout order. An uncontested side pot only returns chips nobody else
	// matched, so a player whose sole winnings are such a pot is not a
	// winner here; Result.Winners lists every payee.
	WinnerName             string
	WinnerIDs              []string
	WinningHandDescription string
	Result                 *ShowdownResult

	deck       *deck.Deck
	rng        *rand.Rand
	startTotal int
}

// Seat is the input for seating a player: identity, display name and stack.
type Seat struct {
	ID    string
	Name  string
	Chips int
}

// NewGame seats the players, posts blinds, deals and leaves the game at
// PRE_FLOP waiting on the first actor.
func NewGame(seats []Seat, smallBlind, bigBlind int, opts ...Option) (*Game, error) {
	cfg := options{button: 0}
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(seats) < MinPlayers || len(seats) > MaxPlayers {
		return nil, badRequest("need %d-%d players, got %d", MinPlayers, MaxPlayers, len(seats))
	}
	if smallBlind <= 0 || bigBlind <= 0 {
		return nil, badRequest("blinds must be positive, got %d/%d", smallBlind, bigBlind)
	}
	if smallBlind > bigBlind {
		return nil, badRequest("small blind %d exceeds big blind %d", smallBlind, bigBlind)
	}
	if cfg.button < 0 || cfg.button >= len(seats) {
		return nil, badRequest("button position %d out of range", cfg.button)
	}

	players := make([]Player, len(seats))
	seen := make(map[string]bool, len(seats))
	for i, s := range seats {
		if s.ID == "" {
			return nil, badRequest("seat %d has no player id", i)
		}
		if seen[s.ID] {
			return nil, badRequest("duplicate player id %q", s.ID)
		}
		seen[s.ID] = true
		if s.Chips <= 0 {
			return nil, badRequest("player %q needs a positive stack, got %d", s.ID, s.Chips)
		}
		name := s.Name
		if name == "" {
			name = s.ID
		}
		players[i] = Player{ID: s.ID, Name: name, Seat: i, Chips: s.Chips}
	}

	if err := checkDeck(cfg.deck, len(seats)); err != nil {
		return nil, err
	}

	rng := cfg.rng
	if rng == nil {
		rng = randutil.New(randutil.TimeSeed())
	}

	g := &Game{
		ID:         cfg.id,
		Players:    players,
		Dealer:     cfg.button,
		SmallBlind: smallBlind,
		BigBlind:   bigBlind,
		rng:        rng,
	}
	g.startHand(cfg.deck)
	return g, nil
}

// PlayerIndex returns the seat index of the player, or -1.
func (g *Game) PlayerIndex(playerID string) int {
	for i := range g.Players {
		if g.Players[i].ID == playerID {
			return i
		}
	}
	return -1
}

// Player returns the player with the given id.
func (g *Game) Player(playerID string) (*Player, bool) {
	i := g.PlayerIndex(playerID)
	if i < 0 {
		return nil, false
	}
	return &g.Players[i], true
}

// CurrentPlayer returns the player to act, or nil.
func (g *Game) CurrentPlayer() *Player {
	if g.CurrentActor < 0 || g.CurrentActor >= len(g.Players) {
		return nil
	}
	return &g.Players[g.CurrentActor]
}

// IsTurn reports whether it is playerID's turn to act.
func (g *Game) IsTurn(playerID string) bool {
	p := g.CurrentPlayer()
	return p != nil && !g.Finished && p.ID == playerID
}

// TotalChips returns player stacks plus the pot.
func (g *Game) TotalChips() int {
	total := g.Pot
	for i := range g.Players {
		total += g.Players[i].Chips
	}
	return total
}

// CheckConservation verifies that no chips were created or destroyed since
// the hand started.
func (g *Game) CheckConservation() error {
	if actual := g.TotalChips(); actual != g.startTotal {
		return fmt.Errorf("chip conservation violation: expected %d total chips, found %d (difference %d)",
			g.startTotal, actual, actual-g.startTotal)
	}
	return nil
}

// InHandCount returns the number of players who have not folded.
func (g *Game) InHandCount() int {
	n := 0
	for i := range g.Players {
		if g.Players[i].InHand() {
			n++
		}
	}
	return n
}

func (g *Game) canActCount() int {
	n := 0
	for i := range g.Players {
		if g.Players[i].CanAct() {
			n++
		}
	}
	return n
}

// Clone returns a deep copy suitable for handing to concurrent readers. The
// clone has no deck, so it cannot deal.
func (g *Game) Clone() *Game {
	c := *g
	c.deck = nil
	c.rng = nil

	c.Players = make([]Player, len(g.Players))
	for i, p := range g.Players {
		p.HoleCards = append([]deck.Card(nil), p.HoleCards...)
		c.Players[i] = p
	}
	c.CommunityCards = append([]deck.Card(nil), g.CommunityCards...)
	c.WinnerIDs = append([]string(nil), g.WinnerIDs...)
	if g.Result != nil {
		c.Result = g.Result.clone()
	}
	return &c
}
