package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/holdem/internal/deck"
)

var names = []string{"Alice", "Bob", "Charlie", "Dave", "Eve", "Frank", "Grace", "Heidi", "Ivan", "Judy"}

func seatsWithChips(chips ...int) []Seat {
	seats := make([]Seat, len(chips))
	for i, c := range chips {
		seats[i] = Seat{ID: strings.ToLower(names[i]), Name: names[i], Chips: c}
	}
	return seats
}

func newTestGame(t *testing.T, chips []int, opts ...Option) *Game {
	t.Helper()
	opts = append([]Option{WithSeed(42)}, opts...)
	g, err := NewGame(seatsWithChips(chips...), 5, 10, opts...)
	require.NoError(t, err)
	require.NoError(t, g.CheckConservation())
	return g
}

// stackDeck returns a deck that deals holes[i] to seat i for a table with
// the given dealer, then the five board cards, then the rest of the deck.
func stackDeck(t *testing.T, dealer int, holes []string, board string) *deck.Deck {
	t.Helper()
	n := len(holes)
	hands := make([][]deck.Card, n)
	for i, h := range holes {
		cards, err := deck.ParseCards(h)
		require.NoError(t, err)
		require.Len(t, cards, 2)
		hands[i] = cards
	}

	var order []deck.Card
	for round := 0; round < 2; round++ {
		for k := 1; k <= n; k++ {
			order = append(order, hands[(dealer+k)%n][round])
		}
	}
	boardCards, err := deck.ParseCards(board)
	require.NoError(t, err)
	require.Len(t, boardCards, 5)
	order = append(order, boardCards...)

	used := make(map[deck.Card]bool, len(order))
	for _, c := range order {
		used[c] = true
	}
	for _, c := range deck.FullDeck() {
		if !used[c] {
			order = append(order, c)
		}
	}

	d, err := deck.NewDeckFromCards(order)
	require.NoError(t, err)
	return d
}

// play applies an action for whoever is to act and checks chip conservation.
func play(t *testing.T, g *Game, action Action) {
	t.Helper()
	p := g.CurrentPlayer()
	require.NotNil(t, p, "nobody to act")
	require.NoError(t, g.Apply(p.ID, action), "%s %s", p.Name, FormatAction(action))
	require.NoError(t, g.CheckConservation())
}

func actorName(g *Game) string {
	if p := g.CurrentPlayer(); p != nil {
		return p.Name
	}
	return ""
}
