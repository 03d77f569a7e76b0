package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem/internal/randutil"
)

func TestShowdownSidePots(t *testing.T) {
	t.Parallel()
	d := stackDeck(t, 3, []string{"AsAh", "KsKh", "QsQh", "4c5c"}, "2c7d9hJd3h")
	g := newTestGame(t, []int{50, 100, 1000, 1000}, WithButton(3), WithDeck(d))
	// Alice and Bob are the blinds, Charlie opens.
	require.Equal(t, "Charlie", actorName(g))

	play(t, g, Raise{Amount: 200}) // Charlie
	play(t, g, Call{})             // Dave
	play(t, g, AllIn{})            // Alice, 50 total
	play(t, g, AllIn{})            // Bob, 100 total
	require.Equal(t, Flop, g.Phase)
	require.Equal(t, 550, g.Pot)

	play(t, g, Check{}) // Charlie
	play(t, g, Fold{})  // Dave

	require.True(t, g.Finished)
	assert.Equal(t, Showdown, g.Phase)
	assert.Len(t, g.CommunityCards, 5)
	assert.Zero(t, g.Pot)

	assert.Equal(t, 200, g.Players[0].Chips)
	assert.Equal(t, 150, g.Players[1].Chips)
	assert.Equal(t, 1000, g.Players[2].Chips)
	assert.Equal(t, 800, g.Players[3].Chips)
	assert.NoError(t, g.CheckConservation())

	assert.Equal(t, "Alice, Bob", g.WinnerName)
	assert.Equal(t, []string{"alice", "bob"}, g.WinnerIDs)
	assert.Equal(t, "Pair of Aces", g.WinningHandDescription)

	res, err := g.ResolveShowdown()
	require.NoError(t, err)
	assert.Equal(t, 550, res.TotalPot)
	assert.Equal(t, []Winner{
		{PlayerID: "alice", PlayerName: "Alice", AmountWon: 200, HandDescription: "Pair of Aces"},
		{PlayerID: "bob", PlayerName: "Bob", AmountWon: 150, HandDescription: "Pair of Kings"},
		{PlayerID: "charlie", PlayerName: "Charlie", AmountWon: 200, HandDescription: "Pair of Queens"},
	}, res.Winners)

	require.Len(t, res.Pots, 3)
	assert.Equal(t, []string{"alice", "bob", "charlie"}, res.Pots[0].Eligible)
	assert.Equal(t, []string{"bob", "charlie"}, res.Pots[1].Eligible)
	assert.True(t, res.Pots[2].Uncontested)

	total := 0
	for _, w := range res.Winners {
		total += w.AmountWon
	}
	assert.Equal(t, res.TotalPot, total)
}

func TestShowdownSplitPot(t *testing.T) {
	t.Parallel()
	d := stackDeck(t, 0, []string{"2c3d", "6d7d", "4h5h"}, "AsKsQsJsTs")
	g := newTestGame(t, []int{1000, 1000, 1000}, WithDeck(d))

	play(t, g, Raise{Amount: 20}) // Alice
	play(t, g, Fold{})            // Bob
	play(t, g, Call{})            // Charlie
	for !g.Finished {
		play(t, g, Check{})
	}

	assert.Equal(t, "Split pot", g.WinningHandDescription)
	assert.Equal(t, "Charlie, Alice", g.WinnerName)

	res, err := g.ResolveShowdown()
	require.NoError(t, err)
	assert.Equal(t, 45, res.TotalPot)
	require.Len(t, res.Winners, 2)
	assert.Equal(t, 23, res.Winners[0].AmountWon, "odd chip goes left of the dealer")
	assert.Equal(t, "Royal Flush", res.Winners[0].HandDescription)
	assert.Equal(t, 22, res.Winners[1].AmountWon)
	assert.Equal(t, 1003, g.Players[2].Chips)
	assert.Equal(t, 1002, g.Players[0].Chips)

	// Bob's folded blind is its own layer but reads as part of one pot.
	assert.Equal(t, []PotResult{
		{Amount: 45, Eligible: []string{"alice", "charlie"}, Winners: []string{"charlie", "alice"}},
	}, res.Pots)
}

func TestShowdownSingleWinnerDescription(t *testing.T) {
	t.Parallel()
	d := stackDeck(t, 0, []string{"AsAd", "KsKh", "2c3c"}, "AhKd7s7c2d")
	g := newTestGame(t, []int{1000, 1000, 1000}, WithDeck(d))

	play(t, g, Call{}) // Alice
	play(t, g, Call{}) // Bob
	play(t, g, Check{})
	for !g.Finished {
		play(t, g, Check{})
	}

	assert.Equal(t, "Alice", g.WinnerName)
	assert.Equal(t, "Aces full of Sevens", g.WinningHandDescription)
	assert.Equal(t, 1020, g.Players[0].Chips)
}

func TestResolveShowdownBeforeHandEnds(t *testing.T) {
	t.Parallel()
	g := newTestGame(t, []int{1000, 1000})
	_, err := g.ResolveShowdown()
	assert.ErrorIs(t, err, ErrConflict)
}

func TestResolveShowdownReturnsCopy(t *testing.T) {
	t.Parallel()
	g := newTestGame(t, []int{1000, 1000})
	play(t, g, Fold{})

	res, err := g.ResolveShowdown()
	require.NoError(t, err)
	res.Winners[0].AmountWon = 1

	again, err := g.ResolveShowdown()
	require.NoError(t, err)
	assert.Equal(t, 15, again.Winners[0].AmountWon)
}

// Random legal play over many hands never creates or destroys chips.
func TestChipConservationRandomPlay(t *testing.T) {
	t.Parallel()
	for seed := int64(1); seed <= 25; seed++ {
		rng := randutil.New(seed)
		players := 2 + int(seed)%5
		chips := make([]int, players)
		total := 0
		for i := range chips {
			chips[i] = 50 + rng.IntN(400)
			total += chips[i]
		}

		g := newTestGame(t, chips, WithSeed(seed))
		for hand := 0; hand < 40; hand++ {
			for !g.Finished {
				p := g.CurrentPlayer()
				require.NotNil(t, p, "seed %d: unfinished hand with nobody to act", seed)
				options := g.ValidActions(g.CurrentActor)
				require.NotEmpty(t, options)
				choice := options[rng.IntN(len(options))]
				amount := choice.MinAmount
				if choice.MaxAmount > choice.MinAmount {
					amount += rng.IntN(choice.MaxAmount - choice.MinAmount + 1)
				}
				require.NoError(t, g.Apply(p.ID, choice.Action(amount)), "seed %d", seed)
				require.NoError(t, g.CheckConservation(), "seed %d", seed)
			}
			require.Equal(t, total, g.TotalChips(), "seed %d hand %d", seed, hand)
			require.Zero(t, g.Pot)

			if err := g.StartNewHand(); err != nil {
				require.ErrorIs(t, err, ErrNotEnoughPlayers)
				break
			}
		}
	}
}
