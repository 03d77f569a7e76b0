// Package game implements the rules engine for a Texas Hold'em cash game.
//
// The main type is Game, which owns the players at one table and the hand in
// progress: blinds, hole cards, the four betting rounds, side pots and the
// showdown.
//
// # Basic Usage
//
// Seat players and play a hand:
//
//	g, err := game.NewGame([]game.Seat{
//	    {ID: "p1", Name: "Alice", Chips: 1000},
//	    {ID: "p2", Name: "Bob", Chips: 1000},
//	}, 5, 10)
//	// Apply actions for whoever is to act...
//	err = g.Apply(g.CurrentPlayer().ID, game.Call{})
//	// When the hand ends, collect the result and deal the next one
//	if g.Finished {
//	    res, _ := g.ResolveShowdown()
//	    err = g.StartNewHand()
//	}
//
// Rejected actions return an *ActionError wrapping ErrNotFound, ErrConflict
// or ErrBadRequest and leave the game unchanged.
//
// # Deterministic Testing
//
// Shuffles come from an injected *rand.Rand:
//
//	g, _ := game.NewGame(seats, 5, 10, game.WithSeed(42))
//
// A prepared deck gives complete control over one hand:
//
//	d, _ := deck.NewDeckFromCards(cards)
//	g, _ := game.NewGame(seats, 5, 10, game.WithDeck(d))
//
// # Side Pots
//
// Pot settlement is a pure function of each player's total commitment for the
// hand. BuildLayers splits commitments into layers with their eligible
// players and AwardLayers distributes them, sending odd chips around the table
// from the seat left of the dealer.
package game
