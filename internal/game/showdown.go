package game

import (
	"fmt"
	"slices"
	"strings"

	"github.com/lox/holdem/internal/evaluator"
)

// Winner is a player who took chips at the end of a hand.
type Winner struct {
	PlayerID        string
	PlayerName      string
	AmountWon       int
	HandDescription string
}

// PotResult records how one pot was settled. Adjacent layers with the same
// eligible players are reported together.
type PotResult struct {
	Amount      int
	Eligible    []string // player ids
	Winners     []string // player ids
	Uncontested bool
}

// ShowdownResult is the settlement of a finished hand.
type ShowdownResult struct {
	TotalPot int
	Winners  []Winner // seat order from the left of the dealer
	Pots     []PotResult
}

func (r *ShowdownResult) clone() *ShowdownResult {
	c := *r
	c.Winners = append([]Winner(nil), r.Winners...)
	c.Pots = make([]PotResult, len(r.Pots))
	for i, p := range r.Pots {
		p.Eligible = append([]string(nil), p.Eligible...)
		p.Winners = append([]string(nil), p.Winners...)
		c.Pots[i] = p
	}
	return &c
}

// ResolveShowdown returns the settlement of the finished hand. Chips are
// distributed as soon as the hand reaches showdown or everyone else folds;
// asking before that is a conflict.
func (g *Game) ResolveShowdown() (*ShowdownResult, error) {
	if !g.Finished || g.Result == nil {
		return nil, conflict("hand %d is still in %s", g.HandNumber, g.Phase)
	}
	return g.Result.clone(), nil
}

// foldOut awards the whole pot to the last player standing.
func (g *Game) foldOut() {
	idx := -1
	for i := range g.Players {
		if g.Players[i].InHand() {
			idx = i
			break
		}
	}
	p := &g.Players[idx]

	total := g.Pot
	p.Chips += total
	g.Pot = 0

	g.Phase = Showdown
	g.CurrentActor = -1
	g.Finished = true
	g.WinnerName = p.Name
	g.WinnerIDs = []string{p.ID}
	g.WinningHandDescription = FoldOutDescription
	g.Result = &ShowdownResult{
		TotalPot: total,
		Winners:  []Winner{{PlayerID: p.ID, PlayerName: p.Name, AmountWon: total, HandDescription: FoldOutDescription}},
		Pots:     []PotResult{{Amount: total, Eligible: []string{p.ID}, Winners: []string{p.ID}, Uncontested: true}},
	}
}

// showdown ranks every live hand and settles the pot layer by layer.
func (g *Game) showdown() {
	g.Phase = Showdown
	g.CurrentActor = -1

	rankings := make(map[int]evaluator.HandRanking)
	contributions := make([]Contribution, len(g.Players))
	for i := range g.Players {
		p := &g.Players[i]
		contributions[i] = Contribution{Seat: i, Amount: p.TotalBetInRound, Folded: p.Folded}
		if p.Folded {
			continue
		}
		r, err := evaluator.Evaluate(p.HoleCards, g.CommunityCards)
		if err != nil {
			// hole cards and a full board are dealt before showdown
			panic(fmt.Sprintf("game %s hand %d: %v", g.ID, g.HandNumber, err))
		}
		rankings[i] = r
	}

	layers := BuildLayers(contributions)
	order := payoutOrder(g.Dealer, len(g.Players))
	awards := AwardLayers(layers, func(seat int) evaluator.HandRanking { return rankings[seat] }, order)

	// Layers are awarded one threshold at a time but reported as pots:
	// adjacent layers contested by the same players read as one pot.
	pots := make([]PotResult, 0, len(layers))
	potOf := make([]int, len(layers))
	for i, layer := range layers {
		eligible := g.ids(layer.Eligible)
		if n := len(pots); n > 0 && slices.Equal(pots[n-1].Eligible, eligible) {
			pots[n-1].Amount += layer.Amount
		} else {
			pots = append(pots, PotResult{Amount: layer.Amount, Eligible: eligible, Uncontested: len(layer.Eligible) == 1})
		}
		potOf[i] = len(pots) - 1
	}

	won := make(map[int]int)
	contested := make(map[int]bool)
	for _, a := range awards {
		won[a.Seat] += a.Amount
		pot := &pots[potOf[a.Layer]]
		if id := g.Players[a.Seat].ID; !slices.Contains(pot.Winners, id) {
			pot.Winners = append(pot.Winners, id)
		}
		if !a.Uncontested {
			contested[a.Seat] = true
		}
	}

	result := &ShowdownResult{TotalPot: g.Pot, Pots: pots}
	var names []string
	g.WinnerIDs = nil
	for _, seat := range order {
		amount, ok := won[seat]
		if !ok {
			continue
		}
		p := &g.Players[seat]
		p.Chips += amount
		result.Winners = append(result.Winners, Winner{
			PlayerID:        p.ID,
			PlayerName:      p.Name,
			AmountWon:       amount,
			HandDescription: rankings[seat].String(),
		})
		if contested[seat] {
			names = append(names, p.Name)
			g.WinnerIDs = append(g.WinnerIDs, p.ID)
		}
	}
	g.Pot = 0

	g.WinnerName = strings.Join(names, ", ")
	g.WinningHandDescription = g.describeResult(pots, rankings)
	g.Result = result
	g.Finished = true
}

// describeResult names the winning hand: the sole winner's hand, "Split pot"
// when the main pot was shared, otherwise the main pot winner's hand.
func (g *Game) describeResult(pots []PotResult, rankings map[int]evaluator.HandRanking) string {
	if len(g.WinnerIDs) == 1 {
		return rankings[g.PlayerIndex(g.WinnerIDs[0])].String()
	}
	for _, pot := range pots {
		if len(pot.Eligible) < 2 {
			continue
		}
		if len(pot.Winners) > 1 {
			return "Split pot"
		}
		return rankings[g.PlayerIndex(pot.Winners[0])].String()
	}
	return ""
}

func (g *Game) ids(seats []int) []string {
	ids := make([]string, len(seats))
	for i, seat := range seats {
		ids[i] = g.Players[seat].ID
	}
	return ids
}
