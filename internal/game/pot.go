package game

import (
	"slices"

	"github.com/lox/holdem/internal/evaluator"
)

// Contribution is one player's total commitment to the hand.
type Contribution struct {
	Seat   int
	Amount int
	Folded bool
}

// Layer is a slice of the pot between two contribution levels. Only players
// who reached Cap and did not fold may win it.
type Layer struct {
	Floor    int
	Cap      int
	Amount   int
	Eligible []int // seats, ascending
}

// BuildLayers splits the pot into layers at each distinct contribution level.
// A layer's amount is the level step times the number of players who reached
// it. Folded players pay into layers but are never eligible.
//
// A layer with no eligible player joins the layer below it (or the next one
// up when it is the lowest). Every other threshold keeps its own layer even
// when its eligible players match the one below, since odd chips are split
// per layer.
func BuildLayers(contributions []Contribution) []Layer {
	levels := make([]int, 0, len(contributions))
	for _, c := range contributions {
		if c.Amount > 0 {
			levels = append(levels, c.Amount)
		}
	}
	slices.Sort(levels)
	levels = slices.Compact(levels)

	var layers []Layer
	carry, prev := 0, 0
	for _, level := range levels {
		layer := Layer{Floor: prev, Cap: level}
		reached := 0
		for _, c := range contributions {
			if c.Amount < level {
				continue
			}
			reached++
			if !c.Folded {
				layer.Eligible = append(layer.Eligible, c.Seat)
			}
		}
		layer.Amount = (level-prev)*reached + carry
		carry = 0
		prev = level
		slices.Sort(layer.Eligible)

		switch {
		case len(layer.Eligible) == 0 && len(layers) == 0:
			carry = layer.Amount
		case len(layer.Eligible) == 0:
			last := &layers[len(layers)-1]
			last.Amount += layer.Amount
			last.Cap = level
		default:
			layers = append(layers, layer)
		}
	}
	if carry > 0 {
		// Nobody eligible anywhere; keep the chips visible.
		layers = append(layers, Layer{Floor: 0, Cap: prev, Amount: carry})
	}
	return layers
}

// Award is the share of one layer won by one seat.
type Award struct {
	Layer       int
	Seat        int
	Amount      int
	Uncontested bool
}

// AwardLayers picks the best eligible hand in every layer and splits the
// layer between tied winners. Odd chips go one at a time to the tied winners
// in the given seat order. Layers with no eligible seat are skipped.
func AwardLayers(layers []Layer, rank func(seat int) evaluator.HandRanking, order []int) []Award {
	position := make(map[int]int, len(order))
	for i, seat := range order {
		position[seat] = i
	}

	var awards []Award
	for li, layer := range layers {
		switch len(layer.Eligible) {
		case 0:
			continue
		case 1:
			awards = append(awards, Award{Layer: li, Seat: layer.Eligible[0], Amount: layer.Amount, Uncontested: true})
			continue
		}

		var best evaluator.HandRanking
		var winners []int
		for _, seat := range layer.Eligible {
			r := rank(seat)
			switch cmp := evaluator.Compare(r, best); {
			case winners == nil || cmp > 0:
				best, winners = r, []int{seat}
			case cmp == 0:
				winners = append(winners, seat)
			}
		}

		slices.SortFunc(winners, func(a, b int) int { return position[a] - position[b] })
		share, odd := layer.Amount/len(winners), layer.Amount%len(winners)
		for i, seat := range winners {
			amount := share
			if i < odd {
				amount++
			}
			awards = append(awards, Award{Layer: li, Seat: seat, Amount: amount})
		}
	}
	return awards
}

// payoutOrder lists seats starting immediately left of the dealer.
func payoutOrder(dealer, n int) []int {
	order := make([]int, n)
	for k := range order {
		order[k] = (dealer + 1 + k) % n
	}
	return order
}
