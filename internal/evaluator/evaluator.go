// Package evaluator ranks seven-card hold'em hands.
//
// Evaluation enumerates all 21 five-card subsets of the seven cards, scores
// each one and keeps the best under the total order defined by Compare.
package evaluator

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lox/holdem/internal/deck"
)

// ErrInvalidInput is returned when the card set is not exactly seven
// distinct, valid cards (two hole cards and five on the board).
var ErrInvalidInput = errors.New("invalid input")

// fiveOfSeven lists the index sets of every 5-card subset of 7 cards.
var fiveOfSeven = combinations(7, 5)

// Evaluate ranks the best five-card hand from two hole cards and five
// community cards.
func Evaluate(hole, board []deck.Card) (HandRanking, error) {
	if len(hole) != 2 {
		return HandRanking{}, fmt.Errorf("%w: need 2 hole cards, got %d", ErrInvalidInput, len(hole))
	}
	if len(board) != 5 {
		return HandRanking{}, fmt.Errorf("%w: need 5 community cards, got %d", ErrInvalidInput, len(board))
	}

	cards := make([]deck.Card, 0, 7)
	cards = append(cards, hole...)
	cards = append(cards, board...)
	return EvaluateCards(cards)
}

// EvaluateCards ranks exactly seven distinct cards.
func EvaluateCards(cards []deck.Card) (HandRanking, error) {
	if len(cards) != 7 {
		return HandRanking{}, fmt.Errorf("%w: need 7 cards, got %d", ErrInvalidInput, len(cards))
	}

	seen := make(map[deck.Card]bool, 7)
	for _, c := range cards {
		if !c.Valid() {
			return HandRanking{}, fmt.Errorf("%w: invalid card %v", ErrInvalidInput, c)
		}
		if seen[c] {
			return HandRanking{}, fmt.Errorf("%w: duplicate card %s", ErrInvalidInput, c)
		}
		seen[c] = true
	}

	var best HandRanking
	found := false
	hand := make([]deck.Card, 5)
	for _, idx := range fiveOfSeven {
		for i, j := range idx {
			hand[i] = cards[j]
		}
		r := evaluateFive(hand)
		if !found || Compare(r, best) > 0 {
			best = r
			found = true
		}
	}
	return best, nil
}

// evaluateFive scores exactly five cards.
func evaluateFive(cards []deck.Card) HandRanking {
	sorted := make([]deck.Card, len(cards))
	copy(sorted, cards)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Rank != sorted[j].Rank {
			return sorted[i].Rank > sorted[j].Rank
		}
		return sorted[i].Suit < sorted[j].Suit
	})

	flush := true
	for _, c := range sorted[1:] {
		if c.Suit != sorted[0].Suit {
			flush = false
			break
		}
	}

	ranks := make([]deck.Rank, len(sorted))
	for i, c := range sorted {
		ranks[i] = c.Rank
	}
	high, straight := straightHigh(ranks)

	groups := groupRanks(ranks)

	result := func(t HandType, primary, kickers []deck.Rank) HandRanking {
		return HandRanking{
			Type:        t,
			Primary:     primary,
			Kickers:     kickers,
			Cards:       sorted,
			Description: describe(t, primary),
		}
	}

	switch {
	case straight && flush && high == deck.Ace:
		return result(RoyalFlush, []deck.Rank{deck.Ace}, nil)
	case straight && flush:
		return result(StraightFlush, []deck.Rank{high}, nil)
	case groups[0].count == 4:
		return result(FourOfAKind, []deck.Rank{groups[0].rank}, []deck.Rank{groups[1].rank})
	case groups[0].count == 3 && groups[1].count == 2:
		return result(FullHouse, []deck.Rank{groups[0].rank, groups[1].rank}, nil)
	case flush:
		return result(Flush, ranks, nil)
	case straight:
		return result(Straight, []deck.Rank{high}, nil)
	case groups[0].count == 3:
		return result(ThreeOfAKind, []deck.Rank{groups[0].rank}, singles(groups[1:]))
	case groups[0].count == 2 && groups[1].count == 2:
		return result(TwoPair, []deck.Rank{groups[0].rank, groups[1].rank}, singles(groups[2:]))
	case groups[0].count == 2:
		return result(OnePair, []deck.Rank{groups[0].rank}, singles(groups[1:]))
	default:
		return result(HighCard, ranks[:1], ranks[1:])
	}
}

type rankGroup struct {
	rank  deck.Rank
	count int
}

// groupRanks groups descending ranks by multiplicity, largest group first and
// higher rank first within equal sizes.
func groupRanks(ranks []deck.Rank) []rankGroup {
	groups := make([]rankGroup, 0, len(ranks))
	for _, r := range ranks {
		if n := len(groups); n > 0 && groups[n-1].rank == r {
			groups[n-1].count++
			continue
		}
		groups = append(groups, rankGroup{rank: r, count: 1})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].count > groups[j].count
	})
	return groups
}

func singles(groups []rankGroup) []deck.Rank {
	out := make([]deck.Rank, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.rank)
	}
	return out
}

// straightHigh reports whether five descending ranks form a straight and its
// high card. A-5-4-3-2 (the wheel) is a five-high straight; no other hand
// wraps around the ace.
func straightHigh(ranks []deck.Rank) (deck.Rank, bool) {
	if len(ranks) != 5 {
		return 0, false
	}
	for i := 1; i < 5; i++ {
		if ranks[i] == ranks[i-1] {
			return 0, false
		}
	}
	if ranks[0]-ranks[4] == 4 {
		return ranks[0], true
	}
	if ranks[0] == deck.Ace && ranks[1] == deck.Five && ranks[4] == deck.Two {
		return deck.Five, true
	}
	return 0, false
}

// combinations returns every k-subset of {0..n-1} in lexicographic order.
func combinations(n, k int) [][]int {
	var res [][]int
	comb := make([]int, k)
	var dfs func(start, idx int)
	dfs = func(start, idx int) {
		if idx == k {
			c := make([]int, k)
			copy(c, comb)
			res = append(res, c)
			return
		}
		for i := start; i <= n-(k-idx); i++ {
			comb[idx] = i
			dfs(i+1, idx+1)
		}
	}
	dfs(0, 0)
	return res
}
