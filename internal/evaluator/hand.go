package evaluator

import (
	"fmt"
	"strings"

	"github.com/lox/holdem/internal/deck"
)

// HandType is one of the ten standard hand categories, weakest first.
type HandType int

const (
	HighCard HandType = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// String returns the string representation of a hand type
func (ht HandType) String() string {
	switch ht {
	case HighCard:
		return "High Card"
	case OnePair:
		return "One Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	default:
		return "Unknown"
	}
}

// HandRanking is the evaluated strength of a best-five hand.
//
// Primary holds the ranks that define the category, most significant first
// (the trips then the pair of a full house, the high card of a straight).
// Kickers holds the remaining ranks that only break ties.
type HandRanking struct {
	Type        HandType
	Primary     []deck.Rank
	Kickers     []deck.Rank
	Cards       []deck.Card // the five cards that make the hand
	Description string
}

// Compare returns 1 if a beats b, -1 if b beats a and 0 for a tie.
func Compare(a, b HandRanking) int {
	if a.Type != b.Type {
		if a.Type > b.Type {
			return 1
		}
		return -1
	}
	if c := compareRanks(a.Primary, b.Primary); c != 0 {
		return c
	}
	return compareRanks(a.Kickers, b.Kickers)
}

// Beats reports whether h is strictly stronger than other.
func (h HandRanking) Beats(other HandRanking) bool {
	return Compare(h, other) > 0
}

// Ties reports whether h and other split.
func (h HandRanking) Ties(other HandRanking) bool {
	return Compare(h, other) == 0
}

// String returns the description, falling back to the category name.
func (h HandRanking) String() string {
	if h.Description != "" {
		return h.Description
	}
	return h.Type.String()
}

func compareRanks(a, b []deck.Rank) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] > b[i] {
			return 1
		}
		if a[i] < b[i] {
			return -1
		}
	}
	switch {
	case len(a) > len(b):
		return 1
	case len(a) < len(b):
		return -1
	}
	return 0
}

// describe builds the human-readable description ("Aces full of Kings").
func describe(t HandType, primary []deck.Rank) string {
	switch t {
	case RoyalFlush:
		return "Royal Flush"
	case StraightFlush:
		return fmt.Sprintf("Straight Flush, %s high", primary[0].Name())
	case FourOfAKind:
		return fmt.Sprintf("Four of a Kind, %s", primary[0].Plural())
	case FullHouse:
		return fmt.Sprintf("%s full of %s", primary[0].Plural(), primary[1].Plural())
	case Flush:
		return fmt.Sprintf("Flush, %s high", primary[0].Name())
	case Straight:
		return fmt.Sprintf("Straight, %s high", primary[0].Name())
	case ThreeOfAKind:
		return fmt.Sprintf("Three of a Kind, %s", primary[0].Plural())
	case TwoPair:
		return fmt.Sprintf("Two Pair, %s and %s", primary[0].Plural(), primary[1].Plural())
	case OnePair:
		return fmt.Sprintf("Pair of %s", primary[0].Plural())
	default:
		return fmt.Sprintf("High Card, %s", primary[0].Name())
	}
}

// FormatRanks renders ranks compactly ("AKQ").
func FormatRanks(ranks []deck.Rank) string {
	var sb strings.Builder
	for _, r := range ranks {
		sb.WriteString(r.String())
	}
	return sb.String()
}
