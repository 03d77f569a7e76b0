package main

import (
	"fmt"
	"strings"

	"github.com/lox/holdem/internal/deck"
	"github.com/lox/holdem/internal/evaluator"
)

type EvalCmd struct {
	Hands []string `arg:"" help:"Hands to rank: seven cards each, or hole cards when --board is set (e.g. 'AsKs')"`
	Board string   `short:"b" help:"Five community cards shared by every hand (e.g. 'QsJsTs2c3d')"`
}

type evaluated struct {
	input   string
	ranking evaluator.HandRanking
}

func (c *EvalCmd) Run() error {
	var board []deck.Card
	if c.Board != "" {
		var err error
		if board, err = deck.ParseCards(c.Board); err != nil {
			return fmt.Errorf("board: %w", err)
		}
	}

	results := make([]evaluated, 0, len(c.Hands))
	for _, h := range c.Hands {
		cards, err := deck.ParseCards(h)
		if err != nil {
			return fmt.Errorf("hand %q: %w", h, err)
		}
		var r evaluator.HandRanking
		if board != nil {
			r, err = evaluator.Evaluate(cards, board)
		} else {
			r, err = evaluator.EvaluateCards(cards)
		}
		if err != nil {
			return fmt.Errorf("hand %q: %w", h, err)
		}
		results = append(results, evaluated{input: h, ranking: r})
	}

	best := results[0].ranking
	for _, r := range results[1:] {
		if r.ranking.Beats(best) {
			best = r.ranking
		}
	}

	if board != nil {
		fmt.Println(headerStyle.Render("Board: " + deck.FormatCards(board)))
	}
	for _, r := range results {
		line := fmt.Sprintf("%-16s %-28s %s", r.input, r.ranking.Description, deck.FormatCards(r.ranking.Cards))
		if len(results) > 1 && r.ranking.Ties(best) {
			fmt.Println(winStyle.Render(line + "  " + winLabel(results, best)))
			continue
		}
		fmt.Println(handStyle.Render(line))
		if len(r.ranking.Kickers) > 0 {
			fmt.Printf("%16s kickers %s\n", "", strings.ToUpper(evaluator.FormatRanks(r.ranking.Kickers)))
		}
	}
	return nil
}

func winLabel(results []evaluated, best evaluator.HandRanking) string {
	n := 0
	for _, r := range results {
		if r.ranking.Ties(best) {
			n++
		}
	}
	if n > 1 {
		return "split"
	}
	return "wins"
}
