package game

import (
	"fmt"
	"strings"
)

// ActionKind identifies an action variant.
type ActionKind int

const (
	ActionFold ActionKind = iota
	ActionCheck
	ActionCall
	ActionBet
	ActionRaise
	ActionAllIn
)

func (k ActionKind) String() string {
	switch k {
	case ActionFold:
		return "fold"
	case ActionCheck:
		return "check"
	case ActionCall:
		return "call"
	case ActionBet:
		return "bet"
	case ActionRaise:
		return "raise"
	case ActionAllIn:
		return "allin"
	default:
		return "unknown"
	}
}

// Action is a player decision. The set of variants is closed: Fold, Check,
// Call, Bet, Raise and AllIn.
type Action interface {
	Kind() ActionKind
	isAction()
}

// Fold gives up the hand.
type Fold struct{}

// Check passes when there is nothing to call.
type Check struct{}

// Call matches the current bet, or commits the whole stack if short.
type Call struct{}

// Bet opens the betting for the round. Amount is the total bet.
type Bet struct{ Amount int }

// Raise raises a live bet. Amount is the new total bet for the round, not
// the increment.
type Raise struct{ Amount int }

// AllIn commits the remaining stack; it is applied as a call, bet or raise
// depending on the amount.
type AllIn struct{}

func (Fold) Kind() ActionKind  { return ActionFold }
func (Check) Kind() ActionKind { return ActionCheck }
func (Call) Kind() ActionKind  { return ActionCall }
func (Bet) Kind() ActionKind   { return ActionBet }
func (Raise) Kind() ActionKind { return ActionRaise }
func (AllIn) Kind() ActionKind { return ActionAllIn }

func (Fold) isAction()  {}
func (Check) isAction() {}
func (Call) isAction()  {}
func (Bet) isAction()   {}
func (Raise) isAction() {}
func (AllIn) isAction() {}

// NewAction builds the variant for kind. Amount is only read for bets and
// raises.
func NewAction(kind ActionKind, amount int) (Action, error) {
	switch kind {
	case ActionFold:
		return Fold{}, nil
	case ActionCheck:
		return Check{}, nil
	case ActionCall:
		return Call{}, nil
	case ActionBet:
		return Bet{Amount: amount}, nil
	case ActionRaise:
		return Raise{Amount: amount}, nil
	case ActionAllIn:
		return AllIn{}, nil
	default:
		return nil, badRequest("unknown action kind %d", kind)
	}
}

// ParseAction accepts the lower-case action names used on the wire and in
// the CLI ("fold", "check", "call", "bet", "raise", "allin").
func ParseAction(name string, amount int) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "fold":
		return Fold{}, nil
	case "check":
		return Check{}, nil
	case "call":
		return Call{}, nil
	case "bet":
		return Bet{Amount: amount}, nil
	case "raise":
		return Raise{Amount: amount}, nil
	case "allin", "all-in", "all_in":
		return AllIn{}, nil
	default:
		return nil, badRequest("unknown action %q", name)
	}
}

// FormatAction renders an action for logs ("raise 60").
func FormatAction(a Action) string {
	switch a := a.(type) {
	case Bet:
		return fmt.Sprintf("bet %d", a.Amount)
	case Raise:
		return fmt.Sprintf("raise %d", a.Amount)
	case nil:
		return "<nil>"
	default:
		return a.Kind().String()
	}
}

// ValidAction describes one legal choice for the player to act, with the
// total-bet bounds for bets and raises.
type ValidAction struct {
	Kind      ActionKind
	MinAmount int
	MaxAmount int
}

// Action builds the action for this choice. For bets and raises amount is
// clamped to [MinAmount, MaxAmount].
func (v ValidAction) Action(amount int) Action {
	amount = min(max(amount, v.MinAmount), v.MaxAmount)
	switch v.Kind {
	case ActionBet:
		return Bet{Amount: amount}
	case ActionRaise:
		return Raise{Amount: amount}
	default:
		a, _ := NewAction(v.Kind, 0)
		return a
	}
}
