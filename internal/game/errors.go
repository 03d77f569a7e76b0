package game

import (
	"errors"
	"fmt"

	"github.com/lox/holdem/internal/evaluator"
)

// Rejection kinds. Every error returned for a rejected action wraps exactly
// one of these, so callers branch with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrBadRequest = errors.New("bad request")
)

// ErrNotEnoughPlayers is returned by StartNewHand when fewer than two players
// still hold chips and the table should be torn down.
var ErrNotEnoughPlayers = &ActionError{Kind: ErrConflict, Msg: "fewer than 2 players have chips"}

// ActionError is a rejected operation. The game is left untouched.
type ActionError struct {
	Kind error
	Msg  string
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *ActionError) Unwrap() error {
	return e.Kind
}

func notFound(format string, args ...any) error {
	return &ActionError{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

func conflict(format string, args ...any) error {
	return &ActionError{Kind: ErrConflict, Msg: fmt.Sprintf(format, args...)}
}

func badRequest(format string, args ...any) error {
	return &ActionError{Kind: ErrBadRequest, Msg: fmt.Sprintf(format, args...)}
}

// Code maps an error to its taxonomy name (NOT_FOUND, CONFLICT, BAD_REQUEST,
// INVALID_INPUT). Unclassified errors map to "INTERNAL".
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrBadRequest):
		return "BAD_REQUEST"
	case errors.Is(err, evaluator.ErrInvalidInput):
		return "INVALID_INPUT"
	default:
		return "INTERNAL"
	}
}
